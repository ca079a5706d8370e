package auth

import (
	"context"
	"errors"
	"time"

	internalmodels "github.com/franciscosanchezn/gin-recipe-api/internal/models"
	"github.com/go-oauth2/oauth2/v4"
	"github.com/go-oauth2/oauth2/v4/models"
	"gorm.io/gorm"
)

// Lookups that find nothing return (nil, nil) so the go-oauth2 manager maps
// them to invalid_client / invalid_grant instead of a server error.

type GormClientStore struct {
	db *gorm.DB
}

func NewGormClientStore(db *gorm.DB) *GormClientStore {
	return &GormClientStore{db: db}
}

func (s *GormClientStore) GetByID(ctx context.Context, id string) (oauth2.ClientInfo, error) {
	var client internalmodels.OAuthClient
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&client).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	// OAuthClient implements ClientPasswordVerifier, so secrets are checked against the bcrypt hash
	return &client, nil
}

type GormTokenStore struct {
	db  *gorm.DB
	now func() time.Time
}

func NewGormTokenStore(db *gorm.DB) *GormTokenStore {
	return &GormTokenStore{db: db, now: time.Now}
}

// Create persists either an authorization code or an access token,
// depending on what the manager generated.
func (s *GormTokenStore) Create(ctx context.Context, info oauth2.TokenInfo) error {
	if info.GetCode() != "" {
		return s.createCode(ctx, info)
	}

	createdAt := info.GetAccessCreateAt()
	if createdAt.IsZero() {
		createdAt = s.now()
	}
	token := &internalmodels.OAuthToken{
		ClientID:    info.GetClientID(),
		UserID:      optional(info.GetUserID()),
		AccessToken: info.GetAccess(),
		Scopes:      info.GetScope(),
		ExpiresAt:   createdAt.Add(info.GetAccessExpiresIn()),
		CreatedAt:   createdAt,
	}
	if refresh := info.GetRefresh(); refresh != "" {
		token.RefreshToken = &refresh
		if exp := info.GetRefreshExpiresIn(); exp > 0 {
			refreshExpiresAt := info.GetRefreshCreateAt().Add(exp)
			token.RefreshExpiresAt = &refreshExpiresAt
		}
	}

	return s.db.WithContext(ctx).Create(token).Error
}

func (s *GormTokenStore) createCode(ctx context.Context, info oauth2.TokenInfo) error {
	createdAt := info.GetCodeCreateAt()
	if createdAt.IsZero() {
		createdAt = s.now()
	}
	code := &internalmodels.OAuthCode{
		Code:                info.GetCode(),
		ClientID:            info.GetClientID(),
		UserID:              info.GetUserID(),
		Scopes:              info.GetScope(),
		RedirectURI:         info.GetRedirectURI(),
		CodeChallenge:       info.GetCodeChallenge(),
		CodeChallengeMethod: info.GetCodeChallengeMethod().String(),
		ExpiresAt:           createdAt.Add(info.GetCodeExpiresIn()),
		CreatedAt:           createdAt,
	}
	return s.db.WithContext(ctx).Create(code).Error
}

func (s *GormTokenStore) RemoveByCode(ctx context.Context, code string) error {
	return s.db.WithContext(ctx).Where("code = ?", code).Delete(&internalmodels.OAuthCode{}).Error
}

func (s *GormTokenStore) RemoveByAccess(ctx context.Context, access string) error {
	return s.db.WithContext(ctx).Where("access_token = ?", access).Delete(&internalmodels.OAuthToken{}).Error
}

func (s *GormTokenStore) RemoveByRefresh(ctx context.Context, refresh string) error {
	return s.db.WithContext(ctx).Where("refresh_token = ?", refresh).Delete(&internalmodels.OAuthToken{}).Error
}

func (s *GormTokenStore) GetByCode(ctx context.Context, code string) (oauth2.TokenInfo, error) {
	var oauthCode internalmodels.OAuthCode
	if err := s.db.WithContext(ctx).Where("code = ?", code).First(&oauthCode).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	if oauthCode.Expired(s.now()) {
		return nil, nil
	}

	return &models.Token{
		ClientID:            oauthCode.ClientID,
		UserID:              oauthCode.UserID,
		RedirectURI:         oauthCode.RedirectURI,
		Scope:               oauthCode.Scopes,
		Code:                oauthCode.Code,
		CodeCreateAt:        oauthCode.CreatedAt,
		CodeExpiresIn:       oauthCode.ExpiresAt.Sub(oauthCode.CreatedAt),
		CodeChallenge:       oauthCode.CodeChallenge,
		CodeChallengeMethod: oauthCode.CodeChallengeMethod,
	}, nil
}

func (s *GormTokenStore) GetByAccess(ctx context.Context, access string) (oauth2.TokenInfo, error) {
	return s.findToken(ctx, "access_token = ?", access)
}

func (s *GormTokenStore) GetByRefresh(ctx context.Context, refresh string) (oauth2.TokenInfo, error) {
	return s.findToken(ctx, "refresh_token = ?", refresh)
}

func (s *GormTokenStore) findToken(ctx context.Context, query string, value string) (oauth2.TokenInfo, error) {
	var token internalmodels.OAuthToken
	if err := s.db.WithContext(ctx).Where(query, value).First(&token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return tokenInfo(&token), nil
}

func tokenInfo(token *internalmodels.OAuthToken) *models.Token {
	info := &models.Token{
		ClientID:        token.ClientID,
		Access:          token.AccessToken,
		AccessCreateAt:  token.CreatedAt,
		AccessExpiresIn: token.ExpiresAt.Sub(token.CreatedAt),
		Scope:           token.Scopes,
	}
	if token.UserID != nil {
		info.UserID = *token.UserID
	}
	if token.RefreshToken != nil {
		info.Refresh = *token.RefreshToken
		info.RefreshCreateAt = token.CreatedAt
		if token.RefreshExpiresAt != nil {
			info.RefreshExpiresIn = token.RefreshExpiresAt.Sub(token.CreatedAt)
		}
	}
	return info
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
