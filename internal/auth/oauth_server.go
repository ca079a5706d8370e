package auth

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/franciscosanchezn/gin-recipe-api/internal/models"
	"github.com/go-oauth2/oauth2/v4"
	oauth2errors "github.com/go-oauth2/oauth2/v4/errors"
	"github.com/go-oauth2/oauth2/v4/manage"
	"github.com/go-oauth2/oauth2/v4/server"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// AuthorizationCodeTTL bounds how long a code from /oauth/authorize can be exchanged
const AuthorizationCodeTTL = 10 * time.Minute

var supportedGrantTypes = []oauth2.GrantType{
	oauth2.AuthorizationCode,
	oauth2.ClientCredentials,
	oauth2.Refreshing,
}

type OAuthService struct {
	server *server.Server
	db     *gorm.DB
	log    *logrus.Logger
}

// NewOAuthService builds the go-oauth2 server. Access tokens are signed with
// the issuer's secret so they pass the same JWT middleware as login tokens.
func NewOAuthService(db *gorm.DB, issuer *TokenIssuer) *OAuthService {
	manager := manage.NewDefaultManager()
	manager.SetAuthorizeCodeExp(AuthorizationCodeTTL)
	manager.SetClientTokenCfg(&manage.Config{AccessTokenExp: issuer.AccessTTL()})
	manager.SetAuthorizeCodeTokenCfg(&manage.Config{
		AccessTokenExp:    issuer.AccessTTL(),
		RefreshTokenExp:   issuer.RefreshTTL(),
		IsGenerateRefresh: true,
	})
	manager.SetRefreshTokenCfg(&manage.RefreshingConfig{
		AccessTokenExp:     issuer.AccessTTL(),
		RefreshTokenExp:    issuer.RefreshTTL(),
		IsGenerateRefresh:  true,
		IsResetRefreshTime: true,
		IsRemoveAccess:     true,
		IsRemoveRefreshing: true,
	})

	manager.MapAccessGenerate(NewCustomJWTAccessGenerate(issuer.secret, jwt.SigningMethodHS256, db))
	manager.MustTokenStorage(NewGormTokenStore(db), nil)
	manager.MapClientStorage(NewGormClientStore(db))

	srv := server.NewDefaultServer(manager)
	srv.SetAllowedGrantType(supportedGrantTypes...)
	srv.SetClientInfoHandler(server.ClientFormHandler)

	o := &OAuthService{
		server: srv,
		db:     db,
		log:    logrus.StandardLogger(),
	}
	srv.SetClientAuthorizedHandler(o.clientAuthorized)
	srv.SetInternalErrorHandler(func(err error) *oauth2errors.Response {
		o.log.WithError(err).Error("oauth2 internal error")
		return nil
	})
	return o
}

func (o *OAuthService) GetServer() *server.Server {
	return o.server
}

// clientAuthorized restricts each client to the grant types it was registered with.
// Unknown clients pass through so the manager reports invalid_client.
func (o *OAuthService) clientAuthorized(clientID string, grant oauth2.GrantType) (bool, error) {
	var client models.OAuthClient
	err := o.db.WithContext(context.Background()).Select("grant_types").Where("id = ?", clientID).First(&client).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return clientAllowsGrant(&client, grant), nil
}

func clientAllowsGrant(client *models.OAuthClient, grant oauth2.GrantType) bool {
	grants := strings.Fields(client.GrantTypes)
	if len(grants) == 0 {
		grants = []string{oauth2.ClientCredentials.String()}
	}
	if slices.Contains(grants, grant.String()) {
		return true
	}
	// authorization_code clients are handed refresh tokens and may redeem them
	return grant == oauth2.Refreshing && slices.Contains(grants, oauth2.AuthorizationCode.String())
}

func isSupportedGrant(grant string) bool {
	return slices.Contains(supportedGrantTypes, oauth2.GrantType(grant))
}
