package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/franciscosanchezn/gin-recipe-api/internal/models"
	"github.com/go-oauth2/oauth2/v4"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CustomJWTAccessGenerate issues OAuth2 access tokens as JWTs with the same
// uid/role claims as login tokens, so one middleware accepts both.
type CustomJWTAccessGenerate struct {
	SignedKey    []byte
	SignedMethod jwt.SigningMethod
	DB           *gorm.DB
}

func NewCustomJWTAccessGenerate(key []byte, method jwt.SigningMethod, db *gorm.DB) *CustomJWTAccessGenerate {
	return &CustomJWTAccessGenerate{
		SignedKey:    key,
		SignedMethod: method,
		DB:           db,
	}
}

// Token is called by the go-oauth2 manager for every access token it issues
func (g *CustomJWTAccessGenerate) Token(ctx context.Context, data *oauth2.GenerateBasic, isGenRefresh bool) (string, string, error) {
	// client_credentials carries no user in the request; the client's owner is used instead
	userID := data.UserID
	if userID == "" {
		userID = data.Client.GetUserID()
	}
	if userID == "" {
		return "", "", errors.New("cannot generate token: no user ID available")
	}
	data.TokenInfo.SetUserID(userID)

	user, err := g.loadUser(ctx, userID)
	if err != nil {
		return "", "", err
	}
	role := user.Role
	if role == "" {
		role = models.RoleUser
	}

	createdAt := data.TokenInfo.GetAccessCreateAt()
	claims := accessClaims(userID, role, user.DisplayName(), createdAt, createdAt.Add(data.TokenInfo.GetAccessExpiresIn()))
	claims["aud"] = data.Client.GetID()
	// refreshing within the same second must still produce a distinct token
	claims["jti"] = uuid.NewString()
	if scope := data.TokenInfo.GetScope(); scope != "" {
		claims["scope"] = scope
	}

	access, err := jwt.NewWithClaims(g.SignedMethod, claims).SignedString(g.SignedKey)
	if err != nil {
		return "", "", fmt.Errorf("sign access token: %w", err)
	}

	refresh := ""
	if isGenRefresh {
		refreshClaims := jwt.MapClaims{
			"uid": userID,
			"aud": data.Client.GetID(),
			"typ": tokenTypeRefresh,
			"jti": uuid.NewString(),
			"exp": data.TokenInfo.GetRefreshCreateAt().Add(data.TokenInfo.GetRefreshExpiresIn()).Unix(),
		}
		refresh, err = jwt.NewWithClaims(g.SignedMethod, refreshClaims).SignedString(g.SignedKey)
		if err != nil {
			return "", "", fmt.Errorf("sign refresh token: %w", err)
		}
	}

	return access, refresh, nil
}

// loadUser reads the token owner so the role claim always reflects the database
func (g *CustomJWTAccessGenerate) loadUser(ctx context.Context, userIDStr string) (*models.User, error) {
	userID, err := strconv.ParseUint(userIDStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID format: %w", err)
	}

	var user models.User
	if err := g.DB.WithContext(ctx).Take(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user with ID %d not found", userID)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &user, nil
}
