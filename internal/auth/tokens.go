package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/franciscosanchezn/gin-recipe-api/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrWrongType    = errors.New("wrong token type")
)

// Identity is the caller described by a verified access token
type Identity struct {
	UserID   uint
	Role     string
	Username string
	// ClientID is set for tokens issued to OAuth2 clients
	ClientID string
}

// TokenIssuer signs and verifies the HS256 tokens used by the API. The same
// secret signs tokens issued by the OAuth2 server.
type TokenIssuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewTokenIssuer(secret string, accessTTL, refreshTTL time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

func (t *TokenIssuer) AccessTTL() time.Duration {
	return t.accessTTL
}

func (t *TokenIssuer) RefreshTTL() time.Duration {
	return t.refreshTTL
}

// accessClaims builds the claims shared by login tokens and OAuth2 client tokens
func accessClaims(userID, role, username string, issuedAt, expiresAt time.Time) jwt.MapClaims {
	claims := jwt.MapClaims{
		"uid":  userID,
		"role": role,
		"typ":  tokenTypeAccess,
		"iat":  issuedAt.Unix(),
		"exp":  expiresAt.Unix(),
	}
	if username != "" {
		claims["username"] = username
	}
	return claims
}

// IssueAccessToken returns a short-lived token carrying the user's id and role
func (t *TokenIssuer) IssueAccessToken(user *models.User) (string, error) {
	now := t.now()
	role := user.Role
	if role == "" {
		role = models.RoleUser
	}
	claims := accessClaims(strconv.FormatUint(uint64(user.ID), 10), role, user.DisplayName(), now, now.Add(t.accessTTL))
	return t.sign(claims)
}

// IssueRefreshToken returns a long-lived token that can only be exchanged for access tokens
func (t *TokenIssuer) IssueRefreshToken(user *models.User) (string, error) {
	now := t.now()
	claims := jwt.MapClaims{
		"uid": strconv.FormatUint(uint64(user.ID), 10),
		"typ": tokenTypeRefresh,
		"iat": now.Unix(),
		"exp": now.Add(t.refreshTTL).Unix(),
	}
	return t.sign(claims)
}

func (t *TokenIssuer) sign(claims jwt.MapClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// VerifyAccessToken validates signature and expiry and returns the caller identity.
// Refresh tokens are rejected.
func (t *TokenIssuer) VerifyAccessToken(tokenString string) (*Identity, error) {
	claims, err := t.parse(tokenString)
	if err != nil {
		return nil, err
	}
	if typ, _ := claims["typ"].(string); typ == tokenTypeRefresh {
		return nil, ErrWrongType
	}

	userID, err := claimUserID(claims)
	if err != nil {
		return nil, err
	}

	identity := &Identity{UserID: userID}
	identity.Role, _ = claims["role"].(string)
	identity.Username, _ = claims["username"].(string)
	identity.ClientID, _ = claims["aud"].(string)
	if identity.Role == "" {
		identity.Role = models.RoleUser
	}
	return identity, nil
}

// VerifyRefreshToken returns the user id of a valid refresh token
func (t *TokenIssuer) VerifyRefreshToken(tokenString string) (uint, error) {
	claims, err := t.parse(tokenString)
	if err != nil {
		return 0, err
	}
	if typ, _ := claims["typ"].(string); typ != tokenTypeRefresh {
		return 0, ErrWrongType
	}
	return claimUserID(claims)
}

func (t *TokenIssuer) parse(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// claimUserID accepts the uid claim as a string or a JSON number
func claimUserID(claims jwt.MapClaims) (uint, error) {
	switch uid := claims["uid"].(type) {
	case string:
		id, err := strconv.ParseUint(uid, 10, 64)
		if err != nil || id == 0 {
			return 0, fmt.Errorf("%w: bad uid claim", ErrInvalidToken)
		}
		return uint(id), nil
	case float64:
		if uid <= 0 {
			return 0, fmt.Errorf("%w: bad uid claim", ErrInvalidToken)
		}
		return uint(uid), nil
	default:
		return 0, fmt.Errorf("%w: missing uid claim", ErrInvalidToken)
	}
}
