package auth

import (
	"testing"
	"time"

	"github.com/franciscosanchezn/gin-recipe-api/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUser() *models.User {
	username := "ada"
	return &models.User{ID: 42, Username: &username, Role: models.RoleAdmin}
}

func TestIssueAndVerifyAccessToken(t *testing.T) {
	issuer := newTestIssuer()

	token, err := issuer.IssueAccessToken(testUser())
	require.NoError(t, err)

	identity, err := issuer.VerifyAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), identity.UserID)
	assert.Equal(t, models.RoleAdmin, identity.Role)
	assert.Equal(t, "ada", identity.Username)
	assert.Empty(t, identity.ClientID)
}

func TestAccessTokenDefaultsRole(t *testing.T) {
	issuer := newTestIssuer()

	token, err := issuer.IssueAccessToken(&models.User{ID: 1, FirstName: "Grace"})
	require.NoError(t, err)

	identity, err := issuer.VerifyAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, identity.Role)
	assert.Equal(t, "Grace", identity.Username)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	issuer := newTestIssuer()

	refresh, err := issuer.IssueRefreshToken(testUser())
	require.NoError(t, err)

	userID, err := issuer.VerifyRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, uint(42), userID)

	_, err = issuer.VerifyAccessToken(refresh)
	assert.ErrorIs(t, err, ErrWrongType)

	access, err := issuer.IssueAccessToken(testUser())
	require.NoError(t, err)
	_, err = issuer.VerifyRefreshToken(access)
	assert.ErrorIs(t, err, ErrWrongType)
}

func TestVerifyRejectsBadTokens(t *testing.T) {
	issuer := newTestIssuer()

	t.Run("expired", func(t *testing.T) {
		expired := newTestIssuer()
		expired.now = func() time.Time { return time.Now().Add(-time.Hour) }
		token, err := expired.IssueAccessToken(testUser())
		require.NoError(t, err)

		_, err = issuer.VerifyAccessToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewTokenIssuer("another-secret", time.Minute, time.Hour)
		token, err := other.IssueAccessToken(testUser())
		require.NoError(t, err)

		_, err = issuer.VerifyAccessToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := issuer.VerifyAccessToken("not-a-jwt")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("no expiry", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"uid": "1"}).SignedString([]byte(testSecret))
		require.NoError(t, err)

		_, err = issuer.VerifyAccessToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("numeric uid", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"uid": 9,
			"exp": time.Now().Add(time.Minute).Unix(),
		}).SignedString([]byte(testSecret))
		require.NoError(t, err)

		identity, err := issuer.VerifyAccessToken(token)
		require.NoError(t, err)
		assert.Equal(t, uint(9), identity.UserID)
	})

	t.Run("missing uid", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"exp": time.Now().Add(time.Minute).Unix(),
		}).SignedString([]byte(testSecret))
		require.NoError(t, err)

		_, err = issuer.VerifyAccessToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
