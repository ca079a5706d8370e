package auth

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/franciscosanchezn/gin-recipe-api/internal/database"
	"github.com/franciscosanchezn/gin-recipe-api/internal/models"
	"github.com/go-oauth2/oauth2/v4"
	oauthmodels "github.com/go-oauth2/oauth2/v4/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testSecret = "test-jwt-secret-key-32-characters"

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

func newTestIssuer() *TokenIssuer {
	return NewTokenIssuer(testSecret, 15*time.Minute, 24*time.Hour)
}

func createTestUser(t *testing.T, db *gorm.DB, username, role string) *models.User {
	user := &models.User{Username: &username, FirstName: username, Role: role}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestClient(t *testing.T, db *gorm.DB, client models.OAuthClient, plainSecret string) *models.OAuthClient {
	hashedSecret, err := bcrypt.GenerateFromPassword([]byte(plainSecret), bcrypt.MinCost)
	require.NoError(t, err)
	client.Secret = string(hashedSecret)
	require.NoError(t, db.Create(&client).Error)
	return &client
}

func TestOAuthServerInitialization(t *testing.T) {
	db := setupTestDB(t)

	oauthService := NewOAuthService(db, newTestIssuer())
	assert.NotNil(t, oauthService)
	assert.NotNil(t, oauthService.GetServer())
}

func TestJWTTokenGeneration(t *testing.T) {
	db := setupTestDB(t)
	issuer := newTestIssuer()
	oauthService := NewOAuthService(db, issuer)

	// the client's owner becomes the token subject
	owner := createTestUser(t, db, "owner", models.RoleAdmin)
	createTestClient(t, db, models.OAuthClient{
		ID:         "test_client",
		Domain:     "http://localhost",
		Scopes:     "read write",
		UserID:     owner.ID,
		GrantTypes: "client_credentials",
	}, "test_secret")

	tokenInfo, err := oauthService.GetServer().Manager.GenerateAccessToken(context.Background(), oauth2.ClientCredentials, &oauth2.TokenGenerateRequest{
		ClientID:     "test_client",
		ClientSecret: "test_secret",
		Scope:        "read",
	})
	require.NoError(t, err)
	require.NotEmpty(t, tokenInfo.GetAccess())

	identity, err := issuer.VerifyAccessToken(tokenInfo.GetAccess())
	require.NoError(t, err)
	assert.Equal(t, owner.ID, identity.UserID)
	assert.Equal(t, models.RoleAdmin, identity.Role)
	assert.Equal(t, "owner", identity.Username)
	assert.Equal(t, "test_client", identity.ClientID)

	var stored models.OAuthToken
	require.NoError(t, db.Where("access_token = ?", tokenInfo.GetAccess()).First(&stored).Error)
	require.NotNil(t, stored.UserID)
	assert.Equal(t, strconv.FormatUint(uint64(owner.ID), 10), *stored.UserID)
	assert.Equal(t, "read", stored.Scopes)
	assert.Nil(t, stored.RefreshToken)
}

func TestJWTTokenGenerationWithoutOwner(t *testing.T) {
	db := setupTestDB(t)
	oauthService := NewOAuthService(db, newTestIssuer())
	createTestClient(t, db, models.OAuthClient{ID: "orphan", GrantTypes: "client_credentials"}, "secret")

	_, err := oauthService.GetServer().Manager.GenerateAccessToken(context.Background(), oauth2.ClientCredentials, &oauth2.TokenGenerateRequest{
		ClientID:     "orphan",
		ClientSecret: "secret",
	})
	assert.Error(t, err)
}

func TestClientStoreIntegration(t *testing.T) {
	db := setupTestDB(t)
	createTestClient(t, db, models.OAuthClient{
		ID:     "integration_test_client",
		Domain: "http://localhost:8080",
		Scopes: "read write",
		UserID: 7,
	}, "integration_test_secret")

	clientStore := NewGormClientStore(db)
	ctx := context.Background()

	retrievedClient, err := clientStore.GetByID(ctx, "integration_test_client")
	require.NoError(t, err)
	require.NotNil(t, retrievedClient)
	assert.Equal(t, "7", retrievedClient.GetUserID())

	verifier, ok := retrievedClient.(oauth2.ClientPasswordVerifier)
	require.True(t, ok)
	assert.True(t, verifier.VerifyPassword("integration_test_secret"))
	assert.False(t, verifier.VerifyPassword("wrong"))

	missing, err := clientStore.GetByID(ctx, "missing")
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

func TestTokenStoreCodes(t *testing.T) {
	db := setupTestDB(t)
	store := NewGormTokenStore(db)
	ctx := context.Background()
	now := time.Now()

	info := oauthmodels.NewToken()
	info.SetClientID("web")
	info.SetUserID("3")
	info.SetRedirectURI("http://localhost:3000/cb")
	info.SetScope("read")
	info.SetCode("abc")
	info.SetCodeCreateAt(now)
	info.SetCodeExpiresIn(AuthorizationCodeTTL)
	require.NoError(t, store.Create(ctx, info))

	got, err := store.GetByCode(ctx, "abc")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "web", got.GetClientID())
	assert.Equal(t, "3", got.GetUserID())
	assert.Equal(t, "http://localhost:3000/cb", got.GetRedirectURI())
	assert.WithinDuration(t, now.Add(AuthorizationCodeTTL), got.GetCodeCreateAt().Add(got.GetCodeExpiresIn()), time.Second)

	require.NoError(t, store.RemoveByCode(ctx, "abc"))
	got, err = store.GetByCode(ctx, "abc")
	assert.NoError(t, err)
	assert.Nil(t, got)

	t.Run("expired codes are ignored", func(t *testing.T) {
		expired := oauthmodels.NewToken()
		expired.SetClientID("web")
		expired.SetUserID("3")
		expired.SetCode("old")
		expired.SetCodeCreateAt(now.Add(-time.Hour))
		expired.SetCodeExpiresIn(time.Minute)
		require.NoError(t, store.Create(ctx, expired))

		got, err := store.GetByCode(ctx, "old")
		assert.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestTokenStoreAccessAndRefresh(t *testing.T) {
	db := setupTestDB(t)
	store := NewGormTokenStore(db)
	ctx := context.Background()
	now := time.Now()

	info := oauthmodels.NewToken()
	info.SetClientID("web")
	info.SetAccess("access-1")
	info.SetAccessCreateAt(now)
	info.SetAccessExpiresIn(time.Hour)
	info.SetRefresh("refresh-1")
	info.SetRefreshCreateAt(now)
	info.SetRefreshExpiresIn(24 * time.Hour)
	require.NoError(t, store.Create(ctx, info))

	byAccess, err := store.GetByAccess(ctx, "access-1")
	require.NoError(t, err)
	require.NotNil(t, byAccess)
	assert.Equal(t, "", byAccess.GetUserID())
	assert.Equal(t, "refresh-1", byAccess.GetRefresh())
	assert.Equal(t, time.Hour, byAccess.GetAccessExpiresIn().Round(time.Second))

	byRefresh, err := store.GetByRefresh(ctx, "refresh-1")
	require.NoError(t, err)
	require.NotNil(t, byRefresh)
	assert.Equal(t, "access-1", byRefresh.GetAccess())
	assert.Equal(t, 24*time.Hour, byRefresh.GetRefreshExpiresIn().Round(time.Second))

	require.NoError(t, store.RemoveByRefresh(ctx, "refresh-1"))
	gone, err := store.GetByAccess(ctx, "access-1")
	assert.NoError(t, err)
	assert.Nil(t, gone)
}

func TestClientAllowsGrant(t *testing.T) {
	assert.True(t, clientAllowsGrant(&models.OAuthClient{}, oauth2.ClientCredentials))
	assert.False(t, clientAllowsGrant(&models.OAuthClient{}, oauth2.AuthorizationCode))
	assert.True(t, clientAllowsGrant(&models.OAuthClient{GrantTypes: "authorization_code client_credentials"}, oauth2.AuthorizationCode))
	assert.False(t, clientAllowsGrant(&models.OAuthClient{GrantTypes: "authorization_code"}, oauth2.ClientCredentials))
	assert.True(t, clientAllowsGrant(&models.OAuthClient{GrantTypes: "authorization_code"}, oauth2.Refreshing))
	assert.False(t, clientAllowsGrant(&models.OAuthClient{GrantTypes: "client_credentials"}, oauth2.Refreshing))
}
