package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/franciscosanchezn/gin-recipe-api/internal/database"
	"github.com/franciscosanchezn/gin-recipe-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func init() {
	models.BcryptCost = bcrypt.MinCost
}

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))
	return db
}

func TestLoadFixtures(t *testing.T) {
	data, err := loadFixtures("fixtures/recipes.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, data.Recipes)

	first := data.Recipes[0]
	assert.Equal(t, "Tomato fish stew", first.RecipeName)
	input, err := first.input()
	require.NoError(t, err)
	assert.Equal(t, 20, *input.CookingTime)
	assert.Len(t, input.IngredientList, 4)
	assert.JSONEq(t, `["Chop the tomatoes and onion.","Simmer the tomatoes with stock for 10 minutes.","Add the fish and cook until it flakes."]`, string(input.Instructions))

	_, err = parseFixtures(strings.NewReader("recipes: [unterminated"))
	assert.Error(t, err)
}

func TestSeedRecipes(t *testing.T) {
	db := setupTestDB(t)
	data, err := loadFixtures("fixtures/recipes.yaml")
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, seedRecipes(context.Background(), db, "sqlite3", data, &out))

	var recipes int64
	require.NoError(t, db.Model(&models.Recipe{}).Count(&recipes).Error)
	assert.Equal(t, int64(len(data.Recipes)), recipes)
	assert.Contains(t, out.String(), `Seeded recipe "Tomato fish stew"`)

	// cup is shared by two recipes but stored once
	var cups int64
	require.NoError(t, db.Model(&models.MeasurementUnit{}).Where("measurement_description = ?", "cup").Count(&cups).Error)
	assert.Equal(t, int64(1), cups)

	out.Reset()
	require.NoError(t, seedRecipes(context.Background(), db, "sqlite3", data, &out))
	assert.Contains(t, out.String(), "already seeded")
	require.NoError(t, db.Model(&models.Recipe{}).Count(&recipes).Error)
	assert.Equal(t, int64(len(data.Recipes)), recipes)
}

func TestCreateDevClient(t *testing.T) {
	db := setupTestDB(t)
	var out bytes.Buffer

	require.NoError(t, createDevClient(context.Background(), db, models.RoleUser, &out))
	assert.Contains(t, out.String(), "Client ID: user-client")

	var client models.OAuthClient
	require.NoError(t, db.Take(&client, "id = ?", "user-client").Error)
	assert.True(t, client.VerifyPassword("user-secret-123"))

	var owner models.User
	require.NoError(t, db.Take(&owner, client.UserID).Error)
	assert.Equal(t, models.RoleUser, owner.Role)

	out.Reset()
	require.NoError(t, createDevClient(context.Background(), db, models.RoleUser, &out))
	assert.Contains(t, out.String(), "already exists")

	var clients int64
	require.NoError(t, db.Model(&models.OAuthClient{}).Count(&clients).Error)
	assert.Equal(t, int64(1), clients)
}
