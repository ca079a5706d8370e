package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/franciscosanchezn/gin-recipe-api/internal/database"
	"github.com/franciscosanchezn/gin-recipe-api/internal/models"
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

	// every connection to :memory: is a separate database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

type testServices struct {
	db          *gorm.DB
	ingredients IngredientService
	recipes     RecipeService
	users       UserService
}

func setupServices(t *testing.T) testServices {
	db := setupTestDB(t)
	sqlxDB, err := database.NewSQLX(db, "sqlite3")
	require.NoError(t, err)

	ingredients := NewIngredientService(db)
	return testServices{
		db:          db,
		ingredients: ingredients,
		recipes:     NewRecipeService(db, NewRecipeReader(sqlxDB), ingredients),
		users:       NewUserService(db),
	}
}

func intPtr(v int) *int {
	return &v
}

func strPtr(v string) *string {
	return &v
}

func createTestUser(t *testing.T, db *gorm.DB, username, role string) *models.User {
	user := &models.User{Username: strPtr(username), Password: "password", FirstName: username, Role: role}
	require.NoError(t, user.HashPassword())
	require.NoError(t, db.Create(user).Error)
	return user
}

func newRecipeInput(name string, cookingTime int, lines ...IngredientLine) CreateRecipeInput {
	if len(lines) == 0 {
		lines = []IngredientLine{{Amount: "1", Ingredient: "salt"}}
	}
	return CreateRecipeInput{
		RecipeName:     name,
		PrepTime:       intPtr(5),
		CookingTime:    intPtr(cookingTime),
		Instructions:   json.RawMessage(`"Mix and cook"`),
		MealType:       strPtr("dinner"),
		IngredientList: lines,
	}
}

func createTestRecipe(t *testing.T, svc testServices, actor Actor, input CreateRecipeInput) uint {
	created, err := svc.recipes.CreateRecipe(context.Background(), actor, input)
	require.NoError(t, err)
	return created.ID
}
