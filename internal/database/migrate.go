package database

import (
	"fmt"

	"github.com/franciscosanchezn/gin-recipe-api/internal/models"
	"gorm.io/gorm"
)

// Models lists every table owned by the application, in dependency order
func Models() []any {
	return []any{
		&models.User{},
		&models.Recipe{},
		&models.Ingredient{},
		&models.MeasurementUnit{},
		&models.RecipeIngredient{},
		&models.UserFavoriteRecipe{},
		&models.UserGrocery{},
		&models.OAuthClient{},
		&models.OAuthCode{},
		&models.OAuthToken{},
	}
}

// Migrate creates or updates the schema for all application tables
func Migrate(db *gorm.DB) error {
	log.Info("Running database migrations")
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	log.Info("Database migrations completed")
	return nil
}
