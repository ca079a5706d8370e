package services

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/franciscosanchezn/gin-recipe-api/internal/models"
)

// RecipeRow is one row of the recipe detail join: recipe, ingredient line, ingredient and optional unit
type RecipeRow struct {
	ID            uint           `db:"id"`
	RecipeName    string         `db:"recipe_name"`
	PrepTime      sql.NullInt64  `db:"prep_time"`
	CookingTime   int            `db:"cooking_time"`
	RecipeImage   sql.NullString `db:"recipe_image"`
	MealType      sql.NullString `db:"meal_type"`
	CreatedBy     sql.NullInt64  `db:"created_by"`
	Instructions  []byte         `db:"instructions"`
	Amount        float64        `db:"amount"`
	MeasurementID sql.NullInt64  `db:"measurement_id"`
	Measurement   sql.NullString `db:"measurement"`
	IngredientID  uint           `db:"ingredient_id"`
	Ingredient    string         `db:"ingredient"`
}

// IngredientItem is one ingredient line of a formatted recipe
type IngredientItem struct {
	Amount        float64 `json:"amount"`
	MeasurementID *uint   `json:"measurementId"`
	Measurement   *string `json:"measurement"`
	IngredientID  uint    `json:"ingredientId"`
	Ingredient    string  `json:"ingredient"`
}

// FormattedRecipe is the nested, human readable representation of a recipe
type FormattedRecipe struct {
	ID           uint             `json:"id"`
	RecipeName   string           `json:"recipeName"`
	PrepTime     string           `json:"prepTime"`
	CookingTime  string           `json:"cookingTime"`
	RecipeImage  *string          `json:"recipeImage"`
	MealType     *string          `json:"mealType"`
	Instructions json.RawMessage  `json:"instructions"`
	CreatedBy    *uint            `json:"createdBy,omitempty"`
	Ingredients  []IngredientItem `json:"ingredients"`
}

// FormatRecipe folds the join rows of a single recipe into one nested object.
// Rows must all belong to the same recipe and arrive in ingredient line order.
func FormatRecipe(rows []RecipeRow) (*FormattedRecipe, error) {
	if len(rows) == 0 {
		return nil, models.NewNotFoundError("No recipe found")
	}

	first := rows[0]
	recipe := &FormattedRecipe{
		ID:           first.ID,
		RecipeName:   first.RecipeName,
		PrepTime:     formatPrepTime(first.PrepTime),
		CookingTime:  fmt.Sprintf("%d minutes", first.CookingTime),
		RecipeImage:  nullString(first.RecipeImage),
		MealType:     nullString(first.MealType),
		Instructions: rawInstructions(first.Instructions),
		CreatedBy:    nullUint(first.CreatedBy),
		Ingredients:  make([]IngredientItem, 0, len(rows)),
	}

	for _, row := range rows {
		recipe.Ingredients = append(recipe.Ingredients, IngredientItem{
			Amount:        row.Amount,
			MeasurementID: nullUint(row.MeasurementID),
			Measurement:   nullString(row.Measurement),
			IngredientID:  row.IngredientID,
			Ingredient:    row.Ingredient,
		})
	}
	return recipe, nil
}

// formatPrepTime keeps singular "minute" for values up to 1
func formatPrepTime(prep sql.NullInt64) string {
	if !prep.Valid {
		return ""
	}
	if prep.Int64 > 1 {
		return fmt.Sprintf("%d minutes", prep.Int64)
	}
	return fmt.Sprintf("%d minute", prep.Int64)
}

func rawInstructions(b []byte) json.RawMessage {
	if len(b) == 0 || !json.Valid(b) {
		return json.RawMessage("null")
	}
	return json.RawMessage(b)
}

func nullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}

func nullUint(n sql.NullInt64) *uint {
	if !n.Valid {
		return nil
	}
	v := uint(n.Int64)
	return &v
}
