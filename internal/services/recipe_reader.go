package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// RecipePageSize is the fixed number of recipes returned per listing page
const RecipePageSize = 10

// RecipeFilter holds the optional listing filters taken from the query string
type RecipeFilter struct {
	// RecipeName matches name or meal type, case-insensitive and partial
	RecipeName string `form:"recipeName"`
	MealType   string `form:"mealType"`
	// CookingTime is an inclusive upper bound in minutes
	CookingTime *int `form:"cookingTime" binding:"omitempty,min=0"`
	Skip        int  `form:"skip" binding:"min=0"`
}

// RecipeSummary is one item of a recipe listing
type RecipeSummary struct {
	ID          uint    `db:"id" json:"id"`
	RecipeName  string  `db:"recipe_name" json:"recipeName"`
	PrepTime    *int    `db:"prep_time" json:"prepTime"`
	CookingTime int     `db:"cooking_time" json:"cookingTime"`
	RecipeImage *string `db:"recipe_image" json:"recipeImage"`
	MealType    *string `db:"meal_type" json:"mealType"`
	// IsFavorite is only set for authenticated listings
	IsFavorite *bool `db:"is_favorite" json:"isFavorite,omitempty"`
}

// RecipeReader runs the hand-written read queries behind recipe listing and detail views
type RecipeReader interface {
	// RecipeRows returns the join rows for one recipe ordered by ingredient line
	RecipeRows(ctx context.Context, id uint) ([]RecipeRow, error)
	// ListRecipes returns one page of recipes ordered by id. When userID is set
	// each item reports whether that user marked it as favorite.
	ListRecipes(ctx context.Context, filter RecipeFilter, userID *uint) ([]RecipeSummary, error)
}

type recipeReader struct {
	db *sqlx.DB
}

func NewRecipeReader(db *sqlx.DB) RecipeReader {
	return &recipeReader{db: db}
}

const recipeRowsQuery = `
SELECT r.id,
       r.recipe_name,
       r.prep_time,
       r.cooking_time,
       r.recipe_image,
       r.meal_type,
       r.created_by,
       r.instructions,
       ri.amount,
       mu.id AS measurement_id,
       mu.measurement_description AS measurement,
       i.id AS ingredient_id,
       i.ingredient_name AS ingredient
FROM recipes r
    INNER JOIN recipe_ingredients ri ON ri.recipe_id = r.id
    INNER JOIN ingredients i ON i.id = ri.ingredient_id
    LEFT JOIN measurement_units mu ON mu.id = ri.measurement_id
WHERE r.id = ?
ORDER BY ri.id`

func (r *recipeReader) RecipeRows(ctx context.Context, id uint) ([]RecipeRow, error) {
	var rows []RecipeRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(recipeRowsQuery), id); err != nil {
		return nil, fmt.Errorf("select recipe %d: %w", id, err)
	}
	return rows, nil
}

func (r *recipeReader) ListRecipes(ctx context.Context, filter RecipeFilter, userID *uint) ([]RecipeSummary, error) {
	columns := []string{"r.id", "r.recipe_name", "r.prep_time", "r.cooking_time", "r.recipe_image", "r.meal_type"}
	var args []any

	if userID != nil {
		columns = append(columns, "EXISTS (SELECT 1 FROM user_favorite_recipes f WHERE f.recipe_id = r.id AND f.user_id = ?) AS is_favorite")
		args = append(args, *userID)
	}

	where, whereArgs := buildRecipeFilter(filter)
	args = append(args, whereArgs...)
	args = append(args, RecipePageSize, filter.Skip)

	query := fmt.Sprintf("SELECT %s FROM recipes r %s ORDER BY r.id LIMIT ? OFFSET ?", strings.Join(columns, ", "), where)

	recipes := []RecipeSummary{}
	if err := r.db.SelectContext(ctx, &recipes, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	return recipes, nil
}

// buildRecipeFilter renders the WHERE clause for the listing filters
func buildRecipeFilter(filter RecipeFilter) (string, []any) {
	var parts []string
	var args []any

	if filter.RecipeName != "" {
		pattern := "%" + strings.ToLower(filter.RecipeName) + "%"
		parts = append(parts, "(LOWER(r.recipe_name) LIKE ? OR LOWER(r.meal_type) LIKE ?)")
		args = append(args, pattern, pattern)
	}
	if filter.MealType != "" {
		parts = append(parts, "r.meal_type = ?")
		args = append(args, filter.MealType)
	}
	if filter.CookingTime != nil {
		parts = append(parts, "r.cooking_time <= ?")
		args = append(args, *filter.CookingTime)
	}

	if len(parts) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(parts, " AND "), args
}
