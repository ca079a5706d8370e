package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/franciscosanchezn/gin-recipe-api/internal/database"
	"github.com/franciscosanchezn/gin-recipe-api/internal/models"
	"gorm.io/gorm"
)

// CreatedRecipe is returned after a recipe and its ingredient lines are stored
type CreatedRecipe struct {
	ID          uint                     `json:"id"`
	Ingredients []RecipeIngredientResult `json:"ingredients"`
}

// RecipeService orchestrates recipe reads and transactional writes
type RecipeService interface {
	// ListRecipes returns one page of recipes matching the filter
	ListRecipes(ctx context.Context, filter RecipeFilter, userID *uint) ([]RecipeSummary, error)
	// GetRecipe returns the nested representation of a recipe
	GetRecipe(ctx context.Context, id uint) (*FormattedRecipe, error)
	// CreateRecipe stores a recipe and all its ingredient lines in one transaction
	CreateRecipe(ctx context.Context, actor Actor, input CreateRecipeInput) (*CreatedRecipe, error)
	// UpdateRecipe applies a partial update and optionally replaces the ingredient lines
	UpdateRecipe(ctx context.Context, actor Actor, id uint, input UpdateRecipeInput) (*FormattedRecipe, error)
	// DeleteRecipe removes a recipe with its ingredient lines and favorites
	DeleteRecipe(ctx context.Context, actor Actor, id uint) error
}

type recipeService struct {
	db          *gorm.DB
	reader      RecipeReader
	ingredients IngredientService
}

func NewRecipeService(db *gorm.DB, reader RecipeReader, ingredients IngredientService) RecipeService {
	return &recipeService{db: db, reader: reader, ingredients: ingredients}
}

func (s *recipeService) ListRecipes(ctx context.Context, filter RecipeFilter, userID *uint) ([]RecipeSummary, error) {
	if filter.Skip < 0 {
		return nil, models.NewValidationError("Invalid query", "skip: must be 0 or greater")
	}
	return s.reader.ListRecipes(ctx, filter, userID)
}

func (s *recipeService) GetRecipe(ctx context.Context, id uint) (*FormattedRecipe, error) {
	rows, err := s.reader.RecipeRows(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, models.NewNotFoundError("No recipe: %d", id)
	}
	return FormatRecipe(rows)
}

func (s *recipeService) CreateRecipe(ctx context.Context, actor Actor, input CreateRecipeInput) (*CreatedRecipe, error) {
	if len(input.IngredientList) == 0 {
		return nil, models.NewValidationError("Invalid recipe", "ingredientList: at least one ingredient is required")
	}
	if input.CookingTime == nil {
		return nil, models.NewValidationError("Invalid recipe", "cookingTime: is required")
	}
	instructions, err := normalizeInstructions(input.Instructions)
	if err != nil {
		return nil, err
	}

	recipe := models.Recipe{
		RecipeName:   input.RecipeName,
		PrepTime:     input.PrepTime,
		CookingTime:  *input.CookingTime,
		RecipeImage:  input.RecipeImage,
		Instructions: instructions,
		MealType:     input.MealType,
	}
	if actor.UserID != 0 {
		recipe.CreatedBy = &actor.UserID
	}

	created := &CreatedRecipe{}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&recipe).Error; err != nil {
			return fmt.Errorf("insert recipe: %w", err)
		}
		created.ID = recipe.ID

		lines, err := s.buildLines(ctx, tx, recipe.ID, input.IngredientList)
		if err != nil {
			return err
		}
		created.Ingredients = lines
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *recipeService) UpdateRecipe(ctx context.Context, actor Actor, id uint, input UpdateRecipeInput) (*FormattedRecipe, error) {
	fields, err := input.fields()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 && input.Ingredients == nil {
		return nil, models.NewValidationError("No data provided")
	}
	if input.Ingredients != nil && len(input.Ingredients) == 0 {
		return nil, models.NewValidationError("Invalid recipe", "ingredients: at least one ingredient is required")
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		recipe, err := s.loadOwnedRecipe(tx, actor, id)
		if err != nil {
			return err
		}

		if len(fields) > 0 {
			fields["updated_at"] = time.Now()
			update, err := database.SQLForPartialUpdate(fields, recipeColumns)
			if err != nil {
				return err
			}
			query, args := update.Statement(recipe.TableName(), "id", recipe.ID)
			if err := tx.Exec(query, args...).Error; err != nil {
				return fmt.Errorf("update recipe %d: %w", id, err)
			}
		}

		if input.Ingredients != nil {
			if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
				return fmt.Errorf("delete ingredient lines of recipe %d: %w", id, err)
			}
			if _, err := s.buildLines(ctx, tx, recipe.ID, input.Ingredients); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetRecipe(ctx, id)
}

func (s *recipeService) DeleteRecipe(ctx context.Context, actor Actor, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		recipe, err := s.loadOwnedRecipe(tx, actor, id)
		if err != nil {
			return err
		}

		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return fmt.Errorf("delete ingredient lines of recipe %d: %w", id, err)
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.UserFavoriteRecipe{}).Error; err != nil {
			return fmt.Errorf("delete favorites of recipe %d: %w", id, err)
		}
		if err := tx.Delete(recipe).Error; err != nil {
			return fmt.Errorf("delete recipe %d: %w", id, err)
		}
		return nil
	})
}

// loadOwnedRecipe loads the recipe inside tx and checks the actor may modify it
func (s *recipeService) loadOwnedRecipe(tx *gorm.DB, actor Actor, id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := tx.Take(&recipe, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("No recipe: %d", id)
		}
		return nil, fmt.Errorf("load recipe %d: %w", id, err)
	}
	if !actor.CanModify(recipe.CreatedBy) {
		return nil, models.NewForbiddenError("You can only modify your own recipes")
	}
	return &recipe, nil
}

func (s *recipeService) buildLines(ctx context.Context, tx *gorm.DB, recipeID uint, lines []IngredientLine) ([]RecipeIngredientResult, error) {
	results := make([]RecipeIngredientResult, 0, len(lines))
	for _, line := range lines {
		result, err := s.ingredients.BuildRecipeIngredient(ctx, tx, recipeID, line)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, nil
}
