package services

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/franciscosanchezn/gin-recipe-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// IngredientLine is one free-text ingredient line as submitted by clients,
// e.g. {"amount": "1/2", "measurement": "cup", "ingredient": "sugar"}
type IngredientLine struct {
	Amount      string `json:"amount" binding:"required"`
	Measurement string `json:"measurement"`
	Ingredient  string `json:"ingredient" binding:"required"`
}

// RecipeIngredientResult is the persisted junction row with resolved ids
type RecipeIngredientResult struct {
	RecipeID      uint    `json:"recipeId"`
	MeasurementID *uint   `json:"measurementId"`
	IngredientID  uint    `json:"ingredientId"`
	Amount        float64 `json:"amount"`
}

// IngredientService resolves ingredient and measurement names to rows and links
// them to recipes. Every method takes the connection to run on so callers can
// pass a transaction; nil means the service's own connection.
type IngredientService interface {
	// FindOrCreateIngredient returns the ingredient with the exact name, creating it if needed
	FindOrCreateIngredient(ctx context.Context, tx *gorm.DB, name string) (*models.Ingredient, error)
	// FindOrCreateMeasurement returns nil for an empty description, otherwise the matching unit
	FindOrCreateMeasurement(ctx context.Context, tx *gorm.DB, description string) (*models.MeasurementUnit, error)
	// BuildRecipeIngredient resolves the line's measurement and ingredient and inserts the junction row
	BuildRecipeIngredient(ctx context.Context, tx *gorm.DB, recipeID uint, line IngredientLine) (RecipeIngredientResult, error)
}

type ingredientService struct {
	db *gorm.DB
}

func NewIngredientService(db *gorm.DB) IngredientService {
	return &ingredientService{db: db}
}

func (s *ingredientService) conn(ctx context.Context, tx *gorm.DB) *gorm.DB {
	if tx == nil {
		tx = s.db
	}
	return tx.WithContext(ctx)
}

func (s *ingredientService) FindOrCreateIngredient(ctx context.Context, tx *gorm.DB, name string) (*models.Ingredient, error) {
	if name == "" {
		return nil, models.NewValidationError("Not a valid ingredient")
	}

	ingredient := models.Ingredient{Name: name}
	if err := findOrCreate(s.conn(ctx, tx), &ingredient, "ingredient_name = ?", name); err != nil {
		return nil, fmt.Errorf("find or create ingredient %q: %w", name, err)
	}
	return &ingredient, nil
}

func (s *ingredientService) FindOrCreateMeasurement(ctx context.Context, tx *gorm.DB, description string) (*models.MeasurementUnit, error) {
	if description == "" {
		return nil, nil
	}

	unit := models.MeasurementUnit{Description: description}
	if err := findOrCreate(s.conn(ctx, tx), &unit, "measurement_description = ?", description); err != nil {
		return nil, fmt.Errorf("find or create measurement %q: %w", description, err)
	}
	return &unit, nil
}

// findOrCreate looks row up by the natural key condition, inserting it when
// missing. The insert ignores unique conflicts and re-selects, so concurrent
// callers converge on the same row.
func findOrCreate[T any](db *gorm.DB, row *T, query string, key string) error {
	// Find with Limit keeps the miss out of the gorm logger
	found := db.Where(query, key).Limit(1).Find(row)
	if found.Error != nil {
		return found.Error
	}
	if found.RowsAffected > 0 {
		return nil
	}

	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(row).Error; err != nil {
		return err
	}

	var canonical T
	found = db.Where(query, key).Limit(1).Find(&canonical)
	if found.Error != nil {
		return found.Error
	}
	if found.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	*row = canonical
	return nil
}

func (s *ingredientService) BuildRecipeIngredient(ctx context.Context, tx *gorm.DB, recipeID uint, line IngredientLine) (RecipeIngredientResult, error) {
	if recipeID == 0 {
		return RecipeIngredientResult{}, models.NewValidationError("Not a valid id")
	}

	// Validate the amount before any row gets created
	amount, err := ParseAmount(line.Amount)
	if err != nil {
		return RecipeIngredientResult{}, err
	}

	measurement, err := s.FindOrCreateMeasurement(ctx, tx, strings.TrimSpace(line.Measurement))
	if err != nil {
		return RecipeIngredientResult{}, err
	}

	ingredient, err := s.FindOrCreateIngredient(ctx, tx, strings.TrimSpace(line.Ingredient))
	if err != nil {
		return RecipeIngredientResult{}, err
	}

	row := models.RecipeIngredient{
		RecipeID:     recipeID,
		IngredientID: ingredient.ID,
		Amount:       amount,
	}
	if measurement != nil {
		row.MeasurementID = &measurement.ID
	}

	if err := s.conn(ctx, tx).Create(&row).Error; err != nil {
		return RecipeIngredientResult{}, fmt.Errorf("insert recipe ingredient: %w", err)
	}

	return RecipeIngredientResult{
		RecipeID:      row.RecipeID,
		MeasurementID: row.MeasurementID,
		IngredientID:  row.IngredientID,
		Amount:        row.Amount,
	}, nil
}

// ParseAmount converts a recipe amount such as "2", "0.25", "3/4" or "1 1/2"
// into a decimal. Fractions are reduced left to right by division.
func ParseAmount(amount string) (float64, error) {
	amount = strings.Join(strings.Fields(amount), " ")
	amount = strings.ReplaceAll(strings.ReplaceAll(amount, " /", "/"), "/ ", "/")
	if amount == "" {
		return 0, models.NewValidationError(fmt.Sprintf("invalid amount %q", amount))
	}

	// Mixed number: whole part followed by a fraction
	if whole, fraction, ok := strings.Cut(amount, " "); ok && strings.Contains(fraction, "/") {
		w, err := parseNumber(amount, whole)
		if err != nil {
			return 0, err
		}
		f, err := ParseAmount(fraction)
		if err != nil {
			return 0, err
		}
		return w + f, nil
	}

	if !strings.Contains(amount, "/") {
		return parseNumber(amount, amount)
	}

	parts := strings.Split(amount, "/")
	result, err := parseNumber(amount, parts[0])
	if err != nil {
		return 0, err
	}
	for _, part := range parts[1:] {
		divisor, err := parseNumber(amount, part)
		if err != nil {
			return 0, err
		}
		if divisor == 0 {
			return 0, models.NewValidationError(fmt.Sprintf("invalid amount %q: division by zero", amount))
		}
		result /= divisor
	}
	return result, nil
}

func parseNumber(amount, part string) (float64, error) {
	value, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, models.NewValidationError(fmt.Sprintf("invalid amount %q", amount))
	}
	return value, nil
}
