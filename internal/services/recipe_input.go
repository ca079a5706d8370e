package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/franciscosanchezn/gin-recipe-api/internal/models"
	"gorm.io/datatypes"
)

// IngredientList accepts either a JSON array of lines or a string holding that
// array, which is how multipart forms submit it.
type IngredientList []IngredientLine

func (l *IngredientList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var encoded string
		if err := json.Unmarshal(data, &encoded); err != nil {
			return err
		}
		data = []byte(encoded)
	}

	var lines []IngredientLine
	if err := json.Unmarshal(data, &lines); err != nil {
		return err
	}
	*l = lines
	return nil
}

// CreateRecipeInput is the payload for creating a recipe
type CreateRecipeInput struct {
	RecipeName     string          `json:"recipeName" binding:"required,max=255"`
	PrepTime       *int            `json:"prepTime" binding:"omitempty,min=0"`
	CookingTime    *int            `json:"cookingTime" binding:"required,min=0"`
	RecipeImage    *string         `json:"recipeImage"`
	Instructions   json.RawMessage `json:"instructions" binding:"required"`
	MealType       *string         `json:"mealType"`
	IngredientList IngredientList  `json:"ingredientList" binding:"required,min=1,dive"`
}

// UpdateRecipeInput is a sparse recipe patch. Absent fields are left untouched.
type UpdateRecipeInput struct {
	RecipeName   *string         `json:"recipeName" binding:"omitempty,min=1,max=255"`
	PrepTime     *int            `json:"prepTime" binding:"omitempty,min=0"`
	CookingTime  *int            `json:"cookingTime" binding:"omitempty,min=0"`
	RecipeImage  *string         `json:"recipeImage"`
	Instructions json.RawMessage `json:"instructions"`
	MealType     *string         `json:"mealType"`
	// Ingredients replaces every ingredient line of the recipe when present
	Ingredients IngredientList `json:"ingredients" binding:"omitempty,min=1,dive"`
}

// recipeColumns maps payload field names to recipes columns
var recipeColumns = map[string]string{
	"recipeName":   "recipe_name",
	"prepTime":     "prep_time",
	"cookingTime":  "cooking_time",
	"recipeImage":  "recipe_image",
	"instructions": "instructions",
	"mealType":     "meal_type",
}

// fields returns the scalar fields present in the patch keyed by payload name
func (in UpdateRecipeInput) fields() (map[string]any, error) {
	fields := map[string]any{}
	if in.RecipeName != nil {
		fields["recipeName"] = *in.RecipeName
	}
	if in.PrepTime != nil {
		fields["prepTime"] = *in.PrepTime
	}
	if in.CookingTime != nil {
		fields["cookingTime"] = *in.CookingTime
	}
	if in.RecipeImage != nil {
		fields["recipeImage"] = *in.RecipeImage
	}
	if in.MealType != nil {
		fields["mealType"] = *in.MealType
	}
	if len(in.Instructions) > 0 && string(in.Instructions) != "null" {
		instructions, err := normalizeInstructions(in.Instructions)
		if err != nil {
			return nil, err
		}
		fields["instructions"] = instructions
	}
	return fields, nil
}

type instructionStep struct {
	Description string `json:"description"`
}

// normalizeInstructions accepts free text, a list of step strings or a list of
// {"description": ...} steps
func normalizeInstructions(raw json.RawMessage) (datatypes.JSON, error) {
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		if text == "" {
			return nil, models.NewValidationError("Invalid instructions", "instructions: must not be empty")
		}
		return datatypes.JSON(raw), nil
	}

	var lines []string
	if err := json.Unmarshal(raw, &lines); err == nil {
		if len(lines) == 0 {
			return nil, models.NewValidationError("Invalid instructions", "instructions: must not be empty")
		}
		for _, line := range lines {
			if strings.TrimSpace(line) == "" {
				return nil, models.NewValidationError("Invalid instructions", "instructions: every step needs a description")
			}
		}
		return datatypes.JSON(raw), nil
	}

	var steps []instructionStep
	if err := json.Unmarshal(raw, &steps); err != nil {
		return nil, models.NewValidationError("Invalid instructions", "instructions: must be a string, a list of strings or a list of {description}")
	}
	if len(steps) == 0 {
		return nil, models.NewValidationError("Invalid instructions", "instructions: must not be empty")
	}
	for _, step := range steps {
		if step.Description == "" {
			return nil, models.NewValidationError("Invalid instructions", "instructions: every step needs a description")
		}
	}

	normalized, err := json.Marshal(steps)
	if err != nil {
		return nil, fmt.Errorf("encode instructions: %w", err)
	}
	return datatypes.JSON(normalized), nil
}
