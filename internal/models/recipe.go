package models

import (
	"time"

	"gorm.io/datatypes"
)

// Recipe represents a recipe with its scalar properties. Ingredient lines live
// in the recipe_ingredients junction table.
type Recipe struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	RecipeName   string         `gorm:"column:recipe_name;not null" json:"recipeName"`
	PrepTime     *int           `gorm:"column:prep_time" json:"prepTime"`
	CookingTime  int            `gorm:"column:cooking_time;not null;index" json:"cookingTime"`
	RecipeImage  *string        `gorm:"column:recipe_image" json:"recipeImage"`
	Instructions datatypes.JSON `gorm:"column:instructions" json:"instructions"`
	MealType     *string        `gorm:"column:meal_type;index" json:"mealType"`
	CreatedBy    *uint          `gorm:"column:created_by;index" json:"createdBy,omitempty"`
	CreatedAt    time.Time      `json:"-"`
	UpdatedAt    time.Time      `json:"-"`
}

func (Recipe) TableName() string {
	return "recipes"
}

// Ingredient names are the natural key, the unique index makes find-or-create converge
type Ingredient struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"column:ingredient_name;uniqueIndex;not null" json:"ingredientName"`
}

func (Ingredient) TableName() string {
	return "ingredients"
}

type MeasurementUnit struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Description string `gorm:"column:measurement_description;uniqueIndex;not null" json:"measurementDescription"`
}

func (MeasurementUnit) TableName() string {
	return "measurement_units"
}

// RecipeIngredient is one ingredient line of a recipe. MeasurementID is nil for
// lines without a unit such as "2 eggs".
type RecipeIngredient struct {
	ID            uint    `gorm:"primaryKey" json:"-"`
	RecipeID      uint    `gorm:"column:recipe_id;not null;index" json:"recipeId"`
	MeasurementID *uint   `gorm:"column:measurement_id" json:"measurementId"`
	IngredientID  uint    `gorm:"column:ingredient_id;not null;index" json:"ingredientId"`
	Amount        float64 `gorm:"column:amount;not null" json:"amount"`

	Recipe      *Recipe          `gorm:"foreignKey:RecipeID" json:"-"`
	Measurement *MeasurementUnit `gorm:"foreignKey:MeasurementID" json:"-"`
	Ingredient  *Ingredient      `gorm:"foreignKey:IngredientID" json:"-"`
}

func (RecipeIngredient) TableName() string {
	return "recipe_ingredients"
}
