package services

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/franciscosanchezn/gin-recipe-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndGetRecipe(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()
	owner := createTestUser(t, svc.db, "chef", models.RoleUser)

	input := newRecipeInput("Fish stew", 30,
		IngredientLine{Amount: "2", Measurement: "cup", Ingredient: "tomato"},
		IngredientLine{Amount: "1", Ingredient: "fish"},
	)
	created, err := svc.recipes.CreateRecipe(ctx, Actor{UserID: owner.ID, Role: owner.Role}, input)
	require.NoError(t, err)
	require.NotZero(t, created.ID)
	require.Len(t, created.Ingredients, 2)
	assert.NotNil(t, created.Ingredients[0].MeasurementID)
	assert.Nil(t, created.Ingredients[1].MeasurementID)

	recipe, err := svc.recipes.GetRecipe(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Fish stew", recipe.RecipeName)
	assert.Equal(t, "5 minutes", recipe.PrepTime)
	assert.Equal(t, "30 minutes", recipe.CookingTime)
	require.NotNil(t, recipe.CreatedBy)
	assert.Equal(t, owner.ID, *recipe.CreatedBy)
	assert.JSONEq(t, `"Mix and cook"`, string(recipe.Instructions))

	require.Len(t, recipe.Ingredients, 2)
	assert.Equal(t, "cup", *recipe.Ingredients[0].Measurement)
	assert.Equal(t, 2.0, recipe.Ingredients[0].Amount)
	assert.Nil(t, recipe.Ingredients[1].Measurement)
	assert.Equal(t, 1.0, recipe.Ingredients[1].Amount)
}

func TestCreateRecipeRollsBackOnInvalidLine(t *testing.T) {
	svc := setupServices(t)

	input := newRecipeInput("Broken", 10,
		IngredientLine{Amount: "1", Measurement: "cup", Ingredient: "flour"},
		IngredientLine{Amount: "1", Ingredient: "  "},
	)
	_, err := svc.recipes.CreateRecipe(context.Background(), Actor{Role: models.RoleAdmin}, input)
	require.Error(t, err)
	assert.True(t, models.IsKind(err, models.KindValidation))

	assert.Equal(t, int64(0), countRows(t, svc, &models.Recipe{}))
	assert.Equal(t, int64(0), countRows(t, svc, &models.Ingredient{}))
	assert.Equal(t, int64(0), countRows(t, svc, &models.MeasurementUnit{}))
}

func TestCreateRecipeStructuredInstructions(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()

	input := newRecipeInput("Pancakes", 15)
	input.Instructions = json.RawMessage(`[{"description":"Whisk"},{"description":"Fry"}]`)
	id := createTestRecipe(t, svc, Actor{Role: models.RoleAdmin}, input)

	recipe, err := svc.recipes.GetRecipe(ctx, id)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"description":"Whisk"},{"description":"Fry"}]`, string(recipe.Instructions))

	input.Instructions = json.RawMessage(`{"step":1}`)
	_, err = svc.recipes.CreateRecipe(ctx, Actor{Role: models.RoleAdmin}, input)
	assert.True(t, models.IsKind(err, models.KindValidation))
}

func TestCreateRecipeStepListInstructions(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()

	input := newRecipeInput("Soup", 40)
	input.Instructions = json.RawMessage(`["Chop", "Simmer"]`)
	id := createTestRecipe(t, svc, Actor{Role: models.RoleAdmin}, input)

	recipe, err := svc.recipes.GetRecipe(ctx, id)
	require.NoError(t, err)
	assert.JSONEq(t, `["Chop", "Simmer"]`, string(recipe.Instructions))

	for _, raw := range []string{`[]`, `["Chop", "  "]`} {
		input.Instructions = json.RawMessage(raw)
		_, err = svc.recipes.CreateRecipe(ctx, Actor{Role: models.RoleAdmin}, input)
		assert.True(t, models.IsKind(err, models.KindValidation), raw)
	}
}

func TestGetRecipeNotFound(t *testing.T) {
	svc := setupServices(t)

	_, err := svc.recipes.GetRecipe(context.Background(), 999)
	require.Error(t, err)
	assert.True(t, models.IsKind(err, models.KindNotFound))
}

func TestListRecipes(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()
	admin := Actor{Role: models.RoleAdmin}

	var ids []uint
	for _, minutes := range []int{10, 20, 30, 40} {
		input := newRecipeInput(fmt.Sprintf("Recipe %d", minutes), minutes)
		if minutes == 30 {
			input.MealType = strPtr("Breakfast")
		}
		ids = append(ids, createTestRecipe(t, svc, admin, input))
	}

	t.Run("cooking time is an inclusive upper bound", func(t *testing.T) {
		recipes, err := svc.recipes.ListRecipes(ctx, RecipeFilter{CookingTime: intPtr(20)}, nil)
		require.NoError(t, err)
		require.Len(t, recipes, 2)
		assert.Equal(t, ids[0], recipes[0].ID)
		assert.Equal(t, ids[1], recipes[1].ID)
		assert.Nil(t, recipes[0].IsFavorite)
	})

	t.Run("recipe name also matches meal type", func(t *testing.T) {
		recipes, err := svc.recipes.ListRecipes(ctx, RecipeFilter{RecipeName: "breakF"}, nil)
		require.NoError(t, err)
		require.Len(t, recipes, 1)
		assert.Equal(t, ids[2], recipes[0].ID)

		recipes, err = svc.recipes.ListRecipes(ctx, RecipeFilter{RecipeName: "recipe 4"}, nil)
		require.NoError(t, err)
		require.Len(t, recipes, 1)
		assert.Equal(t, 40, recipes[0].CookingTime)
	})

	t.Run("meal type is exact", func(t *testing.T) {
		recipes, err := svc.recipes.ListRecipes(ctx, RecipeFilter{MealType: "dinner"}, nil)
		require.NoError(t, err)
		assert.Len(t, recipes, 3)

		recipes, err = svc.recipes.ListRecipes(ctx, RecipeFilter{MealType: "din"}, nil)
		require.NoError(t, err)
		assert.Empty(t, recipes)
	})

	t.Run("skip offsets the page", func(t *testing.T) {
		recipes, err := svc.recipes.ListRecipes(ctx, RecipeFilter{Skip: 3}, nil)
		require.NoError(t, err)
		require.Len(t, recipes, 1)
		assert.Equal(t, ids[3], recipes[0].ID)
	})

	t.Run("authenticated listing reports favorites", func(t *testing.T) {
		user := createTestUser(t, svc.db, "fan", models.RoleUser)
		_, err := svc.users.ToggleFavorite(ctx, Actor{UserID: user.ID, Role: user.Role}, user.ID, ids[1])
		require.NoError(t, err)

		recipes, err := svc.recipes.ListRecipes(ctx, RecipeFilter{}, &user.ID)
		require.NoError(t, err)
		require.Len(t, recipes, 4)
		for _, recipe := range recipes {
			require.NotNil(t, recipe.IsFavorite)
			assert.Equal(t, recipe.ID == ids[1], *recipe.IsFavorite)
		}
	})
}

func TestListRecipesPageSize(t *testing.T) {
	svc := setupServices(t)
	for i := 0; i < RecipePageSize+2; i++ {
		createTestRecipe(t, svc, Actor{Role: models.RoleAdmin}, newRecipeInput(fmt.Sprintf("Recipe %d", i), 10))
	}

	recipes, err := svc.recipes.ListRecipes(context.Background(), RecipeFilter{}, nil)
	require.NoError(t, err)
	assert.Len(t, recipes, RecipePageSize)
}

func TestUpdateRecipeSingleField(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()
	owner := createTestUser(t, svc.db, "chef", models.RoleUser)
	actor := Actor{UserID: owner.ID, Role: owner.Role}

	id := createTestRecipe(t, svc, actor, newRecipeInput("Soup", 25))

	recipe, err := svc.recipes.UpdateRecipe(ctx, actor, id, UpdateRecipeInput{RecipeName: strPtr("X")})
	require.NoError(t, err)
	assert.Equal(t, "X", recipe.RecipeName)

	var stored models.Recipe
	require.NoError(t, svc.db.First(&stored, id).Error)
	assert.Equal(t, "X", stored.RecipeName)
	assert.Equal(t, 25, stored.CookingTime)
	require.NotNil(t, stored.PrepTime)
	assert.Equal(t, 5, *stored.PrepTime)
	require.NotNil(t, stored.MealType)
	assert.Equal(t, "dinner", *stored.MealType)
	assert.JSONEq(t, `"Mix and cook"`, string(stored.Instructions))
}

func TestUpdateRecipeReplacesIngredients(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()
	admin := Actor{Role: models.RoleAdmin}

	id := createTestRecipe(t, svc, admin, newRecipeInput("Salad", 0,
		IngredientLine{Amount: "1", Ingredient: "lettuce"},
		IngredientLine{Amount: "2", Ingredient: "tomato"},
	))

	recipe, err := svc.recipes.UpdateRecipe(ctx, admin, id, UpdateRecipeInput{
		Ingredients: IngredientList{{Amount: "3/4", Measurement: "cup", Ingredient: "cucumber"}},
	})
	require.NoError(t, err)
	require.Len(t, recipe.Ingredients, 1)
	assert.Equal(t, "cucumber", recipe.Ingredients[0].Ingredient)
	assert.Equal(t, 0.75, recipe.Ingredients[0].Amount)

	var lines int64
	svc.db.Model(&models.RecipeIngredient{}).Where("recipe_id = ?", id).Count(&lines)
	assert.Equal(t, int64(1), lines)
}

func TestUpdateRecipeErrors(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()
	owner := createTestUser(t, svc.db, "owner", models.RoleUser)
	other := createTestUser(t, svc.db, "other", models.RoleUser)
	id := createTestRecipe(t, svc, Actor{UserID: owner.ID, Role: owner.Role}, newRecipeInput("Soup", 25))

	t.Run("empty patch", func(t *testing.T) {
		_, err := svc.recipes.UpdateRecipe(ctx, Actor{UserID: owner.ID}, id, UpdateRecipeInput{})
		require.Error(t, err)
		assert.True(t, models.IsKind(err, models.KindValidation))
		assert.Equal(t, "No data provided", err.Error())
	})

	t.Run("missing recipe", func(t *testing.T) {
		_, err := svc.recipes.UpdateRecipe(ctx, Actor{Role: models.RoleAdmin}, 999, UpdateRecipeInput{RecipeName: strPtr("X")})
		assert.True(t, models.IsKind(err, models.KindNotFound))
	})

	t.Run("other users cannot edit", func(t *testing.T) {
		_, err := svc.recipes.UpdateRecipe(ctx, Actor{UserID: other.ID, Role: other.Role}, id, UpdateRecipeInput{RecipeName: strPtr("X")})
		assert.True(t, models.IsKind(err, models.KindForbidden))
	})

	t.Run("admins can edit", func(t *testing.T) {
		_, err := svc.recipes.UpdateRecipe(ctx, Actor{UserID: other.ID, Role: models.RoleAdmin}, id, UpdateRecipeInput{CookingTime: intPtr(5)})
		assert.NoError(t, err)
	})
}

func TestDeleteRecipe(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()
	user := createTestUser(t, svc.db, "chef", models.RoleUser)
	actor := Actor{UserID: user.ID, Role: user.Role}

	id := createTestRecipe(t, svc, actor, newRecipeInput("Soup", 25,
		IngredientLine{Amount: "1", Ingredient: "water"},
		IngredientLine{Amount: "1", Ingredient: "stone"},
	))
	_, err := svc.users.ToggleFavorite(ctx, actor, user.ID, id)
	require.NoError(t, err)

	require.NoError(t, svc.recipes.DeleteRecipe(ctx, actor, id))

	assert.Equal(t, int64(0), countRows(t, svc, &models.Recipe{}))
	assert.Equal(t, int64(0), countRows(t, svc, &models.RecipeIngredient{}))
	assert.Equal(t, int64(0), countRows(t, svc, &models.UserFavoriteRecipe{}))
	// canonical ingredients are shared and survive
	assert.Equal(t, int64(2), countRows(t, svc, &models.Ingredient{}))

	err = svc.recipes.DeleteRecipe(ctx, actor, id)
	require.Error(t, err)
	assert.True(t, models.IsKind(err, models.KindNotFound))
}
