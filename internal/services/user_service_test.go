package services

import (
	"context"
	"testing"

	"github.com/franciscosanchezn/gin-recipe-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndAuthenticate(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()

	user, err := svc.users.Register(ctx, RegisterInput{Username: "ada", Password: "secret123", FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"})
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.NotEqual(t, "secret123", user.Password, "password is stored hashed")

	authenticated, err := svc.users.Authenticate(ctx, "ada", "secret123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, authenticated.ID)

	_, err = svc.users.Authenticate(ctx, "ada", "wrong")
	assert.True(t, models.IsKind(err, models.KindUnauthorized))

	_, err = svc.users.Authenticate(ctx, "nobody", "secret123")
	assert.True(t, models.IsKind(err, models.KindUnauthorized))

	_, err = svc.users.Register(ctx, RegisterInput{Username: "ada", Password: "another1", FirstName: "A", LastName: "L"})
	assert.True(t, models.IsKind(err, models.KindConflict))
}

func TestFindOrCreateGoogleUser(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()
	profile := GoogleProfile{ID: "google-123", Email: "g@example.com", FirstName: "Grace", LastName: "Hopper"}

	first, err := svc.users.FindOrCreateGoogleUser(ctx, profile)
	require.NoError(t, err)
	second, err := svc.users.FindOrCreateGoogleUser(ctx, profile)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Grace", second.FirstName)
	assert.Equal(t, int64(1), countRows(t, svc, &models.User{}))

	_, err = svc.users.FindOrCreateGoogleUser(ctx, GoogleProfile{})
	assert.True(t, models.IsKind(err, models.KindUnauthorized))
}

func TestToggleFavorite(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()
	user := createTestUser(t, svc.db, "fan", models.RoleUser)
	actor := Actor{UserID: user.ID, Role: user.Role}
	recipeID := createTestRecipe(t, svc, Actor{Role: models.RoleAdmin}, newRecipeInput("Soup", 10))

	added, err := svc.users.ToggleFavorite(ctx, actor, user.ID, recipeID)
	require.NoError(t, err)
	assert.True(t, added.Added)
	assert.Equal(t, recipeID, added.Link.RecipeID)
	assert.Equal(t, int64(1), countRows(t, svc, &models.UserFavoriteRecipe{}))

	removed, err := svc.users.ToggleFavorite(ctx, actor, user.ID, recipeID)
	require.NoError(t, err)
	assert.False(t, removed.Added)
	assert.Equal(t, int64(0), countRows(t, svc, &models.UserFavoriteRecipe{}))

	t.Run("missing recipe", func(t *testing.T) {
		_, err := svc.users.ToggleFavorite(ctx, actor, user.ID, 999)
		assert.True(t, models.IsKind(err, models.KindNotFound))
	})

	t.Run("missing user", func(t *testing.T) {
		_, err := svc.users.ToggleFavorite(ctx, Actor{Role: models.RoleAdmin}, 999, recipeID)
		assert.True(t, models.IsKind(err, models.KindNotFound))
	})

	t.Run("other users are forbidden", func(t *testing.T) {
		_, err := svc.users.ToggleFavorite(ctx, Actor{UserID: user.ID + 1, Role: models.RoleUser}, user.ID, recipeID)
		assert.True(t, models.IsKind(err, models.KindForbidden))
	})
}

func TestToggleGroceryAndProfile(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()
	user := createTestUser(t, svc.db, "shopper", models.RoleUser)
	actor := Actor{UserID: user.ID, Role: user.Role}

	recipeID := createTestRecipe(t, svc, Actor{Role: models.RoleAdmin}, newRecipeInput("Soup", 10))
	ingredient, err := svc.ingredients.FindOrCreateIngredient(ctx, nil, "salt")
	require.NoError(t, err)

	toggle, err := svc.users.ToggleGrocery(ctx, actor, user.ID, ingredient.ID)
	require.NoError(t, err)
	assert.True(t, toggle.Added)
	_, err = svc.users.ToggleFavorite(ctx, actor, user.ID, recipeID)
	require.NoError(t, err)

	profile, err := svc.users.GetProfile(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{recipeID}, profile.Recipes)
	assert.Equal(t, []uint{ingredient.ID}, profile.Groceries)

	_, err = svc.users.GetProfile(ctx, 999)
	assert.True(t, models.IsKind(err, models.KindNotFound))
}

func TestUpdateUser(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()
	user := createTestUser(t, svc.db, "ada", models.RoleUser)
	createTestUser(t, svc.db, "taken", models.RoleUser)
	actor := Actor{UserID: user.ID, Role: user.Role}

	updated, err := svc.users.UpdateUser(ctx, actor, user.ID, UpdateUserInput{LastName: strPtr("Lovelace")})
	require.NoError(t, err)
	assert.Equal(t, "Lovelace", updated.LastName)
	assert.Equal(t, "ada", updated.FirstName)

	_, err = svc.users.UpdateUser(ctx, actor, user.ID, UpdateUserInput{Password: strPtr("new-password")})
	require.NoError(t, err)
	_, err = svc.users.Authenticate(ctx, "ada", "new-password")
	assert.NoError(t, err)

	_, err = svc.users.UpdateUser(ctx, actor, user.ID, UpdateUserInput{})
	assert.True(t, models.IsKind(err, models.KindValidation))

	_, err = svc.users.UpdateUser(ctx, actor, user.ID, UpdateUserInput{Role: strPtr(models.RoleAdmin)})
	assert.True(t, models.IsKind(err, models.KindForbidden))

	_, err = svc.users.UpdateUser(ctx, actor, user.ID+5, UpdateUserInput{LastName: strPtr("X")})
	assert.True(t, models.IsKind(err, models.KindForbidden))

	_, err = svc.users.UpdateUser(ctx, actor, user.ID, UpdateUserInput{Username: strPtr("taken")})
	assert.True(t, models.IsKind(err, models.KindConflict))

	promoted, err := svc.users.UpdateUser(ctx, Actor{Role: models.RoleAdmin}, user.ID, UpdateUserInput{Role: strPtr(models.RoleAdmin)})
	require.NoError(t, err)
	assert.True(t, promoted.IsAdmin())
}

func TestListUsers(t *testing.T) {
	svc := setupServices(t)
	createTestUser(t, svc.db, "a", models.RoleUser)
	createTestUser(t, svc.db, "b", models.RoleAdmin)

	users, err := svc.users.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "a", *users[0].Username)
}
