package controllers

import (
	"net/http"

	"github.com/franciscosanchezn/gin-recipe-api/internal/services"
	"github.com/gin-gonic/gin"
)

// UserController handles HTTP requests related to users and their lists
type UserController interface {
	// ToggleFavorite adds a recipe to the user's favorites, or removes it when present
	ToggleFavorite(c *gin.Context)
	// ToggleGrocery adds an ingredient to the user's grocery list, or removes it when present
	ToggleGrocery(c *gin.Context)
	// GetMe returns the caller's profile
	GetMe(c *gin.Context)
	// UpdateMe partially updates the caller's profile
	UpdateMe(c *gin.Context)
	// ListUsers returns every user
	ListUsers(c *gin.Context)
}

type favoriteQuery struct {
	UserID   uint `form:"userId" binding:"required"`
	RecipeID uint `form:"recipeId" binding:"required"`
}

type groceryQuery struct {
	UserID       uint `form:"userId" binding:"required"`
	IngredientID uint `form:"ingredientId" binding:"required"`
}

type userController struct {
	service services.UserService
}

func NewUserController(service services.UserService) UserController {
	return &userController{service: service}
}

// ToggleFavorite godoc
// @Summary Toggle a favorite recipe
// @Description Add the recipe to the user's favorites, or remove it when it is already there
// @Tags users
// @Produce json
// @Param userId query int true "User ID"
// @Param recipeId query int true "Recipe ID"
// @Success 201 {object} map[string]models.UserFavoriteRecipe "added or deleted link"
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /user/add-favorite [post]
func (uc *userController) ToggleFavorite(c *gin.Context) {
	var query favoriteQuery
	if !bindQuery(c, &query) {
		return
	}

	toggle, err := uc.service.ToggleFavorite(c.Request.Context(), actorFrom(c), query.UserID, query.RecipeID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	respondToggle(c, toggle)
}

// ToggleGrocery godoc
// @Summary Toggle a grocery ingredient
// @Description Add the ingredient to the user's grocery list, or remove it when it is already there
// @Tags users
// @Produce json
// @Param userId query int true "User ID"
// @Param ingredientId query int true "Ingredient ID"
// @Success 201 {object} map[string]models.UserGrocery "added or deleted link"
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /user/add-grocery [post]
func (uc *userController) ToggleGrocery(c *gin.Context) {
	var query groceryQuery
	if !bindQuery(c, &query) {
		return
	}

	toggle, err := uc.service.ToggleGrocery(c.Request.Context(), actorFrom(c), query.UserID, query.IngredientID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	respondToggle(c, toggle)
}

func respondToggle[T any](c *gin.Context, toggle services.Toggle[T]) {
	if toggle.Added {
		c.JSON(http.StatusCreated, gin.H{"added": toggle.Link})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"deleted": toggle.Link})
}

// GetMe godoc
// @Summary Get my profile
// @Description Get the caller with the ids of their favorite recipes and grocery ingredients
// @Tags users
// @Produce json
// @Success 200 {object} map[string]services.UserProfile
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /user/me [get]
func (uc *userController) GetMe(c *gin.Context) {
	profile, err := uc.service.GetProfile(c.Request.Context(), actorFrom(c).UserID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": profile})
}

// UpdateMe godoc
// @Summary Update my profile
// @Description Update only the fields present in the body. A new password is hashed before it is stored.
// @Tags users
// @Accept json
// @Produce json
// @Param user body services.UpdateUserInput true "Fields to update"
// @Success 200 {object} map[string]models.User
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /user/me [patch]
func (uc *userController) UpdateMe(c *gin.Context) {
	var input services.UpdateUserInput
	if !bindJSON(c, &input) {
		return
	}

	actor := actorFrom(c)
	user, err := uc.service.UpdateUser(c.Request.Context(), actor, actor.UserID, input)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// ListUsers godoc
// @Summary List users
// @Description Get every user. Admin only.
// @Tags users
// @Produce json
// @Success 200 {object} map[string][]models.User
// @Failure 403 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /user [get]
func (uc *userController) ListUsers(c *gin.Context) {
	users, err := uc.service.ListUsers(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}
