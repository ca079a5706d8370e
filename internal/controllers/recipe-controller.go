package controllers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/franciscosanchezn/gin-recipe-api/internal/services"
	"github.com/gin-gonic/gin"
)

// RecipeController handles HTTP requests related to recipes
type RecipeController interface {
	// ListRecipes returns one page of recipes matching the query filters
	ListRecipes(c *gin.Context)
	// GetRecipe returns a recipe with its ingredient lines
	GetRecipe(c *gin.Context)
	// CreateRecipe stores a recipe with its ingredient lines
	CreateRecipe(c *gin.Context)
	// UploadImage stores a recipe image and returns its URL
	UploadImage(c *gin.Context)
	// GetImage streams a stored recipe image
	GetImage(c *gin.Context)
	// UpdateRecipe partially updates a recipe
	UpdateRecipe(c *gin.Context)
	// DeleteRecipe deletes a recipe by its ID
	DeleteRecipe(c *gin.Context)
}

// ImageUploader stores uploaded images and reads them back
type ImageUploader interface {
	Upload(ctx context.Context, filename string, src io.Reader) (string, error)
	Open(ctx context.Context, key string) (io.ReadCloser, string, error)
}

type recipeController struct {
	service  services.RecipeService
	uploader ImageUploader
}

// NewRecipeController creates a new instance of RecipeController
func NewRecipeController(service services.RecipeService, uploader ImageUploader) RecipeController {
	return &recipeController{service: service, uploader: uploader}
}

// ListRecipes godoc
// @Summary List recipes
// @Description Get ten recipes at a time, optionally filtered. Authenticated callers also get isFavorite.
// @Tags recipes
// @Produce json
// @Param recipeName query string false "Partial match on recipe name or meal type"
// @Param mealType query string false "Exact meal type"
// @Param cookingTime query int false "Maximum cooking time in minutes"
// @Param skip query int false "Number of recipes to skip"
// @Success 200 {object} map[string][]services.RecipeSummary
// @Failure 400 {object} models.ValidationErrorResponse
// @Router /recipes [get]
func (rc *recipeController) ListRecipes(c *gin.Context) {
	var filter services.RecipeFilter
	if !bindQuery(c, &filter) {
		return
	}

	var userID *uint
	if actor := actorFrom(c); actor.UserID != 0 {
		userID = &actor.UserID
	}

	recipes, err := rc.service.ListRecipes(c.Request.Context(), filter, userID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

// GetRecipe godoc
// @Summary Get recipe by ID
// @Description Get a recipe with its ingredients, measurements and amounts
// @Tags recipes
// @Produce json
// @Param id path int true "Recipe ID"
// @Success 200 {object} map[string]services.FormattedRecipe
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /recipes/{id} [get]
func (rc *recipeController) GetRecipe(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	recipe, err := rc.service.GetRecipe(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipe": recipe})
}

// CreateRecipe godoc
// @Summary Create a new recipe
// @Description Create a recipe; unknown ingredients and measurements are created on the fly
// @Tags recipes
// @Accept json
// @Produce json
// @Param recipe body services.CreateRecipeInput true "Recipe"
// @Success 201 {object} map[string]services.CreatedRecipe
// @Failure 400 {object} models.ValidationErrorResponse
// @Failure 401 {object} models.OAuth2Error
// @Security BearerAuth
// @Router /recipes [post]
func (rc *recipeController) CreateRecipe(c *gin.Context) {
	var input services.CreateRecipeInput
	if !bindJSON(c, &input) {
		return
	}

	created, err := rc.service.CreateRecipe(c.Request.Context(), actorFrom(c), input)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"recipe": created})
}

// UploadImage godoc
// @Summary Upload a recipe image
// @Description Store a JPEG or PNG image; the response URL goes into recipeImage. No file yields an empty URL.
// @Tags recipes
// @Accept multipart/form-data
// @Produce json
// @Param recipeImage formData file false "Image file"
// @Success 201 {object} map[string]string
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /recipes/image [post]
func (rc *recipeController) UploadImage(c *gin.Context) {
	header, err := c.FormFile("recipeImage")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		c.JSON(http.StatusCreated, gin.H{"url": ""})
		return
	}
	if err != nil {
		_ = c.Error(err).SetType(gin.ErrorTypeBind)
		return
	}

	file, err := header.Open()
	if err != nil {
		_ = c.Error(err)
		return
	}
	defer file.Close()

	url, err := rc.uploader.Upload(c.Request.Context(), header.Filename, file)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"url": url})
}

// GetImage godoc
// @Summary Get a recipe image
// @Description Stream an image previously stored through /recipes/image
// @Tags recipes
// @Produce png,jpeg
// @Param key path string true "Image key"
// @Success 200 {file} binary
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /images/{key} [get]
func (rc *recipeController) GetImage(c *gin.Context) {
	body, contentType, err := rc.uploader.Open(c.Request.Context(), c.Param("key"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	defer body.Close()

	c.Header("Cache-Control", "public, max-age=86400")
	c.DataFromReader(http.StatusOK, -1, contentType, body, nil)
}

// UpdateRecipe godoc
// @Summary Update a recipe
// @Description Update only the fields present in the body. When ingredients is present it replaces every ingredient line.
// @Tags recipes
// @Accept json
// @Produce json
// @Param id path int true "Recipe ID"
// @Param recipe body services.UpdateRecipeInput true "Fields to update"
// @Success 200 {object} map[string]services.FormattedRecipe
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /recipes/{id} [patch]
func (rc *recipeController) UpdateRecipe(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var input services.UpdateRecipeInput
	if !bindJSON(c, &input) {
		return
	}

	recipe, err := rc.service.UpdateRecipe(c.Request.Context(), actorFrom(c), id, input)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipe": recipe})
}

// DeleteRecipe godoc
// @Summary Delete a recipe
// @Description Delete a recipe with its ingredient lines and favorites
// @Tags recipes
// @Produce json
// @Param id path int true "Recipe ID"
// @Success 200 {object} map[string]uint
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /recipes/{id} [delete]
func (rc *recipeController) DeleteRecipe(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := rc.service.DeleteRecipe(c.Request.Context(), actorFrom(c), id); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}
