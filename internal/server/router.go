package server

import (
	"net/http"
	"time"

	"github.com/franciscosanchezn/gin-recipe-api/internal/auth"
	"github.com/franciscosanchezn/gin-recipe-api/internal/config"
	"github.com/franciscosanchezn/gin-recipe-api/internal/controllers"
	"github.com/franciscosanchezn/gin-recipe-api/internal/middleware"
	"github.com/franciscosanchezn/gin-recipe-api/internal/models"
	"github.com/franciscosanchezn/gin-recipe-api/internal/services"
	"github.com/franciscosanchezn/gin-recipe-api/internal/storage"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

// Dependencies holds everything the router needs. Google is optional.
type Dependencies struct {
	Config *config.Config
	DB     *gorm.DB
	SQLX   *sqlx.DB
	Store  storage.Store
	Google controllers.GoogleLogin
}

// NewRouter builds the services, controllers and routes of the API
func NewRouter(deps Dependencies) *gin.Engine {
	cfg := deps.Config
	middleware.UseJSONFieldNames()

	issuer := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL, cfg.RefreshTTL)
	oauthService := auth.NewOAuthService(deps.DB, issuer)

	ingredientService := services.NewIngredientService(deps.DB)
	recipeService := services.NewRecipeService(deps.DB, services.NewRecipeReader(deps.SQLX), ingredientService)
	userService := services.NewUserService(deps.DB)
	clientService := services.NewClientService(deps.DB)

	recipeController := controllers.NewRecipeController(recipeService, storage.NewImageUploader(deps.Store, cfg.ImageMaxWidth))
	userController := controllers.NewUserController(userService)
	clientController := controllers.NewClientController(clientService)
	authController := controllers.NewAuthController(userService, issuer, deps.Google,
		int(cfg.RefreshTTL/time.Second), cfg.CookieSecure)

	router := gin.New()
	router.Use(
		corsMiddleware(cfg),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.Metrics(),
		middleware.Recovery(),
		middleware.RateLimit(cfg.RateLimit, cfg.RateLimitBurst),
		middleware.ErrorHandler(),
	)
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, models.NewAPIError(http.StatusNotFound, "Not Found", models.ErrNotFound))
	})

	router.GET("/health", healthCheckHandler)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	if local, ok := deps.Store.(*storage.LocalStore); ok {
		router.Static(storage.LocalURLPrefix, local.Dir())
	}

	router.GET("/images/:key", recipeController.GetImage)

	requireAuth := middleware.JWTAuth(issuer)

	recipes := router.Group("/recipes")
	{
		recipes.GET("", middleware.OptionalAuth(issuer), recipeController.ListRecipes)
		recipes.GET("/:id", recipeController.GetRecipe)
		recipes.POST("", requireAuth, recipeController.CreateRecipe)
		recipes.POST("/image", requireAuth, recipeController.UploadImage)
		recipes.POST("/add-favorite", requireAuth, userController.ToggleFavorite)
		recipes.PATCH("/:id", requireAuth, recipeController.UpdateRecipe)
		recipes.DELETE("/:id", requireAuth, recipeController.DeleteRecipe)
	}

	user := router.Group("/user")
	user.Use(requireAuth)
	{
		user.GET("", middleware.RequireRole(models.RoleAdmin), userController.ListUsers)
		user.GET("/me", userController.GetMe)
		user.PATCH("/me", userController.UpdateMe)
		user.POST("/add-favorite", userController.ToggleFavorite)
		user.POST("/add-grocery", userController.ToggleGrocery)
	}

	authRoutes := router.Group("/auth")
	{
		authRoutes.POST("/register", authController.Register)
		authRoutes.POST("/token", authController.Token)
		authRoutes.POST("/refresh", authController.Refresh)
		authRoutes.POST("/logout", authController.Logout)
		authRoutes.GET("/google", authController.GoogleLogin)
		authRoutes.GET("/google/redirect", authController.GoogleRedirect)
	}

	oauth := router.Group("/oauth")
	{
		oauth.POST("/token", oauthService.HandleToken)
		oauth.GET("/authorize", requireAuth, oauthService.HandleAuthorize)

		clients := oauth.Group("/clients")
		clients.Use(requireAuth)
		{
			clients.POST("", clientController.CreateClient)
			clients.GET("", clientController.ListClients)
			clients.GET("/:id", clientController.GetClient)
			clients.DELETE("/:id", clientController.DeleteClient)
		}
	}

	return router
}

func corsMiddleware(cfg *config.Config) gin.HandlerFunc {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	if len(corsConfig.AllowOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowCredentials = !corsConfig.AllowAllOrigins
	corsConfig.AddAllowHeaders("Authorization", middleware.HeaderRequestID)
	corsConfig.AddExposeHeaders(middleware.HeaderRequestID)
	return cors.New(corsConfig)
}

// healthCheckHandler handles the health check endpoint
// @Summary Health check
// @Description Check if the service is running
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "gin-recipe-api",
	})
}
