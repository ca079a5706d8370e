package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/franciscosanchezn/gin-recipe-api/docs" // Import generated docs
	"github.com/franciscosanchezn/gin-recipe-api/internal/auth"
	"github.com/franciscosanchezn/gin-recipe-api/internal/config"
	"github.com/franciscosanchezn/gin-recipe-api/internal/database"
	"github.com/franciscosanchezn/gin-recipe-api/internal/middleware"
	"github.com/franciscosanchezn/gin-recipe-api/internal/server"
	"github.com/franciscosanchezn/gin-recipe-api/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

// @title Recipe API
// @version 1.0
// @description Recipes, ingredients, favorites and grocery lists
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// Load environment variables
	loadDotenvFile()

	// Load configuration
	configuration := loadConfig()

	// Initialize logger
	setUpLogger(configuration)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database connection
	db := setupDatabase(ctx, configuration)
	dbConfig := database.NewDatabaseConfig(configuration)
	sqlxDB, err := database.NewSQLX(db, dbConfig.SQLDriverName())
	checkPanicErr(err)

	store, err := storage.New(ctx, configuration)
	checkPanicErr(err)

	deps := server.Dependencies{
		Config: configuration,
		DB:     db,
		SQLX:   sqlxDB,
		Store:  store,
	}
	if configuration.GoogleEnabled() {
		deps.Google = auth.NewGoogleAuth(configuration)
	} else {
		log.Info("Google login disabled, GOOGLE_CLIENT_ID or GOOGLE_CLIENT_SECRET not set")
	}

	router := server.NewRouter(deps)

	srv := &http.Server{
		Addr:              fmt.Sprintf("%v:%d", configuration.Host, configuration.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start the server
	go func() {
		log.Infof("Starting server on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Server failed")
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server forced to shut down")
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info("Server stopped")
}

// checkPanicErr checks if an error occurred and panics if it did
func checkPanicErr(err error) {
	if err != nil {
		panic(err)
	}
}

// loadDotenvFile loads environment variables from a .env file
// If the file is not found, it will log a warning and use system environment variables
func loadDotenvFile() {
	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found, using system environment variables")
	}
}

// setUpLogger initializes the logger with a JSON formatter and sets the log level based on the environment.
// LOG_LEVEL overrides the environment default.
func setUpLogger(conf *config.Config) {
	log.SetFormatter(&log.JSONFormatter{})
	level := config.LevelForEnvironment(conf.Environment)
	if parsed, err := log.ParseLevel(conf.LogLevel); err == nil && os.Getenv("LOG_LEVEL") != "" {
		level = parsed
	}
	log.SetLevel(level)

	database.SetLogLevel(level)
	storage.SetLogLevel(level)
	middleware.SetLogLevel(level)

	if conf.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
}

// loadConfig loads the application configuration from environment variables
// It returns a Config struct or panics if there is an error
func loadConfig() *config.Config {
	conf, err := config.LoadConfig()
	checkPanicErr(err)
	return conf
}

// setupDatabase connects with retries and migrates the schema
func setupDatabase(ctx context.Context, conf *config.Config) *gorm.DB {
	db, err := database.InitDatabase(ctx, database.NewDatabaseConfig(conf))
	checkPanicErr(err)

	// Migrate the schema
	checkPanicErr(database.Migrate(db))
	return db
}
