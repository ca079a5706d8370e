package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/franciscosanchezn/gin-recipe-api/internal/config"
	"github.com/franciscosanchezn/gin-recipe-api/internal/database"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
	"gorm.io/gorm"
)

// devtool is the admin CLI for local development:
//
//	go run ./scripts create-client --role admin
//	go run ./scripts seed --file scripts/fixtures/recipes.yaml
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cli.Command {
	return &cli.Command{
		Name:  "devtool",
		Usage: "Development tooling for the recipe API database",
		Commands: []*cli.Command{
			createClientCmd(),
			seedCmd(),
		},
	}
}

// openDB connects with the same environment configuration as the server and migrates the schema
func openDB(ctx context.Context) (*gorm.DB, *config.Config, error) {
	_ = godotenv.Load()

	conf, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	db, err := database.InitDatabase(ctx, database.NewDatabaseConfig(conf))
	if err != nil {
		return nil, nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, nil, err
	}
	return db, conf, nil
}
