package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/franciscosanchezn/gin-recipe-api/internal/database"
	"github.com/franciscosanchezn/gin-recipe-api/internal/models"
	"github.com/franciscosanchezn/gin-recipe-api/internal/services"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// recipeFixture mirrors services.CreateRecipeInput with yaml tags
type recipeFixture struct {
	RecipeName   string   `yaml:"recipeName"`
	PrepTime     *int     `yaml:"prepTime"`
	CookingTime  int      `yaml:"cookingTime"`
	RecipeImage  *string  `yaml:"recipeImage"`
	MealType     *string  `yaml:"mealType"`
	Instructions []string `yaml:"instructions"`
	Ingredients  []struct {
		Amount      string `yaml:"amount"`
		Measurement string `yaml:"measurement"`
		Ingredient  string `yaml:"ingredient"`
	} `yaml:"ingredients"`
}

type fixtures struct {
	Recipes []recipeFixture `yaml:"recipes"`
}

func seedCmd() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "Seed an empty database with recipes from a YAML fixture file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Value:   "scripts/fixtures/recipes.yaml",
				Usage:   "Path to the fixture file",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			data, err := loadFixtures(cmd.String("file"))
			if err != nil {
				return err
			}

			db, conf, err := openDB(ctx)
			if err != nil {
				return err
			}
			dbConfig := database.NewDatabaseConfig(conf)
			return seedRecipes(ctx, db, dbConfig.SQLDriverName(), data, cmd.Root().Writer)
		},
	}
}

func loadFixtures(path string) (*fixtures, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fixtures: %w", err)
	}
	defer f.Close()
	return parseFixtures(f)
}

func parseFixtures(r io.Reader) (*fixtures, error) {
	var data fixtures
	if err := yaml.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode fixtures: %w", err)
	}
	return &data, nil
}

func (f recipeFixture) input() (services.CreateRecipeInput, error) {
	instructions, err := json.Marshal(f.Instructions)
	if err != nil {
		return services.CreateRecipeInput{}, err
	}

	cookingTime := f.CookingTime
	input := services.CreateRecipeInput{
		RecipeName:   f.RecipeName,
		PrepTime:     f.PrepTime,
		CookingTime:  &cookingTime,
		RecipeImage:  f.RecipeImage,
		MealType:     f.MealType,
		Instructions: instructions,
	}
	for _, line := range f.Ingredients {
		input.IngredientList = append(input.IngredientList, services.IngredientLine{
			Amount:      line.Amount,
			Measurement: line.Measurement,
			Ingredient:  line.Ingredient,
		})
	}
	return input, nil
}

// seedRecipes creates every fixture recipe owned by the development admin.
// It does nothing when the database already holds recipes.
func seedRecipes(ctx context.Context, db *gorm.DB, driverName string, data *fixtures, out io.Writer) error {
	var count int64
	if err := db.WithContext(ctx).Model(&models.Recipe{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count recipes: %w", err)
	}
	if count > 0 {
		fmt.Fprintf(out, "Database already seeded with %d recipes\n", count)
		return nil
	}

	sqlxDB, err := database.NewSQLX(db, driverName)
	if err != nil {
		return err
	}
	recipeService := services.NewRecipeService(db, services.NewRecipeReader(sqlxDB), services.NewIngredientService(db))

	owner, err := devUser(db.WithContext(ctx), models.RoleAdmin)
	if err != nil {
		return err
	}
	actor := services.Actor{UserID: owner.ID, Role: owner.Role}

	for _, fixture := range data.Recipes {
		input, err := fixture.input()
		if err != nil {
			return fmt.Errorf("recipe %q: %w", fixture.RecipeName, err)
		}
		created, err := recipeService.CreateRecipe(ctx, actor, input)
		if err != nil {
			return fmt.Errorf("seed recipe %q: %w", fixture.RecipeName, err)
		}
		fmt.Fprintf(out, "Seeded recipe %q (ID: %d, %d ingredients)\n", fixture.RecipeName, created.ID, len(created.Ingredients))
	}
	return nil
}
