package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/franciscosanchezn/gin-recipe-api/internal/models"
	"github.com/urfave/cli/v3"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func createClientCmd() *cli.Command {
	return &cli.Command{
		Name:  "create-client",
		Usage: "Create a development OAuth2 client with fixed credentials",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "role",
				Value: models.RoleAdmin,
				Usage: "Role of the user owning the client (admin or user)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			role := cmd.String("role")
			if role != models.RoleAdmin && role != models.RoleUser {
				return fmt.Errorf("invalid role %q (supported: admin, user)", role)
			}

			db, _, err := openDB(ctx)
			if err != nil {
				return err
			}
			return createDevClient(ctx, db, role, cmd.Root().Writer)
		},
	}
}

// devCredentials returns the fixed client id and secret for a role
func devCredentials(role string) (string, string) {
	if role == models.RoleUser {
		return "user-client", "user-secret-123"
	}
	return "dev-client", "dev-secret-123"
}

func createDevClient(ctx context.Context, db *gorm.DB, role string, out io.Writer) error {
	clientID, clientSecret := devCredentials(role)
	db = db.WithContext(ctx)

	// Check if client already exists
	var existing models.OAuthClient
	if err := db.Where("id = ?", clientID).Take(&existing).Error; err == nil {
		fmt.Fprintf(out, "Development client already exists for role '%s'!\n", role)
		printCredentials(out, clientID, clientSecret)
		return nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("look up client: %w", err)
	}

	owner, err := devUser(db, role)
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(clientSecret), models.BcryptCost)
	if err != nil {
		return fmt.Errorf("hash secret: %w", err)
	}

	client := models.OAuthClient{
		ID:         clientID,
		Secret:     string(hash),
		Name:       fmt.Sprintf("Development %s Client", role),
		Domain:     "http://localhost",
		UserID:     owner.ID,
		Scopes:     "read write",
		GrantTypes: "client_credentials authorization_code refresh_token",
	}
	if err := db.Create(&client).Error; err != nil {
		return fmt.Errorf("create client: %w", err)
	}

	fmt.Fprintf(out, "Development OAuth client created for role '%s'\n", role)
	printCredentials(out, clientID, clientSecret)
	fmt.Fprintf(out, "User ID: %d\n", owner.ID)
	return nil
}

// devUser gets or creates the local account owning the development client
func devUser(db *gorm.DB, role string) (*models.User, error) {
	username := "dev-" + role

	var user models.User
	err := db.Where("username = ?", username).Take(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("look up user: %w", err)
	}

	user = models.User{
		Username:  &username,
		Password:  username,
		FirstName: "Dev",
		LastName:  role,
		Email:     role + "@recipes.local",
		Role:      role,
	}
	if err := user.HashPassword(); err != nil {
		return nil, err
	}
	if err := db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &user, nil
}

func printCredentials(out io.Writer, clientID, clientSecret string) {
	fmt.Fprintf(out, "Client ID: %s\n", clientID)
	fmt.Fprintf(out, "Client Secret: %s\n", clientSecret)
	fmt.Fprintln(out, "\nUse these credentials for testing:")
	fmt.Fprintf(out, "curl -X POST http://localhost:8080/oauth/token \\\n")
	fmt.Fprintf(out, "  -d 'grant_type=client_credentials' \\\n")
	fmt.Fprintf(out, "  -d 'client_id=%s' \\\n", clientID)
	fmt.Fprintf(out, "  -d 'client_secret=%s'\n", clientSecret)
}
