package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/franciscosanchezn/gin-recipe-api/internal/database"
	"github.com/franciscosanchezn/gin-recipe-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RegisterInput is the payload for creating a local account
type RegisterInput struct {
	Username  string `json:"username" binding:"required,min=1,max=30"`
	Password  string `json:"password" binding:"required,min=5,max=72"`
	FirstName string `json:"firstName" binding:"required,max=30"`
	LastName  string `json:"lastName" binding:"required,max=30"`
	Email     string `json:"email" binding:"omitempty,email,max=60"`
}

// UpdateUserInput is a sparse profile patch
type UpdateUserInput struct {
	Username  *string `json:"username" binding:"omitempty,min=1,max=30"`
	Password  *string `json:"password" binding:"omitempty,min=5,max=72"`
	FirstName *string `json:"firstName" binding:"omitempty,max=30"`
	LastName  *string `json:"lastName" binding:"omitempty,max=30"`
	Email     *string `json:"email" binding:"omitempty,email,max=60"`
	ImageURL  *string `json:"imageUrl" binding:"omitempty,url"`
	// Role can only be changed by admins
	Role *string `json:"role" binding:"omitempty,oneof=admin user"`
}

// GoogleProfile is the subset of the Google userinfo used to sign users in
type GoogleProfile struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"given_name"`
	LastName  string `json:"family_name"`
	Picture   string `json:"picture"`
}

// UserProfile is a user with the ids of their favorite recipes and grocery ingredients
type UserProfile struct {
	models.User
	Recipes   []uint `json:"recipes"`
	Groceries []uint `json:"groceries"`
}

// Toggle reports whether a link row was added or removed
type Toggle[T any] struct {
	Added bool
	Link  T
}

type UserService interface {
	Register(ctx context.Context, input RegisterInput) (*models.User, error)
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
	FindOrCreateGoogleUser(ctx context.Context, profile GoogleProfile) (*models.User, error)
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	GetProfile(ctx context.Context, id uint) (*UserProfile, error)
	UpdateUser(ctx context.Context, actor Actor, id uint, input UpdateUserInput) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	ToggleFavorite(ctx context.Context, actor Actor, userID, recipeID uint) (Toggle[models.UserFavoriteRecipe], error)
	ToggleGrocery(ctx context.Context, actor Actor, userID, ingredientID uint) (Toggle[models.UserGrocery], error)
}

type userService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) UserService {
	return &userService{db: db}
}

var userColumns = map[string]string{
	"firstName": "first_name",
	"lastName":  "last_name",
	"imageUrl":  "image_url",
}

func (s *userService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	db := s.db.WithContext(ctx)

	var existing models.User
	if err := db.Where("username = ?", input.Username).Take(&existing).Error; err == nil {
		return nil, models.NewConflictError(fmt.Sprintf("Duplicate username: %s", input.Username), nil)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check username: %w", err)
	}

	username := input.Username
	user := &models.User{
		Username:  &username,
		Password:  input.Password,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Email:     input.Email,
		Role:      models.RoleUser,
	}
	if err := user.HashPassword(); err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	if err := db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, models.NewConflictError(fmt.Sprintf("Duplicate username: %s", input.Username), err)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (s *userService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("username = ?", username).Take(&user).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if err != nil || !user.CheckPassword(password) {
		return nil, models.NewUnauthorizedError("Invalid username/password")
	}
	return &user, nil
}

func (s *userService) FindOrCreateGoogleUser(ctx context.Context, profile GoogleProfile) (*models.User, error) {
	if profile.ID == "" {
		return nil, models.NewUnauthorizedError("Google account has no id")
	}
	db := s.db.WithContext(ctx)

	googleID := profile.ID
	user := models.User{
		GoogleID:  &googleID,
		FirstName: profile.FirstName,
		LastName:  profile.LastName,
		Email:     profile.Email,
		ImageURL:  profile.Picture,
		Role:      models.RoleUser,
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&user).Error; err != nil {
		return nil, fmt.Errorf("create google user: %w", err)
	}

	var canonical models.User
	if err := db.Where("google_id = ?", googleID).Take(&canonical).Error; err != nil {
		return nil, fmt.Errorf("load google user: %w", err)
	}
	return &canonical, nil
}

func (s *userService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Take(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("No user: %d", id)
		}
		return nil, fmt.Errorf("load user %d: %w", id, err)
	}
	return &user, nil
}

func (s *userService) GetProfile(ctx context.Context, id uint) (*UserProfile, error) {
	user, err := s.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	profile := &UserProfile{User: *user, Recipes: []uint{}, Groceries: []uint{}}
	db := s.db.WithContext(ctx)
	if err := db.Model(&models.UserFavoriteRecipe{}).Where("user_id = ?", id).Order("recipe_id").Pluck("recipe_id", &profile.Recipes).Error; err != nil {
		return nil, fmt.Errorf("load favorites of user %d: %w", id, err)
	}
	if err := db.Model(&models.UserGrocery{}).Where("user_id = ?", id).Order("ingredient_id").Pluck("ingredient_id", &profile.Groceries).Error; err != nil {
		return nil, fmt.Errorf("load groceries of user %d: %w", id, err)
	}
	return profile, nil
}

func (s *userService) UpdateUser(ctx context.Context, actor Actor, id uint, input UpdateUserInput) (*models.User, error) {
	if !actor.CanActFor(id) {
		return nil, models.NewForbiddenError("You can only update your own account")
	}
	if input.Role != nil && !actor.IsAdmin() {
		return nil, models.NewForbiddenError("Only admins can change roles")
	}

	fields := map[string]any{}
	if input.Username != nil {
		fields["username"] = *input.Username
	}
	if input.FirstName != nil {
		fields["firstName"] = *input.FirstName
	}
	if input.LastName != nil {
		fields["lastName"] = *input.LastName
	}
	if input.Email != nil {
		fields["email"] = *input.Email
	}
	if input.ImageURL != nil {
		fields["imageUrl"] = *input.ImageURL
	}
	if input.Role != nil {
		fields["role"] = *input.Role
	}
	if input.Password != nil {
		hashed := models.User{Password: *input.Password}
		if err := hashed.HashPassword(); err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		fields["password"] = hashed.Password
	}

	update, err := database.SQLForPartialUpdate(fields, userColumns)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Take(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("No user: %d", id)
			}
			return fmt.Errorf("load user %d: %w", id, err)
		}

		update.SetCols += fmt.Sprintf(`, "updated_at"=%s`, update.NextPlaceholder())
		update.Values = append(update.Values, time.Now())

		query, args := update.Statement(user.TableName(), "id", id)
		if err := tx.Exec(query, args...).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return models.NewConflictError("Username already taken", err)
			}
			return fmt.Errorf("update user %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetUserByID(ctx, id)
}

func (s *userService) ListUsers(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	if err := s.db.WithContext(ctx).Order("id").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *userService) ToggleFavorite(ctx context.Context, actor Actor, userID, recipeID uint) (Toggle[models.UserFavoriteRecipe], error) {
	link := models.UserFavoriteRecipe{UserID: userID, RecipeID: recipeID}
	added, err := s.toggle(ctx, actor, userID, &models.Recipe{}, "recipe", recipeID, &link, "recipe_id = ?")
	return Toggle[models.UserFavoriteRecipe]{Added: added, Link: link}, err
}

func (s *userService) ToggleGrocery(ctx context.Context, actor Actor, userID, ingredientID uint) (Toggle[models.UserGrocery], error) {
	link := models.UserGrocery{UserID: userID, IngredientID: ingredientID}
	added, err := s.toggle(ctx, actor, userID, &models.Ingredient{}, "ingredient", ingredientID, &link, "ingredient_id = ?")
	return Toggle[models.UserGrocery]{Added: added, Link: link}, err
}

// toggle deletes the link row between the user and target when it exists and
// creates it otherwise. It returns true when the link was created.
func (s *userService) toggle(ctx context.Context, actor Actor, userID uint, target any, targetName string, targetID uint, link any, targetColumn string) (bool, error) {
	if userID == 0 || targetID == 0 {
		return false, models.NewValidationError("Invalid query", "userId and target id are required")
	}
	if !actor.CanActFor(userID) {
		return false, models.NewForbiddenError("You can only change your own lists")
	}

	var added bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Take(&models.User{}, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("No user: %d", userID)
			}
			return err
		}
		if err := tx.Take(target, targetID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("No %s: %d", targetName, targetID)
			}
			return err
		}

		result := tx.Where("user_id = ?", userID).Where(targetColumn, targetID).Delete(link)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected > 0 {
			return nil
		}

		added = true
		return tx.Create(link).Error
	})
	return added, err
}
