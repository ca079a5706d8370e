package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User is either a local account (username + bcrypt password) or a Google
// account identified by GoogleID. Both unique columns are nullable.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  *string   `gorm:"uniqueIndex" json:"username"`
	Password  string    `json:"-"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `gorm:"index" json:"email"`
	ImageURL  string    `json:"imageUrl"`
	GoogleID  *string   `gorm:"uniqueIndex" json:"-"`
	Role      string    `gorm:"default:user;not null" json:"role"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// BcryptCost is lowered by tests to keep hashing fast
var BcryptCost = bcrypt.DefaultCost

// HashPassword replaces the plain text password with its bcrypt hash
func (u *User) HashPassword() error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(u.Password), BcryptCost)
	if err != nil {
		return err
	}
	u.Password = string(hashed)
	return nil
}

// CheckPassword reports whether the plain text password matches the stored hash
func (u *User) CheckPassword(password string) bool {
	if u.Password == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) == nil
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// DisplayName returns the username when set, otherwise the first name
func (u *User) DisplayName() string {
	if u.Username != nil && *u.Username != "" {
		return *u.Username
	}
	return u.FirstName
}

type UserFavoriteRecipe struct {
	UserID    uint      `gorm:"primaryKey" json:"userId"`
	RecipeID  uint      `gorm:"primaryKey;index" json:"recipeId"`
	CreatedAt time.Time `json:"-"`

	User   *User   `gorm:"foreignKey:UserID" json:"-"`
	Recipe *Recipe `gorm:"foreignKey:RecipeID" json:"-"`
}

func (UserFavoriteRecipe) TableName() string {
	return "user_favorite_recipes"
}

type UserGrocery struct {
	UserID       uint      `gorm:"primaryKey" json:"userId"`
	IngredientID uint      `gorm:"primaryKey;index" json:"ingredientId"`
	CreatedAt    time.Time `json:"-"`

	User       *User       `gorm:"foreignKey:UserID" json:"-"`
	Ingredient *Ingredient `gorm:"foreignKey:IngredientID" json:"-"`
}

func (UserGrocery) TableName() string {
	return "user_groceries"
}
