package models

import (
	"time"
)

// OAuthToken is an access token issued by the OAuth2 server, with its refresh token when one was issued
type OAuthToken struct {
	ID               uint    `gorm:"primaryKey"`
	ClientID         string  `gorm:"not null;index"`
	UserID           *string // nil for tokens that carry no user
	AccessToken      string  `gorm:"uniqueIndex;not null"`
	RefreshToken     *string `gorm:"index"`
	Scopes           string
	ExpiresAt        time.Time `gorm:"not null"`
	RefreshExpiresAt *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (OAuthToken) TableName() string {
	return "oauth_tokens"
}
