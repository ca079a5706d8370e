package models

import (
	"time"
)

// OAuthCode is a short-lived authorization code issued by /oauth/authorize
type OAuthCode struct {
	Code                string `gorm:"primaryKey"`
	ClientID            string `gorm:"not null;index"`
	UserID              string `gorm:"not null"`
	Scopes              string
	RedirectURI         string
	CodeChallenge       string
	CodeChallengeMethod string
	ExpiresAt           time.Time `gorm:"not null"`
	CreatedAt           time.Time
}

func (OAuthCode) TableName() string {
	return "oauth_codes"
}

func (c *OAuthCode) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}
