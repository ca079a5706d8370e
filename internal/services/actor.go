package services

import "github.com/franciscosanchezn/gin-recipe-api/internal/models"

// Actor is the authenticated caller of a service operation
type Actor struct {
	UserID uint
	Role   string
}

func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

// CanModify reports whether the actor may change a row owned by ownerID.
// Rows without an owner can only be changed by admins.
func (a Actor) CanModify(ownerID *uint) bool {
	if a.IsAdmin() {
		return true
	}
	return ownerID != nil && a.UserID != 0 && *ownerID == a.UserID
}

// CanActFor reports whether the actor may act on behalf of userID
func (a Actor) CanActFor(userID uint) bool {
	return a.IsAdmin() || (a.UserID != 0 && a.UserID == userID)
}
