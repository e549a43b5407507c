// Package dto holds the JSON shapes returned by the API and the functions
// that build them from models.
package dto

import (
	"time"

	"github.com/kendall-kelly/estate-market-api/models"
)

// UserSummary is the public view of a user embedded in other responses
type UserSummary struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

// UserResponse is the account view returned to its owner
type UserResponse struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// NewUserSummary maps a user to its public summary
func NewUserSummary(u models.User) UserSummary {
	return UserSummary{ID: u.ID, Username: u.Username}
}

// NewUserResponse maps a user to the account view
func NewUserResponse(u models.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

// TokenPair is returned by login and refresh
type TokenPair struct {
	Access   string `json:"access"`
	Refresh  string `json:"refresh"`
	Username string `json:"username,omitempty"`
}
