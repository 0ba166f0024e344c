// Package auth signs operators in against the backend and guards the
// authenticated pages.
package auth

import (
	"github.com/dentaldesk/dentaldesk/internal/backend"
	"github.com/dentaldesk/dentaldesk/internal/shared"
)

// Credentials are posted by the login form.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// User is the account object returned by the backend on login.
type User struct {
	ID    backend.ID `json:"id"`
	Name  string     `json:"name"`
	Email string     `json:"email"`
}

// Profile converts the backend user into the session profile.
func (u User) Profile() shared.UserProfile {
	return shared.UserProfile{ID: u.ID.String(), Name: u.Name, Email: u.Email}
}

type loginResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
