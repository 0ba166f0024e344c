// Package settings serves the operator's profile, password, language and
// product category preferences.
package settings

import (
	"strings"

	"github.com/dentaldesk/dentaldesk/internal/form"
	"github.com/dentaldesk/dentaldesk/internal/shared"
)

// ProfileForm updates the signed-in user.
type ProfileForm struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

// ProfileFromUser seeds the profile form from the session.
func ProfileFromUser(u shared.UserProfile) ProfileForm {
	return ProfileForm{Name: u.Name, Email: u.Email}
}

// Normalize trims the posted values.
func (f ProfileForm) Normalize() ProfileForm {
	f.Name = strings.TrimSpace(f.Name)
	f.Email = strings.TrimSpace(f.Email)
	return f
}

// Validate runs the field rules.
func (f ProfileForm) Validate() form.FieldErrors { return form.Check(f) }

// PasswordForm resets the password. Values are never echoed back.
type PasswordForm struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	Password        string `json:"password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

// Validate runs the field rules.
func (f PasswordForm) Validate() form.FieldErrors { return form.Check(f) }

type passwordPayload struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}
