package settings

import (
	"context"

	"github.com/dentaldesk/dentaldesk/internal/backend"
)

// API is the subset of backend.Client used by settings.
type API interface {
	Post(ctx context.Context, path string, body any) (*backend.Envelope, error)
}

// Service calls the account endpoints.
type Service struct {
	api API
}

// NewService constructs a new Service.
func NewService(api API) *Service {
	return &Service{api: api}
}

// UpdateProfile posts the new name and email.
func (s *Service) UpdateProfile(ctx context.Context, f ProfileForm) error {
	_, err := s.api.Post(ctx, "/updateuser", f)
	return err
}

// ResetPassword posts the password change.
func (s *Service) ResetPassword(ctx context.Context, f PasswordForm) error {
	_, err := s.api.Post(ctx, "/resetpassword", passwordPayload{CurrentPassword: f.CurrentPassword, NewPassword: f.Password})
	return err
}
