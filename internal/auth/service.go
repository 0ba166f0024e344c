package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/dentaldesk/dentaldesk/internal/backend"
	"github.com/dentaldesk/dentaldesk/internal/shared"
)

// ErrInvalidCredentials is returned when the backend rejects a login.
var ErrInvalidCredentials = errors.New("auth: invalid credentials")

// API is the subset of backend.Client used by auth.
type API interface {
	Post(ctx context.Context, path string, body any) (*backend.Envelope, error)
}

// Service wraps the backend login endpoints.
type Service struct {
	api API
}

// NewService constructs a new Service.
func NewService(api API) *Service {
	return &Service{api: api}
}

// Authenticate exchanges credentials for a bearer token and the user profile.
func (s *Service) Authenticate(ctx context.Context, creds Credentials) (string, shared.UserProfile, error) {
	env, err := s.api.Post(ctx, "/login", creds)
	if err != nil {
		var apiErr *backend.APIError
		if errors.As(err, &apiErr) && (apiErr.Unauthorized() || apiErr.Status == 400) {
			return "", shared.UserProfile{}, errors.Join(ErrInvalidCredentials, err)
		}
		return "", shared.UserProfile{}, err
	}
	res, err := backend.DecodeObject[loginResult](env)
	if err != nil {
		return "", shared.UserProfile{}, err
	}
	if strings.TrimSpace(res.Token) == "" {
		return "", shared.UserProfile{}, backend.ErrMalformedPayload
	}
	profile := res.User.Profile()
	if profile.Email == "" {
		profile.Email = creds.Email
	}
	return res.Token, profile, nil
}

// Logout ends the backend session bound to the token in ctx.
func (s *Service) Logout(ctx context.Context) error {
	_, err := s.api.Post(ctx, "/logout", nil)
	return err
}
