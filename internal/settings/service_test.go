package settings

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dentaldesk/dentaldesk/internal/backend"
)

func TestResetPasswordPayload(t *testing.T) {
	var body map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/resetpassword", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = w.Write([]byte(`{"message":"ok"}`))
	}))
	t.Cleanup(srv.Close)

	svc := NewService(backend.NewClient(srv.URL, time.Second))
	ctx := backend.WithToken(context.Background(), "tok")
	require.NoError(t, svc.ResetPassword(ctx, PasswordForm{CurrentPassword: "old", Password: "new-secret", ConfirmPassword: "new-secret"}))
	assert.Equal(t, map[string]string{"currentPassword": "old", "newPassword": "new-secret"}, body)
}

func TestProfileValidation(t *testing.T) {
	errs := ProfileForm{Name: "", Email: "x"}.Validate()
	assert.Equal(t, "required", errs["name"])
	assert.Equal(t, "email", errs["email"])
	assert.Empty(t, ProfileForm{Name: "Anna", Email: "anna@clinic.example"}.Validate())
}

func TestPasswordValidation(t *testing.T) {
	errs := PasswordForm{CurrentPassword: "x", Password: "1234567", ConfirmPassword: "1234567"}.Validate()
	assert.Equal(t, "min", errs["password"])
	errs = PasswordForm{CurrentPassword: "x", Password: "12345678", ConfirmPassword: "87654321"}.Validate()
	assert.Equal(t, "eqfield", errs["confirmPassword"])
}
