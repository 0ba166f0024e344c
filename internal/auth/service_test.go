package auth

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

func newTestService(t *testing.T, handler http.HandlerFunc) *Service {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewService(backend.NewClient(srv.URL, time.Second))
}

func TestAuthenticateReturnsTokenAndProfile(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/login", r.URL.Path)
		var creds Credentials
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		assert.Equal(t, "anna@clinic.example", creds.Email)
		_, _ = w.Write([]byte(`{"data":{"token":"tok-1","user":{"id":4,"name":"Anna"}}}`))
	})
	token, user, err := svc.Authenticate(context.Background(), Credentials{Email: "anna@clinic.example", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)
	assert.Equal(t, "4", user.ID)
	assert.Equal(t, "Anna", user.Name)
	assert.Equal(t, "anna@clinic.example", user.Email)
}

func TestAuthenticateRejected(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Wrong password"}`))
	})
	_, _, err := svc.Authenticate(context.Background(), Credentials{Email: "a@b.example", Password: "x"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticateWithoutToken(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"user":{"id":1}}}`))
	})
	_, _, err := svc.Authenticate(context.Background(), Credentials{Email: "a@b.example", Password: "x"})
	assert.ErrorIs(t, err, backend.ErrMalformedPayload)
}

func TestLogoutSendsBearerToken(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/logout", r.URL.Path)
		assert.Equal(t, "Bearer tok-9", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"message":"bye"}`))
	})
	require.NoError(t, svc.Logout(backend.WithToken(context.Background(), "tok-9")))
}

func TestSafeNext(t *testing.T) {
	assert.Equal(t, "/orders?page=2", safeNext("/orders?page=2"))
	assert.Equal(t, "/", safeNext(""))
	assert.Equal(t, "/", safeNext("https://evil.example"))
	assert.Equal(t, "/", safeNext("//evil.example"))
}
