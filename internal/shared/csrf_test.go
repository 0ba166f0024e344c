package shared

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSession(id string) *Session {
	return &Session{ID: id, values: map[string]string{}}
}

func TestEnsureTokenIsStable(t *testing.T) {
	m := NewCSRFManager("secret")
	sess := testSession("s1")

	first, err := m.EnsureToken(context.Background(), sess)
	require.NoError(t, err)
	second, err := m.EnsureToken(context.Background(), sess)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.NoError(t, m.VerifyToken(context.Background(), sess, first))
}

func TestRotateInvalidatesPreviousToken(t *testing.T) {
	m := NewCSRFManager("secret")
	sess := testSession("s1")
	old, err := m.EnsureToken(context.Background(), sess)
	require.NoError(t, err)

	fresh, err := m.Rotate(sess)
	require.NoError(t, err)
	assert.NotEqual(t, old, fresh)
	assert.ErrorIs(t, m.VerifyToken(context.Background(), sess, old), ErrCSRFTokenMismatch)
	assert.NoError(t, m.VerifyToken(context.Background(), sess, fresh))
}

func TestVerifyTokenMissing(t *testing.T) {
	m := NewCSRFManager("secret")
	assert.ErrorIs(t, m.VerifyToken(context.Background(), nil, "x"), ErrCSRFTokenMissing)
	assert.ErrorIs(t, m.VerifyToken(context.Background(), testSession("s"), ""), ErrCSRFTokenMissing)
	assert.ErrorIs(t, m.VerifyToken(context.Background(), testSession("s"), "x"), ErrCSRFTokenMissing)
	_, err := m.EnsureToken(context.Background(), nil)
	assert.ErrorIs(t, err, ErrSessionMissing)
}

func TestVerifyRequest(t *testing.T) {
	m := NewCSRFManager("secret")
	sess := testSession("s1")
	token, err := m.EnsureToken(context.Background(), sess)
	require.NoError(t, err)

	get := httptest.NewRequest(http.MethodGet, "/products", nil)
	assert.NoError(t, m.VerifyRequest(get, nil))

	form := url.Values{CSRFFormField: {token}}
	post := httptest.NewRequest(http.MethodPost, "/products", strings.NewReader(form.Encode()))
	post.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	assert.NoError(t, m.VerifyRequest(post, sess))

	api := httptest.NewRequest(http.MethodPost, "/api/pricing/preview", strings.NewReader(`{}`))
	api.Header.Set(CSRFHeader, token)
	assert.NoError(t, m.VerifyRequest(api, sess))

	forged := httptest.NewRequest(http.MethodPost, "/products", nil)
	forged.Header.Set(CSRFHeader, "forged")
	assert.ErrorIs(t, m.VerifyRequest(forged, sess), ErrCSRFTokenMismatch)
}

func TestTokensDifferAcrossSessions(t *testing.T) {
	m := NewCSRFManager("secret")
	a, _ := m.EnsureToken(context.Background(), testSession("a"))
	b, _ := m.EnsureToken(context.Background(), testSession("b"))
	assert.NotEqual(t, a, b)
}
