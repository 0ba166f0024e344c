package shared

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"

	"github.com/google/uuid"
)

const (
	// CSRFSessionKey stores the session's token.
	CSRFSessionKey = "csrf_token"
	// CSRFFormField is rendered by the partials/csrf template.
	CSRFFormField = "csrf_token"
	// CSRFHeader carries the token on fetch calls such as the pricing preview.
	CSRFHeader = "X-CSRF-Token"
)

// CSRFManager issues synchronizer tokens kept in the session. A token is an
// HMAC over the session id and a random nonce, so a token lifted from one
// session is useless in another.
type CSRFManager struct {
	secret []byte
}

// NewCSRFManager returns a CSRFManager keyed with secret.
func NewCSRFManager(secret string) *CSRFManager {
	return &CSRFManager{secret: []byte(secret)}
}

// EnsureToken returns the session token, minting one on first use.
func (m *CSRFManager) EnsureToken(ctx context.Context, sess *Session) (string, error) {
	if sess == nil {
		return "", ErrSessionMissing
	}
	if token := sess.Get(CSRFSessionKey); token != "" {
		return token, nil
	}
	return m.Rotate(sess)
}

// Rotate replaces the session token. Called when the session changes hands
// (sign in) so a token issued to the anonymous login page stops working.
func (m *CSRFManager) Rotate(sess *Session) (string, error) {
	if sess == nil {
		return "", ErrSessionMissing
	}
	token := m.sign(sess.ID, uuid.NewString())
	sess.Set(CSRFSessionKey, token)
	return token, nil
}

// VerifyToken compares token against the session token in constant time.
func (m *CSRFManager) VerifyToken(ctx context.Context, sess *Session, token string) error {
	if sess == nil || token == "" {
		return ErrCSRFTokenMissing
	}
	expected := sess.Get(CSRFSessionKey)
	if expected == "" {
		return ErrCSRFTokenMissing
	}
	if !hmac.Equal([]byte(expected), []byte(token)) {
		return ErrCSRFTokenMismatch
	}
	return nil
}

// VerifyRequest checks the token carried by r. Safe methods pass untouched.
func (m *CSRFManager) VerifyRequest(r *http.Request, sess *Session) error {
	if !RequiresCSRF(r.Method) {
		return nil
	}
	return m.VerifyToken(r.Context(), sess, TokenFromRequest(r))
}

// TokenFromRequest reads the header first, then the posted form field.
func TokenFromRequest(r *http.Request) string {
	if token := r.Header.Get(CSRFHeader); token != "" {
		return token
	}
	return r.PostFormValue(CSRFFormField)
}

// RequiresCSRF reports whether requests with method change state.
func RequiresCSRF(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return false
	default:
		return true
	}
}

func (m *CSRFManager) sign(sessionID, nonce string) string {
	mac := hmac.New(sha256.New, m.secret)
	_, _ = mac.Write([]byte(sessionID))
	_, _ = mac.Write([]byte{'|'})
	_, _ = mac.Write([]byte(nonce))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
