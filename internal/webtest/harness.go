// Package webtest wires the request plumbing handler tests need: a miniredis
// backed session, CSRF token, localizer and the real template engine.
package webtest

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/dentaldesk/dentaldesk/internal/i18n"
	"github.com/dentaldesk/dentaldesk/internal/shared"
	"github.com/dentaldesk/dentaldesk/internal/view"
)

// Harness keeps one browser-like session across requests.
type Harness struct {
	T          *testing.T
	Miniredis  *miniredis.Miniredis
	Redis      *redis.Client
	Sessions   *shared.SessionManager
	CSRF       *shared.CSRFManager
	Templates  *view.Engine
	Translator *i18n.Translator
	Logger     *slog.Logger

	sessionID string
	lang      string
}

// New starts miniredis and parses the templates.
func New(t *testing.T) *Harness {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	templates, err := view.NewEngine()
	if err != nil {
		t.Fatalf("templates: %v", err)
	}
	tr, err := i18n.New(logger, "en")
	if err != nil {
		t.Fatalf("translator: %v", err)
	}
	return &Harness{
		T:          t,
		Miniredis:  mr,
		Redis:      client,
		Sessions:   shared.NewSessionManager(client, "test_session", "secret", time.Hour, false),
		CSRF:       shared.NewCSRFManager("csrfsecret"),
		Templates:  templates,
		Translator: tr,
		Logger:     logger,
		lang:       "en",
	}
}

// UseLanguage switches the localizer attached to later requests.
func (h *Harness) UseLanguage(lang string) { h.lang = lang }

// Do serves one request through handler and commits the session afterwards.
// Form values are sent url-encoded together with a valid CSRF token.
func (h *Harness) Do(handler http.Handler, method, target string, form url.Values) *httptest.ResponseRecorder {
	h.T.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	return h.serve(handler, req, form)
}

// DoJSON posts a JSON body with the CSRF header set.
func (h *Harness) DoJSON(handler http.Handler, method, target, payload string) *httptest.ResponseRecorder {
	h.T.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	return h.serve(handler, req, nil)
}

func (h *Harness) serve(handler http.Handler, req *http.Request, form url.Values) *httptest.ResponseRecorder {
	h.T.Helper()
	if h.sessionID != "" {
		req.AddCookie(&http.Cookie{Name: h.Sessions.CookieName(), Value: h.Sessions.CookieValue(h.sessionID)})
	}
	sess, err := h.Sessions.Load(context.Background(), req)
	if err != nil {
		h.T.Fatalf("load session: %v", err)
	}
	if form != nil {
		token, _ := h.CSRF.EnsureToken(req.Context(), sess)
		form.Set(shared.CSRFFormField, token)
		encoded := form.Encode()
		req.Body = io.NopCloser(strings.NewReader(encoded))
		req.ContentLength = int64(len(encoded))
	}
	ctx := shared.ContextWithSession(req.Context(), sess)
	ctx = i18n.WithLocalizer(ctx, i18n.NewLocalizer(h.Translator, h.lang))
	req = req.WithContext(ctx)

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if err := h.Sessions.Commit(ctx, res, req, sess); err != nil {
		h.T.Fatalf("commit session: %v", err)
	}
	h.sessionID = sess.ID
	return res
}

// Session loads the current session as the next request would see it.
func (h *Harness) Session() *shared.Session {
	h.T.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if h.sessionID != "" {
		req.AddCookie(&http.Cookie{Name: h.Sessions.CookieName(), Value: h.Sessions.CookieValue(h.sessionID)})
	}
	sess, err := h.Sessions.Load(context.Background(), req)
	if err != nil {
		h.T.Fatalf("load session: %v", err)
	}
	return sess
}

// SessionID returns the id of the harness session, empty before the first request.
func (h *Harness) SessionID() string { return h.sessionID }

// SignIn stores credentials in the session as a successful login would.
func (h *Harness) SignIn(token string, user shared.UserProfile) {
	h.T.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if h.sessionID != "" {
		req.AddCookie(&http.Cookie{Name: h.Sessions.CookieName(), Value: h.Sessions.CookieValue(h.sessionID)})
	}
	sess, err := h.Sessions.Load(context.Background(), req)
	if err != nil {
		h.T.Fatalf("load session: %v", err)
	}
	sess.SignIn(token, user)
	if err := h.Sessions.Commit(context.Background(), httptest.NewRecorder(), req, sess); err != nil {
		h.T.Fatalf("commit session: %v", err)
	}
	h.sessionID = sess.ID
}

// Flash pops the next queued flash message, nil when none.
func (h *Harness) Flash() *shared.FlashMessage {
	h.T.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: h.Sessions.CookieName(), Value: h.Sessions.CookieValue(h.sessionID)})
	sess, err := h.Sessions.Load(context.Background(), req)
	if err != nil {
		h.T.Fatalf("load session: %v", err)
	}
	msg := sess.PopFlash()
	_ = h.Sessions.Commit(context.Background(), httptest.NewRecorder(), req, sess)
	return msg
}
