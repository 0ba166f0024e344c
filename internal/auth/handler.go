package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dentaldesk/dentaldesk/internal/backend"
	"github.com/dentaldesk/dentaldesk/internal/form"
	"github.com/dentaldesk/dentaldesk/internal/i18n"
	"github.com/dentaldesk/dentaldesk/internal/shared"
	"github.com/dentaldesk/dentaldesk/internal/view"
)

// Authenticator is what the handler needs from Service.
type Authenticator interface {
	Authenticate(ctx context.Context, creds Credentials) (string, shared.UserProfile, error)
	Logout(ctx context.Context) error
}

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger         *slog.Logger
	service        Authenticator
	templates      *view.Engine
	sessionManager *shared.SessionManager
	csrfManager    *shared.CSRFManager
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service Authenticator, templates *view.Engine, sessions *shared.SessionManager, csrf *shared.CSRFManager) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:         logger,
		service:        service,
		templates:      templates,
		sessionManager: sessions,
		csrfManager:    csrf,
	}
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/login", h.showLogin)
	r.Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)
}

type loginPageData struct {
	Email  string
	Next   string
	Errors form.FieldErrors
	Error  string
}

func (h *Handler) showLogin(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess.IsAuthenticated() {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	h.render(w, r, loginPageData{Next: safeNext(r.URL.Query().Get("next"))}, http.StatusOK)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	ctx := r.Context()
	loc := i18n.FromContext(ctx)
	sess := shared.SessionFromContext(ctx)

	creds := Credentials{
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
	}
	data := loginPageData{Email: creds.Email, Next: safeNext(r.PostFormValue("next"))}
	if errs := form.Check(creds); len(errs) > 0 {
		data.Errors = errs
		h.render(w, r, data, http.StatusUnprocessableEntity)
		return
	}

	token, user, err := h.service.Authenticate(ctx, creds)
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		h.logger.Info("login rejected", slog.String("email", creds.Email))
		data.Error = loc.T("invalidCredentials", "auth")
		h.render(w, r, data, http.StatusUnauthorized)
		return
	case err != nil:
		h.logger.Error("login failed", slog.Any("error", err))
		data.Error = backend.UserMessage(err, loc.T("loginFailed", "auth"))
		h.render(w, r, data, http.StatusBadGateway)
		return
	}

	if sess == nil {
		h.logger.Error("session missing during login", slog.Any("error", shared.ErrSessionMissing))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	sess.SignIn(token, user)
	if _, err := h.csrfManager.Rotate(sess); err != nil {
		h.logger.Warn("rotate csrf token", slog.Any("error", err))
	}
	h.logger.Info("user signed in", slog.String("user", user.ID))
	shared.RedirectWithFlash(w, r, data.Next, "success", loc.T("welcome", "auth"))
}

// handleLogout always destroys the local session; a failing backend logout is
// only logged.
func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess.IsAuthenticated() {
		ctx := backend.WithToken(r.Context(), sess.Token())
		if err := h.service.Logout(ctx); err != nil {
			h.logger.Warn("backend logout", slog.Any("error", err))
		}
	}
	h.sessionManager.Destroy(sess)
	http.Redirect(w, r, LoginPath, http.StatusSeeOther)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, data loginPageData, status int) {
	loc := i18n.FromContext(r.Context())
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrfManager.EnsureToken(r.Context(), sess)
	if err := h.templates.Render(w, status, "pages/login.html", view.NewTemplateData(r, csrfToken, loc.T("title", "auth"), data)); err != nil {
		h.logger.Error("render login", slog.Any("error", err))
	}
}
