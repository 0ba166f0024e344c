package settings

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dentaldesk/dentaldesk/internal/backend"
	"github.com/dentaldesk/dentaldesk/internal/catalog"
	"github.com/dentaldesk/dentaldesk/internal/form"
	"github.com/dentaldesk/dentaldesk/internal/i18n"
	"github.com/dentaldesk/dentaldesk/internal/shared"
	"github.com/dentaldesk/dentaldesk/internal/view"
)

// Account is what the handler needs from Service.
type Account interface {
	UpdateProfile(ctx context.Context, f ProfileForm) error
	ResetPassword(ctx context.Context, f PasswordForm) error
}

// CategorySource lists the backend categories.
type CategorySource interface {
	Categories(ctx context.Context) ([]catalog.Category, error)
}

// Refresher queues a background refresh of the category cache.
type Refresher interface {
	EnqueueCategoryRefresh(ctx context.Context) error
}

// Handler manages the settings page.
type Handler struct {
	logger     *slog.Logger
	account    Account
	categories CategorySource
	refresher  Refresher
	translator *i18n.Translator
	templates  *view.Engine
	csrf       *shared.CSRFManager
	secure     bool
}

// NewHandler builds Handler instance. secureCookies marks the language cookie
// Secure.
func NewHandler(logger *slog.Logger, account Account, categories CategorySource, refresher Refresher, translator *i18n.Translator, templates *view.Engine, csrf *shared.CSRFManager, secureCookies bool) *Handler {
	return &Handler{
		logger:     logger,
		account:    account,
		categories: categories,
		refresher:  refresher,
		translator: translator,
		templates:  templates,
		csrf:       csrf,
		secure:     secureCookies,
	}
}

// MountRoutes registers /settings routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.showSettings)
	r.Post("/profile", h.updateProfile)
	r.Post("/password", h.resetPassword)
	r.Post("/language", h.setLanguage)
	r.Post("/categories", h.saveCategories)
	r.Post("/categories/refresh", h.refreshCategories)
}

// LanguageOption is one entry of the language selector.
type LanguageOption struct {
	Code     string
	Label    string
	Selected bool
}

type pageData struct {
	Profile         ProfileForm
	ProfileErrors   form.FieldErrors
	ProfileError    string
	PasswordErrors  form.FieldErrors
	PasswordError   string
	Languages       []LanguageOption
	Categories      []catalog.CategoryToggle
	CategoriesError string
}

func (h *Handler) showSettings(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	h.render(w, r, pageData{Profile: ProfileFromUser(sess.User())}, http.StatusOK)
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	ctx := r.Context()
	loc := i18n.FromContext(ctx)
	sess := shared.SessionFromContext(ctx)

	profile := ProfileForm{Name: r.PostFormValue("name"), Email: r.PostFormValue("email")}.Normalize()
	if errs := profile.Validate(); len(errs) > 0 {
		h.render(w, r, pageData{Profile: profile, ProfileErrors: errs}, http.StatusUnprocessableEntity)
		return
	}
	if err := h.account.UpdateProfile(ctx, profile); err != nil {
		h.logger.Error("update profile", slog.Any("error", err))
		h.render(w, r, pageData{Profile: profile, ProfileError: backend.UserMessage(err, loc.T("profileFailed", "settings"))}, http.StatusBadGateway)
		return
	}
	user := sess.User()
	user.Name, user.Email = profile.Name, profile.Email
	sess.SignIn(sess.Token(), user)
	shared.RedirectWithFlash(w, r, "/settings", "success", loc.T("profileSaved", "settings"))
}

func (h *Handler) resetPassword(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	ctx := r.Context()
	loc := i18n.FromContext(ctx)
	sess := shared.SessionFromContext(ctx)
	profile := ProfileFromUser(sess.User())

	pw := PasswordForm{
		CurrentPassword: r.PostFormValue("currentPassword"),
		Password:        r.PostFormValue("password"),
		ConfirmPassword: r.PostFormValue("confirmPassword"),
	}
	if errs := pw.Validate(); len(errs) > 0 {
		h.render(w, r, pageData{Profile: profile, PasswordErrors: errs}, http.StatusUnprocessableEntity)
		return
	}
	if err := h.account.ResetPassword(ctx, pw); err != nil {
		h.logger.Error("reset password", slog.Any("error", err))
		h.render(w, r, pageData{Profile: profile, PasswordError: backend.UserMessage(err, loc.T("passwordFailed", "settings"))}, http.StatusBadGateway)
		return
	}
	shared.RedirectWithFlash(w, r, "/settings", "success", loc.T("passwordChanged", "settings"))
}

func (h *Handler) setLanguage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	lang := strings.TrimSpace(r.PostFormValue("language"))
	sess := shared.SessionFromContext(r.Context())
	i18n.SetLanguage(w, sess, lang, h.secure)
	loc := i18n.NewLocalizer(h.translator, lang)
	shared.RedirectWithFlash(w, r, "/settings", "success", loc.T("languageSaved", "settings"))
}

func (h *Handler) saveCategories(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	ctx := r.Context()
	loc := i18n.FromContext(ctx)
	sess := shared.SessionFromContext(ctx)

	categories, err := h.categories.Categories(ctx)
	if err != nil {
		h.logger.Error("load categories", slog.Any("error", err))
		shared.RedirectWithFlash(w, r, "/settings", "error", backend.UserMessage(err, loc.T("categoriesFailed", "settings")))
		return
	}
	enabled := make(map[string]bool)
	for _, id := range r.PostForm["category"] {
		enabled[id] = true
	}
	catalog.SaveToggles(sess, catalog.MergeToggles(categories, catalog.SavedToggles(sess)), enabled)
	shared.RedirectWithFlash(w, r, "/settings", "success", loc.T("categoriesSaved", "settings"))
}

func (h *Handler) refreshCategories(w http.ResponseWriter, r *http.Request) {
	loc := i18n.FromContext(r.Context())
	if err := h.refresher.EnqueueCategoryRefresh(r.Context()); err != nil {
		h.logger.Error("enqueue category refresh", slog.Any("error", err))
		shared.RedirectWithFlash(w, r, "/settings", "error", loc.T("refreshFailed", "settings"))
		return
	}
	shared.RedirectWithFlash(w, r, "/settings", "success", loc.T("refreshQueued", "settings"))
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, data pageData, status int) {
	ctx := r.Context()
	loc := i18n.FromContext(ctx)
	sess := shared.SessionFromContext(ctx)

	for _, code := range h.translator.Languages() {
		data.Languages = append(data.Languages, LanguageOption{
			Code:     code,
			Label:    loc.TOr(code, "languages", strings.ToUpper(code)),
			Selected: code == loc.Lang(),
		})
	}
	categories, err := h.categories.Categories(ctx)
	if err != nil {
		h.logger.Warn("load categories", slog.Any("error", err))
		data.CategoriesError = backend.UserMessage(err, loc.T("categoriesFailed", "settings"))
	} else {
		data.Categories = catalog.MergeToggles(categories, catalog.SavedToggles(sess))
	}

	csrfToken, _ := h.csrf.EnsureToken(ctx, sess)
	if err := h.templates.Render(w, status, "pages/settings.html", view.NewTemplateData(r, csrfToken, loc.T("title", "settings"), data)); err != nil {
		h.logger.Error("render template", slog.Any("error", err))
	}
}
