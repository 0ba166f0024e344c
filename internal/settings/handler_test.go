package settings_test

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dentaldesk/dentaldesk/internal/backend"
	"github.com/dentaldesk/dentaldesk/internal/catalog"
	"github.com/dentaldesk/dentaldesk/internal/i18n"
	"github.com/dentaldesk/dentaldesk/internal/settings"
	"github.com/dentaldesk/dentaldesk/internal/shared"
	"github.com/dentaldesk/dentaldesk/internal/webtest"
	_ "github.com/dentaldesk/dentaldesk/testing"
)

type stubAccount struct {
	profile    settings.ProfileForm
	password   settings.PasswordForm
	profileErr error
	calls      int
}

func (s *stubAccount) UpdateProfile(_ context.Context, f settings.ProfileForm) error {
	s.calls++
	s.profile = f
	return s.profileErr
}

func (s *stubAccount) ResetPassword(_ context.Context, f settings.PasswordForm) error {
	s.calls++
	s.password = f
	return nil
}

type stubCategories struct {
	categories []catalog.Category
	err        error
}

func (s stubCategories) Categories(context.Context) ([]catalog.Category, error) {
	return s.categories, s.err
}

type stubRefresher struct {
	queued int
	err    error
}

func (s *stubRefresher) EnqueueCategoryRefresh(context.Context) error {
	s.queued++
	return s.err
}

type fixture struct {
	h         *webtest.Harness
	r         chi.Router
	account   *stubAccount
	refresher *stubRefresher
}

func newFixture(t *testing.T, cats stubCategories) fixture {
	t.Helper()
	h := webtest.New(t)
	account := &stubAccount{}
	refresher := &stubRefresher{}
	handler := settings.NewHandler(h.Logger, account, cats, refresher, h.Translator, h.Templates, h.CSRF, false)
	r := chi.NewRouter()
	r.Route("/settings", handler.MountRoutes)
	h.SignIn("tok", shared.UserProfile{ID: "1", Name: "Anna", Email: "anna@clinic.example"})
	return fixture{h: h, r: r, account: account, refresher: refresher}
}

var sampleCategories = stubCategories{categories: []catalog.Category{{ID: "1", Name: "Implants"}, {ID: "2", Name: "Orthodontics"}}}

func TestSettingsPagePrefillsProfile(t *testing.T) {
	f := newFixture(t, sampleCategories)
	res := f.h.Do(f.r, http.MethodGet, "/settings", nil)
	require.Equal(t, http.StatusOK, res.Code)
	body := res.Body.String()
	assert.Contains(t, body, `value="Anna"`)
	assert.Contains(t, body, "Implants")
	assert.Contains(t, body, `value="sv"`)
}

func TestUpdateProfileValidation(t *testing.T) {
	f := newFixture(t, sampleCategories)
	res := f.h.Do(f.r, http.MethodPost, "/settings/profile", url.Values{"name": {" "}, "email": {"nope"}})
	assert.Equal(t, http.StatusUnprocessableEntity, res.Code)
	assert.Contains(t, res.Body.String(), `data-error-for="name"`)
	assert.Contains(t, res.Body.String(), `data-error-for="email"`)
	assert.Zero(t, f.account.calls)
}

func TestUpdateProfileRefreshesSessionUser(t *testing.T) {
	f := newFixture(t, sampleCategories)
	res := f.h.Do(f.r, http.MethodPost, "/settings/profile", url.Values{"name": {"Anna Berg"}, "email": {"anna.berg@clinic.example"}})
	require.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, "Anna Berg", f.account.profile.Name)
	sess := f.h.Session()
	assert.Equal(t, "Anna Berg", sess.User().Name)
	assert.Equal(t, "tok", sess.Token())
	assert.Equal(t, "success", f.h.Flash().Kind)
}

func TestUpdateProfileBackendError(t *testing.T) {
	f := newFixture(t, sampleCategories)
	f.account.profileErr = &backend.APIError{Status: 409, Message: "Email already taken"}
	res := f.h.Do(f.r, http.MethodPost, "/settings/profile", url.Values{"name": {"Anna"}, "email": {"taken@clinic.example"}})
	assert.Equal(t, http.StatusBadGateway, res.Code)
	assert.Contains(t, res.Body.String(), "Email already taken")
	assert.Equal(t, "Anna", f.h.Session().User().Name)
}

func TestResetPasswordRules(t *testing.T) {
	f := newFixture(t, sampleCategories)
	res := f.h.Do(f.r, http.MethodPost, "/settings/password", url.Values{
		"currentPassword": {"old-secret"},
		"password":        {"short"},
		"confirmPassword": {"different"},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, res.Code)
	body := res.Body.String()
	assert.Contains(t, body, `data-error-for="password"`)
	assert.Contains(t, body, `data-error-for="confirmPassword"`)
	assert.NotContains(t, body, "old-secret")
	assert.Zero(t, f.account.calls)

	res = f.h.Do(f.r, http.MethodPost, "/settings/password", url.Values{
		"currentPassword": {"old-secret"},
		"password":        {"long-enough"},
		"confirmPassword": {"long-enough"},
	})
	require.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, "long-enough", f.account.password.Password)
}

func TestSetLanguageWritesSessionAndCookie(t *testing.T) {
	f := newFixture(t, sampleCategories)
	res := f.h.Do(f.r, http.MethodPost, "/settings/language", url.Values{"language": {"sv"}})
	require.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, "sv", f.h.Session().Get(shared.SessionKeyLanguage))
	var found bool
	for _, c := range res.Result().Cookies() {
		if c.Name == i18n.LanguageCookie {
			found = true
			assert.Equal(t, "sv", c.Value)
		}
	}
	assert.True(t, found)
	flash := f.h.Flash()
	require.NotNil(t, flash)
	assert.Equal(t, f.h.Translator.Resolve("sv", "languageSaved", "settings"), flash.Message)
}

func TestSaveCategoriesStoresToggles(t *testing.T) {
	f := newFixture(t, sampleCategories)
	res := f.h.Do(f.r, http.MethodPost, "/settings/categories", url.Values{"category": {"2"}})
	require.Equal(t, http.StatusSeeOther, res.Code)
	toggles := catalog.SavedToggles(f.h.Session())
	require.Len(t, toggles, 2)
	assert.False(t, toggles[0].Enabled)
	assert.True(t, toggles[1].Enabled)
	assert.Equal(t, []string{"Orthodontics"}, catalog.EnabledNames(toggles))
}

func TestSaveCategoriesBackendFailure(t *testing.T) {
	f := newFixture(t, stubCategories{err: errors.New("boom")})
	res := f.h.Do(f.r, http.MethodPost, "/settings/categories", url.Values{"category": {"2"}})
	require.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, "error", f.h.Flash().Kind)
	assert.Nil(t, catalog.SavedToggles(f.h.Session()))
}

func TestRefreshCategoriesEnqueues(t *testing.T) {
	f := newFixture(t, sampleCategories)
	res := f.h.Do(f.r, http.MethodPost, "/settings/categories/refresh", url.Values{})
	require.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, 1, f.refresher.queued)
	assert.Equal(t, "success", f.h.Flash().Kind)
}
