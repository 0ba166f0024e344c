package view

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dentaldesk/dentaldesk/internal/i18n"
	"github.com/dentaldesk/dentaldesk/internal/pricing"
	"github.com/dentaldesk/dentaldesk/internal/shared"
	"github.com/dentaldesk/dentaldesk/web"
)

// Engine renders HTML templates.
type Engine struct {
	templates *template.Template
	bufs      sync.Pool
}

// TemplateData contains values shared across templates.
type TemplateData struct {
	Title         string
	CSRFToken     string
	Flash         *shared.FlashMessage
	CurrentPath   string
	Authenticated bool
	User          shared.UserProfile
	Lang          string
	Localizer     i18n.Localizer
	Data          any
}

// T translates key for the current request, e.g. {{$.T "title" "products"}}.
func (d TemplateData) T(key string, namespace ...string) string {
	return d.Localizer.T(key, namespace...)
}

// NewTemplateData collects the per-request chrome: flash, user and language.
func NewTemplateData(r *http.Request, csrfToken, title string, data any) TemplateData {
	sess := shared.SessionFromContext(r.Context())
	loc := i18n.FromContext(r.Context())
	return TemplateData{
		Title:         title,
		CSRFToken:     csrfToken,
		Flash:         sess.PopFlash(),
		CurrentPath:   r.URL.Path,
		Authenticated: sess.IsAuthenticated(),
		User:          sess.User(),
		Lang:          loc.Lang(),
		Localizer:     loc,
		Data:          data,
	}
}

// NewEngine parses templates at build-time.
func NewEngine() (*Engine, error) {
	funcMap := template.FuncMap{
		"formatDate": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("02 Jan 2006")
		},
		"currency":  pricing.FormatCurrency,
		"money":     pricing.FormatFloat,
		"decimal":   func(d decimal.Decimal) string { return d.String() },
		"fixed2":    func(d decimal.Decimal) string { return d.StringFixed(2) },
		"active":    activeClass,
		"lower":     strings.ToLower,
		"hasPrefix": strings.HasPrefix,
		"add":       func(delta, n int) int { return n + delta },
	}
	tpl, err := template.New("root").Funcs(funcMap).ParseFS(web.Templates, "templates/layouts/*.html", "templates/partials/*.html", "templates/pages/*.html", "templates/pages/*/*.html")
	if err != nil {
		return nil, err
	}
	e := &Engine{templates: tpl}
	e.bufs.New = func() any { return new(bytes.Buffer) }
	return e, nil
}

// Render executes a named template with TemplateData. Output is buffered so a
// failing template never leaves a half-written page behind.
func (e *Engine) Render(w http.ResponseWriter, status int, name string, data TemplateData) error {
	if e == nil {
		return fmt.Errorf("template engine not initialised")
	}
	buf := e.bufs.Get().(*bytes.Buffer)
	buf.Reset()
	defer e.bufs.Put(buf)

	if err := e.templates.ExecuteTemplate(buf, name, data); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

// RenderString executes a template into a string, e.g. a printable document
// handed to the PDF service.
func (e *Engine) RenderString(name string, data TemplateData) (string, error) {
	if e == nil {
		return "", fmt.Errorf("template engine not initialised")
	}
	var buf bytes.Buffer
	if err := e.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Has reports whether a template with name was parsed.
func (e *Engine) Has(name string) bool {
	return e != nil && e.templates.Lookup(name) != nil
}

func activeClass(current, prefix string) string {
	if prefix == "/" {
		if current == "/" {
			return "active"
		}
		return ""
	}
	if strings.HasPrefix(current, prefix) {
		return "active"
	}
	return ""
}
