package i18n

import (
	"context"
	"net/http"
	"strings"
	"time"

	"golang.org/x/text/language"

	"github.com/dentaldesk/dentaldesk/internal/shared"
)

// LanguageCookie keeps the preference across sessions.
const LanguageCookie = "language"

const languageCookieTTL = 365 * 24 * time.Hour

// Localizer is a Translator bound to one language.
type Localizer struct {
	lang string
	tr   *Translator
}

// NewLocalizer binds tr to lang.
func NewLocalizer(tr *Translator, lang string) Localizer {
	return Localizer{lang: lang, tr: tr}
}

// T resolves key in the optional namespace.
func (l Localizer) T(key string, namespace ...string) string {
	if l.tr == nil {
		return key
	}
	return l.tr.Resolve(l.lang, key, namespace...)
}

// TOr resolves key, answering fallback on a miss.
func (l Localizer) TOr(key, namespace, fallback string) string {
	if l.tr == nil {
		return fallback
	}
	return l.tr.ResolveOr(l.lang, key, namespace, fallback)
}

// Lang returns the bound language code.
func (l Localizer) Lang() string {
	return l.lang
}

type localizerKey struct{}

// WithLocalizer stores l in ctx.
func WithLocalizer(ctx context.Context, l Localizer) context.Context {
	return context.WithValue(ctx, localizerKey{}, l)
}

// FromContext returns the request localizer. Without one, lookups return keys.
func FromContext(ctx context.Context) Localizer {
	if l, ok := ctx.Value(localizerKey{}).(Localizer); ok {
		return l
	}
	return Localizer{lang: "en"}
}

// Negotiator picks the initial language for a request.
type Negotiator struct {
	tr        *Translator
	supported []string
	matcher   language.Matcher
}

// NewNegotiator builds a matcher over the translator's languages.
func NewNegotiator(tr *Translator) *Negotiator {
	supported := []string{tr.DefaultLanguage()}
	for _, lang := range tr.Languages() {
		if lang != supported[0] {
			supported = append(supported, lang)
		}
	}
	tags := make([]language.Tag, 0, len(supported))
	for _, lang := range supported {
		tags = append(tags, language.Make(lang))
	}
	return &Negotiator{tr: tr, supported: supported, matcher: language.NewMatcher(tags)}
}

// Detect resolves the language in priority order: session value, language
// cookie, Accept-Language, default.
func (n *Negotiator) Detect(r *http.Request, sess *shared.Session) string {
	if lang := strings.TrimSpace(sess.Get(shared.SessionKeyLanguage)); lang != "" {
		return lang
	}
	if cookie, err := r.Cookie(LanguageCookie); err == nil && strings.TrimSpace(cookie.Value) != "" {
		return strings.TrimSpace(cookie.Value)
	}
	if header := r.Header.Get("Accept-Language"); header != "" {
		if tags, _, err := language.ParseAcceptLanguage(header); err == nil && len(tags) > 0 {
			if _, idx, conf := n.matcher.Match(tags...); conf != language.No && idx < len(n.supported) {
				return n.supported[idx]
			}
		}
	}
	return n.tr.DefaultLanguage()
}

// Middleware attaches a Localizer to every request.
func (n *Negotiator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		lang := n.Detect(r, sess)
		ctx := WithLocalizer(r.Context(), NewLocalizer(n.tr, lang))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SetLanguage persists lang in the session and a long-lived cookie. The code is
// not validated; unknown languages resolve every key to itself.
func SetLanguage(w http.ResponseWriter, sess *shared.Session, lang string, secure bool) {
	lang = strings.TrimSpace(lang)
	if sess != nil {
		sess.Set(shared.SessionKeyLanguage, lang)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     LanguageCookie,
		Value:    lang,
		Path:     "/",
		Expires:  time.Now().Add(languageCookieTTL),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
