package auth

import (
	"net/http"
	"net/url"

	"github.com/dentaldesk/dentaldesk/internal/backend"
	"github.com/dentaldesk/dentaldesk/internal/shared"
)

// LoginPath is where anonymous requests are sent.
const LoginPath = "/auth/login"

// RequireAuth redirects anonymous users to the login page and hands the
// session token to backend calls made while serving the request.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		if !sess.IsAuthenticated() {
			target := LoginPath
			if r.Method == http.MethodGet && r.URL.Path != "/" {
				target += "?next=" + url.QueryEscape(r.URL.RequestURI())
			}
			http.Redirect(w, r, target, http.StatusSeeOther)
			return
		}
		ctx := backend.WithToken(r.Context(), sess.Token())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// safeNext accepts only local absolute paths as post-login targets.
func safeNext(next string) string {
	if next == "" || next[0] != '/' || (len(next) > 1 && (next[1] == '/' || next[1] == '\\')) {
		return "/"
	}
	return next
}
