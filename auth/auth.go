package auth

import (
	"context"
	"encoding/json"
	"html/template"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type contextKey struct{}

// WithUser returns a context carrying username.
func WithUser(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, contextKey{}, username)
}

// UserFromContext returns the authenticated username, if any.
func UserFromContext(ctx context.Context) (string, bool) {
	u, ok := ctx.Value(contextKey{}).(string)
	return u, ok && u != ""
}

// Authenticator implements login, logout and the session middleware.
type Authenticator struct {
	config *Config
}

// New creates an Authenticator. A nil config is DefaultConfig, which only
// validates in development mode.
func New(cfg *Config) (*Authenticator, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	} else {
		cfg.applyDefaults()
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Authenticator{config: cfg}, nil
}

// Middleware admits requests with a live session, public paths and, in
// development mode, everything.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.config.Development {
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), DevelopmentUser)))
			return
		}

		if user, ok := a.sessionUser(r); ok {
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
			return
		}
		if a.isPublic(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		if isAPIRequest(r) {
			writeUnauthorized(w)
			return
		}
		target := r.URL.Path
		if r.URL.RawQuery != "" {
			target += "?" + r.URL.RawQuery
		}
		http.Redirect(w, r, a.config.LoginPath+"?next="+url.QueryEscape(target), http.StatusFound)
	})
}

func (a *Authenticator) sessionUser(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(a.config.CookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	sess, ok := a.config.Sessions.Get(cookie.Value)
	if !ok {
		return "", false
	}
	return sess.Username, true
}

func (a *Authenticator) isPublic(path string) bool {
	for _, p := range a.config.PublicPrefixes {
		if path == p || strings.HasPrefix(path, strings.TrimSuffix(p, "/")+"/") {
			return true
		}
	}
	return false
}

// isAPIRequest reports whether r expects JSON rather than a page. API
// routes may be mounted below a UI prefix, so any /api/ segment counts.
func isAPIRequest(r *http.Request) bool {
	if strings.Contains(r.URL.Path, "/api/") {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{
			"code":    "unauthorized",
			"message": "authentication required",
		},
	})
}

// LoginHandler serves the login form on GET and authenticates on POST.
func (a *Authenticator) LoginHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			errorMsg := ""
			if r.URL.Query().Get("error") == "invalid" {
				errorMsg = "Invalid username or password"
			}
			a.renderLogin(w, errorMsg, r.URL.Query().Get("next"))
		case http.MethodPost:
			a.handleLogin(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
}

func (a *Authenticator) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	username := r.FormValue("username")
	password := r.FormValue("password")
	next := r.FormValue("next")

	if !a.config.Users.Authenticate(username, password) {
		if a.config.Logger != nil {
			a.config.Logger.Warn("login failed", "username", username, "remote_addr", r.RemoteAddr)
		}
		target := a.config.LoginPath + "?error=invalid"
		if next != "" {
			target += "&next=" + url.QueryEscape(next)
		}
		http.Redirect(w, r, target, http.StatusFound)
		return
	}

	token, err := a.config.Sessions.Create(username)
	if err != nil {
		http.Error(w, "Failed to create session", http.StatusInternalServerError)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     a.config.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   a.config.SecureCookie,
		MaxAge:   int(a.config.SessionTTL / time.Second),
		SameSite: http.SameSiteLaxMode,
	})
	if a.config.Logger != nil {
		a.config.Logger.Info("login succeeded", "username", username)
	}

	http.Redirect(w, r, a.safeNext(next), http.StatusFound)
}

// LogoutHandler ends the session and redirects to the login page.
func (a *Authenticator) LogoutHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie(a.config.CookieName); err == nil {
			a.config.Sessions.Delete(cookie.Value)
		}
		http.SetCookie(w, &http.Cookie{
			Name:   a.config.CookieName,
			Value:  "",
			Path:   "/",
			MaxAge: -1,
		})
		http.Redirect(w, r, a.config.LoginPath, http.StatusFound)
	})
}

// safeNext returns next if it is a path on this host, otherwise the
// default redirect.
func (a *Authenticator) safeNext(next string) string {
	if isLocalPath(next) {
		return next
	}
	return a.config.DefaultRedirect
}

func isLocalPath(p string) bool {
	if !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.HasPrefix(p, "/\\") {
		return false
	}
	u, err := url.Parse(p)
	return err == nil && u.Scheme == "" && u.Host == ""
}

var loginTemplate = template.Must(template.New("login").Parse(`<!DOCTYPE html>
<html>
<head>
    <title>Login - ArtifactPG</title>
    <meta name="viewport" content="width=device-width, initial-scale=1">
    <script src="https://cdn.tailwindcss.com"></script>
</head>
<body class="bg-gray-100 min-h-screen flex items-center justify-center">
    <div class="max-w-md w-full mx-4">
        <div class="bg-white rounded-lg shadow-lg p-8">
            <div class="text-center mb-8">
                <h1 class="text-2xl font-bold text-gray-900">ArtifactPG</h1>
                <p class="text-gray-600 mt-2">Sign in to browse artifacts</p>
            </div>
            {{with .Error}}<div class="mb-4 p-3 bg-red-100 border border-red-400 text-red-700 rounded">{{.}}</div>{{end}}
            <form method="POST" action="{{.Action}}" class="space-y-6">
                <input type="hidden" name="next" value="{{.Next}}">
                <div>
                    <label for="username" class="block text-sm font-medium text-gray-700">Username</label>
                    <input type="text" id="username" name="username" required autofocus
                        class="mt-1 block w-full px-3 py-2 border border-gray-300 rounded-md">
                </div>
                <div>
                    <label for="password" class="block text-sm font-medium text-gray-700">Password</label>
                    <input type="password" id="password" name="password" required
                        class="mt-1 block w-full px-3 py-2 border border-gray-300 rounded-md">
                </div>
                <button type="submit"
                    class="w-full py-2 px-4 rounded-md text-sm font-medium text-white bg-indigo-600 hover:bg-indigo-700">
                    Sign in
                </button>
            </form>
        </div>
    </div>
</body>
</html>`))

func (a *Authenticator) renderLogin(w http.ResponseWriter, errorMsg, next string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = loginTemplate.Execute(w, map[string]string{
		"Error":  errorMsg,
		"Next":   next,
		"Action": a.config.LoginPath,
	})
}
