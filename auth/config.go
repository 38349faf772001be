package auth

import (
	"errors"
	"time"
)

// Default configuration values.
const (
	DefaultCookieName = "artifactpg_session"
	DefaultSessionTTL = 24 * time.Hour
	DefaultLoginPath  = "/login"
	DefaultLogoutPath = "/logout"
	DefaultRedirect   = "/"

	// DevelopmentUser is the username attached to requests in development
	// mode.
	DevelopmentUser = "developer"
)

// DefaultPublicPrefixes are served without a session.
var DefaultPublicPrefixes = []string{
	"/api/auth",
	"/auth",
	"/static",
	"/favicon.ico",
	"/public",
	"/health",
	"/login",
	"/logout",
}

// ErrInvalidConfig indicates invalid configuration.
var ErrInvalidConfig = errors.New("auth: invalid configuration")

// Config configures an Authenticator.
type Config struct {
	// Development admits every request as DevelopmentUser.
	Development bool

	// Users maps usernames to bcrypt password hashes.
	Users Users

	// Sessions stores logged-in sessions.
	// Defaults to an in-memory store with SessionTTL.
	Sessions SessionStore

	// CookieName of the session cookie.
	// Defaults to "artifactpg_session".
	CookieName string

	// SessionTTL is how long a session stays valid.
	// Defaults to 24 hours.
	SessionTTL time.Duration

	// SecureCookie sets the Secure flag; enable behind HTTPS.
	SecureCookie bool

	// PublicPrefixes are path prefixes that skip authentication.
	// Defaults to DefaultPublicPrefixes.
	PublicPrefixes []string

	// LoginPath is where unauthenticated page requests are redirected.
	// Defaults to "/login".
	LoginPath string

	// DefaultRedirect is the landing page after login when no valid next
	// path was given. Defaults to "/".
	DefaultRedirect string

	// Logger for structured logging.
	// If nil, logging is disabled.
	Logger Logger
}

// Logger interface for structured logging.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// DefaultConfig returns a new Config with default values.
func DefaultConfig() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// applyDefaults fills in default values for zero-valued fields.
func (c *Config) applyDefaults() {
	if c.CookieName == "" {
		c.CookieName = DefaultCookieName
	}
	if c.SessionTTL == 0 {
		c.SessionTTL = DefaultSessionTTL
	}
	if c.PublicPrefixes == nil {
		c.PublicPrefixes = DefaultPublicPrefixes
	}
	if c.LoginPath == "" {
		c.LoginPath = DefaultLoginPath
	}
	if c.DefaultRedirect == "" {
		c.DefaultRedirect = DefaultRedirect
	}
	if c.Sessions == nil {
		c.Sessions = NewMemoryStore(c.SessionTTL)
	}
	if c.Users == nil {
		c.Users = Users{}
	}
}

// validate checks the configuration for errors.
func (c *Config) validate() error {
	if c.SessionTTL < time.Minute {
		return ErrInvalidConfig
	}
	if !isLocalPath(c.LoginPath) || !isLocalPath(c.DefaultRedirect) {
		return ErrInvalidConfig
	}
	if !c.Development && len(c.Users) == 0 {
		return ErrInvalidConfig
	}
	return nil
}
