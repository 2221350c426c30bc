package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/storeadmin/backend/internal/infrastructure/config"
)

// ErrNoSessionCookie is returned when the request carries no usable session cookie
var ErrNoSessionCookie = errors.New("no session cookie")

// SessionCookie signs the provider session token into an httpOnly cookie
type SessionCookie struct {
	codec    *securecookie.SecureCookie
	name     string
	domain   string
	path     string
	secure   bool
	sameSite http.SameSite
	maxAge   time.Duration
}

// NewSessionCookie creates the cookie codec from cfg
func NewSessionCookie(cfg config.CookieConfig) (*SessionCookie, error) {
	if cfg.HashKey == "" {
		return nil, errors.New("cookie hash key is required")
	}
	var blockKey []byte
	if cfg.BlockKey != "" {
		blockKey = []byte(cfg.BlockKey)
	}

	codec := securecookie.New([]byte(cfg.HashKey), blockKey)
	codec.MaxAge(int(cfg.MaxAge / time.Second))

	path := cfg.Path
	if path == "" {
		path = "/"
	}
	return &SessionCookie{
		codec:    codec,
		name:     cfg.Name,
		domain:   cfg.Domain,
		path:     path,
		secure:   cfg.Secure,
		sameSite: ParseSameSite(cfg.SameSite),
		maxAge:   cfg.MaxAge,
	}, nil
}

// ParseSameSite maps strict, lax and none to http.SameSite; anything else is strict
func ParseSameSite(s string) http.SameSite {
	switch strings.ToLower(s) {
	case "lax":
		return http.SameSiteLaxMode
	case "none":
		return http.SameSiteNoneMode
	}
	return http.SameSiteStrictMode
}

// Name returns the cookie name
func (c *SessionCookie) Name() string {
	return c.name
}

// MaxAge returns the cookie lifetime, also used as session lifetime
func (c *SessionCookie) MaxAge() time.Duration {
	return c.maxAge
}

// Write sets the signed cookie holding token
func (c *SessionCookie) Write(w http.ResponseWriter, token string) error {
	encoded, err := c.codec.Encode(c.name, token)
	if err != nil {
		return fmt.Errorf("failed to encode session cookie: %w", err)
	}
	http.SetCookie(w, c.cookie(encoded, int(c.maxAge/time.Second)))
	return nil
}

// Read returns the session token of the request
func (c *SessionCookie) Read(r *http.Request) (string, error) {
	raw, err := r.Cookie(c.name)
	if err != nil {
		return "", ErrNoSessionCookie
	}
	var token string
	if err := c.codec.Decode(c.name, raw.Value, &token); err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoSessionCookie, err)
	}
	if token == "" {
		return "", ErrNoSessionCookie
	}
	return token, nil
}

// Clear expires the cookie on the client
func (c *SessionCookie) Clear(w http.ResponseWriter) {
	http.SetCookie(w, c.cookie("", -1))
}

func (c *SessionCookie) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     c.name,
		Value:    value,
		Path:     c.path,
		Domain:   c.domain,
		MaxAge:   maxAge,
		Secure:   c.secure,
		HttpOnly: true,
		SameSite: c.sameSite,
	}
}
