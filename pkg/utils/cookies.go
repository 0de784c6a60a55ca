package utils

import (
	"net/http"
	"time"

	"instructor-portal/internal/data/entity"
)

const (
	AccessTokenCookie  = "portal-access-token"
	RefreshTokenCookie = "portal-refresh-token"
	CodeVerifierCookie = "portal-code-verifier"
	CartCookie         = "cart_id"

	refreshTokenMaxAge = 30 * 24 * time.Hour
)

// SetSessionCookies stores the provider tokens as HttpOnly cookies
func SetSessionCookies(w http.ResponseWriter, session *entity.AuthSession, secure bool) {
	accessMaxAge := time.Until(session.ExpiresAt)
	if accessMaxAge <= 0 {
		accessMaxAge = time.Hour
	}

	http.SetCookie(w, newCookie(AccessTokenCookie, session.AccessToken, accessMaxAge, secure))
	if session.RefreshToken != "" {
		http.SetCookie(w, newCookie(RefreshTokenCookie, session.RefreshToken, refreshTokenMaxAge, secure))
	}
}

func ClearSessionCookies(w http.ResponseWriter, secure bool) {
	for _, name := range []string{AccessTokenCookie, RefreshTokenCookie} {
		c := newCookie(name, "", 0, secure)
		c.MaxAge = -1
		http.SetCookie(w, c)
	}
}

func SetCartCookie(w http.ResponseWriter, cartID string, maxAge time.Duration, secure bool) {
	http.SetCookie(w, newCookie(CartCookie, cartID, maxAge, secure))
}

// CookieValue returns the named cookie's value or ""
func CookieValue(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}

func newCookie(name, value string, maxAge time.Duration, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}
