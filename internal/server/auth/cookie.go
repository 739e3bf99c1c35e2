package auth

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/pointpool/internal/common"
)

// TokenFromCookies looks for the first session cookie among cookie header
// lines ("a=1; user_token=42"). ok is false when the cookie is missing or
// its value does not parse; callers treat both as anonymous.
func TokenFromCookies(lines []string) (SessionToken, bool) {
	if len(lines) == 0 {
		return SessionToken{}, false
	}
	r := http.Request{Header: http.Header{"Cookie": lines}}
	c, err := r.Cookie(common.SessionCookieName)
	if err != nil {
		return SessionToken{}, false
	}
	t, err := ParseSessionToken(c.Value)
	if err != nil {
		return SessionToken{}, false
	}
	return t, true
}

// NewSessionCookie builds the cookie handed out on signup and login.
func NewSessionCookie(t SessionToken, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     common.SessionCookieName,
		Value:    t.String(),
		MaxAge:   int(ttl / time.Second),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// ClearSessionCookie tells the client to drop its session cookie.
func ClearSessionCookie() *http.Cookie {
	return &http.Cookie{
		Name:     common.SessionCookieName,
		Value:    "",
		MaxAge:   -1,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}
