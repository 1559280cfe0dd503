package handler

import (
	"net/http"
	"time"

	sessiondomain "housemonitor/internal/session/domain"
)

const (
	// SessionCookie holds the opaque session id.
	SessionCookie = "hm_session"
	// RememberCookie holds the raw remember-me token.
	RememberCookie = "remember_token"
)

// CookieConfig controls cookie attributes. Secure is only false for local HTTP development.
type CookieConfig struct {
	Secure bool
}

func (c CookieConfig) setSession(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   int(sessiondomain.SessionTTL / time.Second),
		Secure:   c.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

func (c CookieConfig) setRemember(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     RememberCookie,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		MaxAge:   int(sessiondomain.RememberTTL / time.Second),
		Secure:   c.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (c CookieConfig) clear(w http.ResponseWriter) {
	for _, name := range []string{SessionCookie, RememberCookie} {
		sameSite := http.SameSiteStrictMode
		if name == RememberCookie {
			sameSite = http.SameSiteLaxMode
		}
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			Expires:  time.Unix(0, 0),
			Secure:   c.Secure,
			HttpOnly: true,
			SameSite: sameSite,
		})
	}
}

func cookieValue(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}
