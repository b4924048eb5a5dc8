package http

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

const (
	visitorCookieName = "ps_visitor"
	visitorCookieAge  = 365 * 24 * time.Hour
)

// CookieVisitorIdentity keeps the visitor id in a first-party cookie.
type CookieVisitorIdentity struct {
	Secure bool
}

func NewCookieVisitorIdentity(secure bool) *CookieVisitorIdentity {
	return &CookieVisitorIdentity{Secure: secure}
}

func (v *CookieVisitorIdentity) GetOrCreateVisitorID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(visitorCookieName); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil {
			return c.Value
		}
	}

	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     visitorCookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(visitorCookieAge.Seconds()),
		HttpOnly: true,
		Secure:   v.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}
