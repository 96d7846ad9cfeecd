package httpserver

import (
	"net/http"
	"time"
)

// sessionCookie names the opaque session partition cookie. Its value is
// a ULID used only as a cache/archive partition key.
const sessionCookie = "sid"

// sessionID returns the request's session id, issuing a new cookie when
// absent.
func sessionID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	id := newID()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   int((30 * 24 * time.Hour).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}
