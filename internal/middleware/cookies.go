package middleware

import (
	"net/http"

	"github.com/snapvault/gallery-server-go/internal/config"
)

const (
	// OrganizerSessionCookie is scoped to the organizer API surface so it is
	// never sent along with guest traffic.
	OrganizerSessionCookie = "organizer_session_token"
	OrganizerCookiePath    = "/organizer"

	DeviceSessionCookie = "device_session_token"
	DeviceCookiePath    = "/"
)

func SetOrganizerSessionCookie(w http.ResponseWriter, token string, maxAgeSeconds int, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     OrganizerSessionCookie,
		Value:    token,
		Path:     OrganizerCookiePath,
		MaxAge:   maxAgeSeconds,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func SetDeviceSessionCookie(w http.ResponseWriter, token string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     DeviceSessionCookie,
		Value:    token,
		Path:     DeviceCookiePath,
		MaxAge:   int(config.DeviceSessionMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
}

func ClearSessionCookie(w http.ResponseWriter, name, path string) {
	http.SetCookie(w, &http.Cookie{
		Name:   name,
		Value:  "",
		Path:   path,
		MaxAge: -1,
	})
}

// CookieValue returns the named cookie's value, or "" when absent.
func CookieValue(r *http.Request, name string) string {
	cookie, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}
