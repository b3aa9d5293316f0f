package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/snapvault/gallery-server-go/internal/audit"
	apperrors "github.com/snapvault/gallery-server-go/internal/errors"
)

// CSRFMiddleware guards cookie-authenticated mutations with an origin trust
// check. Bearer-authenticated requests are exempt: a browser cannot attach an
// Authorization header cross-site, so the header itself proves intent.
//
// The check applies only to mutating methods, and only when the request rides
// on the ambient organizer session cookie. The browser-set Origin (or
// Referer, as fallback) must normalize to an entry in the allow-list;
// localhost is always trusted for development.
type CSRFMiddleware struct {
	trustedOrigins map[string]bool
}

func NewCSRFMiddleware(allowedOrigins []string) *CSRFMiddleware {
	trusted := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		if normalized, ok := normalizeOrigin(origin); ok {
			trusted[normalized] = true
		}
	}
	return &CSRFMiddleware{trustedOrigins: trusted}
}

func (m *CSRFMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.shouldEnforce(r) {
			next.ServeHTTP(w, r)
			return
		}

		origin := requestOrigin(r)
		if !m.isTrusted(origin) {
			log.Warn().
				Str("origin", origin).
				Str("path", r.URL.Path).
				Msg("csrf origin check failed")
			audit.LogFromRequest(r, audit.Event{
				Type:    audit.EventCSRFFailure,
				Details: map[string]interface{}{"origin": origin},
			})
			writeError(w, r, apperrors.CSRFCheckFailed())
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (m *CSRFMiddleware) shouldEnforce(r *http.Request) bool {
	if isSafeMethod(r.Method) {
		return false
	}
	if BearerToken(r) != "" {
		return false
	}
	return CookieValue(r, OrganizerSessionCookie) != ""
}

func (m *CSRFMiddleware) isTrusted(origin string) bool {
	if origin == "" {
		return false
	}

	normalized, ok := normalizeOrigin(origin)
	if !ok {
		return false
	}

	if isLoopbackHost(hostOf(normalized)) {
		return true
	}

	return m.trustedOrigins[normalized]
}

func requestOrigin(r *http.Request) string {
	if origin := r.Header.Get("Origin"); origin != "" {
		return origin
	}
	return r.Header.Get("Referer")
}

// normalizeOrigin reduces a URL to scheme://host[:port] with default ports
// stripped, so "https://a.example:443" and "https://a.example" compare equal.
func normalizeOrigin(raw string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Scheme == "" || u.Hostname() == "" {
		return "", false
	}

	scheme := strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Hostname())
	port := u.Port()

	if (scheme == "http" && port == "80") || (scheme == "https" && port == "443") {
		port = ""
	}

	if port != "" {
		return scheme + "://" + host + ":" + port, true
	}
	return scheme + "://" + host, true
}

func hostOf(normalizedOrigin string) string {
	u, err := url.Parse(normalizedOrigin)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

func isLoopbackHost(host string) bool {
	return host == "localhost" || host == "127.0.0.1" || host == "::1"
}

func isSafeMethod(method string) bool {
	return method == http.MethodGet ||
		method == http.MethodHead ||
		method == http.MethodOptions
}
