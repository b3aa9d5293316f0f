package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/snapvault/gallery-server-go/internal/audit"
	apperrors "github.com/snapvault/gallery-server-go/internal/errors"
	"github.com/snapvault/gallery-server-go/internal/model"
)

type contextKey string

const PrincipalContextKey contextKey = "principal"

func GetPrincipal(ctx context.Context) *model.Principal {
	if principal, ok := ctx.Value(PrincipalContextKey).(*model.Principal); ok {
		return principal
	}
	return nil
}

// SessionResolver is the slice of the organizer session service the auth
// middleware needs.
type SessionResolver interface {
	ResolveBearer(ctx context.Context, bearerToken string) (*model.Organizer, error)
	Resolve(ctx context.Context, sessionToken string) (*model.Organizer, *model.OrganizerSession, error)
}

// AuthMiddleware resolves an organizer principal for each request. A bearer
// token always wins over the session cookie, so API clients are unaffected by
// whatever cookie the browser happens to carry.
type AuthMiddleware struct {
	sessions SessionResolver
}

func NewAuthMiddleware(sessions SessionResolver) *AuthMiddleware {
	return &AuthMiddleware{sessions: sessions}
}

func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, err := m.resolve(r)
		if err != nil {
			audit.LogFromRequest(r, audit.Event{Type: audit.EventAuthFailure})
			writeError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), PrincipalContextKey, principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *AuthMiddleware) resolve(r *http.Request) (*model.Principal, error) {
	if bearer := BearerToken(r); bearer != "" {
		organizer, err := m.sessions.ResolveBearer(r.Context(), bearer)
		if err != nil {
			return nil, err
		}
		return principalFrom(organizer, model.AuthMethodBearer, nil), nil
	}

	if token := CookieValue(r, OrganizerSessionCookie); token != "" {
		organizer, session, err := m.sessions.Resolve(r.Context(), token)
		if err != nil {
			return nil, err
		}
		return principalFrom(organizer, model.AuthMethodSession, &session.ExpiresAt), nil
	}

	log.Debug().Str("path", r.URL.Path).Msg("request carried no organizer credentials")
	return nil, apperrors.Unauthorized("Organizer authentication is missing")
}

func principalFrom(organizer *model.Organizer, method model.AuthMethod, expiresAt *time.Time) *model.Principal {
	email := ""
	if organizer.Email != nil {
		email = *organizer.Email
	}
	return &model.Principal{
		OrganizerID:      organizer.ID,
		Email:            email,
		Name:             organizer.Name,
		AuthMethod:       method,
		SessionExpiresAt: expiresAt,
	}
}

// BearerToken extracts the Authorization bearer token, or "" when absent.
func BearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}
