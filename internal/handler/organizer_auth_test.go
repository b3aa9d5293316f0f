package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snapvault/gallery-server-go/internal/identity"
	"github.com/snapvault/gallery-server-go/internal/middleware"
	"github.com/snapvault/gallery-server-go/internal/model"
	"github.com/snapvault/gallery-server-go/internal/repository"
	"github.com/snapvault/gallery-server-go/internal/service"
)

type stubVerifier struct {
	ident *identity.Identity
	err   error
}

func (s *stubVerifier) Verify(ctx context.Context, bearerToken string) (*identity.Identity, error) {
	return s.ident, s.err
}

type stubOrganizerRepo struct{}

func (s *stubOrganizerRepo) FindByID(ctx context.Context, id string) (*model.Organizer, error) {
	return nil, nil
}

func (s *stubOrganizerRepo) Upsert(ctx context.Context, params model.UpsertOrganizerParams) (*model.Organizer, error) {
	return &model.Organizer{ID: params.ID, Email: params.Email, Name: params.Name}, nil
}

func (s *stubOrganizerRepo) WithTx(tx *sqlx.Tx) repository.OrganizerRepository { return s }

type stubSessionRepo struct {
	created *model.CreateOrganizerSessionParams
	deleted []string
}

func (s *stubSessionRepo) Create(ctx context.Context, params model.CreateOrganizerSessionParams) (*model.OrganizerSession, error) {
	s.created = &params
	return &model.OrganizerSession{
		ID:          "sess-1",
		OrganizerID: params.OrganizerID,
		TokenHash:   params.TokenHash,
		ExpiresAt:   time.Now().Add(time.Duration(params.TTLDays) * 24 * time.Hour),
	}, nil
}

func (s *stubSessionRepo) ResolveAndTouch(ctx context.Context, tokenHash string) (*model.Organizer, *model.OrganizerSession, error) {
	return nil, nil, nil
}

func (s *stubSessionRepo) DeleteByTokenHash(ctx context.Context, tokenHash string) error {
	s.deleted = append(s.deleted, tokenHash)
	return nil
}

func (s *stubSessionRepo) DeleteExpired(ctx context.Context) (int64, error) { return 0, nil }

func (s *stubSessionRepo) WithTx(tx *sqlx.Tx) repository.OrganizerSessionRepository { return s }

func newAuthHandler(verifier identity.Verifier, sessionRepo repository.OrganizerSessionRepository) *OrganizerAuthHandler {
	svc := service.NewOrganizerSessionService(verifier, &stubOrganizerRepo{}, sessionRepo, 30)
	auth := middleware.NewAuthMiddleware(svc)
	return NewOrganizerAuthHandler(svc, auth, 30*24*time.Hour, false)
}

func cookieByName(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestCreateSession(t *testing.T) {
	email := "a@example.com"
	ident := &identity.Identity{ID: "org-1", Email: &email, Name: "Alice"}

	t.Run("exchanges a bearer token for a session cookie", func(t *testing.T) {
		sessions := &stubSessionRepo{}
		h := newAuthHandler(&stubVerifier{ident: ident}, sessions)

		req := httptest.NewRequest(http.MethodPost, "/organizer/auth/session", nil)
		req.Header.Set("Authorization", "Bearer provider-token")
		rec := httptest.NewRecorder()
		h.CreateSession(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)

		cookie := cookieByName(rec, middleware.OrganizerSessionCookie)
		require.NotNil(t, cookie)
		assert.NotEmpty(t, cookie.Value)
		assert.True(t, cookie.HttpOnly)
		assert.Equal(t, middleware.OrganizerCookiePath, cookie.Path)
		assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)

		// The store saw a hash, not the cookie value.
		require.NotNil(t, sessions.created)
		assert.NotEqual(t, cookie.Value, sessions.created.TokenHash)

		var body struct {
			SessionToken string `json:"sessionToken"`
			ExpiresAt    string `json:"expiresAt"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, cookie.Value, body.SessionToken)
		assert.NotEmpty(t, body.ExpiresAt)
		assert.Contains(t, rec.Body.String(), "org-1")
		assert.NotContains(t, rec.Body.String(), sessions.created.TokenHash)
	})

	t.Run("no bearer token is a 401", func(t *testing.T) {
		h := newAuthHandler(&stubVerifier{ident: ident}, &stubSessionRepo{})

		req := httptest.NewRequest(http.MethodPost, "/organizer/auth/session", nil)
		rec := httptest.NewRecorder()
		h.CreateSession(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Nil(t, cookieByName(rec, middleware.OrganizerSessionCookie))
	})
}

func TestDeleteSession(t *testing.T) {
	t.Run("revokes and clears the cookie", func(t *testing.T) {
		sessions := &stubSessionRepo{}
		h := newAuthHandler(&stubVerifier{}, sessions)

		req := httptest.NewRequest(http.MethodDelete, "/organizer/auth/session", nil)
		req.AddCookie(&http.Cookie{Name: middleware.OrganizerSessionCookie, Value: "raw-token"})
		rec := httptest.NewRecorder()
		h.DeleteSession(rec, req)

		require.Equal(t, http.StatusNoContent, rec.Code)
		assert.Len(t, sessions.deleted, 1)

		cleared := cookieByName(rec, middleware.OrganizerSessionCookie)
		require.NotNil(t, cleared)
		assert.Empty(t, cleared.Value)
		assert.Negative(t, cleared.MaxAge)
	})

	t.Run("no cookie still succeeds", func(t *testing.T) {
		sessions := &stubSessionRepo{}
		h := newAuthHandler(&stubVerifier{}, sessions)

		req := httptest.NewRequest(http.MethodDelete, "/organizer/auth/session", nil)
		rec := httptest.NewRecorder()
		h.DeleteSession(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, sessions.deleted)
	})
}

func TestGetSession(t *testing.T) {
	t.Run("reports the resolved principal", func(t *testing.T) {
		h := newAuthHandler(&stubVerifier{}, &stubSessionRepo{})

		expiresAt := time.Now().Add(24 * time.Hour)
		principal := &model.Principal{
			OrganizerID:      "org-1",
			Email:            "a@example.com",
			Name:             "Alice",
			AuthMethod:       model.AuthMethodSession,
			SessionExpiresAt: &expiresAt,
		}

		req := httptest.NewRequest(http.MethodGet, "/organizer/auth/session", nil)
		req = req.WithContext(context.WithValue(req.Context(), middleware.PrincipalContextKey, principal))
		rec := httptest.NewRecorder()
		h.GetSession(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "org-1")
		assert.Contains(t, rec.Body.String(), "session")
	})

	t.Run("no principal is a 401", func(t *testing.T) {
		h := newAuthHandler(&stubVerifier{}, &stubSessionRepo{})

		req := httptest.NewRequest(http.MethodGet, "/organizer/auth/session", nil)
		rec := httptest.NewRecorder()
		h.GetSession(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
