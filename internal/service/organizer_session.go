package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	apperrors "github.com/snapvault/gallery-server-go/internal/errors"
	"github.com/snapvault/gallery-server-go/internal/identity"
	"github.com/snapvault/gallery-server-go/internal/model"
	"github.com/snapvault/gallery-server-go/internal/repository"
	"github.com/snapvault/gallery-server-go/internal/util"
)

// IssueSessionResult carries everything the sign-in exchange returns. The raw
// SessionToken appears here and in the Set-Cookie header only; the store
// keeps its hash.
type IssueSessionResult struct {
	Organizer    *model.Organizer
	Session      *model.OrganizerSession
	SessionToken string
}

type OrganizerSessionService struct {
	verifier      identity.Verifier
	organizerRepo repository.OrganizerRepository
	sessionRepo   repository.OrganizerSessionRepository
	ttlDays       int
}

func NewOrganizerSessionService(
	verifier identity.Verifier,
	organizerRepo repository.OrganizerRepository,
	sessionRepo repository.OrganizerSessionRepository,
	ttlDays int,
) *OrganizerSessionService {
	return &OrganizerSessionService{
		verifier:      verifier,
		organizerRepo: organizerRepo,
		sessionRepo:   sessionRepo,
		ttlDays:       ttlDays,
	}
}

// ResolveBearer verifies a bearer token with the identity provider and
// upserts the organizer row. No session state is involved; bearer calls are
// stateless per request.
func (s *OrganizerSessionService) ResolveBearer(ctx context.Context, bearerToken string) (*model.Organizer, error) {
	ident, err := s.verifier.Verify(ctx, bearerToken)
	if err != nil {
		return nil, err
	}

	organizer, err := s.organizerRepo.Upsert(ctx, model.UpsertOrganizerParams{
		ID:    ident.ID,
		Email: ident.Email,
		Name:  ident.Name,
	})
	if err != nil {
		return nil, fmt.Errorf("upsert organizer: %w", err)
	}
	return organizer, nil
}

// Issue exchanges a verified bearer token for a long-lived session. The
// identity must carry an email; it is the correlation key for the organizer
// row.
func (s *OrganizerSessionService) Issue(ctx context.Context, bearerToken string, userAgent *string) (*IssueSessionResult, error) {
	ident, err := s.verifier.Verify(ctx, bearerToken)
	if err != nil {
		return nil, err
	}
	if ident.Email == nil || *ident.Email == "" {
		return nil, apperrors.Unauthorized("Organizer account email is required")
	}

	organizer, err := s.organizerRepo.Upsert(ctx, model.UpsertOrganizerParams{
		ID:    ident.ID,
		Email: ident.Email,
		Name:  ident.Name,
	})
	if err != nil {
		return nil, fmt.Errorf("upsert organizer: %w", err)
	}

	token, err := util.GenerateToken()
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	session, err := s.sessionRepo.Create(ctx, model.CreateOrganizerSessionParams{
		OrganizerID: organizer.ID,
		TokenHash:   util.HashToken(token),
		UserAgent:   userAgent,
		TTLDays:     s.ttlDays,
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.DBWriteFailed("Failed to create organizer session")
	}
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	log.Info().
		Str("organizerId", organizer.ID).
		Str("sessionId", session.ID).
		Time("expiresAt", session.ExpiresAt).
		Msg("organizer session issued")

	return &IssueSessionResult{
		Organizer:    organizer,
		Session:      session,
		SessionToken: token,
	}, nil
}

// Resolve hashes the presented token and resolves it to an organizer,
// touching session activity in the same store operation. A wrong, expired,
// or unknown token is indistinguishable from a missing one.
func (s *OrganizerSessionService) Resolve(ctx context.Context, sessionToken string) (*model.Organizer, *model.OrganizerSession, error) {
	organizer, session, err := s.sessionRepo.ResolveAndTouch(ctx, util.HashToken(sessionToken))
	if err != nil {
		return nil, nil, fmt.Errorf("resolve session: %w", err)
	}
	if session == nil {
		return nil, nil, apperrors.Unauthorized("Organizer session is missing, expired, or invalid")
	}
	return organizer, session, nil
}

// Revoke deletes a session by token hash. Revoking an unknown or already
// revoked token succeeds silently.
func (s *OrganizerSessionService) Revoke(ctx context.Context, sessionToken string) error {
	if err := s.sessionRepo.DeleteByTokenHash(ctx, util.HashToken(sessionToken)); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}
