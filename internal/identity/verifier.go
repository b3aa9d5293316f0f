package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/snapvault/gallery-server-go/internal/config"
	apperrors "github.com/snapvault/gallery-server-go/internal/errors"
)

// Identity is the normalized result of verifying a bearer token with the
// external identity provider.
type Identity struct {
	ID    string
	Email *string
	Name  string
}

// Verifier asks the identity provider who a bearer token belongs to. A bad
// credential will not become good, so failures are never retried.
type Verifier interface {
	Verify(ctx context.Context, bearerToken string) (*Identity, error)
}

type userResponse struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	UserMetadata struct {
		Name     string `json:"name"`
		FullName string `json:"full_name"`
	} `json:"user_metadata"`
}

type supabaseVerifier struct {
	baseURL        string
	publishableKey string
	client         *http.Client
}

func NewVerifier(baseURL, publishableKey string) Verifier {
	return &supabaseVerifier{
		baseURL:        strings.TrimRight(baseURL, "/"),
		publishableKey: publishableKey,
		client: &http.Client{
			Timeout: config.IdentityProviderTimeout,
		},
	}
}

func (v *supabaseVerifier) Verify(ctx context.Context, bearerToken string) (*Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return nil, apperrors.Unauthorized("Invalid organizer bearer token").WithCause(err)
	}
	req.Header.Set("apikey", v.publishableKey)
	req.Header.Set("Authorization", "Bearer "+bearerToken)

	resp, err := v.client.Do(req)
	if err != nil {
		log.Warn().Err(err).Msg("identity provider unreachable")
		return nil, apperrors.Unauthorized("Invalid organizer bearer token").WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Debug().Int("status", resp.StatusCode).Msg("identity verification rejected")
		return nil, apperrors.Unauthorized("Invalid organizer bearer token")
	}

	var user userResponse
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, apperrors.Unauthorized("Invalid organizer bearer token").WithCause(err)
	}
	if user.ID == "" {
		return nil, apperrors.Unauthorized("Invalid organizer bearer token")
	}

	identity := &Identity{ID: user.ID}
	if user.Email != "" {
		identity.Email = &user.Email
	}

	switch {
	case user.UserMetadata.Name != "":
		identity.Name = user.UserMetadata.Name
	case user.UserMetadata.FullName != "":
		identity.Name = user.UserMetadata.FullName
	default:
		identity.Name = FallbackName(identity.Email)
	}

	return identity, nil
}

// FallbackName derives a display name from the email local-part when the
// provider carries no name.
func FallbackName(email *string) string {
	if email == nil {
		return "Organizer"
	}
	localPart := strings.TrimSpace(strings.SplitN(*email, "@", 2)[0])
	if localPart == "" {
		return "Organizer"
	}
	return localPart
}
