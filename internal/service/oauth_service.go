package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/shadiejo/shadiejo-api/internal/domain"
	"github.com/shadiejo/shadiejo-api/internal/repository"
	"github.com/shadiejo/shadiejo-api/pkg/auth"
	"github.com/shadiejo/shadiejo-api/pkg/config"
	"github.com/shadiejo/shadiejo-api/pkg/logger"
)

const googleUserinfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// OAuthService runs the Google sign-in flow for end users. The CSRF state
// is stored server-side with a short TTL and consumed exactly once; a
// callback whose state was never issued, already used, or expired is
// rejected outright.
type OAuthService struct {
	users    repository.UserRepository
	states   repository.OAuthStateStore
	cfg      *config.Config
	oauth    *oauth2.Config
	stateTTL time.Duration
}

func NewOAuthService(users repository.UserRepository, states repository.OAuthStateStore, cfg *config.Config) *OAuthService {
	return &OAuthService{
		users:    users,
		states:   states,
		cfg:      cfg,
		stateTTL: cfg.Auth.OAuthStateTTL,
		oauth: &oauth2.Config{
			ClientID:     cfg.Google.ClientID,
			ClientSecret: cfg.Google.ClientSecret,
			RedirectURL:  cfg.Google.RedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
	}
}

// Enabled reports whether Google credentials are configured.
func (s *OAuthService) Enabled() bool {
	return s.oauth.ClientID != "" && s.oauth.ClientSecret != ""
}

// AuthURL issues a fresh state, stores it, and returns the provider's
// consent URL.
func (s *OAuthService) AuthURL(ctx context.Context) (string, error) {
	state := NewOpaqueToken()
	if err := s.states.Save(ctx, state, s.stateTTL); err != nil {
		return "", fmt.Errorf("failed to store oauth state: %w", err)
	}
	return s.oauth.AuthCodeURL(state), nil
}

// HandleCallback validates the state, exchanges the code, fetches the
// Google profile and upserts the account. Returns a session token for the
// signed-in user.
func (s *OAuthService) HandleCallback(ctx context.Context, state, code string) (*domain.TokenResponse, error) {
	if state == "" || code == "" {
		return nil, fmt.Errorf("%w: missing state or code", domain.ErrInvalidInput)
	}

	ok, err := s.states.Consume(ctx, state)
	if err != nil {
		return nil, fmt.Errorf("failed to check oauth state: %w", err)
	}
	if !ok {
		return nil, domain.ErrOAuthStateMismatch
	}

	token, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange oauth code: %w", err)
	}

	profile, err := s.fetchProfile(ctx, token)
	if err != nil {
		return nil, err
	}
	if profile.Email == "" {
		return nil, fmt.Errorf("%w: provider returned no email", domain.ErrInvalidInput)
	}
	profile.Email = normalizeEmail(profile.Email)

	user, err := s.users.UpsertGoogle(ctx, profile)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert oauth account: %w", err)
	}

	sessionToken, err := auth.NewSessionToken(user.ID, "", s.cfg.Auth.JWTSecret, s.cfg.Auth.SessionTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to sign session token: %w", err)
	}

	logger.InfoContext(ctx, "OAuth login completed", "user_id", user.ID)

	return &domain.TokenResponse{
		AccessToken: sessionToken,
		TokenType:   "bearer",
		ExpiresIn:   int64(s.cfg.Auth.SessionTokenTTL.Seconds()),
	}, nil
}

func (s *OAuthService) fetchProfile(ctx context.Context, token *oauth2.Token) (*domain.GoogleProfile, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, googleUserinfoURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.oauth.Client(ctx, token).Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch oauth profile: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("oauth userinfo returned %d: %s", resp.StatusCode, body)
	}

	var profile domain.GoogleProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("failed to decode oauth profile: %w", err)
	}
	return &profile, nil
}
