package service

import (
	"context"
	"fmt"

	"github.com/alexedwards/argon2id"

	"github.com/shadiejo/shadiejo-api/internal/domain"
	"github.com/shadiejo/shadiejo-api/internal/mailer"
	"github.com/shadiejo/shadiejo-api/internal/repository"
	"github.com/shadiejo/shadiejo-api/pkg/auth"
	"github.com/shadiejo/shadiejo-api/pkg/config"
	"github.com/shadiejo/shadiejo-api/pkg/events"
	"github.com/shadiejo/shadiejo-api/pkg/logger"
)

// AuthService owns the end-user track: signup with staged email
// verification, login, and resend. Admins live in the same users table and
// log in through the same endpoint; a users.role of "admin" upgrades the
// session token.
type AuthService struct {
	users    repository.UserRepository
	pending  repository.PendingUserRepository
	verifier *Verifier[*domain.PendingUser]
	cfg      *config.Config
}

func NewAuthService(
	users repository.UserRepository,
	pending repository.PendingUserRepository,
	mail mailer.Service,
	bus events.Publisher,
	cfg *config.Config,
) *AuthService {
	s := &AuthService{
		users:   users,
		pending: pending,
		cfg:     cfg,
	}
	s.verifier = &Verifier[*domain.PendingUser]{
		Kind:     mailer.KindUser,
		TokenTTL: cfg.Auth.EmailVerificationTTL,
		Pending:  pending,
		Mailer:   mail,
		Bus:      bus,
		CheckDuplicates: func(ctx context.Context, rec *domain.PendingUser) error {
			existing, err := users.FindByEmail(ctx, rec.Email)
			if err != nil {
				return fmt.Errorf("failed to check existing account: %w", err)
			}
			if existing != nil {
				return domain.ErrDuplicateEmail
			}
			return nil
		},
		Promote: pending.Promote,
		AlreadyVerified: func(ctx context.Context, email string) (bool, error) {
			existing, err := users.FindByEmail(ctx, email)
			if err != nil {
				return false, err
			}
			return existing != nil && existing.IsVerified, nil
		},
	}
	return s
}

// Signup stages the account and sends the verification email. The password
// is hashed before it ever touches the database. Returns ErrDuplicateEmail
// when a verified account already owns the address; a stale pending signup
// is overwritten instead.
func (s *AuthService) Signup(ctx context.Context, req *domain.SignupRequest) error {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	hash, err := argon2id.CreateHash(req.Password, argon2id.DefaultParams)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	rec := &domain.PendingUser{
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: hash,
		Role:         domain.RoleUser,
	}

	if err := s.verifier.RequestSignup(ctx, rec); err != nil {
		return err
	}

	logger.InfoContext(ctx, "User signup staged", "email", req.Email)
	return nil
}

// VerifyEmail promotes the pending signup matching the token into a live
// account.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) (int64, error) {
	userID, err := s.verifier.VerifyByToken(ctx, token)
	if err != nil {
		return 0, err
	}
	logger.InfoContext(ctx, "User email verified", "user_id", userID)
	return userID, nil
}

// ResendVerification re-issues the verification link for a staged signup.
func (s *AuthService) ResendVerification(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if !domain.IsValidEmail(email) {
		return fmt.Errorf("%w: invalid email format", domain.ErrInvalidInput)
	}
	return s.verifier.ResendVerification(ctx, email)
}

// Login checks the credentials and issues a session token. The password is
// checked before any account-state checks so a wrong password always reads
// as invalid credentials regardless of verification status. Admin accounts
// get an admin-typed token from the same endpoint.
func (s *AuthService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.TokenResponse, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}
	if user == nil || user.PasswordHash == nil {
		return nil, domain.ErrInvalidCredentials
	}

	match, err := argon2id.ComparePasswordAndHash(req.Password, *user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to compare password: %w", err)
	}
	if !match {
		return nil, domain.ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, domain.ErrAccountInactive
	}
	if !user.IsVerified {
		return nil, domain.ErrAccountNotVerified
	}

	tokenType := ""
	if user.Role == domain.RoleAdmin {
		tokenType = auth.TypeAdmin
	}

	token, err := auth.NewSessionToken(user.ID, tokenType, s.cfg.Auth.JWTSecret, s.cfg.Auth.SessionTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to sign session token: %w", err)
	}

	logger.InfoContext(ctx, "User logged in", "user_id", user.ID, "role", user.Role)

	return &domain.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int64(s.cfg.Auth.SessionTokenTTL.Seconds()),
		UserType:    tokenType,
	}, nil
}

// Me returns the authenticated user's profile.
func (s *AuthService) Me(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return nil, domain.ErrNotFound
	}
	return user, nil
}

// CleanupExpired purges lapsed pending signups. Called from a background
// ticker; errors are logged, not fatal.
func (s *AuthService) CleanupExpired(ctx context.Context) {
	n, err := s.pending.DeleteExpired(ctx)
	if err != nil {
		logger.Error("Failed to purge expired pending signups", "error", err)
		return
	}
	if n > 0 {
		logger.Info("Purged expired pending signups", "count", n)
	}
}
