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

// VendorService owns the vendor track. Vendors stage through the same
// verification engine as end users but with extra duplicate checks on the
// national id, and they come out of verification inactive until an admin
// approves them.
type VendorService struct {
	vendors  repository.VendorRepository
	pending  repository.PendingVendorRepository
	verifier *Verifier[*domain.PendingVendor]
	cfg      *config.Config
}

func NewVendorService(
	vendors repository.VendorRepository,
	pending repository.PendingVendorRepository,
	mail mailer.Service,
	bus events.Publisher,
	cfg *config.Config,
) *VendorService {
	s := &VendorService{
		vendors: vendors,
		pending: pending,
		cfg:     cfg,
	}
	s.verifier = &Verifier[*domain.PendingVendor]{
		Kind:     mailer.KindVendor,
		TokenTTL: cfg.Auth.EmailVerificationTTL,
		Pending:  pending,
		Mailer:   mail,
		Bus:      bus,
		CheckDuplicates: func(ctx context.Context, rec *domain.PendingVendor) error {
			existing, err := vendors.FindByEmail(ctx, rec.Email)
			if err != nil {
				return fmt.Errorf("failed to check existing vendor: %w", err)
			}
			if existing != nil {
				return domain.ErrDuplicateEmail
			}

			taken, err := vendors.CNICExists(ctx, rec.CNICNumber)
			if err != nil {
				return fmt.Errorf("failed to check cnic: %w", err)
			}
			if taken {
				return domain.ErrDuplicateNationalID
			}

			// A different email mid-verification may already hold this CNIC;
			// re-signup from the same email is allowed to overwrite itself.
			staged, err := pending.CNICPending(ctx, rec.CNICNumber, rec.Email)
			if err != nil {
				return fmt.Errorf("failed to check staged cnic: %w", err)
			}
			if staged {
				return domain.ErrDuplicateNationalID
			}
			return nil
		},
		Promote: pending.Promote,
		AlreadyVerified: func(ctx context.Context, email string) (bool, error) {
			existing, err := vendors.FindByEmail(ctx, email)
			if err != nil {
				return false, err
			}
			return existing != nil && existing.IsVerified, nil
		},
	}
	return s
}

// Signup stages the vendor registration, ID documents included, and sends
// the verification email.
func (s *VendorService) Signup(ctx context.Context, req *domain.VendorSignupRequest) error {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	hash, err := argon2id.CreateHash(req.Password, argon2id.DefaultParams)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	rec := &domain.PendingVendor{
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		CNICNumber:     req.CNICNumber,
		CNICFrontImage: req.CNICFrontImage,
		CNICBackImage:  req.CNICBackImage,
		PasswordHash:   hash,
	}

	if err := s.verifier.RequestSignup(ctx, rec); err != nil {
		return err
	}

	logger.InfoContext(ctx, "Vendor signup staged", "email", req.Email)
	return nil
}

// VerifyEmail promotes the pending vendor into a verified, still-inactive
// account awaiting admin approval.
func (s *VendorService) VerifyEmail(ctx context.Context, token string) (int64, error) {
	vendorID, err := s.verifier.VerifyByToken(ctx, token)
	if err != nil {
		return 0, err
	}
	logger.InfoContext(ctx, "Vendor email verified, awaiting approval", "vendor_id", vendorID)
	return vendorID, nil
}

func (s *VendorService) ResendVerification(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if !domain.IsValidEmail(email) {
		return fmt.Errorf("%w: invalid email format", domain.ErrInvalidInput)
	}
	return s.verifier.ResendVerification(ctx, email)
}

// Login issues a vendor session token. Password is checked first; then the
// unverified state is reported before the unapproved one so the vendor
// knows which step they are stuck on.
func (s *VendorService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.TokenResponse, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	vendor, err := s.vendors.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up vendor: %w", err)
	}
	if vendor == nil || vendor.PasswordHash == nil {
		return nil, domain.ErrInvalidCredentials
	}

	match, err := argon2id.ComparePasswordAndHash(req.Password, *vendor.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to compare password: %w", err)
	}
	if !match {
		return nil, domain.ErrInvalidCredentials
	}

	if !vendor.IsVerified {
		return nil, domain.ErrAccountNotVerified
	}
	if !vendor.IsActive {
		return nil, domain.ErrAccountInactive
	}

	token, err := auth.NewSessionToken(vendor.ID, auth.TypeVendor, s.cfg.Auth.JWTSecret, s.cfg.Auth.SessionTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to sign session token: %w", err)
	}

	logger.InfoContext(ctx, "Vendor logged in", "vendor_id", vendor.ID)

	return &domain.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int64(s.cfg.Auth.SessionTokenTTL.Seconds()),
		UserType:    auth.TypeVendor,
	}, nil
}

// Profile returns the vendor's own account, ID-document blobs included.
func (s *VendorService) Profile(ctx context.Context, vendorID int64) (*domain.Vendor, error) {
	vendor, err := s.vendors.FindByID(ctx, vendorID)
	if err != nil {
		return nil, fmt.Errorf("failed to load vendor: %w", err)
	}
	if vendor == nil {
		return nil, domain.ErrNotFound
	}
	return vendor, nil
}

// UpdateProfile applies a partial update to the vendor's display fields.
// Email, CNIC and documents are immutable after signup.
func (s *VendorService) UpdateProfile(ctx context.Context, vendorID int64, upd *domain.VendorProfileUpdate) (*domain.Vendor, error) {
	if upd.Name != nil && *upd.Name == "" {
		return nil, fmt.Errorf("%w: name cannot be empty", domain.ErrInvalidInput)
	}
	return s.vendors.UpdateProfile(ctx, vendorID, upd)
}

func (s *VendorService) CleanupExpired(ctx context.Context) {
	n, err := s.pending.DeleteExpired(ctx)
	if err != nil {
		logger.Error("Failed to purge expired pending vendor signups", "error", err)
		return
	}
	if n > 0 {
		logger.Info("Purged expired pending vendor signups", "count", n)
	}
}
