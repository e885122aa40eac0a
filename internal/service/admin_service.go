package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shadiejo/shadiejo-api/internal/domain"
	"github.com/shadiejo/shadiejo-api/internal/repository"
	"github.com/shadiejo/shadiejo-api/pkg/events"
	"github.com/shadiejo/shadiejo-api/pkg/logger"
)

// AdminService is the operator surface: reviewing vendor registrations and
// flipping the approval switch that lets a vendor log in and list venues.
type AdminService struct {
	users   repository.UserRepository
	vendors repository.VendorRepository
	venues  repository.VenueRepository
	bus     events.Publisher
}

func NewAdminService(
	users repository.UserRepository,
	vendors repository.VendorRepository,
	venues repository.VenueRepository,
	bus events.Publisher,
) *AdminService {
	return &AdminService{users: users, vendors: vendors, venues: venues, bus: bus}
}

// IsAdmin reports whether the account holds the admin role. Middleware
// calls this on every admin request so a demoted account loses access as
// soon as its current token is presented, not when it expires.
func (s *AdminService) IsAdmin(ctx context.Context, userID int64) (bool, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("failed to load account: %w", err)
	}
	return user != nil && user.Role == domain.RoleAdmin, nil
}

// ListVendors returns vendor accounts without the ID-document blobs.
func (s *AdminService) ListVendors(ctx context.Context, filter repository.VendorListFilter) ([]domain.VendorInfo, error) {
	vendors, err := s.vendors.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list vendors: %w", err)
	}

	infos := make([]domain.VendorInfo, 0, len(vendors))
	for i := range vendors {
		infos = append(infos, *vendors[i].ToInfo())
	}
	return infos, nil
}

// GetVendor returns one vendor with the ID documents, for manual review.
func (s *AdminService) GetVendor(ctx context.Context, vendorID int64) (*domain.Vendor, error) {
	vendor, err := s.vendors.FindByID(ctx, vendorID)
	if err != nil {
		return nil, fmt.Errorf("failed to load vendor: %w", err)
	}
	if vendor == nil {
		return nil, domain.ErrNotFound
	}
	return vendor, nil
}

// DecideVendor approves or rejects a vendor registration. Only verified
// vendors can be decided on; an unverified one has not finished the email
// step yet. The decision is idempotent at the database level.
func (s *AdminService) DecideVendor(ctx context.Context, req *domain.VendorApprovalRequest) (*domain.VendorInfo, error) {
	vendor, err := s.vendors.FindByID(ctx, req.VendorID)
	if err != nil {
		return nil, fmt.Errorf("failed to load vendor: %w", err)
	}
	if vendor == nil {
		return nil, domain.ErrNotFound
	}
	if !vendor.IsVerified {
		return nil, domain.ErrAccountNotVerified
	}

	if err := s.vendors.SetActive(ctx, req.VendorID, req.Approved); err != nil {
		return nil, err
	}
	vendor.IsActive = req.Approved

	if err := s.bus.Publish(ctx, events.VendorApproved, events.VendorApprovedEvent{
		VendorID:  vendor.ID,
		Approved:  req.Approved,
		DecidedAt: time.Now(),
	}); err != nil {
		logger.WarnContext(ctx, "Failed to publish vendor decision event", "vendor_id", vendor.ID, "error", err)
	}

	logger.InfoContext(ctx, "Vendor decision recorded", "vendor_id", vendor.ID, "approved", req.Approved)
	return vendor.ToInfo(), nil
}

// Stats summarizes the platform for the admin dashboard.
type Stats struct {
	Users           int64 `json:"users"`
	Vendors         int64 `json:"vendors"`
	VendorsPending  int64 `json:"vendors_pending"`
	VendorsApproved int64 `json:"vendors_approved"`
	Venues          int64 `json:"venues"`
}

func (s *AdminService) Stats(ctx context.Context) (*Stats, error) {
	users, err := s.users.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	vendors, err := s.vendors.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count vendors: %w", err)
	}
	pending, err := s.vendors.CountByStatus(ctx, repository.VendorsPending)
	if err != nil {
		return nil, fmt.Errorf("failed to count pending vendors: %w", err)
	}
	approved, err := s.vendors.CountByStatus(ctx, repository.VendorsApproved)
	if err != nil {
		return nil, fmt.Errorf("failed to count approved vendors: %w", err)
	}
	venues, err := s.venues.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count venues: %w", err)
	}

	return &Stats{
		Users:           users,
		Vendors:         vendors,
		VendorsPending:  pending,
		VendorsApproved: approved,
		Venues:          venues,
	}, nil
}

// ListUsers pages through registered end users.
func (s *AdminService) ListUsers(ctx context.Context, limit, offset int) ([]domain.User, error) {
	users, err := s.users.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}
