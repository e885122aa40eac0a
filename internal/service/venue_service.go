package service

import (
	"context"
	"fmt"

	"github.com/shadiejo/shadiejo-api/internal/domain"
	"github.com/shadiejo/shadiejo-api/internal/repository"
	"github.com/shadiejo/shadiejo-api/pkg/logger"
)

// VenueService manages a vendor's venue listings and the public catalog.
// Every write checks that the vendor is still approved; an admin pulling a
// vendor's approval freezes their listings immediately.
type VenueService struct {
	venues  repository.VenueRepository
	vendors repository.VendorRepository
}

func NewVenueService(venues repository.VenueRepository, vendors repository.VendorRepository) *VenueService {
	return &VenueService{venues: venues, vendors: vendors}
}

func (s *VenueService) requireActiveVendor(ctx context.Context, vendorID int64) error {
	vendor, err := s.vendors.FindByID(ctx, vendorID)
	if err != nil {
		return fmt.Errorf("failed to load vendor: %w", err)
	}
	if vendor == nil {
		return domain.ErrNotFound
	}
	if !vendor.IsActive {
		return domain.ErrAccountInactive
	}
	return nil
}

func (s *VenueService) Create(ctx context.Context, vendorID int64, req *domain.VenueRequest) (*domain.Venue, error) {
	if err := s.requireActiveVendor(ctx, vendorID); err != nil {
		return nil, err
	}

	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	venue, err := s.venues.Create(ctx, vendorID, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create venue: %w", err)
	}

	logger.InfoContext(ctx, "Venue created", "venue_id", venue.ID, "vendor_id", vendorID)
	return venue, nil
}

// ListForVendor returns the vendor's own venues, approved or not, so a
// suspended vendor can still see what they have.
func (s *VenueService) ListForVendor(ctx context.Context, vendorID int64) ([]domain.Venue, error) {
	return s.venues.ListByVendor(ctx, vendorID)
}

func (s *VenueService) GetForVendor(ctx context.Context, id, vendorID int64) (*domain.Venue, error) {
	venue, err := s.venues.FindForVendor(ctx, id, vendorID)
	if err != nil {
		return nil, fmt.Errorf("failed to load venue: %w", err)
	}
	if venue == nil {
		return nil, domain.ErrNotFound
	}
	return venue, nil
}

func (s *VenueService) Update(ctx context.Context, id, vendorID int64, req *domain.VenueRequest) (*domain.Venue, error) {
	if err := s.requireActiveVendor(ctx, vendorID); err != nil {
		return nil, err
	}

	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	return s.venues.Update(ctx, id, vendorID, req)
}

func (s *VenueService) Delete(ctx context.Context, id, vendorID int64) error {
	if err := s.requireActiveVendor(ctx, vendorID); err != nil {
		return err
	}
	if err := s.venues.Delete(ctx, id, vendorID); err != nil {
		return err
	}
	logger.InfoContext(ctx, "Venue deleted", "venue_id", id, "vendor_id", vendorID)
	return nil
}

// Browse is the public catalog: active venues only, optionally filtered.
func (s *VenueService) Browse(ctx context.Context, filter *domain.VenueFilter) ([]domain.Venue, error) {
	return s.venues.ListPublic(ctx, filter)
}

func (s *VenueService) GetPublic(ctx context.Context, id int64) (*domain.Venue, error) {
	venue, err := s.venues.FindPublic(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load venue: %w", err)
	}
	if venue == nil {
		return nil, domain.ErrNotFound
	}
	return venue, nil
}
