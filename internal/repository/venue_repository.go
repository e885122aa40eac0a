package repository

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shadiejo/shadiejo-api/internal/domain"
)

type VenueRepository interface {
	Create(ctx context.Context, vendorID int64, req *domain.VenueRequest) (*domain.Venue, error)
	ListByVendor(ctx context.Context, vendorID int64) ([]domain.Venue, error)
	// FindForVendor scopes the lookup to the owning vendor; nil when the
	// venue does not exist or belongs to someone else.
	FindForVendor(ctx context.Context, id, vendorID int64) (*domain.Venue, error)
	Update(ctx context.Context, id, vendorID int64, req *domain.VenueRequest) (*domain.Venue, error)
	Delete(ctx context.Context, id, vendorID int64) error
	ListPublic(ctx context.Context, filter *domain.VenueFilter) ([]domain.Venue, error)
	FindPublic(ctx context.Context, id int64) (*domain.Venue, error)
	Count(ctx context.Context) (int64, error)
}

type venueRepository struct {
	pool *pgxpool.Pool
}

func NewVenueRepository(pool *pgxpool.Pool) VenueRepository {
	return &venueRepository{pool: pool}
}

const venueCols = `id, vendor_id, name, description, venue_type, city, address, capacity, price_per_day, amenities, images, is_active, created_at, updated_at`

func scanVenue(row pgx.Row) (*domain.Venue, error) {
	var v domain.Venue
	err := row.Scan(
		&v.ID, &v.VendorID, &v.Name, &v.Description, &v.VenueType, &v.City, &v.Address,
		&v.Capacity, &v.PricePerDay, &v.Amenities, &v.Images, &v.IsActive, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *venueRepository) Create(ctx context.Context, vendorID int64, req *domain.VenueRequest) (*domain.Venue, error) {
	const q = `
		INSERT INTO venues (vendor_id, name, description, venue_type, city, address, capacity, price_per_day, amenities, images)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + venueCols

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	return scanVenue(r.pool.QueryRow(ctx, q,
		vendorID, req.Name, req.Description, req.VenueType, req.City, req.Address,
		req.Capacity, req.PricePerDay, req.Amenities, req.Images,
	))
}

func (r *venueRepository) ListByVendor(ctx context.Context, vendorID int64) ([]domain.Venue, error) {
	const q = `SELECT ` + venueCols + ` FROM venues WHERE vendor_id = $1 ORDER BY created_at DESC`
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, vendorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectVenues(rows)
}

func (r *venueRepository) FindForVendor(ctx context.Context, id, vendorID int64) (*domain.Venue, error) {
	const q = `SELECT ` + venueCols + ` FROM venues WHERE id = $1 AND vendor_id = $2`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	v, err := scanVenue(r.pool.QueryRow(ctx, q, id, vendorID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return v, err
}

func (r *venueRepository) Update(ctx context.Context, id, vendorID int64, req *domain.VenueRequest) (*domain.Venue, error) {
	const q = `
		UPDATE venues
		SET name = $3,
		    description = $4,
		    venue_type = $5,
		    city = $6,
		    address = $7,
		    capacity = $8,
		    price_per_day = $9,
		    amenities = $10,
		    images = COALESCE($11, images),
		    updated_at = now()
		WHERE id = $1 AND vendor_id = $2
		RETURNING ` + venueCols

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	v, err := scanVenue(r.pool.QueryRow(ctx, q,
		id, vendorID, req.Name, req.Description, req.VenueType, req.City, req.Address,
		req.Capacity, req.PricePerDay, req.Amenities, req.Images,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return v, err
}

func (r *venueRepository) Delete(ctx context.Context, id, vendorID int64) error {
	const q = `DELETE FROM venues WHERE id = $1 AND vendor_id = $2`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	result, err := r.pool.Exec(ctx, q, id, vendorID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *venueRepository) ListPublic(ctx context.Context, filter *domain.VenueFilter) ([]domain.Venue, error) {
	q := `SELECT ` + venueCols + ` FROM venues WHERE is_active = true`
	args := []any{}
	i := 1
	if filter != nil {
		if filter.City != "" {
			q += ` AND lower(city) = lower($` + itoa(i) + `)`
			args = append(args, filter.City)
			i++
		}
		if filter.VenueType != "" {
			q += ` AND lower(venue_type) = lower($` + itoa(i) + `)`
			args = append(args, filter.VenueType)
			i++
		}
		if filter.MinCapacity > 0 {
			q += ` AND capacity >= $` + itoa(i)
			args = append(args, filter.MinCapacity)
			i++
		}
	}
	q += ` ORDER BY created_at DESC`

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectVenues(rows)
}

func (r *venueRepository) FindPublic(ctx context.Context, id int64) (*domain.Venue, error) {
	const q = `SELECT ` + venueCols + ` FROM venues WHERE id = $1 AND is_active = true`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	v, err := scanVenue(r.pool.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return v, err
}

func (r *venueRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var n int64
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM venues`).Scan(&n)
	return n, err
}

func collectVenues(rows pgx.Rows) ([]domain.Venue, error) {
	var venues []domain.Venue
	for rows.Next() {
		var v domain.Venue
		if err := rows.Scan(
			&v.ID, &v.VendorID, &v.Name, &v.Description, &v.VenueType, &v.City, &v.Address,
			&v.Capacity, &v.PricePerDay, &v.Amenities, &v.Images, &v.IsActive, &v.CreatedAt, &v.UpdatedAt,
		); err != nil {
			return nil, err
		}
		venues = append(venues, v)
	}
	return venues, rows.Err()
}

func itoa(i int) string {
	return strconv.Itoa(i)
}
