package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shadiejo/shadiejo-api/internal/domain"
)

// VendorListFilter selects which vendor accounts an admin listing returns.
type VendorListFilter int

const (
	VendorsAll VendorListFilter = iota
	// VendorsPending are verified but not yet admin-approved.
	VendorsPending
	VendorsApproved
)

type VendorRepository interface {
	FindByID(ctx context.Context, id int64) (*domain.Vendor, error)
	FindByEmail(ctx context.Context, email string) (*domain.Vendor, error)
	// CNICExists reports whether a national id is already registered on an
	// active vendor account.
	CNICExists(ctx context.Context, cnic string) (bool, error)
	List(ctx context.Context, filter VendorListFilter) ([]domain.Vendor, error)
	SetActive(ctx context.Context, id int64, active bool) error
	UpdateProfile(ctx context.Context, id int64, upd *domain.VendorProfileUpdate) (*domain.Vendor, error)
	Count(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context, filter VendorListFilter) (int64, error)
}

type vendorRepository struct {
	pool *pgxpool.Pool
}

func NewVendorRepository(pool *pgxpool.Pool) VendorRepository {
	return &vendorRepository{pool: pool}
}

const vendorCols = `id, name, email, phone, cnic_number, cnic_front_image, cnic_back_image, password_hash, is_active, is_verified, created_at, updated_at`

func scanVendor(row pgx.Row) (*domain.Vendor, error) {
	var v domain.Vendor
	err := row.Scan(
		&v.ID, &v.Name, &v.Email, &v.Phone, &v.CNICNumber,
		&v.CNICFrontImage, &v.CNICBackImage, &v.PasswordHash,
		&v.IsActive, &v.IsVerified, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *vendorRepository) FindByID(ctx context.Context, id int64) (*domain.Vendor, error) {
	const q = `SELECT ` + vendorCols + ` FROM vendors WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	v, err := scanVendor(r.pool.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return v, err
}

func (r *vendorRepository) FindByEmail(ctx context.Context, email string) (*domain.Vendor, error) {
	const q = `SELECT ` + vendorCols + ` FROM vendors WHERE email = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	v, err := scanVendor(r.pool.QueryRow(ctx, q, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return v, err
}

func (r *vendorRepository) CNICExists(ctx context.Context, cnic string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM vendors WHERE cnic_number = $1)`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var exists bool
	err := r.pool.QueryRow(ctx, q, cnic).Scan(&exists)
	return exists, err
}

func (r *vendorRepository) List(ctx context.Context, filter VendorListFilter) ([]domain.Vendor, error) {
	q := `SELECT ` + vendorCols + ` FROM vendors`
	switch filter {
	case VendorsPending:
		q += ` WHERE is_verified = true AND is_active = false`
	case VendorsApproved:
		q += ` WHERE is_verified = true AND is_active = true`
	}
	q += ` ORDER BY created_at DESC`

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vendors []domain.Vendor
	for rows.Next() {
		var v domain.Vendor
		if err := rows.Scan(
			&v.ID, &v.Name, &v.Email, &v.Phone, &v.CNICNumber,
			&v.CNICFrontImage, &v.CNICBackImage, &v.PasswordHash,
			&v.IsActive, &v.IsVerified, &v.CreatedAt, &v.UpdatedAt,
		); err != nil {
			return nil, err
		}
		vendors = append(vendors, v)
	}

	return vendors, rows.Err()
}

func (r *vendorRepository) SetActive(ctx context.Context, id int64, active bool) error {
	const q = `UPDATE vendors SET is_active = $2, updated_at = now() WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	result, err := r.pool.Exec(ctx, q, id, active)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *vendorRepository) UpdateProfile(ctx context.Context, id int64, upd *domain.VendorProfileUpdate) (*domain.Vendor, error) {
	const q = `
		UPDATE vendors
		SET name = COALESCE($2, name),
		    phone = COALESCE($3, phone),
		    updated_at = now()
		WHERE id = $1
		RETURNING ` + vendorCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	v, err := scanVendor(r.pool.QueryRow(ctx, q, id, upd.Name, upd.Phone))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return v, err
}

func (r *vendorRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var n int64
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM vendors`).Scan(&n)
	return n, err
}

func (r *vendorRepository) CountByStatus(ctx context.Context, filter VendorListFilter) (int64, error) {
	q := `SELECT count(*) FROM vendors`
	switch filter {
	case VendorsPending:
		q += ` WHERE is_verified = true AND is_active = false`
	case VendorsApproved:
		q += ` WHERE is_verified = true AND is_active = true`
	}

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var n int64
	err := r.pool.QueryRow(ctx, q).Scan(&n)
	return n, err
}
