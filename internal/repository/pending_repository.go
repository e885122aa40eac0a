package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shadiejo/shadiejo-api/internal/domain"
)

// PendingStore persists staging rows for one signup track. The store is
// parameterized over the pending record type so the user and vendor flows
// share a single verification engine.
type PendingStore[P domain.Staged] interface {
	// Upsert creates the pending row for the record's email, or overwrites
	// profile, token and expiry when a stale row already exists.
	Upsert(ctx context.Context, rec P) error
	// FindByToken returns nil (zero P) without error when no row matches.
	FindByToken(ctx context.Context, token string) (P, error)
	FindByEmail(ctx context.Context, email string) (P, error)
	// Refresh regenerates the credential on an existing pending row without
	// touching profile fields.
	Refresh(ctx context.Context, email, token string, expiresAt time.Time) error
	DeleteByToken(ctx context.Context, token string) error
}

// PendingUserRepository is the full staging surface for the end-user track.
type PendingUserRepository interface {
	PendingStore[*domain.PendingUser]
	Promote(ctx context.Context, rec *domain.PendingUser) (int64, error)
	DeleteExpired(ctx context.Context) (int64, error)
}

// PendingVendorRepository is the full staging surface for the vendor track.
type PendingVendorRepository interface {
	PendingStore[*domain.PendingVendor]
	Promote(ctx context.Context, rec *domain.PendingVendor) (int64, error)
	DeleteExpired(ctx context.Context) (int64, error)
	CNICPending(ctx context.Context, cnic, excludeEmail string) (bool, error)
}

// --- end-user track ---

type pendingUserStore struct {
	pool *pgxpool.Pool
}

func NewPendingUserStore(pool *pgxpool.Pool) PendingUserRepository {
	return &pendingUserStore{pool: pool}
}

const pendingUserCols = `id, name, email, phone, password_hash, role, token, expires_at, created_at`

func scanPendingUser(row pgx.Row) (*domain.PendingUser, error) {
	var p domain.PendingUser
	err := row.Scan(&p.ID, &p.Name, &p.Email, &p.Phone, &p.PasswordHash, &p.Role, &p.Token, &p.ExpiresAt, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *pendingUserStore) Upsert(ctx context.Context, rec *domain.PendingUser) error {
	const q = `
		INSERT INTO pending_verifications (name, email, phone, password_hash, role, token, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (email) DO UPDATE SET
			name = EXCLUDED.name,
			phone = EXCLUDED.phone,
			password_hash = EXCLUDED.password_hash,
			role = EXCLUDED.role,
			token = EXCLUDED.token,
			expires_at = EXCLUDED.expires_at
		RETURNING id, created_at`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return s.pool.QueryRow(ctx, q,
		rec.Name, rec.Email, rec.Phone, rec.PasswordHash, rec.Role, rec.Token, rec.ExpiresAt,
	).Scan(&rec.ID, &rec.CreatedAt)
}

func (s *pendingUserStore) FindByToken(ctx context.Context, token string) (*domain.PendingUser, error) {
	const q = `SELECT ` + pendingUserCols + ` FROM pending_verifications WHERE token = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	p, err := scanPendingUser(s.pool.QueryRow(ctx, q, token))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

func (s *pendingUserStore) FindByEmail(ctx context.Context, email string) (*domain.PendingUser, error) {
	const q = `SELECT ` + pendingUserCols + ` FROM pending_verifications WHERE email = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	p, err := scanPendingUser(s.pool.QueryRow(ctx, q, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

func (s *pendingUserStore) Refresh(ctx context.Context, email, token string, expiresAt time.Time) error {
	const q = `UPDATE pending_verifications SET token = $2, expires_at = $3 WHERE email = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	result, err := s.pool.Exec(ctx, q, email, token, expiresAt)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNoPendingRecord
	}
	return nil
}

func (s *pendingUserStore) DeleteByToken(ctx context.Context, token string) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := s.pool.Exec(ctx, `DELETE FROM pending_verifications WHERE token = $1`, token)
	return err
}

// Promote materializes the account and removes the staging row in one
// transaction. If an account already owns the email (the verify race, or a
// re-signup after a completed verification), it is marked verified and
// active in place instead of erroring.
func (s *pendingUserStore) Promote(ctx context.Context, rec *domain.PendingUser) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	const insert = `
		INSERT INTO users (name, email, phone, password_hash, role, is_active, is_verified)
		VALUES ($1, $2, $3, $4, $5, true, true)
		ON CONFLICT (email) DO UPDATE SET
			is_verified = true,
			is_active = true,
			updated_at = now()
		RETURNING id`

	var userID int64
	err = tx.QueryRow(ctx, insert,
		rec.Name, rec.Email, rec.Phone, rec.PasswordHash, rec.Role,
	).Scan(&userID)
	if err != nil {
		return 0, err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM pending_verifications WHERE email = $1`, rec.Email); err != nil {
		return 0, err
	}

	return userID, tx.Commit(ctx)
}

// DeleteExpired lazily purges staging rows whose credential has lapsed.
func (s *pendingUserStore) DeleteExpired(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	result, err := s.pool.Exec(ctx, `DELETE FROM pending_verifications WHERE expires_at < now()`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

// --- vendor track ---

type pendingVendorStore struct {
	pool *pgxpool.Pool
}

func NewPendingVendorStore(pool *pgxpool.Pool) PendingVendorRepository {
	return &pendingVendorStore{pool: pool}
}

const pendingVendorCols = `id, name, email, phone, cnic_number, cnic_front_image, cnic_back_image, password_hash, token, expires_at, created_at`

func scanPendingVendor(row pgx.Row) (*domain.PendingVendor, error) {
	var p domain.PendingVendor
	err := row.Scan(
		&p.ID, &p.Name, &p.Email, &p.Phone, &p.CNICNumber,
		&p.CNICFrontImage, &p.CNICBackImage, &p.PasswordHash,
		&p.Token, &p.ExpiresAt, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *pendingVendorStore) Upsert(ctx context.Context, rec *domain.PendingVendor) error {
	const q = `
		INSERT INTO pending_vendor_verifications
			(name, email, phone, cnic_number, cnic_front_image, cnic_back_image, password_hash, token, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (email) DO UPDATE SET
			name = EXCLUDED.name,
			phone = EXCLUDED.phone,
			cnic_number = EXCLUDED.cnic_number,
			cnic_front_image = EXCLUDED.cnic_front_image,
			cnic_back_image = EXCLUDED.cnic_back_image,
			password_hash = EXCLUDED.password_hash,
			token = EXCLUDED.token,
			expires_at = EXCLUDED.expires_at
		RETURNING id, created_at`

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return s.pool.QueryRow(ctx, q,
		rec.Name, rec.Email, rec.Phone, rec.CNICNumber,
		rec.CNICFrontImage, rec.CNICBackImage, rec.PasswordHash,
		rec.Token, rec.ExpiresAt,
	).Scan(&rec.ID, &rec.CreatedAt)
}

func (s *pendingVendorStore) FindByToken(ctx context.Context, token string) (*domain.PendingVendor, error) {
	const q = `SELECT ` + pendingVendorCols + ` FROM pending_vendor_verifications WHERE token = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	p, err := scanPendingVendor(s.pool.QueryRow(ctx, q, token))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

func (s *pendingVendorStore) FindByEmail(ctx context.Context, email string) (*domain.PendingVendor, error) {
	const q = `SELECT ` + pendingVendorCols + ` FROM pending_vendor_verifications WHERE email = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	p, err := scanPendingVendor(s.pool.QueryRow(ctx, q, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

func (s *pendingVendorStore) Refresh(ctx context.Context, email, token string, expiresAt time.Time) error {
	const q = `UPDATE pending_vendor_verifications SET token = $2, expires_at = $3 WHERE email = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	result, err := s.pool.Exec(ctx, q, email, token, expiresAt)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNoPendingRecord
	}
	return nil
}

func (s *pendingVendorStore) DeleteByToken(ctx context.Context, token string) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := s.pool.Exec(ctx, `DELETE FROM pending_vendor_verifications WHERE token = $1`, token)
	return err
}

// Promote creates the vendor account and removes the staging row in one
// transaction. Vendors come out of verification with is_verified=true but
// is_active=false; activation is an explicit admin decision.
func (s *pendingVendorStore) Promote(ctx context.Context, rec *domain.PendingVendor) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	const insert = `
		INSERT INTO vendors
			(name, email, phone, cnic_number, cnic_front_image, cnic_back_image, password_hash, is_active, is_verified)
		VALUES ($1, $2, $3, $4, $5, $6, $7, false, true)
		ON CONFLICT (email) DO UPDATE SET
			is_verified = true,
			updated_at = now()
		RETURNING id`

	var vendorID int64
	err = tx.QueryRow(ctx, insert,
		rec.Name, rec.Email, rec.Phone, rec.CNICNumber,
		rec.CNICFrontImage, rec.CNICBackImage, rec.PasswordHash,
	).Scan(&vendorID)
	if err != nil {
		if isUniqueViolation(err) {
			// Another vendor claimed the CNIC between signup and verify.
			return 0, domain.ErrDuplicateNationalID
		}
		return 0, err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM pending_vendor_verifications WHERE email = $1`, rec.Email); err != nil {
		return 0, err
	}

	return vendorID, tx.Commit(ctx)
}

// CNICPending reports whether a national id is held by any staged vendor
// signup other than the given email.
func (s *pendingVendorStore) CNICPending(ctx context.Context, cnic, excludeEmail string) (bool, error) {
	const q = `SELECT EXISTS (
		SELECT 1 FROM pending_vendor_verifications WHERE cnic_number = $1 AND email <> $2
	)`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var exists bool
	err := s.pool.QueryRow(ctx, q, cnic, excludeEmail).Scan(&exists)
	return exists, err
}

func (s *pendingVendorStore) DeleteExpired(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	result, err := s.pool.Exec(ctx, `DELETE FROM pending_vendor_verifications WHERE expires_at < now()`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
