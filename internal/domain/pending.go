package domain

import "time"

// Staged is implemented by pending-verification records. The verification
// workflow only needs identity fields and the single-use credential; the
// rest of the profile travels opaquely to promotion time.
type Staged interface {
	StagedEmail() string
	StagedName() string
	StagedToken() string
	StagedExpiresAt() time.Time
	SetCredential(token string, expiresAt time.Time)
}

// PendingUser stages an end-user signup until the email is verified.
// At most one row exists per email; signup upserts in place.
type PendingUser struct {
	ID           int64
	Name         string
	Email        string
	Phone        string
	PasswordHash string
	Role         string
	Token        string
	ExpiresAt    time.Time
	CreatedAt    time.Time
}

func (p *PendingUser) StagedEmail() string        { return p.Email }
func (p *PendingUser) StagedName() string         { return p.Name }
func (p *PendingUser) StagedToken() string        { return p.Token }
func (p *PendingUser) StagedExpiresAt() time.Time { return p.ExpiresAt }
func (p *PendingUser) SetCredential(token string, expiresAt time.Time) {
	p.Token = token
	p.ExpiresAt = expiresAt
}

// PendingVendor stages a vendor signup, including the ID-document images,
// until the email is verified.
type PendingVendor struct {
	ID             int64
	Name           string
	Email          string
	Phone          string
	CNICNumber     string
	CNICFrontImage *string
	CNICBackImage  *string
	PasswordHash   string
	Token          string
	ExpiresAt      time.Time
	CreatedAt      time.Time
}

func (p *PendingVendor) StagedEmail() string        { return p.Email }
func (p *PendingVendor) StagedName() string         { return p.Name }
func (p *PendingVendor) StagedToken() string        { return p.Token }
func (p *PendingVendor) StagedExpiresAt() time.Time { return p.ExpiresAt }
func (p *PendingVendor) SetCredential(token string, expiresAt time.Time) {
	p.Token = token
	p.ExpiresAt = expiresAt
}

// IsExpired reports whether a verification credential is past its expiry.
// A zero expiry counts as expired.
func IsExpired(expiresAt time.Time, now time.Time) bool {
	if expiresAt.IsZero() {
		return true
	}
	return now.After(expiresAt)
}
