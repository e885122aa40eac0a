package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shadiejo/shadiejo-api/internal/domain"
	"github.com/shadiejo/shadiejo-api/internal/mailer"
	"github.com/shadiejo/shadiejo-api/internal/repository"
	"github.com/shadiejo/shadiejo-api/pkg/events"
	"github.com/shadiejo/shadiejo-api/pkg/logger"
)

// StagedRecord constrains the verification engine to pending-record pointer
// types, which are comparable against their nil zero value.
type StagedRecord interface {
	domain.Staged
	comparable
}

// Verifier drives the staged-identity verification workflow for one signup
// track. The user and vendor tracks differ only in their duplicate checks
// and in how a pending record is promoted to a durable account; everything
// else (token lifecycle, expiry, resend, notification policy) is shared.
//
// State machine per email:
//
//	NoRecord -> Pending -> Verified (promoted, pending row deleted)
//	                    -> Expired  (lazy purge on verify attempt)
//	                    -> Superseded (re-signup overwrites in place)
type Verifier[P StagedRecord] struct {
	Kind     string // mailer.KindUser or mailer.KindVendor
	TokenTTL time.Duration

	Pending repository.PendingStore[P]
	Mailer  mailer.Service
	Bus     events.Publisher

	// CheckDuplicates rejects the signup when an active account (or, for
	// vendors, a registered national id) already owns the profile.
	CheckDuplicates func(ctx context.Context, rec P) error
	// Promote atomically creates the account and deletes the pending row,
	// returning the account id.
	Promote func(ctx context.Context, rec P) (int64, error)
	// AlreadyVerified reports whether a verified account owns the email.
	AlreadyVerified func(ctx context.Context, email string) (bool, error)

	Now func() time.Time
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (v *Verifier[P]) clock() time.Time {
	if v.Now != nil {
		return v.Now()
	}
	return time.Now()
}

// RequestSignup stages a signup and emails the verification link. A stale
// pending record for the same email is overwritten, so at most one pending
// row exists per email. Email delivery failure is reported to operators but
// does not fail the signup; the caller can always resend.
func (v *Verifier[P]) RequestSignup(ctx context.Context, rec P) error {
	if err := v.CheckDuplicates(ctx, rec); err != nil {
		return err
	}

	rec.SetCredential(NewOpaqueToken(), v.clock().Add(v.TokenTTL))

	if err := v.Pending.Upsert(ctx, rec); err != nil {
		return fmt.Errorf("failed to stage signup: %w", err)
	}

	if err := v.Mailer.SendVerificationEmail(rec.StagedEmail(), rec.StagedName(), rec.StagedToken(), v.Kind); err != nil {
		v.reportNotifyFailure(ctx, "verification", rec.StagedEmail(), err)
	}

	return nil
}

// VerifyByToken promotes the pending record matching the token into a real
// account. Expired records are purged on the spot. Concurrent calls with
// the same token resolve through the database: promotion upserts on the
// account's unique email, so exactly one account results and both callers
// see its id.
func (v *Verifier[P]) VerifyByToken(ctx context.Context, token string) (int64, error) {
	var zero P

	rec, err := v.Pending.FindByToken(ctx, token)
	if err != nil {
		return 0, fmt.Errorf("failed to look up verification token: %w", err)
	}
	if rec == zero {
		return 0, domain.ErrInvalidToken
	}

	if domain.IsExpired(rec.StagedExpiresAt(), v.clock()) {
		if err := v.Pending.DeleteByToken(ctx, token); err != nil {
			logger.WarnContext(ctx, "Failed to purge expired pending record", "email", rec.StagedEmail(), "error", err)
		}
		return 0, domain.ErrTokenExpired
	}

	accountID, err := v.Promote(ctx, rec)
	if err != nil {
		return 0, err
	}

	subject := events.UserVerified
	if v.Kind == mailer.KindVendor {
		subject = events.VendorVerified
	}
	if err := v.Bus.Publish(ctx, subject, events.AccountVerifiedEvent{
		AccountID:  accountID,
		Email:      rec.StagedEmail(),
		VerifiedAt: v.clock(),
	}); err != nil {
		logger.WarnContext(ctx, "Failed to publish verified event", "subject", subject, "error", err)
	}

	if err := v.Mailer.SendWelcomeEmail(rec.StagedEmail(), rec.StagedName()); err != nil {
		v.reportNotifyFailure(ctx, "welcome", rec.StagedEmail(), err)
	}

	return accountID, nil
}

// ResendVerification regenerates the credential on an existing pending
// record and re-sends the link. Profile fields are untouched. Unlike the
// initial signup, delivery failure is surfaced: the caller asked for this
// email and is waiting on it.
func (v *Verifier[P]) ResendVerification(ctx context.Context, email string) error {
	verified, err := v.AlreadyVerified(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to check account status: %w", err)
	}
	if verified {
		return domain.ErrAlreadyVerified
	}

	var zero P
	rec, err := v.Pending.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to look up pending record: %w", err)
	}
	if rec == zero {
		return domain.ErrNoPendingRecord
	}

	token := NewOpaqueToken()
	if err := v.Pending.Refresh(ctx, email, token, v.clock().Add(v.TokenTTL)); err != nil {
		return err
	}

	if err := v.Mailer.SendVerificationEmail(email, rec.StagedName(), token, v.Kind); err != nil {
		v.reportNotifyFailure(ctx, "verification", email, err)
		return fmt.Errorf("%w: %v", domain.ErrNotificationFailed, err)
	}

	return nil
}

// reportNotifyFailure logs a delivery failure and publishes it so operators
// can alert on undelivered verification mail.
func (v *Verifier[P]) reportNotifyFailure(ctx context.Context, kind, recipient string, cause error) {
	logger.ErrorContext(ctx, "Failed to send email", "kind", kind, "to", recipient, "error", cause)

	if err := v.Bus.Publish(ctx, events.NotifyFailed, events.NotifyFailedEvent{
		Kind:      kind,
		Recipient: recipient,
		Reason:    cause.Error(),
		FailedAt:  v.clock(),
	}); err != nil {
		logger.WarnContext(ctx, "Failed to publish notify failure event", "error", err)
	}
}
