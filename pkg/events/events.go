package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/shadiejo/shadiejo-api/pkg/logger"
)

type Publisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
	Close() error
}

type NATSEventBus struct {
	conn *nats.Conn
}

func NewNATSEventBus(url string) (*NATSEventBus, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATSEventBus{conn: conn}, nil
}

func (n *NATSEventBus) Publish(ctx context.Context, subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	logger.DebugContext(ctx, "Publishing event", "subject", subject, "data", string(payload))

	return n.conn.Publish(subject, payload)
}

func (n *NATSEventBus) Close() error {
	n.conn.Close()
	return nil
}

// NoopBus satisfies Publisher when no broker is configured, so the signup
// flow keeps working in local development.
type NoopBus struct{}

func NewNoopBus() *NoopBus { return &NoopBus{} }

func (NoopBus) Publish(ctx context.Context, subject string, data interface{}) error {
	logger.DebugContext(ctx, "Event dropped (no broker)", "subject", subject)
	return nil
}

func (NoopBus) Close() error { return nil }

// Event subjects
const (
	UserVerified   = "user.verified"
	VendorVerified = "vendor.verified"
	VendorApproved = "vendor.approved"
	NotifyFailed   = "notify.failed"
)

// Event payloads
type AccountVerifiedEvent struct {
	AccountID  int64     `json:"account_id"`
	Email      string    `json:"email"`
	VerifiedAt time.Time `json:"verified_at"`
}

type VendorApprovedEvent struct {
	VendorID   int64     `json:"vendor_id"`
	Approved   bool      `json:"approved"`
	DecidedAt  time.Time `json:"decided_at"`
}

// NotifyFailedEvent signals that a best-effort email could not be delivered.
// Operators alert on these instead of the failure being silently swallowed.
type NotifyFailedEvent struct {
	Kind      string    `json:"kind"` // verification | welcome
	Recipient string    `json:"recipient"`
	Reason    string    `json:"reason"`
	FailedAt  time.Time `json:"failed_at"`
}
