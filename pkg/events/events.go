package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/fassa-ttu/fassa-backend/pkg/logger"
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

// Event subjects
const (
	AccountRegistered      = "account.registered"
	AccountVerified        = "account.verified"
	AccountCreated         = "account.managed.created"
	AccountDeleted         = "account.deleted"
	PasswordResetRequested = "account.password_reset.requested"
	PasswordResetConfirmed = "account.password_reset.confirmed"
	CourseRegistered       = "registration.created"
)

// Event payloads
type AccountRegisteredEvent struct {
	AccountID   int64     `json:"account_id"`
	Email       string    `json:"email"`
	IndexNumber string    `json:"index_number"`
	CreatedAt   time.Time `json:"created_at"`
}

type AccountVerifiedEvent struct {
	AccountID  int64     `json:"account_id"`
	Email      string    `json:"email"`
	VerifiedAt time.Time `json:"verified_at"`
}

type AccountCreatedEvent struct {
	AccountID int64     `json:"account_id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

type AccountDeletedEvent struct {
	AccountID int64     `json:"account_id"`
	DeletedAt time.Time `json:"deleted_at"`
}

type PasswordResetRequestedEvent struct {
	AccountID   int64     `json:"account_id"`
	RequestedAt time.Time `json:"requested_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type PasswordResetConfirmedEvent struct {
	AccountID   int64     `json:"account_id"`
	ConfirmedAt time.Time `json:"confirmed_at"`
}

type CourseRegisteredEvent struct {
	AccountID    int64     `json:"account_id"`
	CourseID     int64     `json:"course_id"`
	CourseCode   string    `json:"course_code"`
	RegisteredAt time.Time `json:"registered_at"`
}
