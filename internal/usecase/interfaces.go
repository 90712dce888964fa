package usecase

import (
	"context"
	"time"

	"github.com/iho/tripledger/internal/domain"
)

// UserRepository defines data access for user profiles.
type UserRepository interface {
	Upsert(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// TripRepository defines data access for trips and their participants.
type TripRepository interface {
	Create(ctx context.Context, tx Transaction, trip *domain.Trip) error
	GetByID(ctx context.Context, id string) (*domain.Trip, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Trip, error)
	AddParticipant(ctx context.Context, tx Transaction, participant *domain.Participant) error
	// GetParticipant returns domain.ErrNotParticipant when the user is not in the trip.
	GetParticipant(ctx context.Context, tripID, userID string) (*domain.Participant, error)
	// ListParticipants returns participants in join order.
	ListParticipants(ctx context.Context, tripID string) ([]*domain.Participant, error)
}

// ExpenseRepository defines data access for expenses. Shares are stored and
// loaded together with their expense.
type ExpenseRepository interface {
	Create(ctx context.Context, tx Transaction, expense *domain.Expense) error
	ListByTrip(ctx context.Context, tripID string) ([]*domain.Expense, error)
}

// PaymentRepository defines data access for payments between participants.
type PaymentRepository interface {
	Create(ctx context.Context, tx Transaction, payment *domain.Payment) error
	ListByTrip(ctx context.Context, tripID string) ([]*domain.Payment, error)
}

// OutboxRepository defines data access for events awaiting delivery.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.Event) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.Event, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublished(ctx context.Context, before time.Time) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier re-runs an operation on transient storage errors.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Cache defines caching operations. Incr atomically increments an integer
// counter, creating it at zero first; Get reads counters back as decimal text.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Incr(ctx context.Context, key string) (int64, error)
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops a key whose request failed so it can be retried.
	Release(ctx context.Context, key string) error
}

// LedgerMetrics records engine runs.
type LedgerMetrics interface {
	ObserveCompute(duration time.Duration, err error)
	IncInvariantViolation()
}
