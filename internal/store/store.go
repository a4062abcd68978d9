package store

import (
	"context"
	"time"
)

// Message represents a persisted board message.
type Message struct {
	ID        int64
	Content   string
	CreatedAt time.Time
}

// Order defines the sort order for listing messages.
type Order string

const (
	OrderCreatedDesc Order = "created_at.desc"
	OrderCreatedAsc  Order = "created_at.asc"
)

// Valid reports whether o is a supported order.
func (o Order) Valid() bool {
	return o == OrderCreatedDesc || o == OrderCreatedAsc
}

// MessageStore handles message persistence.
type MessageStore interface {
	// InsertMessages persists all contents in one transaction and returns the
	// stored rows in the order given.
	InsertMessages(ctx context.Context, contents []string) ([]*Message, error)

	// ListMessages returns every message ordered by creation time.
	// Rows created at the same instant are ordered by id in the same direction.
	ListMessages(ctx context.Context, order Order) ([]*Message, error)
}

// Store aggregates all storage interfaces.
type Store interface {
	MessageStore

	// Close closes the underlying database connection.
	Close() error
}
