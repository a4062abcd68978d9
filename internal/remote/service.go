// Package remote talks to the Remote Message Service: list, bulk insert and
// a push stream of inserts.
package remote

import (
	"context"
	"errors"

	"github.com/vovakirdan/wireboard/internal/board"
	"github.com/vovakirdan/wireboard/internal/proto"
)

// ErrUnavailable is returned when the service cannot be reached.
var ErrUnavailable = errors.New("remote service unavailable")

// Order selects the sort order of Select.
type Order string

const (
	OrderNewestFirst Order = proto.OrderCreatedDesc
	OrderOldestFirst Order = proto.OrderCreatedAsc
)

// Event selects which change events a subscription receives.
type Event string

const (
	EventInsert Event = proto.EventInsert
)

// Service is the remote collaborator the sync engine reconciles against.
type Service interface {
	// Select returns all stored messages in the given order.
	Select(ctx context.Context, order Order) ([]board.Message, error)

	// Insert stores drafts in one request and returns the stored records,
	// with server ids, in the order of drafts.
	Insert(ctx context.Context, drafts []board.Draft) ([]board.Message, error)

	// Subscribe delivers every record inserted from now on, by any client,
	// to handler until the subscription is closed or ctx is done.
	Subscribe(ctx context.Context, event Event, handler func(board.Message)) (Subscription, error)
}

// Subscription is a cancellable handle to a change stream.
type Subscription interface {
	Close() error
}

// FromRecord converts a wire record into a confirmed message.
func FromRecord(r proto.MessageRecord) board.Message {
	return board.Message{
		ID:        board.Confirmed(r.ID),
		Content:   r.Content,
		CreatedAt: r.CreatedAt,
	}
}
