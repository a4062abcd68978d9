// Package pubsub relays inserted messages between server instances.
package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/vovakirdan/wireboard/internal/board"
	"github.com/vovakirdan/wireboard/internal/proto"
)

// Publisher announces messages inserted into a table.
type Publisher interface {
	Publish(ctx context.Context, table string, msgs []board.Message) error
}

// Envelope is the payload carried on the bus.
type Envelope struct {
	Table     string                `json:"table"`
	Messages  []proto.MessageRecord `json:"messages"`
	Origin    string                `json:"origin"`
	Timestamp time.Time             `json:"timestamp"`
}

func newEnvelope(origin, table string, msgs []board.Message) (*Envelope, error) {
	records := make([]proto.MessageRecord, 0, len(msgs))
	for _, msg := range msgs {
		id, ok := msg.ID.ServerID()
		if !ok {
			return nil, fmt.Errorf("publish message %s: not confirmed", msg.ID)
		}
		records = append(records, proto.MessageRecord{ID: id, Content: msg.Content, CreatedAt: msg.CreatedAt})
	}
	return &Envelope{
		Table:     table,
		Messages:  records,
		Origin:    origin,
		Timestamp: time.Now().UTC(),
	}, nil
}

func decodeEnvelope(payload []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	if env.Table == "" {
		return nil, fmt.Errorf("decode envelope: missing table")
	}
	return &env, nil
}

// BoardMessages converts the envelope's records back to board messages.
func (e *Envelope) BoardMessages() []board.Message {
	msgs := make([]board.Message, 0, len(e.Messages))
	for _, rec := range e.Messages {
		msgs = append(msgs, board.Message{ID: board.Confirmed(rec.ID), Content: rec.Content, CreatedAt: rec.CreatedAt})
	}
	return msgs
}
