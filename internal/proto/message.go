package proto

import (
	"encoding/json"
	"time"
)

const (
	ProtocolVersion = 1

	// DefaultTable is the only table the board serves.
	DefaultTable = "messages"

	EventInsert = "insert"
	// EventSubscribed acknowledges a realtime subscription.
	EventSubscribed = "subscribed"

	OrderCreatedDesc = "created_at.desc"
	OrderCreatedAsc  = "created_at.asc"

	OutboundTypeEvent = "event"
	OutboundTypeError = "error"
)

// NewMessage is one row of a bulk insert request.
type NewMessage struct {
	Content string `json:"content"`
}

// MessageRecord is a stored message as returned by list and insert and as
// pushed on the realtime stream.
type MessageRecord struct {
	ID        int64     `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Outbound is the envelope for messages the server pushes over the socket.
type Outbound struct {
	Type     string `json:"type"`
	Event    string `json:"event,omitempty"`
	Protocol int    `json:"protocol,omitempty"`
	Data     any    `json:"data,omitempty"`
	Error    *Error `json:"error,omitempty"`
}

// InboundEvent is Outbound as seen by a client, with Data left undecoded.
type InboundEvent struct {
	Type     string          `json:"type"`
	Event    string          `json:"event,omitempty"`
	Protocol int             `json:"protocol,omitempty"`
	Data     json.RawMessage `json:"data,omitempty"`
	Error    *Error          `json:"error,omitempty"`
}

// Error describes a protocol-level error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}
