package board

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// ErrInvalidID is returned when an identifier cannot be decoded.
var ErrInvalidID = errors.New("invalid message id")

type idKind uint8

const (
	kindNone idKind = iota
	kindConfirmed
	kindPending
)

// ID identifies a message either by its server-assigned id (confirmed) or by
// a client-generated local id (pending). The zero value is neither.
type ID struct {
	kind   idKind
	server int64
	local  string
}

// Confirmed returns the id of a record acknowledged by the server.
func Confirmed(serverID int64) ID {
	return ID{kind: kindConfirmed, server: serverID}
}

// Pending returns the id of a message not yet acknowledged by the server.
func Pending(localID string) ID {
	return ID{kind: kindPending, local: localID}
}

// IsConfirmed reports whether the id was assigned by the server.
func (id ID) IsConfirmed() bool { return id.kind == kindConfirmed }

// IsPending reports whether the id is a local, unconfirmed one.
func (id ID) IsPending() bool { return id.kind == kindPending }

// IsZero reports whether the id was never set.
func (id ID) IsZero() bool { return id.kind == kindNone }

// ServerID returns the server id and true for confirmed ids.
func (id ID) ServerID() (int64, bool) {
	return id.server, id.kind == kindConfirmed
}

// LocalID returns the local id and true for pending ids.
func (id ID) LocalID() (string, bool) {
	return id.local, id.kind == kindPending
}

func (id ID) String() string {
	switch id.kind {
	case kindConfirmed:
		return strconv.FormatInt(id.server, 10)
	case kindPending:
		return "pending:" + id.local
	default:
		return "<none>"
	}
}

type idJSON struct {
	Server *int64  `json:"server,omitempty"`
	Local  *string `json:"local,omitempty"`
}

// MarshalJSON encodes the id as {"server": n} or {"local": "..."}.
func (id ID) MarshalJSON() ([]byte, error) {
	switch id.kind {
	case kindConfirmed:
		return json.Marshal(idJSON{Server: &id.server})
	case kindPending:
		return json.Marshal(idJSON{Local: &id.local})
	default:
		return nil, fmt.Errorf("marshal id: %w", ErrInvalidID)
	}
}

// UnmarshalJSON decodes an id that carries exactly one of server or local.
func (id *ID) UnmarshalJSON(data []byte) error {
	var raw idJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode id: %w", err)
	}
	switch {
	case raw.Server != nil && raw.Local == nil:
		*id = Confirmed(*raw.Server)
	case raw.Local != nil && raw.Server == nil && *raw.Local != "":
		*id = Pending(*raw.Local)
	default:
		return ErrInvalidID
	}
	return nil
}
