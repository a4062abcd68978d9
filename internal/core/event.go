package core

import "github.com/vovakirdan/wireboard/internal/board"

// EventKind is a notification the core emits to clients.
type EventKind int

const (
	// EventSubscribed confirms a client's registration.
	EventSubscribed EventKind = iota
	// EventInsert notifies clients about a stored message.
	EventInsert
)

// EventNameInsert is the wire name of EventInsert.
const EventNameInsert = "insert"

// Event is sent to clients to describe what happened in the system.
type Event struct {
	Kind    EventKind
	Topic   string
	Message board.Message
}

// TopicName joins a table and event name into a topic key.
func TopicName(table, event string) string {
	return table + ":" + event
}
