package core

import (
	"errors"
	"fmt"
)

// Error codes for domain errors.
const (
	ErrCodeUnknownTable = "unknown_table"
	ErrCodeUnknownEvent = "unknown_event"
)

var (
	ErrUnknownTable = errors.New("unknown table")
	ErrUnknownEvent = errors.New("unknown event")
	ErrHubStopped   = errors.New("hub stopped")
)

// CoreError wraps a code and human-readable message.
type CoreError struct {
	Code    string
	Message string
}

func (e *CoreError) Error() string {
	return e.Message
}

// ValidateTopic checks that table and event name a topic the board serves.
func ValidateTopic(table, event, servedTable string) *CoreError {
	if table != servedTable {
		return &CoreError{Code: ErrCodeUnknownTable, Message: fmt.Sprintf("%v: %s", ErrUnknownTable, table)}
	}
	if event != EventNameInsert {
		return &CoreError{Code: ErrCodeUnknownEvent, Message: fmt.Sprintf("%v: %s", ErrUnknownEvent, event)}
	}
	return nil
}
