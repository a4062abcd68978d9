package board

import (
	"errors"
	"strings"
	"time"
)

var (
	// ErrEmptyContent is returned for empty or whitespace-only text.
	ErrEmptyContent = errors.New("message content is empty")
	// ErrContentTooLong is returned when content exceeds the configured limit.
	ErrContentTooLong = errors.New("message content is too long")
)

// Message is a board entry, confirmed or pending.
type Message struct {
	ID        ID        `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Draft is a message stripped of its id, ready for a bulk insert.
type Draft struct {
	Content string `json:"content"`
}

// Draft strips the id and timestamp from the message.
func (m Message) Draft() Draft {
	return Draft{Content: m.Content}
}

// ValidateContent rejects whitespace-only text and, when maxLen > 0, text
// longer than maxLen runes.
func ValidateContent(content string, maxLen int) error {
	if strings.TrimSpace(content) == "" {
		return ErrEmptyContent
	}
	if maxLen > 0 && len([]rune(content)) > maxLen {
		return ErrContentTooLong
	}
	return nil
}
