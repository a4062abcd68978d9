package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/vovakirdan/wireboard/internal/board"
)

const timeLayout = "2006-01-02 15:04:05"

func formatMessage(msg board.Message) string {
	status := ""
	if msg.ID.IsPending() {
		status = " (sending)"
	} else if id, ok := msg.ID.ServerID(); ok {
		status = fmt.Sprintf(" #%d", id)
	}
	return fmt.Sprintf("[%s]%s %s", msg.CreatedAt.Local().Format(timeLayout), status, msg.Content)
}

// renderBoard writes msgs newest first.
func renderBoard(w io.Writer, msgs []board.Message) {
	if len(msgs) == 0 {
		fmt.Fprintln(w, "(no messages)")
		return
	}
	var b strings.Builder
	for _, msg := range msgs {
		b.WriteString(formatMessage(msg))
		b.WriteByte('\n')
	}
	fmt.Fprint(w, b.String())
}
