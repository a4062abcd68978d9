package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/wireboard/internal/board"
)

func newChatCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Interactive board: type to post, updates stream in",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			s, err := openSession(ctx, opts)
			if err != nil {
				return err
			}
			defer s.Close()

			return runChat(ctx, s, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

func runChat(ctx context.Context, s *session, in io.Reader, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	engineDone := make(chan error, 1)
	go func() { engineDone <- s.engine.Run(ctx) }()

	if err := s.engine.Refresh(ctx); err != nil {
		fmt.Fprintf(out, "offline, showing local messages: %v\n", err)
	}

	fmt.Fprintln(out, "Type messages and press Enter to post. /refresh, /pending, /quit.")
	if s.demo != nil {
		fmt.Fprintln(out, "Offline demo: /offline and /online toggle the simulated network.")
	}
	renderBoard(out, s.engine.Messages())

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return <-engineDone
		case <-s.engine.Updates():
			fmt.Fprintln(out, "---")
			renderBoard(out, s.engine.Messages())
		case line, ok := <-lines:
			if !ok {
				cancel()
				return <-engineDone
			}
			if quit := handleLine(ctx, s, out, line); quit {
				cancel()
				return <-engineDone
			}
		}
	}
}

// handleLine runs a slash command or posts line. It reports whether the
// user asked to quit.
func handleLine(ctx context.Context, s *session, out io.Writer, line string) bool {
	switch strings.TrimSpace(line) {
	case "/quit", "/exit":
		return true
	case "/refresh":
		if err := s.engine.Refresh(ctx); err != nil {
			fmt.Fprintf(out, "refresh failed: %v\n", err)
		}
		return false
	case "/pending":
		for _, msg := range s.engine.Pending() {
			fmt.Fprintln(out, formatMessage(msg))
		}
		return false
	case "/offline", "/online":
		if s.demo == nil {
			fmt.Fprintln(out, "network toggles need --offline-demo")
			return false
		}
		offline := strings.TrimSpace(line) == "/offline"
		s.demo.SetOffline(offline)
		if !offline {
			// Coming back online: retry whatever queued up meanwhile.
			if _, err := s.flush(ctx); err != nil {
				fmt.Fprintf(out, "flush failed: %v\n", err)
			}
		}
		return false
	}

	if _, err := s.engine.Submit(ctx, line); err != nil && !errors.Is(err, board.ErrEmptyContent) {
		fmt.Fprintf(out, "not posted: %v\n", err)
	}
	return false
}
