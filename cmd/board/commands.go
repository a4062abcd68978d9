package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/wireboard/internal/board"
)

func newPostCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "post <text>",
		Short: "Queue a message and try to send it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := openSession(ctx, opts)
			if err != nil {
				return err
			}
			defer s.Close()

			msg, err := s.engine.Submit(ctx, strings.Join(args, " "))
			if err != nil {
				if errors.Is(err, board.ErrEmptyContent) {
					return nil
				}
				return err
			}

			out := cmd.OutOrStdout()
			if _, err := s.flush(ctx); err != nil {
				fmt.Fprintf(out, "queued %s, will retry on next flush: %v\n", msg.ID, err)
				return nil
			}
			fmt.Fprintln(out, "sent")
			return nil
		},
	}
}

func newListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show the board, newest first, including unsent messages",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			s, err := openSession(ctx, opts)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.engine.Refresh(ctx); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "showing local messages only: %v\n", err)
			}
			renderBoard(cmd.OutOrStdout(), s.engine.Messages())
			return nil
		},
	}
}

func newFlushCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "flush",
		Short: "Send every queued message in one request",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			s, err := openSession(ctx, opts)
			if err != nil {
				return err
			}
			defer s.Close()

			n, err := s.flush(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "sent %d message(s)\n", n)
			return nil
		},
	}
}

func newPendingCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "pending",
		Short: "List queued messages in submission order",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer s.Close()

			pending := s.engine.Pending()
			out := cmd.OutOrStdout()
			if len(pending) == 0 {
				fmt.Fprintln(out, "(queue empty)")
				return nil
			}
			for _, msg := range pending {
				fmt.Fprintln(out, formatMessage(msg))
			}
			return nil
		},
	}
}
