package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/wireboard/internal/app"
	"github.com/vovakirdan/wireboard/internal/auth"
	"github.com/vovakirdan/wireboard/internal/config"
	"github.com/vovakirdan/wireboard/internal/log"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		overrides  config.Config
	)

	root := &cobra.Command{
		Use:           "wireboard-server",
		Short:         "Message board server with realtime insert notifications",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfig(configPath, overrides)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			application, err := app.New(ctx, &cfg, logger)
			if err != nil {
				return fmt.Errorf("init app: %w", err)
			}

			logger.Info().Str("addr", cfg.Addr).Bool("api_keys", cfg.APIKeySecret != "").Msg("starting wireboard server")
			if err := application.Run(ctx); err != nil {
				return fmt.Errorf("server exited with error: %w", err)
			}
			logger.Info().Msg("server stopped")
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "path to config.yaml")
	root.Flags().StringVar(&overrides.Addr, "addr", "", "HTTP listen address")
	root.Flags().StringVar(&overrides.DatabasePath, "db", "", "SQLite database path")
	root.Flags().StringVar(&overrides.LogLevel, "log-level", "", "log level (debug, info, warn, error)")
	root.Flags().DurationVar(&overrides.ShutdownTimeout, "shutdown-timeout", 0, "graceful shutdown timeout")

	root.AddCommand(newKeygenCmd(&configPath))
	return root
}

func newKeygenCmd(configPath *string) *cobra.Command {
	var (
		role string
		ttl  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Mint a project API key signed with api_key_secret",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := loadConfig(*configPath, config.Config{})
			if err != nil {
				return err
			}
			if cfg.APIKeySecret == "" {
				return fmt.Errorf("api_key_secret is not configured")
			}

			key, err := auth.GenerateKey(&auth.Config{
				Secret: []byte(cfg.APIKeySecret),
				Issuer: cfg.APIKeyIssuer,
				TTL:    ttl,
			}, role)
			if err != nil {
				return fmt.Errorf("generate key: %w", err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), key)
			return err
		},
	}

	cmd.Flags().StringVar(&role, "role", auth.RoleAnon, "key role (anon, service)")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "key lifetime; 0 never expires")
	return cmd
}

func loadConfig(path string, overrides config.Config) (config.Config, *zerolog.Logger, error) {
	bootLogger := log.NewWithWriter("info", os.Stderr)

	cfg, resolved, err := config.Load(bootLogger, path)
	if err != nil {
		return cfg, nil, fmt.Errorf("load config %s: %w", resolved, err)
	}
	cfg.UpdateFrom(overrides)

	return cfg, log.New(cfg.LogLevel), nil
}
