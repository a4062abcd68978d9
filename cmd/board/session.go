package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/wireboard/internal/config"
	"github.com/vovakirdan/wireboard/internal/kvstore"
	kvsqlite "github.com/vovakirdan/wireboard/internal/kvstore/sqlite"
	"github.com/vovakirdan/wireboard/internal/log"
	"github.com/vovakirdan/wireboard/internal/remote"
	"github.com/vovakirdan/wireboard/internal/syncer"
)

// session bundles what every subcommand needs: a hydrated engine over the
// configured queue backend and remote service.
type session struct {
	cfg    config.ClientConfig
	engine *syncer.Engine
	queue  kvstore.Store
	remote remote.Service
	demo   *remote.Memory
	log    *zerolog.Logger
}

func openSession(ctx context.Context, opts *rootOptions) (*session, error) {
	bootLogger := log.NewWithWriter("warn", os.Stderr)
	cfg, resolved, err := config.LoadClient(bootLogger, opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", resolved, err)
	}
	cfg.UpdateFrom(config.ClientConfig{ServerURL: opts.serverURL})
	logger := log.NewWithWriter(cfg.LogLevel, os.Stderr)

	queue, err := openQueue(ctx, cfg)
	if err != nil {
		return nil, err
	}

	s := &session{cfg: cfg, queue: queue, log: logger}
	if opts.offlineDemo {
		s.demo = remote.NewMemory()
		s.remote = s.demo
	} else {
		client, err := remote.NewClient(remote.ClientOptions{
			BaseURL: cfg.ServerURL,
			Table:   cfg.Table,
			APIKey:  cfg.APIKey,
		}, logger)
		if err != nil {
			_ = queue.Close()
			return nil, fmt.Errorf("init remote client: %w", err)
		}
		s.remote = client
	}

	s.engine = syncer.New(syncer.Config{
		QueueKey:     cfg.QueueKey,
		FlushTimeout: cfg.FlushTimeout,
	}, s.remote, queue, logger)
	s.engine.Hydrate(ctx)

	return s, nil
}

func openQueue(ctx context.Context, cfg config.ClientConfig) (kvstore.Store, error) {
	switch cfg.QueueBackend {
	case config.QueueBackendMemory:
		return kvstore.NewMemory(), nil
	case config.QueueBackendRedis:
		st, err := kvstore.NewRedis(ctx, cfg.RedisURL, "board")
		if err != nil {
			return nil, fmt.Errorf("open redis queue: %w", err)
		}
		return st, nil
	default:
		st, err := kvsqlite.New(cfg.QueuePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite queue: %w", err)
		}
		return st, nil
	}
}

// flush runs one bounded flush.
func (s *session) flush(ctx context.Context) (int, error) {
	if s.cfg.FlushTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.FlushTimeout)
		defer cancel()
	}
	return s.engine.Flush(ctx)
}

func (s *session) Close() {
	if err := s.queue.Close(); err != nil {
		s.log.Warn().Err(err).Msg("failed to close pending queue")
	}
}
