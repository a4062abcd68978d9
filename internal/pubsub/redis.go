package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/wireboard/internal/board"
	"github.com/vovakirdan/wireboard/internal/metrics"
	"github.com/vovakirdan/wireboard/internal/utils"
)

// RedisBus publishes inserts to a Redis channel and relays what it receives
// to a local publisher. Handlers publish only to the bus, so a running relay
// hands each insert to its hub once. Messages published while a relay is
// not subscribed are lost; clients catch up on their next refresh.
type RedisBus struct {
	client  *redis.Client
	channel string
	origin  string
	log     *zerolog.Logger

	mu  sync.Mutex
	sub *redis.PubSub
}

// NewRedisBus connects to url and verifies the connection.
func NewRedisBus(ctx context.Context, url, channel string, logger *zerolog.Logger) (*RedisBus, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	return &RedisBus{
		client:  client,
		channel: channel,
		origin:  utils.NewID(),
		log:     logger,
	}, nil
}

// Publish sends msgs to the bus.
func (b *RedisBus) Publish(ctx context.Context, table string, msgs []board.Message) error {
	env, err := newEnvelope(b.origin, table, msgs)
	if err != nil {
		return err
	}
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to marshal envelope: %w", err)
	}
	if err := b.client.Publish(ctx, b.channel, data).Err(); err != nil {
		return fmt.Errorf("publish to redis: %w", err)
	}
	return nil
}

// Relay forwards every envelope received on the bus to local until ctx is
// done or the subscription ends.
func (b *RedisBus) Relay(ctx context.Context, local Publisher) error {
	sub := b.client.Subscribe(ctx, b.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe to redis channel %s: %w", b.channel, err)
	}

	b.mu.Lock()
	b.sub = sub
	b.mu.Unlock()
	defer sub.Close()

	b.log.Info().Str("channel", b.channel).Msg("redis relay started")

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			env, err := decodeEnvelope([]byte(msg.Payload))
			if err != nil {
				b.log.Warn().Err(err).Msg("skipping malformed relay payload")
				continue
			}
			metrics.RelayedInserts.Add(float64(len(env.Messages)))
			if err := local.Publish(ctx, env.Table, env.BoardMessages()); err != nil {
				b.log.Warn().Err(err).Str("origin", env.Origin).Msg("failed to relay insert")
			}
		}
	}
}

// Close closes the subscription and the Redis client.
func (b *RedisBus) Close() error {
	b.mu.Lock()
	if b.sub != nil {
		_ = b.sub.Close()
		b.sub = nil
	}
	b.mu.Unlock()
	return b.client.Close()
}
