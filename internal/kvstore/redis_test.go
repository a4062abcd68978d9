package kvstore

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
)

func newTestRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	s, err := NewRedis(context.Background(), "redis://"+mr.Addr(), "board")
	if err != nil {
		t.Fatalf("new redis store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s, mr
}

func TestRedisStoreMissIsNotFound(t *testing.T) {
	s, _ := newTestRedis(t)

	if _, err := s.Get(context.Background(), "pending_messages"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRedisStoreSetGet(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestRedis(t)

	if err := s.Set(ctx, "pending_messages", []byte(`[{"content":"hi"}]`)); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, err := s.Get(ctx, "pending_messages")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != `[{"content":"hi"}]` {
		t.Fatalf("unexpected value %s", got)
	}

	raw, err := mr.Get("board:pending_messages")
	if err != nil {
		t.Fatalf("expected prefixed key in redis: %v", err)
	}
	if raw != string(got) {
		t.Fatalf("expected %s under prefixed key, got %s", got, raw)
	}
	if mr.TTL("board:pending_messages") != 0 {
		t.Fatal("expected no expiry on stored queue")
	}
}

func TestNewRedisRejectsBadURL(t *testing.T) {
	if _, err := NewRedis(context.Background(), "://nope", "board"); err == nil {
		t.Fatal("expected error for malformed url")
	}
}
