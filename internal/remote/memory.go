package remote

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/vovakirdan/wireboard/internal/board"
)

// Memory is an in-process Service. It can be switched offline to simulate
// network failures.
type Memory struct {
	mu          sync.Mutex
	nextID      int64
	records     []board.Message
	offline     bool
	now         func() time.Time
	subscribers map[int]func(board.Message)
	nextSub     int
	inserts     int
}

// NewMemory returns an online service with no records; ids start at 1.
func NewMemory() *Memory {
	return &Memory{
		nextID:      1,
		now:         time.Now,
		subscribers: make(map[int]func(board.Message)),
	}
}

// SetOffline makes every call fail with ErrUnavailable while true.
func (m *Memory) SetOffline(offline bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.offline = offline
}

// SetNextID sets the server id assigned to the next inserted record.
func (m *Memory) SetNextID(id int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID = id
}

// SetClock replaces the clock used for created_at.
func (m *Memory) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

// InsertCalls returns how many Insert requests reached the service.
func (m *Memory) InsertCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.inserts
}

// SubscriberCount returns the number of open subscriptions.
func (m *Memory) SubscriberCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subscribers)
}

// Select returns stored records in the requested order.
func (m *Memory) Select(_ context.Context, order Order) ([]board.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.offline {
		return nil, fmt.Errorf("select: %w", ErrUnavailable)
	}

	out := slices.Clone(m.records)
	if order != OrderOldestFirst {
		slices.Reverse(out)
	}
	return out, nil
}

// Insert stores drafts and notifies subscribers after the call's own lock is
// released.
func (m *Memory) Insert(_ context.Context, drafts []board.Draft) ([]board.Message, error) {
	m.mu.Lock()
	m.inserts++
	if m.offline {
		m.mu.Unlock()
		return nil, fmt.Errorf("insert: %w", ErrUnavailable)
	}

	created := m.now()
	inserted := make([]board.Message, 0, len(drafts))
	for _, d := range drafts {
		msg := board.Message{
			ID:        board.Confirmed(m.nextID),
			Content:   d.Content,
			CreatedAt: created,
		}
		m.nextID++
		m.records = append(m.records, msg)
		inserted = append(inserted, msg)
	}

	handlers := make([]func(board.Message), 0, len(m.subscribers))
	for _, h := range m.subscribers {
		handlers = append(handlers, h)
	}
	m.mu.Unlock()

	for _, msg := range inserted {
		for _, h := range handlers {
			h(msg)
		}
	}

	return inserted, nil
}

// Subscribe registers handler for inserts. Events other than EventInsert are
// rejected.
func (m *Memory) Subscribe(ctx context.Context, event Event, handler func(board.Message)) (Subscription, error) {
	if event != EventInsert {
		return nil, fmt.Errorf("subscribe to %q: unsupported event", event)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.offline {
		return nil, fmt.Errorf("subscribe: %w", ErrUnavailable)
	}

	id := m.nextSub
	m.nextSub++
	m.subscribers[id] = handler

	sub := &memorySubscription{m: m, id: id, done: make(chan struct{})}
	go func() {
		select {
		case <-ctx.Done():
			_ = sub.Close()
		case <-sub.done:
		}
	}()
	return sub, nil
}

type memorySubscription struct {
	m    *Memory
	id   int
	once sync.Once
	done chan struct{}
}

func (s *memorySubscription) Close() error {
	s.once.Do(func() {
		s.m.mu.Lock()
		delete(s.m.subscribers, s.id)
		s.m.mu.Unlock()
		close(s.done)
	})
	return nil
}
