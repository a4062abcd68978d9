// Package syncer reconciles the client's optimistic message list and durable
// pending queue against the Remote Message Service.
package syncer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/vovakirdan/wireboard/internal/board"
	"github.com/vovakirdan/wireboard/internal/kvstore"
	"github.com/vovakirdan/wireboard/internal/remote"
	"github.com/vovakirdan/wireboard/internal/utils"
)

const (
	// DefaultQueueKey is the key the pending queue is persisted under.
	DefaultQueueKey = "pending_messages"

	flushKey = "flush"
)

var (
	// ErrNotHydrated is returned by Submit before Hydrate ran.
	ErrNotHydrated = errors.New("pending queue not hydrated")
)

// Config tunes the engine.
type Config struct {
	// QueueKey is the Durable Queue Store key. Empty means DefaultQueueKey.
	QueueKey string
	// FlushTimeout bounds flushes started by Run. Zero means no bound.
	FlushTimeout time.Duration
}

// Engine owns the Displayed List and the Pending Queue.
//
// The Displayed List is newest first and never holds two entries with the
// same server id. The Pending Queue is in submission order, holds only
// pending entries, and is persisted after every change.
type Engine struct {
	remote   remote.Service
	queue    kvstore.Store
	queueKey string
	timeout  time.Duration
	log      *zerolog.Logger

	now   func() time.Time
	newID func() string

	mu        sync.Mutex
	hydrated  bool
	displayed []board.Message
	pending   []board.Message

	flights singleflight.Group
	trigger chan struct{}
	updates chan struct{}
}

// New constructs an engine. Call Hydrate before Submit.
func New(cfg Config, svc remote.Service, queue kvstore.Store, logger *zerolog.Logger) *Engine {
	key := cfg.QueueKey
	if key == "" {
		key = DefaultQueueKey
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	return &Engine{
		remote:   svc,
		queue:    queue,
		queueKey: key,
		timeout:  cfg.FlushTimeout,
		log:      logger,
		now:      time.Now,
		newID:    utils.NewLocalID,
		trigger:  make(chan struct{}, 1),
		updates:  make(chan struct{}, 1),
	}
}

// Hydrate loads the persisted pending queue. A missing, unreadable or
// malformed value yields an empty queue; the failure is only logged.
// Subsequent calls do nothing.
func (e *Engine) Hydrate(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.hydrated {
		return
	}
	e.hydrated = true

	raw, err := e.queue.Get(ctx, e.queueKey)
	if err != nil {
		if !errors.Is(err, kvstore.ErrNotFound) {
			e.log.Warn().Err(err).Str("key", e.queueKey).Msg("failed to read pending queue, starting empty")
		}
		return
	}

	var stored []board.Message
	if err := json.Unmarshal(raw, &stored); err != nil {
		e.log.Warn().Err(err).Str("key", e.queueKey).Msg("malformed pending queue, starting empty")
		return
	}

	for _, msg := range stored {
		if !msg.ID.IsPending() {
			e.log.Warn().Str("id", msg.ID.String()).Msg("dropping non-pending entry from persisted queue")
			continue
		}
		e.pending = append(e.pending, msg)
		e.displayed = board.InsertSorted(e.displayed, msg)
	}

	e.log.Info().Int("pending", len(e.pending)).Msg("pending queue hydrated")
	if len(e.pending) > 0 {
		e.notifyLocked()
		e.kick()
	}
}

// Submit queues text as an optimistic message. It makes no network call; a
// flush is signalled to Run.
func (e *Engine) Submit(ctx context.Context, text string) (board.Message, error) {
	if err := board.ValidateContent(text, 0); err != nil {
		return board.Message{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.hydrated {
		return board.Message{}, ErrNotHydrated
	}

	msg := board.Message{
		ID:        board.Pending(e.newID()),
		Content:   text,
		CreatedAt: e.now(),
	}

	e.displayed = board.InsertSorted(e.displayed, msg)
	e.pending = append(e.pending, msg)
	e.persistLocked(ctx)
	e.notifyLocked()
	e.kick()

	return msg, nil
}

// Flush sends the whole pending queue in one bulk insert and returns how many
// records the server confirmed. Concurrent calls share one request. On
// failure nothing changes, locally or in the Durable Queue Store.
func (e *Engine) Flush(ctx context.Context) (int, error) {
	v, err, _ := e.flights.Do(flushKey, func() (any, error) {
		return e.flush(ctx)
	})
	if err != nil {
		return 0, err
	}
	return v.(int), nil
}

func (e *Engine) flush(ctx context.Context) (int, error) {
	e.mu.Lock()
	snapshot := slices.Clone(e.pending)
	e.mu.Unlock()

	if len(snapshot) == 0 {
		return 0, nil
	}

	drafts := make([]board.Draft, 0, len(snapshot))
	for _, msg := range snapshot {
		drafts = append(drafts, msg.Draft())
	}

	confirmed, err := e.remote.Insert(ctx, drafts)
	if err != nil {
		e.log.Warn().Err(err).Int("pending", len(snapshot)).Msg("flush failed, keeping pending queue")
		return 0, fmt.Errorf("flush pending queue: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	sent := make(map[string]struct{}, len(snapshot))
	for _, msg := range snapshot {
		id, _ := msg.ID.LocalID()
		sent[id] = struct{}{}
	}
	wasSent := func(msg board.Message) bool {
		id, ok := msg.ID.LocalID()
		if !ok {
			return false
		}
		_, found := sent[id]
		return found
	}

	e.pending = slices.DeleteFunc(e.pending, wasSent)
	e.displayed = slices.DeleteFunc(e.displayed, wasSent)
	for _, msg := range confirmed {
		e.mergeLocked(msg)
	}

	// The insert is done; a flush deadline expiring now must not leave the
	// sent messages in the stored queue.
	e.persistLocked(context.WithoutCancel(ctx))
	e.notifyLocked()

	e.log.Info().Int("confirmed", len(confirmed)).Int("still_pending", len(e.pending)).Msg("pending queue flushed")
	if len(e.pending) > 0 {
		// Submitted while the insert was in flight.
		e.kick()
	}

	return len(confirmed), nil
}

// Refresh merges the server's list into the Displayed List. Confirmed
// entries merged while the request was in flight are kept. On failure the
// list keeps what it had and the error is logged and returned.
func (e *Engine) Refresh(ctx context.Context) error {
	records, err := e.remote.Select(ctx, remote.OrderNewestFirst)
	if err != nil {
		e.log.Warn().Err(err).Msg("fetch messages failed")
		return fmt.Errorf("fetch messages: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	displayed := make([]board.Message, 0, len(records)+len(e.pending))
	for _, msg := range records {
		if id, ok := msg.ID.ServerID(); !ok || board.IndexOfServerID(displayed, id) >= 0 {
			continue
		}
		displayed = append(displayed, msg)
	}
	slices.SortStableFunc(displayed, func(a, b board.Message) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	// A flush or remote insert may have landed after the snapshot was taken.
	for _, msg := range e.displayed {
		if id, ok := msg.ID.ServerID(); !ok || board.IndexOfServerID(displayed, id) >= 0 {
			continue
		}
		displayed = board.InsertSorted(displayed, msg)
	}
	for _, msg := range e.pending {
		displayed = board.InsertSorted(displayed, msg)
	}

	e.displayed = displayed
	e.notifyLocked()

	e.log.Debug().Int("messages", len(records)).Msg("messages fetched")
	return nil
}

// OnRemoteInsert merges a record inserted by any client. It reports whether
// the Displayed List changed; a server id already present is ignored.
func (e *Engine) OnRemoteInsert(msg board.Message) bool {
	if !msg.ID.IsConfirmed() {
		e.log.Debug().Str("id", msg.ID.String()).Msg("ignoring unconfirmed remote insert")
		return false
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.mergeLocked(msg) {
		return false
	}
	e.notifyLocked()
	return true
}

// Run subscribes to remote inserts and performs signalled flushes until ctx
// is done, then closes the subscription. A failed subscription is logged and
// Run keeps flushing.
func (e *Engine) Run(ctx context.Context) error {
	sub, err := e.remote.Subscribe(ctx, remote.EventInsert, func(msg board.Message) {
		e.OnRemoteInsert(msg)
	})
	if err != nil {
		e.log.Warn().Err(err).Msg("realtime subscription unavailable")
	} else {
		defer func() {
			if err := sub.Close(); err != nil {
				e.log.Warn().Err(err).Msg("failed to close realtime subscription")
			}
		}()
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-e.trigger:
			flushCtx, cancel := ctx, context.CancelFunc(func() {})
			if e.timeout > 0 {
				flushCtx, cancel = context.WithTimeout(ctx, e.timeout)
			}
			// Failures are logged inside flush and retried on the next signal.
			_, _ = e.Flush(flushCtx)
			cancel()
		}
	}
}

// Messages returns a copy of the Displayed List, newest first.
func (e *Engine) Messages() []board.Message {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.displayed)
}

// Pending returns a copy of the Pending Queue in submission order.
func (e *Engine) Pending() []board.Message {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.pending)
}

// Updates delivers a signal after the Displayed List changed. Signals
// coalesce; read Messages after each one.
func (e *Engine) Updates() <-chan struct{} {
	return e.updates
}

// mergeLocked inserts a confirmed record unless its server id is present.
func (e *Engine) mergeLocked(msg board.Message) bool {
	id, ok := msg.ID.ServerID()
	if !ok || board.IndexOfServerID(e.displayed, id) >= 0 {
		return false
	}
	e.displayed = board.InsertSorted(e.displayed, msg)
	return true
}

func (e *Engine) persistLocked(ctx context.Context) {
	queue := e.pending
	if queue == nil {
		queue = []board.Message{}
	}

	data, err := json.Marshal(queue)
	if err != nil {
		e.log.Error().Err(err).Msg("failed to encode pending queue")
		return
	}
	if err := e.queue.Set(ctx, e.queueKey, data); err != nil {
		e.log.Warn().Err(err).Str("key", e.queueKey).Msg("failed to persist pending queue")
	}
}

func (e *Engine) notifyLocked() {
	select {
	case e.updates <- struct{}{}:
	default:
	}
}

func (e *Engine) kick() {
	select {
	case e.trigger <- struct{}{}:
	default:
	}
}
