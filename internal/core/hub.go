package core

import (
	"context"

	"github.com/vovakirdan/wireboard/internal/board"
)

// Hub fans inserted messages out to subscribed clients. All subscription
// state is owned by the Run goroutine.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	publish    chan *Event
	done       chan struct{}
	topics     map[string]*Topic
}

// NewHub creates a new hub. Call Run before registering clients.
func NewHub() *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		publish:    make(chan *Event, 64),
		done:       make(chan struct{}),
		topics:     make(map[string]*Topic),
	}
}

// Run processes registrations and broadcasts until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for name, topic := range h.topics {
				topic.closeAll()
				delete(h.topics, name)
			}
			return
		case c := <-h.register:
			topic, ok := h.topics[c.Topic]
			if !ok {
				topic = NewTopic(c.Topic)
				h.topics[c.Topic] = topic
			}
			if topic.AddClient(c) {
				c.Events <- &Event{Kind: EventSubscribed, Topic: c.Topic}
			}
		case c := <-h.unregister:
			topic, ok := h.topics[c.Topic]
			if !ok {
				continue
			}
			if topic.RemoveClient(c) {
				close(c.Events)
			}
			if topic.Empty() {
				delete(h.topics, c.Topic)
			}
		case ev := <-h.publish:
			if topic, ok := h.topics[ev.Topic]; ok {
				topic.Broadcast(ev)
			}
		}
	}
}

// RegisterClient subscribes c to its topic. The first event c receives is
// EventSubscribed.
// It reports false if the hub has stopped.
func (h *Hub) RegisterClient(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

// UnregisterClient removes c and closes its Events channel.
// A stopped hub has already closed every client's channel.
func (h *Hub) UnregisterClient(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Publish broadcasts each inserted message to the insert topic of table.
func (h *Hub) Publish(ctx context.Context, table string, msgs []board.Message) error {
	topic := TopicName(table, EventNameInsert)
	for _, msg := range msgs {
		select {
		case h.publish <- &Event{Kind: EventInsert, Topic: topic, Message: msg}:
		case <-h.done:
			return ErrHubStopped
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}
