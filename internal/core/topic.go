package core

// Topic groups clients subscribed to the same table event.
type Topic struct {
	Name    string
	clients map[*Client]struct{}
}

// NewTopic constructs a topic with no clients.
func NewTopic(name string) *Topic {
	return &Topic{
		Name:    name,
		clients: make(map[*Client]struct{}),
	}
}

// AddClient inserts a client into the topic. Returns true if newly added.
func (t *Topic) AddClient(c *Client) bool {
	if _, exists := t.clients[c]; exists {
		return false
	}
	t.clients[c] = struct{}{}
	return true
}

// RemoveClient deletes a client from the topic. Returns true if removed.
func (t *Topic) RemoveClient(c *Client) bool {
	if _, exists := t.clients[c]; !exists {
		return false
	}
	delete(t.clients, c)
	return true
}

// Broadcast sends an event to all clients in the topic.
func (t *Topic) Broadcast(event *Event) {
	for client := range t.clients {
		select {
		case client.Events <- event:
		default:
			// Drop if slow consumer.
		}
	}
}

// Empty returns true if no clients are subscribed.
func (t *Topic) Empty() bool {
	return len(t.clients) == 0
}

func (t *Topic) closeAll() {
	for client := range t.clients {
		delete(t.clients, client)
		close(client.Events)
	}
}
