package core

// Client is a realtime subscriber as seen by the core layer.
type Client struct {
	ID     string
	Topic  string
	Events chan *Event
}

// NewClient constructs a client subscribed to topic.
func NewClient(id, topic string) *Client {
	return &Client{
		ID:     id,
		Topic:  topic,
		Events: make(chan *Event, 32),
	}
}
