package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/wireboard/internal/board"
	"github.com/vovakirdan/wireboard/internal/proto"
)

// StatusError is returned for responses the server rejected.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// ClientOptions configures Client.
type ClientOptions struct {
	BaseURL    string
	Table      string
	APIKey     string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client implements Service against a wireboard server.
type Client struct {
	base   *url.URL
	table  string
	apiKey string
	http   *http.Client
	log    *zerolog.Logger
}

// NewClient builds a client for the server at opts.BaseURL.
func NewClient(opts ClientOptions, logger *zerolog.Logger) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("unsupported base url scheme %q", base.Scheme)
	}

	table := opts.Table
	if table == "" {
		table = proto.DefaultTable
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	return &Client{
		base:   base,
		table:  table,
		apiKey: opts.APIKey,
		http:   httpClient,
		log:    logger,
	}, nil
}

// Select lists all messages of the table.
func (c *Client) Select(ctx context.Context, order Order) ([]board.Message, error) {
	u := c.base.JoinPath("api", c.table)
	q := u.Query()
	q.Set("order", string(order))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build select request: %w", err)
	}

	var records []proto.MessageRecord
	if err := c.do(req, http.StatusOK, &records); err != nil {
		return nil, fmt.Errorf("select %s: %w", c.table, err)
	}

	return toMessages(records), nil
}

// Insert stores drafts in one POST.
func (c *Client) Insert(ctx context.Context, drafts []board.Draft) ([]board.Message, error) {
	rows := make([]proto.NewMessage, 0, len(drafts))
	for _, d := range drafts {
		rows = append(rows, proto.NewMessage{Content: d.Content})
	}
	body, err := json.Marshal(rows)
	if err != nil {
		return nil, fmt.Errorf("marshal insert: %w", err)
	}

	u := c.base.JoinPath("api", c.table)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build insert request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var records []proto.MessageRecord
	if err := c.do(req, http.StatusCreated, &records); err != nil {
		return nil, fmt.Errorf("insert into %s: %w", c.table, err)
	}

	return toMessages(records), nil
}

func (c *Client) do(req *http.Request, wantStatus int, out any) error {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Join(ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		return statusError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func statusError(resp *http.Response) error {
	var body struct {
		Error string `json:"error"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err := json.Unmarshal(raw, &body); err != nil || body.Error == "" {
		body.Error = strings.TrimSpace(string(raw))
	}

	statusErr := &StatusError{StatusCode: resp.StatusCode, Message: body.Error}
	if resp.StatusCode >= http.StatusInternalServerError {
		return errors.Join(ErrUnavailable, statusErr)
	}
	return statusErr
}

// Subscribe opens the realtime socket and returns once the server confirmed
// the subscription.
func (c *Client) Subscribe(ctx context.Context, event Event, handler func(board.Message)) (Subscription, error) {
	u := *c.base
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws"
	q := u.Query()
	q.Set("table", c.table)
	q.Set("event", string(event))
	u.RawQuery = q.Encode()

	header := http.Header{}
	if c.apiKey != "" {
		header.Set("Authorization", "Bearer "+c.apiKey)
	}

	subCtx, cancel := context.WithCancel(ctx)
	conn, _, err := websocket.Dial(subCtx, u.String(), &websocket.DialOptions{
		HTTPHeader: header,
	})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("dial realtime: %w", errors.Join(ErrUnavailable, err))
	}

	var ack proto.InboundEvent
	if err := wsjson.Read(subCtx, conn, &ack); err != nil {
		cancel()
		conn.Close(websocket.StatusProtocolError, "no subscription ack")
		return nil, fmt.Errorf("read subscription ack: %w", err)
	}
	if ack.Type == proto.OutboundTypeError && ack.Error != nil {
		cancel()
		conn.Close(websocket.StatusNormalClosure, "rejected")
		return nil, fmt.Errorf("subscribe %s/%s: %s", c.table, event, ack.Error.Msg)
	}

	sub := &wsSubscription{conn: conn, cancel: cancel, done: make(chan struct{})}
	go c.readLoop(subCtx, sub, event, handler)

	c.log.Debug().Str("table", c.table).Str("event", string(event)).Msg("realtime subscribed")
	return sub, nil
}

func (c *Client) readLoop(ctx context.Context, sub *wsSubscription, event Event, handler func(board.Message)) {
	defer close(sub.done)

	for {
		var inbound proto.InboundEvent
		if err := wsjson.Read(ctx, sub.conn, &inbound); err != nil {
			if ctx.Err() == nil && websocket.CloseStatus(err) != websocket.StatusNormalClosure {
				c.log.Warn().Err(err).Msg("realtime stream ended")
			}
			return
		}

		switch {
		case inbound.Type == proto.OutboundTypeError && inbound.Error != nil:
			c.log.Warn().Str("code", inbound.Error.Code).Msg(inbound.Error.Msg)
		case inbound.Type == proto.OutboundTypeEvent && inbound.Event == string(event):
			var record proto.MessageRecord
			if err := json.Unmarshal(inbound.Data, &record); err != nil {
				c.log.Warn().Err(err).Msg("decode realtime record")
				continue
			}
			handler(FromRecord(record))
		}
	}
}

type wsSubscription struct {
	conn   *websocket.Conn
	cancel context.CancelFunc
	once   sync.Once
	done   chan struct{}
}

func (s *wsSubscription) Close() error {
	s.once.Do(func() {
		// The close handshake may race the server going away; the stream is
		// gone either way.
		_ = s.conn.Close(websocket.StatusNormalClosure, "unsubscribe")
		s.cancel()
		<-s.done
	})
	return nil
}

func toMessages(records []proto.MessageRecord) []board.Message {
	out := make([]board.Message, 0, len(records))
	for _, r := range records {
		out = append(out, FromRecord(r))
	}
	return out
}
