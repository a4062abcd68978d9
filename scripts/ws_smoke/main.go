package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/vovakirdan/wireboard/internal/proto"
)

func main() {
	if err := run(); err != nil {
		log.Printf("ws_smoke: %v", err)
		os.Exit(1)
	}
}

// run subscribes to inserts, posts one message over REST and waits until the
// stream echoes it back.
func run() error {
	base := flag.String("base", "http://localhost:8080", "server base URL")
	table := flag.String("table", proto.DefaultTable, "table name")
	apiKey := flag.String("apikey", "", "project API key")
	text := flag.String("text", "hello from smoke test", "message content to insert")
	timeout := flag.Duration("timeout", 5*time.Second, "total timeout for the run")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	wsURL := strings.Replace(strings.TrimRight(*base, "/"), "http", "ws", 1) +
		fmt.Sprintf("/ws?table=%s&event=%s", *table, proto.EventInsert)
	header := http.Header{}
	if *apiKey != "" {
		header.Set("Authorization", "Bearer "+*apiKey)
	}

	conn, _, err := websocket.Dial(ctx, wsURL, &websocket.DialOptions{HTTPHeader: header})
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	var ack proto.InboundEvent
	if err := wsjson.Read(ctx, conn, &ack); err != nil {
		return fmt.Errorf("read ack: %w", err)
	}
	if ack.Type == proto.OutboundTypeError && ack.Error != nil {
		return fmt.Errorf("subscription rejected: %s", ack.Error.Msg)
	}
	log.Printf("subscribed (protocol %d)", ack.Protocol)

	inserted, err := insert(ctx, *base, *table, *apiKey, *text)
	if err != nil {
		return err
	}
	log.Printf("inserted id=%d", inserted.ID)

	for {
		var outbound proto.InboundEvent
		if err := wsjson.Read(ctx, conn, &outbound); err != nil {
			return fmt.Errorf("read: %w", err)
		}
		if outbound.Type != proto.OutboundTypeEvent || outbound.Event != proto.EventInsert {
			continue
		}

		var record proto.MessageRecord
		if err := json.Unmarshal(outbound.Data, &record); err != nil {
			return fmt.Errorf("unmarshal record: %w", err)
		}
		log.Printf("event id=%d content=%q", record.ID, record.Content)
		if record.ID == inserted.ID {
			log.Printf("smoke test passed")
			return nil
		}
	}
}

func insert(ctx context.Context, base, table, apiKey, text string) (proto.MessageRecord, error) {
	body, err := json.Marshal([]proto.NewMessage{{Content: text}})
	if err != nil {
		return proto.MessageRecord{}, fmt.Errorf("marshal insert: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(base, "/")+"/api/"+table, bytes.NewReader(body))
	if err != nil {
		return proto.MessageRecord{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return proto.MessageRecord{}, fmt.Errorf("insert: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return proto.MessageRecord{}, fmt.Errorf("insert: unexpected status %d", resp.StatusCode)
	}

	var records []proto.MessageRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return proto.MessageRecord{}, fmt.Errorf("decode insert response: %w", err)
	}
	if len(records) != 1 {
		return proto.MessageRecord{}, fmt.Errorf("insert: expected 1 record, got %d", len(records))
	}
	return records[0], nil
}
