package http

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/vovakirdan/wireboard/internal/proto"
)

func TestWebSocketPushesInserts(t *testing.T) {
	ts := startTestServer(t, testConfig())

	wsURL := strings.Replace(ts.URL, "http", "ws", 1) + "/ws?table=messages&event=insert"

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "done")

	var ack proto.InboundEvent
	if err := wsjson.Read(ctx, conn, &ack); err != nil {
		t.Fatalf("read ack: %v", err)
	}
	if ack.Type != proto.OutboundTypeEvent || ack.Event != proto.EventSubscribed || ack.Protocol != proto.ProtocolVersion {
		t.Fatalf("unexpected ack: %+v", ack)
	}

	if resp := postMessages(t, ts, "messages", "hello"); resp.StatusCode != 201 {
		t.Fatalf("insert: unexpected status %d", resp.StatusCode)
	}

	var outbound proto.InboundEvent
	if err := wsjson.Read(ctx, conn, &outbound); err != nil {
		t.Fatalf("read outbound: %v", err)
	}
	if outbound.Type != proto.OutboundTypeEvent || outbound.Event != proto.EventInsert {
		t.Fatalf("unexpected outbound: %+v", outbound)
	}

	var record proto.MessageRecord
	if err := json.Unmarshal(outbound.Data, &record); err != nil {
		t.Fatalf("unmarshal record: %v", err)
	}
	if record.ID == 0 || record.Content != "hello" {
		t.Fatalf("unexpected record: %+v", record)
	}
}

func TestWebSocketRejectsUnknownTopic(t *testing.T) {
	ts := startTestServer(t, testConfig())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for _, query := range []string{"table=users&event=insert", "table=messages&event=delete"} {
		wsURL := strings.Replace(ts.URL, "http", "ws", 1) + "/ws?" + query

		conn, _, err := websocket.Dial(ctx, wsURL, nil)
		if err != nil {
			t.Fatalf("%s: dial: %v", query, err)
		}

		var outbound proto.InboundEvent
		if err := wsjson.Read(ctx, conn, &outbound); err != nil {
			t.Fatalf("%s: read: %v", query, err)
		}
		if outbound.Type != proto.OutboundTypeError || outbound.Error == nil {
			t.Fatalf("%s: expected error, got %+v", query, outbound)
		}
		conn.Close(websocket.StatusNormalClosure, "done")
	}
}
