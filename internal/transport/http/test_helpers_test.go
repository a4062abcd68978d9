package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/vovakirdan/wireboard/internal/config"
	"github.com/vovakirdan/wireboard/internal/core"
	"github.com/vovakirdan/wireboard/internal/log"
	"github.com/vovakirdan/wireboard/internal/proto"
	"github.com/vovakirdan/wireboard/internal/store"
	"github.com/vovakirdan/wireboard/internal/store/sqlite"
)

// createTestStore creates an in-memory SQLite store with schema applied.
func createTestStore(t *testing.T) store.Store {
	t.Helper()

	st, err := sqlite.NewWithSetup(":memory:", sqlite.ApplySchema)
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	return st
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Addr = ":0"
	cfg.LogLevel = "error"
	cfg.ReadHeaderTimeout = time.Second
	return cfg
}

// startTestServer runs a hub and an httptest server with cfg.
func startTestServer(t *testing.T, cfg config.Config) *httptest.Server {
	t.Helper()

	hub := core.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	logger := log.New("error")
	server := NewServer(hub, hub, createTestStore(t), &cfg, logger)

	ts := httptest.NewServer(server.Handler)
	t.Cleanup(func() {
		ts.Close()
		cancel()
	})

	return ts
}

func postMessages(t *testing.T, ts *httptest.Server, table string, contents ...string) *http.Response {
	t.Helper()

	rows := make([]proto.NewMessage, 0, len(contents))
	for _, content := range contents {
		rows = append(rows, proto.NewMessage{Content: content})
	}
	body, err := json.Marshal(rows)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	resp, err := ts.Client().Post(ts.URL+"/api/"+table, "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeRecords(t *testing.T, resp *http.Response) []proto.MessageRecord {
	t.Helper()

	var records []proto.MessageRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		t.Fatalf("decode records: %v", err)
	}
	return records
}
