package http

import (
	"io"
	"net/http"
	"strings"
	"testing"
)

func TestHealthEndpoint(t *testing.T) {
	ts := startTestServer(t, testConfig())

	resp, err := ts.Client().Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
}

func TestInsertAndList(t *testing.T) {
	ts := startTestServer(t, testConfig())

	resp := postMessages(t, ts, "messages", "first", "second")
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	inserted := decodeRecords(t, resp)
	if len(inserted) != 2 || inserted[0].Content != "first" || inserted[1].Content != "second" {
		t.Fatalf("unexpected inserted records: %+v", inserted)
	}
	if inserted[0].ID == 0 || inserted[1].ID <= inserted[0].ID {
		t.Fatalf("expected increasing server ids, got %d and %d", inserted[0].ID, inserted[1].ID)
	}
	if inserted[0].CreatedAt.IsZero() {
		t.Fatal("expected created_at to be set")
	}

	list, err := ts.Client().Get(ts.URL + "/api/messages?order=created_at.desc")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	defer list.Body.Close()
	if list.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", list.StatusCode)
	}

	records := decodeRecords(t, list)
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	// Same created_at: ties are ordered by id, newest first.
	if records[0].Content != "second" || records[1].Content != "first" {
		t.Fatalf("unexpected order: %+v", records)
	}
}

func TestListEmptyReturnsArray(t *testing.T) {
	ts := startTestServer(t, testConfig())

	resp, err := ts.Client().Get(ts.URL + "/api/messages")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	defer resp.Body.Close()

	records := decodeRecords(t, resp)
	if records == nil || len(records) != 0 {
		t.Fatalf("expected empty array, got %+v", records)
	}
}

func TestListRejectsBadRequests(t *testing.T) {
	ts := startTestServer(t, testConfig())

	tests := []struct {
		path string
		want int
	}{
		{"/api/users", http.StatusNotFound},
		{"/api/messages?order=content.asc", http.StatusBadRequest},
	}

	for _, tt := range tests {
		resp, err := ts.Client().Get(ts.URL + tt.path)
		if err != nil {
			t.Fatalf("%s: %v", tt.path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != tt.want {
			t.Errorf("%s: expected %d, got %d", tt.path, tt.want, resp.StatusCode)
		}
	}
}

func TestInsertValidation(t *testing.T) {
	cfg := testConfig()
	cfg.MaxContentLength = 5
	cfg.MaxBatchSize = 2
	ts := startTestServer(t, cfg)

	tests := []struct {
		name     string
		table    string
		contents []string
		want     int
	}{
		{"empty batch", "messages", nil, http.StatusBadRequest},
		{"blank content", "messages", []string{"ok", "   "}, http.StatusBadRequest},
		{"too long", "messages", []string{strings.Repeat("x", 6)}, http.StatusBadRequest},
		{"batch too large", "messages", []string{"a", "b", "c"}, http.StatusBadRequest},
		{"unknown table", "users", []string{"a"}, http.StatusNotFound},
		{"max length ok", "messages", []string{strings.Repeat("é", 5)}, http.StatusCreated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postMessages(t, ts, tt.table, tt.contents...)
			if resp.StatusCode != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, resp.StatusCode)
			}
		})
	}
}

func TestInsertRejectsMalformedBody(t *testing.T) {
	ts := startTestServer(t, testConfig())

	resp, err := ts.Client().Post(ts.URL+"/api/messages", "application/json", strings.NewReader(`{"content":"x"}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestInsertRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.InsertRateLimit = 2
	ts := startTestServer(t, cfg)

	for i := 0; i < 2; i++ {
		if resp := postMessages(t, ts, "messages", "hi"); resp.StatusCode != http.StatusCreated {
			t.Fatalf("request %d: expected 201, got %d", i, resp.StatusCode)
		}
	}
	if resp := postMessages(t, ts, "messages", "hi"); resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", resp.StatusCode)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	ts := startTestServer(t, testConfig())

	if resp := postMessages(t, ts, "messages", "counted"); resp.StatusCode != http.StatusCreated {
		t.Fatalf("insert: unexpected status %d", resp.StatusCode)
	}

	resp, err := ts.Client().Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read metrics: %v", err)
	}
	for _, name := range []string{"wireboard_messages_inserted_total", "wireboard_http_requests_total"} {
		if !strings.Contains(string(body), name) {
			t.Errorf("expected %s in metrics output", name)
		}
	}
}
