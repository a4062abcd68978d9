package board

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestIDDecodeRejectsAmbiguous(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    ID
		wantErr bool
	}{
		{name: "server", input: `{"server":42}`, want: Confirmed(42)},
		{name: "local", input: `{"local":"01HZX"}`, want: Pending("01HZX")},
		{name: "both", input: `{"server":1,"local":"x"}`, wantErr: true},
		{name: "neither", input: `{}`, wantErr: true},
		{name: "empty local", input: `{"local":""}`, wantErr: true},
		{name: "not an object", input: `"tmp-1"`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var id ID
			err := json.Unmarshal([]byte(tt.input), &id)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got id %v", id)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if id != tt.want {
				t.Errorf("expected %v, got %v", tt.want, id)
			}
		})
	}
}

func TestZeroIDDoesNotMarshal(t *testing.T) {
	if _, err := json.Marshal(Message{Content: "x"}); err == nil {
		t.Fatal("expected error marshalling message without id")
	}
}

func TestValidateContent(t *testing.T) {
	tests := []struct {
		content string
		maxLen  int
		want    error
	}{
		{"", 0, ErrEmptyContent},
		{"   ", 0, ErrEmptyContent},
		{"\t\n", 10, ErrEmptyContent},
		{"hello", 0, nil},
		{"hello", 5, nil},
		{"hello!", 5, ErrContentTooLong},
		{"привет", 6, nil},
	}

	for _, tt := range tests {
		if err := ValidateContent(tt.content, tt.maxLen); !errors.Is(err, tt.want) {
			t.Errorf("ValidateContent(%q, %d) = %v, want %v", tt.content, tt.maxLen, err, tt.want)
		}
	}
}

func TestInsertSortedNewestFirst(t *testing.T) {
	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	var list []Message
	list = InsertSorted(list, Message{ID: Confirmed(1), CreatedAt: base})
	list = InsertSorted(list, Message{ID: Confirmed(3), CreatedAt: base.Add(2 * time.Second)})
	list = InsertSorted(list, Message{ID: Confirmed(2), CreatedAt: base.Add(time.Second)})
	// Same timestamp as id 3: the later insertion goes first.
	list = InsertSorted(list, Message{ID: Pending("a"), CreatedAt: base.Add(2 * time.Second)})

	want := []ID{Pending("a"), Confirmed(3), Confirmed(2), Confirmed(1)}
	if len(list) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(list))
	}
	for i := range want {
		if list[i].ID != want[i] {
			t.Errorf("index %d: expected %v, got %v", i, want[i], list[i].ID)
		}
	}

	if idx := IndexOfServerID(list, 2); idx != 2 {
		t.Errorf("expected server id 2 at index 2, got %d", idx)
	}
	if idx := IndexOfServerID(list, 99); idx != -1 {
		t.Errorf("expected -1 for unknown id, got %d", idx)
	}
}
