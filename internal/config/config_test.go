package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadWritesDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg, resolved, err := Load(nil, path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if resolved != path {
		t.Fatalf("expected path %s, got %s", path, resolved)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("default config not written: %v", err)
	}
	if cfg.MaxContentLength != 2000 || cfg.Table != "messages" || cfg.ShutdownTimeout != 5*time.Second {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadReadsFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "addr: \":9090\"\nmax_batch_size: 10\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("WIREBOARD_MAX_BATCH_SIZE", "25")

	cfg, _, err := Load(nil, path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":9090" {
		t.Fatalf("expected addr from file, got %q", cfg.Addr)
	}
	if cfg.MaxBatchSize != 25 {
		t.Fatalf("expected env override 25, got %d", cfg.MaxBatchSize)
	}
	if cfg.MaxContentLength != 2000 {
		t.Fatalf("expected default max content length, got %d", cfg.MaxContentLength)
	}
}

func TestLoadClient(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.yaml")
	content := "server_url: http://board.example:8080\nqueue_backend: memory\nflush_timeout: 3s\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, err := LoadClient(nil, path)
	if err != nil {
		t.Fatalf("load client: %v", err)
	}
	if cfg.ServerURL != "http://board.example:8080" || cfg.QueueBackend != QueueBackendMemory {
		t.Fatalf("unexpected client config: %+v", cfg)
	}
	if cfg.FlushTimeout != 3*time.Second {
		t.Fatalf("expected flush timeout 3s, got %v", cfg.FlushTimeout)
	}
	if cfg.QueueKey != "pending_messages" {
		t.Fatalf("expected default queue key, got %q", cfg.QueueKey)
	}
}

func TestLoadClientRejectsUnknownBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.yaml")
	if err := os.WriteFile(path, []byte("queue_backend: etcd\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, err := LoadClient(nil, path); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestUpdateFrom(t *testing.T) {
	cfg := Default()
	cfg.UpdateFrom(Config{Addr: ":7000", APIKeySecret: "s"})
	if cfg.Addr != ":7000" || cfg.APIKeySecret != "s" || cfg.MaxBatchSize != 100 {
		t.Fatalf("unexpected merge result: %+v", cfg)
	}
}
