package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewManager_CreatesFileWithDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")

	m, err := NewManager(path)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected settings file to be created: %v", err)
	}

	s := m.Get()
	if s.Server.Port != 8790 {
		t.Errorf("expected default port 8790, got %d", s.Server.Port)
	}
	if s.Provider.CacheTTLMinutes != 30 {
		t.Errorf("expected default provider TTL 30, got %d", s.Provider.CacheTTLMinutes)
	}
	if s.Maintenance.BatchSize != 50 {
		t.Errorf("expected default batch size 50, got %d", s.Maintenance.BatchSize)
	}
}

func TestManager_UpdatePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")

	m, err := NewManager(path)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	if err := m.Update(func(s *Settings) { s.Server.Port = 9000 }); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	// A fresh manager reads the persisted value back.
	reloaded, err := NewManager(path)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if got := reloaded.Get().Server.Port; got != 9000 {
		t.Errorf("expected persisted port 9000, got %d", got)
	}
}

func TestNewManager_EnvSecretFallbacks(t *testing.T) {
	t.Setenv("TMDB_API_KEY", "env-tmdb-key")
	t.Setenv("MAINTENANCE_SECRET", "env-secret")

	m, err := NewManager(filepath.Join(t.TempDir(), "settings.json"))
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	s := m.Get()
	if s.Metadata.APIKey != "env-tmdb-key" {
		t.Errorf("expected api key from env, got %q", s.Metadata.APIKey)
	}
	if s.Maintenance.Secret != "env-secret" {
		t.Errorf("expected maintenance secret from env, got %q", s.Maintenance.Secret)
	}
}

func TestNewManager_EmptyPathRejected(t *testing.T) {
	if _, err := NewManager("  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}
