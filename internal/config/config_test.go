package config

import (
	"os"
	"path/filepath"
	"testing"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("SESSION_TOKEN_SECRET", "test-secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Fatalf("unexpected addr %q", cfg.Server.Addr)
	}
	if cfg.Store.Backend != BackendMemory {
		t.Fatalf("unexpected backend %q", cfg.Store.Backend)
	}
	if cfg.RateLim.RequestsPerSecond != 20 || cfg.RateLim.Burst != 40 {
		t.Fatalf("unexpected rate limits %+v", cfg.RateLim)
	}
}

func TestLoadRequiresTokenSecret(t *testing.T) {
	t.Setenv("SESSION_TOKEN_SECRET", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected error without SESSION_TOKEN_SECRET")
	}
}

func TestDocstoreBackendNeedsCredentials(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("STORE_BACKEND", BackendDocstore)
	if _, err := Load(); err == nil {
		t.Fatal("expected error without docstore credentials")
	}

	t.Setenv("DOCSTORE_URL", "https://store.example.com")
	t.Setenv("DOCSTORE_SERVICE_KEY", "key")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Store.DocstoreURL != "https://store.example.com" {
		t.Fatalf("unexpected docstore url %q", cfg.Store.DocstoreURL)
	}
}

func TestUnknownBackendRejected(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("STORE_BACKEND", "cloud-magic")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestYAMLOverrides(t *testing.T) {
	setRequiredEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  addr: \":9999\"\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Addr != ":9999" {
		t.Fatalf("expected yaml override, got %q", cfg.Server.Addr)
	}
}

func TestOriginsSplitsAndTrims(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SERVER_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com ,")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	origins := cfg.Origins()
	if len(origins) != 2 || origins[0] != "https://a.example.com" || origins[1] != "https://b.example.com" {
		t.Fatalf("unexpected origins %v", origins)
	}
}
