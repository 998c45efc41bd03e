package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/chhz0/tasklist/retry"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	return dir
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	dir := isolate(t)

	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Backend != "bolt" {
		t.Errorf("backend = %q, want bolt", cfg.Backend)
	}
	if cfg.Key != "tasks" {
		t.Errorf("key = %q, want tasks", cfg.Key)
	}
	if !cfg.RequireDescription {
		t.Error("description should be required by default")
	}
	wantData := filepath.Join(dir, "data", AppName)
	if cfg.DataDir != wantData {
		t.Errorf("data dir = %q, want %q", cfg.DataDir, wantData)
	}
	if cfg.Bolt.Path != filepath.Join(wantData, "tasks.db") {
		t.Errorf("bolt path = %q", cfg.Bolt.Path)
	}
	if cfg.Persistence.Timeout != 2*time.Second {
		t.Errorf("timeout = %v, want 2s", cfg.Persistence.Timeout)
	}
	if cfg.Persistence.Retry.InitialDelay != 100*time.Millisecond {
		t.Errorf("initial delay = %v, want 100ms", cfg.Persistence.Retry.InitialDelay)
	}
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.yaml")
	content := `backend: sqlite
key: my-tasks
require_description: false
sqlite:
  path: /tmp/custom.sqlite
persistence:
  timeout: 500ms
  retry:
    retries: 0
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("TASKLIST_KEY", "env-tasks")
	t.Setenv("TASKLIST_REDIS_ADDR", "redis:6380")

	cfg, err := Load(path, nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Backend != "sqlite" || cfg.SQLite.Path != "/tmp/custom.sqlite" {
		t.Errorf("backend = %q sqlite = %q", cfg.Backend, cfg.SQLite.Path)
	}
	if cfg.Key != "env-tasks" {
		t.Errorf("key = %q, want env override", cfg.Key)
	}
	if cfg.Redis.Addr != "redis:6380" {
		t.Errorf("redis addr = %q, want env override", cfg.Redis.Addr)
	}
	if cfg.RequireDescription {
		t.Error("require_description should be false")
	}
	if cfg.Persistence.Timeout != 500*time.Millisecond {
		t.Errorf("timeout = %v", cfg.Persistence.Timeout)
	}
	if _, ok := cfg.RetryPolicy().(retry.Never); !ok {
		t.Errorf("retry policy = %T, want retry.Never", cfg.RetryPolicy())
	}
	sc := cfg.Storage()
	if sc.Backend != "sqlite" || sc.SQLitePath != "/tmp/custom.sqlite" || sc.Redis.Addr != "redis:6380" {
		t.Errorf("storage config = %+v", sc)
	}
}

func TestLoadOverridesWin(t *testing.T) {
	dir := isolate(t)
	t.Setenv("TASKLIST_BACKEND", "redis")
	cfg, err := Load("", map[string]any{"backend": "Memory", "data_dir": filepath.Join(dir, "d")})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Backend != "memory" {
		t.Errorf("backend = %q, want memory", cfg.Backend)
	}
	if cfg.Log.File != filepath.Join(dir, "d", "tasklist.log") {
		t.Errorf("log file = %q", cfg.Log.File)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	isolate(t)
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestWriteDefaultRoundTrip(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "nested", ConfigFile)
	if err := WriteDefault(path); err != nil {
		t.Fatalf("write default: %v", err)
	}
	if err := WriteDefault(path); !errors.Is(err, fs.ErrExist) {
		t.Fatalf("second write err = %v, want fs.ErrExist", err)
	}

	cfg, err := Load(path, nil)
	if err != nil {
		t.Fatalf("load written default: %v", err)
	}
	def, err := Load("", nil)
	if err != nil {
		t.Fatalf("load defaults: %v", err)
	}
	if cfg.Backend != def.Backend || cfg.Key != def.Key || cfg.Persistence != def.Persistence {
		t.Fatalf("written config = %+v, want defaults %+v", cfg, def)
	}
	if _, ok := cfg.RetryPolicy().(*retry.ExponentialBackoff); !ok {
		t.Fatalf("retry policy = %T", cfg.RetryPolicy())
	}
}

func TestRetriesCountExcludesFirstCall(t *testing.T) {
	isolate(t)
	cfg, err := Load("", map[string]any{"persistence.retry.retries": 3})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	p, ok := cfg.RetryPolicy().(*retry.ExponentialBackoff)
	if !ok {
		t.Fatalf("retry policy = %T", cfg.RetryPolicy())
	}
	if p.MaxRetries != 3 {
		t.Fatalf("max retries = %d, want 3", p.MaxRetries)
	}
	for attempt := 0; attempt < 3; attempt++ {
		if _, again := p.NextRetry(attempt); !again {
			t.Fatalf("retry %d refused", attempt+1)
		}
	}
	if _, again := p.NextRetry(3); again {
		t.Fatal("fourth retry allowed")
	}
}
