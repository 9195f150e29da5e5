package clientconfig

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFromPathMergesOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
keyring:
  persistence: true
  storePath: /tmp/envelopes.bin
  storePassphrase: hunter2
  unlockBurst: 9
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config failed: %v", err)
	}

	cfg := LoadFromPath(path)
	if cfg.Persistence == nil || !*cfg.Persistence {
		t.Fatal("persistence must be enabled from file")
	}
	if cfg.StorePath != "/tmp/envelopes.bin" || cfg.StorePassphrase != "hunter2" {
		t.Fatalf("unexpected store settings: %+v", cfg)
	}
	if cfg.UnlockBurst != 9 {
		t.Fatalf("unexpected burst: %d", cfg.UnlockBurst)
	}
	// Untouched fields keep defaults.
	if cfg.UnlockRPS != 1 || cfg.UnlockIdleTTL != 10*time.Minute {
		t.Fatalf("defaults lost in merge: %+v", cfg)
	}
}

func TestLoadFromPathMissingFileUsesDefaults(t *testing.T) {
	cfg := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	def := Default()
	if cfg.UnlockRPS != def.UnlockRPS || cfg.MetricsAddr != def.MetricsAddr {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("WM_PERSISTENCE", "true")
	t.Setenv("WM_STORE_PATH", "/var/lib/wm/envelopes.bin")

	cfg := Default()
	ApplyEnvOverrides(&cfg)
	if cfg.Persistence == nil || !*cfg.Persistence {
		t.Fatal("env must enable persistence")
	}
	if cfg.StorePath != "/var/lib/wm/envelopes.bin" {
		t.Fatalf("env store path not applied: %q", cfg.StorePath)
	}

	t.Setenv("WM_PERSISTENCE", "not-a-bool")
	cfg2 := Default()
	ApplyEnvOverrides(&cfg2)
	if cfg2.Persistence != nil {
		t.Fatal("malformed env bool must be ignored")
	}
}
