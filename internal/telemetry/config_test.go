package telemetry

import (
	"encoding/json"
	"testing"

	"github.com/spf13/afero"
)

func TestStore_LoadNewConfig(t *testing.T) {
	store := NewStore(afero.NewMemMapFs(), "/home/u/.agentwriting")

	cfg, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Enabled || cfg.ConsentAsked {
		t.Errorf("new config = %+v, want disabled and not asked", cfg)
	}
	if len(cfg.AnonymousID) != 36 {
		t.Errorf("AnonymousID should be a UUID, got %q", cfg.AnonymousID)
	}
}

func TestStore_SaveAndReload(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := NewStore(fs, "/home/u/.agentwriting")

	cfg := &Config{AnonymousID: "anon-1"}
	cfg.Enable()
	if err := store.Save(cfg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	info, err := fs.Stat(store.Path())
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("permissions = %o, want 600", info.Mode().Perm())
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !loaded.IsEnabled() || !loaded.ConsentAsked || loaded.AnonymousID != "anon-1" {
		t.Errorf("reloaded config = %+v", loaded)
	}

	loaded.Disable()
	if loaded.IsEnabled() || !loaded.ConsentAsked {
		t.Errorf("Disable() left %+v", loaded)
	}
}

func TestStore_LoadFillsMissingID(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := NewStore(fs, "/cfg")
	data, _ := json.Marshal(map[string]any{"enabled": true, "consent_asked": true})
	if err := afero.WriteFile(fs, store.Path(), data, 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !cfg.Enabled || cfg.AnonymousID == "" {
		t.Errorf("cfg = %+v, want enabled with generated ID", cfg)
	}
}

func TestStore_LoadCorrupt(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := NewStore(fs, "/cfg")
	_ = afero.WriteFile(fs, store.Path(), []byte("{not json"), 0o600)

	if _, err := store.Load(); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestConfig_NilIsDisabled(t *testing.T) {
	var cfg *Config
	if cfg.IsEnabled() {
		t.Error("nil config must be disabled")
	}
}
