package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"todowork/internal/config"
)

func writeSettings(t *testing.T, dir, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, config.SettingsFile), []byte(body), 0600); err != nil {
		t.Fatalf("failed to write settings: %v", err)
	}
}

func TestNew_DefaultsWithoutSettingsFile(t *testing.T) {
	dir := t.TempDir()

	cfg, err := config.New(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Dir != dir {
		t.Errorf("expected dir %q, got %q", dir, cfg.Dir)
	}
	want := config.DefaultSettings()
	if cfg.Settings != want {
		t.Errorf("expected %+v, got %+v", want, cfg.Settings)
	}
	if cfg.SessionPath() != filepath.Join(dir, "session.json") {
		t.Errorf("unexpected session path %q", cfg.SessionPath())
	}
}

func TestNew_ReadsSettingsFile(t *testing.T) {
	dir := t.TempDir()
	writeSettings(t, dir, `
accounts: local
profiles: mongo
tasks: google
mongo:
  uri: mongodb://localhost:27017
  database: todo
splash_min: 5s
`)

	cfg, err := config.New(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s := cfg.Settings
	if s.Profiles != "mongo" || s.Tasks != "google" {
		t.Errorf("unexpected backends: %+v", s)
	}
	if s.Mongo.URI != "mongodb://localhost:27017" || s.Mongo.Database != "todo" {
		t.Errorf("unexpected mongo settings: %+v", s.Mongo)
	}
	if s.SplashMin != 5*time.Second {
		t.Errorf("expected splash_min 5s, got %s", s.SplashMin)
	}
}

func TestNew_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TODOWORK_TASKS", "mongo")
	t.Setenv("TODOWORK_MONGO_URI", "mongodb://db")

	cfg, err := config.New(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Settings.Tasks != "mongo" {
		t.Errorf("expected tasks backend from env, got %q", cfg.Settings.Tasks)
	}
	if cfg.Settings.Mongo.URI != "mongodb://db" {
		t.Errorf("expected mongo uri from env, got %q", cfg.Settings.Mongo.URI)
	}
}

func TestNew_InvalidSettings(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown accounts", "accounts: ldap\n"},
		{"unknown tasks", "tasks: redis\n"},
		{"mongo without uri", "tasks: mongo\n"},
		{"firebase without key", "accounts: firebase\n"},
		{"negative splash", "splash_min: -1s\n"},
		{"malformed yaml", "accounts: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeSettings(t, dir, tt.body)
			if _, err := config.New(dir); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestDefaultConfigDir_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	if got := config.DefaultConfigDir(); got != "/tmp/xdg/todowork" {
		t.Errorf("expected /tmp/xdg/todowork, got %q", got)
	}
}

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "todowork")
	cfg := &config.Config{Dir: dir}
	if err := cfg.EnsureDir(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	info, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("dir not created: %v", err)
	}
	if info.Mode().Perm() != 0700 {
		t.Errorf("expected mode 0700, got %o", info.Mode().Perm())
	}
}
