package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestGetConfigDir(t *testing.T) {
	configDir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}

	if !strings.Contains(configDir, "positions") {
		t.Errorf("GetConfigDir() = %v, should contain 'positions'", configDir)
	}

	if runtime.GOOS == "linux" {
		t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
		dir, _ := GetConfigDir()
		if dir != "/tmp/xdg/positions" {
			t.Errorf("GetConfigDir() with XDG_CONFIG_HOME = %v", dir)
		}
	}
}

func TestGetConfigPathEnvOverride(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, "/etc/positions.yaml")
	path, err := GetConfigPath()
	if err != nil {
		t.Fatal(err)
	}
	if path != "/etc/positions.yaml" {
		t.Errorf("GetConfigPath() = %s", path)
	}
}

func TestNewRegistry(t *testing.T) {
	reg := NewRegistry()

	if reg.Version != 1 {
		t.Errorf("NewRegistry().Version = %v, want 1", reg.Version)
	}
	if reg.Profiles == nil {
		t.Error("NewRegistry().Profiles should not be nil")
	}
	if reg.Preferences == nil || !reg.Preferences.ChangeFeed {
		t.Error("NewRegistry().Preferences should enable the change feed")
	}
}

func TestEnsureProfileSelectsFirst(t *testing.T) {
	reg := NewRegistry()

	p := reg.EnsureProfile("warehouse")
	p.BaseURL = "http://erp.local"
	reg.EnsureProfile("staging")

	if reg.CurrentProfile != "warehouse" {
		t.Errorf("CurrentProfile = %q, want warehouse", reg.CurrentProfile)
	}
	if got := reg.EnsureProfile("warehouse"); got != p {
		t.Error("EnsureProfile should return the existing entry")
	}
	if diff := cmp.Diff([]string{"staging", "warehouse"}, reg.ProfileNames()); diff != "" {
		t.Errorf("ProfileNames() mismatch (-want +got):\n%s", diff)
	}

	name, cur := reg.Current()
	if name != "warehouse" || cur != p {
		t.Errorf("Current() = %s, %v", name, cur)
	}

	if !reg.RemoveProfile("warehouse") || reg.CurrentProfile != "" {
		t.Error("removing the current profile should clear the selection")
	}
	if reg.RemoveProfile("nope") {
		t.Error("RemoveProfile(nope) = true")
	}
}

func TestTouchProfile(t *testing.T) {
	reg := NewRegistry()
	reg.EnsureProfile("a")
	before := time.Now()
	reg.TouchProfile("a")
	if reg.GetProfile("a").LastUsed.Before(before) {
		t.Error("LastUsed not updated")
	}
	reg.TouchProfile("missing")
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	reg := NewRegistry()
	p := reg.EnsureProfile("local")
	p.BaseURL = "http://localhost:8080"
	p.FormID = "42"
	p.PageSize = 50
	p.Validation = "strict"

	if err := reg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	if runtime.GOOS != "windows" && info.Mode().Perm() != 0600 {
		t.Errorf("permissions = %v, want 0600", info.Mode().Perm())
	}

	data, _ := os.ReadFile(path)
	if !strings.HasPrefix(string(data), "# Positions Configuration File") {
		t.Error("missing header comment")
	}
	if strings.Contains(strings.ToLower(string(data)), "password:") {
		t.Error("a password field must never be written")
	}

	loaded, err := LoadRegistryFile(path)
	if err != nil {
		t.Fatalf("LoadRegistryFile() error = %v", err)
	}
	if loaded.CurrentProfile != "local" {
		t.Errorf("CurrentProfile = %q", loaded.CurrentProfile)
	}
	got := loaded.GetProfile("local")
	if diff := cmp.Diff(p, got); diff != "" {
		t.Errorf("profile mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadMissingFile(t *testing.T) {
	reg, err := LoadRegistryFile(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadRegistryFile() error = %v", err)
	}
	if reg.Version != 1 || len(reg.Profiles) != 0 {
		t.Errorf("registry = %+v", reg)
	}
}

func TestLoadRejectsBadFiles(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"wrong version", "version: 2\n"},
		{"bad yaml", "version: [1\n"},
		{"dangling current", "version: 1\ncurrent_profile: ghost\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0600); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadRegistryFile(path); err == nil {
				t.Error("LoadRegistryFile() should fail")
			}
		})
	}
}

func TestLoadFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	os.WriteFile(path, []byte("version: 1\n"), 0600)

	reg, err := LoadRegistryFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if reg.Profiles == nil || reg.Preferences == nil {
		t.Errorf("defaults not filled: %+v", reg)
	}
}

func TestCreateDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	t.Setenv(ConfigPathEnvVar, path)

	if err := CreateDefaultConfig(); err != nil {
		t.Fatalf("CreateDefaultConfig() error = %v", err)
	}
	reg, err := LoadRegistry()
	if err != nil {
		t.Fatal(err)
	}
	if p := reg.GetProfile("local"); p == nil || p.BaseURL != "http://localhost:8080" {
		t.Errorf("local profile = %+v", p)
	}
}
