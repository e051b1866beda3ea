package cli

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestPresetDirDefault(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "")

	dir, err := presetDir()
	if err != nil {
		t.Fatalf("presetDir() error: %v", err)
	}

	home, _ := os.UserHomeDir()
	expected := filepath.Join(home, ".config", appName, "presets")
	if dir != expected {
		t.Errorf("presetDir() = %q, want %q", dir, expected)
	}
}

func TestPresetDirXDG(t *testing.T) {
	custom := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", custom)

	dir, err := presetDir()
	if err != nil {
		t.Fatalf("presetDir() error: %v", err)
	}

	expected := filepath.Join(custom, appName, "presets")
	if dir != expected {
		t.Errorf("presetDir() with XDG_CONFIG_HOME = %q, want %q", dir, expected)
	}
}

func TestResolvePreset(t *testing.T) {
	custom := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", custom)

	dir := filepath.Join(custom, appName, "presets")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	data := []byte("name = \"tiny\"\n[simulation]\nsize = 16\n")
	if err := os.WriteFile(filepath.Join(dir, "tiny.toml"), data, 0o644); err != nil {
		t.Fatal(err)
	}

	t.Run("builtin", func(t *testing.T) {
		p, err := resolvePreset("dense")
		if err != nil || p.Name != "dense" {
			t.Errorf("resolvePreset(dense) = %q, %v", p.Name, err)
		}
	})

	t.Run("user preset by name", func(t *testing.T) {
		p, err := resolvePreset("tiny")
		if err != nil {
			t.Fatalf("resolvePreset(tiny) error = %v", err)
		}
		if p.Simulation.Size != 16 {
			t.Errorf("Size = %d, want 16", p.Simulation.Size)
		}
	})

	t.Run("path", func(t *testing.T) {
		p, err := resolvePreset(filepath.Join(dir, "tiny.toml"))
		if err != nil || p.Name != "tiny" {
			t.Errorf("resolvePreset(path) = %q, %v", p.Name, err)
		}
	})

	t.Run("unknown", func(t *testing.T) {
		if _, err := resolvePreset("lumpy"); err == nil {
			t.Error("expected error for unknown preset")
		}
	})

	if got := userPresets(); !slices.Equal(got, []string{"tiny"}) {
		t.Errorf("userPresets() = %v, want [tiny]", got)
	}
}
