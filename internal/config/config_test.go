package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenehook.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	t.Run("defaults_fill_missing_sections", func(t *testing.T) {
		cfg, err := Load(writeConfig(t, "[logging]\nlevel = \"debug\"\n"))
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if cfg.Logging.Level != "debug" {
			t.Fatalf("level = %q, want debug", cfg.Logging.Level)
		}
		if cfg.Logging.Format != "console" {
			t.Fatalf("format = %q, want console default", cfg.Logging.Format)
		}
		if cfg.Assets.Root != "assets" || !cfg.Assets.Watch {
			t.Fatalf("unexpected asset defaults: %+v", cfg.Assets)
		}
		if cfg.Loop.TickRate != 50*time.Millisecond {
			t.Fatalf("tick rate = %s, want 50ms", cfg.Loop.TickRate)
		}
	})

	t.Run("scenes_and_durations", func(t *testing.T) {
		cfg, err := Load(writeConfig(t, `
[assets]
root = "data"
watch = false
debounce = "250ms"

[loop]
tick_rate = "10ms"
max_ticks = 5

[[scenes]]
name = "table"
path = "scenes/table.yaml"
script = "scripts/table.lua"
reload = true
tags = ["Card", "Pile"]
`))
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if cfg.Assets.Root != "data" || cfg.Assets.Watch || cfg.Assets.Debounce != 250*time.Millisecond {
			t.Fatalf("assets = %+v", cfg.Assets)
		}
		if cfg.Loop.TickRate != 10*time.Millisecond || cfg.Loop.MaxTicks != 5 {
			t.Fatalf("loop = %+v", cfg.Loop)
		}
		if len(cfg.Scenes) != 1 {
			t.Fatalf("scenes = %d, want 1", len(cfg.Scenes))
		}
		s := cfg.Scenes[0]
		if s.Name != "table" || s.Path != "scenes/table.yaml" || s.Script != "scripts/table.lua" || !s.Reload {
			t.Fatalf("scene = %+v", s)
		}
		if len(s.Tags) != 2 || s.Tags[0] != "Card" {
			t.Fatalf("tags = %v", s.Tags)
		}
	})

	tests := []struct {
		name string
		body string
		want string
	}{
		{"zero_tick_rate", "[loop]\ntick_rate = \"0s\"\n", "tick_rate"},
		{"negative_max_ticks", "[loop]\nmax_ticks = -1\n", "max_ticks"},
		{"scene_without_path", "[[scenes]]\nname = \"x\"\n", "path is required"},
		{"bad_toml", "[loop\n", "parse config"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.body))
			if err == nil {
				t.Fatalf("expected error containing %q", tc.want)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err, tc.want)
			}
		})
	}

	t.Run("missing_file", func(t *testing.T) {
		if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
			t.Fatal("expected error for missing file")
		}
	})
}
