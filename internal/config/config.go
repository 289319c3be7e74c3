package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Assets  AssetsConfig  `toml:"assets"`
	Loop    LoopConfig    `toml:"loop"`
	Logging LoggingConfig `toml:"logging"`
	Scenes  []SceneConfig `toml:"scenes"`
}

type AssetsConfig struct {
	Root     string        `toml:"root"`
	Watch    bool          `toml:"watch"`    // hot-reload scenes and scripts on change
	Debounce time.Duration `toml:"debounce"` // per-file window collapsing editor write bursts
}

type LoopConfig struct {
	TickRate time.Duration `toml:"tick_rate"`
	MaxTicks int           `toml:"max_ticks"` // 0 = run until interrupted
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

// SceneConfig requests one scene instance at startup.
type SceneConfig struct {
	Name   string   `toml:"name"`
	Path   string   `toml:"path"`   // relative to assets.root
	Script string   `toml:"script"` // optional Lua hook, relative to assets.root
	Reload bool     `toml:"reload"` // use the reload-aware hook
	Tags   []string `toml:"tags"`   // entity names receiving a Tagged marker
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Loop.TickRate <= 0 {
		return fmt.Errorf("loop.tick_rate must be positive, got %s", c.Loop.TickRate)
	}
	if c.Loop.MaxTicks < 0 {
		return fmt.Errorf("loop.max_ticks must not be negative, got %d", c.Loop.MaxTicks)
	}
	for i, s := range c.Scenes {
		if s.Path == "" {
			return fmt.Errorf("scenes[%d] (%q): path is required", i, s.Name)
		}
	}
	return nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return defaults()
}

func defaults() *Config {
	return &Config{
		Assets: AssetsConfig{
			Root:     "assets",
			Watch:    true,
			Debounce: 100 * time.Millisecond,
		},
		Loop: LoopConfig{
			TickRate: 50 * time.Millisecond,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
