package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/pkg/profile"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/scenehook/scenehook/internal/asset"
	"github.com/scenehook/scenehook/internal/config"
	"github.com/scenehook/scenehook/internal/core/ecs"
	"github.com/scenehook/scenehook/internal/core/event"
	coresys "github.com/scenehook/scenehook/internal/core/system"
	"github.com/scenehook/scenehook/internal/hook"
	"github.com/scenehook/scenehook/internal/hook/reload"
	"github.com/scenehook/scenehook/internal/scene"
	"github.com/scenehook/scenehook/internal/scripting"
	"github.com/scenehook/scenehook/internal/system"
)

const version = "v0.1.0"

const defaultConfigPath = "config/scenehook.toml"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		cfgPath  = flag.String("config", "", "config file (default $SCENEHOOK_CONFIG or "+defaultConfigPath+")")
		profMode = flag.String("profile", "", "write a profile to the working directory: cpu or mem")
		ticks    = flag.Int("ticks", -1, "stop after this many ticks, overriding loop.max_ticks")
	)
	flag.Parse()

	// 1. Load config
	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if *ticks >= 0 {
		cfg.Loop.MaxTicks = *ticks
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	switch *profMode {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	case "mem":
		defer profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	default:
		return fmt.Errorf("unknown profile mode %q", *profMode)
	}

	printBanner(version)

	// 3. Assets
	printSection("assets")
	assets := asset.NewServer(cfg.Assets.Root, log)
	defer assets.Close()
	assets.RegisterLoader(scene.Loader{})
	assets.RegisterLoader(scripting.Loader{})
	if cfg.Assets.Watch {
		if err := assets.Watch(cfg.Assets.Debounce); err != nil {
			return fmt.Errorf("assets: %w", err)
		}
		printOK(fmt.Sprintf("watching %s", cfg.Assets.Root))
	}

	// 4. World and systems
	world := ecs.NewWorld()
	bus := event.NewBus()
	spawner := scene.NewSpawner(world, assets, scene.NewDecoders(), log)

	runner := coresys.NewRunner()
	runner.SetSyncPoint(world.ApplyCommands)
	runner.Register(system.NewEventDispatchSystem(bus))
	runner.Register(system.NewAssetPollSystem(assets, bus, log))
	runner.Register(scene.NewSpawnSystem(world, spawner))
	hook.Register(runner, world, spawner, bus, log)
	reload.Register(runner, world, spawner, bus, log)
	runner.Register(coresys.RunIf(&reportSystem{world: world, log: log}, whenAnyHooked(world)))
	runner.Register(system.NewCleanupSystem(world))

	event.Subscribe(bus, func(ev event.SceneHooked) {
		log.Info("scene hooked",
			zap.Stringer("anchor", ev.Anchor),
			zap.Int("entities", ev.Entities),
			zap.String("version", ev.Version),
		)
	})
	event.Subscribe(bus, func(ev event.SceneDeleted) {
		log.Info("scene deleted", zap.Stringer("anchor", ev.Anchor))
	})

	// 5. Scenes
	printSection("scenes")
	catalog := demoCatalog()
	for _, sc := range cfg.Scenes {
		engine, err := spawnScene(world, assets, bus, catalog, sc, log)
		if err != nil {
			return fmt.Errorf("scene %q: %w", sc.Name, err)
		}
		if engine != nil {
			defer engine.Close()
		}
	}
	printStat("scenes", len(cfg.Scenes))
	printStat("script kinds", len(catalog.Kinds()))
	fmt.Println()

	// 6. Game loop
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(cfg.Loop.TickRate)
	defer ticker.Stop()

	printSection("running")
	printReady(fmt.Sprintf("game loop started (tick: %s)", cfg.Loop.TickRate))
	fmt.Println()

	for n := 0; cfg.Loop.MaxTicks == 0 || n < cfg.Loop.MaxTicks; n++ {
		select {
		case <-ticker.C:
			runner.Tick(cfg.Loop.TickRate)
		case <-ctx.Done():
			log.Info("shutting down", zap.Int("ticks", n))
			return nil
		}
	}
	log.Info("tick limit reached", zap.Int("ticks", cfg.Loop.MaxTicks), zap.Int("entities", world.Len()))
	return nil
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		path = os.Getenv("SCENEHOOK_CONFIG")
	}
	if path != "" {
		return config.Load(path)
	}
	cfg, err := config.Load(defaultConfigPath)
	if errors.Is(err, fs.ErrNotExist) {
		return config.Default(), nil
	}
	return cfg, err
}

// spawnScene requests one configured scene with its hooks. The returned
// engine is nil when the scene has no script; the caller closes it.
func spawnScene(w *ecs.World, assets *asset.Server, bus *event.Bus, catalog *scripting.Catalog, sc config.SceneConfig, log *zap.Logger) (*scripting.Engine, error) {
	root := scene.Root{Handle: assets.Load(sc.Path)}
	tagger := nameTagger(sc.Tags)

	var engine *scripting.Engine
	if sc.Script != "" {
		var err error
		engine, err = scripting.LoadFile(filepath.Join(assets.Root(), sc.Script), log)
		if err != nil {
			return nil, err
		}
		engine.Follow(bus, assets, assets.Load(sc.Script))
	}

	name := sc.Name
	if name == "" {
		name = sc.Path
	}
	if sc.Reload {
		fn := asReload(tagger)
		if engine != nil {
			fn = chainReload(fn, engine.ReloadHook(catalog))
		}
		reload.SceneBundle{Scene: root, Reload: reload.New(fn)}.Spawn(w, scene.NewName(name))
	} else {
		fn := tagger
		if engine != nil {
			fn = chain(fn, engine.Hook(catalog))
		}
		hook.HookedSceneBundle{Scene: root, Hook: hook.New(fn)}.Spawn(w, scene.NewName(name))
	}
	printOK(fmt.Sprintf("%s ← %s", name, sc.Path))
	return engine, nil
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
