package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/driftworks/chunkstream/internal/component"
	"github.com/driftworks/chunkstream/internal/config"
	"github.com/driftworks/chunkstream/internal/core/ecs"
	"github.com/driftworks/chunkstream/internal/core/event"
	coresys "github.com/driftworks/chunkstream/internal/core/system"
	"github.com/driftworks/chunkstream/internal/data"
	"github.com/driftworks/chunkstream/internal/persist"
	"github.com/driftworks/chunkstream/internal/scripting"
	"github.com/driftworks/chunkstream/internal/system"
	"github.com/driftworks/chunkstream/internal/world"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(name string) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m             chunkstream  v0.1.0           \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mworld:\033[0m %s\n\n", name)
}

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := 42 - len(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main loop ─────────────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := "config/server.toml"
	if p := os.Getenv("CHUNKSTREAM_CONFIG"); p != "" {
		cfgPath = p
	}
	boot, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(boot.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	store, err := config.NewStore(cfgPath, log)
	if err != nil {
		return fmt.Errorf("config store: %w", err)
	}
	cfg := store.Current()

	printBanner(cfg.Server.Name)

	// 3. Content tables
	printSection("content")
	content, err := data.LoadContent(cfg.Data.Dir)
	if err != nil {
		return fmt.Errorf("content: %w", err)
	}
	if _, err := content.Biomes.Lookup(cfg.Streaming.DefaultBiome); err != nil {
		return fmt.Errorf("streaming.default_biome: %w", err)
	}
	store.SetCheck(func(c *config.Config) error {
		_, err := content.Biomes.Lookup(c.Streaming.DefaultBiome)
		return err
	})
	printStat("biomes", content.Biomes.Count())
	printStat("debris kinds", content.Debris.Count())
	printStat("points of interest", content.POIs.Count())
	fmt.Println()

	// 4. ECS world, bus and POI scripts
	ecsWorld := ecs.NewWorld()
	stores := component.NewStores(ecsWorld)
	bus := event.NewBus()

	engine, err := scripting.NewEngine(cfg.Data.ScriptsDir, content.POIs, ecsWorld, stores, log)
	if err != nil {
		return fmt.Errorf("lua engine: %w", err)
	}
	defer engine.Close()

	// 5. Streaming core
	index := world.NewChunkIndex()
	generator := world.NewChunkGenerator(world.GeneratorDeps{
		Biomes:   content.Biomes,
		Selector: world.NewBiomeSelector(content.Biomes, cfg.Generation.BiomeScale),
		Sampler:  world.NewPoissonSampler(0),
		POI:      engine,
		Config:   store,
		Log:      log,
	})
	loader := system.NewDebrisLoader(system.LoaderDeps{
		Index:   index,
		Spawner: system.NewEntitySpawner(ecsWorld, stores, content.Debris, time.Now().UnixNano()),
		World:   ecsWorld,
		Stores:  stores,
		Config:  store,
		Log:     log,
	})
	loader.Subscribe(bus)
	observers := world.NewObserverRegistry()
	streamSys := system.NewStreamingSystem(system.StreamingDeps{
		Index:     index,
		Generator: generator,
		Loader:    loader,
		Observers: observers,
		Config:    store,
		Bus:       bus,
		World:     ecsWorld,
		Stores:    stores,
		Log:       log,
	})

	// 6. Optional generation audit
	var audit *system.AuditSystem
	if cfg.Database.DSN != "" {
		printSection("database")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		db, err := persist.NewDB(ctx, cfg.Database, log)
		if err != nil {
			cancel()
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()
		printOK("PostgreSQL connected")
		err = persist.RunMigrations(ctx, db.Pool)
		cancel()
		if err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		printOK("migrations applied")
		fmt.Println()

		flushTicks := int(cfg.Database.FlushInterval / cfg.Server.TickRate)
		audit = system.NewAuditSystem(persist.NewAuditRepo(db), bus, log, flushTicks)
	}

	// 7. Systems
	runner := coresys.NewRunner()
	if cfg.Server.DemoObservers > 0 {
		runner.Register(system.NewPatrolSystem(observers, cfg.Server.DemoObservers, cfg.Server.DemoSpeed))
	}
	runner.Register(system.NewDispatchSystem(bus))
	runner.Register(system.NewDebrisMotionSystem(stores, bus))
	runner.Register(streamSys)
	runner.Register(loader)
	runner.Register(system.NewStatsSystem(streamSys, log, cfg.Server.StatsInterval))
	if audit != nil {
		runner.Register(audit)
	}
	runner.Register(system.NewCleanupSystem(ecsWorld, log))

	// 8. First round
	seed := cfg.Server.Seed
	if seed == 0 {
		seed = rand.New(rand.NewSource(time.Now().UnixNano())).Int63()
	}
	if _, err := streamSys.StartRound(seed); err != nil {
		return fmt.Errorf("start round: %w", err)
	}

	// 9. Game loop
	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	go store.Watch(ctx, cfg.Server.ReloadInterval)

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Server.TickRate)
	defer ticker.Stop()

	printSection("ready")
	printReady(fmt.Sprintf("seed %d", seed))
	printReady(fmt.Sprintf("game loop running (tick: %s)", cfg.Server.TickRate))
	fmt.Println()

	for {
		select {
		case <-ticker.C:
			runner.Tick(cfg.Server.TickRate)
			if err := streamSys.Err(); err != nil {
				if audit != nil {
					audit.Flush()
				}
				return fmt.Errorf("streaming: %w", err)
			}
		case sig := <-shutdownCh:
			log.Info("shutdown signal received", zap.String("signal", sig.String()))
			if audit != nil {
				audit.Flush()
			}
			st := streamSys.Stats()
			log.Info("server stopped", zap.Int("chunks", st.Chunks), zap.Int("live_debris", st.LiveDebris))
			return nil
		}
	}
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
