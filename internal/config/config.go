package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Server     ServerConfig     `toml:"server"`
	Logging    LoggingConfig    `toml:"logging"`
	Streaming  StreamingConfig  `toml:"streaming"`
	Generation GenerationConfig `toml:"generation"`
	Data       DataConfig       `toml:"data"`
	Database   DatabaseConfig   `toml:"database"`
}

type ServerConfig struct {
	Name           string        `toml:"name"`
	TickRate       time.Duration `toml:"tick_rate"`
	ReloadInterval time.Duration `toml:"reload_interval"` // config file poll period; 0 disables hot reload
	StatsInterval  time.Duration `toml:"stats_interval"`
	Seed           int64         `toml:"seed"`           // 0 = random seed per round
	DemoObservers  int           `toml:"demo_observers"` // patrolling observers when no session layer feeds positions
	DemoSpeed      float64       `toml:"demo_speed"`     // world units per second
}

// StreamingConfig is the hot-reloadable part read by the streaming core every pass.
type StreamingConfig struct {
	Enabled            bool          `toml:"enabled"`
	DefaultBiome       string        `toml:"default_biome"`
	DebrisLoadBudgetMs float64       `toml:"debris_load_budget_ms"`
	POIProbability     float64       `toml:"poi_probability"` // 0.0-1.0
	LoadRadius         float64       `toml:"load_radius"`     // world units around each observer
	ScanInterval       time.Duration `toml:"scan_interval"`
	WorldBoundChunks   int32         `toml:"world_bound_chunks"` // chunks with |x| or |y| above this are clipped
}

// DebrisLoadBudget converts the millisecond budget to a duration.
func (c StreamingConfig) DebrisLoadBudget() time.Duration {
	return time.Duration(c.DebrisLoadBudgetMs * float64(time.Millisecond))
}

type GenerationConfig struct {
	MinSpacing    float64 `toml:"min_spacing"`    // poisson spacing far from origin
	MaxSpacing    float64 `toml:"max_spacing"`    // poisson spacing at origin
	FalloffRadius float64 `toml:"falloff_radius"` // distance where spacing reaches min_spacing
	BiomeScale    float64 `toml:"biome_scale"`    // noise frequency per chunk
}

type DataConfig struct {
	Dir        string `toml:"dir"`
	ScriptsDir string `toml:"scripts_dir"`
}

type DatabaseConfig struct {
	DSN             string        `toml:"dsn"` // empty disables the generation audit
	MaxOpenConns    int           `toml:"max_open_conns"`
	MaxIdleConns    int           `toml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `toml:"conn_max_lifetime"`
	FlushInterval   time.Duration `toml:"flush_interval"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes TOML on top of the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.Server.TickRate <= 0 {
		errs = append(errs, errors.New("server.tick_rate must be positive"))
	}
	if c.Server.DemoObservers < 0 {
		errs = append(errs, errors.New("server.demo_observers must not be negative"))
	}
	s := c.Streaming
	if s.DefaultBiome == "" {
		errs = append(errs, errors.New("streaming.default_biome is required"))
	}
	if s.DebrisLoadBudgetMs < 0 {
		errs = append(errs, errors.New("streaming.debris_load_budget_ms must not be negative"))
	}
	if s.POIProbability < 0 || s.POIProbability > 1 {
		errs = append(errs, fmt.Errorf("streaming.poi_probability %v out of range [0,1]", s.POIProbability))
	}
	if s.LoadRadius < 0 {
		errs = append(errs, errors.New("streaming.load_radius must not be negative"))
	}
	if s.ScanInterval <= 0 {
		errs = append(errs, errors.New("streaming.scan_interval must be positive"))
	}
	if s.WorldBoundChunks < 0 {
		errs = append(errs, errors.New("streaming.world_bound_chunks must not be negative"))
	}
	g := c.Generation
	if g.MinSpacing <= 0 || g.MaxSpacing < g.MinSpacing {
		errs = append(errs, fmt.Errorf("generation spacing must satisfy 0 < min_spacing <= max_spacing (got %v, %v)", g.MinSpacing, g.MaxSpacing))
	}
	if g.FalloffRadius <= 0 {
		errs = append(errs, errors.New("generation.falloff_radius must be positive"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Name:           "chunkstream",
			TickRate:       50 * time.Millisecond,
			ReloadInterval: 5 * time.Second,
			StatsInterval:  30 * time.Second,
			DemoObservers:  1,
			DemoSpeed:      60,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Streaming: StreamingConfig{
			Enabled:            true,
			DefaultBiome:       "empty_space",
			DebrisLoadBudgetMs: 2.5,
			POIProbability:     0.05,
			LoadRadius:         384,
			ScanInterval:       time.Second / 3,
			WorldBoundChunks:   64,
		},
		Generation: GenerationConfig{
			MinSpacing:    24,
			MaxSpacing:    96,
			FalloffRadius: 1500,
			BiomeScale:    0.08,
		},
		Data: DataConfig{
			Dir:        "data/yaml",
			ScriptsDir: "scripts",
		},
		Database: DatabaseConfig{
			MaxOpenConns:    4,
			MaxIdleConns:    1,
			ConnMaxLifetime: 30 * time.Minute,
			FlushInterval:   10 * time.Second,
		},
	}
}
