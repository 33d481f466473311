package config

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Store holds the live configuration. Readers on the game loop call Current
// every pass; Reload swaps in a new value when the file changes on disk.
// Only [streaming] and [generation] are hot-reloadable; other sections keep
// their boot-time values until restart.
type Store struct {
	path    string
	cur     atomic.Pointer[Config]
	modTime time.Time
	check   func(*Config) error
	log     *zap.Logger
}

// NewStore loads path and remembers its modification time.
func NewStore(path string, log *zap.Logger) (*Store, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat config %s: %w", path, err)
	}
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	s := &Store{path: path, modTime: info.ModTime(), log: log}
	s.cur.Store(cfg)
	return s, nil
}

// NewStaticStore wraps an in-memory config that never reloads.
func NewStaticStore(cfg *Config) *Store {
	s := &Store{log: zap.NewNop()}
	s.cur.Store(cfg)
	return s
}

func (s *Store) Current() *Config { return s.cur.Load() }

func (s *Store) Streaming() StreamingConfig { return s.cur.Load().Streaming }

func (s *Store) Generation() GenerationConfig { return s.cur.Load().Generation }

// Set replaces the hot-reloadable sections directly.
func (s *Store) Set(streaming StreamingConfig, generation GenerationConfig) {
	next := *s.cur.Load()
	next.Streaming = streaming
	next.Generation = generation
	s.cur.Store(&next)
}

// SetCheck installs an extra validation run on every reloaded file, for
// rules that depend on loaded content such as the default biome id.
func (s *Store) SetCheck(check func(*Config) error) { s.check = check }

// Watch polls the file every interval until ctx is done. Rejected reloads are
// logged and the previous config stays live.
func (s *Store) Watch(ctx context.Context, interval time.Duration) {
	if s.path == "" || interval <= 0 {
		return
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if _, err := s.Reload(); err != nil {
				s.log.Warn("config reload rejected", zap.Error(err))
			}
		}
	}
}

// Reload re-reads the file if its modification time changed. An invalid file
// leaves the current config in place and returns the parse error.
func (s *Store) Reload() (bool, error) {
	if s.path == "" {
		return false, nil
	}
	info, err := os.Stat(s.path)
	if err != nil {
		return false, fmt.Errorf("stat config %s: %w", s.path, err)
	}
	if info.ModTime().Equal(s.modTime) {
		return false, nil
	}
	s.modTime = info.ModTime()

	loaded, err := Load(s.path)
	if err != nil {
		return false, err
	}
	if s.check != nil {
		if err := s.check(loaded); err != nil {
			return false, fmt.Errorf("reload %s: %w", s.path, err)
		}
	}
	prev := s.cur.Load()
	if loaded.Streaming == prev.Streaming && loaded.Generation == prev.Generation {
		return false, nil
	}
	s.Set(loaded.Streaming, loaded.Generation)
	s.log.Info("config reloaded",
		zap.String("path", s.path),
		zap.Bool("enabled", loaded.Streaming.Enabled),
		zap.Float64("debris_budget_ms", loaded.Streaming.DebrisLoadBudgetMs),
		zap.Float64("poi_probability", loaded.Streaming.POIProbability),
		zap.String("default_biome", loaded.Streaming.DefaultBiome),
	)
	return true, nil
}
