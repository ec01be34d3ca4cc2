package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/scriptarena/internal/config"
	"github.com/vovakirdan/scriptarena/internal/core"
	"github.com/vovakirdan/scriptarena/internal/registry"
	"github.com/vovakirdan/scriptarena/internal/storage"
)

// fail prints an error and exits.
func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

// newLogger builds the process logger writing to w.
func newLogger(w io.Writer, prefix string) (*log.Logger, error) {
	level, err := log.ParseLevel(strings.ToLower(flagLogLevel))
	if err != nil {
		return nil, fmt.Errorf("invalid --log-level %q: %w", flagLogLevel, err)
	}
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
		Level:           level,
	}), nil
}

// openLogFile opens the play-mode log file, creating its directory.
func openLogFile() (*os.File, error) {
	path := flagLogFile
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("cannot get home directory: %w", err)
		}
		path = filepath.Join(home, ".arena", "arena.log")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("cannot create log directory: %w", err)
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}

// loadArena reads the arena config and applies CLI overrides.
func loadArena() (config.ArenaConfig, error) {
	cfg, err := config.LoadArena(flagConfig)
	if err != nil {
		return cfg, err
	}
	if flagScripts != "" {
		cfg.Scripts.Dir = flagScripts
	}
	if flagDBPath != "" {
		cfg.Storage.Path = flagDBPath
	}
	return cfg, cfg.Validate()
}

// applyAgentPreset adjusts the orbiter for the native game.
func applyAgentPreset(cfg *config.ArenaConfig, name string) error {
	preset, err := config.ParseAgentPreset(name)
	if err != nil {
		return err
	}
	config.ApplyAgentPreset(&cfg.Agent, preset)
	return nil
}

// openStore opens the journal database. A failure is logged and the run
// continues without journaling.
func openStore(path string, logger *log.Logger) *storage.Store {
	store, err := storage.Open(path)
	if err != nil {
		logger.Warn("could not open journal database", "path", path, "error", err)
		return nil
	}
	return store
}

// newEnv assembles the dependencies handed to games.
func newEnv(arena config.ArenaConfig, logger *log.Logger, store *storage.Store) registry.Env {
	env := registry.Env{Arena: arena, Logger: logger}
	if store != nil {
		env.Journal = store
	}
	return env
}

// runtimeConfig builds the per-run config from global flags.
func runtimeConfig(w, h int) core.RuntimeConfig {
	return core.RuntimeConfig{
		ScreenW:  w,
		ScreenH:  h,
		TickRate: flagFPS,
		Seed:     flagSeed,
	}
}

// closeGame releases game resources when the game holds any.
func closeGame(g registry.Game, logger *log.Logger) {
	if c, ok := g.(registry.Closer); ok {
		if err := c.Close(); err != nil {
			logger.Warn("close game", "game", g.ID(), "error", err)
		}
	}
}
