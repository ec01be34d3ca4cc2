package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/scriptarena/internal/registry"
)

var (
	flagTicks    int
	flagDelta    float64
	flagRealtime bool
)

var headlessCmd = &cobra.Command{
	Use:   "headless",
	Short: "Run the scripted game without a terminal",
	Long: `Run the scripted game with no input and no rendering. Every load,
reload and script error is logged to stderr, and a summary of the world
is printed at the end. Useful for checking scripts in CI or watching
hot-reload logs while editing.

With --ticks 0 the game runs until interrupted; combine it with
--realtime to edit scripts and watch them reload.

Examples:
  arena headless --ticks 600
  arena headless --ticks 0 --realtime --log-level debug`,
	Args: cobra.NoArgs,
	Run: func(_ *cobra.Command, _ []string) {
		if err := headless(); err != nil {
			fail("%v", err)
		}
	},
}

func init() {
	headlessCmd.Flags().IntVar(&flagTicks, "ticks", 600, "Ticks to simulate (0 = until interrupted)")
	headlessCmd.Flags().Float64Var(&flagDelta, "dt", 0, "Seconds per tick (default 1/fps)")
	headlessCmd.Flags().BoolVar(&flagRealtime, "realtime", false, "Pace ticks on the wall clock")
}

func headless() error {
	arena, err := loadArena()
	if err != nil {
		return err
	}
	logger, err := newLogger(os.Stderr, "arena")
	if err != nil {
		return err
	}

	store := openStore(arena.Storage.Path, logger)
	if store != nil {
		defer store.Close()
	}

	game, err := registry.CreateWith(defaultGame, newEnv(arena, logger, store))
	if err != nil {
		return fmt.Errorf("creating game: %w", err)
	}
	defer closeGame(game, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	loop := hostLoop{game: game, dt: flagDelta, ticks: flagTicks, realtime: flagRealtime || flagTicks == 0}
	n := loop.run(ctx, runtimeConfig(80, 24))
	elapsed := time.Since(start)
	recordSession(store, game, "headless", elapsed, logger)

	st := game.State()
	fmt.Printf("Simulated %d ticks in %s\n", n, elapsed.Round(time.Millisecond))
	fmt.Printf("  entities: %d\n", st.Entities)
	if s, ok := game.(interface{ Stats() (int, int) }); ok {
		reloads, failures := s.Stats()
		fmt.Printf("  reloads:  %d\n", reloads)
		fmt.Printf("  failures: %d\n", failures)
	}
	if st.Status != "" {
		fmt.Printf("  status:   %s\n", st.Status)
	}
	return nil
}
