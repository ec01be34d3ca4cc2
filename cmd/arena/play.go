package main

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/scriptarena/internal/platform/tui"
	"github.com/vovakirdan/scriptarena/internal/registry"
	"github.com/vovakirdan/scriptarena/internal/storage"
)

const defaultGame = "scripted"

var flagAgent string

var playCmd = &cobra.Command{
	Use:   "play [game]",
	Short: "Play a game",
	Long: `Start playing the specified game in the terminal (default: scripted).

Controls:
  WASD/Arrows - Move
  R           - Restart (reloads the world and every script)
  ?           - Toggle help
  Q/Ctrl+C    - Quit

While the scripted game runs, saving a .lua file in the script directory
reloads it on the next tick. Logs go to ~/.arena/arena.log unless
--log-file is set.

Examples:
  arena play
  arena play --scripts ./scripts
  arena play native --agent aggressive`,
	Args: cobra.MaximumNArgs(1),
	Run:  runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagAgent, "agent", "", "Orbiter preset for the native game: calm, normal, aggressive")
}

func runPlay(_ *cobra.Command, args []string) {
	gameID := defaultGame
	if len(args) == 1 {
		gameID = args[0]
	}
	if !registry.Exists(gameID) {
		fail("unknown game %q\nRun 'arena list' to see available games.", gameID)
	}
	if err := play(gameID); err != nil {
		fail("%v", err)
	}
}

func play(gameID string) error {
	arena, err := loadArena()
	if err != nil {
		return err
	}
	if err := applyAgentPreset(&arena, flagAgent); err != nil {
		return err
	}

	logFile, err := openLogFile()
	if err != nil {
		return err
	}
	defer logFile.Close()
	logger, err := newLogger(logFile, "arena")
	if err != nil {
		return err
	}

	width, height := 80, 24
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		width = w
		height = h
	}

	store := openStore(arena.Storage.Path, logger)
	if store != nil {
		defer store.Close()
	}

	game, err := registry.CreateWith(gameID, newEnv(arena, logger, store))
	if err != nil {
		return fmt.Errorf("creating game: %w", err)
	}
	defer closeGame(game, logger)

	start := time.Now()
	runErr := tui.Run(game, runtimeConfig(width, height), tui.Options{
		HoldWindow: arena.Input.HoldWindow,
	})
	recordSession(store, game, "play", time.Since(start), logger)

	if runErr != nil {
		return fmt.Errorf("running game: %w", runErr)
	}
	return nil
}

// recordSession journals the summary of a finished run.
func recordSession(store *storage.Store, game registry.Game, mode string, elapsed time.Duration, logger *log.Logger) {
	if store == nil {
		return
	}
	st := game.State()
	session := storage.Session{
		GameID:   game.ID(),
		Mode:     mode,
		Ticks:    int64(st.Tick),
		Entities: st.Entities,
		Duration: int(elapsed.Seconds()),
	}
	if s, ok := game.(interface{ Stats() (int, int) }); ok {
		session.Reloads, session.Failures = s.Stats()
	}
	if _, err := store.SaveSession(session); err != nil {
		logger.Warn("could not save session", "error", err)
	}
}
