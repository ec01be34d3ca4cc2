// arena hosts Lua-scripted game worlds in the terminal.
//
// Usage:
//
//	arena list                 - List available games
//	arena play [game]          - Play a game (default: scripted)
//	arena headless             - Run the scripted game without a terminal
//	arena serve                - Host a game for SSH and WebSocket spectators
//	arena check [dir]          - Load every script and report errors
//	arena init [dir]           - Write the starter scripts
//	arena history [script]     - Show the script load journal
//
// Global flags:
//
//	--fps <rate>        - Set tick rate (default: 60)
//	--seed <value>      - Set RNG seed
//	--db <path>         - Set database path (default: from config)
//	--config <path>     - Arena config YAML
//	--scripts <dir>     - Script directory (overrides config)
//	--log-level <lvl>   - debug, info, warn or error
//	--log-file <path>   - Log destination in play mode
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	// Import games to register them
	_ "github.com/vovakirdan/scriptarena/internal/games/native"
	_ "github.com/vovakirdan/scriptarena/internal/games/scripted"
)

var (
	// Global flags
	flagFPS      int
	flagSeed     int64
	flagDBPath   string
	flagConfig   string
	flagScripts  string
	flagLogLevel string
	flagLogFile  string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "arena",
	Short: "Script Arena - hot-reloadable Lua game worlds in your terminal",
	Long: `Script Arena hosts a small game world whose behaviour lives in Lua
scripts. Edit a script while the game runs and the change is picked up
on the next tick.

Available commands:
  list      - Show all available games
  play      - Play a game in the terminal
  headless  - Run the scripted game without a terminal
  serve     - Host a game for SSH and WebSocket spectators
  check     - Load every script and report errors
  init      - Write the starter scripts
  history   - Show the script load journal

Examples:
  arena init ./scripts
  arena play --scripts ./scripts
  arena headless --ticks 600
  arena serve --ssh :2222 --observe :8081`,
}

func init() {
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 60, "Tick rate (frames per second)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to journal database (default from config)")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to arena config YAML")
	rootCmd.PersistentFlags().StringVar(&flagScripts, "scripts", "", "Script directory (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log-file", "", "Log file for play mode (default ~/.arena/arena.log)")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(headlessCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(historyCmd)
}
