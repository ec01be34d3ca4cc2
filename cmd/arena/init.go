package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/scriptarena/internal/games/scripted"
)

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Write the starter scripts",
	Long: `Write the built-in starter scripts (world, player and camera) into
the directory, creating it if needed. Existing files are never
overwritten, so running init again only restores deleted scripts.

Examples:
  arena init
  arena init ./scripts`,
	Args: cobra.MaximumNArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		dir := ""
		if len(args) == 1 {
			dir = args[0]
		}
		if dir == "" {
			arena, err := loadArena()
			if err != nil {
				fail("%v", err)
			}
			dir = arena.Scripts.Dir
		}

		written, err := scripted.WriteStarter(dir)
		if err != nil {
			fail("%v", err)
		}
		if len(written) == 0 {
			fmt.Printf("All starter scripts already exist in %s\n", dir)
			return
		}
		for _, path := range written {
			fmt.Printf("  wrote %s\n", path)
		}
		fmt.Println()
		fmt.Printf("Run 'arena play --scripts %s' and edit the scripts while it runs.\n", filepath.Clean(dir))
	},
}
