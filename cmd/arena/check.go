package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/scriptarena/internal/games/scripted"
	"github.com/vovakirdan/scriptarena/internal/scripting"
)

var checkCmd = &cobra.Command{
	Use:   "check [dir]",
	Short: "Load every script and report errors",
	Long: `Load each script in the directory into a fresh interpreter, in
name order, and report syntax and runtime load errors. The entry points
the game looks for are listed so a missing one is easy to spot.

Exits with status 1 if any script fails to load.

Examples:
  arena check
  arena check ./scripts`,
	Args: cobra.MaximumNArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		dir := ""
		if len(args) == 1 {
			dir = args[0]
		}
		failed, err := check(dir, os.Stdout)
		if err != nil {
			fail("%v", err)
		}
		if failed > 0 {
			os.Exit(1)
		}
	},
}

// check loads every script under dir and returns the number of failures.
func check(dir string, out io.Writer) (int, error) {
	arena, err := loadArena()
	if err != nil {
		return 0, err
	}
	if dir == "" {
		dir = arena.Scripts.Dir
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("cannot read script directory: %w", err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), arena.Scripts.Extension) {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	if len(files) == 0 {
		fmt.Fprintf(out, "No %s scripts in %s\n", arena.Scripts.Extension, dir)
		return 0, nil
	}

	rt, err := scripting.NewRuntime(scripting.NewBridge(), log.New(io.Discard))
	if err != nil {
		return 0, err
	}
	defer rt.Close()

	failed := 0
	for _, f := range files {
		name := scripting.ScriptName(f)
		if err := rt.LoadFile(name, filepath.Join(dir, f)); err != nil {
			failed++
			var le *scripting.LoadError
			if errors.As(err, &le) {
				fmt.Fprintf(out, "  FAIL  %-16s %s error: %v\n", f, le.Phase, le.Err)
			} else {
				fmt.Fprintf(out, "  FAIL  %-16s %v\n", f, err)
			}
			continue
		}
		fmt.Fprintf(out, "  ok    %s\n", f)
	}

	fmt.Fprintln(out)
	if names := rt.Tracker().Names(); len(names) > 0 {
		fmt.Fprintf(out, "Loaded: %s\n", strings.Join(names, ", "))
	} else {
		fmt.Fprintln(out, "Loaded: none")
	}
	fmt.Fprintln(out, "Entry points:")
	for _, fn := range scripted.EntryPoints() {
		mark := "missing"
		if rt.HasFunction(fn) {
			mark = "defined"
		}
		fmt.Fprintf(out, "  %-14s %s\n", fn, mark)
	}
	return failed, nil
}
