package main

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/scriptarena/internal/storage"
)

var (
	flagHistoryLimit int
	flagClear        bool
)

var historyCmd = &cobra.Command{
	Use:   "history [script]",
	Short: "Show the script load journal",
	Long: `Display recent script loads, reloads and failures, newest first,
followed by per-script totals and the most recent host sessions.

Examples:
  arena history
  arena history player --limit 5
  arena history player --clear`,
	Args: cobra.MaximumNArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		name := ""
		if len(args) == 1 {
			name = args[0]
		}
		if err := history(name, os.Stdout); err != nil {
			fail("%v", err)
		}
	},
}

func init() {
	historyCmd.Flags().IntVar(&flagHistoryLimit, "limit", 20, "Number of journal entries to show")
	historyCmd.Flags().BoolVar(&flagClear, "clear", false, "Delete the journal entries instead of showing them")
}

func history(name string, out io.Writer) error {
	arena, err := loadArena()
	if err != nil {
		return err
	}
	store, err := storage.Open(arena.Storage.Path)
	if err != nil {
		return fmt.Errorf("opening journal database: %w", err)
	}
	defer store.Close()

	if flagClear {
		if err := store.ClearScriptLoads(name); err != nil {
			return err
		}
		fmt.Fprintln(out, "Journal cleared.")
		return nil
	}

	loads, err := store.RecentScriptLoads(name, flagHistoryLimit)
	if err != nil {
		return err
	}

	title := "all scripts"
	if name != "" {
		title = name
	}
	fmt.Fprintf(out, "Load Journal - %s\n\n", title)

	if len(loads) == 0 {
		fmt.Fprintln(out, "No loads recorded yet.")
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Run 'arena play' or 'arena headless' to start journaling.")
		return nil
	}

	fmt.Fprintf(out, "  %-16s  %-12s  %-9s  %-12s  %s\n", "Date", "Script", "Outcome", "Hash", "Error")
	fmt.Fprintf(out, "  %-16s  %-12s  %-9s  %-12s  %s\n", "----", "------", "-------", "----", "-----")
	for _, l := range loads {
		fmt.Fprintf(out, "  %-16s  %-12s  %-9s  %-12s  %s\n",
			l.CreatedAt.Format("2006-01-02 15:04"), l.Name, l.Outcome, shortHash(l.Hash), l.Error)
	}

	stats, err := store.GetScriptStats()
	if err == nil && len(stats) > 0 {
		names := make([]string, 0, len(stats))
		for n := range stats {
			if name == "" || n == name {
				names = append(names, n)
			}
		}
		sort.Strings(names)

		fmt.Fprintln(out)
		fmt.Fprintln(out, "Totals:")
		for _, n := range names {
			st := stats[n]
			fmt.Fprintf(out, "  %-12s  %3d loads  %3d failed  current %s\n",
				st.Name, st.Loads, st.Failures, shortHash(st.LastHash))
		}
	}

	if name == "" {
		sessions, err := store.RecentSessions(5)
		if err == nil && len(sessions) > 0 {
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Recent sessions:")
			for _, s := range sessions {
				fmt.Fprintf(out, "  %s  %-9s %-8s %6d ticks  %3d entities  %d reloads  %d failures\n",
					s.CreatedAt.Format("2006-01-02 15:04"), s.GameID, s.Mode,
					s.Ticks, s.Entities, s.Reloads, s.Failures)
			}
		}
	}
	return nil
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	if h == "" {
		return "-"
	}
	return h
}
