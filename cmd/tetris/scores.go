package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-tetris/internal/registry"
	"github.com/vovakirdan/tui-tetris/internal/storage"
)

var (
	flagScoresLimit int
	flagScoresClear bool
)

var scoresCmd = &cobra.Command{
	Use:   "scores <mode>",
	Short: "Show high scores for a mode",
	Long: `Display the best results for the given mode, with totals.

Examples:
  tetris scores tetris
  tetris scores tetris_lines --limit 20
  tetris scores tetris_timed --clear`,
	Args: cobra.ExactArgs(1),
	Run:  runScores,
}

func init() {
	scoresCmd.Flags().IntVar(&flagScoresLimit, "limit", 10, "Number of results to show")
	scoresCmd.Flags().BoolVar(&flagScoresClear, "clear", false, "Delete all results of the mode")
}

func runScores(_ *cobra.Command, args []string) {
	mode := args[0]
	if !registry.Exists(mode) {
		fail("unknown mode %q\nRun 'tetris modes' to see available modes.", mode)
	}

	store, err := storage.Open(flagDBPath)
	if err != nil {
		fail("opening scores database: %v", err)
	}
	defer store.Close()

	if flagScoresClear {
		if err := store.ClearResults(mode); err != nil {
			fail("%v", err)
		}
		fmt.Printf("Cleared results for %s.\n", registry.Title(mode))
		return
	}

	results, err := store.TopResults(mode, flagScoresLimit)
	if err != nil {
		fail("retrieving scores: %v", err)
	}

	fmt.Printf("High Scores - %s\n", registry.Title(mode))
	fmt.Println()

	if len(results) == 0 {
		fmt.Println("No games recorded yet.")
		fmt.Println()
		fmt.Printf("Play 'tetris play %s' to set the first high score!\n", mode)
		return
	}

	fmt.Printf("  %-4s  %-9s  %-5s  %-5s  %-5s  %-11s  %s\n", "Rank", "Score", "Level", "Lines", "Time", "Ended", "Date")
	fmt.Printf("  %-4s  %-9s  %-5s  %-5s  %-5s  %-11s  %s\n", "----", "-----", "-----", "-----", "----", "-----", "----")
	for i, r := range results {
		secs := int(r.Duration().Seconds())
		fmt.Printf("  %-4d  %-9d  %-5d  %-5d  %02d:%02d  %-11s  %s\n",
			i+1, r.Score, r.Level, r.Lines, secs/60, secs%60, r.EndReason,
			r.CreatedAt.Local().Format("2006-01-02 15:04"))
	}

	if stats, err := store.Stats(mode); err == nil {
		fmt.Println()
		fmt.Printf("Best: %d   Games: %d   Average: %.0f   Lines: %d\n",
			stats.HighScore, stats.Games, stats.AvgScore, stats.TotalLines)
	}
}
