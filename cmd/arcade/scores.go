package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/merge-arcade/internal/registry"
	"github.com/vovakirdan/merge-arcade/internal/storage"
)

var (
	flagExport      string
	flagClearScores bool
)

var scoresCmd = &cobra.Command{
	Use:   "scores <game>",
	Short: "Show high scores for a game",
	Long: `Display the top 10 scores for the specified game.

With --export the full score history is also written to an Excel workbook.
With --clear the history and the stored high score are wiped instead.

Examples:
  arcade scores 2048
  arcade scores memory
  arcade scores 2048 --export history.xlsx
  arcade scores memory --clear`,
	Args: cobra.ExactArgs(1),
	RunE: runScores,
}

func init() {
	scoresCmd.Flags().StringVar(&flagExport, "export", "", "Write every recorded score to an .xlsx file")
	scoresCmd.Flags().BoolVar(&flagClearScores, "clear", false, "Delete all scores and the high score for the game")
}

func runScores(cmd *cobra.Command, args []string) error {
	gameID := args[0]

	if !registry.Exists(gameID) {
		fmt.Fprintln(os.Stderr, "Run 'arcade list' to see available games.")
		return fmt.Errorf("unknown game %q", gameID)
	}

	game, err := registry.Create(gameID)
	if err != nil {
		return fmt.Errorf("create game: %w", err)
	}

	store, err := storage.Open(appConfig.Arcade.DBPath)
	if err != nil {
		return fmt.Errorf("open scores database: %w", err)
	}
	defer store.Close()

	out := cmd.OutOrStdout()

	if flagClearScores {
		if err := store.ClearScores(gameID); err != nil {
			return err
		}
		if err := store.ResetHighScore(gameID); err != nil {
			return err
		}
		fmt.Fprintf(out, "Cleared scores for %s\n", game.Title())
		return nil
	}

	scores, err := store.TopScores(gameID, 10)
	if err != nil {
		return fmt.Errorf("retrieve scores: %w", err)
	}

	fmt.Fprintf(out, "High Scores - %s\n", game.Title())
	fmt.Fprintln(out)

	if len(scores) == 0 {
		fmt.Fprintln(out, "No scores recorded yet.")
		fmt.Fprintln(out)
		fmt.Fprintf(out, "Play 'arcade play %s' to set the first high score!\n", gameID)
	} else {
		fmt.Fprintf(out, "  %-4s  %-10s  %s\n", "Rank", "Score", "Date")
		fmt.Fprintf(out, "  %-4s  %-10s  %s\n", "----", "-----", "----")
		for i, entry := range scores {
			fmt.Fprintf(out, "  %-4d  %-10d  %s\n", i+1, entry.Score, entry.CreatedAt.Format("2006-01-02 15:04"))
		}

		fmt.Fprintln(out)
		if best, err := store.LoadHighScore(gameID); err == nil {
			fmt.Fprintf(out, "Best: %d\n", best)
		}
		if bestGame, err := store.BestScore(gameID); err == nil {
			fmt.Fprintf(out, "Best finished game: %d\n", bestGame)
		}
	}

	if flagExport != "" {
		history, err := store.AllScores(gameID)
		if err != nil {
			return fmt.Errorf("retrieve score history: %w", err)
		}
		if err := storage.ExportXLSX(flagExport, history); err != nil {
			return err
		}
		fmt.Fprintf(out, "Exported %d entries to %s\n", len(history), flagExport)
	}
	return nil
}
