package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/merge-arcade/internal/platform/tui"
	"github.com/vovakirdan/merge-arcade/internal/registry"
)

var playCmd = &cobra.Command{
	Use:   "play <game>",
	Short: "Play a game",
	Long: `Start playing the specified game.

Controls:
  Arrows/WASD/HJKL  - Slide tiles (2048) or pick a pad (memory)
  Enter/Space       - Start a round (memory)
  P                 - Pause
  R                 - Restart
  Q/Ctrl+C          - Quit
  Ctrl+S            - Save a screenshot

Examples:
  arcade play 2048
  arcade play memory
  arcade play 2048 --seed 42
  arcade play 2048 --config ./arcade.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runPlay,
}

func runPlay(_ *cobra.Command, args []string) error {
	gameID := args[0]

	if !registry.Exists(gameID) {
		fmt.Fprintln(os.Stderr, "Run 'arcade list' to see available games.")
		return fmt.Errorf("unknown game %q", gameID)
	}

	game, err := registry.Create(gameID)
	if err != nil {
		return fmt.Errorf("create game: %w", err)
	}

	logger, logCloser, err := gameLogger()
	if err != nil {
		return err
	}
	defer logCloser.Close()

	store := openStore()
	if store != nil {
		defer store.Close()
	}

	if err := tui.Run(game, store, runtimeConfig(), logger); err != nil {
		return fmt.Errorf("run game: %w", err)
	}
	return nil
}
