// arcade is a terminal arcade built around a 2048 board engine.
//
// Usage:
//
//	arcade list              - List available games
//	arcade play <game>       - Play a game
//	arcade menu              - Start menu to pick games interactively
//	arcade scores <game>     - Show high scores for a game
//	arcade serve             - Start SSH server for remote play
//	arcade web               - Start the HTTP API for browser clients
//
// Global flags:
//
//	--fps <rate>     - Set tick rate (default: from config, 60)
//	--seed <value>   - Set RNG seed for reproducible gameplay
//	--db <path>      - Set database path (default: ~/.arcade/scores.db)
//	--config <path>  - Load a custom arcade.yaml
package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/merge-arcade/internal/config"
	"github.com/vovakirdan/merge-arcade/internal/core"
	"github.com/vovakirdan/merge-arcade/internal/games/memory"
	"github.com/vovakirdan/merge-arcade/internal/games/t2048"
	"github.com/vovakirdan/merge-arcade/internal/storage"
)

var (
	// Global flags
	flagFPS        int
	flagSeed       int64
	flagDBPath     string
	flagConfigPath string
	flagLogFile    string

	// appConfig is filled by loadConfig before any subcommand runs.
	appConfig config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "arcade",
	Short: "Merge Arcade - 2048 and friends in your terminal",
	Long: `Merge Arcade is a terminal arcade centred on the 2048 sliding-tile game.
Games can be played locally, over SSH, or through an HTTP API.

Available commands:
  list     - Show all available games
  play     - Play a specific game directly
  menu     - Interactive game picker menu
  scores   - View high scores
  serve    - Start SSH server for remote play
  web      - Start the HTTP API

Examples:
  arcade list
  arcade play 2048
  arcade menu
  arcade serve --ssh :2222
  arcade web --addr :8080
  arcade scores 2048 --export scores.xlsx`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 60, "Tick rate (frames per second)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.arcade/scores.db", "Path to scores database")
	rootCmd.PersistentFlags().StringVar(&flagConfigPath, "config", "", "Path to a custom arcade.yaml")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log-file", "", "Write game logs to this file (terminal play only)")

	// Add subcommands
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(webCmd)
}

// loadConfig reads arcade.yaml, lets explicit flags win over it and pushes
// the game tunables into their packages.
func loadConfig(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(flagConfigPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("fps") {
		cfg.Arcade.TickRate = flagFPS
	}
	if flags.Changed("db") {
		cfg.Arcade.DBPath = flagDBPath
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	t2048.Configure(t2048.Settings{Spawn4Prob: cfg.T2048.Spawn4Prob})
	memory.Configure(memory.Settings{
		StartDelayMS: cfg.Memory.StartDelayMS,
		StepMS:       cfg.Memory.StepMS,
		BlinkMS:      cfg.Memory.BlinkMS,
		RoundPauseMS: cfg.Memory.RoundPauseMS,
		PopupMS:      cfg.Memory.PopupMS,
	})

	appConfig = cfg
	return nil
}

// runtimeConfig builds the per-run config from the terminal size.
func runtimeConfig() core.RuntimeConfig {
	cfg := core.DefaultConfig()
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		cfg.ScreenW = w
		cfg.ScreenH = h
	}
	cfg.TickRate = appConfig.Arcade.TickRate
	cfg.Seed = flagSeed
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	return cfg
}

// openStore opens the scores database. Terminal play continues without
// persistence when it fails, so the error is only reported.
func openStore() *storage.Store {
	store, err := storage.Open(appConfig.Arcade.DBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open scores database: %v\n", err)
		return nil
	}
	return store
}

// serverLogger is used by the long-running servers.
func serverLogger(prefix string) *log.Logger {
	return log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
	})
}

// gameLogger must stay off the terminal while Bubble Tea owns it, so it
// writes to --log-file or nowhere. The returned closer is always non-nil.
func gameLogger() (*log.Logger, io.Closer, error) {
	if flagLogFile == "" {
		return log.New(io.Discard), io.NopCloser(nil), nil
	}
	f, err := os.OpenFile(flagLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	logger := log.NewWithOptions(f, log.Options{
		ReportTimestamp: true,
		Level:           log.DebugLevel,
		Prefix:          "arcade",
	})
	return logger, f, nil
}
