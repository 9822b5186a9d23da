package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/merge-arcade/internal/platform/web"
	"github.com/vovakirdan/merge-arcade/internal/storage"
)

var flagWebAddr string

var webCmd = &cobra.Command{
	Use:   "web",
	Short: "Start the 2048 HTTP API",
	Long: `Start an HTTP server exposing 2048 sessions as JSON resources.

Endpoints:
  POST   /api/sessions                 Create a session
  GET    /api/sessions                 List session ids
  GET    /api/sessions/{id}            Current board
  DELETE /api/sessions/{id}            Drop a session
  POST   /api/sessions/{id}/move       {"direction": "left"}
  POST   /api/sessions/{id}/restart    Start over
  GET    /api/scores/{game}?limit=10   Top scores
  GET    /ws/{id}                      Live board updates

Examples:
  arcade web
  arcade web --addr :9000 --db ./scores.db`,
	RunE: runWeb,
}

func init() {
	webCmd.Flags().StringVar(&flagWebAddr, "addr", "", "HTTP listen address (default from config, :8080)")
}

func runWeb(_ *cobra.Command, _ []string) error {
	logger := serverLogger("arcade-web")

	addr := appConfig.Web.Address
	if flagWebAddr != "" {
		addr = flagWebAddr
	}

	var sessionStore web.Store
	store, err := storage.Open(appConfig.Arcade.DBPath)
	if err != nil {
		logger.Warn("scores database unavailable, sessions will not persist", "error", err)
	} else {
		defer store.Close()
		sessionStore = store
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := web.NewHub(logger)
	go hub.Run(ctx)

	manager := web.NewManager(sessionStore, logger)
	if idle := time.Duration(appConfig.Web.SessionIdleMinutes) * time.Minute; idle > 0 {
		go manager.RunSweeper(ctx, time.Minute, idle)
	}

	server := web.NewServer(manager, hub, logger)
	return server.ListenAndServe(ctx, addr)
}
