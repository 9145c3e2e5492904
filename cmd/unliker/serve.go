package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"unliker/pkg/control"
	"unliker/pkg/logger"
	"unliker/pkg/ui"
)

var (
	listenAddr string
	autoStart  bool
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Control the unliker over HTTP",
	Long: `Open the likes timeline and expose start, stop and status over HTTP.

Endpoints:
  GET  /health
  GET  /api/v1/status
  POST /api/v1/start   202 when started, 409 when already running
  POST /api/v1/stop    202 when requested, 409 when idle`,
	Example: `  unliker serve --listen 127.0.0.1:18070
  curl -X POST http://127.0.0.1:18070/api/v1/start`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	addSessionFlags(serveCmd)
	serveCmd.Flags().StringVar(&listenAddr, "listen", "", "address for the control API (default from config)")
	serveCmd.Flags().BoolVar(&autoStart, "start", false, "start unliking immediately")
}

func runServe(cmd *cobra.Command, args []string) error {
	flags := sessionFlags(cmd)
	flags["listen"] = listenAddr
	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}
	if err := logger.Initialize(&cfg.Logging); err != nil {
		return err
	}
	log := logger.GetLogger()

	if err := resolveSession(cfg, accountName, log); err != nil {
		return err
	}

	ctx, stop := runContext(cmd.Context())
	defer stop()

	a, err := newApp(ctx, cfg, log, notificationReporter(cfg, os.Stderr))
	if err != nil {
		return err
	}
	defer a.close()

	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	server := control.NewServer(ctx, a.ctrl, log)

	if autoStart {
		if err := a.ctrl.Start(ctx); err != nil {
			return err
		}
	}

	ui.PrintInfo("Control API", "http://"+cfg.Control.Listen)
	err = server.ListenAndServe(ctx, cfg.Control.Listen)

	// Runs are bound to ctx, so they are already winding down here
	a.waitIdle(finishTimeout)
	if err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

// runContext outlives a single MCP or HTTP request
func runContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
