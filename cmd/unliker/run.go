package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"unliker/pkg/config"
	"unliker/pkg/logger"
	"unliker/pkg/ui"
	"unliker/pkg/ui/tui"
)

const finishTimeout = 2 * time.Minute

var (
	// Run command flags
	useTUI          bool
	driverName      string
	headless        bool
	maxActions      int
	accountName     string
	startURL        string
	progressBackend string
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Unlike every post on the likes timeline",
	Long: `Open the likes timeline in a browser and unlike posts until none are left
or the action ceiling is reached.

Credentials are taken, in order, from:
  - the --account stored credentials
  - session.auth_token in the config file or UNLIKER_AUTH_TOKEN
  - the most recently stored account ('unliker auth login')

Press Ctrl+C once to stop after the current batch, twice to abort.`,
	Example: `  # Run with the console display
  unliker run

  # Watch the browser while it works
  unliker run --headless=false

  # Use the terminal dashboard and the chromedp driver
  unliker run --tui --driver chromedp

  # Stop after 100 unlikes in total
  unliker run --max-actions 100`,
	Args: cobra.NoArgs,
	RunE: runUnlike,
}

func init() {
	rootCmd.AddCommand(runCmd)
	addSessionFlags(runCmd)
	runCmd.Flags().BoolVar(&useTUI, "tui", false, "use the interactive terminal dashboard")
	runCmd.Flags().IntVar(&maxActions, "max-actions", 0, "stop once the total reaches this many unlikes")
}

// addSessionFlags registers the flags shared by every command that drives a browser
func addSessionFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&driverName, "driver", "", "browser driver (rod, chromedp)")
	cmd.Flags().BoolVar(&headless, "headless", true, "run the browser without a window")
	cmd.Flags().StringVarP(&accountName, "account", "a", "", "use a specific stored account")
	cmd.Flags().StringVar(&startURL, "start-url", "", "page to unlike from (default: your likes timeline)")
	cmd.Flags().StringVar(&progressBackend, "progress-backend", "", "where progress is kept (file, browser, memory, postgres)")
}

func sessionFlags(cmd *cobra.Command) map[string]interface{} {
	flags := map[string]interface{}{
		"driver":           driverName,
		"start-url":        startURL,
		"progress-backend": progressBackend,
		"max-actions":      maxActions,
	}
	if cmd.Flags().Changed("headless") {
		flags["headless"] = headless
	}
	return flags
}

func runUnlike(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(sessionFlags(cmd))
	if err != nil {
		return err
	}

	// The dashboard owns the terminal, so console logs are dropped there
	var console io.Writer = os.Stderr
	if useTUI {
		console = io.Discard
	}
	if err := logger.InitializeWithWriter(&cfg.Logging, console); err != nil {
		return err
	}
	log := logger.GetLogger()
	log.WithField("version", version).Info("unliker starting")

	if err := resolveSession(cfg, accountName, log); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	if useTUI {
		return runDashboard(ctx, cancel, cfg, log)
	}
	return runConsole(ctx, cancel, cfg, log)
}

func runConsole(ctx context.Context, cancel context.CancelFunc, cfg *config.Config, log logger.Logger) error {
	ui.PrintLogo()
	ui.PrintInfo("Start page", cfg.StartURL())
	ui.PrintInfo("Driver", cfg.Browser.Driver)

	display := ui.NewProgressDisplay(cfg.Unlike.MaxActions, cfg.Logging.Level == "debug")
	a, err := newApp(ctx, cfg, log, display, notificationReporter(cfg, os.Stdout))
	if err != nil {
		return err
	}
	defer a.close()

	go handleSignals(ctx, cancel, a)

	ui.PrintHighlight("[UNLIKING]")
	_, err = a.ctrl.Run(ctx)
	return err
}

func runDashboard(ctx context.Context, cancel context.CancelFunc, cfg *config.Config, log logger.Logger) error {
	a, err := newApp(ctx, cfg, log, notificationReporter(cfg, io.Discard))
	if err != nil {
		return err
	}
	defer a.close()

	dash := tui.NewTUI(ctx, a.ctrl, cfg.Unlike.MaxActions)
	a.slot.set(dash)

	err = dash.Run()
	a.slot.set(nil)
	if err != nil {
		return err
	}

	go handleSignals(ctx, cancel, a)
	a.waitIdle(finishTimeout)
	return nil
}

// handleSignals turns the first interrupt into a stop request and the
// second into cancellation. It returns once ctx ends.
func handleSignals(ctx context.Context, cancel context.CancelFunc, a *app) {
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	interrupts := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-sigCh:
			interrupts++
			if interrupts == 1 {
				if err := a.ctrl.Stop(); err == nil {
					ui.PrintWarning("Stopping after the current batch (Ctrl+C again to abort)")
				}
				continue
			}
			a.log.Warn("Aborting")
			cancel()
			return
		}
	}
}
