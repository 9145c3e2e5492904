package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"unliker/pkg/logger"
	"unliker/pkg/progress"
	"unliker/pkg/ui"
)

var resetYes bool

// progressCmd represents the progress command
var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Inspect or reset the persisted unlike counter",
	Long: `Inspect or reset the persisted unlike counter.

The counter lives in the backend selected by progress.backend. The browser
backend keeps it in x.com's localStorage and can only be read by a run.`,
}

var progressShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the persisted counter",
	Args:  cobra.NoArgs,
	RunE:  runProgressShow,
}

var progressResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset the persisted counter to zero",
	Long: `Delete the persisted counter. The next run starts counting from zero and
the action ceiling applies afresh.`,
	Args: cobra.NoArgs,
	RunE: runProgressReset,
}

func init() {
	rootCmd.AddCommand(progressCmd)
	progressCmd.AddCommand(progressShowCmd, progressResetCmd)
	progressCmd.PersistentFlags().StringVar(&progressBackend, "progress-backend", "", "backend to inspect (file, memory, postgres)")
	progressResetCmd.Flags().BoolVarP(&resetYes, "yes", "y", false, "do not ask for confirmation")
}

// openProgress opens the configured store without a browser
func openProgress(ctx context.Context) (progress.Store, string, string, error) {
	cfg, err := loadConfig(map[string]interface{}{"progress-backend": progressBackend})
	if err != nil {
		return nil, "", "", err
	}
	if err := logger.Initialize(&cfg.Logging); err != nil {
		return nil, "", "", err
	}

	backend := strings.ToLower(cfg.Progress.Backend)
	if backend == "browser" {
		return nil, "", "", errors.New("the browser backend lives in the page's localStorage; it is shown by 'unliker run'")
	}

	store, err := progress.Open(ctx, cfg.Progress, nil)
	if err != nil {
		return nil, "", "", err
	}

	location := backend
	switch s := store.(type) {
	case *progress.FileStore:
		location = s.Path()
	case *progress.PostgresStore:
		location = "postgres"
	}
	return store, location, cfg.Progress.Key, nil
}

func runProgressShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	store, location, key, err := openProgress(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	value, ok, err := store.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to read progress: %w", err)
	}

	record := ui.ProgressRecord{
		Backend:  backendName(store),
		Location: location,
		Key:      key,
		Value:    value,
	}
	if ok {
		if info, err := os.Stat(location); err == nil {
			record.Updated = info.ModTime()
		}
	}
	ui.PrintProgress(os.Stdout, []ui.ProgressRecord{record})
	return nil
}

func runProgressReset(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	store, location, key, err := openProgress(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	if !resetYes {
		fmt.Printf("Reset %s in %s? (y/N): ", key, location)
		answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(answer)), "y") {
			return nil
		}
	}

	tracker := progress.NewTracker(store, key, logger.GetLogger())
	resetCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := tracker.Reset(resetCtx); err != nil {
		return err
	}
	ui.PrintSuccess("Progress reset")
	return nil
}

func backendName(store progress.Store) string {
	switch store.(type) {
	case *progress.FileStore:
		return "file"
	case *progress.PostgresStore:
		return "postgres"
	case *progress.MemoryStore:
		return "memory"
	default:
		return "unknown"
	}
}
