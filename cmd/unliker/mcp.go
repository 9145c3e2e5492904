package main

import (
	"os"

	"github.com/spf13/cobra"

	"unliker/pkg/control"
	"unliker/pkg/logger"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve start, stop and status as MCP tools over stdio",
	Long: `Open the likes timeline and serve an MCP server on stdin/stdout with the
tools start_unliking, stop_unliking and unlike_status.

Logs go to stderr (or logging.file) so stdout stays reserved for the protocol.`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	addSessionFlags(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(sessionFlags(cmd))
	if err != nil {
		return err
	}
	if err := logger.InitializeWithWriter(&cfg.Logging, os.Stderr); err != nil {
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

	server := control.NewMCPServer(control.NewTools(ctx, a.ctrl, log), version)
	err = control.ServeStdio(ctx, server)

	a.waitIdle(finishTimeout)
	return err
}
