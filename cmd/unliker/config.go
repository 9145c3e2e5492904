package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"unliker/pkg/auth"
	"unliker/pkg/config"
	"unliker/pkg/ui"
)

var forceInit bool

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage unliker configuration files.

Configuration is loaded from, highest priority first:
  - Command line flags
  - Environment variables (UNLIKER_*, also read from .env)
  - Configuration file
  - Default values`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write an example configuration file",
	Long: `Write an example configuration file with every option and its default.

The file is written to --config, or to ~/.config/unliker/config.yaml.`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration with secrets masked",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigValidate,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "List the locations searched for a configuration file",
	Args:  cobra.NoArgs,
	RunE:  runConfigPath,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd, configShowCmd, configValidateCmd, configPathCmd)
	configInitCmd.Flags().BoolVar(&forceInit, "force", false, "overwrite an existing file")
}

const exampleConfig = `# unliker configuration
#
# Every option can also be set through UNLIKER_* environment variables,
# for example UNLIKER_AUTH_TOKEN or UNLIKER_MAX_ACTIONS.

# x.com session. Prefer 'unliker auth login' over storing cookies here.
session:
  username: ""          # used to build the likes URL
  auth_token: ""        # auth_token cookie
  csrf_token: ""        # ct0 cookie
  # user_agent: ""     # default is a desktop Chrome UA

browser:
  driver: rod           # rod or chromedp
  headless: true
  bin_path: ""          # Chrome binary, empty to auto-detect
  start_url: ""         # default https://x.com/<username>/likes
  cookies_file: ""      # JSON cookie jar loaded at launch and saved on exit
  navigation_timeout: 60s
  launch_attempts: 3
  screenshot_dir: ""    # failure screenshots, default in the data directory
  overlay: true         # status panel inside the page

selectors:
  unlike: '[data-testid="unlike"]'
  article: article
  text: '[data-testid="tweetText"]'

unlike:
  max_actions: 2500     # stop once the persisted total reaches this
  base_delay: 100ms
  delay_increment: 200ms
  delay_decrement: 50ms
  decay_threshold: 1s
  retry_ceiling: 3      # consecutive failures before a batch is abandoned
  settle_delay: 3s      # wait after scrolling for new posts
  report_interval: 60s
  label_max_length: 150

rate_limit:
  window: 60s
  max_actions: 50

progress:
  backend: file         # file, browser, memory or postgres
  key: unlikeCount
  file: ""              # default progress.json in the data directory
  postgres_dsn: ""

control:
  listen: 127.0.0.1:18070

notifications:
  enabled: true
  on_complete: true
  on_error: false
  notification_type: terminal   # terminal, desktop or none

logging:
  level: info
  file: ""
`

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := configFile
	if path == "" {
		path = config.DefaultPath()
	}

	if _, err := os.Stat(path); err == nil && !forceInit {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(exampleConfig), 0600); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	ui.PrintSuccess("Configuration file created: " + path)
	fmt.Println("\nNext steps:")
	fmt.Println("1. Run 'unliker auth login' to store your session")
	fmt.Println("2. Run 'unliker config validate' to check the file")
	fmt.Println("3. Start with 'unliker run'")
	return nil
}

func maskedConfig(cfg *config.Config) *config.Config {
	display := *cfg
	clean := auth.SanitizeAccount(&auth.Account{
		AuthToken: cfg.Session.AuthToken,
		CSRFToken: cfg.Session.CSRFToken,
	})
	display.Session.AuthToken = clean.AuthToken
	display.Session.CSRFToken = clean.CSRFToken
	if display.Progress.PostgresDSN != "" {
		display.Progress.PostgresDSN = "***"
	}
	return &display
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(nil)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(maskedConfig(cfg))
	if err != nil {
		return fmt.Errorf("failed to format configuration: %w", err)
	}

	ui.PrintHighlight("Current Configuration")
	fmt.Println()
	fmt.Print(string(data))

	source := configFile
	if source == "" {
		source = config.FindConfigFile()
	}
	if source == "" {
		source = "(none found)"
	}
	fmt.Println()
	ui.PrintInfo("Config file", source)
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	path := configFile
	if path == "" {
		path = config.FindConfigFile()
	}
	if path == "" {
		ui.PrintWarning("No configuration file found", "validating defaults and environment")
	} else {
		ui.PrintInfo("Validating", path)
	}

	cfg, err := config.Load(path, nil)
	if err != nil {
		ui.PrintError("Configuration is invalid")
		var joined interface{ Unwrap() []error }
		if errors.As(err, &joined) {
			for _, e := range joined.Unwrap() {
				fmt.Printf("  - %v\n", e)
			}
		}
		return err
	}

	var warnings []string
	if cfg.Session.AuthToken == "" {
		warnings = append(warnings, "no auth_token configured; stored credentials will be used")
	}
	if cfg.Session.Username == "" && cfg.Browser.StartURL == "" {
		warnings = append(warnings, "neither session.username nor browser.start_url is set; the run starts on https://x.com/")
	}
	if cfg.RateLimit.MaxActions > cfg.Unlike.MaxActions {
		warnings = append(warnings, "rate_limit.max_actions exceeds unlike.max_actions; the limiter never engages")
	}
	if len(warnings) > 0 {
		ui.PrintWarning("Configuration warnings:")
		for _, w := range warnings {
			fmt.Printf("  - %s\n", w)
		}
	}

	ui.PrintSuccess("Configuration is valid")
	fmt.Println("\nSummary:")
	fmt.Printf("  Driver:       %s (headless: %v)\n", cfg.Browser.Driver, cfg.Browser.Headless)
	fmt.Printf("  Start page:   %s\n", cfg.StartURL())
	fmt.Printf("  Max actions:  %d\n", cfg.Unlike.MaxActions)
	fmt.Printf("  Rate limit:   %d per %s\n", cfg.RateLimit.MaxActions, cfg.RateLimit.Window)
	fmt.Printf("  Progress:     %s (key %s)\n", cfg.Progress.Backend, cfg.Progress.Key)
	fmt.Printf("  Log level:    %s\n", cfg.Logging.Level)
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	found := config.FindConfigFile()
	for _, p := range config.SearchPaths() {
		marker := " "
		if p == found {
			marker = "*"
		}
		fmt.Printf("%s %s\n", marker, p)
	}
	fmt.Println()
	ui.PrintInfo("Default for 'config init'", config.DefaultPath())
	return nil
}
