package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the unliker
type Config struct {
	// x.com session credentials
	Session SessionConfig `yaml:"session" json:"session"`

	// Browser driver settings
	Browser BrowserConfig `yaml:"browser" json:"browser"`

	// Page selectors used to find targets
	Selectors SelectorConfig `yaml:"selectors" json:"selectors"`

	// Loop pacing and ceilings
	Unlike UnlikeConfig `yaml:"unlike" json:"unlike"`

	// Fixed-window rate limiting
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`

	// Progress persistence
	Progress ProgressConfig `yaml:"progress" json:"progress"`

	// HTTP control API
	Control ControlConfig `yaml:"control" json:"control"`

	// Notification preferences
	Notifications NotificationConfig `yaml:"notifications" json:"notifications"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// SessionConfig holds the cookies that authenticate the browser session
type SessionConfig struct {
	Username  string `yaml:"username" json:"username"`
	AuthToken string `yaml:"auth_token" json:"auth_token"`
	CSRFToken string `yaml:"csrf_token" json:"csrf_token"`
	UserAgent string `yaml:"user_agent" json:"user_agent"`
}

// BrowserConfig holds browser driver configuration
type BrowserConfig struct {
	Driver            string        `yaml:"driver" json:"driver"`
	Headless          bool          `yaml:"headless" json:"headless"`
	BinPath           string        `yaml:"bin_path" json:"bin_path"`
	StartURL          string        `yaml:"start_url" json:"start_url"`
	CookiesFile       string        `yaml:"cookies_file" json:"cookies_file"`
	NavigationTimeout time.Duration `yaml:"navigation_timeout" json:"navigation_timeout"`
	LaunchAttempts    int           `yaml:"launch_attempts" json:"launch_attempts"`
	ScreenshotDir     string        `yaml:"screenshot_dir" json:"screenshot_dir"`
	Overlay           bool          `yaml:"overlay" json:"overlay"`
}

// SelectorConfig holds the CSS selectors for the likes timeline
type SelectorConfig struct {
	Unlike  string `yaml:"unlike" json:"unlike"`
	Article string `yaml:"article" json:"article"`
	Text    string `yaml:"text" json:"text"`
}

// UnlikeConfig holds the controller's pacing policy
type UnlikeConfig struct {
	MaxActions     int           `yaml:"max_actions" json:"max_actions"`
	BaseDelay      time.Duration `yaml:"base_delay" json:"base_delay"`
	DelayIncrement time.Duration `yaml:"delay_increment" json:"delay_increment"`
	DelayDecrement time.Duration `yaml:"delay_decrement" json:"delay_decrement"`
	DecayThreshold time.Duration `yaml:"decay_threshold" json:"decay_threshold"`
	RetryCeiling   int           `yaml:"retry_ceiling" json:"retry_ceiling"`
	SettleDelay    time.Duration `yaml:"settle_delay" json:"settle_delay"`
	ReportInterval time.Duration `yaml:"report_interval" json:"report_interval"`
	LabelMaxLength int           `yaml:"label_max_length" json:"label_max_length"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Window     time.Duration `yaml:"window" json:"window"`
	MaxActions int           `yaml:"max_actions" json:"max_actions"`
}

// ProgressConfig selects where the unlike counter is persisted
type ProgressConfig struct {
	Backend     string `yaml:"backend" json:"backend"`
	Key         string `yaml:"key" json:"key"`
	File        string `yaml:"file" json:"file"`
	PostgresDSN string `yaml:"postgres_dsn" json:"postgres_dsn"`
}

// ControlConfig holds the HTTP control API settings
type ControlConfig struct {
	Listen string `yaml:"listen" json:"listen"`
}

// NotificationConfig holds notification preferences
type NotificationConfig struct {
	Enabled          bool   `yaml:"enabled" json:"enabled"`
	OnComplete       bool   `yaml:"on_complete" json:"on_complete"`
	OnError          bool   `yaml:"on_error" json:"on_error"`
	NotificationType string `yaml:"notification_type" json:"notification_type"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// Supported values for enumerated settings
var (
	Drivers          = []string{"rod", "chromedp"}
	ProgressBackends = []string{"file", "browser", "memory", "postgres"}
)

// DefaultConfig returns a Config instance with the stock pacing policy
func DefaultConfig() *Config {
	return &Config{
		Session: SessionConfig{
			UserAgent: "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
		},
		Browser: BrowserConfig{
			Driver:            "rod",
			Headless:          true,
			NavigationTimeout: 60 * time.Second,
			LaunchAttempts:    3,
			Overlay:           true,
		},
		Selectors: SelectorConfig{
			Unlike:  `[data-testid="unlike"]`,
			Article: "article",
			Text:    `[data-testid="tweetText"]`,
		},
		Unlike: UnlikeConfig{
			MaxActions:     2500,
			BaseDelay:      100 * time.Millisecond,
			DelayIncrement: 200 * time.Millisecond,
			DelayDecrement: 50 * time.Millisecond,
			DecayThreshold: 1000 * time.Millisecond,
			RetryCeiling:   3,
			SettleDelay:    3000 * time.Millisecond,
			ReportInterval: 60 * time.Second,
			LabelMaxLength: 150,
		},
		RateLimit: RateLimitConfig{
			Window:     60 * time.Second,
			MaxActions: 50,
		},
		Progress: ProgressConfig{
			Backend: "file",
			Key:     "unlikeCount",
		},
		Control: ControlConfig{
			Listen: "127.0.0.1:18070",
		},
		Notifications: NotificationConfig{
			Enabled:          true,
			OnComplete:       true,
			OnError:          false,
			NotificationType: "terminal",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// StartURL returns the page the loop runs on. Without an explicit URL the
// signed-in user's likes timeline is used.
func (c *Config) StartURL() string {
	if c.Browser.StartURL != "" {
		return c.Browser.StartURL
	}
	if c.Session.Username != "" {
		return "https://x.com/" + strings.TrimPrefix(c.Session.Username, "@") + "/likes"
	}
	return "https://x.com/"
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	// Session credentials
	if username := os.Getenv("UNLIKER_USERNAME"); username != "" {
		c.Session.Username = username
	}
	if token := os.Getenv("UNLIKER_AUTH_TOKEN"); token != "" {
		c.Session.AuthToken = token
	}
	if csrf := os.Getenv("UNLIKER_CSRF_TOKEN"); csrf != "" {
		c.Session.CSRFToken = csrf
	}
	if userAgent := os.Getenv("UNLIKER_USER_AGENT"); userAgent != "" {
		c.Session.UserAgent = userAgent
	}

	// Browser
	if driver := os.Getenv("UNLIKER_DRIVER"); driver != "" {
		c.Browser.Driver = strings.ToLower(driver)
	}
	if headless := os.Getenv("UNLIKER_HEADLESS"); headless != "" {
		val, err := strconv.ParseBool(headless)
		if err != nil {
			return fmt.Errorf("invalid UNLIKER_HEADLESS value %q: %w", headless, err)
		}
		c.Browser.Headless = val
	}
	// ROD_BROWSER_BIN is what rod's own launcher honours
	for _, key := range []string{"ROD_BROWSER_BIN", "UNLIKER_BROWSER_BIN"} {
		if bin := os.Getenv(key); bin != "" {
			c.Browser.BinPath = bin
		}
	}
	if startURL := os.Getenv("UNLIKER_START_URL"); startURL != "" {
		c.Browser.StartURL = startURL
	}

	// Loop ceiling
	if maxActions := os.Getenv("UNLIKER_MAX_ACTIONS"); maxActions != "" {
		var val int
		fmt.Sscanf(maxActions, "%d", &val)
		if val > 0 {
			c.Unlike.MaxActions = val
		}
	}

	// Progress persistence
	if backend := os.Getenv("UNLIKER_PROGRESS_BACKEND"); backend != "" {
		c.Progress.Backend = strings.ToLower(backend)
	}
	if dsn := os.Getenv("UNLIKER_POSTGRES_DSN"); dsn != "" {
		c.Progress.PostgresDSN = dsn
	}

	// Control API
	if listen := os.Getenv("UNLIKER_LISTEN"); listen != "" {
		c.Control.Listen = listen
	}

	// Notifications
	if notifEnabled := os.Getenv("UNLIKER_NOTIFICATIONS_ENABLED"); notifEnabled != "" {
		c.Notifications.Enabled = strings.ToLower(notifEnabled) == "true"
	}

	// Logging level
	if logLevel := os.Getenv("UNLIKER_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFile := os.Getenv("UNLIKER_LOG_FILE"); logFile != "" {
		c.Logging.File = logFile
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = FindConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// FindConfigFile searches for a config file in the standard locations
func FindConfigFile() string {
	for _, loc := range SearchPaths() {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}
	return ""
}

// SearchPaths lists config file locations in order of precedence
func SearchPaths() []string {
	home := os.Getenv("HOME")
	return []string{
		".unliker.yaml",
		".unliker.yml",
		filepath.Join(home, ".config", "unliker", "config.yaml"),
		filepath.Join(home, ".config", "unliker", "config.yml"),
		filepath.Join(home, ".unliker.yaml"),
	}
}

// DefaultPath is where `config init` writes a new file
func DefaultPath() string {
	return filepath.Join(os.Getenv("HOME"), ".config", "unliker", "config.yaml")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	// Browser
	if !contains(Drivers, strings.ToLower(c.Browser.Driver)) {
		errs = append(errs, fmt.Errorf("unknown browser driver %q (want one of %s)", c.Browser.Driver, strings.Join(Drivers, ", ")))
	}
	if c.Browser.NavigationTimeout <= 0 {
		errs = append(errs, errors.New("navigation timeout must be positive"))
	}
	if c.Browser.LaunchAttempts <= 0 {
		errs = append(errs, errors.New("launch attempts must be positive"))
	}

	// Selectors
	if c.Selectors.Unlike == "" {
		errs = append(errs, errors.New("unlike selector is required"))
	}
	if c.Selectors.Article == "" || c.Selectors.Text == "" {
		errs = append(errs, errors.New("article and text selectors are required"))
	}

	// Pacing
	if c.Unlike.MaxActions <= 0 {
		errs = append(errs, errors.New("max actions must be positive"))
	}
	if c.Unlike.BaseDelay < 0 || c.Unlike.DelayIncrement < 0 || c.Unlike.DelayDecrement < 0 {
		errs = append(errs, errors.New("pacing delays cannot be negative"))
	}
	if c.Unlike.RetryCeiling <= 0 {
		errs = append(errs, errors.New("retry ceiling must be positive"))
	}
	if c.Unlike.SettleDelay < 0 {
		errs = append(errs, errors.New("settle delay cannot be negative"))
	}
	if c.Unlike.ReportInterval <= 0 {
		errs = append(errs, errors.New("report interval must be positive"))
	}
	if c.Unlike.LabelMaxLength <= 0 {
		errs = append(errs, errors.New("label max length must be positive"))
	}

	// Rate limiting
	if c.RateLimit.Window <= 0 {
		errs = append(errs, errors.New("rate limit window must be positive"))
	}
	if c.RateLimit.MaxActions <= 0 {
		errs = append(errs, errors.New("rate limit max actions must be positive"))
	}

	// Progress
	backend := strings.ToLower(c.Progress.Backend)
	if !contains(ProgressBackends, backend) {
		errs = append(errs, fmt.Errorf("unknown progress backend %q (want one of %s)", c.Progress.Backend, strings.Join(ProgressBackends, ", ")))
	}
	if c.Progress.Key == "" {
		errs = append(errs, errors.New("progress key is required"))
	}
	if backend == "postgres" && c.Progress.PostgresDSN == "" {
		errs = append(errs, errors.New("postgres progress backend requires postgres_dsn"))
	}

	// Validate logging
	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	// Validate notification type
	validNotifTypes := map[string]bool{
		"terminal": true, "desktop": true, "none": true,
	}
	if !validNotifTypes[strings.ToLower(c.Notifications.NotificationType)] {
		errs = append(errs, errors.New("invalid notification type"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// HasSession reports whether both session cookies are present
func (c *Config) HasSession() bool {
	return c.Session.AuthToken != "" && c.Session.CSRFToken != ""
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Session cookies may be in here
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if driver, ok := flags["driver"].(string); ok && driver != "" {
		c.Browser.Driver = strings.ToLower(driver)
	}
	if headless, ok := flags["headless"].(bool); ok {
		c.Browser.Headless = headless
	}
	if startURL, ok := flags["start-url"].(string); ok && startURL != "" {
		c.Browser.StartURL = startURL
	}
	if maxActions, ok := flags["max-actions"].(int); ok && maxActions > 0 {
		c.Unlike.MaxActions = maxActions
	}
	if backend, ok := flags["progress-backend"].(string); ok && backend != "" {
		c.Progress.Backend = strings.ToLower(backend)
	}
	if listen, ok := flags["listen"].(string); ok && listen != "" {
		c.Control.Listen = listen
	}
	if enabled, ok := flags["notifications"].(bool); ok {
		c.Notifications.Enabled = enabled
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".unliker.env"))

	// Start with defaults
	config := DefaultConfig()

	// Load from config file
	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	// Override with environment variables (includes values from .env)
	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Override with command line flags
	config.MergeCommandLineFlags(flags)

	// Validate final configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
