package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"unliker/pkg/auth"
	"unliker/pkg/config"
	"unliker/pkg/ui"
)

var logoutAll bool

// authCmd represents the auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage x.com session credentials",
	Long: `Manage stored x.com session cookies.

Credentials are stored using:
  - System keychain (when available)
  - Encrypted file with PBKDF2 key derivation
  - Environment variables (read only)

The auth_token cookie grants full access to your account. Never share it.`,
}

var loginCmd = &cobra.Command{
	Use:   "login [username]",
	Short: "Store x.com session cookies securely",
	Long: `Store the auth_token and ct0 cookies from a signed-in browser.

You will be prompted for:
  - x.com username (if not provided)
  - auth_token cookie (hidden)
  - ct0 cookie (hidden, recommended)
  - User Agent (optional)`,
	Example: `  unliker auth login
  unliker auth login myhandle`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout [username]",
	Short: "Remove stored credentials",
	Example: `  unliker auth logout myhandle
  unliker auth logout --all`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLogout,
}

var authListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored accounts",
	Args:  cobra.NoArgs,
	RunE:  runAuthList,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which session the next run will use",
	Args:  cobra.NoArgs,
	RunE:  runAuthStatus,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(loginCmd, logoutCmd, authListCmd, authStatusCmd)
	logoutCmd.Flags().BoolVar(&logoutAll, "all", false, "remove every stored account")
}

func runLogin(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	reader := bufio.NewReader(os.Stdin)
	auth.WriteCookieGuide(os.Stdout)
	fmt.Println()

	var username string
	if len(args) > 0 {
		username = args[0]
	} else {
		username = prompt(reader, "x.com username: ")
	}
	username = strings.TrimPrefix(strings.TrimSpace(username), "@")
	if username == "" {
		return errors.New("username is required")
	}

	if existing, _ := manager.Retrieve(username); existing != nil {
		answer := prompt(reader, fmt.Sprintf("Account '%s' already exists. Update it? (y/N): ", username))
		if !strings.HasPrefix(strings.ToLower(answer), "y") {
			return nil
		}
	}

	fmt.Println("\nPaste your cookie values (input is hidden):")
	token, err := readSecret(reader, "auth_token: ")
	if err != nil {
		return fmt.Errorf("failed to read auth_token: %w", err)
	}
	if !looksLikeHex(token, 32) {
		ui.PrintWarning("That auth_token looks unusual", "expected a long hex string")
	}

	csrf, err := readSecret(reader, "ct0: ")
	if err != nil {
		return fmt.Errorf("failed to read ct0: %w", err)
	}
	if csrf == "" {
		ui.PrintWarning("No ct0 given", "x.com will issue one on first load")
	}

	userAgent := prompt(reader, "User Agent (Enter for default): ")

	account := &auth.Account{
		Username:  username,
		AuthToken: token,
		CSRFToken: csrf,
		UserAgent: userAgent,
	}
	if err := manager.Store(account); err != nil {
		return fmt.Errorf("failed to store credentials: %w", err)
	}

	clean := auth.SanitizeAccount(account)
	fmt.Println()
	ui.PrintInfo("Username", clean.Username)
	ui.PrintInfo("auth_token", clean.AuthToken)
	if clean.CSRFToken != "" {
		ui.PrintInfo("ct0", clean.CSRFToken)
	}
	ui.PrintSuccess("Credentials stored for @" + username)
	fmt.Println("\nStart unliking with:")
	fmt.Println("  unliker run")
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	if logoutAll {
		if err := manager.DeleteAll(); err != nil {
			return fmt.Errorf("failed to remove accounts: %w", err)
		}
		ui.PrintSuccess("All accounts removed")
		return nil
	}

	username := ""
	if len(args) > 0 {
		username = args[0]
	} else {
		acc, err := manager.RetrieveDefault()
		if err != nil {
			return errors.New("no stored accounts found")
		}
		answer := prompt(bufio.NewReader(os.Stdin), fmt.Sprintf("Remove account '%s'? (y/N): ", acc.Username))
		if !strings.HasPrefix(strings.ToLower(answer), "y") {
			return nil
		}
		username = acc.Username
	}

	if err := manager.Delete(username); err != nil {
		return fmt.Errorf("failed to remove %s: %w", username, err)
	}
	ui.PrintSuccess("Account removed: " + username)
	return nil
}

func runAuthList(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	accounts, err := manager.List()
	if err != nil {
		return fmt.Errorf("failed to list accounts: %w", err)
	}
	if len(accounts) == 0 {
		ui.PrintInfo("No stored accounts", "Use 'unliker auth login' to add one")
		return nil
	}

	ui.PrintHighlight("Stored Accounts")
	for i, account := range accounts {
		clean := auth.SanitizeAccount(account)
		fmt.Printf("\n%d. @%s\n", i+1, clean.Username)
		fmt.Printf("   auth_token: %s\n", clean.AuthToken)
		if clean.CSRFToken != "" {
			fmt.Printf("   ct0:        %s\n", clean.CSRFToken)
		}
		if !clean.LastModified.IsZero() {
			fmt.Printf("   Saved:      %s\n", clean.LastModified.Local().Format(time.DateTime))
		}
	}
	return nil
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		return err
	}

	if cfg.Session.AuthToken != "" {
		ui.PrintInfo("Source", "configuration or environment")
		ui.PrintInfo("auth_token", auth.SanitizeAccount(&auth.Account{AuthToken: cfg.Session.AuthToken}).AuthToken)
		ui.PrintInfo("Start page", cfg.StartURL())
		return nil
	}

	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}
	acc, err := manager.RetrieveDefault()
	if err != nil {
		ui.PrintWarning("No session configured", "run 'unliker auth login'")
		auth.WriteQuickGuide(os.Stdout)
		return nil
	}

	applyAccount(cfg, acc)
	ui.PrintInfo("Source", "stored account @"+acc.Username)
	ui.PrintInfo("auth_token", auth.SanitizeAccount(acc).AuthToken)
	ui.PrintInfo("Start page", cfg.StartURL())
	return nil
}

func prompt(reader *bufio.Reader, label string) string {
	fmt.Print(label)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

// readSecret reads without echo on a terminal, falling back to a plain line
func readSecret(reader *bufio.Reader, label string) (string, error) {
	fmt.Print(label)
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		secret, err := term.ReadPassword(fd)
		fmt.Println()
		if err == nil {
			return strings.TrimSpace(string(secret)), nil
		}
	}
	input, err := reader.ReadString('\n')
	if err != nil && input == "" {
		return "", err
	}
	return strings.TrimSpace(input), nil
}

func looksLikeHex(s string, minLen int) bool {
	if len(s) < minLen {
		return false
	}
	for _, r := range s {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return false
		}
	}
	return true
}
