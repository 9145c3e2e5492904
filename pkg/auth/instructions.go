package auth

import (
	"fmt"
	"io"
	"strings"
)

// WriteCookieGuide prints how to copy the x.com session cookies out of a browser
func WriteCookieGuide(w io.Writer) {
	rule := strings.Repeat("=", 72)
	lines := []string{
		rule,
		"X SESSION COOKIE GUIDE",
		rule,
		"",
		"unliker drives a real browser signed in as you. It needs two cookies",
		"from a browser where you are already logged in to x.com.",
		"",
		"STEP 1: Open https://x.com and make sure your timeline loads.",
		"",
		"STEP 2: Open Developer Tools (F12, or Cmd+Option+I on macOS).",
		"   Chrome/Edge/Brave: Application tab > Storage > Cookies > https://x.com",
		"   Firefox:           Storage tab > Cookies > https://x.com",
		"   Safari:            Storage tab > Cookies > x.com",
		"",
		"STEP 3: Copy these values:",
		"   auth_token   long hex string, HttpOnly (required)",
		"   ct0          CSRF token (recommended)",
		"",
		"STEP 4: Save them:",
		"   unliker auth login",
		"",
		"   or export them for a single run:",
		"   export " + EnvAuthToken + "=...",
		"   export " + EnvCSRFToken + "=...",
		"",
		"The cookies grant full access to your account. Keep them private.",
		"Logging out of x.com in that browser invalidates them.",
		rule,
	}
	for _, line := range lines {
		fmt.Fprintln(w, line)
	}
}

// WriteQuickGuide prints a short reminder of where the cookies live
func WriteQuickGuide(w io.Writer) {
	fmt.Fprintln(w, "Quick guide: DevTools > Application > Cookies > https://x.com")
	fmt.Fprintln(w, "Copy auth_token (required) and ct0, then run: unliker auth login")
}
