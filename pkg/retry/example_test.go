package retry_test

import (
	"context"
	"fmt"
	"time"

	"unliker/pkg/browser"
	"unliker/pkg/retry"
)

func ExampleDoWithResult() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	opts := browser.Options{
		Headless: true,
		Cookies:  browser.SessionCookies("YOUR_AUTH_TOKEN", "YOUR_CT0"),
	}

	session, err := retry.DoWithResult(ctx, func(ctx context.Context) (*browser.RodSession, error) {
		return browser.LaunchRod(ctx, opts)
	}, &retry.Config{MaxAttempts: 3, Backoff: retry.DefaultExponentialBackoff()})
	if err != nil {
		fmt.Printf("launch failed: %v\n", err)
		return
	}
	defer session.Close()

	if err := session.Navigate(ctx, "https://x.com/home"); err != nil {
		fmt.Printf("navigate failed: %v\n", err)
	}
}
