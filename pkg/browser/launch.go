package browser

import (
	"context"
	"fmt"
	"strings"
)

// Launch starts the named driver
func Launch(ctx context.Context, driver string, opts Options) (Session, error) {
	switch strings.ToLower(driver) {
	case "", "rod":
		s, err := LaunchRod(ctx, opts)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "chromedp":
		s, err := LaunchChromedp(ctx, opts)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown browser driver %q", driver)
	}
}
