// Package control exposes the unlike controller's start and stop triggers
// to remote callers.
//
// Two surfaces are provided:
//   - an HTTP API served by gin (unliker serve)
//   - an MCP tool server over stdio (unliker mcp)
//
// Both only flip the controller's flags and read its Status snapshot, so
// they are safe to use while the loop runs on its own goroutine.
package control

import (
	"context"

	"unliker/pkg/unlike"
)

// Controller is the part of unlike.Controller the surfaces drive
type Controller interface {
	Start(ctx context.Context) error
	Stop() error
	Status() unlike.Status
}
