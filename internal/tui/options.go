package tui

import (
	"context"

	log "github.com/sirupsen/logrus"
)

// Options configures TUI startup behavior.
type Options struct {
	Remote Remote
	Logger log.FieldLogger
	// Context bounds every remote call. Defaults to context.Background.
	Context context.Context
}
