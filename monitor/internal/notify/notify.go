// Package notify delivers change notifications. The orchestrator talks to a
// single Notifier and calls it at most once per run with the full batch of
// changed sites, so one run never produces a notification storm.
package notify

import (
	"context"
	"log/slog"

	"github.com/vpacheco/sentinela/monitor/change"
)

// Notifier delivers one batch of change events. The batch is ordered and
// non-empty. Implementations report back only success or failure; message
// composition and transport are theirs.
type Notifier interface {
	Notify(ctx context.Context, events []change.Event) error
	Close() error
}

// Router fans a batch out to all configured notifiers. One notifier failing
// does not block the others — errors are logged and the first encountered
// is returned.
type Router struct {
	notifiers []Notifier
	logger    *slog.Logger
}

// NewRouter creates a fan-out router delivering to all notifiers.
func NewRouter(logger *slog.Logger, notifiers ...Notifier) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{notifiers: notifiers, logger: logger}
}

func (r *Router) Notify(ctx context.Context, events []change.Event) error {
	var firstErr error
	for _, n := range r.notifiers {
		if err := n.Notify(ctx, events); err != nil {
			r.logger.Warn("notify: delivery failed", "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (r *Router) Close() error {
	var firstErr error
	for _, n := range r.notifiers {
		if err := n.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
