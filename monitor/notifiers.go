package monitor

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/vpacheco/sentinela/monitor/internal/config"
	"github.com/vpacheco/sentinela/monitor/internal/notify"
)

// Notifier delivers one batch of change events.
type Notifier = notify.Notifier

// NewStdoutNotifier creates a JSON-lines notifier (nil writer = stdout).
func NewStdoutNotifier(w io.Writer) Notifier {
	return notify.NewStdout(w)
}

// NewWebhookNotifier creates a webhook POST notifier with retry.
func NewWebhookNotifier(url string, logger *slog.Logger) Notifier {
	return notify.NewWebhook(url, notify.WithWebhookLogger(logger))
}

// NewNotifierRouter fans one batch out to several notifiers.
func NewNotifierRouter(logger *slog.Logger, notifiers ...Notifier) Notifier {
	return notify.NewRouter(logger, notifiers...)
}

// NotifiersFromConfig assembles the notifier stack declared in the config.
// Returns nil when nothing is enabled — the orchestrator then runs in
// detect-only mode.
func NotifiersFromConfig(cfg *config.Config, logger *slog.Logger) (Notifier, error) {
	var ns []Notifier

	if cfg.Notify.Email.Enabled {
		e, err := notify.NewEmail(notify.EmailConfig{
			Host:       cfg.Notify.Email.Host,
			Port:       cfg.Notify.Email.Port,
			User:       cfg.Notify.Email.User,
			Password:   cfg.Notify.Email.Password,
			From:       cfg.Notify.Email.From,
			Recipients: cfg.Notify.Email.Recipients,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("monitor: email notifier: %w", err)
		}
		ns = append(ns, e)
	}
	if cfg.Notify.Webhook.Enabled {
		ns = append(ns, notify.NewWebhook(cfg.Notify.Webhook.URL,
			notify.WithWebhookLogger(logger)))
	}
	if cfg.Notify.Stdout {
		ns = append(ns, notify.NewStdout(nil))
	}

	switch len(ns) {
	case 0:
		return nil, nil
	case 1:
		return ns[0], nil
	default:
		return notify.NewRouter(logger, ns...), nil
	}
}
