// Package render wraps the browser engine in the retry/backoff policy that
// makes fetching from flaky client-rendered pages workable: bounded
// attempts, linearly increasing backoff, and a full engine recycle before
// the final attempt, since a wedged session is a common root cause that a
// page reload cannot fix.
package render

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ErrTooSmall marks markup below the minimum size threshold. Undersized
// output signals a blocked, error, or not-yet-rendered page rather than
// genuine empty content.
var ErrTooSmall = errors.New("render: html too small")

// ErrAttemptsExhausted marks a fetch that failed every attempt.
var ErrAttemptsExhausted = errors.New("render: all attempts failed")

// Engine is the underlying rendering engine. The production implementation
// is browser.Manager; tests substitute a fake.
type Engine interface {
	// Capture loads a URL and returns the materialized HTML.
	Capture(ctx context.Context, url string) (string, error)
	// Recycle discards the current engine instance so the next capture
	// starts fresh.
	Recycle(ctx context.Context) error
	// Close tears the engine down. Idempotent.
	Close() error
}

// Config tunes the retry policy.
type Config struct {
	// Attempts per site. Default: 3.
	Attempts int
	// BackoffStep scales the wait between attempts: attempt×step.
	// Default: 5s.
	BackoffStep time.Duration
	// MinHTMLBytes rejects undersized markup. Default: 5000.
	MinHTMLBytes int

	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.Attempts <= 0 {
		c.Attempts = 3
	}
	if c.BackoffStep <= 0 {
		c.BackoffStep = 5 * time.Second
	}
	if c.MinHTMLBytes <= 0 {
		c.MinHTMLBytes = 5000
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Renderer fetches rendered documents under the retry policy. It owns the
// engine and is responsible for closing it exactly once per run.
type Renderer struct {
	engine Engine
	cfg    Config
}

// New creates a Renderer around an engine.
func New(engine Engine, cfg Config) *Renderer {
	cfg.defaults()
	return &Renderer{engine: engine, cfg: cfg}
}

// Fetch retrieves the rendered HTML for a URL, retrying on failure. On the
// penultimate failure the engine is recycled so the final attempt runs on a
// fresh instance. Exhausting all attempts returns an error wrapping
// ErrAttemptsExhausted (and the last underlying cause).
func (r *Renderer) Fetch(ctx context.Context, url string) (string, error) {
	log := r.cfg.Logger.With("url", url)

	var lastErr error
	for attempt := 1; attempt <= r.cfg.Attempts; attempt++ {
		log.Debug("render: attempt", "n", attempt, "of", r.cfg.Attempts)

		html, err := r.engine.Capture(ctx, url)
		if err == nil && len(html) < r.cfg.MinHTMLBytes {
			err = fmt.Errorf("%w: %d bytes", ErrTooSmall, len(html))
		}
		if err == nil {
			log.Debug("render: fetched", "bytes", len(html))
			return html, nil
		}

		lastErr = err
		log.Warn("render: attempt failed", "n", attempt, "error", err)

		if attempt == r.cfg.Attempts {
			break
		}

		backoff := time.Duration(attempt) * r.cfg.BackoffStep
		log.Info("render: backing off", "wait", backoff)
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return "", ctx.Err()
		}

		// Fresh engine for the final attempt.
		if attempt == r.cfg.Attempts-1 {
			if err := r.engine.Recycle(ctx); err != nil {
				log.Warn("render: recycle failed", "error", err)
			}
		}
	}

	return "", fmt.Errorf("render: fetch %s: %w: %v", url, ErrAttemptsExhausted, lastErr)
}

// Close releases the underlying engine. Best-effort: callers log the error
// but never let it mask the run result.
func (r *Renderer) Close() error {
	return r.engine.Close()
}
