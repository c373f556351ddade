// Package browser manages the headless Chrome lifecycle behind the page
// renderer: lazy launch on first capture, explicit recycling when a session
// looks wedged, and exactly-once teardown at the end of a run. The engine
// is owned by a single renderer and never used concurrently; the mutex only
// guards lifecycle transitions.
package browser

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
)

// Config configures the browser manager.
type Config struct {
	// RemoteURL is the WebSocket URL of an external Chrome instance.
	// Empty = launch a local Chrome via launcher.
	RemoteURL string

	// NavTimeout bounds page navigation. Default: 30s.
	NavTimeout time.Duration

	// BodyWait bounds the wait for document.body after navigation.
	// Timing out here is tolerated — client-rendered pages may never
	// signal "loaded" under resource blocking. Default: 15s.
	BodyWait time.Duration

	// Settle is the fixed sleep after the body appears, giving deferred
	// scripts time to populate content. Default: 8s.
	Settle time.Duration

	// ResourceBlocking lists resource types to block (images,
	// stylesheets, fonts, media). Scripts are never blocked.
	ResourceBlocking []string

	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.NavTimeout <= 0 {
		c.NavTimeout = 30 * time.Second
	}
	if c.BodyWait <= 0 {
		c.BodyWait = 15 * time.Second
	}
	if c.Settle <= 0 {
		c.Settle = 8 * time.Second
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Manager owns one Chrome instance, shared across captures within a run so
// the heavyweight startup cost is paid once, not once per site.
type Manager struct {
	cfg     Config
	mu      sync.Mutex
	browser *rod.Browser
	lnch    *launcher.Launcher
	closed  bool
}

// NewManager creates a Manager. Chrome is launched lazily on first use.
func NewManager(cfg Config) *Manager {
	cfg.defaults()
	return &Manager{cfg: cfg}
}

// browserLocked returns the active Chrome handle, launching it if needed.
func (m *Manager) browserLocked() (*rod.Browser, error) {
	if m.closed {
		return nil, fmt.Errorf("browser: manager is closed")
	}
	if m.browser != nil {
		return m.browser, nil
	}

	b, err := m.launch()
	if err != nil {
		return nil, err
	}
	m.browser = b
	return b, nil
}

// Recycle kills Chrome so the next capture starts a fresh instance. Used
// when repeated failures suggest a wedged session that a page reload cannot
// fix.
func (m *Manager) Recycle(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return fmt.Errorf("browser: manager is closed")
	}
	m.cfg.Logger.Info("browser: recycling engine")
	m.teardown()
	return nil
}

// Close shuts down Chrome. Idempotent; safe on every exit path.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	m.teardown()
	return nil
}

func (m *Manager) launch() (*rod.Browser, error) {
	log := m.cfg.Logger

	var wsURL string
	if m.cfg.RemoteURL != "" {
		wsURL = m.cfg.RemoteURL
		log.Info("browser: connecting to remote", "url", wsURL)
	} else {
		l := launcher.New().
			Headless(true).
			NoSandbox(true).
			Set("disable-gpu").
			Set("disable-dev-shm-usage").
			Set("mute-audio").
			Set("hide-scrollbars").
			Set("window-size", "1280,720").
			Set("disable-blink-features", "AutomationControlled")

		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("browser: launch: %w", err)
		}
		wsURL = u
		m.lnch = l
		log.Info("browser: launched local chrome")
	}

	b := rod.New().ControlURL(wsURL)
	if err := b.Connect(); err != nil {
		return nil, fmt.Errorf("browser: connect: %w", err)
	}

	if err := b.IgnoreCertErrors(true); err != nil {
		log.Warn("browser: ignore cert errors failed", "error", err)
	}

	return b, nil
}

// teardown is best-effort cleanup: failures are logged, never propagated,
// and never mask the caller's result.
func (m *Manager) teardown() {
	if m.browser != nil {
		if err := m.browser.Close(); err != nil {
			m.cfg.Logger.Warn("browser: close failed", "error", err)
		}
		m.browser = nil
	}
	if m.lnch != nil {
		m.lnch.Cleanup()
		m.lnch = nil
	}
}
