// Package monitor orchestrates the fetch-normalize-diff-notify pipeline:
// each configured site is rendered in a shared headless browser, reduced to
// an order-independent textual fingerprint basis, and compared against its
// stored fingerprint. Changed sites are batched into a single notification.
// Per-site failures are isolated — one broken site never halts the rest —
// and the browser engine is released on every exit path.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/vpacheco/sentinela/monitor/change"
	"github.com/vpacheco/sentinela/monitor/internal/browser"
	"github.com/vpacheco/sentinela/monitor/internal/config"
	"github.com/vpacheco/sentinela/monitor/internal/detect"
	"github.com/vpacheco/sentinela/monitor/internal/extract"
	"github.com/vpacheco/sentinela/monitor/internal/notify"
	"github.com/vpacheco/sentinela/monitor/internal/render"
	"github.com/vpacheco/sentinela/monitor/internal/runlog"
	"github.com/vpacheco/sentinela/monitor/internal/state"
)

// Fetcher retrieves the rendered HTML for a URL. The production
// implementation is render.Renderer over a shared Chrome instance.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
	Close() error
}

// SiteError records a per-site failure without halting the run.
type SiteError struct {
	Site change.Site
	Err  error
}

func (e SiteError) Error() string {
	return fmt.Sprintf("%s: %v", e.Site.Name, e.Err)
}

func (e SiteError) Unwrap() error { return e.Err }

// RunResult aggregates one run: the changed-site batch, the per-site
// errors, and the notification outcome. A non-nil NotifyErr never reverses
// already-persisted fingerprints — state correctness is prioritised over
// guaranteed delivery.
type RunResult struct {
	Changed   []change.Event
	Errors    []SiteError
	NotifyErr error
}

// Monitor runs the pipeline once over all configured sites.
type Monitor struct {
	cfg      *config.Config
	fetcher  Fetcher
	store    *state.Store
	detector *detect.Detector
	notifier notify.Notifier
	rlog     *runlog.Log
	logger   *slog.Logger
}

// Option customises a Monitor.
type Option func(*Monitor)

// WithFetcher replaces the browser-backed fetcher. Used by tests and by
// callers that already own a rendering engine.
func WithFetcher(f Fetcher) Option {
	return func(m *Monitor) { m.fetcher = f }
}

// WithRunLog replaces the default run log (opened under the data dir).
func WithRunLog(l *runlog.Log) Option {
	return func(m *Monitor) { m.rlog = l }
}

// New creates a Monitor from validated configuration. The browser engine is
// not launched here — it starts lazily on the first fetch.
func New(cfg *config.Config, logger *slog.Logger, notifier notify.Notifier, opts ...Option) (*Monitor, error) {
	if logger == nil {
		logger = slog.Default()
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("monitor: timezone: %w", err)
	}
	store, err := state.New(cfg.DataDir, loc)
	if err != nil {
		return nil, fmt.Errorf("monitor: %w", err)
	}

	m := &Monitor{
		cfg:      cfg,
		store:    store,
		detector: detect.New(store, logger),
		notifier: notifier,
		logger:   logger,
	}
	for _, o := range opts {
		o(m)
	}

	if m.fetcher == nil {
		mgr := browser.NewManager(browser.Config{
			RemoteURL:        cfg.Browser.Remote,
			NavTimeout:       cfg.Browser.NavTimeout,
			BodyWait:         cfg.Browser.BodyWait,
			Settle:           cfg.Browser.Settle,
			ResourceBlocking: cfg.Browser.ResourceBlocking,
			Logger:           logger,
		})
		m.fetcher = render.New(mgr, render.Config{
			Attempts:     cfg.Browser.Attempts,
			BackoffStep:  cfg.Browser.Backoff,
			MinHTMLBytes: cfg.Browser.MinHTMLBytes,
			Logger:       logger,
		})
	}

	if m.rlog == nil {
		l, err := runlog.Open(cfg.DataDir + "/runlog.db")
		if err != nil {
			// The audit trail is informational; never fatal.
			logger.Warn("monitor: run log unavailable", "error", err)
		} else {
			m.rlog = l
		}
	}

	return m, nil
}

// Run processes every configured site in order, pausing briefly between
// them, then dispatches at most one batched notification. It returns an
// error only when the run itself was cut short (context cancellation);
// per-site failures are reported inside the result.
func (m *Monitor) Run(ctx context.Context) (*RunResult, error) {
	start := time.Now()
	res := &RunResult{}
	defer m.cleanup()

	m.logger.Info("monitor: run started", "sites", len(m.cfg.Sites))

	for i, sc := range m.cfg.Sites {
		if i > 0 {
			select {
			case <-time.After(m.cfg.SitePause):
			case <-ctx.Done():
			}
		}
		if ctx.Err() != nil {
			m.recordRun(start, res)
			return res, fmt.Errorf("monitor: run interrupted: %w", ctx.Err())
		}
		m.checkSite(ctx, sc, res)
	}

	if len(res.Changed) > 0 && m.notifier != nil {
		if err := m.notifier.Notify(ctx, res.Changed); err != nil {
			m.logger.Error("monitor: notification failed", "error", err)
			res.NotifyErr = err
		}
	}

	m.recordRun(start, res)
	m.logger.Info("monitor: run finished",
		"changed", len(res.Changed), "errors", len(res.Errors),
		"duration", time.Since(start))
	return res, nil
}

func (m *Monitor) checkSite(ctx context.Context, sc config.SiteConfig, res *RunResult) {
	site := m.siteFor(sc)
	key := state.SiteKey(site.URL)
	log := m.logger.With("site", site.Name)
	start := time.Now()

	entry := &runlog.Check{SiteKey: key, URL: site.URL}
	defer func() {
		entry.DurationMs = time.Since(start).Milliseconds()
		entry.CheckedAt = time.Now().UnixMilli()
		if m.rlog != nil {
			// Detached context: the audit row should land even when the
			// run context was cancelled mid-check.
			if err := m.rlog.RecordCheck(context.Background(), entry); err != nil {
				log.Warn("monitor: run log write failed", "error", err)
			}
		}
	}()

	log.Info("monitor: checking site", "url", site.URL)

	html, err := m.fetcher.Fetch(ctx, site.URL)
	if err != nil {
		entry.Status = "error"
		entry.ErrorMessage = err.Error()
		res.Errors = append(res.Errors, SiteError{Site: site, Err: err})
		log.Error("monitor: fetch failed", "error", err)
		return
	}

	// Human-readable page snapshot; never affects detection.
	if err := m.store.SaveRenderedMarkdown(key, html); err != nil {
		log.Warn("monitor: markdown snapshot failed", "error", err)
	}

	content := extract.Normalize(html, m.modeFor(sc))

	dres, err := m.detector.Detect(site, content)
	if err != nil {
		if errors.Is(err, detect.ErrInvalidContent) {
			// Probable extraction/render failure — nothing to compare,
			// state untouched, not retried this run.
			entry.Status = "invalid"
		} else {
			entry.Status = "error"
		}
		entry.ErrorMessage = err.Error()
		res.Errors = append(res.Errors, SiteError{Site: site, Err: err})
		log.Error("monitor: detection failed", "error", err)
		return
	}

	entry.Status = string(dres.Outcome)
	entry.ContentHash = dres.Fingerprint
	if dres.Event != nil {
		res.Changed = append(res.Changed, *dres.Event)
	}
}

func (m *Monitor) siteFor(sc config.SiteConfig) change.Site {
	name := sc.Name
	if name == "" {
		name = state.DisplayName(sc.URL)
	}
	return change.Site{URL: sc.URL, Name: name}
}

func (m *Monitor) modeFor(sc config.SiteConfig) extract.Mode {
	if sc.Mode != "" {
		return extract.Mode(sc.Mode)
	}
	return extract.Mode(m.cfg.Extract.Mode)
}

func (m *Monitor) recordRun(start time.Time, res *RunResult) {
	if m.rlog == nil {
		return
	}
	summary := &runlog.RunSummary{
		StartedAt:  start.UnixMilli(),
		FinishedAt: time.Now().UnixMilli(),
		Sites:      len(m.cfg.Sites),
		Changed:    len(res.Changed),
		Errors:     len(res.Errors),
	}
	// Detached context: the summary should land even on cancellation.
	if err := m.rlog.RecordRun(context.Background(), summary); err != nil {
		m.logger.Warn("monitor: run summary write failed", "error", err)
	}
}

// cleanup releases the rendering engine and the run log. Best-effort:
// failures are logged and never mask the primary run result.
func (m *Monitor) cleanup() {
	if err := m.fetcher.Close(); err != nil {
		m.logger.Warn("monitor: engine teardown failed", "error", err)
	} else {
		m.logger.Info("monitor: engine released")
	}
	if m.rlog != nil {
		if err := m.rlog.Close(); err != nil {
			m.logger.Warn("monitor: run log close failed", "error", err)
		}
	}
}
