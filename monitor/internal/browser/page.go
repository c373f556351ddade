package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/stealth"
)

// Capture loads a URL and returns the materialized HTML after client-side
// script execution. Full page load is not required: the capture succeeds as
// soon as document.body exists and the settle period has elapsed, because
// client-rendered pages may never fire "load" with subresources blocked.
func (m *Manager) Capture(ctx context.Context, pageURL string) (string, error) {
	m.mu.Lock()
	b, err := m.browserLocked()
	m.mu.Unlock()
	if err != nil {
		return "", err
	}

	page, err := stealth.Page(b)
	if err != nil {
		return "", fmt.Errorf("browser: create page: %w", err)
	}
	defer func() {
		if err := page.Close(); err != nil {
			m.cfg.Logger.Debug("browser: page close failed", "error", err)
		}
	}()

	if len(m.cfg.ResourceBlocking) > 0 {
		stop, err := blockResources(page, m.cfg.ResourceBlocking)
		if err != nil {
			m.cfg.Logger.Warn("browser: resource blocking failed", "error", err)
		} else {
			defer func() {
				if err := stop(); err != nil {
					m.cfg.Logger.Debug("browser: hijack router stop failed", "error", err)
				}
			}()
		}
	}

	navCtx, cancel := context.WithTimeout(ctx, m.cfg.NavTimeout)
	defer cancel()
	if err := page.Context(navCtx).Navigate(pageURL); err != nil {
		return "", fmt.Errorf("browser: navigate %s: %w", pageURL, err)
	}

	// Wait for the document to start: body present is good enough.
	bodyCtx, cancelBody := context.WithTimeout(ctx, m.cfg.BodyWait)
	if _, err := page.Context(bodyCtx).Element("body"); err != nil {
		m.cfg.Logger.Warn("browser: body wait timed out, continuing",
			"url", pageURL, "error", err)
	}
	cancelBody()

	// Settle period: let deferred scripts populate content.
	select {
	case <-time.After(m.cfg.Settle):
	case <-ctx.Done():
		return "", ctx.Err()
	}

	// Halt further script/network activity before reading the DOM. A hung
	// page must not keep consuming resources.
	if _, err := page.Eval(`() => window.stop()`); err != nil {
		m.cfg.Logger.Debug("browser: window.stop failed", "error", err)
	}

	return m.pageHTML(ctx, page)
}

// pageHTML serialises the current DOM as outer HTML.
func (m *Manager) pageHTML(ctx context.Context, page *rod.Page) (string, error) {
	res, err := page.Context(ctx).Eval(`() => document.documentElement.outerHTML`)
	if err != nil {
		return "", fmt.Errorf("browser: read DOM: %w", err)
	}
	return res.Value.Str(), nil
}
