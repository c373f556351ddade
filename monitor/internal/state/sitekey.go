package state

import (
	"net/url"
	"strings"
)

// SiteKey derives a stable filesystem-safe label from a site URL: the first
// hostname segment, minus any leading "www.", lowercased and sanitized.
// The mapping is pure — the same URL always yields the same key — so the
// per-site record files it names stay stable across runs.
func SiteKey(rawURL string) string {
	host := ""
	if u, err := url.Parse(rawURL); err == nil {
		host = u.Hostname()
	}
	if host == "" {
		// Not a parseable URL. Sanitize whatever we were given so the
		// caller still gets a usable key.
		return sanitizeKey(rawURL)
	}

	host = strings.ToLower(host)
	host = strings.TrimPrefix(host, "www.")
	if i := strings.IndexByte(host, '.'); i > 0 {
		host = host[:i]
	}
	return sanitizeKey(host)
}

// DisplayName is the human-facing variant of SiteKey (uppercased).
func DisplayName(rawURL string) string {
	return strings.ToUpper(SiteKey(rawURL))
}

// sanitizeKey keeps [a-z0-9-_], mapping everything else to '-'. Runs of
// replacements collapse to a single dash.
func sanitizeKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	lastDash := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash && b.Len() > 0 {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	out := strings.Trim(b.String(), "-")
	if out == "" {
		return "site"
	}
	return out
}
