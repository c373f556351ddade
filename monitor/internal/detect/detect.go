// Package detect implements the per-site change-detection state machine:
// fingerprint the normalized content, compare against the stored record,
// and classify the result. The first successful detection for a site only
// establishes the baseline — it is never reported as a change.
package detect

import (
	"errors"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/vpacheco/sentinela/monitor/change"
	"github.com/vpacheco/sentinela/monitor/internal/state"
)

// ErrInvalidContent is returned when normalized content is below the
// viability threshold. That almost always means extraction or rendering
// failed, not that the page went genuinely empty, so stored state is left
// untouched and nothing is reported.
var ErrInvalidContent = errors.New("detect: content below viability threshold")

// MinViableContent is the minimum normalized-content length, in runes,
// accepted for comparison. Counted in runes, not bytes: accented text must
// sit on the same side of the threshold as its unaccented equivalent.
const MinViableContent = 50

// Outcome classifies a successful detection.
type Outcome string

const (
	OutcomeBaseline  Outcome = "baseline"
	OutcomeUnchanged Outcome = "unchanged"
	OutcomeChanged   Outcome = "changed"
)

// Result is the outcome of one detection. Event is non-nil only when
// Outcome is OutcomeChanged.
type Result struct {
	Outcome     Outcome
	Fingerprint string
	Event       *change.Event
}

// Detector compares normalized content against the fingerprint store.
type Detector struct {
	store  *state.Store
	logger *slog.Logger
}

// New creates a Detector backed by the given store.
func New(store *state.Store, logger *slog.Logger) *Detector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Detector{store: store, logger: logger}
}

// Detect runs the state machine for one site. Store failures are returned
// as errors for this site only — a corrupted or unwritable record must not
// silently read as "no change".
func (d *Detector) Detect(site change.Site, content string) (Result, error) {
	log := d.logger.With("site", site.Name)

	if n := utf8.RuneCountInString(content); n < MinViableContent {
		return Result{}, fmt.Errorf("%w: %d chars", ErrInvalidContent, n)
	}

	key := state.SiteKey(site.URL)
	fp := state.Fingerprint(content)

	prev, ok, err := d.store.Load(key)
	if err != nil {
		return Result{}, fmt.Errorf("detect: load %s: %w", key, err)
	}

	// Persist the latest normalized text regardless of outcome, for
	// human inspection.
	if err := d.store.SaveContent(key, content); err != nil {
		log.Warn("detect: save content failed", "error", err)
	}

	if !ok {
		if err := d.store.Save(key, fp); err != nil {
			return Result{}, fmt.Errorf("detect: save baseline %s: %w", key, err)
		}
		log.Info("detect: baseline stored", "fingerprint", fp[:12])
		return Result{Outcome: OutcomeBaseline, Fingerprint: fp}, nil
	}

	if prev.Fingerprint == fp {
		log.Debug("detect: unchanged")
		return Result{Outcome: OutcomeUnchanged, Fingerprint: fp}, nil
	}

	if err := d.store.Save(key, fp); err != nil {
		return Result{}, fmt.Errorf("detect: save %s: %w", key, err)
	}
	log.Info("detect: change detected", "fingerprint", fp[:12])
	return Result{
		Outcome:     OutcomeChanged,
		Fingerprint: fp,
		Event: &change.Event{
			Site:           site,
			HadPrevious:    true,
			NewFingerprint: fp,
		},
	}, nil
}
