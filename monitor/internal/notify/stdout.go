package notify

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"sync"
	"time"

	"github.com/vpacheco/sentinela/monitor/change"
)

// Stdout writes one JSON line per batch to an io.Writer (default
// os.Stdout). Useful for CI logs and ad-hoc runs.
type Stdout struct {
	mu  sync.Mutex
	enc *json.Encoder
	now func() time.Time
}

// NewStdout creates a Stdout notifier. If w is nil, os.Stdout is used.
func NewStdout(w io.Writer) *Stdout {
	if w == nil {
		w = os.Stdout
	}
	return &Stdout{enc: json.NewEncoder(w), now: time.Now}
}

type stdoutEnvelope struct {
	Type       string         `json:"type"`
	NotifiedAt string         `json:"notified_at"`
	Changed    []change.Event `json:"changed"`
}

func (s *Stdout) Notify(_ context.Context, events []change.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enc.Encode(stdoutEnvelope{
		Type:       "change_batch",
		NotifiedAt: s.now().UTC().Format(time.RFC3339),
		Changed:    events,
	})
}

func (s *Stdout) Close() error { return nil }
