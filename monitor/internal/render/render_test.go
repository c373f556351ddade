package render

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

type fakeEngine struct {
	results  []func() (string, error)
	calls    int
	recycles int
	closed   int
}

func (f *fakeEngine) Capture(_ context.Context, _ string) (string, error) {
	i := f.calls
	f.calls++
	if i >= len(f.results) {
		i = len(f.results) - 1
	}
	return f.results[i]()
}

func (f *fakeEngine) Recycle(_ context.Context) error {
	f.recycles++
	return nil
}

func (f *fakeEngine) Close() error {
	f.closed++
	return nil
}

func bigHTML() string {
	return "<html><body>" + strings.Repeat("<p>conteúdo</p>", 500) + "</body></html>"
}

func fastConfig() Config {
	return Config{Attempts: 3, BackoffStep: time.Millisecond, MinHTMLBytes: 100}
}

func TestFetch_FirstAttemptSucceeds(t *testing.T) {
	eng := &fakeEngine{results: []func() (string, error){
		func() (string, error) { return bigHTML(), nil },
	}}
	r := New(eng, fastConfig())

	html, err := r.Fetch(context.Background(), "https://example.com")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if html == "" || eng.calls != 1 {
		t.Errorf("calls = %d, want 1", eng.calls)
	}
	if eng.recycles != 0 {
		t.Errorf("recycles = %d, want 0", eng.recycles)
	}
}

func TestFetch_RetriesThenSucceeds(t *testing.T) {
	boom := errors.New("navigation failed")
	eng := &fakeEngine{results: []func() (string, error){
		func() (string, error) { return "", boom },
		func() (string, error) { return bigHTML(), nil },
	}}
	r := New(eng, fastConfig())

	if _, err := r.Fetch(context.Background(), "https://example.com"); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if eng.calls != 2 {
		t.Errorf("calls = %d, want 2", eng.calls)
	}
}

func TestFetch_RecyclesBeforeFinalAttempt(t *testing.T) {
	// WHAT: after the penultimate failure the engine is recreated.
	// WHY: a wedged session causes repeated failures a reload cannot fix.
	boom := errors.New("timeout")
	eng := &fakeEngine{results: []func() (string, error){
		func() (string, error) { return "", boom },
		func() (string, error) { return "", boom },
		func() (string, error) { return bigHTML(), nil },
	}}
	r := New(eng, fastConfig())

	if _, err := r.Fetch(context.Background(), "https://example.com"); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if eng.calls != 3 {
		t.Errorf("calls = %d, want 3", eng.calls)
	}
	if eng.recycles != 1 {
		t.Errorf("recycles = %d, want 1", eng.recycles)
	}
}

func TestFetch_Exhaustion(t *testing.T) {
	boom := errors.New("timeout")
	eng := &fakeEngine{results: []func() (string, error){
		func() (string, error) { return "", boom },
	}}
	r := New(eng, fastConfig())

	_, err := r.Fetch(context.Background(), "https://example.com")
	if !errors.Is(err, ErrAttemptsExhausted) {
		t.Fatalf("want ErrAttemptsExhausted, got %v", err)
	}
	if eng.calls != 3 {
		t.Errorf("calls = %d, want 3", eng.calls)
	}
}

func TestFetch_TooSmallIsAFailure(t *testing.T) {
	eng := &fakeEngine{results: []func() (string, error){
		func() (string, error) { return "<html></html>", nil },
	}}
	r := New(eng, fastConfig())

	_, err := r.Fetch(context.Background(), "https://example.com")
	if !errors.Is(err, ErrAttemptsExhausted) {
		t.Fatalf("want exhaustion, got %v", err)
	}
	if !strings.Contains(err.Error(), ErrTooSmall.Error()) {
		t.Errorf("error should carry the too-small cause: %v", err)
	}
}

func TestFetch_CancelledDuringBackoff(t *testing.T) {
	boom := errors.New("timeout")
	eng := &fakeEngine{results: []func() (string, error){
		func() (string, error) { return "", boom },
	}}
	r := New(eng, Config{Attempts: 3, BackoffStep: time.Hour, MinHTMLBytes: 100})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := r.Fetch(ctx, "https://example.com")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
}

func TestClose_Delegates(t *testing.T) {
	eng := &fakeEngine{results: []func() (string, error){
		func() (string, error) { return "", errors.New("x") },
	}}
	r := New(eng, fastConfig())
	if err := r.Close(); err != nil {
		t.Fatal(err)
	}
	if eng.closed != 1 {
		t.Errorf("closed = %d, want 1", eng.closed)
	}
}
