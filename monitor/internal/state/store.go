// Package state persists per-site change-detection state: one fingerprint
// record and one plain-text content snapshot per monitored site, each keyed
// by a sanitized site label. Records are written atomically (temp file +
// rename) so a crash mid-write never leaves a half-written record that
// would read back as valid.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ErrCorrupt is returned when a record file exists but cannot be decoded.
// Absence of a record is not an error — Load reports it via its ok result.
var ErrCorrupt = errors.New("state: corrupt record")

// Record is the persisted fingerprint state for one site.
type Record struct {
	Fingerprint string `json:"fingerprint"`
	Timestamp   string `json:"timestamp"`
}

// Store keeps one record file and one content snapshot per site under a
// single data directory. Each site's files are independent: a failure while
// persisting one site never touches another's state.
type Store struct {
	dir string
	loc *time.Location
	now func() time.Time
}

// New creates the data directory if needed and returns a Store. Timestamps
// in saved records use loc (nil means UTC).
func New(dir string, loc *time.Location) (*Store, error) {
	if loc == nil {
		loc = time.UTC
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("state: create data dir: %w", err)
	}
	return &Store{dir: dir, loc: loc, now: time.Now}, nil
}

// Load reads the fingerprint record for a site key. ok is false when no
// record exists yet (first run). A record that exists but cannot be decoded
// is a corruption error, not an empty result.
func (s *Store) Load(key string) (Record, bool, error) {
	data, err := os.ReadFile(s.hashPath(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Record{}, false, nil
		}
		return Record{}, false, fmt.Errorf("state: read record %s: %w", key, err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, false, fmt.Errorf("%w: %s: %v", ErrCorrupt, key, err)
	}
	if rec.Fingerprint == "" {
		return Record{}, false, fmt.Errorf("%w: %s: empty fingerprint", ErrCorrupt, key)
	}
	return rec, true, nil
}

// Save replaces the site's fingerprint record, stamping it with the current
// time in the store's timezone.
func (s *Store) Save(key, fingerprint string) error {
	rec := Record{
		Fingerprint: fingerprint,
		Timestamp:   s.now().In(s.loc).Format(time.RFC3339),
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("state: marshal record %s: %w", key, err)
	}
	if err := s.writeAtomic(s.hashPath(key), data); err != nil {
		return fmt.Errorf("state: save record %s: %w", key, err)
	}
	return nil
}

// SaveContent overwrites the site's normalized-content snapshot. It exists
// for human inspection and is independent of fingerprint persistence.
func (s *Store) SaveContent(key, content string) error {
	if err := s.writeAtomic(s.contentPath(key), []byte(content)); err != nil {
		return fmt.Errorf("state: save content %s: %w", key, err)
	}
	return nil
}

func (s *Store) hashPath(key string) string {
	return filepath.Join(s.dir, key+"_hash.json")
}

func (s *Store) contentPath(key string) string {
	return filepath.Join(s.dir, key+"_content.txt")
}

// writeAtomic writes to a temp file in the same directory and renames it
// over the target, so readers only ever observe complete files.
func (s *Store) writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(s.dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	_, werr := tmp.Write(data)
	cerr := tmp.Close()
	if werr != nil || cerr != nil {
		os.Remove(tmpName)
		if werr != nil {
			return werr
		}
		return cerr
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
