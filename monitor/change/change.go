// Package change defines the shared value types exchanged between the
// pipeline stages: the monitored site identity and the change event emitted
// when a site's fingerprint moves. Both are plain values — nothing in this
// package touches the network or the disk.
package change

// Site identifies one monitored page. URL is the identity; Name is a short
// hostname-derived display label. Immutable for the process lifetime.
type Site struct {
	URL  string `json:"url"`
	Name string `json:"name"`
}

// Event records a detected content change for one site. It is ephemeral:
// produced by the detector, consumed by the notification batch, never
// persisted.
type Event struct {
	Site           Site   `json:"site"`
	HadPrevious    bool   `json:"had_previous"`
	NewFingerprint string `json:"new_fingerprint"`
}
