package enrich

import "github.com/kgandhi/trackkeeper/pkg/store"

const cursorKey = "last_iso_time"

// Cursor records the iso_time of the last row an enrichment pass processed,
// one file per record year. It replaces inferring the resume point by matching
// the enriched table's last row against the record, which broke whenever the
// tables diverged.
type Cursor struct {
	s *store.Store[string]
}

// OpenCursor loads the cursor sidecar; a missing file means "never run".
func OpenCursor(path string) (*Cursor, error) {
	s, err := store.Open[string](path)
	if err != nil {
		return nil, err
	}
	return &Cursor{s: s}, nil
}

// ISOTime returns the stored position, or "" when no pass has completed.
func (c *Cursor) ISOTime() string {
	v, _ := c.s.Get(cursorKey)
	return v
}

// Set records a new position. It is persisted on Flush with the other
// sidecars, after the full pass completes.
func (c *Cursor) Set(isoTime string) {
	c.s.Set(cursorKey, isoTime)
}

// Flush writes the cursor file atomically.
func (c *Cursor) Flush() error {
	return c.s.Flush()
}
