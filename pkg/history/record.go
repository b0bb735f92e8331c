// pkg/history/record.go - yearly listening record backed by a flat CSV

package history

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Columns is the exact header of the yearly record. Order matters: a file
// whose header differs in name, count, or order is rejected, never migrated.
var Columns = []string{"track", "artist", "date", "est_time", "ist_time", "iso_time"}

// ErrSchemaMismatch means a persisted record's columns do not match Columns.
var ErrSchemaMismatch = errors.New("record columns do not match expected schema")

// PlayEvent is one recorded play. ISOTime is the unique key; rows are never
// mutated once written.
type PlayEvent struct {
	Track   string
	Artist  string
	Date    string
	ESTTime string
	ISTTime string
	ISOTime string
}

func (e PlayEvent) fields() []string {
	return []string{e.Track, e.Artist, e.Date, e.ESTTime, e.ISTTime, e.ISOTime}
}

// Record is the in-memory form of one year's listening history, kept sorted
// ascending by ISOTime with pairwise-distinct timestamps.
type Record struct {
	rows []PlayEvent
	seen map[string]int // iso_time -> row index
}

// NewRecord returns an empty record with the expected schema.
func NewRecord() *Record {
	return &Record{seen: make(map[string]int)}
}

// Load reads a yearly record CSV. A missing file is not an error: it returns
// an empty record, matching the first run of a new year.
func Load(path string) (*Record, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewRecord(), nil
		}
		return nil, fmt.Errorf("open record %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	raw, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read record %s: %w", path, err)
	}
	if len(raw) == 0 {
		return NewRecord(), nil
	}

	if err := checkHeader(raw[0], Columns); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	rec := NewRecord()
	for i, row := range raw[1:] {
		ev := PlayEvent{
			Track:   row[0],
			Artist:  row[1],
			Date:    row[2],
			ESTTime: row[3],
			ISTTime: row[4],
			ISOTime: row[5],
		}
		if _, dup := rec.seen[ev.ISOTime]; dup {
			return nil, fmt.Errorf("%s: duplicate iso_time %q at row %d", path, ev.ISOTime, i+2)
		}
		rec.seen[ev.ISOTime] = len(rec.rows)
		rec.rows = append(rec.rows, ev)
	}
	return rec, nil
}

func checkHeader(got, want []string) error {
	if len(got) != len(want) {
		return fmt.Errorf("%w: got %v, want %v", ErrSchemaMismatch, got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			return fmt.Errorf("%w: got %v, want %v", ErrSchemaMismatch, got, want)
		}
	}
	return nil
}

// Len returns the number of plays in the record.
func (r *Record) Len() int { return len(r.rows) }

// Rows returns the plays in stored order.
func (r *Record) Rows() []PlayEvent { return r.rows }

// Has reports whether a play with this iso_time is already recorded.
func (r *Record) Has(isoTime string) bool {
	_, ok := r.seen[isoTime]
	return ok
}

// IndexOf returns the row index of the play with this iso_time.
func (r *Record) IndexOf(isoTime string) (int, bool) {
	i, ok := r.seen[isoTime]
	return i, ok
}

// Append adds a new play. It returns false without modifying the record when
// the timestamp is already present.
func (r *Record) Append(ev PlayEvent) bool {
	if _, dup := r.seen[ev.ISOTime]; dup {
		return false
	}
	r.seen[ev.ISOTime] = len(r.rows)
	r.rows = append(r.rows, ev)
	return true
}

// Sort orders rows ascending by ISOTime. The timestamps are fixed-width
// ISO-8601 strings, so a lexicographic sort is chronological.
func (r *Record) Sort() {
	sort.SliceStable(r.rows, func(i, j int) bool {
		return r.rows[i].ISOTime < r.rows[j].ISOTime
	})
	for i, ev := range r.rows {
		r.seen[ev.ISOTime] = i
	}
}

// Save writes the record as CSV via a temp file renamed into place, so a
// failed run never leaves a truncated record behind.
func (r *Record) Save(path string) error {
	rows := make([][]string, 0, len(r.rows)+1)
	rows = append(rows, Columns)
	for _, ev := range r.rows {
		rows = append(rows, ev.fields())
	}
	return writeCSV(path, rows)
}

func writeCSV(path string, rows [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	writer := csv.NewWriter(tmp)
	if err := writer.WriteAll(rows); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("flush %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
