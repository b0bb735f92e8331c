// pkg/history/enriched.go - derived table with genre and duration columns

package history

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
)

// EnrichedColumns is the header of the enriched table: the record's columns
// plus the two nullable metadata fields. length_ms holds seconds; the name is
// historical and kept for compatibility with existing files.
var EnrichedColumns = []string{"track", "artist", "date", "est_time", "ist_time", "iso_time", "genre", "length_ms"}

// EnrichedEvent is a PlayEvent extended with metadata. Genre "" and Length
// nil both mean "not resolved yet".
type EnrichedEvent struct {
	PlayEvent
	Genre  string
	Length *float64 // seconds
}

func (e EnrichedEvent) enrichedFields() []string {
	length := ""
	if e.Length != nil {
		length = strconv.FormatFloat(*e.Length, 'f', -1, 64)
	}
	return append(e.fields(), e.Genre, length)
}

// EnrichedRecord is the persisted projection produced by enrichment runs.
// Rows are appended in record order and never revisited once written.
type EnrichedRecord struct {
	rows []EnrichedEvent
}

// NewEnrichedRecord returns an empty enriched table.
func NewEnrichedRecord() *EnrichedRecord {
	return &EnrichedRecord{}
}

// LoadEnriched reads the enriched CSV; a missing file yields an empty table.
func LoadEnriched(path string) (*EnrichedRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewEnrichedRecord(), nil
		}
		return nil, fmt.Errorf("open enriched record %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	raw, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read enriched record %s: %w", path, err)
	}
	if len(raw) == 0 {
		return NewEnrichedRecord(), nil
	}

	if err := checkHeader(raw[0], EnrichedColumns); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	rec := NewEnrichedRecord()
	for i, row := range raw[1:] {
		ev := EnrichedEvent{
			PlayEvent: PlayEvent{
				Track:   row[0],
				Artist:  row[1],
				Date:    row[2],
				ESTTime: row[3],
				ISTTime: row[4],
				ISOTime: row[5],
			},
			Genre: row[6],
		}
		if row[7] != "" {
			length, err := strconv.ParseFloat(row[7], 64)
			if err != nil {
				return nil, fmt.Errorf("%s: bad length_ms %q at row %d: %w", path, row[7], i+2, err)
			}
			ev.Length = &length
		}
		rec.rows = append(rec.rows, ev)
	}
	return rec, nil
}

// Len returns the number of enriched rows.
func (r *EnrichedRecord) Len() int { return len(r.rows) }

// Rows returns the enriched rows in stored order.
func (r *EnrichedRecord) Rows() []EnrichedEvent { return r.rows }

// Last returns the most recently appended row.
func (r *EnrichedRecord) Last() (EnrichedEvent, bool) {
	if len(r.rows) == 0 {
		return EnrichedEvent{}, false
	}
	return r.rows[len(r.rows)-1], true
}

// Append adds an enriched row.
func (r *EnrichedRecord) Append(ev EnrichedEvent) {
	r.rows = append(r.rows, ev)
}

// Save writes the enriched table with the same temp-then-rename discipline as
// the raw record.
func (r *EnrichedRecord) Save(path string) error {
	rows := make([][]string, 0, len(r.rows)+1)
	rows = append(rows, EnrichedColumns)
	for _, ev := range r.rows {
		rows = append(rows, ev.enrichedFields())
	}
	return writeCSV(path, rows)
}
