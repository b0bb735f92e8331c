package history

import (
	"testing"
	"time"

	"github.com/kgandhi/trackkeeper/pkg/spotify"
)

func mustMerger(t *testing.T) *Merger {
	t.Helper()
	m, err := NewMerger()
	if err != nil {
		t.Fatalf("NewMerger failed: %v", err)
	}
	return m
}

func playItem(t *testing.T, track string, artists []string, playedAt string) spotify.PlayItem {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, playedAt)
	if err != nil {
		t.Fatalf("bad timestamp %q: %v", playedAt, err)
	}
	return spotify.PlayItem{Track: track, Artists: artists, PlayedAt: ts}
}

func TestMerge_TwoItemsSortedByTimestamp(t *testing.T) {
	m := mustMerger(t)
	rec := NewRecord()

	batch := []spotify.PlayItem{
		playItem(t, "A", []string{"X"}, "2025-01-01T10:00:00Z"),
		playItem(t, "B", []string{"Y"}, "2025-01-01T09:00:00Z"),
	}

	added := m.Merge(rec, batch)
	if added != 2 {
		t.Fatalf("expected 2 rows added, got %d", added)
	}
	if rec.Len() != 2 {
		t.Fatalf("expected 2 rows, got %d", rec.Len())
	}

	rows := rec.Rows()
	if rows[0].Track != "B" || rows[1].Track != "A" {
		t.Errorf("expected order B then A, got %s then %s", rows[0].Track, rows[1].Track)
	}
	for _, row := range rows {
		if row.Date != "2025-01-01" {
			t.Errorf("expected date 2025-01-01, got %q", row.Date)
		}
	}
	if rows[0].ISOTime != "2025-01-01T09:00:00.000Z" {
		t.Errorf("unexpected iso_time %q", rows[0].ISOTime)
	}
}

func TestMerge_Idempotent(t *testing.T) {
	m := mustMerger(t)
	rec := NewRecord()

	batch := []spotify.PlayItem{
		playItem(t, "A", []string{"X"}, "2025-01-01T10:00:00Z"),
		playItem(t, "B", []string{"Y"}, "2025-01-01T09:00:00Z"),
	}

	m.Merge(rec, batch)
	first := append([]PlayEvent(nil), rec.Rows()...)

	added := m.Merge(rec, batch)
	if added != 0 {
		t.Fatalf("second merge added %d rows, want 0", added)
	}
	if rec.Len() != len(first) {
		t.Fatalf("second merge changed row count: %d -> %d", len(first), rec.Len())
	}
	for i, row := range rec.Rows() {
		if row != first[i] {
			t.Errorf("row %d changed after re-merge: %+v != %+v", i, row, first[i])
		}
	}
}

func TestMerge_EmptyBatchLeavesRecordUnchanged(t *testing.T) {
	m := mustMerger(t)
	rec := NewRecord()
	rec.Append(PlayEvent{Track: "A", ISOTime: "2025-01-01T10:00:00.000Z"})

	added := m.Merge(rec, nil)
	if added != 0 {
		t.Errorf("expected 0 added, got %d", added)
	}
	if rec.Len() != 1 {
		t.Errorf("expected record unchanged, got %d rows", rec.Len())
	}
}

func TestMerge_SortAndUniquenessInvariants(t *testing.T) {
	m := mustMerger(t)
	rec := NewRecord()

	// Deliberately unordered, with one duplicate timestamp.
	batch := []spotify.PlayItem{
		playItem(t, "C", []string{"Z"}, "2025-03-01T12:00:00Z"),
		playItem(t, "A", []string{"X"}, "2025-01-15T08:30:00Z"),
		playItem(t, "B", []string{"Y"}, "2025-02-20T22:45:00Z"),
		playItem(t, "C again", []string{"Z"}, "2025-03-01T12:00:00Z"),
	}
	m.Merge(rec, batch)

	rows := rec.Rows()
	if len(rows) != 3 {
		t.Fatalf("expected duplicate timestamp skipped, got %d rows", len(rows))
	}

	seen := make(map[string]bool)
	for i, row := range rows {
		if i > 0 && rows[i-1].ISOTime > row.ISOTime {
			t.Errorf("rows out of order at %d: %q > %q", i, rows[i-1].ISOTime, row.ISOTime)
		}
		if seen[row.ISOTime] {
			t.Errorf("duplicate iso_time %q", row.ISOTime)
		}
		seen[row.ISOTime] = true
	}
}

func TestMerge_ArtistCreditAndZones(t *testing.T) {
	m := mustMerger(t)
	rec := NewRecord()

	m.Merge(rec, []spotify.PlayItem{
		playItem(t, "Collab", []string{"First", "Second", "Third"}, "2025-01-01T10:00:00Z"),
	})

	row := rec.Rows()[0]
	if row.Artist != "First, Second, Third" {
		t.Errorf("unexpected artist credit %q", row.Artist)
	}
	// 10:00 UTC is 05:00 in New York (EST) and 15:30 in Kolkata.
	if row.ESTTime != "2025-01-01 05:00:00-05:00" {
		t.Errorf("unexpected est_time %q", row.ESTTime)
	}
	if row.ISTTime != "2025-01-01 15:30:00+05:30" {
		t.Errorf("unexpected ist_time %q", row.ISTTime)
	}
}
