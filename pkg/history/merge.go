// pkg/history/merge.go - idempotent incremental merge of fetched plays

package history

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kgandhi/trackkeeper/pkg/spotify"
)

// zoneTimeLayout renders the play instant in a named zone with its explicit
// offset, so the CSV carries a plain string instead of a live zone object.
const zoneTimeLayout = "2006-01-02 15:04:05-07:00"

// Merger folds freshly fetched plays into a yearly record. It holds the two
// fixed display zones so they are resolved once per run.
type Merger struct {
	est *time.Location
	ist *time.Location
}

// NewMerger loads the America/New_York and Asia/Kolkata zones.
func NewMerger() (*Merger, error) {
	est, err := time.LoadLocation("America/New_York")
	if err != nil {
		return nil, fmt.Errorf("load zone: %w", err)
	}
	ist, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		return nil, fmt.Errorf("load zone: %w", err)
	}
	return &Merger{est: est, ist: ist}, nil
}

// Merge appends every play not already present (by iso_time) and re-sorts the
// record. It returns the number of rows added. Merging the same batch twice
// adds nothing the second time.
func (m *Merger) Merge(rec *Record, items []spotify.PlayItem) int {
	if len(items) == 0 {
		slog.Warn("no tracks found in fetched batch")
		return 0
	}

	added := 0
	for _, item := range items {
		iso := item.ISOTime()
		if rec.Has(iso) {
			slog.Debug("play already recorded", "track", item.Track, "iso_time", iso)
			continue
		}

		ev := m.eventFromItem(item, iso)
		rec.Append(ev)
		added++
		slog.Info("added track", "track", ev.Track, "iso_time", ev.ISOTime)
	}

	rec.Sort()
	slog.Info("merge complete", "added", added, "total", rec.Len())
	return added
}

func (m *Merger) eventFromItem(item spotify.PlayItem, iso string) PlayEvent {
	utc := item.PlayedAt.UTC()
	return PlayEvent{
		Track:   item.Track,
		Artist:  item.ArtistCredit(),
		Date:    strings.SplitN(iso, "T", 2)[0],
		ESTTime: utc.In(m.est).Format(zoneTimeLayout),
		ISTTime: utc.In(m.ist).Format(zoneTimeLayout),
		ISOTime: iso,
	}
}
