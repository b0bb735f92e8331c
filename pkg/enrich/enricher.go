// pkg/enrich/enricher.go - cache-then-remote metadata resolution

package enrich

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/kgandhi/trackkeeper/pkg/history"
	"github.com/kgandhi/trackkeeper/pkg/spotify"
	"github.com/kgandhi/trackkeeper/pkg/store"
)

// ErrCursorDiverged means the stored cursor's iso_time no longer exists in
// the record. The tables have diverged and a --from-start backfill is needed.
var ErrCursorDiverged = errors.New("enrichment cursor not found in record")

// Searcher is the remote lookup surface the enricher needs. *spotify.Client
// satisfies it; tests substitute a fake.
type Searcher interface {
	SearchTrack(ctx context.Context, query string) (*spotify.TrackSearchResult, error)
	SearchArtist(ctx context.Context, name string) (*spotify.ArtistSearchResult, error)
}

// MissingEntry is one ledger row: a query that still lacks duration or genre
// after its last enrichment attempt.
type MissingEntry struct {
	Track   string `json:"track"`
	Artist  string `json:"artist"`
	ISOTime string `json:"iso_time"`
}

// Sidecar file names under the metadata directory. The enriched table itself
// lives with the yearly CSVs, not here. The caches and the ledger span years;
// the cursor is per-year because it points into a yearly record.
const (
	songStoreFile     = "song_metadata.json"
	artistStoreFile   = "artist_metadata.json"
	missingStoreFile  = "missing_queries.json"
	cursorFilePattern = "enrich_cursor_%d.json"
)

// Result summarizes one enrichment pass.
type Result struct {
	Processed     int
	TrackQueries  int
	ArtistQueries int
	LeftMissing   int
}

// Enricher fills genre and duration for unprocessed rows of the yearly
// record, consulting the two caches before the remote search API.
//
// Song cache: track title -> duration seconds (null = lookup failed).
// Artist cache: artist credit string -> joined genres (null = no genre known).
type Enricher struct {
	searcher Searcher

	Songs   *store.Store[*float64]
	Artists *store.Store[*string]
	Missing *store.Store[MissingEntry]
	Cursor  *Cursor
}

// New opens the three sidecar stores and the given year's cursor under
// metadataDir.
func New(searcher Searcher, metadataDir string, year int) (*Enricher, error) {
	songs, err := store.Open[*float64](filepath.Join(metadataDir, songStoreFile))
	if err != nil {
		return nil, err
	}
	artists, err := store.Open[*string](filepath.Join(metadataDir, artistStoreFile))
	if err != nil {
		return nil, err
	}
	missing, err := store.Open[MissingEntry](filepath.Join(metadataDir, missingStoreFile))
	if err != nil {
		return nil, err
	}
	cursor, err := OpenCursor(filepath.Join(metadataDir, fmt.Sprintf(cursorFilePattern, year)))
	if err != nil {
		return nil, err
	}

	return &Enricher{
		searcher: searcher,
		Songs:    songs,
		Artists:  artists,
		Missing:  missing,
		Cursor:   cursor,
	}, nil
}

// Run walks the record's rows after the cursor (all rows when fromStart),
// appends an enriched row for each to enriched, and advances the cursor. A
// failed lookup nulls the field and moves on; only a diverged cursor aborts.
//
// Callers pass an empty enriched table with fromStart, since the whole record
// is re-projected.
func (e *Enricher) Run(ctx context.Context, rec *history.Record, enriched *history.EnrichedRecord, fromStart bool) (Result, error) {
	var res Result

	start := 0
	if !fromStart {
		idx, err := e.startIndex(rec, enriched)
		if err != nil {
			return res, err
		}
		start = idx
	}

	rows := rec.Rows()
	for i := start; i < len(rows); i++ {
		ev := history.EnrichedEvent{PlayEvent: rows[i]}
		e.resolve(ctx, &ev, &res)
		e.updateLedger(ev)
		enriched.Append(ev)
		e.Cursor.Set(ev.ISOTime)
		res.Processed++
	}

	res.LeftMissing = e.Missing.Len()
	slog.Info("enrichment pass complete",
		"processed", res.Processed,
		"track_queries", res.TrackQueries,
		"artist_queries", res.ArtistQueries,
		"still_missing", res.LeftMissing,
	)
	return res, nil
}

// startIndex finds the first unprocessed row. A year without a cursor yet
// (first run of the year, or records written before the cursor existed)
// falls back to the enriched table's last row.
func (e *Enricher) startIndex(rec *history.Record, enriched *history.EnrichedRecord) (int, error) {
	iso := e.Cursor.ISOTime()
	if iso == "" {
		last, ok := enriched.Last()
		if !ok {
			return 0, nil
		}
		iso = last.ISOTime
	}

	idx, ok := rec.IndexOf(iso)
	if !ok {
		return 0, fmt.Errorf("%w: iso_time %q", ErrCursorDiverged, iso)
	}
	return idx + 1, nil
}

// resolve fills Length and Genre for one row. Resolution order, first match
// wins:
//
//  a. track cached: duration from cache; an uncached artist triggers a lazy
//     genre backfill into the cache (the row itself stays empty until the
//     cached value is seen on a later pass).
//  b. artist cached: genre from cache, duration always queried (durations
//     are cached per-track, and this track is unknown).
//  c. cold row: both queried, both outcomes cached even when null.
func (e *Enricher) resolve(ctx context.Context, ev *history.EnrichedEvent, res *Result) {
	switch {
	case e.Songs.Has(ev.Track):
		slog.Debug("track already in song metadata", "track", ev.Track)
		length, _ := e.Songs.Get(ev.Track)
		ev.Length = length

		if !e.Artists.Has(ev.Artist) {
			genre := e.searchGenre(ctx, ev.Artist, res)
			e.Artists.Set(ev.Artist, genre)
		} else if genre, _ := e.Artists.Get(ev.Artist); genre != nil && *genre != "" {
			ev.Genre = *genre
		} else {
			slog.Debug("artist has no genre", "artist", ev.Artist)
		}

	case e.Artists.Has(ev.Artist):
		slog.Debug("artist already in artist metadata", "artist", ev.Artist)
		if genre, _ := e.Artists.Get(ev.Artist); genre != nil {
			ev.Genre = *genre
		}
		ev.Length = e.searchDuration(ctx, searchQuery(ev.PlayEvent), res)

	default:
		slog.Debug("track and artist not in metadata, new entry", "track", ev.Track, "artist", ev.Artist)
		genre := e.searchGenre(ctx, ev.Artist, res)
		length := e.searchDuration(ctx, searchQuery(ev.PlayEvent), res)

		if genre != nil {
			ev.Genre = *genre
		}
		ev.Length = length

		e.Songs.Set(ev.Track, length)
		e.Artists.Set(ev.Artist, genre)
	}
}

// updateLedger upserts the row's query key while either field is missing and
// clears it once both are filled.
func (e *Enricher) updateLedger(ev history.EnrichedEvent) {
	query := searchQuery(ev.PlayEvent)
	if ev.Length == nil || ev.Genre == "" {
		if !e.Missing.Has(query) {
			slog.Debug("adding to missing queries", "query", query)
			e.Missing.Set(query, MissingEntry{
				Track:   ev.Track,
				Artist:  ev.Artist,
				ISOTime: ev.ISOTime,
			})
		}
	} else if e.Missing.Has(query) {
		slog.Debug("removing from missing queries, data now available", "query", query)
		e.Missing.Delete(query)
	}
}

// searchGenre resolves genres for the primary artist (first name in a
// comma-joined credit). Returns nil when the lookup found nothing or failed.
func (e *Enricher) searchGenre(ctx context.Context, artist string, res *Result) *string {
	res.ArtistQueries++
	result, err := e.searcher.SearchArtist(ctx, PrimaryArtist(artist))
	if err != nil {
		if errors.Is(err, spotify.ErrNotFound) {
			slog.Warn("no artist found", "artist", artist)
		} else {
			slog.Error("artist search failed", "artist", artist, "error", err)
		}
		return nil
	}

	genres := result.GenreList()
	if genres == "" {
		return nil
	}
	return &genres
}

// searchDuration resolves a track's duration in seconds from the top search
// result. Returns nil when the lookup found nothing or failed.
func (e *Enricher) searchDuration(ctx context.Context, query string, res *Result) *float64 {
	res.TrackQueries++
	result, err := e.searcher.SearchTrack(ctx, query)
	if err != nil {
		if errors.Is(err, spotify.ErrNotFound) {
			slog.Warn("track not found in search", "query", query)
		} else {
			slog.Error("track search failed", "query", query, "error", err)
		}
		return nil
	}
	return &result.DurationSec
}

// Flush writes all sidecars: both caches, the ledger, and the cursor. Called
// once, after the full pass.
func (e *Enricher) Flush() error {
	if err := e.Songs.Flush(); err != nil {
		return fmt.Errorf("flush song metadata: %w", err)
	}
	if err := e.Artists.Flush(); err != nil {
		return fmt.Errorf("flush artist metadata: %w", err)
	}
	if err := e.Missing.Flush(); err != nil {
		return fmt.Errorf("flush missing queries: %w", err)
	}
	if err := e.Cursor.Flush(); err != nil {
		return fmt.Errorf("flush cursor: %w", err)
	}
	return nil
}

// searchQuery builds the composite "<track> <artist>" key used for track
// search and the missing ledger.
func searchQuery(ev history.PlayEvent) string {
	return ev.Track + " " + ev.Artist
}

// PrimaryArtist returns the first name in a comma-joined artist credit.
func PrimaryArtist(artist string) string {
	if name, _, found := strings.Cut(artist, ", "); found {
		return name
	}
	return artist
}
