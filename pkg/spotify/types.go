package spotify

import (
	"strings"
	"time"
)

// PlayItem is one entry from the recently-played endpoint, reduced to the
// fields the pipeline records.
type PlayItem struct {
	Track    string
	Artists  []string
	PlayedAt time.Time
}

// isoTimeLayout is the fixed-width form used for persisted play timestamps.
// Fixed-width milliseconds keep lexicographic order equal to chronological
// order, which the merge sort relies on.
const isoTimeLayout = "2006-01-02T15:04:05.000Z"

// ISOTime returns the play timestamp as the canonical UTC string used as the
// unique key in the yearly record. The API's played_at arrives parsed into a
// time.Time, so the string is re-rendered rather than preserved, always with
// three fractional digits (a bare-second instant becomes ".000Z").
func (p PlayItem) ISOTime() string {
	return p.PlayedAt.UTC().Format(isoTimeLayout)
}

// ArtistCredit joins all contributing artist names the way the record stores
// them.
func (p PlayItem) ArtistCredit() string {
	return strings.Join(p.Artists, ", ")
}

// TrackSearchResult is the top match of a free-text track search.
type TrackSearchResult struct {
	Name        string
	Artist      string
	DurationSec float64
}

// ArtistSearchResult is the top match of an artist search.
type ArtistSearchResult struct {
	Name   string
	Genres []string
}

// GenreList joins the result's genres into the comma-separated form stored in
// the artist cache. Empty when the artist has no genres.
func (a ArtistSearchResult) GenreList() string {
	return strings.Join(a.Genres, ", ")
}
