// pkg/stats/stats.go - read-only yearly summary over the enriched table

package stats

import (
	"sort"
	"strings"

	"github.com/kgandhi/trackkeeper/pkg/history"
)

// Count pairs a name with how many plays it appeared in.
type Count struct {
	Name  string
	Plays int
}

// Summary is the yearly listening report.
type Summary struct {
	Plays            int
	ListeningMinutes float64
	DistinctTracks   int
	DistinctArtists  int
	TopTracks        []Count
	TopArtists       []Count
	TopGenres        []Count
}

// TopN caps each top-list in a Summary.
const TopN = 10

// Compute derives a Summary from the enriched table. Rows with a null
// duration contribute plays but no listening time; artist credits and genre
// lists are split on ", " so each contributor counts once per play.
func Compute(rec *history.EnrichedRecord) Summary {
	tracks := make(map[string]int)
	artists := make(map[string]int)
	genres := make(map[string]int)

	var minutes float64
	for _, ev := range rec.Rows() {
		tracks[ev.Track]++
		for _, artist := range splitList(ev.Artist) {
			artists[artist]++
		}
		for _, genre := range splitList(ev.Genre) {
			genres[genre]++
		}
		if ev.Length != nil {
			minutes += *ev.Length / 60
		}
	}

	return Summary{
		Plays:            rec.Len(),
		ListeningMinutes: minutes,
		DistinctTracks:   len(tracks),
		DistinctArtists:  len(artists),
		TopTracks:        top(tracks, TopN),
		TopArtists:       top(artists, TopN),
		TopGenres:        top(genres, TopN),
	}
}

func splitList(joined string) []string {
	if joined == "" {
		return nil
	}
	parts := strings.Split(joined, ", ")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// top returns the n highest counts, ties broken by name for stable output.
func top(counts map[string]int, n int) []Count {
	all := make([]Count, 0, len(counts))
	for name, plays := range counts {
		all = append(all, Count{Name: name, Plays: plays})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Plays != all[j].Plays {
			return all[i].Plays > all[j].Plays
		}
		return all[i].Name < all[j].Name
	})
	if len(all) > n {
		all = all[:n]
	}
	return all
}
