// pkg/spotify/client_test.go

package spotify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	spotifyapi "github.com/zmb3/spotify/v2"
)

// newTestClient points the API client at a local server serving canned JSON
// keyed by request path.
func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	api := spotifyapi.New(server.Client(), spotifyapi.WithBaseURL(server.URL+"/"))
	return NewFromAPI(api)
}

const recentlyPlayedJSON = `{
	"items": [
		{
			"track": {
				"id": "track-a",
				"name": "A",
				"duration_ms": 210500,
				"artists": [{"name": "X"}, {"name": "Y"}]
			},
			"played_at": "2025-01-01T10:00:00.000Z"
		},
		{
			"track": {
				"id": "track-b",
				"name": "B",
				"duration_ms": 180000,
				"artists": [{"name": "Z"}]
			},
			"played_at": "2025-01-01T09:00:00.123Z"
		}
	]
}`

func TestRecentlyPlayed_Conversion(t *testing.T) {
	var gotPath string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		fmt.Fprint(w, recentlyPlayedJSON)
	})

	after := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	plays, err := client.RecentlyPlayed(context.Background(), after, 50)
	if err != nil {
		t.Fatalf("RecentlyPlayed failed: %v", err)
	}

	if gotPath != "/me/player/recently-played" {
		t.Errorf("unexpected request path %q", gotPath)
	}
	if len(plays) != 2 {
		t.Fatalf("expected 2 plays, got %d", len(plays))
	}

	first := plays[0]
	if first.Track != "A" {
		t.Errorf("unexpected track %q", first.Track)
	}
	if first.ArtistCredit() != "X, Y" {
		t.Errorf("unexpected artist credit %q", first.ArtistCredit())
	}
	if first.ISOTime() != "2025-01-01T10:00:00.000Z" {
		t.Errorf("unexpected iso_time %q", first.ISOTime())
	}

	// Sub-second precision survives the round trip in fixed width.
	if plays[1].ISOTime() != "2025-01-01T09:00:00.123Z" {
		t.Errorf("unexpected iso_time %q", plays[1].ISOTime())
	}
}

func TestRecentlyPlayed_LimitOnTheWire(t *testing.T) {
	testCases := []struct {
		name      string
		limit     int
		wantLimit string
	}{
		{"explicit", 10, "10"},
		{"zero falls back to max", 0, "50"},
		{"over cap falls back to max", 99, "50"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var gotLimit string
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				gotLimit = r.URL.Query().Get("limit")
				fmt.Fprint(w, `{"items": []}`)
			})

			after := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
			if _, err := client.RecentlyPlayed(context.Background(), after, tc.limit); err != nil {
				t.Fatalf("RecentlyPlayed failed: %v", err)
			}
			if gotLimit != tc.wantLimit {
				t.Errorf("limit on the wire = %q, want %q", gotLimit, tc.wantLimit)
			}
		})
	}
}

func TestSearchTrack_TopResult(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("type") != "track" {
			t.Errorf("unexpected search type %q", r.URL.Query().Get("type"))
		}
		fmt.Fprint(w, `{
			"tracks": {
				"items": [
					{"name": "Music", "duration_ms": 353000, "artists": [{"name": "LTJ Bukem"}]},
					{"name": "Music (Remix)", "duration_ms": 400000, "artists": [{"name": "Someone Else"}]}
				]
			}
		}`)
	})

	result, err := client.SearchTrack(context.Background(), "Music LTJ Bukem")
	if err != nil {
		t.Fatalf("SearchTrack failed: %v", err)
	}
	if result.Name != "Music" || result.Artist != "LTJ Bukem" {
		t.Errorf("expected top result, got %+v", result)
	}
	if result.DurationSec != 353.0 {
		t.Errorf("expected duration 353s, got %v", result.DurationSec)
	}
}

func TestSearchArtist_TopResult(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"artists": {
				"items": [
					{"name": "LTJ Bukem", "genres": ["drum and bass", "jungle"]}
				]
			}
		}`)
	})

	result, err := client.SearchArtist(context.Background(), "LTJ Bukem")
	if err != nil {
		t.Fatalf("SearchArtist failed: %v", err)
	}
	if result.GenreList() != "drum and bass, jungle" {
		t.Errorf("unexpected genre list %q", result.GenreList())
	}
}

func TestSearch_NoResultsIsErrNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("type") {
		case "track":
			fmt.Fprint(w, `{"tracks": {"items": []}}`)
		case "artist":
			fmt.Fprint(w, `{"artists": {"items": []}}`)
		}
	})

	if _, err := client.SearchTrack(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("SearchTrack: expected ErrNotFound, got %v", err)
	}
	if _, err := client.SearchArtist(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("SearchArtist: expected ErrNotFound, got %v", err)
	}
}

func TestPlayItem_ISOTimeIsLexicographicallySortable(t *testing.T) {
	earlier := PlayItem{PlayedAt: time.Date(2025, 1, 1, 9, 59, 59, 900e6, time.UTC)}
	later := PlayItem{PlayedAt: time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)}

	if !(earlier.ISOTime() < later.ISOTime()) {
		t.Errorf("iso_time ordering broken: %q !< %q", earlier.ISOTime(), later.ISOTime())
	}
}
