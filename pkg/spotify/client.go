// pkg/spotify/client.go

package spotify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	spotifyapi "github.com/zmb3/spotify/v2"
)

// ErrNotFound means a search returned zero results. Callers treat it as a
// null field, not a failure.
var ErrNotFound = errors.New("no search result")

// Client wraps the Spotify Web API with the three calls the pipeline makes:
// list recently played items, search a track, search an artist.
type Client struct {
	api       *spotifyapi.Client
	tokenPath string
}

// NewFromAPI wraps an already-configured API client. Tests use this with a
// client pointed at a local server.
func NewFromAPI(api *spotifyapi.Client) *Client {
	return &Client{api: api}
}

// RecentlyPlayed fetches up to limit plays after the given instant. The API
// caps a single page at 50 items.
func (c *Client) RecentlyPlayed(ctx context.Context, after time.Time, limit int) ([]PlayItem, error) {
	if limit <= 0 || limit > 50 {
		limit = 50
	}

	items, err := c.api.PlayerRecentlyPlayedOpt(ctx, &spotifyapi.RecentlyPlayedOptions{
		Limit:        spotifyapi.Numeric(limit),
		AfterEpochMs: after.UnixMilli(),
	})
	if err != nil {
		return nil, fmt.Errorf("recently played: %w", err)
	}

	plays := make([]PlayItem, 0, len(items))
	for _, item := range items {
		artists := make([]string, 0, len(item.Track.Artists))
		for _, a := range item.Track.Artists {
			artists = append(artists, a.Name)
		}
		plays = append(plays, PlayItem{
			Track:    item.Track.Name,
			Artists:  artists,
			PlayedAt: item.PlayedAt,
		})
	}

	slog.Info("fetched recently played", "after", after.UTC().Format(time.RFC3339), "count", len(plays))
	return plays, nil
}

// SearchTrack returns the top match for a free-text track query.
func (c *Client) SearchTrack(ctx context.Context, query string) (*TrackSearchResult, error) {
	result, err := c.api.Search(ctx, query, spotifyapi.SearchTypeTrack, spotifyapi.Limit(1))
	if err != nil {
		return nil, fmt.Errorf("track search %q: %w", query, err)
	}
	if result.Tracks == nil || len(result.Tracks.Tracks) == 0 {
		return nil, ErrNotFound
	}

	top := result.Tracks.Tracks[0]
	artist := ""
	if len(top.Artists) > 0 {
		artist = top.Artists[0].Name
	}
	return &TrackSearchResult{
		Name:        top.Name,
		Artist:      artist,
		DurationSec: top.TimeDuration().Seconds(),
	}, nil
}

// SearchArtist returns the top match for an artist name.
func (c *Client) SearchArtist(ctx context.Context, name string) (*ArtistSearchResult, error) {
	result, err := c.api.Search(ctx, name, spotifyapi.SearchTypeArtist, spotifyapi.Limit(1))
	if err != nil {
		return nil, fmt.Errorf("artist search %q: %w", name, err)
	}
	if result.Artists == nil || len(result.Artists.Artists) == 0 {
		return nil, ErrNotFound
	}

	top := result.Artists.Artists[0]
	return &ArtistSearchResult{
		Name:   top.Name,
		Genres: top.Genres,
	}, nil
}
