// cmd/extract.go
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kgandhi/trackkeeper/pkg/history"
	"github.com/kgandhi/trackkeeper/pkg/spotify"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Fetch recent plays and merge them into the yearly record",
	Long: `Fetch the trailing window of recently played tracks from the Spotify Web
API and merge them into this year's CSV record. Plays already present (by
timestamp) are skipped, so running extract twice is harmless.

Requires a cached user token; run 'trackkeeper auth' once to create it.

Examples:
  trackkeeper extract
  trackkeeper extract --verbose`,
	Args: cobra.NoArgs,
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	start := time.Now()

	if err := extract(cmd.Context()); err != nil {
		newSink().Notify(fmt.Sprintf("extract: %v", err))
		return err
	}

	slog.Info("extract finished", "runtime", time.Since(start).Round(time.Millisecond))
	return nil
}

func extract(ctx context.Context) error {
	creds, err := credentials()
	if err != nil {
		return fmt.Errorf("spotify authentication: %w", err)
	}

	client, err := spotify.NewUserClient(ctx, creds, viper.GetString("auth.token_cache"))
	if err != nil {
		return fmt.Errorf("spotify authentication: %w", err)
	}

	window := time.Duration(viper.GetInt("fetch.window_hours")) * time.Hour
	after := time.Now().Add(-window)

	items, err := client.RecentlyPlayed(ctx, after, viper.GetInt("fetch.limit"))
	if err != nil {
		return err
	}

	path := recordPath(time.Now().Year())
	rec, err := history.Load(path)
	if err != nil {
		return err
	}

	merger, err := history.NewMerger()
	if err != nil {
		return err
	}
	merger.Merge(rec, items)

	if err := rec.Save(path); err != nil {
		return err
	}
	slog.Info("record written", "path", path, "rows", rec.Len())

	// Best effort: losing a refreshed token only costs a re-auth later.
	if err := client.PersistToken(); err != nil {
		slog.Warn("could not persist refreshed token", "error", err)
	}
	return nil
}
