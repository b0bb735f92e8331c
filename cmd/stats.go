// cmd/stats.go
package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kgandhi/trackkeeper/pkg/history"
	"github.com/kgandhi/trackkeeper/pkg/stats"
)

var statsYear int

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show a yearly listening report",
	Long: `Summarize a year's enriched table: total plays, listening minutes, and
the most played artists, tracks, and genres.

Examples:
  trackkeeper stats
  trackkeeper stats --year 2024`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)

	statsCmd.Flags().IntVar(&statsYear, "year", 0, "calendar year to report (default: current)")
}

func runStats(cmd *cobra.Command, args []string) error {
	year := statsYear
	if year == 0 {
		year = time.Now().Year()
	}

	enriched, err := history.LoadEnriched(enrichedPath(year))
	if err != nil {
		return err
	}
	if enriched.Len() == 0 {
		fmt.Printf("No enriched data for %d (looked at %s)\n", year, enrichedPath(year))
		return nil
	}

	summary := stats.Compute(enriched)

	fmt.Printf("=== LISTENING REPORT %d ===\n", year)
	fmt.Printf("Total plays: %d\n", summary.Plays)
	fmt.Printf("Listening time: %.1f minutes (%.1f hours)\n", summary.ListeningMinutes, summary.ListeningMinutes/60)
	fmt.Printf("Distinct tracks: %d\n", summary.DistinctTracks)
	fmt.Printf("Distinct artists: %d\n", summary.DistinctArtists)

	printTop("TOP ARTISTS", summary.TopArtists)
	printTop("TOP TRACKS", summary.TopTracks)
	printTop("TOP GENRES", summary.TopGenres)
	return nil
}

func printTop(title string, counts []stats.Count) {
	if len(counts) == 0 {
		return
	}
	fmt.Printf("\n=== %s ===\n", title)
	for i, c := range counts {
		fmt.Printf("%2d. %s (%d plays)\n", i+1, c.Name, c.Plays)
	}
}
