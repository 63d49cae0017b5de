package cmd

import (
	"encoding/json"
	"fmt"

	"melodex/config"
	"melodex/db"
	"melodex/repository"

	"github.com/spf13/cobra"
)

var (
	statsN    int
	statsFrom int
	statsTo   int
	statsYear int
)

var statsCmd = &cobra.Command{
	Use:   "stats <query>",
	Short: "Run an analytics query against the catalog",
	Long: `Run one of the read-only analytics queries and print the result as JSON.

Queries:
  prolific-single-artists   top producers of singles in [--from, --to], capped at --n
  last-single-year          artists whose most recent single was released in --year
  top-genres                most represented genres by song count, capped at --n
  album-and-single-artists  artists with both an album and a single
  most-rated-songs          most rated songs in [--from, --to], capped at --n
  most-engaged-users        users with the most ratings in [--from, --to], capped at --n`,
	Args: cobra.ExactArgs(1),
	RunE: runStats,
}

func init() {
	statsCmd.Flags().IntVar(&statsN, "n", 10, "result cap for top-n queries")
	statsCmd.Flags().IntVar(&statsFrom, "from", 0, "start year (inclusive)")
	statsCmd.Flags().IntVar(&statsTo, "to", 9999, "end year (inclusive)")
	statsCmd.Flags().IntVar(&statsYear, "year", 0, "target year for last-single-year")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	ctx := cmd.Context()

	if err := db.ConnectDB(cfg); err != nil {
		return err
	}
	defer db.CloseDB()

	analytics := repository.NewMySQLAnalyticsRepository(db.DB)

	var result interface{}
	var err error
	switch args[0] {
	case "prolific-single-artists":
		result, err = analytics.MostProlificSingleArtists(ctx, statsN, statsFrom, statsTo)
	case "last-single-year":
		result, err = analytics.ArtistsWithLastSingleIn(ctx, statsYear)
	case "top-genres":
		result, err = analytics.TopSongGenres(ctx, statsN)
	case "album-and-single-artists":
		result, err = analytics.AlbumAndSingleArtists(ctx)
	case "most-rated-songs":
		result, err = analytics.MostRatedSongs(ctx, statsFrom, statsTo, statsN)
	case "most-engaged-users":
		result, err = analytics.MostEngagedUsers(ctx, statsFrom, statsTo, statsN)
	default:
		return fmt.Errorf("unknown query %q", args[0])
	}
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
