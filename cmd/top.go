/*
Copyright 2020 Google LLC

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/skylerx/mystats/internal/engine"
	"github.com/skylerx/mystats/internal/spotify"
)

var topCmd = &cobra.Command{
	Use:   "top",
	Short: "Gets the user's top albums and genres",
	Long: `Fetches live listening signals from Spotify (top tracks, saved tracks,
playlists, recently played) and ranks albums and genres from them.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		err := printTopStats(
			viper.GetString("period"),
			viper.GetInt("albums"),
			viper.GetInt("genres"))
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(topCmd)

	var period string
	topCmd.Flags().StringVarP(&period, "period", "p", "medium", "time range: short, medium, or long")
	viper.BindPFlag("period", topCmd.Flags().Lookup("period"))

	var albums int
	topCmd.Flags().IntVar(&albums, "albums", 10, "number of albums to show")
	viper.BindPFlag("albums", topCmd.Flags().Lookup("albums"))

	var genres int
	topCmd.Flags().IntVar(&genres, "genres", 10, "number of genres to show")
	viper.BindPFlag("genres", topCmd.Flags().Lookup("genres"))
}

func printTopStats(period string, numAlbums, numGenres int) error {
	timerange, err := spotify.TimeRange(period)
	if err != nil {
		return fmt.Errorf("printTopStats: %w", err)
	}

	ctx := context.Background()
	client, err := spotifyClient(ctx)
	if err != nil {
		return fmt.Errorf("printTopStats: %w", err)
	}

	fmt.Println("Fetching listening signals...")
	sources, err := client.FetchSources(ctx, timerange)
	if err != nil {
		return fmt.Errorf("printTopStats: %w", err)
	}

	signals := engine.Normalize(sources)
	ranked := engine.RankAlbums(signals, engine.RankOptions{
		Now:       time.Now(),
		ChartSize: sources.ChartSize(),
	})

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"#", "Album", "Artist", "Score", "Recent Plays"})
	for i, album := range ranked {
		if i >= numAlbums {
			break
		}
		table.Append([]string{
			strconv.Itoa(i + 1),
			album.Name,
			artistNames(album.Artists),
			fmt.Sprintf("%.2f", album.Score),
			strconv.Itoa(album.RecentPlayCount),
		})
	}
	table.Render()
	fmt.Printf("Ranked %d albums from %d signals\n", len(ranked), len(signals))

	genres, err := client.FetchTopGenres(ctx, timerange)
	if err != nil {
		return fmt.Errorf("printTopStats: %w", err)
	}
	rankedGenres := engine.RankGenres(genres)

	genreTable := tablewriter.NewWriter(os.Stdout)
	genreTable.SetHeader([]string{"#", "Genre"})
	for i, genre := range rankedGenres {
		if i >= numGenres {
			break
		}
		genreTable.Append([]string{strconv.Itoa(i + 1), genre})
	}
	genreTable.Render()

	return nil
}

func artistNames(artists []engine.Artist) string {
	names := make([]string, 0, len(artists))
	for _, artist := range artists {
		names = append(names, artist.Name)
	}
	return strings.Join(names, ", ")
}
