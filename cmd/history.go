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
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/skylerx/mystats/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history [from] [to (optional)]",
	Short: "Summarizes stored listening history",
	Long: `Aggregates the stored plays for the given date or date range. Date
strings look like 'yyyy', 'yyyy-mm', 'yyyy-mm-dd', or a relative offset like
'30d'. With no arguments the whole history is summarized.`,
	Args: cobra.RangeArgs(0, 2),
	Run: func(cmd *cobra.Command, args []string) {
		if err := printHistory(args); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
}

func printHistory(args []string) error {
	start := time.Time{}
	end := time.Now()
	if len(args) > 0 {
		var err error
		start, end, err = parseDateRangeFromArgs(args)
		if err != nil {
			return fmt.Errorf("printHistory: %w", err)
		}
	}

	db, err := openStore()
	if err != nil {
		return fmt.Errorf("printHistory: %w", err)
	}
	defer db.Close()

	user, err := resolveUser(db)
	if err != nil {
		return fmt.Errorf("printHistory: %w", err)
	}

	events, err := db.GetPlays(user.ID, start, end)
	if err != nil {
		return fmt.Errorf("printHistory: %w", err)
	}
	if len(events) == 0 {
		return fmt.Errorf("No plays found - run update or import first.")
	}

	summary := history.Aggregate(events)
	hours, minutes := summary.ListeningTime()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Stat", "Value"})
	table.Append([]string{"Total plays", strconv.Itoa(summary.TotalTracks)})
	table.Append([]string{"Unique tracks", strconv.Itoa(summary.UniqueTracks)})
	table.Append([]string{"Unique artists", strconv.Itoa(summary.UniqueArtists)})
	table.Append([]string{"Listening time", fmt.Sprintf("%dh %dm", hours, minutes)})
	table.Append([]string{"Most active day", summary.Weekdays.MostActiveDay})
	table.Append([]string{"Weekday avg", fmt.Sprintf("%.1f plays/day", summary.Weekdays.WeekdayAvg)})
	table.Append([]string{"Weekend avg", fmt.Sprintf("%.1f plays/day", summary.Weekdays.WeekendAvg)})
	table.Append([]string{"Busiest day count", strconv.Itoa(summary.Heatmap.MaxCount)})
	table.Append([]string{"Years covered", fmt.Sprint(summary.Heatmap.Years)})
	table.Render()

	fmt.Println(peakHourMessage(summary))

	if session := summary.LongestSession; session != nil {
		fmt.Printf("Longest session: %d minutes on %s (%d tracks, %d artists), %d sessions total\n",
			session.DurationMinutes,
			session.Start.Format("2006-01-02"),
			session.Insights.TotalTracks,
			session.Insights.UniqueArtists,
			session.TotalSessions)
	}

	return nil
}

// peakHourMessage renders the peak listening hour as a friendly line.
func peakHourMessage(summary history.Summary) string {
	if summary.TotalTracks == 0 {
		return "We couldn't determine your listening pattern from this data"
	}

	peakHour := summary.PeakHour
	displayHour := peakHour
	suffix := "AM"
	if peakHour >= 12 {
		suffix = "PM"
		if peakHour > 12 {
			displayHour = peakHour - 12
		}
	}
	if peakHour == 0 {
		displayHour = 12
		suffix = "AM"
	}

	switch {
	case peakHour >= 5 && peakHour < 9:
		return fmt.Sprintf("You're an early bird! Kicking off the day at %d %s with some nice tunes", displayHour, suffix)
	case peakHour >= 9 && peakHour < 12:
		return fmt.Sprintf("Mid-morning is your jam time! Most active at %d %s", displayHour, suffix)
	case peakHour >= 12 && peakHour < 17:
		return fmt.Sprintf("Afternoon delight! You love listening to music at %d %s", displayHour, suffix)
	case peakHour >= 17 && peakHour < 21:
		return fmt.Sprintf("Evening relaxer! Winding down (or getting hyped?) at %d %s with your favourite tracks", displayHour, suffix)
	default:
		// Both late night (21-23) and early morning (0-4)
		return fmt.Sprintf("You're a night owl! Blasting music at %d %s", displayHour, suffix)
	}
}
