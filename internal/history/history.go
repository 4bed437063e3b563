// Package history aggregates a raw chronological play-event stream into
// listening statistics: totals, peak hour, weekday averages, a calendar
// heatmap, and the longest contiguous listening session.
package history

import (
	"sort"
	"time"
)

// SessionGap is the inactivity window that closes a listening session. Two
// chronologically-adjacent plays further apart than this belong to different
// sessions. The value is not configurable so that stored summaries stay
// comparable across imports.
const SessionGap = 30 * time.Minute

// PlayEvent is one play from a history export or an incremental sync.
// PlayedAt must be a real calendar instant; events may arrive out of order.
type PlayEvent struct {
	TrackID    string
	ArtistID   string
	AlbumID    string
	PlayedAt   time.Time
	DurationMs int64
}

// SessionInsights are computed only over the events inside one session.
type SessionInsights struct {
	TotalTracks   int
	UniqueTracks  int
	TotalArtists  int
	UniqueArtists int
}

// Session is the single longest contiguous listening session found in the
// stream.
type Session struct {
	Start           time.Time
	End             time.Time
	DurationMinutes int

	// TotalSessions counts every session detected across the whole stream,
	// not just the winner.
	TotalSessions int

	Insights SessionInsights
}

// DailyCount is one calendar day with at least one play. Days with zero
// plays are absent and rendered as zero downstream.
type DailyCount struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Count int    `json:"count"`
}

// Heatmap is the per-day play distribution for an activity grid.
type Heatmap struct {
	DailyCounts []DailyCount `json:"dailyCounts"`
	Years       []int        `json:"years"`
	MaxCount    int          `json:"maxCount"`
}

// HourCount is one hour-of-day bucket.
type HourCount struct {
	Hour  int `json:"hour"`
	Count int `json:"count"`
}

// WeekdayAnalysis buckets plays by day of week (Sunday through Saturday).
type WeekdayAnalysis struct {
	DayCounts     map[string]int `json:"dayCountMap"`
	WeekdayAvg    float64        `json:"weekdayAvg"`
	WeekendAvg    float64        `json:"weekendAvg"`
	MostActiveDay string         `json:"mostActiveDay"`
}

// Summary is the full aggregation over one event stream.
type Summary struct {
	TotalTracks    int
	UniqueTracks   int
	UniqueArtists  int
	TotalMs        int64
	PeakHour       int
	HourCounts     []HourCount
	Weekdays       WeekdayAnalysis
	Heatmap        Heatmap
	LongestSession *Session // nil when the stream is empty
}

// ListeningTime splits TotalMs for display.
func (s Summary) ListeningTime() (hours, minutes int) {
	hours = int(s.TotalMs / (1000 * 60 * 60))
	minutes = int(s.TotalMs % (1000 * 60 * 60) / (1000 * 60))
	return
}

// Aggregate computes the summary for an event stream. Events with a zero
// timestamp are dropped. An empty stream produces zero counts, empty heatmap
// slices and a nil longest session.
func Aggregate(events []PlayEvent) Summary {
	sorted := make([]PlayEvent, 0, len(events))
	for _, ev := range events {
		if ev.PlayedAt.IsZero() {
			continue
		}
		sorted = append(sorted, ev)
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].PlayedAt.Before(sorted[j].PlayedAt)
	})

	summary := Summary{
		TotalTracks: len(sorted),
		Heatmap: Heatmap{
			DailyCounts: []DailyCount{},
			Years:       []int{},
		},
	}

	uniqueTracks := make(map[string]bool)
	uniqueArtists := make(map[string]bool)
	var hourCounts [24]int
	var dayCounts [7]int

	for _, ev := range sorted {
		summary.TotalMs += ev.DurationMs
		if ev.TrackID != "" {
			uniqueTracks[ev.TrackID] = true
		}
		if ev.ArtistID != "" {
			uniqueArtists[ev.ArtistID] = true
		}
		hourCounts[ev.PlayedAt.Hour()]++
		dayCounts[int(ev.PlayedAt.Weekday())]++
	}
	summary.UniqueTracks = len(uniqueTracks)
	summary.UniqueArtists = len(uniqueArtists)

	summary.HourCounts = make([]HourCount, 24)
	peakCount := 0
	for hour, count := range hourCounts {
		summary.HourCounts[hour] = HourCount{Hour: hour, Count: count}
		// Strict comparison: equal counts keep the lower hour.
		if count > peakCount {
			peakCount = count
			summary.PeakHour = hour
		}
	}

	summary.Weekdays = analyzeWeekdays(dayCounts)
	summary.Heatmap = buildHeatmap(sorted)
	summary.LongestSession = longestSession(sorted)

	return summary
}

func analyzeWeekdays(dayCounts [7]int) WeekdayAnalysis {
	wa := WeekdayAnalysis{DayCounts: make(map[string]int, 7)}

	weekdayTotal := 0
	weekendTotal := 0
	best := 0
	for day, count := range dayCounts {
		wa.DayCounts[time.Weekday(day).String()] = count
		if day == 0 || day == 6 {
			weekendTotal += count
		} else {
			weekdayTotal += count
		}
		if count > best {
			best = count
			wa.MostActiveDay = time.Weekday(day).String()
		}
	}
	if wa.MostActiveDay == "" {
		wa.MostActiveDay = time.Sunday.String()
	}
	wa.WeekdayAvg = float64(weekdayTotal) / 5
	wa.WeekendAvg = float64(weekendTotal) / 2
	return wa
}

func buildHeatmap(sorted []PlayEvent) Heatmap {
	hm := Heatmap{DailyCounts: []DailyCount{}, Years: []int{}}

	byDate := make(map[string]int)
	years := make(map[int]bool)
	for _, ev := range sorted {
		byDate[ev.PlayedAt.Format("2006-01-02")]++
		years[ev.PlayedAt.Year()] = true
	}

	for date, count := range byDate {
		hm.DailyCounts = append(hm.DailyCounts, DailyCount{Date: date, Count: count})
		if count > hm.MaxCount {
			hm.MaxCount = count
		}
	}
	// ISO dates sort correctly as strings.
	sort.Slice(hm.DailyCounts, func(i, j int) bool {
		return hm.DailyCounts[i].Date < hm.DailyCounts[j].Date
	})

	for year := range years {
		hm.Years = append(hm.Years, year)
	}
	sort.Ints(hm.Years)

	return hm
}
