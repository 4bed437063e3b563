package history

import (
	"testing"
	"time"
)

func event(trackID, artistID string, playedAt time.Time, durationMs int64) PlayEvent {
	return PlayEvent{
		TrackID:    trackID,
		ArtistID:   artistID,
		AlbumID:    "album-" + trackID,
		PlayedAt:   playedAt,
		DurationMs: durationMs,
	}
}

func TestAggregateEmptyStream(t *testing.T) {
	summary := Aggregate(nil)

	if summary.TotalTracks != 0 || summary.UniqueTracks != 0 || summary.UniqueArtists != 0 {
		t.Errorf("expected zero counts, got %+v", summary)
	}
	if len(summary.Heatmap.DailyCounts) != 0 || len(summary.Heatmap.Years) != 0 || summary.Heatmap.MaxCount != 0 {
		t.Errorf("expected empty heatmap, got %+v", summary.Heatmap)
	}
	if summary.LongestSession != nil {
		t.Errorf("expected nil longest session, got %+v", summary.LongestSession)
	}
}

func TestAggregateCounts(t *testing.T) {
	base := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)
	events := []PlayEvent{
		event("t1", "a1", base, 60000),
		event("t1", "a1", base.Add(5*time.Minute), 60000),
		event("t2", "a2", base.Add(10*time.Minute), 120000),
	}

	summary := Aggregate(events)
	if summary.TotalTracks != 3 {
		t.Errorf("expected 3 total tracks, got %d", summary.TotalTracks)
	}
	if summary.UniqueTracks != 2 {
		t.Errorf("expected 2 unique tracks, got %d", summary.UniqueTracks)
	}
	if summary.UniqueArtists != 2 {
		t.Errorf("expected 2 unique artists, got %d", summary.UniqueArtists)
	}
	if summary.TotalMs != 240000 {
		t.Errorf("expected 240000 ms, got %d", summary.TotalMs)
	}
}

func TestAggregateHandlesUnsortedInput(t *testing.T) {
	base := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)
	events := []PlayEvent{
		event("t3", "a1", base.Add(20*time.Minute), 0),
		event("t1", "a1", base, 0),
		event("t2", "a1", base.Add(10*time.Minute), 0),
	}

	summary := Aggregate(events)
	if summary.LongestSession == nil {
		t.Fatal("expected a session")
	}
	if !summary.LongestSession.Start.Equal(base) {
		t.Errorf("expected session start %v, got %v", base, summary.LongestSession.Start)
	}
	if summary.LongestSession.DurationMinutes != 20 {
		t.Errorf("expected 20 minute session, got %d", summary.LongestSession.DurationMinutes)
	}
}

func TestAggregateSkipsZeroTimestamps(t *testing.T) {
	base := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)
	events := []PlayEvent{
		event("t1", "a1", base, 1000),
		{TrackID: "bad", ArtistID: "a1", DurationMs: 1000},
	}

	summary := Aggregate(events)
	if summary.TotalTracks != 1 {
		t.Errorf("expected malformed event dropped, got %d tracks", summary.TotalTracks)
	}
	if summary.TotalMs != 1000 {
		t.Errorf("expected 1000 ms, got %d", summary.TotalMs)
	}
}

func TestPeakHourTieBreaksToLowestHour(t *testing.T) {
	day := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	events := []PlayEvent{
		event("t1", "a1", day.Add(7*time.Hour), 0),
		event("t2", "a1", day.Add(3*time.Hour), 0),
		event("t3", "a1", day.Add(7*time.Hour).Add(10*time.Minute), 0),
		event("t4", "a1", day.Add(3*time.Hour).Add(10*time.Minute), 0),
	}

	summary := Aggregate(events)
	if summary.PeakHour != 3 {
		t.Errorf("expected peak hour 3 on tie, got %d", summary.PeakHour)
	}
}

func TestHeatmapTotalsMatchTotalTracks(t *testing.T) {
	base := time.Date(2023, 12, 30, 22, 0, 0, 0, time.UTC)
	var events []PlayEvent
	for i := 0; i < 10; i++ {
		events = append(events, event("t1", "a1", base.Add(time.Duration(i)*13*time.Hour), 0))
	}

	summary := Aggregate(events)
	total := 0
	for _, dc := range summary.Heatmap.DailyCounts {
		total += dc.Count
		if dc.Count > summary.Heatmap.MaxCount {
			t.Errorf("daily count %d exceeds maxCount %d", dc.Count, summary.Heatmap.MaxCount)
		}
	}
	if total != summary.TotalTracks {
		t.Errorf("heatmap total %d != total tracks %d", total, summary.TotalTracks)
	}

	// The stream crosses new year: both years present, ascending.
	if len(summary.Heatmap.Years) != 2 || summary.Heatmap.Years[0] != 2023 || summary.Heatmap.Years[1] != 2024 {
		t.Errorf("expected years [2023 2024], got %v", summary.Heatmap.Years)
	}
}

func TestWeekdayAverages(t *testing.T) {
	// 2024-03-04 is a Monday, 2024-03-09 a Saturday.
	monday := time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC)
	saturday := time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC)
	events := []PlayEvent{
		event("t1", "a1", monday, 0),
		event("t2", "a1", monday.Add(time.Hour), 0),
		event("t3", "a1", saturday, 0),
	}

	summary := Aggregate(events)
	wa := summary.Weekdays
	if wa.WeekdayAvg != 2.0/5 {
		t.Errorf("expected weekday avg %f, got %f", 2.0/5, wa.WeekdayAvg)
	}
	if wa.WeekendAvg != 1.0/2 {
		t.Errorf("expected weekend avg %f, got %f", 1.0/2, wa.WeekendAvg)
	}
	if wa.MostActiveDay != "Monday" {
		t.Errorf("expected Monday most active, got %s", wa.MostActiveDay)
	}
	if wa.DayCounts["Monday"] != 2 || wa.DayCounts["Saturday"] != 1 {
		t.Errorf("unexpected day counts: %v", wa.DayCounts)
	}
}

func TestListeningTime(t *testing.T) {
	summary := Summary{TotalMs: 2*60*60*1000 + 17*60*1000}
	hours, minutes := summary.ListeningTime()
	if hours != 2 || minutes != 17 {
		t.Errorf("expected 2h17m, got %dh%dm", hours, minutes)
	}
}
