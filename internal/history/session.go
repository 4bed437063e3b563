package history

// longestSession walks the chronologically sorted stream once, splitting it
// into sessions wherever the gap between adjacent plays exceeds SessionGap,
// and returns the session with the longest wall-clock span. Equal spans keep
// the earlier session. Returns nil for an empty stream; a single event is a
// zero-duration session containing that one play.
func longestSession(sorted []PlayEvent) *Session {
	if len(sorted) == 0 {
		return nil
	}

	totalSessions := 0
	bestStart, bestEnd := 0, 0
	start := 0

	endSession := func(end int) {
		totalSessions++
		span := sorted[end].PlayedAt.Sub(sorted[start].PlayedAt)
		bestSpan := sorted[bestEnd].PlayedAt.Sub(sorted[bestStart].PlayedAt)
		if span > bestSpan {
			bestStart, bestEnd = start, end
		}
	}

	for i := 1; i < len(sorted); i++ {
		if sorted[i].PlayedAt.Sub(sorted[i-1].PlayedAt) > SessionGap {
			endSession(i - 1)
			start = i
		}
	}
	endSession(len(sorted) - 1)

	winner := sorted[bestStart : bestEnd+1]
	session := &Session{
		Start:           sorted[bestStart].PlayedAt,
		End:             sorted[bestEnd].PlayedAt,
		DurationMinutes: int(sorted[bestEnd].PlayedAt.Sub(sorted[bestStart].PlayedAt).Minutes()),
		TotalSessions:   totalSessions,
		Insights:        sessionInsights(winner),
	}
	return session
}

func sessionInsights(events []PlayEvent) SessionInsights {
	insights := SessionInsights{}
	tracks := make(map[string]bool)
	artists := make(map[string]bool)

	// TotalTracks spans every play in the session; the id guards only keep
	// unidentified events out of the unique sets.
	insights.TotalTracks = len(events)
	for _, ev := range events {
		if ev.TrackID != "" {
			tracks[ev.TrackID] = true
		}
		if ev.ArtistID != "" {
			insights.TotalArtists++
			artists[ev.ArtistID] = true
		}
	}
	insights.UniqueTracks = len(tracks)
	insights.UniqueArtists = len(artists)
	return insights
}
