package engine

import (
	"testing"
	"time"
)

func TestNormalizeProducesOneSignalPerOccurrence(t *testing.T) {
	playedAt := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	src := Sources{
		TopTracks:      []TopTrackEntry{{Position: 1, Album: album("x")}},
		SavedTracks:    []SavedTrackEntry{{Album: album("x")}},
		PlaylistTracks: []PlaylistTrackEntry{{Album: album("y")}},
		RecentlyPlayed: []RecentlyPlayedEntry{{Album: album("x"), PlayedAt: playedAt}},
	}

	signals := Normalize(src)
	if len(signals) != 4 {
		t.Fatalf("expected 4 signals, got %d", len(signals))
	}

	// A track in both top-tracks and saved yields two independent signals for
	// the same album bucket.
	count := 0
	for _, sig := range signals {
		if sig.Album.ID == "x" {
			count++
		}
	}
	if count != 3 {
		t.Errorf("expected 3 signals for album x, got %d", count)
	}
}

func TestNormalizeSkipsMalformedRecords(t *testing.T) {
	src := Sources{
		TopTracks:      []TopTrackEntry{{Position: 0, Album: album("x")}, {Position: 1, Album: Album{}}},
		SavedTracks:    []SavedTrackEntry{{Album: Album{}}},
		PlaylistTracks: []PlaylistTrackEntry{{Album: album("ok")}},
		RecentlyPlayed: []RecentlyPlayedEntry{{Album: album("x")}}, // no timestamp
	}

	signals := Normalize(src)
	if len(signals) != 1 {
		t.Fatalf("expected only the valid playlist signal, got %d signals", len(signals))
	}
	if signals[0].Kind != SignalPlaylist || signals[0].Album.ID != "ok" {
		t.Errorf("unexpected surviving signal: %+v", signals[0])
	}
}
