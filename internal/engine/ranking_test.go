package engine

import (
	"math"
	"testing"
	"time"
)

var rankNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func album(id string) Album {
	return Album{ID: id, Name: "Album " + id, Artists: []Artist{{ID: "a-" + id, Name: "Artist " + id}}}
}

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestRankAlbumsPlaylistSignal(t *testing.T) {
	signals := []Signal{
		{Kind: SignalPlaylist, Album: album("x")},
		{Kind: SignalPlaylist, Album: album("x")},
	}

	ranked := RankAlbums(signals, RankOptions{Now: rankNow})
	if len(ranked) != 1 {
		t.Fatalf("expected 1 album, got %d", len(ranked))
	}
	a := ranked[0]
	if !approxEqual(a.Score, 2*InPlaylistWeight) {
		t.Errorf("expected score %f, got %f", 2*InPlaylistWeight, a.Score)
	}
	if a.Occurrences != 2 || a.PlaylistOccurrences != 2 {
		t.Errorf("expected 2 occurrences and 2 playlist occurrences, got %d/%d", a.Occurrences, a.PlaylistOccurrences)
	}
}

func TestRankAlbumsTopTrackPositionWeight(t *testing.T) {
	// Chart of 50: position 1 contributes 50*0.2, position 50 contributes 1*0.2.
	signals := []Signal{
		{Kind: SignalTopTrack, Album: album("first"), Position: 1},
		{Kind: SignalTopTrack, Album: album("last"), Position: 50},
	}

	ranked := RankAlbums(signals, RankOptions{Now: rankNow, ChartSize: 50})
	if ranked[0].ID != "first" {
		t.Fatalf("expected position 1 album ranked first, got %q", ranked[0].ID)
	}
	if !approxEqual(ranked[0].Score, 50*TopTrackWeight) {
		t.Errorf("position 1: expected score %f, got %f", 50*TopTrackWeight, ranked[0].Score)
	}
	if !approxEqual(ranked[1].Score, 1*TopTrackWeight) {
		t.Errorf("position 50: expected score %f, got %f", 1*TopTrackWeight, ranked[1].Score)
	}
}

func TestRankAlbumsChartSizeFallbackUsesHighestPosition(t *testing.T) {
	// With no explicit chart size and the position-2 entry dropped upstream,
	// the list length must still be inferred as 3, not 2.
	signals := []Signal{
		{Kind: SignalTopTrack, Album: album("first"), Position: 1},
		{Kind: SignalTopTrack, Album: album("third"), Position: 3},
	}

	ranked := RankAlbums(signals, RankOptions{Now: rankNow})
	if !approxEqual(ranked[0].Score, 3*TopTrackWeight) {
		t.Errorf("position 1: expected score %f, got %f", 3*TopTrackWeight, ranked[0].Score)
	}
	if !approxEqual(ranked[1].Score, 1*TopTrackWeight) {
		t.Errorf("position 3: expected score %f, got %f", 1*TopTrackWeight, ranked[1].Score)
	}
}

func TestRankAlbumsFreshAccumulatorGetsOwnContribution(t *testing.T) {
	// An album first seen by any signal starts from zero and still receives
	// that signal's contribution.
	ranked := RankAlbums([]Signal{{Kind: SignalPlaylist, Album: album("x")}}, RankOptions{Now: rankNow})
	if !approxEqual(ranked[0].Score, InPlaylistWeight) {
		t.Errorf("expected first playlist signal to contribute %f, got %f", InPlaylistWeight, ranked[0].Score)
	}
}

func TestRankAlbumsSavedBoostIsMultiplicative(t *testing.T) {
	// Saved alone: zero prior score means zero boost.
	ranked := RankAlbums([]Signal{{Kind: SignalSaved, Album: album("x")}}, RankOptions{Now: rankNow})
	a := ranked[0]
	if a.Score != 0 {
		t.Errorf("saved-only album should score 0, got %f", a.Score)
	}
	if a.SavedTracks != 1 || a.Occurrences != 1 {
		t.Errorf("expected savedTracks=1 occurrences=1, got %d/%d", a.SavedTracks, a.Occurrences)
	}

	// Saved on top of a playlist signal boosts the accumulated score by 20%.
	ranked = RankAlbums([]Signal{
		{Kind: SignalSaved, Album: album("x")},
		{Kind: SignalPlaylist, Album: album("x")},
	}, RankOptions{Now: rankNow})
	want := InPlaylistWeight * (1 + SavedTrackWeight)
	if !approxEqual(ranked[0].Score, want) {
		t.Errorf("expected boosted score %f, got %f", want, ranked[0].Score)
	}
}

func TestRankAlbumsCanonicalOrder(t *testing.T) {
	// The saved boost applies after playlist and top-track contributions but
	// before recently-played ones, regardless of input slice order.
	recent := rankNow.Add(-1 * time.Hour)
	shuffled := []Signal{
		{Kind: SignalRecentlyPlayed, Album: album("x"), PlayedAt: recent},
		{Kind: SignalSaved, Album: album("x")},
		{Kind: SignalTopTrack, Album: album("x"), Position: 1},
		{Kind: SignalPlaylist, Album: album("x")},
	}
	ordered := []Signal{
		{Kind: SignalPlaylist, Album: album("x")},
		{Kind: SignalTopTrack, Album: album("x"), Position: 1},
		{Kind: SignalSaved, Album: album("x")},
		{Kind: SignalRecentlyPlayed, Album: album("x"), PlayedAt: recent},
	}

	opts := RankOptions{Now: rankNow, ChartSize: 10}
	got := RankAlbums(shuffled, opts)[0].Score
	want := (InPlaylistWeight+10*TopTrackWeight)*(1+SavedTrackWeight) + 1*RecentlyPlayedWeight
	if !approxEqual(got, want) {
		t.Errorf("expected canonical-order score %f, got %f", want, got)
	}
	if other := RankAlbums(ordered, opts)[0].Score; !approxEqual(got, other) {
		t.Errorf("score depends on slice order: %f vs %f", got, other)
	}
}

func TestRankAlbumsRecencyBucketsExclusive(t *testing.T) {
	cases := []struct {
		name     string
		playedAt time.Time
		want     float64
	}{
		{"under 6h", rankNow.Add(-3 * time.Hour), 1 * RecentlyPlayedWeight},
		{"under 24h", rankNow.Add(-12 * time.Hour), 0.5 * RecentlyPlayedWeight},
		{"under 48h", rankNow.Add(-36 * time.Hour), 0.2 * RecentlyPlayedWeight},
		{"older than 48h", rankNow.Add(-72 * time.Hour), 0},
	}

	for _, tc := range cases {
		signals := []Signal{{Kind: SignalRecentlyPlayed, Album: album("x"), PlayedAt: tc.playedAt}}
		a := RankAlbums(signals, RankOptions{Now: rankNow})[0]
		if !approxEqual(a.Score, tc.want) {
			t.Errorf("%s: expected score %f, got %f", tc.name, tc.want, a.Score)
		}
		if a.RecentPlayCount != 1 {
			t.Errorf("%s: recent play count should be 1 even outside buckets, got %d", tc.name, a.RecentPlayCount)
		}
		if !a.LastPlayedAt.Equal(tc.playedAt) {
			t.Errorf("%s: lastPlayedAt not updated", tc.name)
		}
	}
}

func TestRankAlbumsIdempotent(t *testing.T) {
	signals := []Signal{
		{Kind: SignalPlaylist, Album: album("a")},
		{Kind: SignalTopTrack, Album: album("b"), Position: 2},
		{Kind: SignalSaved, Album: album("a")},
		{Kind: SignalRecentlyPlayed, Album: album("c"), PlayedAt: rankNow.Add(-2 * time.Hour)},
	}
	opts := RankOptions{Now: rankNow, ChartSize: 5}

	first := RankAlbums(signals, opts)
	second := RankAlbums(signals, opts)

	if len(first) != len(second) {
		t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID || !approxEqual(first[i].Score, second[i].Score) {
			t.Errorf("rank %d differs between runs: %v vs %v", i, first[i], second[i])
		}
	}
}

func TestRankAlbumsPlaylistMonotonicity(t *testing.T) {
	base := []Signal{
		{Kind: SignalPlaylist, Album: album("a")},
		{Kind: SignalTopTrack, Album: album("b"), Position: 1},
	}
	opts := RankOptions{Now: rankNow, ChartSize: 1}

	before := RankAlbums(base, opts)
	after := RankAlbums(append(base, Signal{Kind: SignalPlaylist, Album: album("a")}), opts)

	scoreOf := func(ranked []AlbumScore, id string) float64 {
		for _, a := range ranked {
			if a.ID == id {
				return a.Score
			}
		}
		t.Fatalf("album %q missing", id)
		return 0
	}

	if scoreOf(after, "a") < scoreOf(before, "a") {
		t.Errorf("adding a playlist signal decreased the score: %f -> %f", scoreOf(before, "a"), scoreOf(after, "a"))
	}
	if !approxEqual(scoreOf(after, "b"), scoreOf(before, "b")) {
		t.Errorf("unrelated album score changed: %f -> %f", scoreOf(before, "b"), scoreOf(after, "b"))
	}
}

func TestRankAlbumsStableTieBreak(t *testing.T) {
	// Equal scores keep first-seen order.
	signals := []Signal{
		{Kind: SignalPlaylist, Album: album("first")},
		{Kind: SignalPlaylist, Album: album("second")},
	}
	ranked := RankAlbums(signals, RankOptions{Now: rankNow})
	if ranked[0].ID != "first" || ranked[1].ID != "second" {
		t.Errorf("tie-break lost insertion order: %q, %q", ranked[0].ID, ranked[1].ID)
	}
}
