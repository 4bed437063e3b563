package engine

import (
	"sort"
	"time"
)

// Per-signal weights. An album's score is the sum of independently-weighted
// contributions; no contribution type is applied twice for the same signal.
const (
	InPlaylistWeight     = 0.3
	TopTrackWeight       = 0.2
	SavedTrackWeight     = 0.2
	RecentlyPlayedWeight = 0.3
)

// Recency buckets for recently-played signals, tightest match wins.
const (
	recencyTight  = 6 * time.Hour
	recencyDay    = 24 * time.Hour
	recencyTwoDay = 48 * time.Hour
)

// AlbumScore is one ranked album. Built once per request and immutable after
// RankAlbums returns.
type AlbumScore struct {
	ID                  string
	Name                string
	Artists             []Artist
	Images              []Image
	Score               float64
	Occurrences         int
	RecentPlayCount     int
	PlaylistOccurrences int
	SavedTracks         int
	TotalPlayCount      int
	LastPlayedAt        time.Time // zero when no recent play was seen
}

// RankOptions pins the inputs that would otherwise make ranking
// time-dependent.
type RankOptions struct {
	// Now anchors the recency buckets. Tests pin this to a fixed instant.
	Now time.Time

	// ChartSize is the top-tracks list length N, so that chart position 1
	// contributes (N+1-1)*TopTrackWeight. When zero it is derived from the
	// top-track signals present.
	ChartSize int
}

// RankAlbums aggregates signals into per-album scores and returns them in
// descending score order. Albums with equal scores keep their first-seen
// order.
//
// The saved-track contribution is a multiplicative boost on the score
// accumulated so far, which makes processing order observable. Signals are
// therefore always applied in a canonical order regardless of slice order:
// playlist, then top-track, then saved, then recently-played.
func RankAlbums(signals []Signal, opts RankOptions) []AlbumScore {
	// Fallback chart size: the highest position seen. Counting signals would
	// undercount when malformed chart entries were dropped upstream.
	chartSize := opts.ChartSize
	if chartSize == 0 {
		for _, sig := range signals {
			if sig.Kind == SignalTopTrack && sig.Position > chartSize {
				chartSize = sig.Position
			}
		}
	}

	albums := make(map[string]*AlbumScore)
	var order []string

	get := func(album Album) *AlbumScore {
		if a, ok := albums[album.ID]; ok {
			return a
		}
		a := &AlbumScore{
			ID:      album.ID,
			Name:    album.Name,
			Artists: album.Artists,
			Images:  album.Images,
		}
		albums[album.ID] = a
		order = append(order, album.ID)
		return a
	}

	for _, kind := range []SignalKind{SignalPlaylist, SignalTopTrack, SignalSaved, SignalRecentlyPlayed} {
		for _, sig := range signals {
			if sig.Kind != kind {
				continue
			}
			a := get(sig.Album)
			a.Occurrences++

			switch kind {
			case SignalPlaylist:
				a.PlaylistOccurrences++
				a.Score += 1 * InPlaylistWeight

			case SignalTopTrack:
				a.Score += float64(chartSize+1-sig.Position) * TopTrackWeight

			case SignalSaved:
				a.SavedTracks++
				a.Score += a.Score * SavedTrackWeight

			case SignalRecentlyPlayed:
				a.RecentPlayCount++
				a.TotalPlayCount++
				if sig.PlayedAt.After(a.LastPlayedAt) {
					a.LastPlayedAt = sig.PlayedAt
				}
				switch age := opts.Now.Sub(sig.PlayedAt); {
				case age < recencyTight:
					a.Score += 1 * RecentlyPlayedWeight
				case age < recencyDay:
					a.Score += 0.5 * RecentlyPlayedWeight
				case age < recencyTwoDay:
					a.Score += 0.2 * RecentlyPlayedWeight
				}
			}
		}
	}

	ranked := make([]AlbumScore, 0, len(order))
	for _, id := range order {
		ranked = append(ranked, *albums[id])
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}
