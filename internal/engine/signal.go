// Package engine computes a listener's top statistics from raw Spotify
// signals: playlist memberships, saved-library tracks, top-chart positions,
// and recently-played events.
package engine

import "time"

// Artist identifies an artist by its provider id.
type Artist struct {
	ID   string
	Name string
}

// Image is album cover art metadata.
type Image struct {
	URL    string
	Width  int
	Height int
}

// Album is the display metadata attached to a signal. Value record, fetched
// from the provider and never mutated here.
type Album struct {
	ID      string
	Name    string
	Artists []Artist
	Images  []Image
}

// SignalKind tags the source a signal was observed in.
type SignalKind int

const (
	SignalPlaylist SignalKind = iota
	SignalTopTrack
	SignalSaved
	SignalRecentlyPlayed
)

// Signal is one observed occurrence linking an album to the listener. Signals
// are ephemeral: they exist only for the duration of one ranking computation.
type Signal struct {
	Kind  SignalKind
	Album Album

	// Position is the 1-based chart position. Top-track signals only.
	Position int

	// PlayedAt is when the play happened. Recently-played signals only.
	PlayedAt time.Time
}

// TopTrackEntry is one entry of the user's top-tracks chart.
type TopTrackEntry struct {
	Position int // 1-based
	Album    Album
}

// SavedTrackEntry is one track of the user's saved library.
type SavedTrackEntry struct {
	Album Album
}

// PlaylistTrackEntry is one playlist-track membership.
type PlaylistTrackEntry struct {
	Album Album
}

// RecentlyPlayedEntry is one timestamped play.
type RecentlyPlayedEntry struct {
	Album    Album
	PlayedAt time.Time
}

// Sources carries the four raw lists a top-stats request fetches from the
// provider.
type Sources struct {
	TopTracks      []TopTrackEntry
	SavedTracks    []SavedTrackEntry
	PlaylistTracks []PlaylistTrackEntry
	RecentlyPlayed []RecentlyPlayedEntry
}

// ChartSize returns N for the top-track position weighting.
func (s Sources) ChartSize() int {
	return len(s.TopTracks)
}

// Normalize flattens the four source lists into signals, one per source
// occurrence. No deduplication happens here: a track present in both the
// top-tracks chart and the saved library yields two independent signals
// feeding the same album bucket.
//
// Records with no album id, and recently-played records with no timestamp,
// are skipped. One bad upstream record never fails the batch.
func Normalize(src Sources) []Signal {
	signals := make([]Signal, 0,
		len(src.PlaylistTracks)+len(src.TopTracks)+len(src.SavedTracks)+len(src.RecentlyPlayed))

	for _, entry := range src.PlaylistTracks {
		if entry.Album.ID == "" {
			continue
		}
		signals = append(signals, Signal{Kind: SignalPlaylist, Album: entry.Album})
	}

	for _, entry := range src.TopTracks {
		if entry.Album.ID == "" || entry.Position < 1 {
			continue
		}
		signals = append(signals, Signal{Kind: SignalTopTrack, Album: entry.Album, Position: entry.Position})
	}

	for _, entry := range src.SavedTracks {
		if entry.Album.ID == "" {
			continue
		}
		signals = append(signals, Signal{Kind: SignalSaved, Album: entry.Album})
	}

	for _, entry := range src.RecentlyPlayed {
		if entry.Album.ID == "" || entry.PlayedAt.IsZero() {
			continue
		}
		signals = append(signals, Signal{Kind: SignalRecentlyPlayed, Album: entry.Album, PlayedAt: entry.PlayedAt})
	}

	return signals
}
