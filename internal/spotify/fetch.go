package spotify

import (
	"context"
	"errors"
	"fmt"
	"time"

	zspotify "github.com/zmb3/spotify/v2"

	"github.com/skylerx/mystats/internal/engine"
	"github.com/skylerx/mystats/internal/store"
)

// Playlist paging is bounded so users with huge libraries don't dominate the
// sync time: only the first few playlists feed the ranking, up to a track cap.
const (
	playlistFetchCap = 5
	playlistTrackCap = 1000
)

// FetchSources gathers the four listening signal feeds for the current user.
func (c *Client) FetchSources(ctx context.Context, timerange zspotify.Range) (engine.Sources, error) {
	var src engine.Sources

	top, err := c.fetchTopTracks(ctx, timerange)
	if err != nil {
		return src, fmt.Errorf("fetching top tracks: %w", err)
	}
	src.TopTracks = top

	saved, err := c.fetchSavedTracks(ctx)
	if err != nil {
		return src, fmt.Errorf("fetching saved tracks: %w", err)
	}
	src.SavedTracks = saved

	playlist, err := c.fetchPlaylistTracks(ctx)
	if err != nil {
		return src, fmt.Errorf("fetching playlist tracks: %w", err)
	}
	src.PlaylistTracks = playlist

	recent, err := c.fetchRecentlyPlayed(ctx)
	if err != nil {
		return src, fmt.Errorf("fetching recently played: %w", err)
	}
	src.RecentlyPlayed = recent

	return src, nil
}

// FetchTopGenres returns the user's genres ordered as the API reports them,
// flattened across the top artists. Duplicates are intentional: the caller
// ranks by frequency.
func (c *Client) FetchTopGenres(ctx context.Context, timerange zspotify.Range) ([]string, error) {
	var page *zspotify.FullArtistPage
	err := c.call(ctx, func() error {
		var err error
		page, err = c.api.CurrentUsersTopArtists(ctx, zspotify.Limit(50), zspotify.Timerange(timerange))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("fetching top artists: %w", err)
	}

	var genres []string
	for _, artist := range page.Artists {
		genres = append(genres, artist.Genres...)
	}
	return genres, nil
}

// FetchPlaysSince returns recently played tracks after the given time, ready
// for storage. Spotify caps this feed at the last 50 plays.
func (c *Client) FetchPlaysSince(ctx context.Context, after time.Time) ([]store.Play, error) {
	opts := &zspotify.RecentlyPlayedOptions{Limit: 50}
	if !after.IsZero() {
		opts.AfterEpochMs = after.UnixMilli()
	}

	var items []zspotify.RecentlyPlayedItem
	err := c.call(ctx, func() error {
		var err error
		items, err = c.api.PlayerRecentlyPlayedOpt(ctx, opts)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("fetching recently played: %w", err)
	}

	var plays []store.Play
	for _, item := range items {
		play := store.Play{
			TrackID:    item.Track.ID.String(),
			TrackName:  item.Track.Name,
			AlbumID:    item.Track.Album.ID.String(),
			AlbumName:  item.Track.Album.Name,
			DurationMs: int64(item.Track.Duration),
			PlayedAt:   item.PlayedAt,
		}
		if len(item.Track.Artists) > 0 {
			play.ArtistID = item.Track.Artists[0].ID.String()
			play.ArtistName = item.Track.Artists[0].Name
		}
		plays = append(plays, play)
	}
	return plays, nil
}

func (c *Client) fetchTopTracks(ctx context.Context, timerange zspotify.Range) ([]engine.TopTrackEntry, error) {
	var page *zspotify.FullTrackPage
	err := c.call(ctx, func() error {
		var err error
		page, err = c.api.CurrentUsersTopTracks(ctx, zspotify.Limit(50), zspotify.Timerange(timerange))
		return err
	})
	if err != nil {
		return nil, err
	}

	var entries []engine.TopTrackEntry
	for i, track := range page.Tracks {
		entries = append(entries, engine.TopTrackEntry{
			Position: i + 1,
			Album:    convertAlbum(track.Album),
		})
	}
	return entries, nil
}

func (c *Client) fetchSavedTracks(ctx context.Context) ([]engine.SavedTrackEntry, error) {
	var page *zspotify.SavedTrackPage
	err := c.call(ctx, func() error {
		var err error
		page, err = c.api.CurrentUsersTracks(ctx, zspotify.Limit(50))
		return err
	})
	if err != nil {
		return nil, err
	}

	var entries []engine.SavedTrackEntry
	for {
		for _, saved := range page.Tracks {
			entries = append(entries, engine.SavedTrackEntry{Album: convertAlbum(saved.Album)})
		}

		err := c.call(ctx, func() error { return c.api.NextPage(ctx, page) })
		if errors.Is(err, zspotify.ErrNoMorePages) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("fetching next saved page: %w", err)
		}
	}
	return entries, nil
}

func (c *Client) fetchPlaylistTracks(ctx context.Context) ([]engine.PlaylistTrackEntry, error) {
	var playlists *zspotify.SimplePlaylistPage
	err := c.call(ctx, func() error {
		var err error
		playlists, err = c.api.CurrentUsersPlaylists(ctx, zspotify.Limit(50))
		return err
	})
	if err != nil {
		return nil, err
	}

	var entries []engine.PlaylistTrackEntry
	for i, playlist := range playlists.Playlists {
		if i >= playlistFetchCap {
			break
		}
		var page *zspotify.PlaylistItemPage
		err := c.call(ctx, func() error {
			var err error
			page, err = c.api.GetPlaylistItems(ctx, playlist.ID, zspotify.Limit(100))
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("fetching playlist %q: %w", playlist.Name, err)
		}

		for {
			for _, item := range page.Items {
				if item.Track.Track == nil {
					continue // podcast episode
				}
				entries = append(entries, engine.PlaylistTrackEntry{
					Album: convertAlbum(item.Track.Track.Album),
				})
			}
			if len(entries) >= playlistTrackCap {
				return entries[:playlistTrackCap], nil
			}

			err := c.call(ctx, func() error { return c.api.NextPage(ctx, page) })
			if errors.Is(err, zspotify.ErrNoMorePages) {
				break
			}
			if err != nil {
				return nil, fmt.Errorf("fetching next playlist page: %w", err)
			}
		}
	}
	return entries, nil
}

func (c *Client) fetchRecentlyPlayed(ctx context.Context) ([]engine.RecentlyPlayedEntry, error) {
	var items []zspotify.RecentlyPlayedItem
	err := c.call(ctx, func() error {
		var err error
		items, err = c.api.PlayerRecentlyPlayedOpt(ctx, &zspotify.RecentlyPlayedOptions{Limit: 50})
		return err
	})
	if err != nil {
		return nil, err
	}

	var entries []engine.RecentlyPlayedEntry
	for _, item := range items {
		entries = append(entries, engine.RecentlyPlayedEntry{
			Album:    convertAlbum(item.Track.Album),
			PlayedAt: item.PlayedAt,
		})
	}
	return entries, nil
}

func convertAlbum(album zspotify.SimpleAlbum) engine.Album {
	out := engine.Album{
		ID:   album.ID.String(),
		Name: album.Name,
	}
	for _, artist := range album.Artists {
		out.Artists = append(out.Artists, engine.Artist{
			ID:   artist.ID.String(),
			Name: artist.Name,
		})
	}
	for _, image := range album.Images {
		out.Images = append(out.Images, engine.Image{
			URL:    image.URL,
			Width:  int(image.Width),
			Height: int(image.Height),
		})
	}
	return out
}
