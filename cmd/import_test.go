package cmd

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/skylerx/mystats/internal/history"
	"github.com/skylerx/mystats/internal/store"
)

func TestTrackIDFromUri(t *testing.T) {
	if got := trackIDFromUri("spotify:track:abc123"); got != "abc123" {
		t.Errorf("expected abc123, got %q", got)
	}
	if got := trackIDFromUri("spotify:episode:xyz"); got != "" {
		t.Errorf("expected empty for episode uri, got %q", got)
	}
	if got := trackIDFromUri(""); got != "" {
		t.Errorf("expected empty for empty uri, got %q", got)
	}
}

func TestReadExportFile(t *testing.T) {
	content := `[
		{"ts":"2024-03-04T10:00:00Z","ms_played":60000,"master_metadata_track_name":"One","master_metadata_album_artist_name":"Artist","master_metadata_album_album_name":"Album","spotify_track_uri":"spotify:track:t1"},
		{"ts":"2024-03-04T10:05:00Z","ms_played":30000,"master_metadata_track_name":"","spotify_track_uri":""},
		{"ts":"not-a-time","ms_played":1000,"master_metadata_track_name":"Bad","spotify_track_uri":"spotify:track:t2"}
	]`

	path := filepath.Join(t.TempDir(), "history.json")
	// Prepend a UTF-8 BOM like real exports sometimes have.
	if err := os.WriteFile(path, append([]byte{0xEF, 0xBB, 0xBF}, []byte(content)...), 0644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	plays, err := readExportFile(path)
	if err != nil {
		t.Fatalf("reading export: %v", err)
	}
	if len(plays) != 1 {
		t.Fatalf("expected 1 valid play, got %d", len(plays))
	}
	if plays[0].TrackID != "t1" || plays[0].DurationMs != 60000 {
		t.Errorf("unexpected play: %+v", plays[0])
	}
	if plays[0].ArtistName != "Artist" || plays[0].AlbumName != "Album" {
		t.Errorf("unexpected metadata: %+v", plays[0])
	}
}

func TestImportedPlaysKeepArtistIdentity(t *testing.T) {
	// Export entries carry artist names only; the unique-artist statistics
	// must still come out non-zero after a round trip through the store.
	content := `[
		{"ts":"2024-03-04T10:00:00Z","ms_played":60000,"master_metadata_track_name":"One","master_metadata_album_artist_name":"Carly Rae Jepsen","master_metadata_album_album_name":"Emotion","spotify_track_uri":"spotify:track:t1"},
		{"ts":"2024-03-04T10:05:00Z","ms_played":60000,"master_metadata_track_name":"Two","master_metadata_album_artist_name":"Japanese Breakfast","master_metadata_album_album_name":"Jubilee","spotify_track_uri":"spotify:track:t2"},
		{"ts":"2024-03-04T10:10:00Z","ms_played":60000,"master_metadata_track_name":"Three","master_metadata_album_artist_name":"Carly Rae Jepsen","master_metadata_album_album_name":"Emotion","spotify_track_uri":"spotify:track:t3"}
	]`

	path := filepath.Join(t.TempDir(), "history.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	plays, err := readExportFile(path)
	if err != nil {
		t.Fatalf("reading export: %v", err)
	}

	db, err := store.New(":memory:")
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}
	defer db.Close()
	if err := db.CreateUser("u1", "skyler", "Skyler"); err != nil {
		t.Fatalf("creating user: %v", err)
	}
	if _, err := db.AddPlays("u1", plays); err != nil {
		t.Fatalf("adding plays: %v", err)
	}

	events, err := db.GetPlays("u1", time.Time{}, time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("getting plays: %v", err)
	}
	summary := history.Aggregate(events)
	if summary.UniqueArtists != 2 {
		t.Errorf("expected 2 unique artists from import, got %d", summary.UniqueArtists)
	}
	if summary.LongestSession == nil || summary.LongestSession.Insights.UniqueArtists != 2 {
		t.Errorf("expected 2 unique session artists, got %+v", summary.LongestSession)
	}
}

func TestReadExportFileRejectsBadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	if _, err := readExportFile(path); err == nil {
		t.Fatal("expected error for malformed JSON")
	}
}
