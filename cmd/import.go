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
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/skylerx/mystats/internal/store"
)

// exportEntry is one record of a Spotify extended streaming history export.
type exportEntry struct {
	Ts                            string `json:"ts"`
	MsPlayed                      int64  `json:"ms_played"`
	MasterMetadataTrackName       string `json:"master_metadata_track_name"`
	MasterMetadataAlbumArtistName string `json:"master_metadata_album_artist_name"`
	MasterMetadataAlbumAlbumName  string `json:"master_metadata_album_album_name"`
	SpotifyTrackUri               string `json:"spotify_track_uri"`
}

var importCmd = &cobra.Command{
	Use:   "import <file.json...>",
	Short: "Imports Spotify extended streaming history exports",
	Long: `Reads one or more Streaming_History_Audio_*.json files from a Spotify
data export and stores the plays for the --user. Malformed entries and
duplicates are skipped.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := importHistory(args); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func importHistory(paths []string) error {
	db, err := openStore()
	if err != nil {
		return fmt.Errorf("importHistory: %w", err)
	}
	defer db.Close()

	user, err := resolveUser(db)
	if err != nil {
		return fmt.Errorf("importHistory: %w", err)
	}

	var total int64
	for _, path := range paths {
		plays, err := readExportFile(path)
		if err != nil {
			fmt.Printf("Skipping %s: %v\n", path, err)
			continue
		}
		fmt.Printf("Found %d plays in %s\n", len(plays), path)

		inserted, err := db.AddPlays(user.ID, plays)
		if err != nil {
			return fmt.Errorf("importHistory: %w", err)
		}
		total += inserted
	}

	fmt.Printf("Imported %d new plays for %q\n", total, user.ID)
	return nil
}

func readExportFile(path string) ([]store.Play, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}

	// Spotify exports sometimes carry a UTF-8 BOM.
	if len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF {
		data = data[3:]
	}

	var entries []exportEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}

	var plays []store.Play
	for _, entry := range entries {
		trackID := trackIDFromUri(entry.SpotifyTrackUri)
		if trackID == "" || entry.MasterMetadataTrackName == "" {
			continue // podcast episode or redacted entry
		}
		playedAt, err := time.Parse(time.RFC3339, entry.Ts)
		if err != nil {
			continue
		}
		plays = append(plays, store.Play{
			TrackID:    trackID,
			TrackName:  entry.MasterMetadataTrackName,
			ArtistName: entry.MasterMetadataAlbumArtistName,
			AlbumName:  entry.MasterMetadataAlbumAlbumName,
			DurationMs: entry.MsPlayed,
			PlayedAt:   playedAt,
		})
	}
	return plays, nil
}

// trackIDFromUri extracts the id from a "spotify:track:<id>" uri.
func trackIDFromUri(uri string) string {
	const prefix = "spotify:track:"
	if !strings.HasPrefix(uri, prefix) {
		return ""
	}
	return uri[len(prefix):]
}
