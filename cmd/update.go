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
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/skylerx/mystats/internal/milestone"
	"github.com/skylerx/mystats/internal/store"
	"github.com/skylerx/mystats/internal/webhook"
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Syncs recent plays from Spotify into the local database",
	Long: `Fetches plays newer than the last sync, stores them, evaluates play and
listening-minute milestones, and delivers webhook notifications for any
milestones crossed.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if err := updateDatabase(viper.GetString("database")); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(updateCmd)
}

func updateDatabase(dbPath string) error {
	ctx := context.Background()

	client, err := spotifyClient(ctx)
	if err != nil {
		return fmt.Errorf("updateDatabase: %w", err)
	}

	id, displayName, err := client.CurrentUser(ctx)
	if err != nil {
		return fmt.Errorf("updateDatabase: %w", err)
	}

	db, err := store.New(dbPath)
	if err != nil {
		return fmt.Errorf("updateDatabase: %w", err)
	}
	defer db.Close()

	user, err := db.FindUser(id)
	if err != nil {
		return fmt.Errorf("updateDatabase: %w", err)
	}
	if user == nil {
		slug := slugify(displayName)
		if slug == "" {
			slug = id
		}
		if err := db.CreateUser(id, slug, displayName); err != nil {
			return fmt.Errorf("updateDatabase: %w", err)
		}
	}

	latest, err := db.GetLatestPlay(id)
	if err != nil {
		return fmt.Errorf("updateDatabase: %w", err)
	}
	if latest.IsZero() {
		fmt.Printf("No local listening data for %q yet\n", id)
	} else {
		fmt.Printf("Latest local play is from: %s\n", latest.Format("2006-01-02 15:04"))
	}

	fmt.Printf("Updating database for %q\n", id)
	plays, err := client.FetchPlaysSince(ctx, latest)
	if err != nil {
		return fmt.Errorf("updateDatabase: %w", err)
	}

	inserted, err := db.AddPlays(id, plays)
	if err != nil {
		return fmt.Errorf("updateDatabase: %w", err)
	}
	fmt.Printf("Stored %d new plays\n", inserted)

	if err := db.SetLastSynced(id, time.Now()); err != nil {
		return fmt.Errorf("updateDatabase: %w", err)
	}

	crossed, err := evaluateMilestones(db, id)
	if err != nil {
		return fmt.Errorf("updateDatabase: %w", err)
	}
	if len(crossed) == 0 {
		return nil
	}

	return notifyMilestones(ctx, db, id, crossed)
}

// evaluateMilestones runs the batch evaluator over the user's lifetime play
// and minute totals and records any new crossings.
func evaluateMilestones(db *store.Store, user string) ([]milestone.UserMilestone, error) {
	plays, minutes, err := db.PlayTotals(user)
	if err != nil {
		return nil, err
	}

	var items []milestone.BatchItem
	for _, mt := range []struct {
		milestoneType string
		current       int64
	}{
		{"plays", plays},
		{"minutes", minutes},
	} {
		thresholds, err := db.ActiveThresholds("global", mt.milestoneType)
		if err != nil {
			return nil, err
		}
		if len(thresholds) == 0 {
			continue
		}
		last, err := db.HighestMilestoneValue(user, "global", "", mt.milestoneType)
		if err != nil {
			return nil, err
		}
		items = append(items, milestone.BatchItem{
			Request: milestone.Request{
				UserID:        user,
				EntityType:    "global",
				MilestoneType: mt.milestoneType,
				CurrentValue:  mt.current,
				LastRecorded:  last,
			},
			Thresholds: thresholds,
		})
	}

	crossed, summaries := milestone.EvaluateBatch(items, time.Now())
	if len(crossed) == 0 {
		return nil, nil
	}

	if err := db.AddUserMilestones(crossed); err != nil {
		return nil, err
	}
	for _, s := range summaries {
		fmt.Printf("Milestone reached: %s (x%d)\n", s.Name, s.Count)
	}
	return crossed, nil
}

func notifyMilestones(ctx context.Context, db *store.Store, user string, crossed []milestone.UserMilestone) error {
	hook, err := db.GetWebhook(user)
	if err != nil {
		return err
	}
	if hook == nil {
		return nil
	}

	if err := webhook.NewNotifier().Notify(ctx, hook.URL, hook.Secret, crossed); err != nil {
		// Milestones are already recorded; a failed delivery shouldn't fail
		// the sync.
		fmt.Printf("Warning: webhook delivery failed: %v\n", err)
	}
	return nil
}
