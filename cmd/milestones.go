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
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/skylerx/mystats/internal/milestone"
	"github.com/skylerx/mystats/internal/store"
)

var milestonesCmd = &cobra.Command{
	Use:   "milestones",
	Short: "Lists achieved milestones",
	Long: `Lists the milestones recorded for the user. With --seed, installs the
default play and listening-minute threshold ladder first.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if err := printMilestones(viper.GetBool("seed")); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(milestonesCmd)

	var seed bool
	milestonesCmd.Flags().BoolVar(&seed, "seed", false, "install the default milestone thresholds")
	viper.BindPFlag("seed", milestonesCmd.Flags().Lookup("seed"))
}

// defaultThresholds is the threshold ladder installed by --seed.
func defaultThresholds() []milestone.Threshold {
	var thresholds []milestone.Threshold
	for _, v := range []int64{100, 500, 1000, 5000, 10000, 25000, 50000, 100000} {
		thresholds = append(thresholds, milestone.Threshold{
			EntityType:    "global",
			MilestoneType: "plays",
			Value:         v,
			Name:          fmt.Sprintf("%s plays", formatCount(v)),
			Active:        true,
		})
	}
	for _, v := range []int64{600, 3000, 6000, 30000, 60000, 150000} {
		thresholds = append(thresholds, milestone.Threshold{
			EntityType:    "global",
			MilestoneType: "minutes",
			Value:         v,
			Name:          fmt.Sprintf("%s minutes listened", formatCount(v)),
			Active:        true,
		})
	}
	return thresholds
}

func formatCount(v int64) string {
	if v >= 1000 && v%1000 == 0 {
		return fmt.Sprintf("%dk", v/1000)
	}
	return strconv.FormatInt(v, 10)
}

func printMilestones(seed bool) error {
	db, err := openStore()
	if err != nil {
		return fmt.Errorf("printMilestones: %w", err)
	}
	defer db.Close()

	if seed {
		if err := seedThresholds(db); err != nil {
			return fmt.Errorf("printMilestones: %w", err)
		}
	}

	user, err := resolveUser(db)
	if err != nil {
		return fmt.Errorf("printMilestones: %w", err)
	}

	milestones, err := db.ListUserMilestones(user.ID)
	if err != nil {
		return fmt.Errorf("printMilestones: %w", err)
	}
	if len(milestones) == 0 {
		fmt.Println("No milestones achieved yet - run update to evaluate.")
		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Milestone", "Type", "Value", "Reached"})
	for _, m := range milestones {
		table.Append([]string{
			m.Name,
			m.MilestoneType,
			strconv.FormatInt(m.Value, 10),
			m.ReachedAt.Format("2006-01-02"),
		})
	}
	table.Render()

	return nil
}

func seedThresholds(db *store.Store) error {
	thresholds := defaultThresholds()
	if err := db.SeedThresholds(thresholds); err != nil {
		return err
	}
	fmt.Printf("Seeded %d milestone thresholds\n", len(thresholds))
	return nil
}
