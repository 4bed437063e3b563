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
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/skylerx/mystats/internal/history"
	"github.com/skylerx/mystats/internal/store"
)

type SendEmailConfig struct {
	DbPath string
	From   string
	To     string
	DryRun bool
	Start  time.Time
	End    time.Time
}

var emailCmd = &cobra.Command{
	Use:   "email <address> [date] [date]",
	Short: "Sends a listening summary email",
	Long: `Emails the listening summary and achieved milestones for the user.
Optional date arguments select the range (e.g. '2023-01' or '2023-01 2023-06');
the default is the previous month.`,
	Args: cobra.RangeArgs(1, 3),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if viper.GetString("from") == "" {
			return fmt.Errorf("required flag(s) \"from\" not set")
		}
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		to := args[0]
		dateArgs := args[1:]

		var start, end time.Time
		var err error
		if len(dateArgs) > 0 {
			start, end, err = parseDateRangeFromArgs(dateArgs)
			if err != nil {
				fmt.Printf("Error parsing dates: %v\n", err)
				os.Exit(1)
			}
		} else {
			// Default to last month
			now := time.Now()
			start = time.Date(now.Year(), now.Month()-1, 1, 0, 0, 0, 0, now.Location())
			end = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		}

		config := SendEmailConfig{
			DbPath: viper.GetString("database"),
			From:   viper.GetString("from"),
			To:     to,
			DryRun: viper.GetBool("dryRun"),
			Start:  start,
			End:    end,
		}
		if err := sendEmail(config); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(emailCmd)

	var dryRun bool
	emailCmd.Flags().BoolVarP(&dryRun, "dry_run", "n", false, "When true, just print instead of emailing")
	viper.BindPFlag("dryRun", emailCmd.Flags().Lookup("dry_run"))

	var from string
	emailCmd.Flags().StringVar(&from, "from", "", "From email address")
	viper.BindPFlag("from", emailCmd.Flags().Lookup("from"))
}

func sendEmail(config SendEmailConfig) error {
	db, err := store.New(config.DbPath)
	if err != nil {
		return fmt.Errorf("sendEmail: %w", err)
	}
	defer db.Close()

	user, err := resolveUser(db)
	if err != nil {
		return fmt.Errorf("sendEmail: %w", err)
	}

	subject, body, err := generateEmailContent(db, user, config.Start, config.End)
	if err != nil {
		return fmt.Errorf("sendEmail: %w", err)
	}

	if config.DryRun {
		fmt.Printf("Would have sent email: \nsubject: %s\n%s\n", subject, body)
		return nil
	}

	if viper.GetString("sendgrid_api_key") == "" {
		return fmt.Errorf("sendgrid_api_key must be set in order to send emails")
	}

	from := mail.NewEmail("mystats", config.From)
	to := mail.NewEmail(config.To, config.To)
	message := mail.NewSingleEmail(from, subject, to, body, body)
	client := sendgrid.NewSendClient(viper.GetString("sendgrid_api_key"))
	if _, err := client.Send(message); err != nil {
		return fmt.Errorf("sendEmail: %w", err)
	}

	fmt.Printf("Sent summary email to %s\n", config.To)
	return nil
}

func generateEmailContent(db *store.Store, user *store.User, start, end time.Time) (subject string, body string, err error) {
	events, err := db.GetPlays(user.ID, start, end)
	if err != nil {
		return "", "", err
	}

	name := user.DisplayName
	if name == "" {
		name = user.ID
	}

	const dateFormat = "2006-01-02"
	subject = fmt.Sprintf("Listening report for %s %s to %s",
		name, start.Format(dateFormat), end.Format(dateFormat))

	out := "<html>\n  <body>\n"
	out += fmt.Sprintf("<h2>Listening report for %s, %s to %s</h2>\n",
		name, start.Format(dateFormat), end.Format(dateFormat))

	if len(events) == 0 {
		out += "<div>No listens found.</div>\n"
	} else {
		summary := history.Aggregate(events)
		hours, minutes := summary.ListeningTime()

		out += "<table>\n"
		out += fmt.Sprintf("<tr><td>Total plays</td><td>%d</td></tr>\n", summary.TotalTracks)
		out += fmt.Sprintf("<tr><td>Unique tracks</td><td>%d</td></tr>\n", summary.UniqueTracks)
		out += fmt.Sprintf("<tr><td>Unique artists</td><td>%d</td></tr>\n", summary.UniqueArtists)
		out += fmt.Sprintf("<tr><td>Listening time</td><td>%dh %dm</td></tr>\n", hours, minutes)
		out += fmt.Sprintf("<tr><td>Most active day</td><td>%s</td></tr>\n", summary.Weekdays.MostActiveDay)
		out += "</table>\n"
		out += fmt.Sprintf("<div>%s</div>\n", peakHourMessage(summary))

		if session := summary.LongestSession; session != nil {
			out += fmt.Sprintf("<div>Longest session: %d minutes on %s (%d sessions total)</div>\n",
				session.DurationMinutes, session.Start.Format(dateFormat), session.TotalSessions)
		}
	}

	milestones, err := db.ListUserMilestones(user.ID)
	if err != nil {
		return "", "", err
	}
	if len(milestones) > 0 {
		out += "<h3>Milestones</h3>\n<ul>\n"
		for _, m := range milestones {
			out += fmt.Sprintf("<li>%s (reached %s)</li>\n", m.Name, m.ReachedAt.Format(dateFormat))
		}
		out += "</ul>\n"
	}

	out += "  </body>\n</html>\n"
	return subject, out, nil
}
