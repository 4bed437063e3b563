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

	"github.com/spf13/cobra"
)

var webhookCmd = &cobra.Command{
	Use:   "webhook",
	Short: "Manages the milestone webhook",
}

var webhookSetCmd = &cobra.Command{
	Use:   "set <url> <secret>",
	Short: "Registers the endpoint notified when milestones are reached",
	Long: `Milestone events are POSTed as JSON with an HMAC-SHA256 signature of the
body in the X-MyStats-Signature header, keyed with the given secret.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		if err := setWebhook(args[0], args[1]); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

var webhookDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Removes the registered webhook",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if err := deleteWebhook(); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(webhookCmd)
	webhookCmd.AddCommand(webhookSetCmd)
	webhookCmd.AddCommand(webhookDeleteCmd)
}

func setWebhook(url, secret string) error {
	db, err := openStore()
	if err != nil {
		return fmt.Errorf("setWebhook: %w", err)
	}
	defer db.Close()

	user, err := resolveUser(db)
	if err != nil {
		return fmt.Errorf("setWebhook: %w", err)
	}

	if err := db.SetWebhook(user.ID, url, secret); err != nil {
		return fmt.Errorf("setWebhook: %w", err)
	}
	fmt.Printf("Webhook for %q set to %s\n", user.ID, url)
	return nil
}

func deleteWebhook() error {
	db, err := openStore()
	if err != nil {
		return fmt.Errorf("deleteWebhook: %w", err)
	}
	defer db.Close()

	user, err := resolveUser(db)
	if err != nil {
		return fmt.Errorf("deleteWebhook: %w", err)
	}

	if err := db.DeleteWebhook(user.ID); err != nil {
		return fmt.Errorf("deleteWebhook: %w", err)
	}
	fmt.Println("Webhook removed.")
	return nil
}
