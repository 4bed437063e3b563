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

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var apikeyCmd = &cobra.Command{
	Use:   "apikey",
	Short: "Manages API keys for the REST server",
}

var apikeyCreateCmd = &cobra.Command{
	Use:   "create [label]",
	Short: "Creates a new API key",
	Long:  `Prints the new key. It is not retrievable later, so store it somewhere safe.`,
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		label := ""
		if len(args) > 0 {
			label = args[0]
		}
		if err := createApiKey(label); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

var apikeyRevokeCmd = &cobra.Command{
	Use:   "revoke <key>",
	Short: "Revokes an API key",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := revokeApiKey(args[0]); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

var apikeyListCmd = &cobra.Command{
	Use:   "list",
	Short: "Lists API keys",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if err := listApiKeys(); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(apikeyCmd)
	apikeyCmd.AddCommand(apikeyCreateCmd)
	apikeyCmd.AddCommand(apikeyRevokeCmd)
	apikeyCmd.AddCommand(apikeyListCmd)
}

func createApiKey(label string) error {
	db, err := openStore()
	if err != nil {
		return fmt.Errorf("createApiKey: %w", err)
	}
	defer db.Close()

	key, err := db.CreateApiKey(label)
	if err != nil {
		return fmt.Errorf("createApiKey: %w", err)
	}
	fmt.Printf("Created API key: %s\n", key)
	return nil
}

func revokeApiKey(key string) error {
	db, err := openStore()
	if err != nil {
		return fmt.Errorf("revokeApiKey: %w", err)
	}
	defer db.Close()

	if err := db.RevokeApiKey(key); err != nil {
		return fmt.Errorf("revokeApiKey: %w", err)
	}
	fmt.Println("Revoked.")
	return nil
}

func listApiKeys() error {
	db, err := openStore()
	if err != nil {
		return fmt.Errorf("listApiKeys: %w", err)
	}
	defer db.Close()

	keys, err := db.ListApiKeys()
	if err != nil {
		return fmt.Errorf("listApiKeys: %w", err)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "Label", "Created", "Last Used", "Revoked"})
	for _, k := range keys {
		lastUsed := "never"
		if !k.LastUsedAt.IsZero() {
			lastUsed = k.LastUsedAt.Format("2006-01-02 15:04")
		}
		revoked := ""
		if k.Revoked {
			revoked = "yes"
		}
		table.Append([]string{
			k.Key,
			k.Label,
			k.CreatedAt.Format("2006-01-02"),
			lastUsed,
			revoked,
		})
	}
	table.Render()

	return nil
}
