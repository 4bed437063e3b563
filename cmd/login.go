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
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticates with Spotify and registers the user locally",
	Long: `Runs the OAuth flow in the browser, caches the token, and creates the
user record new syncs are attributed to.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if err := login(viper.GetString("slug")); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)

	var slug string
	loginCmd.Flags().StringVar(&slug, "slug", "", "public identifier for the API (default: derived from display name)")
	viper.BindPFlag("slug", loginCmd.Flags().Lookup("slug"))
}

func login(slug string) error {
	ctx := context.Background()
	client, err := spotifyClient(ctx)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}

	id, displayName, err := client.CurrentUser(ctx)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}

	if slug == "" {
		slug = slugify(displayName)
	}
	if slug == "" {
		slug = id
	}

	db, err := openStore()
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	defer db.Close()

	if err := db.CreateUser(id, slug, displayName); err != nil {
		return fmt.Errorf("login: %w", err)
	}

	fmt.Printf("Logged in as %s (%s), slug %q\n", displayName, id, slug)
	return nil
}

func slugify(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteRune('-')
		}
	}
	return strings.Trim(b.String(), "-")
}
