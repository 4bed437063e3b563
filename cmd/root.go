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

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"github.com/skylerx/mystats/internal/spotify"
	"github.com/skylerx/mystats/internal/store"
)

var cfgFile string
var spotifyID string
var spotifySecret string
var statsUser string
var databasePath string
var sendgridApiKey string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "mystats",
	Short: "Aggregates and ranks Spotify listening data",
	Long: `Syncs listening history from Spotify into a local database, ranks top
albums and genres, aggregates listening statistics, tracks milestones, and
serves the results over a REST API.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default is $HOME/.mystats.yaml)")

	rootCmd.PersistentFlags().StringVar(
		&spotifyID, "spotify_id", "", "Spotify application client id")
	viper.BindPFlag("spotify_id", rootCmd.PersistentFlags().Lookup("spotify_id"))

	rootCmd.PersistentFlags().StringVar(
		&spotifySecret, "spotify_secret", "", "Spotify application client secret")
	viper.BindPFlag("spotify_secret", rootCmd.PersistentFlags().Lookup("spotify_secret"))

	rootCmd.PersistentFlags().StringVarP(
		&statsUser, "user", "u", "", "user id or slug to act on (defaults to the logged-in user)")
	viper.BindPFlag("user", rootCmd.PersistentFlags().Lookup("user"))

	rootCmd.PersistentFlags().StringVarP(
		&databasePath, "database", "d", "./mystats.db", "Path to the SQLite database")
	viper.BindPFlag("database", rootCmd.PersistentFlags().Lookup("database"))

	rootCmd.PersistentFlags().StringVar(
		&sendgridApiKey, "sendgrid_api_key", "", "SendGrid API key for email reports")
	viper.BindPFlag("sendgrid_api_key", rootCmd.PersistentFlags().Lookup("sendgrid_api_key"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in home directory with name ".mystats" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".mystats")
	}

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	// See https://github.com/spf13/viper/pull/852
	rootCmd.Flags().VisitAll(func(f *pflag.Flag) {
		if viper.IsSet(f.Name) && viper.GetString(f.Name) != "" {
			rootCmd.Flags().Set(f.Name, viper.GetString(f.Name))
		}
	})
}

func openStore() (*store.Store, error) {
	db, err := store.New(viper.GetString("database"))
	if err != nil {
		return nil, fmt.Errorf("openStore: %w", err)
	}
	return db, nil
}

// spotifyClient authenticates against Spotify, reusing the cached token when
// possible.
func spotifyClient(ctx context.Context) (*spotify.Client, error) {
	auth, err := spotify.NewAuthenticator(
		viper.GetString("spotify_id"), viper.GetString("spotify_secret"))
	if err != nil {
		return nil, err
	}
	api, err := auth.Authenticate(ctx)
	if err != nil {
		return nil, fmt.Errorf("authenticating: %w", err)
	}
	return spotify.NewClient(api), nil
}

// resolveUser looks up the user named by --user.
func resolveUser(db *store.Store) (*store.User, error) {
	identifier := viper.GetString("user")
	if identifier == "" {
		return nil, fmt.Errorf("no user specified - pass --user or run login first")
	}
	user, err := db.FindUser(identifier)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("unknown user %q - run login or import first", identifier)
	}
	return user, nil
}
