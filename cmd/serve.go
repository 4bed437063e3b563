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
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/skylerx/mystats/internal/api"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Runs the REST API server",
	Long: `Serves listening history and milestones over HTTP. Requests are
authenticated with the X-API-Key header; create keys with 'mystats apikey
create'.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if err := serve(viper.GetString("addr")); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	var addr string
	serveCmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8510", "listen address")
	viper.BindPFlag("addr", serveCmd.Flags().Lookup("addr"))
}

func serve(addr string) error {
	db, err := openStore()
	if err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Listening on %s\n", addr)
	if err := api.NewServer(db, addr).Run(ctx); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}
