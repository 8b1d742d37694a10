// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/gosimple/slug"
	"github.com/jackc/pgx/v5"
	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/venture-scope/vsdata/db"
	"github.com/venture-scope/vsdata/healthcheck"
	"github.com/venture-scope/vsdata/library"
	"github.com/venture-scope/vsdata/workspace"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Gather database configuration, setup schema, and create the workspace",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		myLibrary := &library.Library{}
		workspaceRoot := "."

		form := huh.NewForm(
			// Gather details about the library and who owns it
			huh.NewGroup(
				huh.NewInput().
					Title("Give the library a name:").
					Value(&myLibrary.Name),

				huh.NewInput().
					Title("Who owns the library?").
					Value(&myLibrary.Owner),

				huh.NewInput().
					Title("Where should the workspace live?").
					Value(&workspaceRoot),
			),

			// Get details about the database
			huh.NewGroup(
				huh.NewInput().
					Title("Provide the DSN for connecting to your PostgreSQL database (postgres://[user[:password]@][netloc][:port][/dbname][?param1=value1&...])").
					Value(&myLibrary.DBUrl).
					Validate(func(dsn string) error {
						_, err := pgx.ParseConfig(dsn)
						return err
					}),
			),
		)

		err := form.Run()
		if err != nil {
			log.Fatal().Err(err).Msg("error gathering database settings")
		}

		log.Info().Msg("creating database tables")

		// run migration
		dbURL := strings.Replace(myLibrary.DBUrl, "postgres://", "pgx5://", -1)
		err = db.Migrate(dbURL)
		if err != nil {
			log.Fatal().Err(err).Msg("error running database migration")
		}

		log.Info().Msg("database tables created")
		log.Info().Msg("Saving library name and owner to database")

		// save library name and owner to database
		if err := myLibrary.Connect(ctx); err != nil {
			log.Fatal().Err(err).Msg("could not connect to database")
		}
		defer myLibrary.Close()

		err = myLibrary.SaveDB(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("error saving library settings to database")
		}

		// create the workspace directory tree
		layout, err := workspace.New(workspaceRoot)
		if err != nil {
			log.Fatal().Err(err).Str("Root", workspaceRoot).Msg("could not resolve workspace")
		}

		if err := layout.EnsureDirs(); err != nil {
			log.Fatal().Err(err).Str("Root", workspaceRoot).Msg("could not create workspace directories")
		}

		// save database settings to config file
		home, err := os.UserHomeDir()
		if err != nil {
			log.Fatal().Err(err).Msg("could not determine user home directory")
		}

		configFN := filepath.Join(home, ".vsdata.toml")
		log.Info().Str("ConfigFile", configFN).Msg("Saving database connection info to config file")

		config := map[string]any{
			"db":        map[string]string{"url": myLibrary.DBUrl},
			"library":   map[string]string{"name": myLibrary.Name, "owner": myLibrary.Owner},
			"workspace": map[string]string{"root": workspaceRoot},
		}

		// register a healthchecks.io monitor when an api key is configured
		if apiKey := viper.GetString("healthchecks.apikey"); apiKey != "" {
			if oldCheckID := viper.GetString("healthchecks.check_id"); oldCheckID != "" {
				if err := healthcheck.Delete(oldCheckID); err != nil {
					log.Warn().Err(err).Str("CheckID", oldCheckID).Msg("could not delete existing healthcheck")
				}
			}

			checkID, err := healthcheck.Create(
				fmt.Sprintf("%s pipeline", myLibrary.Name),
				slug.Make(myLibrary.Name),
				[]string{"vsdata"},
				"0 6 * * *")
			if err != nil {
				log.Fatal().Err(err).Msg("could not create healthcheck")
			}

			log.Info().Str("CheckID", checkID).Msg("registered healthcheck monitor")
			config["healthchecks"] = map[string]string{"apikey": apiKey, "check_id": checkID}
		}

		configData, err := toml.Marshal(config)
		if err != nil {
			log.Fatal().Err(err).Msg("could not marshal configuration data")
		}

		err = os.WriteFile(configFN, configData, 0644)
		if err != nil {
			log.Fatal().Err(err).Str("FileName", configFN).Msg("could not save configuration to file")
		}

		log.Info().Msg("Your data library has been initialized")
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
