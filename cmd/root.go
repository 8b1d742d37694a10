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
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "vsdata",
	Short: "vsdata builds and maintains a startup-funding insight library",
	Long: `vsdata is a command line utility for building a curated database of
startup funding activity enriched with public reference data. It downloads the
raw startup-investments table from Kaggle, cleans and normalizes it, derives
analytical features, and joins it against country, GDP, and cryptocurrency
market feeds:

	* [Kaggle](https://www.kaggle.com)
	* [REST Countries](https://restcountries.com)
	* [World Bank](https://data.worldbank.org)
	* [CoinGecko](https://www.coingecko.com)

A key challenge when analyzing community-contributed funding data is that the
raw table is messy: duplicated rows, missing country codes, unparseable
amounts, and mixed text encodings. vsdata solves these challenges with an
explicit cleaning stage that records exactly what it removed or coerced, so
every downstream insight can be traced back to the raw export.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.vsdata.toml)")
	rootCmd.PersistentFlags().String("dbUrl", "", "database connection string")
	if err := viper.BindPFlag("db.url", rootCmd.PersistentFlags().Lookup("dbUrl")); err != nil {
		log.Panic().Err(err).Msg("BindPFlag for dbUrl failed")
	}
	rootCmd.PersistentFlags().String("workspace", ".", "workspace root directory")
	if err := viper.BindPFlag("workspace.root", rootCmd.PersistentFlags().Lookup("workspace")); err != nil {
		log.Panic().Err(err).Msg("BindPFlag for workspace failed")
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".vsdata" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigType("toml")
		viper.SetConfigName(".vsdata")
	}

	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		log.Info().Str("ConfigFN", viper.ConfigFileUsed()).Msg("Using config file")
	}
}
