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
	"fmt"
	"os"
	"strconv"

	"github.com/gocarina/gocsv"
	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/venture-scope/vsdata/data"
	"github.com/venture-scope/vsdata/pipeline"
	"github.com/venture-scope/vsdata/workspace"
)

var reportLimit int

// reportCmd represents the report command
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print insight rankings from the last exported enriched table",
	Long: `The report sub-command reads the enriched startup table exported by the
last run and prints three rankings: sectors by success rate, countries by
record count, and the funding-stage distribution.`,
	Run: func(cmd *cobra.Command, args []string) {
		layout, err := workspace.New(viper.GetString("workspace.root"))
		if err != nil {
			log.Fatal().Err(err).Msg("could not resolve workspace")
		}

		enrichedFN := outputPath(layout, "enriched", "startups_enriched.csv")

		fh, err := os.Open(enrichedFN)
		if err != nil {
			log.Fatal().Err(err).Str("FileName", enrichedFN).Msg("could not open enriched table; run `vsdata run` first")
		}
		defer fh.Close()

		var rows []*data.EnrichedStartup
		if err := gocsv.UnmarshalFile(fh, &rows); err != nil {
			log.Fatal().Err(err).Str("FileName", enrichedFN).Msg("could not parse enriched table")
		}

		fmt.Println("\nTop sectors by success rate")
		sectorTable := tablewriter.NewWriter(os.Stdout)
		sectorTable.SetHeader([]string{"Sector", "Success Rate", "Records"})
		for _, rank := range pipeline.TopSectors(rows, reportLimit) {
			sectorTable.Append([]string{
				rank.Category,
				fmt.Sprintf("%.1f%%", rank.SuccessRate),
				strconv.Itoa(rank.Records),
			})
		}
		sectorTable.Render()

		fmt.Println("\nTop countries by record count")
		countryTable := tablewriter.NewWriter(os.Stdout)
		countryTable.SetHeader([]string{"Country", "Name", "Records"})
		for _, rank := range pipeline.TopCountries(rows, reportLimit) {
			countryTable.Append([]string{
				rank.CountryCode,
				rank.CountryName,
				strconv.Itoa(rank.Records),
			})
		}
		countryTable.Render()

		fmt.Println("\nFunding stage distribution")
		stageTable := tablewriter.NewWriter(os.Stdout)
		stageTable.SetHeader([]string{"Stage", "Count"})
		for _, stage := range pipeline.StageDistribution(rows) {
			stageTable.Append([]string{
				string(stage.Stage),
				strconv.Itoa(stage.Count),
			})
		}
		stageTable.Render()
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().IntVarP(&reportLimit, "limit", "n", 10, "number of rows per ranking")
}
