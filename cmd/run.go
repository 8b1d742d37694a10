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
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/hako/durafmt"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/venture-scope/vsdata/backblaze"
	"github.com/venture-scope/vsdata/data"
	"github.com/venture-scope/vsdata/healthcheck"
	"github.com/venture-scope/vsdata/library"
	"github.com/venture-scope/vsdata/pipeline"
	"github.com/venture-scope/vsdata/provider"
	"github.com/venture-scope/vsdata/workspace"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Fetch all configured sources and rebuild the insight library",
	Long: `The run sub-command executes the full pipeline: every source in the
[sources] section of the config file is fetched, the raw startup table is
cleaned and enriched, reference feeds are joined in, and the resulting tables
are saved to the library database and exported to the workspace.

The startup table is the primary source; if it cannot be fetched the run
aborts. Reference feeds (countries, GDP, crypto prices) degrade to empty
tables with a warning so a flaky public API never blocks the pipeline.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := log.Logger.WithContext(context.Background())
		startTime := time.Now()

		// resolve the workspace
		layout, err := workspace.New(viper.GetString("workspace.root"))
		if err != nil {
			log.Fatal().Err(err).Msg("could not resolve workspace")
		}

		if err := layout.EnsureDirs(); err != nil {
			log.Fatal().Err(err).Msg("could not create workspace directories")
		}

		// fetch every configured source
		var (
			startups  []*data.Startup
			countries []*data.Country
			gdp       []*data.GdpObservation
			prices    []*data.CryptoPrice

			rawRows int
		)

		sources, err := configuredSources(layout)
		if err != nil {
			log.Fatal().Err(err).Msg("source configuration is invalid")
		}

		if len(sources) == 0 {
			log.Fatal().Msg("no sources configured; add a [sources] section to the config file")
		}

		for _, source := range sources {
			var (
				srcProvider provider.Provider
				srcDataset  provider.Dataset
				ok          bool
			)

			if srcProvider, ok = provider.Map[source.Provider]; !ok {
				log.Fatal().Str("ProviderKey", source.Provider).Str("SourceName", source.Name).
					Msg("source is mis-configured, provider not found")
			}

			if srcDataset, ok = srcProvider.Datasets()[source.Dataset]; !ok {
				log.Fatal().Str("ProviderKey", source.Provider).Str("DatasetKey", source.Dataset).
					Msg("source is mis-configured, dataset not found")
			}

			fetchLogger := log.With().Str("SourceName", source.Name).Logger()
			fetchCtx := fetchLogger.WithContext(ctx)

			observations, summary := collectObservations(fetchCtx, source, srcDataset)

			if summary.Err != nil {
				if source.Provider == "kaggle" {
					fetchLogger.Fatal().Err(summary.Err).Msg("primary startup source failed")
				}

				fetchLogger.Warn().Err(summary.Err).Msg("reference feed failed; continuing with empty table")
				continue
			}

			runTime := summary.EndTime.Sub(summary.StartTime)
			fetchLogger.Info().Str("RunTime", durafmt.Parse(runTime).String()).
				Int("NumObservations", summary.NumObservations).
				Int("NumSkipped", summary.NumSkipped).
				Msg("successfully fetched source")

			for _, observation := range observations {
				switch {
				case observation.Startup != nil:
					startups = append(startups, observation.Startup)
				case observation.Country != nil:
					countries = append(countries, observation.Country)
				case observation.Gdp != nil:
					gdp = append(gdp, observation.Gdp)
				case observation.CryptoPrice != nil:
					prices = append(prices, observation.CryptoPrice)
				}
			}

			if source.Provider == "kaggle" {
				rawRows = summary.NumObservations + summary.NumSkipped
			}
		}

		if len(startups) == 0 {
			log.Fatal().Msg("no startup records fetched; cannot build library")
		}

		// run the transform chain
		result := pipeline.Run(ctx, startups, countries, gdp, prices, pipeline.DeriveOptions{})

		// write the profile report
		profile := pipeline.BuildProfile(startups)
		profileFN := filepath.Join(layout.ReportsDir(), "profile.md")
		if err := os.WriteFile(profileFN, []byte(profile.Markdown("Startup Investments")), 0644); err != nil {
			log.Error().Err(err).Str("FileName", profileFN).Msg("could not write profile report")
		}

		// save tables to the library
		myLibrary, err := library.NewFromDB(ctx, viper.GetString("db.url"))
		if err != nil {
			log.Fatal().Err(err).Msg("could not connect to library")
		}
		defer myLibrary.Close()

		if err := myLibrary.SaveCleaned(ctx, result.Cleaned); err != nil {
			log.Fatal().Err(err).Msg("could not save cleaned startup table")
		}

		if err := myLibrary.SaveEnriched(ctx, result.Enriched); err != nil {
			log.Fatal().Err(err).Msg("could not save enriched startup table")
		}

		if err := myLibrary.SaveCountryStats(ctx, result.CountryStats); err != nil {
			log.Fatal().Err(err).Msg("could not save country aggregates")
		}

		// export workspace artifacts
		cleanedFN := outputPath(layout, "cleaned", "startups_clean.csv")
		if err := library.ExportCleanedCSV(result.Cleaned, cleanedFN); err != nil {
			log.Fatal().Err(err).Str("FileName", cleanedFN).Msg("could not export cleaned csv")
		}

		enrichedFN := outputPath(layout, "enriched", "startups_enriched.csv")
		if err := library.ExportEnrichedCSV(result.Enriched, enrichedFN); err != nil {
			log.Fatal().Err(err).Str("FileName", enrichedFN).Msg("could not export enriched csv")
		}

		parquetFN := outputPath(layout, "enriched_parquet", "startups_enriched.parquet")
		if err := library.ExportEnrichedParquet(result.Enriched, parquetFN); err != nil {
			log.Fatal().Err(err).Str("FileName", parquetFN).Msg("could not export enriched parquet")
		}

		// record the run
		endTime := time.Now()
		run := &library.Run{
			ID:                    uuid.New(),
			StartedOn:             startTime,
			FinishedOn:            endTime,
			RawRows:               rawRows,
			CleanRows:             len(result.Cleaned),
			EnrichedRows:          len(result.Enriched),
			DuplicatesRemoved:     result.CleanStats.DuplicatesRemoved,
			MissingCountryRemoved: result.CleanStats.MissingCountryRemoved,
			UnknownAmounts:        result.CleanStats.UnknownAmounts,
			UnknownDates:          result.CleanStats.UnknownDates,
			CountryMatched:        result.JoinStats.CountryMatched,
			GdpMatched:            result.JoinStats.GdpMatched,
			CryptoMatched:         result.JoinStats.CryptoMatched,
		}

		if err := myLibrary.SaveRun(ctx, run); err != nil {
			log.Fatal().Err(err).Msg("could not record run")
		}

		// upload artifacts to backblaze when a bucket is configured
		if bucketName := viper.GetString("backblaze.bucket"); bucketName != "" {
			dirName := slug.Make(fmt.Sprintf("%s %s", myLibrary.Name, endTime.Format("2006-01-02")))
			for _, fn := range []string{cleanedFN, enrichedFN, parquetFN} {
				if err := backblaze.Upload(fn, bucketName, dirName, run.ID.String()); err != nil {
					log.Error().Err(err).Str("FileName", fn).Msg("failed uploading artifact to Backblaze")
				}
			}
		}

		// signal the healthcheck monitor
		if checkID := viper.GetString("healthchecks.check_id"); checkID != "" {
			if err := healthcheck.Ping(checkID); err != nil {
				log.Error().Err(err).Msg("could not ping healthcheck monitor")
			}
		}

		fmt.Println(runSummaryReport(run, result))
	},
}

// configuredSources builds the source list from the [sources] section of the
// config file. Every source must name a provider and a dataset. The workspace
// raw directory is injected into every source config so providers know where
// to cache downloads.
func configuredSources(layout *workspace.Layout) ([]*provider.Source, error) {
	sourceSettings := viper.GetStringMap("sources")

	names := make([]string, 0, len(sourceSettings))
	for name := range sourceSettings {
		names = append(names, name)
	}
	sort.Strings(names)

	sources := make([]*provider.Source, 0, len(names))
	for _, name := range names {
		settings := viper.GetStringMapString("sources." + name)

		source := &provider.Source{
			ID:     uuid.New(),
			Name:   name,
			Config: make(map[string]string, len(settings)),
		}

		for key, value := range settings {
			switch key {
			case "provider":
				source.Provider = value
			case "dataset":
				source.Dataset = value
			default:
				source.Config[key] = value
			}
		}

		if source.Provider == "" || source.Dataset == "" {
			return nil, fmt.Errorf("%w: %s must set provider and dataset", workspace.ErrMissingSource, name)
		}

		source.Config["rawDir"] = layout.RawDir()

		// the kaggle dataset and file may also come from the workspace mapping
		if source.Provider == "kaggle" {
			for key, value := range layout.Files.Kaggle {
				if _, ok := source.Config[key]; !ok {
					source.Config[key] = value
				}
			}
		}

		sources = append(sources, source)
	}

	return sources, nil
}

// collectObservations runs a dataset fetch and gathers everything it emits
// until the run summary arrives.
func collectObservations(ctx context.Context, source *provider.Source, dataset provider.Dataset) ([]*data.Observation, data.RunSummary) {
	outChan := make(chan *data.Observation, 100)
	exitChan := make(chan data.RunSummary, 1)

	go dataset.Fetch(ctx, source, outChan, exitChan)

	observations := make([]*data.Observation, 0, 100)

	for {
		select {
		case observation := <-outChan:
			observations = append(observations, observation)
		case summary := <-exitChan:
			for {
				select {
				case observation := <-outChan:
					observations = append(observations, observation)
				default:
					return observations, summary
				}
			}
		}
	}
}

// outputPath resolves a logical output name through the workspace mapping,
// falling back to a default file name in the processed directory.
func outputPath(layout *workspace.Layout, name string, defaultFN string) string {
	if fn, err := layout.ProcessedPath(name); err == nil {
		return fn
	}
	return filepath.Join(layout.ProcessedDir(), defaultFN)
}

// runSummaryReport renders the run report shown after a successful pipeline
// execution.
func runSummaryReport(run *library.Run, result *pipeline.Result) string {
	var sb strings.Builder

	keyword := func(s string) string {
		return lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Render(s)
	}

	runTime := run.FinishedOn.Sub(run.StartedOn)

	fmt.Fprintf(&sb,
		"%s\n\nRun ID: %s\nRun Time: %s\n\nRaw rows: %s\nClean rows: %s\nEnriched rows: %s\n\nDuplicates removed: %s\nMissing country removed: %s\nRows with unknown amounts: %s\nRows with unknown dates: %s\n\nCountry matches: %s\nGDP matches: %s\nCrypto matches: %s\n",
		lipgloss.NewStyle().Bold(true).Render("PIPELINE RUN COMPLETE"),
		keyword(run.ID.String()),
		keyword(durafmt.Parse(runTime).LimitFirstN(2).String()),
		keyword(humanize.Comma(int64(run.RawRows))),
		keyword(humanize.Comma(int64(run.CleanRows))),
		keyword(humanize.Comma(int64(run.EnrichedRows))),
		keyword(humanize.Comma(int64(run.DuplicatesRemoved))),
		keyword(humanize.Comma(int64(run.MissingCountryRemoved))),
		keyword(humanize.Comma(int64(run.UnknownAmounts))),
		keyword(humanize.Comma(int64(run.UnknownDates))),
		keyword(humanize.Comma(int64(run.CountryMatched))),
		keyword(humanize.Comma(int64(run.GdpMatched))),
		keyword(humanize.Comma(int64(run.CryptoMatched))),
	)

	if len(result.CountryStats) > 0 {
		top := result.CountryStats[0]
		fmt.Fprintf(&sb, "\nTop country by success rate: %s (%.1f%%)\n", keyword(top.CountryCode), top.SuccessRate)
	}

	return lipgloss.NewStyle().
		Width(60).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("63")).
		Padding(1, 2).
		Render(sb.String())
}

func init() {
	rootCmd.AddCommand(runCmd)
}
