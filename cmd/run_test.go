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
	"time"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/viper"

	"github.com/venture-scope/vsdata/library"
	"github.com/venture-scope/vsdata/pipeline"
	"github.com/venture-scope/vsdata/workspace"
)

var _ = Describe("configuredSources", func() {
	var layout *workspace.Layout

	BeforeEach(func() {
		viper.Reset()

		var err error
		layout, err = workspace.New(GinkgoT().TempDir())
		Expect(err).To(BeNil())
	})

	It("builds sources sorted by name with the raw directory injected", func() {
		viper.Set("sources", map[string]any{
			"startups": map[string]string{
				"provider": "kaggle",
				"dataset":  "startup-investments",
			},
			"countries": map[string]string{
				"provider": "restcountries",
				"dataset":  "all",
			},
		})

		sources, err := configuredSources(layout)

		Expect(err).To(BeNil())
		Expect(sources).To(HaveLen(2))
		Expect(sources[0].Name).To(Equal("countries"))
		Expect(sources[1].Name).To(Equal("startups"))
		Expect(sources[1].Provider).To(Equal("kaggle"))
		Expect(sources[1].Config).To(HaveKeyWithValue("rawDir", layout.RawDir()))
	})

	It("rejects a source without a provider", func() {
		viper.Set("sources", map[string]any{
			"startups": map[string]string{"dataset": "startup-investments"},
		})

		_, err := configuredSources(layout)
		Expect(err).To(MatchError(workspace.ErrMissingSource))
	})

	It("rejects a source without a dataset", func() {
		viper.Set("sources", map[string]any{
			"startups": map[string]string{"provider": "kaggle"},
		})

		_, err := configuredSources(layout)
		Expect(err).To(MatchError(workspace.ErrMissingSource))
	})

	It("fills kaggle settings from the workspace mapping without overriding", func() {
		layout.Files.Kaggle = map[string]string{
			"dataset": "justinas/startup-investments",
			"file":    "investments_VC.csv",
		}

		viper.Set("sources", map[string]any{
			"startups": map[string]string{
				"provider": "kaggle",
				"dataset":  "startup-investments",
				"file":     "override.csv",
			},
		})

		sources, err := configuredSources(layout)

		Expect(err).To(BeNil())
		Expect(sources[0].Config).To(HaveKeyWithValue("dataset", "justinas/startup-investments"))
		Expect(sources[0].Config).To(HaveKeyWithValue("file", "override.csv"))
	})
})

var _ = Describe("runSummaryReport", func() {
	It("reports row counts including unknown amount and date rows", func() {
		now := time.Now()
		run := &library.Run{
			ID:                    uuid.New(),
			StartedOn:             now.Add(-90 * time.Second),
			FinishedOn:            now,
			RawRows:               1000,
			CleanRows:             950,
			EnrichedRows:          950,
			DuplicatesRemoved:     30,
			MissingCountryRemoved: 20,
			UnknownAmounts:        12,
			UnknownDates:          7,
			CountryMatched:        900,
			GdpMatched:            880,
			CryptoMatched:         3,
		}

		report := runSummaryReport(run, &pipeline.Result{})

		Expect(report).To(ContainSubstring("PIPELINE RUN COMPLETE"))
		Expect(report).To(ContainSubstring("Rows with unknown amounts:"))
		Expect(report).To(ContainSubstring("Rows with unknown dates:"))
		Expect(report).To(ContainSubstring("12"))
		Expect(report).To(ContainSubstring("Duplicates removed:"))
	})

	It("names the top country when aggregates exist", func() {
		run := &library.Run{ID: uuid.New()}
		result := &pipeline.Result{
			CountryStats: []*pipeline.CountryStat{
				{CountryCode: "DEU", Operating: 4, Total: 4, SuccessRate: 100},
			},
		}

		report := runSummaryReport(run, result)

		Expect(report).To(ContainSubstring("Top country by success rate:"))
		Expect(report).To(ContainSubstring("DEU"))
		Expect(report).To(ContainSubstring("(100.0%)"))
	})
})
