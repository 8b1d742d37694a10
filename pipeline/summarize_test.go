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
package pipeline_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/venture-scope/vsdata/data"
	"github.com/venture-scope/vsdata/pipeline"
)

func sectorRow(name, category string, rate float64) *data.EnrichedStartup {
	row := enrichedRow(name, "USA", category, data.Operating)
	row.SuccessRateSector = data.KnownAmount(rate)
	return row
}

var _ = Describe("TopSectors", func() {
	It("ranks sectors by success rate descending", func() {
		rows := []*data.EnrichedStartup{
			sectorRow("a", "Software", 50.0),
			sectorRow("b", "Biotech", 80.0),
			sectorRow("c", "Hardware", 20.0),
		}

		ranks := pipeline.TopSectors(rows, 0)
		Expect(ranks).To(HaveLen(3))
		Expect(ranks[0].Category).To(Equal("Biotech"))
		Expect(ranks[1].Category).To(Equal("Software"))
		Expect(ranks[2].Category).To(Equal("Hardware"))
	})

	It("keeps first-appearance order for ties", func() {
		rows := []*data.EnrichedStartup{
			sectorRow("a", "Software", 50.0),
			sectorRow("b", "Biotech", 50.0),
			sectorRow("c", "Hardware", 50.0),
		}

		ranks := pipeline.TopSectors(rows, 0)
		Expect(ranks[0].Category).To(Equal("Software"))
		Expect(ranks[1].Category).To(Equal("Biotech"))
		Expect(ranks[2].Category).To(Equal("Hardware"))
	})

	It("counts records per sector and truncates to n", func() {
		rows := []*data.EnrichedStartup{
			sectorRow("a", "Software", 50.0),
			sectorRow("b", "Software", 50.0),
			sectorRow("c", "Biotech", 80.0),
		}

		ranks := pipeline.TopSectors(rows, 1)
		Expect(ranks).To(HaveLen(1))
		Expect(ranks[0].Category).To(Equal("Biotech"))

		all := pipeline.TopSectors(rows, 0)
		Expect(all[1].Records).To(Equal(2))
	})
})

var _ = Describe("TopCountries", func() {
	It("ranks countries by record count descending", func() {
		rows := []*data.EnrichedStartup{
			enrichedRow("a", "USA", "", data.Operating),
			enrichedRow("b", "USA", "", data.Closed),
			enrichedRow("c", "DEU", "", data.Operating),
		}
		rows[0].CountryName = "United States"
		rows[1].CountryName = "United States"

		ranks := pipeline.TopCountries(rows, 0)
		Expect(ranks).To(HaveLen(2))
		Expect(ranks[0].CountryCode).To(Equal("USA"))
		Expect(ranks[0].CountryName).To(Equal("United States"))
		Expect(ranks[0].Records).To(Equal(2))
		Expect(ranks[1].CountryCode).To(Equal("DEU"))
	})
})

var _ = Describe("StageDistribution", func() {
	It("reports every stage in ascending capital order", func() {
		rows := []*data.EnrichedStartup{
			enrichedRow("a", "USA", "", data.Operating),
			enrichedRow("b", "USA", "", data.Operating),
		}
		rows[0].Stage = data.Seed
		rows[1].Stage = data.LateStage

		distribution := pipeline.StageDistribution(rows)
		Expect(distribution).To(HaveLen(len(data.Stages)))
		Expect(distribution[0].Stage).To(Equal(data.Unfunded))
		Expect(distribution[0].Count).To(BeZero())
		Expect(distribution[1].Stage).To(Equal(data.Seed))
		Expect(distribution[1].Count).To(Equal(1))
		Expect(distribution[4].Stage).To(Equal(data.LateStage))
		Expect(distribution[4].Count).To(Equal(1))
	})
})

var _ = Describe("BuildProfile", func() {
	It("collects counters in a single pass", func() {
		a := enrichedRow("a", "USA", "Software", data.Operating).Startup
		dup := a
		b := enrichedRow("b", "", "Biotech", data.Closed).Startup

		profile := pipeline.BuildProfile([]*data.Startup{&a, &dup, &b})

		Expect(profile.Rows).To(Equal(3))
		Expect(profile.Duplicates).To(Equal(1))
		Expect(profile.MissingCountry).To(Equal(1))
		Expect(profile.DistinctSectors).To(Equal(2))
		Expect(profile.DistinctCountry).To(Equal(1))
		Expect(profile.OperatingRecords).To(Equal(2))
	})
})
