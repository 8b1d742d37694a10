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
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/venture-scope/vsdata/data"
	"github.com/venture-scope/vsdata/pipeline"
)

func enrichedRow(name, country, category string, status data.Status) *data.EnrichedStartup {
	return &data.EnrichedStartup{
		Startup: data.Startup{
			Permalink:   "/organization/" + name,
			Name:        name,
			CountryCode: country,
			Category:    category,
			Status:      status,
		},
	}
}

var _ = Describe("LeftJoinCountries", func() {
	It("retains all rows and fills display fields for matches", func() {
		rows := make([]*data.EnrichedStartup, 0, 10)
		for i := 0; i < 5; i++ {
			rows = append(rows, enrichedRow(fmt.Sprintf("us-%d", i), "USA", "", data.Operating))
		}
		for i := 0; i < 5; i++ {
			rows = append(rows, enrichedRow(fmt.Sprintf("xx-%d", i), "XXX", "", data.Operating))
		}

		countries := []*data.Country{
			{Code: "USA", Name: "United States", Region: "Americas", Population: 331_000_000},
		}

		matched, duplicates := pipeline.LeftJoinCountries(rows, countries)

		Expect(matched).To(Equal(5))
		Expect(duplicates).To(BeZero())
		Expect(rows).To(HaveLen(10))

		Expect(rows[0].CountryName).To(Equal("United States"))
		Expect(rows[0].CountryRegion).To(Equal("Americas"))
		Expect(rows[0].CountryPopulation.Known).To(BeTrue())

		Expect(rows[9].CountryName).To(BeEmpty())
		Expect(rows[9].CountryPopulation.Known).To(BeFalse())
	})

	It("surfaces duplicate reference keys and keeps the first record", func() {
		rows := []*data.EnrichedStartup{enrichedRow("acme", "USA", "", data.Operating)}
		countries := []*data.Country{
			{Code: "USA", Name: "United States", Region: "Americas", Population: 331_000_000},
			{Code: "USA", Name: "United States (dup)", Region: "Americas", Population: 1},
		}

		matched, duplicates := pipeline.LeftJoinCountries(rows, countries)

		Expect(matched).To(Equal(1))
		Expect(duplicates).To(Equal(1))
		Expect(rows[0].CountryName).To(Equal("United States"))
	})
})

var _ = Describe("LeftJoinGdp", func() {
	It("attaches the most recent observation per country", func() {
		rows := []*data.EnrichedStartup{
			enrichedRow("acme", "USA", "", data.Operating),
			enrichedRow("beta", "XXX", "", data.Operating),
		}

		observations := []*data.GdpObservation{
			{CountryCode: "USA", Year: 2020, Value: 21.0},
			{CountryCode: "USA", Year: 2022, Value: 25.0},
		}

		matched := pipeline.LeftJoinGdp(rows, observations)

		Expect(matched).To(Equal(1))
		Expect(rows[0].Gdp.Known).To(BeTrue())
		Expect(rows[0].Gdp.Value).To(Equal(25.0))
		Expect(rows[0].GdpYear.Value).To(Equal(int64(2022)))
		Expect(rows[1].Gdp.Known).To(BeFalse())
	})
})

var _ = Describe("InnerJoinCrypto", func() {
	It("keeps only name matches among blockchain/crypto candidates", func() {
		rows := []*data.EnrichedStartup{
			enrichedRow("Ethereum", "USA", "Blockchain|Platforms", data.Operating),
			enrichedRow("ChainYard", "USA", "Cryptocurrency", data.Operating),
			enrichedRow("LedgerWorks", "USA", "blockchain", data.Operating),
			enrichedRow("Acme", "USA", "Software", data.Operating),
		}

		prices := []*data.CryptoPrice{
			{Name: "Ethereum", PriceUSD: 2400.0},
			{Name: "Bitcoin", PriceUSD: 62000.0},
		}

		matches, candidates := pipeline.InnerJoinCrypto(rows, prices)

		Expect(candidates).To(Equal(3))
		Expect(matches).To(HaveLen(1))
		Expect(matches[0].Startup.Name).To(Equal("Ethereum"))
		Expect(matches[0].PriceUSD).To(Equal(2400.0))
	})

	It("matches category patterns case-insensitively", func() {
		rows := []*data.EnrichedStartup{
			enrichedRow("CoinCo", "USA", "CRYPTO Exchanges", data.Operating),
		}

		_, candidates := pipeline.InnerJoinCrypto(rows, nil)
		Expect(candidates).To(Equal(1))
	})

	It("requires exact name equality", func() {
		rows := []*data.EnrichedStartup{
			enrichedRow("ethereum", "USA", "Blockchain", data.Operating),
		}
		prices := []*data.CryptoPrice{{Name: "Ethereum", PriceUSD: 2400.0}}

		matches, _ := pipeline.InnerJoinCrypto(rows, prices)
		Expect(matches).To(BeEmpty())
	})
})

var _ = Describe("AggregateCountries", func() {
	It("groups by country and ranks by success rate", func() {
		rows := []*data.EnrichedStartup{
			enrichedRow("a", "USA", "", data.Operating),
			enrichedRow("b", "USA", "", data.Closed),
			enrichedRow("c", "DEU", "", data.Operating),
		}
		rows[0].Gdp = data.KnownAmount(25.0)

		stats := pipeline.AggregateCountries(rows)

		Expect(stats).To(HaveLen(2))
		Expect(stats[0].CountryCode).To(Equal("DEU"))
		Expect(stats[0].SuccessRate).To(Equal(100.0))
		Expect(stats[1].CountryCode).To(Equal("USA"))
		Expect(stats[1].SuccessRate).To(Equal(50.0))
		Expect(stats[1].Total).To(Equal(2))
		Expect(stats[1].Operating).To(Equal(1))
		Expect(stats[1].Gdp.Value).To(Equal(25.0))
	})

	It("keeps first-appearance order for tied rates", func() {
		rows := []*data.EnrichedStartup{
			enrichedRow("a", "FRA", "", data.Operating),
			enrichedRow("b", "DEU", "", data.Operating),
		}

		stats := pipeline.AggregateCountries(rows)
		Expect(stats[0].CountryCode).To(Equal("FRA"))
		Expect(stats[1].CountryCode).To(Equal("DEU"))
	})
})
