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
package pipeline

import (
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/venture-scope/vsdata/data"
)

// categoryPatterns select the startups eligible for the crypto price join.
var categoryPatterns = []string{"blockchain", "crypto"}

// JoinStats records match counts and data-quality conditions observed during
// the reference joins.
type JoinStats struct {
	CountryMatched       int
	DuplicateCountryKeys int
	GdpMatched           int
	CryptoCandidates     int
	CryptoMatched        int
}

// LeftJoinCountries fills in the country display fields for every row with a
// matching reference record. All rows are retained; unmatched rows keep empty
// display fields. Duplicate codes in the reference table are a data-quality
// condition: the first record wins and the duplicate count is surfaced.
func LeftJoinCountries(rows []*data.EnrichedStartup, countries []*data.Country) (matched, duplicates int) {
	byCode := make(map[string]*data.Country, len(countries))
	for _, country := range countries {
		if _, ok := byCode[country.Code]; ok {
			duplicates++
			continue
		}
		byCode[country.Code] = country
	}

	if duplicates > 0 {
		log.Warn().Int("DuplicateKeys", duplicates).Msg("country reference table contains duplicate codes")
	}

	for _, row := range rows {
		country, ok := byCode[row.CountryCode]
		if !ok {
			continue
		}

		row.CountryName = country.Name
		row.CountryRegion = country.Region
		row.CountryPopulation = data.KnownCount(country.Population)
		matched++
	}

	return matched, duplicates
}

// LeftJoinGdp attaches the most recent GDP observation per country. All rows
// are retained; unmatched rows keep an unknown GDP.
func LeftJoinGdp(rows []*data.EnrichedStartup, observations []*data.GdpObservation) (matched int) {
	latest := data.MostRecentGdp(observations)

	for _, row := range rows {
		obs, ok := latest[row.CountryCode]
		if !ok {
			continue
		}

		row.Gdp = data.KnownAmount(obs.Value)
		row.GdpYear = data.KnownCount(int64(obs.Year))
		matched++
	}

	return matched
}

// CryptoMatch pairs a blockchain/crypto startup with the current USD price of
// the asset sharing its exact name. Name-based matching is best-effort
// enrichment, not authoritative linkage.
type CryptoMatch struct {
	Startup  *data.EnrichedStartup
	PriceUSD float64
}

// InnerJoinCrypto filters rows whose category matches a blockchain/crypto
// pattern and keeps only those with an exact name match in the price table.
func InnerJoinCrypto(rows []*data.EnrichedStartup, prices []*data.CryptoPrice) (matches []CryptoMatch, candidates int) {
	byName := make(map[string]float64, len(prices))
	for _, price := range prices {
		if _, ok := byName[price.Name]; !ok {
			byName[price.Name] = price.PriceUSD
		}
	}

	for _, row := range rows {
		eligible := false
		for _, pattern := range categoryPatterns {
			if row.MatchesCategory(pattern) {
				eligible = true
				break
			}
		}
		if !eligible {
			continue
		}

		candidates++

		if price, ok := byName[row.Name]; ok {
			matches = append(matches, CryptoMatch{Startup: row, PriceUSD: price})
		}
	}

	return matches, candidates
}

// CountryStat is the per-country aggregate fed into the country ranking
// output.
type CountryStat struct {
	CountryCode string      `db:"country_code"`
	Operating   int         `db:"operating"`
	Total       int         `db:"total"`
	Gdp         data.Amount `db:"-"`
	SuccessRate float64     `db:"success_rate"`
}

// AggregateCountries groups the enriched table by country code and computes
// operating count, total count, the country's (already deduplicated) GDP
// value and the success rate. Groups with a zero denominator are excluded
// from the ranked output.
func AggregateCountries(rows []*data.EnrichedStartup) []*CountryStat {
	stats := make(map[string]*CountryStat)
	order := make([]string, 0)

	for _, row := range rows {
		stat, ok := stats[row.CountryCode]
		if !ok {
			stat = &CountryStat{CountryCode: row.CountryCode}
			stats[row.CountryCode] = stat
			order = append(order, row.CountryCode)
		}

		stat.Total++
		if row.Status == data.Operating {
			stat.Operating++
		}
		if !stat.Gdp.Known && row.Gdp.Known {
			stat.Gdp = row.Gdp
		}
	}

	result := make([]*CountryStat, 0, len(stats))
	for _, code := range order {
		stat := stats[code]
		if stat.Total == 0 {
			continue
		}

		stat.SuccessRate = float64(stat.Operating) / float64(stat.Total) * 100
		result = append(result, stat)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].SuccessRate > result[j].SuccessRate
	})

	return result
}
