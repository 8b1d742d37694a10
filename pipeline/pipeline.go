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
	"context"

	"github.com/rs/zerolog"

	"github.com/venture-scope/vsdata/data"
)

// Result holds every table produced by one pipeline run plus the per-stage
// statistics for the run summary.
type Result struct {
	Cleaned       []*data.Startup
	Enriched      []*data.EnrichedStartup
	CryptoMatches []CryptoMatch
	CountryStats  []*CountryStat

	CleanStats CleanStats
	JoinStats  JoinStats
}

// Run executes the transform chain over one in-memory dataset load:
// clean, derive, join, aggregate. The reference slices may be nil or empty
// when a feed failed to load; the joins then degrade to all-null matches
// rather than failing.
func Run(ctx context.Context, startups []*data.Startup, countries []*data.Country,
	gdp []*data.GdpObservation, prices []*data.CryptoPrice, opts DeriveOptions) *Result {
	logger := zerolog.Ctx(ctx)

	result := &Result{}

	result.Cleaned, result.CleanStats = Clean(startups)
	result.Enriched = Derive(result.Cleaned, opts)

	if len(countries) == 0 {
		logger.Warn().Msg("country reference table is empty; country enrichment degraded to null matches")
	}
	result.JoinStats.CountryMatched, result.JoinStats.DuplicateCountryKeys = LeftJoinCountries(result.Enriched, countries)

	if len(gdp) == 0 {
		logger.Warn().Msg("GDP table is empty; GDP enrichment degraded to null matches")
	}
	result.JoinStats.GdpMatched = LeftJoinGdp(result.Enriched, gdp)

	if len(prices) == 0 {
		logger.Warn().Msg("crypto price table is empty; crypto enrichment skipped")
	}
	result.CryptoMatches, result.JoinStats.CryptoCandidates = InnerJoinCrypto(result.Enriched, prices)
	result.JoinStats.CryptoMatched = len(result.CryptoMatches)

	result.CountryStats = AggregateCountries(result.Enriched)

	logger.Info().
		Int("CleanRows", len(result.Cleaned)).
		Int("EnrichedRows", len(result.Enriched)).
		Int("CountryMatched", result.JoinStats.CountryMatched).
		Int("GdpMatched", result.JoinStats.GdpMatched).
		Int("CryptoMatched", result.JoinStats.CryptoMatched).
		Msg("pipeline run complete")

	return result
}
