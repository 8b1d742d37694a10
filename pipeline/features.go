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
	"math"
	"time"

	"github.com/venture-scope/vsdata/data"
)

const daysPerYear = 365.25

// DeriveOptions controls feature derivation. Now is the reference observation
// time used for age computation.
type DeriveOptions struct {
	Now time.Time
}

// Derive computes the five derived columns for every cleaned record and
// returns the enriched table. Missing inputs propagate as unknown, never as
// zero or an error.
func Derive(records []*data.Startup, opts DeriveOptions) []*data.EnrichedStartup {
	if opts.Now.IsZero() {
		opts.Now = time.Now().UTC()
	}

	sectorRates := SectorSuccessRates(records)
	countryScores := CountryScores(records)

	enriched := make([]*data.EnrichedStartup, 0, len(records))
	for _, record := range records {
		row := &data.EnrichedStartup{Startup: *record}

		row.AgeYears = AgeYears(record.FoundedAt, opts.Now)
		row.SuccessRateSector = data.KnownAmount(sectorRates[record.Category])
		row.Stage = data.StageOf(record.FundingTotal)
		row.CountryScore = countryScores[record.CountryCode]
		row.FundingVelocity = data.DaysBetween(record.FirstFundingAt, record.LastFundingAt)
		row.FundingPerDay = FundingPerDay(record.FundingTotal, row.FundingVelocity)

		enriched = append(enriched, row)
	}

	return enriched
}

// AgeYears returns the age of a company in years at the reference time,
// rounded to one decimal. Unknown when the founding date is absent.
func AgeYears(founded data.Date, now time.Time) data.Amount {
	if !founded.Known {
		return data.Amount{}
	}

	days := now.Sub(founded.Time).Hours() / 24
	years := days / daysPerYear

	return data.KnownAmount(math.Round(years*10) / 10)
}

// SectorSuccessRates computes, per distinct category label, the percentage of
// records with operating status. The raw label string is the grouping key;
// multi-tag labels are treated as one atomic label.
func SectorSuccessRates(records []*data.Startup) map[string]float64 {
	total := make(map[string]int)
	operating := make(map[string]int)

	for _, record := range records {
		total[record.Category]++
		if record.Status == data.Operating {
			operating[record.Category]++
		}
	}

	rates := make(map[string]float64, len(total))
	for category, count := range total {
		if count == 0 {
			continue
		}
		rates[category] = float64(operating[category]) / float64(count) * 100
	}

	return rates
}

// CountryScores counts operating-status records per country and normalizes by
// the maximum such count, scaled to [0, 100]. Countries with no operating
// startups score a true zero.
func CountryScores(records []*data.Startup) map[string]float64 {
	counts := make(map[string]int)
	maxCount := 0

	for _, record := range records {
		if record.Status != data.Operating {
			continue
		}

		counts[record.CountryCode]++
		if counts[record.CountryCode] > maxCount {
			maxCount = counts[record.CountryCode]
		}
	}

	scores := make(map[string]float64, len(counts))
	if maxCount == 0 {
		return scores
	}

	for code, count := range counts {
		scores[code] = float64(count) / float64(maxCount) * 100
	}

	return scores
}

// FundingPerDay divides the total funding amount by the funding velocity.
// Unknown when the amount or velocity is unknown, and when the velocity is
// zero (division must never yield an infinity).
func FundingPerDay(total data.Amount, velocity data.Count) data.Amount {
	if !total.Known || !velocity.Known || velocity.Value == 0 {
		return data.Amount{}
	}

	return data.KnownAmount(total.Value / float64(velocity.Value))
}
