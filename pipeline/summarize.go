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

	"github.com/venture-scope/vsdata/data"
)

// SectorRank is one row of the top-sectors view.
type SectorRank struct {
	Category    string
	SuccessRate float64
	Records     int
}

// CountryRank is one row of the top-countries view.
type CountryRank struct {
	CountryCode string
	CountryName string
	Records     int
}

// StageCount is one row of the funding-stage distribution.
type StageCount struct {
	Stage data.FundingStage
	Count int
}

// TopSectors ranks distinct category labels by success rate, descending. Ties
// keep the order in which the sector first appears in the table.
func TopSectors(rows []*data.EnrichedStartup, n int) []SectorRank {
	index := make(map[string]int)
	ranks := make([]SectorRank, 0)

	for _, row := range rows {
		idx, ok := index[row.Category]
		if !ok {
			idx = len(ranks)
			index[row.Category] = idx
			rate := 0.0
			if row.SuccessRateSector.Known {
				rate = row.SuccessRateSector.Value
			}
			ranks = append(ranks, SectorRank{Category: row.Category, SuccessRate: rate})
		}
		ranks[idx].Records++
	}

	sort.SliceStable(ranks, func(i, j int) bool {
		return ranks[i].SuccessRate > ranks[j].SuccessRate
	})

	return truncate(ranks, n)
}

// TopCountries ranks countries by record count, descending, ties in
// first-appearance order.
func TopCountries(rows []*data.EnrichedStartup, n int) []CountryRank {
	index := make(map[string]int)
	ranks := make([]CountryRank, 0)

	for _, row := range rows {
		idx, ok := index[row.CountryCode]
		if !ok {
			idx = len(ranks)
			index[row.CountryCode] = idx
			ranks = append(ranks, CountryRank{CountryCode: row.CountryCode, CountryName: row.CountryName})
		}
		ranks[idx].Records++
	}

	sort.SliceStable(ranks, func(i, j int) bool {
		return ranks[i].Records > ranks[j].Records
	})

	return truncate(ranks, n)
}

// StageDistribution counts records per funding stage, in ascending capital
// order.
func StageDistribution(rows []*data.EnrichedStartup) []StageCount {
	counts := make(map[data.FundingStage]int, len(data.Stages))
	for _, row := range rows {
		counts[row.Stage]++
	}

	distribution := make([]StageCount, 0, len(data.Stages))
	for _, stage := range data.Stages {
		distribution = append(distribution, StageCount{Stage: stage, Count: counts[stage]})
	}

	return distribution
}

func truncate[T any](items []T, n int) []T {
	if n > 0 && len(items) > n {
		return items[:n]
	}
	return items
}
