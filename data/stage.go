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
package data

type FundingStage string

const (
	Unfunded    FundingStage = "Unfunded"
	Seed        FundingStage = "Seed"
	SeriesAB    FundingStage = "SeriesAB"
	SeriesCPlus FundingStage = "SeriesCPlus"
	LateStage   FundingStage = "LateStage"
)

// Stages lists all funding stages in ascending capital order.
var Stages = []FundingStage{Unfunded, Seed, SeriesAB, SeriesCPlus, LateStage}

const (
	seedCeiling      = 1_000_000
	seriesABCeiling  = 10_000_000
	seriesCPlusLimit = 50_000_000
)

// StageOf buckets a total funding amount into a coarse stage. Buckets are
// half-open: inclusive on the lower bound, exclusive on the upper. An unknown
// amount maps to Unfunded.
func StageOf(total Amount) FundingStage {
	if !total.Known {
		return Unfunded
	}

	switch {
	case total.Value < seedCeiling:
		return Seed
	case total.Value < seriesABCeiling:
		return SeriesAB
	case total.Value < seriesCPlusLimit:
		return SeriesCPlus
	}

	return LateStage
}
