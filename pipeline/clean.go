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

// Package pipeline implements the batch transform chain that turns normalized
// startup records into the cleaned and enriched tables: cleaning, feature
// derivation, the reference-table joins and the ranked summary views. Every
// stage is a pure function over its input slice; nothing reaches back
// upstream.
package pipeline

import (
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/venture-scope/vsdata/data"
)

// CleanStats records what the cleaner did so the run summary can report
// retained and affected row counts. UnknownAmounts and UnknownDates count
// rows, a row with several missing date fields counts once.
type CleanStats struct {
	Input                 int
	DuplicatesRemoved     int
	MissingCountryRemoved int
	UnknownAmounts        int
	UnknownDates          int
	Output                int
}

// Clean establishes the post-cleaning invariants: no exact-duplicate rows, no
// rows without a country code, and every amount/date field either parsed or
// explicitly unknown. The input slice is not modified.
func Clean(records []*data.Startup) ([]*data.Startup, CleanStats) {
	stats := CleanStats{Input: len(records)}

	seen := make(map[data.Startup]struct{}, len(records))
	cleaned := make([]*data.Startup, 0, len(records))

	for _, record := range records {
		if _, ok := seen[*record]; ok {
			stats.DuplicatesRemoved++
			continue
		}
		seen[*record] = struct{}{}

		// rows without a country code cannot participate in any join
		if strings.TrimSpace(record.CountryCode) == "" {
			stats.MissingCountryRemoved++
			continue
		}

		if !record.FundingTotal.Known {
			stats.UnknownAmounts++
		}

		// count rows, not fields, so the run summary reports affected rows
		if !record.FoundedAt.Known || !record.FirstFundingAt.Known || !record.LastFundingAt.Known {
			stats.UnknownDates++
		}

		cleaned = append(cleaned, record)
	}

	stats.Output = len(cleaned)

	log.Info().
		Int("Input", stats.Input).
		Int("DuplicatesRemoved", stats.DuplicatesRemoved).
		Int("MissingCountryRemoved", stats.MissingCountryRemoved).
		Int("Output", stats.Output).
		Msg("cleaned startup records")

	return cleaned, stats
}
