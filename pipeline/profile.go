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
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/venture-scope/vsdata/data"
)

// Profile is a quick statistical snapshot of a startup table, used for the
// run summary and the info report.
type Profile struct {
	Rows             int
	Duplicates       int
	MissingCountry   int
	UnknownAmounts   int
	UnknownFounded   int
	UnknownFunding   int
	DistinctSectors  int
	DistinctCountry  int
	OperatingRecords int
}

// BuildProfile scans a table once and collects the snapshot counters.
func BuildProfile(records []*data.Startup) *Profile {
	profile := &Profile{Rows: len(records)}

	seen := make(map[data.Startup]struct{}, len(records))
	sectors := make(map[string]struct{})
	countries := make(map[string]struct{})

	for _, record := range records {
		if _, ok := seen[*record]; ok {
			profile.Duplicates++
		} else {
			seen[*record] = struct{}{}
		}

		if strings.TrimSpace(record.CountryCode) == "" {
			profile.MissingCountry++
		} else {
			countries[record.CountryCode] = struct{}{}
		}

		sectors[record.Category] = struct{}{}

		if !record.FundingTotal.Known {
			profile.UnknownAmounts++
		}
		if !record.FoundedAt.Known {
			profile.UnknownFounded++
		}
		if !record.FirstFundingAt.Known || !record.LastFundingAt.Known {
			profile.UnknownFunding++
		}
		if record.Status == data.Operating {
			profile.OperatingRecords++
		}
	}

	profile.DistinctSectors = len(sectors)
	profile.DistinctCountry = len(countries)

	return profile
}

// Markdown renders the profile as a small markdown document.
func (profile *Profile) Markdown(datasetName string) string {
	p := message.NewPrinter(language.English)
	builder := strings.Builder{}

	builder.WriteString(fmt.Sprintf("# Profile: %s\n\n", datasetName))
	builder.WriteString(p.Sprintf("  * Rows: %d\n", profile.Rows))
	builder.WriteString(p.Sprintf("  * Duplicate rows: %d\n", profile.Duplicates))
	builder.WriteString(p.Sprintf("  * Rows missing country code: %d\n", profile.MissingCountry))
	builder.WriteString(p.Sprintf("  * Unknown funding amounts: %d\n", profile.UnknownAmounts))
	builder.WriteString(p.Sprintf("  * Unknown founding dates: %d\n", profile.UnknownFounded))
	builder.WriteString(p.Sprintf("  * Incomplete funding dates: %d\n", profile.UnknownFunding))
	builder.WriteString(p.Sprintf("  * Distinct sectors: %d\n", profile.DistinctSectors))
	builder.WriteString(p.Sprintf("  * Distinct countries: %d\n", profile.DistinctCountry))
	builder.WriteString(p.Sprintf("  * Operating records: %d\n", profile.OperatingRecords))

	return builder.String()
}
