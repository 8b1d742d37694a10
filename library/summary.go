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
package library

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/xeonx/timeago"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// recentRunLimit caps the number of runs shown in the summary.
const recentRunLimit = 10

// Summary returns a description of the library in markdown
func (myLibrary *Library) Summary(ctx context.Context) (string, error) {
	p := message.NewPrinter(language.English)
	builder := strings.Builder{}

	if _, err := builder.WriteString(fmt.Sprintf("# %s\n", myLibrary.Name)); err != nil {
		return "", err
	}

	if _, err := builder.WriteString("## Details\n\n"); err != nil {
		return "", err
	}

	// Database connection string
	if _, err := builder.WriteString(fmt.Sprintf("Database: %s\n\n", myLibrary.DBUrl)); err != nil {
		return "", err
	}

	// Number of pipeline runs
	numRuns, err := myLibrary.NumRuns(ctx)
	if err != nil {
		return "", err
	}

	if _, err := builder.WriteString(p.Sprintf("  * Num Runs: %d\n", numRuns)); err != nil {
		return "", err
	}

	// Total startup count
	totalStartups, err := myLibrary.TotalStartups(ctx)
	if err != nil {
		return "", err
	}

	if _, err := builder.WriteString(p.Sprintf("  * Startups Tracked: %d\n\n", totalStartups)); err != nil {
		return "", err
	}

	// Last updated time
	lastUpdated, err := myLibrary.LastUpdated(ctx)
	if err != nil {
		return "", err
	}

	age := timeago.English.Format(lastUpdated)

	if lastUpdated.Year() <= 1 {
		if _, err := builder.WriteString("Last Updated: Never\n\n"); err != nil {
			return "", err
		}
	} else {
		if _, err := builder.WriteString(fmt.Sprintf("Last Updated: %s (%s)\n\n", age, lastUpdated.Local().Format("01/02/2006"))); err != nil {
			return "", err
		}
	}

	// Recent runs
	if _, err := builder.WriteString("## Recent runs\n\n"); err != nil {
		return "", err
	}

	runs, err := myLibrary.Runs(ctx)
	if err != nil {
		return "", err
	}

	if len(runs) > recentRunLimit {
		runs = runs[:recentRunLimit]
	}

	for _, run := range runs {
		elapsed := run.FinishedOn.Sub(run.StartedOn).Round(time.Second)

		if _, err := builder.WriteString(p.Sprintf("  * %s (%s) raw=%d clean=%d enriched=%d [%s]\n",
			run.StartedOn.Local().Format("01/02/2006 15:04"), elapsed, run.RawRows, run.CleanRows,
			run.EnrichedRows, run.ID.String()[:6])); err != nil {
			return "", err
		}
	}

	return builder.String(), nil
}
