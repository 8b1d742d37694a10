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

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

type Status string

const (
	Operating     Status = "operating"
	Acquired      Status = "acquired"
	Closed        Status = "closed"
	IPO           Status = "ipo"
	UnknownStatus Status = "unknown"
)

// Startup is one company row from the primary funding dataset. Field names
// track the crunchbase export columns. All fields are value types so records
// stay comparable for exact-duplicate detection.
type Startup struct {
	Permalink      string `csv:"permalink" json:"permalink"`
	Name           string `csv:"name" json:"name"`
	Category       string `csv:"category_list" json:"category_list"`
	CountryCode    string `csv:"country_code" json:"country_code"`
	Status         Status `csv:"status" json:"status"`
	FundingTotal   Amount `csv:"funding_total_usd" json:"funding_total_usd"`
	FundingRounds  Count  `csv:"funding_rounds" json:"funding_rounds"`
	FoundedAt      Date   `csv:"founded_at" json:"founded_at"`
	FirstFundingAt Date   `csv:"first_funding_at" json:"first_funding_at"`
	LastFundingAt  Date   `csv:"last_funding_at" json:"last_funding_at"`
}

// NormalizeStatus maps a raw status field onto the known enumeration.
func NormalizeStatus(raw string) Status {
	switch Status(strings.ToLower(strings.TrimSpace(raw))) {
	case Operating:
		return Operating
	case Acquired:
		return Acquired
	case Closed:
		return Closed
	case IPO:
		return IPO
	}
	return UnknownStatus
}

// MatchesCategory reports whether any of the record's comma-separated category
// tags contains the pattern (case-insensitive substring match).
func (startup *Startup) MatchesCategory(pattern string) bool {
	return strings.Contains(strings.ToLower(startup.Category), strings.ToLower(pattern))
}

// SaveDB writes the cleaned record to the given table.
func (startup *Startup) SaveDB(ctx context.Context, tbl string, dbConn *pgxpool.Conn) error {
	sql := fmt.Sprintf(`INSERT INTO %[1]s (
		"permalink",
		"name",
		"category_list",
		"country_code",
		"status",
		"funding_total_usd",
		"funding_rounds",
		"founded_at",
		"first_funding_at",
		"last_funding_at"
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
	) ON CONFLICT ON CONSTRAINT %[1]s_pkey
	DO UPDATE SET
		name = EXCLUDED.name,
		category_list = EXCLUDED.category_list,
		country_code = EXCLUDED.country_code,
		status = EXCLUDED.status,
		funding_total_usd = EXCLUDED.funding_total_usd,
		funding_rounds = EXCLUDED.funding_rounds,
		founded_at = EXCLUDED.founded_at,
		first_funding_at = EXCLUDED.first_funding_at,
		last_funding_at = EXCLUDED.last_funding_at;`, tbl)

	_, err := dbConn.Exec(ctx, sql, startup.Permalink, startup.Name, startup.Category,
		startup.CountryCode, string(startup.Status), nullableFloat(startup.FundingTotal),
		nullableInt(startup.FundingRounds), nullableDate(startup.FoundedAt),
		nullableDate(startup.FirstFundingAt), nullableDate(startup.LastFundingAt))
	if err != nil {
		log.Error().Err(err).Str("Permalink", startup.Permalink).Msg("error saving startup record to database")
	}

	return err
}

func nullableFloat(a Amount) any {
	if !a.Known {
		return nil
	}
	return a.Value
}

func nullableInt(c Count) any {
	if !c.Known {
		return nil
	}
	return c.Value
}

func nullableDate(d Date) any {
	if !d.Known {
		return nil
	}
	return d.Time
}
