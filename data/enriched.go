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

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// EnrichedStartup is a cleaned Startup extended with derived features and the
// nullable columns contributed by the country and GDP reference joins. Source
// fields are never overwritten; derived columns are only appended.
type EnrichedStartup struct {
	Startup

	AgeYears          Amount       `csv:"age_years" json:"age_years"`
	SuccessRateSector Amount       `csv:"success_rate_sector" json:"success_rate_sector"`
	Stage             FundingStage `csv:"funding_stage" json:"funding_stage"`
	CountryScore      float64      `csv:"country_score" json:"country_score"`
	FundingVelocity   Count        `csv:"funding_velocity_days" json:"funding_velocity_days"`
	FundingPerDay     Amount       `csv:"funding_per_day" json:"funding_per_day"`

	CountryName       string `csv:"country_name" json:"country_name"`
	CountryRegion     string `csv:"country_region" json:"country_region"`
	CountryPopulation Count  `csv:"country_population" json:"country_population"`

	Gdp     Amount `csv:"gdp_usd" json:"gdp_usd"`
	GdpYear Count  `csv:"gdp_year" json:"gdp_year"`
}

// SaveDB writes the enriched record to the given table.
func (enriched *EnrichedStartup) SaveDB(ctx context.Context, tbl string, dbConn *pgxpool.Conn) error {
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
		"last_funding_at",
		"age_years",
		"success_rate_sector",
		"funding_stage",
		"country_score",
		"funding_velocity_days",
		"funding_per_day",
		"country_name",
		"country_region",
		"country_population",
		"gdp_usd",
		"gdp_year"
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
		$11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21
	) ON CONFLICT ON CONSTRAINT %[1]s_pkey
	DO UPDATE SET
		age_years = EXCLUDED.age_years,
		success_rate_sector = EXCLUDED.success_rate_sector,
		funding_stage = EXCLUDED.funding_stage,
		country_score = EXCLUDED.country_score,
		funding_velocity_days = EXCLUDED.funding_velocity_days,
		funding_per_day = EXCLUDED.funding_per_day,
		country_name = EXCLUDED.country_name,
		country_region = EXCLUDED.country_region,
		country_population = EXCLUDED.country_population,
		gdp_usd = EXCLUDED.gdp_usd,
		gdp_year = EXCLUDED.gdp_year;`, tbl)

	_, err := dbConn.Exec(ctx, sql, enriched.Permalink, enriched.Name, enriched.Category,
		enriched.CountryCode, string(enriched.Status), nullableFloat(enriched.FundingTotal),
		nullableInt(enriched.FundingRounds), nullableDate(enriched.FoundedAt),
		nullableDate(enriched.FirstFundingAt), nullableDate(enriched.LastFundingAt),
		nullableFloat(enriched.AgeYears), nullableFloat(enriched.SuccessRateSector),
		string(enriched.Stage), enriched.CountryScore, nullableInt(enriched.FundingVelocity),
		nullableFloat(enriched.FundingPerDay), enriched.CountryName, enriched.CountryRegion,
		nullableInt(enriched.CountryPopulation), nullableFloat(enriched.Gdp),
		nullableInt(enriched.GdpYear))
	if err != nil {
		log.Error().Err(err).Str("Permalink", enriched.Permalink).Msg("error saving enriched record to database")
	}

	return err
}
