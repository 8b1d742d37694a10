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
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/venture-scope/vsdata/data"
	"github.com/venture-scope/vsdata/pipeline"
)

const (
	cleanTable    = "startups_clean"
	enrichedTable = "startups_enriched"
	statsTable    = "country_stats"
)

type Library struct {
	DBUrl string
	Name  string
	Owner string

	Pool *pgxpool.Pool
}

// Run is one pipeline execution recorded in the library.
type Run struct {
	ID                    uuid.UUID `db:"id"`
	StartedOn             time.Time `db:"started_on"`
	FinishedOn            time.Time `db:"finished_on"`
	RawRows               int       `db:"raw_rows"`
	CleanRows             int       `db:"clean_rows"`
	EnrichedRows          int       `db:"enriched_rows"`
	DuplicatesRemoved     int       `db:"duplicates_removed"`
	MissingCountryRemoved int       `db:"missing_country_removed"`
	UnknownAmounts        int       `db:"unknown_amounts"`
	UnknownDates          int       `db:"unknown_dates"`
	CountryMatched        int       `db:"country_matched"`
	GdpMatched            int       `db:"gdp_matched"`
	CryptoMatched         int       `db:"crypto_matched"`
}

// CountryStatRow mirrors one row of the country_stats table.
type CountryStatRow struct {
	CountryCode string   `db:"country_code"`
	Operating   int      `db:"operating"`
	Total       int      `db:"total"`
	GdpUSD      *float64 `db:"gdp_usd"`
	SuccessRate float64  `db:"success_rate"`
}

// Connect to the database configured for the library
func (myLibrary *Library) Connect(ctx context.Context) error {
	if myLibrary.Pool != nil {
		return nil
	}

	pool, err := pgxpool.New(ctx, myLibrary.DBUrl)
	if err != nil {
		return err
	}
	myLibrary.Pool = pool

	return nil
}

// Close the database pool
func (myLibrary *Library) Close() {
	myLibrary.Pool.Close()
}

// NewFromDB creates a new library object with values from the database
func NewFromDB(ctx context.Context, dbURL string) (*Library, error) {
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return nil, err
	}

	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	myLibrary := Library{
		DBUrl: dbURL,
		Pool:  pool,
	}

	if err := conn.QueryRow(ctx, "SELECT name, owner FROM library").Scan(&myLibrary.Name, &myLibrary.Owner); err != nil {
		return nil, err
	}

	return &myLibrary, nil
}

// SaveDB creates a new record in the library table for this library
func (myLibrary *Library) SaveDB(ctx context.Context) error {
	conn, err := myLibrary.Pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `INSERT INTO library ("name", "owner") VALUES ($1, $2)`, myLibrary.Name, myLibrary.Owner)
	return err
}

// SaveCleaned upserts the cleaned startup table.
func (myLibrary *Library) SaveCleaned(ctx context.Context, records []*data.Startup) error {
	conn, err := myLibrary.Pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	for _, record := range records {
		if err := record.SaveDB(ctx, cleanTable, conn); err != nil {
			return err
		}
	}

	log.Info().Int("NumRecords", len(records)).Msg("saved cleaned startup table")
	return nil
}

// SaveEnriched upserts the enriched startup table.
func (myLibrary *Library) SaveEnriched(ctx context.Context, records []*data.EnrichedStartup) error {
	conn, err := myLibrary.Pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	for _, record := range records {
		if err := record.SaveDB(ctx, enrichedTable, conn); err != nil {
			return err
		}
	}

	log.Info().Int("NumRecords", len(records)).Msg("saved enriched startup table")
	return nil
}

// SaveCountryStats replaces the country aggregate table with the stats from
// the latest run.
func (myLibrary *Library) SaveCountryStats(ctx context.Context, stats []*pipeline.CountryStat) error {
	conn, err := myLibrary.Pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, "DELETE FROM "+statsTable); err != nil {
		if err2 := tx.Rollback(ctx); err2 != nil {
			log.Error().Err(err2).Msg("error rollingback tx")
		}
		return err
	}

	for _, stat := range stats {
		var gdp any
		if stat.Gdp.Known {
			gdp = stat.Gdp.Value
		}

		if _, err := tx.Exec(ctx, `INSERT INTO `+statsTable+`
("country_code", "operating", "total", "gdp_usd", "success_rate")
VALUES ($1, $2, $3, $4, $5)`, stat.CountryCode, stat.Operating, stat.Total, gdp, stat.SuccessRate); err != nil {
			if err2 := tx.Rollback(ctx); err2 != nil {
				log.Error().Err(err2).Msg("error rollingback tx")
			}
			return err
		}
	}

	return tx.Commit(ctx)
}

// SaveRun records a pipeline execution.
func (myLibrary *Library) SaveRun(ctx context.Context, run *Run) error {
	conn, err := myLibrary.Pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `INSERT INTO runs
("id", "started_on", "finished_on", "raw_rows", "clean_rows", "enriched_rows",
 "duplicates_removed", "missing_country_removed", "unknown_amounts", "unknown_dates",
 "country_matched", "gdp_matched", "crypto_matched")
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		run.ID, run.StartedOn, run.FinishedOn, run.RawRows, run.CleanRows, run.EnrichedRows,
		run.DuplicatesRemoved, run.MissingCountryRemoved, run.UnknownAmounts, run.UnknownDates,
		run.CountryMatched, run.GdpMatched, run.CryptoMatched)
	return err
}

// Runs returns the recorded pipeline executions, most recent first.
func (myLibrary *Library) Runs(ctx context.Context) ([]*Run, error) {
	var runs []*Run
	err := pgxscan.Select(ctx, myLibrary.Pool, &runs,
		`SELECT id, started_on, finished_on, raw_rows, clean_rows, enriched_rows,
duplicates_removed, missing_country_removed, unknown_amounts, unknown_dates,
country_matched, gdp_matched, crypto_matched
FROM runs ORDER BY started_on DESC`)
	return runs, err
}

// NumRuns returns the total count of recorded pipeline executions
func (myLibrary *Library) NumRuns(ctx context.Context) (int, error) {
	conn, err := myLibrary.Pool.Acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer conn.Release()

	count := 0
	err = conn.QueryRow(ctx, "SELECT count(*) FROM runs").Scan(&count)
	return count, err
}

// LastUpdated returns the date that the library was last updated
func (myLibrary *Library) LastUpdated(ctx context.Context) (time.Time, error) {
	conn, err := myLibrary.Pool.Acquire(ctx)
	if err != nil {
		return time.Time{}, err
	}
	defer conn.Release()

	var lastUpdated time.Time
	err = conn.QueryRow(ctx, "SELECT coalesce(max(finished_on), '0001-01-01'::timestamp) FROM runs").Scan(&lastUpdated)
	if err != nil {
		return time.Time{}, err
	}

	return lastUpdated, nil
}

// TotalStartups returns the number of records in the cleaned table
func (myLibrary *Library) TotalStartups(ctx context.Context) (int, error) {
	conn, err := myLibrary.Pool.Acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer conn.Release()

	count := 0
	err = conn.QueryRow(ctx, "SELECT count(*) FROM "+cleanTable).Scan(&count)
	return count, err
}

// CountryStats returns the country aggregates from the latest run, ranked by
// success rate.
func (myLibrary *Library) CountryStats(ctx context.Context) ([]*CountryStatRow, error) {
	var stats []*CountryStatRow
	err := pgxscan.Select(ctx, myLibrary.Pool, &stats,
		`SELECT country_code, operating, total, gdp_usd, success_rate
FROM country_stats ORDER BY success_rate DESC, country_code`)
	return stats, err
}
