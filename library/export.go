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
	"os"

	"github.com/gocarina/gocsv"
	"github.com/rs/zerolog/log"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/venture-scope/vsdata/data"
)

// enrichedParquetRow is the flat parquet schema of the enriched startup
// table. Unknown values are encoded as null through pointer fields.
type enrichedParquetRow struct {
	Permalink         string   `parquet:"name=permalink, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Name              string   `parquet:"name=name, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Category          string   `parquet:"name=category_list, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	CountryCode       string   `parquet:"name=country_code, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Status            string   `parquet:"name=status, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	FundingTotal      *float64 `parquet:"name=funding_total_usd, type=DOUBLE"`
	FundingRounds     *int64   `parquet:"name=funding_rounds, type=INT64"`
	FoundedAt         string   `parquet:"name=founded_at, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	FirstFundingAt    string   `parquet:"name=first_funding_at, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	LastFundingAt     string   `parquet:"name=last_funding_at, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	AgeYears          *float64 `parquet:"name=age_years, type=DOUBLE"`
	SuccessRateSector *float64 `parquet:"name=success_rate_sector, type=DOUBLE"`
	Stage             string   `parquet:"name=funding_stage, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	CountryScore      float64  `parquet:"name=country_score, type=DOUBLE"`
	FundingVelocity   *int64   `parquet:"name=funding_velocity_days, type=INT64"`
	FundingPerDay     *float64 `parquet:"name=funding_per_day, type=DOUBLE"`
	CountryName       string   `parquet:"name=country_name, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	CountryRegion     string   `parquet:"name=country_region, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	CountryPopulation *int64   `parquet:"name=country_population, type=INT64"`
	Gdp               *float64 `parquet:"name=gdp_usd, type=DOUBLE"`
	GdpYear           *int64   `parquet:"name=gdp_year, type=INT64"`
}

// ExportCleanedCSV writes the cleaned startup table as CSV.
func ExportCleanedCSV(records []*data.Startup, fn string) error {
	fh, err := os.OpenFile(fn, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer fh.Close()

	if err := gocsv.MarshalFile(&records, fh); err != nil {
		return err
	}

	log.Info().Int("NumRecords", len(records)).Str("FileName", fn).Msg("wrote cleaned startup csv")
	return nil
}

// ExportEnrichedCSV writes the enriched startup table as CSV.
func ExportEnrichedCSV(records []*data.EnrichedStartup, fn string) error {
	fh, err := os.OpenFile(fn, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer fh.Close()

	if err := gocsv.MarshalFile(&records, fh); err != nil {
		return err
	}

	log.Info().Int("NumRecords", len(records)).Str("FileName", fn).Msg("wrote enriched startup csv")
	return nil
}

// ExportEnrichedParquet writes the enriched startup table as parquet.
func ExportEnrichedParquet(records []*data.EnrichedStartup, fn string) error {
	fh, err := local.NewLocalFileWriter(fn)
	if err != nil {
		log.Error().Err(err).Str("FileName", fn).Msg("cannot create local file")
		return err
	}
	defer fh.Close()

	pw, err := writer.NewParquetWriter(fh, new(enrichedParquetRow), 4)
	if err != nil {
		log.Error().
			Str("OriginalError", err.Error()).
			Msg("Parquet write failed")
		return err
	}

	pw.RowGroupSize = 128 * 1024 * 1024 // 128M
	pw.PageSize = 8 * 1024              // 8k
	pw.CompressionType = parquet.CompressionCodec_ZSTD

	for _, record := range records {
		if err = pw.Write(parquetRow(record)); err != nil {
			log.Error().
				Str("OriginalError", err.Error()).
				Str("Permalink", record.Permalink).
				Msg("Parquet write failed for record")
		}
	}

	if err = pw.WriteStop(); err != nil {
		log.Error().Err(err).Msg("Parquet write failed")
		return err
	}

	log.Info().Int("NumRecords", len(records)).Msg("Parquet write finished")
	return nil
}

func parquetRow(record *data.EnrichedStartup) *enrichedParquetRow {
	row := &enrichedParquetRow{
		Permalink:      record.Permalink,
		Name:           record.Name,
		Category:       record.Category,
		CountryCode:    record.CountryCode,
		Status:         string(record.Status),
		FoundedAt:      record.FoundedAt.String(),
		FirstFundingAt: record.FirstFundingAt.String(),
		LastFundingAt:  record.LastFundingAt.String(),
		Stage:          string(record.Stage),
		CountryScore:   record.CountryScore,
		CountryName:    record.CountryName,
		CountryRegion:  record.CountryRegion,
	}

	row.FundingTotal = amountPtr(record.FundingTotal)
	row.FundingRounds = countPtr(record.FundingRounds)
	row.AgeYears = amountPtr(record.AgeYears)
	row.SuccessRateSector = amountPtr(record.SuccessRateSector)
	row.FundingVelocity = countPtr(record.FundingVelocity)
	row.FundingPerDay = amountPtr(record.FundingPerDay)
	row.CountryPopulation = countPtr(record.CountryPopulation)
	row.Gdp = amountPtr(record.Gdp)
	row.GdpYear = countPtr(record.GdpYear)

	return row
}

func amountPtr(amount data.Amount) *float64 {
	if !amount.Known {
		return nil
	}
	value := amount.Value
	return &value
}

func countPtr(count data.Count) *int64 {
	if !count.Known {
		return nil
	}
	value := count.Value
	return &value
}
