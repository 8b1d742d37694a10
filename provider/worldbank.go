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
package provider

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/venture-scope/vsdata/data"
)

// gdpIndicator is GDP in current US dollars.
const gdpIndicator = "NY.GDP.MKTP.CD"

type WorldBank struct{}

func (wb *WorldBank) Name() string {
	return "worldbank"
}

func (wb *WorldBank) ConfigDescription() map[string]string {
	return map[string]string{
		"dateRange": "Which observation years should be requested (e.g. 2018:2023)?",
	}
}

func (wb *WorldBank) Description() string {
	return `The World Bank Open Data API provides free access to development
indicators for all countries, including GDP in current US dollars.`
}

func (wb *WorldBank) Datasets() map[string]Dataset {
	return map[string]Dataset{
		"GDP": {
			Name:        "GDP",
			Description: "GDP observations in current-year USD, per country per year.",
			Fetch:       downloadGdpObservations,
		},
	}
}

// Private interface

// wbObservation is one entry of the data list in the World Bank response
// envelope. Value is a pointer because the feed reports missing observations
// as JSON null.
type wbObservation struct {
	CountryCode string   `json:"countryiso3code"`
	Date        string   `json:"date"`
	Value       *float64 `json:"value"`
}

func downloadGdpObservations(ctx context.Context, source *Source, out chan<- *data.Observation, exitNotification chan<- data.RunSummary) {
	logger := zerolog.Ctx(ctx)

	runSummary := data.RunSummary{
		StartTime:  time.Now(),
		SourceID:   source.ID,
		SourceName: source.Name,
	}

	numObs := 0
	numSkipped := 0

	defer func() {
		runSummary.EndTime = time.Now()
		runSummary.NumObservations = numObs
		runSummary.NumSkipped = numSkipped
		exitNotification <- runSummary
	}()

	dateRange := source.Config["dateRange"]
	if dateRange == "" {
		dateRange = fmt.Sprintf("%d:%d", time.Now().Year()-5, time.Now().Year())
	}

	client := resty.New().
		SetRetryCount(3).
		SetTimeout(60 * time.Second)

	url := fmt.Sprintf("https://api.worldbank.org/v2/country/all/indicator/%s", gdpIndicator)

	resp, err := client.R().
		SetContext(ctx).
		SetQueryParam("format", "json").
		SetQueryParam("per_page", "20000").
		SetQueryParam("date", dateRange).
		Get(url)
	if err != nil {
		logger.Error().Err(err).Msg("downloading GDP observations failed")
		runSummary.Err = err
		return
	}

	if resp.StatusCode() >= 300 {
		logger.Error().Int("StatusCode", resp.StatusCode()).Msg("GDP feed returned error status code")
		runSummary.Err = fmt.Errorf("%w: %d", ErrFeedStatus, resp.StatusCode())
		return
	}

	observations, skipped, err := parseGdpEnvelope(resp.Body())
	if err != nil {
		logger.Error().Err(err).Msg("parsing GDP envelope failed")
		runSummary.Err = err
		return
	}

	numSkipped = skipped

	for _, obs := range observations {
		out <- &data.Observation{
			Gdp:             obs,
			ObservationDate: time.Now(),
			SourceID:        source.ID,
			SourceName:      source.Name,
		}
		numObs++
	}
}

// parseGdpEnvelope unpacks the two-element World Bank envelope; the first
// element is pagination metadata and is ignored, the second is the data list.
// Observations with a null value or an unusable code/year are skipped.
func parseGdpEnvelope(body []byte) ([]*data.GdpObservation, int, error) {
	var envelope []json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, 0, err
	}

	if len(envelope) < 2 {
		return nil, 0, ErrEnvelopeShape
	}

	var raw []wbObservation
	if err := json.Unmarshal(envelope[1], &raw); err != nil {
		return nil, 0, err
	}

	observations := make([]*data.GdpObservation, 0, len(raw))
	skipped := 0

	for _, entry := range raw {
		if entry.Value == nil {
			skipped++
			continue
		}

		code := strings.ToUpper(strings.TrimSpace(entry.CountryCode))
		if len(code) != 3 {
			skipped++
			continue
		}

		year, err := strconv.Atoi(entry.Date)
		if err != nil {
			skipped++
			continue
		}

		observations = append(observations, &data.GdpObservation{
			CountryCode: code,
			Year:        year,
			Value:       *entry.Value,
		})
	}

	return observations, skipped, nil
}
