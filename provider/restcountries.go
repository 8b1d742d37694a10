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
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/venture-scope/vsdata/data"
)

type RestCountries struct{}

func (rc *RestCountries) Name() string {
	return "restcountries"
}

func (rc *RestCountries) ConfigDescription() map[string]string {
	return map[string]string{}
}

func (rc *RestCountries) Description() string {
	return `REST Countries is a free, keyless API serving reference data for every
country: ISO codes, display names, regions and population figures.`
}

func (rc *RestCountries) Datasets() map[string]Dataset {
	return map[string]Dataset{
		"Countries": {
			Name:        "Countries",
			Description: "Country reference table keyed by ISO3 code.",
			Fetch:       downloadCountries,
		},
	}
}

// Private interface

type restCountry struct {
	Name struct {
		Common string `json:"common"`
	} `json:"name"`
	Cca3       string `json:"cca3"`
	Region     string `json:"region"`
	Population int64  `json:"population"`
}

func downloadCountries(ctx context.Context, source *Source, out chan<- *data.Observation, exitNotification chan<- data.RunSummary) {
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

	client := resty.New().
		SetRetryCount(3).
		SetTimeout(30 * time.Second)

	resp, err := client.R().
		SetContext(ctx).
		SetQueryParam("fields", "name,cca3,region,population").
		Get("https://restcountries.com/v3.1/all")
	if err != nil {
		logger.Error().Err(err).Msg("downloading country reference data failed")
		runSummary.Err = err
		return
	}

	if resp.StatusCode() >= 300 {
		logger.Error().Int("StatusCode", resp.StatusCode()).Msg("country feed returned error status code")
		runSummary.Err = fmt.Errorf("%w: %d", ErrFeedStatus, resp.StatusCode())
		return
	}

	countries, skipped, err := parseCountries(resp.Body())
	if err != nil {
		logger.Error().Err(err).Msg("parsing country reference data failed")
		runSummary.Err = err
		return
	}

	numSkipped = skipped

	for _, country := range countries {
		out <- &data.Observation{
			Country:         country,
			ObservationDate: time.Now(),
			SourceID:        source.ID,
			SourceName:      source.Name,
		}
		numObs++
	}
}

// parseCountries converts the raw feed payload into country records, skipping
// entries without a usable ISO3 code.
func parseCountries(body []byte) ([]*data.Country, int, error) {
	var raw []restCountry
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, 0, err
	}

	countries := make([]*data.Country, 0, len(raw))
	skipped := 0

	for _, entry := range raw {
		code := strings.ToUpper(strings.TrimSpace(entry.Cca3))
		if len(code) != 3 {
			skipped++
			continue
		}

		countries = append(countries, &data.Country{
			Code:       code,
			Name:       entry.Name.Common,
			Region:     entry.Region,
			Population: entry.Population,
		})
	}

	return countries, skipped, nil
}
