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
	"time"

	"github.com/go-resty/resty/v2"
	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/venture-scope/vsdata/data"
)

type CoinGecko struct{}

func (cg *CoinGecko) Name() string {
	return "coingecko"
}

func (cg *CoinGecko) ConfigDescription() map[string]string {
	return map[string]string{
		"pages":     "How many pages of markets should be fetched (250 assets per page)?",
		"rateLimit": "What is the maximum number of requests per minute?",
	}
}

func (cg *CoinGecko) Description() string {
	return `CoinGecko provides free market data for cryptocurrency assets. Only the
asset name and current USD price are consumed.`
}

func (cg *CoinGecko) Datasets() map[string]Dataset {
	return map[string]Dataset{
		"Markets": {
			Name:        "Markets",
			Description: "Current USD prices for tracked crypto assets.",
			Fetch:       downloadCryptoPrices,
		},
	}
}

// Private interface

type cgMarket struct {
	Name         string  `json:"name"`
	CurrentPrice float64 `json:"current_price"`
}

func downloadCryptoPrices(ctx context.Context, source *Source, out chan<- *data.Observation, exitNotification chan<- data.RunSummary) {
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

	pages, err := strconv.Atoi(source.Config["pages"])
	if err != nil || pages <= 0 {
		pages = 1
	}

	rateLimit, err := strconv.Atoi(source.Config["rateLimit"])
	if err != nil || rateLimit <= 0 {
		// free tier allows roughly 30 calls per minute
		rateLimit = 30
	}

	client := resty.New().
		SetRetryCount(3).
		SetTimeout(30 * time.Second)
	limiter := rate.NewLimiter(rate.Limit(float64(rateLimit)/float64(61)), 1)

	for page := 1; page <= pages; page++ {
		if err := limiter.Wait(ctx); err != nil {
			logger.Error().Err(err).Msg("rate limit wait failed")
			runSummary.Err = err
			return
		}

		resp, err := client.R().
			SetContext(ctx).
			SetQueryParam("vs_currency", "usd").
			SetQueryParam("order", "market_cap_desc").
			SetQueryParam("per_page", "250").
			SetQueryParam("page", strconv.Itoa(page)).
			Get("https://api.coingecko.com/api/v3/coins/markets")
		if err != nil {
			logger.Error().Err(err).Msg("downloading crypto prices failed")
			runSummary.Err = err
			return
		}

		if resp.StatusCode() >= 300 {
			logger.Error().Int("StatusCode", resp.StatusCode()).Int("Page", page).Msg("crypto feed returned error status code")
			runSummary.Err = fmt.Errorf("%w: %d", ErrFeedStatus, resp.StatusCode())
			return
		}

		prices, skipped, err := parseCryptoMarkets(resp.Body())
		if err != nil {
			logger.Error().Err(err).Msg("parsing crypto markets failed")
			runSummary.Err = err
			return
		}

		numSkipped += skipped

		for _, price := range prices {
			out <- &data.Observation{
				CryptoPrice:     price,
				ObservationDate: time.Now(),
				SourceID:        source.ID,
				SourceName:      source.Name,
			}
			numObs++
		}
	}
}

// parseCryptoMarkets converts the markets payload to price records, skipping
// unnamed assets and non-positive prices.
func parseCryptoMarkets(body []byte) ([]*data.CryptoPrice, int, error) {
	var raw []cgMarket
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, 0, err
	}

	prices := make([]*data.CryptoPrice, 0, len(raw))
	skipped := 0

	for _, market := range raw {
		if market.Name == "" || market.CurrentPrice <= 0 {
			skipped++
			continue
		}

		prices = append(prices, &data.CryptoPrice{
			Name:     market.Name,
			PriceUSD: market.CurrentPrice,
		})
	}

	return prices, skipped, nil
}
