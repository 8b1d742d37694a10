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

	"github.com/google/uuid"

	"github.com/venture-scope/vsdata/data"
)

type Provider interface {
	Name() string
	ConfigDescription() map[string]string
	Description() string
	Datasets() map[string]Dataset
}

type Dataset struct {
	Name        string
	Description string

	// Fetch retrieves records from the dataset. It writes normalized
	// observations to `out` and reports a run summary on `exitNotification`
	// when finished.
	Fetch func(context.Context, *Source, chan<- *data.Observation, chan<- data.RunSummary)
}

// Source binds a configured data source (from the config file) to a provider
// dataset.
type Source struct {
	ID       uuid.UUID
	Name     string
	Provider string
	Dataset  string
	Config   map[string]string
}

// Map indexes all available providers by their config key.
var Map = map[string]Provider{
	"kaggle":        &Kaggle{},
	"restcountries": &RestCountries{},
	"worldbank":     &WorldBank{},
	"coingecko":     &CoinGecko{},
}
