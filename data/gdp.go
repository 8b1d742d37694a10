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

// GdpObservation is one country/year GDP measurement in current-year USD.
// Null observations are dropped at normalization so Value is always present.
type GdpObservation struct {
	CountryCode string  `csv:"country_code" json:"country_code"`
	Year        int     `csv:"year" json:"year"`
	Value       float64 `csv:"value" json:"value"`
}

// MostRecentGdp keeps only the most recent observation per country code.
// Observations with missing values never reach this function, so recency is
// decided purely by year.
func MostRecentGdp(observations []*GdpObservation) map[string]*GdpObservation {
	latest := make(map[string]*GdpObservation, len(observations))

	for _, obs := range observations {
		if current, ok := latest[obs.CountryCode]; !ok || obs.Year > current.Year {
			latest[obs.CountryCode] = obs
		}
	}

	return latest
}
