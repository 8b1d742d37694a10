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
	"time"

	"github.com/google/uuid"
)

// RunSummary reports the outcome of a single source fetch.
type RunSummary struct {
	StartTime       time.Time
	EndTime         time.Time
	NumObservations int
	NumSkipped      int
	SourceID        uuid.UUID
	SourceName      string
	Err             error
}

// Observation is a single normalized record emitted by a source fetch. Exactly
// one of the record pointers is set.
type Observation struct {
	Startup     *Startup
	Country     *Country
	Gdp         *GdpObservation
	CryptoPrice *CryptoPrice

	ObservationDate time.Time
	SourceID        uuid.UUID
	SourceName      string
}
