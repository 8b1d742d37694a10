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
package data_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/venture-scope/vsdata/data"
)

var _ = Describe("MostRecentGdp", func() {
	It("keeps the highest year per country", func() {
		observations := []*data.GdpObservation{
			{CountryCode: "USA", Year: 2020, Value: 21_060_000_000_000},
			{CountryCode: "USA", Year: 2022, Value: 25_460_000_000_000},
			{CountryCode: "DEU", Year: 2021, Value: 4_260_000_000_000},
		}

		latest := data.MostRecentGdp(observations)
		Expect(latest).To(HaveLen(2))
		Expect(latest["USA"].Year).To(Equal(2022))
		Expect(latest["USA"].Value).To(Equal(25_460_000_000_000.0))
		Expect(latest["DEU"].Year).To(Equal(2021))
	})

	It("is insensitive to input order", func() {
		observations := []*data.GdpObservation{
			{CountryCode: "USA", Year: 2022, Value: 25.0},
			{CountryCode: "USA", Year: 2020, Value: 21.0},
		}

		latest := data.MostRecentGdp(observations)
		Expect(latest["USA"].Year).To(Equal(2022))
	})

	It("returns an empty map for no observations", func() {
		Expect(data.MostRecentGdp(nil)).To(BeEmpty())
	})
})
