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

var _ = Describe("StageOf", func() {
	DescribeTable("buckets are half-open on the upper bound",
		func(total float64, expected data.FundingStage) {
			Expect(data.StageOf(data.KnownAmount(total))).To(Equal(expected))
		},
		Entry("zero funding", 0.0, data.Seed),
		Entry("just below seed ceiling", 999_999.0, data.Seed),
		Entry("exactly at seed ceiling", 1_000_000.0, data.SeriesAB),
		Entry("just below series AB ceiling", 9_999_999.0, data.SeriesAB),
		Entry("exactly at series AB ceiling", 10_000_000.0, data.SeriesCPlus),
		Entry("just below series C+ limit", 49_999_999.0, data.SeriesCPlus),
		Entry("exactly at series C+ limit", 50_000_000.0, data.LateStage),
		Entry("well past the limit", 2_000_000_000.0, data.LateStage),
	)

	It("maps an unknown amount to Unfunded", func() {
		Expect(data.StageOf(data.Amount{})).To(Equal(data.Unfunded))
	})
})

var _ = Describe("NormalizeStatus", func() {
	DescribeTable("maps raw values onto the enumeration",
		func(raw string, expected data.Status) {
			Expect(data.NormalizeStatus(raw)).To(Equal(expected))
		},
		Entry("operating", "operating", data.Operating),
		Entry("mixed case", "Acquired", data.Acquired),
		Entry("padded", " closed ", data.Closed),
		Entry("ipo", "ipo", data.IPO),
		Entry("empty", "", data.UnknownStatus),
		Entry("unrecognized", "zombie", data.UnknownStatus),
	)
})
