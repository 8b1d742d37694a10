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
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/venture-scope/vsdata/data"
)

var _ = Describe("ParseAmount", func() {
	It("parses a plain decimal", func() {
		amount := data.ParseAmount("1250000.50")
		Expect(amount.Known).To(BeTrue())
		Expect(amount.Value).To(Equal(1250000.50))
	})

	It("strips thousands separators", func() {
		amount := data.ParseAmount("12,500,000")
		Expect(amount.Known).To(BeTrue())
		Expect(amount.Value).To(Equal(12500000.0))
	})

	It("trims surrounding whitespace", func() {
		amount := data.ParseAmount("  42 ")
		Expect(amount.Known).To(BeTrue())
		Expect(amount.Value).To(Equal(42.0))
	})

	DescribeTable("missing-value placeholders become unknown",
		func(raw string) {
			Expect(data.ParseAmount(raw).Known).To(BeFalse())
		},
		Entry("dash", "-"),
		Entry("empty", ""),
		Entry("whitespace only", "   "),
		Entry("N/A", "N/A"),
		Entry("canonical token", "unknown"),
		Entry("garbage", "twelve dollars"),
	)

	It("serializes unknown as the canonical token", func() {
		out, err := data.Amount{}.MarshalCSV()
		Expect(err).To(BeNil())
		Expect(out).To(Equal("unknown"))
	})

	It("round-trips a known value through CSV", func() {
		var amount data.Amount
		Expect(amount.UnmarshalCSV("350000")).To(Succeed())
		out, err := amount.MarshalCSV()
		Expect(err).To(BeNil())
		Expect(out).To(Equal("350000"))
	})
})

var _ = Describe("ParseCount", func() {
	It("parses an integer", func() {
		count := data.ParseCount("4")
		Expect(count.Known).To(BeTrue())
		Expect(count.Value).To(Equal(int64(4)))
	})

	It("treats a decimal as unknown", func() {
		Expect(data.ParseCount("4.5").Known).To(BeFalse())
	})

	It("treats the dash placeholder as unknown", func() {
		Expect(data.ParseCount("-").Known).To(BeFalse())
	})
})

var _ = Describe("ParseDate", func() {
	DescribeTable("accepted layouts",
		func(raw string, year int, month time.Month, day int) {
			date := data.ParseDate(raw)
			Expect(date.Known).To(BeTrue())
			Expect(date.Time.Year()).To(Equal(year))
			Expect(date.Time.Month()).To(Equal(month))
			Expect(date.Time.Day()).To(Equal(day))
		},
		Entry("ISO date", "2012-04-01", 2012, time.April, 1),
		Entry("ISO datetime", "2012-04-01 09:30:00", 2012, time.April, 1),
		Entry("year-month", "2012-04", 2012, time.April, 1),
		Entry("bare year", "2012", 2012, time.January, 1),
		Entry("US slash date", "04/01/2012", 2012, time.April, 1),
	)

	It("treats unparseable values as unknown", func() {
		Expect(data.ParseDate("Apr 1st 2012").Known).To(BeFalse())
		Expect(data.ParseDate("").Known).To(BeFalse())
		Expect(data.ParseDate("-").Known).To(BeFalse())
	})
})

var _ = Describe("DaysBetween", func() {
	It("returns the whole-day span", func() {
		first := data.KnownDate(2012, time.January, 1)
		last := data.KnownDate(2012, time.January, 31)
		span := data.DaysBetween(first, last)
		Expect(span.Known).To(BeTrue())
		Expect(span.Value).To(Equal(int64(30)))
	})

	It("is negative when the dates are reversed", func() {
		first := data.KnownDate(2012, time.January, 31)
		last := data.KnownDate(2012, time.January, 1)
		span := data.DaysBetween(first, last)
		Expect(span.Known).To(BeTrue())
		Expect(span.Value).To(Equal(int64(-30)))
	})

	It("propagates unknown endpoints", func() {
		Expect(data.DaysBetween(data.Date{}, data.KnownDate(2012, time.January, 1)).Known).To(BeFalse())
		Expect(data.DaysBetween(data.KnownDate(2012, time.January, 1), data.Date{}).Known).To(BeFalse())
	})
})
