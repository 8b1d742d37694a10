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
	"strconv"
	"strings"
	"time"
)

// Unknown is the canonical serialized form of a missing value. Raw feeds use a
// grab bag of placeholders ("-", "", "N/A"); everything normalizes to this.
const Unknown = "unknown"

// Amount is a decimal value that may be absent. Absence propagates through
// arithmetic rather than collapsing to zero.
type Amount struct {
	Value float64
	Known bool
}

func KnownAmount(v float64) Amount {
	return Amount{Value: v, Known: true}
}

// ParseAmount coerces a raw field to an Amount. The placeholder `-`, empty
// strings, and anything that fails numeric parsing all become unknown.
func ParseAmount(raw string) Amount {
	raw = strings.TrimSpace(raw)
	switch raw {
	case "", "-", "N/A", Unknown:
		return Amount{}
	}

	// large amounts are sometimes thousands-separated
	raw = strings.ReplaceAll(raw, ",", "")

	val, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return Amount{}
	}

	return Amount{Value: val, Known: true}
}

func (a Amount) String() string {
	if !a.Known {
		return Unknown
	}
	return strconv.FormatFloat(a.Value, 'f', -1, 64)
}

func (a *Amount) UnmarshalCSV(raw string) error {
	*a = ParseAmount(raw)
	return nil
}

func (a Amount) MarshalCSV() (string, error) {
	return a.String(), nil
}

// Count is a non-negative integer that may be absent.
type Count struct {
	Value int64
	Known bool
}

func KnownCount(v int64) Count {
	return Count{Value: v, Known: true}
}

func ParseCount(raw string) Count {
	raw = strings.TrimSpace(raw)
	switch raw {
	case "", "-", Unknown:
		return Count{}
	}

	val, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return Count{}
	}

	return Count{Value: val, Known: true}
}

func (c Count) String() string {
	if !c.Known {
		return Unknown
	}
	return strconv.FormatInt(c.Value, 10)
}

func (c *Count) UnmarshalCSV(raw string) error {
	*c = ParseCount(raw)
	return nil
}

func (c Count) MarshalCSV() (string, error) {
	return c.String(), nil
}

// dateLayouts are tried in order when parsing raw date fields. The crunchbase
// dump uses ISO dates but a few rows carry year-month or bare-year values.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01",
	"2006",
	"01/02/2006",
}

// Date is a calendar date that may be absent. Unparseable raw values become
// unknown, never an error.
type Date struct {
	Time  time.Time
	Known bool
}

func KnownDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC), Known: true}
}

func ParseDate(raw string) Date {
	raw = strings.TrimSpace(raw)
	switch raw {
	case "", "-", Unknown:
		return Date{}
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return Date{Time: t.UTC(), Known: true}
		}
	}

	return Date{}
}

func (d Date) String() string {
	if !d.Known {
		return Unknown
	}
	return d.Time.Format("2006-01-02")
}

func (d *Date) UnmarshalCSV(raw string) error {
	*d = ParseDate(raw)
	return nil
}

func (d Date) MarshalCSV() (string, error) {
	return d.String(), nil
}

// DaysBetween returns the whole-day span from d to other, unknown if either
// endpoint is absent.
func DaysBetween(d, other Date) Count {
	if !d.Known || !other.Known {
		return Count{}
	}

	days := int64(other.Time.Sub(d.Time).Hours() / 24)
	return Count{Value: days, Known: true}
}
