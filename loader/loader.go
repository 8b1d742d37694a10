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

// Package loader reads delimited-text tables from disk. Files are decoded to
// UTF-8 (with a latin-1 fallback for legacy exports), the column delimiter is
// auto-detected, and individual malformed rows are skipped rather than failing
// the whole load. Decoded files are cached in memory so repeated loads of the
// same path are free.
package loader

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"unicode/utf8"

	"github.com/alphadose/haxmap"
	"github.com/gocarina/gocsv"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/encoding/charmap"

	"github.com/venture-scope/vsdata/data"
)

var (
	ErrUndecodable = errors.New("could not decode file")
	ErrEmptyTable  = errors.New("table has no data rows")
)

// corruptionMarkers are byte sequences that show up when UTF-8 text is decoded
// as latin-1 (e.g. 'ñ' becomes 'Ã±').
var corruptionMarkers = []string{"Ã±", "Ã¡", "Ã©", "Â£", "Ã‰"}

type Loader struct {
	cache *haxmap.Map[string, []byte]
}

func New() *Loader {
	return &Loader{
		cache: haxmap.New[string, []byte](),
	}
}

// ReadFile returns the decoded UTF-8 content of fn, serving repeated reads of
// the same path from the in-memory cache.
func (loader *Loader) ReadFile(fn string) ([]byte, error) {
	if cached, ok := loader.cache.Get(fn); ok {
		log.Debug().Str("FileName", fn).Msg("serving file from loader cache")
		return cached, nil
	}

	raw, err := os.ReadFile(fn)
	if err != nil {
		return nil, err
	}

	decoded, err := decodeText(raw)
	if err != nil {
		return nil, err
	}

	if looksCorrupted(decoded) {
		log.Warn().Str("FileName", fn).Msg("possible character corruption detected after decoding")
	}

	loader.cache.Set(fn, decoded)
	return decoded, nil
}

// LoadStartups reads and parses the primary startup dataset from fn. The
// second return value is the number of malformed rows that were skipped.
func (loader *Loader) LoadStartups(fn string) ([]*data.Startup, int, error) {
	content, err := loader.ReadFile(fn)
	if err != nil {
		return nil, 0, err
	}

	return ParseStartups(content)
}

// ParseStartups decodes a delimited table of startup records. Rows with the
// wrong column count or unparseable structure are skipped with a warning.
func ParseStartups(content []byte) ([]*data.Startup, int, error) {
	normalized, skipped, err := normalizeTable(content)
	if err != nil {
		return nil, skipped, err
	}

	startups := make([]*data.Startup, 0, 1000)
	if err := gocsv.UnmarshalBytes(normalized, &startups); err != nil {
		return nil, skipped, err
	}

	for _, startup := range startups {
		startup.Status = data.NormalizeStatus(string(startup.Status))
	}

	return startups, skipped, nil
}

// DetectDelimiter picks the most frequent of the common delimiters in the
// header line: comma, semicolon, tab, or pipe.
func DetectDelimiter(header []byte) rune {
	best := ','
	bestCount := bytes.Count(header, []byte{','})

	for _, candidate := range []byte{';', '\t', '|'} {
		if count := bytes.Count(header, []byte{candidate}); count > bestCount {
			best = rune(candidate)
			bestCount = count
		}
	}

	return best
}

// normalizeTable filters out malformed rows and rewrites the table as plain
// comma-separated UTF-8, returning the number of rows dropped.
func normalizeTable(content []byte) ([]byte, int, error) {
	headerEnd := bytes.IndexByte(content, '\n')
	if headerEnd < 0 {
		headerEnd = len(content)
	}

	reader := csv.NewReader(bytes.NewReader(content))
	reader.Comma = DetectDelimiter(content[:headerEnd])
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var (
		header  []string
		rows    [][]string
		skipped int
	)

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			skipped++
			log.Warn().Err(err).Msg("skipping unparseable row")
			continue
		}

		if header == nil {
			header = record
			continue
		}

		if len(record) != len(header) {
			skipped++
			log.Warn().Int("NumFields", len(record)).Int("NumColumns", len(header)).Msg("skipping row with wrong column count")
			continue
		}

		rows = append(rows, record)
	}

	if header == nil || len(rows) == 0 {
		return nil, skipped, ErrEmptyTable
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.Write(header); err != nil {
		return nil, skipped, err
	}
	if err := writer.WriteAll(rows); err != nil {
		return nil, skipped, err
	}
	writer.Flush()

	return buf.Bytes(), skipped, writer.Error()
}

// decodeText returns content as UTF-8. Valid UTF-8 passes through untouched;
// anything else is treated as latin-1.
func decodeText(raw []byte) ([]byte, error) {
	if utf8.Valid(raw) {
		return raw, nil
	}

	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		return nil, ErrUndecodable
	}

	return decoded, nil
}

func looksCorrupted(content []byte) bool {
	sample := content
	if len(sample) > 100000 {
		sample = sample[:100000]
	}

	for _, marker := range corruptionMarkers {
		if bytes.Contains(sample, []byte(marker)) {
			return true
		}
	}

	return false
}
