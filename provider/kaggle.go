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
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/venture-scope/vsdata/data"
	"github.com/venture-scope/vsdata/loader"
)

type Kaggle struct{}

func (kaggle *Kaggle) Name() string {
	return "kaggle"
}

func (kaggle *Kaggle) ConfigDescription() map[string]string {
	return map[string]string{
		"dataset":  "Which Kaggle dataset should be downloaded (owner/name)?",
		"file":     "Which file inside the dataset archive holds the startup table?",
		"username": "What is your Kaggle username?",
		"key":      "What is your Kaggle API key?",
		"rawDir":   "Where should downloaded raw files be stored?",
	}
}

func (kaggle *Kaggle) Description() string {
	return `Kaggle hosts community-curated datasets behind an authenticated download
API. vsdata uses it for the primary startup-funding table.`
}

func (kaggle *Kaggle) Datasets() map[string]Dataset {
	return map[string]Dataset{
		"Startup Investments": {
			Name:        "Startup Investments",
			Description: "One row per company: funding totals, rounds, dates, category tags and status.",
			Fetch:       downloadKaggleStartups,
		},
	}
}

func downloadKaggleStartups(ctx context.Context, source *Source, out chan<- *data.Observation, exitNotification chan<- data.RunSummary) {
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

	csvPath, err := ensureStartupFile(ctx, source)
	if err != nil {
		logger.Error().Err(err).Msg("could not acquire startup dataset")
		runSummary.Err = err
		return
	}

	startups, skipped, err := loader.New().LoadStartups(csvPath)
	if err != nil {
		logger.Error().Err(err).Str("FileName", csvPath).Msg("could not parse startup dataset")
		runSummary.Err = err
		return
	}

	numSkipped = skipped

	for _, startup := range startups {
		out <- &data.Observation{
			Startup:         startup,
			ObservationDate: time.Now(),
			SourceID:        source.ID,
			SourceName:      source.Name,
		}
		numObs++
	}
}

// ensureStartupFile returns the path of the startup CSV inside the raw data
// directory, downloading and extracting the Kaggle archive when the file is
// not already present.
func ensureStartupFile(ctx context.Context, source *Source) (string, error) {
	logger := zerolog.Ctx(ctx)

	fileName := source.Config["file"]
	csvPath := filepath.Join(source.Config["rawDir"], fileName)

	if _, err := os.Stat(csvPath); err == nil {
		logger.Debug().Str("FileName", csvPath).Msg("raw dataset already downloaded")
		return csvPath, nil
	}

	url := fmt.Sprintf("https://www.kaggle.com/api/v1/datasets/download/%s", source.Config["dataset"])

	client := resty.New().
		SetBasicAuth(source.Config["username"], source.Config["key"]).
		SetRetryCount(3).
		SetTimeout(5 * time.Minute)

	resp, err := client.R().SetContext(ctx).Get(url)
	if err != nil {
		return "", err
	}

	if resp.StatusCode() >= 300 {
		return "", fmt.Errorf("%w: %d", ErrFeedStatus, resp.StatusCode())
	}

	body := resp.Body()
	zipReader, err := zip.NewReader(bytes.NewReader(body), int64(len(body)))
	if err != nil {
		return "", err
	}

	for _, zipFile := range zipReader.File {
		if !strings.EqualFold(filepath.Base(zipFile.Name), fileName) {
			continue
		}

		content, err := readZipFile(zipFile)
		if err != nil {
			return "", err
		}

		if err := os.MkdirAll(filepath.Dir(csvPath), 0755); err != nil {
			return "", err
		}

		if err := os.WriteFile(csvPath, content, 0644); err != nil {
			return "", err
		}

		logger.Info().Str("FileName", csvPath).Int("Size", len(content)).Msg("downloaded startup dataset from kaggle")
		return csvPath, nil
	}

	return "", fmt.Errorf("%w: %s", ErrFileNotInArchive, fileName)
}

func readZipFile(zf *zip.File) ([]byte, error) {
	f, err := zf.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
