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

// Package workspace manages the on-disk layout of a vsdata project: the
// data/raw, data/processed and reports directories plus the declarative
// mapping from logical dataset names to files and external dataset ids.
package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"
)

var (
	ErrBadMapping    = errors.New("malformed dataset mapping")
	ErrUnknownName   = errors.New("no file registered under that name")
	ErrCannotCreate  = errors.New("could not create workspace directory")
	ErrMissingSource = errors.New("source is missing required settings")
)

// FileMap is the declarative mapping loaded from the workspace sources file.
// Inputs name raw files, Outputs name processed artifacts, Kaggle names
// external dataset identifiers (owner/name).
type FileMap struct {
	Inputs  map[string]string `toml:"inputs"`
	Outputs map[string]string `toml:"outputs"`
	Kaggle  map[string]string `toml:"kaggle"`
}

// Layout is a resolved workspace rooted at a single directory.
type Layout struct {
	Root  string
	Files *FileMap
}

// subdirs is the standard directory tree created under the workspace root.
var subdirs = []string{
	"data/raw",
	"data/processed",
	"reports",
	"reports/figures",
}

// New resolves a workspace at root and loads the dataset mapping from
// sources.toml within it. A malformed mapping is a fatal configuration error
// for the caller.
func New(root string) (*Layout, error) {
	layout := &Layout{Root: root}

	mappingFN := filepath.Join(root, "sources.toml")
	content, err := os.ReadFile(mappingFN)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Debug().Str("FileName", mappingFN).Msg("no sources file found, using empty mapping")
			layout.Files = &FileMap{
				Inputs:  map[string]string{},
				Outputs: map[string]string{},
				Kaggle:  map[string]string{},
			}
			return layout, nil
		}
		return nil, err
	}

	fileMap, err := ParseFileMap(content)
	if err != nil {
		return nil, err
	}

	layout.Files = fileMap
	return layout, nil
}

// ParseFileMap validates and decodes a dataset mapping document.
func ParseFileMap(content []byte) (*FileMap, error) {
	fileMap := &FileMap{}

	if err := toml.Unmarshal(content, fileMap); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrBadMapping, err.Error())
	}

	if fileMap.Inputs == nil {
		fileMap.Inputs = map[string]string{}
	}
	if fileMap.Outputs == nil {
		fileMap.Outputs = map[string]string{}
	}
	if fileMap.Kaggle == nil {
		fileMap.Kaggle = map[string]string{}
	}

	for name, fn := range fileMap.Inputs {
		if name == "" || fn == "" || filepath.IsAbs(fn) {
			return nil, fmt.Errorf("%w: input %q maps to %q", ErrBadMapping, name, fn)
		}
	}

	for name, fn := range fileMap.Outputs {
		if name == "" || fn == "" || filepath.IsAbs(fn) {
			return nil, fmt.Errorf("%w: output %q maps to %q", ErrBadMapping, name, fn)
		}
	}

	return fileMap, nil
}

// EnsureDirs creates any missing directories of the standard tree.
func (layout *Layout) EnsureDirs() error {
	created := 0

	for _, dir := range subdirs {
		path := filepath.Join(layout.Root, dir)
		if _, err := os.Stat(path); err == nil {
			continue
		}

		if err := os.MkdirAll(path, 0755); err != nil {
			return fmt.Errorf("%w: %s", ErrCannotCreate, path)
		}
		created++
	}

	if created > 0 {
		log.Info().Int("NumCreated", created).Str("Root", layout.Root).Msg("created workspace directories")
	}

	return nil
}

// RawDir returns the raw-data directory.
func (layout *Layout) RawDir() string {
	return filepath.Join(layout.Root, "data", "raw")
}

// ProcessedDir returns the processed-data directory.
func (layout *Layout) ProcessedDir() string {
	return filepath.Join(layout.Root, "data", "processed")
}

// ReportsDir returns the reports directory.
func (layout *Layout) ReportsDir() string {
	return filepath.Join(layout.Root, "reports")
}

// RawPath resolves a logical input name to its full path.
func (layout *Layout) RawPath(name string) (string, error) {
	fn, ok := layout.Files.Inputs[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownName, name)
	}
	return filepath.Join(layout.RawDir(), fn), nil
}

// ProcessedPath resolves a logical output name to its full path.
func (layout *Layout) ProcessedPath(name string) (string, error) {
	fn, ok := layout.Files.Outputs[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownName, name)
	}
	return filepath.Join(layout.ProcessedDir(), fn), nil
}
