// Copyright Crosscut Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package main implements crosscutctl, the CLI host that loads a script
// file into an engine.Engine, drives it to completion (or until it
// suspends on an effect no package function resolves), and optionally
// serves the debugserver and a liveness probe file while doing so.
package main

import (
	"fmt"
	"os"

	"github.com/ghodss/yaml"
	"github.com/spf13/afero"
)

// opaqueEntry is one row of the host-injected opaque value table: a host
// can preload values.Opaque results a script's provided functions may
// return, keyed by the id package functions are expected to hand back, so
// the debugserver has a display string without having to interpret
// whatever the host's Go value actually is (§6 "Opaque{id, display}").
type opaqueEntry struct {
	ID      int    `json:"id"`
	Display string `json:"display"`
}

// loadOpaqueTable reads a YAML file of opaqueEntry rows off fs, using
// github.com/ghodss/yaml exactly as istio-pkg's version/cobra.go does for
// its own struct (de)serialization -- the one place in this CLI that reads
// a config-shaped file apart from crosscut.yaml itself, which viper already
// owns (see viperconfig.ProcessViperConfig on the root command).
func loadOpaqueTable(fs afero.Fs, path string) (map[int]string, error) {
	table := make(map[int]string)
	if path == "" {
		return table, nil
	}

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return table, nil
		}
		return nil, fmt.Errorf("crosscutctl: reading %s: %w", path, err)
	}

	var entries []opaqueEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("crosscutctl: parsing %s: %w", path, err)
	}
	for _, e := range entries {
		table[e.ID] = e.Display
	}
	return table, nil
}
