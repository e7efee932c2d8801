//
// Copyright 2024 - 2026 Flight-HAL Authors. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//

package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/spf13/afero"
)

// TOMLLoader reads one named layer from a TOML file via an afero.Fs, the
// same appFs-swappable pattern linuxUtils uses for /proc and /sys reads.
type TOMLLoader struct {
	fs afero.Fs
}

// NewTOMLLoader builds a loader over fs. A nil fs defaults to the real OS
// filesystem.
func NewTOMLLoader(fs afero.Fs) *TOMLLoader {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &TOMLLoader{fs: fs}
}

// Load reads path as a flat TOML table and returns it as a Layer named
// name. A missing file yields an empty layer rather than an error,
// mirroring containerdUtils.GetDataRoot's "file absent, try the next
// candidate" fallback generalized to "file absent, layer is empty".
func (l *TOMLLoader) Load(path string, name LayerName) (Layer, error) {
	f, err := l.fs.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Layer{Name: name, Values: map[string]string{}}, nil
		}
		return Layer{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	var raw map[string]interface{}
	if _, err := toml.NewDecoder(f).Decode(&raw); err != nil {
		return Layer{}, fmt.Errorf("could not decode %s: %w", path, err)
	}

	values := make(map[string]string, len(raw))
	for k, v := range raw {
		values[k] = fmt.Sprintf("%v", v)
	}

	return Layer{Name: name, Values: values}, nil
}

// LoadFirst tries each candidate path in order, returning the first one
// that yields a non-empty layer (missing or empty files are skipped); if
// none does, returns an empty layer with no values, the way
// containerdUtils.GetDataRoot falls through its three well-known
// containerd.toml locations.
func (l *TOMLLoader) LoadFirst(paths []string, name LayerName) (Layer, error) {
	for _, p := range paths {
		layer, err := l.Load(p, name)
		if err != nil {
			return Layer{}, err
		}
		if len(layer.Values) > 0 {
			return layer, nil
		}
	}
	if len(paths) == 0 {
		return Layer{Name: name, Values: map[string]string{}}, nil
	}
	return Layer{Name: name, Values: map[string]string{}}, nil
}
