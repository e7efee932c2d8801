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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetLayerPrecedenceOverrideWins(t *testing.T) {
	m := New(nil)

	require.True(t, m.SetLayer(Layer{Name: LayerSystem, Values: map[string]string{"log_level": "info"}}).IsOk())
	require.True(t, m.SetLayer(Layer{Name: LayerOverride, Values: map[string]string{"log_level": "debug"}}).IsOk())

	v, ok := m.Get("log_level")
	require.True(t, ok)
	assert.Equal(t, "debug", v)
}

func TestSetLayerLowerPrecedenceDoesNotOverrideHigher(t *testing.T) {
	m := New(nil)

	require.True(t, m.SetLayer(Layer{Name: LayerOverride, Values: map[string]string{"log_level": "debug"}}).IsOk())
	require.True(t, m.SetLayer(Layer{Name: LayerSystem, Values: map[string]string{"log_level": "info"}}).IsOk())

	v, ok := m.Get("log_level")
	require.True(t, ok)
	assert.Equal(t, "debug", v)
}

func TestValidationFailurePreservesPriorConfig(t *testing.T) {
	m := New(nil)
	m.AddValidator("port", func(key, value string) error {
		if value == "bad" {
			return errors.New("not a number")
		}
		return nil
	})

	require.True(t, m.SetLayer(Layer{Name: LayerSystem, Values: map[string]string{"port": "8080"}}).IsOk())

	r := m.SetLayer(Layer{Name: LayerOverride, Values: map[string]string{"port": "bad"}})
	require.True(t, r.IsErr())
	assert.Equal(t, CodeValidationFailed, r.ErrorValue().Code)

	v, ok := m.Get("port")
	require.True(t, ok)
	assert.Equal(t, "8080", v)
}

func TestRollbackRestoresPriorLayerSet(t *testing.T) {
	m := New(nil)
	require.True(t, m.SetLayer(Layer{Name: LayerSystem, Values: map[string]string{"a": "1"}}).IsOk())
	require.True(t, m.SetLayer(Layer{Name: LayerSystem, Values: map[string]string{"a": "2"}}).IsOk())

	v, _ := m.Get("a")
	assert.Equal(t, "2", v)

	require.True(t, m.Rollback().IsOk())
	v, _ = m.Get("a")
	assert.Equal(t, "1", v)
}

func TestRollbackWithoutHistoryFails(t *testing.T) {
	m := New(nil)
	r := m.Rollback()
	require.True(t, r.IsErr())
	assert.Equal(t, CodeNoRollbackPoint, r.ErrorValue().Code)
}

type recordingConfigListener struct {
	changes []string
}

func (l *recordingConfigListener) OnConfigChanged(key, oldValue, newValue string) {
	l.changes = append(l.changes, key)
}

func TestListenerNotifiedOnlyForChangedKeys(t *testing.T) {
	m := New(nil)
	listener := &recordingConfigListener{}
	m.AddListener(listener)

	require.True(t, m.SetLayer(Layer{Name: LayerSystem, Values: map[string]string{"a": "1", "b": "1"}}).IsOk())
	assert.ElementsMatch(t, []string{"a", "b"}, listener.changes)

	listener.changes = nil
	require.True(t, m.SetLayer(Layer{Name: LayerSystem, Values: map[string]string{"a": "1", "b": "2"}}).IsOk())
	assert.Equal(t, []string{"b"}, listener.changes)
}

func TestEnvironmentLayerFiltersPrefixAndStripsIt(t *testing.T) {
	layer := LoadEnvironmentLayer([]string{
		"HAL_DEFAULT_LOG_LEVEL=debug",
		"PATH=/usr/bin",
		"HAL_CACHE_TTL=30s",
		"malformed",
	})

	assert.Equal(t, "debug", layer.Values["DEFAULT_LOG_LEVEL"])
	assert.Equal(t, "30s", layer.Values["CACHE_TTL"])
	_, ok := layer.Values["PATH"]
	assert.False(t, ok)
}

func TestParseLogLevelFallsBackToWarn(t *testing.T) {
	assert.Equal(t, "debug", ParseLogLevel("debug").String())
	assert.Equal(t, "warning", ParseLogLevel("not-a-level").String())
}
