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
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTOMLLoaderLoadParsesFlatTable(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/etc/hal/platform.toml", []byte(`
cache_ttl = "30s"
max_entries = 1024
`), 0644))

	loader := NewTOMLLoader(fs)
	layer, err := loader.Load("/etc/hal/platform.toml", LayerPlatform)
	require.NoError(t, err)

	assert.Equal(t, "30s", layer.Values["cache_ttl"])
	assert.Equal(t, "1024", layer.Values["max_entries"])
	assert.Equal(t, LayerPlatform, layer.Name)
}

func TestTOMLLoaderMissingFileYieldsEmptyLayer(t *testing.T) {
	fs := afero.NewMemMapFs()
	loader := NewTOMLLoader(fs)

	layer, err := loader.Load("/does/not/exist.toml", LayerSystem)
	require.NoError(t, err)
	assert.Empty(t, layer.Values)
}

func TestTOMLLoaderLoadFirstFallsThroughToExistingCandidate(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/b/config.toml", []byte(`root = "/var/lib/hal"`), 0644))

	loader := NewTOMLLoader(fs)
	layer, err := loader.LoadFirst([]string{"/a/config.toml", "/b/config.toml", "/c/config.toml"}, LayerSystem)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/hal", layer.Values["root"])
}

type fakeWatcher struct {
	path     string
	onChange func()
}

func (f *fakeWatcher) Watch(path string, onChange func()) error {
	f.path = path
	f.onChange = onChange
	return nil
}

func (f *fakeWatcher) Close() error { return nil }

func TestHotReloaderAppliesNewLayerOnChange(t *testing.T) {
	fs := afero.NewMemMapFs()
	path := "/etc/hal/app.toml"
	require.NoError(t, afero.WriteFile(fs, path, []byte(`log_level = "info"`), 0644))

	loader := NewTOMLLoader(fs)
	mgr := New(nil)
	watcher := &fakeWatcher{}

	_, err := Watch(mgr, loader, watcher, path, LayerApplication, Cfg{})
	require.NoError(t, err)

	require.NoError(t, afero.WriteFile(fs, path, []byte(`log_level = "debug"`), 0644))
	watcher.onChange()

	v, ok := mgr.Get("log_level")
	require.True(t, ok)
	assert.Equal(t, "debug", v)
}

func TestHotReloaderRejectsInvalidLayerKeepingPriorActive(t *testing.T) {
	fs := afero.NewMemMapFs()
	path := "/etc/hal/app.toml"
	require.NoError(t, afero.WriteFile(fs, path, []byte(`port = "8080"`), 0644))

	loader := NewTOMLLoader(fs)
	mgr := New(nil)
	mgr.AddValidator("port", func(key, value string) error {
		if value == "not-a-port" {
			return assert.AnError
		}
		return nil
	})
	watcher := &fakeWatcher{}

	_, err := Watch(mgr, loader, watcher, path, LayerApplication, Cfg{})
	require.NoError(t, err)

	v, _ := mgr.Get("port")
	require.Equal(t, "8080", v)

	require.NoError(t, afero.WriteFile(fs, path, []byte(`port = "not-a-port"`), 0644))
	watcher.onChange()

	v, _ = mgr.Get("port")
	assert.Equal(t, "8080", v)
}
