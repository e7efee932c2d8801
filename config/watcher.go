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

import "fmt"

// HotReloader wires a FileWatcher collaborator to one Manager layer: on
// every change notification it reloads path through loader and
// re-applies it via SetLayer, so a failing reload never displaces the
// currently active configuration (§4.K).
type HotReloader struct {
	mgr    *Manager
	loader *TOMLLoader
	path   string
	name   LayerName
}

// Watch validates cfg, starts watcher on path, loads and applies that
// path's layer once, and returns a HotReloader wired to reload+apply it on
// every change notification. cfg.CheckInterval is validated but not passed
// to watcher; any debouncing is up to the FileWatcher implementation.
func Watch(mgr *Manager, loader *TOMLLoader, watcher FileWatcher, path string, name LayerName, cfg Cfg) (*HotReloader, error) {
	if err := validateCfg(&cfg); err != nil {
		return nil, err
	}

	hr := &HotReloader{mgr: mgr, loader: loader, path: path, name: name}

	if err := watcher.Watch(path, hr.reload); err != nil {
		return nil, fmt.Errorf("failed to watch %s: %w", path, err)
	}

	hr.reload()

	return hr, nil
}

func (hr *HotReloader) reload() {
	layer, err := hr.loader.Load(hr.path, hr.name)
	if err != nil {
		log.WithField("path", hr.path).WithError(err).Warn("hot-reload: failed to read layer")
		return
	}

	if res := hr.mgr.SetLayer(layer); res.IsErr() {
		log.WithField("path", hr.path).WithField("error", res.ErrorValue().Error()).
			Warn("hot-reload: new layer rejected, prior configuration remains active")
	}
}
