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
	"sync"

	"github.com/birbparty/flight-hal/result"
	mapset "github.com/deckarep/golang-set"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("component", "config")

// Manager resolves the layered configuration described in §4.K: each call
// to SetLayer validates the candidate merge before committing it, keeping
// a rollback point of the prior layer set on success.
type Manager struct {
	mu         sync.RWMutex
	order      []LayerName
	layers     map[LayerName]Layer
	effective  map[string]string
	history    []map[LayerName]Layer
	listeners  []Listener
	validators map[string]Validator
}

// New builds a Manager over the given precedence order (lowest first).
// A nil/empty order defaults to DefaultOrder.
func New(order []LayerName) *Manager {
	if len(order) == 0 {
		order = DefaultOrder
	}
	return &Manager{
		order:      append([]LayerName(nil), order...),
		layers:     make(map[LayerName]Layer),
		effective:  make(map[string]string),
		validators: make(map[string]Validator),
	}
}

// AddValidator registers a per-key validator consulted before any merge
// that touches key is allowed to take effect.
func (m *Manager) AddValidator(key string, v Validator) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.validators[key] = v
}

// AddListener registers l for future post-merge change notifications.
func (m *Manager) AddListener(l Listener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, l)
}

// Get returns the effective value for key under current precedence.
func (m *Manager) Get(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.effective[key]
	return v, ok
}

// Snapshot returns a copy of the current effective configuration.
func (m *Manager) Snapshot() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]string, len(m.effective))
	for k, v := range m.effective {
		out[k] = v
	}
	return out
}

// SetLayer replaces layer's contents, validates the resulting merge, and
// either commits it (recording a rollback point and notifying listeners of
// every changed key) or leaves the prior configuration untouched and
// returns Err(Configuration/validation_failed) per §4.K.
func (m *Manager) SetLayer(layer Layer) result.Result[result.Unit] {
	m.mu.Lock()
	defer m.mu.Unlock()

	candidateLayers := make(map[LayerName]Layer, len(m.layers)+1)
	for k, v := range m.layers {
		candidateLayers[k] = v
	}
	candidateLayers[layer.Name] = layer

	candidate := mergeLayers(m.order, candidateLayers)

	for key, value := range candidate {
		if v, ok := m.validators[key]; ok {
			if err := v(key, value); err != nil {
				return result.Err[result.Unit](result.New(result.Configuration, CodeValidationFailed,
					"layer validation failed").WithContext(key + ": " + err.Error()))
			}
		}
	}

	prevLayers := make(map[LayerName]Layer, len(m.layers))
	for k, v := range m.layers {
		prevLayers[k] = v
	}
	m.history = append(m.history, prevLayers)

	old := m.effective
	m.layers[layer.Name] = layer
	m.effective = candidate

	m.notifyChangesLocked(old, candidate)

	return result.Ok(result.Unit{})
}

// Rollback restores the layer set from the most recent rollback point. It
// fails with Err(Configuration/no_rollback_point) if none exists.
func (m *Manager) Rollback() result.Result[result.Unit] {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.history) == 0 {
		return result.Err[result.Unit](result.New(result.Configuration, CodeNoRollbackPoint,
			"no rollback point recorded"))
	}

	prev := m.history[len(m.history)-1]
	m.history = m.history[:len(m.history)-1]

	old := m.effective
	m.layers = prev
	m.effective = mergeLayers(m.order, prev)

	m.notifyChangesLocked(old, m.effective)

	return result.Ok(result.Unit{})
}

func (m *Manager) notifyChangesLocked(old, next map[string]string) {
	if len(m.listeners) == 0 {
		return
	}

	oldKeys := mapset.NewSet()
	for k := range old {
		oldKeys.Add(k)
	}
	newKeys := mapset.NewSet()
	for k := range next {
		newKeys.Add(k)
	}

	changed := mapset.NewSet()
	for k, v := range next {
		if old[k] != v {
			changed.Add(k)
		}
	}
	for k := range oldKeys.Difference(newKeys).Iter() {
		changed.Add(k)
	}

	for k := range changed.Iter() {
		key := k.(string)
		for _, l := range m.listeners {
			l.OnConfigChanged(key, old[key], next[key])
		}
	}
}

// mergeLayers folds layers in precedence order (lowest first) into one
// key/value map, the same role overlayUtils.GetMountOpt's currVfsOpts /
// properMntOpts intersect-then-difference split plays for separating
// per-superblock options from overlay-specific data, generalized here to
// "higher-precedence layer wins per key" instead of "set membership wins".
func mergeLayers(order []LayerName, layers map[LayerName]Layer) map[string]string {
	merged := make(map[string]string)
	definedSoFar := mapset.NewSet()

	for _, name := range order {
		layer, ok := layers[name]
		if !ok {
			continue
		}

		layerKeys := mapset.NewSet()
		for k := range layer.Values {
			layerKeys.Add(k)
		}

		overridden := layerKeys.Intersect(definedSoFar)
		if overridden.Cardinality() > 0 {
			log.WithField("layer", name.String()).WithField("keys", overridden.ToSlice()).
				Debug("layer overrides lower-precedence keys")
		}

		for k, v := range layer.Values {
			merged[k] = v
		}
		definedSoFar = definedSoFar.Union(layerKeys)
	}

	return merged
}
