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

package cache

import (
	"fmt"
	"time"
)

// refresh polling bounds, the same PollMin/PollMax shape fileMonitor uses
// to validate its own Cfg.PollInterval.
const (
	RefreshIntervalMin = 10 * time.Millisecond
	RefreshIntervalMax = 24 * time.Hour
)

type refreshCmd int

const refreshStop refreshCmd = 0

// Refresher runs the store's background-refresh goroutine: each tick it
// iterates entries that are dirty or within BackgroundInterval of expiry
// and recomputes them through updater, per §4.H.
type Refresher struct {
	store   *Store
	updater Updater
	cmdCh   chan refreshCmd
	done    chan struct{}
}

// StartRefresher spawns the background goroutine and returns a handle to
// stop it, mirroring fileMonitor.New's validate-then-spawn shape.
func StartRefresher(store *Store, updater Updater) (*Refresher, error) {
	if store.cfg.BackgroundInterval < RefreshIntervalMin || store.cfg.BackgroundInterval > RefreshIntervalMax {
		return nil, fmt.Errorf("invalid config: background interval must be in range [%s, %s]; found %s",
			RefreshIntervalMin, RefreshIntervalMax, store.cfg.BackgroundInterval)
	}

	r := &Refresher{
		store:   store,
		updater: updater,
		cmdCh:   make(chan refreshCmd),
		done:    make(chan struct{}),
	}

	go r.run()

	return r, nil
}

func (r *Refresher) run() {
	defer close(r.done)

	ticker := time.NewTicker(r.store.cfg.BackgroundInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.cmdCh:
			return
		case <-ticker.C:
			r.refreshDueEntries()
		}
	}
}

func (r *Refresher) refreshDueEntries() {
	r.store.mu.Lock()
	due := make([]string, 0)
	now := time.Now()
	for key, e := range r.store.entries {
		if e.dirty || e.expiresAt.Sub(now) <= r.store.cfg.BackgroundInterval {
			due = append(due, key)
		}
	}
	r.store.mu.Unlock()

	for _, key := range due {
		newVal, err := r.updater(key)
		if err != nil {
			log.WithField("key", key).WithError(err).Warn("background refresh failed")
			continue
		}

		r.store.mu.Lock()
		if e, ok := r.store.entries[key]; ok {
			e.value = newVal
			e.dirty = false
			e.expiresAt = time.Now().Add(r.store.cfg.MaxTTL)
		}
		r.store.notifyLocked(key, ReasonBackgroundRefresh)
		r.store.mu.Unlock()
	}
}

// Close stops the background goroutine and waits for it to exit.
func (r *Refresher) Close() {
	r.cmdCh <- refreshStop
	<-r.done
}
