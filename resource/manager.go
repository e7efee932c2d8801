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

package resource

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/birbparty/flight-hal/result"
)

var log = logrus.WithField("component", "resource")

// PressureEvent is emitted whenever a resource type's pressure level changes.
// It is a plain struct (not an eventbus.Event) so this package never imports
// eventbus directly; forwarding these into the bus is left to whatever
// Notifier the caller passes to New, keeping the two components only weakly
// coupled per §9.
type PressureEvent struct {
	Type     Type
	Level    Pressure
	Previous Pressure
}

// Notifier receives pressure-change notifications. This repository ships no
// eventbus-backed implementation.
type Notifier interface {
	NotifyPressure(evt PressureEvent)
}

// ReclaimFunc is a driver-provided callback invoked under Emergency
// acquisition to free bytes; it returns the number of bytes actually freed.
type ReclaimFunc func(deficit uint64) uint64

type reclaimEntry struct {
	id    uint64
	owner string
	fn    ReclaimFunc
}

type typeState struct {
	mu             sync.Mutex
	cond           *sync.Cond
	budget         Budget
	stats          Stats
	reclaim        []reclaimEntry
	ownerAllocated map[string]uint64
}

// Manager enforces per-resource-type budgets: acquisition, release, pressure
// tracking, and emergency reclamation.
type Manager struct {
	notifier Notifier
	nextID   uint64

	mu     sync.RWMutex
	states map[Type]*typeState
}

// New constructs an empty Manager. notifier may be nil.
func New(notifier Notifier) *Manager {
	return &Manager{
		notifier: notifier,
		states:   make(map[Type]*typeState),
	}
}

// Configure installs or replaces the budget for a resource type.
func (m *Manager) Configure(t Type, budget Budget) result.Result[result.Unit] {
	if err := budget.validate(); err != nil {
		return result.Err[result.Unit](result.New(result.Configuration, CodeInvalidParameter, err.Error()).
			WithContext(t.String()))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.states[t]
	if !ok {
		st = &typeState{budget: budget, ownerAllocated: make(map[string]uint64)}
		st.cond = sync.NewCond(&st.mu)
		m.states[t] = st
		return result.Ok(result.Unit{})
	}

	st.mu.Lock()
	st.budget = budget
	st.mu.Unlock()
	return result.Ok(result.Unit{})
}

func (m *Manager) stateFor(t Type) (*typeState, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st, ok := m.states[t]
	return st, ok
}

// RegisterReclaim adds a reclamation callback for t, scoped to owner (the
// driver name whose most recent allocation decides its place in the
// largest-first reclaim order), returning an id usable with
// UnregisterReclaim.
func (m *Manager) RegisterReclaim(t Type, owner string, fn ReclaimFunc) (uint64, result.Result[result.Unit]) {
	st, ok := m.stateFor(t)
	if !ok {
		return 0, result.Err[result.Unit](result.New(result.Configuration, CodeInvalidParameter,
			"resource type not configured").WithContext(t.String()))
	}
	id := atomic.AddUint64(&m.nextID, 1)

	st.mu.Lock()
	st.reclaim = append(st.reclaim, reclaimEntry{id: id, owner: owner, fn: fn})
	st.mu.Unlock()

	return id, result.Ok(result.Unit{})
}

// Acquire reserves size bytes of t for ownerDriver under the given mode,
// implementing §4.D's four-branch algorithm.
func (m *Manager) Acquire(req AcquireRequest) result.Result[Handle] {
	st, ok := m.stateFor(req.Type)
	if !ok {
		return result.Err[Handle](result.New(result.Configuration, CodeInvalidParameter,
			"resource type not configured").WithContext(req.Type.String()))
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	if !m.tryReserveLocked(st, req.Size) {
		switch req.Mode {
		case NonBlocking:
			st.stats.DeniedCount++
			return result.Err[Handle](result.New(result.Resource, CodeResourceExhausted,
				"insufficient budget for non-blocking acquire").WithContext(req.Type.String()))

		case Blocking, Timeout:
			deadline := st.budget.Timeout
			if req.Mode == Timeout {
				deadline = req.Timeout
			}
			if !m.waitForSpaceLocked(st, req.Size, deadline) {
				st.stats.DeniedCount++
				return result.Err[Handle](result.New(result.Resource, CodeResourceLocked,
					"timed out waiting for available budget").WithContext(req.Type.String()))
			}

		case Emergency:
			deficit := (st.stats.CurrentBytes + req.Size) - st.budget.MaxBytes
			freed := m.reclaimLocked(st, deficit)
			// Credit the bytes the callbacks report as freed back to the
			// budget before retrying the reservation.
			credited := freed
			if credited > st.stats.CurrentBytes {
				credited = st.stats.CurrentBytes
			}
			st.stats.CurrentBytes -= credited
			st.stats.TotalReleased += credited
			if freed < deficit || !m.tryReserveLocked(st, req.Size) {
				st.stats.DeniedCount++
				return result.Err[Handle](result.New(result.Resource, CodeOutOfMemory,
					"emergency reclamation could not free enough budget").WithContext(req.Type.String()))
			}

		default:
			return result.Err[Handle](result.New(result.Validation, CodeInvalidParameter,
				"unknown acquisition mode"))
		}
	}

	id := atomic.AddUint64(&m.nextID, 1)
	handle := Handle{rtype: req.Type, id: id, ownerDriver: req.OwnerDriver, size: req.Size}

	st.stats.AcquireCount++
	st.stats.TotalAcquired += req.Size
	if req.OwnerDriver != "" {
		st.ownerAllocated[req.OwnerDriver] = req.Size
	}
	m.updatePressureLocked(st, req.Type)

	return result.Ok(handle)
}

// tryReserveLocked reserves size bytes if the budget allows it; caller holds
// st.mu.
func (m *Manager) tryReserveLocked(st *typeState, size uint64) bool {
	if st.stats.CurrentBytes+size > st.budget.MaxBytes {
		return false
	}
	st.stats.CurrentBytes += size
	if st.stats.CurrentBytes > st.stats.PeakBytes {
		st.stats.PeakBytes = st.stats.CurrentBytes
	}
	return true
}

// waitForSpaceLocked blocks on st.cond until a release frees enough space or
// the deadline elapses. Returns false on timeout.
func (m *Manager) waitForSpaceLocked(st *typeState, size uint64, deadline time.Duration) bool {
	timedOut := false

	timer := time.AfterFunc(deadline, func() {
		st.mu.Lock()
		timedOut = true
		st.mu.Unlock()
		st.cond.Broadcast()
	})
	defer timer.Stop()

	for st.stats.CurrentBytes+size > st.budget.MaxBytes && !timedOut {
		st.cond.Wait()
	}

	if timedOut {
		return false
	}
	return m.tryReserveLocked(st, size)
}

// reclaimLocked invokes reclamation callbacks largest-recent-allocation
// first until freed >= deficit or callbacks are exhausted. "Recent
// allocation" is each callback owner's most recent Acquire size for this
// resource type; owners with no recorded allocation sort last.
func (m *Manager) reclaimLocked(st *typeState, deficit uint64) uint64 {
	ordered := make([]reclaimEntry, len(st.reclaim))
	copy(ordered, st.reclaim)
	sort.SliceStable(ordered, func(i, j int) bool {
		return st.ownerAllocated[ordered[i].owner] > st.ownerAllocated[ordered[j].owner]
	})

	var freed uint64
	for _, e := range ordered {
		if freed >= deficit {
			break
		}
		freed += e.fn(deficit - freed)
	}
	return freed
}

// Release returns the handle's size bytes of its type to the budget. The
// only check is that the size does not exceed the type's current usage; the
// handle's owner and liveness are not validated, so a handle the Manager
// never issued, or one already released, is accepted when that check holds.
func (m *Manager) Release(h Handle) result.Result[result.Unit] {
	st, ok := m.stateFor(h.rtype)
	if !ok {
		return result.Err[result.Unit](result.New(result.Validation, CodeInvalidState,
			"resource type not configured").WithContext(h.rtype.String()))
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	if h.size > st.stats.CurrentBytes {
		return result.Err[result.Unit](result.New(result.Validation, CodeInvalidState,
			"handle release exceeds tracked usage").
			WithContext(fmt.Sprintf("type=%s handle=%d", h.rtype, h.id)))
	}

	st.stats.CurrentBytes -= h.size
	st.stats.ReleaseCount++
	st.stats.TotalReleased += h.size

	m.updatePressureLocked(st, h.rtype)
	st.cond.Broadcast()

	return result.Ok(result.Unit{})
}

// updatePressureLocked recomputes pressure and notifies on change. Caller
// holds st.mu.
func (m *Manager) updatePressureLocked(st *typeState, t Type) {
	usagePct := float64(st.stats.CurrentBytes) / float64(st.budget.MaxBytes) * 100
	next := computePressure(usagePct, st.budget, st.stats.LastPressure)
	if next == st.stats.LastPressure {
		return
	}
	prev := st.stats.LastPressure
	st.stats.LastPressure = next

	if m.notifier != nil {
		m.notifier.NotifyPressure(PressureEvent{Type: t, Level: next, Previous: prev})
	}
	log.WithFields(logrus.Fields{"type": t, "pressure": next, "previous": prev}).
		Debug("resource pressure changed")
}

// Stats returns a snapshot of counters for t.
func (m *Manager) Stats(t Type) (Stats, bool) {
	st, ok := m.stateFor(t)
	if !ok {
		return Stats{}, false
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.stats, true
}
