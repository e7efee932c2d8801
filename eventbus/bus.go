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

package eventbus

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("component", "eventbus")

// Cfg configures one Bus instance, following the teacher's Cfg +
// validateCfg + New(cfg) shape (pidmonitor.Cfg, fileMonitor.Cfg).
// BatchSize and BatchTimeout are defaulted by validateCfg but not read by
// the dispatcher: events are dispatched one at a time.
type Cfg struct {
	Capacity        int
	BatchSize       int
	BatchTimeout    time.Duration
	AsyncQueueDepth int
}

func validateCfg(cfg *Cfg) error {
	if cfg.Capacity <= 0 {
		cfg.Capacity = DefaultCapacity
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 1
	}
	if cfg.BatchTimeout <= 0 {
		cfg.BatchTimeout = 10 * time.Millisecond
	}
	if cfg.AsyncQueueDepth <= 0 {
		cfg.AsyncQueueDepth = 256
	}
	return nil
}

type cmd int

const (
	cmdShutdown cmd = iota
)

// Stats holds the bus's running counters.
type Stats struct {
	EventsDispatched    uint64
	EventsFiltered      uint64
	EventsDropped       uint64
	PeakDispatchTimeMs  int64
	AvgDispatchTimeMs   float64
}

// Bus is the single-process categorized event bus: bounded queue, filtered
// subscriptions, sync/async dispatch.
type Bus struct {
	cfg Cfg

	nextEventID uint64
	nextSubID   uint64

	queue  *ring
	signal chan struct{}
	cmdCh  chan cmd
	doneCh chan struct{}

	subMu sync.RWMutex
	subs  map[uint64]*Subscription

	statsMu sync.Mutex
	stats   Stats

	shutdownRequested int32
}

// New constructs a Bus and starts its single dispatch goroutine, the same
// way pidmonitor.New spawns pidMonitor(pm).
func New(cfg Cfg) (*Bus, error) {
	if err := validateCfg(&cfg); err != nil {
		return nil, err
	}

	b := &Bus{
		cfg:    cfg,
		queue:  newRing(cfg.Capacity),
		signal: make(chan struct{}, 1),
		cmdCh:  make(chan cmd, 1),
		doneCh: make(chan struct{}),
		subs:   make(map[uint64]*Subscription),
	}

	go b.dispatchLoop()

	return b, nil
}

// Publish enqueues e for dispatch, assigning it the next monotonic event id
// and the current timestamp. No-op (but logged) after Shutdown.
func (b *Bus) Publish(e Event) uint64 {
	if atomic.LoadInt32(&b.shutdownRequested) != 0 {
		log.Warn("publish after shutdown ignored")
		return 0
	}

	e.ID = atomic.AddUint64(&b.nextEventID, 1)
	e.Timestamp = time.Now()

	b.queue.push(e)

	select {
	case b.signal <- struct{}{}:
	default:
	}

	return e.ID
}

// Subscribe registers a new subscription and returns its id.
func (b *Bus) Subscribe(filter Filter, subscriber Subscriber, wantsAsync bool) uint64 {
	id := atomic.AddUint64(&b.nextSubID, 1)

	sub := &Subscription{
		ID:         id,
		Filter:     filter,
		Subscriber: subscriber,
		WantsAsync: wantsAsync,
		CreatedAt:  time.Now(),
	}

	b.subMu.Lock()
	b.subs[id] = sub
	b.subMu.Unlock()

	return id
}

// Unsubscribe removes a subscription by id.
func (b *Bus) Unsubscribe(id uint64) {
	b.subMu.Lock()
	delete(b.subs, id)
	b.subMu.Unlock()
}

// Stats returns a snapshot of the bus's counters.
func (b *Bus) Stats() Stats {
	b.statsMu.Lock()
	defer b.statsMu.Unlock()
	s := b.stats
	s.EventsDropped = b.queue.droppedCount()
	return s
}

// Shutdown stops accepting new events, drains the queue with one final
// dispatch pass, and joins the dispatch goroutine.
func (b *Bus) Shutdown() {
	atomic.StoreInt32(&b.shutdownRequested, 1)
	b.cmdCh <- cmdShutdown
	<-b.doneCh
}

// dispatchLoop is the bus's single worker, mirroring pidmonitor's
// pidMonitor(pm): drain pending commands first, then drain pending work,
// block for more of either.
func (b *Bus) dispatchLoop() {
	defer close(b.doneCh)

	for {
		select {
		case c := <-b.cmdCh:
			switch c {
			case cmdShutdown:
				b.dispatchPending()
				b.closeAsyncQueues()
				return
			}
		case <-b.signal:
			b.dispatchPending()
		}
	}
}

// dispatchPending drains every queued event and fans each out to matching,
// live subscriptions.
func (b *Bus) dispatchPending() {
	events := b.queue.drainAll()
	if len(events) == 0 {
		return
	}

	for _, e := range events {
		start := time.Now()
		delivered := b.dispatchOne(e)
		elapsed := time.Since(start).Milliseconds()

		if !delivered {
			continue
		}

		b.statsMu.Lock()
		b.stats.EventsDispatched++
		if elapsed > b.stats.PeakDispatchTimeMs {
			b.stats.PeakDispatchTimeMs = elapsed
		}
		n := float64(b.stats.EventsDispatched)
		b.stats.AvgDispatchTimeMs += (float64(elapsed) - b.stats.AvgDispatchTimeMs) / n
		b.statsMu.Unlock()
	}
}

// dispatchOne delivers e to every live, matching subscription and prunes
// subscriptions whose Subscriber has gone stale (IsAlive() == false),
// simulating weak-reference cleanup. It reports whether e was delivered to
// at least one subscription, the condition under which it counts as
// dispatched rather than filtered.
func (b *Bus) dispatchOne(e Event) bool {
	b.subMu.RLock()
	targets := make([]*Subscription, 0, len(b.subs))
	var stale []uint64
	for id, sub := range b.subs {
		if !sub.Subscriber.IsAlive() {
			stale = append(stale, id)
			continue
		}
		if sub.Filter.Matches(e) {
			targets = append(targets, sub)
		} else {
			b.statsMu.Lock()
			b.stats.EventsFiltered++
			b.statsMu.Unlock()
		}
	}
	b.subMu.RUnlock()

	if len(stale) > 0 {
		b.subMu.Lock()
		for _, id := range stale {
			delete(b.subs, id)
		}
		b.subMu.Unlock()
	}

	for _, sub := range targets {
		sub.deliver(e, b.cfg.AsyncQueueDepth)
	}

	return len(targets) > 0
}

// closeAsyncQueues stops every subscription's async worker goroutine.
func (b *Bus) closeAsyncQueues() {
	b.subMu.RLock()
	defer b.subMu.RUnlock()
	for _, sub := range b.subs {
		if sub.asyncCh != nil {
			close(sub.asyncCh)
		}
	}
}
