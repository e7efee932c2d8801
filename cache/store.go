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
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("component", "cache")

// Stats is a read-only snapshot of the store's counters. HitRatio has no
// prescribed corrective action in the source spec (§9 open question); it
// is exposed purely as a metric.
type Stats struct {
	Entries    int
	TotalBytes uint64
	Hits       uint64
	Misses     uint64
}

func (s Stats) HitRatio() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Store is the capability cache: single mutex, writes dominate (§5).
type Store struct {
	mu        sync.Mutex
	cfg       Config
	entries   map[string]*entry
	listeners []Listener
	hits      uint64
	misses    uint64
}

// New constructs a Store with the given bounds.
func New(cfg Config) *Store {
	cfg.applyDefaults()
	return &Store{cfg: cfg, entries: make(map[string]*entry)}
}

// AddListener registers l to be notified of every invalidation.
func (s *Store) AddListener(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

// Get refreshes last_accessed/access_count on hit; a miss is either a
// missing key or one whose expires_at has passed.
func (s *Store) Get(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		s.misses++
		return nil, false
	}

	now := time.Now()
	if e.expired(now) {
		delete(s.entries, key)
		s.misses++
		s.notifyLocked(key, ReasonExpired)
		return nil, false
	}

	e.lastAccessed = now
	e.accessCount++
	s.hits++

	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, true
}

// Put inserts or replaces key. ttl is clamped to [MinTTL, MaxTTL]; metadata
// is opaque caller data stored alongside value (used by persistence).
func (s *Store) Put(key string, value, metadata []byte, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ttl < s.cfg.MinTTL {
		ttl = s.cfg.MinTTL
	}
	if ttl > s.cfg.MaxTTL {
		ttl = s.cfg.MaxTTL
	}

	now := time.Now()
	s.entries[key] = &entry{
		key:          key,
		value:        append([]byte(nil), value...),
		metadata:     append([]byte(nil), metadata...),
		createdAt:    now,
		expiresAt:    now.Add(ttl),
		lastAccessed: now,
		accessCount:  0,
	}

	s.evictIfOverCapacityLocked()
}

// Invalidate removes key for the given reason and notifies listeners.
func (s *Store) Invalidate(key string, reason InvalidationReason) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[key]; !ok {
		return
	}
	delete(s.entries, key)
	s.notifyLocked(key, reason)
}

// MarkDirty flags key for consideration on the next background refresh
// pass regardless of its expiry.
func (s *Store) MarkDirty(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[key]; ok {
		e.dirty = true
	}
}

func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total uint64
	for _, e := range s.entries {
		total += uint64(len(e.value) + len(e.metadata))
	}

	return Stats{
		Entries:    len(s.entries),
		TotalBytes: total,
		Hits:       s.hits,
		Misses:     s.misses,
	}
}

func (s *Store) notifyLocked(key string, reason InvalidationReason) {
	for _, l := range s.listeners {
		l.OnInvalidate(key, reason)
	}
}

// evictIfOverCapacityLocked first sweeps out any already-expired entries
// (notified as Expired), then evicts further entries (LRU, access-count
// tiebreak, then oldest created_at) until both the entry-count and memory
// bounds are satisfied. Caller must hold s.mu.
func (s *Store) evictIfOverCapacityLocked() {
	s.sweepExpiredLocked()

	for s.overCapacityLocked() {
		victim := s.findVictimLocked()
		if victim == "" {
			return
		}
		delete(s.entries, victim)
		s.notifyLocked(victim, ReasonMemoryPressure)
		log.WithField("key", victim).Debug("evicted cache entry")
	}
}

// sweepExpiredLocked removes every entry whose expires_at has already
// passed, notifying Expired for each. Run ahead of LRU eviction so an
// expired entry is never mistaken for a memory-pressure victim. Caller must
// hold s.mu.
func (s *Store) sweepExpiredLocked() {
	now := time.Now()
	for key, e := range s.entries {
		if e.expired(now) {
			delete(s.entries, key)
			s.notifyLocked(key, ReasonExpired)
			log.WithField("key", key).Debug("evicted expired cache entry")
		}
	}
}

func (s *Store) overCapacityLocked() bool {
	if len(s.entries) > s.cfg.MaxEntries {
		return true
	}
	if s.cfg.MaxMemoryBytes == 0 {
		return false
	}
	var total uint64
	for _, e := range s.entries {
		total += uint64(len(e.value) + len(e.metadata))
	}
	return total > s.cfg.MaxMemoryBytes
}

func (s *Store) findVictimLocked() string {
	var victim *entry
	for _, e := range s.entries {
		if victim == nil || isEvictionWinner(e, victim) {
			victim = e
		}
	}
	if victim == nil {
		return ""
	}
	return victim.key
}

// isEvictionWinner reports whether candidate should be evicted ahead of
// current: smallest last_accessed first, then smallest access_count, then
// oldest created_at (§8 "Cache LRU" property).
func isEvictionWinner(candidate, current *entry) bool {
	if !candidate.lastAccessed.Equal(current.lastAccessed) {
		return candidate.lastAccessed.Before(current.lastAccessed)
	}
	if candidate.accessCount != current.accessCount {
		return candidate.accessCount < current.accessCount
	}
	return candidate.createdAt.Before(current.createdAt)
}
