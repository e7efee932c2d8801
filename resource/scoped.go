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
	"sync"
	"sync/atomic"
)

// Scoped is a move-only, RAII-style wrapper around a Handle: Release()
// (directly, or via Close()) on any exit path including error propagation
// releases the underlying handle exactly once. Taking the raw handle via
// Take() transfers ownership out and suppresses the automatic release.
//
// shares is an *int32 mutated only via sync/atomic: every Scoped sharing one
// handle holds its own mu guarding its own released flag, so the share
// count itself must not depend on any one copy's mutex.
type Scoped struct {
	mgr      *Manager
	mu       sync.Mutex
	handle   Handle
	released bool
	shares   *int32
}

// NewScoped wraps handle so it auto-releases via mgr when Close is called
// without Take having transferred ownership first.
func NewScoped(mgr *Manager, handle Handle) *Scoped {
	shares := int32(1)
	return &Scoped{mgr: mgr, handle: handle, shares: &shares}
}

// Take removes the raw Handle from the scope, suppressing the automatic
// release: the caller now owns the handle's lifetime.
func (s *Scoped) Take() Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.released = true
	return s.handle
}

// Share creates a second strong reference to the same handle, incrementing
// the share counter; the underlying resource is only released to the
// manager when every share has been closed.
func (s *Scoped) Share() *Scoped {
	atomic.AddInt32(s.shares, 1)
	return &Scoped{mgr: s.mgr, handle: s.handle, shares: s.shares}
}

// Close releases the handle back to the manager, unless Take already
// transferred ownership or this Scoped was already closed. Safe to call
// multiple times.
func (s *Scoped) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return
	}
	s.released = true

	if atomic.AddInt32(s.shares, -1) > 0 {
		return
	}
	if s.mgr != nil {
		s.mgr.Release(s.handle)
	}
}

// Handle returns the wrapped handle without transferring ownership.
func (s *Scoped) Handle() Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handle
}
