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

package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/birbparty/flight-hal/result"
)

var log = logrus.WithField("component", "registry")

// cacheKey identifies one resolved-driver cache slot: an interface plus the
// exact requirements that produced it. All fields are comparable, so this
// can be used directly as a Go map key (a simpler, allocation-free stand-in
// for a content hash, since the domain of requirements per interface is
// small).
type cacheKey struct {
	iface string
	req   CapabilityRequirements
}

// Registry owns every driver registration for every interface. It holds the
// single reader-writer lock guarding both the per-interface buckets and the
// resolution cache, matching §4.C's concurrency policy.
type Registry struct {
	mu      sync.RWMutex
	buckets map[string][]*entry
	cache   map[cacheKey]*entry
	nextSeq int
	platform uint32 // current platform bit, matched against SupportedPlatforms
}

// New constructs an empty Registry for the given current-platform bitmask.
func New(currentPlatform uint32) *Registry {
	return &Registry{
		buckets:  make(map[string][]*entry),
		cache:    make(map[cacheKey]*entry),
		platform: currentPlatform,
	}
}

// Register appends a factory-backed driver registration to iface's bucket,
// re-sorts it by priority, and invalidates the interface's cache.
func (r *Registry) Register(iface string, info DriverInfo) result.Result[result.Unit] {
	if info.Factory == nil && info.Instance == nil {
		return result.Err[result.Unit](result.New(result.Configuration, CodeInvalidParameter,
			"driver registration requires a factory or a constructed instance").
			WithContext(fmt.Sprintf("interface=%s driver=%s", iface, info.Name)))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	e := &entry{info: info, instance: info.Instance, seq: r.nextSeq}
	r.nextSeq++
	bucket := append(r.buckets[iface], e)
	sort.SliceStable(bucket, func(i, j int) bool {
		return bucket[i].info.Priority > bucket[j].info.Priority
	})
	r.buckets[iface] = bucket
	r.invalidateLocked(iface)

	log.WithFields(logrus.Fields{"interface": iface, "driver": info.Name, "priority": info.Priority}).
		Debug("driver registered")

	return result.Ok(result.Unit{})
}

// RegisterInstance registers an already-constructed driver instance. Its
// factory is synthesized as nil (no fresh-instance support) unless the
// caller's instance type is later re-registered via Register with an
// explicit Factory.
func (r *Registry) RegisterInstance(iface string, instance Driver, priority int32) result.Result[result.Unit] {
	info := DriverInfo{
		Name:           instance.DriverName(),
		VersionInfo:    instance.Version(),
		CapabilityMask: instance.Mask(),
		Priority:       priority,
		Tier:           instance.Tier(),
		Instance:       instance,
		SupportsHotSwap: false,
	}
	return r.Register(iface, info)
}

// Unregister shuts the instance down if active, then removes it from iface's
// bucket and invalidates the cache.
func (r *Registry) Unregister(iface string, name string) result.Result[result.Unit] {
	r.mu.Lock()
	defer r.mu.Unlock()

	bucket := r.buckets[iface]
	for i, e := range bucket {
		if e.info.Name != name {
			continue
		}
		if e.instance != nil && e.initialized {
			if res := e.instance.Shutdown(); res.IsErr() {
				log.WithError(res.ErrorValue()).Warn("driver shutdown failed during unregister")
			}
		}
		r.buckets[iface] = append(bucket[:i], bucket[i+1:]...)
		r.invalidateLocked(iface)
		return result.Ok(result.Unit{})
	}

	return result.Err[result.Unit](result.New(result.Driver, CodeUnknownDriver, "no such driver registered").
		WithContext(fmt.Sprintf("interface=%s driver=%s", iface, name)))
}

// invalidateLocked drops every cache entry for iface. Caller must hold mu.
func (r *Registry) invalidateLocked(iface string) {
	for k := range r.cache {
		if k.iface == iface {
			delete(r.cache, k)
		}
	}
}

// candidatesLocked filters iface's bucket down to entries that pass the
// platform + capability-requirement filter. Caller must hold at least a
// read lock.
func (r *Registry) candidatesLocked(iface string, req CapabilityRequirements) []*entry {
	bucket := r.buckets[iface]
	out := make([]*entry, 0, len(bucket))
	for _, e := range bucket {
		if e.info.SupportedPlatforms != 0 && e.info.SupportedPlatforms&r.platform == 0 {
			continue
		}
		if !req.satisfies(e.info) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Resolve returns the best driver for iface under req, per §4.C's five-step
// algorithm: cache fast-path, filter, rank, materialize-and-probe, fallback
// to FallbackDrivers (advisory, per §9) only once ranked candidates are
// exhausted.
func (r *Registry) Resolve(iface string, req CapabilityRequirements) result.Result[Driver] {
	key := cacheKey{iface: iface, req: req}

	r.mu.RLock()
	if cached, ok := r.cache[key]; ok && cached.instance != nil && cached.instance.IsAvailable() {
		d := cached.instance
		r.mu.RUnlock()
		return result.Ok[Driver](d)
	}
	candidates := r.candidatesLocked(iface, req)
	r.mu.RUnlock()

	if len(candidates) == 0 {
		return r.resolveFallback(iface, req, nil)
	}

	ranked := rankEntries(candidates, req)
	for _, e := range ranked {
		d, err := e.materialize()
		if err != nil {
			log.WithError(err).WithField("driver", e.info.Name).Warn("driver factory failed")
			continue
		}
		if d == nil || !d.IsAvailable() {
			continue
		}

		r.mu.Lock()
		r.cache[key] = e
		r.mu.Unlock()

		return result.Ok[Driver](d)
	}

	return r.resolveFallback(iface, req, ranked)
}

// resolveFallback consults the FallbackDrivers list of every entry already
// tried, in list order, per the spec's advisory-fallback Open Question
// resolution (§9).
func (r *Registry) resolveFallback(iface string, req CapabilityRequirements, tried []*entry) result.Result[Driver] {
	seen := make(map[string]bool, len(tried))
	for _, e := range tried {
		seen[e.info.Name] = true
	}

	for _, e := range tried {
		for _, fallbackName := range e.info.FallbackDrivers {
			if seen[fallbackName] {
				continue
			}
			seen[fallbackName] = true

			res := r.ResolveByName(iface, fallbackName)
			if res.IsOk() && res.Value().IsAvailable() {
				return res
			}
		}
	}

	return result.Err[Driver](result.New(result.Driver, CodeDriverNotLoaded,
		"no driver satisfies the given requirements").WithContext(iface))
}

// ResolveByName bypasses ranking and requirement filtering; it materializes
// and returns the named driver even if not currently available, so callers
// can inspect it.
func (r *Registry) ResolveByName(iface string, name string) result.Result[Driver] {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.buckets[iface] {
		if e.info.Name != name {
			continue
		}
		d, err := e.materialize()
		if err != nil {
			return result.Err[Driver](result.Wrap(result.Driver, CodeDriverNotLoaded,
				"driver factory failed", err))
		}
		if d == nil {
			return result.Err[Driver](result.New(result.Driver, CodeDriverNotLoaded,
				"driver has no instance and no factory").WithContext(name))
		}
		return result.Ok[Driver](d)
	}

	return result.Err[Driver](result.New(result.Driver, CodeUnknownDriver, "no such driver registered").
		WithContext(fmt.Sprintf("interface=%s driver=%s", iface, name)))
}

// GetAll materializes and returns every entry registered for iface, in
// priority order (ties in insertion order).
func (r *Registry) GetAll(iface string) result.Result[[]Driver] {
	r.mu.Lock()
	defer r.mu.Unlock()

	bucket := r.buckets[iface]
	ranked := rankEntries(bucket, CapabilityRequirements{})

	out := make([]Driver, 0, len(ranked))
	for _, e := range ranked {
		d, err := e.materialize()
		if err != nil {
			log.WithError(err).WithField("driver", e.info.Name).Warn("driver factory failed during GetAll")
			continue
		}
		if d != nil {
			out = append(out, d)
		}
	}
	return result.Ok(out)
}

// Initialize calls Initialize() on every inactive entry's instance for
// iface, accumulating failures into one Internal error.
func (r *Registry) Initialize(iface string) result.Result[result.Unit] {
	r.mu.Lock()
	defer r.mu.Unlock()

	bucket := r.buckets[iface]
	if len(bucket) == 0 {
		return result.Err[result.Unit](result.New(result.Configuration, CodeUnknownInterface,
			"no drivers registered for interface").WithContext(iface))
	}

	var failed []string
	for _, e := range bucket {
		d, err := e.materialize()
		if err != nil {
			failed = append(failed, fmt.Sprintf("%s (factory: %v)", e.info.Name, err))
			continue
		}
		if d == nil || e.initialized {
			continue
		}
		if res := d.Initialize(); res.IsErr() {
			failed = append(failed, fmt.Sprintf("%s (%v)", e.info.Name, res.ErrorValue()))
			continue
		}
		e.initialized = true
	}

	if len(failed) > 0 {
		return result.Err[result.Unit](result.New(result.Internal, CodeInitFailed,
			"one or more drivers failed to initialize").
			WithContext(fmt.Sprintf("interface=%s failed=%v", iface, failed)))
	}

	return result.Ok(result.Unit{})
}

// Shutdown calls Shutdown() on active instances in reverse priority order,
// best-effort: individual failures are logged but never abort the pass.
func (r *Registry) Shutdown(iface string) result.Result[result.Unit] {
	r.mu.Lock()
	defer r.mu.Unlock()

	ranked := rankEntries(r.buckets[iface], CapabilityRequirements{})
	for i := len(ranked) - 1; i >= 0; i-- {
		e := ranked[i]
		if e.instance == nil || !e.initialized {
			continue
		}
		if res := e.instance.Shutdown(); res.IsErr() {
			log.WithError(res.ErrorValue()).WithField("driver", e.info.Name).Warn("driver shutdown failed")
		}
		e.initialized = false
	}
	r.invalidateLocked(iface)

	return result.Ok(result.Unit{})
}
