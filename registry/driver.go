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

// Package registry implements the multi-driver-per-interface store: driver
// registration, capability-ranked resolution, fallback chains, and
// dependency-ordered initialize/shutdown.
package registry

import (
	"github.com/birbparty/flight-hal/capmodel"
	"github.com/birbparty/flight-hal/result"
)

// Version is a driver's (major, minor, patch) version tuple.
type Version struct {
	Major, Minor, Patch int
}

// Driver is the capability set every registered implementation must
// satisfy, matching §6's "Driver-facing contract" exactly.
type Driver interface {
	InterfaceName() string
	DriverName() string
	Version() Version
	Priority() int32
	Initialize() result.Result[result.Unit]
	Shutdown() result.Result[result.Unit]
	IsActive() bool
	IsAvailable() bool
	Supports(c capmodel.Capability) bool
	Mask() capmodel.Mask
	List() []capmodel.Capability
	Tier() capmodel.PerformanceTier
	Platform() capmodel.PlatformDescriptor
	HasFallback(c capmodel.Capability) bool
}

// Factory produces a fresh driver instance of a registered kind.
type Factory func() (Driver, error)

// DriverInfo is the registration-time metadata for a driver.
type DriverInfo struct {
	Name                 string
	VersionInfo           Version
	SupportedPlatforms   uint32 // platform bitmask this driver runs on
	CapabilityMask       capmodel.Mask
	Priority             int32
	Tier                 capmodel.PerformanceTier
	Factory              Factory
	Instance             Driver // already-constructed instance, optional
	Dependencies         []string
	FallbackDrivers      []string
	MemoryOverheadBytes  uint64
	SupportsHotSwap      bool
	Description          string
}

// CapabilityRequirements narrows candidate selection during resolve.
type CapabilityRequirements struct {
	RequiredMask      capmodel.Mask
	PreferredMask     capmodel.Mask
	MinTier           capmodel.PerformanceTier
	MaxMemoryOverhead uint64 // 0 means unbounded
	RequireHotSwap    bool
}

// satisfies reports whether entry meets the requirements, independent of
// platform and ranking — the filter step of §4.C's resolve algorithm.
func (req CapabilityRequirements) satisfies(info DriverInfo) bool {
	if !info.CapabilityMask.Contains(req.RequiredMask) {
		return false
	}
	if info.Tier < req.MinTier {
		return false
	}
	if req.MaxMemoryOverhead != 0 && info.MemoryOverheadBytes > req.MaxMemoryOverhead {
		return false
	}
	if req.RequireHotSwap && !info.SupportsHotSwap {
		return false
	}
	return true
}
