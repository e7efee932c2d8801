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
	"time"
)

// Budget configures one resource type's ceiling and pressure thresholds.
// Invariant: Reserved <= Max, WarningPct <= CriticalPct <= 100.
type Budget struct {
	MaxBytes          uint64
	ReservedBytes      uint64
	WarningPct        float64
	CriticalPct       float64
	AllowReclamation  bool
	Timeout           time.Duration
}

func (b Budget) validate() error {
	if b.ReservedBytes > b.MaxBytes {
		return fmt.Errorf("reserved bytes %d exceeds max %d", b.ReservedBytes, b.MaxBytes)
	}
	if b.WarningPct > b.CriticalPct || b.CriticalPct > 100 {
		return fmt.Errorf("invalid thresholds: warning=%.1f critical=%.1f", b.WarningPct, b.CriticalPct)
	}
	return nil
}

// Stats holds the monotonic counters and live usage for one resource type.
type Stats struct {
	CurrentBytes    uint64
	PeakBytes       uint64
	TotalAcquired   uint64
	TotalReleased   uint64
	AcquireCount    uint64
	ReleaseCount    uint64
	DeniedCount     uint64
	LastPressure    Pressure
}

// Pressure is a qualitative measure of how close a resource type is to its
// budget ceiling.
type Pressure int

const (
	PressureNone Pressure = iota
	PressureLow
	PressureMedium
	PressureHigh
	PressureCritical
)

func (p Pressure) String() string {
	switch p {
	case PressureNone:
		return "none"
	case PressureLow:
		return "low"
	case PressureMedium:
		return "medium"
	case PressureHigh:
		return "high"
	case PressureCritical:
		return "critical"
	}
	return "unknown"
}

// hysteresisPct is the symmetric downgrade guard band from §4.D: pressure
// never downgrades unless usage has dropped at least this many percentage
// points below the threshold that raised it.
const hysteresisPct = 3.0

// computePressure implements §4.D's pressure table with hysteresis. prev is
// the previously reported pressure; usagePct is current/max * 100.
func computePressure(usagePct float64, budget Budget, prev Pressure) Pressure {
	mid := (budget.WarningPct + budget.CriticalPct) / 2

	var raw Pressure
	switch {
	case usagePct >= 100:
		raw = PressureCritical
	case usagePct >= budget.CriticalPct:
		raw = PressureHigh
	case usagePct >= mid:
		raw = PressureMedium
	case usagePct >= budget.WarningPct:
		raw = PressureLow
	default:
		raw = PressureNone
	}

	// Upgrades (pressure increasing) apply immediately, matching the
	// "reaches Critical in one step" testable property.
	if raw >= prev {
		return raw
	}

	// Downgrades require the usage to have fallen at least hysteresisPct
	// below the threshold that produced prev, otherwise prev is held.
	threshold := thresholdFor(prev, budget, mid)
	if threshold-usagePct < hysteresisPct {
		return prev
	}
	return raw
}

// thresholdFor returns the usage percentage boundary that produced level.
func thresholdFor(level Pressure, budget Budget, mid float64) float64 {
	switch level {
	case PressureCritical:
		return 100
	case PressureHigh:
		return budget.CriticalPct
	case PressureMedium:
		return mid
	case PressureLow:
		return budget.WarningPct
	default:
		return 0
	}
}
