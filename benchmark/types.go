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

// Package benchmark implements the Benchmark & Tier Classifier (§4.G):
// deterministic, time-bounded micro-benchmarks scored against calibrated
// thresholds, rolled up into a single weakest-link tier.
package benchmark

import (
	"time"

	"github.com/birbparty/flight-hal/capmodel"
)

// Subsystem names one micro-benchmark.
type Subsystem int

const (
	SubsystemInteger Subsystem = iota
	SubsystemFloat
	SubsystemSIMD
	SubsystemMemSequential
	SubsystemMemRandom
	SubsystemTexture
	SubsystemVertex
	SubsystemStorageRW
	SubsystemNetworkLatency
)

func (s Subsystem) String() string {
	switch s {
	case SubsystemInteger:
		return "integer"
	case SubsystemFloat:
		return "float"
	case SubsystemSIMD:
		return "simd"
	case SubsystemMemSequential:
		return "mem_sequential"
	case SubsystemMemRandom:
		return "mem_random"
	case SubsystemTexture:
		return "texture"
	case SubsystemVertex:
		return "vertex"
	case SubsystemStorageRW:
		return "storage_rw"
	case SubsystemNetworkLatency:
		return "network_latency"
	}
	return "unknown"
}

// Config bounds one benchmark run.
type Config struct {
	MaxDuration      time.Duration
	AccuracyThreshold float64 // max relative stddev between iterations to call it "converged"
	MaxIterations    int
	ScratchDir       string
}

func (c *Config) applyDefaults() {
	if c.MaxDuration <= 0 {
		c.MaxDuration = 500 * time.Millisecond
	}
	if c.AccuracyThreshold <= 0 {
		c.AccuracyThreshold = 0.1
	}
	if c.MaxIterations <= 0 {
		c.MaxIterations = 5
	}
}

// Result is one subsystem's outcome.
type Result struct {
	Subsystem  Subsystem
	Tier       capmodel.PerformanceTier
	Score      float64
	Confidence float64
	Iterations int
	Converged  bool
}

// Report aggregates every subsystem result from one run.
type Report struct {
	Results       []Result
	AggregateTier capmodel.PerformanceTier
}
