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

package benchmark

import (
	"math"
	"time"

	"github.com/birbparty/flight-hal/capmodel"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("component", "benchmark")

// Runner executes the registered workloads in a fixed order and rolls the
// per-subsystem results up into a Report.
type Runner struct {
	Workloads map[Subsystem]workload
	Order     []Subsystem
}

// NewRunner builds a Runner over the built-in CPU/memory workloads plus a
// storage workload rooted at scratchDir, or at a fallback directory chosen
// by pickScratchDir when scratchDir is unusable.
func NewRunner(scratchDir string) *Runner {
	workloads := map[Subsystem]workload{}
	for k, v := range defaultWorkloads {
		workloads[k] = v
	}
	workloads[SubsystemStorageRW] = storageWorkload(scratchDir)

	return &Runner{
		Workloads: workloads,
		Order: []Subsystem{
			SubsystemInteger, SubsystemFloat, SubsystemSIMD,
			SubsystemMemSequential, SubsystemMemRandom,
			SubsystemStorageRW,
		},
	}
}

// CancelFunc reports whether the in-flight run should stop. It is polled
// at stage boundaries, never mid-workload, mirroring §5's "flag observed
// at every benchmark iteration boundary" cancellation model.
type CancelFunc func() bool

func noCancel() bool { return false }

// Run executes every configured subsystem in order, bounded overall by
// cfg.MaxDuration split evenly across subsystems, and stoppable via
// cancelled (checked at each iteration boundary per §5). A nil cancelled
// runs to completion.
func (r *Runner) Run(cfg Config, cancelled CancelFunc) Report {
	cfg.applyDefaults()
	if cancelled == nil {
		cancelled = noCancel
	}

	n := len(r.Order)
	if n == 0 {
		return Report{AggregateTier: capmodel.TierMinimal}
	}
	perSubsystem := cfg.MaxDuration / time.Duration(n)

	report := Report{AggregateTier: capmodel.TierHigh}
	for _, s := range r.Order {
		if cancelled() {
			log.WithField("subsystem", s.String()).Info("benchmark cancelled before start")
			break
		}

		wl, ok := r.Workloads[s]
		if !ok {
			continue
		}

		res := runSubsystem(s, wl, cfg, perSubsystem, cancelled)
		report.Results = append(report.Results, res)
		report.AggregateTier = capmodel.Min(report.AggregateTier, res.Tier)
	}

	if len(report.Results) == 0 {
		report.AggregateTier = capmodel.TierMinimal
	}

	return report
}

func runSubsystem(s Subsystem, wl workload, cfg Config, budget time.Duration, cancelled CancelFunc) Result {
	samples := make([]float64, 0, cfg.MaxIterations)
	overallDeadline := time.Now().Add(budget)

	for it := 0; it < cfg.MaxIterations; it++ {
		if cancelled() || time.Now().After(overallDeadline) {
			break
		}

		remaining := overallDeadline.Sub(time.Now())
		perIter := remaining / time.Duration(cfg.MaxIterations-it)
		iterDeadline := time.Now().Add(perIter)

		score := wl(iterDeadline)
		samples = append(samples, score)

		if len(samples) >= 2 && relativeStdDev(samples) <= cfg.AccuracyThreshold {
			break
		}
	}

	if len(samples) == 0 {
		return Result{Subsystem: s, Tier: capmodel.TierMinimal}
	}

	mean := meanOf(samples)
	relStd := 0.0
	if len(samples) >= 2 {
		relStd = relativeStdDev(samples)
	}
	converged := relStd <= cfg.AccuracyThreshold

	confidence := 1.0 - relStd/cfg.AccuracyThreshold
	if cfg.AccuracyThreshold == 0 {
		confidence = 0
	}
	confidence = math.Max(0, math.Min(1, confidence))

	return Result{
		Subsystem:  s,
		Tier:       scoreToTier(s, mean),
		Score:      mean,
		Confidence: confidence,
		Iterations: len(samples),
		Converged:  converged,
	}
}

func meanOf(xs []float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func relativeStdDev(xs []float64) float64 {
	mean := meanOf(xs)
	if mean == 0 {
		return 0
	}
	var sumSq float64
	for _, x := range xs {
		d := x - mean
		sumSq += d * d
	}
	variance := sumSq / float64(len(xs))
	return math.Sqrt(variance) / mean
}
