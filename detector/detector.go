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

// Package detector implements the Capability Detector (§4.I): it
// orchestrates probe + benchmark behind a single staged pipeline,
// one boundary-checked stage at a time, the same way pathres.procPathAccess
// walks path components checking a condition at every step instead of
// resolving the whole path at once.
package detector

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/birbparty/flight-hal/benchmark"
	"github.com/birbparty/flight-hal/cache"
	"github.com/birbparty/flight-hal/capmodel"
	"github.com/birbparty/flight-hal/probe"
	"github.com/birbparty/flight-hal/result"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("component", "detector")

const (
	CodeInvalidState     uint32 = 1
	CodeAlreadyCancelled uint32 = 2
)

// Status is the detector's current pipeline state.
type Status int

const (
	StatusIdle Status = iota
	StatusProbing
	StatusBenchmarking
	StatusConsolidating
	StatusDone
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusProbing:
		return "probing"
	case StatusBenchmarking:
		return "benchmarking"
	case StatusConsolidating:
		return "consolidating"
	case StatusDone:
		return "done"
	case StatusCancelled:
		return "cancelled"
	}
	return "unknown"
}

// stage weights, per §4.I: probe 20%, benchmark 70%, consolidation 10%.
const (
	weightProbe         = 0.20
	weightBenchmark      = 0.70
	weightConsolidation = 0.10
)

// Progress is a monotonic fraction of one detect() run.
type Progress struct {
	Status   Status
	Fraction float64
}

// Detection is one completed detect() result.
type Detection struct {
	Features   probe.Features
	Benchmarks benchmark.Report
	Provider   capmodel.StaticProvider
	DetectedAt time.Time
}

// ChangeListener is notified of per-capability and tier-changed diffs
// between a prior and new Detection.
type ChangeListener interface {
	OnCapabilityChanged(cap capmodel.Capability, nowSupported bool)
	OnTierChanged(prior, next capmodel.PerformanceTier)
}

// Detector orchestrates one probe+benchmark pipeline at a time.
type Detector struct {
	mu       sync.Mutex
	prober   probe.Prober
	runner   *benchmark.Runner
	store    *cache.Store
	platform capmodel.PlatformDescriptor

	status    Status
	progress  float64
	cancelled int32
	current   *Detection
	listeners []ChangeListener
}

// New builds a Detector over the given collaborators.
func New(prober probe.Prober, runner *benchmark.Runner, store *cache.Store, platform capmodel.PlatformDescriptor) *Detector {
	return &Detector{prober: prober, runner: runner, store: store, platform: platform}
}

// AddListener registers l for future change notifications.
func (d *Detector) AddListener(l ChangeListener) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners = append(d.listeners, l)
}

// Current returns the last completed detection, if any.
func (d *Detector) Current() (Detection, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.current == nil {
		return Detection{}, false
	}
	return *d.current, true
}

// Progress reports the in-flight run's monotonic fraction.
func (d *Detector) Progress() Progress {
	d.mu.Lock()
	defer d.mu.Unlock()
	return Progress{Status: d.status, Fraction: d.progress}
}

// Cancel requests that the in-flight run stop at its next stage boundary
// (in-flight probes/benchmark iterations complete; no new ones start).
func (d *Detector) Cancel() {
	atomic.StoreInt32(&d.cancelled, 1)
}

func (d *Detector) isCancelled() bool {
	return atomic.LoadInt32(&d.cancelled) != 0
}

// Detect runs the probe -> benchmark -> consolidate pipeline. It has no
// cache-check stage: the store given to New is held but neither read nor
// written here, so every run probes and benchmarks afresh. If a detection
// is already in progress, force=false returns
// Err(Validation/invalid_state); force=true is rejected identically per
// §8 scenario 5 — this spec never preempts an in-flight run, it only lets
// the caller name the conflict.
func (d *Detector) Detect(force bool) result.Result[Detection] {
	d.mu.Lock()
	if d.status != StatusIdle && d.status != StatusDone && d.status != StatusCancelled {
		running := d.status
		d.mu.Unlock()
		return result.Err[Detection](result.New(result.Validation, CodeInvalidState,
			"detection already in progress").WithContext(running.String()))
	}

	d.status = StatusProbing
	d.progress = 0
	atomic.StoreInt32(&d.cancelled, 0)
	d.mu.Unlock()

	prior, hadPrior := d.Current()

	features := d.prober.Probe()
	d.setProgress(StatusProbing, weightProbe)
	if features.Warning != "" {
		log.WithField("warning", features.Warning).Warn("probe returned partial results")
	}

	if d.isCancelled() {
		return d.finishCancelled()
	}

	report := d.runner.Run(benchmark.Config{}, d.isCancelled)
	d.setProgress(StatusBenchmarking, weightProbe+weightBenchmark)

	if d.isCancelled() {
		return d.finishCancelled()
	}

	d.setStatus(StatusConsolidating)
	provider := consolidate(d.platform, features, report)
	d.setProgress(StatusConsolidating, 1.0)

	detection := Detection{
		Features:   features,
		Benchmarks: report,
		Provider:   provider,
		DetectedAt: time.Now(),
	}

	d.mu.Lock()
	d.current = &detection
	d.status = StatusDone
	d.mu.Unlock()

	if hadPrior {
		d.notifyChanges(prior, detection)
	}

	return result.Ok(detection)
}

func (d *Detector) setStatus(s Status) {
	d.mu.Lock()
	d.status = s
	d.mu.Unlock()
}

func (d *Detector) setProgress(s Status, frac float64) {
	d.mu.Lock()
	d.status = s
	d.progress = frac
	d.mu.Unlock()
}

func (d *Detector) finishCancelled() result.Result[Detection] {
	d.mu.Lock()
	d.status = StatusCancelled
	d.mu.Unlock()

	return result.Err[Detection](result.New(result.Validation, CodeAlreadyCancelled, "detection cancelled"))
}

func consolidate(platform capmodel.PlatformDescriptor, f probe.Features, r benchmark.Report) capmodel.StaticProvider {
	mask := capabilitiesFromFeatures(f)
	platform.Tier = r.AggregateTier
	platform.HasFPU = f.CPU.HasFPU
	platform.HasSIMD = f.CPU.HasSIMD
	platform.CPUCores = f.CPU.CoreCount
	platform.TotalMemoryBytes = f.Memory.TotalBytes

	return capmodel.StaticProvider{
		Mask:      mask,
		TierValue: r.AggregateTier,
		Desc:      platform,
	}
}

func (d *Detector) notifyChanges(prior, next Detection) {
	d.mu.Lock()
	listeners := append([]ChangeListener(nil), d.listeners...)
	d.mu.Unlock()

	priorMask := prior.Provider.Mask
	nextMask := next.Provider.Mask

	for _, c := range capmodel.AllCapabilities() {
		before := priorMask.Supports(c)
		after := nextMask.Supports(c)
		if before != after {
			for _, l := range listeners {
				l.OnCapabilityChanged(c, after)
			}
		}
	}

	if prior.Provider.TierValue != next.Provider.TierValue {
		for _, l := range listeners {
			l.OnTierChanged(prior.Provider.TierValue, next.Provider.TierValue)
		}
	}
}
