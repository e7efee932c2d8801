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

// Package probe implements the Hardware Probe (§4.F): idempotent,
// side-effect-free collection of CPU/GPU/memory/IO features. Compile-time
// bits form a baseline; a platform-specific Prober may enrich them with
// runtime reads. Probe failures leave unknown fields at their zero value
// and are surfaced as a non-fatal warning, never a hard error.
package probe

// CPUFeatures describes the host's processor.
type CPUFeatures struct {
	Architecture string
	CoreCount    int
	ThreadCount  int
	HasSIMD      bool
	HasFPU       bool
	CacheLineKB  int
	ClockMHz     int
}

// GPUFeatures describes the host's graphics capability. On platforms with
// no runtime GPU probe, only compile-time-known fields are populated.
type GPUFeatures struct {
	Vendor        string
	HasShaders    bool
	HasHardwareTL bool
	VRAMBytes     uint64
}

// MemoryFeatures describes the host's memory subsystem.
type MemoryFeatures struct {
	TotalBytes     uint64
	AvailableBytes uint64
	PageSizeBytes  uint64
}

// IOFeatures describes the host's storage/IO subsystem.
type IOFeatures struct {
	BlockDeviceCount int
	PrimaryFsType    string
	HasAsyncIO       bool
}

// Features is the full result of one probe run.
type Features struct {
	CPU     CPUFeatures
	GPU     GPUFeatures
	Memory  MemoryFeatures
	IO      IOFeatures
	Warning string
}

// Prober is the capability-probe collaborator contract (§6): returns
// structured features on demand, idempotent and side-effect-free.
type Prober interface {
	Probe() Features
}
