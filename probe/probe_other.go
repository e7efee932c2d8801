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

//go:build !linux
// +build !linux

package probe

import "runtime"

// PortableProber is the non-Linux fallback: only compile-time-known
// features are populated, mirroring idMapMount_unsupported.go's stub
// shape for platforms without the real syscalls available.
type PortableProber struct{}

// NewLinuxProber keeps the constructor name stable across build targets so
// callers (detector) don't need a build-tagged call site of their own.
func NewLinuxProber(_ string) *PortableProber {
	return &PortableProber{}
}

func (p *PortableProber) Probe() Features {
	return Features{
		CPU: CPUFeatures{
			Architecture: runtime.GOARCH,
			ThreadCount:  runtime.NumCPU(),
			CoreCount:    runtime.NumCPU(),
		},
		GPU:     GPUFeatures{Vendor: "unknown"},
		Memory:  MemoryFeatures{},
		IO:      IOFeatures{PrimaryFsType: "unknown"},
		Warning: "runtime probing not implemented for this platform",
	}
}
