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

package detector

import (
	"github.com/birbparty/flight-hal/capmodel"
	"github.com/birbparty/flight-hal/probe"
)

// capabilitiesFromFeatures folds raw probe output into a capability mask.
// This is the consolidation stage's core mapping, kept separate from
// Detect so it stays trivially unit-testable without a live Prober.
func capabilitiesFromFeatures(f probe.Features) capmodel.Mask {
	var m capmodel.Mask

	if f.CPU.ThreadCount > 1 {
		m = m.Union(capmodel.Mask(capmodel.CapThreading))
	}
	if f.Memory.TotalBytes > 0 {
		m = m.Union(capmodel.Mask(capmodel.CapVirtualMemory))
	}
	if f.GPU.HasShaders {
		m = m.Union(capmodel.Mask(capmodel.CapShaderBasic))
		m = m.Union(capmodel.Mask(capmodel.CapShaderAdvanced))
	}
	if f.IO.HasAsyncIO {
		m = m.Union(capmodel.Mask(capmodel.CapPersistentStorage))
	}
	if f.IO.BlockDeviceCount > 1 {
		m = m.Union(capmodel.Mask(capmodel.CapRemovableStorage))
	}

	return m
}
