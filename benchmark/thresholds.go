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

import "github.com/birbparty/flight-hal/capmodel"

// tierThreshold holds the three score cutoffs separating Minimal/Limited,
// Limited/Standard, and Standard/High for one subsystem.
type tierThreshold [3]float64

// thresholds holds per-subsystem calibration. Real calibration numbers come
// from measuring reference hardware per platform; these are placeholders of
// the right shape. They are fixed in this package: Config has no field that
// overrides them.
var thresholds = map[Subsystem]tierThreshold{
	SubsystemInteger:        {5e7, 2e8, 8e8},
	SubsystemFloat:          {2.5e7, 1e8, 4e8},
	SubsystemSIMD:           {5e7, 2e8, 8e8},
	SubsystemMemSequential:  {2e9, 8e9, 2e10},
	SubsystemMemRandom:      {5e8, 2e9, 8e9},
	SubsystemTexture:        {50, 200, 800},
	SubsystemVertex:         {50, 200, 800},
	SubsystemStorageRW:      {1e7, 5e7, 2e8},
	SubsystemNetworkLatency: {10, 100, 1000},
}

// scoreToTier maps a raw benchmark score to a tier using the subsystem's
// calibrated thresholds. Unknown subsystems classify as Minimal.
func scoreToTier(s Subsystem, score float64) capmodel.PerformanceTier {
	t, ok := thresholds[s]
	if !ok {
		return capmodel.TierMinimal
	}

	tier := capmodel.TierMinimal
	for i, cutoff := range t {
		if score >= cutoff {
			tier = capmodel.PerformanceTier(i + 1)
		}
	}
	return tier
}
