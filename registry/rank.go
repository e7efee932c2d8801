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

import "sort"

// rankEntries sorts candidates by the §4.C total order: priority desc,
// then preferred-bit count desc, then tier desc, then smaller memory
// overhead, then earlier registration. This generalizes the simple
// StringSliceContains/StringSliceEqual comparisons in utils/slices.go into
// a multi-key stable comparator.
func rankEntries(candidates []*entry, req CapabilityRequirements) []*entry {
	ranked := make([]*entry, len(candidates))
	copy(ranked, candidates)

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]

		if a.info.Priority != b.info.Priority {
			return a.info.Priority > b.info.Priority
		}

		aPref := a.info.CapabilityMask.CountPreferred(req.PreferredMask)
		bPref := b.info.CapabilityMask.CountPreferred(req.PreferredMask)
		if aPref != bPref {
			return aPref > bPref
		}

		if a.info.Tier != b.info.Tier {
			return a.info.Tier > b.info.Tier
		}

		if a.info.MemoryOverheadBytes != b.info.MemoryOverheadBytes {
			return a.info.MemoryOverheadBytes < b.info.MemoryOverheadBytes
		}

		return a.seq < b.seq
	})

	return ranked
}
