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

package eventbus

import mapset "github.com/deckarep/golang-set"

// Filter narrows which events a subscription receives. An empty Filter
// (zero value) matches everything, matching §3's "empty filter matches
// everything" invariant.
type Filter struct {
	Categories  mapset.Set // of Category; nil/empty means "any"
	MinSeverity Severity
	Sources     mapset.Set // of string source id; nil/empty means "any"
	Attributes  map[string]string
}

// NewFilter constructs a Filter with initialized, empty sets.
func NewFilter() Filter {
	return Filter{
		Categories: mapset.NewSet(),
		Sources:    mapset.NewSet(),
	}
}

// Matches reports whether e satisfies f, per §4.E dispatch step 1(i).
func (f Filter) Matches(e Event) bool {
	if f.Categories != nil && f.Categories.Cardinality() > 0 && !f.Categories.Contains(e.Category) {
		return false
	}
	if e.Severity < f.MinSeverity {
		return false
	}
	if f.Sources != nil && f.Sources.Cardinality() > 0 && !f.Sources.Contains(e.SourceID) {
		return false
	}
	for k, v := range f.Attributes {
		if e.Attributes[k] != v {
			return false
		}
	}
	return true
}
