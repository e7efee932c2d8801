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

// entry is the registry-internal bookkeeping record for one registered
// driver: its static info, lazily-materialized instance, and active state.
// seq records insertion order, used as the final ranking tiebreak.
type entry struct {
	info        DriverInfo
	instance    Driver
	initialized bool
	seq         int
}

// materialize returns the entry's driver instance, constructing it via the
// factory on first use. An already-constructed Instance (register_instance
// registrations, or a prior materialize) is reused.
func (e *entry) materialize() (Driver, error) {
	if e.instance != nil {
		return e.instance, nil
	}
	if e.info.Factory == nil {
		return nil, nil
	}
	inst, err := e.info.Factory()
	if err != nil {
		return nil, err
	}
	e.instance = inst
	return inst, nil
}
