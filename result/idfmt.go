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

package result

import "fmt"

// idHexLen mirrors the short-id length formatter.ShortID used for container
// ids, sized instead for a 32-bit error id / u64 handle id.
const idHexLen = 8

// idfmtHex truncates a 32-bit id to a fixed-width hex string for logs.
func idfmtHex(id uint32) string {
	return fmt.Sprintf("%0*x", idHexLen, id)
}

// ShortID truncates a u64 identifier (event id, resource handle id, driver
// instance id) to a short hex string for log lines, the same role
// formatter.ContainerID.ShortID played for container ids in the teacher.
func ShortID(id uint64) string {
	s := fmt.Sprintf("%016x", id)
	if len(s) <= idHexLen {
		return s
	}
	return s[len(s)-idHexLen:]
}
