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

// Error codes surfaced by this package, scoped within result.Configuration,
// result.Driver, and result.Internal per §4.C "Errors surfaced".
const (
	CodeInvalidParameter  uint32 = 1
	CodeDriverNotLoaded   uint32 = 2
	CodeInitFailed        uint32 = 3
	CodeUnknownDriver     uint32 = 4
	CodeUnknownInterface  uint32 = 5
)
