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

// Package resource implements budgeted resource accounting: typed handles,
// budgets, pressure computation with hysteresis, reclamation, and pools.
package resource

import "time"

// Type enumerates the resource classes the manager budgets independently.
type Type int

const (
	TypeMemory Type = iota
	TypeGraphicsSurface
	TypeAudioVoice
	TypeIOPort
	TypeNetworkSocket
	TypeStorageHandle
)

func (t Type) String() string {
	switch t {
	case TypeMemory:
		return "memory"
	case TypeGraphicsSurface:
		return "graphics_surface"
	case TypeAudioVoice:
		return "audio_voice"
	case TypeIOPort:
		return "io_port"
	case TypeNetworkSocket:
		return "network_socket"
	case TypeStorageHandle:
		return "storage_handle"
	}
	return "unknown"
}

// AcquireMode selects what Acquire does when a budget is currently full.
type AcquireMode int

const (
	Blocking AcquireMode = iota
	NonBlocking
	Timeout
	Emergency
)

// Handle is an opaque, unforgeable reference to a granted allocation. Handle
// values are only ever minted by a Manager; id is unique within one
// Manager's lifetime.
type Handle struct {
	rtype      Type
	id         uint64
	ownerDriver string
	size       uint64
}

// Type reports the resource class this handle was acquired against.
func (h Handle) Type() Type { return h.rtype }

// ID is the handle's unique identifier.
func (h Handle) ID() uint64 { return h.id }

// OwnerDriver is the driver name that acquired this handle.
func (h Handle) OwnerDriver() string { return h.ownerDriver }

// Size is the number of bytes this handle reserved.
func (h Handle) Size() uint64 { return h.size }

// AcquireRequest describes one Acquire call.
type AcquireRequest struct {
	Type        Type
	Size        uint64
	OwnerDriver string
	Mode        AcquireMode
	Timeout     time.Duration // only consulted when Mode == Timeout
}
