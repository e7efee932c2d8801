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

// Package eventbus implements the categorized/severity-tagged event bus:
// bounded queue, filtered subscriptions, synchronous and asynchronous
// dispatch. The single dispatch goroutine's command/work loop follows
// pidmonitor's cmdCh/EventCh monitor-goroutine shape.
package eventbus

import "time"

// Category classifies the subsystem an event originated from.
type Category int

const (
	CategoryHardware Category = iota
	CategorySystem
	CategoryDriver
)

func (c Category) String() string {
	switch c {
	case CategoryHardware:
		return "hardware"
	case CategorySystem:
		return "system"
	case CategoryDriver:
		return "driver"
	}
	return "unknown"
}

// Severity orders events by importance; comparisons use plain integer
// ordering (Info < Warning < Error < Critical).
type Severity int

const (
	Info Severity = iota
	Warning
	Error
	Critical
)

func (s Severity) String() string {
	switch s {
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	case Critical:
		return "critical"
	}
	return "unknown"
}

// PayloadKind tags which variant Event.Payload holds.
type PayloadKind int

const (
	PayloadHardware PayloadKind = iota
	PayloadSystem
	PayloadDriver
)

// Payload is the tagged-union event body. Only the field matching Kind is
// meaningful.
type Payload struct {
	Kind     PayloadKind
	Hardware HardwarePayload
	System   SystemPayload
	Driver   DriverPayload
}

// HardwarePayload carries hardware-origin event detail.
type HardwarePayload struct {
	DeviceName string
	ErrorCode  uint32
}

// SystemPayload carries coordinator/lifecycle event detail.
type SystemPayload struct {
	Phase string
}

// DriverPayload carries driver lifecycle/state-change event detail.
type DriverPayload struct {
	Interface string
	Driver    string
	State     string
}

// Event is one record flowing through the bus. ID is monotonically
// increasing per process. Field order follows §6's wire-format record;
// the in-memory types differ from it (Timestamp is a time.Time, Category
// and Severity are int-based enumerations), and this package has no
// encoder for that format.
type Event struct {
	ID          uint64
	Category    Category
	Severity    Severity
	SourceID    string
	Timestamp   time.Time
	Description string
	Attributes  map[string]string
	Payload     Payload
}
