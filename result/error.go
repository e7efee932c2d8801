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

// Package result implements the tagged Result/Error model used across every
// fallible HAL API. No component may let an error cross a boundary any other
// way: everything fallible returns a Result.
package result

import (
	"fmt"

	pkgerrors "github.com/pkg/errors"
)

// Category classifies an Error for routing/retry decisions by the caller.
type Category uint8

const (
	Hardware Category = iota
	Driver
	Configuration
	Resource
	Platform
	Network
	Validation
	Internal
)

func (c Category) String() string {
	switch c {
	case Hardware:
		return "hardware"
	case Driver:
		return "driver"
	case Configuration:
		return "configuration"
	case Resource:
		return "resource"
	case Platform:
		return "platform"
	case Network:
		return "network"
	case Validation:
		return "validation"
	case Internal:
		return "internal"
	}
	return "unknown"
}

// Error is the canonical fallible-operation error. Message and Context are
// expected to be static string literals in the caller's code; Error never
// takes ownership of a caller-constructed string for the canonical message,
// only for Context when a dynamic detail is genuinely needed.
type Error struct {
	Category Category
	Code     uint32
	Message  string
	Context  string

	// cause, when set, is an internal diagnostic chain (via pkg/errors) that
	// never participates in Equal() and is never part of the error-id. It
	// exists purely for logs.
	cause error
}

// New constructs an Error with no wrapped cause.
func New(category Category, code uint32, message string) Error {
	return Error{Category: category, Code: code, Message: message}
}

// WithContext returns a copy of e with Context set.
func (e Error) WithContext(context string) Error {
	e.Context = context
	return e
}

// Wrap attaches a diagnostic cause (not part of the error's public identity)
// to a new Error, mirroring how idMap/idShiftUtils use pkg/errors.Wrap to
// keep a cause chain for logs without changing the category/code contract.
func Wrap(category Category, code uint32, message string, cause error) Error {
	return Error{
		Category: category,
		Code:     code,
		Message:  message,
		cause:    pkgerrors.Wrap(cause, message),
	}
}

// Cause returns the wrapped diagnostic cause, or nil if none was attached.
func (e Error) Cause() error {
	return e.cause
}

// Error implements the error interface.
func (e Error) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("%s[%d]: %s (%s)", e.Category, e.Code, e.Message, e.Context)
	}
	return fmt.Sprintf("%s[%d]: %s", e.Category, e.Code, e.Message)
}

// Equal compares (category, code) only, per the spec's equality contract.
func (e Error) Equal(other Error) bool {
	return e.Category == other.Category && e.Code == other.Code
}

// ID returns the stable 32-bit error identifier (category<<24 | code&0x00FFFFFF).
func (e Error) ID() uint32 {
	return (uint32(e.Category) << 24) | (e.Code & 0x00FFFFFF)
}

// IDHex formats the error id as a short, log-friendly hex string, the way
// formatter.ContainerID.ShortID truncated ids for display.
func (e Error) IDHex() string {
	return idfmtHex(e.ID())
}
