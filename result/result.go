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

// Unit is the void specialization used for Result[Unit] (operations that
// succeed with no meaningful value).
type Unit struct{}

// Result is a discriminated Ok(T)/Err(Error) value. Exactly one of the two
// branches is meaningful at a time; the zero Result is Ok(zero-value-of-T),
// never a "half constructed" error state.
type Result[T any] struct {
	value T
	err   Error
	isErr bool
}

// Ok constructs a successful Result.
func Ok[T any](v T) Result[T] {
	return Result[T]{value: v}
}

// Err constructs a failed Result.
func Err[T any](e Error) Result[T] {
	return Result[T]{err: e, isErr: true}
}

// IsOk reports whether the Result holds a value.
func (r Result[T]) IsOk() bool {
	return !r.isErr
}

// IsErr reports whether the Result holds an error.
func (r Result[T]) IsErr() bool {
	return r.isErr
}

// Value returns the held value. Only valid when IsOk(); callers that don't
// already know this holds must check IsOk() first or use ValueOr.
func (r Result[T]) Value() T {
	return r.value
}

// ErrorValue returns the held error. Only valid when IsErr().
func (r Result[T]) ErrorValue() Error {
	return r.err
}

// ValueOr returns the held value, or def if this Result is an error.
func (r Result[T]) ValueOr(def T) T {
	if r.isErr {
		return def
	}
	return r.value
}

// Map applies fn to an Ok value and rewraps the result; an Err passes
// through unchanged (as a Result[U] carrying the same Error).
func Map[T, U any](r Result[T], fn func(T) U) Result[U] {
	if r.isErr {
		return Err[U](r.err)
	}
	return Ok(fn(r.value))
}

// AndThen chains a fallible continuation; it short-circuits on Err.
func AndThen[T, U any](r Result[T], fn func(T) Result[U]) Result[U] {
	if r.isErr {
		return Err[U](r.err)
	}
	return fn(r.value)
}

// MapErr transforms the error of an Err Result, leaving Ok untouched.
func MapErr[T any](r Result[T], fn func(Error) Error) Result[T] {
	if !r.isErr {
		return r
	}
	return Err[T](fn(r.err))
}
