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

// Package coordinator implements the Platform Coordinator (§4.J): the
// single process-wide owner of startup and shutdown order. It follows the
// same shape as shiftfs.ShiftfsSupported's host-capability check — a fixed
// sequence of steps, each of which can fail and abort the remaining ones —
// generalized from one mount-feature probe to the whole subsystem bring-up
// sequence.
package coordinator

import (
	"fmt"
	"os"
	"sync"

	"github.com/birbparty/flight-hal/config"
	"github.com/birbparty/flight-hal/detector"
	"github.com/birbparty/flight-hal/eventbus"
	"github.com/birbparty/flight-hal/registry"
	"github.com/birbparty/flight-hal/result"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("component", "coordinator")

const (
	CodeInvalidState uint32 = 1
	CodeStepFailed   uint32 = 2
)

// State is the coordinator's lifecycle state, guarded by mu.
type State int

const (
	StateUninitialized State = iota
	StateInitializing
	StateRunning
	StateShuttingDown
	StateShutdown
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateRunning:
		return "running"
	case StateShuttingDown:
		return "shutting_down"
	case StateShutdown:
		return "shutdown"
	}
	return "unknown"
}

// ConfigLoader is the config-manager collaborator (§4.K): loading and
// applying configuration to every subsystem is its responsibility, not the
// coordinator's.
type ConfigLoader interface {
	Load() result.Result[result.Unit]
}

// DriverRegistrar is the collaborator responsible for registering drivers
// into the registry; concrete drivers are out of scope here (§1).
type DriverRegistrar interface {
	RegisterDrivers(r *registry.Registry) result.Result[result.Unit]
}

// Dependencies are the already-constructed collaborators the coordinator
// sequences; ConfigLoader and Registrar are optional (nil skips that step).
type Dependencies struct {
	Bus          *eventbus.Bus
	Detector     *detector.Detector
	Registry     *registry.Registry
	ConfigLoader ConfigLoader
	Registrar    DriverRegistrar
	// Interfaces lists interface names in dependency order for per-interface
	// registry Initialize/Shutdown (collaborator-declared, per §4.J step 5).
	Interfaces []string
}

// Coordinator is the single process-wide owner described by §4.J.
type Coordinator struct {
	mu   sync.Mutex
	deps Dependencies
	state State
}

// New builds a Coordinator over deps, initially Uninitialized, and sets the
// process-wide logrus level from HAL_DEFAULT_LOG_LEVEL (Warning when unset
// or unrecognized).
func New(deps Dependencies) *Coordinator {
	logrus.SetLevel(config.ParseLogLevel(os.Getenv("HAL_DEFAULT_LOG_LEVEL")))
	return &Coordinator{deps: deps}
}

// State reports the coordinator's current lifecycle state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Initialize runs the five §4.J steps in order, aborting (and leaving the
// coordinator Uninitialized again) at the first failure. It succeeds from
// Uninitialized or Shutdown; any other current state is Err(invalid_state).
func (c *Coordinator) Initialize() result.Result[result.Unit] {
	c.mu.Lock()
	if c.state != StateUninitialized && c.state != StateShutdown {
		running := c.state
		c.mu.Unlock()
		return result.Err[result.Unit](result.New(result.Validation, CodeInvalidState,
			"initialize called while not uninitialized/shutdown").WithContext(running.String()))
	}
	c.state = StateInitializing
	c.mu.Unlock()

	if c.deps.Bus != nil {
		c.deps.Bus.Publish(eventbus.Event{
			Category: eventbus.CategorySystem,
			Severity: eventbus.Info,
			SourceID: "coordinator",
			Payload: eventbus.Payload{
				Kind:   eventbus.PayloadSystem,
				System: eventbus.SystemPayload{Phase: "bus_up"},
			},
		})
	}

	if c.deps.ConfigLoader != nil {
		if res := c.deps.ConfigLoader.Load(); res.IsErr() {
			c.rollbackToUninitialized()
			return c.stepFailed("config load failed", res.ErrorValue())
		}
	}

	if c.deps.Detector != nil {
		if res := c.deps.Detector.Detect(false); res.IsErr() {
			c.rollbackToUninitialized()
			return c.stepFailed("initial capability detection failed", res.ErrorValue())
		}
	}

	if c.deps.Registrar != nil && c.deps.Registry != nil {
		if res := c.deps.Registrar.RegisterDrivers(c.deps.Registry); res.IsErr() {
			c.rollbackToUninitialized()
			return c.stepFailed("driver self-registration failed", res.ErrorValue())
		}
	}

	initialized := make([]string, 0, len(c.deps.Interfaces))
	if c.deps.Registry != nil {
		for _, iface := range c.deps.Interfaces {
			if res := c.deps.Registry.Initialize(iface); res.IsErr() {
				log.WithField("interface", iface).WithError(res.ErrorValue()).
					Error("interface initialize failed, unwinding")
				for i := len(initialized) - 1; i >= 0; i-- {
					c.deps.Registry.Shutdown(initialized[i])
				}
				c.rollbackToUninitialized()
				return c.stepFailed(fmt.Sprintf("interface %q failed to initialize", iface), res.ErrorValue())
			}
			initialized = append(initialized, iface)
		}
	}

	c.mu.Lock()
	c.state = StateRunning
	c.mu.Unlock()

	c.publishPhase("running")
	return result.Ok(result.Unit{})
}

// Shutdown runs initialize's steps in reverse, best-effort: individual
// interface shutdown failures are logged but never abort the pass. Only
// callable from Running.
func (c *Coordinator) Shutdown() result.Result[result.Unit] {
	c.mu.Lock()
	if c.state != StateRunning {
		running := c.state
		c.mu.Unlock()
		return result.Err[result.Unit](result.New(result.Validation, CodeInvalidState,
			"shutdown called while not running").WithContext(running.String()))
	}
	c.state = StateShuttingDown
	c.mu.Unlock()

	if c.deps.Registry != nil {
		for i := len(c.deps.Interfaces) - 1; i >= 0; i-- {
			c.deps.Registry.Shutdown(c.deps.Interfaces[i])
		}
	}

	if c.deps.Bus != nil {
		c.deps.Bus.Shutdown()
	}

	c.mu.Lock()
	c.state = StateShutdown
	c.mu.Unlock()

	return result.Ok(result.Unit{})
}

// Query resolves iface under the coordinator lock, so it can never race
// with a concurrent Shutdown flipping the state out from under it.
func (c *Coordinator) Query(iface string, req registry.CapabilityRequirements) result.Result[registry.Driver] {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateRunning {
		return result.Err[registry.Driver](result.New(result.Validation, CodeInvalidState,
			"query while coordinator not running").WithContext(c.state.String()))
	}
	if c.deps.Registry == nil {
		return result.Err[registry.Driver](result.New(result.Internal, CodeStepFailed,
			"coordinator has no registry"))
	}
	return c.deps.Registry.Resolve(iface, req)
}

func (c *Coordinator) rollbackToUninitialized() {
	c.mu.Lock()
	c.state = StateUninitialized
	c.mu.Unlock()
}

func (c *Coordinator) stepFailed(message string, cause result.Error) result.Result[result.Unit] {
	return result.Err[result.Unit](result.New(result.Internal, CodeStepFailed, message).
		WithContext(cause.Error()))
}

func (c *Coordinator) publishPhase(phase string) {
	if c.deps.Bus == nil {
		return
	}
	c.deps.Bus.Publish(eventbus.Event{
		Category: eventbus.CategorySystem,
		Severity: eventbus.Info,
		SourceID: "coordinator",
		Payload: eventbus.Payload{
			Kind:   eventbus.PayloadSystem,
			System: eventbus.SystemPayload{Phase: phase},
		},
	})
}
