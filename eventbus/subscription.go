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

import (
	"sync"
	"time"
)

// Subscriber receives dispatched events. IsAlive stands in for a weak
// reference: the bus calls it before every dispatch and prunes the
// subscription once it starts returning false, instead of requiring a real
// weak pointer (which Go doesn't have).
type Subscriber interface {
	Handle(e Event)
	IsAlive() bool
}

// Subscription is a (filter, subscriber) pair owned by the bus from
// Subscribe to Unsubscribe (or until the subscriber's IsAlive goes false).
type Subscription struct {
	ID         uint64
	Filter     Filter
	Subscriber Subscriber
	WantsAsync bool
	CreatedAt  time.Time

	startOnce sync.Once
	asyncCh   chan Event
	dropped   uint64
}

// deliver hands e to the subscriber, synchronously or through the
// subscription's own bounded async queue.
func (s *Subscription) deliver(e Event, asyncQueueDepth int) {
	if !s.WantsAsync {
		s.Subscriber.Handle(e)
		return
	}

	s.startOnce.Do(func() {
		s.asyncCh = make(chan Event, asyncQueueDepth)
		go func() {
			for ev := range s.asyncCh {
				s.Subscriber.Handle(ev)
			}
		}()
	})

	select {
	case s.asyncCh <- e:
	default:
		s.dropped++
	}
}
