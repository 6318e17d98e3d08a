// Copyright 2026 The RSPCore Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package clock

import (
	"sort"
	"sync"
	"time"
)

type afterRequest struct {
	targetTime time.Time
	ch         chan time.Time
}

// SimulatedClock is a Clock whose notion of "now" only changes when
// AdvanceTime or SetTime is called, so timeout-driven code can be
// exercised without sleeping. A pending After channel receives its target
// time (the time After was called plus d) once the clock reaches it.
type SimulatedClock struct {
	mu      sync.Mutex
	t       time.Time
	pending []*afterRequest
}

func NewSimulatedClock(startTime time.Time) *SimulatedClock {
	return &SimulatedClock{t: startTime}
}

func (sc *SimulatedClock) Now() time.Time {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.t
}

// SetTime sets the current time and fires any pending After calls whose
// target time has passed.
func (sc *SimulatedClock) SetTime(t time.Time) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.t = t
	sc.processPending()
}

// AdvanceTime moves the clock forward by d.
func (sc *SimulatedClock) AdvanceTime(d time.Duration) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.t = sc.t.Add(d)
	sc.processPending()
}

func (sc *SimulatedClock) After(d time.Duration) <-chan time.Time {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	ch := make(chan time.Time, 1)
	req := &afterRequest{targetTime: sc.t.Add(d), ch: ch}
	if !req.targetTime.After(sc.t) {
		ch <- sc.t
		return ch
	}
	sc.pending = append(sc.pending, req)
	sort.Slice(sc.pending, func(i, j int) bool {
		return sc.pending[i].targetTime.Before(sc.pending[j].targetTime)
	})
	return ch
}

// processPending must be called with sc.mu held.
func (sc *SimulatedClock) processPending() {
	var remaining []*afterRequest
	for _, req := range sc.pending {
		if sc.t.Before(req.targetTime) {
			remaining = append(remaining, req)
			continue
		}
		req.ch <- req.targetTime
	}
	sc.pending = remaining
}
