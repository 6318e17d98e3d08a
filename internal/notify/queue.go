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

package notify

import "fmt"

// KindStop is the only notification kind the protocol defines today.
// original_source/binutils/gdb/remote-notif.h models kinds as a registered-
// pointer table ready to hold more than one; we keep that structural
// generality (Queue is keyed by a string, not hardcoded to "Stop") without
// adding kinds nothing sends, per spec.md §3's "today only 'Stop'".
const KindStop = "Stop"

// AlreadyPendingError is returned by SetPending when a second notification
// for the same kind arrives before the first has been acked — a violation
// of spec.md §3's "at most one pending event per kind" invariant, enforced
// structurally (an optional slot per spec.md §9's design note) rather than
// with a counter.
type AlreadyPendingError struct {
	Kind string
}

func (e *AlreadyPendingError) Error() string {
	return fmt.Sprintf("rsp: notification kind %q already has a pending event", e.Kind)
}

// ackedQueue is a slice-backed FIFO sized for the traffic it actually
// carries: a handful of acknowledged stop replies awaiting delivery to a
// waiting thread, popped from the front in the common case and
// occasionally scanned for a specific ptid out of order (DequeueMatching).
// A ring buffer or linked list buys nothing here — the backlog is always
// short and Dequeue/DequeueMatching are not called from a hot loop.
type ackedQueue struct {
	events []StopReply
}

func (q *ackedQueue) push(ev StopReply) {
	q.events = append(q.events, ev)
}

func (q *ackedQueue) isEmpty() bool {
	return len(q.events) == 0
}

func (q *ackedQueue) len() int {
	return len(q.events)
}

// popFront removes and returns the oldest queued event.
func (q *ackedQueue) popFront() StopReply {
	ev := q.events[0]
	q.events = q.events[1:]
	return ev
}

// removeMatching removes and returns the first event satisfying match,
// preserving the relative order of everything else.
func (q *ackedQueue) removeMatching(match func(StopReply) bool) (StopReply, bool) {
	for i, ev := range q.events {
		if match(ev) {
			q.events = append(q.events[:i], q.events[i+1:]...)
			return ev, true
		}
	}
	return StopReply{}, false
}

type kindState struct {
	pending *StopReply
	acked   ackedQueue
}

// Queue is the Connection-owned "Notification state" entity of spec.md §3
// plus the stop-reply FIFO of spec.md §4.6, combined because they share
// one invariant (at most one pending event) and one lifecycle (both reset
// on disconnect).
type Queue struct {
	kinds map[string]*kindState
}

// New returns an empty Queue with KindStop pre-registered.
func New() *Queue {
	q := &Queue{kinds: make(map[string]*kindState)}
	q.register(KindStop)
	return q
}

func (q *Queue) register(kind string) {
	if _, ok := q.kinds[kind]; !ok {
		q.kinds[kind] = &kindState{}
	}
}

func (q *Queue) state(kind string) *kindState {
	st, ok := q.kinds[kind]
	if !ok {
		q.register(kind)
		st = q.kinds[kind]
	}
	return st
}

// SetPending records a freshly-arrived notification payload as kind's
// in-flight event, per spec.md §4.6: "its payload is parsed into a
// stop-reply event and stored into the single 'in-flight' slot for kind
// Stop." It is an error if a pending event for this kind hasn't been
// drained yet.
func (q *Queue) SetPending(kind string, ev StopReply) error {
	st := q.state(kind)
	if st.pending != nil {
		return &AlreadyPendingError{Kind: kind}
	}
	cp := ev
	st.pending = &cp
	return nil
}

// HasPending reports whether kind owes the stub a vStopped ack sequence —
// spec.md §3's "when the in-flight slot is non-empty we owe the stub a
// vStopped ack sequence before issuing further commands."
func (q *Queue) HasPending(kind string) bool {
	return q.state(kind).pending != nil
}

// AnyPending reports whether any registered kind has a pending event.
func (q *Queue) AnyPending() bool {
	for _, st := range q.kinds {
		if st.pending != nil {
			return true
		}
	}
	return false
}

// TakePending clears and returns kind's in-flight event, for the caller
// (internal/remote's vStopped drain loop) to append to the FIFO.
func (q *Queue) TakePending(kind string) (StopReply, bool) {
	st := q.state(kind)
	if st.pending == nil {
		return StopReply{}, false
	}
	ev := *st.pending
	st.pending = nil
	return ev, true
}

// Enqueue appends ev to kind's acknowledged-event FIFO, unless ev.Ignore
// is set, in which case it is dropped but the caller has still acked it on
// the wire (spec.md §4.6).
func (q *Queue) Enqueue(kind string, ev StopReply) {
	if ev.Ignore {
		return
	}
	q.state(kind).acked.push(ev)
}

// DequeueMatching removes and returns the first queued event of kind
// satisfying match, preserving the order of the rest.
func (q *Queue) DequeueMatching(kind string, match func(StopReply) bool) (StopReply, bool) {
	return q.state(kind).acked.removeMatching(match)
}

// Dequeue removes and returns the oldest queued event of kind, regardless
// of ptid — used by all-stop wait(), which owes exactly one stop reply per
// outstanding resume and does not need to match a specific thread.
func (q *Queue) Dequeue(kind string) (StopReply, bool) {
	st := q.state(kind)
	if st.acked.isEmpty() {
		return StopReply{}, false
	}
	return st.acked.popFront(), true
}

// Len reports how many acknowledged-but-undelivered events of kind are
// queued.
func (q *Queue) Len(kind string) int {
	return q.state(kind).acked.len()
}
