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

// Package threadreg is the "External adapters" component spec.md §2 lists
// (thread/inferior registry glue): spec.md §1 names the thread/inferior
// registry as an external collaborator the core only consumes, but no such
// collaborator ships with this module, so threadreg provides the concrete
// default implementation internal/remote wires up. It owns the Thread and
// Inferior records of spec.md §3, including the per-thread resume state
// machine spec.md §9 asks to unify: one ResumeState enum instead of the
// scattered resumed/pending-vcont booleans the original conflates.
package threadreg

import "github.com/rspcore/rspcore/internal/notify"

// ResumeState is the per-thread state spec.md §3 and §9 describe.
type ResumeState int

const (
	// NotResumed: the thread is stopped and no resume has been requested
	// for it since its last reported stop.
	NotResumed ResumeState = iota
	// ResumedPendingVcont: a resume was requested in non-stop mode but
	// not yet sent on the wire; Pending carries the (step, signal) pair
	// to be merged into the next vCont commit.
	ResumedPendingVcont
	// Resumed: the thread is running on the stub side.
	Resumed
)

func (s ResumeState) String() string {
	switch s {
	case NotResumed:
		return "not-resumed"
	case ResumedPendingVcont:
		return "resumed-pending-vcont"
	case Resumed:
		return "resumed"
	default:
		return "unknown"
	}
}

// PendingAction is the (step?, signal) pair spec.md §3 says a
// ResumedPendingVcont thread carries.
type PendingAction struct {
	Step   bool
	Signal int
	// RangeStart/RangeEnd, valid when Step is true and RangeStep is true,
	// request a vCont;r<start>,<end> range step (spec.md §4.4).
	RangeStep  bool
	RangeStart uint64
	RangeEnd   uint64
}

// Thread is spec.md §3's "Thread record (remote-side)".
type Thread struct {
	Ptid notify.Ptid

	Handle       []byte // opaque thread handle, if the stub supplied one
	HasHandle    bool
	Core         int
	HasCore      bool
	Extra        string
	Name         string
	LastStop     notify.StopReason
	LastWatchAddr uint64

	State   ResumeState
	Pending PendingAction

	// HasPendingChildEvent marks a thread whose last reported stop was a
	// fork/vfork/clone that has not yet been followed up (attached to,
	// or detached from), per spec.md §4.4 rule 2's "no pending
	// fork/vfork/clone child event awaiting follow-up".
	HasPendingChildEvent bool
}

// Inferior is spec.md §3's "Inferior record".
type Inferior struct {
	Pid int64
	// MayWildcardVcont is spec.md §3's "may-wildcard-vcont flag used for
	// process-scoped continue actions" — false while e.g. a vfork child
	// hasn't been attached to yet.
	MayWildcardVcont bool
}

// Registry is the external thread/inferior collaborator's concrete
// default: a simple in-memory table keyed by ptid/pid, iterated in
// insertion order (spec.md §5's ordering guarantee).
type Registry struct {
	order     []notify.Ptid
	threads   map[notify.Ptid]*Thread
	inferiors map[int64]*Inferior
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{
		threads:   make(map[notify.Ptid]*Thread),
		inferiors: make(map[int64]*Inferior),
	}
}

// AddThread registers a new thread in NotResumed state, appending it to
// the insertion-order list used by resume coalescing.
func (r *Registry) AddThread(ptid notify.Ptid) *Thread {
	if t, ok := r.threads[ptid]; ok {
		return t
	}
	t := &Thread{Ptid: ptid, State: NotResumed}
	r.threads[ptid] = t
	r.order = append(r.order, ptid)
	if _, ok := r.inferiors[ptid.Pid]; !ok {
		r.inferiors[ptid.Pid] = &Inferior{Pid: ptid.Pid, MayWildcardVcont: true}
	}
	return t
}

// RemoveThread drops a thread that has exited, preserving the insertion
// order of the rest.
func (r *Registry) RemoveThread(ptid notify.Ptid) {
	if _, ok := r.threads[ptid]; !ok {
		return
	}
	delete(r.threads, ptid)
	for i, p := range r.order {
		if p == ptid {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Thread looks up a thread by ptid.
func (r *Registry) Thread(ptid notify.Ptid) (*Thread, bool) {
	t, ok := r.threads[ptid]
	return t, ok
}

// Threads returns every thread in insertion order.
func (r *Registry) Threads() []*Thread {
	out := make([]*Thread, 0, len(r.order))
	for _, p := range r.order {
		out = append(out, r.threads[p])
	}
	return out
}

// ThreadsOf returns pid's threads in insertion order.
func (r *Registry) ThreadsOf(pid int64) []*Thread {
	var out []*Thread
	for _, p := range r.order {
		if p.Pid == pid {
			out = append(out, r.threads[p])
		}
	}
	return out
}

// Pids returns every known process id, in first-seen order.
func (r *Registry) Pids() []int64 {
	seen := make(map[int64]bool)
	var out []int64
	for _, p := range r.order {
		if !seen[p.Pid] {
			seen[p.Pid] = true
			out = append(out, p.Pid)
		}
	}
	return out
}

// Inferior looks up a process record, adding a default one (wildcard-
// eligible) if it has never been seen.
func (r *Registry) Inferior(pid int64) *Inferior {
	inf, ok := r.inferiors[pid]
	if !ok {
		inf = &Inferior{Pid: pid, MayWildcardVcont: true}
		r.inferiors[pid] = inf
	}
	return inf
}

// AddInferior registers pid with an explicit wildcard-eligibility flag,
// e.g. false immediately after an attach whose child hasn't yet reported
// its first stop.
func (r *Registry) AddInferior(pid int64, mayWildcard bool) *Inferior {
	inf := &Inferior{Pid: pid, MayWildcardVcont: mayWildcard}
	r.inferiors[pid] = inf
	return inf
}

// RemoveInferior drops pid's record (and, per the data model's lifecycle
// note, every thread belonging to it).
func (r *Registry) RemoveInferior(pid int64) {
	delete(r.inferiors, pid)
	for _, p := range append([]notify.Ptid(nil), r.order...) {
		if p.Pid == pid {
			r.RemoveThread(p)
		}
	}
}

// Reset clears every thread and inferior, the "destruction unwinds all
// dependent inferiors" step of spec.md §3's Connection lifecycle.
func (r *Registry) Reset() {
	r.order = nil
	r.threads = make(map[notify.Ptid]*Thread)
	r.inferiors = make(map[int64]*Inferior)
}

// MarkAllNotResumed transitions every thread back to NotResumed, used in
// all-stop mode where a stop reported for any thread halts every thread
// (spec.md §4.4: "Every thread transitions back to NotResumed when a stop
// is reported for it (or, in all-stop, for any thread)").
func (r *Registry) MarkAllNotResumed() {
	for _, t := range r.threads {
		t.State = NotResumed
		t.Pending = PendingAction{}
	}
}
