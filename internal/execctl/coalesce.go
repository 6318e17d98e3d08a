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

package execctl

import (
	"github.com/rspcore/rspcore/internal/notify"
	"github.com/rspcore/rspcore/internal/threadreg"
)

// RangeStepRequest optionally accompanies a pending step action.
type RangeStepRequest struct {
	Start, End uint64
}

// CoalesceOptions configures BuildNonStopCommit with the collaborators and
// knobs spec.md §4.4 names: whether range stepping is enabled at all (the
// user override, independent of whether the stub advertises 'r'), and
// whether the stub advertises vCont's range-step action.
type CoalesceOptions struct {
	Multiprocess       bool
	RangeStepAvailable bool // stub advertised the 'r' vCont action
	RangeStepEnabled   bool // user enabled range stepping
	PacketSize         int  // 0 = unbounded
	// HasPendingEvent reports whether ptid already has an acknowledged or
	// in-flight stop-reply event the core hasn't delivered yet — used by
	// rule 3 ("no pending event would be incorrectly resumed") to veto
	// the global wildcard.
	HasPendingEvent func(ptid notify.Ptid) bool
}

// BuildNonStopCommit applies spec.md §4.4's narrowest-to-widest rules to
// every thread currently ResumedPendingVcont in reg, returning the vCont
// packet bodies to send. It does not mutate reg or the transport; the
// caller sends the packets and, on success, calls
// threadreg.Registry.CommitNonStop (or equivalent) to transition the
// resumed threads.
func BuildNonStopCommit(reg *threadreg.Registry, opts CoalesceOptions) []string {
	var actions []Action
	wildcardCandidates := make(map[int64]bool)

	for _, t := range reg.Threads() {
		if t.State != threadreg.ResumedPendingVcont {
			continue
		}
		inf := reg.Inferior(t.Ptid.Pid)
		nonTrivial := t.Pending.Step || t.Pending.Signal != 0 || !inf.MayWildcardVcont || t.HasPendingChildEvent
		if nonTrivial {
			actions = append(actions, pendingToAction(t, opts))
			continue
		}
		if _, seen := wildcardCandidates[t.Ptid.Pid]; !seen {
			wildcardCandidates[t.Ptid.Pid] = true
		}
	}

	// Rule 2: a process is wildcard-eligible iff none of its threads are
	// NotResumed and none have a pending child event. We re-derive
	// eligibility per pid rather than trusting wildcardCandidates alone,
	// since a pid might have zero trivial threads (all went through the
	// explicit-action branch above) yet still be eligible for an empty
	// no-op wildcard, which we simply skip emitting.
	eligible := make(map[int64]bool)
	for _, pid := range reg.Pids() {
		eligible[pid] = processWildcardEligible(reg, pid)
	}

	var trivialPids []int64
	for pid := range wildcardCandidates {
		if eligible[pid] {
			trivialPids = append(trivialPids, pid)
		} else {
			// Eligibility was violated by something outside this pid's
			// trivial-thread set (e.g. a sibling thread is NotResumed);
			// those threads need explicit actions after all.
			for _, t := range reg.ThreadsOf(pid) {
				if t.State == threadreg.ResumedPendingVcont {
					actions = append(actions, pendingToAction(t, opts))
				}
			}
		}
	}

	// Rule 3: the global wildcard applies only if *every* known process
	// is wildcard-eligible, no pending event would be incorrectly
	// resumed, and — matching the narrowest-first ordering — nothing in
	// this commit already needed its own per-thread action. A packet
	// that mixes an explicit thread action with a bare global wildcard
	// would be equivalent on the wire, but this implementation (like the
	// gdbserver client it is modeled on) only ever reaches for the
	// global form when every process is uniformly trivial.
	allEligible := len(reg.Pids()) > 0
	for _, pid := range reg.Pids() {
		if !eligible[pid] {
			allEligible = false
			break
		}
	}
	noPendingEventRisk := true
	if opts.HasPendingEvent != nil {
		for _, t := range reg.Threads() {
			if opts.HasPendingEvent(t.Ptid) {
				noPendingEventRisk = false
				break
			}
		}
	}

	useGlobalWildcard := len(actions) == 0 && allEligible && noPendingEventRisk && len(reg.Pids()) > 0
	if useGlobalWildcard {
		actions = append(actions, Action{Kind: ActionContinue, Global: true})
	} else {
		for _, pid := range trivialPids {
			actions = append(actions, Action{
				Kind: ActionContinue,
				Ptid: notify.Ptid{Pid: pid, Lwp: notify.WildcardID},
			})
		}
	}

	return BuildVContPackets(actions, opts.Multiprocess, opts.PacketSize)
}

func processWildcardEligible(reg *threadreg.Registry, pid int64) bool {
	for _, t := range reg.ThreadsOf(pid) {
		if t.State == threadreg.NotResumed {
			return false
		}
		if t.HasPendingChildEvent {
			return false
		}
	}
	return true
}

func pendingToAction(t *threadreg.Thread, opts CoalesceOptions) Action {
	p := t.Pending
	switch {
	case p.Step && p.RangeStep && opts.RangeStepAvailable && opts.RangeStepEnabled && t.Ptid.Lwp != notify.WildcardID:
		return Action{Kind: ActionRangeStep, Ptid: t.Ptid, RangeStart: p.RangeStart, RangeEnd: p.RangeEnd}
	case p.Step && p.Signal != 0:
		return Action{Kind: ActionStepSig, Ptid: t.Ptid, Signal: p.Signal}
	case p.Step:
		return Action{Kind: ActionStep, Ptid: t.Ptid}
	case p.Signal != 0:
		return Action{Kind: ActionContinueSig, Ptid: t.Ptid, Signal: p.Signal}
	default:
		return Action{Kind: ActionContinue, Ptid: t.Ptid}
	}
}

// CommitApplied transitions every ResumedPendingVcont thread to Resumed
// after a non-stop commit's packets have all been acknowledged, per
// spec.md §4.4: "After a successful commit, every ResumedPendingVcont
// thread transitions to Resumed."
func CommitApplied(reg *threadreg.Registry) {
	for _, t := range reg.Threads() {
		if t.State == threadreg.ResumedPendingVcont {
			t.State = threadreg.Resumed
			t.Pending = threadreg.PendingAction{}
		}
	}
}
