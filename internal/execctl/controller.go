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

// AllStopResume decides what to put on the wire for an immediate all-stop
// resume request (spec.md §4.4's first paragraph). When vContAvailable is
// true it returns a single vCont packet body; otherwise it returns an
// Hc preamble followed by the legacy c/s/C/S body, both of which the
// caller must send as two separate packets in order.
func AllStopResume(ptid notify.Ptid, req RangeStepRequest, hasRange bool, step bool, signal int, opts CoalesceOptions, vContAvailable bool) (vcont string, hcPreamble string, legacy string) {
	if vContAvailable {
		a := Action{Kind: ActionContinue, Ptid: ptid}
		switch {
		case step && hasRange && opts.RangeStepAvailable && opts.RangeStepEnabled && ptid.Lwp != notify.WildcardID:
			a = Action{Kind: ActionRangeStep, Ptid: ptid, RangeStart: req.Start, RangeEnd: req.End}
		case step && signal != 0:
			a = Action{Kind: ActionStepSig, Ptid: ptid, Signal: signal}
		case step:
			a = Action{Kind: ActionStep, Ptid: ptid}
		case signal != 0:
			a = Action{Kind: ActionContinueSig, Ptid: ptid, Signal: signal}
		}
		packets := BuildVContPackets([]Action{a}, opts.Multiprocess, opts.PacketSize)
		if len(packets) > 0 {
			vcont = packets[0]
		}
		return vcont, "", ""
	}
	return "", BuildHcPreamble(ptid, opts.Multiprocess), BuildLegacyResume(step, signal)
}

// Resume records a non-stop resume request on t without touching the
// wire, per spec.md §4.4's second paragraph: "a resume request does not
// touch the wire: it only transitions the target thread to
// ResumedPendingVcont and records (step?, signal)."
func Resume(t *threadreg.Thread, step bool, signal int, rng *RangeStepRequest) {
	t.State = threadreg.ResumedPendingVcont
	t.Pending = threadreg.PendingAction{Step: step, Signal: signal}
	if rng != nil {
		t.Pending.RangeStep = true
		t.Pending.RangeStart = rng.Start
		t.Pending.RangeEnd = rng.End
	}
}

// VCtrlC returns the non-stop interrupt request body (spec.md §4.5:
// "Non-stop interrupt: emit vCtrlC; stub replies OK and will deliver a
// stop asynchronously").
func VCtrlC() string { return "vCtrlC" }

// StopForScopePlan is the three-part result of spec.md §4.5's non-stop
// "stop for a scope" algorithm: threads to commit immediately (because
// dropping their pending signal would lose it), threads whose stop can be
// synthesized locally with no wire traffic, and the vCont;t body to send
// last.
type StopForScopePlan struct {
	CommitFirst       []*threadreg.Thread
	SynthesizeLocally []*threadreg.Thread
	StopPacket        string
}

// BuildStopForScope implements spec.md §4.5's non-stop stop-for-a-scope
// rule. scope selects which threads are in play: pass a ptid with
// Lwp==WildcardID for a whole process, or the zero Ptid (Pid==0,
// Lwp==0... ambiguous with a real pid 0) is not used here — callers pass
// global=true for "every thread everywhere".
func BuildStopForScope(reg *threadreg.Registry, global bool, scopePid int64, opts CoalesceOptions) StopForScopePlan {
	var plan StopForScopePlan
	for _, t := range reg.Threads() {
		if !global && t.Ptid.Pid != scopePid {
			continue
		}
		if t.State != threadreg.ResumedPendingVcont {
			continue
		}
		if t.Pending.Signal != 0 {
			plan.CommitFirst = append(plan.CommitFirst, t)
		} else {
			plan.SynthesizeLocally = append(plan.SynthesizeLocally, t)
		}
	}

	var a Action
	if global {
		a = Action{Kind: ActionStopNonStop, Global: true}
	} else {
		a = Action{Kind: ActionStopNonStop, Ptid: notify.Ptid{Pid: scopePid, Lwp: notify.WildcardID}}
	}
	packets := BuildVContPackets([]Action{a}, opts.Multiprocess, opts.PacketSize)
	if len(packets) > 0 {
		plan.StopPacket = packets[0]
	}
	return plan
}

// SynthesizedStop builds the locally-fabricated stopped(0) reply for a
// thread in StopForScopePlan.SynthesizeLocally, per spec.md §4.5: "for
// threads pending-vcont with zero signal, synthesise a stopped(0) reply
// locally and enqueue it (no wire traffic needed)."
func SynthesizedStop(t *threadreg.Thread) notify.StopReply {
	return notify.StopReply{
		Ptid:    t.Ptid,
		HasPtid: true,
		Status:  notify.WaitStatus{Kind: notify.WaitStopped, Signal: 0},
	}
}
