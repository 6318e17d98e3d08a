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

package remote

import (
	"context"

	"github.com/rspcore/rspcore/internal/execctl"
	"github.com/rspcore/rspcore/internal/feature"
	"github.com/rspcore/rspcore/internal/logger"
	"github.com/rspcore/rspcore/internal/notify"
	"github.com/rspcore/rspcore/internal/packet"
	"github.com/rspcore/rspcore/internal/threadreg"
)

// ResumeRequest is one caller's continue/step request, independent of
// all-stop/non-stop mode (spec.md §4.4).
type ResumeRequest struct {
	Ptid     notify.Ptid
	Step     bool
	Signal   int
	HasRange bool
	Range    execctl.RangeStepRequest
}

// Resume applies req. In non-stop mode this only records the pending
// action on the target thread (spec.md §4.4's "a resume request does not
// touch the wire"); the caller commits it later via CommitNonStop, batched
// with every other thread's pending action. In all-stop mode this always
// issues the resume immediately, since only one thread group may be
// running at a time.
func (c *Connection) Resume(ctx context.Context, req ResumeRequest) error {
	if c.reverseExecution {
		return c.resumeReverse(ctx, req)
	}
	if c.nonStop {
		t, ok := c.threads.Thread(req.Ptid)
		if !ok {
			t = c.threads.AddThread(req.Ptid)
		}
		var rng *execctl.RangeStepRequest
		if req.HasRange {
			rng = &req.Range
		}
		execctl.Resume(t, req.Step, req.Signal, rng)
		return nil
	}

	vcont, hc, legacy := execctl.AllStopResume(
		req.Ptid, req.Range, req.HasRange, req.Step, req.Signal,
		c.execctlOptions(), c.features.Effective(feature.KindVContSupported))
	c.threads.MarkAllNotResumed()
	if vcont != "" {
		// The reply to an all-stop resume IS the eventual stop-reply
		// frame, not a synchronous ack; Wait reads it with a forever
		// receive, so the resume itself only writes the frame.
		return c.sendAsync(ctx, vcont)
	}
	if hc != "" {
		// Hc (thread selector) is itself acked with "OK"; only the
		// subsequent legacy resume body's reply is the eventual stop.
		if err := c.sendAndAck(ctx, hc); err != nil {
			return err
		}
	}
	return c.sendAsync(ctx, legacy)
}

// resumeReverse implements spec.md §4.4's last paragraph: reverse
// execution disables vCont entirely, drops range-step/signal requests
// with a warning, and only ever issues bs/bc.
func (c *Connection) resumeReverse(ctx context.Context, req ResumeRequest) error {
	if req.HasRange || req.Signal != 0 {
		// Dropped per spec.md §4.4: reverse mode has no way to carry
		// either a range or a signal on the wire.
		logger.Warnf("rsp[%s]: reverse execution drops range-step and signal requests", c.sessionID)
	}
	if req.Step {
		return c.sendAsync(ctx, execctl.BuildReverseStep())
	}
	return c.sendAsync(ctx, execctl.BuildReverseContinue())
}

// CommitNonStop flushes every ResumedPendingVcont thread's action as one
// or more vCont packets, per spec.md §4.4's narrowest-to-widest coalescing
// rules, and transitions them to Resumed on success.
func (c *Connection) CommitNonStop(ctx context.Context) error {
	packets := execctl.BuildNonStopCommit(c.threads, c.execctlOptions())
	for _, p := range packets {
		// Non-stop vCont is acked "OK" immediately; the stops it causes
		// arrive later as %Stop notifications (spec.md §4.6).
		if err := c.sendAndAck(ctx, p); err != nil {
			return err
		}
	}
	execctl.CommitApplied(c.threads)
	return nil
}

// StopScope implements spec.md §4.5's non-stop "stop for a scope": it
// commits any pending-signal threads first (so the signal isn't lost),
// synthesizes a local stopped(0) for the rest, and sends the final
// vCont;t. Synthesized events are appended to the notification queue so
// Wait observes them uniformly.
func (c *Connection) StopScope(ctx context.Context, global bool, pid int64) error {
	plan := execctl.BuildStopForScope(c.threads, global, pid, c.execctlOptions())
	var commit []execctl.Action
	for _, t := range plan.CommitFirst {
		kind := execctl.ActionContinueSig
		if t.Pending.Step {
			kind = execctl.ActionStepSig
		}
		commit = append(commit, execctl.Action{Kind: kind, Ptid: t.Ptid, Signal: t.Pending.Signal})
	}
	if len(commit) > 0 {
		for _, p := range execctl.BuildVContPackets(commit, c.multiprocess, c.features.PacketSize) {
			if err := c.sendAndAck(ctx, p); err != nil {
				return err
			}
		}
	}
	for _, t := range plan.CommitFirst {
		t.State = threadreg.Resumed
	}
	for _, t := range plan.SynthesizeLocally {
		t.State = threadreg.Resumed
		c.notifs.Enqueue(notify.KindStop, execctl.SynthesizedStop(t))
	}
	return c.sendAndAck(ctx, plan.StopPacket)
}

// sendAndAck sends body and waits for its synchronous reply ("OK" or an
// "E..." remote error), discarding a well-formed reply body. Used for
// requests whose reply is a plain acknowledgement rather than the
// eventual stop event.
func (c *Connection) sendAndAck(ctx context.Context, body string) error {
	if body == "" {
		return nil
	}
	reply, err := c.exec(ctx, body)
	if err != nil {
		return err
	}
	if rerr, ok := packet.ParseRemoteError(reply); ok {
		return rerr
	}
	return nil
}

// sendAsync writes body on the wire without waiting for any reply: the
// reply to an all-stop resume (vCont/legacy c/s/C/S) is the eventual stop
// frame itself, consumed later by Wait's forever receive.
func (c *Connection) sendAsync(ctx context.Context, body string) error {
	if body == "" {
		return nil
	}
	return c.framer.Send(ctx, []byte(body))
}
