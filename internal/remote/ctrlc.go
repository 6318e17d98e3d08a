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

	"github.com/rspcore/rspcore/cfg"
	"github.com/rspcore/rspcore/internal/execctl"
	"github.com/rspcore/rspcore/internal/notify"
)

// ctrlcState is spec.md §9's design note: a single {None, Pending, Sent,
// Escalate} state machine in place of the source's two independent
// booleans (ctrlc-pending and ctrlc-sent), which could disagree with each
// other in ways the original left unvalidated.
type ctrlcState int

const (
	ctrlcNone ctrlcState = iota
	ctrlcPending
	ctrlcSent
	ctrlcEscalate
)

// Interrupt implements spec.md §4.5's interrupt request: in non-stop mode
// it is a simple vCtrlC round trip; in all-stop mode it writes the
// configured interrupt sequence directly on the transport and arms
// ctrlc-pending, unless a stop reply is already queued (the interrupt is
// then redundant and is suppressed).
func (c *Connection) Interrupt(ctx context.Context) error {
	if c.nonStop {
		reply, err := c.exec(ctx, execctl.VCtrlC())
		if err != nil {
			return err
		}
		if reply != "OK" {
			return &UnexpectedReplyError{Request: "vCtrlC", Reply: reply}
		}
		c.ctrlc = ctrlcSent
		return nil
	}

	if c.notifs.HasPending(notify.KindStop) {
		return nil
	}
	return c.sendInterruptSequence(ctx)
}

// Escalate is called when an all-stop interrupt has not produced a stop
// within the configured deadline: it re-sends the interrupt sequence and
// marks the state Escalate so a caller can decide to give up after a
// second failure.
func (c *Connection) Escalate(ctx context.Context) error {
	if err := c.sendInterruptSequence(ctx); err != nil {
		return err
	}
	c.ctrlc = ctrlcEscalate
	return nil
}

// AckInterrupt clears the pending/escalate state once a stop reply
// attributable to the interrupt has been observed.
func (c *Connection) AckInterrupt() {
	c.ctrlc = ctrlcNone
}

func (c *Connection) sendInterruptSequence(ctx context.Context) error {
	seq := interruptBytes(c.cfg.Connection.InterruptSequence)
	if _, err := c.transport.Write(seq); err != nil {
		return err
	}
	c.ctrlc = ctrlcPending
	return nil
}

// interruptBytes renders the raw (unframed) byte sequence for one of
// cfg.ConnectionConfig.InterruptSequence's choices: the traditional Ctrl-C
// byte, a serial BREAK, or BREAK followed by 'g' (spec.md §4.5's first
// paragraph). BREAK itself is a transport-level line condition rather than
// a byte value; callers using a transport that can't express it (e.g. a
// plain TCP socket) should configure ctrl-c instead. Here it is rendered
// as the conventional 0x00 placeholder byte some stub implementations
// accept in its place over byte-oriented transports.
func interruptBytes(seq string) []byte {
	switch seq {
	case cfg.InterruptBreak:
		return []byte{0x00}
	case cfg.InterruptBreakG:
		return []byte{0x00, 'g'}
	default: // cfg.InterruptCtrlC
		return []byte{0x03}
	}
}
