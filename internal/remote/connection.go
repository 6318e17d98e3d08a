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

// Package remote assembles the Framer, Feature registry, Packet engine,
// Execution controller, Notification queue, Thread/Inferior registry, and
// Host I/O sub-protocol (spec.md §2's component list) into the single
// Connection spec.md §1 describes: one RSP session to one stub, driven
// from a single goroutine per spec.md §5's cooperative-scheduling model.
package remote

import (
	"context"
	"io"

	"github.com/rs/xid"

	"github.com/rspcore/rspcore/cfg"
	"github.com/rspcore/rspcore/internal/clock"
	"github.com/rspcore/rspcore/internal/execctl"
	"github.com/rspcore/rspcore/internal/feature"
	"github.com/rspcore/rspcore/internal/framer"
	"github.com/rspcore/rspcore/internal/hostio"
	"github.com/rspcore/rspcore/internal/logger"
	"github.com/rspcore/rspcore/internal/metrics"
	"github.com/rspcore/rspcore/internal/notify"
	"github.com/rspcore/rspcore/internal/regtable"
	"github.com/rspcore/rspcore/internal/threadreg"
)

// Connection is one open session to a stub: the Framer plus every
// protocol-layer collaborator spec.md §2 lists, wired together the way
// spec.md §5 requires (single cooperative context, no locking).
type Connection struct {
	cfg       cfg.Config
	transport io.Writer
	framer    *framer.Framer
	clock     clock.Clock
	metrics   metrics.Handle

	features  *feature.Registry
	regs      *regtable.Table
	threads   *threadreg.Registry
	notifs    *notify.Queue
	readahead *hostio.ReadaheadCache

	ctrlc ctrlcState

	nonStop          bool
	multiprocess     bool
	reverseExecution bool

	lastSetfsPid    int64
	haveSentSetfs   bool
	reverseDispatch *hostio.Dispatcher

	// draining is set while a vStopped drain loop is in flight, to avoid
	// re-entering it from within Wait's own notification handling.
	draining bool

	// OnConsoleOutput, if set, receives each 'O' frame's decoded text
	// observed while Wait is blocked (spec.md §4.6).
	OnConsoleOutput func(string)

	// sessionID tags every log line this Connection emits, so an
	// interleaved log of several connections (or of one connection's
	// concurrent vFile traffic) can be attributed back to its session.
	sessionID string
}

// SessionID returns the xid tagging every log line this Connection emits.
func (c *Connection) SessionID() string { return c.sessionID }

// New builds a Connection over transport without performing any
// handshake; call Open to negotiate qSupported and the ack/non-stop
// modes per spec.md §4.1/§4.2.
func New(transport io.ReadWriter, c cfg.Config, clk clock.Clock, mh metrics.Handle, specs []regtable.Spec) *Connection {
	if mh == nil {
		mh = metrics.NewNoopHandle()
	}
	conn := &Connection{
		cfg:       c,
		transport: transport,
		clock:     clk,
		metrics:   mh,
		features:  feature.New(),
		regs:      regtable.New(specs),
		threads:   threadreg.New(),
		notifs:    notify.New(),
		readahead: hostio.NewReadaheadCache(),
		sessionID: xid.New().String(),
	}
	conn.framer = framer.New(transport, clk, mh, c.Connection.PacketTimeout)
	conn.framer.WatchdogTimeout = c.Connection.WatchdogTimeout
	conn.framer.SetNotificationHook(conn.onNotification)
	conn.reverseDispatch = hostio.NewDispatcher(conn)
	for _, tok := range c.Connection.ForcedPacketOverride {
		applyForcedPacketOverride(conn.features, tok)
	}
	return conn
}

// execctlOptions snapshots the coalesce knobs execctl needs, reflecting
// the current feature-negotiation and config state.
func (c *Connection) execctlOptions() execctl.CoalesceOptions {
	return execctl.CoalesceOptions{
		Multiprocess:       c.multiprocess,
		RangeStepAvailable: c.features.Effective(feature.KindVContActionRangeStep),
		RangeStepEnabled:   c.cfg.Execution.RangeStepping,
		PacketSize:         c.features.PacketSize,
		HasPendingEvent: func(ptid notify.Ptid) bool {
			return c.notifs.HasPending(notify.KindStop)
		},
	}
}

// exec sends one packet and returns the first non-notification reply,
// routing any notification frames encountered along the way into the
// notification queue exactly as onNotification would (Receive, unlike
// Send, delivers notifications as its own return value rather than
// through the hook — see internal/framer/receive.go).
func (c *Connection) exec(ctx context.Context, body string) (string, error) {
	if err := c.framer.Send(ctx, []byte(body)); err != nil {
		return "", err
	}
	for {
		frame, err := c.framer.Receive(false)
		if err != nil {
			return "", err
		}
		if frame.IsNotification {
			c.onNotification(frame.Payload)
			continue
		}
		reply := string(frame.Payload)
		if !c.draining && !c.nonStop {
			// All-stop's own stop reply never arrives through exec (see
			// sendAsync/waitAllStop); only non-stop's %Stop notifications
			// need draining at this safe point (spec.md §4.6).
			return reply, nil
		}
		if err := c.drainIfPending(ctx); err != nil {
			return reply, err
		}
		return reply, nil
	}
}

// onNotification parses a '%Stop:...' payload and stores it in the
// notification queue's single in-flight slot, per spec.md §4.6. A
// malformed notification is logged and dropped rather than treated as
// fatal: spec.md's framer layer already guarantees frame integrity, so a
// parse failure here means the payload grammar itself was unrecognized.
func (c *Connection) onNotification(payload []byte) {
	body := string(payload)
	const prefix = "Stop:"
	if len(body) < len(prefix) || body[:len(prefix)] != prefix {
		logger.Warnf("rsp[%s]: unrecognized notification payload %q", c.sessionID, body)
		return
	}
	sr, err := notify.ParseStopReply(body[len(prefix):])
	if err != nil {
		logger.Warnf("rsp[%s]: malformed stop notification: %v", c.sessionID, err)
		return
	}
	if err := c.notifs.SetPending(notify.KindStop, sr); err != nil {
		logger.Warnf("rsp[%s]: %v", c.sessionID, err)
	}
}

// Close releases the transport-independent resources the Connection
// holds. The transport itself is owned and closed by the caller.
func (c *Connection) Close() error {
	return nil
}

func applyForcedPacketOverride(reg *feature.Registry, tok string) {
	name, state, ok := splitForcedPacketTokenLocal(tok)
	if !ok {
		return
	}
	k, known := feature.KindByName(name)
	if !known {
		return
	}
	if state == "on" {
		reg.SetOverride(k, feature.OverrideOn)
	} else {
		reg.SetOverride(k, feature.OverrideOff)
	}
}

func splitForcedPacketTokenLocal(tok string) (name, state string, ok bool) {
	for i := len(tok) - 1; i >= 0; i-- {
		if tok[i] == '=' {
			return tok[:i], tok[i+1:], true
		}
	}
	return "", "", false
}
