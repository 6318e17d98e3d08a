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

	"github.com/rspcore/rspcore/internal/logger"
	"github.com/rspcore/rspcore/internal/notify"
	"github.com/rspcore/rspcore/internal/packet"
)

// defaultConsoleSink discards console output when Connection.OnConsoleOutput
// is unset, matching spec.md §4.6's "displayed and ignored" for a caller
// that hasn't wired a display.
var defaultConsoleSink = func(string) {}

// Wait implements spec.md §4.6's wait(): in non-stop mode it first checks
// the notification queue for an event already matching ptid filter match,
// and otherwise blocks on the transport; in all-stop mode it always blocks
// for the single stop reply owed by the outstanding resume. Both modes
// service 'O' console output and 'F' reverse Host I/O inline without
// ending the wait.
func (c *Connection) Wait(ctx context.Context, match func(notify.StopReply) bool) (notify.StopReply, error) {
	if c.nonStop {
		return c.waitNonStop(ctx, match)
	}
	return c.waitAllStop(ctx)
}

func (c *Connection) waitNonStop(ctx context.Context, match func(notify.StopReply) bool) (notify.StopReply, error) {
	if match == nil {
		match = func(notify.StopReply) bool { return true }
	}
	if sr, ok := c.notifs.DequeueMatching(notify.KindStop, match); ok {
		return sr, nil
	}

	for {
		frame, err := c.framer.Receive(true)
		if err != nil {
			return notify.StopReply{}, err
		}
		if frame.IsNotification {
			c.onNotification(frame.Payload)
			if sr, ok := c.notifs.DequeueMatching(notify.KindStop, match); ok {
				return sr, nil
			}
			continue
		}
		if c.serviceInlineFrame(ctx, frame.Payload) {
			continue
		}
		// An ordinary (non-notification) frame that isn't O/F during a
		// non-stop wait has no defined meaning; log and keep waiting
		// rather than misinterpret it as the awaited event.
		logger.Warnf("rsp[%s]: unexpected frame during non-stop wait: %q", c.sessionID, frame.Payload)
	}
}

func (c *Connection) waitAllStop(ctx context.Context) (notify.StopReply, error) {
	for {
		frame, err := c.framer.Receive(true)
		if err != nil {
			return notify.StopReply{}, err
		}
		if frame.IsNotification {
			// Spec.md §4.6 scopes notifications to non-stop mode; a stub
			// that sends one in all-stop regardless is tolerated by
			// queuing it rather than treating it as the awaited stop.
			c.onNotification(frame.Payload)
			continue
		}
		if c.serviceInlineFrame(ctx, frame.Payload) {
			continue
		}
		sr, err := notify.ParseStopReply(string(frame.Payload))
		if err != nil {
			return notify.StopReply{}, err
		}
		c.AckInterrupt()
		return sr, nil
	}
}

// serviceInlineFrame handles a console-output or reverse Host I/O frame
// seen mid-wait, reporting whether it consumed the frame (true) or left
// it for the caller to interpret as the terminal stop reply (false).
func (c *Connection) serviceInlineFrame(ctx context.Context, body []byte) bool {
	if len(body) == 0 {
		return false
	}
	switch body[0] {
	case 'O':
		if text, err := decodeConsoleText(body[1:]); err == nil {
			c.consoleSink()(text)
		}
		return true
	case 'F':
		c.serviceReverseCall(ctx, body)
		return true
	default:
		return false
	}
}

func (c *Connection) consoleSink() func(string) {
	if c.OnConsoleOutput != nil {
		return c.OnConsoleOutput
	}
	return defaultConsoleSink
}

// serviceReverseCall dispatches one reverse Host I/O request arriving
// mid-wait and sends the reply, per spec.md §4.7's closing paragraph.
// A Ctrl-C observed while the call was in flight (ctrlc == pending) is
// folded into the reply's optional ",C" flag rather than requiring a
// separate round trip.
func (c *Connection) serviceReverseCall(ctx context.Context, body []byte) {
	observedCtrlC := c.ctrlc == ctrlcPending
	reply, err := c.reverseDispatch.Dispatch(body)
	if err != nil {
		logger.Warnf("rsp[%s]: malformed reverse Host I/O call: %v", c.sessionID, err)
		return
	}
	if observedCtrlC {
		reply += ",C"
		c.AckInterrupt()
	}
	if err := c.framer.Send(ctx, []byte(reply)); err != nil {
		logger.Warnf("rsp[%s]: failed to reply to reverse Host I/O call: %v", c.sessionID, err)
	}
}

// decodeConsoleText decodes an 'O' frame's hex-encoded console text.
func decodeConsoleText(hexBody []byte) (string, error) {
	data, _, err := packet.DecodeHex(string(hexBody))
	if err != nil {
		return "", err
	}
	return string(data), nil
}
