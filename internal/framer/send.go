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

package framer

import "context"

// SetNotificationHook installs fn, which is invoked, synchronously and
// from within Send, whenever
// a '%Stop:...' frame arrives while this Framer is waiting for an
// acknowledgement rather than a reply. Receive delivers notifications
// directly as its return value and never calls this hook; Send has no
// other way to surface one without abandoning its own ack wait. The
// Connection wires this to the notification queue's inbound parser.
func (f *Framer) SetNotificationHook(fn func(payload []byte)) {
	f.onNotification = fn
}

// Send transmits payload as a frame, retrying on '-' or ack timeout up to
// maxRetransmits times. A stray reply frame arriving instead of an ack is
// discarded (and acked, to keep the far end's own retry logic happy); a
// notification frame is routed to the notification hook and waiting
// continues.
func (f *Framer) Send(ctx context.Context, payload []byte) error {
	escaped := escapePayload(payload)
	frame := make([]byte, 0, len(escaped)+4)
	frame = append(frame, frameStart)
	frame = append(frame, escaped...)
	frame = append(frame, frameEnd)
	frame = appendHexByte(frame, checksum(escaped))

	for attempt := 0; attempt <= maxRetransmits; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if _, err := f.w.Write(frame); err != nil {
			return &CloseError{Err: err}
		}
		if f.noAck {
			return nil
		}

		acked, retry, err := f.awaitAck(ctx)
		if err != nil {
			return err
		}
		if acked {
			return nil
		}
		if retry {
			f.metrics.RetransmitCount(ctx, 1)
			continue
		}
	}
	return &CloseError{Err: errRetryBudgetExceeded}
}

// awaitAck waits for a single '+'/'-' byte, transparently absorbing any
// stray reply or notification frames that arrive first. acked=true means
// the send succeeded; retry=true (acked=false) means the caller should
// retransmit.
func (f *Framer) awaitAck(ctx context.Context) (acked, retry bool, err error) {
	for {
		b, err := f.nextByte(f.AckTimeout)
		if err != nil {
			if err == ErrTimeout {
				return false, true, nil
			}
			return false, false, &CloseError{Err: err}
		}
		switch b {
		case ackByte:
			return true, false, nil
		case nackByte:
			return false, true, nil
		case frameStart:
			if err := f.absorbStrayReply(); err != nil {
				return false, false, err
			}
		case notificationStart:
			if err := f.absorbNotification(); err != nil {
				return false, false, err
			}
		default:
			// Garbage byte between frames; ignore and keep waiting, the
			// way a stub that emits a stray newline is tolerated.
		}
	}
}

func (f *Framer) absorbStrayReply() error {
	raw, err := f.readFrameRaw(f.AckTimeout)
	if err != nil {
		return &CloseError{Err: err}
	}
	if _, err := f.readChecksum(f.AckTimeout); err != nil {
		return &CloseError{Err: err}
	}
	_ = raw
	if !f.noAck {
		f.writeAck(ackByte)
	}
	return nil
}

func (f *Framer) absorbNotification() error {
	raw, err := f.readFrameRaw(f.AckTimeout)
	if err != nil {
		return &CloseError{Err: err}
	}
	if _, err := f.readChecksum(f.AckTimeout); err != nil {
		return &CloseError{Err: err}
	}
	if !f.noAck {
		f.writeAck(ackByte)
	}
	payload, err := decodePayload(nil, raw)
	if err != nil {
		return nil
	}
	if f.onNotification != nil {
		f.onNotification(payload)
	}
	return nil
}

func appendHexByte(dst []byte, b byte) []byte {
	const hex = "0123456789abcdef"
	return append(dst, hex[b>>4], hex[b&0xf])
}
