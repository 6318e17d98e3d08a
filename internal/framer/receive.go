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

import (
	"errors"
	"fmt"
	"io"
	"time"
)

// ErrTimeout is returned by Receive when no frame arrived within the
// configured packet timeout. It is not fatal by itself; only a watchdog
// timeout during a forever=true wait is escalated to a CloseError.
var ErrTimeout = errors.New("rsp: read timeout")

// Receive reads the next frame, honoring escape/RLE decoding and the
// checksum handshake. If forever is true the read is unbounded unless
// WatchdogTimeout is set, matching the all-stop "wait for the world to
// stop" suspension point.
func (f *Framer) Receive(forever bool) (Frame, error) {
	timeout := f.AckTimeout
	if forever {
		timeout = f.WatchdogTimeout
	}

	for attempt := 0; attempt <= maxRetransmits; attempt++ {
		isNotif, err := f.skipToStart(timeout)
		if err != nil {
			return Frame{}, f.wrapReadErr(err, forever)
		}

		raw, err := f.readFrameRaw(timeout)
		if err != nil {
			return Frame{}, f.wrapReadErr(err, forever)
		}

		want, err := f.readChecksum(timeout)
		if err != nil {
			return Frame{}, f.wrapReadErr(err, forever)
		}

		if want != checksum(raw) {
			if !f.noAck {
				f.writeAck(nackByte)
			}
			continue
		}

		payload, err := decodePayload(f.recvBuf[:0], raw)
		if err != nil {
			if !f.noAck {
				f.writeAck(nackByte)
			}
			continue
		}
		f.recvBuf = payload

		if !f.noAck {
			f.writeAck(ackByte)
		}
		return Frame{Payload: payload, IsNotification: isNotif}, nil
	}
	return Frame{}, &CloseError{Err: fmt.Errorf("checksum retry budget exceeded")}
}

// skipToStart discards bytes until a '$' (normal reply) or '%'
// (notification) is seen, and reports which one it found.
func (f *Framer) skipToStart(timeout time.Duration) (isNotif bool, err error) {
	for {
		b, err := f.nextByte(timeout)
		if err != nil {
			return false, err
		}
		switch b {
		case frameStart:
			return false, nil
		case notificationStart:
			return true, nil
		}
	}
}

// readFrameRaw collects the still-escaped wire bytes between the frame
// start and the terminating unescaped '#'.
func (f *Framer) readFrameRaw(timeout time.Duration) ([]byte, error) {
	var raw []byte
	for {
		b, err := f.nextByte(timeout)
		if err != nil {
			return nil, err
		}
		if b == escapeByte {
			b2, err := f.nextByte(timeout)
			if err != nil {
				return nil, err
			}
			raw = append(raw, b, b2)
			continue
		}
		if b == frameEnd {
			return raw, nil
		}
		raw = append(raw, b)
	}
}

func (f *Framer) readChecksum(timeout time.Duration) (byte, error) {
	hi, err := f.nextByte(timeout)
	if err != nil {
		return 0, err
	}
	lo, err := f.nextByte(timeout)
	if err != nil {
		return 0, err
	}
	hiV, ok1 := hexVal(hi)
	loV, ok2 := hexVal(lo)
	if !ok1 || !ok2 {
		return 0, &ProtocolError{Msg: fmt.Sprintf("invalid checksum digits %q%q", hi, lo)}
	}
	return hiV<<4 | loV, nil
}

func hexVal(b byte) (byte, bool) {
	switch {
	case b >= '0' && b <= '9':
		return b - '0', true
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10, true
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10, true
	default:
		return 0, false
	}
}

func (f *Framer) writeAck(b byte) {
	_, _ = f.w.Write([]byte{b})
}

// wrapReadErr converts a transport-level failure into the fatal CloseError
// the rest of the core expects to see; a bare ErrTimeout during an
// ordinary (non-forever) wait passes through unchanged since the caller
// may legitimately retry at a higher level.
func (f *Framer) wrapReadErr(err error, forever bool) error {
	if errors.Is(err, ErrTimeout) {
		if forever && f.WatchdogTimeout > 0 {
			return &CloseError{Err: fmt.Errorf("watchdog timeout: %w", err)}
		}
		return err
	}
	if errors.Is(err, io.EOF) {
		return &CloseError{Err: err}
	}
	return &CloseError{Err: err}
}
