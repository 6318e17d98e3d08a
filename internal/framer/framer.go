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

// Package framer turns a raw byte stream into RSP frames: $<payload>#<csum>
// with escape and run-length decoding, the +/- acknowledgement handshake,
// and inline notification recognition.
package framer

import (
	"bufio"
	"fmt"
	"io"
	"time"

	"github.com/rspcore/rspcore/internal/clock"
	"github.com/rspcore/rspcore/internal/metrics"
)

const (
	escapeByte = '}'
	escapeXor  = 0x20
	rleByte    = '*'

	frameStart        = '$'
	notificationStart = '%'
	frameEnd          = '#'
	ackByte           = '+'
	nackByte          = '-'

	// rleCountBase is the offset subtracted from a printable RLE count
	// byte: repeat-count = n - rleCountBase + 1.
	rleCountBase = 29

	maxRetransmits = 3

	initialBufferSize = 400
)

// CloseError is fatal: the transport is gone and every dependent inferior
// must be unwound.
type CloseError struct {
	Err error
}

func (e *CloseError) Error() string { return fmt.Sprintf("rsp: connection closed: %v", e.Err) }
func (e *CloseError) Unwrap() error { return e.Err }

// ProtocolError reports a malformed frame: bad checksum, illegal RLE
// expansion, or (from higher layers) a packet that violates an invariant.
// It does not necessarily kill the connection.
type ProtocolError struct {
	Msg string
}

func (e *ProtocolError) Error() string { return "rsp: protocol violation: " + e.Msg }

var errRetryBudgetExceeded = fmt.Errorf("retransmit budget exceeded")

// Frame is a received payload plus whether it arrived framed as a
// notification ('%...') rather than a normal reply ('$...').
type Frame struct {
	Payload        []byte
	IsNotification bool
}

type byteReader interface {
	io.Reader
	ReadByte() (byte, error)
}

func asByteReader(r io.Reader) byteReader {
	if br, ok := r.(byteReader); ok {
		return br
	}
	return bufio.NewReader(r)
}

// Framer owns the transport byte stream and implements the $...#cc framing,
// escape/RLE codec, and ack/retry handshake. It holds no protocol semantics
// above the frame boundary; a '%Stop:...' frame is handed back with
// IsNotification set and its payload unparsed.
type Framer struct {
	br byteReader
	w  io.Writer

	clock   clock.Clock
	metrics metrics.Handle

	noAck bool

	// AckTimeout bounds how long Send waits for a '+'/'-' response.
	// WatchdogTimeout, if non-zero, bounds a Receive issued with
	// forever=true (the all-stop "wait for the world to stop" read).
	AckTimeout      time.Duration
	WatchdogTimeout time.Duration

	recvBuf        []byte
	byteCh         chan byteOrErr
	onNotification func(payload []byte)
}

// New builds a Framer over a transport, using clk for timeouts and mh for
// packet/retransmit metrics. ackTimeout is the per-send acknowledgement
// deadline; pass 0 for no timeout.
func New(transport io.ReadWriter, clk clock.Clock, mh metrics.Handle, ackTimeout time.Duration) *Framer {
	if mh == nil {
		mh = metrics.NewNoopHandle()
	}
	f := &Framer{
		br:         asByteReader(transport),
		w:          transport,
		clock:      clk,
		metrics:    mh,
		AckTimeout: ackTimeout,
		recvBuf:    make([]byte, 0, initialBufferSize),
	}
	f.startPump()
	return f
}

// SetNoAckMode disables sending and expecting +/- acks, following a
// successful QStartNoAckMode negotiation. It cannot be undone.
func (f *Framer) SetNoAckMode() { f.noAck = true }

// NoAck reports whether acknowledgement framing has been disabled.
func (f *Framer) NoAck() bool { return f.noAck }
