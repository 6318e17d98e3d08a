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
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rspcore/rspcore/cfg"
	"github.com/rspcore/rspcore/internal/clock"
	"github.com/rspcore/rspcore/internal/notify"
)

func newTestConnection(t *testing.T, transport *bytes.Buffer) *Connection {
	t.Helper()
	c := cfg.DefaultConfig()
	return New(transport, c, clock.RealClock{}, nil, nil)
}

func TestInterruptBytesForEachSequence(t *testing.T) {
	assert.Equal(t, []byte{0x03}, interruptBytes(cfg.InterruptCtrlC))
	assert.Equal(t, []byte{0x00}, interruptBytes(cfg.InterruptBreak))
	assert.Equal(t, []byte{0x00, 'g'}, interruptBytes(cfg.InterruptBreakG))
}

func TestInterruptAllStopSendsSequenceAndArmsPending(t *testing.T) {
	var transport bytes.Buffer
	conn := newTestConnection(t, &transport)

	require.NoError(t, conn.Interrupt(context.Background()))
	assert.Equal(t, ctrlcPending, conn.ctrlc)
	assert.Equal(t, []byte{0x03}, transport.Bytes())
}

func TestInterruptAllStopSuppressedWhenStopAlreadyQueued(t *testing.T) {
	var transport bytes.Buffer
	conn := newTestConnection(t, &transport)
	require.NoError(t, conn.notifs.SetPending(notify.KindStop, notify.StopReply{Reason: notify.ReasonSWBreak}))

	require.NoError(t, conn.Interrupt(context.Background()))
	assert.Equal(t, ctrlcNone, conn.ctrlc)
	assert.Empty(t, transport.Bytes(), "a redundant interrupt must not touch the wire")
}

func TestEscalateResendsSequenceAndMarksEscalate(t *testing.T) {
	var transport bytes.Buffer
	conn := newTestConnection(t, &transport)
	conn.ctrlc = ctrlcPending

	require.NoError(t, conn.Escalate(context.Background()))
	assert.Equal(t, ctrlcEscalate, conn.ctrlc)
	assert.Equal(t, []byte{0x03}, transport.Bytes())
}

func TestAckInterruptClearsState(t *testing.T) {
	var transport bytes.Buffer
	conn := newTestConnection(t, &transport)
	conn.ctrlc = ctrlcEscalate

	conn.AckInterrupt()
	assert.Equal(t, ctrlcNone, conn.ctrlc)
}
