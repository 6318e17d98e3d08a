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

package sockstat

import (
	"context"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rspcore/rspcore/internal/metrics"
)

type countingHandle struct {
	metrics.Handle
	calls int32
}

func (h *countingHandle) SocketHealth(context.Context, int64, int64, uint32, uint32) {
	atomic.AddInt32(&h.calls, 1)
}

func TestWrapSamplesTCPInfoPeriodically(t *testing.T) {
	orig := SampleInterval
	SampleInterval = 10 * time.Millisecond
	defer func() { SampleInterval = orig }()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	accepted := make(chan net.Conn, 1)
	go func() {
		c, err := ln.Accept()
		if err == nil {
			accepted <- c
		}
	}()

	clientConn, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	defer clientConn.Close()
	<-accepted

	h := &countingHandle{}
	wrapped := Wrap(clientConn.(*net.TCPConn), h)
	defer wrapped.Close()

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&h.calls) > 0
	}, time.Second, 5*time.Millisecond)
}

func TestWrapWithNilHandleDoesNotSample(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	accepted := make(chan net.Conn, 1)
	go func() {
		c, err := ln.Accept()
		if err == nil {
			accepted <- c
		}
	}()

	clientConn, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	defer clientConn.Close()
	<-accepted

	wrapped := Wrap(clientConn.(*net.TCPConn), nil)
	require.NoError(t, wrapped.Close())
}
