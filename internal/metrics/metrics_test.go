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

package metrics

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopHandleAcceptsAllCalls(t *testing.T) {
	ctx := context.Background()
	h := NewNoopHandle()

	assert.NotPanics(t, func() {
		h.PacketCount(ctx, "m", DirectionSent, 1)
		h.PacketLatency(ctx, "m", 0.01)
		h.RetransmitCount(ctx, 1)
		h.VContActionCount(ctx, "s", 1)
		h.StopReplyQueueDepth(ctx, 3)
		h.HostIOOpCount(ctx, "pread", 1)
		h.HostIOBytesCount(ctx, "pread", 512)
		h.ReadaheadHitCount(ctx, 1)
		h.ReadaheadMissCount(ctx, 1)
		h.SocketHealth(ctx, 1000, 200, 0, 10)
	})
}

func TestNewOTelHandleRegistersInstrumentsAndServesMetrics(t *testing.T) {
	h, mux, err := NewOTelHandle()
	require.NoError(t, err)
	require.NotNil(t, h)
	require.NotNil(t, mux)

	ctx := context.Background()
	h.PacketCount(ctx, "m", DirectionSent, 1)
	h.PacketCount(ctx, "m", DirectionReceived, 2)
	h.PacketLatency(ctx, "m", 0.005)
	h.RetransmitCount(ctx, 1)
	h.VContActionCount(ctx, "wildcard", 1)
	h.StopReplyQueueDepth(ctx, 2)
	h.HostIOOpCount(ctx, "pwrite", 1)
	h.HostIOBytesCount(ctx, "pwrite", 4096)
	h.ReadaheadHitCount(ctx, 5)
	h.ReadaheadMissCount(ctx, 1)

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "rsp_packet_count")
}

func TestAttrSetCachesByKey(t *testing.T) {
	a := attrSet(&packetAttrSets, "dedup-key")
	b := attrSet(&packetAttrSets, "dedup-key")
	assert.Equal(t, a, b)
}
