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

// Package metrics instruments the RSP core: packet counts and latencies,
// retransmits, vCont action counts, stop-reply queue depth, and Host I/O
// traffic/readahead hit rate.
package metrics

import "context"

// PacketDirection annotates a packet-level measurement with which side
// originated the traffic.
type PacketDirection string

const (
	DirectionSent     PacketDirection = "sent"
	DirectionReceived PacketDirection = "received"
)

// Handle is the metrics surface the RSP core writes to. A nil Handle is
// never passed around; callers without a real backend get NewNoopHandle.
type Handle interface {
	// PacketCount increments the count of packets of the given name/direction.
	PacketCount(ctx context.Context, name string, dir PacketDirection, inc int64)
	// PacketLatency records the round-trip latency of a request/reply pair.
	PacketLatency(ctx context.Context, name string, seconds float64)
	// RetransmitCount increments the Framer's retransmit counter.
	RetransmitCount(ctx context.Context, inc int64)
	// VContActionCount increments the count of vCont actions of a given kind
	// ('s', 'S', 'c', 'C', 'r', or "wildcard"/"global-wildcard").
	VContActionCount(ctx context.Context, kind string, inc int64)
	// StopReplyQueueDepth records the stop-reply queue's depth after an
	// enqueue or dequeue.
	StopReplyQueueDepth(ctx context.Context, depth int64)
	// HostIOOpCount increments the count of vFile operations of a given kind.
	HostIOOpCount(ctx context.Context, op string, inc int64)
	// HostIOBytesCount increments bytes transferred by Host I/O pread/pwrite.
	HostIOBytesCount(ctx context.Context, op string, inc int64)
	// ReadaheadHitCount/ReadaheadMissCount instrument internal/hostio's cache.
	ReadaheadHitCount(ctx context.Context, inc int64)
	ReadaheadMissCount(ctx context.Context, inc int64)
	// SocketHealth records internal/sockstat's periodic TCP_INFO sample for
	// the transport's underlying socket: round-trip time and its variance
	// (microseconds), cumulative retransmit count, and the current
	// congestion window (segments).
	SocketHealth(ctx context.Context, rttMicros, rttVarMicros int64, retransmits, cwnd uint32)
}
