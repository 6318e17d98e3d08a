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

import "context"

// NewNoopHandle returns a Handle whose methods do nothing, the default the
// core falls back to when no metrics backend has been configured.
func NewNoopHandle() Handle {
	return noopHandle{}
}

type noopHandle struct{}

func (noopHandle) PacketCount(context.Context, string, PacketDirection, int64) {}
func (noopHandle) PacketLatency(context.Context, string, float64)              {}
func (noopHandle) RetransmitCount(context.Context, int64)                      {}
func (noopHandle) VContActionCount(context.Context, string, int64)             {}
func (noopHandle) StopReplyQueueDepth(context.Context, int64)                  {}
func (noopHandle) HostIOOpCount(context.Context, string, int64)                {}
func (noopHandle) HostIOBytesCount(context.Context, string, int64)             {}
func (noopHandle) ReadaheadHitCount(context.Context, int64)                    {}
func (noopHandle) ReadaheadMissCount(context.Context, int64)                   {}
func (noopHandle) SocketHealth(context.Context, int64, int64, uint32, uint32)  {}
