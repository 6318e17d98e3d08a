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

	"github.com/rspcore/rspcore/internal/feature"
	"github.com/rspcore/rspcore/internal/packet"
)

// ReadMemory implements spec.md §4.3's 'm' read, windowing the request to
// ReadWindow(configured, negotiated-packet-size, g-packet-size) and
// issuing as many requests as needed to satisfy length, since a stub may
// legally return fewer bytes than asked (spec.md §4.3).
func (c *Connection) ReadMemory(ctx context.Context, addr uint64, length int) ([]byte, error) {
	window := packet.ReadWindow(c.cfg.HostIO.MemoryReadWindow, c.features.PacketSize, c.regs.GSize())
	out := make([]byte, 0, length)
	for len(out) < length {
		remaining := length - len(out)
		body := packet.BuildMemRead(addr+uint64(len(out)), remaining, window)
		reply, err := c.exec(ctx, body)
		if err != nil {
			return out, err
		}
		if rerr, ok := packet.ParseRemoteError(reply); ok {
			return out, rerr
		}
		chunk, err := packet.ParseMemReadReply(reply)
		if err != nil {
			return out, err
		}
		out = append(out, chunk...)
		if len(chunk) == 0 {
			break // stub has nothing more to give; avoid spinning forever
		}
	}
	return out, nil
}

// ReadTargetMemory satisfies hostio.MemAccess for the reverse Host I/O
// dispatcher, which needs to fetch a path or buffer the target passed by
// pointer.
func (c *Connection) ReadTargetMemory(addr uint64, length int) ([]byte, error) {
	return c.ReadMemory(context.Background(), addr, length)
}

// WriteMemory implements spec.md §4.3's write path: binary 'X' once the
// stub is known to support it (probed lazily, per spec.md §4.2), falling
// back to hex 'M' otherwise. Binary writes are planned into
// alignment-respecting chunks via internal/packet.PlanBinaryWrite.
func (c *Connection) WriteMemory(ctx context.Context, addr uint64, data []byte) error {
	if c.features.Forbidden(feature.KindBinaryWrite) || !c.binaryWriteKnownSupported(ctx) {
		return c.writeMemoryHex(ctx, addr, data)
	}
	for _, chunk := range packet.PlanBinaryWrite(addr, data, c.features.PacketSize) {
		reply, err := c.exec(ctx, string(packet.BuildMemWriteBinary(chunk)))
		if err != nil {
			return err
		}
		if err := packet.ParseWriteAck(reply); err != nil {
			return err
		}
	}
	return nil
}

// WriteTargetMemory satisfies hostio.MemAccess for the reverse dispatcher
// (e.g. delivering a pread's bytes back into the target's buffer).
func (c *Connection) WriteTargetMemory(addr uint64, data []byte) error {
	return c.WriteMemory(context.Background(), addr, data)
}

func (c *Connection) writeMemoryHex(ctx context.Context, addr uint64, data []byte) error {
	reply, err := c.exec(ctx, packet.BuildMemWriteHex(addr, data))
	if err != nil {
		return err
	}
	return packet.ParseWriteAck(reply)
}

// binaryWriteKnownSupported probes 'X' support once (a zero-length write),
// per spec.md §4.3's "probe lazily with a zero-length X write", caching
// the result in the feature registry like any other lazily-probed kind.
func (c *Connection) binaryWriteKnownSupported(ctx context.Context) bool {
	k := feature.KindBinaryWrite
	if c.features.Known(k) {
		return c.features.Effective(k)
	}
	reply, err := c.exec(ctx, packet.BuildMemWriteBinaryProbe(0))
	if err != nil {
		return false
	}
	outcome := feature.ProbeWellFormed
	if reply == "" {
		outcome = feature.ProbeEmpty
	} else if _, ok := packet.ParseRemoteError(reply); ok {
		outcome = feature.ProbeRemoteError
	}
	_ = c.features.ApplyProbe(k, outcome)
	return c.features.Effective(k)
}
