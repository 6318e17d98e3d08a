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
	"fmt"

	"github.com/rspcore/rspcore/internal/packet"
	"github.com/rspcore/rspcore/internal/regtable"
)

// ReadAllRegisters issues 'g' and, on the first reply, narrows
// internal/regtable's InG flags to match the stub's actual g-packet size
// (spec.md §4.3's "establish g-packet size from the first reply").
func (c *Connection) ReadAllRegisters(ctx context.Context) (map[int]packet.RegisterValue, error) {
	reply, err := c.exec(ctx, packet.BuildReadAllRegisters())
	if err != nil {
		return nil, err
	}
	if rerr, ok := packet.ParseRemoteError(reply); ok {
		return nil, rerr
	}
	data, unavailable, err := packet.ParseGReply(reply)
	if err != nil {
		return nil, err
	}
	if c.regs.GSize() == 0 {
		c.regs.EstablishGSize(len(data))
	}

	out := make(map[int]packet.RegisterValue)
	for _, e := range c.regs.InGEntries() {
		if e.Offset+e.SizeBytes > len(data) {
			return nil, fmt.Errorf("rsp: 'g' reply truncated register %s mid-way", e.Name)
		}
		rv := packet.RegisterValue{Bytes: data[e.Offset : e.Offset+e.SizeBytes]}
		rv.Unavailable, rv.Bytes = allUnavailable(unavailable[e.Offset:e.Offset+e.SizeBytes], rv.Bytes)
		out[e.InternalNum] = rv
	}
	return out, nil
}

func allUnavailable(mask []bool, data []byte) (bool, []byte) {
	for _, u := range mask {
		if !u {
			return false, data
		}
	}
	return true, data
}

// ReadRegister reads one register, falling back to a 'g'-reply lookup for
// registers the stub never exposes via 'p' (InG-only registers, spec.md
// §4.3's "not in g" fallback), and to 'p' otherwise.
func (c *Connection) ReadRegister(ctx context.Context, entry regtable.Entry) (packet.RegisterValue, error) {
	reply, err := c.exec(ctx, packet.BuildReadRegister(entry.ProtocolNum))
	if err != nil {
		return packet.RegisterValue{}, err
	}
	if rerr, ok := packet.ParseRemoteError(reply); ok {
		if !entry.InG {
			return packet.RegisterValue{}, rerr
		}
		return c.readRegisterFromG(ctx, entry)
	}
	if reply == "" {
		if entry.InG {
			return c.readRegisterFromG(ctx, entry)
		}
		return packet.RegisterValue{}, fmt.Errorf("rsp: register %s is not available via 'p' or 'g'", entry.Name)
	}
	return packet.ParseRegisterReply(reply)
}

func (c *Connection) readRegisterFromG(ctx context.Context, entry regtable.Entry) (packet.RegisterValue, error) {
	all, err := c.ReadAllRegisters(ctx)
	if err != nil {
		return packet.RegisterValue{}, err
	}
	rv, ok := all[entry.InternalNum]
	if !ok {
		return packet.RegisterValue{}, fmt.Errorf("rsp: register %s is neither in 'p' nor 'g'", entry.Name)
	}
	return rv, nil
}

// WriteRegister writes one register via 'P', falling back to a
// read-modify-write 'G' for a register that only lives in the g-packet.
func (c *Connection) WriteRegister(ctx context.Context, entry regtable.Entry, value []byte) error {
	reply, err := c.exec(ctx, packet.BuildWriteRegister(entry.ProtocolNum, value))
	if err != nil {
		return err
	}
	if reply == "" && entry.InG {
		return c.writeRegisterViaG(ctx, entry, value)
	}
	return packet.ParseWriteAck(reply)
}

func (c *Connection) writeRegisterViaG(ctx context.Context, entry regtable.Entry, value []byte) error {
	greply, err := c.exec(ctx, packet.BuildReadAllRegisters())
	if err != nil {
		return err
	}
	data, _, err := packet.ParseGReply(greply)
	if err != nil {
		return err
	}
	if entry.Offset+len(value) > len(data) {
		return fmt.Errorf("rsp: register %s does not fit in the current g-packet", entry.Name)
	}
	full := make([]byte, len(data))
	copy(full, data)
	copy(full[entry.Offset:], value)

	reply, err := c.exec(ctx, packet.BuildWriteAllRegisters(full))
	if err != nil {
		return err
	}
	return packet.ParseWriteAck(reply)
}
