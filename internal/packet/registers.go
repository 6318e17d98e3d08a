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

package packet

import "fmt"

// RegisterValue is one register's decoded bytes, or Unavailable if the
// stub reported it with the 'x' marker (spec.md §4.3).
type RegisterValue struct {
	Bytes       []byte
	Unavailable bool
}

// BuildReadAllRegisters returns the 'g' request body.
func BuildReadAllRegisters() string { return "g" }

// ParseGReply decodes a 'g' reply into raw bytes plus a per-byte
// unavailability mask, matching the semantics DecodeHex already provides;
// a reply that truncates a register mid-way is detected by the caller
// (internal/remote), which knows register boundaries via internal/regtable
// and can compare against Entry.Offset+SizeBytes.
func ParseGReply(body string) (data []byte, unavailable []bool, err error) {
	return DecodeHex(body)
}

// BuildReadRegister returns the 'p<pnum>' request body.
func BuildReadRegister(pnum int) string { return fmt.Sprintf("p%x", pnum) }

// ParseRegisterReply decodes a 'p' (or expedited T-reply register field)
// reply into a RegisterValue. A reply consisting entirely of "xx" pairs
// means the register is unavailable; a mix of real and "xx" bytes within
// one register is itself a hard protocol error per spec.md §4.3's
// "a short reply that truncates a register mid-way is a hard error" —
// here applied at the single-register granularity.
func ParseRegisterReply(body string) (RegisterValue, error) {
	data, unavailable, err := DecodeHex(body)
	if err != nil {
		return RegisterValue{}, err
	}
	anyUnavailable, allUnavailable := false, true
	for _, u := range unavailable {
		if u {
			anyUnavailable = true
		} else {
			allUnavailable = false
		}
	}
	if anyUnavailable && !allUnavailable {
		return RegisterValue{}, &ProtocolError{Msg: "register reply mixed real and unavailable bytes"}
	}
	return RegisterValue{Bytes: data, Unavailable: allUnavailable && anyUnavailable}, nil
}

// BuildWriteRegister returns the 'P<pnum>=<hex>' request body.
func BuildWriteRegister(pnum int, value []byte) string {
	return fmt.Sprintf("P%x=%s", pnum, EncodeHex(value))
}

// BuildWriteAllRegisters returns the 'G<hex>' request body used as the
// fallback when per-register 'P' writes aren't supported: the caller
// (internal/remote) first reads the current 'g' value, splices in the
// registers being written, and passes the full resulting byte slice here.
func BuildWriteAllRegisters(full []byte) string {
	return fmt.Sprintf("G%s", EncodeHex(full))
}
