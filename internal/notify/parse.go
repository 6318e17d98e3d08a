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

package notify

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// ParseStopReply decodes any of the six stop-reply headers spec.md §6's
// grammar allows. The exec+expedited-registers combination is permitted
// by this parser (spec.md §9's open question: the original silently
// drops the registers on the exec assumption; we keep them and let the
// caller decide — see DESIGN.md).
func ParseStopReply(body string) (StopReply, error) {
	if body == "" {
		return StopReply{}, fmt.Errorf("rsp: empty stop-reply")
	}
	switch body[0] {
	case 'T':
		return parseTReply(body)
	case 'S':
		return parseShortSignal(body, WaitStopped)
	case 'X':
		return parseShortSignal(body, WaitSignalled)
	case 'W':
		return parseShortExit(body, WaitExited)
	case 'N':
		return StopReply{Status: WaitStatus{Kind: WaitNoHistory}}, nil
	case 'w':
		return parseThreadExited(body)
	default:
		return StopReply{}, fmt.Errorf("rsp: unrecognized stop-reply header %q", body)
	}
}

func parseHexByte(s string) (int, error) {
	if len(s) != 2 {
		return 0, fmt.Errorf("rsp: expected 2 hex digits, got %q", s)
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return 0, err
	}
	return int(b[0]), nil
}

// parseShortSignal handles "S<hh>" and "X<hh>[;process:<pid>]".
func parseShortSignal(body string, kind WaitKind) (StopReply, error) {
	rest := body[1:]
	head, tail, hasFields := strings.Cut(rest, ";")
	sig, err := parseHexByte(head)
	if err != nil {
		return StopReply{}, err
	}
	sr := StopReply{Status: WaitStatus{Kind: kind, Signal: sig}}
	if hasFields {
		if err := applyWaitFields(&sr, tail); err != nil {
			return StopReply{}, err
		}
	}
	return sr, nil
}

// parseShortExit handles "W<hh>[;process:<pid>]".
func parseShortExit(body string, kind WaitKind) (StopReply, error) {
	rest := body[1:]
	head, tail, hasFields := strings.Cut(rest, ";")
	code, err := parseHexByte(head)
	if err != nil {
		return StopReply{}, err
	}
	sr := StopReply{Status: WaitStatus{Kind: kind, ExitCode: code}}
	if hasFields {
		if err := applyWaitFields(&sr, tail); err != nil {
			return StopReply{}, err
		}
	}
	return sr, nil
}

// applyWaitFields parses the limited "process:<pid>" field W/X replies may
// carry after the status byte.
func applyWaitFields(sr *StopReply, fields string) error {
	for _, f := range strings.Split(fields, ";") {
		if f == "" {
			continue
		}
		name, val, ok := strings.Cut(f, ":")
		if !ok || name != "process" {
			continue
		}
		pid, err := parseFieldSignedHex(val)
		if err != nil {
			return fmt.Errorf("rsp: malformed process field %q: %w", f, err)
		}
		sr.Status.Pid = pid
		sr.Status.HasPid = true
	}
	return nil
}

// parseThreadExited handles "w<status>;<ptid>".
func parseThreadExited(body string) (StopReply, error) {
	rest := body[1:]
	statusStr, ptidStr, ok := strings.Cut(rest, ";")
	if !ok {
		return StopReply{}, fmt.Errorf("rsp: malformed 'w' reply %q: missing ptid", body)
	}
	code, err := parseHexByte(statusStr)
	if err != nil {
		return StopReply{}, err
	}
	ptid, err := ParsePtid(ptidStr)
	if err != nil {
		return StopReply{}, err
	}
	return StopReply{
		Ptid:    ptid,
		HasPtid: true,
		Status:  WaitStatus{Kind: WaitThreadExited, ExitCode: code},
	}, nil
}

// parseTReply handles "T<hh>(;<field>)*".
func parseTReply(body string) (StopReply, error) {
	if len(body) < 3 {
		return StopReply{}, fmt.Errorf("rsp: malformed T-reply %q: too short", body)
	}
	sig, err := parseHexByte(body[1:3])
	if err != nil {
		return StopReply{}, fmt.Errorf("rsp: malformed T-reply signal: %w", err)
	}
	sr := StopReply{Status: WaitStatus{Kind: WaitStopped, Signal: sig}}

	for _, field := range strings.Split(body[3:], ";") {
		if field == "" {
			continue
		}
		if err := applyTField(&sr, field); err != nil {
			return StopReply{}, err
		}
	}
	return sr, nil
}

// applyTField applies one "name:value" (or bare "name:") T-reply field.
// Unknown fields are silently skipped per spec.md §4.6.
func applyTField(sr *StopReply, field string) error {
	name, val, hasVal := strings.Cut(field, ":")
	switch name {
	case "thread":
		ptid, err := ParsePtid(val)
		if err != nil {
			return fmt.Errorf("rsp: malformed thread field %q: %w", field, err)
		}
		sr.Ptid = ptid
		sr.HasPtid = true
	case "core":
		n, err := strconv.ParseInt(val, 16, 64)
		if err != nil {
			return fmt.Errorf("rsp: malformed core field %q: %w", field, err)
		}
		sr.Core = int(n)
		sr.HasCore = true
	case "watch", "rwatch", "awatch":
		addr, err := strconv.ParseUint(val, 16, 64)
		if err != nil {
			return fmt.Errorf("rsp: malformed %s field %q: %w", name, field, err)
		}
		sr.Reason = ReasonWatchpoint
		sr.WatchAddr = addr
		sr.HasWatchAddr = true
		switch name {
		case "watch":
			sr.Watch = WatchWrite
		case "rwatch":
			sr.Watch = WatchRead
		case "awatch":
			sr.Watch = WatchAccess
		}
	case "swbreak":
		sr.Reason = ReasonSWBreak
	case "hwbreak":
		sr.Reason = ReasonHWBreak
	case "library":
		sr.Library = true
		sr.Status.Kind = WaitLoaded
	case "replaylog":
		sr.ReplayLog = val
		if val == "end" {
			sr.Status.Kind = WaitNoHistory
		}
	case "fork":
		child, err := ParsePtid(val)
		if err != nil {
			return fmt.Errorf("rsp: malformed fork field %q: %w", field, err)
		}
		sr.Status.Kind = WaitForked
		sr.Status.Child = child
	case "vfork":
		child, err := ParsePtid(val)
		if err != nil {
			return fmt.Errorf("rsp: malformed vfork field %q: %w", field, err)
		}
		sr.Status.Kind = WaitVForked
		sr.Status.Child = child
	case "vforkdone":
		sr.VforkDone = true
	case "clone":
		child, err := ParsePtid(val)
		if err != nil {
			return fmt.Errorf("rsp: malformed clone field %q: %w", field, err)
		}
		sr.Status.Kind = WaitCloned
		sr.Status.Child = child
	case "create":
		sr.Create = true
		sr.Status.Kind = WaitThreadCreated
	case "exec":
		path, err := hexDecodeString(val)
		if err != nil {
			return fmt.Errorf("rsp: malformed exec field %q: %w", field, err)
		}
		sr.Status.Kind = WaitExecd
		sr.Status.ExecPath = path
		// spec.md §9's open question: expedited registers sent alongside
		// exec: are kept as given, whichever side of the exec field they
		// appear on; see DESIGN.md.
	case "syscall_entry":
		n, err := strconv.ParseInt(val, 16, 64)
		if err != nil {
			return fmt.Errorf("rsp: malformed syscall_entry field %q: %w", field, err)
		}
		sr.Status.Kind = WaitSyscallEntry
		sr.Status.SyscallNum = int(n)
	case "syscall_return":
		n, err := strconv.ParseInt(val, 16, 64)
		if err != nil {
			return fmt.Errorf("rsp: malformed syscall_return field %q: %w", field, err)
		}
		sr.Status.Kind = WaitSyscallReturn
		sr.Status.SyscallNum = int(n)
	default:
		if !hasVal {
			// Unrecognized bare flag field; ignore.
			return nil
		}
		if pnum, err := strconv.ParseInt(name, 16, 32); err == nil {
			// A register-number field is recorded as given, even in a
			// reply that also carries exec:; judging whether the values
			// still apply is left to the caller.
			bytes, err := hex.DecodeString(val)
			if err != nil {
				return fmt.Errorf("rsp: malformed register field %q: %w", field, err)
			}
			sr.Expedited = append(sr.Expedited, ExpeditedReg{Pnum: int(pnum), Bytes: bytes})
			return nil
		}
		// Truly unknown field; silently skipped per spec.md §4.6.
	}
	return nil
}

func hexDecodeString(s string) (string, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func parseFieldSignedHex(s string) (int64, error) {
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	if strings.HasPrefix(s, "p") {
		// A "process:pPID.-1"-shaped value; take the pid half.
		ptid, err := ParsePtid(s)
		if err != nil {
			return 0, err
		}
		return ptid.Pid, nil
	}
	v, err := strconv.ParseInt(s, 16, 64)
	if err != nil {
		return 0, err
	}
	if neg {
		v = -v
	}
	return v, nil
}
