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

// Package notify owns the asynchronous notification state machine and the
// stop-reply queue spec.md §3 and §4.6 describe: parsing '%Stop:' and
// 'T'/'S'/'W'/'X'/'N'/'w' replies into StopReply values, enforcing "at most
// one pending event per kind", and the FIFO backlog wait() drains from.
// Ptid lives here because every other core package that names a thread —
// internal/threadreg, internal/execctl, internal/remote — does so in
// terms of a notify.Ptid rather than a raw pointer,
// per spec.md §3's "the remote core holds back-references (process-id +
// lwp-id, never raw pointers)".
package notify

import (
	"fmt"
	"strconv"
	"strings"
)

// WildcardID is the ptid component value meaning "all" (-1 on the wire).
const WildcardID = -1

// Ptid identifies a thread within a (possibly multiprocess) session: a
// process id and an lwp/thread id, either of which may be WildcardID.
type Ptid struct {
	Pid int64
	Lwp int64
}

// IsProcessWildcard reports whether p addresses every thread of Pid
// (Lwp == WildcardID), the "wildcard action" the glossary defines.
func (p Ptid) IsProcessWildcard() bool { return p.Lwp == WildcardID }

// IsGlobalWildcard reports whether p addresses every thread of every
// process (no ptid at all is also a global wildcard; this is the form
// used when a ptid value must still be carried, e.g. inside a record).
func (p Ptid) IsGlobalWildcard() bool { return p.Pid == WildcardID && p.Lwp == WildcardID }

func (p Ptid) String() string {
	return fmt.Sprintf("p%s.%s", signedHex(p.Pid), signedHex(p.Lwp))
}

// Format renders p the way a vCont/Hc/qSupported-era packet expects it on
// the wire: "pPID.TID" when multiprocess is negotiated (even a wildcard
// still needs the 'p' form so the process half is unambiguous), or the
// bare "<tid-hex>" form spec.md §6's ptid grammar allows when it is not,
// per the glossary's "either <tid-hex> (no multiprocess) or pPID.TID".
func (p Ptid) Format(multiprocess bool) string {
	if multiprocess {
		return p.String()
	}
	return signedHex(p.Lwp)
}

func signedHex(v int64) string {
	if v == WildcardID {
		return "-1"
	}
	if v < 0 {
		return "-" + strconv.FormatInt(-v, 16)
	}
	return strconv.FormatInt(v, 16)
}

// ParsePtid parses either grammar form spec.md §6 allows. An s with no
// leading 'p' is a plain tid-hex and yields a Ptid with Pid left at 0.
func ParsePtid(s string) (Ptid, error) {
	if s == "" {
		return Ptid{}, fmt.Errorf("rsp: empty ptid")
	}
	if s[0] != 'p' {
		tid, err := parseSignedHex(s)
		if err != nil {
			return Ptid{}, fmt.Errorf("rsp: malformed ptid %q: %w", s, err)
		}
		return Ptid{Lwp: tid}, nil
	}
	pidStr, lwpStr, ok := strings.Cut(s[1:], ".")
	if !ok {
		return Ptid{}, fmt.Errorf("rsp: malformed ptid %q: missing '.'", s)
	}
	pid, err := parseSignedHex(pidStr)
	if err != nil {
		return Ptid{}, fmt.Errorf("rsp: malformed ptid %q: %w", s, err)
	}
	lwp, err := parseSignedHex(lwpStr)
	if err != nil {
		return Ptid{}, fmt.Errorf("rsp: malformed ptid %q: %w", s, err)
	}
	return Ptid{Pid: pid, Lwp: lwp}, nil
}

func parseSignedHex(s string) (int64, error) {
	if s == "-1" {
		return WildcardID, nil
	}
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
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
