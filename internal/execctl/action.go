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

// Package execctl is the execution controller of spec.md §4.4: vCont
// resume coalescing across all-stop and non-stop modes, range stepping,
// and reverse-execution's bs/bc fallback. It consumes internal/threadreg's
// Registry (the thread/inferior external collaborator's concrete default)
// and produces wire-ready packet bodies; it never touches the transport
// itself — internal/remote's Connection does the actual Send/Receive.
package execctl

import (
	"fmt"
	"strings"

	"github.com/rspcore/rspcore/internal/notify"
)

// ActionKind is one vCont per-thread/wildcard action letter.
type ActionKind byte

const (
	ActionContinue      ActionKind = 'c'
	ActionContinueSig   ActionKind = 'C'
	ActionStep          ActionKind = 's'
	ActionStepSig       ActionKind = 'S'
	ActionRangeStep     ActionKind = 'r'
	ActionStopNonStop   ActionKind = 't' // vCont;t, non-stop "stop for scope"
)

// Action is one entry in a vCont packet: either scoped to a specific ptid,
// to a whole process (Ptid.Lwp == notify.WildcardID), or global (Global
// set, Ptid ignored).
type Action struct {
	Kind   ActionKind
	Ptid   notify.Ptid
	Global bool

	Signal     int    // ActionContinueSig, ActionStepSig
	RangeStart uint64 // ActionRangeStep
	RangeEnd   uint64 // ActionRangeStep
}

func (a Action) token(multiprocess bool) string {
	var head string
	switch a.Kind {
	case ActionContinueSig, ActionStepSig:
		head = fmt.Sprintf("%c%02x", byte(a.Kind), a.Signal)
	case ActionRangeStep:
		head = fmt.Sprintf("r%x,%x", a.RangeStart, a.RangeEnd)
	default:
		head = string(rune(a.Kind))
	}
	if a.Global {
		return head
	}
	return head + ":" + a.Ptid.Format(multiprocess)
}

// approxLen estimates the wire length of a single action token (used for
// the per-packet size budget; exact enough since tokens contain no bytes
// that need RSP escaping).
func (a Action) approxLen(multiprocess bool) int {
	return len(a.token(multiprocess))
}

// vContHeaderLen is the fixed "vCont" prefix before the first action token;
// each token's own leading ';' is counted with the token.
const vContHeaderLen = len("vCont")

// BuildVContPackets renders actions into one or more "vCont;act;act..."
// packet bodies, flushing to a new packet whenever the next action would
// overflow packetSize (spec.md §4.4's "per-packet size budget is respected
// by flushing and starting a fresh vCont packet when the next action
// would overflow"). packetSize<=0 means no limit (single packet).
func BuildVContPackets(actions []Action, multiprocess bool, packetSize int) []string {
	if len(actions) == 0 {
		return nil
	}
	var packets []string
	var cur strings.Builder
	curLen := 0
	flush := func() {
		if curLen > 0 {
			packets = append(packets, "vCont"+cur.String())
			cur.Reset()
			curLen = 0
		}
	}
	for _, a := range actions {
		tok := ";" + a.token(multiprocess)
		if packetSize > 0 && curLen > 0 && vContHeaderLen+curLen+len(tok) > packetSize {
			flush()
		}
		cur.WriteString(tok)
		curLen += len(tok)
	}
	flush()
	return packets
}

// BuildHcPreamble returns the legacy "Hc<tid>" thread-selection packet
// issued before a c/s/C/S request when vCont isn't available.
func BuildHcPreamble(ptid notify.Ptid, multiprocess bool) string {
	return "Hc" + ptid.Format(multiprocess)
}

// BuildLegacyResume returns the legacy continue/step packet body ("c",
// "s", "C<sig>", or "S<sig>") to send after BuildHcPreamble.
func BuildLegacyResume(step bool, signal int) string {
	switch {
	case step && signal != 0:
		return fmt.Sprintf("S%02x", signal)
	case step:
		return "s"
	case signal != 0:
		return fmt.Sprintf("C%02x", signal)
	default:
		return "c"
	}
}

// BuildReverseStep and BuildReverseContinue are the only resume packets
// reverse-execution mode issues (spec.md §4.4: "Reverse execution disables
// vCont entirely ... only bs/bc ... are issued").
func BuildReverseStep() string     { return "bs" }
func BuildReverseContinue() string { return "bc" }
