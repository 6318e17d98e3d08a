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

// Package feature is the per-packet support tri-state registry and
// qSupported negotiation described in spec.md §4.2. It replaces the
// source's two parallel global arrays (descriptions and configs) with a
// single densely-indexed table, per spec.md §9's design note.
package feature

import "strings"

// Override is the user-requested tri-state for one packet kind: leave it
// to discovery, or force it on/off.
type Override int

const (
	OverrideAuto Override = iota
	OverrideOn
	OverrideOff
)

// Discovered is what negotiation or lazy probing has learned about one
// packet kind.
type Discovered int

const (
	DiscoveredUnknown Discovered = iota
	DiscoveredEnabled
	DiscoveredDisabled
)

// Kind enumerates the packet/feature tokens the core cares about: the
// qSupported negotiation tokens spec.md §4.2 names explicitly, plus the
// packets whose support is probed lazily on first use (§4.2's second
// paragraph) and the vFile operations of §4.7. This is a representative
// subset of the ~90 kinds a full gdb/gdbserver recognizes — every kind
// spec.md or this module's operations actually send is here.
type Kind int

const (
	KindMultiprocess Kind = iota
	KindSwbreak
	KindHwbreak
	KindForkEvents
	KindVforkEvents
	KindExecEvents
	KindVContSupported
	KindQThreadEvents
	KindQThreadOptions
	KindNoResumed
	KindMemoryTagging
	KindQRelocInsn
	KindXmlRegisters
	KindQStartNoAckMode
	KindQNonStop
	KindVContActionRangeStep // the 'r' action token within vCont;
	KindBinaryWrite          // 'X' memory write
	KindPacketSizeNegotiated // synthetic: tracks whether PacketSize= arrived
	KindVFileOpen
	KindVFilePread
	KindVFilePwrite
	KindVFileClose
	KindVFileFstat
	KindVFileUnlink
	KindVFileReadlink
	KindVFileSetfs
	kindCount
)

var kindNames = map[Kind]string{
	KindMultiprocess:         "multiprocess",
	KindSwbreak:              "swbreak",
	KindHwbreak:              "hwbreak",
	KindForkEvents:           "fork-events",
	KindVforkEvents:          "vfork-events",
	KindExecEvents:           "exec-events",
	KindVContSupported:       "vContSupported",
	KindQThreadEvents:        "QThreadEvents",
	KindQThreadOptions:       "QThreadOptions",
	KindNoResumed:            "no-resumed",
	KindMemoryTagging:        "memory-tagging",
	KindQRelocInsn:           "qRelocInsn",
	KindXmlRegisters:         "xmlRegisters",
	KindQStartNoAckMode:      "QStartNoAckMode",
	KindQNonStop:             "QNonStop",
	KindVContActionRangeStep: "vCont-r",
	KindBinaryWrite:          "X",
	KindPacketSizeNegotiated: "PacketSize",
	KindVFileOpen:            "vFile:open",
	KindVFilePread:           "vFile:pread",
	KindVFilePwrite:          "vFile:pwrite",
	KindVFileClose:           "vFile:close",
	KindVFileFstat:           "vFile:fstat",
	KindVFileUnlink:          "vFile:unlink",
	KindVFileReadlink:        "vFile:readlink",
	KindVFileSetfs:           "vFile:setfs",
}

// qSupportedRequestOrder lists, in request order, the tokens the core includes in
// its own qSupported query string (spec.md §4.2's "single qSupported:
// packet listing feature tokens it would like enabled").
var qSupportedRequestOrder = []Kind{
	KindMultiprocess,
	KindSwbreak,
	KindHwbreak,
	KindForkEvents,
	KindVforkEvents,
	KindExecEvents,
	KindVContSupported,
	KindQThreadEvents,
	KindQThreadOptions,
	KindNoResumed,
	KindMemoryTagging,
	KindQRelocInsn,
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "unknown-kind"
}

func nameToKind() map[string]Kind {
	m := make(map[string]Kind, len(kindNames))
	for k, n := range kindNames {
		m[n] = k
	}
	return m
}

var kindByName = nameToKind()

// KindByName looks up a Kind by its wire token name (e.g. "multiprocess"),
// the reverse of Kind.String, for callers translating a user-supplied
// packet name (such as a forced-packet config override) into a Kind.
func KindByName(name string) (Kind, bool) {
	k, ok := kindByName[name]
	return k, ok
}

type row struct {
	override   Override
	discovered Discovered
}

// Registry is the Connection-owned feature table: one row per Kind, plus
// the negotiated packet size (0 = not yet negotiated, use the caller's
// heuristic).
type Registry struct {
	rows       [kindCount]row
	PacketSize int
	// IncludeXMLRegisters controls whether xmlRegisters is added to the
	// outgoing qSupported request, matching spec.md §4.2's "optionally
	// xmlRegisters" — the register-description collaborator decides this.
	IncludeXMLRegisters bool
}

// New returns a Registry with every kind reset to {auto, unknown}, as at
// connection open (spec.md §4.2's first sentence).
func New() *Registry {
	return &Registry{}
}

// SetOverride forces kind on or off, or returns it to auto-discovery.
func (r *Registry) SetOverride(k Kind, ov Override) {
	r.rows[k].override = ov
}

// Effective returns whether kind should be treated as supported: the
// override if not auto, else the discovered state (spec.md §4.2's
// "Effective support = override if not auto, else discovered").
// A kind with override=auto and discovered=unknown is not yet known to be
// supported; Effective reports false and the caller should probe.
func (r *Registry) Effective(k Kind) bool {
	row := r.rows[k]
	switch row.override {
	case OverrideOn:
		return true
	case OverrideOff:
		return false
	default:
		return row.discovered == DiscoveredEnabled
	}
}

// Known reports whether discovery has resolved kind one way or the other,
// regardless of any override. Used to decide whether a probe is still
// needed.
func (r *Registry) Known(k Kind) bool {
	return r.rows[k].discovered != DiscoveredUnknown
}

// MustSend reports whether kind is forced on: a packet marked off must
// never be sent (spec.md §4.2's invariant), and one marked on that the
// stub refuses is an immediate protocol error — ApplyProbe enforces that
// by returning a *ForcedPacketRefusedError.
func (r *Registry) MustSend(k Kind) bool {
	return r.rows[k].override == OverrideOn
}

// Forbidden reports whether kind is forced off.
func (r *Registry) Forbidden(k Kind) bool {
	return r.rows[k].override == OverrideOff
}

// SetDiscovered records a discovered support state. Per spec.md §8's
// monotonicity property, once a kind has been marked disabled by a probe
// it is never re-probed; SetDiscovered enforces this by ignoring a second
// write once the state is DiscoveredDisabled. Only a fresh Registry from
// New starts over.
func (r *Registry) SetDiscovered(k Kind, d Discovered) {
	if r.rows[k].discovered == DiscoveredDisabled {
		return
	}
	r.rows[k].discovered = d
}

// RequestString builds the outgoing "qSupported:<tok>+;<tok>+;..." body,
// in spec.md §4.2's request order, appending "xmlRegisters+" only if
// IncludeXMLRegisters is set.
func (r *Registry) RequestString() string {
	var sb strings.Builder
	sb.WriteString("qSupported:")
	toks := qSupportedRequestOrder
	for i, k := range toks {
		if i > 0 {
			sb.WriteByte(';')
		}
		sb.WriteString(kindNames[k])
		sb.WriteByte('+')
	}
	if r.IncludeXMLRegisters {
		sb.WriteString(";xmlRegisters+")
	}
	return sb.String()
}

// ParseQSupportedReply applies the stub's ";"-separated reply tokens.
// Unrecognized tokens are ignored (the stub may advertise packets this
// core never asks about); "PacketSize=<hex>" sets PacketSize instead of a
// Kind row.
func (r *Registry) ParseQSupportedReply(body string) error {
	if body == "" {
		return nil
	}
	for _, tok := range strings.Split(body, ";") {
		if tok == "" {
			continue
		}
		if name, hexVal, ok := strings.Cut(tok, "="); ok {
			if name == "PacketSize" {
				n, err := parseHexInt(hexVal)
				if err != nil {
					return err
				}
				r.PacketSize = n
			}
			continue
		}
		last := tok[len(tok)-1]
		name := tok[:len(tok)-1]
		k, known := kindByName[name]
		if !known {
			continue
		}
		switch last {
		case '+':
			r.SetDiscovered(k, DiscoveredEnabled)
		case '-':
			r.SetDiscovered(k, DiscoveredDisabled)
		case '?':
			// Stub understands the token but support is conditional;
			// treated as not-yet-enabled without marking it disabled, so
			// a later lazy probe can still resolve it.
		}
	}
	return nil
}

// ProbeOutcome classifies the reply to a packet whose support was not
// pinned down by qSupported (spec.md §4.2's lazy-probe rule).
type ProbeOutcome int

const (
	ProbeEmpty ProbeOutcome = iota
	ProbeWellFormed
	ProbeRemoteError
)

// ApplyProbe updates kind's discovered state from a probe's outcome: an
// empty reply means unsupported; a well-formed or E<xx> reply both mean
// the stub understood the packet, so it is supported. If kind was forced
// on and the probe came back empty, that is an immediate protocol error
// per spec.md §4.2's last sentence.
func (r *Registry) ApplyProbe(k Kind, outcome ProbeOutcome) error {
	switch outcome {
	case ProbeEmpty:
		if r.MustSend(k) {
			return &ForcedPacketRefusedError{Kind: k}
		}
		r.SetDiscovered(k, DiscoveredDisabled)
	case ProbeWellFormed, ProbeRemoteError:
		r.SetDiscovered(k, DiscoveredEnabled)
	}
	return nil
}

// ForcedPacketRefusedError is the protocol error raised when a
// user-forced-on packet gets an empty reply.
type ForcedPacketRefusedError struct {
	Kind Kind
}

func (e *ForcedPacketRefusedError) Error() string {
	return "rsp: packet " + e.Kind.String() + " was forced on but the stub returned an empty reply"
}

func parseHexInt(s string) (int, error) {
	n := 0
	for _, c := range s {
		var v int
		switch {
		case c >= '0' && c <= '9':
			v = int(c - '0')
		case c >= 'a' && c <= 'f':
			v = int(c-'a') + 10
		case c >= 'A' && c <= 'F':
			v = int(c-'A') + 10
		default:
			return 0, &MalformedHexError{Value: s}
		}
		n = n*16 + v
	}
	return n, nil
}

// MalformedHexError reports a non-hex-digit where one was expected.
type MalformedHexError struct {
	Value string
}

func (e *MalformedHexError) Error() string {
	return "rsp: malformed hex value " + e.Value
}
