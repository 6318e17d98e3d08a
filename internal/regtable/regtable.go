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

// Package regtable derives the 'g'/'G' packet layout for one architecture
// from a register-layout description supplied by the external
// architecture/register-description collaborator (spec.md §1 lists this
// as consumed, not owned, by the core).
package regtable

import "sort"

// Spec is the shape the external register-description collaborator hands
// the core for a single register: its internal number, the stub's wire
// "protocol number" (the 'p'/'P' argument and the ordering key for the
// g-packet), a human name for diagnostics, and its size in bytes.
type Spec struct {
	Name        string
	InternalNum int
	ProtocolNum int
	SizeBytes   int
}

// Entry is one row of the derived table: a Spec plus its computed
// position within the g-packet.
type Entry struct {
	Spec
	// Offset is this register's byte offset within the g-packet, valid
	// only if InG is true. Offsets are a prefix sum over participating
	// registers, sorted by ProtocolNum, per spec.md §3's invariant.
	Offset int
	// InG reports whether this register is included in a 'g' reply. It
	// starts true for every register and is narrowed to false once a 'g'
	// reply shorter than the computed sum arrives (see EstablishGSize).
	InG bool
}

// Table is the per-architecture derived register layout. It is built once
// per connection (or per architecture change, e.g. after an 'exec' stop)
// from the collaborator's Specs.
type Table struct {
	entries   []Entry
	byNum     map[int]int // InternalNum -> index into entries
	gPackSize int         // total bytes of the g-packet, once established
}

// New sorts specs by ProtocolNum and computes prefix-sum offsets, assuming
// (until EstablishGSize narrows it) that every register participates in
// the g-packet.
func New(specs []Spec) *Table {
	entries := make([]Entry, len(specs))
	for i, s := range specs {
		entries[i] = Entry{Spec: s, InG: true}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].ProtocolNum < entries[j].ProtocolNum
	})
	offset := 0
	for i := range entries {
		entries[i].Offset = offset
		offset += entries[i].SizeBytes
	}
	byNum := make(map[int]int, len(entries))
	for i, e := range entries {
		byNum[e.InternalNum] = i
	}
	return &Table{entries: entries, byNum: byNum}
}

// EstablishGSize records the size of the first 'g' reply seen since
// (re)connect. Any register whose offset+size exceeds gSize no longer
// participates in the g-packet and must be fetched with 'p' individually,
// per spec.md §4.3's register-read rule.
func (t *Table) EstablishGSize(gSize int) {
	t.gPackSize = gSize
	for i := range t.entries {
		e := &t.entries[i]
		e.InG = e.Offset+e.SizeBytes <= gSize
	}
}

// GSize returns the established g-packet size, or 0 if none has been
// observed yet.
func (t *Table) GSize() int { return t.gPackSize }

// ByInternalNum looks up a register's derived Entry.
func (t *Table) ByInternalNum(internalNum int) (Entry, bool) {
	i, ok := t.byNum[internalNum]
	if !ok {
		return Entry{}, false
	}
	return t.entries[i], true
}

// ByProtocolNum looks up a register's derived Entry by its wire protocol
// number, as used by expedited register fields in a T-reply and by 'p'/'P'.
func (t *Table) ByProtocolNum(pnum int) (Entry, bool) {
	for _, e := range t.entries {
		if e.ProtocolNum == pnum {
			return e, true
		}
	}
	return Entry{}, false
}

// Entries returns every derived register in g-packet order.
func (t *Table) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// InGEntries returns only the registers currently marked as participating
// in the g-packet, in offset order.
func (t *Table) InGEntries() []Entry {
	var out []Entry
	for _, e := range t.entries {
		if e.InG {
			out = append(out, e)
		}
	}
	return out
}

// SumSizes returns the sum of every participating register's size, the
// "computed sum of participating register sizes" spec.md §4.3 compares
// against the first observed g-packet's length.
func (t *Table) SumSizes() int {
	sum := 0
	for _, e := range t.entries {
		if e.InG {
			sum += e.SizeBytes
		}
	}
	return sum
}
