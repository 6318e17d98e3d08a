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

package regtable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSpecs() []Spec {
	return []Spec{
		{Name: "rip", InternalNum: 2, ProtocolNum: 16, SizeBytes: 8},
		{Name: "rax", InternalNum: 0, ProtocolNum: 0, SizeBytes: 8},
		{Name: "rbx", InternalNum: 1, ProtocolNum: 1, SizeBytes: 8},
		{Name: "eflags", InternalNum: 3, ProtocolNum: 17, SizeBytes: 4},
	}
}

func TestNewSortsByProtocolNumAndComputesPrefixSum(t *testing.T) {
	tbl := New(testSpecs())

	entries := tbl.Entries()
	require.Len(t, entries, 4)
	assert.Equal(t, "rax", entries[0].Name)
	assert.Equal(t, 0, entries[0].Offset)
	assert.Equal(t, "rbx", entries[1].Name)
	assert.Equal(t, 8, entries[1].Offset)
	assert.Equal(t, "rip", entries[2].Name)
	assert.Equal(t, 16, entries[2].Offset)
	assert.Equal(t, "eflags", entries[3].Name)
	assert.Equal(t, 24, entries[3].Offset)
	assert.Equal(t, 28, tbl.SumSizes())
}

func TestEstablishGSizeMarksTailRegistersNotInG(t *testing.T) {
	tbl := New(testSpecs())

	// A short g-packet that only covers rax, rbx, rip (offsets 0, 8, 16)
	// but not eflags (offset 24, needs 4 more bytes).
	tbl.EstablishGSize(24)

	e, ok := tbl.ByInternalNum(3) // eflags
	require.True(t, ok)
	assert.False(t, e.InG)

	e, ok = tbl.ByInternalNum(2) // rip
	require.True(t, ok)
	assert.True(t, e.InG)

	inG := tbl.InGEntries()
	assert.Len(t, inG, 3)
}

func TestByProtocolNumLooksUpExpeditedRegisterField(t *testing.T) {
	tbl := New(testSpecs())

	e, ok := tbl.ByProtocolNum(16)
	require.True(t, ok)
	assert.Equal(t, "rip", e.Name)

	_, ok = tbl.ByProtocolNum(999)
	assert.False(t, ok)
}
