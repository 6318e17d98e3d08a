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

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHexRoundTrip(t *testing.T) {
	data := []byte{0x00, 0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77}
	encoded := EncodeHex(data)
	assert.Equal(t, "0011223344556677", encoded)

	decoded, unavailable, err := DecodeHex(encoded)
	require.NoError(t, err)
	assert.Equal(t, data, decoded)
	for _, u := range unavailable {
		assert.False(t, u)
	}
}

func TestDecodeHexUnavailableMarker(t *testing.T) {
	decoded, unavailable, err := DecodeHex("00xx22")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x00, 0x22}, decoded)
	assert.Equal(t, []bool{false, true, false}, unavailable)
}

func TestDecodeHexOddLength(t *testing.T) {
	_, _, err := DecodeHex("abc")
	require.Error(t, err)
}

func TestParseRemoteErrorBothForms(t *testing.T) {
	e, ok := ParseRemoteError("E01")
	require.True(t, ok)
	assert.Equal(t, 1, e.Code)
	assert.Empty(t, e.Msg)

	e, ok = ParseRemoteError("E.no such file")
	require.True(t, ok)
	assert.Equal(t, "no such file", e.Msg)

	_, ok = ParseRemoteError("OK")
	assert.False(t, ok)
}

func TestReadWindowTakesTheMinimumOfKnownConstraints(t *testing.T) {
	assert.Equal(t, 4096, ReadWindow(4096, 0, 0))
	assert.Equal(t, 1000, ReadWindow(4096, 1000, 0))
	assert.Equal(t, 512, ReadWindow(4096, 1000, 512))
	assert.Equal(t, 1000, ReadWindow(0, 1000, 0))
}

func TestBuildMemReadClampsToWindow(t *testing.T) {
	assert.Equal(t, "m1000,10", BuildMemRead(0x1000, 0x40, 0x10))
	assert.Equal(t, "m1000,40", BuildMemRead(0x1000, 0x40, 0))
}

func TestParseMemReadReplyAllowsShortReads(t *testing.T) {
	data, err := ParseMemReadReply("0011")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x11}, data)
}

func TestPlanBinaryWriteFitsPacketSizeAndAligns(t *testing.T) {
	data := make([]byte, 200)
	for i := range data {
		data[i] = byte(i)
	}
	chunks := PlanBinaryWrite(0x1000, data, 64)
	require.True(t, len(chunks) > 1, "expected more than one chunk for a %d-byte write in 64-byte packets", len(data))

	total := 0
	for i, c := range chunks {
		frame := BuildMemWriteBinary(c)
		assert.LessOrEqual(t, len(frame), 64, "chunk %d frame exceeds packet size", i)
		total += len(c.Data)
		if i > 0 {
			assert.Zero(t, c.Addr%16, "chunk %d not 16-byte aligned", i)
		}
	}
	assert.Equal(t, len(data), total, "chunks must cover every source byte exactly once")
}

func TestPlanBinaryWriteSingleChunkWhenUnconstrained(t *testing.T) {
	data := []byte{1, 2, 3}
	chunks := PlanBinaryWrite(0x2000, data, 0)
	require.Len(t, chunks, 1)
	assert.Equal(t, data, chunks[0].Data)
}

func TestBuildMemWriteBinaryReportsSourceByteCountNotWireLength(t *testing.T) {
	data := []byte{'$', '#', 'a'}
	frame := BuildMemWriteBinary(WriteChunk{Addr: 0x10, Data: data})
	header := string(frame[:strings.IndexByte(string(frame), ':')+1])
	assert.Equal(t, "X10,3:", header)
}

func TestParseGReplyAndRegisterValue(t *testing.T) {
	data, unavailable, err := ParseGReply("0011xx33")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x11, 0x00, 0x33}, data)
	assert.Equal(t, []bool{false, false, true, false}, unavailable)
}

func TestParseRegisterReplyWholeRegisterUnavailable(t *testing.T) {
	rv, err := ParseRegisterReply("xxxxxxxx")
	require.NoError(t, err)
	assert.True(t, rv.Unavailable)
}

func TestParseRegisterReplyMixedIsHardError(t *testing.T) {
	_, err := ParseRegisterReply("00xx0011")
	require.Error(t, err)
}

func TestBuildWriteRegisterAndAllRegisters(t *testing.T) {
	assert.Equal(t, "P6=0011", BuildWriteRegister(6, []byte{0x00, 0x11}))
	assert.Equal(t, "Gaabb", BuildWriteAllRegisters([]byte{0xaa, 0xbb}))
}
