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

package feature

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQSupportedReplySetsDiscoveredAndPacketSize(t *testing.T) {
	r := New()

	err := r.ParseQSupportedReply("PacketSize=1000;multiprocess+;swbreak-;hwbreak?")
	require.NoError(t, err)

	assert.Equal(t, 0x1000, r.PacketSize)
	assert.True(t, r.Effective(KindMultiprocess))
	assert.False(t, r.Effective(KindSwbreak))
	assert.True(t, r.Known(KindSwbreak))
	assert.False(t, r.Known(KindHwbreak))
}

func TestOverrideWinsOverDiscovered(t *testing.T) {
	r := New()
	require.NoError(t, r.ParseQSupportedReply("swbreak-"))
	assert.False(t, r.Effective(KindSwbreak))

	r.SetOverride(KindSwbreak, OverrideOn)
	assert.True(t, r.Effective(KindSwbreak))

	r.SetOverride(KindSwbreak, OverrideOff)
	assert.False(t, r.Effective(KindSwbreak))
}

func TestApplyProbeEmptyMarksDisabledUnlessForced(t *testing.T) {
	r := New()

	err := r.ApplyProbe(KindBinaryWrite, ProbeEmpty)
	require.NoError(t, err)
	assert.False(t, r.Effective(KindBinaryWrite))
	assert.True(t, r.Known(KindBinaryWrite))

	r2 := New()
	r2.SetOverride(KindBinaryWrite, OverrideOn)
	err = r2.ApplyProbe(KindBinaryWrite, ProbeEmpty)
	require.Error(t, err)
	var perr *ForcedPacketRefusedError
	assert.ErrorAs(t, err, &perr)
}

func TestApplyProbeWellFormedOrRemoteErrorBothMeanSupported(t *testing.T) {
	r := New()
	require.NoError(t, r.ApplyProbe(KindVFileOpen, ProbeWellFormed))
	assert.True(t, r.Effective(KindVFileOpen))

	r2 := New()
	require.NoError(t, r2.ApplyProbe(KindVFileOpen, ProbeRemoteError))
	assert.True(t, r2.Effective(KindVFileOpen))
}

func TestMonotoneOnceDisabledNeverReprobed(t *testing.T) {
	r := New()
	require.NoError(t, r.ApplyProbe(KindBinaryWrite, ProbeEmpty))
	assert.True(t, r.Known(KindBinaryWrite))

	// A later well-formed "probe" (e.g. a stray successful reply) must not
	// flip a kind that was already marked disabled.
	r.SetDiscovered(KindBinaryWrite, DiscoveredEnabled)
	assert.False(t, r.Effective(KindBinaryWrite))
}

func TestRequestStringIncludesXMLRegistersWhenRequested(t *testing.T) {
	r := New()
	assert.NotContains(t, r.RequestString(), "xmlRegisters")

	r.IncludeXMLRegisters = true
	assert.Contains(t, r.RequestString(), "xmlRegisters+")
}
