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

package hostio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildOpenEncodesPathAsHex(t *testing.T) {
	got := BuildOpen("/tmp/a", ORdonly, 0)
	assert.Equal(t, "vFile:open:2f746d702f61,0,0", got)
}

func TestBuildPwriteAppendsRawData(t *testing.T) {
	got := BuildPwrite(3, 16, []byte{0xde, 0xad})
	assert.Equal(t, []byte("vFile:pwrite:3,10,\xde\xad"), got)
}

func TestParseFReplySuccessNoAttach(t *testing.T) {
	fr, err := ParseFReply([]byte("F1c"))
	require.NoError(t, err)
	assert.EqualValues(t, 0x1c, fr.Retcode)
	assert.False(t, fr.HasErrno)
	assert.False(t, fr.HasAttach)
}

func TestParseFReplyNegativeWithErrno(t *testing.T) {
	fr, err := ParseFReply([]byte("F-1,2"))
	require.NoError(t, err)
	assert.EqualValues(t, -1, fr.Retcode)
	require.True(t, fr.HasErrno)
	assert.Equal(t, ENOENT, fr.Errno)
}

func TestParseFReplyWithBinaryAttachment(t *testing.T) {
	fr, err := ParseFReply([]byte("F3;abc"))
	require.NoError(t, err)
	assert.EqualValues(t, 3, fr.Retcode)
	require.True(t, fr.HasAttach)
	assert.Equal(t, []byte("abc"), fr.Attach)
}

func TestParseFReplyRejectsMissingLeadingF(t *testing.T) {
	_, err := ParseFReply([]byte("1c"))
	assert.Error(t, err)
}

func TestParseFReplyRejectsMalformedRetcode(t *testing.T) {
	_, err := ParseFReply([]byte("Fzz"))
	assert.Error(t, err)
}
