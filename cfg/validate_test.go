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

package cfg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateConfig_DefaultIsValid(t *testing.T) {
	c := DefaultConfig()
	assert.NoError(t, ValidateConfig(&c))
}

func TestValidateConfig_BadInterruptSequence(t *testing.T) {
	c := DefaultConfig()
	c.Connection.InterruptSequence = "nmi"
	assert.Error(t, ValidateConfig(&c))
}

func TestValidateConfig_NegativePacketSizeOverride(t *testing.T) {
	c := DefaultConfig()
	c.Connection.PacketSizeOverride = -1
	assert.Error(t, ValidateConfig(&c))
}

func TestValidateConfig_ZeroPacketTimeout(t *testing.T) {
	c := DefaultConfig()
	c.Connection.PacketTimeout = 0
	assert.Error(t, ValidateConfig(&c))
}

func TestValidateConfig_ForcedPacketOverride(t *testing.T) {
	c := DefaultConfig()
	c.Connection.ForcedPacketOverride = []string{"qXfer:features:read=off"}
	assert.NoError(t, ValidateConfig(&c))

	c.Connection.ForcedPacketOverride = []string{"qXfer:features:read=maybe"}
	assert.Error(t, ValidateConfig(&c))

	c.Connection.ForcedPacketOverride = []string{"no-equals-sign"}
	assert.Error(t, ValidateConfig(&c))
}

func TestValidateConfig_BadLogRotate(t *testing.T) {
	c := DefaultConfig()
	c.Logging.LogRotate.MaxFileSizeMB = 0
	assert.Error(t, ValidateConfig(&c))

	c = DefaultConfig()
	c.Logging.LogRotate.BackupFileCount = -1
	assert.Error(t, ValidateConfig(&c))
}
