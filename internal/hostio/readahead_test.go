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
)

func TestReadaheadCacheMissesWhenEmpty(t *testing.T) {
	c := NewReadaheadCache()
	_, ok := c.Lookup(3, 0, 4)
	assert.False(t, ok)
	assert.EqualValues(t, 1, c.MissCount())
}

func TestReadaheadCacheHitsWithinFilledRange(t *testing.T) {
	c := NewReadaheadCache()
	c.Fill(3, 100, []byte("hello world"))

	served, ok := c.Lookup(3, 102, 5)
	assert.True(t, ok)
	assert.Equal(t, []byte("llo w"), served)
	assert.EqualValues(t, 1, c.HitCount())
}

func TestReadaheadCacheTruncatesPastEndOfFilledData(t *testing.T) {
	c := NewReadaheadCache()
	c.Fill(3, 0, []byte("abc"))

	served, ok := c.Lookup(3, 1, 100)
	assert.True(t, ok)
	assert.Equal(t, []byte("bc"), served)
}

func TestReadaheadCacheMissesOnDifferentFd(t *testing.T) {
	c := NewReadaheadCache()
	c.Fill(3, 0, []byte("abc"))

	_, ok := c.Lookup(4, 0, 1)
	assert.False(t, ok)
}

func TestReadaheadCacheMissesOnOffsetBeforeFilledRange(t *testing.T) {
	c := NewReadaheadCache()
	c.Fill(3, 10, []byte("abc"))

	_, ok := c.Lookup(3, 5, 1)
	assert.False(t, ok)
}

func TestReadaheadCacheInvalidateOnlyAffectsMatchingFd(t *testing.T) {
	c := NewReadaheadCache()
	c.Fill(3, 0, []byte("abc"))

	c.Invalidate(4)
	_, ok := c.Lookup(3, 0, 1)
	assert.True(t, ok, "Invalidate with a non-matching fd must not drop the cache")

	c.Invalidate(3)
	_, ok = c.Lookup(3, 0, 1)
	assert.False(t, ok)
}

func TestReadaheadCacheInvalidateAllDropsRegardlessOfFd(t *testing.T) {
	c := NewReadaheadCache()
	c.Fill(3, 0, []byte("abc"))

	c.InvalidateAll()
	_, ok := c.Lookup(3, 0, 1)
	assert.False(t, ok)
}
