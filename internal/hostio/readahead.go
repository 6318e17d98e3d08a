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

// ReadaheadCache is spec.md §3's "Readahead cache" entity: valid for at
// most one fd at a time, invalidated by any pwrite or close on that fd.
type ReadaheadCache struct {
	valid     bool
	fd        int
	offset    int64
	data      []byte
	hitCount  int64
	missCount int64
}

// NewReadaheadCache returns an empty (invalid) cache.
func NewReadaheadCache() *ReadaheadCache {
	return &ReadaheadCache{}
}

// HitCount and MissCount back internal/metrics' ReadaheadHitCount/
// ReadaheadMissCount instruments.
func (c *ReadaheadCache) HitCount() int64  { return c.hitCount }
func (c *ReadaheadCache) MissCount() int64 { return c.missCount }

// Lookup serves a pread(fd, offset, length) from the cache if possible.
// ok reports a cache hit; served is the (possibly shorter than length)
// prefix available from the cached buffer starting at offset.
func (c *ReadaheadCache) Lookup(fd int, offset int64, length int) (served []byte, ok bool) {
	if !c.valid || c.fd != fd || offset < c.offset || offset >= c.offset+int64(len(c.data)) {
		c.missCount++
		return nil, false
	}
	c.hitCount++
	start := int(offset - c.offset)
	end := start + length
	if end > len(c.data) {
		end = len(c.data)
	}
	return c.data[start:end], true
}

// Fill records a fresh read of data starting at offset on fd, replacing
// whatever was cached (even for a different fd: "valid only for a single
// fd at a time", spec.md §3).
func (c *ReadaheadCache) Fill(fd int, offset int64, data []byte) {
	c.valid = true
	c.fd = fd
	c.offset = offset
	c.data = data
}

// Invalidate drops the cache if it holds fd's data and leaves it alone
// otherwise. internal/remote calls it on every pwrite or close of fd.
func (c *ReadaheadCache) Invalidate(fd int) {
	if c.valid && c.fd == fd {
		c.valid = false
		c.data = nil
	}
}

// InvalidateAll drops the cache regardless of fd, used when the
// connection's setfs namespace changes (a pid switch invalidates any
// cached bytes, since the same fd number could now resolve differently).
func (c *ReadaheadCache) InvalidateAll() {
	c.valid = false
	c.data = nil
}
