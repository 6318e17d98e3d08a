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
	"os"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrnoFromHostDirect(t *testing.T) {
	assert.Equal(t, ENOENT, ErrnoFromHost(syscall.ENOENT))
	assert.Equal(t, EACCES, ErrnoFromHost(syscall.EACCES))
}

func TestErrnoFromHostUnwrapsWrappedErrors(t *testing.T) {
	wrapped := &os.PathError{Op: "open", Path: "/x", Err: syscall.ENOENT}
	assert.Equal(t, ENOENT, ErrnoFromHost(wrapped))
}

func TestErrnoFromHostDefaultsToUnknown(t *testing.T) {
	assert.Equal(t, EUNKNOWN, ErrnoFromHost(assert.AnError))
}

func TestErrnoToHostRoundTrip(t *testing.T) {
	for _, e := range []Errno{EPERM, ENOENT, EIO, EBADF, EACCES, EEXIST, EINVAL, ENOSPC, EROFS} {
		host := e.ToHost()
		assert.Equal(t, e, ErrnoFromHost(host), "round trip through host errno for %v", e)
	}
}

func TestErrnoToHostUnknownDefaultsToEINVAL(t *testing.T) {
	assert.Equal(t, syscall.EINVAL, Errno(9999).ToHost())
}
