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

// Package hostio implements spec.md §4.7's Host I/O (vFile) sub-protocol:
// the forward direction (this debugger asking the stub to open/pread/
// pwrite/close/stat/unlink/readlink files in the target's namespace), the
// reverse direction (the stub asking this debugger to service a syscall
// the target made), the shared errno/openflag/mode conversion tables, the
// big-endian fio_stat layout, and the single-fd readahead cache.
package hostio

import (
	"fmt"
	"syscall"
)

// Errno is the fixed RSP File-I/O error enumeration of spec.md §4.7.
type Errno int

const (
	EPERM        Errno = 1
	ENOENT       Errno = 2
	EINTR        Errno = 4
	EIO          Errno = 5
	EBADF        Errno = 9
	EACCES       Errno = 13
	EFAULT       Errno = 14
	EBUSY        Errno = 16
	EEXIST       Errno = 17
	ENODEV       Errno = 19
	ENOTDIR      Errno = 20
	EISDIR       Errno = 21
	EINVAL       Errno = 22
	ENFILE       Errno = 23
	EMFILE       Errno = 24
	EFBIG        Errno = 27
	ENOSPC       Errno = 28
	ESPIPE       Errno = 29
	EROFS        Errno = 30
	ENOSYS       Errno = 88
	ENAMETOOLONG Errno = 91
	EUNKNOWN     Errno = 9999
)

func (e Errno) Error() string {
	return fmt.Sprintf("rsp: host I/O error %d", int(e))
}

// hostToProtocol and protocolToHost mirror
// original_source/binutils/gdbsupport/fileio.h's fileio_error table: a
// fixed bidirectional map between this protocol's errno enumeration and
// the host's syscall.Errno values, rather than assuming they share
// numbering (they mostly do on Linux, but not universally, and the
// protocol's numbers are part of the wire contract regardless).
var hostToProtocol = map[syscall.Errno]Errno{
	syscall.EPERM:        EPERM,
	syscall.ENOENT:       ENOENT,
	syscall.EINTR:        EINTR,
	syscall.EIO:          EIO,
	syscall.EBADF:        EBADF,
	syscall.EACCES:       EACCES,
	syscall.EFAULT:       EFAULT,
	syscall.EBUSY:        EBUSY,
	syscall.EEXIST:       EEXIST,
	syscall.ENODEV:       ENODEV,
	syscall.ENOTDIR:      ENOTDIR,
	syscall.EISDIR:       EISDIR,
	syscall.EINVAL:       EINVAL,
	syscall.ENFILE:       ENFILE,
	syscall.EMFILE:       EMFILE,
	syscall.EFBIG:        EFBIG,
	syscall.ENOSPC:       ENOSPC,
	syscall.ESPIPE:       ESPIPE,
	syscall.EROFS:        EROFS,
	syscall.ENOSYS:       ENOSYS,
	syscall.ENAMETOOLONG: ENAMETOOLONG,
}

var protocolToHost = func() map[Errno]syscall.Errno {
	m := make(map[Errno]syscall.Errno, len(hostToProtocol))
	for h, p := range hostToProtocol {
		m[p] = h
	}
	return m
}()

// ErrnoFromHost maps a host error (expected to wrap or be a
// syscall.Errno) to the wire errno enumeration, defaulting to EUNKNOWN.
func ErrnoFromHost(err error) Errno {
	var se syscall.Errno
	if e, ok := err.(syscall.Errno); ok {
		se = e
	} else if unwrappable, ok := err.(interface{ Unwrap() error }); ok {
		return ErrnoFromHost(unwrappable.Unwrap())
	} else {
		return EUNKNOWN
	}
	if p, ok := hostToProtocol[se]; ok {
		return p
	}
	return EUNKNOWN
}

// ToHost maps a wire errno back to a host syscall.Errno, for callers that
// surface a failed forward-direction call as a host error (internal/rspfs
// does this for FUSE replies). The reverse direction goes the other way,
// through ErrnoFromHost.
func (e Errno) ToHost() syscall.Errno {
	if h, ok := protocolToHost[e]; ok {
		return h
	}
	return syscall.EINVAL
}
