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

import "golang.org/x/sys/unix"

// Protocol-defined open() flags, spec.md §4.7. These are wire constants,
// independent of the host's O_* numbering (which on some platforms
// differs from these values), matching
// original_source/binutils/gdbsupport/fileio.h's fileio_open_flags_to_host.
const (
	ORdonly Flag = 0x000
	OWronly Flag = 0x001
	ORdwr   Flag = 0x002
	OAppend Flag = 0x008
	OCreat  Flag = 0x200
	OTrunc  Flag = 0x400
	OExcl   Flag = 0x800
)

// Flag is a protocol-side open() flag bitmask.
type Flag int

// Protocol-defined struct-stat mode bits, spec.md §4.7.
const (
	SIfReg  Mode = 0o100000
	SIfDir  Mode = 0o040000
	SIfChr  Mode = 0o020000
	SIRWXU  Mode = 0o700
	SIRUSR  Mode = 0o400
	SIWUSR  Mode = 0o200
	SIXUSR  Mode = 0o100
	SIRWXG  Mode = 0o070
	SIRGRP  Mode = 0o040
	SIWGRP  Mode = 0o020
	SIXGRP  Mode = 0o010
	SIRWXO  Mode = 0o007
	SIROTH  Mode = 0o004
	SIWOTH  Mode = 0o002
	SIXOTH  Mode = 0o001
)

// Mode is a protocol-side struct-stat mode bitmask.
type Mode int

// ToHostOpenFlags converts a protocol-side open() flag bitmask to the
// host's O_* bits, the way fileio_open_flags_to_host does.
func (f Flag) ToHostOpenFlags() int {
	host := 0
	switch f & (OWronly | ORdwr) {
	case OWronly:
		host |= unix.O_WRONLY
	case ORdwr:
		host |= unix.O_RDWR
	default:
		host |= unix.O_RDONLY
	}
	if f&OAppend != 0 {
		host |= unix.O_APPEND
	}
	if f&OCreat != 0 {
		host |= unix.O_CREAT
	}
	if f&OTrunc != 0 {
		host |= unix.O_TRUNC
	}
	if f&OExcl != 0 {
		host |= unix.O_EXCL
	}
	return host
}

// ToHostMode converts a protocol-side permission/type mode to a host
// os.FileMode-compatible permission bitmask. Only the permission bits
// matter for an open()'s mode argument; the S_IF* type bits are used only
// by fio_stat encoding, not by ToHostMode.
func (m Mode) ToHostMode() uint32 {
	return uint32(m) & 0o7777
}

// FromHostStatMode converts a host os.FileMode/syscall stat mode into the
// protocol's struct-stat mode field, setting the appropriate S_IF* bit.
func FromHostStatMode(hostMode uint32, isDir, isChar bool) Mode {
	m := Mode(hostMode & 0o7777)
	switch {
	case isDir:
		m |= SIfDir
	case isChar:
		m |= SIfChr
	default:
		m |= SIfReg
	}
	return m
}
