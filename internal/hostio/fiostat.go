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
	"encoding/binary"
	"fmt"
)

// FioStatSize is the wire size of a struct fio_stat reply attachment.
const FioStatSize = 7*4 + 3*8 + 3*4

// FioStat is spec.md §4.7's big-endian fio_stat layout.
type FioStat struct {
	Dev     uint32
	Ino     uint32
	Mode    Mode
	Nlink   uint32
	UID     uint32
	GID     uint32
	Rdev    uint32
	Size    uint64
	Blksize uint64
	Blocks  uint64
	Atime   uint32
	Mtime   uint32
	Ctime   uint32
}

// Encode renders s as the FioStatSize-byte big-endian attachment a
// vFile:fstat reply carries.
func (s FioStat) Encode() []byte {
	b := make([]byte, FioStatSize)
	binary.BigEndian.PutUint32(b[0:], s.Dev)
	binary.BigEndian.PutUint32(b[4:], s.Ino)
	binary.BigEndian.PutUint32(b[8:], uint32(s.Mode))
	binary.BigEndian.PutUint32(b[12:], s.Nlink)
	binary.BigEndian.PutUint32(b[16:], s.UID)
	binary.BigEndian.PutUint32(b[20:], s.GID)
	binary.BigEndian.PutUint32(b[24:], s.Rdev)
	binary.BigEndian.PutUint64(b[28:], s.Size)
	binary.BigEndian.PutUint64(b[36:], s.Blksize)
	binary.BigEndian.PutUint64(b[44:], s.Blocks)
	binary.BigEndian.PutUint32(b[52:], s.Atime)
	binary.BigEndian.PutUint32(b[56:], s.Mtime)
	binary.BigEndian.PutUint32(b[60:], s.Ctime)
	return b
}

// DecodeFioStat reverses Encode.
func DecodeFioStat(b []byte) (FioStat, error) {
	if len(b) != FioStatSize {
		return FioStat{}, fmt.Errorf("rsp: fio_stat attachment is %d bytes, want %d", len(b), FioStatSize)
	}
	return FioStat{
		Dev:     binary.BigEndian.Uint32(b[0:]),
		Ino:     binary.BigEndian.Uint32(b[4:]),
		Mode:    Mode(binary.BigEndian.Uint32(b[8:])),
		Nlink:   binary.BigEndian.Uint32(b[12:]),
		UID:     binary.BigEndian.Uint32(b[16:]),
		GID:     binary.BigEndian.Uint32(b[20:]),
		Rdev:    binary.BigEndian.Uint32(b[24:]),
		Size:    binary.BigEndian.Uint64(b[28:]),
		Blksize: binary.BigEndian.Uint64(b[36:]),
		Blocks:  binary.BigEndian.Uint64(b[44:]),
		Atime:   binary.BigEndian.Uint32(b[52:]),
		Mtime:   binary.BigEndian.Uint32(b[56:]),
		Ctime:   binary.BigEndian.Uint32(b[60:]),
	}, nil
}
