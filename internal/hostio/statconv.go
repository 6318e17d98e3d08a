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
)

// encodeFioStatFromFileInfo builds the wire FioStat for a host os.FileInfo,
// the way both the reverse "stat"/"lstat" and "fstat" calls need it.
func encodeFioStatFromFileInfo(fi os.FileInfo) FioStat {
	st, ok := fi.Sys().(*syscall.Stat_t)
	if !ok {
		return FioStat{
			Mode: FromHostStatMode(uint32(fi.Mode().Perm()), fi.IsDir(), false),
			Size: uint64(fi.Size()),
		}
	}
	return FioStat{
		Dev:     uint32(st.Dev),
		Ino:     uint32(st.Ino),
		Mode:    FromHostStatMode(uint32(st.Mode&0o7777), fi.IsDir(), st.Mode&syscall.S_IFMT == syscall.S_IFCHR),
		Nlink:   uint32(st.Nlink),
		UID:     st.Uid,
		GID:     st.Gid,
		Rdev:    uint32(st.Rdev),
		Size:    uint64(st.Size),
		Blksize: uint64(st.Blksize),
		Blocks:  uint64(st.Blocks),
		Atime:   uint32(st.Atim.Sec),
		Mtime:   uint32(st.Mtim.Sec),
		Ctime:   uint32(st.Ctim.Sec),
	}
}
