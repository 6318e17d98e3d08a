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
	"bytes"
	"encoding/hex"
	"fmt"
	"strconv"
)

func hexPath(path string) string { return hex.EncodeToString([]byte(path)) }

// BuildSetfs returns "vFile:setfs:<pid>"; pid 0 means the host's own
// filesystem namespace (spec.md §4.7).
func BuildSetfs(pid int64) string {
	return fmt.Sprintf("vFile:setfs:%x", pid)
}

// BuildOpen returns "vFile:open:<hex-path>,<flags>,<mode>".
func BuildOpen(path string, flags Flag, mode Mode) string {
	return fmt.Sprintf("vFile:open:%s,%x,%x", hexPath(path), int(flags), int(mode))
}

// BuildClose returns "vFile:close:<fd>".
func BuildClose(fd int) string {
	return fmt.Sprintf("vFile:close:%x", fd)
}

// BuildPread returns "vFile:pread:<fd>,<count>,<offset>".
func BuildPread(fd int, count, offset int64) string {
	return fmt.Sprintf("vFile:pread:%x,%x,%x", fd, count, offset)
}

// BuildPwrite returns the "vFile:pwrite:<fd>,<offset>,<binary-data>"
// request as raw bytes (the header is ASCII; data is appended verbatim —
// internal/framer's escaping, applied to the whole outgoing frame, is what
// makes this binary-safe on the wire).
func BuildPwrite(fd int, offset int64, data []byte) []byte {
	header := fmt.Sprintf("vFile:pwrite:%x,%x,", fd, offset)
	out := make([]byte, 0, len(header)+len(data))
	out = append(out, header...)
	out = append(out, data...)
	return out
}

// BuildFstat returns "vFile:fstat:<fd>".
func BuildFstat(fd int) string {
	return fmt.Sprintf("vFile:fstat:%x", fd)
}

// BuildUnlink returns "vFile:unlink:<hex-path>".
func BuildUnlink(path string) string {
	return "vFile:unlink:" + hexPath(path)
}

// BuildReadlink returns "vFile:readlink:<hex-path>".
func BuildReadlink(path string) string {
	return "vFile:readlink:" + hexPath(path)
}

// FReply is a parsed "F<retcode>[,<errno>][;<attach>]" reply.
type FReply struct {
	Retcode   int64
	HasErrno  bool
	Errno     Errno
	Attach    []byte
	HasAttach bool
}

// ParseFReply decodes body (raw bytes, since an attachment may contain
// arbitrary binary data) per spec.md §4.7's grammar. A leading '-' on the
// retcode indicates a negative return value.
func ParseFReply(body []byte) (FReply, error) {
	if len(body) == 0 || body[0] != 'F' {
		return FReply{}, fmt.Errorf("rsp: not an F-reply: %q", body)
	}
	rest := body[1:]

	var header, attach []byte
	hasAttach := false
	if idx := bytes.IndexByte(rest, ';'); idx >= 0 {
		header = rest[:idx]
		attach = rest[idx+1:]
		hasAttach = true
	} else {
		header = rest
	}

	retStr, errnoStr, hasErrno := cutByte(header, ',')

	retcode, err := parseSignedHexBytes(retStr)
	if err != nil {
		return FReply{}, fmt.Errorf("rsp: malformed F-reply retcode %q: %w", retStr, err)
	}

	fr := FReply{Retcode: retcode, Attach: attach, HasAttach: hasAttach}
	if hasErrno {
		n, err := strconv.ParseInt(string(errnoStr), 16, 32)
		if err != nil {
			return FReply{}, fmt.Errorf("rsp: malformed F-reply errno %q: %w", errnoStr, err)
		}
		fr.HasErrno = true
		fr.Errno = Errno(n)
	}
	return fr, nil
}

func cutByte(b []byte, sep byte) (before, after []byte, found bool) {
	idx := bytes.IndexByte(b, sep)
	if idx < 0 {
		return b, nil, false
	}
	return b[:idx], b[idx+1:], true
}

func parseSignedHexBytes(b []byte) (int64, error) {
	neg := len(b) > 0 && b[0] == '-'
	if neg {
		b = b[1:]
	}
	v, err := strconv.ParseInt(string(b), 16, 64)
	if err != nil {
		return 0, err
	}
	if neg {
		v = -v
	}
	return v, nil
}
