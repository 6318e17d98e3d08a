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

package remote

import (
	"context"
	"errors"
	"fmt"

	"github.com/rspcore/rspcore/internal/hostio"
)

// setfs caches the last filesystem-pid sent, per spec.md §4.7: "the core
// caches the last value sent and only re-sends when it changes."
func (c *Connection) setfs(ctx context.Context, pid int64) error {
	if c.haveSentSetfs && c.lastSetfsPid == pid {
		return nil
	}
	fr, err := c.vFileExec(ctx, hostio.BuildSetfs(pid))
	if err != nil {
		return err
	}
	if fr.Retcode != 0 {
		return asVFileResult(fr)
	}
	c.lastSetfsPid = pid
	c.haveSentSetfs = true
	c.readahead.InvalidateAll()
	return nil
}

// OpenFile implements the forward vFile:open request.
func (c *Connection) OpenFile(ctx context.Context, pid int64, path string, flags hostio.Flag, mode hostio.Mode) (fd int, err error) {
	if err := c.setfs(ctx, pid); err != nil {
		return -1, err
	}
	fr, err := c.vFileExec(ctx, hostio.BuildOpen(path, flags, mode))
	if err != nil {
		return -1, err
	}
	if fr.Retcode < 0 {
		return -1, asVFileResult(fr)
	}
	return int(fr.Retcode), nil
}

// CloseFile implements the forward vFile:close request, invalidating any
// readahead cached for fd.
func (c *Connection) CloseFile(ctx context.Context, fd int) error {
	fr, err := c.vFileExec(ctx, hostio.BuildClose(fd))
	c.readahead.Invalidate(fd)
	if err != nil {
		return err
	}
	if fr.Retcode != 0 {
		return asVFileResult(fr)
	}
	return nil
}

// Pread implements the forward vFile:pread request, serving from the
// single-fd readahead cache when possible and otherwise issuing one read
// sized to the negotiated packet window and caching it (spec.md §4.7).
func (c *Connection) Pread(ctx context.Context, fd int, count, offset int64) ([]byte, error) {
	if served, ok := c.readahead.Lookup(fd, offset, int(count)); ok {
		return served, nil
	}

	window := int64(c.cfg.HostIO.ReadaheadWindow)
	if window < count {
		window = count
	}
	fr, err := c.vFileExec(ctx, hostio.BuildPread(fd, window, offset))
	if err != nil {
		return nil, err
	}
	if fr.Retcode < 0 {
		return nil, asVFileResult(fr)
	}
	c.readahead.Fill(fd, offset, fr.Attach)
	n := int(count)
	if n > len(fr.Attach) {
		n = len(fr.Attach)
	}
	return fr.Attach[:n], nil
}

// Pwrite implements the forward vFile:pwrite request, invalidating the
// readahead cache for fd (spec.md §4.7: "pwrite or close on fd
// invalidates the cache").
func (c *Connection) Pwrite(ctx context.Context, fd int, offset int64, data []byte) (n int, err error) {
	c.readahead.Invalidate(fd)
	if err := c.framer.Send(ctx, hostio.BuildPwrite(fd, offset, data)); err != nil {
		return 0, err
	}
	reply, err := c.receiveVFileReply(ctx)
	if err != nil {
		return 0, err
	}
	fr, err := hostio.ParseFReply(reply)
	if err != nil {
		return 0, err
	}
	if fr.Retcode < 0 {
		return 0, asVFileResult(fr)
	}
	return int(fr.Retcode), nil
}

// Fstat implements the forward vFile:fstat request.
func (c *Connection) Fstat(ctx context.Context, fd int) (hostio.FioStat, error) {
	fr, err := c.vFileExec(ctx, hostio.BuildFstat(fd))
	if err != nil {
		return hostio.FioStat{}, err
	}
	if fr.Retcode < 0 {
		return hostio.FioStat{}, asVFileResult(fr)
	}
	return hostio.DecodeFioStat(fr.Attach)
}

// Unlink implements the forward vFile:unlink request.
func (c *Connection) Unlink(ctx context.Context, pid int64, path string) error {
	if err := c.setfs(ctx, pid); err != nil {
		return err
	}
	fr, err := c.vFileExec(ctx, hostio.BuildUnlink(path))
	if err != nil {
		return err
	}
	if fr.Retcode != 0 {
		return asVFileResult(fr)
	}
	return nil
}

// Readlink implements the forward vFile:readlink request.
func (c *Connection) Readlink(ctx context.Context, pid int64, path string) (string, error) {
	if err := c.setfs(ctx, pid); err != nil {
		return "", err
	}
	fr, err := c.vFileExec(ctx, hostio.BuildReadlink(path))
	if err != nil {
		return "", err
	}
	if fr.Retcode < 0 {
		return "", asVFileResult(fr)
	}
	return string(fr.Attach), nil
}

// vFileExec sends an ASCII-only vFile request body and parses its F-reply.
func (c *Connection) vFileExec(ctx context.Context, body string) (hostio.FReply, error) {
	reply, err := c.exec(ctx, body)
	if err != nil {
		return hostio.FReply{}, err
	}
	return hostio.ParseFReply([]byte(reply))
}

// receiveVFileReply reads a single non-notification reply frame, used
// after a raw (possibly binary-bearing) pwrite request that bypasses exec.
func (c *Connection) receiveVFileReply(ctx context.Context) ([]byte, error) {
	for {
		frame, err := c.framer.Receive(false)
		if err != nil {
			return nil, err
		}
		if frame.IsNotification {
			c.onNotification(frame.Payload)
			continue
		}
		return frame.Payload, nil
	}
}

// vFileError wraps a failed forward Host I/O call's errno, satisfying the
// error interface so callers can errors.As into it.
type vFileError struct {
	Errno hostio.Errno
}

func (e *vFileError) Error() string { return fmt.Sprintf("rsp: host I/O call failed: %v", e.Errno) }

func asVFileResult(fr hostio.FReply) error {
	if !fr.HasErrno {
		return fmt.Errorf("rsp: host I/O call failed with no errno reported")
	}
	return &vFileError{Errno: fr.Errno}
}

// HostIOErrno extracts the Errno carried by a failed forward Host I/O
// call (OpenFile, Pread, Pwrite, Fstat, Unlink, Readlink), for callers
// outside this package (such as internal/rspfs) that need to translate
// it into their own error space.
func HostIOErrno(err error) (hostio.Errno, bool) {
	var vErr *vFileError
	if errors.As(err, &vErr) {
		return vErr.Errno, true
	}
	return 0, false
}
