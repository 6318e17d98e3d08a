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

// Package rspfs bridges a remote.Connection's Host I/O (vFile) namespace
// (spec.md §4.7, SPEC_FULL.md §3.4) onto a local FUSE mount: reading or
// writing a file under the mount point turns into vFile:pread/pwrite
// calls against the paths the debug stub's target process can see,
// instead of the local host's own filesystem.
//
// There is no vFile directory-listing request in the protocol, so unlike
// gcsfuse's inode.DirInode tree this filesystem never populates a
// directory's children ahead of time: every lookup is a fresh open+fstat
// against the stub, and the mount only ever shows entries a caller has
// already looked up by name.
package rspfs

import (
	"os"
	"sync"

	"github.com/jacobsa/fuse"
	"github.com/jacobsa/fuse/fuseops"
	"github.com/jacobsa/fuse/fuseutil"

	"github.com/rspcore/rspcore/internal/hostio"
	"github.com/rspcore/rspcore/internal/remote"
)

// Options configures the bridge's synthesized inode attributes; the vFile
// protocol carries its own mode/uid/gid per file, but those are host-side
// values from the stub's target and are not always meaningful to a local
// kernel, so callers may force file mode bits with FileMode != 0.
type Options struct {
	Pid      int64
	UID      uint32
	GID      uint32
	FileMode os.FileMode // Replaces every regular file's reported mode; 0 reports the stub's permission bits.
}

type rspInode struct {
	path        string
	isDir       bool
	lookupCount uint64
}

type fileHandle struct {
	fd int
}

// fileSystem implements fuseutil.FileSystem (LOCKS_EXCLUDED(mu) throughout,
// following fs/fs.go's convention) over a single remote.Connection.
type fileSystem struct {
	fuseutil.NotImplementedFileSystem

	conn *remote.Connection
	opts Options

	mu           sync.Mutex
	inodes       map[fuseops.InodeID]*rspInode
	pathToInode  map[string]fuseops.InodeID
	nextInodeID  fuseops.InodeID
	handles      map[fuseops.HandleID]*fileHandle
	nextHandleID fuseops.HandleID
}

// NewServer builds a fuse.Server exposing conn's vFile namespace.
func NewServer(conn *remote.Connection, opts Options) fuse.Server {
	fs := &fileSystem{
		conn:        conn,
		opts:        opts,
		inodes:      make(map[fuseops.InodeID]*rspInode),
		pathToInode: make(map[string]fuseops.InodeID),
		nextInodeID: fuseops.RootInodeID + 1,
		handles:     make(map[fuseops.HandleID]*fileHandle),
	}
	root := &rspInode{path: "/", isDir: true, lookupCount: 1}
	fs.inodes[fuseops.RootInodeID] = root
	fs.pathToInode["/"] = fuseops.RootInodeID
	return fuseutil.NewFileSystemServer(fs)
}

// Mount starts serving NewServer(conn, opts) at mountPoint. Callers are
// responsible for unmounting the returned *fuse.MountedFileSystem on
// shutdown (fuse.Unmount).
func Mount(mountPoint string, conn *remote.Connection, opts Options) (*fuse.MountedFileSystem, error) {
	server := NewServer(conn, opts)
	mountCfg := &fuse.MountConfig{
		FSName:  "rspcore",
		Subtype: "rspcore",
	}
	return fuse.Mount(mountPoint, server, mountCfg)
}

func (fs *fileSystem) Init(op *fuseops.InitOp) (err error) {
	return
}

func (fs *fileSystem) childPath(parent string, name string) string {
	if parent == "/" {
		return "/" + name
	}
	return parent + "/" + name
}

func toFuseError(err error) error {
	if errno, ok := remote.HostIOErrno(err); ok {
		return errno.ToHost()
	}
	return err
}

func (fs *fileSystem) attributesFor(st hostio.FioStat) fuseops.InodeAttributes {
	mode := os.FileMode(st.Mode & 0o777)
	if st.Mode&hostio.SIfDir != 0 {
		mode |= os.ModeDir
	}
	if fs.opts.FileMode != 0 && st.Mode&hostio.SIfDir == 0 {
		mode = fs.opts.FileMode
	}
	return fuseops.InodeAttributes{
		Size:  st.Size,
		Nlink: 1,
		Mode:  mode,
		Uid:   fs.opts.UID,
		Gid:   fs.opts.GID,
	}
}

// LOCKS_EXCLUDED(fs.mu)
func (fs *fileSystem) LookUpInode(op *fuseops.LookUpInodeOp) (err error) {
	fs.mu.Lock()
	parent, ok := fs.inodes[op.Parent]
	fs.mu.Unlock()
	if !ok || !parent.isDir {
		return fuse.ENOENT
	}

	path := fs.childPath(parent.path, op.Name)

	fd, err := fs.conn.OpenFile(op.Context(), fs.opts.Pid, path, hostio.ORdonly, 0)
	if err != nil {
		return toFuseError(err)
	}
	st, err := fs.conn.Fstat(op.Context(), fd)
	fs.conn.CloseFile(op.Context(), fd)
	if err != nil {
		return toFuseError(err)
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()
	id, exists := fs.pathToInode[path]
	if !exists {
		id = fs.nextInodeID
		fs.nextInodeID++
		fs.inodes[id] = &rspInode{path: path, isDir: st.Mode&hostio.SIfDir != 0}
		fs.pathToInode[path] = id
	}
	fs.inodes[id].lookupCount++

	op.Entry.Child = id
	op.Entry.Attributes = fs.attributesFor(st)
	return nil
}

// LOCKS_EXCLUDED(fs.mu)
func (fs *fileSystem) GetInodeAttributes(op *fuseops.GetInodeAttributesOp) (err error) {
	fs.mu.Lock()
	in, ok := fs.inodes[op.Inode]
	fs.mu.Unlock()
	if !ok {
		return fuse.ENOENT
	}

	fd, err := fs.conn.OpenFile(op.Context(), fs.opts.Pid, in.path, hostio.ORdonly, 0)
	if err != nil {
		return toFuseError(err)
	}
	st, err := fs.conn.Fstat(op.Context(), fd)
	fs.conn.CloseFile(op.Context(), fd)
	if err != nil {
		return toFuseError(err)
	}
	op.Attributes = fs.attributesFor(st)
	return nil
}

// LOCKS_EXCLUDED(fs.mu)
func (fs *fileSystem) ForgetInode(op *fuseops.ForgetInodeOp) (err error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	in, ok := fs.inodes[op.Inode]
	if !ok {
		return nil
	}
	if uint64(op.N) >= in.lookupCount {
		delete(fs.inodes, op.Inode)
		delete(fs.pathToInode, in.path)
		return nil
	}
	in.lookupCount -= uint64(op.N)
	return nil
}

// LOCKS_EXCLUDED(fs.mu)
func (fs *fileSystem) OpenFile(op *fuseops.OpenFileOp) (err error) {
	fs.mu.Lock()
	in, ok := fs.inodes[op.Inode]
	fs.mu.Unlock()
	if !ok {
		return fuse.ENOENT
	}

	// vFile's open flags are a debug-protocol concept distinct from the
	// kernel's per-call open flags; rather than guess at a lossy mapping
	// between the two, every handle is opened read-write and falls back to
	// read-only for paths the stub denies write access to.
	fd, err := fs.conn.OpenFile(op.Context(), fs.opts.Pid, in.path, hostio.ORdwr, hostio.Mode(0o644))
	if err != nil {
		fd, err = fs.conn.OpenFile(op.Context(), fs.opts.Pid, in.path, hostio.ORdonly, 0)
	}
	if err != nil {
		return toFuseError(err)
	}

	fs.mu.Lock()
	handleID := fs.nextHandleID
	fs.nextHandleID++
	fs.handles[handleID] = &fileHandle{fd: fd}
	fs.mu.Unlock()

	op.Handle = handleID
	return nil
}

// LOCKS_EXCLUDED(fs.mu)
func (fs *fileSystem) ReadFile(op *fuseops.ReadFileOp) (err error) {
	fs.mu.Lock()
	h, ok := fs.handles[op.Handle]
	fs.mu.Unlock()
	if !ok {
		return fuse.EIO
	}

	data, err := fs.conn.Pread(op.Context(), h.fd, int64(op.Size), op.Offset)
	if err != nil {
		return toFuseError(err)
	}
	op.Data = data
	return nil
}

// LOCKS_EXCLUDED(fs.mu)
func (fs *fileSystem) WriteFile(op *fuseops.WriteFileOp) (err error) {
	fs.mu.Lock()
	h, ok := fs.handles[op.Handle]
	fs.mu.Unlock()
	if !ok {
		return fuse.EIO
	}

	_, err = fs.conn.Pwrite(op.Context(), h.fd, op.Offset, op.Data)
	if err != nil {
		return toFuseError(err)
	}
	return nil
}

func (fs *fileSystem) FlushFile(op *fuseops.FlushFileOp) (err error) {
	return nil
}

func (fs *fileSystem) SyncFile(op *fuseops.SyncFileOp) (err error) {
	return nil
}

// LOCKS_EXCLUDED(fs.mu)
func (fs *fileSystem) ReleaseFileHandle(op *fuseops.ReleaseFileHandleOp) (err error) {
	fs.mu.Lock()
	h, ok := fs.handles[op.Handle]
	delete(fs.handles, op.Handle)
	fs.mu.Unlock()
	if !ok {
		return nil
	}
	return fs.conn.CloseFile(op.Context(), h.fd)
}

// LOCKS_EXCLUDED(fs.mu)
func (fs *fileSystem) ReadSymlink(op *fuseops.ReadSymlinkOp) (err error) {
	fs.mu.Lock()
	in, ok := fs.inodes[op.Inode]
	fs.mu.Unlock()
	if !ok {
		return fuse.ENOENT
	}
	target, err := fs.conn.Readlink(op.Context(), fs.opts.Pid, in.path)
	if err != nil {
		return toFuseError(err)
	}
	op.Target = target
	return nil
}

// LOCKS_EXCLUDED(fs.mu)
func (fs *fileSystem) Unlink(op *fuseops.UnlinkOp) (err error) {
	fs.mu.Lock()
	parent, ok := fs.inodes[op.Parent]
	fs.mu.Unlock()
	if !ok {
		return fuse.ENOENT
	}
	path := fs.childPath(parent.path, op.Name)
	if err = fs.conn.Unlink(op.Context(), fs.opts.Pid, path); err != nil {
		return toFuseError(err)
	}
	fs.mu.Lock()
	if id, ok := fs.pathToInode[path]; ok {
		delete(fs.inodes, id)
		delete(fs.pathToInode, path)
	}
	fs.mu.Unlock()
	return nil
}
