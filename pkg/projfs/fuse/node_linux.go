//go:build linux
// +build linux

package fuse

import (
	"bytes"
	"context"
	"path"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/buildbarn/bb-projfs/pkg/projfs"
	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"

	"golang.org/x/sys/unix"
)

// node of the projected file system. Operations are forwarded to the
// underlying file in the storage root, after hydrating it if needed.
type node struct {
	*fs.LoopbackNode
	session *session

	// Serializes hydration and conversion of this node, so that
	// the provider is asked to fill it at most once.
	lock sync.Mutex

	writersLock sync.Mutex
	writers     map[fs.FileHandle]uint32
}

var (
	_ fs.NodeWrapChilder    = (*node)(nil)
	_ fs.NodeLookuper       = (*node)(nil)
	_ fs.NodeOpendirHandler = (*node)(nil)
	_ fs.NodeReaddirer      = (*node)(nil)
	_ fs.NodeOpener         = (*node)(nil)
	_ fs.NodeReleaser       = (*node)(nil)
	_ fs.NodeCreater        = (*node)(nil)
	_ fs.NodeMkdirer        = (*node)(nil)
	_ fs.NodeMknoder        = (*node)(nil)
	_ fs.NodeSymlinker      = (*node)(nil)
	_ fs.NodeLinker         = (*node)(nil)
	_ fs.NodeUnlinker       = (*node)(nil)
	_ fs.NodeRmdirer        = (*node)(nil)
	_ fs.NodeRenamer        = (*node)(nil)
	_ fs.NodeSetattrer      = (*node)(nil)
	_ fs.NodeGetxattrer     = (*node)(nil)
	_ fs.NodeSetxattrer     = (*node)(nil)
	_ fs.NodeRemovexattrer  = (*node)(nil)
	_ fs.NodeListxattrer    = (*node)(nil)
)

func (n *node) WrapChild(ctx context.Context, ops fs.InodeEmbedder) fs.InodeEmbedder {
	return &node{
		LoopbackNode: ops.(*fs.LoopbackNode),
		session:      n.session,
	}
}

// relativePath returns the path of the node relative to the
// virtualization root.
func (n *node) relativePath() string {
	return n.Path(n.Root())
}

func (n *node) childPath(name string) string {
	return path.Join(n.relativePath(), name)
}

func (n *node) storagePath() string {
	return filepath.Join(n.RootData.Path, n.relativePath())
}

func isWriteAccess(flags uint32) bool {
	return flags&syscall.O_ACCMODE != syscall.O_RDONLY
}

// hydrateDirectory requests the provider to enumerate the contents of
// the directory if it is still empty.
func (n *node) hydrateDirectory(ctx context.Context) syscall.Errno {
	if n.session.isSelf(ctx) {
		return fs.OK
	}

	n.lock.Lock()
	defer n.lock.Unlock()

	storagePath := n.storagePath()
	empty, err := hasEmptyFlag(storagePath)
	if err != nil {
		return fs.ToErrno(err)
	}
	if !empty {
		return fs.OK
	}
	if errno := n.session.project(ctx, &projfs.Event{
		ProcessID:      int32(callerProcessID(ctx)),
		Mask:           projfs.EventMaskOnDir,
		Path:           eventPath(n.relativePath()),
		FileDescriptor: -1,
	}); errno != fs.OK {
		return errno
	}
	return fs.ToErrno(clearEmptyFlag(storagePath))
}

// hydrateFileLocked requests the provider to write the contents of the
// file if it is still empty. The provider is handed a descriptor of
// the underlying file that is opened for writing.
func (n *node) hydrateFileLocked(ctx context.Context, storagePath string) syscall.Errno {
	empty, err := hasEmptyFlag(storagePath)
	if err != nil {
		return fs.ToErrno(err)
	}
	if !empty {
		return fs.OK
	}
	fd, err := unix.Open(storagePath, unix.O_WRONLY|unix.O_CLOEXEC, 0)
	if err != nil {
		return fs.ToErrno(err)
	}
	errno := n.session.project(ctx, &projfs.Event{
		ProcessID:      int32(callerProcessID(ctx)),
		Path:           n.relativePath(),
		FileDescriptor: int32(fd),
	})
	unix.Close(fd)
	if errno != fs.OK {
		return errno
	}
	return fs.ToErrno(clearEmptyFlag(storagePath))
}

// convertToFullLocked asks the provider for permission to modify a
// placeholder file. Once permitted, the file is no longer considered
// to be a placeholder.
func (n *node) convertToFullLocked(ctx context.Context, storagePath string) syscall.Errno {
	hasIDs, err := hasPlaceholderIDs(storagePath)
	if err != nil {
		return fs.ToErrno(err)
	}
	if !hasIDs {
		return fs.OK
	}
	if errno := n.session.askPermission(ctx, &projfs.Event{
		ProcessID:      int32(callerProcessID(ctx)),
		Mask:           projfs.EventMaskOpenPerm,
		Path:           n.relativePath(),
		FileDescriptor: -1,
	}); errno != fs.OK {
		return errno
	}
	return fs.ToErrno(removePlaceholderIDs(storagePath))
}

// hydrate ensures that the node is no longer empty. For files, it may
// also be converted to a full file, so that it can be modified.
func (n *node) hydrate(ctx context.Context, convertToFull bool) syscall.Errno {
	if n.IsDir() {
		return n.hydrateDirectory(ctx)
	}
	if n.Mode()&syscall.S_IFMT != syscall.S_IFREG || n.session.isSelf(ctx) {
		return fs.OK
	}

	n.lock.Lock()
	defer n.lock.Unlock()

	storagePath := n.storagePath()
	if errno := n.hydrateFileLocked(ctx, storagePath); errno != fs.OK {
		return errno
	}
	if convertToFull {
		return n.convertToFullLocked(ctx, storagePath)
	}
	return fs.OK
}

func (n *node) registerWriter(fh fs.FileHandle, processID uint32) {
	n.writersLock.Lock()
	defer n.writersLock.Unlock()

	if n.writers == nil {
		n.writers = map[fs.FileHandle]uint32{}
	}
	n.writers[fh] = processID
}

func (n *node) unregisterWriter(fh fs.FileHandle) (uint32, bool) {
	n.writersLock.Lock()
	defer n.writersLock.Unlock()

	processID, ok := n.writers[fh]
	delete(n.writers, fh)
	return processID, ok
}

func (n *node) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	if errno := n.hydrateDirectory(ctx); errno != fs.OK {
		return nil, errno
	}
	return n.LoopbackNode.Lookup(ctx, name, out)
}

func (n *node) OpendirHandle(ctx context.Context, flags uint32) (fs.FileHandle, uint32, syscall.Errno) {
	if errno := n.hydrateDirectory(ctx); errno != fs.OK {
		return nil, 0, errno
	}
	return n.LoopbackNode.OpendirHandle(ctx, flags)
}

func (n *node) Readdir(ctx context.Context) (fs.DirStream, syscall.Errno) {
	if errno := n.hydrateDirectory(ctx); errno != fs.OK {
		return nil, errno
	}
	return n.LoopbackNode.Readdir(ctx)
}

func (n *node) Open(ctx context.Context, flags uint32) (fs.FileHandle, uint32, syscall.Errno) {
	modifies := isWriteAccess(flags) || flags&syscall.O_TRUNC != 0
	if errno := n.hydrate(ctx, modifies); errno != fs.OK {
		return nil, 0, errno
	}
	fh, fuseFlags, errno := n.LoopbackNode.Open(ctx, flags)
	if errno == fs.OK && modifies {
		n.registerWriter(fh, callerProcessID(ctx))
	}
	return fh, fuseFlags, errno
}

func (n *node) Release(ctx context.Context, f fs.FileHandle) syscall.Errno {
	errno := fs.OK
	if fr, ok := f.(fs.FileReleaser); ok {
		errno = fr.Release(ctx)
	}
	// The kernel does not necessarily provide the process ID for
	// releases, so use the one of the process that opened the file.
	if processID, ok := n.unregisterWriter(f); ok {
		n.session.notify(ctx, &projfs.Event{
			ProcessID:      int32(processID),
			Mask:           projfs.EventMaskCloseWrite,
			Path:           n.relativePath(),
			FileDescriptor: -1,
		})
	}
	return errno
}

func (n *node) Create(ctx context.Context, name string, flags, mode uint32, out *fuse.EntryOut) (*fs.Inode, fs.FileHandle, uint32, syscall.Errno) {
	if errno := n.hydrateDirectory(ctx); errno != fs.OK {
		return nil, nil, 0, errno
	}
	inode, fh, fuseFlags, errno := n.LoopbackNode.Create(ctx, name, flags, mode, out)
	if errno != fs.OK {
		return nil, nil, 0, errno
	}
	processID := callerProcessID(ctx)
	n.session.notify(ctx, &projfs.Event{
		ProcessID:      int32(processID),
		Mask:           projfs.EventMaskCreate,
		Path:           n.childPath(name),
		FileDescriptor: -1,
	})
	if child, ok := inode.Operations().(*node); ok && isWriteAccess(flags) {
		child.registerWriter(fh, processID)
	}
	return inode, fh, fuseFlags, fs.OK
}

func (n *node) notifyCreated(ctx context.Context, name string, mask projfs.EventMask) {
	n.session.notify(ctx, &projfs.Event{
		ProcessID:      int32(callerProcessID(ctx)),
		Mask:           projfs.EventMaskCreate | mask,
		Path:           n.childPath(name),
		FileDescriptor: -1,
	})
}

func (n *node) Mkdir(ctx context.Context, name string, mode uint32, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	if errno := n.hydrateDirectory(ctx); errno != fs.OK {
		return nil, errno
	}
	inode, errno := n.LoopbackNode.Mkdir(ctx, name, mode, out)
	if errno == fs.OK {
		n.notifyCreated(ctx, name, projfs.EventMaskOnDir)
	}
	return inode, errno
}

func (n *node) Mknod(ctx context.Context, name string, mode, rdev uint32, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	if errno := n.hydrateDirectory(ctx); errno != fs.OK {
		return nil, errno
	}
	inode, errno := n.LoopbackNode.Mknod(ctx, name, mode, rdev, out)
	if errno == fs.OK {
		n.notifyCreated(ctx, name, 0)
	}
	return inode, errno
}

func (n *node) Symlink(ctx context.Context, target, name string, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	if errno := n.hydrateDirectory(ctx); errno != fs.OK {
		return nil, errno
	}
	inode, errno := n.LoopbackNode.Symlink(ctx, target, name, out)
	if errno == fs.OK {
		n.notifyCreated(ctx, name, 0)
	}
	return inode, errno
}

func (n *node) Link(ctx context.Context, target fs.InodeEmbedder, name string, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	if errno := n.hydrateDirectory(ctx); errno != fs.OK {
		return nil, errno
	}
	targetNode, ok := target.(*node)
	if !ok {
		return nil, syscall.EXDEV
	}
	if errno := targetNode.hydrate(ctx, false); errno != fs.OK {
		return nil, errno
	}
	inode, errno := n.LoopbackNode.Link(ctx, target, name, out)
	if errno == fs.OK {
		n.session.notify(ctx, &projfs.Event{
			ProcessID:      int32(callerProcessID(ctx)),
			Mask:           projfs.EventMaskCreate | projfs.EventMaskOnLink,
			Path:           targetNode.relativePath(),
			TargetPath:     n.childPath(name),
			HasTargetPath:  true,
			FileDescriptor: -1,
		})
	}
	return inode, errno
}

func (n *node) remove(ctx context.Context, name string, mask projfs.EventMask, remove func(context.Context, string) syscall.Errno) syscall.Errno {
	if errno := n.hydrateDirectory(ctx); errno != fs.OK {
		return errno
	}
	if errno := n.session.askPermission(ctx, &projfs.Event{
		ProcessID:      int32(callerProcessID(ctx)),
		Mask:           projfs.EventMaskDeletePerm | mask,
		Path:           n.childPath(name),
		FileDescriptor: -1,
	}); errno != fs.OK {
		return errno
	}
	return remove(ctx, name)
}

func (n *node) Unlink(ctx context.Context, name string) syscall.Errno {
	return n.remove(ctx, name, 0, n.LoopbackNode.Unlink)
}

func (n *node) Rmdir(ctx context.Context, name string) syscall.Errno {
	return n.remove(ctx, name, projfs.EventMaskOnDir, n.LoopbackNode.Rmdir)
}

func (n *node) Rename(ctx context.Context, name string, newParent fs.InodeEmbedder, newName string, flags uint32) syscall.Errno {
	newParentNode, ok := newParent.(*node)
	if !ok {
		return syscall.EXDEV
	}
	if errno := n.hydrateDirectory(ctx); errno != fs.OK {
		return errno
	}
	if errno := newParentNode.hydrateDirectory(ctx); errno != fs.OK {
		return errno
	}
	// The provider only knows the contents of the source under its
	// original name, so hydrate it before moving it.
	if child := n.GetChild(name); child != nil {
		if childNode, ok := child.Operations().(*node); ok {
			if errno := childNode.hydrate(ctx, false); errno != fs.OK {
				return errno
			}
		}
	}

	if errno := n.LoopbackNode.Rename(ctx, name, newParent, newName, flags); errno != fs.OK {
		return errno
	}

	var mask projfs.EventMask
	var st unix.Stat_t
	if err := unix.Lstat(filepath.Join(newParentNode.storagePath(), newName), &st); err == nil && st.Mode&unix.S_IFMT == unix.S_IFDIR {
		mask |= projfs.EventMaskOnDir
	}
	n.session.notify(ctx, &projfs.Event{
		ProcessID:      int32(callerProcessID(ctx)),
		Mask:           projfs.EventMaskMove | mask,
		Path:           n.childPath(name),
		TargetPath:     newParentNode.childPath(newName),
		HasTargetPath:  true,
		FileDescriptor: -1,
	})
	return fs.OK
}

func (n *node) Setattr(ctx context.Context, f fs.FileHandle, in *fuse.SetAttrIn, out *fuse.AttrOut) syscall.Errno {
	_, truncates := in.GetSize()
	if truncates {
		if errno := n.hydrate(ctx, true); errno != fs.OK {
			return errno
		}
	}
	if errno := n.LoopbackNode.Setattr(ctx, f, in, out); errno != fs.OK {
		return errno
	}
	// Truncations through a file handle are reported when the
	// handle is released.
	if truncates && f == nil {
		n.session.notify(ctx, &projfs.Event{
			ProcessID:      int32(callerProcessID(ctx)),
			Mask:           projfs.EventMaskCloseWrite,
			Path:           n.relativePath(),
			FileDescriptor: -1,
		})
	}
	return fs.OK
}

func (n *node) Getxattr(ctx context.Context, attr string, dest []byte) (uint32, syscall.Errno) {
	if isProjectionAttribute(attr) {
		return 0, fs.ENOATTR
	}
	return n.LoopbackNode.Getxattr(ctx, attr, dest)
}

func (n *node) Setxattr(ctx context.Context, attr string, data []byte, flags uint32) syscall.Errno {
	if isProjectionAttribute(attr) {
		return syscall.EPERM
	}
	return n.LoopbackNode.Setxattr(ctx, attr, data, flags)
}

func (n *node) Removexattr(ctx context.Context, attr string) syscall.Errno {
	if isProjectionAttribute(attr) {
		return syscall.EPERM
	}
	return n.LoopbackNode.Removexattr(ctx, attr)
}

func (n *node) Listxattr(ctx context.Context, dest []byte) (uint32, syscall.Errno) {
	storagePath := n.storagePath()
	size, err := unix.Llistxattr(storagePath, nil)
	if err != nil {
		return 0, fs.ToErrno(err)
	}
	names := make([]byte, size)
	size, err = unix.Llistxattr(storagePath, names)
	if err != nil {
		return 0, fs.ToErrno(err)
	}
	visibleNames := filterAttributeNames(names[:size])
	if len(dest) == 0 {
		return uint32(len(visibleNames)), fs.OK
	}
	if len(visibleNames) > len(dest) {
		return 0, syscall.ERANGE
	}
	return uint32(copy(dest, visibleNames)), fs.OK
}

// filterAttributeNames removes the names of extended attributes used
// for tracking projection state from a NUL separated list.
func filterAttributeNames(names []byte) []byte {
	var visibleNames []byte
	for _, name := range bytes.Split(names, []byte{0}) {
		if len(name) > 0 && !isProjectionAttribute(string(name)) {
			visibleNames = append(visibleNames, name...)
			visibleNames = append(visibleNames, 0)
		}
	}
	return visibleNames
}
