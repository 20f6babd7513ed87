//go:build linux
// +build linux

package fuse

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"syscall"
	"time"
	"unicode/utf8"

	"github.com/buildbarn/bb-projfs/pkg/projfs"
	"github.com/buildbarn/bb-storage/pkg/clock"
	"github.com/buildbarn/bb-storage/pkg/util"
	"github.com/hanwen/go-fuse/v2/fs"
	go_fuse "github.com/hanwen/go-fuse/v2/fuse"

	"golang.org/x/sys/unix"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type driver struct {
	clock         clock.Clock
	configuration DriverConfiguration
}

// NewDriver creates a projfs.Driver that exposes the storage root at
// the virtualization root through a FUSE mount. Placeholders are
// regular files and directories in the storage root, tagged with
// extended attributes.
func NewDriver(clock clock.Clock, configuration DriverConfiguration) projfs.Driver {
	return &driver{
		clock:         clock,
		configuration: configuration,
	}
}

func (d *driver) NewSession(storageRoot, virtualizationRoot string, handlers projfs.Handlers, options projfs.MountOptions) (projfs.NativeSession, error) {
	if options.WorkerThreadCount < 1 {
		return nil, status.Errorf(codes.InvalidArgument, "Worker thread count must be positive, while %d was provided", options.WorkerThreadCount)
	}
	var st unix.Stat_t
	if err := unix.Stat(storageRoot, &st); err != nil {
		return nil, util.StatusWrapf(err, "Failed to stat storage root %#v", storageRoot)
	}
	if st.Mode&unix.S_IFMT != unix.S_IFDIR {
		return nil, status.Errorf(codes.InvalidArgument, "Storage root %#v is not a directory", storageRoot)
	}
	return &session{
		clock:              d.clock,
		configuration:      d.configuration,
		storageRoot:        storageRoot,
		storageRootDevice:  uint64(st.Dev),
		virtualizationRoot: virtualizationRoot,
		handlers:           handlers,
		options:            options,
		processID:          uint32(os.Getpid()),
	}, nil
}

type session struct {
	clock              clock.Clock
	configuration      DriverConfiguration
	storageRoot        string
	storageRootDevice  uint64
	virtualizationRoot string
	handlers           projfs.Handlers
	options            projfs.MountOptions
	processID          uint32

	lock    sync.Mutex
	server  *go_fuse.Server
	workers *eventWorkerPool
}

// removeStaleMounts removes any FUSE mounts left behind by a previous
// invocation that did not shut down cleanly.
func removeStaleMounts(path string) {
	for unix.Unmount(path, 0) == nil {
	}
}

func (s *session) Start() error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.server != nil {
		return status.Error(codes.FailedPrecondition, "Session has already been started")
	}
	if s.options.Initial || s.configuration.ProjectStorageRoot {
		if err := setEmptyFlag(s.storageRoot); err != nil {
			return util.StatusWrapf(err, "Failed to mark storage root %#v as empty", s.storageRoot)
		}
	}

	removeStaleMounts(s.virtualizationRoot)

	rootData := &fs.LoopbackRoot{
		Path: s.storageRoot,
		Dev:  s.storageRootDevice,
	}
	root := &node{
		LoopbackNode: &fs.LoopbackNode{RootData: rootData},
		session:      s,
	}
	rootData.RootNode = root

	// The provider modifies the storage root without the kernel
	// being aware of it. Disable all caching of directory entries
	// and attributes.
	var noCaching time.Duration
	mountOptions := go_fuse.MountOptions{
		// The name isn't strictly necessary, but is filled in
		// to prevent container runtimes from failing to parse
		// the mount table.
		FsName:      s.configuration.FSName,
		Name:        "projfs",
		AllowOther:  s.configuration.AllowOther,
		DirectMount: s.configuration.DirectMount,
		Debug:       s.configuration.Debug,
	}
	s.workers = newEventWorkerPool(s.clock, s.options.WorkerThreadCount)
	server, err := go_fuse.NewServer(
		fs.NewNodeFS(root, &fs.Options{
			MountOptions:    mountOptions,
			EntryTimeout:    &noCaching,
			AttrTimeout:     &noCaching,
			NegativeTimeout: &noCaching,
		}),
		s.virtualizationRoot,
		&mountOptions)
	if err != nil {
		s.workers.stop()
		s.workers = nil
		return util.StatusWrap(err, "Failed to create FUSE server")
	}
	go server.Serve()
	s.server = server
	return nil
}

func (s *session) Stop() error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.server == nil {
		return nil
	}
	// Leave the session intact if the mount is still busy, so that
	// unmounting may be retried.
	if err := s.server.Unmount(); err != nil {
		return util.StatusWrapf(err, "Failed to unmount virtualization root %#v", s.virtualizationRoot)
	}
	s.server.Wait()
	s.workers.stop()
	s.server = nil
	s.workers = nil
	return nil
}

// resolve converts a path relative to the virtualization root to a
// path in the storage root. Paths that would escape the storage root
// are rejected.
func (s *session) resolve(relativePath string) (string, projfs.Result) {
	if relativePath == "" || relativePath == "." {
		return s.storageRoot, projfs.ResultSuccess
	}
	if !filepath.IsLocal(relativePath) {
		return "", projfs.ResultInvalid
	}
	return filepath.Join(s.storageRoot, relativePath), projfs.ResultSuccess
}

func resultFromError(err error) projfs.Result {
	if errno, ok := err.(syscall.Errno); ok {
		return projfs.ResultFromErrno(errno)
	}
	return projfs.ResultInvalid
}

func (s *session) GetProjState(relativePath string) (projfs.ProjectionState, projfs.Result) {
	path, r := s.resolve(relativePath)
	if r != projfs.ResultSuccess {
		return projfs.ProjectionStateUnknown, r
	}
	var st unix.Stat_t
	if err := unix.Lstat(path, &st); err != nil {
		if err == unix.ENOENT || err == unix.ENOTDIR {
			return projfs.ProjectionStateUnknown, projfs.ResultErrFileNotFound
		}
		return projfs.ProjectionStateUnknown, resultFromError(err)
	}

	switch st.Mode & unix.S_IFMT {
	case unix.S_IFDIR:
		empty, err := hasEmptyFlag(path)
		if err != nil {
			return projfs.ProjectionStateUnknown, resultFromError(err)
		}
		if empty {
			return projfs.ProjectionStateEmpty, projfs.ResultSuccess
		}
		return projfs.ProjectionStateFull, projfs.ResultSuccess
	case unix.S_IFREG:
		empty, err := hasEmptyFlag(path)
		if err != nil {
			return projfs.ProjectionStateUnknown, resultFromError(err)
		}
		if empty {
			return projfs.ProjectionStateEmpty, projfs.ResultSuccess
		}
		hasIDs, err := hasPlaceholderIDs(path)
		if err != nil {
			return projfs.ProjectionStateUnknown, resultFromError(err)
		}
		if hasIDs {
			return projfs.ProjectionStatePlaceholder, projfs.ResultSuccess
		}
		return projfs.ProjectionStateFull, projfs.ResultSuccess
	case unix.S_IFLNK:
		// The target of a symbolic link cannot be changed, so
		// replacing it never discards any local changes.
		return projfs.ProjectionStatePlaceholder, projfs.ResultSuccess
	default:
		return projfs.ProjectionStateUnknown, projfs.ResultInvalid
	}
}

func (s *session) GetProjAttrs(relativePath string, providerID, contentID []byte) projfs.Result {
	path, r := s.resolve(relativePath)
	if r != projfs.ResultSuccess {
		return r
	}
	if err := getPlaceholderIDs(path, providerID, contentID); err != nil {
		return resultFromError(err)
	}
	return projfs.ResultSuccess
}

func (s *session) CreateProjDir(relativePath string, mode uint32) projfs.Result {
	path, r := s.resolve(relativePath)
	if r != projfs.ResultSuccess {
		return r
	}
	if err := unix.Mkdir(path, mode&0o7777); err != nil {
		return resultFromError(err)
	}
	if err := setEmptyFlag(path); err != nil {
		unix.Rmdir(path)
		return resultFromError(err)
	}
	return projfs.ResultSuccess
}

func (s *session) CreateProjFile(relativePath string, fileSize uint64, fileMode uint32, providerID, contentID []byte) projfs.Result {
	path, r := s.resolve(relativePath)
	if r != projfs.ResultSuccess {
		return r
	}
	fd, err := unix.Open(path, unix.O_WRONLY|unix.O_CREAT|unix.O_EXCL|unix.O_CLOEXEC, fileMode&0o7777)
	if err != nil {
		return resultFromError(err)
	}
	// Placeholder files are sparse, so that their size is reported
	// correctly without storing any data.
	err = unix.Ftruncate(fd, int64(fileSize))
	unix.Close(fd)
	if err == nil {
		err = setEmptyFlag(path)
	}
	if err == nil {
		err = setPlaceholderIDs(path, providerID, contentID)
	}
	if err != nil {
		unix.Unlink(path)
		return resultFromError(err)
	}
	return projfs.ResultSuccess
}

func (s *session) CreateProjSymlink(relativePath, symlinkTarget string) projfs.Result {
	path, r := s.resolve(relativePath)
	if r != projfs.ResultSuccess {
		return r
	}
	if err := unix.Symlink(symlinkTarget, path); err != nil {
		return resultFromError(err)
	}
	return projfs.ResultSuccess
}

// callerProcessID returns the ID of the process that issued the FUSE
// request, or zero if unknown. The kernel provides the ID of the
// calling thread, which is converted to the ID of its thread group.
func callerProcessID(ctx context.Context) uint32 {
	if caller, ok := go_fuse.FromContext(ctx); ok {
		return threadGroupID(caller.Pid)
	}
	return 0
}

// isSelf returns whether a FUSE request was issued by the process
// hosting the provider. Such requests never cause hydration, as the
// provider would otherwise recurse into itself.
func (s *session) isSelf(ctx context.Context) bool {
	return callerProcessID(ctx) == s.processID
}

// eventPath converts a path relative to the virtualization root to the
// form used in events, where the root directory is called ".".
func eventPath(relativePath string) string {
	if relativePath == "" {
		return "."
	}
	return relativePath
}

func hasValidEventPaths(ev *projfs.Event) bool {
	return utf8.ValidString(ev.Path) && utf8.ValidString(ev.TargetPath)
}

func (s *session) dispatch(ctx context.Context, kind *eventKind, handler projfs.EventHandler, ev *projfs.Event) int32 {
	// The provider is never informed about its own changes. Not
	// handing these events to the workers also prevents handlers
	// from waiting on workers that are blocked on the handler.
	if uint32(ev.ProcessID) == s.processID {
		return 0
	}
	record, err := ev.MarshalBinary()
	if err != nil {
		s.handlers.ErrorLogger.Log(util.StatusWrapf(err, "Failed to encode event for %#v", ev.Path))
		return -int32(syscall.EINVAL)
	}
	return s.workers.call(ctx, kind, handler, record)
}

// project asks the provider to hydrate a directory or file.
func (s *session) project(ctx context.Context, ev *projfs.Event) syscall.Errno {
	if r := s.dispatch(ctx, &eventKindProjection, s.handlers.HandleProjEvent, ev); r < 0 {
		return syscall.Errno(-r)
	}
	return fs.OK
}

// askPermission asks the provider whether an operation may proceed.
// Paths that cannot be represented in an event only exist locally,
// meaning the provider has no reason to object.
func (s *session) askPermission(ctx context.Context, ev *projfs.Event) syscall.Errno {
	if !hasValidEventPaths(ev) {
		return fs.OK
	}
	switch r := s.dispatch(ctx, &eventKindPermission, s.handlers.HandlePermEvent, ev); {
	case r == projfs.PermissionDeny:
		return syscall.EPERM
	case r < 0:
		return syscall.Errno(-r)
	default:
		return fs.OK
	}
}

// notify informs the provider of an operation that has completed.
// Failures are logged, as the operation can no longer be undone.
func (s *session) notify(ctx context.Context, ev *projfs.Event) {
	if !hasValidEventPaths(ev) {
		return
	}
	if r := s.dispatch(ctx, &eventKindNotification, s.handlers.HandleNotifyEvent, ev); r < 0 {
		s.handlers.ErrorLogger.Log(status.Errorf(codes.Internal, "Notification for %#v failed: %s", ev.Path, unix.ErrnoName(syscall.Errno(-r))))
	}
}
