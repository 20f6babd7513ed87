package projfs

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"syscall"

	"golang.org/x/sys/unix"
)

// GetProjectionState returns the materialization state of a path, as
// reported by the driver.
func (vi *VirtualizationInstance) GetProjectionState(relativePath string) (ProjectionState, Result) {
	s := vi.session.Load()
	if s == nil {
		return ProjectionStateUnknown, ResultErrDriverNotLoaded
	}
	return s.native.GetProjState(relativePath)
}

// WriteFileContents writes data into a file descriptor that was handed
// to Callbacks.OnGetFileStream(). Short writes are resumed, and writes
// interrupted by a signal are retried.
func (vi *VirtualizationInstance) WriteFileContents(fd int, data []byte) Result {
	for len(data) > 0 {
		n, err := unix.Write(fd, data)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return ResultErrIO
		}
		if n <= 0 {
			return ResultErrIO
		}
		data = data[n:]
	}
	return ResultSuccess
}

type fileContentsWriter struct {
	instance *VirtualizationInstance
	fd       int
}

func (w fileContentsWriter) Write(p []byte) (int, error) {
	if result := w.instance.WriteFileContents(w.fd, p); result != ResultSuccess {
		return 0, result.Err()
	}
	return len(p), nil
}

// FileContentsWriter returns an io.Writer that calls
// WriteFileContents() against the provided file descriptor. This
// permits using io.Copy() and friends to stream file contents.
func (vi *VirtualizationInstance) FileContentsWriter(fd int) io.Writer {
	return fileContentsWriter{
		instance: vi,
		fd:       fd,
	}
}

// WritePlaceholderDirectory creates an empty placeholder directory.
// Its children are enumerated upon first access.
func (vi *VirtualizationInstance) WritePlaceholderDirectory(relativePath string) Result {
	s := vi.session.Load()
	if s == nil {
		return ResultErrDriverNotLoaded
	}
	return s.native.CreateProjDir(relativePath, 0o777)
}

// WritePlaceholderFile creates an empty placeholder file. Its contents
// are requested through Callbacks.OnGetFileStream() upon first access.
//
// The provider ID and content ID must both be PlaceholderIDLength
// bytes in size.
func (vi *VirtualizationInstance) WritePlaceholderFile(relativePath string, providerID, contentID []byte, fileSize uint64, fileMode uint32) Result {
	validatePlaceholderIDs(providerID, contentID)
	s := vi.session.Load()
	if s == nil {
		return ResultErrDriverNotLoaded
	}
	return s.native.CreateProjFile(relativePath, fileSize, fileMode, providerID, contentID)
}

// WriteSymLink creates a symbolic link. Symbolic links are never
// hydrated, as their target is provided upfront.
func (vi *VirtualizationInstance) WriteSymLink(relativePath, symlinkTarget string) Result {
	s := vi.session.Load()
	if s == nil {
		return ResultErrDriverNotLoaded
	}
	return s.native.CreateProjSymlink(relativePath, symlinkTarget)
}

// DeleteFile removes a path from the virtualization root, as long as
// doing so does not destroy any data that only exists locally. Paths
// that no longer exist are considered to be deleted successfully.
//
// The root directory of the virtualization root can never be deleted.
// Update flags are accepted for compatibility, but have no effect.
func (vi *VirtualizationInstance) DeleteFile(relativePath string, updateFlags UpdateType) (UpdateFailureCause, Result) {
	if relativePath == "" {
		return UpdateFailureCauseNoFailure, ResultErrDirectoryNotEmpty
	}
	s := vi.session.Load()
	if s == nil {
		return UpdateFailureCauseNoFailure, ResultErrDriverNotLoaded
	}

	fullPath := filepath.Join(s.virtualizationRoot, relativePath)
	isDirectory := false
	if fileInfo, err := os.Lstat(fullPath); err == nil {
		isDirectory = fileInfo.IsDir()
	}

	result := ResultSuccess
	if !isDirectory {
		state, stateResult := s.native.GetProjState(relativePath)
		if (stateResult == ResultSuccess && state == ProjectionStateFull) || (stateResult == ResultInvalid && state == ProjectionStateUnknown) {
			return UpdateFailureCauseDirtyData, ResultErrVirtualizationInvalidOperation
		}
		result = stateResult
	}
	if result == ResultSuccess {
		result = removePath(fullPath, isDirectory)
	}

	switch result {
	case ResultErrFileNotFound, ResultErrPathNotFound:
		return UpdateFailureCauseNoFailure, ResultSuccess
	case ResultErrAccessDenied:
		return UpdateFailureCauseReadOnly, result
	default:
		return UpdateFailureCauseNoFailure, result
	}
}

func removePath(fullPath string, isDirectory bool) Result {
	var err error
	if isDirectory {
		err = unix.Rmdir(fullPath)
	} else {
		err = unix.Unlink(fullPath)
	}
	if err == nil {
		return ResultSuccess
	}
	return resultFromRemovalError(err)
}

func resultFromRemovalError(err error) Result {
	var errno syscall.Errno
	if !errors.As(err, &errno) {
		return ResultInvalid
	}
	switch errno {
	case syscall.ENOENT:
		return ResultErrFileNotFound
	case syscall.ENOTDIR:
		return ResultErrPathNotFound
	case syscall.ENOTEMPTY, syscall.EEXIST:
		return ResultErrDirectoryNotEmpty
	case syscall.EACCES, syscall.EPERM:
		return ResultErrAccessDenied
	case syscall.EINVAL:
		return ResultInvalid
	default:
		return ResultErrIO
	}
}

// UpdatePlaceholderIfNeeded replaces a path with a new placeholder
// file. The existing path is deleted using the same rules as
// DeleteFile(). If deletion is refused, the failure cause is returned
// and no placeholder is created.
func (vi *VirtualizationInstance) UpdatePlaceholderIfNeeded(relativePath string, providerID, contentID []byte, fileSize uint64, fileMode uint32, updateFlags UpdateType) (UpdateFailureCause, Result) {
	validatePlaceholderIDs(providerID, contentID)
	if failureCause, result := vi.DeleteFile(relativePath, updateFlags); result != ResultSuccess {
		return failureCause, result
	}
	return UpdateFailureCauseNoFailure, vi.WritePlaceholderFile(relativePath, providerID, contentID, fileSize, fileMode)
}

// ReplacePlaceholderFileWithSymLink replaces a path with a symbolic
// link, using the same rules as UpdatePlaceholderIfNeeded().
func (vi *VirtualizationInstance) ReplacePlaceholderFileWithSymLink(relativePath, symlinkTarget string, updateFlags UpdateType) (UpdateFailureCause, Result) {
	if failureCause, result := vi.DeleteFile(relativePath, updateFlags); result != ResultSuccess {
		return failureCause, result
	}
	return UpdateFailureCauseNoFailure, vi.WriteSymLink(relativePath, symlinkTarget)
}
