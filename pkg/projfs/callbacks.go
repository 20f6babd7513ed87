package projfs

import (
	"context"

	"github.com/buildbarn/bb-storage/pkg/util"
)

// Callbacks is the interface that content providers implement to
// populate a virtualization root. The dispatcher calls into it from
// the driver's worker threads, meaning implementations must be safe
// for concurrent use.
//
// OnEnumerateDirectory and OnGetFileStream are expected to call back
// into the VirtualizationInstance to write placeholders and file
// contents. OnPreDelete and OnFilePreConvertToFull may deny the
// operation by returning ResultErrAccessDenied. All other
// notifications are purely informational.
type Callbacks interface {
	OnEnumerateDirectory(ctx context.Context, commandID uint64, relativePath string, triggeringProcessID int, triggeringProcessName string) Result
	OnGetFileStream(ctx context.Context, commandID uint64, relativePath string, providerID, contentID []byte, triggeringProcessID int, triggeringProcessName string, fd int) Result
	OnLogError(message string)

	OnPreDelete(relativePath string, isDirectory bool) Result
	OnFileModified(relativePath string)
	OnNewFileCreated(relativePath string, isDirectory bool)
	OnFileRenamed(relativePath string, isDirectory bool)
	OnHardLinkCreated(relativePath string)
	OnFilePreConvertToFull(relativePath string) Result
}

// CallbackFuncs is an implementation of Callbacks that forwards calls
// to a set of optional functions. Unset enumeration and file stream
// functions cause ResultErrNotYetImplemented to be returned. Unset
// permission checks allow the operation. Other unset notifications are
// ignored.
type CallbackFuncs struct {
	EnumerateDirectory   func(ctx context.Context, commandID uint64, relativePath string, triggeringProcessID int, triggeringProcessName string) Result
	GetFileStream        func(ctx context.Context, commandID uint64, relativePath string, providerID, contentID []byte, triggeringProcessID int, triggeringProcessName string, fd int) Result
	LogError             func(message string)
	PreDelete            func(relativePath string, isDirectory bool) Result
	FileModified         func(relativePath string)
	NewFileCreated       func(relativePath string, isDirectory bool)
	FileRenamed          func(relativePath string, isDirectory bool)
	HardLinkCreated      func(relativePath string)
	FilePreConvertToFull func(relativePath string) Result
}

var _ Callbacks = CallbackFuncs{}

// OnEnumerateDirectory calls EnumerateDirectory, if set.
func (cf CallbackFuncs) OnEnumerateDirectory(ctx context.Context, commandID uint64, relativePath string, triggeringProcessID int, triggeringProcessName string) Result {
	if cf.EnumerateDirectory == nil {
		return ResultErrNotYetImplemented
	}
	return cf.EnumerateDirectory(ctx, commandID, relativePath, triggeringProcessID, triggeringProcessName)
}

// OnGetFileStream calls GetFileStream, if set.
func (cf CallbackFuncs) OnGetFileStream(ctx context.Context, commandID uint64, relativePath string, providerID, contentID []byte, triggeringProcessID int, triggeringProcessName string, fd int) Result {
	if cf.GetFileStream == nil {
		return ResultErrNotYetImplemented
	}
	return cf.GetFileStream(ctx, commandID, relativePath, providerID, contentID, triggeringProcessID, triggeringProcessName, fd)
}

// OnLogError calls LogError, if set.
func (cf CallbackFuncs) OnLogError(message string) {
	if cf.LogError != nil {
		cf.LogError(message)
	}
}

// OnPreDelete calls PreDelete, if set.
func (cf CallbackFuncs) OnPreDelete(relativePath string, isDirectory bool) Result {
	if cf.PreDelete == nil {
		return ResultSuccess
	}
	return cf.PreDelete(relativePath, isDirectory)
}

// OnFileModified calls FileModified, if set.
func (cf CallbackFuncs) OnFileModified(relativePath string) {
	if cf.FileModified != nil {
		cf.FileModified(relativePath)
	}
}

// OnNewFileCreated calls NewFileCreated, if set.
func (cf CallbackFuncs) OnNewFileCreated(relativePath string, isDirectory bool) {
	if cf.NewFileCreated != nil {
		cf.NewFileCreated(relativePath, isDirectory)
	}
}

// OnFileRenamed calls FileRenamed, if set.
func (cf CallbackFuncs) OnFileRenamed(relativePath string, isDirectory bool) {
	if cf.FileRenamed != nil {
		cf.FileRenamed(relativePath, isDirectory)
	}
}

// OnHardLinkCreated calls HardLinkCreated, if set.
func (cf CallbackFuncs) OnHardLinkCreated(relativePath string) {
	if cf.HardLinkCreated != nil {
		cf.HardLinkCreated(relativePath)
	}
}

// OnFilePreConvertToFull calls FilePreConvertToFull, if set.
func (cf CallbackFuncs) OnFilePreConvertToFull(relativePath string) Result {
	if cf.FilePreConvertToFull == nil {
		return ResultSuccess
	}
	return cf.FilePreConvertToFull(relativePath)
}

// callbacksErrorLogger forwards errors that occur while a session is
// running to the OnLogError callback of the provider.
type callbacksErrorLogger struct {
	callbacks Callbacks
}

var _ util.ErrorLogger = callbacksErrorLogger{}

func (el callbacksErrorLogger) Log(err error) {
	el.callbacks.OnLogError(err.Error())
}
