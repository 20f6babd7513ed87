package projfs

import (
	"context"

	"github.com/buildbarn/bb-storage/pkg/util"
)

// EventHandler is invoked by the driver for every event it generates.
// The event is provided in the record format of Event.MarshalBinary().
// The return value is either zero, a negated error number, or one of
// the PermissionAllow and PermissionDeny codes.
type EventHandler func(ctx context.Context, record []byte) int32

// Handlers is the set of functions that the driver calls into. They
// are registered before the driver is started and must remain valid
// until the driver is stopped.
type Handlers struct {
	// HandleProjEvent is invoked for directory enumeration and file
	// content requests.
	HandleProjEvent EventHandler
	// HandleNotifyEvent is invoked for events that have already
	// taken place.
	HandleNotifyEvent EventHandler
	// HandlePermEvent is invoked for events that still need to be
	// permitted.
	HandlePermEvent EventHandler
	// ErrorLogger receives failures that occur inside the driver
	// that cannot be reported to a caller.
	ErrorLogger util.ErrorLogger
}

// MountOptions contains options that are provided to the driver when
// creating a new session.
type MountOptions struct {
	// Initial indicates that the storage root has not been
	// populated yet, meaning that the root directory itself must be
	// enumerated when first accessed.
	Initial bool
	// WorkerThreadCount is the number of workers that the driver
	// uses to invoke the event handlers.
	WorkerThreadCount int
}

// Driver of the virtualization subsystem that is capable of creating
// new sessions.
type Driver interface {
	NewSession(storageRoot, virtualizationRoot string, handlers Handlers, options MountOptions) (NativeSession, error)
}

// NativeSession is a single mount of the virtualization subsystem.
// Relative paths provided to its methods are relative to the root of
// the mount.
type NativeSession interface {
	// Start requests that the virtualization root is mounted. The
	// mount may complete asynchronously.
	Start() error
	// Stop unmounts the virtualization root and terminates the
	// worker threads.
	Stop() error

	GetProjState(relativePath string) (ProjectionState, Result)
	GetProjAttrs(relativePath string, providerID, contentID []byte) Result
	CreateProjDir(relativePath string, mode uint32) Result
	CreateProjFile(relativePath string, fileSize uint64, fileMode uint32, providerID, contentID []byte) Result
	CreateProjSymlink(relativePath, symlinkTarget string) Result
}
