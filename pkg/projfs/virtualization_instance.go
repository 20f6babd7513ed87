package projfs

import (
	"context"
	"os"
	"sync/atomic"
	"time"

	"github.com/buildbarn/bb-storage/pkg/clock"
	"github.com/buildbarn/bb-storage/pkg/util"

	"golang.org/x/sys/unix"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	mountWaitTick  = 200 * time.Millisecond
	mountWaitTotal = 30 * time.Second
)

// DeviceNumberGetter returns the device number of the file system
// containing a given path. It is used to detect that a mount has been
// placed on top of the virtualization root.
type DeviceNumberGetter func(path string) (uint64, error)

// GetDeviceNumber is an implementation of DeviceNumberGetter that
// calls stat().
func GetDeviceNumber(path string) (uint64, error) {
	var stat unix.Stat_t
	if err := unix.Stat(path, &stat); err != nil {
		return 0, err
	}
	return uint64(stat.Dev), nil
}

type activeSession struct {
	native             NativeSession
	virtualizationRoot string
}

// VirtualizationInstance binds a content provider to a virtualization
// driver. It owns the driver's session, translates events generated
// by the driver into calls against Callbacks, and offers the outbound
// operations that providers use to write placeholders.
//
// Start() and Stop() must not be called concurrently. All other
// methods are safe for concurrent use.
type VirtualizationInstance struct {
	driver             Driver
	clock              clock.Clock
	deviceNumberGetter DeviceNumberGetter
	processTable       ProcessTable
	errorLogger        util.ErrorLogger
	currentProcessID   int

	// Only mutated by Start(). They are retained for the lifetime
	// of the session, as the driver may call into them at any time.
	callbacks Callbacks
	handlers  Handlers

	session atomic.Pointer[activeSession]
}

// NewVirtualizationInstance creates a VirtualizationInstance that has
// not been started yet.
func NewVirtualizationInstance(driver Driver, clock clock.Clock, deviceNumberGetter DeviceNumberGetter, processTable ProcessTable, errorLogger util.ErrorLogger) *VirtualizationInstance {
	return &VirtualizationInstance{
		driver:             driver,
		clock:              clock,
		deviceNumberGetter: deviceNumberGetter,
		processTable:       processTable,
		errorLogger:        errorLogger,
		currentProcessID:   os.Getpid(),
	}
}

// IsUninitializedMount returns whether a storage root has not been
// populated yet. This is the case if it only contains the source
// control metadata, namely ".git" and ".gitattributes".
func IsUninitializedMount(storageRoot string) bool {
	entries, err := os.ReadDir(storageRoot)
	if err != nil {
		return false
	}
	foundDotGit, foundDotGitattributes := false, false
	for _, entry := range entries {
		switch entry.Name() {
		case ".git":
			foundDotGit = true
		case ".gitattributes":
			foundDotGitattributes = true
		default:
			return false
		}
	}
	return foundDotGit && foundDotGitattributes
}

// Start a new virtualization session, exposing the contents of the
// storage root at the virtualization root. Events generated by the
// driver are forwarded to the provided callbacks.
//
// This function does not return until the driver has placed its mount
// on top of the virtualization root, which is detected by observing a
// change of its device number.
func (vi *VirtualizationInstance) Start(ctx context.Context, callbacks Callbacks, storageRoot, virtualizationRoot string, workerThreadCount uint32) Result {
	if vi.session.Load() != nil {
		vi.errorLogger.Log(status.Error(codes.FailedPrecondition, "Virtualization instance has already been started"))
		return ResultInvalid
	}

	priorDeviceNumber, err := vi.deviceNumberGetter(virtualizationRoot)
	if err != nil {
		vi.errorLogger.Log(util.StatusWrapf(err, "Failed to stat virtualization root %#v", virtualizationRoot))
		return ResultInvalid
	}

	vi.callbacks = callbacks
	vi.handlers = Handlers{
		HandleProjEvent:   vi.handleProjEventRecord,
		HandleNotifyEvent: vi.handleNotifyEventRecord,
		HandlePermEvent:   vi.handlePermEventRecord,
		ErrorLogger:       callbacksErrorLogger{callbacks: callbacks},
	}
	native, err := vi.driver.NewSession(
		storageRoot,
		virtualizationRoot,
		vi.handlers,
		MountOptions{
			Initial:           IsUninitializedMount(storageRoot),
			WorkerThreadCount: int(workerThreadCount),
		})
	if err != nil {
		vi.errorLogger.Log(util.StatusWrap(err, "Failed to create virtualization session"))
		return ResultInvalid
	}
	if err := native.Start(); err != nil {
		vi.errorLogger.Log(util.StatusWrap(err, "Failed to start virtualization session"))
		vi.stopNativeSession(native)
		return ResultInvalid
	}

	// Wait for the mount to show up.
	timeStart := vi.clock.Now()
	for {
		if deviceNumber, err := vi.deviceNumberGetter(virtualizationRoot); err == nil && deviceNumber != priorDeviceNumber {
			break
		}

		timer, t := vi.clock.NewTimer(mountWaitTick)
		select {
		case <-t:
		case <-ctx.Done():
			timer.Stop()
			vi.errorLogger.Log(util.StatusFromContext(ctx))
			vi.stopNativeSession(native)
			return ResultInvalid
		}

		if vi.clock.Now().Sub(timeStart) > mountWaitTotal {
			vi.errorLogger.Log(status.Errorf(codes.DeadlineExceeded, "Virtualization root %#v did not get mounted within %s", virtualizationRoot, mountWaitTotal))
			vi.stopNativeSession(native)
			return ResultInvalid
		}
	}

	vi.session.Store(&activeSession{
		native:             native,
		virtualizationRoot: virtualizationRoot,
	})
	return ResultSuccess
}

// Stop the virtualization session. This function is a no-op if no
// session is active. The session is discarded even if the driver
// fails to shut down cleanly, so that Start() may be called again.
func (vi *VirtualizationInstance) Stop() {
	s := vi.session.Load()
	if s == nil {
		return
	}
	vi.stopNativeSession(s.native)
	vi.session.Store(nil)
}

func (vi *VirtualizationInstance) stopNativeSession(native NativeSession) {
	if err := native.Stop(); err != nil {
		vi.errorLogger.Log(util.StatusWrap(err, "Failed to stop virtualization session"))
	}
}

// CompleteCommand is provided for parity with drivers that complete
// commands asynchronously. Commands dispatched by this instance
// always complete synchronously.
func (vi *VirtualizationInstance) CompleteCommand(commandID uint64, result Result) Result {
	return ResultErrNotYetImplemented
}

// ConvertDirectoryToPlaceholder is not supported, as directories can
// only become placeholders by being created through
// WritePlaceholderDirectory().
func (vi *VirtualizationInstance) ConvertDirectoryToPlaceholder(relativeDirectoryPath string) Result {
	return ResultErrNotYetImplemented
}
