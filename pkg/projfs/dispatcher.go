package projfs

import (
	"context"
	"syscall"

	"github.com/buildbarn/bb-storage/pkg/util"
)

func (vi *VirtualizationInstance) handleProjEventRecord(ctx context.Context, record []byte) int32 {
	ev, err := UnmarshalEvent(record)
	if err != nil {
		vi.handlers.ErrorLogger.Log(util.StatusWrap(err, "Failed to decode projection event"))
		return ResultInvalid.negativeErrno()
	}
	return vi.HandleProjEvent(ctx, ev)
}

func (vi *VirtualizationInstance) handleNotifyEventRecord(ctx context.Context, record []byte) int32 {
	ev, err := UnmarshalEvent(record)
	if err != nil {
		vi.handlers.ErrorLogger.Log(util.StatusWrap(err, "Failed to decode notification event"))
		return ResultInvalid.negativeErrno()
	}
	return vi.HandleNotifyEvent(ctx, ev)
}

func (vi *VirtualizationInstance) handlePermEventRecord(ctx context.Context, record []byte) int32 {
	ev, err := UnmarshalEvent(record)
	if err != nil {
		vi.handlers.ErrorLogger.Log(util.StatusWrap(err, "Failed to decode permission event"))
		return ResultInvalid.negativeErrno()
	}
	return vi.HandlePermEvent(ctx, ev)
}

// isProviderEvent returns whether an event was triggered by the
// current process. The provider's own writes must never be reported
// back to it, as that would cause infinite recursion.
func (vi *VirtualizationInstance) isProviderEvent(ev *Event) bool {
	return int(ev.ProcessID) == vi.currentProcessID
}

// HandleProjEvent processes a request to enumerate a directory or to
// provide the contents of a file. It returns zero or a negated error
// number.
func (vi *VirtualizationInstance) HandleProjEvent(ctx context.Context, ev *Event) int32 {
	if vi.isProviderEvent(ev) {
		return 0
	}
	s := vi.session.Load()
	if s == nil {
		return ResultErrDriverNotLoaded.negativeErrno()
	}

	triggeringProcessID := int(ev.ProcessID)
	triggeringProcessName := getTriggeringProcessName(vi.processTable, triggeringProcessID)
	var result Result
	if ev.IsDirectory() {
		result = vi.callbacks.OnEnumerateDirectory(ctx, 0, ev.Path, triggeringProcessID, triggeringProcessName)
	} else {
		providerID := make([]byte, PlaceholderIDLength)
		contentID := make([]byte, PlaceholderIDLength)
		result = s.native.GetProjAttrs(ev.Path, providerID, contentID)
		if result == ResultSuccess {
			result = vi.callbacks.OnGetFileStream(ctx, 0, ev.Path, providerID, contentID, triggeringProcessID, triggeringProcessName, int(ev.FileDescriptor))
		}
	}
	return result.negativeErrno()
}

// HandleNotifyEvent processes an event for an operation that has
// already been performed. It returns zero or a negated error number.
func (vi *VirtualizationInstance) HandleNotifyEvent(ctx context.Context, ev *Event) int32 {
	return vi.handleNonProjEvent(ev, false)
}

// HandlePermEvent processes an event for an operation that still
// needs to be permitted. It returns PermissionAllow, PermissionDeny,
// zero for events that are not of interest, or a negated error number
// for any other failure.
func (vi *VirtualizationInstance) HandlePermEvent(ctx context.Context, ev *Event) int32 {
	return vi.handleNonProjEvent(ev, true)
}

func (vi *VirtualizationInstance) handleNonProjEvent(ev *Event, isPermEvent bool) int32 {
	if vi.isProviderEvent(ev) {
		if isPermEvent {
			return PermissionAllow
		}
		return 0
	}

	notificationType := ClassifyNotification(ev.Mask)
	if notificationType == NotificationTypeNone {
		return 0
	}

	// Renames and hard links are reported under their new name.
	relativePath := ev.Path
	if notificationType == NotificationTypeFileRenamed || notificationType == NotificationTypeHardLinkCreated {
		relativePath = ev.TargetPath
	}

	ret := vi.onNotifyOperation(relativePath, ev.IsDirectory(), notificationType).negativeErrno()
	if isPermEvent {
		switch ret {
		case 0:
			ret = PermissionAllow
		case -int32(syscall.EPERM):
			ret = PermissionDeny
		}
	}
	return ret
}

func (vi *VirtualizationInstance) onNotifyOperation(relativePath string, isDirectory bool, notificationType NotificationType) Result {
	switch notificationType {
	case NotificationTypePreDelete:
		return vi.callbacks.OnPreDelete(relativePath, isDirectory)
	case NotificationTypeFileModified:
		vi.callbacks.OnFileModified(relativePath)
		return ResultSuccess
	case NotificationTypeNewFileCreated:
		vi.callbacks.OnNewFileCreated(relativePath, isDirectory)
		return ResultSuccess
	case NotificationTypeFileRenamed:
		vi.callbacks.OnFileRenamed(relativePath, isDirectory)
		return ResultSuccess
	case NotificationTypeHardLinkCreated:
		vi.callbacks.OnHardLinkCreated(relativePath)
		return ResultSuccess
	case NotificationTypePreConvertToFull:
		return vi.callbacks.OnFilePreConvertToFull(relativePath)
	default:
		return ResultErrNotYetImplemented
	}
}
