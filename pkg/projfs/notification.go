package projfs

// NotificationType is the kind of notification that is derived from
// the mask of an event received on the notification or permission
// channel.
type NotificationType int

const (
	// NotificationTypeNone indicates that the event does not need
	// to be forwarded to the provider.
	NotificationTypeNone NotificationType = iota
	NotificationTypePreDelete
	NotificationTypeFileModified
	NotificationTypeNewFileCreated
	NotificationTypeFileRenamed
	NotificationTypeHardLinkCreated
	NotificationTypePreConvertToFull
)

func (t NotificationType) String() string {
	switch t {
	case NotificationTypeNone:
		return "None"
	case NotificationTypePreDelete:
		return "PreDelete"
	case NotificationTypeFileModified:
		return "FileModified"
	case NotificationTypeNewFileCreated:
		return "NewFileCreated"
	case NotificationTypeFileRenamed:
		return "FileRenamed"
	case NotificationTypeHardLinkCreated:
		return "HardLinkCreated"
	case NotificationTypePreConvertToFull:
		return "PreConvertToFull"
	default:
		return "Unknown"
	}
}

// ClassifyNotification maps an event mask to the notification that
// must be delivered to the provider. When multiple flags are set, the
// first matching rule wins, in the following order: delete permission,
// close after write, creation of a new file, rename, creation of a
// hard link and open permission.
func ClassifyNotification(mask EventMask) NotificationType {
	switch {
	case mask&EventMaskDeletePerm != 0:
		return NotificationTypePreDelete
	case mask&EventMaskCloseWrite != 0:
		return NotificationTypeFileModified
	case mask&EventMaskCreate != 0 && mask&EventMaskOnLink == 0:
		return NotificationTypeNewFileCreated
	case mask&EventMaskMove != 0:
		return NotificationTypeFileRenamed
	case mask&EventMaskCreate != 0:
		return NotificationTypeHardLinkCreated
	case mask&EventMaskOpenPerm != 0:
		return NotificationTypePreConvertToFull
	default:
		return NotificationTypeNone
	}
}
