package projfs_test

import (
	"testing"

	"github.com/buildbarn/bb-projfs/pkg/projfs"
	"github.com/stretchr/testify/require"
)

func TestClassifyNotification(t *testing.T) {
	for name, tc := range map[string]struct {
		mask             projfs.EventMask
		notificationType projfs.NotificationType
	}{
		"Empty":           {0, projfs.NotificationTypeNone},
		"OnlyDirectory":   {projfs.EventMaskOnDir, projfs.NotificationTypeNone},
		"DeletePerm":      {projfs.EventMaskDeletePerm, projfs.NotificationTypePreDelete},
		"CloseWrite":      {projfs.EventMaskCloseWrite, projfs.NotificationTypeFileModified},
		"Create":          {projfs.EventMaskCreate, projfs.NotificationTypeNewFileCreated},
		"CreateDirectory": {projfs.EventMaskCreate | projfs.EventMaskOnDir, projfs.NotificationTypeNewFileCreated},
		"Move":            {projfs.EventMaskMove, projfs.NotificationTypeFileRenamed},
		"Link":            {projfs.EventMaskCreate | projfs.EventMaskOnLink, projfs.NotificationTypeHardLinkCreated},
		"OnlyLink":        {projfs.EventMaskOnLink, projfs.NotificationTypeNone},
		"OpenPerm":        {projfs.EventMaskOpenPerm, projfs.NotificationTypePreConvertToFull},

		// When multiple flags are set, the rules are applied in
		// a fixed order.
		"DeletePermBeforeCloseWrite": {projfs.EventMaskDeletePerm | projfs.EventMaskCloseWrite, projfs.NotificationTypePreDelete},
		"CloseWriteBeforeCreate":     {projfs.EventMaskCloseWrite | projfs.EventMaskCreate, projfs.NotificationTypeFileModified},
		"CreateBeforeMove":           {projfs.EventMaskCreate | projfs.EventMaskMove, projfs.NotificationTypeNewFileCreated},
		"MoveBeforeLink":             {projfs.EventMaskMove | projfs.EventMaskCreate | projfs.EventMaskOnLink, projfs.NotificationTypeFileRenamed},
		"LinkBeforeOpenPerm":         {projfs.EventMaskCreate | projfs.EventMaskOnLink | projfs.EventMaskOpenPerm, projfs.NotificationTypeHardLinkCreated},
	} {
		t.Run(name, func(t *testing.T) {
			require.Equal(t, tc.notificationType, projfs.ClassifyNotification(tc.mask))
		})
	}
}
