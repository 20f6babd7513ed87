package projfs_test

import (
	"context"
	"testing"

	"github.com/buildbarn/bb-projfs/pkg/projfs"
	"github.com/stretchr/testify/require"
)

func TestCallbackFuncs(t *testing.T) {
	ctx := context.Background()

	t.Run("Defaults", func(t *testing.T) {
		// Providers that don't implement hydration should report
		// it as such. Permission checks should succeed.
		var callbacks projfs.CallbackFuncs
		require.Equal(t, projfs.ResultErrNotYetImplemented, callbacks.OnEnumerateDirectory(ctx, 0, "src", 123, "ls"))
		require.Equal(t, projfs.ResultErrNotYetImplemented, callbacks.OnGetFileStream(ctx, 0, "src/main.c", nil, nil, 123, "cat", 7))
		require.Equal(t, projfs.ResultSuccess, callbacks.OnPreDelete("src", true))
		require.Equal(t, projfs.ResultSuccess, callbacks.OnFilePreConvertToFull("src/main.c"))
		callbacks.OnLogError("Hello")
		callbacks.OnFileModified("src/main.c")
		callbacks.OnNewFileCreated("src/new.c", false)
		callbacks.OnFileRenamed("src/renamed.c", false)
		callbacks.OnHardLinkCreated("src/link.c")
	})

	t.Run("Forwarding", func(t *testing.T) {
		var deleted, modified []string
		callbacks := projfs.CallbackFuncs{
			EnumerateDirectory: func(ctx context.Context, commandID uint64, relativePath string, triggeringProcessID int, triggeringProcessName string) projfs.Result {
				require.Equal(t, "src", relativePath)
				require.Equal(t, 123, triggeringProcessID)
				require.Equal(t, "ls", triggeringProcessName)
				return projfs.ResultErrIO
			},
			PreDelete: func(relativePath string, isDirectory bool) projfs.Result {
				deleted = append(deleted, relativePath)
				return projfs.ResultErrAccessDenied
			},
			FileModified: func(relativePath string) {
				modified = append(modified, relativePath)
			},
		}
		require.Equal(t, projfs.ResultErrIO, callbacks.OnEnumerateDirectory(ctx, 0, "src", 123, "ls"))
		require.Equal(t, projfs.ResultErrAccessDenied, callbacks.OnPreDelete("src/main.c", false))
		callbacks.OnFileModified("src/other.c")
		require.Equal(t, []string{"src/main.c"}, deleted)
		require.Equal(t, []string{"src/other.c"}, modified)
	})
}
