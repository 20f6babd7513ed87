package projfs_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/buildbarn/bb-projfs/internal/mock"
	"github.com/buildbarn/bb-projfs/pkg/projfs"
	"github.com/buildbarn/bb-storage/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestVirtualizationInstanceWithoutSession(t *testing.T) {
	ctrl := gomock.NewController(t)

	f := newInstanceFixture(ctrl)
	providerID := make([]byte, projfs.PlaceholderIDLength)
	contentID := make([]byte, projfs.PlaceholderIDLength)

	require.Equal(t, projfs.ResultErrDriverNotLoaded, f.instance.WritePlaceholderDirectory("dir"))
	require.Equal(t, projfs.ResultErrDriverNotLoaded, f.instance.WritePlaceholderFile("file", providerID, contentID, 123, 0o644))
	require.Equal(t, projfs.ResultErrDriverNotLoaded, f.instance.WriteSymLink("symlink", "target"))

	state, result := f.instance.GetProjectionState("file")
	require.Equal(t, projfs.ProjectionStateUnknown, state)
	require.Equal(t, projfs.ResultErrDriverNotLoaded, result)

	cause, result := f.instance.DeleteFile("file", 0)
	require.Equal(t, projfs.UpdateFailureCauseNoFailure, cause)
	require.Equal(t, projfs.ResultErrDriverNotLoaded, result)

	// The root directory can never be deleted, even when no
	// session is active.
	cause, result = f.instance.DeleteFile("", 0)
	require.Equal(t, projfs.UpdateFailureCauseNoFailure, cause)
	require.Equal(t, projfs.ResultErrDirectoryNotEmpty, result)
}

func TestVirtualizationInstancePlaceholderIDLength(t *testing.T) {
	ctrl := gomock.NewController(t)

	f := newInstanceFixture(ctrl)
	validID := make([]byte, projfs.PlaceholderIDLength)
	shortID := make([]byte, projfs.PlaceholderIDLength-1)
	longID := make([]byte, projfs.PlaceholderIDLength+1)

	// Identifiers of the wrong size are a programming error. They
	// must be caught before calling into the driver.
	require.Panics(t, func() { f.instance.WritePlaceholderFile("file", shortID, validID, 0, 0o644) })
	require.Panics(t, func() { f.instance.WritePlaceholderFile("file", validID, shortID, 0, 0o644) })
	require.Panics(t, func() { f.instance.WritePlaceholderFile("file", longID, validID, 0, 0o644) })
	require.Panics(t, func() { f.instance.WritePlaceholderFile("file", validID, longID, 0, 0o644) })
	require.Panics(t, func() { f.instance.UpdatePlaceholderIfNeeded("file", validID, nil, 0, 0o644, 0) })
	require.Panics(t, func() { f.instance.UpdatePlaceholderIfNeeded("file", nil, validID, 0, 0o644, 0) })
	require.Panics(t, func() { f.instance.UpdatePlaceholderIfNeeded("file", validID, longID, 0, 0o644, 0) })
}

func TestVirtualizationInstanceWritePlaceholders(t *testing.T) {
	ctrl, ctx := gomock.WithContext(context.Background(), t)

	f := newInstanceFixture(ctrl)
	nativeSession, _ := f.start(ctx, t, ctrl, mock.NewMockCallbacks(ctrl), "/mnt/virt")

	t.Run("Directory", func(t *testing.T) {
		nativeSession.EXPECT().CreateProjDir("src", uint32(0o777)).Return(projfs.ResultSuccess)
		require.Equal(t, projfs.ResultSuccess, f.instance.WritePlaceholderDirectory("src"))
	})

	t.Run("File", func(t *testing.T) {
		providerID := bytes.Repeat([]byte{1}, projfs.PlaceholderIDLength)
		contentID := bytes.Repeat([]byte{2}, projfs.PlaceholderIDLength)
		nativeSession.EXPECT().CreateProjFile("src/main.c", uint64(1200), uint32(0o755), providerID, contentID).
			Return(projfs.ResultErrFileNotFound)
		require.Equal(t, projfs.ResultErrFileNotFound, f.instance.WritePlaceholderFile("src/main.c", providerID, contentID, 1200, 0o755))
	})

	t.Run("SymLink", func(t *testing.T) {
		nativeSession.EXPECT().CreateProjSymlink("src/link", "main.c").Return(projfs.ResultSuccess)
		require.Equal(t, projfs.ResultSuccess, f.instance.WriteSymLink("src/link", "main.c"))
	})

	t.Run("GetProjectionState", func(t *testing.T) {
		nativeSession.EXPECT().GetProjState("src/main.c").Return(projfs.ProjectionStatePlaceholder, projfs.ResultSuccess)
		state, result := f.instance.GetProjectionState("src/main.c")
		require.Equal(t, projfs.ProjectionStatePlaceholder, state)
		require.Equal(t, projfs.ResultSuccess, result)
	})

	nativeSession.EXPECT().Stop()
	f.instance.Stop()
}

func TestVirtualizationInstanceWriteFileContents(t *testing.T) {
	ctrl := gomock.NewController(t)

	f := newInstanceFixture(ctrl)

	t.Run("Success", func(t *testing.T) {
		file, err := os.Create(filepath.Join(t.TempDir(), "file"))
		require.NoError(t, err)
		defer file.Close()

		require.Equal(t, projfs.ResultSuccess, f.instance.WriteFileContents(int(file.Fd()), []byte("Hello ")))
		n, err := io.Copy(f.instance.FileContentsWriter(int(file.Fd())), bytes.NewBufferString("world"))
		require.NoError(t, err)
		require.Equal(t, int64(5), n)

		data, err := os.ReadFile(file.Name())
		require.NoError(t, err)
		require.Equal(t, []byte("Hello world"), data)
	})

	t.Run("EmptyWrite", func(t *testing.T) {
		require.Equal(t, projfs.ResultSuccess, f.instance.WriteFileContents(-1, nil))
	})

	t.Run("BadFileDescriptor", func(t *testing.T) {
		require.Equal(t, projfs.ResultErrIO, f.instance.WriteFileContents(-1, []byte("Hello")))
		_, err := f.instance.FileContentsWriter(-1).Write([]byte("Hello"))
		testutil.RequireEqualStatus(t, status.Error(codes.Internal, "EIOError (input/output error)"), err)
	})
}

func TestVirtualizationInstanceDeleteFile(t *testing.T) {
	ctrl, ctx := gomock.WithContext(context.Background(), t)

	f := newInstanceFixture(ctrl)
	virtualizationRoot := t.TempDir()
	nativeSession, _ := f.start(ctx, t, ctrl, mock.NewMockCallbacks(ctrl), virtualizationRoot)

	t.Run("Root", func(t *testing.T) {
		cause, result := f.instance.DeleteFile("", 0)
		require.Equal(t, projfs.UpdateFailureCauseNoFailure, cause)
		require.Equal(t, projfs.ResultErrDirectoryNotEmpty, result)
	})

	t.Run("FullFile", func(t *testing.T) {
		// Files that have been modified locally must not be
		// removed, as that would destroy the user's changes.
		require.NoError(t, os.WriteFile(filepath.Join(virtualizationRoot, "modified"), []byte("Hello"), 0o666))
		nativeSession.EXPECT().GetProjState("modified").Return(projfs.ProjectionStateFull, projfs.ResultSuccess)

		cause, result := f.instance.DeleteFile("modified", projfs.UpdateTypeAllowDirtyData)
		require.Equal(t, projfs.UpdateFailureCauseDirtyData, cause)
		require.Equal(t, projfs.ResultErrVirtualizationInvalidOperation, result)
		require.FileExists(t, filepath.Join(virtualizationRoot, "modified"))
	})

	t.Run("UnknownFile", func(t *testing.T) {
		// Special files are treated like modified files.
		require.NoError(t, os.WriteFile(filepath.Join(virtualizationRoot, "special"), nil, 0o666))
		nativeSession.EXPECT().GetProjState("special").Return(projfs.ProjectionStateUnknown, projfs.ResultInvalid)

		cause, result := f.instance.DeleteFile("special", 0)
		require.Equal(t, projfs.UpdateFailureCauseDirtyData, cause)
		require.Equal(t, projfs.ResultErrVirtualizationInvalidOperation, result)
		require.FileExists(t, filepath.Join(virtualizationRoot, "special"))
	})

	t.Run("PlaceholderFile", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(virtualizationRoot, "placeholder"), nil, 0o666))
		nativeSession.EXPECT().GetProjState("placeholder").Return(projfs.ProjectionStatePlaceholder, projfs.ResultSuccess)

		cause, result := f.instance.DeleteFile("placeholder", 0)
		require.Equal(t, projfs.UpdateFailureCauseNoFailure, cause)
		require.Equal(t, projfs.ResultSuccess, result)
		require.NoFileExists(t, filepath.Join(virtualizationRoot, "placeholder"))
	})

	t.Run("NonexistentFile", func(t *testing.T) {
		// Deleting files that are already gone should succeed.
		nativeSession.EXPECT().GetProjState("nonexistent").Return(projfs.ProjectionStateUnknown, projfs.ResultErrFileNotFound)

		cause, result := f.instance.DeleteFile("nonexistent", 0)
		require.Equal(t, projfs.UpdateFailureCauseNoFailure, cause)
		require.Equal(t, projfs.ResultSuccess, result)
	})

	t.Run("VanishedFile", func(t *testing.T) {
		// The file may disappear between querying its state and
		// removing it.
		nativeSession.EXPECT().GetProjState("vanished").Return(projfs.ProjectionStateEmpty, projfs.ResultSuccess)

		cause, result := f.instance.DeleteFile("vanished", 0)
		require.Equal(t, projfs.UpdateFailureCauseNoFailure, cause)
		require.Equal(t, projfs.ResultSuccess, result)
	})

	t.Run("MissingParent", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(virtualizationRoot, "regular"), nil, 0o666))
		nativeSession.EXPECT().GetProjState("regular/child").Return(projfs.ProjectionStateEmpty, projfs.ResultSuccess)

		cause, result := f.instance.DeleteFile("regular/child", 0)
		require.Equal(t, projfs.UpdateFailureCauseNoFailure, cause)
		require.Equal(t, projfs.ResultSuccess, result)
	})

	t.Run("EmptyDirectory", func(t *testing.T) {
		// The projection state is not consulted for
		// directories.
		require.NoError(t, os.Mkdir(filepath.Join(virtualizationRoot, "empty"), 0o777))

		cause, result := f.instance.DeleteFile("empty", 0)
		require.Equal(t, projfs.UpdateFailureCauseNoFailure, cause)
		require.Equal(t, projfs.ResultSuccess, result)
		require.NoDirExists(t, filepath.Join(virtualizationRoot, "empty"))
	})

	t.Run("NonEmptyDirectory", func(t *testing.T) {
		require.NoError(t, os.Mkdir(filepath.Join(virtualizationRoot, "nonempty"), 0o777))
		require.NoError(t, os.WriteFile(filepath.Join(virtualizationRoot, "nonempty", "file"), nil, 0o666))

		cause, result := f.instance.DeleteFile("nonempty", 0)
		require.Equal(t, projfs.UpdateFailureCauseNoFailure, cause)
		require.Equal(t, projfs.ResultErrDirectoryNotEmpty, result)
		require.DirExists(t, filepath.Join(virtualizationRoot, "nonempty"))
	})

	nativeSession.EXPECT().Stop()
	f.instance.Stop()
}

func TestVirtualizationInstanceUpdatePlaceholderIfNeeded(t *testing.T) {
	ctrl, ctx := gomock.WithContext(context.Background(), t)

	f := newInstanceFixture(ctrl)
	virtualizationRoot := t.TempDir()
	nativeSession, _ := f.start(ctx, t, ctrl, mock.NewMockCallbacks(ctrl), virtualizationRoot)
	providerID := bytes.Repeat([]byte{1}, projfs.PlaceholderIDLength)
	contentID := bytes.Repeat([]byte{2}, projfs.PlaceholderIDLength)

	t.Run("DirtyData", func(t *testing.T) {
		// Modified files must not be replaced. The driver must
		// not be asked to create a new placeholder.
		require.NoError(t, os.WriteFile(filepath.Join(virtualizationRoot, "modified"), []byte("Hello"), 0o666))
		nativeSession.EXPECT().GetProjState("modified").Return(projfs.ProjectionStateFull, projfs.ResultSuccess)

		cause, result := f.instance.UpdatePlaceholderIfNeeded("modified", providerID, contentID, 5, 0o644, 0)
		require.Equal(t, projfs.UpdateFailureCauseDirtyData, cause)
		require.Equal(t, projfs.ResultErrVirtualizationInvalidOperation, result)
		require.FileExists(t, filepath.Join(virtualizationRoot, "modified"))
	})

	t.Run("Success", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(virtualizationRoot, "placeholder"), nil, 0o666))
		nativeSession.EXPECT().GetProjState("placeholder").Return(projfs.ProjectionStatePlaceholder, projfs.ResultSuccess)
		nativeSession.EXPECT().CreateProjFile("placeholder", uint64(5), uint32(0o644), providerID, contentID).
			Return(projfs.ResultSuccess)

		cause, result := f.instance.UpdatePlaceholderIfNeeded("placeholder", providerID, contentID, 5, 0o644, 0)
		require.Equal(t, projfs.UpdateFailureCauseNoFailure, cause)
		require.Equal(t, projfs.ResultSuccess, result)
	})

	t.Run("ReplaceWithSymLink", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(virtualizationRoot, "link"), nil, 0o666))
		nativeSession.EXPECT().GetProjState("link").Return(projfs.ProjectionStateEmpty, projfs.ResultSuccess)
		nativeSession.EXPECT().CreateProjSymlink("link", "placeholder").Return(projfs.ResultSuccess)

		cause, result := f.instance.ReplacePlaceholderFileWithSymLink("link", "placeholder", 0)
		require.Equal(t, projfs.UpdateFailureCauseNoFailure, cause)
		require.Equal(t, projfs.ResultSuccess, result)
	})

	t.Run("ReplaceDirtyWithSymLink", func(t *testing.T) {
		nativeSession.EXPECT().GetProjState("modified").Return(projfs.ProjectionStateFull, projfs.ResultSuccess)

		cause, result := f.instance.ReplacePlaceholderFileWithSymLink("modified", "placeholder", 0)
		require.Equal(t, projfs.UpdateFailureCauseDirtyData, cause)
		require.Equal(t, projfs.ResultErrVirtualizationInvalidOperation, result)
	})

	nativeSession.EXPECT().Stop()
	f.instance.Stop()
}

func TestVirtualizationInstanceConcurrentDeleteAndFill(t *testing.T) {
	// Deletions performed by the provider may race with content
	// requests issued by the driver. Neither side takes any locks,
	// so this test exists to catch data races on the session.
	ctrl, ctx := gomock.WithContext(context.Background(), t)

	callbacks := mock.NewMockCallbacks(ctrl)
	f := newInstanceFixture(ctrl)
	virtualizationRoot := t.TempDir()
	nativeSession, _ := f.start(ctx, t, ctrl, callbacks, virtualizationRoot)

	const fileCount = 50
	for i := 0; i < fileCount; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(virtualizationRoot, fmt.Sprintf("file%d", i)), nil, 0o666))
	}
	nativeSession.EXPECT().GetProjState(gomock.Any()).Return(projfs.ProjectionStatePlaceholder, projfs.ResultSuccess).Times(fileCount)
	nativeSession.EXPECT().GetProjAttrs(gomock.Any(), gomock.Any(), gomock.Any()).Return(projfs.ResultSuccess).Times(fileCount)
	f.processTable.EXPECT().GetProcessName(gomock.Any()).Return("cat", nil).Times(fileCount)
	callbacks.EXPECT().OnGetFileStream(ctx, uint64(0), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), "cat", 3).
		Return(projfs.ResultSuccess).Times(fileCount)

	var wg sync.WaitGroup
	wg.Add(2 * fileCount)
	for i := 0; i < fileCount; i++ {
		name := fmt.Sprintf("file%d", i)
		go func() {
			defer wg.Done()
			cause, result := f.instance.DeleteFile(name, 0)
			assert.Equal(t, projfs.UpdateFailureCauseNoFailure, cause)
			assert.Equal(t, projfs.ResultSuccess, result)
		}()
		go func() {
			defer wg.Done()
			assert.Equal(t, int32(0), f.instance.HandleProjEvent(ctx, &projfs.Event{
				ProcessID:      int32(os.Getpid() + 1),
				Path:           name,
				FileDescriptor: 3,
			}))
		}()
	}
	wg.Wait()

	nativeSession.EXPECT().Stop()
	f.instance.Stop()
}
