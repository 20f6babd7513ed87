package projfs_test

import (
	"syscall"
	"testing"

	"github.com/buildbarn/bb-projfs/pkg/projfs"
	"github.com/buildbarn/bb-storage/pkg/testutil"
	"github.com/stretchr/testify/require"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestResultErrno(t *testing.T) {
	t.Run("RoundTrip", func(t *testing.T) {
		// Every result should map to a distinct error number,
		// and converting it back should yield the same result
		// regardless of its sign.
		seen := map[syscall.Errno]projfs.Result{}
		for _, r := range projfs.AllResults {
			errno := r.Errno()
			_, ok := seen[errno]
			require.False(t, ok, "Error number %d is used by both %s and %s", errno, seen[errno], r)
			seen[errno] = r

			require.Equal(t, r, projfs.ResultFromErrno(errno))
			require.Equal(t, r, projfs.ResultFromErrno(-errno))
		}
	})

	t.Run("Known", func(t *testing.T) {
		require.Equal(t, syscall.Errno(0), projfs.ResultSuccess.Errno())
		require.Equal(t, syscall.EPERM, projfs.ResultErrAccessDenied.Errno())
		require.Equal(t, syscall.ENODEV, projfs.ResultErrDriverNotLoaded.Errno())
	})

	t.Run("Unmapped", func(t *testing.T) {
		// Error numbers without a corresponding result are
		// reported as invalid.
		require.Equal(t, projfs.ResultInvalid, projfs.ResultFromErrno(syscall.EBADF))
		errno := syscall.ENOSPC
		require.Equal(t, projfs.ResultInvalid, projfs.ResultFromErrno(-errno))
	})

	t.Run("UnknownResult", func(t *testing.T) {
		require.Panics(t, func() { projfs.Result(1000).Errno() })
	})
}

func TestResultErr(t *testing.T) {
	require.NoError(t, projfs.ResultSuccess.Err())
	testutil.RequireEqualStatus(
		t,
		status.Error(codes.NotFound, "EFileNotFound (no such file or directory)"),
		projfs.ResultErrFileNotFound.Err())
	testutil.RequireEqualStatus(
		t,
		status.Error(codes.Unknown, "Unknown result 1000"),
		projfs.Result(1000).Err())
}
