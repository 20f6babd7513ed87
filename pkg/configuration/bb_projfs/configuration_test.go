package configuration_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	remoteexecution "github.com/bazelbuild/remote-apis/build/bazel/remote/execution/v2"
	configuration "github.com/buildbarn/bb-projfs/pkg/configuration/bb_projfs"
	"github.com/buildbarn/bb-projfs/pkg/projfs/fuse"
	"github.com/buildbarn/bb-storage/pkg/digest"
	"github.com/buildbarn/bb-storage/pkg/testutil"
	"github.com/stretchr/testify/require"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const exampleConfiguration = `
global:
  log_paths:
    - /var/log/bb_projfs.log
content_addressable_storage:
  grpc:
    address: "storage:8980"
storage_root_path: /var/lib/bb_projfs/storage
virtualization_root_path: /var/lib/bb_projfs/mount
input_root:
  instance_name: hello
  digest_function: MD5
  hash: 8b1a9953c4611296a827abf8c47804d7
  size_bytes: 200
fuse:
  allow_other: true
`

func writeConfiguration(t *testing.T, contents string) string {
	path := filepath.Join(t.TempDir(), "bb_projfs.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestGetApplicationConfiguration(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		c, err := configuration.GetApplicationConfiguration(writeConfiguration(t, exampleConfiguration))
		require.NoError(t, err)

		require.Equal(t, "/var/lib/bb_projfs/storage", c.StorageRootPath)
		require.Equal(t, "/var/lib/bb_projfs/mount", c.VirtualizationRootPath)
		require.Equal(t, 16*1024*1024, c.MaximumMessageSizeBytes)
		require.Equal(t, configuration.DirectoryCacheConfiguration{
			MaximumCount:           10000,
			MaximumSizeBytes:       64 * 1024 * 1024,
			CacheReplacementPolicy: "LEAST_RECENTLY_USED",
		}, c.DirectoryCache)
		require.Equal(t, fuse.DriverConfiguration{
			FSName:     "bb_projfs",
			AllowOther: true,
		}, c.GetDriverConfiguration())
		require.NotZero(t, c.GetWorkerThreadCount())

		rootDirectoryDigest, err := c.GetRootDirectoryDigest()
		require.NoError(t, err)
		require.Equal(t, digest.MustNewDigest("hello", remoteexecution.DigestFunction_MD5, "8b1a9953c4611296a827abf8c47804d7", 200), rootDirectoryDigest)

		globalConfiguration, err := c.GetGlobalConfiguration()
		require.NoError(t, err)
		require.Equal(t, []string{"/var/log/bb_projfs.log"}, globalConfiguration.GetLogPaths())

		casConfiguration, err := c.GetContentAddressableStorageConfiguration()
		require.NoError(t, err)
		require.Equal(t, "storage:8980", casConfiguration.GetGrpc().GetAddress())
	})

	t.Run("EnvironmentOverride", func(t *testing.T) {
		t.Setenv("BB_PROJFS_VIRTUALIZATION_ROOT_PATH", "/mnt/src")
		t.Setenv("BB_PROJFS_WORKER_THREAD_COUNT", "3")

		c, err := configuration.GetApplicationConfiguration(writeConfiguration(t, exampleConfiguration))
		require.NoError(t, err)
		require.Equal(t, "/mnt/src", c.VirtualizationRootPath)
		require.Equal(t, uint32(3), c.GetWorkerThreadCount())
	})

	t.Run("NonexistentFile", func(t *testing.T) {
		_, err := configuration.GetApplicationConfiguration(filepath.Join(t.TempDir(), "nonexistent.yaml"))
		require.Equal(t, codes.InvalidArgument, status.Code(err))
	})

	t.Run("MissingStorageRoot", func(t *testing.T) {
		_, err := configuration.GetApplicationConfiguration(writeConfiguration(t, `
content_addressable_storage:
  grpc:
    address: "storage:8980"
virtualization_root_path: /mnt/src
input_root:
  hash: 8b1a9953c4611296a827abf8c47804d7
`))
		testutil.RequireEqualStatus(t, status.Error(codes.InvalidArgument, "Field ApplicationConfiguration.StorageRootPath failed validation on \"required\" tag with value "), err)
	})

	t.Run("InvalidInstanceName", func(t *testing.T) {
		c, err := configuration.GetApplicationConfiguration(writeConfiguration(t, strings.Replace(exampleConfiguration, "instance_name: hello", "instance_name: hello/blobs", 1)))
		require.NoError(t, err)

		_, err = c.GetRootDirectoryDigest()
		testutil.RequireEqualStatus(t, status.Error(codes.InvalidArgument, "Invalid instance name \"hello/blobs\": Instance name contains reserved keyword \"blobs\""), err)
	})

	t.Run("UnknownDigestFunction", func(t *testing.T) {
		_, err := configuration.GetApplicationConfiguration(writeConfiguration(t, strings.Replace(exampleConfiguration, "digest_function: MD5", "digest_function: CRC32", 1)))
		testutil.RequireEqualStatus(t, status.Error(codes.InvalidArgument, "Unknown digest function \"CRC32\""), err)
	})
}

func TestValidate(t *testing.T) {
	newConfiguration := func() *configuration.ApplicationConfiguration {
		return &configuration.ApplicationConfiguration{
			ContentAddressableStorage: map[string]any{"grpc": map[string]any{}},
			MaximumMessageSizeBytes:   1024,
			StorageRootPath:           "/storage",
			VirtualizationRootPath:    "/mount",
			InputRoot: configuration.InputRootConfiguration{
				DigestFunction: "SHA256",
				Hash:           "185f8db32271fe25f561a6fc938b2e264306ec304eda518007d1764826381969",
				SizeBytes:      11,
			},
			DirectoryCache: configuration.DirectoryCacheConfiguration{
				MaximumCount:           10,
				MaximumSizeBytes:       1000,
				CacheReplacementPolicy: "RANDOM_REPLACEMENT",
			},
		}
	}

	t.Run("Success", func(t *testing.T) {
		require.NoError(t, configuration.Validate(newConfiguration()))
	})

	t.Run("IdenticalRoots", func(t *testing.T) {
		c := newConfiguration()
		c.VirtualizationRootPath = c.StorageRootPath
		testutil.RequireEqualStatus(t, status.Error(codes.InvalidArgument, "Field ApplicationConfiguration.VirtualizationRootPath failed validation on \"nefield\" tag with value /storage"), configuration.Validate(c))
	})

	t.Run("UnknownDigestFunction", func(t *testing.T) {
		c := newConfiguration()
		c.InputRoot.DigestFunction = "CRC32"
		testutil.RequireEqualStatus(t, status.Error(codes.InvalidArgument, "Unknown digest function \"CRC32\""), configuration.Validate(c))
	})

	t.Run("UnknownCacheReplacementPolicy", func(t *testing.T) {
		c := newConfiguration()
		c.DirectoryCache.CacheReplacementPolicy = "MOST_RECENTLY_USED"
		testutil.RequireEqualStatus(t, status.Error(codes.InvalidArgument, "Unknown cache replacement policy \"MOST_RECENTLY_USED\""), configuration.Validate(c))

		// The policy is irrelevant if caching is disabled.
		c.DirectoryCache.MaximumCount = 0
		require.NoError(t, configuration.Validate(c))
	})
}
