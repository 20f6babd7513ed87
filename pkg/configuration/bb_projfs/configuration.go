package configuration

import (
	"encoding/json"
	"runtime"
	"strings"

	remoteexecution "github.com/bazelbuild/remote-apis/build/bazel/remote/execution/v2"
	"github.com/buildbarn/bb-projfs/pkg/projfs/fuse"
	"github.com/buildbarn/bb-storage/pkg/digest"
	pb_blobstore "github.com/buildbarn/bb-storage/pkg/proto/configuration/blobstore"
	pb_global "github.com/buildbarn/bb-storage/pkg/proto/configuration/global"
	"github.com/buildbarn/bb-storage/pkg/util"
	"github.com/spf13/viper"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
)

// EnvironmentPrefix is prepended to the names of environment variables
// that override options in the configuration file. For example,
// BB_PROJFS_STORAGE_ROOT_PATH overrides storage_root_path.
const EnvironmentPrefix = "BB_PROJFS"

// ApplicationConfiguration holds all options of bb_projfs.
//
// The global and content_addressable_storage sections use the schema
// of bb-storage's configuration messages. As keys are normalized to
// lower case while loading, fields in these sections must be named
// using their Protobuf field names (e.g., "maximum_message_size_bytes")
// as opposed to their JSON names.
type ApplicationConfiguration struct {
	Global                    map[string]any `mapstructure:"global"`
	ContentAddressableStorage map[string]any `mapstructure:"content_addressable_storage" validate:"required"`
	MaximumMessageSizeBytes   int            `mapstructure:"maximum_message_size_bytes" validate:"gt=0"`

	// Location of the placeholders and hydrated files, and the
	// location at which they are exposed through FUSE.
	StorageRootPath        string `mapstructure:"storage_root_path" validate:"required"`
	VirtualizationRootPath string `mapstructure:"virtualization_root_path" validate:"required,nefield=StorageRootPath"`

	InputRoot      InputRootConfiguration      `mapstructure:"input_root"`
	DirectoryCache DirectoryCacheConfiguration `mapstructure:"directory_cache"`
	FUSE           FUSEConfiguration           `mapstructure:"fuse"`

	// Number of event handler threads. Zero selects twice the
	// number of CPUs.
	WorkerThreadCount uint32 `mapstructure:"worker_thread_count"`

	// If set, the list of paths modified through the mount is
	// written to this file upon shutdown.
	ModifiedPathsFilePath string `mapstructure:"modified_paths_file_path"`
}

// InputRootConfiguration identifies the Directory object in the
// Content Addressable Storage that is projected.
type InputRootConfiguration struct {
	InstanceName   string `mapstructure:"instance_name"`
	DigestFunction string `mapstructure:"digest_function" validate:"required"`
	Hash           string `mapstructure:"hash" validate:"required,hexadecimal"`
	SizeBytes      int64  `mapstructure:"size_bytes" validate:"gte=0"`
}

// DirectoryCacheConfiguration controls in-memory caching of Directory
// objects. Caching is disabled if MaximumCount is zero.
type DirectoryCacheConfiguration struct {
	MaximumCount           int    `mapstructure:"maximum_count" validate:"gte=0"`
	MaximumSizeBytes       int64  `mapstructure:"maximum_size_bytes" validate:"gte=0"`
	CacheReplacementPolicy string `mapstructure:"cache_replacement_policy"`
}

// FUSEConfiguration contains options of the FUSE mount.
type FUSEConfiguration struct {
	AllowOther  bool `mapstructure:"allow_other"`
	DirectMount bool `mapstructure:"direct_mount"`
	Debug       bool `mapstructure:"debug"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("maximum_message_size_bytes", 16*1024*1024)
	v.SetDefault("input_root.digest_function", "SHA256")
	v.SetDefault("directory_cache.maximum_count", 10000)
	v.SetDefault("directory_cache.maximum_size_bytes", 64*1024*1024)
	v.SetDefault("directory_cache.cache_replacement_policy", "LEAST_RECENTLY_USED")

	// Register keys that may only be provided through the
	// environment, so that Unmarshal() picks them up.
	v.SetDefault("storage_root_path", "")
	v.SetDefault("virtualization_root_path", "")
	v.SetDefault("input_root.instance_name", "")
	v.SetDefault("input_root.hash", "")
	v.SetDefault("input_root.size_bytes", 0)
	v.SetDefault("worker_thread_count", 0)
	v.SetDefault("modified_paths_file_path", "")
	v.SetDefault("fuse.allow_other", false)
	v.SetDefault("fuse.direct_mount", false)
	v.SetDefault("fuse.debug", false)
}

// GetApplicationConfiguration reads the configuration from a YAML,
// JSON or TOML file, applies overrides from the environment and fills
// in default values.
func GetApplicationConfiguration(path string) (*ApplicationConfiguration, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvironmentPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, util.StatusWrapfWithCode(err, codes.InvalidArgument, "Failed to read configuration file %#v", path)
	}

	var configuration ApplicationConfiguration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, util.StatusWrapWithCode(err, codes.InvalidArgument, "Failed to decode configuration")
	}
	if err := Validate(&configuration); err != nil {
		return nil, err
	}
	return &configuration, nil
}

// GetWorkerThreadCount returns the number of event handler threads to
// launch.
func (c *ApplicationConfiguration) GetWorkerThreadCount() uint32 {
	if c.WorkerThreadCount == 0 {
		return uint32(2 * runtime.NumCPU())
	}
	return c.WorkerThreadCount
}

// GetRootDirectoryDigest returns the digest of the Directory object
// that is projected.
func (c *ApplicationConfiguration) GetRootDirectoryDigest() (digest.Digest, error) {
	digestFunction, ok := remoteexecution.DigestFunction_Value_value[strings.ToUpper(c.InputRoot.DigestFunction)]
	if !ok {
		return digest.BadDigest, status.Errorf(codes.InvalidArgument, "Unknown digest function %#v", c.InputRoot.DigestFunction)
	}
	instanceName, err := digest.NewInstanceName(c.InputRoot.InstanceName)
	if err != nil {
		return digest.BadDigest, util.StatusWrapf(err, "Invalid instance name %#v", c.InputRoot.InstanceName)
	}
	fn, err := instanceName.GetDigestFunction(remoteexecution.DigestFunction_Value(digestFunction), 0)
	if err != nil {
		return digest.BadDigest, util.StatusWrap(err, "Invalid digest function")
	}
	d, err := fn.NewDigest(strings.ToLower(c.InputRoot.Hash), c.InputRoot.SizeBytes)
	if err != nil {
		return digest.BadDigest, util.StatusWrap(err, "Invalid input root digest")
	}
	return d, nil
}

// GetDriverConfiguration returns options for the FUSE projection
// driver.
func (c *ApplicationConfiguration) GetDriverConfiguration() fuse.DriverConfiguration {
	return fuse.DriverConfiguration{
		FSName:      "bb_projfs",
		AllowOther:  c.FUSE.AllowOther,
		DirectMount: c.FUSE.DirectMount,
		Debug:       c.FUSE.Debug,
	}
}

// unmarshalSubtree converts a section of the configuration file to a
// Protobuf message, using the Protobuf JSON mapping.
func unmarshalSubtree(name string, subtree map[string]any, m proto.Message) error {
	data, err := json.Marshal(subtree)
	if err != nil {
		return util.StatusWrapfWithCode(err, codes.InvalidArgument, "Failed to encode %s configuration", name)
	}
	if err := protojson.Unmarshal(data, m); err != nil {
		return util.StatusWrapfWithCode(err, codes.InvalidArgument, "Failed to decode %s configuration", name)
	}
	return nil
}

// GetGlobalConfiguration returns options for logging, tracing and
// diagnostics, as understood by bb-storage's global package.
func (c *ApplicationConfiguration) GetGlobalConfiguration() (*pb_global.Configuration, error) {
	var configuration pb_global.Configuration
	if c.Global != nil {
		if err := unmarshalSubtree("global", c.Global, &configuration); err != nil {
			return nil, err
		}
	}
	return &configuration, nil
}

// GetContentAddressableStorageConfiguration returns the configuration
// of the storage backend from which the input root is read.
func (c *ApplicationConfiguration) GetContentAddressableStorageConfiguration() (*pb_blobstore.BlobAccessConfiguration, error) {
	var configuration pb_blobstore.BlobAccessConfiguration
	if err := unmarshalSubtree("content_addressable_storage", c.ContentAddressableStorage, &configuration); err != nil {
		return nil, err
	}
	return &configuration, nil
}
