package main

import (
	"context"
	"os"

	"github.com/buildbarn/bb-projfs/pkg/cas"
	configuration "github.com/buildbarn/bb-projfs/pkg/configuration/bb_projfs"
	"github.com/buildbarn/bb-projfs/pkg/projfs"
	"github.com/buildbarn/bb-projfs/pkg/projfs/fuse"
	blobstore_configuration "github.com/buildbarn/bb-storage/pkg/blobstore/configuration"
	"github.com/buildbarn/bb-storage/pkg/clock"
	"github.com/buildbarn/bb-storage/pkg/global"
	"github.com/buildbarn/bb-storage/pkg/program"
	"github.com/buildbarn/bb-storage/pkg/util"
	"github.com/spf13/pflag"
	"go.opentelemetry.io/otel"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// This service exposes a single input root stored in a Content
// Addressable Storage (CAS) as a directory hierarchy. Directories and
// files are only downloaded when accessed. Changes made through the
// mount are stored in the storage root, and the paths of all modified
// files are tracked, so that they can be reported upon shutdown.

func main() {
	program.RunMain(func(ctx context.Context, siblingsGroup, dependenciesGroup program.Group) error {
		flags := pflag.NewFlagSet("bb_projfs", pflag.ContinueOnError)
		configurationPath := flags.String("config", "", "Path of the configuration file, in YAML, JSON or TOML format")
		if err := flags.Parse(os.Args[1:]); err != nil {
			return util.StatusWrapWithCode(err, codes.InvalidArgument, "Failed to parse command line flags")
		}
		if *configurationPath == "" {
			return status.Error(codes.InvalidArgument, "Usage: bb_projfs --config bb_projfs.yaml")
		}
		applicationConfiguration, err := configuration.GetApplicationConfiguration(*configurationPath)
		if err != nil {
			return util.StatusWrapf(err, "Failed to read configuration from %s", *configurationPath)
		}
		globalConfiguration, err := applicationConfiguration.GetGlobalConfiguration()
		if err != nil {
			return err
		}
		lifecycleState, grpcClientFactory, err := global.ApplyConfiguration(globalConfiguration, dependenciesGroup)
		if err != nil {
			return util.StatusWrap(err, "Failed to apply global configuration options")
		}

		// Storage access. Directory objects are cached in memory,
		// as resolving paths in the input root requires loading
		// the same directories over and over again.
		casConfiguration, err := applicationConfiguration.GetContentAddressableStorageConfiguration()
		if err != nil {
			return err
		}
		info, err := blobstore_configuration.NewBlobAccessFromConfiguration(
			dependenciesGroup,
			casConfiguration,
			blobstore_configuration.NewCASBlobAccessCreator(
				grpcClientFactory,
				applicationConfiguration.MaximumMessageSizeBytes))
		if err != nil {
			return util.StatusWrap(err, "Failed to create Content Addressable Storage")
		}
		directoryCache := applicationConfiguration.DirectoryCache
		directoryFetcher, err := cas.NewDirectoryCacheFromConfiguration(
			cas.NewBlobAccessDirectoryFetcher(
				info.BlobAccess,
				applicationConfiguration.MaximumMessageSizeBytes),
			directoryCache.MaximumCount,
			directoryCache.MaximumSizeBytes,
			directoryCache.CacheReplacementPolicy)
		if err != nil {
			return util.StatusWrap(err, "Failed to create directory cache")
		}
		rootDirectoryDigest, err := applicationConfiguration.GetRootDirectoryDigest()
		if err != nil {
			return err
		}

		// Create the storage root if it does not exist yet. In
		// that case the input root needs to be projected into
		// it from scratch.
		storageRootPath := applicationConfiguration.StorageRootPath
		driverConfiguration := applicationConfiguration.GetDriverConfiguration()
		if _, err := os.Stat(storageRootPath); os.IsNotExist(err) {
			if err := os.MkdirAll(storageRootPath, 0o755); err != nil {
				return util.StatusWrapf(err, "Failed to create storage root %#v", storageRootPath)
			}
			driverConfiguration.ProjectStorageRoot = true
		}

		errorLogger := util.DefaultErrorLogger
		virtualizationInstance := projfs.NewVirtualizationInstance(
			fuse.NewDriver(clock.SystemClock, driverConfiguration),
			clock.SystemClock,
			projfs.GetDeviceNumber,
			projfs.SystemProcessTable,
			errorLogger)
		inputRootProvider := cas.NewInputRootProvider(
			directoryFetcher,
			cas.NewBlobAccessFileFetcher(info.BlobAccess),
			virtualizationInstance,
			rootDirectoryDigest,
			errorLogger)
		if r := virtualizationInstance.Start(
			ctx,
			projfs.NewTracingCallbacks(
				projfs.NewMetricsCallbacks(inputRootProvider, clock.SystemClock),
				otel.GetTracerProvider()),
			storageRootPath,
			applicationConfiguration.VirtualizationRootPath,
			applicationConfiguration.GetWorkerThreadCount(),
		); r != projfs.ResultSuccess {
			return util.StatusWrapf(r.Err(), "Failed to start virtualization instance at %#v", applicationConfiguration.VirtualizationRootPath)
		}

		// Unmount upon termination, and report which paths were
		// modified while the mount was active.
		siblingsGroup.Go(func(ctx context.Context, siblingsGroup, dependenciesGroup program.Group) error {
			<-ctx.Done()
			virtualizationInstance.Stop()
			if modifiedPathsFilePath := applicationConfiguration.ModifiedPathsFilePath; modifiedPathsFilePath != "" {
				if err := inputRootProvider.GetModifiedPaths().WriteToFile(modifiedPathsFilePath); err != nil {
					return util.StatusWrap(err, "Failed to write modified paths")
				}
			}
			return nil
		})

		lifecycleState.MarkReadyAndWait(siblingsGroup)
		return nil
	})
}
