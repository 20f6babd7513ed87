package cas

import (
	"github.com/buildbarn/bb-storage/pkg/eviction"
	pb "github.com/buildbarn/bb-storage/pkg/proto/configuration/eviction"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// NewDirectoryCacheFromConfiguration wraps a DirectoryFetcher in a
// DirectoryCache, based on parameters provided in a configuration
// file. Caching is disabled if the maximum number of directories is
// zero.
func NewDirectoryCacheFromConfiguration(base DirectoryFetcher, maximumCount int, maximumSizeBytes int64, cacheReplacementPolicy string) (DirectoryFetcher, error) {
	if maximumCount == 0 {
		return base, nil
	}

	policy, ok := pb.CacheReplacementPolicy_value[cacheReplacementPolicy]
	if !ok {
		return nil, status.Errorf(codes.InvalidArgument, "Unknown cache replacement policy %#v", cacheReplacementPolicy)
	}
	evictionSet, err := eviction.NewSetFromConfiguration[string](pb.CacheReplacementPolicy(policy))
	if err != nil {
		return nil, err
	}
	return NewDirectoryCache(
		base,
		maximumCount,
		maximumSizeBytes,
		eviction.NewMetricsSet(evictionSet, "DirectoryCache"),
	), nil
}
