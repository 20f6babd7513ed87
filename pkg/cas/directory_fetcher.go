package cas

import (
	"context"

	remoteexecution "github.com/bazelbuild/remote-apis/build/bazel/remote/execution/v2"
	"github.com/buildbarn/bb-storage/pkg/digest"
)

// DirectoryFetcher loads the Directory objects that make up the
// projected input root.
type DirectoryFetcher interface {
	GetDirectory(ctx context.Context, directoryDigest digest.Digest) (*remoteexecution.Directory, error)
}
