package cas

import (
	"context"
	"io"

	"github.com/buildbarn/bb-storage/pkg/blobstore"
	"github.com/buildbarn/bb-storage/pkg/digest"
)

type blobAccessFileFetcher struct {
	blobAccess blobstore.BlobAccess
}

// NewBlobAccessFileFetcher creates a FileFetcher that reads files from
// a BlobAccess based store.
func NewBlobAccessFileFetcher(blobAccess blobstore.BlobAccess) FileFetcher {
	return &blobAccessFileFetcher{
		blobAccess: blobAccess,
	}
}

func (ff *blobAccessFileFetcher) GetFile(ctx context.Context, digest digest.Digest, w io.Writer) error {
	return ff.blobAccess.Get(ctx, digest).IntoWriter(w)
}
