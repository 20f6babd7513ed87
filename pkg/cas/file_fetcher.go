package cas

import (
	"context"
	"io"

	"github.com/buildbarn/bb-storage/pkg/digest"
)

// FileFetcher is responsible for fetching files from the Content
// Addressable Storage (CAS), writing their contents into the file
// descriptor that the virtualization driver provides when hydrating a
// placeholder file.
type FileFetcher interface {
	GetFile(ctx context.Context, digest digest.Digest, w io.Writer) error
}
