package cas

import (
	"github.com/buildbarn/bb-projfs/pkg/projfs"
)

// PlaceholderWriter is the subset of projfs.VirtualizationInstance
// that InputRootProvider uses to populate the virtualization root.
type PlaceholderWriter interface {
	WriteFileContents(fd int, data []byte) projfs.Result
	WritePlaceholderDirectory(relativePath string) projfs.Result
	WritePlaceholderFile(relativePath string, providerID, contentID []byte, fileSize uint64, fileMode uint32) projfs.Result
	WriteSymLink(relativePath, symlinkTarget string) projfs.Result
}

var _ PlaceholderWriter = (*projfs.VirtualizationInstance)(nil)
