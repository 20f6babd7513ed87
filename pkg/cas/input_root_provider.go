package cas

import (
	"context"
	"strings"

	remoteexecution "github.com/bazelbuild/remote-apis/build/bazel/remote/execution/v2"
	"github.com/buildbarn/bb-projfs/pkg/projfs"
	"github.com/buildbarn/bb-storage/pkg/digest"
	"github.com/buildbarn/bb-storage/pkg/filesystem/path"
	"github.com/buildbarn/bb-storage/pkg/util"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// InputRootProvider is an implementation of projfs.Callbacks that
// projects a single input root stored in the Content Addressable
// Storage (CAS). Directories are enumerated by loading the Directory
// objects along the path from the root. Files are hydrated by streaming
// their contents from the CAS, using the digest stored in the
// placeholder.
type InputRootProvider struct {
	directoryFetcher    DirectoryFetcher
	fileFetcher         FileFetcher
	placeholderWriter   PlaceholderWriter
	rootDirectoryDigest digest.Digest
	errorLogger         util.ErrorLogger

	modifiedPaths *ModifiedPaths
}

var _ projfs.Callbacks = (*InputRootProvider)(nil)

// NewInputRootProvider creates an InputRootProvider for the input root
// with a given digest.
func NewInputRootProvider(directoryFetcher DirectoryFetcher, fileFetcher FileFetcher, placeholderWriter PlaceholderWriter, rootDirectoryDigest digest.Digest, errorLogger util.ErrorLogger) *InputRootProvider {
	return &InputRootProvider{
		directoryFetcher:    directoryFetcher,
		fileFetcher:         fileFetcher,
		placeholderWriter:   placeholderWriter,
		rootDirectoryDigest: rootDirectoryDigest,
		errorLogger:         errorLogger,

		modifiedPaths: NewModifiedPaths(),
	}
}

// GetModifiedPaths returns the set of paths that users of the mount
// have changed.
func (p *InputRootProvider) GetModifiedPaths() *ModifiedPaths {
	return p.modifiedPaths
}

// resultFromError converts an error returned by the CAS to a result
// that is returned to the projection driver.
func resultFromError(err error) projfs.Result {
	switch status.Code(err) {
	case codes.NotFound:
		return projfs.ResultErrFileNotFound
	case codes.InvalidArgument:
		return projfs.ResultInvalid
	default:
		return projfs.ResultErrIO
	}
}

// splitPath converts a path relative to the virtualization root to
// its components. Both "" and "." refer to the root directory.
func splitPath(relativePath string) []string {
	if relativePath == "" || relativePath == "." {
		return nil
	}
	return strings.Split(relativePath, "/")
}

func joinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "/" + name
}

// getDirectory loads the Directory object at a given path by walking
// the input root, starting at the root directory.
func (p *InputRootProvider) getDirectory(ctx context.Context, components []string) (*remoteexecution.Directory, error) {
	digestFunction := p.rootDirectoryDigest.GetDigestFunction()
	directory, err := p.directoryFetcher.GetDirectory(ctx, p.rootDirectoryDigest)
	if err != nil {
		return nil, util.StatusWrap(err, "Failed to obtain root directory")
	}
	for i, name := range components {
		found := false
		for _, entry := range directory.Directories {
			if entry.Name == name {
				childDigest, err := digestFunction.NewDigestFromProto(entry.Digest)
				if err != nil {
					return nil, util.StatusWrapf(err, "Failed to obtain digest for directory %#v", strings.Join(components[:i+1], "/"))
				}
				if directory, err = p.directoryFetcher.GetDirectory(ctx, childDigest); err != nil {
					return nil, util.StatusWrapf(err, "Failed to obtain directory %#v", strings.Join(components[:i+1], "/"))
				}
				found = true
				break
			}
		}
		if !found {
			return nil, status.Errorf(codes.NotFound, "Directory %#v does not exist", strings.Join(components[:i+1], "/"))
		}
	}
	return directory, nil
}

func (p *InputRootProvider) enumerateDirectory(ctx context.Context, relativePath string) error {
	components := splitPath(relativePath)
	directory, err := p.getDirectory(ctx, components)
	if err != nil {
		return err
	}
	digestFunction := p.rootDirectoryDigest.GetDigestFunction()
	parent := strings.Join(components, "/")

	for _, entry := range directory.Directories {
		if _, ok := path.NewComponent(entry.Name); !ok {
			return status.Errorf(codes.InvalidArgument, "Directory %#v has an invalid name", entry.Name)
		}
		if r := p.placeholderWriter.WritePlaceholderDirectory(joinPath(parent, entry.Name)); r != projfs.ResultSuccess {
			return util.StatusWrapf(r.Err(), "Failed to write placeholder for directory %#v", entry.Name)
		}
	}

	for _, entry := range directory.Files {
		if _, ok := path.NewComponent(entry.Name); !ok {
			return status.Errorf(codes.InvalidArgument, "File %#v has an invalid name", entry.Name)
		}
		childDigest, err := digestFunction.NewDigestFromProto(entry.Digest)
		if err != nil {
			return util.StatusWrapf(err, "Failed to obtain digest for file %#v", entry.Name)
		}
		providerID, contentID, err := encodePlaceholderIDs(childDigest)
		if err != nil {
			return util.StatusWrapf(err, "Failed to create placeholder identifiers for file %#v", entry.Name)
		}
		var fileMode uint32 = 0o644
		if entry.IsExecutable {
			fileMode = 0o755
		}
		if r := p.placeholderWriter.WritePlaceholderFile(joinPath(parent, entry.Name), providerID, contentID, uint64(childDigest.GetSizeBytes()), fileMode); r != projfs.ResultSuccess {
			return util.StatusWrapf(r.Err(), "Failed to write placeholder for file %#v", entry.Name)
		}
	}

	for _, entry := range directory.Symlinks {
		if _, ok := path.NewComponent(entry.Name); !ok {
			return status.Errorf(codes.InvalidArgument, "Symlink %#v has an invalid name", entry.Name)
		}
		if r := p.placeholderWriter.WriteSymLink(joinPath(parent, entry.Name), entry.Target); r != projfs.ResultSuccess {
			return util.StatusWrapf(r.Err(), "Failed to write symlink %#v", entry.Name)
		}
	}
	return nil
}

// OnEnumerateDirectory writes placeholders for all children of a
// directory in the input root.
func (p *InputRootProvider) OnEnumerateDirectory(ctx context.Context, commandID uint64, relativePath string, triggeringProcessID int, triggeringProcessName string) projfs.Result {
	if err := p.enumerateDirectory(ctx, relativePath); err != nil {
		p.errorLogger.Log(util.StatusWrapf(err, "Failed to enumerate directory %#v for process %d (%s)", relativePath, triggeringProcessID, triggeringProcessName))
		return resultFromError(err)
	}
	return projfs.ResultSuccess
}

// OnGetFileStream writes the contents of a file into the descriptor
// provided by the projection driver.
func (p *InputRootProvider) OnGetFileStream(ctx context.Context, commandID uint64, relativePath string, providerID, contentID []byte, triggeringProcessID int, triggeringProcessName string, fd int) projfs.Result {
	blobDigest, err := decodePlaceholderIDs(p.rootDirectoryDigest.GetDigestFunction(), providerID, contentID)
	if err == nil {
		w := placeholderFileWriter{
			placeholderWriter: p.placeholderWriter,
			fd:                fd,
		}
		if err = p.fileFetcher.GetFile(ctx, blobDigest, &w); err == nil && w.sizeBytes != blobDigest.GetSizeBytes() {
			err = status.Errorf(codes.Internal, "Wrote %d bytes, while the placeholder has a size of %d bytes", w.sizeBytes, blobDigest.GetSizeBytes())
		}
	}
	if err != nil {
		p.errorLogger.Log(util.StatusWrapf(err, "Failed to obtain contents of file %#v for process %d (%s)", relativePath, triggeringProcessID, triggeringProcessName))
		return resultFromError(err)
	}
	return projfs.ResultSuccess
}

// placeholderFileWriter writes the contents of a file into the file
// descriptor of a placeholder that is being hydrated.
type placeholderFileWriter struct {
	placeholderWriter PlaceholderWriter
	fd                int
	sizeBytes         int64
}

func (w *placeholderFileWriter) Write(p []byte) (int, error) {
	if r := w.placeholderWriter.WriteFileContents(w.fd, p); r != projfs.ResultSuccess {
		return 0, util.StatusWrap(r.Err(), "Failed to write file contents")
	}
	w.sizeBytes += int64(len(p))
	return len(p), nil
}

// OnLogError forwards errors reported by the projection driver.
func (p *InputRootProvider) OnLogError(message string) {
	p.errorLogger.Log(status.Error(codes.Internal, message))
}

// OnPreDelete permits the deletion and records the path as modified.
func (p *InputRootProvider) OnPreDelete(relativePath string, isDirectory bool) projfs.Result {
	p.modifiedPaths.Add(relativePath)
	return projfs.ResultSuccess
}

func (p *InputRootProvider) OnFileModified(relativePath string) {
	p.modifiedPaths.Add(relativePath)
}

func (p *InputRootProvider) OnNewFileCreated(relativePath string, isDirectory bool) {
	p.modifiedPaths.Add(relativePath)
}

func (p *InputRootProvider) OnFileRenamed(relativePath string, isDirectory bool) {
	p.modifiedPaths.Add(relativePath)
}

func (p *InputRootProvider) OnHardLinkCreated(relativePath string) {
	p.modifiedPaths.Add(relativePath)
}

// OnFilePreConvertToFull permits the file to be modified and records
// the path as modified.
func (p *InputRootProvider) OnFilePreConvertToFull(relativePath string) projfs.Result {
	p.modifiedPaths.Add(relativePath)
	return projfs.ResultSuccess
}
