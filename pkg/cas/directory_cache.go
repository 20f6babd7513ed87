package cas

import (
	"context"
	"sync"

	remoteexecution "github.com/bazelbuild/remote-apis/build/bazel/remote/execution/v2"
	"github.com/buildbarn/bb-storage/pkg/digest"
	"github.com/buildbarn/bb-storage/pkg/eviction"

	"golang.org/x/sync/singleflight"
	"google.golang.org/protobuf/proto"
)

type cachedDirectory struct {
	directory *remoteexecution.Directory
	sizeBytes int64
}

type directoryCache struct {
	base             DirectoryFetcher
	maximumCount     int
	maximumSizeBytes int64
	loads            singleflight.Group

	lock        sync.Mutex
	directories map[string]cachedDirectory
	sizeBytes   int64
	evictionSet eviction.Set[string]
}

// NewDirectoryCache creates a DirectoryFetcher that keeps recently
// loaded Directory objects in memory. Resolving a path requires
// loading every directory along it, meaning that the upper levels of
// the input root are requested for every enumeration.
//
// Directories are keyed by the same content ID that is stored in
// placeholder files. These do not contain the instance name or digest
// function, so a cache may only be used for a single input root. The
// size of a directory is its encoded size, which is also what is
// retained in memory.
func NewDirectoryCache(base DirectoryFetcher, maximumCount int, maximumSizeBytes int64, evictionSet eviction.Set[string]) DirectoryFetcher {
	return &directoryCache{
		base:             base,
		maximumCount:     maximumCount,
		maximumSizeBytes: maximumSizeBytes,
		directories:      map[string]cachedDirectory{},
		evictionSet:      evictionSet,
	}
}

func (dc *directoryCache) lookup(key string) (*remoteexecution.Directory, bool) {
	dc.lock.Lock()
	defer dc.lock.Unlock()

	if cd, ok := dc.directories[key]; ok {
		dc.evictionSet.Touch(key)
		return cd.directory, true
	}
	return nil, false
}

func (dc *directoryCache) insert(key string, directory *remoteexecution.Directory) {
	sizeBytes := int64(proto.Size(directory))
	if sizeBytes > dc.maximumSizeBytes {
		return
	}

	dc.lock.Lock()
	defer dc.lock.Unlock()

	if _, ok := dc.directories[key]; ok {
		return
	}
	for len(dc.directories) > 0 && (len(dc.directories) >= dc.maximumCount || dc.sizeBytes+sizeBytes > dc.maximumSizeBytes) {
		evictedKey := dc.evictionSet.Peek()
		dc.evictionSet.Remove()
		dc.sizeBytes -= dc.directories[evictedKey].sizeBytes
		delete(dc.directories, evictedKey)
	}
	dc.evictionSet.Insert(key)
	dc.directories[key] = cachedDirectory{
		directory: directory,
		sizeBytes: sizeBytes,
	}
	dc.sizeBytes += sizeBytes
}

func (dc *directoryCache) GetDirectory(ctx context.Context, directoryDigest digest.Digest) (*remoteexecution.Directory, error) {
	key, err := contentKey(directoryDigest)
	if err != nil {
		return nil, err
	}
	if directory, ok := dc.lookup(key); ok {
		return directory, nil
	}

	// Workers enumerating sibling directories resolve the same
	// parent directories at the same time. Load them only once.
	v, err, _ := dc.loads.Do(key, func() (any, error) {
		directory, err := dc.base.GetDirectory(ctx, directoryDigest)
		if err != nil {
			return nil, err
		}
		dc.insert(key, directory)
		return directory, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*remoteexecution.Directory), nil
}
