package cas

import (
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/buildbarn/bb-storage/pkg/util"
	"github.com/google/uuid"
)

// ModifiedPaths is the set of paths in the virtualization root that
// have been created, modified, renamed or deleted by users of the
// mount. Paths in this set no longer reflect the contents of the input
// root.
type ModifiedPaths struct {
	lock  sync.Mutex
	paths map[string]struct{}
}

// NewModifiedPaths creates an empty set of modified paths.
func NewModifiedPaths() *ModifiedPaths {
	return &ModifiedPaths{
		paths: map[string]struct{}{},
	}
}

// Add a path to the set.
func (mp *ModifiedPaths) Add(relativePath string) {
	mp.lock.Lock()
	mp.paths[relativePath] = struct{}{}
	mp.lock.Unlock()
}

// Contains returns whether a path is part of the set.
func (mp *ModifiedPaths) Contains(relativePath string) bool {
	mp.lock.Lock()
	defer mp.lock.Unlock()
	_, ok := mp.paths[relativePath]
	return ok
}

// GetAll returns all paths in the set in sorted order.
func (mp *ModifiedPaths) GetAll() []string {
	mp.lock.Lock()
	paths := make([]string, 0, len(mp.paths))
	for path := range mp.paths {
		paths = append(paths, path)
	}
	mp.lock.Unlock()
	sort.Strings(paths)
	return paths
}

// WriteToFile writes all paths in the set to a file, one path per
// line. The file is replaced atomically, so that readers never observe
// a partially written list.
func (mp *ModifiedPaths) WriteToFile(path string) error {
	var contents strings.Builder
	for _, modifiedPath := range mp.GetAll() {
		contents.WriteString(modifiedPath)
		contents.WriteByte('\n')
	}
	temporaryPath := path + "." + uuid.Must(uuid.NewRandom()).String() + ".tmp"
	if err := os.WriteFile(temporaryPath, []byte(contents.String()), 0o644); err != nil {
		return util.StatusWrapf(err, "Failed to write %#v", temporaryPath)
	}
	if err := os.Rename(temporaryPath, path); err != nil {
		os.Remove(temporaryPath)
		return util.StatusWrapf(err, "Failed to rename %#v to %#v", temporaryPath, path)
	}
	return nil
}
