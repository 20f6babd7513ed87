package cas_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/buildbarn/bb-projfs/pkg/cas"
	"github.com/stretchr/testify/require"
)

func TestModifiedPaths(t *testing.T) {
	modifiedPaths := cas.NewModifiedPaths()
	require.Empty(t, modifiedPaths.GetAll())
	require.False(t, modifiedPaths.Contains("src/main.c"))

	modifiedPaths.Add("src/main.c")
	modifiedPaths.Add("README")
	modifiedPaths.Add("src/main.c")

	require.True(t, modifiedPaths.Contains("src/main.c"))
	require.False(t, modifiedPaths.Contains("src"))
	require.Equal(t, []string{"README", "src/main.c"}, modifiedPaths.GetAll())
}

func TestModifiedPathsWriteToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "modified_paths")

	modifiedPaths := cas.NewModifiedPaths()
	require.NoError(t, modifiedPaths.WriteToFile(path))
	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Empty(t, contents)

	modifiedPaths.Add("src/main.c")
	modifiedPaths.Add("README")
	require.NoError(t, modifiedPaths.WriteToFile(path))
	contents, err = os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "README\nsrc/main.c\n", string(contents))
}
