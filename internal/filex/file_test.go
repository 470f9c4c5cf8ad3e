package filex

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureParentDir_CreatesNested(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "data", "db", "bpay.sqlite")

	dir, err := EnsureParentDir(target)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "data", "db"), dir)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestEnsureParentDir_Existing(t *testing.T) {
	root := t.TempDir()

	dir, err := EnsureParentDir(filepath.Join(root, "bpay.sqlite"))
	require.NoError(t, err)
	assert.Equal(t, root, dir)
}

func TestEnsureParentDir_ParentIsFile(t *testing.T) {
	root := t.TempDir()
	blocker := filepath.Join(root, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	_, err := EnsureParentDir(filepath.Join(blocker, "sub", "db.sqlite"))
	assert.Error(t, err)
}
