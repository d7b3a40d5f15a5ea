package fileutil_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cameronsjo/modulemd/internal/fileutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFile(t *testing.T) {
	t.Parallel()

	t.Run("writes content", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "out.yaml")
		require.NoError(t, fileutil.WriteFile(path, []byte("document: modulemd\n"), 0644))

		got, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "document: modulemd\n", string(got))
	})

	t.Run("creates parent directories", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "nested", "deep", "out.yaml")
		require.NoError(t, fileutil.WriteFile(path, []byte("x"), 0644))

		_, err := os.Stat(path)
		assert.NoError(t, err)
	})

	t.Run("replaces and keeps permissions", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "out.yaml")
		require.NoError(t, os.WriteFile(path, []byte("old"), 0600))

		require.NoError(t, fileutil.WriteFile(path, []byte("new"), 0644))

		got, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "new", string(got))

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	})

	t.Run("leaves no temp files", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		require.NoError(t, fileutil.WriteFile(filepath.Join(dir, "out.yaml"), []byte("x"), 0644))

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})

	t.Run("rejects symlink", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		target := filepath.Join(dir, "target.yaml")
		link := filepath.Join(dir, "link.yaml")
		require.NoError(t, os.WriteFile(target, []byte("x"), 0644))
		require.NoError(t, os.Symlink(target, link))

		err := fileutil.WriteFile(link, []byte("y"), 0644)
		assert.ErrorIs(t, err, fileutil.ErrSymlinkNotSupported)
	})
}

func TestIsYAML(t *testing.T) {
	t.Parallel()

	assert.True(t, fileutil.IsYAML("a.yaml"))
	assert.True(t, fileutil.IsYAML("a.YML"))
	assert.False(t, fileutil.IsYAML("a.json"))
	assert.False(t, fileutil.IsYAML("yaml"))
}

func TestListYAML(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	for _, name := range []string{
		"b.yaml",
		"a.yml",
		"notes.txt",
		"sub/c.yaml",
		".hidden/d.yaml",
		".e.yaml",
	} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
	}

	files, err := fileutil.ListYAML(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.yml"),
		filepath.Join(dir, "b.yaml"),
		filepath.Join(dir, "sub", "c.yaml"),
	}, files)
}

func TestListYAML_Missing(t *testing.T) {
	t.Parallel()

	_, err := fileutil.ListYAML(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
