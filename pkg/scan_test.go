package dupfind

import (
	"context"
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func arenaPaths(arena *Arena) []string {
	paths := make([]string, arena.Len())
	for i := range paths {
		paths[i] = arena.At(i).Path
	}
	return paths
}

func newScanFixture(t *testing.T) afero.Fs {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, map[string]string{
		"/root/b.txt":         "bb",
		"/root/a.txt":         "a",
		"/root/sub/c.txt":     "ccc",
		"/root/sub/deep/d.md": "dddd",
		"/root/z.txt":         "",
	})
	return fs
}

func TestTraverse(t *testing.T) {
	t.Run("flat scan ignores subdirectories", func(t *testing.T) {
		traverser := NewTraverser(newScanFixture(t), zerolog.Nop())

		arena, err := traverser.Traverse(context.Background(), "/root", false)
		require.NoError(t, err)

		assert.Equal(t, []string{"/root/a.txt", "/root/b.txt", "/root/z.txt"}, arenaPaths(arena))
	})

	t.Run("recursive scan descends where met", func(t *testing.T) {
		traverser := NewTraverser(newScanFixture(t), zerolog.Nop())

		arena, err := traverser.Traverse(context.Background(), "/root", true)
		require.NoError(t, err)

		assert.Equal(t, []string{
			"/root/a.txt",
			"/root/b.txt",
			"/root/sub/c.txt",
			"/root/sub/deep/d.md",
			"/root/z.txt",
		}, arenaPaths(arena))
		assert.Equal(t, uint64(3), arena.At(2).Size)
		assert.Equal(t, uint64(0), arena.At(4).Size)
	})

	t.Run("missing root yields nothing", func(t *testing.T) {
		traverser := NewTraverser(afero.NewMemMapFs(), zerolog.Nop())

		arena, err := traverser.Traverse(context.Background(), "/nowhere", true)
		require.NoError(t, err)
		assert.Equal(t, 0, arena.Len())
	})

	t.Run("cancelled context", func(t *testing.T) {
		traverser := NewTraverser(newScanFixture(t), zerolog.Nop())
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := traverser.Traverse(ctx, "/root", true)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("ignore patterns skip files and whole directories", func(t *testing.T) {
		traverser := NewTraverser(newScanFixture(t), zerolog.Nop())
		im, err := NewIgnoreMatcher([]string{`^sub/$`, `^z\.txt$`})
		require.NoError(t, err)
		traverser.SetIgnore(im)

		arena, err := traverser.Traverse(context.Background(), "/root", true)
		require.NoError(t, err)
		assert.Equal(t, []string{"/root/a.txt", "/root/b.txt"}, arenaPaths(arena))
	})
}

func TestTraverseSymlinksAndSpecialFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "file.txt"), []byte("content"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "inner.txt"), []byte("x"), 0644))
	require.NoError(t, os.Symlink(filepath.Join(dir, "file.txt"), filepath.Join(dir, "link.txt")))
	require.NoError(t, os.Symlink(filepath.Join(dir, "sub"), filepath.Join(dir, "linkdir")))
	require.NoError(t, os.Symlink(filepath.Join(dir, "gone"), filepath.Join(dir, "dangling")))
	fifoErr := syscall.Mkfifo(filepath.Join(dir, "pipe"), 0644)

	traverser := NewTraverser(afero.NewOsFs(), zerolog.Nop())
	arena, err := traverser.Traverse(context.Background(), dir, true)
	require.NoError(t, err)

	byPath := make(map[string]*FileEntry)
	for i := 0; i < arena.Len(); i++ {
		byPath[filepath.Base(arena.At(i).Path)] = arena.At(i)
	}

	require.Contains(t, byPath, "link.txt")
	assert.True(t, byPath["link.txt"].IsSymlink)
	assert.Equal(t, uint64(len("content")), byPath["link.txt"].Size, "link recorded with its target's size")
	assert.False(t, byPath["file.txt"].IsSymlink)

	assert.Contains(t, byPath, "dangling")
	assert.Contains(t, byPath, "inner.txt")
	assert.NotContains(t, byPath, "linkdir")
	assert.Equal(t, 4, arena.Len(), "directory links are not followed")

	if fifoErr == nil {
		assert.NotContains(t, byPath, "pipe")
	}
}

func TestDropLinkAliases(t *testing.T) {
	dir := t.TempDir()
	elsewhere := t.TempDir()
	for _, p := range []string{filepath.Join(dir, "photo.jpg"), filepath.Join(elsewhere, "photo.jpg")} {
		require.NoError(t, os.WriteFile(p, []byte("pixels"), 0644))
	}
	require.NoError(t, os.Symlink(filepath.Join(dir, "photo.jpg"), filepath.Join(dir, "photo(1).jpg")))
	require.NoError(t, os.Symlink(filepath.Join(dir, "photo.jpg"), filepath.Join(dir, "photo(2).jpg")))
	require.NoError(t, os.Symlink(filepath.Join(elsewhere, "photo.jpg"), filepath.Join(dir, "photo(3).jpg")))
	require.NoError(t, os.Symlink(filepath.Join(elsewhere, "photo.jpg"), filepath.Join(dir, "photo(4).jpg")))

	traverser := NewTraverser(afero.NewOsFs(), zerolog.Nop())
	arena, err := traverser.Traverse(context.Background(), dir, false)
	require.NoError(t, err)
	require.Equal(t, 5, arena.Len())

	group := Group{0, 1, 2, 3, 4}
	kept := traverser.DropLinkAliases(arena, group)

	// links to a listed file go; of two links to an outside file the first stays
	assert.Equal(t, []string{
		filepath.Join(dir, "photo(3).jpg"),
		filepath.Join(dir, "photo.jpg"),
	}, arena.Paths(kept))
	assert.Equal(t, Group{0, 1, 2, 3, 4}, group, "input group untouched")
}

func TestDropLinkAliasesWithoutLinks(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, map[string]string{"/d/a": "1", "/d/a1": "1"})
	traverser := NewTraverser(fs, zerolog.Nop())

	arena, err := traverser.Traverse(context.Background(), "/d", false)
	require.NoError(t, err)

	assert.Equal(t, Group{0, 1}, traverser.DropLinkAliases(arena, Group{0, 1}))
}
