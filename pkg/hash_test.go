package dupfind

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingOpenFs refuses to open the listed paths
type failingOpenFs struct {
	afero.Fs
	fail map[string]bool
}

func (f *failingOpenFs) Open(name string) (afero.File, error) {
	if f.fail[name] {
		return nil, errors.New("permission denied")
	}
	return f.Fs.Open(name)
}

func writeFiles(t *testing.T, fs afero.Fs, files map[string]string) {
	t.Helper()
	for path, content := range files {
		require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0644))
	}
}

func TestGetHashAlgorithm(t *testing.T) {
	for _, name := range []string{"sha256", "SHA256", "sha512_256", "sha512/256", "blake3"} {
		alg, err := GetHashAlgorithm(name)
		require.NoError(t, err, name)
		assert.Equal(t, DigestSize, alg.Size, name)
		assert.Equal(t, DigestSize, alg.NewFunc().Size(), name)
	}

	_, err := GetHashAlgorithm("md5")
	assert.ErrorIs(t, err, ErrUnsupportedAlgorithm)

	alg, err := GetHashAlgorithmByType(HashTypeBLAKE3)
	require.NoError(t, err)
	assert.Equal(t, "blake3", alg.Name)
}

func TestHashFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, map[string]string{
		"/d/hello.txt": "hello",
		"/d/empty.txt": "",
		"/d/big.bin":   strings.Repeat("0123456789", 1000),
		"/d/big2.bin":  strings.Repeat("0123456789", 1000),
	})
	sha256Alg, err := GetHashAlgorithm("sha256")
	require.NoError(t, err)

	t.Run("known sha256 digests", func(t *testing.T) {
		d, err := HashFile(context.Background(), fs, "/d/hello.txt", sha256Alg, 4)
		require.NoError(t, err)
		assert.Equal(t, "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824", d.String())

		d, err = HashFile(context.Background(), fs, "/d/empty.txt", sha256Alg, 4)
		require.NoError(t, err)
		assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", d.String())
	})

	t.Run("buffer size does not change the digest", func(t *testing.T) {
		small, err := HashFile(context.Background(), fs, "/d/big.bin", sha256Alg, 7)
		require.NoError(t, err)
		large, err := HashFile(context.Background(), fs, "/d/big.bin", sha256Alg, 64*1024)
		require.NoError(t, err)
		assert.Equal(t, small, large)
	})

	t.Run("same bytes same digest for every algorithm", func(t *testing.T) {
		for _, name := range []string{"sha256", "sha512_256", "blake3"} {
			alg, err := GetHashAlgorithm(name)
			require.NoError(t, err)
			d1, err := HashFile(context.Background(), fs, "/d/big.bin", alg, 1024)
			require.NoError(t, err)
			d2, err := HashFile(context.Background(), fs, "/d/big2.bin", alg, 1024)
			require.NoError(t, err)
			assert.Equal(t, d1, d2, name)
		}
	})

	t.Run("algorithms disagree", func(t *testing.T) {
		blake, err := GetHashAlgorithm("blake3")
		require.NoError(t, err)
		d1, err := HashFile(context.Background(), fs, "/d/hello.txt", sha256Alg, 1024)
		require.NoError(t, err)
		d2, err := HashFile(context.Background(), fs, "/d/hello.txt", blake, 1024)
		require.NoError(t, err)
		assert.NotEqual(t, d1, d2)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := HashFile(context.Background(), fs, "/d/missing", sha256Alg, 1024)
		assert.Error(t, err)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := HashFile(ctx, fs, "/d/big.bin", sha256Alg, 1024)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestHasherHashGroup(t *testing.T) {
	base := afero.NewMemMapFs()
	writeFiles(t, base, map[string]string{
		"/d/a": "same",
		"/d/b": "same",
		"/d/c": "same",
	})
	fs := &failingOpenFs{Fs: base, fail: map[string]bool{"/d/b": true}}

	alg, err := GetHashAlgorithm("sha256")
	require.NoError(t, err)
	hasher := NewHasher(fs, alg, 1024, zerolog.Nop())

	arena := NewArena(3)
	for _, p := range []string{"/d/a", "/d/b", "/d/c"} {
		arena.Add(FileEntry{Path: p, Size: 4})
	}

	failures, err := hasher.HashGroup(context.Background(), arena, Group{0, 1, 2})
	require.NoError(t, err)
	require.Len(t, failures, 1)
	assert.Equal(t, "/d/b", failures[0].Path)

	assert.True(t, arena.At(0).HasDigest())
	assert.False(t, arena.At(1).HasDigest())
	assert.True(t, arena.At(2).HasDigest())
	assert.True(t, arena.At(0).SameContent(arena.At(2)))
	assert.False(t, arena.At(0).SameContent(arena.At(1)))

	groups := HashGroups(arena, Group{0, 1, 2})
	require.Len(t, groups, 1)
	assert.Equal(t, Group{0, 2}, groups[0])
}

func TestHasherHashGroupCancelled(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, map[string]string{"/d/a": "x", "/d/b": "x"})

	alg, err := GetHashAlgorithm("sha256")
	require.NoError(t, err)
	hasher := NewHasher(fs, alg, 1024, zerolog.Nop())

	arena := NewArena(2)
	arena.Add(FileEntry{Path: "/d/a", Size: 1})
	arena.Add(FileEntry{Path: "/d/b", Size: 1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = hasher.HashGroup(ctx, arena, Group{0, 1})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, arena.At(0).HasDigest())
}
