package dupfind

import (
	"context"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/zeebo/blake3"
)

// HashAlgorithm represents a hash algorithm configuration
type HashAlgorithm struct {
	Name    string
	TypeID  uint16
	Size    int
	NewFunc func() hash.Hash
}

// GetHashAlgorithm returns the hash algorithm configuration for the given name
func GetHashAlgorithm(name string) (*HashAlgorithm, error) {
	switch strings.ToLower(name) {
	case "sha256":
		return &HashAlgorithm{
			Name:    "sha256",
			TypeID:  HashTypeSHA256,
			Size:    sha256.Size,
			NewFunc: func() hash.Hash { return sha256.New() },
		}, nil
	case "sha512_256", "sha512/256":
		return &HashAlgorithm{
			Name:    "sha512_256",
			TypeID:  HashTypeSHA512_256,
			Size:    sha512.Size256,
			NewFunc: func() hash.Hash { return sha512.New512_256() },
		}, nil
	case "blake3":
		return &HashAlgorithm{
			Name:    "blake3",
			TypeID:  HashTypeBLAKE3,
			Size:    DigestSize,
			NewFunc: func() hash.Hash { return blake3.New() },
		}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAlgorithm, name)
	}
}

// GetHashAlgorithmByType returns the hash algorithm configuration for the given type ID
func GetHashAlgorithmByType(typeID uint16) (*HashAlgorithm, error) {
	return GetHashAlgorithm(HashTypeName(typeID))
}

// HashFile streams a file through the algorithm in chunks of bufferSize bytes,
// checking ctx between reads
func HashFile(ctx context.Context, fs afero.Fs, filePath string, algorithm *HashAlgorithm, bufferSize int) (Digest, error) {
	var digest Digest

	file, err := fs.Open(filePath)
	if err != nil {
		return digest, fmt.Errorf("failed to open file %s: %w", filePath, err)
	}
	defer file.Close()

	hasher := algorithm.NewFunc()
	buffer := make([]byte, bufferSize)

	for {
		if err := ctx.Err(); err != nil {
			return digest, err
		}

		n, err := file.Read(buffer)
		if n > 0 {
			hasher.Write(buffer[:n])
		}

		if err == io.EOF {
			break
		}
		if err != nil {
			return digest, fmt.Errorf("failed to read from file %s: %w", filePath, err)
		}
	}

	sum := hasher.Sum(nil)
	if len(sum) != DigestSize {
		return digest, fmt.Errorf("%w: %s produces %d bytes", ErrUnsupportedAlgorithm, algorithm.Name, len(sum))
	}
	copy(digest[:], sum)

	return digest, nil
}

// HashFailure records a file whose digest could not be computed
type HashFailure struct {
	Path string
	Err  error
}

// Hasher computes digests for the members of a size group, one file at a time
type Hasher struct {
	fs         afero.Fs
	algorithm  *HashAlgorithm
	bufferSize int
	logger     zerolog.Logger
}

// NewHasher creates a hasher
func NewHasher(fs afero.Fs, algorithm *HashAlgorithm, bufferSize int, logger zerolog.Logger) *Hasher {
	return &Hasher{
		fs:         fs,
		algorithm:  algorithm,
		bufferSize: bufferSize,
		logger:     logger,
	}
}

// Algorithm returns the configured algorithm
func (h *Hasher) Algorithm() *HashAlgorithm {
	return h.algorithm
}

// HashGroup assigns a digest to every member of group that can be read, in group
// order. Files that cannot be read are returned as failures in the same order;
// the returned error is only ever the context's.
func (h *Hasher) HashGroup(ctx context.Context, arena *Arena, group Group) ([]HashFailure, error) {
	var failures []HashFailure

	for _, idx := range group {
		entry := arena.At(idx)
		digest, err := HashFile(ctx, h.fs, entry.Path, h.algorithm, h.bufferSize)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if err != nil {
			failures = append(failures, HashFailure{Path: entry.Path, Err: err})
			h.logger.Debug().Err(err).Str("path", entry.Path).Msg("hash failed")
			continue
		}

		entry.setDigest(digest)
		if IsDebugEnabled(DebugHash) {
			h.logger.Trace().
				Str("path", entry.Path).
				Str("algorithm", h.algorithm.Name).
				Stringer("digest", digest).
				Msg("hashed file")
		}
	}

	return failures, nil
}
