package dupfind

import (
	"bytes"
	"encoding/hex"
)

// Digest is the 256-bit content digest of a file
type Digest [DigestSize]byte

// String returns the digest as lowercase hex
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// Compare orders digests bytewise
func (d Digest) Compare(other Digest) int {
	return bytes.Compare(d[:], other[:])
}

// FileEntry describes one file found by the traverser. The digest is assigned at
// most once, by the hasher; everything else is fixed at creation.
type FileEntry struct {
	Path      string
	Size      uint64
	IsSymlink bool

	digest    Digest
	hasDigest bool
}

// Digest returns the entry's digest and whether hashing succeeded
func (e *FileEntry) Digest() (Digest, bool) {
	return e.digest, e.hasDigest
}

// HasDigest reports whether the entry has been hashed successfully
func (e *FileEntry) HasDigest() bool {
	return e.hasDigest
}

// setDigest records the digest unless one is already present
func (e *FileEntry) setDigest(d Digest) bool {
	if e.hasDigest {
		return false
	}
	e.digest = d
	e.hasDigest = true
	return true
}

// SameContent reports whether two entries are proven duplicates. Entries without a
// digest never match anything, not even each other.
func (e *FileEntry) SameContent(other *FileEntry) bool {
	if !e.hasDigest || !other.hasDigest {
		return false
	}
	return e.Size == other.Size && e.digest == other.digest
}

// Arena owns every entry discovered in one run. Groups refer to entries by index so
// each grouping stage keeps its own membership list without touching the entries.
type Arena struct {
	entries []FileEntry
}

// NewArena creates an empty arena with room for sizeHint entries
func NewArena(sizeHint int) *Arena {
	return &Arena{entries: make([]FileEntry, 0, sizeHint)}
}

// Add appends an entry and returns its index
func (a *Arena) Add(entry FileEntry) int {
	a.entries = append(a.entries, entry)
	return len(a.entries) - 1
}

// Len returns the number of entries
func (a *Arena) Len() int {
	return len(a.entries)
}

// At returns the entry at index i
func (a *Arena) At(i int) *FileEntry {
	return &a.entries[i]
}

// Group is an ordered view over arena entries
type Group []int

// Paths returns the paths of the group's members in group order
func (a *Arena) Paths(g Group) []string {
	paths := make([]string, len(g))
	for i, idx := range g {
		paths[i] = a.entries[idx].Path
	}
	return paths
}

// Size returns the common size of a group's members
func (a *Arena) Size(g Group) uint64 {
	if len(g) == 0 {
		return 0
	}
	return a.entries[g[0]].Size
}
