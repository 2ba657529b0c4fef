package dupfind

import (
	"fmt"
	"strings"

	zcsl "github.com/mattkeenan/zerocopyskiplist"
)

// sizeIndexLevels is the skiplist height used for the size index
const sizeIndexLevels = 16

// sizeRef points at one arena entry from the size index
type sizeRef struct {
	index int
	size  uint64
	key   string
}

// sizeIndexKey orders by size first and discovery sequence second. Both fields are
// zero padded so that string order equals numeric order.
func sizeIndexKey(size uint64, index int) string {
	return fmt.Sprintf("%020d/%012d", size, index)
}

// sizeIndex keeps arena entries ordered by (size, discovery order)
type sizeIndex struct {
	skiplist *zcsl.ZeroCopySkiplist[sizeRef, string, string]
	refs     []sizeRef
}

// newSizeIndex builds the index over every entry of the arena. The arena must not
// grow afterwards.
func newSizeIndex(arena *Arena) *sizeIndex {
	getKeyFromItem := func(ref *sizeRef) string {
		return ref.key
	}

	getItemSize := func(ref *sizeRef) int {
		return len(ref.key)
	}

	cmpKey := func(a, b string) int {
		return strings.Compare(a, b)
	}

	idx := &sizeIndex{
		skiplist: zcsl.MakeZeroCopySkiplist[sizeRef, string, string](
			sizeIndexLevels,
			getKeyFromItem,
			getItemSize,
			cmpKey,
		),
		refs: make([]sizeRef, arena.Len()),
	}

	for i := 0; i < arena.Len(); i++ {
		size := arena.At(i).Size
		idx.refs[i] = sizeRef{index: i, size: size, key: sizeIndexKey(size, i)}
		idx.skiplist.Insert(&idx.refs[i], ScanContext)
	}

	return idx
}

// Length returns the number of indexed entries
func (idx *sizeIndex) Length() int {
	return idx.skiplist.Length()
}

// groups walks the index in order and cuts it into maximal runs of equal size
func (idx *sizeIndex) groups() []Group {
	var groups []Group
	var current Group
	var currentSize uint64

	for node := idx.skiplist.First(); node != nil; node = node.Next() {
		ref := node.Item()
		if len(current) > 0 && ref.size != currentSize {
			groups = append(groups, current)
			current = nil
		}
		currentSize = ref.size
		current = append(current, ref.index)
	}

	if len(current) > 0 {
		groups = append(groups, current)
	}

	return groups
}
