package dupfind

import (
	"cmp"
	"slices"
)

// GroupBy cuts input into maximal runs of neighbours for which eq holds. The runs
// share input's backing array.
func GroupBy[T any](input []T, eq func(*T, *T) bool) (groups [][]T) {
	if len(input) < 1 {
		return
	}

	start := 0
	for i := range input[1:] {
		if !eq(&input[i], &input[i+1]) {
			groups = append(groups, input[start:i+1])
			start = i + 1
		}
	}
	groups = append(groups, input[start:])
	return
}

// SizeGroups partitions every entry of the arena into runs of equal size. Groups
// come out in ascending size order; members keep discovery order.
func SizeGroups(arena *Arena) []Group {
	if arena.Len() == 0 {
		return nil
	}
	return newSizeIndex(arena).groups()
}

// HashGroups partitions one size group by digest and returns only the runs with at
// least two members. Runs are in ascending digest order and members keep their
// order from the size group. Entries without a digest are never grouped.
func HashGroups(arena *Arena, sizeGroup Group) []Group {
	sorted := slices.Clone([]int(sizeGroup))
	slices.SortStableFunc(sorted, func(a, b int) int {
		da, okA := arena.At(a).Digest()
		db, okB := arena.At(b).Digest()
		switch {
		case okA && okB:
			return da.Compare(db)
		case okA:
			return -1
		case okB:
			return 1
		default:
			return 0
		}
	})

	runs := GroupBy(sorted, func(a, b *int) bool {
		return arena.At(*a).SameContent(arena.At(*b))
	})

	var candidates []Group
	for _, run := range runs {
		if len(run) > 1 {
			candidates = append(candidates, Group(run))
		}
	}
	return candidates
}

// PresentationOrder returns a copy of a hash group with shorter base names first
// and discovery order between names of equal length. An unnumbered name
// ("photo.jpg") then leads its numbered copies ("photo(1).jpg") and is the
// reference for the name similarity check.
func PresentationOrder(arena *Arena, group Group) Group {
	ordered := slices.Clone(group)
	slices.SortStableFunc(ordered, func(a, b int) int {
		return cmp.Compare(len(baseName(arena.At(a).Path)), len(baseName(arena.At(b).Path)))
	})
	return ordered
}
