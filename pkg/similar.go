package dupfind

import (
	"path/filepath"
	"strings"
)

// numberingChars are the characters allowed, besides digits, in the suffix that
// copy tools append to a file name ("photo(1)", "photo [2]", "photo 3")
const numberingChars = "()[]{} "

// FileNamesSimilar reports whether two paths have related file names: the base
// names (no directory, no extension) are equal ignoring case, or the shorter is a
// prefix of the longer and the rest of the longer is only digits and numbering
// punctuation.
func FileNamesSimilar(path1, path2 string) bool {
	base1 := strings.ToLower(baseName(path1))
	base2 := strings.ToLower(baseName(path2))

	if base1 == base2 {
		return true
	}

	if len(base1) == 0 || len(base2) == 0 {
		return false
	}

	shorter, longer := base1, base2
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}

	if !strings.HasPrefix(longer, shorter) {
		return false
	}

	return isOnlyDigitsAndPunctuation(longer[len(shorter):])
}

// GroupNamesSimilar checks every path against the first one
func GroupNamesSimilar(paths []string) bool {
	if len(paths) < 2 {
		return true
	}

	reference := paths[0]
	for _, path := range paths[1:] {
		if !FileNamesSimilar(reference, path) {
			return false
		}
	}
	return true
}

// baseName strips the directory and everything from the last dot of the file name
func baseName(path string) string {
	name := filepath.Base(path)
	if dot := strings.LastIndexByte(name, '.'); dot >= 0 {
		name = name[:dot]
	}
	return name
}

func isOnlyDigitsAndPunctuation(s string) bool {
	for _, r := range s {
		if r >= '0' && r <= '9' {
			continue
		}
		if !strings.ContainsRune(numberingChars, r) {
			return false
		}
	}
	return true
}
