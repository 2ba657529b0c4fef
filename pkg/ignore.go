package dupfind

import (
	"bufio"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/afero"
)

// IgnoreMatcher holds regular expressions for paths the traverser must not record
// or descend into. Patterns are matched against the path relative to the scan
// root with forward slashes; directories are matched with a trailing slash.
type IgnoreMatcher struct {
	patterns []*regexp.Regexp
}

// NewIgnoreMatcher compiles patterns
func NewIgnoreMatcher(patterns []string) (*IgnoreMatcher, error) {
	im := &IgnoreMatcher{}
	for _, p := range patterns {
		if err := im.AddPattern(p); err != nil {
			return nil, err
		}
	}
	return im, nil
}

// LoadIgnoreFile adds the patterns of an ignore file, one regular expression per
// line. Empty lines and lines starting with # are skipped.
func (im *IgnoreMatcher) LoadIgnoreFile(fs afero.Fs, ignorePath string) error {
	file, err := fs.Open(ignorePath)
	if err != nil {
		return fmt.Errorf("failed to open ignore file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		pattern, err := regexp.Compile(line)
		if err != nil {
			return fmt.Errorf("invalid regex pattern at line %d: %s - %w", lineNum, line, err)
		}

		im.patterns = append(im.patterns, pattern)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading ignore file: %w", err)
	}

	return nil
}

// AddPattern adds a new ignore pattern
func (im *IgnoreMatcher) AddPattern(patternStr string) error {
	pattern, err := regexp.Compile(patternStr)
	if err != nil {
		return fmt.Errorf("invalid regex pattern: %s - %w", patternStr, err)
	}

	im.patterns = append(im.patterns, pattern)
	return nil
}

// HasPatterns returns true if there are any ignore patterns
func (im *IgnoreMatcher) HasPatterns() bool {
	return im != nil && len(im.patterns) > 0
}

// ShouldIgnore checks if a path relative to the scan root should be skipped
func (im *IgnoreMatcher) ShouldIgnore(relativePath string, isDir bool) bool {
	if !im.HasPatterns() {
		return false
	}

	// Normalise path separators to forward slashes for consistent pattern matching
	normalisedPath := filepath.ToSlash(relativePath)
	if isDir {
		normalisedPath += "/"
	}

	for _, pattern := range im.patterns {
		if pattern.MatchString(normalisedPath) {
			return true
		}
	}

	return false
}
