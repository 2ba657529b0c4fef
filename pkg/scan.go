package dupfind

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// Traverser lists directory trees and records one FileEntry per file found
type Traverser struct {
	fs     afero.Fs
	ignore *IgnoreMatcher
	logger zerolog.Logger
}

// NewTraverser creates a traverser over the given filesystem
func NewTraverser(fs afero.Fs, logger zerolog.Logger) *Traverser {
	return &Traverser{fs: fs, logger: logger}
}

// SetIgnore makes the traverser skip paths matching im
func (t *Traverser) SetIgnore(im *IgnoreMatcher) {
	t.ignore = im
}

// Traverse walks root and returns every file it finds in discovery order.
//
// Entries are visited in the order afero.ReadDir returns them (sorted by name) and
// subdirectories are descended into at the point they are met, only when recursive
// is set. A directory that cannot be listed contributes nothing; the only error
// returned is the context's.
func (t *Traverser) Traverse(ctx context.Context, root string, recursive bool) (*Arena, error) {
	arena := NewArena(0)
	if err := t.scanDir(ctx, root, root, recursive, arena); err != nil {
		return arena, err
	}

	t.logger.Debug().
		Str("root", root).
		Bool("recursive", recursive).
		Int("files", arena.Len()).
		Msg("traversal finished")

	return arena, nil
}

// scanDir records the files of one directory, recursing when asked
func (t *Traverser) scanDir(ctx context.Context, root, dir string, recursive bool, arena *Arena) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	infos, err := afero.ReadDir(t.fs, dir)
	if err != nil {
		t.logger.Debug().Err(err).Str("path", dir).Msg("skipping unreadable directory")
		return nil
	}

	for _, info := range infos {
		name := info.Name()
		if name == "." || name == ".." {
			continue
		}

		fullPath := filepath.Join(dir, name)
		mode := info.Mode()

		if t.ignored(root, fullPath, info.IsDir()) {
			continue
		}

		switch {
		case info.IsDir():
			if !recursive {
				continue
			}
			if err := t.scanDir(ctx, root, fullPath, recursive, arena); err != nil {
				return err
			}
		case mode&os.ModeSymlink != 0:
			t.addSymlink(fullPath, info, arena)
		case mode.IsRegular():
			arena.Add(FileEntry{Path: fullPath, Size: uint64(info.Size())})
			if IsDebugEnabled(DebugScan) {
				t.logger.Trace().Str("path", fullPath).Int64("size", info.Size()).Msg("found file")
			}
		default:
			t.logger.Debug().Str("path", fullPath).Stringer("mode", mode).Msg("skipping special file")
		}
	}

	return nil
}

// ignored applies the ignore patterns to path relative to root
func (t *Traverser) ignored(root, path string, isDir bool) bool {
	if !t.ignore.HasPatterns() {
		return false
	}

	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}

	if t.ignore.ShouldIgnore(rel, isDir) {
		if IsDebugEnabled(DebugScan) {
			t.logger.Debug().Str("path", path).Msg("ignored")
		}
		return true
	}
	return false
}

// addSymlink records a link that resolves to a regular file with the target's size.
// Links to directories are never followed. A dangling link is kept with its own
// size; hashing it fails later and excludes it from every group.
func (t *Traverser) addSymlink(path string, linkInfo os.FileInfo, arena *Arena) {
	targetInfo, err := t.fs.Stat(path)
	if err != nil {
		arena.Add(FileEntry{Path: path, Size: uint64(linkInfo.Size()), IsSymlink: true})
		t.logger.Debug().Err(err).Str("path", path).Msg("dangling symbolic link")
		return
	}

	switch {
	case targetInfo.IsDir():
		t.logger.Debug().Str("path", path).Msg("not following directory symlink")
	case targetInfo.Mode().IsRegular():
		arena.Add(FileEntry{Path: path, Size: uint64(targetInfo.Size()), IsSymlink: true})
		if IsDebugEnabled(DebugScan) {
			t.logger.Trace().Str("path", path).Int64("size", targetInfo.Size()).Msg("found symlink")
		}
	default:
		t.logger.Debug().Str("path", path).Stringer("mode", targetInfo.Mode()).Msg("skipping symlink to special file")
	}
}

// DropLinkAliases removes from group every symbolic link that resolves to the same
// file as a regular member, or as a link kept before it, so a link and its own
// target are never offered as copies of each other.
func (t *Traverser) DropLinkAliases(arena *Arena, group Group) Group {
	hasLink := false
	for _, idx := range group {
		if arena.At(idx).IsSymlink {
			hasLink = true
			break
		}
	}
	if !hasLink {
		return group
	}

	infos := make([]os.FileInfo, len(group))
	for i, idx := range group {
		if info, err := t.fs.Stat(arena.At(idx).Path); err == nil {
			infos[i] = info
		}
	}

	kept := make(Group, 0, len(group))
	for i, idx := range group {
		entry := arena.At(idx)
		if entry.IsSymlink && t.aliased(arena, group, infos, i) {
			t.logger.Debug().Str("path", entry.Path).Msg("dropping symlink to another group member")
			continue
		}
		kept = append(kept, idx)
	}
	return kept
}

// aliased reports whether member i is the same file as a regular member or an
// earlier link
func (t *Traverser) aliased(arena *Arena, group Group, infos []os.FileInfo, i int) bool {
	if infos[i] == nil {
		return false
	}
	for j, info := range infos {
		if j == i || info == nil {
			continue
		}
		if arena.At(group[j]).IsSymlink && j > i {
			continue
		}
		if os.SameFile(infos[i], info) {
			return true
		}
	}
	return false
}
