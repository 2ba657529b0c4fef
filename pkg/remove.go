package dupfind

import (
	"errors"
	"os"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"golang.org/x/sys/unix"
)

// DeleteStatus is the outcome of one deletion attempt
type DeleteStatus int

const (
	DeleteOK DeleteStatus = iota
	DeleteSkippedSymlink
	DeleteFailed
	DeleteDryRun
)

// String returns the status name used in reports
func (s DeleteStatus) String() string {
	switch s {
	case DeleteOK:
		return "deleted"
	case DeleteSkippedSymlink:
		return "skipped-symlink"
	case DeleteFailed:
		return "failed"
	case DeleteDryRun:
		return "dry-run"
	default:
		return "unknown"
	}
}

// DeleteOutcome records what happened to one file on the delete list
type DeleteOutcome struct {
	Path   string
	Status DeleteStatus
	Err    error
}

// Remover deletes files but never symbolic links
type Remover struct {
	fs     afero.Fs
	dryRun bool
	logger zerolog.Logger
}

// NewRemover creates a remover. In dry-run mode nothing is removed.
func NewRemover(fs afero.Fs, dryRun bool, logger zerolog.Logger) *Remover {
	return &Remover{fs: fs, dryRun: dryRun, logger: logger}
}

// IsSymlink reports whether path is itself a symbolic link. Paths that cannot be
// inspected, and filesystems without lstat, report false.
func (r *Remover) IsSymlink(path string) bool {
	lstater, ok := r.fs.(afero.Lstater)
	if !ok {
		return false
	}

	info, _, err := lstater.LstatIfPossible(path)
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeSymlink != 0
}

// Remove deletes path unless it is a symbolic link
func (r *Remover) Remove(path string) DeleteOutcome {
	if r.IsSymlink(path) {
		r.logger.Info().Str("path", path).Msg("refusing to delete symbolic link")
		return DeleteOutcome{Path: path, Status: DeleteSkippedSymlink}
	}

	if r.dryRun {
		return DeleteOutcome{Path: path, Status: DeleteDryRun}
	}

	if err := r.fs.Remove(path); err != nil {
		r.logger.Warn().Err(err).Str("path", path).Msg("delete failed")
		return DeleteOutcome{Path: path, Status: DeleteFailed, Err: err}
	}

	r.logger.Info().Str("path", path).Msg("deleted")
	return DeleteOutcome{Path: path, Status: DeleteOK}
}

// ErrorCode returns the OS error number behind err, or its text when there is none
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}

	var errno unix.Errno
	if errors.As(err, &errno) {
		return strconv.Itoa(int(errno))
	}
	return err.Error()
}
