package dupfind

import (
	"errors"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/rs/zerolog"
)

// Outcome is how the resolution of one group ended
type Outcome int

const (
	// OutcomeSkip leaves the group untouched
	OutcomeSkip Outcome = iota
	// OutcomeQuit ends the whole run
	OutcomeQuit
	// OutcomeComplete means every file on the delete list was attempted
	OutcomeComplete
)

// String returns the outcome name used in reports
func (o Outcome) String() string {
	switch o {
	case OutcomeSkip:
		return "skip"
	case OutcomeQuit:
		return "quit"
	case OutcomeComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// Resolution reasons
const (
	ReasonUserSkip   = "user-skip"
	ReasonUserQuit   = "user-quit"
	ReasonNoneKept   = "none-selected"
	ReasonCancelled  = "cancelled"
	ReasonEndOfInput = "end-of-input"
)

// Resolution is the result of presenting one duplicate group
type Resolution struct {
	Outcome  Outcome
	Reason   string
	Keep     []int
	Outcomes []DeleteOutcome
}

// Deleted returns the paths that were removed
func (r *Resolution) Deleted() []string {
	return r.pathsWithStatus(DeleteOK)
}

// SkippedSymlinks returns the paths left alone because they are symbolic links
func (r *Resolution) SkippedSymlinks() []string {
	return r.pathsWithStatus(DeleteSkippedSymlink)
}

// Failed returns the outcomes of deletions the OS refused
func (r *Resolution) Failed() []DeleteOutcome {
	var failed []DeleteOutcome
	for _, o := range r.Outcomes {
		if o.Status == DeleteFailed {
			failed = append(failed, o)
		}
	}
	return failed
}

func (r *Resolution) pathsWithStatus(status DeleteStatus) []string {
	var paths []string
	for _, o := range r.Outcomes {
		if o.Status == status {
			paths = append(paths, o.Path)
		}
	}
	return paths
}

// Resolver walks a human through one duplicate group: list, ask what to keep,
// confirm, delete
type Resolver struct {
	console *Console
	remover *Remover
	logger  zerolog.Logger
}

// NewResolver creates a resolver
func NewResolver(console *Console, remover *Remover, logger zerolog.Logger) *Resolver {
	return &Resolver{console: console, remover: remover, logger: logger}
}

// Resolve runs the prompt sequence for one group. The returned error is only set
// for console read failures other than end of input.
func (r *Resolver) Resolve(paths []string) (*Resolution, error) {
	r.console.Headerf(MsgFoundHeader, len(paths))
	for i, path := range paths {
		r.console.Printf(MsgListing, i+1, path)
	}

	r.console.Printf(MsgKeepPrompt)
	input, err := r.console.ReadLine()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return &Resolution{Outcome: OutcomeQuit, Reason: ReasonEndOfInput}, nil
		}
		return nil, err
	}

	switch strings.TrimSpace(input) {
	case KeepInputSkip:
		return &Resolution{Outcome: OutcomeSkip, Reason: ReasonUserSkip}, nil
	case KeepInputQuit:
		return &Resolution{Outcome: OutcomeQuit, Reason: ReasonUserQuit}, nil
	}

	keep := ParseKeepSet(input, len(paths))
	if len(keep) == 0 {
		r.console.Warnf(MsgNoneSelected)
		return &Resolution{Outcome: OutcomeSkip, Reason: ReasonNoneKept}, nil
	}

	toDelete := DeleteList(paths, keep)
	if IsDebugEnabled(DebugResolve) {
		r.logger.Debug().Ints("keep", keep).Strs("delete", toDelete).Msg("selection parsed")
	}

	r.console.Printf(MsgDeleteHeader)
	for _, path := range toDelete {
		r.console.Printf(MsgDeleteListing, path)
	}

	r.console.Printf(MsgConfirmPrompt)
	answer, err := r.console.ReadLine()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return &Resolution{Outcome: OutcomeSkip, Reason: ReasonEndOfInput, Keep: keep}, nil
		}
		return nil, err
	}
	if !confirmed(answer) {
		r.console.Warnf(MsgCancelled)
		return &Resolution{Outcome: OutcomeSkip, Reason: ReasonCancelled, Keep: keep}, nil
	}

	resolution := &Resolution{Outcome: OutcomeComplete, Keep: keep}
	for _, path := range toDelete {
		outcome := r.remover.Remove(path)
		resolution.Outcomes = append(resolution.Outcomes, outcome)

		switch outcome.Status {
		case DeleteOK:
			r.console.Successf(MsgDeleted, path)
		case DeleteDryRun:
			r.console.Printf(MsgWouldDelete, path)
		case DeleteSkippedSymlink:
			r.console.Warnf(MsgSkippedSymlink, path)
		case DeleteFailed:
			r.console.Failf(MsgDeleteError, path, ErrorCode(outcome.Err))
		}
	}

	return resolution, nil
}

// ParseKeepSet turns "1,3" into 1-based indices. Tokens that are not integers in
// [1, count] are dropped and repeats collapse; order of first appearance is kept.
func ParseKeepSet(input string, count int) []int {
	var keep []int
	seen := make(map[int]bool)

	for _, token := range strings.Split(input, KeepInputSeparator) {
		n, err := strconv.Atoi(strings.TrimSpace(token))
		if err != nil || n < 1 || n > count || seen[n] {
			continue
		}
		seen[n] = true
		keep = append(keep, n)
	}

	return keep
}

// DeleteList returns the paths whose 1-based index is not in keep, in order
func DeleteList(paths []string, keep []int) []string {
	kept := make(map[int]bool, len(keep))
	for _, k := range keep {
		kept[k] = true
	}

	var toDelete []string
	for i, path := range paths {
		if !kept[i+1] {
			toDelete = append(toDelete, path)
		}
	}
	return toDelete
}

// confirmed looks at the first character only
func confirmed(answer string) bool {
	if answer == "" {
		return false
	}
	first := []rune(answer)[0]
	return unicode.ToLower(first) == ConfirmInputConfirm
}
