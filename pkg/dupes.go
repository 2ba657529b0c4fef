package dupfind

import (
	"context"
	"errors"
	"fmt"
)

// DuplicateGroup represents a group of files with identical size and digest
type DuplicateGroup struct {
	Size   uint64
	Digest Digest
	Files  []string
}

// Summary counts what one run saw and did
type Summary struct {
	FilesScanned    int
	SizeGroups      int
	HashedFiles     int
	HashFailures    int
	CandidateGroups int
	RejectedGroups  int
	ResolvedGroups  int
	FilesDeleted    int
	BytesReclaimed  uint64
	Quit            bool
}

// Run scans the tree and resolves every duplicate group in order: size groups by
// ascending size, hash groups by ascending digest, members in presentation order.
// Symbolic links to another member of their group are left out. It
// returns early, without error, when the user quits. The only errors are
// cancellation, console read failures and report write failures.
func (f *Finder) Run(ctx context.Context) (summary *Summary, err error) {
	summary = &Summary{}

	if f.report != nil {
		defer func() {
			if flushErr := f.report.Flush(); flushErr != nil && err == nil {
				err = flushErr
			}
		}()
	}

	arena, err := f.traverser.Traverse(ctx, f.opts.Root, f.opts.Recursive)
	if err != nil {
		return summary, err
	}
	summary.FilesScanned = arena.Len()

	sizeGroups := SizeGroups(arena)
	summary.SizeGroups = len(sizeGroups)

	for _, sizeGroup := range sizeGroups {
		if len(sizeGroup) < 2 {
			continue
		}

		quit, err := f.processSizeGroup(ctx, arena, sizeGroup, summary)
		if err != nil {
			return summary, err
		}
		if quit {
			summary.Quit = true
			break
		}
	}

	f.logger.Info().
		Int("files", summary.FilesScanned).
		Int("size_groups", summary.SizeGroups).
		Int("hashed", summary.HashedFiles).
		Int("hash_failures", summary.HashFailures).
		Int("candidates", summary.CandidateGroups).
		Int("rejected", summary.RejectedGroups).
		Int("deleted", summary.FilesDeleted).
		Str("reclaimed", HumanSize(summary.BytesReclaimed)).
		Bool("quit", summary.Quit).
		Msg("run finished")

	return summary, nil
}

// processSizeGroup hashes one size group and resolves each of its hash groups.
// It reports whether the user asked to quit.
func (f *Finder) processSizeGroup(ctx context.Context, arena *Arena, sizeGroup Group, summary *Summary) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	failures, err := f.hasher.HashGroup(ctx, arena, sizeGroup)
	if err != nil {
		return false, err
	}
	for _, failure := range failures {
		f.console.Failf(MsgHashError, failure.Path)
	}
	summary.HashedFiles += len(sizeGroup) - len(failures)
	summary.HashFailures += len(failures)

	hashGroups := HashGroups(arena, sizeGroup)
	if IsDebugEnabled(DebugGroup) {
		f.logger.Debug().
			Uint64("size", arena.Size(sizeGroup)).
			Int("count", len(sizeGroup)).
			Int("hash_groups", len(hashGroups)).
			Msg("size group hashed")
	}

	for _, hashGroup := range hashGroups {
		if err := ctx.Err(); err != nil {
			return false, err
		}

		hashGroup = f.traverser.DropLinkAliases(arena, hashGroup)
		if len(hashGroup) < 2 {
			continue
		}
		hashGroup = PresentationOrder(arena, hashGroup)
		summary.CandidateGroups++

		paths := arena.Paths(hashGroup)
		if !GroupNamesSimilar(paths) {
			summary.RejectedGroups++
			f.console.Warnf(MsgDissimilar)
			continue
		}

		digest, _ := arena.At(hashGroup[0]).Digest()
		group := DuplicateGroup{
			Size:   arena.Size(hashGroup),
			Digest: digest,
			Files:  paths,
		}

		resolution, err := f.resolver.Resolve(group.Files)
		if err != nil {
			return false, fmt.Errorf("failed to read response: %w", err)
		}
		summary.ResolvedGroups++

		deleted := len(resolution.Deleted())
		summary.FilesDeleted += deleted
		summary.BytesReclaimed += uint64(deleted) * group.Size

		if f.report != nil {
			record := NewReportRecord(group, f.hasher.Algorithm().Name, resolution, f.opts.DryRun)
			if err := f.report.Add(record); err != nil {
				return false, err
			}
		}

		if resolution.Outcome == OutcomeQuit {
			return true, nil
		}
	}

	return false, nil
}

// IsCancelled reports whether err comes from context cancellation
func IsCancelled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
