package dupfind

import (
	"encoding/json"
	"fmt"
	"os"
	"syscall"

	"github.com/google/vectorio"
	"github.com/rs/zerolog"
)

// reportIOVMax caps the iovecs passed to one writev call (Linux IOV_MAX)
const reportIOVMax = 1024

// ReportFailure is a deletion the OS refused
type ReportFailure struct {
	Path  string `json:"path"`
	Code  string `json:"code"`
	Error string `json:"error"`
}

// ReportRecord describes one duplicate group presented to the user and how it was
// resolved
type ReportRecord struct {
	Size         uint64          `json:"size"`
	Digest       string          `json:"digest"`
	Algorithm    string          `json:"algorithm"`
	Files        []string        `json:"files"`
	Outcome      string          `json:"outcome"`
	Reason       string          `json:"reason,omitempty"`
	Kept         []string        `json:"kept,omitempty"`
	Deleted      []string        `json:"deleted,omitempty"`
	SkippedLinks []string        `json:"skipped_links,omitempty"`
	Failed       []ReportFailure `json:"failed,omitempty"`
	DryRun       bool            `json:"dry_run,omitempty"`
}

// NewReportRecord builds the record for a resolved group
func NewReportRecord(group DuplicateGroup, algorithm string, resolution *Resolution, dryRun bool) ReportRecord {
	record := ReportRecord{
		Size:      group.Size,
		Digest:    group.Digest.String(),
		Algorithm: algorithm,
		Files:     group.Files,
		Outcome:   resolution.Outcome.String(),
		Reason:    resolution.Reason,
		DryRun:    dryRun,
	}

	for _, k := range resolution.Keep {
		record.Kept = append(record.Kept, group.Files[k-1])
	}
	record.Deleted = resolution.Deleted()
	record.SkippedLinks = resolution.SkippedSymlinks()
	for _, f := range resolution.Failed() {
		record.Failed = append(record.Failed, ReportFailure{
			Path:  f.Path,
			Code:  ErrorCode(f.Err),
			Error: f.Err.Error(),
		})
	}

	return record
}

// ReportWriter collects records as JSON lines and writes them with writev
type ReportWriter struct {
	file    *os.File
	pending [][]byte
	logger  zerolog.Logger
}

// CreateReport creates (or truncates) the report file
func CreateReport(path string, logger zerolog.Logger) (*ReportWriter, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create report file %s: %w", path, err)
	}
	return &ReportWriter{file: file, logger: logger}, nil
}

// Add queues one record
func (w *ReportWriter) Add(record ReportRecord) error {
	line, err := json.Marshal(&record)
	if err != nil {
		return fmt.Errorf("failed to encode report record: %w", err)
	}
	w.pending = append(w.pending, append(line, '\n'))
	return nil
}

// Flush writes every queued record
func (w *ReportWriter) Flush() error {
	if len(w.pending) == 0 {
		return nil
	}

	iovecs := make([]syscall.Iovec, len(w.pending))
	expected := 0
	for i, line := range w.pending {
		iovecs[i] = syscall.Iovec{Base: &line[0]}
		iovecs[i].SetLen(len(line))
		expected += len(line)
	}

	written := 0
	for offset := 0; offset < len(iovecs); offset += reportIOVMax {
		end := offset + reportIOVMax
		if end > len(iovecs) {
			end = len(iovecs)
		}

		nw, err := vectorio.WritevRaw(uintptr(w.file.Fd()), iovecs[offset:end])
		if err != nil {
			return fmt.Errorf("failed to write report with vectorio: %w", err)
		}
		written += nw
	}

	if written != expected {
		return fmt.Errorf("%w: report wrote %d bytes, expected %d", ErrShortWrite, written, expected)
	}

	w.logger.Debug().Int("records", len(w.pending)).Int("bytes", written).Msg("report flushed")
	w.pending = w.pending[:0]
	return nil
}

// Close flushes and closes the report file
func (w *ReportWriter) Close() error {
	flushErr := w.Flush()
	if err := w.file.Close(); err != nil && flushErr == nil {
		return fmt.Errorf("failed to close report file: %w", err)
	}
	return flushErr
}
