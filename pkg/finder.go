package dupfind

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// Options controls one run of the finder
type Options struct {
	Root       string
	Recursive  bool
	Algorithm  string
	HashBuffer int // bytes
	DryRun     bool
	Ignore     *IgnoreMatcher
}

// OptionsFromConfig fills the hashing options from a validated configuration
func OptionsFromConfig(cfg *Config, root string, recursive bool) (Options, error) {
	perf := cfg.GetPerformanceConfig()

	bufferSize, err := ParseHumanSize(perf.HashBuffer)
	if err != nil {
		return Options{}, fmt.Errorf("%w: %v", ErrInvalidBufferSize, err)
	}

	return Options{
		Root:       root,
		Recursive:  recursive,
		Algorithm:  cfg.GetHashConfig().Default,
		HashBuffer: bufferSize,
	}, nil
}

// Finder runs the scan, group and resolve pipeline over one directory tree
type Finder struct {
	opts      Options
	traverser *Traverser
	hasher    *Hasher
	resolver  *Resolver
	console   *Console
	report    *ReportWriter
	logger    zerolog.Logger
}

// NewFinder wires the pipeline components over fs
func NewFinder(fs afero.Fs, console *Console, logger zerolog.Logger, opts Options) (*Finder, error) {
	algorithm, err := GetHashAlgorithm(opts.Algorithm)
	if err != nil {
		return nil, err
	}
	if opts.HashBuffer <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidBufferSize, opts.HashBuffer)
	}

	traverser := NewTraverser(fs, logger)
	traverser.SetIgnore(opts.Ignore)

	return &Finder{
		opts:      opts,
		traverser: traverser,
		hasher:    NewHasher(fs, algorithm, opts.HashBuffer, logger),
		resolver:  NewResolver(console, NewRemover(fs, opts.DryRun, logger), logger),
		console:   console,
		logger:    logger,
	}, nil
}

// SetReport attaches a report writer; every presented group is recorded
func (f *Finder) SetReport(w *ReportWriter) {
	f.report = w
}
