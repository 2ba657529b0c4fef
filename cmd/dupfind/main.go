package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	dupfind "github.com/mattkeenan/dupfind/pkg"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"
	"golang.org/x/sync/errgroup"
)

// Exit codes
const (
	exitOK        = 0
	exitError     = 1
	exitCancelled = 130
)

// cliOptions holds the parsed command line
type cliOptions struct {
	recursive  bool
	configPath string
	algorithm  string
	buffer     string
	dryRun     bool
	reportPath string
	excludes   []string
	ignoreFile string
	color      string
	verbosity  int
	debug      string
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run executes the command line and returns the process exit code
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	exitCode := exitOK
	cmd := newRootCmd(stdin, stdout, stderr, &exitCode)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}
	return exitCode
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer, exitCode *int) *cobra.Command {
	opts := &cliOptions{}

	cmd := &cobra.Command{
		Use:   "dupfind [path]",
		Short: "Interactively find and delete duplicate files",
		Long: `dupfind scans a directory (recursively with -r), groups files with identical
content and asks, group by group, which copies to keep. Symbolic links are never
deleted.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := execute(cmd, args, opts, stdin, stdout, stderr)
			*exitCode = code
			return err
		},
	}

	flags := cmd.Flags()
	flags.SetInterspersed(true)
	flags.BoolVarP(&opts.recursive, "recursive", "r", false, "Descend into subdirectories")
	flags.StringVar(&opts.configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/dupfind/config)")
	flags.StringVar(&opts.algorithm, "algorithm", "", "Hash algorithm: sha256, sha512_256, blake3")
	flags.StringVar(&opts.buffer, "buffer", "", "Hash read buffer size (e.g. 64K, 2M)")
	flags.BoolVar(&opts.dryRun, "dry-run", false, "Show what would be deleted without deleting")
	flags.StringVar(&opts.reportPath, "report", "", "Write a JSON-lines report of every duplicate group")
	flags.StringArrayVar(&opts.excludes, "exclude", nil, "Skip paths (relative to the root) matching this regular expression; repeatable")
	flags.StringVar(&opts.ignoreFile, "ignore-file", "", "File of exclude patterns, one regular expression per line")
	flags.StringVar(&opts.color, "color", "", "Colour output: auto, always, never")
	flags.CountVarP(&opts.verbosity, "verbose", "v", "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")
	flags.StringVar(&opts.debug, "debug", "", "Debug areas (comma-separated): scan, hash, group, resolve, all")

	return cmd
}

// flagOverrides converts the flags given on the command line into config
// overrides
func flagOverrides(cmd *cobra.Command, opts *cliOptions) []string {
	var overrides []string
	flags := cmd.Flags()

	if flags.Changed("algorithm") {
		overrides = append(overrides, "algorithm:"+opts.algorithm)
	}
	if flags.Changed("buffer") {
		overrides = append(overrides, "hash_buffer:"+opts.buffer)
	}
	if flags.Changed("color") {
		overrides = append(overrides, "color:"+opts.color)
	}
	if flags.Changed("verbose") {
		overrides = append(overrides, "level:"+strconv.Itoa(min(opts.verbosity, 3)))
	}
	if flags.Changed("debug") {
		overrides = append(overrides, "debug:"+opts.debug)
	}

	return overrides
}

// loadConfig merges defaults, the config file, the environment and the flags, in
// increasing order of precedence
func loadConfig(cmd *cobra.Command, opts *cliOptions) (*dupfind.Config, error) {
	env, err := dupfind.LoadEnvOverrides()
	if err != nil {
		return nil, err
	}

	configPath := opts.configPath
	if configPath == "" {
		configPath = env.Config
	}
	if configPath == "" {
		configPath = dupfind.DefaultConfigPath()
	}

	cfg, err := dupfind.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyOverrides(env.Overrides()); err != nil {
		return nil, fmt.Errorf("invalid environment override: %w", err)
	}
	if err := cfg.ApplyOverrides(flagOverrides(cmd, opts)); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func execute(cmd *cobra.Command, args []string, opts *cliOptions, stdin io.Reader, stdout, stderr io.Writer) (code int, err error) {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return exitError, err
	}

	verbose := cfg.GetVerboseConfig()
	dupfind.SetDebugFlags(verbose.Debug)
	logger := dupfind.SetupLogger(stderr, verbose.Level)

	undo, err := maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
		logger.Debug().Msgf(format, args...)
	}))
	defer undo()
	if err != nil {
		logger.Warn().Err(err).Msg("failed to set GOMAXPROCS")
	}

	root := ""
	if len(args) > 0 {
		root = args[0]
		if len(args) > 1 {
			logger.Warn().Strs("ignored", args[1:]).Msg("only the first path is scanned")
		}
	} else {
		root, err = os.Getwd()
		if err != nil {
			return exitError, fmt.Errorf("failed to get working directory: %w", err)
		}
	}

	findOpts, err := dupfind.OptionsFromConfig(cfg, root, opts.recursive)
	if err != nil {
		return exitError, err
	}
	findOpts.DryRun = opts.dryRun

	fs := afero.NewOsFs()
	findOpts.Ignore, err = dupfind.NewIgnoreMatcher(opts.excludes)
	if err != nil {
		return exitError, err
	}
	if opts.ignoreFile != "" {
		if err := findOpts.Ignore.LoadIgnoreFile(fs, opts.ignoreFile); err != nil {
			return exitError, err
		}
	}

	console := dupfind.NewConsole(stdin, stdout, dupfind.ColorEnabled(cfg.GetOutputConfig().Color, stdout))
	finder, err := dupfind.NewFinder(fs, console, logger, findOpts)
	if err != nil {
		return exitError, err
	}

	if opts.reportPath != "" {
		report, reportErr := dupfind.CreateReport(opts.reportPath, logger)
		if reportErr != nil {
			return exitError, reportErr
		}
		defer func() {
			if closeErr := report.Close(); closeErr != nil && err == nil {
				code, err = exitError, closeErr
			}
		}()
		finder.SetReport(report)
	}

	logger.Info().
		Str("root", findOpts.Root).
		Bool("recursive", findOpts.Recursive).
		Str("algorithm", findOpts.Algorithm).
		Bool("dry_run", findOpts.DryRun).
		Msg("starting scan")

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	done := make(chan struct{})

	var summary *dupfind.Summary
	var g errgroup.Group
	g.Go(func() error {
		watchSignals(done, cancel, logger)
		return nil
	})
	g.Go(func() error {
		defer close(done)
		var runErr error
		summary, runErr = finder.Run(ctx)
		return runErr
	})

	if err := g.Wait(); err != nil {
		if dupfind.IsCancelled(err) {
			logger.Warn().Msg("interrupted")
			return exitCancelled, nil
		}
		return exitError, err
	}

	logSummary(logger, summary)
	return exitOK, nil
}

func logSummary(logger zerolog.Logger, summary *dupfind.Summary) {
	if summary.Quit {
		logger.Info().Msg("stopped at user request")
	}
	if summary.FilesDeleted > 0 {
		logger.Info().
			Int("files", summary.FilesDeleted).
			Str("reclaimed", dupfind.HumanSize(summary.BytesReclaimed)).
			Msg("deleted duplicates")
	}
}
