package main

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/treelint/treelint/pkg/cache"
	"github.com/treelint/treelint/pkg/config"
	"github.com/treelint/treelint/pkg/errors"
	"github.com/treelint/treelint/pkg/filesystem"
	"github.com/treelint/treelint/pkg/logging"
	"github.com/treelint/treelint/pkg/output"
	"github.com/treelint/treelint/pkg/rules"
	"github.com/treelint/treelint/pkg/scanner"
	"github.com/treelint/treelint/pkg/types"
)

type checkOptions struct {
	configPath     string
	format         string
	mode           string
	maxDepth       int
	maxFiles       int
	timeout        time.Duration
	concurrency    int
	followSymlinks bool
	noCache        bool
}

func newCheckCmd() *cobra.Command {
	opts := &checkOptions{}

	cmd := &cobra.Command{
		Use:   "check [path]",
		Short: "Check a directory tree against its configuration",
		Long: `Scan the tree rooted at path (default: the current directory), apply
the configured layout and structural rules, and report every violation.

Exits 0 on a clean tree, 1 when error-severity violations were found,
and 2 when the check itself could not run.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}
			return runCheck(root, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "Config file to use instead of probing the root")
	flags.StringVarP(&opts.format, "format", "f", "auto", "Output format: auto, term, text, json, sarif, checkstyle")
	flags.StringVar(&opts.mode, "mode", "", "Override the configured mode: strict or warn")
	flags.IntVar(&opts.maxDepth, "max-depth", 0, "Override the maximum directory depth")
	flags.IntVar(&opts.maxFiles, "max-files", 0, "Override the maximum number of entries scanned")
	flags.DurationVar(&opts.timeout, "timeout", 0, "Override the scan timeout")
	flags.IntVar(&opts.concurrency, "concurrency", 0, "Override the number of parallel directory walks")
	flags.BoolVar(&opts.followSymlinks, "follow-symlinks", false, "Descend into symlinked directories")
	flags.BoolVar(&opts.noCache, "no-cache", false, "Skip the result cache")

	return cmd
}

func runCheck(root string, opts *checkOptions) error {
	logger := logging.GetLogger("cmd.check")

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return err
	}

	cfg, err := loadCheckConfig(absRoot, opts)
	if err != nil {
		return err
	}

	format, err := output.ParseFormat(opts.format)
	if err != nil {
		return err
	}
	format = output.Resolve(format, os.Stdout)

	var spinner *pterm.SpinnerPrinter
	if format == output.FormatTerminal {
		spinner, _ = pterm.DefaultSpinner.Start("Scanning " + absRoot)
	}

	s := scanner.New(filesystem.NewOS(), cfg.Scan, cfg.Ignore)
	entries, err := s.Scan(context.Background(), absRoot)
	if spinner != nil {
		_ = spinner.Stop()
	}
	if err != nil {
		return err
	}

	result := checkWithCache(cfg, absRoot, entries, opts.noCache)

	renderer, err := output.NewRenderer(format, version)
	if err != nil {
		return err
	}
	if err := renderer.Render(os.Stdout, result); err != nil {
		return err
	}

	logger.Info().
		Int("entries", len(entries)).
		Int("violations", result.Summary.Total).
		Msg("check finished")

	if result.HasErrors() {
		return errViolations
	}
	return nil
}

func loadCheckConfig(absRoot string, opts *checkOptions) (*types.Config, error) {
	var (
		cfg *types.Config
		err error
	)
	if opts.configPath != "" {
		cfg, err = config.Load(opts.configPath)
	} else {
		cfg, _, err = config.LoadDir(absRoot)
	}
	if err != nil {
		return nil, err
	}

	if opts.mode != "" {
		switch types.Mode(opts.mode) {
		case types.ModeStrict, types.ModeWarn:
			cfg.Mode = types.Mode(opts.mode)
		default:
			return nil, errors.Newf(errors.ErrInvalidInput, "unknown mode %q", opts.mode)
		}
	}
	if opts.maxDepth > 0 {
		cfg.Scan.MaxDepth = opts.maxDepth
	}
	if opts.maxFiles > 0 {
		cfg.Scan.MaxFiles = opts.maxFiles
	}
	if opts.timeout > 0 {
		cfg.Scan.Timeout = opts.timeout
	}
	if opts.concurrency > 0 {
		cfg.Scan.Concurrency = opts.concurrency
	}
	if opts.followSymlinks {
		cfg.Scan.FollowSymlinks = true
	}
	return cfg, nil
}

// checkWithCache consults the result cache before running the rule
// engine. Cache trouble is never fatal: the engine simply runs.
func checkWithCache(cfg *types.Config, absRoot string, entries []types.FileEntry, noCache bool) *types.CheckResult {
	if noCache {
		return rules.Check(cfg, entries)
	}

	logger := logging.GetLogger("cmd.check")
	store, err := cache.New()
	if err != nil {
		logger.Debug().Err(err).Msg("cache unavailable")
		return rules.Check(cfg, entries)
	}

	key := cache.Key{
		Root:       absRoot,
		ConfigHash: config.Hash(cfg),
		TreeHash:   types.ComputeFileHash(entries),
	}
	if result, ok := store.Lookup(key); ok {
		return result
	}

	result := rules.Check(cfg, entries)
	if err := store.Store(key, result); err != nil {
		logger.Debug().Err(err).Msg("storing cache record failed")
	}
	return result
}
