package scanner

import (
	"context"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/text/unicode/norm"

	"github.com/treelint/treelint/pkg/errors"
	"github.com/treelint/treelint/pkg/logging"
	"github.com/treelint/treelint/pkg/matcher"
	"github.com/treelint/treelint/pkg/types"
)

// Default bounds applied when the corresponding option is zero
const (
	DefaultMaxDepth    = 32
	DefaultMaxFiles    = 100000
	DefaultTimeout     = 30 * time.Second
	DefaultConcurrency = 4
)

// IgnoreFileName is the per-directory ignore file honored when
// ScanOptions.UseIgnoreFiles is set
const IgnoreFileName = ".treelintignore"

// maxLinkHops bounds how many links a symlink chain may pass through
// before it is treated as a loop
const maxLinkHops = 16

// Scanner walks a root directory and produces the flat entry set for it.
// The walk is bounded by depth, file count and wall-clock time, skips
// ignored subtrees early, and detects symlink cycles.
type Scanner struct {
	fs     types.FS
	opts   types.ScanOptions
	ignore []string
	cache  *matcher.Cache
	logger zerolog.Logger
}

// New creates a scanner over the given filesystem. The ignore patterns
// apply to the whole walk; per-directory ignore files extend them for
// their own subtree only.
func New(filesystem types.FS, opts types.ScanOptions, ignore []string) *Scanner {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	if opts.MaxFiles <= 0 {
		opts.MaxFiles = DefaultMaxFiles
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}

	return &Scanner{
		fs:     filesystem,
		opts:   opts,
		ignore: ignore,
		cache:  matcher.NewCache(matcher.DefaultCacheSize),
		logger: logging.GetLogger("scanner"),
	}
}

// walkState is the only state shared across concurrent branches
type walkState struct {
	count   atomic.Int64
	mu      sync.Mutex
	visited map[string]struct{}
	sem     chan struct{}
}

// markVisited records a resolved symlink target, reporting whether it was
// already seen in this scan.
func (w *walkState) markVisited(realPath string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.visited[realPath]; ok {
		return true
	}
	w.visited[realPath] = struct{}{}
	return false
}

// Scan walks root and returns its complete entry set. The ordering of
// the result is not significant. On any failure the partial result is
// discarded and a typed error is returned.
func (s *Scanner) Scan(ctx context.Context, root string) ([]types.FileEntry, error) {
	start := time.Now()

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot resolve root %q", root)
	}

	if _, err := s.fs.Stat(absRoot); err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileNotFound, "cannot stat root %q", root)
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	state := &walkState{
		visited: make(map[string]struct{}),
		sem:     make(chan struct{}, s.opts.Concurrency),
	}

	entries, err := s.walkDir(ctx, state, absRoot, "", 0, s.ignore)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, errors.Newf(errors.ErrScanTimeout,
				"scan of %q exceeded timeout of %s", root, s.opts.Timeout)
		}
		return nil, err
	}

	s.logger.Debug().
		Str("root", root).
		Int("entries", len(entries)).
		Dur("duration", time.Since(start)).
		Msg("Scan complete")

	return entries, nil
}

// walkDir processes one directory. dirRel is "" for the root.
func (s *Scanner) walkDir(ctx context.Context, state *walkState, dirAbs, dirRel string, depth int, ignore []string) ([]types.FileEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrScanTimeout, "scan cancelled")
	}

	// Early bail-out: skipping the whole subtree keeps large ignored
	// trees cheap.
	if dirRel != "" && s.matchAny(ignore, dirRel) {
		s.logger.Trace().Str("dir", dirRel).Msg("Skipping ignored subtree")
		return nil, nil
	}

	if s.opts.UseIgnoreFiles {
		if local := s.readIgnoreFile(dirAbs, dirRel); len(local) > 0 {
			merged := make([]string, 0, len(ignore)+len(local))
			merged = append(merged, ignore...)
			merged = append(merged, local...)
			ignore = merged
		}
	}

	dirEntries, err := s.fs.ReadDir(dirAbs)
	if err != nil {
		// A directory that vanished or cannot be read is treated as
		// empty rather than failing the scan.
		if os.IsNotExist(err) || os.IsPermission(err) {
			s.logger.Warn().Err(err).Str("dir", dirRel).Msg("Unreadable directory treated as empty")
			return nil, nil
		}
		return nil, errors.Wrapf(err, errors.ErrScan, "failed to read directory %q", dirRel)
	}

	var (
		results  []types.FileEntry
		mu       sync.Mutex
		wg       sync.WaitGroup
		firstErr error
	)

	setErr := func(err error) {
		mu.Lock()
		defer mu.Unlock()
		if firstErr == nil {
			firstErr = err
		}
	}

	appendEntry := func(e types.FileEntry) {
		mu.Lock()
		results = append(results, e)
		mu.Unlock()
	}

	recurse := func(childAbs, childRel string) {
		sub, err := s.walkDir(ctx, state, childAbs, childRel, depth+1, ignore)
		if err != nil {
			setErr(err)
			return
		}
		mu.Lock()
		results = append(results, sub...)
		mu.Unlock()
	}

	for _, de := range dirEntries {
		if err := ctx.Err(); err != nil {
			setErr(errors.Wrap(err, errors.ErrScanTimeout, "scan cancelled"))
			break
		}
		mu.Lock()
		failed := firstErr != nil
		mu.Unlock()
		if failed {
			break
		}

		name := norm.NFC.String(de.Name())
		if strings.ContainsRune(name, 0) {
			s.logger.Warn().Str("dir", dirRel).Msg("Skipping entry with NUL byte in name")
			continue
		}

		childRel := name
		if dirRel != "" {
			childRel = dirRel + "/" + name
		}
		childAbs := filepath.Join(dirAbs, de.Name())

		if s.matchAny(ignore, childRel) {
			continue
		}

		if n := state.count.Add(1); n > int64(s.opts.MaxFiles) {
			setErr(errors.Newf(errors.ErrMaxFiles,
				"scan exceeded the maximum of %d files", s.opts.MaxFiles).
				WithDetail("path", childRel))
			break
		}

		entry, err := s.makeEntry(childAbs, childRel, depth+1, de)
		if err != nil {
			setErr(err)
			break
		}

		if entry.IsSymlink {
			target, err := s.resolveSymlink(state, childAbs, childRel)
			if err != nil {
				setErr(err)
				break
			}
			appendEntry(entry)
			if target != "" && entry.IsDir {
				if depth >= s.opts.MaxDepth {
					setErr(errors.Newf(errors.ErrMaxDepth,
						"directory %q exceeds the maximum depth of %d", childRel, s.opts.MaxDepth))
					break
				}
				recurse(target, childRel)
			}
			continue
		}

		appendEntry(entry)

		if entry.IsDir {
			// The bound limits how deep directories may go, so a
			// subdirectory found at the limit is itself a failure.
			if depth >= s.opts.MaxDepth {
				setErr(errors.Newf(errors.ErrMaxDepth,
					"directory %q exceeds the maximum depth of %d", childRel, s.opts.MaxDepth))
				break
			}

			select {
			case state.sem <- struct{}{}:
				wg.Add(1)
				go func(abs, rel string) {
					defer wg.Done()
					defer func() { <-state.sem }()
					recurse(abs, rel)
				}(childAbs, childRel)
			default:
				recurse(childAbs, childRel)
			}
		}
	}

	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return results, nil
}

// makeEntry builds the FileEntry for one directory entry
func (s *Scanner) makeEntry(abs, rel string, depth int, de fs.DirEntry) (types.FileEntry, error) {
	entry := types.FileEntry{
		Path:    abs,
		RelPath: rel,
		Depth:   depth,
	}

	if de.Type()&fs.ModeSymlink != 0 {
		entry.IsSymlink = true
		// Classify by target so symlinked directories keep their shape
		// even when they are not followed.
		if info, err := s.fs.Stat(abs); err == nil {
			entry.IsDir = info.IsDir()
			if !info.IsDir() {
				entry.Size = info.Size()
			}
			entry.ModTime = info.ModTime()
		} else if info, err := s.fs.Lstat(abs); err == nil {
			// A broken link keeps its own timestamp
			entry.ModTime = info.ModTime()
		}
		return entry, nil
	}

	entry.IsDir = de.IsDir()
	if info, err := de.Info(); err == nil {
		if !entry.IsDir {
			entry.Size = info.Size()
		}
		entry.ModTime = info.ModTime()
	}
	return entry, nil
}

// resolveSymlink resolves a symlink's target through the scan filesystem
// and records it in the visited set. A target already visited in this
// scan is a cycle. An empty target with a nil error means the link is
// recorded but never followed.
func (s *Scanner) resolveSymlink(state *walkState, abs, rel string) (string, error) {
	if !s.opts.FollowSymlinks {
		return "", nil
	}

	target := abs
	for hops := 0; ; hops++ {
		if hops >= maxLinkHops {
			return "", errors.Newf(errors.ErrSymlinkLoop,
				"symlink %q chains through more than %d links", rel, maxLinkHops)
		}

		dest, err := s.fs.Readlink(target)
		if err != nil {
			s.logger.Warn().Err(err).Str("path", rel).Msg("Cannot read symlink target")
			return "", nil
		}
		if !filepath.IsAbs(dest) {
			dest = filepath.Join(filepath.Dir(target), dest)
		}
		target = filepath.Clean(dest)

		info, err := s.fs.Lstat(target)
		if err != nil {
			// A broken link is recorded but never followed
			s.logger.Warn().Err(err).Str("path", rel).Msg("Cannot resolve symlink target")
			return "", nil
		}
		if info.Mode()&fs.ModeSymlink == 0 {
			break
		}
	}

	if state.markVisited(target) {
		return "", errors.Newf(errors.ErrSymlinkLoop,
			"symlink %q resolves to already visited path %q", rel, target)
	}
	return target, nil
}

// matchAny tests rel against the pattern set through this scanner's cache
func (s *Scanner) matchAny(patterns []string, rel string) bool {
	for _, p := range patterns {
		m, err := s.cache.Get(p)
		if err != nil {
			s.logger.Warn().Err(err).Str("pattern", p).Msg("Ignoring invalid pattern")
			continue
		}
		if m.Match(rel) {
			return true
		}
	}
	return false
}

// readIgnoreFile loads a directory's local ignore file and translates its
// lines into patterns scoped to that directory. Scoped patterns must not
// leak into sibling or parent directories, which the dirRel prefix
// guarantees.
func (s *Scanner) readIgnoreFile(dirAbs, dirRel string) []string {
	data, err := s.fs.ReadFile(filepath.Join(dirAbs, IgnoreFileName))
	if err != nil {
		return nil
	}
	return ParseIgnoreFile(data, dirRel)
}

// ParseIgnoreFile translates ignore-file lines into glob patterns scoped
// to the directory at dirRel. A plain name applies at any depth below the
// directory; a name containing a slash applies to that exact relative
// location; a trailing slash marks a directory pattern whose contents are
// excluded as well.
func ParseIgnoreFile(data []byte, dirRel string) []string {
	var patterns []string

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "!") {
			continue
		}

		dirOnly := strings.HasSuffix(line, "/")
		line = strings.TrimSuffix(line, "/")
		if line == "" {
			continue
		}

		var scoped string
		if strings.Contains(line, "/") {
			scoped = path.Join(dirRel, line)
		} else {
			scoped = path.Join(dirRel, "**", line)
		}

		patterns = append(patterns, scoped)
		if dirOnly {
			patterns = append(patterns, scoped+"/**")
		}
	}

	return patterns
}
