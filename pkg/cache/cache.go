// Package cache persists check results between runs so an unchanged
// tree checked with an unchanged config can skip the scan and rule
// phases entirely.
//
// Records live under the XDG cache directory, one JSON file per
// scanned root. Cross-process access is coordinated with flock; a
// record that cannot be read, parsed, or whose hashes do not match is
// simply a miss.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/gofrs/flock"
	"github.com/rs/zerolog"

	"github.com/treelint/treelint/pkg/errors"
	"github.com/treelint/treelint/pkg/logging"
	"github.com/treelint/treelint/pkg/types"
)

// Key identifies one cached result. A record is valid only when every
// component matches.
type Key struct {
	// Root is the absolute path of the scanned tree
	Root string

	// ConfigHash digests the fully merged configuration
	ConfigHash string

	// TreeHash digests the scanned file set
	TreeHash string
}

// Store reads and writes cached check results in a single directory
type Store struct {
	dir    string
	logger zerolog.Logger
}

// New opens the user-level store under the XDG cache home
func New() (*Store, error) {
	dir := filepath.Join(xdg.CacheHome, "treelint")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, errors.ErrCacheWrite, "creating cache directory %s", dir)
	}
	return NewAt(dir), nil
}

// NewAt opens a store rooted at dir, which must exist
func NewAt(dir string) *Store {
	return &Store{dir: dir, logger: logging.GetLogger("cache")}
}

// record is the on-disk shape of one cached result
type record struct {
	Root       string             `json:"root"`
	ConfigHash string             `json:"config_hash"`
	TreeHash   string             `json:"tree_hash"`
	CreatedAt  time.Time          `json:"created_at"`
	Result     *types.CheckResult `json:"result"`
}

// Lookup returns the cached result for key, or false on any kind of
// miss: no record, unreadable record, or stale hashes.
func (s *Store) Lookup(key Key) (*types.CheckResult, bool) {
	path := s.recordPath(key.Root)

	lock := flock.New(path + ".lock")
	locked, err := lock.TryRLock()
	if err != nil || !locked {
		return nil, false
	}
	defer func() { _ = lock.Unlock() }()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		s.logger.Debug().Str("path", path).Err(err).Msg("discarding corrupt cache record")
		return nil, false
	}
	if rec.Root != key.Root || rec.ConfigHash != key.ConfigHash || rec.TreeHash != key.TreeHash {
		return nil, false
	}
	if rec.Result == nil {
		return nil, false
	}

	s.logger.Debug().Str("root", key.Root).Time("created", rec.CreatedAt).Msg("cache hit")
	return rec.Result, true
}

// Store writes result under key, replacing any previous record for the
// same root.
func (s *Store) Store(key Key, result *types.CheckResult) error {
	path := s.recordPath(key.Root)

	data, err := json.Marshal(record{
		Root:       key.Root,
		ConfigHash: key.ConfigHash,
		TreeHash:   key.TreeHash,
		CreatedAt:  time.Now().UTC(),
		Result:     result,
	})
	if err != nil {
		return errors.Wrap(err, errors.ErrCacheWrite, "encoding cache record")
	}

	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return errors.Wrapf(err, errors.ErrCacheWrite, "locking %s", path)
	}
	defer func() { _ = lock.Unlock() }()

	return atomicWrite(path, data)
}

// Purge removes every record in the store
func (s *Store) Purge() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return errors.Wrapf(err, errors.ErrCacheRead, "reading cache directory %s", s.dir)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, e.Name())); err != nil {
			return errors.Wrapf(err, errors.ErrCacheWrite, "removing %s", e.Name())
		}
	}
	return nil
}

func (s *Store) recordPath(root string) string {
	sum := sha256.Sum256([]byte(root))
	return filepath.Join(s.dir, hex.EncodeToString(sum[:16])+".json")
}

// atomicWrite stages data in a temp file and renames it into place so
// concurrent readers never observe a partial record.
func atomicWrite(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return errors.Wrap(err, errors.ErrCacheWrite, "creating temp file")
	}
	tmpPath := tmp.Name()
	defer func() {
		if tmp != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return errors.Wrap(err, errors.ErrCacheWrite, "writing temp file")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, errors.ErrCacheWrite, "closing temp file")
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return errors.Wrapf(err, errors.ErrCacheWrite, "renaming into %s", path)
	}
	tmp = nil
	return nil
}
