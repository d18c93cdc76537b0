// Test Type: Unit Test
// Description: Tests for the result cache

package cache_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/treelint/treelint/pkg/cache"
	"github.com/treelint/treelint/pkg/types"
)

func sampleResult() *types.CheckResult {
	return &types.CheckResult{
		Violations: []types.Violation{
			{Path: "src/Main.ts", Rule: "layout", Message: "unexpected file", Severity: types.SeverityError},
		},
		Summary: types.Summary{Total: 1, Errors: 1, FilesChecked: 12},
	}
}

func TestStore_RoundTrip(t *testing.T) {
	s := cache.NewAt(t.TempDir())
	key := cache.Key{Root: "/repo", ConfigHash: "c1", TreeHash: "t1"}

	_, ok := s.Lookup(key)
	assert.False(t, ok, "empty store misses")

	require.NoError(t, s.Store(key, sampleResult()))

	got, ok := s.Lookup(key)
	require.True(t, ok)
	assert.Equal(t, sampleResult(), got)
}

func TestStore_MissOnChangedHashes(t *testing.T) {
	s := cache.NewAt(t.TempDir())
	key := cache.Key{Root: "/repo", ConfigHash: "c1", TreeHash: "t1"}
	require.NoError(t, s.Store(key, sampleResult()))

	_, ok := s.Lookup(cache.Key{Root: "/repo", ConfigHash: "c2", TreeHash: "t1"})
	assert.False(t, ok, "config change invalidates")

	_, ok = s.Lookup(cache.Key{Root: "/repo", ConfigHash: "c1", TreeHash: "t2"})
	assert.False(t, ok, "tree change invalidates")
}

func TestStore_SeparateRootsDoNotCollide(t *testing.T) {
	s := cache.NewAt(t.TempDir())
	a := cache.Key{Root: "/repo-a", ConfigHash: "c", TreeHash: "t"}
	b := cache.Key{Root: "/repo-b", ConfigHash: "c", TreeHash: "t"}

	require.NoError(t, s.Store(a, sampleResult()))
	require.NoError(t, s.Store(b, &types.CheckResult{}))

	got, ok := s.Lookup(a)
	require.True(t, ok)
	assert.Len(t, got.Violations, 1)

	got, ok = s.Lookup(b)
	require.True(t, ok)
	assert.Empty(t, got.Violations)
}

func TestStore_CorruptRecordIsAMiss(t *testing.T) {
	dir := t.TempDir()
	s := cache.NewAt(dir)
	key := cache.Key{Root: "/repo", ConfigHash: "c", TreeHash: "t"}
	require.NoError(t, s.Store(key, sampleResult()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".json" {
			require.NoError(t, os.WriteFile(filepath.Join(dir, e.Name()), []byte("{not json"), 0o644))
		}
	}

	_, ok := s.Lookup(key)
	assert.False(t, ok)
}

func TestStore_Purge(t *testing.T) {
	s := cache.NewAt(t.TempDir())
	key := cache.Key{Root: "/repo", ConfigHash: "c", TreeHash: "t"}
	require.NoError(t, s.Store(key, sampleResult()))

	require.NoError(t, s.Purge())

	_, ok := s.Lookup(key)
	assert.False(t, ok)
}
