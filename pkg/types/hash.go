package types

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// ComputeFileHash returns a deterministic fingerprint of an entry set.
// The hash is invariant under permutation of the input so external cache
// layers can key on it without caring about scan order.
func ComputeFileHash(entries []FileEntry) string {
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		kind := "f"
		if e.IsDir {
			kind = "d"
		}
		lines = append(lines, fmt.Sprintf("%s:%s:%d:%d", e.RelPath, kind, e.Size, e.ModTime.Unix()))
	}
	sort.Strings(lines)

	sum := sha256.Sum256([]byte(strings.Join(lines, "\n")))
	return hex.EncodeToString(sum[:])
}
