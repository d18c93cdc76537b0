package types

import "time"

// FileEntry represents a single filesystem node discovered by the scanner.
// Entries are immutable once produced; the scanner is their only producer.
type FileEntry struct {
	// Path is the absolute path to the entry
	Path string

	// RelPath is the path relative to the scan root, forward-slash
	// normalized, with no trailing slash
	RelPath string

	// IsDir reports whether the entry is a directory
	IsDir bool

	// IsSymlink reports whether the entry is a symbolic link
	IsSymlink bool

	// Depth is the number of path segments below the scan root
	Depth int

	// Size is the file size in bytes (zero for directories)
	Size int64

	// ModTime is the modification time
	ModTime time.Time
}
