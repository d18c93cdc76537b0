package types

import "io/fs"

// FS is the filesystem interface required for treelint operations. The
// scanner only reads; there are no write operations.
type FS interface {
	Stat(name string) (fs.FileInfo, error)
	Lstat(name string) (fs.FileInfo, error)
	ReadDir(name string) ([]fs.DirEntry, error)
	ReadFile(name string) ([]byte, error)
	Readlink(name string) (string, error)
}
