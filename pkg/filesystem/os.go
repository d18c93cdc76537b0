package filesystem

import (
	"io/fs"
	"os"

	"github.com/treelint/treelint/pkg/types"
)

// osFS implements types.FS using the OS filesystem
type osFS struct{}

// NewOS creates a new OS filesystem implementation
func NewOS() types.FS {
	return &osFS{}
}

func (o *osFS) Stat(name string) (fs.FileInfo, error) {
	return os.Stat(name)
}

func (o *osFS) Lstat(name string) (fs.FileInfo, error) {
	return os.Lstat(name)
}

func (o *osFS) ReadDir(name string) ([]fs.DirEntry, error) {
	return os.ReadDir(name)
}

func (o *osFS) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(name)
}

func (o *osFS) Readlink(name string) (string, error) {
	return os.Readlink(name)
}
