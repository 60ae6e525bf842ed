package filesystem

import (
	"errors"
	"io/fs"
	"os"
)

// Error constants for better error handling
var (
	ErrStat = errors.New("filesystem: reading file metadata failed")
)

// Filesystem opens files by the name a client asked for.
//
// It is an fs.FS, but implementations are not required to reject names that
// fs.ValidPath refuses: the local implementation hands names to the operating
// system as they are.
type Filesystem interface {
	fs.FS
}

type localFileSystem struct {
	root string
}

// NewLocalFileSystem returns a Filesystem rooted at root. An empty root or "."
// opens names relative to the process working directory, unchanged.
func NewLocalFileSystem(root string) Filesystem {
	if root == "." {
		root = ""
	}

	return &localFileSystem{root: root}
}

// Open implements Filesystem.
func (filesystem *localFileSystem) Open(name string) (fs.File, error) {
	if name == "" {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}

	file, err := os.Open(filesystem.path(name))
	if err != nil {
		return nil, err
	}

	return file, nil
}

func (filesystem *localFileSystem) path(name string) string {
	if filesystem.root == "" {
		return name
	}

	return filesystem.root + string(os.PathSeparator) + name
}
