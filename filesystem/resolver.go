package filesystem

import (
	"fmt"
	"io/fs"
	"log/slog"
)

// Resource is the outcome of resolving a requested path.
type Resource struct {
	Name        string
	Exists      bool
	Size        int64
	ContentType ContentType

	// File is open for reading when Exists is true. Close releases it.
	File fs.File
}

// Close releases the file held by the resource, if any.
func (resource *Resource) Close() error {
	if resource.File == nil {
		return nil
	}

	err := resource.File.Close()
	resource.File = nil
	return err
}

// Resolver maps request paths onto a Filesystem.
type Resolver struct {
	fsys Filesystem
}

func NewResolver(fsys Filesystem) *Resolver {
	return &Resolver{fsys: fsys}
}

// Normalize strips exactly one leading slash, so "/a.html" and "a.html" name
// the same file. No other cleaning happens: ".." segments reach the filesystem
// untouched.
func Normalize(path string) string {
	if len(path) > 0 && path[0] == '/' {
		return path[1:]
	}
	return path
}

// Resolve opens the file named by path. A file that cannot be opened is
// reported as a Resource with Exists set to false and a nil error. Failing to
// stat a file that did open is unexpected and returned as an ErrStat error.
func (resolver *Resolver) Resolve(path []byte) (Resource, error) {
	name := Normalize(string(path))

	file, err := resolver.fsys.Open(name)
	if err != nil {
		return Resource{Name: name}, nil
	}

	info, err := file.Stat()
	if err != nil {
		if closeErr := file.Close(); closeErr != nil {
			slog.Error("closing file error", "error", closeErr)
		}
		return Resource{}, fmt.Errorf("%w: %s: %w", ErrStat, name, err)
	}

	return Resource{
		Name:        name,
		Exists:      true,
		Size:        info.Size(),
		ContentType: ContentTypeOf(name),
		File:        file,
	}, nil
}
