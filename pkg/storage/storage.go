package storage

import (
	"context"
	"errors"
	"os"
)

var (
	// ErrNotFound is returned when there is no object at the requested key.
	ErrNotFound = errors.New("Not found")
)

// Storage is a "bucket" style object store. Keys are slash separated paths
// under the configured root.
type Storage interface {
	ReadWriter
	Remove(ctx context.Context, key string) error
	Search(ctx context.Context, query map[string]string) ([][]byte, error)
	List(ctx context.Context, path string) ([]string, error)
	Clear(ctx context.Context, query map[string]string) error
}

// ReadWriter is the minimal subset needed by code that only loads and saves
// single objects.
type ReadWriter interface {
	Write(ctx context.Context, key string, body []byte, options *Options) error
	Read(ctx context.Context, key string) ([]byte, error)
}

// Options alter the behavior of a write.
type Options struct {
	// TTL, in seconds, for stores that support object expiry.
	TTL int64

	// Mode is the file mode for filesystem backed stores.
	Mode os.FileMode

	// DirMode is the mode used when creating intermediate directories.
	DirMode os.FileMode
}

// NewOptions returns Options with sane defaults.
func NewOptions() Options {
	return Options{
		Mode:    0644,
		DirMode: 0755,
	}
}
