package locker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
)

// File locks keys through flock(2) on one file per key.
type File struct {
	dir   string
	retry time.Duration
}

// NewFile creates dir if needed and returns a File locker rooted there.
func NewFile(dir string, retry time.Duration) (*File, error) {
	if dir == "" {
		dir = ".locks"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create lock dir %s: %w", dir, err)
	}
	return &File{dir: dir, retry: retry}, nil
}

// Path returns the lock file used for key.
func (f *File) Path(key string) string {
	return filepath.Join(f.dir, sanitize(key)+".lock")
}

// Lock polls until the file lock is held or ctx is done.
func (f *File) Lock(ctx context.Context, key string) (func(), error) {
	fl := flock.New(f.Path(key))
	ok, err := fl.TryLockContext(ctx, f.retry)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrNotAcquired, key, err)
		}
		return nil, fmt.Errorf("flock %s: %w", fl.Path(), err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotAcquired, key)
	}
	return func() { _ = fl.Unlock() }, nil
}

func sanitize(key string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(key) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "_"
	}
	return b.String()
}
