package leads

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// Locker scopes one load-mutate-save cycle. The returned release func must
// be called on every exit path.
type Locker interface {
	Lock(ctx context.Context) (release func(), err error)
}

// FlockLocker holds an advisory lock on a sidecar file next to the store.
// It only protects against other processes on the same host that also
// go through a FlockLocker.
type FlockLocker struct {
	Path    string
	Timeout time.Duration
	Retry   time.Duration
}

func NewFlockLocker(storePath string, timeout time.Duration) *FlockLocker {
	return &FlockLocker{
		Path:    storePath + ".lock",
		Timeout: timeout,
		Retry:   50 * time.Millisecond,
	}
}

func (l *FlockLocker) Lock(ctx context.Context) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(l.Path), 0o755); err != nil {
		return nil, fmt.Errorf("lock dir: %w", err)
	}

	if l.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.Timeout)
		defer cancel()
	}

	retry := l.Retry
	if retry <= 0 {
		retry = 50 * time.Millisecond
	}

	fl := flock.New(l.Path)
	ok, err := fl.TryLockContext(ctx, retry)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrLocked
		}
		return nil, fmt.Errorf("lock %s: %w", l.Path, err)
	}
	if !ok {
		return nil, ErrLocked
	}
	return func() { _ = fl.Unlock() }, nil
}

// NopLocker does nothing. Used with the memory backend.
type NopLocker struct{}

func (NopLocker) Lock(context.Context) (func(), error) { return func() {}, nil }
