package store

import (
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/waajacu/minerals/pkg/constants"
	"github.com/waajacu/minerals/pkg/errors"
)

// ErrLocked is returned by Lock when another process holds the data root.
var ErrLocked = errors.New("data root is locked by another process")

// Lock is an exclusive, advisory lock on a data root.
type Lock struct {
	path string
	fl   *flock.Flock
}

// Lock acquires the data root lock without blocking. It fails with ErrLocked
// when another serve process already holds it.
func (s *Store) Lock() (*Lock, error) {
	if err := s.Ensure(); err != nil {
		return nil, err
	}
	path := filepath.Join(s.root, constants.LockFile)
	fl := flock.New(path)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, errors.WrapIO("lock", path, err)
	}
	if !ok {
		return nil, ErrLocked
	}
	return &Lock{path: path, fl: fl}, nil
}

// Path returns the lock file location.
func (l *Lock) Path() string { return l.path }

// Unlock releases the lock.
func (l *Lock) Unlock() error {
	if err := l.fl.Unlock(); err != nil {
		return errors.WrapIO("unlock", l.path, err)
	}
	return nil
}
