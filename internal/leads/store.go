package leads

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"prospect-engine/internal/domain"
)

// Store reads and writes the whole lead document. There are no partial
// reads or writes; callers mutate the returned Data and save it back.
type Store struct {
	backend Backend
	locker  Locker
}

func NewStore(b Backend, l Locker) *Store {
	if l == nil {
		l = NopLocker{}
	}
	return &Store{backend: b, locker: l}
}

// NewFileStore is the production wiring: a file backend guarded by a flock.
func NewFileStore(path string, lockTimeout time.Duration) *Store {
	return NewStore(NewFileBackend(path), NewFlockLocker(path, lockTimeout))
}

func (s *Store) Path() string { return s.backend.Path() }

func (s *Store) Load(ctx context.Context) (Data, error) {
	b, err := s.backend.Read(ctx)
	if err != nil {
		if isNotExist(err) {
			return Data{}, &NotFoundError{Path: s.backend.Path()}
		}
		return Data{}, &ReadError{Path: s.backend.Path(), Err: err}
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return Data{}, &DecodeError{Path: s.backend.Path(), Err: errEmptyDocument}
	}
	var d Data
	if err := json.Unmarshal(b, &d); err != nil {
		return Data{}, &DecodeError{Path: s.backend.Path(), Err: err}
	}
	return d, nil
}

func (s *Store) Save(ctx context.Context, d Data) error {
	b, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return &WriteError{Path: s.backend.Path(), Err: err}
	}
	b = append(b, '\n')
	if err := s.backend.Write(ctx, b); err != nil {
		return &WriteError{Path: s.backend.Path(), Err: err}
	}
	return nil
}

// Update runs one locked load-mutate-save cycle. fn reports whether it
// changed anything; unchanged data is not written back. When fn fails the
// in-memory mutation is dropped and the store is left as it was.
func (s *Store) Update(ctx context.Context, fn func(d *Data) (changed bool, err error)) error {
	// a missing store must not leave a lock file behind
	if _, err := s.backend.Read(ctx); isNotExist(err) {
		return &NotFoundError{Path: s.backend.Path()}
	}

	release, err := s.locker.Lock(ctx)
	if err != nil {
		return err
	}
	defer release()

	d, err := s.Load(ctx)
	if err != nil {
		return err
	}
	changed, err := fn(&d)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	return s.Save(ctx, d)
}

// Init writes an empty document when none exists yet. Existing data is left alone.
func (s *Store) Init(ctx context.Context) (created bool, err error) {
	release, err := s.locker.Lock(ctx)
	if err != nil {
		return false, err
	}
	defer release()

	if _, err := s.backend.Read(ctx); err == nil {
		return false, nil
	} else if !isNotExist(err) {
		return false, &ReadError{Path: s.backend.Path(), Err: err}
	}
	if err := s.Save(ctx, Data{Lists: map[string][]domain.Lead{}}); err != nil {
		return false, err
	}
	return true, nil
}
