package storage

import (
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble"
	"github.com/segmentio/ksuid"

	"github.com/ssargent/blobpack/pkg/blob"
)

// ErrNotFound is returned when no buffer is stored under an id.
var ErrNotFound = errors.New("storage: buffer not found")

// Store keeps blob buffers in a pebble database keyed by KSUID. Buffers are
// structurally checked on the way in and on the way out.
type Store struct {
	db *pebble.DB
}

// Open opens or creates the store in dir.
func Open(dir string) (*Store, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open store at %s: %w", dir, err)
	}
	return &Store{db: db}, nil
}

// Create stores buf under a new id.
func (s *Store) Create(buf []byte) (ksuid.KSUID, error) {
	if err := blob.Check(buf); err != nil {
		return ksuid.Nil, err
	}
	id := ksuid.New()
	if err := s.db.Set(id.Bytes(), buf, pebble.NoSync); err != nil {
		return ksuid.Nil, err
	}
	return id, nil
}

// Read returns a copy of the buffer stored under id.
func (s *Store) Read(id ksuid.KSUID) ([]byte, error) {
	data, closer, err := s.db.Get(id.Bytes())
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	buf := append([]byte(nil), data...)
	if err := blob.Check(buf); err != nil {
		return nil, fmt.Errorf("stored buffer %s is corrupt: %w", id, err)
	}
	return buf, nil
}

// Update replaces the buffer stored under an existing id.
func (s *Store) Update(id ksuid.KSUID, buf []byte) error {
	if err := blob.Check(buf); err != nil {
		return err
	}
	if err := s.exists(id); err != nil {
		return err
	}
	return s.db.Set(id.Bytes(), buf, pebble.NoSync)
}

// Delete removes the buffer stored under id.
func (s *Store) Delete(id ksuid.KSUID) error {
	if err := s.exists(id); err != nil {
		return err
	}
	return s.db.Delete(id.Bytes(), pebble.NoSync)
}

func (s *Store) exists(id ksuid.KSUID) error {
	_, closer, err := s.db.Get(id.Bytes())
	if errors.Is(err, pebble.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return closer.Close()
}

func (s *Store) Close() error {
	return s.db.Close()
}
