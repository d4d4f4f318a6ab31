package store

import (
	"sync"

	"github.com/xornet-io/xornet/src/common"
)

// InmemStore implements the Store interface with a plain in-memory buffer.
// It is used for tests and for nodes that do not need snapshots to survive a
// restart.
type InmemStore struct {
	sync.Mutex
	paused []byte
}

// NewInmemStore ...
func NewInmemStore() *InmemStore {
	return &InmemStore{}
}

// SavePaused implements the Store interface.
func (s *InmemStore) SavePaused(snapshot []byte) error {
	s.Lock()
	defer s.Unlock()

	s.paused = append([]byte{}, snapshot...)

	return nil
}

// LoadPaused implements the Store interface.
func (s *InmemStore) LoadPaused() ([]byte, error) {
	s.Lock()
	defer s.Unlock()

	if s.paused == nil {
		return nil, common.NewCoreErr(common.KeyNotFound, "no paused snapshot")
	}

	return append([]byte{}, s.paused...), nil
}

// ClearPaused implements the Store interface.
func (s *InmemStore) ClearPaused() error {
	s.Lock()
	defer s.Unlock()

	s.paused = nil

	return nil
}

// Close implements the Store interface.
func (s *InmemStore) Close() error {
	return nil
}
