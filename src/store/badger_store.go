package store

import (
	"github.com/dgraph-io/badger"
	"github.com/xornet-io/xornet/src/common"
)

var pausedKey = []byte("paused")

// BadgerStore implements the Store interface on a badger database, so a
// paused snapshot survives a process restart or a binary upgrade.
type BadgerStore struct {
	db   *badger.DB
	path string
}

// NewBadgerStore opens (or creates) the database at path.
func NewBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path).
		WithSyncWrites(false).
		WithLogger(nil)

	handle, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &BadgerStore{
		db:   handle,
		path: path,
	}, nil
}

// Path returns the database directory.
func (s *BadgerStore) Path() string {
	return s.path
}

// SavePaused implements the Store interface.
func (s *BadgerStore) SavePaused(snapshot []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(pausedKey, snapshot)
	})
}

// LoadPaused implements the Store interface.
func (s *BadgerStore) LoadPaused() ([]byte, error) {
	var snapshot []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(pausedKey)
		if err != nil {
			return err
		}
		snapshot, err = item.ValueCopy(nil)
		return err
	})

	if err == badger.ErrKeyNotFound {
		return nil, common.NewCoreErr(common.KeyNotFound, "no paused snapshot")
	}
	if err != nil {
		return nil, err
	}

	return snapshot, nil
}

// ClearPaused implements the Store interface.
func (s *BadgerStore) ClearPaused() error {
	return s.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete(pausedKey)
		if err == badger.ErrKeyNotFound {
			return nil
		}
		return err
	})
}

// Close implements the Store interface.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}
