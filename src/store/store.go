package store

// Store persists one paused-node snapshot at a time.
type Store interface {

	// SavePaused records a snapshot, replacing any previous one.
	SavePaused(snapshot []byte) error

	// LoadPaused returns the recorded snapshot. It fails with a KeyNotFound
	// error when no snapshot is recorded.
	LoadPaused() ([]byte, error)

	// ClearPaused forgets the recorded snapshot. A snapshot is consumed
	// exactly once on resume.
	ClearPaused() error

	// Close releases the store's resources.
	Close() error
}
