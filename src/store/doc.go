// Package store persists paused-node snapshots. The core treats a snapshot as
// opaque versioned bytes; the store only guarantees that what was saved comes
// back intact, across process restarts for the badger implementation.
package store
