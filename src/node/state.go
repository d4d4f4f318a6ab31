package node

import (
	"sync"
	"sync/atomic"
)

// State captures the state of a xornet node: Bootstrapping, Approved, Elder,
// Paused, or Shutdown
type State uint32

const (
	// Bootstrapping is the initial state, before the node's candidacy has
	// been approved by a section.
	Bootstrapping State = iota
	// Approved means the node is a member of one section.
	Approved
	// Elder means the node participates in its section's authority.
	Elder
	// Paused is initialised, but not processing events.
	Paused
	// Shutdown is shutdown
	Shutdown
)

// String ...
func (s State) String() string {
	switch s {
	case Bootstrapping:
		return "Bootstrapping"
	case Approved:
		return "Approved"
	case Elder:
		return "Elder"
	case Paused:
		return "Paused"
	case Shutdown:
		return "Shutdown"
	default:
		return "Unknown"
	}
}

// WGLIMIT is the maximum number of goroutines that can be launched through
// state.goFunc
const WGLIMIT = 20

type state struct {
	state   State
	wg      sync.WaitGroup
	wgCount int32
}

func (b *state) getState() State {
	stateAddr := (*uint32)(&b.state)
	return State(atomic.LoadUint32(stateAddr))
}

func (b *state) setState(s State) {
	stateAddr := (*uint32)(&b.state)
	atomic.StoreUint32(stateAddr, uint32(s))
}

// Start a goroutine and add it to waitgroup
func (b *state) goFunc(f func()) {
	tempWgCount := atomic.LoadInt32(&b.wgCount)
	if tempWgCount < WGLIMIT {
		b.wg.Add(1)
		atomic.AddInt32(&b.wgCount, 1)
		go func() {
			defer b.wg.Done()
			atomic.AddInt32(&b.wgCount, -1)
			f()
		}()
	}
}

func (b *state) waitRoutines() {
	b.wg.Wait()
}
