package hotkey

import (
	"errors"
	"sync"
)

// ErrUnsupported is returned where no global hotkey backend exists
var ErrUnsupported = errors.New("global hotkeys are not supported on this platform")

// Manager defines the interface for global hotkey management. Callbacks
// receive true on the press edge and false on the release edge; the key's
// normal effect is suppressed while it is registered.
type Manager interface {
	Register(accel string, callback func(pressed bool)) error
	Unregister(accel string) error
	Close() error
}

// edgeFilter collapses key auto-repeat and stray releases into clean
// press/release edges per key.
type edgeFilter struct {
	mu   sync.Mutex
	down map[int]bool
}

func newEdgeFilter() *edgeFilter {
	return &edgeFilter{down: make(map[int]bool)}
}

// accept reports whether the event changes the key's state
func (f *edgeFilter) accept(key int, pressed bool) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.down[key] == pressed {
		return false
	}
	f.down[key] = pressed
	return true
}

func (f *edgeFilter) reset(key int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.down, key)
}
