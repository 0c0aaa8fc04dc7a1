package input

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-cubes/common"
)

// DefaultBindings maps WASD and the arrow keys onto the orbit movements.
var DefaultBindings = map[uint32]Movement{
	common.KeyW:     MoveForward,
	common.KeyUp:    MoveForward,
	common.KeyS:     MoveBack,
	common.KeyDown:  MoveBack,
	common.KeyA:     TurnLeft,
	common.KeyLeft:  TurnLeft,
	common.KeyD:     TurnRight,
	common.KeyRight: TurnRight,
}

// KeyTracker records which keys are held and produces a Snapshot of the bound movements.
// KeyDown and KeyUp are called from the window's event thread while Snapshot is read by the
// frame loop, so all access is guarded by a mutex.
type KeyTracker struct {
	mu       *sync.Mutex
	down     map[uint32]bool
	bindings map[uint32]Movement
}

// KeyTrackerOption is a functional option for configuring a KeyTracker.
type KeyTrackerOption func(*KeyTracker)

// WithBinding binds an additional key code to a movement, replacing any existing binding for the key.
//
// Parameters:
//   - keyCode: the GLFW key code
//   - m: the movement the key activates
//
// Returns:
//   - KeyTrackerOption: functional option to add the binding
func WithBinding(keyCode uint32, m Movement) KeyTrackerOption {
	return func(kt *KeyTracker) {
		kt.bindings[keyCode] = m
	}
}

// NewKeyTracker creates a KeyTracker using DefaultBindings plus any option overrides.
//
// Parameters:
//   - options: functional options to configure the tracker
//
// Returns:
//   - *KeyTracker: the newly created tracker
func NewKeyTracker(options ...KeyTrackerOption) *KeyTracker {
	kt := &KeyTracker{
		mu:       &sync.Mutex{},
		down:     make(map[uint32]bool),
		bindings: make(map[uint32]Movement, len(DefaultBindings)),
	}
	for k, m := range DefaultBindings {
		kt.bindings[k] = m
	}
	for _, option := range options {
		option(kt)
	}
	return kt
}

// KeyDown marks a key as held.
func (kt *KeyTracker) KeyDown(keyCode uint32) {
	kt.mu.Lock()
	defer kt.mu.Unlock()
	kt.down[keyCode] = true
}

// KeyUp marks a key as released.
func (kt *KeyTracker) KeyUp(keyCode uint32) {
	kt.mu.Lock()
	defer kt.mu.Unlock()
	delete(kt.down, keyCode)
}

// Reset releases every key, e.g. when the window loses focus.
func (kt *KeyTracker) Reset() {
	kt.mu.Lock()
	defer kt.mu.Unlock()
	clear(kt.down)
}

// Snapshot returns the movements bound to the currently held keys.
//
// Returns:
//   - Snapshot: the active movement set
func (kt *KeyTracker) Snapshot() Snapshot {
	kt.mu.Lock()
	defer kt.mu.Unlock()
	var s Snapshot
	for k := range kt.down {
		if m, ok := kt.bindings[k]; ok {
			s = s.With(m)
		}
	}
	return s
}
