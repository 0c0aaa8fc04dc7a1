package input

import (
	"fmt"
	"strings"
)

// Movement is a single directional input understood by the orbit camera.
type Movement uint8

const (
	// MoveForward shrinks the orbit radius.
	MoveForward Movement = 1 << iota
	// MoveBack grows the orbit radius.
	MoveBack
	// TurnLeft increases the orbit angle.
	TurnLeft
	// TurnRight decreases the orbit angle.
	TurnRight
)

var movementNames = map[Movement]string{
	MoveForward: "forward",
	MoveBack:    "back",
	TurnLeft:    "left",
	TurnRight:   "right",
}

// String returns the lowercase name of the movement.
func (m Movement) String() string {
	if name, ok := movementNames[m]; ok {
		return name
	}
	return fmt.Sprintf("Movement(%d)", uint8(m))
}

// ParseMovement converts a movement name ("forward", "back", "left", "right") into a Movement.
//
// Parameters:
//   - name: the movement name, case-insensitive
//
// Returns:
//   - Movement: the parsed movement
//   - error: error if the name is unknown
func ParseMovement(name string) (Movement, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for m, n := range movementNames {
		if n == name {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown movement %q", name)
}

// Snapshot is an immutable set of movements active for one frame.
// The zero value has no active movements.
type Snapshot uint8

// NewSnapshot builds a Snapshot from the given movements.
//
// Parameters:
//   - movements: the active movements
//
// Returns:
//   - Snapshot: the set containing every given movement
func NewSnapshot(movements ...Movement) Snapshot {
	var s Snapshot
	for _, m := range movements {
		s = s.With(m)
	}
	return s
}

// Has reports whether m is active in the snapshot.
func (s Snapshot) Has(m Movement) bool {
	return s&Snapshot(m) != 0
}

// With returns a copy of the snapshot with m active.
func (s Snapshot) With(m Movement) Snapshot {
	return s | Snapshot(m)
}

// Empty reports whether no movement is active.
func (s Snapshot) Empty() bool {
	return s == 0
}

// Movements lists the active movements in declaration order.
func (s Snapshot) Movements() []Movement {
	var out []Movement
	for _, m := range []Movement{MoveForward, MoveBack, TurnLeft, TurnRight} {
		if s.Has(m) {
			out = append(out, m)
		}
	}
	return out
}

func (s Snapshot) String() string {
	ms := s.Movements()
	names := make([]string, len(ms))
	for i, m := range ms {
		names[i] = m.String()
	}
	return "{" + strings.Join(names, ",") + "}"
}
