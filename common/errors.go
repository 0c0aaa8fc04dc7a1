// Package common contains the matrix math, frustum helpers and plain value types shared by the engine packages.
// Nothing in here is interface-wrapped; the functions are pure and safe to call from any goroutine.
package common

import "errors"

var (
	// ErrInvalidProjectionParams is returned when a perspective projection is requested with a
	// non-positive aspect ratio, non-positive near plane, near >= far, a field of view outside
	// (0, π), or any non-finite value.
	ErrInvalidProjectionParams = errors.New("invalid projection parameters")

	// ErrDegenerateView is returned when a look-at basis cannot be built: the eye sits on the
	// center point, or the up vector is parallel to the view direction.
	ErrDegenerateView = errors.New("degenerate view")

	// ErrPointAtInfinity is returned when a projected point ends up with a clip-space w of zero.
	ErrPointAtInfinity = errors.New("projected point has zero w")
)
