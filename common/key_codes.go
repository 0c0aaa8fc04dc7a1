package common

// Virtual key codes for cross-platform input handling.
// These values match GLFW key codes which use ASCII values for printable keys.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
const (
	KeyW     = 87  // W key (ASCII)
	KeyA     = 65  // A key (ASCII)
	KeyS     = 83  // S key (ASCII)
	KeyD     = 68  // D key (ASCII)
	KeyEsc   = 256 // Escape key (GLFW)
	KeyEqual = 61  // = key (ASCII), grows the grid
	KeyMinus = 45  // - key (ASCII), shrinks the grid
	KeyP     = 80  // P key (ASCII), toggles frame stats
	KeyLBrkt = 91  // [ key (ASCII), lowers the tick rate
	KeyRBrkt = 93  // ] key (ASCII), raises the tick rate
)

// Arrow keys
const (
	KeyRight = 262 // Right arrow (GLFW)
	KeyLeft  = 263 // Left arrow (GLFW)
	KeyDown  = 264 // Down arrow (GLFW)
	KeyUp    = 265 // Up arrow (GLFW)
)
