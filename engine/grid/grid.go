package grid

import (
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/Carmen-Shannon/oxy-cubes/common"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// DefaultSize is the number of cubes along each axis.
	DefaultSize = 40
	// DefaultSpacing is the distance between neighbouring cube centers.
	DefaultSpacing = 2.0
	// MaxSize bounds the grid slider; MaxSize³ instances is the largest grid Resize accepts.
	MaxSize = 100
	// MaxOffset is the exclusive upper bound of the per-instance animation phase offset.
	MaxOffset = 1000.0
	// CubeBoundingRadius is the bounding sphere radius of a unit cube: sqrt(0.5² * 3) ≈ 0.866.
	CubeBoundingRadius = 0.87
)

type gridImpl struct {
	mu *sync.Mutex

	size    int
	spacing float32
	rng     *rand.Rand
	version uint64

	positions []mgl32.Vec3
	offsets   []float32
}

// Grid is a cubic lattice of cube instances centered on the origin.
// Each instance has a world-space position and a random animation phase offset.
// Resize regenerates both arrays wholesale; slices returned earlier are never mutated.
type Grid interface {
	// Size returns the number of cubes along each axis.
	//
	// Returns:
	//   - int: the grid edge length
	Size() int

	// Spacing returns the distance between neighbouring cube centers.
	//
	// Returns:
	//   - float32: the spacing in world units
	Spacing() float32

	// InstanceCount returns Size³.
	//
	// Returns:
	//   - int: the number of instances
	InstanceCount() int

	// Version increments every time the instance data is regenerated.
	//
	// Returns:
	//   - uint64: the data version
	Version() uint64

	// Positions returns the instance centers in x-major, then y, then z order.
	//
	// Returns:
	//   - []mgl32.Vec3: the instance positions (read-only)
	Positions() []mgl32.Vec3

	// Offsets returns the per-instance animation phase offsets in [0, MaxOffset).
	//
	// Returns:
	//   - []float32: the instance offsets (read-only)
	Offsets() []float32

	// PositionBytes returns the positions as tightly packed float32x3 vertex data.
	//
	// Returns:
	//   - []byte: 12 bytes per instance
	PositionBytes() []byte

	// OffsetBytes returns the offsets as a float32 storage buffer.
	//
	// Returns:
	//   - []byte: 4 bytes per instance
	OffsetBytes() []byte

	// Resize rebuilds the grid with a new edge length.
	//
	// Parameters:
	//   - size: cubes per axis, in [1, MaxSize]
	//
	// Returns:
	//   - error: error if size is out of range
	Resize(size int) error
}

var _ Grid = &gridImpl{}

// NewGrid creates a grid with the demo defaults (40³ cubes, spacing 2) and a randomly seeded
// offset generator.
//
// Parameters:
//   - options: functional options to configure the grid
//
// Returns:
//   - Grid: the generated grid
//   - error: error if the size or spacing is invalid
func NewGrid(options ...GridBuilderOption) (Grid, error) {
	g := &gridImpl{
		mu:      &sync.Mutex{},
		size:    DefaultSize,
		spacing: DefaultSpacing,
	}
	for _, option := range options {
		option(g)
	}
	if g.rng == nil {
		g.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if g.spacing <= 0 {
		return nil, fmt.Errorf("grid spacing %v must be positive", g.spacing)
	}
	if err := validateSize(g.size); err != nil {
		return nil, err
	}
	g.generate()
	return g, nil
}

func (g *gridImpl) Size() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.size
}

func (g *gridImpl) Spacing() float32 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.spacing
}

func (g *gridImpl) InstanceCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.positions)
}

func (g *gridImpl) Version() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.version
}

func (g *gridImpl) Positions() []mgl32.Vec3 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.positions
}

func (g *gridImpl) Offsets() []float32 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.offsets
}

func (g *gridImpl) PositionBytes() []byte {
	return common.SliceToBytes(g.Positions())
}

func (g *gridImpl) OffsetBytes() []byte {
	return common.SliceToBytes(g.Offsets())
}

func (g *gridImpl) Resize(size int) error {
	if err := validateSize(size); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.size = size
	g.generate()
	return nil
}

// generate fills fresh position and offset arrays for the current size.
// Caller must hold the mutex.
func (g *gridImpl) generate() {
	n := g.size * g.size * g.size
	positions := make([]mgl32.Vec3, 0, n)
	offsets := make([]float32, 0, n)
	half := float32(g.size) / 2

	for x := 0; x < g.size; x++ {
		for y := 0; y < g.size; y++ {
			for z := 0; z < g.size; z++ {
				positions = append(positions, mgl32.Vec3{
					(float32(x) - half) * g.spacing,
					(float32(y) - half) * g.spacing,
					(float32(z) - half) * g.spacing,
				})
				offsets = append(offsets, g.rng.Float32()*MaxOffset)
			}
		}
	}

	g.positions = positions
	g.offsets = offsets
	g.version++
}

func validateSize(size int) error {
	if size < 1 || size > MaxSize {
		return fmt.Errorf("grid size %d outside [1, %d]", size, MaxSize)
	}
	return nil
}
