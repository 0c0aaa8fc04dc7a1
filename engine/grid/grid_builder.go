package grid

import "math/rand/v2"

// GridBuilderOption is a functional option for configuring a Grid.
type GridBuilderOption func(*gridImpl)

// WithSize sets the number of cubes along each axis.
//
// Parameters:
//   - size: cubes per axis
//
// Returns:
//   - GridBuilderOption: functional option to set the size
func WithSize(size int) GridBuilderOption {
	return func(g *gridImpl) {
		g.size = size
	}
}

// WithSpacing sets the distance between neighbouring cube centers.
//
// Parameters:
//   - spacing: distance in world units
//
// Returns:
//   - GridBuilderOption: functional option to set the spacing
func WithSpacing(spacing float32) GridBuilderOption {
	return func(g *gridImpl) {
		g.spacing = spacing
	}
}

// WithSeed makes the offset generator deterministic.
//
// Parameters:
//   - seed: the PCG seed
//
// Returns:
//   - GridBuilderOption: functional option to seed the generator
func WithSeed(seed uint64) GridBuilderOption {
	return func(g *gridImpl) {
		g.rng = rand.New(rand.NewPCG(seed, seed))
	}
}
