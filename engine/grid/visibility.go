package grid

import (
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-cubes/common"
	"github.com/go-gl/mathgl/mgl32"
)

// minParallelInstances is the instance count below which culling runs inline;
// smaller grids finish faster than the task hand-off.
const minParallelInstances = 4096

// Culler counts how many grid instances intersect a view frustum.
// Large grids are split into chunks that run on a reusable worker pool created once per Culler.
// Close stops the pool; a closed Culler keeps counting on the calling goroutine.
type Culler struct {
	workers   int
	pool      worker.DynamicWorkerPool
	closed    atomic.Bool
	closeOnce sync.Once
}

// NewCuller creates a Culler backed by a dynamic worker pool.
//
// Parameters:
//   - workers: number of pool workers; values < 1 default to NumCPU-1 (at least 1)
//
// Returns:
//   - *Culler: the newly created culler
func NewCuller(workers int) *Culler {
	if workers < 1 {
		workers = max(runtime.NumCPU()-1, 1)
	}
	// Queue size of 256 comfortably holds the workers*4 chunks submitted per frame.
	return &Culler{
		workers: workers,
		pool:    worker.NewDynamicWorkerPool(workers, 256, 1*time.Second),
	}
}

// CountVisible returns the number of instances whose bounding sphere intersects f.
//
// Parameters:
//   - g: the grid to test
//   - f: the frustum extracted from the frame's view-projection matrix
//
// Returns:
//   - int: the visible instance count
func (c *Culler) CountVisible(g Grid, f common.Frustum) int {
	positions := g.Positions()
	if c == nil || c.workers == 1 || c.closed.Load() || len(positions) < minParallelInstances {
		return countRange(positions, &f)
	}

	chunks := min(c.workers*4, 256)
	chunkSize := (len(positions) + chunks - 1) / chunks

	// A WaitGroup gives the per-frame barrier; pool.Wait() would block until workers idle-exit.
	var wg sync.WaitGroup
	var visible atomic.Int64
	taskID := 0
	for start := 0; start < len(positions); start += chunkSize {
		end := min(start+chunkSize, len(positions))
		part := positions[start:end]

		wg.Add(1)
		id := taskID
		taskID++
		c.pool.SubmitTask(worker.Task{
			ID: id,
			Do: func() (any, error) {
				defer wg.Done()
				visible.Add(int64(countRange(part, &f)))
				return nil, nil
			},
		})
	}
	wg.Wait()

	return int(visible.Load())
}

// Close stops the worker pool. It must not run concurrently with CountVisible; later calls
// to CountVisible count inline. Safe to call more than once.
func (c *Culler) Close() {
	if c == nil {
		return
	}
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		c.pool.Stop()
	})
}

func countRange(positions []mgl32.Vec3, f *common.Frustum) int {
	n := 0
	for _, p := range positions {
		if f.IntersectsSphere(p, CubeBoundingRadius) {
			n++
		}
	}
	return n
}
