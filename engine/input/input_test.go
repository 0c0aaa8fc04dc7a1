package input

import (
	"sync"
	"testing"

	"github.com/Carmen-Shannon/oxy-cubes/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotSetOperations(t *testing.T) {
	var s Snapshot
	assert.True(t, s.Empty())

	s = s.With(MoveForward).With(TurnLeft)
	assert.True(t, s.Has(MoveForward))
	assert.True(t, s.Has(TurnLeft))
	assert.False(t, s.Has(MoveBack))
	assert.False(t, s.Has(TurnRight))
	assert.Equal(t, []Movement{MoveForward, TurnLeft}, s.Movements())
	assert.Equal(t, "{forward,left}", s.String())

	assert.Equal(t, s, NewSnapshot(TurnLeft, MoveForward, TurnLeft))
}

func TestParseMovement(t *testing.T) {
	for _, m := range []Movement{MoveForward, MoveBack, TurnLeft, TurnRight} {
		got, err := ParseMovement(" " + m.String() + " ")
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}

	got, err := ParseMovement("LEFT")
	require.NoError(t, err)
	assert.Equal(t, TurnLeft, got)

	_, err = ParseMovement("jump")
	assert.Error(t, err)
}

func TestKeyTrackerSnapshot(t *testing.T) {
	kt := NewKeyTracker()
	assert.True(t, kt.Snapshot().Empty())

	kt.KeyDown(common.KeyW)
	kt.KeyDown(common.KeyLeft)
	kt.KeyDown(common.KeyEsc) // unbound
	assert.Equal(t, NewSnapshot(MoveForward, TurnLeft), kt.Snapshot())

	kt.KeyUp(common.KeyW)
	assert.Equal(t, NewSnapshot(TurnLeft), kt.Snapshot())

	kt.Reset()
	assert.True(t, kt.Snapshot().Empty())
}

func TestKeyTrackerAliasesShareMovement(t *testing.T) {
	kt := NewKeyTracker()
	kt.KeyDown(common.KeyW)
	kt.KeyDown(common.KeyUp)
	kt.KeyUp(common.KeyW)

	assert.True(t, kt.Snapshot().Has(MoveForward))
}

func TestKeyTrackerCustomBinding(t *testing.T) {
	kt := NewKeyTracker(WithBinding(common.KeyW, MoveBack))
	kt.KeyDown(common.KeyW)
	assert.Equal(t, NewSnapshot(MoveBack), kt.Snapshot())
}

func TestKeyTrackerConcurrentAccess(t *testing.T) {
	kt := NewKeyTracker()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				kt.KeyDown(common.KeyD)
				_ = kt.Snapshot()
				kt.KeyUp(common.KeyD)
			}
		}()
	}
	wg.Wait()
	assert.True(t, kt.Snapshot().Empty())
}
