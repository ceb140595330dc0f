package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wang5768/jumanji/internal/model"
)

func cube(n float64) model.Box { return model.NewBox(n, n, n) }

func liveBoxes(ems []model.Box, mask []bool) []model.Box {
	var out []model.Box
	for i, e := range ems {
		if mask[i] {
			out = append(out, e)
		}
	}
	return out
}

func TestUpdateEMS_CornerPlacementLeavesThreeSpaces(t *testing.T) {
	container := cube(10)
	ems, mask := InitialEMS(container, 8)

	placed := model.Item{XLen: 4, YLen: 5, ZLen: 6}.BoxAt(model.Location{})
	next, nextMask, stats := UpdateEMSWithStats(ems, mask, placed, DefaultOptions(container))

	require.Len(t, next, 8)
	require.Len(t, nextMask, 8)
	assert.Equal(t, []model.Box{
		{X1: 4, X2: 10, Y1: 0, Y2: 10, Z1: 0, Z2: 10},
		{X1: 0, X2: 10, Y1: 5, Y2: 10, Z1: 0, Z2: 10},
		{X1: 0, X2: 10, Y1: 0, Y2: 10, Z1: 6, Z2: 10},
	}, liveBoxes(next, nextMask))
	assert.Equal(t, UpdateStats{Split: 1, Generated: 3, Live: 3}, stats)

	for i := 3; i < 8; i++ {
		assert.False(t, nextMask[i])
		assert.Equal(t, model.EmptyBox(), next[i])
	}
}

func TestUpdateEMS_ExactFitConsumesSpace(t *testing.T) {
	container := cube(10)
	opts := DefaultOptions(container)
	ems, mask := InitialEMS(container, 8)
	ems, mask = UpdateEMS(ems, mask, model.Item{XLen: 4, YLen: 5, ZLen: 6}.BoxAt(model.Location{}), opts)

	// The x-high space is exactly 6x10x10.
	fill := model.Box{X1: 4, X2: 10, Y1: 0, Y2: 10, Z1: 0, Z2: 10}
	next, nextMask, stats := UpdateEMSWithStats(ems, mask, fill, opts)

	live := liveBoxes(next, nextMask)
	assert.Equal(t, []model.Box{
		{X1: 0, X2: 4, Y1: 5, Y2: 10, Z1: 0, Z2: 10},
		{X1: 0, X2: 4, Y1: 0, Y2: 10, Z1: 6, Z2: 10},
	}, live)
	assert.Equal(t, 3, stats.Split)
	for _, e := range live {
		assert.False(t, e.IsDegenerate())
		assert.Equal(t, 0.0, model.OverlapVolume(e, fill))
	}
}

func TestUpdateEMS_WholeContainerExactFit(t *testing.T) {
	container := cube(1)
	ems, mask := InitialEMS(container, 1)

	next, nextMask := UpdateEMS(ems, mask, container, DefaultOptions(container))

	assert.Equal(t, []model.Box{model.EmptyBox()}, next)
	assert.Equal(t, []bool{false}, nextMask)
}

func TestUpdateEMS_OverflowDropsSmallestFirst(t *testing.T) {
	container := cube(10)
	ems, mask := InitialEMS(container, 3)
	placed := model.Box{X1: 1, X2: 2, Y1: 4, Y2: 6, Z1: 4, Z2: 6}

	next, nextMask, stats := UpdateEMSWithStats(ems, mask, placed, DefaultOptions(container))

	assert.Equal(t, 6, stats.Generated)
	assert.Equal(t, 3, stats.Dropped)
	assert.Equal(t, []bool{true, true, true}, nextMask)
	assert.Equal(t, []model.Box{
		{X1: 2, X2: 10, Y1: 0, Y2: 10, Z1: 0, Z2: 10},
		{X1: 0, X2: 10, Y1: 0, Y2: 4, Z1: 0, Z2: 10},
		{X1: 0, X2: 10, Y1: 6, Y2: 10, Z1: 0, Z2: 10},
	}, next)
}

func TestUpdateEMS_NonOverlappingSpacesCarriedOver(t *testing.T) {
	container := model.NewBox(10, 1, 1)
	ems := []model.Box{
		{X1: 0, X2: 4, Y1: 0, Y2: 1, Z1: 0, Z2: 1},
		{X1: 6, X2: 10, Y1: 0, Y2: 1, Z1: 0, Z2: 1},
		model.EmptyBox(),
	}
	mask := []bool{true, true, false}

	next, nextMask := UpdateEMS(ems, mask, model.Box{X1: 6, X2: 7, Y1: 0, Y2: 1, Z1: 0, Z2: 1}, DefaultOptions(container))

	assert.Equal(t, []model.Box{
		{X1: 0, X2: 4, Y1: 0, Y2: 1, Z1: 0, Z2: 1},
		{X1: 7, X2: 10, Y1: 0, Y2: 1, Z1: 0, Z2: 1},
		model.EmptyBox(),
	}, next)
	assert.Equal(t, []bool{true, true, false}, nextMask)
}

func TestUpdateEMS_DoesNotMutateInput(t *testing.T) {
	container := cube(10)
	ems, mask := InitialEMS(container, 4)
	emsCopy := append([]model.Box(nil), ems...)
	maskCopy := append([]bool(nil), mask...)

	UpdateEMS(ems, mask, model.NewBox(3, 3, 3), DefaultOptions(container))

	assert.Equal(t, emsCopy, ems)
	assert.Equal(t, maskCopy, mask)
}

func TestUpdateEMS_ResultIsMaximal(t *testing.T) {
	container := cube(10)
	opts := DefaultOptions(container)
	ems, mask := InitialEMS(container, 32)
	placements := []model.Box{
		model.NewBox(5, 5, 5),
		{X1: 5, X2: 10, Y1: 0, Y2: 3, Z1: 0, Z2: 2},
		{X1: 0, X2: 2, Y1: 5, Y2: 10, Z1: 0, Z2: 10},
		{X1: 0, X2: 5, Y1: 0, Y2: 5, Z1: 5, Z2: 6},
	}
	for _, p := range placements {
		ems, mask = UpdateEMS(ems, mask, p, opts)
	}

	live := liveBoxes(ems, mask)
	require.NotEmpty(t, live)
	for i, a := range live {
		for _, p := range placements {
			assert.Equal(t, 0.0, model.OverlapVolume(a, p), "space %v overlaps placed %v", a, p)
		}
		for j, b := range live {
			if i != j {
				assert.False(t, model.Contains(b, a), "space %v is contained in %v", a, b)
			}
		}
	}
}
