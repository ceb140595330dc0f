package binpack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wang5768/jumanji/internal/rng"
)

func TestClone_IsDeep(t *testing.T) {
	s := NewToyGenerator().Generate(rng.NewKey(0))
	c := s.Clone()
	require.Equal(t, s, c)

	c.EMS[0].X2 = 1
	c.EMSMask[1] = true
	c.Items[0].XLen = 1
	c.ItemsPlaced[0] = true
	c.ActionMask[0][0] = false
	c.SortedEMSIndexes[0] = 7

	assert.Equal(t, 5870.0, s.EMS[0].X2)
	assert.False(t, s.EMSMask[1])
	assert.Equal(t, 2935.0, s.Items[0].XLen)
	assert.False(t, s.ItemsPlaced[0])
	assert.True(t, s.ActionMask[0][0])
	assert.Equal(t, 0, s.SortedEMSIndexes[0])
}

func TestResult(t *testing.T) {
	g := NewToyGenerator()
	s := g.Generate(rng.NewKey(0)).Place(0, 2)

	r := Result("toy", s)

	require.Len(t, r.Placements, 1)
	assert.Equal(t, "shape_3", r.Placements[0].Label)
	assert.Equal(t, 2, r.Placements[0].Slot)
	assert.Len(t, r.Unplaced, 7)
	assert.Equal(t, s.LiveEMS(), r.FreeSpaces)
	assert.InDelta(t, Utilization(s)*100, r.Efficiency(), 1e-9)
}
