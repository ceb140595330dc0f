package binpack

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"
	"gonum.org/v1/gonum/stat/sampleuv"

	"github.com/wang5768/jumanji/internal/env"
	"github.com/wang5768/jumanji/internal/model"
	"github.com/wang5768/jumanji/internal/rng"
)

// RandomOptions configures RandomGenerator.
type RandomOptions struct {
	MaxNumItems int
	MaxNumEMS   int
	// MinNumItems is the smallest item count drawn. Zero means half of
	// MaxNumItems, rounded up.
	MinNumItems int
	// MinItemExtent is the smallest extent of a generated item along any
	// axis. Zero means a tenth of the shortest container side.
	MinItemExtent float64
	// MaxItemExtent caps item extents along every axis that can still be
	// cut. Oversized pieces are cut first, up to MaxNumItems pieces. Zero
	// means no cap.
	MaxItemExtent float64
	Container     model.Container
	// MaxAttempts bounds how many instances are drawn before falling back
	// to a slab tiling.
	MaxAttempts int
}

// DefaultRandomOptions returns the options of the 20-item benchmark.
func DefaultRandomOptions() RandomOptions {
	return RandomOptions{
		MaxNumItems: 20,
		MaxNumEMS:   80,
		Container:   TwentyFootContainer,
		MaxAttempts: 8,
	}
}

// RandomGenerator cuts the container into items with random guillotine
// cuts, so the items always tile it exactly. Every instance is certified by
// replaying its items through the EMS engine before it is returned.
type RandomGenerator struct {
	opts RandomOptions
}

// NewRandomGenerator validates opts and fills in derived defaults.
func NewRandomGenerator(opts RandomOptions) (*RandomGenerator, error) {
	if opts.MaxNumItems < 1 {
		return nil, fmt.Errorf("max_num_items must be at least 1, got %d: %w", opts.MaxNumItems, env.ErrInvalidConfig)
	}
	if opts.MaxNumEMS < 1 {
		return nil, fmt.Errorf("max_num_ems must be at least 1, got %d: %w", opts.MaxNumEMS, env.ErrInvalidConfig)
	}
	if opts.Container.IsDegenerate() {
		return nil, fmt.Errorf("container %v is degenerate: %w", opts.Container, env.ErrInvalidConfig)
	}
	if opts.MinNumItems == 0 {
		opts.MinNumItems = (opts.MaxNumItems + 1) / 2
	}
	if opts.MinNumItems < 1 || opts.MinNumItems > opts.MaxNumItems {
		return nil, fmt.Errorf("min_num_items %d not in [1, %d]: %w", opts.MinNumItems, opts.MaxNumItems, env.ErrInvalidConfig)
	}
	if opts.MinItemExtent == 0 {
		shortest := min(opts.Container.XLen(), opts.Container.YLen(), opts.Container.ZLen())
		opts.MinItemExtent = max(math.Floor(shortest/10), 1)
	}
	if opts.MinItemExtent < 0 {
		return nil, fmt.Errorf("min_item_extent must be positive, got %g: %w", opts.MinItemExtent, env.ErrInvalidConfig)
	}
	if opts.MaxItemExtent < 0 || (opts.MaxItemExtent > 0 && opts.MaxItemExtent < opts.MinItemExtent) {
		return nil, fmt.Errorf("max_item_extent %g below min_item_extent %g: %w", opts.MaxItemExtent, opts.MinItemExtent, env.ErrInvalidConfig)
	}
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}
	return &RandomGenerator{opts: opts}, nil
}

func (g *RandomGenerator) MaxNumItems() int           { return g.opts.MaxNumItems }
func (g *RandomGenerator) MaxNumEMS() int             { return g.opts.MaxNumEMS }
func (g *RandomGenerator) Container() model.Container { return g.opts.Container }

// Options returns the effective options, defaults included.
func (g *RandomGenerator) Options() RandomOptions { return g.opts }

func (g *RandomGenerator) Generate(key rng.Key) State {
	_, initial, _ := g.generate(key)
	return initial
}

func (g *RandomGenerator) GenerateSolution(key rng.Key) State {
	_, _, solved := g.generate(key)
	return solved
}

// generate returns a certified instance, its initial state and its packed
// solution.
func (g *RandomGenerator) generate(key rng.Key) (instance, State, State) {
	for attempt := 0; attempt < g.opts.MaxAttempts; attempt++ {
		var sub rng.Key
		key, sub = key.Split()
		inst := g.sample(sub)
		initial := NewState(g.opts.Container, inst.items, inst.mask, g.opts.MaxNumEMS)
		if solved, ok := Replay(initial, inst.order, inst.locs); ok {
			return inst, initial, solved
		}
	}
	inst := g.slabs()
	initial := NewState(g.opts.Container, inst.items, inst.mask, g.opts.MaxNumEMS)
	solved, ok := Replay(initial, inst.order, inst.locs)
	if !ok {
		// Each slab leaves a single EMS behind, so this only fails on a broken engine.
		panic(fmt.Sprintf("binpack: slab tiling of %v rejected", g.opts.Container))
	}
	return inst, initial, solved
}

// instance is an item list plus the order and locations that pack it.
type instance struct {
	items []model.Item
	mask  []bool
	order []int
	locs  []model.Location
}

func (g *RandomGenerator) sample(key rng.Key) instance {
	keys := key.SplitN(3)
	count := g.opts.MinNumItems + keys[0].Rand().Intn(g.opts.MaxNumItems-g.opts.MinNumItems+1)
	boxes := guillotine(g.opts.Container, count, g.opts.MaxNumItems, g.opts.MinItemExtent, g.opts.MaxItemExtent, keys[1])
	perm := keys[2].Rand().Perm(len(boxes))

	inst := g.emptyInstance(len(boxes))
	for d, b := range boxes {
		slot := perm[d]
		inst.items[slot] = b.Item()
		inst.mask[slot] = true
		inst.order[d] = slot
		inst.locs[d] = b.Origin()
	}
	return inst
}

// slabs cuts the container into at least MinNumItems slices along x, more
// when MaxItemExtent asks for thinner ones. Each slice leaves a single EMS
// behind, so the tiling is feasible for any capacity. Slices are never
// empty but may be thinner than MinItemExtent when MinNumItems of them do
// not fit along x.
func (g *RandomGenerator) slabs() instance {
	c := g.opts.Container
	n := g.opts.MinNumItems
	if g.opts.MaxItemExtent > 0 {
		n = max(n, int(math.Ceil(c.XLen()/g.opts.MaxItemExtent)))
	}
	n = min(n, g.opts.MaxNumItems)
	if g.opts.MinItemExtent > 0 {
		n = max(min(n, int(c.XLen()/g.opts.MinItemExtent)), g.opts.MinNumItems)
	}

	// Whole-number edges keep slabs exact in instance files; they are only
	// used when every slab is at least one unit wide.
	edge := func(i int) float64 {
		x := c.XLen() * float64(i) / float64(n)
		if c.XLen() >= float64(n) {
			x = math.Floor(x)
		}
		return c.X1 + x
	}

	inst := g.emptyInstance(n)
	for i := 0; i < n; i++ {
		x1, x2 := edge(i), edge(i+1)
		b := model.Box{X1: x1, X2: x2, Y1: c.Y1, Y2: c.Y2, Z1: c.Z1, Z2: c.Z2}
		inst.items[i] = b.Item()
		inst.mask[i] = true
		inst.order[i] = i
		inst.locs[i] = b.Origin()
	}
	return inst
}

func (g *RandomGenerator) emptyInstance(count int) instance {
	return instance{
		items: make([]model.Item, g.opts.MaxNumItems),
		mask:  make([]bool, g.opts.MaxNumItems),
		order: make([]int, count),
		locs:  make([]model.Location, count),
	}
}

type cutNode struct {
	box       model.Box
	low, high *cutNode
}

// guillotine splits container into at most maxCount boxes. Boxes longer
// than maxExtent along an axis that can still be cut are split first, with
// the low half between maxExtent/2 and maxExtent long. After that the
// largest cuttable box is split until there are count boxes. Every cut is
// at an integer offset from minExtent that leaves both halves at least
// minExtent long, along an axis drawn with weight proportional to its
// extent. Boxes are returned in depth-first order with the low half of
// every cut first.
func guillotine(container model.Box, count, maxCount int, minExtent, maxExtent float64, key rng.Key) []model.Box {
	src := key.Source()
	unit := distuv.Uniform{Min: 0, Max: 1, Src: src}

	root := &cutNode{box: container}
	leaves := []*cutNode{root}
	for len(leaves) < maxCount {
		oversized := true
		best := largest(leaves, func(b model.Box) bool { return oversizedAxes(b, minExtent, maxExtent) != nil })
		if best < 0 {
			if len(leaves) >= count {
				break
			}
			oversized = false
			best = largest(leaves, func(b model.Box) bool { return cuttable(b, minExtent) })
		}
		if best < 0 {
			break
		}

		leaf := leaves[best]
		extents := extentsOf(leaf.box)
		weights := make([]float64, 3)
		if oversized {
			weights = oversizedAxes(leaf.box, minExtent, maxExtent)
		} else {
			for a, e := range extents {
				if e >= 2*minExtent {
					weights[a] = e
				}
			}
		}
		axis, _ := sampleuv.NewWeighted(weights, src).Take()

		lo, hi := minExtent, extents[axis]-minExtent
		if oversized {
			hi = math.Min(maxExtent, hi)
			if half := maxExtent / 2; half > lo && half <= hi {
				lo = half
			}
		}
		span := math.Floor(hi - lo)
		offset := lo + math.Min(math.Floor(unit.Rand()*(span+1)), span)
		low, high := cutAt(leaf.box, axis, offset)

		leaf.low, leaf.high = &cutNode{box: low}, &cutNode{box: high}
		leaves[best] = leaf.low
		leaves = append(leaves, leaf.high)
	}

	var out []model.Box
	var walk func(n *cutNode)
	walk = func(n *cutNode) {
		if n.low == nil {
			out = append(out, n.box)
			return
		}
		walk(n.low)
		walk(n.high)
	}
	walk(root)
	return out
}

// largest returns the index of the largest leaf accepted by ok, or -1.
func largest(leaves []*cutNode, ok func(model.Box) bool) int {
	best := -1
	for i, l := range leaves {
		if !ok(l.box) {
			continue
		}
		if best < 0 || l.box.Volume() > leaves[best].box.Volume() {
			best = i
		}
	}
	return best
}

// oversizedAxes weights the axes along which b is longer than maxExtent and
// can still be cut, or returns nil when there are none.
func oversizedAxes(b model.Box, minExtent, maxExtent float64) []float64 {
	if maxExtent <= 0 {
		return nil
	}
	var weights []float64
	for a, e := range extentsOf(b) {
		if e > maxExtent && e >= 2*minExtent {
			if weights == nil {
				weights = make([]float64, 3)
			}
			weights[a] = e
		}
	}
	return weights
}

func extentsOf(b model.Box) []float64 {
	return []float64{b.XLen(), b.YLen(), b.ZLen()}
}

func cuttable(b model.Box, minExtent float64) bool {
	return b.XLen() >= 2*minExtent || b.YLen() >= 2*minExtent || b.ZLen() >= 2*minExtent
}

// cutAt splits b at offset from its low face along axis (0=x, 1=y, 2=z).
func cutAt(b model.Box, axis int, offset float64) (model.Box, model.Box) {
	low, high := b, b
	switch axis {
	case 0:
		low.X2, high.X1 = b.X1+offset, b.X1+offset
	case 1:
		low.Y2, high.Y1 = b.Y1+offset, b.Y1+offset
	default:
		low.Z2, high.Z1 = b.Z1+offset, b.Z1+offset
	}
	return low, high
}
