// Package binpack implements the 3D bin-packing environment. Items are
// placed unrotated at the origin of an empty maximal space (EMS); the free
// volume of the container is tracked as a fixed-length EMS array.
package binpack

import (
	"fmt"

	"github.com/wang5768/jumanji/internal/engine"
	"github.com/wang5768/jumanji/internal/model"
)

// State is the full state of an episode. Every slice has a fixed length
// (MaxNumEMS or MaxNumItems) for the whole episode.
type State struct {
	Container        model.Container  `json:"container"`
	EMS              []model.EMS      `json:"ems"`
	EMSMask          []bool           `json:"ems_mask"`
	Items            []model.Item     `json:"items"`
	ItemsMask        []bool           `json:"items_mask"`
	ItemsPlaced      []bool           `json:"items_placed"`
	ItemsLocation    []model.Location `json:"items_location"`
	ActionMask       [][]bool         `json:"action_mask"`
	SortedEMSIndexes []int            `json:"sorted_ems_indexes"`
}

// NewState returns the initial state for a container and an item list:
// nothing placed, a single EMS equal to the container, and the derived
// action mask and scan order.
func NewState(container model.Container, items []model.Item, itemsMask []bool, maxNumEMS int) State {
	ems, emsMask := engine.InitialEMS(container, maxNumEMS)
	s := State{
		Container:     container,
		EMS:           ems,
		EMSMask:       emsMask,
		Items:         append([]model.Item(nil), items...),
		ItemsMask:     append([]bool(nil), itemsMask...),
		ItemsPlaced:   make([]bool, len(items)),
		ItemsLocation: make([]model.Location, len(items)),
	}
	s.refresh()
	return s
}

// refresh recomputes the action mask and the EMS scan order.
func (s *State) refresh() {
	s.ActionMask = engine.ActionMask(s.EMS, s.EMSMask, s.Items, s.ItemsMask, s.ItemsPlaced, s.options())
	s.SortedEMSIndexes = engine.SortEMSIndexes(s.EMS, s.EMSMask)
}

func (s State) options() engine.Options {
	return engine.DefaultOptions(s.Container)
}

// MaxNumEMS returns the length of the EMS array.
func (s State) MaxNumEMS() int { return len(s.EMS) }

// MaxNumItems returns the length of the item array.
func (s State) MaxNumItems() int { return len(s.Items) }

// Clone returns a deep copy of s.
func (s State) Clone() State {
	c := s
	c.EMS = append([]model.EMS(nil), s.EMS...)
	c.EMSMask = append([]bool(nil), s.EMSMask...)
	c.Items = append([]model.Item(nil), s.Items...)
	c.ItemsMask = append([]bool(nil), s.ItemsMask...)
	c.ItemsPlaced = append([]bool(nil), s.ItemsPlaced...)
	c.ItemsLocation = append([]model.Location(nil), s.ItemsLocation...)
	c.SortedEMSIndexes = append([]int(nil), s.SortedEMSIndexes...)
	c.ActionMask = make([][]bool, len(s.ActionMask))
	for i, row := range s.ActionMask {
		c.ActionMask[i] = append([]bool(nil), row...)
	}
	return c
}

// Place puts item j at the origin of EMS slot i and returns the new state.
// It does not check legality; callers consult ActionMask first.
func (s State) Place(slot, j int) State {
	next := s.Clone()
	loc := s.EMS[slot].Origin()
	placed := s.Items[j].BoxAt(loc)
	next.EMS, next.EMSMask = engine.UpdateEMS(s.EMS, s.EMSMask, placed, s.options())
	next.ItemsPlaced[j] = true
	next.ItemsLocation[j] = loc
	next.refresh()
	return next
}

// PlacedBoxes returns the footprints of every placed item.
func (s State) PlacedBoxes() []model.Box {
	var out []model.Box
	for j, placed := range s.ItemsPlaced {
		if placed {
			out = append(out, s.Items[j].BoxAt(s.ItemsLocation[j]))
		}
	}
	return out
}

// LiveEMS returns the live EMS in slot order.
func (s State) LiveEMS() []model.EMS {
	var out []model.EMS
	for i, live := range s.EMSMask {
		if live {
			out = append(out, s.EMS[i])
		}
	}
	return out
}

// PlacedVolume returns the total volume of placed items.
func (s State) PlacedVolume() float64 {
	var v float64
	for j, placed := range s.ItemsPlaced {
		if placed {
			v += s.Items[j].Volume()
		}
	}
	return v
}

// ItemsVolume returns the total volume of the masked-in items.
func (s State) ItemsVolume() float64 {
	var v float64
	for j, in := range s.ItemsMask {
		if in {
			v += s.Items[j].Volume()
		}
	}
	return v
}

// Utilization returns the fraction of the container volume filled by
// placed items.
func Utilization(s State) float64 {
	cv := model.Volume(s.Container)
	if cv == 0 {
		return 0
	}
	return s.PlacedVolume() / cv
}

// AllPlaced reports whether every masked-in item has been placed.
func (s State) AllPlaced() bool {
	for j, in := range s.ItemsMask {
		if in && !s.ItemsPlaced[j] {
			return false
		}
	}
	return true
}

// CheckInvariants verifies the structural properties every reachable
// state has: live EMS are maximal and free, placed items lie inside the
// container without overlapping each other, and no volume is counted both
// as placed and as free.
func CheckInvariants(s State) error {
	opts := s.options()
	tol := opts.Tolerance
	live := s.LiveEMS()
	placed := s.PlacedBoxes()

	for i, a := range live {
		if a.IsDegenerate() {
			return fmt.Errorf("ems %v is degenerate", a)
		}
		for j, b := range live {
			if i != j && model.Contains(b, a) {
				return fmt.Errorf("ems %v is contained in ems %v", a, b)
			}
		}
		for _, p := range placed {
			if v := model.OverlapVolume(a, p); v > opts.MinVolume {
				return fmt.Errorf("ems %v overlaps placed item %v by %g", a, p, v)
			}
		}
	}

	for i, p := range placed {
		if !containsWithin(s.Container, p, tol) {
			return fmt.Errorf("placed item %v is outside the container", p)
		}
		for _, q := range placed[i+1:] {
			if v := model.OverlapVolume(p, q); v > opts.MinVolume {
				return fmt.Errorf("placed items %v and %v overlap by %g", p, q, v)
			}
		}
	}

	free := model.UnionVolume(live)
	if total, cv := s.PlacedVolume()+free, model.Volume(s.Container); total > cv*(1+1e-9)+opts.MinVolume {
		return fmt.Errorf("placed volume %g plus free volume %g exceeds container volume %g", s.PlacedVolume(), free, cv)
	}

	for j, p := range s.ItemsPlaced {
		if p && !s.ItemsMask[j] {
			return fmt.Errorf("padding item %d is placed", j)
		}
	}
	return nil
}

func containsWithin(outer, inner model.Box, tol float64) bool {
	return outer.X1 <= inner.X1+tol && inner.X2 <= outer.X2+tol &&
		outer.Y1 <= inner.Y1+tol && inner.Y2 <= outer.Y2+tol &&
		outer.Z1 <= inner.Z1+tol && inner.Z2 <= outer.Z2+tol
}

// Result converts s into a packing result. Items are labelled shape_1,
// shape_2, ... by slot, matching the instance CSV names.
func Result(name string, s State) model.PackingResult {
	r := model.PackingResult{Name: name, Container: s.Container, FreeSpaces: s.LiveEMS()}
	for j, in := range s.ItemsMask {
		if !in {
			continue
		}
		if s.ItemsPlaced[j] {
			label := fmt.Sprintf("shape_%d", j+1)
			r.Placements = append(r.Placements, model.NewPlacement(label, j, s.Items[j], s.ItemsLocation[j]))
		} else {
			r.Unplaced = append(r.Unplaced, s.Items[j])
		}
	}
	return r
}
