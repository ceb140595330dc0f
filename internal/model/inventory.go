package model

import (
	"github.com/google/uuid"
)

// ContainerPreset is a named, reusable container size.
type ContainerPreset struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	XLen float64 `json:"x_len"`
	YLen float64 `json:"y_len"`
	ZLen float64 `json:"z_len"`
}

// NewContainerPreset creates a ContainerPreset with a generated ID.
func NewContainerPreset(name string, xLen, yLen, zLen float64) ContainerPreset {
	return ContainerPreset{
		ID:   uuid.New().String()[:8],
		Name: name,
		XLen: xLen,
		YLen: yLen,
		ZLen: zLen,
	}
}

// ToContainer returns the container of the preset, anchored at the origin.
func (cp ContainerPreset) ToContainer() Container {
	return NewBox(cp.XLen, cp.YLen, cp.ZLen)
}

// Inventory holds the user's saved container presets.
type Inventory struct {
	Containers []ContainerPreset `json:"containers"`
}

// DefaultInventory returns the inner sizes (mm) of common ISO shipping
// containers.
func DefaultInventory() Inventory {
	return Inventory{
		Containers: []ContainerPreset{
			NewContainerPreset("10ft", 2802, 2350, 2392),
			NewContainerPreset("20ft", 5870, 2330, 2200),
			NewContainerPreset("40ft", 12032, 2350, 2392),
			NewContainerPreset("40ft-hc", 12032, 2350, 2697),
			NewContainerPreset("45ft-hc", 13556, 2352, 2698),
		},
	}
}

// FindContainerByID returns a pointer to the preset with the given ID, or nil.
func (inv *Inventory) FindContainerByID(id string) *ContainerPreset {
	for i := range inv.Containers {
		if inv.Containers[i].ID == id {
			return &inv.Containers[i]
		}
	}
	return nil
}

// FindContainerByName returns a pointer to the first preset with the given
// name, or nil.
func (inv *Inventory) FindContainerByName(name string) *ContainerPreset {
	for i := range inv.Containers {
		if inv.Containers[i].Name == name {
			return &inv.Containers[i]
		}
	}
	return nil
}

// ContainerNames returns the preset names in inventory order.
func (inv *Inventory) ContainerNames() []string {
	names := make([]string, len(inv.Containers))
	for i, c := range inv.Containers {
		names[i] = c.Name
	}
	return names
}
