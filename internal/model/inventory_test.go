package model

import (
	"testing"
)

func TestNewContainerPreset(t *testing.T) {
	cp := NewContainerPreset("crate", 1000, 500, 400)
	if len(cp.ID) != 8 {
		t.Errorf("expected 8-char ID, got %q", cp.ID)
	}
	if got := cp.ToContainer(); got != NewBox(1000, 500, 400) {
		t.Errorf("expected 1000x500x400 container at origin, got %v", got)
	}
}

func TestDefaultInventory(t *testing.T) {
	inv := DefaultInventory()
	if len(inv.Containers) == 0 {
		t.Fatal("expected default container presets")
	}
	seen := map[string]bool{}
	for _, c := range inv.Containers {
		if seen[c.ID] {
			t.Errorf("duplicate preset ID %s", c.ID)
		}
		seen[c.ID] = true
		if c.ToContainer().IsDegenerate() {
			t.Errorf("preset %s is degenerate", c.Name)
		}
	}

	twenty := inv.FindContainerByName("20ft")
	if twenty == nil {
		t.Fatal("expected a 20ft preset")
	}
	if v := Volume(twenty.ToContainer()); v != 5870*2330*2200 {
		t.Errorf("unexpected 20ft volume %g", v)
	}
}

func TestInventoryFind(t *testing.T) {
	inv := DefaultInventory()
	first := inv.Containers[0]

	if got := inv.FindContainerByID(first.ID); got == nil || got.Name != first.Name {
		t.Errorf("FindContainerByID(%s) = %v", first.ID, got)
	}
	if inv.FindContainerByID("missing") != nil {
		t.Error("expected nil for unknown ID")
	}
	if inv.FindContainerByName("53ft") != nil {
		t.Error("expected nil for unknown name")
	}

	names := inv.ContainerNames()
	if len(names) != len(inv.Containers) || names[0] != first.Name {
		t.Errorf("unexpected names %v", names)
	}
}

func TestFindContainerReturnsPointerIntoInventory(t *testing.T) {
	inv := DefaultInventory()
	p := inv.FindContainerByName("40ft")
	p.ZLen = 1
	if inv.Containers[2].ZLen != 1 {
		t.Error("expected edits through the pointer to update the inventory")
	}
}
