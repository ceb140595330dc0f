// Package registry maps environment names such as "BinPack-toy-v0" to
// constructors. The registry is an ordinary value built by Default; nothing
// is registered at init time.
package registry

import (
	"errors"
	"fmt"
	"sort"

	"github.com/wang5768/jumanji/internal/binpack"
	"github.com/wang5768/jumanji/internal/cvrp"
	"github.com/wang5768/jumanji/internal/env"
	"github.com/wang5768/jumanji/internal/knapsack"
	"github.com/wang5768/jumanji/internal/tsp"
)

// ErrUnknownEnv is returned by Make for names that are not registered.
var ErrUnknownEnv = errors.New("unknown environment")

// Factory builds a fresh environment.
type Factory func() (env.Dynamic, error)

// Registry holds environment factories by name.
type Registry struct {
	factories map[string]Factory
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{factories: map[string]Factory{}}
}

// Register adds a factory. Registering a name twice is an error.
func (r *Registry) Register(name string, f Factory) error {
	if _, ok := r.factories[name]; ok {
		return fmt.Errorf("environment %q already registered", name)
	}
	r.factories[name] = f
	return nil
}

// Make builds the environment registered under name.
func (r *Registry) Make(name string) (env.Dynamic, error) {
	f, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownEnv)
	}
	e, err := f()
	if err != nil {
		return nil, fmt.Errorf("make %s: %w", name, err)
	}
	return e, nil
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for n := range r.factories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Default returns the registry of every benchmark environment of the suite.
func Default() *Registry {
	r := New()
	must := func(name string, f Factory) {
		if err := r.Register(name, f); err != nil {
			panic(err)
		}
	}

	must("BinPack-toy-v0", func() (env.Dynamic, error) {
		return binPack(binpack.NewToyGenerator(), 40)
	})
	for _, c := range []struct {
		name             string
		items, ems, obsK int
	}{
		{"BinPack-rand20-v0", 20, 80, 40},
		{"BinPack-rand40-v0", 40, 200, 60},
		{"BinPack-rand100-v0", 100, 300, 150},
	} {
		must(c.name, func() (env.Dynamic, error) {
			opts := binpack.DefaultRandomOptions()
			opts.MaxNumItems, opts.MaxNumEMS = c.items, c.ems
			g, err := binpack.NewRandomGenerator(opts)
			if err != nil {
				return nil, err
			}
			return binPack(g, c.obsK)
		})
	}

	for _, n := range []int{50, 100, 200, 250} {
		must(fmt.Sprintf("Knapsack%d-v0", n), func() (env.Dynamic, error) {
			k, err := knapsack.New(n, 25)
			if err != nil {
				return nil, err
			}
			return k.Dynamic(), nil
		})
	}

	must("TSP-v1", func() (env.Dynamic, error) {
		t, err := tsp.New(20)
		if err != nil {
			return nil, err
		}
		return t.Dynamic(), nil
	})

	for _, c := range []struct{ nodes, capacity, demand int }{
		{20, 30, 10}, {50, 40, 10}, {100, 50, 10}, {125, 55, 10}, {150, 60, 10},
	} {
		must(fmt.Sprintf("CVRP%d-v0", c.nodes), func() (env.Dynamic, error) {
			v, err := cvrp.New(c.nodes, c.capacity, c.demand)
			if err != nil {
				return nil, err
			}
			return v.Dynamic(), nil
		})
	}
	return r
}

func binPack(g binpack.Generator, obsNumEMS int) (env.Dynamic, error) {
	b, err := binpack.New(g, binpack.WithObsNumEMS(obsNumEMS))
	if err != nil {
		return nil, err
	}
	return b.Dynamic(), nil
}
