package main

import (
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wang5768/jumanji/internal/binpack"
	"github.com/wang5768/jumanji/internal/env"
	"github.com/wang5768/jumanji/internal/model"
	"github.com/wang5768/jumanji/internal/project"
	"github.com/wang5768/jumanji/internal/registry"
)

func newRootCommand(logger *log.Logger) *cobra.Command {
	var configPath, inventoryPath string

	root := &cobra.Command{
		Use:          "jumanji",
		Short:        "Combinatorial optimisation environments",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", project.DefaultConfigPath(), "Run configuration file (YAML)")
	root.PersistentFlags().StringVar(&inventoryPath, "inventory", project.DefaultInventoryPath(), "Container preset inventory (JSON)")

	root.AddCommand(listCommand(&inventoryPath))
	root.AddCommand(runCommand(&configPath, logger))
	root.AddCommand(instanceCommand(&inventoryPath, logger))
	root.AddCommand(solveCommand(&inventoryPath, logger))
	return root
}

func listCommand(inventoryPath *string) *cobra.Command {
	var containers bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the registered environments or the container presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if containers {
				inv, err := project.LoadInventory(*inventoryPath)
				if err != nil {
					return err
				}
				for _, c := range inv.Containers {
					fmt.Fprintf(out, "%-10s %.0f x %.0f x %.0f\n", c.Name, c.XLen, c.YLen, c.ZLen)
				}
				return nil
			}

			r := registry.Default()
			for _, name := range r.Names() {
				e, err := r.Make(name)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%-20s %d actions\n", name, e.NumActions())
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&containers, "containers", false, "List container presets instead of environments")
	return cmd
}

// makeEnv builds the environment a run config names: a bin-packing
// environment over an instance file when one is set, a registered
// environment otherwise. It also returns the name to report.
func makeEnv(cfg project.RunConfig) (env.Dynamic, string, error) {
	if cfg.Instance.Path == "" {
		e, err := registry.Default().Make(cfg.Env)
		return e, cfg.Env, err
	}

	g, err := fileGenerator(cfg.Instance)
	if err != nil {
		return nil, "", err
	}
	var opts []binpack.Option
	if cfg.Instance.ObsNumEMS > 0 {
		opts = append(opts, binpack.WithObsNumEMS(cfg.Instance.ObsNumEMS))
	}
	b, err := binpack.New(g, opts...)
	if err != nil {
		return nil, "", err
	}
	name := "BinPack-" + strings.TrimSuffix(filepath.Base(cfg.Instance.Path), filepath.Ext(cfg.Instance.Path))
	return b.Dynamic(), name, nil
}

func fileGenerator(ic project.InstanceConfig) (*binpack.FileGenerator, error) {
	var opts []binpack.FileOption
	if c := ic.Container; len(c) == 3 {
		opts = append(opts, binpack.WithContainer(model.NewBox(c[0], c[1], c[2])))
	}
	return binpack.NewFileGenerator(ic.Path, ic.MaxNumEMS, opts...)
}

// binPackGenerator returns the generator of a registered bin-packing
// environment.
func binPackGenerator(name string) (binpack.Generator, error) {
	d, err := registry.Default().Make(name)
	if err != nil {
		return nil, err
	}
	b, ok := binpack.FromDynamic(d)
	if !ok {
		return nil, fmt.Errorf("%s is not a bin-packing environment", name)
	}
	return b.Generator(), nil
}

// presetContainer looks a container preset up by name in the inventory.
func presetContainer(inventoryPath, name string) (model.Container, error) {
	inv, err := project.LoadInventory(inventoryPath)
	if err != nil {
		return model.Container{}, err
	}
	p := inv.FindContainerByName(name)
	if p == nil {
		return model.Container{}, fmt.Errorf("unknown container %q, have %s", name, strings.Join(inv.ContainerNames(), ", "))
	}
	return p.ToContainer(), nil
}

// withContainer rebuilds a random generator for another container. Other
// generators have a fixed container.
func withContainer(g binpack.Generator, c model.Container) (binpack.Generator, error) {
	rg, ok := g.(*binpack.RandomGenerator)
	if !ok {
		return nil, fmt.Errorf("generator %T has a fixed container", g)
	}
	opts := rg.Options()
	opts.Container = c
	return binpack.NewRandomGenerator(opts)
}
