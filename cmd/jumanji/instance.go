package main

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/wang5768/jumanji/internal/binpack"
	"github.com/wang5768/jumanji/internal/rng"
)

func instanceCommand(inventoryPath *string, logger *log.Logger) *cobra.Command {
	var (
		envName   string
		seed      int64
		solution  bool
		container string
	)

	cmd := &cobra.Command{
		Use:   "instance <out.csv|out.xlsx|out.dxf>",
		Short: "Write a bin-packing instance drawn from a registered generator",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := binPackGenerator(envName)
			if err != nil {
				return err
			}
			if container != "" {
				c, err := presetContainer(*inventoryPath, container)
				if err != nil {
					return err
				}
				if g, err = withContainer(g, c); err != nil {
					return err
				}
			}
			s := drawInstance(g, seed, solution)
			if err := binpack.SaveInstance(args[0], s); err != nil {
				return err
			}
			logger.Printf("wrote %d items to %s", len(binpack.MaskedItems(s)), args[0])
			return nil
		},
	}

	cmd.Flags().StringVarP(&envName, "env", "e", "BinPack-rand20-v0", "Registered bin-packing environment")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Random seed")
	cmd.Flags().BoolVar(&solution, "solution", false, "Place items at the generator's solution (shown in DXF output)")
	cmd.Flags().StringVar(&container, "container", "", "Container preset for random generators (see list --containers)")
	return cmd
}

// drawInstance draws the instance for seed, placed at the generator's
// known solution when asked and available.
func drawInstance(g binpack.Generator, seed int64, solution bool) binpack.State {
	key := rng.NewKey(seed)
	if sg, ok := g.(binpack.SolutionGenerator); ok && solution {
		return sg.GenerateSolution(key)
	}
	return g.Generate(key)
}
