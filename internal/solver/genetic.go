package solver

import (
	"fmt"
	"sort"

	"golang.org/x/exp/rand"

	"github.com/wang5768/jumanji/internal/binpack"
	"github.com/wang5768/jumanji/internal/env"
	"github.com/wang5768/jumanji/internal/rng"
)

// GeneticConfig holds tuning parameters for the genetic solver.
type GeneticConfig struct {
	PopulationSize int     `json:"population_size"`
	Generations    int     `json:"generations"`
	MutationRate   float64 `json:"mutation_rate"`
	TournamentSize int     `json:"tournament_size"`
	EliteCount     int     `json:"elite_count"`
}

// DefaultGeneticConfig returns sensible defaults for the genetic solver.
func DefaultGeneticConfig() GeneticConfig {
	return GeneticConfig{
		PopulationSize: 50,
		Generations:    100,
		MutationRate:   0.15,
		TournamentSize: 3,
		EliteCount:     2,
	}
}

// Validate rejects configurations the search cannot run with.
func (c GeneticConfig) Validate() error {
	switch {
	case c.PopulationSize < 1:
		return fmt.Errorf("population size %d < 1: %w", c.PopulationSize, env.ErrInvalidConfig)
	case c.Generations < 0:
		return fmt.Errorf("generations %d < 0: %w", c.Generations, env.ErrInvalidConfig)
	case c.MutationRate < 0 || c.MutationRate > 1:
		return fmt.Errorf("mutation rate %g not in [0, 1]: %w", c.MutationRate, env.ErrInvalidConfig)
	case c.TournamentSize < 1:
		return fmt.Errorf("tournament size %d < 1: %w", c.TournamentSize, env.ErrInvalidConfig)
	case c.EliteCount < 0 || c.EliteCount > c.PopulationSize:
		return fmt.Errorf("elite count %d not in [0, %d]: %w", c.EliteCount, c.PopulationSize, env.ErrInvalidConfig)
	}
	return nil
}

// Genetic searches over item placement orders. Each chromosome is a
// permutation of the pending items, decoded with PackInOrder; fitness is
// the resulting utilization.
type Genetic struct {
	Config GeneticConfig
}

// NewGenetic returns a genetic solver, or an error for a bad config.
func NewGenetic(cfg GeneticConfig) (*Genetic, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Genetic{Config: cfg}, nil
}

func (g *Genetic) Name() string { return "genetic" }

// Solve runs the search and returns the best packing found. The result is
// never worse than Greedy, whose order seeds the first population.
func (g *Genetic) Solve(s binpack.State, key rng.Key) binpack.State {
	items := pending(s)
	if len(items) == 0 {
		return s
	}
	o := &geneticOptimizer{config: g.Config, start: s, items: items, rng: key.Rand()}
	best := o.optimize()
	return PackInOrder(s, best.order)
}

type chromosome struct {
	order   []int
	fitness float64
}

type geneticOptimizer struct {
	config GeneticConfig
	start  binpack.State
	items  []int
	rng    *rand.Rand
}

func (g *geneticOptimizer) optimize() chromosome {
	population := g.initPopulation()
	for i := range population {
		population[i].fitness = g.evaluate(population[i])
	}

	for gen := 0; gen < g.config.Generations; gen++ {
		sortByFitness(population)

		next := make([]chromosome, 0, g.config.PopulationSize)
		for i := 0; i < g.config.EliteCount; i++ {
			next = append(next, copyChromosome(population[i]))
		}

		for len(next) < g.config.PopulationSize {
			child := g.orderCrossover(g.tournamentSelect(population), g.tournamentSelect(population))
			g.mutate(&child)
			child.fitness = g.evaluate(child)
			next = append(next, child)
		}
		population = next
	}

	sortByFitness(population)
	return population[0]
}

// initPopulation returns random permutations, with the greedy
// largest-first order in slot 0.
func (g *geneticOptimizer) initPopulation() []chromosome {
	n := len(g.items)
	population := make([]chromosome, g.config.PopulationSize)
	population[0] = chromosome{order: byVolume(g.start, g.items)}
	for i := 1; i < len(population); i++ {
		order := make([]int, n)
		for k, p := range g.rng.Perm(n) {
			order[k] = g.items[p]
		}
		population[i] = chromosome{order: order}
	}
	return population
}

func (g *geneticOptimizer) evaluate(c chromosome) float64 {
	return binpack.Utilization(PackInOrder(g.start, c.order))
}

func (g *geneticOptimizer) tournamentSelect(population []chromosome) chromosome {
	best := population[g.rng.Intn(len(population))]
	for i := 1; i < g.config.TournamentSize; i++ {
		candidate := population[g.rng.Intn(len(population))]
		if candidate.fitness > best.fitness {
			best = candidate
		}
	}
	return copyChromosome(best)
}

// orderCrossover is OX1: a segment of parent1 is kept in place and the
// remaining positions take parent2's items in parent2's order.
func (g *geneticOptimizer) orderCrossover(parent1, parent2 chromosome) chromosome {
	n := len(parent1.order)
	if n <= 2 {
		return copyChromosome(parent1)
	}

	p1, p2 := g.rng.Intn(n), g.rng.Intn(n)
	if p1 > p2 {
		p1, p2 = p2, p1
	}

	child := chromosome{order: make([]int, n)}
	inSegment := make(map[int]bool, p2-p1+1)
	for i := p1; i <= p2; i++ {
		child.order[i] = parent1.order[i]
		inSegment[parent1.order[i]] = true
	}

	k := (p2 + 1) % n
	for _, item := range parent2.order {
		if !inSegment[item] {
			child.order[k] = item
			k = (k + 1) % n
		}
	}
	return child
}

// mutate applies a swap mutation and, at half the rate, a segment
// inversion.
func (g *geneticOptimizer) mutate(c *chromosome) {
	n := len(c.order)
	if n < 2 {
		return
	}

	if g.rng.Float64() < g.config.MutationRate {
		i, j := g.rng.Intn(n), g.rng.Intn(n)
		c.order[i], c.order[j] = c.order[j], c.order[i]
	}

	if g.rng.Float64() < g.config.MutationRate*0.5 {
		i, j := g.rng.Intn(n), g.rng.Intn(n)
		if i > j {
			i, j = j, i
		}
		for ; i < j; i, j = i+1, j-1 {
			c.order[i], c.order[j] = c.order[j], c.order[i]
		}
	}
}

func copyChromosome(c chromosome) chromosome {
	return chromosome{order: append([]int(nil), c.order...), fitness: c.fitness}
}

func sortByFitness(population []chromosome) {
	sort.SliceStable(population, func(i, j int) bool {
		return population[i].fitness > population[j].fitness
	})
}
