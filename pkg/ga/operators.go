package ga

import (
	"math/rand"
	"slices"

	"github.com/limaJavier/ucsp/pkg/model"
	"github.com/samber/lo"
)

// Individual is a full schedule together with its objective value
type Individual struct {
	Schedule model.Schedule
	Penalty  float64
}

type Population []Individual

func (population Population) Clone() Population {
	return lo.Map(population, func(individual Individual, _ int) Individual {
		return Individual{Schedule: individual.Schedule.Clone(), Penalty: individual.Penalty}
	})
}

// Best returns the first individual of a ranked population
func (population Population) Best() Individual {
	return population[0]
}

// rank sorts ascending by penalty; ties keep their previous order
func rank(population Population) {
	slices.SortStableFunc(population, func(a, b Individual) int {
		switch {
		case a.Penalty < b.Penalty:
			return -1
		case a.Penalty > b.Penalty:
			return 1
		}
		return 0
	})
}

// selectParents keeps the best half (rounded up) of a ranked population as independent copies
func selectParents(ranked Population) Population {
	return ranked[:(len(ranked)+1)/2].Clone()
}

// breed pads the next generation with the parents verbatim and fills it up with one child per pair of
// consecutive parents, the last parent pairing with the first
func breed(parents Population, size int, rng *rand.Rand) Population {
	children := make(Population, 0, size)
	children = append(children, parents.Clone()...)
	for i := 0; len(children) < size; i++ {
		a, b := parents[i%len(parents)], parents[(i+1)%len(parents)]
		children = append(children, Individual{Schedule: crossover(a.Schedule, b.Schedule, rng)})
	}
	return children[:size]
}

// crossover takes each course's placement from either parent on the sign of a standard normal draw
func crossover(a, b model.Schedule, rng *rand.Rand) model.Schedule {
	child := make(model.Schedule, len(a))
	for i := range child {
		if rng.NormFloat64() < 0 {
			child[i] = a[i]
		} else {
			child[i] = b[i]
		}
	}
	return child
}

// mutate redraws genes of every child but the first, each with probability rate percent
func mutate(children Population, courses []model.Course, rate float64, rng *rand.Rand) {
	if rate <= 0 {
		return
	}
	for _, child := range children[1:] {
		for i := range child.Schedule {
			if rng.Float64() < rate/100 {
				child.Schedule[i] = model.RandomPlacement(courses[i], rng)
			}
		}
	}
}
