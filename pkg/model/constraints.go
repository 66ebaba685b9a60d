package model

import (
	"errors"
	"fmt"

	"github.com/limaJavier/ucsp/pkg/sat"
	"github.com/samber/lo"
)

var ErrUnsatisfiable = errors.New("hard constraints cannot be satisfied")

type constraintState struct {
	indexer   indexer
	options   [][]Placement
	hardPairs [][2]int
}

// PairCost charges Cost when both variables are true
type PairCost struct {
	A, B int64
	Cost float64
}

// ConstraintModel re-expresses a course list as a boolean model: one variable per (course, candidate placement),
// hard relations as clauses and soft criteria as a linear plus pairwise objective over the variables
type ConstraintModel struct {
	Courses    []Course
	Options    [][]Placement
	SAT        sat.SAT
	UnaryCosts map[int64]float64
	PairCosts  []PairCost

	indexer indexer
}

// BuildConstraintModel is pure: the returned model carries everything a solver needs
func BuildConstraintModel(courses []Course, weights Weights) (ConstraintModel, error) {
	if err := ValidateCourses(courses); err != nil {
		return ConstraintModel{}, err
	}

	options := lo.Map(courses, func(course Course, _ int) []Placement { return course.Layout.Placements() })
	state := constraintState{
		indexer:   newIndexer(options),
		options:   options,
		hardPairs: overlapPairs(courses, func(c Course) []int { return c.CantOverlap }),
	}

	model := ConstraintModel{
		Courses:    courses,
		Options:    options,
		SAT:        buildSat(uint64(state.indexer.Size()), []func(constraintState) [][]int64{completenessConstraints, uniquenessConstraints, hardConflictConstraints}, state),
		UnaryCosts: make(map[int64]float64),
		PairCosts:  make([]PairCost, 0),
		indexer:    state.indexer,
	}

	for course, courseOptions := range options {
		for option, placement := range courseOptions {
			cost := 0.0
			if TouchesOddHours(placement) {
				cost += weights.OddHours
			}
			if StartsAtLunch(placement) {
				cost += weights.Lunch
			}
			if cost > 0 {
				model.UnaryCosts[state.indexer.Index(course, option)] = cost
			}
		}
	}

	softPairs := overlapPairs(courses, func(c Course) []int { return c.ShouldntOverlap })
	for _, pair := range softPairs {
		forEachConflict(state, pair, func(a, b int64) {
			model.PairCosts = append(model.PairCosts, PairCost{A: a, B: b, Cost: weights.SoftOverlap})
		})
	}

	return model, nil
}

// buildSat runs every constraint function on its own goroutine and appends their clauses in declaration order
func buildSat(variables uint64, constraints []func(state constraintState) [][]int64, state constraintState) sat.SAT {
	satInstance := sat.SAT{
		Variables: variables,
		Clauses:   [][]int64{},
	}

	type result struct {
		position int
		clauses  [][]int64
	}
	constraintsChannel := make(chan result, len(constraints)) // Channel to collect constraints

	for position, constraint := range constraints {
		go func() {
			constraintsChannel <- result{position: position, clauses: constraint(state)}
		}()
	}

	collected := make([][][]int64, len(constraints))
	for range constraints {
		r := <-constraintsChannel
		collected[r.position] = r.clauses
	}
	for _, clauses := range collected {
		satInstance.Clauses = append(satInstance.Clauses, clauses...)
	}

	return satInstance
}

// Every course takes at least one of its options
func completenessConstraints(state constraintState) [][]int64 {
	return lo.Map(state.options, func(courseOptions []Placement, course int) []int64 {
		return lo.Times(len(courseOptions), func(option int) int64 { return state.indexer.Index(course, option) })
	})
}

// Every course takes at most one of its options
func uniquenessConstraints(state constraintState) [][]int64 {
	clauses := make([][]int64, 0)
	for course, courseOptions := range state.options {
		for i := range len(courseOptions) - 1 {
			for j := i + 1; j < len(courseOptions); j++ {
				clauses = append(clauses, []int64{-state.indexer.Index(course, i), -state.indexer.Index(course, j)})
			}
		}
	}
	return clauses
}

// Hard partners never take conflicting options
func hardConflictConstraints(state constraintState) [][]int64 {
	clauses := make([][]int64, 0)
	for _, pair := range state.hardPairs {
		forEachConflict(state, pair, func(a, b int64) {
			clauses = append(clauses, []int64{-a, -b})
		})
	}
	return clauses
}

// forEachConflict calls yield with the variables of every conflicting option pair of two courses
func forEachConflict(state constraintState, pair [2]int, yield func(a, b int64)) {
	first, second := pair[0], pair[1]
	for i, p := range state.options[first] {
		for j, q := range state.options[second] {
			if p.ConflictsWith(q) {
				yield(state.indexer.Index(first, i), state.indexer.Index(second, j))
			}
		}
	}
}

// Decode turns a solver assignment into a schedule. Every course must take exactly one option.
func (model ConstraintModel) Decode(solution sat.SATSolution) (Schedule, error) {
	schedule := make(Schedule, len(model.Courses))
	assigned := make([]bool, len(model.Courses))
	for _, literal := range solution {
		if literal <= 0 || literal > model.indexer.Size() {
			continue
		}
		course, option := model.indexer.Attributes(literal)
		if assigned[course] {
			return nil, fmt.Errorf("course %q takes more than one option", model.Courses[course].Name)
		}
		assigned[course] = true
		schedule[course] = model.Options[course][option]
	}

	if course := lo.IndexOf(assigned, false); course >= 0 {
		return nil, fmt.Errorf("course %q takes no option", model.Courses[course].Name)
	}
	return schedule, nil
}

// Objective evaluates the soft penalty of an assignment directly on the variables
func (model ConstraintModel) Objective(solution sat.SATSolution) float64 {
	truth := make(map[int64]bool)
	for _, literal := range solution {
		if literal > 0 {
			truth[literal] = true
		}
	}

	objective := 0.0
	for variable := range truth {
		objective += model.UnaryCosts[variable]
	}
	for _, pairCost := range model.PairCosts {
		if truth[pairCost.A] && truth[pairCost.B] {
			objective += pairCost.Cost
		}
	}
	return objective
}

// Verify checks that the assignment satisfies every clause and decodes into a schedule
func (model ConstraintModel) Verify(solution sat.SATSolution) bool {
	if !sat.AssertSATSolution(model.SAT, solution) {
		return false
	}
	_, err := model.Decode(solution)
	return err == nil
}

// SolveConstraintModel hands the model to a solver and decodes the assignment it finds
func SolveConstraintModel(model ConstraintModel, solver sat.SATSolver) (Schedule, sat.SATSolution, error) {
	solution, err := solver.Solve(model.SAT)
	if err != nil {
		return nil, nil, err
	}
	if solution == nil {
		return nil, nil, ErrUnsatisfiable
	}
	if !model.Verify(solution) {
		return nil, nil, fmt.Errorf("solver returned an invalid assignment")
	}

	schedule, err := model.Decode(solution)
	if err != nil {
		return nil, nil, err
	}
	return schedule, solution, nil
}
