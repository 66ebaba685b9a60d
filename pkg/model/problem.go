package model

import (
	"errors"
	"fmt"
	"math/rand"
	"slices"

	"github.com/samber/lo"
)

const DefaultRepairAttempts = 10

// Schedule is positionally aligned with the course list: Schedule[i] places course i
type Schedule []Placement

func (s Schedule) Clone() Schedule {
	return slices.Clone(s)
}

// Problem couples a schedule with the courses it places and the overlap relations between them.
// Placements are mutated in place by repair and perturbation; use Clone before probing alternatives.
type Problem struct {
	Courses        []Course
	Schedule       Schedule
	Weights        Weights
	RepairAttempts int

	rng          *rand.Rand
	hardPartners [][]int
	softPairs    [][2]int
}

// NewProblem validates the courses and wraps the schedule. A nil schedule is replaced by a random one.
func NewProblem(courses []Course, schedule Schedule, weights Weights, rng *rand.Rand) (*Problem, error) {
	if rng == nil {
		return nil, errors.New("rng is nil")
	}
	if len(courses) == 0 {
		return nil, errors.New("no courses to schedule")
	}
	if err := ValidateCourses(courses); err != nil {
		return nil, err
	}
	if err := weights.Validate(); err != nil {
		return nil, fmt.Errorf("invalid weights: %w", err)
	}

	problem := &Problem{
		Courses:        courses,
		Weights:        weights,
		RepairAttempts: DefaultRepairAttempts,
		rng:            rng,
		hardPartners:   adjacency(len(courses), overlapPairs(courses, func(c Course) []int { return c.CantOverlap })),
		softPairs:      overlapPairs(courses, func(c Course) []int { return c.ShouldntOverlap }),
	}

	if schedule == nil {
		problem.Schedule = problem.RandomSchedule()
		return problem, nil
	}
	if len(schedule) != len(courses) {
		return nil, fmt.Errorf("schedule has %d placements for %d courses", len(schedule), len(courses))
	}
	for i, placement := range schedule {
		if !courses[i].Layout.Allows(placement) {
			return nil, fmt.Errorf("%w: course %q cannot be placed at %v", ErrNoPlacement, courses[i].Name, placement)
		}
	}
	problem.Schedule = schedule.Clone()
	return problem, nil
}

// Rng exposes the problem's random source so that search operators draw from the same seeded stream
func (problem *Problem) Rng() *rand.Rand {
	return problem.rng
}

// RandomSchedule draws one random placement per course
func (problem *Problem) RandomSchedule() Schedule {
	return lo.Map(problem.Courses, func(course Course, _ int) Placement {
		return RandomPlacement(course, problem.rng)
	})
}

// Randomized returns a problem over the same courses with a fresh random schedule
func (problem *Problem) Randomized() *Problem {
	return problem.With(problem.RandomSchedule())
}

// With returns a problem over the same courses holding a copy of schedule
func (problem *Problem) With(schedule Schedule) *Problem {
	clone := *problem
	clone.Schedule = schedule.Clone()
	return &clone
}

// WithRng returns a copy of the problem drawing from rng for repair and fallback moves
func (problem *Problem) WithRng(rng *rand.Rand) *Problem {
	clone := problem.Clone()
	clone.rng = rng
	return clone
}

// Clone deep-copies the schedule. Courses, relations and the random source are shared.
func (problem *Problem) Clone() *Problem {
	return problem.With(problem.Schedule)
}

// HardPartners returns the symmetric cantOverlap partners of course i
func (problem *Problem) HardPartners(i int) []int {
	return problem.hardPartners[i]
}

// HardViolations counts unordered hard pairs whose placements conflict
func (problem *Problem) HardViolations() int {
	violations := 0
	for i, partners := range problem.hardPartners {
		for _, j := range partners {
			if i < j && problem.Schedule[i].ConflictsWith(problem.Schedule[j]) {
				violations++
			}
		}
	}
	return violations
}

// CheckFeasible repairs every placement that conflicts with one of its hard partners and reports whether
// any hard conflict survives. Repair is destructive.
func (problem *Problem) CheckFeasible() bool {
	for i, partners := range problem.hardPartners {
		if len(partners) == 0 {
			continue
		}
		placements := lo.Map(partners, func(j int, _ int) Placement { return problem.Schedule[j] })
		problem.Schedule[i].AttemptRepair(placements, problem.RepairAttempts, problem.rng)
	}
	return problem.HardViolations() == 0
}

// CheckDesirable scores soft criteria only. It is never negative. With positive SoftOverlap, OddHours and Lunch
// weights it is 0 only for a schedule without soft overlaps, odd hour or lunch placements; a zero weight switches
// its criterion off, and Evaluate still counts it.
func (problem *Problem) CheckDesirable() float64 {
	return problem.Evaluate().Penalty
}

// Objective is the scalar minimized by the searches: the soft penalty plus a weighted count of hard violations
func (problem *Problem) Objective() float64 {
	evaluation := problem.Evaluate()
	return evaluation.Penalty + problem.Weights.Hard*float64(evaluation.HardViolations)
}

// Evaluate scores the schedule without modifying it
func (problem *Problem) Evaluate() Evaluation {
	evaluation := Evaluation{HardViolations: problem.HardViolations()}
	evaluation.Feasible = evaluation.HardViolations == 0

	evaluation.SoftOverlaps = lo.CountBy(problem.softPairs, func(pair [2]int) bool {
		return problem.Schedule[pair[0]].ConflictsWith(problem.Schedule[pair[1]])
	})
	evaluation.OddHours = lo.CountBy(problem.Schedule, TouchesOddHours)
	evaluation.Lunch = lo.CountBy(problem.Schedule, StartsAtLunch)

	evaluation.Penalty = problem.Weights.SoftOverlap*float64(evaluation.SoftOverlaps) +
		problem.Weights.OddHours*float64(evaluation.OddHours) +
		problem.Weights.Lunch*float64(evaluation.Lunch)
	return evaluation
}

// StartSlots returns every course's start slot in course order
func (problem *Problem) StartSlots() []int {
	return lo.Map(problem.Schedule, func(p Placement, _ int) int { return p.Start })
}

// ApplyStartSlotDeltas shifts every course by its delta. A delta that would leave the grid is replaced by a move
// of the day mask to a neighbouring pattern (or none), so the search still produces some change.
func (problem *Problem) ApplyStartSlotDeltas(deltas []int) error {
	if len(deltas) != len(problem.Schedule) {
		return fmt.Errorf("got %d deltas for %d courses", len(deltas), len(problem.Schedule))
	}
	for i, delta := range deltas {
		if !problem.Schedule[i].PerturbTime(delta) {
			problem.Schedule[i].ShiftDays(problem.rng.Intn(3) - 1)
		}
	}
	return nil
}

// ShiftStart shifts a single course, reporting whether the move was legal
func (problem *Problem) ShiftStart(i, delta int) bool {
	return problem.Schedule[i].PerturbTime(delta)
}

// Describe renders one line per course
func (problem *Problem) Describe() []string {
	return lo.Map(problem.Courses, func(course Course, i int) string {
		return course.Describe(problem.Schedule[i])
	})
}
