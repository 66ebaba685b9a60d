package model

import (
	"math/rand"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckFeasible(t *testing.T) {
	t.Run("Repair resolves a single hard pair", func(t *testing.T) {
		courses := []Course{
			mustCourse(t, "A", 1.0, 1, 10, []int{1}, nil),
			mustCourse(t, "B", 1.0, 1, 10, nil, nil),
		}

		feasible := 0
		for seed := range int64(10) {
			//** Arrange
			clash := Schedule{{Start: 4, End: 4, Days: Wednesday}, {Start: 4, End: 4, Days: Wednesday}}
			problem, err := NewProblem(courses, clash, DefaultWeights(), rand.New(rand.NewSource(seed)))
			require.NoError(t, err)
			require.Equal(t, 1, problem.HardViolations())

			//** Act
			if problem.CheckFeasible() {
				feasible++
			}

			//** Assert
			for i, placement := range problem.Schedule {
				assert.True(t, courses[i].Layout.Allows(placement), "%v", placement)
			}
		}
		assert.Positive(t, feasible)
	})

	t.Run("Hard relation is symmetric", func(t *testing.T) {
		courses := []Course{
			mustCourse(t, "A", 1.0, 1, 10, nil, nil),
			mustCourse(t, "B", 1.0, 1, 10, []int{0}, nil),
		}
		problem, err := NewProblem(courses, Schedule{{Start: 1, End: 1, Days: Friday}, {Start: 1, End: 1, Days: Friday}}, DefaultWeights(), rand.New(rand.NewSource(1)))
		require.NoError(t, err)

		assert.Equal(t, []int{1}, problem.HardPartners(0))
		assert.Equal(t, 1, problem.HardViolations())
	})
}

func TestEvaluate(t *testing.T) {
	courses := []Course{
		mustCourse(t, "A", 1.0, 1, 10, nil, []int{1}),
		mustCourse(t, "B", 1.0, 1, 10, nil, []int{0}),
		mustCourse(t, "C", 1.0, 1, 10, []int{3}, nil),
		mustCourse(t, "D", 1.0, 1, 10, nil, nil),
	}

	t.Run("Breakdown", func(t *testing.T) {
		//** Arrange
		schedule := Schedule{
			{Start: 0, End: 0, Days: Monday},  // 9:00a, odd hours
			{Start: 0, End: 0, Days: Monday},  // soft overlap with A, odd hours
			{Start: 3, End: 3, Days: Tuesday}, // lunch
			{Start: 3, End: 3, Days: Tuesday}, // lunch, hard conflict with C
		}
		problem, err := NewProblem(courses, schedule, DefaultWeights(), rand.New(rand.NewSource(1)))
		require.NoError(t, err)

		//** Act
		evaluation := problem.Evaluate()

		//** Assert
		assert.Equal(t, Evaluation{
			HardViolations: 1,
			SoftOverlaps:   1,
			OddHours:       2,
			Lunch:          2,
			Penalty:        16,
			Feasible:       false,
		}, evaluation)
		assert.Equal(t, 16.0, problem.CheckDesirable())
		assert.Equal(t, 1016.0, problem.Objective())
	})

	t.Run("Perfect schedule", func(t *testing.T) {
		schedule := Schedule{
			{Start: 1, End: 1, Days: Monday},
			{Start: 1, End: 1, Days: Tuesday},
			{Start: 5, End: 5, Days: Wednesday},
			{Start: 8, End: 8, Days: Wednesday},
		}
		problem, err := NewProblem(courses, schedule, DefaultWeights(), rand.New(rand.NewSource(1)))
		require.NoError(t, err)

		assert.Zero(t, problem.CheckDesirable())
		assert.True(t, problem.Evaluate().Feasible)
	})

	t.Run("Penalty is zero only without soft issues", func(t *testing.T) {
		rng := rand.New(rand.NewSource(5))
		problem, err := NewProblem(courses, nil, DefaultWeights(), rng)
		require.NoError(t, err)

		for range 500 {
			candidate := problem.Randomized()
			evaluation := candidate.Evaluate()

			assert.GreaterOrEqual(t, evaluation.Penalty, 0.0)
			clean := evaluation.SoftOverlaps == 0 && evaluation.OddHours == 0 && evaluation.Lunch == 0
			assert.Equal(t, clean, evaluation.Penalty == 0)
		}
	})

	t.Run("Zero weights switch criteria off", func(t *testing.T) {
		//** Arrange
		schedule := Schedule{
			{Start: 0, End: 0, Days: Monday},
			{Start: 0, End: 0, Days: Monday},
			{Start: 3, End: 3, Days: Tuesday},
			{Start: 3, End: 3, Days: Tuesday},
		}
		problem, err := NewProblem(courses, schedule, Weights{SoftOverlap: 10}, rand.New(rand.NewSource(1)))
		require.NoError(t, err)

		//** Act
		evaluation := problem.Evaluate()

		//** Assert
		assert.Equal(t, 2, evaluation.OddHours)
		assert.Equal(t, 2, evaluation.Lunch)
		assert.Equal(t, 10.0, problem.CheckDesirable())
		assert.Equal(t, 10.0, problem.Objective())
	})
}

func TestOddHoursAndLunch(t *testing.T) {
	odd := []int{0, 9, 10, 11, 17}
	lunch := []int{3, 13}
	for slot := FirstHourlySlot; slot <= LastHourAndHalfSlot; slot++ {
		placement := Placement{Start: slot, End: slot, Days: Monday}
		assert.Equal(t, slices.Contains(odd, slot), TouchesOddHours(placement), "slot %d", slot)
		assert.Equal(t, slices.Contains(lunch, slot), StartsAtLunch(placement), "slot %d", slot)
	}

	assert.True(t, TouchesOddHours(Placement{Start: 7, End: 9, Days: Monday}))
}

func TestApplyStartSlotDeltas(t *testing.T) {
	courses := []Course{
		mustCourse(t, "A", 1.0, 1, 10, nil, nil),
		mustCourse(t, "B", 1.5, 2, 10, nil, nil),
	}
	problem, err := NewProblem(courses, Schedule{{Start: 10, End: 10, Days: Monday}, {Start: 12, End: 12, Days: Tuesday | Thursday}}, DefaultWeights(), rand.New(rand.NewSource(2)))
	require.NoError(t, err)

	//** Act
	err = problem.ApplyStartSlotDeltas([]int{1, 2})

	//** Assert
	require.NoError(t, err)
	assert.Equal(t, []int{10, 14}, problem.StartSlots())
	assert.Contains(t, []DayMask{Friday, Monday, Tuesday}, problem.Schedule[0].Days)
	assert.Equal(t, Tuesday|Thursday, problem.Schedule[1].Days)

	assert.Error(t, problem.ApplyStartSlotDeltas([]int{1}))
}

func TestProblemClone(t *testing.T) {
	courses := []Course{mustCourse(t, "A", 1.0, 1, 10, nil, nil)}
	problem, err := NewProblem(courses, Schedule{{Start: 5, End: 5, Days: Monday}}, DefaultWeights(), rand.New(rand.NewSource(2)))
	require.NoError(t, err)

	clone := problem.Clone()
	assert.True(t, clone.ShiftStart(0, 1))

	assert.Equal(t, 5, problem.Schedule[0].Start)
	assert.Equal(t, 6, clone.Schedule[0].Start)
}

func TestNewProblem(t *testing.T) {
	courses := []Course{mustCourse(t, "A", 1.0, 1, 10, nil, nil)}
	rng := rand.New(rand.NewSource(2))

	_, err := NewProblem(courses, nil, DefaultWeights(), nil)
	assert.Error(t, err)

	_, err = NewProblem(courses, Schedule{{Start: 11, End: 11, Days: Monday}}, DefaultWeights(), rng)
	assert.ErrorIs(t, err, ErrNoPlacement)

	_, err = NewProblem(courses, Schedule{}, DefaultWeights(), rng)
	assert.Error(t, err)

	_, err = NewProblem(courses, nil, Weights{SoftOverlap: -1}, rng)
	assert.Error(t, err)

	problem, err := NewProblem(courses, nil, DefaultWeights(), rng)
	require.NoError(t, err)
	assert.Len(t, problem.Schedule, 1)
	assert.Equal(t, []string{courses[0].Describe(problem.Schedule[0])}, problem.Describe())
}
