package bench

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/gocarina/gocsv"
	"github.com/limaJavier/ucsp/pkg/ga"
	"github.com/limaJavier/ucsp/pkg/model"
	"github.com/limaJavier/ucsp/pkg/opt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProblem(t *testing.T) *model.Problem {
	t.Helper()
	courses, err := model.CoursesFromRecords([]model.CourseRecord{
		{CourseNumber: "AA 203", MeetingLengthHours: 1.5, NumberOfMeetings: 2, CantOverlap: "2"},
		{CourseNumber: "AA 210", MeetingLengthHours: 1.0, NumberOfMeetings: 3, ShouldntOverlap: "3"},
		{CourseNumber: "AA 220", MeetingLengthHours: 2.0, NumberOfMeetings: 1},
	})
	require.NoError(t, err)
	problem, err := model.NewProblem(courses, nil, model.DefaultWeights(), rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	return problem
}

func genetic() Algorithm {
	return Algorithm{
		Name: "genetic",
		Factory: func(seed int64) (opt.Optimizer, error) {
			return ga.New(ga.Config{Population: 10, Generations: 20, MutationRate: 10}, rand.New(rand.NewSource(seed)), nil)
		},
	}
}

func TestCalcStats(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		assert.Equal(t, Stats{}, CalcStats(nil))
	})

	t.Run("Single value", func(t *testing.T) {
		assert.Equal(t, Stats{N: 1, Best: 4, Mean: 4, Std: 0}, CalcStats([]float64{4}))
	})

	t.Run("Sample deviation", func(t *testing.T) {
		stats := CalcStats([]float64{2, 4, 4, 4, 5, 5, 7, 9})

		assert.Equal(t, 8, stats.N)
		assert.Equal(t, 2.0, stats.Best)
		assert.Equal(t, 5.0, stats.Mean)
		assert.InDelta(t, math.Sqrt(32.0/7.0), stats.Std, 1e-9)
	})
}

func TestRunner(t *testing.T) {
	t.Run("Aggregates runs", func(t *testing.T) {
		//** Arrange
		problem := testProblem(t)
		original := problem.Schedule.Clone()
		runner := Runner{Runs: 4, BaseSeed: 7, Workers: 2}

		//** Act
		record, err := runner.Run(context.Background(), problem, genetic())

		//** Assert
		require.NoError(t, err)
		assert.Equal(t, "genetic", record.Algo)
		assert.Equal(t, 3, record.Courses)
		assert.Equal(t, 4, record.Runs)
		assert.LessOrEqual(t, record.Feasible, 4)
		assert.LessOrEqual(t, record.ObjectiveBest, record.ObjectiveMean)
		assert.GreaterOrEqual(t, record.ObjectiveStd, 0.0)
		assert.Equal(t, original, problem.Schedule)
	})

	t.Run("Objectives are reproducible", func(t *testing.T) {
		problem := testProblem(t)
		runner := Runner{Runs: 3, BaseSeed: 11}

		first, err := runner.Run(context.Background(), problem, genetic())
		require.NoError(t, err)
		second, err := runner.Run(context.Background(), problem, genetic())
		require.NoError(t, err)

		assert.Equal(t, first.ObjectiveBest, second.ObjectiveBest)
		assert.Equal(t, first.ObjectiveMean, second.ObjectiveMean)
		assert.Equal(t, first.Feasible, second.Feasible)
	})

	t.Run("Factory errors are reported", func(t *testing.T) {
		failing := Algorithm{Name: "broken", Factory: func(int64) (opt.Optimizer, error) {
			return nil, errors.New("boom")
		}}

		_, err := Runner{Runs: 2}.Run(context.Background(), testProblem(t), failing)

		assert.ErrorContains(t, err, "run 0: boom")
		assert.ErrorContains(t, err, "run 1: boom")
	})

	t.Run("Runs must be positive", func(t *testing.T) {
		_, err := Runner{}.Run(context.Background(), testProblem(t), genetic())
		assert.Error(t, err)
	})
}

func TestWriteCSV(t *testing.T) {
	//** Arrange
	path := filepath.Join(t.TempDir(), "results", "bench.csv")
	records := []Record{
		{Algo: "genetic", Courses: 3, Runs: 2, Feasible: 2, ObjectiveBest: 1, ObjectiveMean: 1.5, ObjectiveStd: 0.5},
		{Algo: "swarm", Courses: 3, Runs: 2, Feasible: 1, ObjectiveBest: 3},
	}

	//** Act
	err := WriteCSV(path, records)

	//** Assert
	require.NoError(t, err)
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var read []Record
	require.NoError(t, gocsv.UnmarshalFile(f, &read))
	assert.Equal(t, records, read)
}
