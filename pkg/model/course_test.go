package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveLayout(t *testing.T) {
	t.Run("Hourly only", func(t *testing.T) {
		layout, err := ResolveLayout(2.0, 2)

		require.NoError(t, err)
		assert.Equal(t, []GranularityOption{{Granularity: Hourly, SlotsPerMeeting: 2, FirstStart: 0, LastStart: 9}}, layout.Options)
		assert.Equal(t, []DayMask{Monday | Wednesday, Tuesday | Thursday, Wednesday | Friday}, layout.DayPatterns)
	})

	t.Run("90 minutes only", func(t *testing.T) {
		layout, err := ResolveLayout(1.5, 1)

		require.NoError(t, err)
		assert.Equal(t, []GranularityOption{{Granularity: HourAndHalf, SlotsPerMeeting: 1, FirstStart: 11, LastStart: 17}}, layout.Options)
		assert.Len(t, layout.DayPatterns, 5)
	})

	t.Run("Ambiguous length offers both granularities", func(t *testing.T) {
		layout, err := ResolveLayout(3.0, 3)

		require.NoError(t, err)
		assert.Equal(t, []GranularityOption{
			{Granularity: Hourly, SlotsPerMeeting: 3, FirstStart: 0, LastStart: 8},
			{Granularity: HourAndHalf, SlotsPerMeeting: 2, FirstStart: 11, LastStart: 16},
		}, layout.Options)
		assert.Equal(t, []DayMask{Monday | Wednesday | Friday}, layout.DayPatterns)
	})

	t.Run("Invalid duration", func(t *testing.T) {
		for _, length := range []float64{0, 1.25, 0.5, 12} {
			_, err := ResolveLayout(length, 1)
			assert.ErrorIs(t, err, ErrInvalidDuration, "length %v", length)
		}
	})

	t.Run("Invalid meetings", func(t *testing.T) {
		for _, meetings := range []int{0, 4} {
			_, err := ResolveLayout(1.0, meetings)
			assert.ErrorIs(t, err, ErrInvalidMeetings)
		}
	})

	t.Run("Placements are all allowed", func(t *testing.T) {
		layout, err := ResolveLayout(3.0, 2)
		require.NoError(t, err)

		placements := layout.Placements()

		assert.Len(t, placements, (9+6)*3)
		for _, placement := range placements {
			assert.True(t, layout.Allows(placement))
		}
		assert.False(t, layout.Allows(Placement{Start: 0, End: 2, Days: Monday | Tuesday}))
		assert.False(t, layout.Allows(Placement{Start: 0, End: 1, Days: Monday | Wednesday}))
	})
}

func TestNewCourse(t *testing.T) {
	_, err := NewCourse("Bad", "LEC", 1.2, 1, 10, nil, nil)

	assert.ErrorIs(t, err, ErrInvalidDuration)
	assert.ErrorContains(t, err, "Bad")
}

func TestValidateCourses(t *testing.T) {
	courses := []Course{
		mustCourse(t, "A", 1.0, 1, 10, []int{1}, nil),
		mustCourse(t, "B", 1.0, 1, 10, nil, []int{2}),
	}

	assert.ErrorIs(t, ValidateCourses(courses), ErrInvalidIndex)

	courses[1].ShouldntOverlap = []int{0}
	assert.NoError(t, ValidateCourses(courses))
}

func TestOverlapPairs(t *testing.T) {
	courses := []Course{
		mustCourse(t, "A", 1.0, 1, 10, []int{1, 2, 0}, nil),
		mustCourse(t, "B", 1.0, 1, 10, []int{0}, nil),
		mustCourse(t, "C", 1.0, 1, 10, nil, nil),
	}

	pairs := overlapPairs(courses, func(c Course) []int { return c.CantOverlap })

	assert.Equal(t, [][2]int{{0, 1}, {0, 2}}, pairs)
	assert.Equal(t, [][]int{{1, 2}, {0}, {0}}, adjacency(len(courses), pairs))
}
