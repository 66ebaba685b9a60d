package model

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssignRooms(t *testing.T) {
	schedule := Schedule{
		{Start: 2, End: 2, Days: Monday},
		{Start: 2, End: 2, Days: Monday},
		{Start: 6, End: 6, Days: Monday},
	}
	rooms := []Room{{Name: "Hall", Capacity: 100}, {Name: "Lab", Capacity: 20}}

	t.Run("Conflicting courses get distinct rooms", func(t *testing.T) {
		//** Arrange
		courses := []Course{
			mustCourse(t, "A", 1.0, 1, 50, nil, nil),
			mustCourse(t, "B", 1.0, 1, 10, nil, nil),
			mustCourse(t, "C", 1.0, 1, 80, nil, nil),
		}

		//** Act
		assignment, err := AssignRooms(courses, schedule, rooms)

		//** Assert
		require.NoError(t, err)
		assert.Equal(t, []int{0, 1, 0}, assignment)
	})

	t.Run("Unassignable component", func(t *testing.T) {
		courses := []Course{
			mustCourse(t, "A", 1.0, 1, 50, nil, nil),
			mustCourse(t, "B", 1.0, 1, 30, nil, nil),
			mustCourse(t, "C", 1.0, 1, 80, nil, nil),
		}

		_, err := AssignRooms(courses, schedule, rooms)

		require.Error(t, err)
		assert.ErrorAs(t, err, &unassignableError{})
		assert.ErrorContains(t, err, "A, B")
	})
}

func TestConflictComponents(t *testing.T) {
	schedule := Schedule{
		{Start: 0, End: 1, Days: Monday},
		{Start: 5, End: 5, Days: Tuesday},
		{Start: 1, End: 2, Days: Monday},
		{Start: 2, End: 2, Days: Monday | Wednesday},
	}

	assert.Equal(t, [][]int{{0, 2, 3}, {1}}, conflictComponents(schedule))
}

func TestLoadRoomsCSV(t *testing.T) {
	file := filepath.Join(t.TempDir(), "rooms.csv")
	require.NoError(t, os.WriteFile(file, []byte("name,capacity\nHall,100\nLab,20\n"), 0o644))

	rooms, err := LoadRoomsCSV(file)

	require.NoError(t, err)
	assert.Equal(t, []Room{{Name: "Hall", Capacity: 100}, {Name: "Lab", Capacity: 20}}, rooms)

	require.NoError(t, os.WriteFile(file, []byte("name,capacity\nHall,0\n"), 0o644))
	_, err = LoadRoomsCSV(file)
	assert.Error(t, err)
}
