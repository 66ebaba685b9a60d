package model

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/onsi/gomega/matchers/support/goraph/bipartitegraph"
	"github.com/samber/lo"
)

type Room struct {
	Name     string `csv:"name" validate:"required"`
	Capacity int    `csv:"capacity" validate:"min=1"`
}

type unassignableError struct {
	courses []string
}

func (err unassignableError) Error() string {
	return fmt.Sprintf("not all courses can be assigned a room: {%v}", strings.Join(err.courses, ", "))
}

func LoadRoomsCSV(file string) ([]Room, error) {
	handle, err := os.Open(file)
	if err != nil {
		return nil, fmt.Errorf("cannot open room file: %w", err)
	}
	defer handle.Close()

	rooms := []Room{}
	if err := gocsv.UnmarshalFile(handle, &rooms); err != nil {
		return nil, fmt.Errorf("cannot parse room records: %w", err)
	}
	for i, room := range rooms {
		if err := validate.Struct(room); err != nil {
			return nil, fmt.Errorf("room %d: %w", i+1, err)
		}
	}
	return rooms, nil
}

// AssignRooms gives every course a room large enough for its enrolment. Courses linked through a chain of
// conflicting placements get pairwise distinct rooms. The result maps course index to room index.
func AssignRooms(courses []Course, schedule Schedule, rooms []Room) ([]int, error) {
	if len(schedule) != len(courses) {
		return nil, fmt.Errorf("schedule has %d placements for %d courses", len(schedule), len(courses))
	}

	assignment := make([]int, len(courses))
	for _, component := range conflictComponents(schedule) {
		matched, err := assignComponent(courses, component, rooms)
		if err != nil {
			return nil, err
		}
		for course, room := range matched {
			assignment[course] = room
		}
	}
	return assignment, nil
}

// conflictComponents groups course indices into connected components of the conflict relation, each sorted
func conflictComponents(schedule Schedule) [][]int {
	parent := lo.Range(len(schedule))
	var find func(int) int
	find = func(i int) int {
		if parent[i] != i {
			parent[i] = find(parent[i])
		}
		return parent[i]
	}

	for i := range len(schedule) - 1 {
		for j := i + 1; j < len(schedule); j++ {
			if schedule[i].ConflictsWith(schedule[j]) {
				parent[find(j)] = find(i)
			}
		}
	}

	groups := lo.GroupBy(lo.Range(len(schedule)), find)
	components := lo.Values(groups)
	slices.SortFunc(components, func(a, b []int) int { return a[0] - b[0] })
	return components
}

func assignComponent(courses []Course, component []int, rooms []Room) (map[int]int, error) {
	// Build neighbors predicate based on capacity
	neighbors := func(courseAny any, roomAny any) (bool, error) {
		course := courseAny.(int)
		room := roomAny.(int)

		return rooms[room].Capacity >= courses[course].Enrolled, nil
	}

	// Transform courses and rooms to slices of any
	coursesAny := lo.Map(component, func(course int, _ int) any { return course })
	roomsAny := lo.Times(len(rooms), func(room int) any { return room })

	graph, err := bipartitegraph.NewBipartiteGraph(coursesAny, roomsAny, neighbors)
	if err != nil {
		return nil, err
	}

	matching := graph.LargestMatching()

	// Check the matching is a maximum one
	if len(matching) < len(component) {
		return nil, unassignableError{courses: lo.Map(component, func(course int, _ int) string { return courses[course].Name })}
	}

	assignments := make(map[int]int, len(component))
	for _, edge := range matching {
		courseIndex, roomIndex := edge.Node1, edge.Node2-len(component)
		assignments[component[courseIndex]] = roomIndex
	}
	return assignments, nil
}
