package model

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/samber/lo"
)

var (
	ErrInvalidDuration = errors.New("meeting length does not resolve to a whole number of slots")
	ErrInvalidMeetings = errors.New("number of meetings must be 1, 2 or 3")
	ErrInvalidIndex    = errors.New("overlap index out of range")
)

// GranularityOption is one way of laying a course's meeting onto the slot grid
type GranularityOption struct {
	Granularity     Granularity
	SlotsPerMeeting int
	FirstStart      int
	LastStart       int
}

// Layout gathers everything derived from a course's (meeting length, meetings per week) pair
type Layout struct {
	Options     []GranularityOption
	DayPatterns []DayMask
}

// Block lengths in hours, one per granularity
var blockHours = []struct {
	granularity Granularity
	hours       float64
}{
	{Hourly, 1.0},
	{HourAndHalf, 1.5},
}

const lengthTolerance = 1e-9

// ResolveLayout is the single lookup from (meeting length, meetings per week) to legal granularities,
// start ranges and day patterns
func ResolveLayout(lengthHours float64, meetings int) (Layout, error) {
	if _, ok := dayPatterns[meetings]; !ok {
		return Layout{}, fmt.Errorf("%w: got %d", ErrInvalidMeetings, meetings)
	}

	options := make([]GranularityOption, 0, len(blockHours))
	for _, block := range blockHours {
		blocks := lengthHours / block.hours
		rounded := math.Round(blocks)
		if rounded < 1 || math.Abs(blocks-rounded) > lengthTolerance {
			continue
		}

		slots := int(rounded)
		first, last := SlotRange(block.granularity, slots)
		if last < first { // Does not fit the grid
			continue
		}
		options = append(options, GranularityOption{
			Granularity:     block.granularity,
			SlotsPerMeeting: slots,
			FirstStart:      first,
			LastStart:       last,
		})
	}

	if len(options) == 0 {
		return Layout{}, fmt.Errorf("%w: %v hours", ErrInvalidDuration, lengthHours)
	}
	return Layout{Options: options, DayPatterns: DayPatterns(meetings)}, nil
}

// Placements enumerates every individually valid placement of the layout
func (layout Layout) Placements() []Placement {
	placements := make([]Placement, 0)
	for _, option := range layout.Options {
		for start := option.FirstStart; start <= option.LastStart; start++ {
			for _, days := range layout.DayPatterns {
				placements = append(placements, Placement{Start: start, End: start + option.SlotsPerMeeting - 1, Days: days})
			}
		}
	}
	return placements
}

// Allows checks whether the placement is one the layout could produce
func (layout Layout) Allows(placement Placement) bool {
	if !lo.Contains(layout.DayPatterns, placement.Days) {
		return false
	}
	return lo.SomeBy(layout.Options, func(option GranularityOption) bool {
		return placement.Start >= option.FirstStart &&
			placement.Start <= option.LastStart &&
			placement.End-placement.Start == option.SlotsPerMeeting-1
	})
}

// Course is immutable for the duration of a run. Overlap indices are 0-based positions in the course list.
type Course struct {
	Name               string
	Type               string
	MeetingLengthHours float64
	Meetings           int
	Enrolled           int
	CantOverlap        []int
	ShouldntOverlap    []int
	Layout             Layout
}

func NewCourse(name, courseType string, lengthHours float64, meetings, enrolled int, cantOverlap, shouldntOverlap []int) (Course, error) {
	layout, err := ResolveLayout(lengthHours, meetings)
	if err != nil {
		return Course{}, fmt.Errorf("course %q: %w", name, err)
	}
	return Course{
		Name:               name,
		Type:               courseType,
		MeetingLengthHours: lengthHours,
		Meetings:           meetings,
		Enrolled:           enrolled,
		CantOverlap:        cantOverlap,
		ShouldntOverlap:    shouldntOverlap,
		Layout:             layout,
	}, nil
}

// Describe renders the course with a placement, e.g. "AA 203 LEC: TuTh 9:00a - 10:30a"
func (course Course) Describe(placement Placement) string {
	return fmt.Sprintf("%v %v: %v %v", course.Name, course.Type, placement.DayString(), placement.TimeString())
}

// ValidateCourses checks that every overlap index points into the course list
func ValidateCourses(courses []Course) error {
	for i, course := range courses {
		for _, index := range slices.Concat(course.CantOverlap, course.ShouldntOverlap) {
			if index < 0 || index >= len(courses) {
				return fmt.Errorf("%w: course %q references %d (courses: %d)", ErrInvalidIndex, course.Name, index, len(courses))
			}
		}
		if len(course.Layout.Options) == 0 {
			return fmt.Errorf("course %d %q: %w", i, course.Name, ErrInvalidDuration)
		}
	}
	return nil
}

// overlapPairs returns the unordered, de-duplicated pairs {i, j} (i < j) declared by partners; self references are ignored
func overlapPairs(courses []Course, partners func(Course) []int) [][2]int {
	pairs := make([][2]int, 0)
	for i, course := range courses {
		for _, j := range partners(course) {
			if i == j {
				continue
			}
			pairs = append(pairs, [2]int{min(i, j), max(i, j)})
		}
	}
	return lo.Uniq(pairs)
}

// adjacency turns unordered pairs into symmetric partner lists
func adjacency(size int, pairs [][2]int) [][]int {
	partners := make([][]int, size)
	for _, pair := range pairs {
		partners[pair[0]] = append(partners[pair[0]], pair[1])
		partners[pair[1]] = append(partners[pair[1]], pair[0])
	}
	return partners
}
