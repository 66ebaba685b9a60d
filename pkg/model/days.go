package model

import (
	"fmt"
	"math/bits"
	"slices"
	"strings"
)

// DayMask is a 5-bit set of weekdays, Monday being the lowest bit
type DayMask uint8

const (
	Monday DayMask = 1 << iota
	Tuesday
	Wednesday
	Thursday
	Friday
)

const Weekdays = 5

var dayNames = [Weekdays]string{"M", "Tu", "W", "Th", "F"}

// Legal day patterns per number of weekly meetings. Two-day patterns are never on adjacent days.
var dayPatterns = map[int][]DayMask{
	1: {Monday, Tuesday, Wednesday, Thursday, Friday},
	2: {Monday | Wednesday, Tuesday | Thursday, Wednesday | Friday},
	3: {Monday | Wednesday | Friday},
}

// DayPatterns returns the legal day masks for a course meeting the given number of times per week
func DayPatterns(meetings int) []DayMask {
	return slices.Clone(dayPatterns[meetings])
}

// ValidDayMask checks whether mask is one of the legal patterns for the given meetings count
func ValidDayMask(mask DayMask, meetings int) bool {
	return slices.Contains(dayPatterns[meetings], mask)
}

// Count returns the number of days set
func (d DayMask) Count() int {
	return bits.OnesCount8(uint8(d))
}

// Overlaps checks whether both masks share at least one day
func (d DayMask) Overlaps(other DayMask) bool {
	return d&other != 0
}

// Bits returns the mask as a 0/1 vector, Monday first
func (d DayMask) Bits() [Weekdays]int {
	var vector [Weekdays]int
	for day := range Weekdays {
		if d&(1<<day) != 0 {
			vector[day] = 1
		}
	}
	return vector
}

// String renders the mask with short day names, e.g. "TuTh"
func (d DayMask) String() string {
	var builder strings.Builder
	for day, name := range dayNames {
		if d&(1<<day) != 0 {
			builder.WriteString(name)
		}
	}
	return builder.String()
}

// Code renders the mask as a 5-character bit string, e.g. "01010"
func (d DayMask) Code() string {
	var builder strings.Builder
	for _, bit := range d.Bits() {
		fmt.Fprintf(&builder, "%d", bit)
	}
	return builder.String()
}

// ParseDayCode parses a 5-character bit string such as "10101"
func ParseDayCode(code string) (DayMask, error) {
	code = strings.TrimSpace(code)
	if len(code) != Weekdays {
		return 0, fmt.Errorf("day code %q must have %d characters", code, Weekdays)
	}
	var mask DayMask
	for day, char := range code {
		switch char {
		case '1':
			mask |= 1 << day
		case '0':
		default:
			return 0, fmt.Errorf("day code %q contains invalid character %q", code, char)
		}
	}
	return mask, nil
}
