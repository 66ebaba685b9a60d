package model

import (
	"fmt"
	"math/rand"
	"slices"
)

// Placement is one course's position on the grid: an inclusive slot range of a single granularity plus its meeting days
type Placement struct {
	Start int
	End   int
	Days  DayMask
}

// RandomPlacement draws an individually valid placement for the course. When its meeting length fits both
// granularities one of them is picked uniformly. Overlaps with other courses are not considered.
func RandomPlacement(course Course, rng *rand.Rand) Placement {
	layout := course.Layout
	option := layout.Options[rng.Intn(len(layout.Options))]
	start := option.FirstStart + rng.Intn(option.LastStart-option.FirstStart+1)
	return Placement{
		Start: start,
		End:   start + option.SlotsPerMeeting - 1,
		Days:  layout.DayPatterns[rng.Intn(len(layout.DayPatterns))],
	}
}

func (p Placement) Granularity() Granularity {
	return GranularityOf(p.Start)
}

// IsValidShift checks whether moving both ends by delta keeps them inside the placement's granularity range
func (p Placement) IsValidShift(delta int) bool {
	first, last := p.Granularity().Bounds()
	return p.Start+delta >= first && p.End+delta <= last
}

// PerturbTime shifts the placement by delta slots. An invalid shift leaves it untouched and reports false.
func (p *Placement) PerturbTime(delta int) bool {
	if !p.IsValidShift(delta) {
		return false
	}
	p.Start += delta
	p.End += delta
	return true
}

// PerturbDays redraws the day mask among the legal patterns with the same number of meetings
func (p *Placement) PerturbDays(rng *rand.Rand) {
	patterns := dayPatterns[p.Days.Count()]
	if len(patterns) == 0 {
		return
	}
	p.Days = patterns[rng.Intn(len(patterns))]
}

// ShiftDays moves the day mask step positions along its pattern catalog, wrapping around
func (p *Placement) ShiftDays(step int) {
	patterns := dayPatterns[p.Days.Count()]
	current := slices.Index(patterns, p.Days)
	if current < 0 {
		return
	}
	size := len(patterns)
	p.Days = patterns[((current+step)%size+size)%size]
}

// ConflictsWith checks whether both placements share a day and their time ranges intersect on the hourly axis
func (p Placement) ConflictsWith(other Placement) bool {
	if !p.Days.Overlaps(other.Days) {
		return false
	}
	t1, t2 := p.Start, p.End
	o1, o2 := other.Start, other.End
	if p.Granularity() != other.Granularity() {
		t1, t2 = ToHourlyAxis(t1, t2)
		o1, o2 = ToHourlyAxis(o1, o2)
	}
	return !(o1 > t2 || t1 > o2)
}

// conflictsWithAny returns whether p conflicts with at least one of the partners
func (p Placement) conflictsWithAny(partners []Placement) bool {
	for _, partner := range partners {
		if p.ConflictsWith(partner) {
			return true
		}
	}
	return false
}

// AttemptRepair randomly nudges the placement until it no longer conflicts with any partner or the attempt budget
// runs out. It reports whether the placement ended conflict free; a false result is not an error.
func (p *Placement) AttemptRepair(partners []Placement, maxAttempts int, rng *rand.Rand) bool {
	for attempt := 0; attempt < maxAttempts && p.conflictsWithAny(partners); attempt++ {
		switch rng.Intn(3) {
		case 0:
			p.nudge(rng)
		case 1:
			p.PerturbDays(rng)
		default:
			p.nudge(rng)
			p.PerturbDays(rng)
		}
	}
	return !p.conflictsWithAny(partners)
}

// nudge moves the placement one slot in a random direction, falling back to the opposite one at the grid edge
func (p *Placement) nudge(rng *rand.Rand) {
	delta := 1
	if rng.Intn(2) == 0 {
		delta = -1
	}
	if !p.PerturbTime(delta) {
		p.PerturbTime(-delta)
	}
}

// DayString renders the days, e.g. "MWF"
func (p Placement) DayString() string {
	return p.Days.String()
}

// TimeString renders the wall-clock interval, e.g. "9:00a - 10:30a"
func (p Placement) TimeString() string {
	start, _ := SlotMinutes(p.Start)
	_, end := SlotMinutes(p.End)
	return fmt.Sprintf("%v - %v", ClockString(start), ClockString(end))
}

func (p Placement) String() string {
	return fmt.Sprintf("%v %v", p.DayString(), p.TimeString())
}
