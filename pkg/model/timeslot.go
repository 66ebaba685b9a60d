package model

import "fmt"

// Granularity identifies which family of time blocks a placement uses
type Granularity int

const (
	Hourly      Granularity = iota // 60-minute blocks, slots 0..10 (9:00a - 8:00p)
	HourAndHalf                    // 90-minute blocks, slots 11..17 (9:00a - 7:30p)
)

const (
	FirstHourlySlot      = 0
	LastHourlySlot       = 10
	FirstHourAndHalfSlot = 11
	LastHourAndHalfSlot  = 17

	dayStartMinutes = 9 * 60
)

func (g Granularity) String() string {
	switch g {
	case Hourly:
		return "1.0h"
	case HourAndHalf:
		return "1.5h"
	}
	return fmt.Sprintf("Granularity(%d)", int(g))
}

// Minutes returns the length of one block
func (g Granularity) Minutes() int {
	if g == HourAndHalf {
		return 90
	}
	return 60
}

// Bounds returns the first and last slot index of the granularity's range
func (g Granularity) Bounds() (first, last int) {
	if g == HourAndHalf {
		return FirstHourAndHalfSlot, LastHourAndHalfSlot
	}
	return FirstHourlySlot, LastHourlySlot
}

// GranularityOf returns the granularity a slot index belongs to
func GranularityOf(slot int) Granularity {
	if slot >= FirstHourAndHalfSlot {
		return HourAndHalf
	}
	return Hourly
}

// SlotRange returns the legal start slots for a meeting that occupies slotsPerMeeting consecutive
// blocks, so that the end slot never leaves the grid
func SlotRange(g Granularity, slotsPerMeeting int) (first, last int) {
	first, last = g.Bounds()
	return first, last - (slotsPerMeeting - 1)
}

// SlotMinutes returns the wall-clock interval [start, end) of a slot in minutes from midnight
func SlotMinutes(slot int) (start, end int) {
	g := GranularityOf(slot)
	first, _ := g.Bounds()
	start = dayStartMinutes + (slot-first)*g.Minutes()
	return start, start + g.Minutes()
}

// hourlySpan[k] holds the first and last hourly slots overlapped by the 90-minute slot FirstHourAndHalfSlot+k.
// It is derived from wall-clock intervals rather than written by hand.
var hourlySpan = buildHourlySpan()

func buildHourlySpan() [LastHourAndHalfSlot - FirstHourAndHalfSlot + 1][2]int {
	var span [LastHourAndHalfSlot - FirstHourAndHalfSlot + 1][2]int
	for slot := FirstHourAndHalfSlot; slot <= LastHourAndHalfSlot; slot++ {
		start, end := SlotMinutes(slot)
		first, last := -1, -1
		for hour := FirstHourlySlot; hour <= LastHourlySlot; hour++ {
			hourStart, hourEnd := SlotMinutes(hour)
			if hourStart < end && start < hourEnd {
				if first < 0 {
					first = hour
				}
				last = hour
			}
		}
		span[slot-FirstHourAndHalfSlot] = [2]int{first, last}
	}
	return span
}

// CrossGranularityMap returns, for every 90-minute slot, the pair of hourly slots it spans
func CrossGranularityMap() map[int][2]int {
	mapping := make(map[int][2]int, len(hourlySpan))
	for k, span := range hourlySpan {
		mapping[FirstHourAndHalfSlot+k] = span
	}
	return mapping
}

// ToHourlyAxis projects an inclusive slot range onto the hourly axis. Hourly ranges are returned unchanged.
func ToHourlyAxis(start, end int) (int, int) {
	if GranularityOf(start) == Hourly {
		return start, end
	}
	return hourlySpan[start-FirstHourAndHalfSlot][0], hourlySpan[end-FirstHourAndHalfSlot][1]
}

// HalfHourIndex converts minutes from midnight into half-hour steps counted from 8:00a
func HalfHourIndex(minutes int) int {
	return (minutes - 8*60) / 30
}

// ClockString formats minutes from midnight as e.g. "9:00a" or "1:30p"
func ClockString(minutes int) string {
	hour, minute := minutes/60, minutes%60
	suffix := "a"
	if hour >= 12 {
		suffix = "p"
	}
	if hour%12 == 0 {
		return fmt.Sprintf("12:%02d%s", minute, suffix)
	}
	return fmt.Sprintf("%d:%02d%s", hour%12, minute, suffix)
}
