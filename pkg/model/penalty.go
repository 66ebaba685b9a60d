package model

import (
	"errors"
	"fmt"
)

// Weights scales every penalty criterion. Hard only enters the search objective, never CheckDesirable.
type Weights struct {
	SoftOverlap float64 `mapstructure:"soft_overlap"`
	OddHours    float64 `mapstructure:"odd_hours"`
	Lunch       float64 `mapstructure:"lunch"`
	Hard        float64 `mapstructure:"hard"`
}

// DefaultWeights are all positive. Weights may be 0, which leaves that criterion out of the penalty.
func DefaultWeights() Weights {
	return Weights{
		SoftOverlap: 10,
		OddHours:    2,
		Lunch:       1,
		Hard:        1000,
	}
}

func (w Weights) Validate() error {
	var errs []error
	if w.SoftOverlap < 0 {
		errs = append(errs, fmt.Errorf("soft overlap weight must be >= 0, got %v", w.SoftOverlap))
	}
	if w.OddHours < 0 {
		errs = append(errs, fmt.Errorf("odd hours weight must be >= 0, got %v", w.OddHours))
	}
	if w.Lunch < 0 {
		errs = append(errs, fmt.Errorf("lunch weight must be >= 0, got %v", w.Lunch))
	}
	if w.Hard < 0 {
		errs = append(errs, fmt.Errorf("hard weight must be >= 0, got %v", w.Hard))
	}
	return errors.Join(errs...)
}

const (
	oddHoursBefore = 10 * 60
	oddHoursAfter  = 18 * 60
	lunchStart     = 12 * 60
)

// TouchesOddHours reports placements starting before 10:00a or ending after 6:00p
func TouchesOddHours(p Placement) bool {
	start, _ := SlotMinutes(p.Start)
	_, end := SlotMinutes(p.End)
	return start < oddHoursBefore || end > oddHoursAfter
}

// StartsAtLunch reports placements starting at noon, i.e. hourly slot 3 or 90-minute slot 13
func StartsAtLunch(p Placement) bool {
	start, _ := SlotMinutes(p.Start)
	return start == lunchStart
}

// Evaluation breaks a schedule's score down by criterion
type Evaluation struct {
	HardViolations int
	SoftOverlaps   int
	OddHours       int
	Lunch          int
	Penalty        float64
	Feasible       bool
}

func (e Evaluation) String() string {
	return fmt.Sprintf(
		"feasible=%v penalty=%v hard=%d soft=%d odd=%d lunch=%d",
		e.Feasible, e.Penalty, e.HardViolations, e.SoftOverlaps, e.OddHours, e.Lunch,
	)
}
