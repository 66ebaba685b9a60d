package model

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/gocarina/gocsv"
	"github.com/samber/lo"
)

var ErrNoPlacement = errors.New("placement does not fit the slot grid")

// ScheduleRow is the heat-map friendly rendering of one placed course. StartTime and EndTime count half hours
// from 8:00a, so 9:00a is 2.
type ScheduleRow struct {
	Number     string `csv:"number"`
	CourseName string `csv:"courseName"`
	TimeString string `csv:"timeString"`
	DayString  string `csv:"dayString"`
	StartTime  int    `csv:"startTime"`
	EndTime    int    `csv:"endTime"`
	DayCode    string `csv:"dayCode"`
}

func ScheduleRows(courses []Course, schedule Schedule) []ScheduleRow {
	return lo.Map(schedule, func(placement Placement, i int) ScheduleRow {
		start, _ := SlotMinutes(placement.Start)
		_, end := SlotMinutes(placement.End)
		return ScheduleRow{
			Number:     fmt.Sprint(i + 1),
			CourseName: courses[i].Name,
			TimeString: placement.TimeString(),
			DayString:  placement.DayString(),
			StartTime:  HalfHourIndex(start),
			EndTime:    HalfHourIndex(end),
			DayCode:    placement.Days.Code(),
		}
	})
}

func WriteScheduleCSV(writer io.Writer, courses []Course, schedule Schedule) error {
	rows := ScheduleRows(courses, schedule)
	return gocsv.Marshal(&rows, writer)
}

func SaveScheduleCSV(file string, courses []Course, schedule Schedule) error {
	handle, err := os.Create(file)
	if err != nil {
		return fmt.Errorf("cannot create schedule file: %w", err)
	}
	defer handle.Close()

	return WriteScheduleCSV(handle, courses, schedule)
}

func ReadScheduleCSV(reader io.Reader) ([]ScheduleRow, error) {
	rows := []ScheduleRow{}
	if err := gocsv.Unmarshal(reader, &rows); err != nil {
		return nil, fmt.Errorf("cannot parse schedule rows: %w", err)
	}
	return rows, nil
}

// ScheduleFromRows maps rendered rows back onto placements of the given courses, matching rows to courses by position
func ScheduleFromRows(courses []Course, rows []ScheduleRow) (Schedule, error) {
	if len(rows) != len(courses) {
		return nil, fmt.Errorf("%w: %d rows for %d courses", ErrNoPlacement, len(rows), len(courses))
	}

	schedule := make(Schedule, len(rows))
	for i, row := range rows {
		days, err := ParseDayCode(row.DayCode)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		placement, ok := lo.Find(courses[i].Layout.Placements(), func(p Placement) bool {
			start, _ := SlotMinutes(p.Start)
			_, end := SlotMinutes(p.End)
			return p.Days == days && HalfHourIndex(start) == row.StartTime && HalfHourIndex(end) == row.EndTime
		})
		if !ok {
			return nil, fmt.Errorf("%w: row %d (%v %v-%v)", ErrNoPlacement, i+1, row.DayCode, row.StartTime, row.EndTime)
		}
		schedule[i] = placement
	}
	return schedule, nil
}
