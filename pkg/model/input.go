package model

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gocarina/gocsv"
	"github.com/mitchellh/mapstructure"
	"github.com/samber/lo"
)

// CourseRecord is one raw course row as found in course files. Overlap fields hold semicolon separated
// 1-based positions in the file, empty meaning none.
type CourseRecord struct {
	CourseNumber       string  `csv:"courseNumber" mapstructure:"courseNumber" validate:"required"`
	CourseType         string  `csv:"courseType" mapstructure:"courseType"`
	MeetingLengthHours float64 `csv:"meetingLengthHours" mapstructure:"meetingLengthHours" validate:"gt=0"`
	NumberOfMeetings   int     `csv:"numberOfMeetings" mapstructure:"numberOfMeetings" validate:"min=1,max=3"`
	NumberEnrolled     int     `csv:"numberEnrolled" mapstructure:"numberEnrolled" validate:"min=0"`
	CantOverlap        string  `csv:"cantOverlap" mapstructure:"cantOverlap"`
	ShouldntOverlap    string  `csv:"shouldntOverlap" mapstructure:"shouldntOverlap"`
}

type RawInput struct {
	Courses []CourseRecord `mapstructure:"courses"`
}

var validate = validator.New()

// LoadCourses picks the parser from the file extension
func LoadCourses(file string) ([]Course, error) {
	switch strings.ToLower(filepath.Ext(file)) {
	case ".csv":
		return LoadCoursesCSV(file)
	case ".json":
		return InputFromJson(file)
	default:
		return nil, fmt.Errorf("unsupported course file %q: expected .csv or .json", file)
	}
}

// LoadCoursesCSV reads a course file and resolves every record into a Course
func LoadCoursesCSV(file string) ([]Course, error) {
	handle, err := os.Open(file)
	if err != nil {
		return nil, fmt.Errorf("cannot open course file: %w", err)
	}
	defer handle.Close()

	return ParseCoursesCSV(handle)
}

func ParseCoursesCSV(reader io.Reader) ([]Course, error) {
	records := []*CourseRecord{}
	if err := gocsv.Unmarshal(reader, &records); err != nil {
		return nil, fmt.Errorf("cannot parse course records: %w", err)
	}
	return CoursesFromRecords(lo.FromSlicePtr(records))
}

// InputFromJson reads a {"courses": [...]} document carrying the same fields as the CSV format
func InputFromJson(file string) ([]Course, error) {
	bytes, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("cannot read course file: %w", err)
	}

	var inputJson map[string]any
	if err := json.Unmarshal(bytes, &inputJson); err != nil {
		return nil, err
	}

	var rawInput RawInput
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &rawInput,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(inputJson); err != nil {
		return nil, fmt.Errorf("cannot decode course records: %w", err)
	}
	return CoursesFromRecords(rawInput.Courses)
}

// CoursesFromRecords validates raw records, converts overlap positions to 0-based indices and resolves each
// course's layout. Any invalid record aborts the load.
func CoursesFromRecords(records []CourseRecord) ([]Course, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("no course records")
	}

	courses := make([]Course, 0, len(records))
	for i, record := range records {
		if err := validate.Struct(record); err != nil {
			return nil, fmt.Errorf("record %d: %w", i+1, err)
		}

		cantOverlap, err := parseIndexList(record.CantOverlap, i, len(records))
		if err != nil {
			return nil, fmt.Errorf("record %d cantOverlap: %w", i+1, err)
		}
		shouldntOverlap, err := parseIndexList(record.ShouldntOverlap, i, len(records))
		if err != nil {
			return nil, fmt.Errorf("record %d shouldntOverlap: %w", i+1, err)
		}

		course, err := NewCourse(
			record.CourseNumber,
			record.CourseType,
			record.MeetingLengthHours,
			record.NumberOfMeetings,
			record.NumberEnrolled,
			cantOverlap,
			shouldntOverlap,
		)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i+1, err)
		}
		courses = append(courses, course)
	}
	return courses, nil
}

// parseIndexList turns "2;5" into []int{1, 4}. Self references are dropped.
func parseIndexList(field string, self, size int) ([]int, error) {
	indices := make([]int, 0)
	for _, token := range strings.Split(field, ";") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		position, err := strconv.Atoi(token)
		if err != nil {
			return nil, fmt.Errorf("invalid index %q: %w", token, err)
		}
		if position < 1 || position > size {
			return nil, fmt.Errorf("%w: %d not in [1, %d]", ErrInvalidIndex, position, size)
		}
		if position-1 == self {
			continue
		}
		indices = append(indices, position-1)
	}
	return lo.Uniq(indices), nil
}
