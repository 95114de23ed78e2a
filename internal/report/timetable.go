// Package report renders the timetable as a spreadsheet.
package report

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/example/edutrack/internal/lifecycle"
	"github.com/example/edutrack/internal/persistence"
	"github.com/example/edutrack/internal/timewindow"
)

// ErrGenerate is returned when the workbook cannot be serialised.
var ErrGenerate = errors.New("report: failed to generate workbook")

// Weekdays lists the sheets in workbook order.
var Weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

var header = []string{"Start", "End", "Room", "Subject", "Teacher", "State", "Students"}

// ExportTimetable writes one sheet per weekday with a row per session,
// ordered by start time and then room. Rooms are shown by name when the
// catalog knows them. It returns the workbook and a suggested filename.
func ExportTimetable(rooms []persistence.Room, sessions []persistence.Session, generatedAt time.Time) (*bytes.Buffer, string, error) {
	roomNames := make(map[string]string, len(rooms))
	for _, room := range rooms {
		roomNames[room.ID] = room.Name
	}

	byDay := make(map[string][]persistence.Session, len(Weekdays))
	for _, s := range sessions {
		byDay[s.Day] = append(byDay[s.Day], s)
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrGenerate, err)
	}

	for i, day := range Weekdays {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", day); err != nil {
				return nil, "", fmt.Errorf("%w: %v", ErrGenerate, err)
			}
		} else if _, err := f.NewSheet(day); err != nil {
			return nil, "", fmt.Errorf("%w: %v", ErrGenerate, err)
		}
		if err := writeDay(f, day, byDay[day], roomNames, headerStyle); err != nil {
			return nil, "", fmt.Errorf("%w: %v", ErrGenerate, err)
		}
	}
	f.SetActiveSheet(0)

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrGenerate, err)
	}
	return buf, fmt.Sprintf("timetable_%s.xlsx", generatedAt.Format("20060102")), nil
}

func writeDay(f *excelize.File, sheet string, sessions []persistence.Session, roomNames map[string]string, headerStyle int) error {
	sorted := append([]persistence.Session(nil), sessions...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, aErr := timewindow.ParseClock(sorted[i].StartTime)
		b, bErr := timewindow.ParseClock(sorted[j].StartTime)
		if aErr == nil && bErr == nil && a != b {
			return a < b
		}
		if aErr != nil || bErr != nil {
			return sorted[i].StartTime < sorted[j].StartTime
		}
		return sorted[i].RoomID < sorted[j].RoomID
	})

	for col, title := range header {
		if err := f.SetCellValue(sheet, cell(col, 1), title); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(sheet, cell(0, 1), cell(len(header)-1, 1), headerStyle); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "A", "B", 8); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "C", "E", 22); err != nil {
		return err
	}

	for i, s := range sorted {
		row := i + 2
		room := s.RoomID
		if name, ok := roomNames[s.RoomID]; ok {
			room = name
		}
		values := []any{s.StartTime, s.EndTime, room, s.Subject, s.TeacherName, string(lifecycle.StateOf(s))}
		if s.CheckedIn {
			values = append(values, s.StudentCount)
		}
		for col, v := range values {
			if err := f.SetCellValue(sheet, cell(col, row), v); err != nil {
				return err
			}
		}
	}
	return nil
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col+1, row)
	return name
}
