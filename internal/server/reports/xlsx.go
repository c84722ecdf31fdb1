// Package reports renders timesheets as downloadable spreadsheets.
package reports

import (
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/timekeeper/internal/server/models"
	"github.com/dmitrijs2005/timekeeper/internal/timex"
	"github.com/xuri/excelize/v2"
)

const (
	sheetName = "Timesheets"

	// ContentType is the MIME type of the workbook produced by WriteTimesheets.
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var header = []any{"Date", "Task", "Description", "Status", "Start", "End", "Minutes", "Submitted"}

// WriteTimesheets writes one row per task followed by a subtotal row per day.
// Clock times are shown in loc.
func WriteTimesheets(w io.Writer, days []*models.TimesheetWithTasks, loc *time.Location) error {
	if loc == nil {
		loc = time.UTC
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return err
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheetName, "A1", "H1", bold); err != nil {
		return err
	}

	row := 2
	for _, day := range days {
		submitted := "no"
		if day.IsSubmitted {
			submitted = "yes"
		}

		for _, t := range day.Tasks {
			desc := ""
			if t.Description != nil {
				desc = *t.Description
			}
			values := []any{
				day.Date, t.Name, desc, string(t.Status),
				t.StartTime.In(loc).Format("15:04"), t.EndTime.In(loc).Format("15:04"),
				timex.RoundMinutes(timex.Minutes(t.StartTime, t.EndTime)), submitted,
			}
			if err := setRow(f, row, values); err != nil {
				return err
			}
			row++
		}

		if err := setRow(f, row, []any{day.Date, "Total", "", "", "", "", day.TotalHours, submitted}); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheetName, cell(2, row), cell(7, row), bold); err != nil {
			return err
		}
		row++
	}

	if err := f.SetColWidth(sheetName, "B", "C", 32); err != nil {
		return err
	}
	return f.Write(w)
}

func setRow(f *excelize.File, row int, values []any) error {
	if err := f.SetSheetRow(sheetName, cell(1, row), &values); err != nil {
		return fmt.Errorf("row %d: %w", row, err)
	}
	return nil
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
