// Package export renders domain data into spreadsheet files for download.
package export

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/CAPS-2026/degreeplan-service/internal/models"
)

const applicationsSheet = "Graduation Applications"

var applicationHeaders = []string{
	"Application ID", "Student ID", "Student Name", "Email", "Program", "Status", "Applied At", "Status Updated At",
}

// ApplicationsWorkbook renders the given graduation applications into an xlsx
// workbook. Rows appear in the order given; related student and program rows
// are expected to be preloaded.
func ApplicationsWorkbook(applications []*models.GraduationApplication) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", applicationsSheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for i, header := range applicationHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(applicationsSheet, cell, header); err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(applicationsSheet, cell, cell, headerStyle); err != nil {
			return nil, err
		}
	}

	for i, application := range applications {
		row := i + 2
		values := applicationRow(application)
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(applicationsSheet, cell, value); err != nil {
				return nil, err
			}
		}
	}

	if err := f.SetColWidth(applicationsSheet, "A", "H", 22); err != nil {
		return nil, fmt.Errorf("failed to size columns: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func applicationRow(application *models.GraduationApplication) []interface{} {
	var schoolID, name, email, program string
	if application.Student != nil {
		schoolID = application.Student.SchoolStudentID
		if application.Student.User != nil {
			name = application.Student.User.FullName
			email = application.Student.User.Email
		}
	}
	if application.Program != nil {
		program = application.Program.Name
	}
	return []interface{}{
		application.ID,
		schoolID,
		name,
		email,
		program,
		string(application.Status),
		formatTimestamp(application.AppliedAt),
		formatTimestamp(application.StatusUpdatedAt),
	}
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04")
}
