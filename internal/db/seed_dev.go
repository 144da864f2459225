package db

import (
	"context"
	"database/sql"
	"fmt"
)

// DevStudent is one roster row inserted by SeedDev.
type DevStudent struct {
	StudentNo  string
	FirstName  string
	MiddleName string
	LastName   string
	ProgramID  string
	YearLevel  int
}

// DefaultDevStudents is the roster seeded in dev when none is supplied.
var DefaultDevStudents = []DevStudent{
	{StudentNo: "2021-0001", FirstName: "Ana", MiddleName: "Cruz", LastName: "Reyes", ProgramID: "BSCS", YearLevel: 3},
	{StudentNo: "2021-0002", FirstName: "Ben", LastName: "Santos", ProgramID: "BSIT", YearLevel: 2},
	{StudentNo: "2022-0107", FirstName: "Carla", MiddleName: "Diaz", LastName: "Mendoza", ProgramID: "BSCE", YearLevel: 1},
}

// SeedDev inserts a starter roster into a sqlite database.  Existing rows are
// left untouched; attendance is never seeded.
func SeedDev(ctx context.Context, db *sql.DB, students []DevStudent) error {
	if len(students) == 0 {
		students = DefaultDevStudents
	}

	for _, s := range students {
		var middle any
		if s.MiddleName != "" {
			middle = s.MiddleName
		}
		if _, err := db.ExecContext(ctx, `
INSERT OR IGNORE INTO students(
  StudentNo, FirstName, MiddleName, LastName, ProgramId, YearLevel
) VALUES (?, ?, ?, ?, ?, ?);`,
			s.StudentNo, s.FirstName, middle, s.LastName, s.ProgramID, s.YearLevel,
		); err != nil {
			return fmt.Errorf("seed student %s: %w", s.StudentNo, err)
		}
	}

	return nil
}
