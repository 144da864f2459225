package db

import (
	"context"
	"database/sql"
	"fmt"
)

// EnsurePostgresSchema creates the station's tables on a postgres server.
// Safe to call multiple times - uses IF NOT EXISTS.
func EnsurePostgresSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, postgresSchema); err != nil {
		return fmt.Errorf("create postgres schema: %w", err)
	}
	return nil
}

// Identifiers are left unquoted, so postgres folds them to lower case; the
// store queries rely on the same folding.
const postgresSchema = `
CREATE TABLE IF NOT EXISTS students (
    StudentNo  TEXT PRIMARY KEY,
    FirstName  TEXT NOT NULL,
    MiddleName TEXT,
    LastName   TEXT NOT NULL,
    ProgramId  TEXT,
    YearLevel  INTEGER,
    Picture    BYTEA
);

CREATE TABLE IF NOT EXISTS attendance (
    AttendanceID BIGSERIAL PRIMARY KEY,
    StudentNo    TEXT NOT NULL REFERENCES students(StudentNo),
    Timestamp    TIMESTAMPTZ NOT NULL,
    Status       TEXT NOT NULL CHECK (Status IN ('LOGGED IN', 'LOGGED OUT'))
);

CREATE INDEX IF NOT EXISTS idx_attendance_student_time ON attendance(StudentNo, Timestamp DESC);
CREATE INDEX IF NOT EXISTS idx_attendance_time ON attendance(Timestamp DESC);
`
