package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/itsariadust/qrattendance/station/internal/attendance/types"
	dbpkg "github.com/itsariadust/qrattendance/station/internal/db"
)

// Gateway reads directly from the pool and funnels every write through the
// single writer goroutine.
type Gateway struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewGateway(db *sql.DB, writer *dbpkg.Worker) *Gateway {
	return &Gateway{db: db, writer: writer}
}

const recordColumns = `AttendanceID, StudentNo, Timestamp, Status`

func (g *Gateway) FindLatestRecord(ctx context.Context, studentNo string) (*types.AttendanceRecord, error) {
	row := g.db.QueryRowContext(ctx, `
SELECT `+recordColumns+`
FROM attendance
WHERE StudentNo = ?
ORDER BY Timestamp DESC, AttendanceID DESC
LIMIT 1;
`, strings.TrimSpace(studentNo))

	rec, err := scanRecord(row)
	if err != nil {
		return nil, fmt.Errorf("FindLatestRecord: %w", err)
	}
	return rec, nil
}

func (g *Gateway) FindSpecificRecord(ctx context.Context, recordID int64) (*types.AttendanceRecord, error) {
	row := g.db.QueryRowContext(ctx, `
SELECT `+recordColumns+`
FROM attendance
WHERE AttendanceID = ?;
`, recordID)

	rec, err := scanRecord(row)
	if err != nil {
		return nil, fmt.Errorf("FindSpecificRecord: %w", err)
	}
	return rec, nil
}

func (g *Gateway) Insert(ctx context.Context, studentNo string, ts time.Time, status types.Status) (types.AttendanceRecord, error) {
	studentNo = strings.TrimSpace(studentNo)
	if !status.Valid() {
		return types.AttendanceRecord{}, fmt.Errorf("Insert: invalid status %q", status)
	}
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	ts = ts.UTC().Truncate(time.Millisecond)

	rec := types.AttendanceRecord{StudentNo: studentNo, Timestamp: ts, Status: status}

	err := g.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
INSERT INTO attendance(StudentNo, Timestamp, Status)
VALUES (?, ?, ?);
`, studentNo, ts.UnixMilli(), string(status))
		if err != nil {
			return fmt.Errorf("Insert: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("Insert last id: %w", err)
		}
		rec.ID = id
		return nil
	})
	if err != nil {
		return types.AttendanceRecord{}, err
	}
	return rec, nil
}

func (g *Gateway) ListRecordsByTimestampDesc(ctx context.Context) ([]types.AttendanceRecord, error) {
	rows, err := g.db.QueryContext(ctx, `
SELECT `+recordColumns+`
FROM attendance
ORDER BY Timestamp DESC, AttendanceID DESC;
`)
	if err != nil {
		return nil, fmt.Errorf("ListRecordsByTimestampDesc: %w", err)
	}
	defer rows.Close()

	var out []types.AttendanceRecord
	for rows.Next() {
		var (
			rec    types.AttendanceRecord
			tsMs   int64
			status string
		)
		if err := rows.Scan(&rec.ID, &rec.StudentNo, &tsMs, &status); err != nil {
			return nil, fmt.Errorf("ListRecordsByTimestampDesc scan: %w", err)
		}
		rec.Timestamp = time.UnixMilli(tsMs).UTC()
		rec.Status = types.Status(status)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListRecordsByTimestampDesc rows: %w", err)
	}
	return out, nil
}

func (g *Gateway) FindStudent(ctx context.Context, studentNo string) (*types.Student, error) {
	var (
		st        types.Student
		middle    sql.NullString
		program   sql.NullString
		yearLevel sql.NullInt64
	)
	err := g.db.QueryRowContext(ctx, `
SELECT StudentNo, FirstName, MiddleName, LastName, ProgramId, YearLevel
FROM students
WHERE StudentNo = ?;
`, strings.TrimSpace(studentNo)).Scan(
		&st.StudentNo, &st.FirstName, &middle, &st.LastName, &program, &yearLevel,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("FindStudent: %w", err)
	}

	st.MiddleName = middle.String
	st.ProgramID = program.String
	st.YearLevel = int(yearLevel.Int64)
	return &st, nil
}

func (g *Gateway) FindPicture(ctx context.Context, studentNo string) ([]byte, error) {
	var pic []byte
	err := g.db.QueryRowContext(ctx, `
SELECT Picture FROM students WHERE StudentNo = ?;
`, strings.TrimSpace(studentNo)).Scan(&pic)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("FindPicture: %w", err)
	}
	if len(pic) == 0 {
		return nil, nil
	}
	return pic, nil
}

func scanRecord(row *sql.Row) (*types.AttendanceRecord, error) {
	var (
		rec    types.AttendanceRecord
		tsMs   int64
		status string
	)
	err := row.Scan(&rec.ID, &rec.StudentNo, &tsMs, &status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	rec.Timestamp = time.UnixMilli(tsMs).UTC()
	rec.Status = types.Status(status)
	return &rec, nil
}
