package store

import (
	"context"
	"time"

	"github.com/itsariadust/qrattendance/station/internal/attendance/types"
)

// AttendanceStore persists attendance events as an append-only log.
//
// Lookups that find nothing return a nil record and a nil error.  Any
// returned error means the backing store could not serve the call.
type AttendanceStore interface {
	// FindLatestRecord returns the most recent record for a student
	// (timestamp desc, limit 1).
	FindLatestRecord(ctx context.Context, studentNo string) (*types.AttendanceRecord, error)
	FindSpecificRecord(ctx context.Context, recordID int64) (*types.AttendanceRecord, error)
	// Insert appends one record.  Each call is atomic.
	Insert(ctx context.Context, studentNo string, ts time.Time, status types.Status) (types.AttendanceRecord, error)
	ListRecordsByTimestampDesc(ctx context.Context) ([]types.AttendanceRecord, error)
}

// StudentStore is the read-only view of the student roster.
type StudentStore interface {
	FindStudent(ctx context.Context, studentNo string) (*types.Student, error)
	// FindPicture returns nil when the student has no picture.
	FindPicture(ctx context.Context, studentNo string) ([]byte, error)
}

// Gateway is the single handle to persisted station data.  One value is
// constructed at startup and handed to every component that needs it.
type Gateway interface {
	AttendanceStore
	StudentStore
}
