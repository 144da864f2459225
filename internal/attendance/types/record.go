package types

import "time"

// Status is the persisted attendance state of a single record.
type Status string

const (
	StatusLoggedIn  Status = "LOGGED IN"
	StatusLoggedOut Status = "LOGGED OUT"
)

func (s Status) Valid() bool {
	return s == StatusLoggedIn || s == StatusLoggedOut
}

// Next returns the status that follows s for the same student.  The zero
// value (no prior record) and LOGGED OUT both lead to LOGGED IN.
func (s Status) Next() Status {
	if s == "" || s == StatusLoggedOut {
		return StatusLoggedIn
	}
	return StatusLoggedOut
}

// AttendanceRecord is one append-only attendance event.
type AttendanceRecord struct {
	ID        int64     `json:"attendance_id"`
	StudentNo string    `json:"student_no"`
	Timestamp time.Time `json:"timestamp"`
	Status    Status    `json:"status"`
}
