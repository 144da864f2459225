package types

// ScanResult is returned by the toggle engine for every successful scan.  It
// is a fresh value per scan; nothing about a scan is kept on shared fields.
type ScanResult struct {
	ScanID  string
	Record  AttendanceRecord
	Student Student
	Info    StudentInfo
	Picture []byte // nil when the student has no picture or it could not be read
}

// RecordDetail joins an attendance record with its student, as shown when a
// row of the log is inspected.
type RecordDetail struct {
	Record  AttendanceRecord `json:"record"`
	Student Student          `json:"student"`
	Info    StudentInfo      `json:"info"`
}
