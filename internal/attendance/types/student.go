package types

import (
	"strconv"
	"strings"
	"time"
)

// Student is read-only from the station's point of view.  The picture blob is
// not carried here; it is fetched on demand with FindPicture.
type Student struct {
	StudentNo  string `json:"student_no"`
	FirstName  string `json:"first_name"`
	MiddleName string `json:"middle_name,omitempty"`
	LastName   string `json:"last_name"`
	ProgramID  string `json:"program_id"`
	YearLevel  int    `json:"year_level"`
}

// FullName joins the non-empty name parts with single spaces.
func (s Student) FullName() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{s.FirstName, s.MiddleName, s.LastName} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// StudentInfo is the display payload shown after a scan or when a log row is
// inspected.
type StudentInfo struct {
	StudentNo string `json:"student_no"`
	Name      string `json:"name"`
	Program   string `json:"program"`
	YearLevel string `json:"year_level"`
	Status    Status `json:"status"`
	Timestamp string `json:"timestamp,omitempty"`
}

func NewStudentInfo(st Student, rec AttendanceRecord) StudentInfo {
	info := StudentInfo{
		StudentNo: st.StudentNo,
		Name:      st.FullName(),
		Program:   st.ProgramID,
		Status:    rec.Status,
	}
	if st.YearLevel > 0 {
		info.YearLevel = strconv.Itoa(st.YearLevel)
	}
	if !rec.Timestamp.IsZero() {
		info.Timestamp = rec.Timestamp.UTC().Format(time.RFC3339)
	}
	return info
}
