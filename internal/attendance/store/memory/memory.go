package memory

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/itsariadust/qrattendance/station/internal/attendance/types"
)

// Op names a gateway operation for fault injection.
type Op string

const (
	OpFindLatest   Op = "find_latest"
	OpFindSpecific Op = "find_specific"
	OpInsert       Op = "insert"
	OpList         Op = "list"
	OpFindStudent  Op = "find_student"
	OpFindPicture  Op = "find_picture"
)

// Gateway is an in-memory store of students and attendance records.
// It is intended for use in tests and dev environments.
type Gateway struct {
	mu       sync.RWMutex
	students map[string]types.Student
	pictures map[string][]byte
	records  []types.AttendanceRecord
	nextID   int64
	faults   map[Op]error
}

func New() *Gateway {
	return &Gateway{
		students: make(map[string]types.Student),
		pictures: make(map[string][]byte),
		nextID:   1,
		faults:   make(map[Op]error),
	}
}

// AddStudent registers a student, replacing any existing entry.
func (g *Gateway) AddStudent(st types.Student, picture []byte) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.students[st.StudentNo] = st
	if picture != nil {
		g.pictures[st.StudentNo] = slices.Clone(picture)
	}
}

// Fail makes every subsequent call of op return err.  A nil err clears it.
func (g *Gateway) Fail(op Op, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err == nil {
		delete(g.faults, op)
		return
	}
	g.faults[op] = err
}

// Records returns a copy of all records in insertion order.  Test-only helper.
func (g *Gateway) Records() []types.AttendanceRecord {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return slices.Clone(g.records)
}

func (g *Gateway) fault(op Op) error {
	return g.faults[op]
}

func (g *Gateway) FindLatestRecord(_ context.Context, studentNo string) (*types.AttendanceRecord, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if err := g.fault(OpFindLatest); err != nil {
		return nil, err
	}

	var latest *types.AttendanceRecord
	for i := range g.records {
		r := g.records[i]
		if r.StudentNo != studentNo {
			continue
		}
		if latest == nil || newer(r, *latest) {
			rc := r
			latest = &rc
		}
	}
	return latest, nil
}

func (g *Gateway) FindSpecificRecord(_ context.Context, recordID int64) (*types.AttendanceRecord, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if err := g.fault(OpFindSpecific); err != nil {
		return nil, err
	}

	for _, r := range g.records {
		if r.ID == recordID {
			rc := r
			return &rc, nil
		}
	}
	return nil, nil
}

func (g *Gateway) Insert(_ context.Context, studentNo string, ts time.Time, status types.Status) (types.AttendanceRecord, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.fault(OpInsert); err != nil {
		return types.AttendanceRecord{}, err
	}

	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	rec := types.AttendanceRecord{
		ID:        g.nextID,
		StudentNo: strings.TrimSpace(studentNo),
		Timestamp: ts.UTC(),
		Status:    status,
	}
	g.nextID++
	g.records = append(g.records, rec)
	return rec, nil
}

func (g *Gateway) ListRecordsByTimestampDesc(_ context.Context) ([]types.AttendanceRecord, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if err := g.fault(OpList); err != nil {
		return nil, err
	}

	out := slices.Clone(g.records)
	slices.SortStableFunc(out, func(a, b types.AttendanceRecord) int {
		switch {
		case newer(a, b):
			return -1
		case newer(b, a):
			return 1
		}
		return 0
	})
	return out, nil
}

func (g *Gateway) FindStudent(_ context.Context, studentNo string) (*types.Student, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if err := g.fault(OpFindStudent); err != nil {
		return nil, err
	}

	st, ok := g.students[studentNo]
	if !ok {
		return nil, nil
	}
	return &st, nil
}

func (g *Gateway) FindPicture(_ context.Context, studentNo string) ([]byte, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if err := g.fault(OpFindPicture); err != nil {
		return nil, err
	}

	p, ok := g.pictures[studentNo]
	if !ok {
		return nil, nil
	}
	return slices.Clone(p), nil
}

// newer orders by timestamp, then by ID for records sharing a timestamp.
func newer(a, b types.AttendanceRecord) bool {
	if !a.Timestamp.Equal(b.Timestamp) {
		return a.Timestamp.After(b.Timestamp)
	}
	return a.ID > b.ID
}
