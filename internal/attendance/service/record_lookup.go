package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/itsariadust/qrattendance/station/internal/attendance/store"
	"github.com/itsariadust/qrattendance/station/internal/attendance/types"
)

// RecordLookup serves the detail view of a single log row.
type RecordLookup struct {
	gateway store.Gateway
}

func NewRecordLookup(gw store.Gateway) *RecordLookup {
	return &RecordLookup{gateway: gw}
}

func (l *RecordLookup) Detail(ctx context.Context, recordID int64) (types.RecordDetail, error) {
	rec, err := l.gateway.FindSpecificRecord(ctx, recordID)
	if err != nil {
		return types.RecordDetail{}, fmt.Errorf("%w: record %d: %w", ErrStoreUnavailable, recordID, err)
	}
	if rec == nil {
		return types.RecordDetail{}, ErrRecordNotFound
	}

	st, err := l.gateway.FindStudent(ctx, rec.StudentNo)
	if err != nil {
		return types.RecordDetail{}, fmt.Errorf("%w: student %s: %w", ErrStoreUnavailable, rec.StudentNo, err)
	}
	// The foreign key makes this unreachable on sqlite/postgres; keep the
	// record visible with just its student number if the roster lost the row.
	if st == nil {
		st = &types.Student{StudentNo: rec.StudentNo}
	}

	return types.RecordDetail{
		Record:  *rec,
		Student: *st,
		Info:    types.NewStudentInfo(*st, *rec),
	}, nil
}

func (l *RecordLookup) Picture(ctx context.Context, studentNo string) ([]byte, error) {
	studentNo = strings.TrimSpace(studentNo)
	if studentNo == "" {
		return nil, ErrPictureNotFound
	}

	pic, err := l.gateway.FindPicture(ctx, studentNo)
	if err != nil {
		return nil, fmt.Errorf("%w: picture %s: %w", ErrStoreUnavailable, studentNo, err)
	}
	if len(pic) == 0 {
		return nil, ErrPictureNotFound
	}
	return pic, nil
}
