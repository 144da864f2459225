package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/itsariadust/qrattendance/station/internal/attendance/store"
	"github.com/itsariadust/qrattendance/station/internal/attendance/types"
)

// ToggleEngine decides whether a scanned student is logging in or out and
// appends the matching attendance record.
//
// The read-decide-insert sequence is not wrapped in a transaction.  With a
// single scanning station the only writer is the capture loop, which calls
// Process synchronously, so consecutive scans of one student cannot interleave.
type ToggleEngine struct {
	gateway store.Gateway
	logger  *log.Logger
	now     func() time.Time
}

func NewToggleEngine(gw store.Gateway, logger *log.Logger) *ToggleEngine {
	return &ToggleEngine{
		gateway: gw,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the engine's time source.  Used by tests.
func (e *ToggleEngine) WithClock(now func() time.Time) *ToggleEngine {
	e.now = now
	return e
}

// Process toggles the attendance status of the student behind identifier.
//
// Errors are ErrInvalidIdentifier, ErrStoreUnavailable (lookup failed) or
// ErrStoreWriteFailure (insert failed).  None are retried.
func (e *ToggleEngine) Process(ctx context.Context, identifier string) (types.ScanResult, error) {
	scanID := uuid.NewString()
	studentNo := strings.TrimSpace(identifier)
	if studentNo == "" {
		return types.ScanResult{}, ErrInvalidIdentifier
	}

	st, err := e.gateway.FindStudent(ctx, studentNo)
	if err != nil {
		e.logger.Printf("scan=%s student=%s find student: %v", scanID, studentNo, err)
		return types.ScanResult{}, fmt.Errorf("%w: find student %s: %w", ErrStoreUnavailable, studentNo, err)
	}
	if st == nil {
		e.logger.Printf("scan=%s student=%s unknown identifier", scanID, studentNo)
		return types.ScanResult{}, fmt.Errorf("%w: %q", ErrInvalidIdentifier, studentNo)
	}

	latest, err := e.gateway.FindLatestRecord(ctx, studentNo)
	if err != nil {
		e.logger.Printf("scan=%s student=%s find latest record: %v", scanID, studentNo, err)
		return types.ScanResult{}, fmt.Errorf("%w: latest record %s: %w", ErrStoreUnavailable, studentNo, err)
	}

	var prev types.Status
	if latest != nil {
		prev = latest.Status
	}
	next := prev.Next()

	rec, err := e.gateway.Insert(ctx, studentNo, e.now(), next)
	if err != nil {
		e.logger.Printf("scan=%s student=%s insert %s: %v", scanID, studentNo, next, err)
		return types.ScanResult{}, fmt.Errorf("%w: insert %s: %w", ErrStoreWriteFailure, studentNo, err)
	}

	e.logger.Printf("scan=%s student=%s status=%q record=%d", scanID, studentNo, next, rec.ID)

	return types.ScanResult{
		ScanID:  scanID,
		Record:  rec,
		Student: *st,
		Info:    types.NewStudentInfo(*st, rec),
		Picture: e.picture(ctx, scanID, studentNo),
	}, nil
}

// picture is best-effort: by the time it runs the record is committed, so a
// failed read only costs the portrait.
func (e *ToggleEngine) picture(ctx context.Context, scanID, studentNo string) []byte {
	pic, err := e.gateway.FindPicture(ctx, studentNo)
	if err != nil {
		e.logger.Printf("scan=%s student=%s picture unavailable: %v", scanID, studentNo, err)
		return nil
	}
	return pic
}
