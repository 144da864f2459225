// Package display holds the station's presentation state.
//
// Producers (the capture loop and the poll loop) hand updates to a Sink
// without blocking; a single goroutine running Sink.Run folds them into an
// immutable View.  Each slot is last-write-wins: an update that arrives before
// the previous one was applied replaces it.
package display

import (
	"context"
	"log"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/itsariadust/qrattendance/station/internal/attendance/types"
)

// NoticeKind classifies a scan that did not produce a record.
type NoticeKind string

const (
	NoticeInvalidIdentifier NoticeKind = "invalid_identifier"
	NoticeScanFailed        NoticeKind = "scan_failed"
)

// Notice is shown in place of student details after a rejected scan.
type Notice struct {
	Kind       NoticeKind `json:"kind"`
	Identifier string     `json:"identifier"`
	Message    string     `json:"message"`
	At         time.Time  `json:"at"`
}

// View is one published presentation snapshot.  Views are never modified
// after publication.
type View struct {
	Version uint64

	Frame     *types.Frame
	Info      *types.StudentInfo
	Picture   []byte
	Notice    *Notice
	StatusAt  time.Time
	Log       []types.AttendanceRecord
	LogAt     time.Time
	LogLoaded bool
}

// pending holds the updates received since the last apply.
type pending struct {
	frame   *types.Frame
	info    *types.StudentInfo
	picture []byte
	hasPic  bool
	notice  *Notice
	log     []types.AttendanceRecord
	hasLog  bool
}

func (p pending) empty() bool {
	return p.frame == nil && p.info == nil && !p.hasPic && p.notice == nil && !p.hasLog
}

type Sink struct {
	mu      sync.Mutex
	pending pending

	wake   chan struct{}
	view   atomic.Pointer[View]
	logger *log.Logger
	now    func() time.Time
}

func New(logger *log.Logger) *Sink {
	s := &Sink{
		wake:   make(chan struct{}, 1),
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
	s.view.Store(&View{})
	return s
}

// Snapshot returns the latest published view.  It never returns nil.
func (s *Sink) Snapshot() *View {
	return s.view.Load()
}

// Run applies pending updates until ctx is cancelled.  Exactly one goroutine
// should call Run.
func (s *Sink) Run(ctx context.Context) {
	s.logger.Printf("display sink started")
	for {
		select {
		case <-ctx.Done():
			s.apply()
			s.logger.Printf("display sink stopped")
			return
		case <-s.wake:
			s.apply()
		}
	}
}

func (s *Sink) UpdateFrame(f types.Frame) {
	s.update(func(p *pending) { p.frame = &f })
}

func (s *Sink) DisplayStudentInfo(info types.StudentInfo) {
	s.update(func(p *pending) {
		p.info = &info
		p.notice = nil
	})
}

func (s *Sink) DisplayImage(picture []byte) {
	s.update(func(p *pending) {
		p.picture = slices.Clone(picture)
		p.hasPic = true
	})
}

func (s *Sink) InvalidIdentifierNotice(identifier string) {
	n := &Notice{
		Kind:       NoticeInvalidIdentifier,
		Identifier: identifier,
		Message:    "Invalid ID. Please try again.",
		At:         s.now(),
	}
	s.update(func(p *pending) { p.notice = n })
}

func (s *Sink) ScanFailedNotice(identifier, reason string) {
	n := &Notice{
		Kind:       NoticeScanFailed,
		Identifier: identifier,
		Message:    reason,
		At:         s.now(),
	}
	s.update(func(p *pending) { p.notice = n })
}

// RefreshLog replaces the log rows wholesale.
func (s *Sink) RefreshLog(rows []types.AttendanceRecord) {
	rows = slices.Clone(rows)
	s.update(func(p *pending) {
		p.log = rows
		p.hasLog = true
	})
}

func (s *Sink) update(fn func(*pending)) {
	s.mu.Lock()
	fn(&s.pending)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// apply folds the pending updates into a new view.
func (s *Sink) apply() {
	s.mu.Lock()
	p := s.pending
	s.pending = pending{}
	s.mu.Unlock()

	if p.empty() {
		return
	}

	prev := s.view.Load()
	next := *prev
	next.Version = prev.Version + 1
	now := s.now()

	if p.frame != nil {
		next.Frame = p.frame
	}
	if p.info != nil {
		next.Info = p.info
		next.Picture = nil
		next.Notice = nil
		next.StatusAt = now
	}
	if p.hasPic {
		next.Picture = p.picture
	}
	if p.notice != nil {
		next.Notice = p.notice
		next.StatusAt = now
	}
	if p.hasLog {
		next.Log = p.log
		next.LogAt = now
		next.LogLoaded = true
	}

	s.view.Store(&next)
}
