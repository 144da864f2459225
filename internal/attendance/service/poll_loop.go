package service

import (
	"context"
	"log"
	"slices"
	"sync"
	"time"

	"github.com/itsariadust/qrattendance/station/internal/attendance/store"
	"github.com/itsariadust/qrattendance/station/internal/attendance/types"
)

// LogSink receives complete log snapshots.  Implementations must not block.
type LogSink interface {
	RefreshLog(rows []types.AttendanceRecord)
}

// PollLoop periodically republishes the full attendance log.  It runs as a
// background goroutine independent of the capture loop and is stopped via
// its context or the Stop method.
type PollLoop struct {
	store    store.AttendanceStore
	sink     LogSink
	interval time.Duration
	logger   *log.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	started bool
}

// PollConfig holds the parameters for NewPollLoop.
type PollConfig struct {
	// Interval between refreshes.  Defaults to 2s.
	Interval time.Duration
}

// NewPollLoop creates a poll loop but does not start it.
func NewPollLoop(s store.AttendanceStore, sink LogSink, cfg PollConfig, logger *log.Logger) *PollLoop {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 2 * time.Second
	}

	return &PollLoop{
		store:    s,
		sink:     sink,
		interval: interval,
		logger:   logger,
		done:     make(chan struct{}),
	}
}

// Start runs an immediate refresh, then repeats on the configured interval
// until ctx is cancelled or Stop is called.  Calling Start twice is a no-op.
func (p *PollLoop) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return
	}
	p.started = true

	ctx, p.cancel = context.WithCancel(ctx)
	go p.loop(ctx)

	p.logger.Printf("poll loop started (interval=%s)", p.interval)
}

// Stop signals the loop to exit and waits for it.  Safe to call repeatedly,
// and before Start.
func (p *PollLoop) Stop() {
	p.mu.Lock()
	if !p.started {
		p.started = true
		close(p.done)
	}
	cancel := p.cancel
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	<-p.done
}

func (p *PollLoop) loop(ctx context.Context) {
	defer close(p.done)

	p.Tick(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Tick(ctx)
		}
	}
}

// Tick performs one refresh.  A store failure is logged and the sink keeps
// its previous snapshot; the next tick tries again.
func (p *PollLoop) Tick(ctx context.Context) bool {
	rows, err := p.store.ListRecordsByTimestampDesc(ctx)
	if err != nil {
		if ctx.Err() == nil {
			p.logger.Printf("poll loop: refresh skipped: %v", err)
		}
		return false
	}

	slices.SortStableFunc(rows, func(a, b types.AttendanceRecord) int {
		if c := b.Timestamp.Compare(a.Timestamp); c != 0 {
			return c
		}
		switch {
		case a.ID > b.ID:
			return -1
		case a.ID < b.ID:
			return 1
		}
		return 0
	})

	p.sink.RefreshLog(rows)
	return true
}
