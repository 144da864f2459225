package capture

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/itsariadust/qrattendance/station/internal/attendance/service"
)

// LoopConfig holds the parameters for NewLoop.
type LoopConfig struct {
	// DeviceIndex is passed to Device.Open.
	DeviceIndex int

	// Cooldown is how long scanning is suspended after a decoded code.
	// Defaults to 2s.
	Cooldown time.Duration

	// ReadBackoff is the wait after a failed frame read.  Defaults to 500ms.
	ReadBackoff time.Duration

	// DisplayDuringCooldown keeps frames flowing to the sink while scanning
	// is suspended.
	DisplayDuringCooldown bool

	// OnStateChange, if set, is called from the loop goroutine on every
	// state transition.
	OnStateChange func(State)
}

// Loop is the capture loop.  Start it once; Stop releases the camera.
type Loop struct {
	device  Device
	decoder FrameDecoder
	toggler Toggler
	sink    Sink
	cfg     LoopConfig
	logger  *log.Logger

	running atomic.Bool
	state   atomic.Int32

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	done    chan struct{}
}

func NewLoop(dev Device, dec FrameDecoder, tog Toggler, sink Sink, cfg LoopConfig, logger *log.Logger) *Loop {
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 2 * time.Second
	}
	if cfg.ReadBackoff <= 0 {
		cfg.ReadBackoff = 500 * time.Millisecond
	}

	l := &Loop{
		device:  dev,
		decoder: dec,
		toggler: tog,
		sink:    sink,
		cfg:     cfg,
		logger:  logger,
		done:    make(chan struct{}),
	}
	l.state.Store(int32(StateRunning))
	return l
}

// State returns the current lifecycle state.
func (l *Loop) State() State {
	return State(l.state.Load())
}

// Start opens the camera and launches the loop goroutine.  A camera that
// cannot be opened leaves the loop Stopped and returns ErrDeviceUnavailable.
func (l *Loop) Start(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.started {
		return errors.New("capture loop already started")
	}
	l.started = true

	if err := l.device.Open(l.cfg.DeviceIndex); err != nil {
		l.setState(StateStopped)
		close(l.done)
		l.logger.Printf("capture: open device %d: %v", l.cfg.DeviceIndex, err)
		return fmt.Errorf("%w: index %d: %w", ErrDeviceUnavailable, l.cfg.DeviceIndex, err)
	}

	ctx, l.cancel = context.WithCancel(ctx)
	l.running.Store(true)
	go l.run(ctx)

	l.logger.Printf("capture loop started (device=%d, cooldown=%s, backoff=%s)",
		l.cfg.DeviceIndex, l.cfg.Cooldown, l.cfg.ReadBackoff)
	return nil
}

// Stop ends the loop, waits for the camera to be released, and leaves the
// loop Stopped.  Safe to call repeatedly, and before Start.
func (l *Loop) Stop() {
	l.mu.Lock()
	if !l.started {
		l.started = true
		l.setState(StateStopped)
		close(l.done)
	}
	cancel := l.cancel
	l.mu.Unlock()

	l.running.Store(false)
	if cancel != nil {
		cancel()
	}
	<-l.done
}

// Done is closed once the loop has exited and released the camera.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

func (l *Loop) run(ctx context.Context) {
	defer close(l.done)
	defer func() {
		if err := l.device.Release(); err != nil {
			l.logger.Printf("capture: release device: %v", err)
		}
		l.setState(StateStopped)
		l.logger.Printf("capture loop stopped")
	}()

	for l.running.Load() && ctx.Err() == nil {
		frame, ok := l.device.Read()
		if !ok {
			l.wait(ctx, l.cfg.ReadBackoff)
			continue
		}

		l.sink.UpdateFrame(frame)

		id := l.decoder.Decode(frame)
		if id == "" {
			continue
		}

		l.scan(ctx, id)
		l.cooldown(ctx)
	}
}

// scan runs the toggle for one decoded identifier and reports the outcome.
func (l *Loop) scan(ctx context.Context, id string) {
	res, err := l.toggler.Process(ctx, id)
	switch {
	case err == nil:
		l.sink.DisplayStudentInfo(res.Info)
		if res.Picture != nil {
			l.sink.DisplayImage(res.Picture)
		}
	case errors.Is(err, service.ErrInvalidIdentifier):
		l.sink.InvalidIdentifierNotice(id)
	case errors.Is(err, service.ErrStoreWriteFailure):
		l.logger.Printf("capture: scan %q not saved: %v", id, err)
		l.sink.ScanFailedNotice(id, "attendance could not be saved")
	default:
		l.logger.Printf("capture: scan %q failed: %v", id, err)
		l.sink.ScanFailedNotice(id, "attendance records unavailable")
	}
}

// cooldown suspends scanning for the configured duration.  No frame read
// during this window is decoded.
func (l *Loop) cooldown(ctx context.Context) {
	l.setState(StateCooldown)
	defer func() {
		if l.running.Load() && ctx.Err() == nil {
			l.setState(StateRunning)
		}
	}()

	if !l.cfg.DisplayDuringCooldown {
		l.wait(ctx, l.cfg.Cooldown)
		return
	}

	deadline := time.Now().Add(l.cfg.Cooldown)
	for l.running.Load() && ctx.Err() == nil {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return
		}
		frame, ok := l.device.Read()
		if !ok {
			l.wait(ctx, min(l.cfg.ReadBackoff, remaining))
			continue
		}
		l.sink.UpdateFrame(frame)
	}
}

// wait sleeps for d or until ctx is cancelled.
func (l *Loop) wait(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func (l *Loop) setState(s State) {
	if State(l.state.Swap(int32(s))) == s {
		return
	}
	if l.cfg.OnStateChange != nil {
		l.cfg.OnStateChange(s)
	}
}
