// Package fake provides a deterministic in-memory camera for tests and demos.
package fake

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/itsariadust/qrattendance/station/internal/attendance/types"
)

var errNotOpen = errors.New("fake camera: not open")

// Camera replays a fixed frame sequence.  Once the sequence is exhausted Read
// reports failure, unless Repeat was set.
type Camera struct {
	mu       sync.Mutex
	frames   []types.Frame
	next     int
	seq      uint64
	repeat   bool
	delay    time.Duration
	openErr  error
	open     bool
	index    int
	reads    int
	released int
}

func New(frames ...types.Frame) *Camera {
	return &Camera{frames: frames, index: -1}
}

// Repeat makes the camera cycle through its frames forever.
func (c *Camera) Repeat() *Camera {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.repeat = true
	return c
}

// WithDelay makes every Read block for d, like a real device pacing at its
// frame rate.
func (c *Camera) WithDelay(d time.Duration) *Camera {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.delay = d
	return c
}

// FailOpen makes Open return err.
func (c *Camera) FailOpen(err error) *Camera {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.openErr = err
	return c
}

// Push appends frames to the end of the sequence.
func (c *Camera) Push(frames ...types.Frame) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = append(c.frames, frames...)
}

func (c *Camera) Open(index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.openErr != nil {
		return c.openErr
	}
	c.open = true
	c.index = index
	return nil
}

func (c *Camera) Read() (types.Frame, bool) {
	c.mu.Lock()
	delay := c.delay
	c.mu.Unlock()
	if delay > 0 {
		time.Sleep(delay)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.reads++

	if !c.open || len(c.frames) == 0 {
		return types.Frame{}, false
	}
	if c.next >= len(c.frames) {
		if !c.repeat {
			return types.Frame{}, false
		}
		c.next = 0
	}

	f := c.frames[c.next]
	c.next++
	c.seq++

	f.Seq = c.seq
	if f.Timestamp.IsZero() {
		f.Timestamp = time.Now()
	}
	if f.TraceID == "" {
		f.TraceID = uuid.NewString()
	}
	return f, true
}

func (c *Camera) Release() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.released++
	if !c.open {
		return errNotOpen
	}
	c.open = false
	return nil
}

// Reads returns how many times Read was called, successful or not.
func (c *Camera) Reads() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reads
}

// Released returns how many times Release was called.
func (c *Camera) Released() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.released
}

// Index returns the device index passed to the last successful Open, or -1.
func (c *Camera) Index() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index
}

// IsOpen reports whether the camera is open.
func (c *Camera) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

// Payload builds a frame that carries text in place of pixels.  It is meant
// for tests that pair the camera with a stub decoder.
func Payload(text string) types.Frame {
	return types.Frame{Data: []byte(text)}
}
