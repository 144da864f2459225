// Package imagedir is a camera that plays back still images from a directory.
// It stands in for a webcam on machines without one: drop QR badge photos
// into the directory and the station scans them in name order, looping.
package imagedir

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/itsariadust/qrattendance/station/internal/attendance/types"
)

var ErrNoImages = errors.New("imagedir: no images found")

// Camera cycles through the images in Dir at FPS frames per second.
type Camera struct {
	dir      string
	interval time.Duration
	logger   *log.Logger

	mu     sync.Mutex
	frames []types.Frame
	names  []string
	next   int
	seq    uint64
	last   time.Time
	open   bool
}

func New(dir string, fps int, logger *log.Logger) *Camera {
	if fps <= 0 {
		fps = 10
	}
	return &Camera{
		dir:      dir,
		interval: time.Second / time.Duration(fps),
		logger:   logger,
	}
}

// Open loads every .png/.jpg/.jpeg file in the directory.  The device index is
// only logged; a directory has one "device".
func (c *Camera) Open(index int) error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return fmt.Errorf("imagedir: read %s: %w", c.dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".png", ".jpg", ".jpeg":
			names = append(names, e.Name())
		}
	}
	slices.Sort(names)

	frames := make([]types.Frame, 0, len(names))
	kept := make([]string, 0, len(names))
	for _, name := range names {
		f, err := load(filepath.Join(c.dir, name))
		if err != nil {
			c.logger.Printf("imagedir: skip %s: %v", name, err)
			continue
		}
		frames = append(frames, f)
		kept = append(kept, name)
	}
	if len(frames) == 0 {
		return fmt.Errorf("%w in %s", ErrNoImages, c.dir)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = frames
	c.names = kept
	c.next = 0
	c.open = true

	c.logger.Printf("imagedir camera opened (index=%d, dir=%s, images=%d)", index, c.dir, len(frames))
	return nil
}

// Read returns the next image, waiting as needed to hold the frame rate.
func (c *Camera) Read() (types.Frame, bool) {
	c.mu.Lock()
	if !c.open {
		c.mu.Unlock()
		return types.Frame{}, false
	}
	wait := c.interval - time.Since(c.last)
	c.mu.Unlock()

	if wait > 0 {
		time.Sleep(wait)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.open {
		return types.Frame{}, false
	}

	f := c.frames[c.next]
	c.next = (c.next + 1) % len(c.frames)
	c.seq++
	c.last = time.Now()

	f.Seq = c.seq
	f.Timestamp = c.last
	f.TraceID = uuid.NewString()
	return f, true
}

func (c *Camera) Release() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open = false
	c.frames = nil
	c.names = nil
	return nil
}

// Names returns the loaded file names in playback order.
func (c *Camera) Names() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.names)
}

func load(path string) (types.Frame, error) {
	fh, err := os.Open(path)
	if err != nil {
		return types.Frame{}, err
	}
	defer fh.Close()

	img, _, err := image.Decode(fh)
	if err != nil {
		return types.Frame{}, err
	}
	return types.FrameFromImage(img), nil
}
