//go:build gstreamer

// Package gstreamer reads webcam frames through a GStreamer pipeline:
//
//	v4l2src → videoconvert → videoscale → videorate → capsfilter(RGB) → appsink
//
// Build with -tags gstreamer; it needs the GStreamer development libraries.
package gstreamer

import (
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tinyzimmer/go-gst/gst"
	"github.com/tinyzimmer/go-gst/gst/app"

	"github.com/itsariadust/qrattendance/station/internal/attendance/types"
)

var errNotOpen = errors.New("gstreamer: camera not open")

// Config sets the negotiated output format.
type Config struct {
	Width  int
	Height int
	FPS    int
}

// Camera is a V4L2 webcam.  Read blocks until the pipeline delivers a frame.
type Camera struct {
	cfg    Config
	logger *log.Logger

	mu       sync.Mutex
	pipeline *gst.Pipeline
	sink     *app.Sink
	seq      uint64
}

func New(cfg Config, logger *log.Logger) *Camera {
	if cfg.Width <= 0 {
		cfg.Width = 1280
	}
	if cfg.Height <= 0 {
		cfg.Height = 720
	}
	if cfg.FPS <= 0 {
		cfg.FPS = 10
	}
	return &Camera{cfg: cfg, logger: logger}
}

// Open builds the pipeline for /dev/video<index> and sets it playing.
func (c *Camera) Open(index int) error {
	device := fmt.Sprintf("/dev/video%d", index)
	if _, err := os.Stat(device); err != nil {
		return fmt.Errorf("gstreamer: %w", err)
	}

	gst.Init(nil)

	pipeline, err := gst.NewPipeline("")
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}

	src, err := gst.NewElement("v4l2src")
	if err != nil {
		return fmt.Errorf("failed to create v4l2src: %w", err)
	}
	src.SetProperty("device", device)

	converter, err := gst.NewElement("videoconvert")
	if err != nil {
		return fmt.Errorf("failed to create videoconvert: %w", err)
	}
	scaler, err := gst.NewElement("videoscale")
	if err != nil {
		return fmt.Errorf("failed to create videoscale: %w", err)
	}
	rate, err := gst.NewElement("videorate")
	if err != nil {
		return fmt.Errorf("failed to create videorate: %w", err)
	}
	rate.SetProperty("drop-only", true)

	capsfilter, err := gst.NewElement("capsfilter")
	if err != nil {
		return fmt.Errorf("failed to create capsfilter: %w", err)
	}
	capsfilter.SetProperty("caps", gst.NewCapsFromString(fmt.Sprintf(
		"video/x-raw,format=RGB,width=%d,height=%d,framerate=%d/1",
		c.cfg.Width, c.cfg.Height, c.cfg.FPS)))

	sink, err := app.NewAppSink()
	if err != nil {
		return fmt.Errorf("failed to create appsink: %w", err)
	}
	sink.SetProperty("sync", false)
	sink.SetProperty("max-buffers", 1)
	sink.SetProperty("drop", true)

	if err := pipeline.AddMany(src, converter, scaler, rate, capsfilter, sink.Element); err != nil {
		return fmt.Errorf("failed to add pipeline elements: %w", err)
	}
	if err := gst.ElementLinkMany(src, converter, scaler, rate, capsfilter, sink.Element); err != nil {
		return fmt.Errorf("failed to link pipeline elements: %w", err)
	}
	if err := pipeline.SetState(gst.StatePlaying); err != nil {
		_ = pipeline.SetState(gst.StateNull)
		return fmt.Errorf("failed to start pipeline on %s: %w", device, err)
	}

	c.mu.Lock()
	c.pipeline = pipeline
	c.sink = sink
	c.mu.Unlock()

	c.logger.Printf("gstreamer camera opened (device=%s, %dx%d@%dfps)",
		device, c.cfg.Width, c.cfg.Height, c.cfg.FPS)
	return nil
}

// Read pulls the next sample.  It reports false on EOS, after Release, or
// when the buffer does not hold a full RGB frame.
func (c *Camera) Read() (types.Frame, bool) {
	c.mu.Lock()
	sink := c.sink
	c.mu.Unlock()
	if sink == nil {
		return types.Frame{}, false
	}

	sample := sink.PullSample()
	if sample == nil {
		return types.Frame{}, false
	}
	buffer := sample.GetBuffer()
	if buffer == nil {
		return types.Frame{}, false
	}

	mapInfo := buffer.Map(gst.MapRead)
	data := packRGB(mapInfo.Bytes(), c.cfg.Width, c.cfg.Height)
	buffer.Unmap()
	if data == nil {
		c.logger.Printf("gstreamer: short buffer, frame dropped")
		return types.Frame{}, false
	}

	c.mu.Lock()
	c.seq++
	seq := c.seq
	c.mu.Unlock()

	return types.Frame{
		Seq:       seq,
		Timestamp: time.Now(),
		Width:     c.cfg.Width,
		Height:    c.cfg.Height,
		Data:      data,
		TraceID:   uuid.New().String(),
	}, true
}

func (c *Camera) Release() error {
	c.mu.Lock()
	pipeline := c.pipeline
	c.pipeline = nil
	c.sink = nil
	c.mu.Unlock()

	if pipeline == nil {
		return errNotOpen
	}
	if err := pipeline.SetState(gst.StateNull); err != nil {
		return fmt.Errorf("gstreamer: stop pipeline: %w", err)
	}
	return nil
}

// packRGB copies a mapped buffer into a tightly packed RGB slice, dropping
// GStreamer's 4-byte row padding.  It returns nil for a short buffer.
func packRGB(src []byte, width, height int) []byte {
	row := width * 3
	if height <= 0 || len(src) < row*height {
		return nil
	}
	stride := len(src) / height
	if stride == row {
		out := make([]byte, row*height)
		copy(out, src)
		return out
	}
	out := make([]byte, 0, row*height)
	for y := 0; y < height; y++ {
		out = append(out, src[y*stride:y*stride+row]...)
	}
	return out
}
