//go:build gstreamer

package main

import (
	"log"

	"github.com/itsariadust/qrattendance/station/internal/attendance/capture"
	"github.com/itsariadust/qrattendance/station/internal/camera/gstreamer"
	"github.com/itsariadust/qrattendance/station/internal/config"
)

func newGStreamerDevice(cfg config.Config, logger *log.Logger) (capture.Device, error) {
	return gstreamer.New(gstreamer.Config{
		Width:  cfg.FrameWidth,
		Height: cfg.FrameHeight,
		FPS:    cfg.CameraFPS,
	}, logger), nil
}
