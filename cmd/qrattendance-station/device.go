package main

import (
	"log"

	"github.com/itsariadust/qrattendance/station/internal/attendance/capture"
	"github.com/itsariadust/qrattendance/station/internal/camera/imagedir"
	"github.com/itsariadust/qrattendance/station/internal/config"
)

func newDevice(cfg config.Config, logger *log.Logger) (capture.Device, error) {
	if cfg.Camera == "gstreamer" {
		return newGStreamerDevice(cfg, logger)
	}
	return imagedir.New(cfg.CameraDir, cfg.CameraFPS, logger), nil
}
