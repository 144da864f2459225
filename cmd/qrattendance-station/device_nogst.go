//go:build !gstreamer

package main

import (
	"errors"
	"log"

	"github.com/itsariadust/qrattendance/station/internal/attendance/capture"
	"github.com/itsariadust/qrattendance/station/internal/config"
)

func newGStreamerDevice(config.Config, *log.Logger) (capture.Device, error) {
	return nil, errors.New("QRATTEND_CAMERA=gstreamer needs a build with -tags gstreamer")
}
