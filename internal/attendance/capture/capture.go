// Package capture runs the scanning loop: it owns the camera, feeds frames to
// the display and the decoder, toggles attendance on a hit, and holds a
// single station-wide cooldown after every scan.
package capture

import (
	"context"
	"errors"

	"github.com/itsariadust/qrattendance/station/internal/attendance/types"
)

// ErrDeviceUnavailable means the camera could not be opened.  It is returned
// once by Start and never retried.
var ErrDeviceUnavailable = errors.New("capture device unavailable")

// Device is a camera.  Read reports false when no frame could be acquired.
type Device interface {
	Open(index int) error
	Read() (types.Frame, bool)
	Release() error
}

// FrameDecoder extracts an identifier from a frame; "" means no code.
type FrameDecoder interface {
	Decode(f types.Frame) string
}

// Toggler records a scan for the identified student.
type Toggler interface {
	Process(ctx context.Context, identifier string) (types.ScanResult, error)
}

// Sink receives presentation updates.  Every method must return without
// blocking.
type Sink interface {
	UpdateFrame(f types.Frame)
	DisplayStudentInfo(info types.StudentInfo)
	DisplayImage(picture []byte)
	InvalidIdentifierNotice(identifier string)
	ScanFailedNotice(identifier, reason string)
}

// State is the capture loop's lifecycle state.
type State int32

const (
	StateRunning State = iota
	StateCooldown
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateCooldown:
		return "cooldown"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}
