package httpapi

import (
	"time"

	"github.com/itsariadust/qrattendance/station/internal/attendance/capture"
	"github.com/itsariadust/qrattendance/station/internal/attendance/types"
	"github.com/itsariadust/qrattendance/station/internal/display"
)

// ── Status ───────────────────────────────────────────────────────────────────

type StatusResponse struct {
	CaptureState string             `json:"capture_state"`
	Student      *types.StudentInfo `json:"student"`
	HasPicture   bool               `json:"has_picture"`
	Notice       *display.Notice    `json:"notice"`
	StatusAt     string             `json:"status_at,omitempty"`
	FrameSeq     uint64             `json:"frame_seq"`
	ServerTime   string             `json:"server_time"`
}

func statusFromView(v *display.View, state capture.State, now time.Time) StatusResponse {
	resp := StatusResponse{
		CaptureState: state.String(),
		Student:      v.Info,
		HasPicture:   len(v.Picture) > 0,
		Notice:       v.Notice,
		ServerTime:   now.Format(time.RFC3339),
	}
	if !v.StatusAt.IsZero() {
		resp.StatusAt = v.StatusAt.Format(time.RFC3339)
	}
	if v.Frame != nil {
		resp.FrameSeq = v.Frame.Seq
	}
	return resp
}

// ── Log ──────────────────────────────────────────────────────────────────────

type LogResponse struct {
	Loaded    bool                     `json:"loaded"`
	UpdatedAt string                   `json:"updated_at,omitempty"`
	Rows      []types.AttendanceRecord `json:"rows"`
}

func logFromView(v *display.View) LogResponse {
	resp := LogResponse{
		Loaded: v.LogLoaded,
		Rows:   v.Log,
	}
	if resp.Rows == nil {
		resp.Rows = []types.AttendanceRecord{}
	}
	if !v.LogAt.IsZero() {
		resp.UpdatedAt = v.LogAt.Format(time.RFC3339)
	}
	return resp
}
