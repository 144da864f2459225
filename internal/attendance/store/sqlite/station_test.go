package sqlite_test

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itsariadust/qrattendance/station/internal/attendance/capture"
	"github.com/itsariadust/qrattendance/station/internal/attendance/service"
	"github.com/itsariadust/qrattendance/station/internal/attendance/store/sqlite"
	"github.com/itsariadust/qrattendance/station/internal/attendance/types"
	"github.com/itsariadust/qrattendance/station/internal/camera/fake"
	"github.com/itsariadust/qrattendance/station/internal/display"
	"github.com/itsariadust/qrattendance/station/internal/httpapi"
)

type payloadDecoder struct{}

func (payloadDecoder) Decode(f types.Frame) string { return string(f.Data) }

// TestStation_EndToEnd runs the whole station over sqlite: three badges go
// past the camera, the poll loop republishes the log, and the HTTP surface
// serves the result.
func TestStation_EndToEnd(t *testing.T) {
	conn := openTestDB(t)
	seedStudent(t, conn, "2021-0001", []byte("\xff\xd8\xff\xe0jpeg"))
	gw := sqlite.NewGateway(conn, newTestWriter(t, conn))
	logger := log.New(io.Discard, "", 0)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sink := display.New(logger)
	go sink.Run(ctx)

	cam := fake.New(
		fake.Payload("2021-0001"),
		fake.Payload(""),
		fake.Payload("9999-9999"),
		fake.Payload("2021-0001"),
	)
	loop := capture.NewLoop(cam, payloadDecoder{}, service.NewToggleEngine(gw, logger), sink,
		capture.LoopConfig{Cooldown: 10 * time.Millisecond, ReadBackoff: 5 * time.Millisecond}, logger)
	require.NoError(t, loop.Start(ctx))
	t.Cleanup(loop.Stop)

	poller := service.NewPollLoop(gw, sink, service.PollConfig{Interval: 10 * time.Millisecond}, logger)
	poller.Start(ctx)
	t.Cleanup(poller.Stop)

	srv := httpapi.NewServer(httpapi.Dependencies{
		Logger:  logger,
		Addr:    ":0",
		Display: sink,
		Capture: loop,
		Records: service.NewRecordLookup(gw),
	})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	var logResp httpapi.LogResponse
	require.Eventually(t, func() bool {
		resp, err := http.Get(ts.URL + "/v1/log")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		if err := json.NewDecoder(resp.Body).Decode(&logResp); err != nil {
			return false
		}
		return len(logResp.Rows) == 2
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, types.StatusLoggedOut, logResp.Rows[0].Status, "newest first")
	assert.Equal(t, types.StatusLoggedIn, logResp.Rows[1].Status)
	assert.False(t, logResp.Rows[0].Timestamp.Before(logResp.Rows[1].Timestamp))

	var status httpapi.StatusResponse
	require.Eventually(t, func() bool {
		resp, err := http.Get(ts.URL + "/v1/status")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		status = httpapi.StatusResponse{}
		if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
			return false
		}
		return status.Student != nil && status.Student.Status == types.StatusLoggedOut && status.HasPicture
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, "2021-0001", status.Student.StudentNo)
	assert.Nil(t, status.Notice, "the invalid badge notice is replaced by the next scan")

	pic, err := http.Get(ts.URL + "/v1/students/2021-0001/picture")
	require.NoError(t, err)
	defer pic.Body.Close()
	assert.Equal(t, http.StatusOK, pic.StatusCode)
	assert.Equal(t, "image/jpeg", pic.Header.Get("Content-Type"))
}
