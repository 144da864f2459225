package types_test

import (
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itsariadust/qrattendance/station/internal/attendance/types"
)

func TestStatusNext_Alternates(t *testing.T) {
	assert.Equal(t, types.StatusLoggedIn, types.Status("").Next())
	assert.Equal(t, types.StatusLoggedOut, types.StatusLoggedIn.Next())
	assert.Equal(t, types.StatusLoggedIn, types.StatusLoggedOut.Next())
}

func TestStudentFullName_SkipsEmptyParts(t *testing.T) {
	st := types.Student{FirstName: "Ana", MiddleName: "  ", LastName: "Reyes"}
	assert.Equal(t, "Ana Reyes", st.FullName())
}

func TestNewStudentInfo(t *testing.T) {
	ts := time.Date(2026, 3, 2, 8, 15, 0, 0, time.UTC)
	info := types.NewStudentInfo(
		types.Student{StudentNo: "2021-0001", FirstName: "Ana", LastName: "Reyes", ProgramID: "BSCS", YearLevel: 3},
		types.AttendanceRecord{ID: 7, StudentNo: "2021-0001", Timestamp: ts, Status: types.StatusLoggedIn},
	)

	assert.Equal(t, "2021-0001", info.StudentNo)
	assert.Equal(t, "Ana Reyes", info.Name)
	assert.Equal(t, "BSCS", info.Program)
	assert.Equal(t, "3", info.YearLevel)
	assert.Equal(t, types.StatusLoggedIn, info.Status)
	assert.Equal(t, "2026-03-02T08:15:00Z", info.Timestamp)
}

func TestFrame_ImageConversion(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 1))
	src.Set(0, 0, color.RGBA{R: 10, G: 20, B: 30, A: 255})
	src.Set(1, 0, color.RGBA{R: 200, G: 100, B: 50, A: 255})

	f := types.FrameFromImage(src)
	require.False(t, f.Empty())
	assert.Equal(t, []byte{10, 20, 30, 200, 100, 50}, f.Data)

	out := f.Image()
	require.NotNil(t, out)
	assert.Equal(t, color.RGBA{R: 200, G: 100, B: 50, A: 255}, out.RGBAAt(1, 0))
}

func TestFrame_TruncatedIsEmpty(t *testing.T) {
	f := types.Frame{Width: 4, Height: 4, Data: make([]byte, 10)}
	assert.True(t, f.Empty())
	assert.Nil(t, f.Image())
}
