package imagedir

import (
	"image"
	"image/color"
	"image/png"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, dir, name string, c color.Color) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, c)
		}
	}
	fh, err := os.Create(filepath.Join(dir, name))
	require.NoError(t, err)
	require.NoError(t, png.Encode(fh, img))
	require.NoError(t, fh.Close())
}

func newTestCamera(dir string, fps int) *Camera {
	return New(dir, fps, log.New(io.Discard, "", 0))
}

func TestCamera_CyclesImagesInNameOrder(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, dir, "b.png", color.RGBA{G: 0xff, A: 0xff})
	writePNG(t, dir, "a.png", color.RGBA{R: 0xff, A: 0xff})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	c := newTestCamera(dir, 1000)
	require.NoError(t, c.Open(0))
	assert.Equal(t, []string{"a.png", "b.png"}, c.Names())

	f1, ok := c.Read()
	require.True(t, ok)
	f2, ok := c.Read()
	require.True(t, ok)
	f3, ok := c.Read()
	require.True(t, ok)

	assert.Equal(t, 4, f1.Width)
	assert.Equal(t, 2, f1.Height)
	assert.Equal(t, byte(0xff), f1.Data[0], "a.png is red")
	assert.Equal(t, byte(0xff), f2.Data[1], "b.png is green")
	assert.Equal(t, f1.Data, f3.Data, "playback loops")
	assert.Less(t, f1.Seq, f2.Seq)
	assert.NotEqual(t, f1.TraceID, f2.TraceID)
}

func TestCamera_SkipsUnreadableFiles(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, dir, "ok.png", color.White)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.jpg"), []byte("not a jpeg"), 0o644))

	c := newTestCamera(dir, 1000)
	require.NoError(t, c.Open(0))
	assert.Equal(t, []string{"ok.png"}, c.Names())
}

func TestCamera_OpenErrors(t *testing.T) {
	c := newTestCamera(filepath.Join(t.TempDir(), "missing"), 10)
	assert.Error(t, c.Open(0))

	c = newTestCamera(t.TempDir(), 10)
	assert.ErrorIs(t, c.Open(0), ErrNoImages)
}

func TestCamera_HoldsFrameRate(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, dir, "a.png", color.White)

	c := newTestCamera(dir, 20)
	require.NoError(t, c.Open(0))

	start := time.Now()
	for i := 0; i < 4; i++ {
		_, ok := c.Read()
		require.True(t, ok)
	}
	assert.GreaterOrEqual(t, time.Since(start), 140*time.Millisecond)
}

func TestCamera_ReadAfterRelease(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, dir, "a.png", color.White)

	c := newTestCamera(dir, 1000)
	require.NoError(t, c.Open(0))
	require.NoError(t, c.Release())

	_, ok := c.Read()
	assert.False(t, ok)
}
