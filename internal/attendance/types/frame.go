package types

import (
	"image"
	"image/color"
	"time"
)

// Frame represents a single camera frame with metadata.
type Frame struct {
	// Seq is the monotonic sequence number assigned by the device
	Seq uint64
	// Timestamp is when the frame was captured
	Timestamp time.Time
	// Width in pixels
	Width int
	// Height in pixels
	Height int
	// Data holds packed RGB pixels, 3 bytes per pixel, row-major
	Data []byte
	// TraceID identifies the frame in logs
	TraceID string
}

// Empty reports whether the frame carries no usable pixels.
func (f Frame) Empty() bool {
	return f.Width <= 0 || f.Height <= 0 || len(f.Data) < f.Width*f.Height*3
}

// Image converts the packed RGB data to an image.RGBA.  It returns nil for an
// empty or truncated frame.
func (f Frame) Image() *image.RGBA {
	if f.Empty() {
		return nil
	}
	img := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	src := 0
	for i := 0; i < f.Width*f.Height; i++ {
		dst := i * 4
		img.Pix[dst] = f.Data[src]
		img.Pix[dst+1] = f.Data[src+1]
		img.Pix[dst+2] = f.Data[src+2]
		img.Pix[dst+3] = 0xff
		src += 3
	}
	return img
}

// FrameFromImage packs any image into an RGB frame.  Seq, Timestamp and
// TraceID are left for the device to fill in.
func FrameFromImage(img image.Image) Frame {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	data := make([]byte, 0, w*h*3)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
			data = append(data, c.R, c.G, c.B)
		}
	}
	return Frame{Width: w, Height: h, Data: data}
}
