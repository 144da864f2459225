// Package decode turns camera frames into QR payload strings.
package decode

import (
	"log"
	"strings"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"

	"github.com/itsariadust/qrattendance/station/internal/attendance/types"
)

// Decoder finds a QR code in a frame.  A Decoder is not safe for concurrent
// use; the capture loop owns exactly one.
type Decoder struct {
	reader gozxing.Reader
	hints  map[gozxing.DecodeHintType]interface{}
	logger *log.Logger
}

// New returns a Decoder.  When tryHarder is set the reader spends more time
// per frame looking for a code, which helps with small or skewed badges.
func New(tryHarder bool, logger *log.Logger) *Decoder {
	var hints map[gozxing.DecodeHintType]interface{}
	if tryHarder {
		hints = map[gozxing.DecodeHintType]interface{}{
			gozxing.DecodeHintType_TRY_HARDER: true,
		}
	}
	return &Decoder{
		reader: qrcode.NewQRCodeReader(),
		hints:  hints,
		logger: logger,
	}
}

// Decode returns the trimmed payload of the first QR code in f, or "" when the
// frame is empty, malformed, or holds no readable code.  It never fails.
func (d *Decoder) Decode(f types.Frame) (text string) {
	img := f.Image()
	if img == nil {
		return ""
	}

	defer func() {
		if r := recover(); r != nil {
			d.logger.Printf("decode: frame=%s recovered: %v", f.TraceID, r)
			text = ""
		}
	}()

	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return ""
	}
	defer d.reader.Reset()

	res, err := d.reader.Decode(bmp, d.hints)
	if err != nil {
		return ""
	}

	return strings.TrimSpace(res.GetText())
}
