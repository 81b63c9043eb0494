//go:build cgo

package desktop

import (
	"fmt"
	"image"

	"github.com/go-vgo/robotgo"
	"github.com/vova616/screenshot"
)

// Screenshotter implements platform.Screenshotter for the primary display.
type Screenshotter struct{}

// NewScreenshotter creates a new screenshotter.
func NewScreenshotter() *Screenshotter {
	return &Screenshotter{}
}

// CaptureScreen captures the whole primary display in physical pixels.
func (s *Screenshotter) CaptureScreen() (image.Image, error) {
	img, err := screenshot.CaptureScreen()
	if err != nil {
		return nil, fmt.Errorf("screen capture failed: %w", err)
	}
	return img, nil
}

// Scale returns capture pixels per OS point, or 1 when it cannot be determined.
func (s *Screenshotter) Scale() float64 {
	rect, err := screenshot.ScreenRect()
	if err != nil {
		return 1
	}
	w, _ := robotgo.GetScreenSize()
	if w <= 0 || rect.Dx() <= 0 {
		return 1
	}
	return float64(rect.Dx()) / float64(w)
}
