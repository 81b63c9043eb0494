// Package capture takes the just-in-time screen captures the locator works
// on and keeps a copy on disk for diagnosis.
package capture

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/mj1618/visual-runner/internal/platform"
	"go.uber.org/zap"
)

// LatestFile is the name of the most recent capture inside the runtime dir.
const LatestFile = "process_screen.png"

// Capturer produces a fresh screen image on every call. Nothing is cached.
type Capturer struct {
	shot    platform.Screenshotter
	dir     string
	history string // subdirectory for per-step copies; empty disables
	logger  *zap.Logger
}

// Option configures a Capturer.
type Option func(*Capturer)

// WithHistory keeps every capture as <dir>/<sub>/<label>.png.
func WithHistory(sub string) Option {
	return func(c *Capturer) { c.history = sub }
}

// WithLogger sets the logger used for persistence warnings.
func WithLogger(l *zap.Logger) Option {
	return func(c *Capturer) { c.logger = l }
}

// New creates a Capturer persisting into dir. An empty dir disables persistence.
func New(shot platform.Screenshotter, dir string, opts ...Option) *Capturer {
	c := &Capturer{shot: shot, dir: dir, logger: zap.NewNop()}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Capture grabs the screen. Failing to persist the diagnostic copy is
// logged and does not fail the capture.
func (c *Capturer) Capture(label string) (image.Image, error) {
	img, err := c.shot.CaptureScreen()
	if err != nil {
		return nil, err
	}
	if c.dir == "" {
		return img, nil
	}
	if err := Save(filepath.Join(c.dir, LatestFile), img); err != nil {
		c.logger.Warn("Could not persist screenshot", zap.Error(err))
	}
	if c.history != "" && label != "" {
		if err := Save(filepath.Join(c.dir, c.history, label+".png"), img); err != nil {
			c.logger.Warn("Could not persist screenshot history", zap.String("label", label), zap.Error(err))
		}
	}
	return img, nil
}

// Save writes img to path as PNG, creating parent directories.
func Save(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create %s: %w", tmp, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}
