//go:build cgo

package desktop

import (
	"fmt"
	"io"

	"github.com/pkg/browser"
)

// Launcher opens URLs with the system's default browser.
type Launcher struct{}

// NewLauncher creates a launcher and silences the browser helper's output.
func NewLauncher() *Launcher {
	browser.Stdout = io.Discard
	browser.Stderr = io.Discard
	return &Launcher{}
}

func (l *Launcher) Open(target string) error {
	if err := browser.OpenURL(target); err != nil {
		return fmt.Errorf("open %s: %w", target, err)
	}
	return nil
}
