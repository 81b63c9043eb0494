//go:build cgo

package desktop

import "github.com/mj1618/visual-runner/internal/platform"

func init() {
	platform.NewProviderFunc = func() (*platform.Provider, error) {
		screenshotter := NewScreenshotter()
		return &platform.Provider{
			Inputter:      NewInputter(screenshotter.Scale()),
			Screenshotter: screenshotter,
			Launcher:      NewLauncher(),
		}, nil
	}
}
