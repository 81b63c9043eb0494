package platform

import (
	"fmt"
	"runtime"
)

// Provider bundles all platform backends for the current OS.
type Provider struct {
	Inputter      Inputter
	Screenshotter Screenshotter
	Launcher      Launcher
}

// ErrUnsupported is returned when no backend is compiled in.
var ErrUnsupported = fmt.Errorf("visual-runner has no desktop backend for %s/%s (build with CGO_ENABLED=1)", runtime.GOOS, runtime.GOARCH)

// NewProviderFunc is set by backend packages via init().
// See internal/platform/desktop/init.go.
var NewProviderFunc func() (*Provider, error)

// NewProvider returns a Provider for the current OS.
func NewProvider() (*Provider, error) {
	if NewProviderFunc == nil {
		return nil, ErrUnsupported
	}
	return NewProviderFunc()
}
