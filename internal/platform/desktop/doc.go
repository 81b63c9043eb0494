// Package desktop provides the cross-platform desktop backend: robotgo for
// pointer and keyboard input, vova616/screenshot for screen capture, and the
// system browser for launching the target application.
//
// The backend needs cgo; without it platform.NewProvider reports
// platform.ErrUnsupported.
package desktop
