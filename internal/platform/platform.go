package platform

import "image"

// Inputter simulates mouse and keyboard input. Coordinates are in screen
// capture pixels; backends translate them to the OS coordinate space.
type Inputter interface {
	Click(x, y int, button MouseButton, count int) error
	MoveMouse(x, y int) error
	// TypeText emits text one character at a time, pausing delayMs between
	// keystrokes.
	TypeText(text string, delayMs int) error
}

// Screenshotter captures the screen.
type Screenshotter interface {
	// CaptureScreen returns a fresh capture of the primary display.
	CaptureScreen() (image.Image, error)
}

// Launcher opens the application under automation.
type Launcher interface {
	// Open opens target (usually a URL) in its default handler.
	Open(target string) error
}
