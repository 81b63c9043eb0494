//go:build cgo

package desktop

import (
	"fmt"
	"math"
	"time"

	"github.com/go-vgo/robotgo"
	"github.com/mj1618/visual-runner/internal/platform"
)

// Inputter implements platform.Inputter with robotgo.
type Inputter struct {
	// scale is capture pixels per OS point (2 on a Retina display).
	scale float64
}

// NewInputter creates an inputter for captures taken at the given scale.
func NewInputter(scale float64) *Inputter {
	if scale <= 0 {
		scale = 1
	}
	return &Inputter{scale: scale}
}

func (inp *Inputter) toScreen(x, y int) (int, int) {
	return int(math.Round(float64(x) / inp.scale)), int(math.Round(float64(y) / inp.scale))
}

func (inp *Inputter) Click(x, y int, button platform.MouseButton, count int) (err error) {
	defer recoverInput(&err, "click at (%d, %d)", x, y)
	if count < 1 {
		count = 1
	}
	sx, sy := inp.toScreen(x, y)
	robotgo.Move(sx, sy)
	name := robotgoButton(button)
	for count >= 2 {
		robotgo.Click(name, true)
		count -= 2
	}
	if count == 1 {
		robotgo.Click(name, false)
	}
	return nil
}

func (inp *Inputter) MoveMouse(x, y int) (err error) {
	defer recoverInput(&err, "move mouse to (%d, %d)", x, y)
	sx, sy := inp.toScreen(x, y)
	robotgo.Move(sx, sy)
	return nil
}

func (inp *Inputter) TypeText(text string, delayMs int) (err error) {
	defer recoverInput(&err, "type %d characters", len([]rune(text)))
	for _, ch := range text {
		robotgo.TypeStr(string(ch))
		if delayMs > 0 {
			time.Sleep(time.Duration(delayMs) * time.Millisecond)
		}
	}
	return nil
}

func robotgoButton(b platform.MouseButton) string {
	switch b {
	case platform.MouseRight:
		return "right"
	case platform.MouseMiddle:
		return "center"
	default:
		return "left"
	}
}

// recoverInput converts a panic from the native input layer into an error.
func recoverInput(err *error, format string, args ...any) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("failed to %s: %v", fmt.Sprintf(format, args...), r)
	}
}
