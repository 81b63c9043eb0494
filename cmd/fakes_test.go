package cmd

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/mj1618/visual-runner/internal/platform"
)

type fakeInputter struct {
	clicks  []image.Point
	buttons []platform.MouseButton
	typed   []string
}

func (f *fakeInputter) Click(x, y int, button platform.MouseButton, count int) error {
	f.clicks = append(f.clicks, image.Pt(x, y))
	f.buttons = append(f.buttons, button)
	return nil
}

func (f *fakeInputter) MoveMouse(x, y int) error { return nil }

func (f *fakeInputter) TypeText(text string, delayMs int) error {
	f.typed = append(f.typed, text)
	return nil
}

type fakeScreenshotter struct {
	screens []image.Image // returned in order; the last one repeats
	calls   int
}

func (f *fakeScreenshotter) CaptureScreen() (image.Image, error) {
	if len(f.screens) == 0 {
		return nil, fmt.Errorf("no display")
	}
	i := min(f.calls, len(f.screens)-1)
	f.calls++
	return f.screens[i], nil
}

type fakeLauncher struct {
	opened []string
}

func (f *fakeLauncher) Open(target string) error {
	f.opened = append(f.opened, target)
	return nil
}

// blankScreen is a flat gray screen.
func blankScreen() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, 200, 150))
	for i := range img.Pix {
		img.Pix[i] = 190
	}
	return img
}

// screenWithButton returns a screen containing a textured button at (x0,y0)
// and the button itself.
func screenWithButton(x0, y0 int) (*image.Gray, *image.Gray) {
	scr := blankScreen()
	btn := image.NewGray(image.Rect(0, 0, 24, 12))
	for y := 0; y < 12; y++ {
		for x := 0; x < 24; x++ {
			v := color.Gray{Y: uint8(20 + (x*53+y*29)%210)}
			btn.SetGray(x, y, v)
			scr.SetGray(x0+x, y0+y, v)
		}
	}
	return scr, btn
}

func writeObject(t *testing.T, dir, name string, img image.Image) {
	t.Helper()
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
}

// checkerboard is a 10x10 pattern of 2px cells that appears nowhere on the
// test screens.
func checkerboard() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, 10, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			if (x/2+y/2)%2 == 0 {
				img.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return img
}
