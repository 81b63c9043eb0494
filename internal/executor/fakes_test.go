package executor

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/mj1618/visual-runner/internal/model"
	"github.com/mj1618/visual-runner/internal/platform"
	"github.com/mj1618/visual-runner/internal/reference"
)

type inputCall struct {
	Op     string
	X, Y   int
	Button platform.MouseButton
	Text   string
	Delay  int
}

type fakeInput struct {
	calls    []inputCall
	clickErr error
	typeErr  error
}

func (f *fakeInput) Click(x, y int, button platform.MouseButton, count int) error {
	f.calls = append(f.calls, inputCall{Op: "click", X: x, Y: y, Button: button})
	return f.clickErr
}

func (f *fakeInput) MoveMouse(x, y int) error {
	f.calls = append(f.calls, inputCall{Op: "move", X: x, Y: y})
	return nil
}

func (f *fakeInput) TypeText(text string, delayMs int) error {
	f.calls = append(f.calls, inputCall{Op: "type", Text: text, Delay: delayMs})
	return f.typeErr
}

type fakeRefs map[string]*image.Gray

func (f fakeRefs) Get(id string) (*image.Gray, error) {
	img, ok := f[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", reference.ErrNotFound, id)
	}
	return img, nil
}

type fakeMatcher struct {
	result model.MatchResult
	err    error
	calls  int
}

func (f *fakeMatcher) Locate(ctx context.Context, screen image.Image, ref *image.Gray, threshold float64) (model.MatchResult, error) {
	f.calls++
	r := f.result
	r.Found = r.Score >= threshold
	return r, f.err
}

type sleepLog []time.Duration

func (s *sleepLog) sleep(ctx context.Context, d time.Duration) error {
	*s = append(*s, d)
	return nil
}
