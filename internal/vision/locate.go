package vision

import (
	"context"
	"errors"
	"image"

	"github.com/mj1618/visual-runner/internal/model"
)

// Locator finds reference images on screen captures. It holds no state
// between calls, so Locate is idempotent for identical inputs.
type Locator struct {
	// Workers bounds the goroutines used per score map (0 = GOMAXPROCS).
	Workers int
	// CoarseToFine searches large references at half resolution first.
	// A match it reports is exact, but among several instances above the
	// threshold it may not return the first in row-major order.
	CoarseToFine bool
}

// NewLocator returns a Locator using workers goroutines per match.
func NewLocator(workers int) *Locator {
	return &Locator{Workers: workers}
}

// Locate matches ref against screen and reports the center of the best
// match. The result is Found only when the best score reaches threshold.
// A reference that does not fit on the screen is reported as not found.
func (l *Locator) Locate(ctx context.Context, screen image.Image, ref *image.Gray, threshold float64) (model.MatchResult, error) {
	if screen == nil || ref == nil {
		return model.MatchResult{}, errors.New("locate: nil image")
	}
	gray := ToGray(screen)
	if l.CoarseToFine {
		at, score, ok, err := matchCoarseToFine(ctx, gray, ToGray(ref), threshold, l.Workers)
		if err != nil {
			return model.MatchResult{}, err
		}
		if ok {
			return matchResult(at, score, ref, threshold), nil
		}
	}

	scores, err := MatchTemplate(ctx, gray, ref, l.Workers)
	if errors.Is(err, ErrTemplateTooLarge) {
		return model.MatchResult{}, nil
	}
	if err != nil {
		return model.MatchResult{}, err
	}
	at, score := scores.Max()
	return matchResult(at, score, ref, threshold), nil
}

// matchResult centers the best offset on ref and clamps negative scores.
func matchResult(at image.Point, score float64, ref *image.Gray, threshold float64) model.MatchResult {
	if score < 0 {
		score = 0
	}
	b := ref.Bounds()
	return model.MatchResult{
		Found: score >= threshold,
		Score: score,
		Location: model.Point{
			X: at.X + b.Dx()/2,
			Y: at.Y + b.Dy()/2,
		},
	}
}
