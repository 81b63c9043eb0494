package vision

import (
	"context"
	"errors"
	"image"
	"math"

	xdraw "golang.org/x/image/draw"
)

const (
	// coarseMinSide is the smallest template side worth searching at half
	// resolution; smaller templates lose too much detail.
	coarseMinSide = 32
	// coarseMargin lowers the threshold for the half-resolution pass.
	coarseMargin = 0.2
	// coarseRadius is how far around 2x a coarse candidate offsets are rescored.
	coarseRadius = 2
	// coarseMaxShare gives up on the pass when candidates cover more than
	// 1/coarseMaxShare of all offsets.
	coarseMaxShare = 4
)

// matchCoarseToFine scores a half-resolution copy of img first, then scores
// exactly only the full-resolution offsets near coarse candidates. ok is
// false when the pass does not apply or finds nothing at threshold; callers
// then fall back to MatchTemplate.
func matchCoarseToFine(ctx context.Context, img, tmpl *image.Gray, threshold float64, workers int) (at image.Point, score float64, ok bool, err error) {
	iw, ih := img.Bounds().Dx(), img.Bounds().Dy()
	tw, th := tmpl.Bounds().Dx(), tmpl.Bounds().Dy()
	if tw < coarseMinSide || th < coarseMinSide || tw > iw || th > ih {
		return at, 0, false, nil
	}

	coarse, err := MatchTemplate(ctx, halve(img), halve(tmpl), workers)
	if errors.Is(err, ErrTemplateTooLarge) {
		return at, 0, false, nil
	}
	if err != nil {
		return at, 0, false, err
	}

	w, h := iw-tw+1, ih-th+1
	marked := make([]bool, w*h)
	count := 0
	cut := threshold - coarseMargin
	for cy := 0; cy < coarse.Height; cy++ {
		for cx := 0; cx < coarse.Width; cx++ {
			if coarse.At(cx, cy) < cut {
				continue
			}
			for y := max(0, 2*cy-coarseRadius); y <= min(h-1, 2*cy+coarseRadius); y++ {
				for x := max(0, 2*cx-coarseRadius); x <= min(w-1, 2*cx+coarseRadius); x++ {
					if !marked[y*w+x] {
						marked[y*w+x] = true
						count++
					}
				}
			}
		}
	}
	if count == 0 || count > w*h/coarseMaxShare {
		return at, 0, false, nil
	}

	sc := newScorer(img, tmpl)
	best := math.Inf(-1)
	for y := 0; y < h; y++ {
		if err := ctx.Err(); err != nil {
			return at, 0, false, err
		}
		for x, m := range marked[y*w : (y+1)*w] {
			if !m {
				continue
			}
			if s := sc.score(x, y); s > best {
				best = s
				at = image.Point{X: x, Y: y}
			}
		}
	}
	if best < threshold {
		return at, best, false, nil
	}
	return at, best, true, nil
}

// halve scales src to half size, dropping an odd last row or column so
// coarse offset c maps to full offset 2c.
func halve(src *image.Gray) *image.Gray {
	b := src.Bounds()
	w, h := b.Dx()/2, b.Dy()/2
	dst := image.NewGray(image.Rect(0, 0, w, h))
	xdraw.BiLinear.Scale(dst, dst.Bounds(), src, image.Rect(b.Min.X, b.Min.Y, b.Min.X+2*w, b.Min.Y+2*h), xdraw.Src, nil)
	return dst
}
