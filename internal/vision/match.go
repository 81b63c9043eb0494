package vision

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// ErrTemplateTooLarge is returned when the template does not fit inside the search image.
var ErrTemplateTooLarge = errors.New("template larger than search image")

// ScoreMap holds one normalized correlation coefficient per template offset.
// Scores[y*Width+x] is the score with the template's top-left corner at (x, y).
type ScoreMap struct {
	Width  int
	Height int
	Scores []float64
}

// At returns the score at offset (x, y).
func (m *ScoreMap) At(x, y int) float64 {
	return m.Scores[y*m.Width+x]
}

// Max returns the global maximum and its offset. Ties resolve to the first
// offset in row-major order.
func (m *ScoreMap) Max() (image.Point, float64) {
	best := math.Inf(-1)
	var at image.Point
	for y := 0; y < m.Height; y++ {
		row := m.Scores[y*m.Width : (y+1)*m.Width]
		for x, s := range row {
			if s > best {
				best = s
				at = image.Point{X: x, Y: y}
			}
		}
	}
	return at, best
}

// MatchTemplate computes the zero-mean normalized cross-correlation of tmpl
// slid over img (the TM_CCOEFF_NORMED measure). Scores lie in [-1, 1]; offsets
// where the window or the template has no variance score 0.
//
// Rows of the score map are computed concurrently by at most workers
// goroutines (GOMAXPROCS when workers <= 0). The result does not depend on
// the worker count.
func MatchTemplate(ctx context.Context, img, tmpl *image.Gray, workers int) (*ScoreMap, error) {
	if img == nil || tmpl == nil {
		return nil, errors.New("match template: nil image")
	}
	iw, ih := img.Bounds().Dx(), img.Bounds().Dy()
	tw, th := tmpl.Bounds().Dx(), tmpl.Bounds().Dy()
	if tw == 0 || th == 0 {
		return nil, errors.New("match template: empty template")
	}
	if tw > iw || th > ih {
		return nil, fmt.Errorf("%w: template %dx%d, image %dx%d", ErrTemplateTooLarge, tw, th, iw, ih)
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	sc := newScorer(ToGray(img), ToGray(tmpl))
	out := &ScoreMap{Width: iw - tw + 1, Height: ih - th + 1}
	out.Scores = make([]float64, out.Width*out.Height)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for y := 0; y < out.Height; y++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			row := out.Scores[y*out.Width : (y+1)*out.Width]
			for x := range row {
				row[x] = sc.score(x, y)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// scorer holds the template moments and the image's summed-area tables so
// single offsets can be scored exactly.
type scorer struct {
	img, tmpl  *image.Gray
	tw, th     int
	n          int64
	tSum, tVar int64
	sum, sum2  []int64
	stride     int
}

func newScorer(img, tmpl *image.Gray) *scorer {
	tw, th := tmpl.Bounds().Dx(), tmpl.Bounds().Dy()
	sc := &scorer{img: img, tmpl: tmpl, tw: tw, th: th, n: int64(tw * th), stride: img.Bounds().Dx() + 1}
	var tSum2 int64
	for y := 0; y < th; y++ {
		for _, v := range tmpl.Pix[y*tmpl.Stride : y*tmpl.Stride+tw] {
			sc.tSum += int64(v)
			tSum2 += int64(v) * int64(v)
		}
	}
	sc.tVar = sc.n*tSum2 - sc.tSum*sc.tSum
	sc.sum, sc.sum2 = integral(img)
	return sc
}

// score is the coefficient with the template's top-left corner at (x, y).
func (sc *scorer) score(x, y int) float64 {
	a, b := y*sc.stride+x, y*sc.stride+x+sc.tw
	c, d := (y+sc.th)*sc.stride+x, (y+sc.th)*sc.stride+x+sc.tw
	wSum := sc.sum[d] - sc.sum[b] - sc.sum[c] + sc.sum[a]
	wSum2 := sc.sum2[d] - sc.sum2[b] - sc.sum2[c] + sc.sum2[a]
	wVar := sc.n*wSum2 - wSum*wSum
	if sc.tVar == 0 || wVar == 0 {
		return 0
	}
	cross := sc.n*crossSum(sc.img, sc.tmpl, x, y, sc.tw, sc.th) - sc.tSum*wSum
	return correlation(cross, sc.tVar, wVar)
}

// correlation turns the exact integer moments into a coefficient clamped to [-1, 1].
func correlation(cross, tVar, wVar int64) float64 {
	if cross == tVar && cross == wVar {
		return 1
	}
	r := float64(cross) / (math.Sqrt(float64(tVar)) * math.Sqrt(float64(wVar)))
	switch {
	case r > 1:
		return 1
	case r < -1:
		return -1
	}
	return r
}

func crossSum(img, tmpl *image.Gray, x, y, tw, th int) int64 {
	var acc int64
	for j := 0; j < th; j++ {
		trow := tmpl.Pix[j*tmpl.Stride : j*tmpl.Stride+tw]
		irow := img.Pix[(y+j)*img.Stride+x : (y+j)*img.Stride+x+tw]
		var rowAcc int64
		for i, t := range trow {
			rowAcc += int64(t) * int64(irow[i])
		}
		acc += rowAcc
	}
	return acc
}

// integral returns summed-area tables of pixel values and squared pixel
// values, each (w+1)*(h+1) with a zero first row and column.
func integral(img *image.Gray) (sum, sum2 []int64) {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	stride := w + 1
	sum = make([]int64, stride*(h+1))
	sum2 = make([]int64, stride*(h+1))
	for y := 0; y < h; y++ {
		var rowSum, rowSum2 int64
		for x := 0; x < w; x++ {
			v := int64(img.Pix[y*img.Stride+x])
			rowSum += v
			rowSum2 += v * v
			sum[(y+1)*stride+x+1] = sum[y*stride+x+1] + rowSum
			sum2[(y+1)*stride+x+1] = sum2[y*stride+x+1] + rowSum2
		}
	}
	return sum, sum2
}
