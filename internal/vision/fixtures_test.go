package vision

import (
	"image"
	"image/draw"
	"math"
	"math/rand/v2"
)

// noise returns a w×h grayscale image filled with seeded random pixels.
func noise(w, h int, seed uint64) *image.Gray {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = uint8(rng.IntN(256))
	}
	return img
}

// paste copies src into dst with its top-left corner at (x, y).
func paste(dst *image.Gray, src *image.Gray, x, y int) {
	b := src.Bounds()
	draw.Draw(dst, image.Rect(x, y, x+b.Dx(), y+b.Dy()), src, b.Min, draw.Src)
}

// toRGBA converts a grayscale image to RGBA with r=g=b.
func toRGBA(src *image.Gray) *image.RGBA {
	dst := image.NewRGBA(src.Bounds())
	draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, draw.Src)
	return dst
}

// smooth returns a w×h grayscale image of low-frequency waves that survive
// halving.
func smooth(w, h int, phase float64) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := 128 + 60*math.Sin(float64(x)/5+phase) + 50*math.Cos(float64(y)/7-phase)
			img.Pix[y*img.Stride+x] = uint8(v)
		}
	}
	return img
}
