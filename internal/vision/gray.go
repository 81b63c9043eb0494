package vision

import (
	"image"
	"image/color"
	"image/draw"
)

// ToGray converts img to an 8-bit grayscale image whose bounds start at (0, 0).
// Luma uses the ITU-R BT.601 weights, the same as color.GrayModel.
func ToGray(img image.Image) *image.Gray {
	b := img.Bounds()
	if g, ok := img.(*image.Gray); ok && b.Min == (image.Point{}) {
		return g
	}
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))

	switch src := img.(type) {
	case *image.RGBA:
		for y := 0; y < b.Dy(); y++ {
			si := src.PixOffset(b.Min.X, b.Min.Y+y)
			di := y * dst.Stride
			for x := 0; x < b.Dx(); x++ {
				r := uint32(src.Pix[si])
				g := uint32(src.Pix[si+1])
				bl := uint32(src.Pix[si+2])
				dst.Pix[di+x] = uint8((19595*r + 38470*g + 7471*bl + 1<<15) >> 16)
				si += 4
			}
		}
	case *image.NRGBA:
		for y := 0; y < b.Dy(); y++ {
			for x := 0; x < b.Dx(); x++ {
				dst.SetGray(x, y, color.GrayModel.Convert(src.NRGBAAt(b.Min.X+x, b.Min.Y+y)).(color.Gray))
			}
		}
	default:
		draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	}
	return dst
}
