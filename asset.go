package gpuimage

import (
	"image"

	"golang.org/x/image/draw"
)

// pixelData is an image converted to tightly packed, premultiplied RGBA rows,
// top row first, ready for Context.UploadTexture.
type pixelData struct {
	width  int
	height int
	pix    []byte
}

// newPixelData copies img into a fresh RGBA buffer. The copy is owned by the
// caller, so the source may be mutated or reused afterwards.
func newPixelData(img image.Image) pixelData {
	return newPaddedPixelData(img, 0)
}

// newPaddedPixelData copies img into an RGBA buffer padRight columns wider
// than the source. Padding columns are transparent.
func newPaddedPixelData(img image.Image, padRight int) pixelData {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx()+padRight, b.Dy()))
	draw.Copy(dst, image.Point{}, img, b, draw.Src, nil)
	return pixelData{width: dst.Rect.Dx(), height: dst.Rect.Dy(), pix: dst.Pix}
}

// evenWidthPadding returns 1 when width is odd. Odd-width uploads are padded
// to an even width.
func evenWidthPadding(width int) int {
	return width % 2
}

// toNRGBA converts premultiplied RGBA rows (top row first) into a
// straight-alpha image.
func toNRGBA(width, height int, pix []byte) *image.NRGBA {
	src := &image.RGBA{Pix: pix, Stride: 4 * width, Rect: image.Rect(0, 0, width, height)}
	dst := image.NewNRGBA(src.Rect)
	draw.Draw(dst, dst.Rect, src, image.Point{}, draw.Src)
	return dst
}

// flipRows reverses the row order of tightly packed RGBA data in place.
func flipRows(pix []byte, width, height int) {
	stride := 4 * width
	tmp := make([]byte, stride)
	for top, bottom := 0, height-1; top < bottom; top, bottom = top+1, bottom-1 {
		a := pix[top*stride : (top+1)*stride]
		b := pix[bottom*stride : (bottom+1)*stride]
		copy(tmp, a)
		copy(a, b)
		copy(b, tmp)
	}
}
