package gpuimage_test

import (
	"image"
	"image/color"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/go-cmp/cmp"

	"github.com/phanxgames/gpuimage"
	"github.com/phanxgames/gpuimage/backend/soft"
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func near(a, b uint8, tol int) bool {
	d := int(a) - int(b)
	return d >= -tol && d <= tol
}

// filtered renders img through f offscreen and returns the result.
func filtered(t *testing.T, f gpuimage.Filter, img image.Image) *image.NRGBA {
	t.Helper()
	b := img.Bounds()
	r, ctx := newScene(t, f, img, b.Dx(), b.Dy())
	return mustServe(t, r, ctx, r.CaptureFiltered)
}

func TestColorInvert(t *testing.T) {
	got := filtered(t, gpuimage.NewColorInvertFilter(), solid(2, 2, color.RGBA{R: 255, G: 100, B: 0, A: 255}))
	if c := got.NRGBAAt(0, 0); c != (color.NRGBA{R: 0, G: 155, B: 255, A: 255}) {
		t.Errorf("pixel = %v", c)
	}
}

func TestGrayscale(t *testing.T) {
	got := filtered(t, gpuimage.NewGrayscaleFilter(), solid(2, 2, color.RGBA{R: 255, A: 255}))
	c := got.NRGBAAt(1, 1)
	// 0.2125 * 255
	if !near(c.R, 54, 1) || c.R != c.G || c.G != c.B {
		t.Errorf("pixel = %v, want gray 54", c)
	}
}

func TestColorMatrixSwapsChannels(t *testing.T) {
	m := mgl32.Mat4{
		0, 0, 1, 0,
		0, 1, 0, 0,
		1, 0, 0, 0,
		0, 0, 0, 1,
	}
	got := filtered(t, gpuimage.NewColorMatrixFilter(m, 1), solid(2, 2, color.RGBA{R: 200, G: 100, B: 50, A: 255}))
	if c := got.NRGBAAt(0, 1); c != (color.NRGBA{R: 50, G: 100, B: 200, A: 255}) {
		t.Errorf("pixel = %v, want R and B swapped", c)
	}
}

func TestColorMatrixZeroIntensityIsIdentity(t *testing.T) {
	src := gradient(4, 4)
	got := filtered(t, gpuimage.NewSepiaFilter(0), src)
	if diff := cmp.Diff(pixels(src), pixels(got)); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestOpacityScalesAlpha(t *testing.T) {
	got := filtered(t, gpuimage.NewOpacityFilter(0.5), solid(2, 2, color.RGBA{R: 255, A: 255}))
	c := got.NRGBAAt(0, 0)
	if !near(c.A, 128, 1) || !near(c.R, 255, 1) {
		t.Errorf("pixel = %v, want red at half alpha", c)
	}
}

func TestSobelOnFlatImageIsBlack(t *testing.T) {
	got := filtered(t, gpuimage.NewSobelEdgeDetectionFilter(), solid(4, 4, color.RGBA{R: 90, G: 90, B: 90, A: 255}))
	for i := 0; i < len(got.Pix); i += 4 {
		if got.Pix[i] != 0 || got.Pix[i+3] != 255 {
			t.Fatalf("pixel %d = %v, want opaque black", i/4, got.Pix[i:i+4])
		}
	}
}

func TestSobelFindsVerticalEdge(t *testing.T) {
	src := solid(4, 4, color.RGBA{A: 255})
	for y := range 4 {
		for x := 2; x < 4; x++ {
			src.SetRGBA(x, y, color.RGBA{R: 255, G: 255, B: 255, A: 255})
		}
	}
	got := filtered(t, gpuimage.NewSobelEdgeDetectionFilter(), src)
	if c := got.NRGBAAt(1, 1); c.R != 255 {
		t.Errorf("edge pixel = %v, want white", c)
	}
	if c := got.NRGBAAt(0, 1); c.R != 0 {
		t.Errorf("flat pixel = %v, want black", c)
	}
}

func TestEmbossKeepsFlatColor(t *testing.T) {
	got := filtered(t, gpuimage.NewEmbossFilter(1), solid(4, 4, color.RGBA{R: 120, G: 60, B: 30, A: 255}))
	c := got.NRGBAAt(2, 2)
	if !near(c.R, 120, 1) || !near(c.G, 60, 1) || !near(c.B, 30, 1) {
		t.Errorf("pixel = %v, want the input color", c)
	}
}

func TestEmbossKernel(t *testing.T) {
	want := [9]float32{-4, -2, 0, -2, 1, 2, 0, 2, 4}
	if got := gpuimage.EmbossKernel(2); got != want {
		t.Errorf("EmbossKernel(2) = %v, want %v", got, want)
	}
}

func TestPixelationSizeFactors(t *testing.T) {
	ctx := soft.NewContext(8, 4)
	f := gpuimage.NewPixelationFilter(0)
	if f.Pixel() != 1 {
		t.Errorf("Pixel() = %v, want the minimum 1", f.Pixel())
	}
	_ = f.Init(ctx)
	f.OutputSizeChanged(ctx, 8, 4)
	f.Draw(ctx, gpuimage.NoTexture, gpuimage.Cube, gpuimage.TextureCoordinates(gpuimage.RotationNormal, false, false))

	for name, want := range map[string]float32{"ImageWidthFactor": 0.125, "ImageHeightFactor": 0.25, "Pixel": 1} {
		if diff := cmp.Diff([]float32{want}, ctx.UniformValue(f.Program(), name)); diff != "" {
			t.Errorf("%s (-want +got):\n%s", name, diff)
		}
	}
}

func TestVignetteDefaults(t *testing.T) {
	ctx := soft.NewContext(2, 2)
	f := gpuimage.NewVignetteFilter()
	f.Draw(ctx, gpuimage.NoTexture, gpuimage.Cube, gpuimage.TextureCoordinates(gpuimage.RotationNormal, false, false))

	want := map[string][]float32{
		"VignetteCenter": {0.5, 0.5},
		"VignetteColor":  {0, 0, 0},
		"VignetteStart":  {0.3},
		"VignetteEnd":    {0.75},
	}
	for name, w := range want {
		if diff := cmp.Diff(w, ctx.UniformValue(f.Program(), name)); diff != "" {
			t.Errorf("%s (-want +got):\n%s", name, diff)
		}
	}
}

func TestVignetteDarkensCorners(t *testing.T) {
	f := gpuimage.NewVignetteFilter()
	f.SetStart(0)
	f.SetEnd(0.5)
	got := filtered(t, f, solid(8, 8, color.RGBA{R: 255, G: 255, B: 255, A: 255}))
	center, corner := got.NRGBAAt(4, 4), got.NRGBAAt(0, 0)
	if corner.R != 0 {
		t.Errorf("corner = %v, want black", corner)
	}
	if center.R < 200 {
		t.Errorf("center = %v, want near white", center)
	}
}

func TestAlphaBlendSecondaryImagePolicy(t *testing.T) {
	f := gpuimage.NewAlphaBlendFilter(1)
	f.SetSecondaryImage(solid(4, 4, color.RGBA{R: 255, A: 255}))
	r, ctx := newScene(t, f, gradient(4, 4), 4, 4)

	got := mustServe(t, r, ctx, r.CaptureFiltered)
	if c := got.NRGBAAt(3, 0); c != (color.NRGBA{R: 255, A: 255}) {
		t.Fatalf("blended pixel = %v, want the red overlay", c)
	}

	// A different size is ignored.
	f.SetSecondaryImage(solid(2, 2, color.RGBA{G: 255, A: 255}))
	got = mustServe(t, r, ctx, r.CaptureFiltered)
	if c := got.NRGBAAt(3, 0); c.R != 255 || c.G != 0 {
		t.Errorf("after mismatched upload = %v, want red", c)
	}
	if w, h := ctx.TextureSize(f.SecondaryTexture()); w != 4 || h != 4 {
		t.Errorf("secondary texture = %dx%d, want 4x4", w, h)
	}

	// The same size replaces the contents.
	f.SetSecondaryImage(solid(4, 4, color.RGBA{B: 255, A: 255}))
	got = mustServe(t, r, ctx, r.CaptureFiltered)
	if c := got.NRGBAAt(3, 0); c != (color.NRGBA{B: 255, A: 255}) {
		t.Errorf("after same-size upload = %v, want blue", c)
	}

	tex := f.SecondaryTexture()
	r.Destroy(ctx)
	if w, _ := ctx.TextureSize(tex); w != 0 {
		t.Error("secondary texture survived Destroy")
	}
}

func TestAlphaBlendMixZeroKeepsBase(t *testing.T) {
	src := gradient(4, 4)
	f := gpuimage.NewAlphaBlendFilter(0)
	f.SetSecondaryImage(solid(4, 4, color.RGBA{R: 255, A: 255}))
	got := filtered(t, f, src)
	if diff := cmp.Diff(pixels(src), pixels(got)); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

// identityLookup builds the standard 512x512 color table: 64 tiles of
// 64x64, blue selecting the tile, red and green indexing inside it.
func identityLookup() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 512, 512))
	for y := range 512 {
		for x := range 512 {
			blue := (y/64)*8 + x/64
			img.SetRGBA(x, y, color.RGBA{
				R: uint8((x % 64) * 255 / 63),
				G: uint8((y % 64) * 255 / 63),
				B: uint8(blue * 255 / 63),
				A: 255,
			})
		}
	}
	return img
}

func TestIdentityLookup(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 2))
	colors := []color.RGBA{
		{A: 255},
		{R: 255, G: 255, B: 255, A: 255},
		{R: 255, B: 0, A: 255},
		{G: 255, B: 255, A: 255},
	}
	for i, c := range colors {
		src.SetRGBA(i%2, i/2, c)
	}
	got := filtered(t, gpuimage.NewLookupFilter(identityLookup(), 1), src)
	for i, want := range colors {
		c := got.NRGBAAt(i%2, i/2)
		if !near(c.R, want.R, 2) || !near(c.G, want.G, 2) || !near(c.B, want.B, 2) {
			t.Errorf("pixel %d = %v, want %v", i, c, want)
		}
	}
}

func TestMorphologyRadiusClamped(t *testing.T) {
	for in, want := range map[int]int{-3: 1, 0: 1, 1: 1, 3: 3, 4: 4, 9: 4} {
		if got := gpuimage.ClampMorphologyRadius(in); got != want {
			t.Errorf("ClampMorphologyRadius(%d) = %d, want %d", in, got, want)
		}
	}
	_, a := gpuimage.MorphologyShaders(gpuimage.Dilation, 9)
	_, b := gpuimage.MorphologyShaders(gpuimage.Dilation, 4)
	if a != b {
		t.Error("radius 9 should use the radius 4 program")
	}
}

func TestDilationGrowsSquare(t *testing.T) {
	// Odd width also exercises upload padding and capture cropping.
	src := solid(5, 5, color.RGBA{A: 255})
	src.SetRGBA(2, 2, color.RGBA{R: 255, G: 255, B: 255, A: 255})

	got := filtered(t, gpuimage.NewDilationFilter(1), src)
	if b := got.Bounds(); b.Dx() != 5 || b.Dy() != 5 {
		t.Fatalf("capture is %dx%d, want 5x5", b.Dx(), b.Dy())
	}
	for y := range 5 {
		for x := range 5 {
			inside := x >= 1 && x <= 3 && y >= 1 && y <= 3
			want := uint8(0)
			if inside {
				want = 255
			}
			if c := got.NRGBAAt(x, y); c.R != want {
				t.Errorf("(%d,%d) = %d, want %d", x, y, c.R, want)
			}
		}
	}
}

func TestErosionShrinksSquare(t *testing.T) {
	src := solid(6, 6, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	src.SetRGBA(3, 3, color.RGBA{A: 255})

	got := filtered(t, gpuimage.NewRGBErosionFilter(1), src)
	for y := range 6 {
		for x := range 6 {
			inside := x >= 2 && x <= 4 && y >= 2 && y <= 4
			c := got.NRGBAAt(x, y)
			if inside && c.G != 0 || !inside && c.G != 255 {
				t.Errorf("(%d,%d) = %v, inside=%v", x, y, c, inside)
			}
		}
	}
}
