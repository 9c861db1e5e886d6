package gpuimage

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEvenWidthPadding(t *testing.T) {
	for w, want := range map[int]int{1: 1, 2: 0, 5: 1, 640: 0} {
		if got := evenWidthPadding(w); got != want {
			t.Errorf("evenWidthPadding(%d) = %d, want %d", w, got, want)
		}
	}
}

func TestPaddedPixelDataAddsTransparentColumn(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 3, 1))
	for x := range 3 {
		src.Set(x, 0, color.RGBA{R: 255, A: 255})
	}
	d := newPaddedPixelData(src, 1)
	if d.width != 4 || d.height != 1 {
		t.Fatalf("size = %dx%d, want 4x1", d.width, d.height)
	}
	want := []byte{255, 0, 0, 255, 255, 0, 0, 255, 255, 0, 0, 255, 0, 0, 0, 0}
	if diff := cmp.Diff(want, d.pix); diff != "" {
		t.Errorf("pix (-want +got):\n%s", diff)
	}
}

func TestPixelDataCopiesSource(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 1, 1))
	src.Pix[0] = 10
	d := newPixelData(src)
	src.Pix[0] = 99
	if d.pix[0] != 10 {
		t.Errorf("pixel data aliases the source image")
	}
}

func TestPixelDataHonorsBoundsOrigin(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 4, 4))
	src.Set(2, 3, color.RGBA{G: 255, A: 255})
	sub := src.SubImage(image.Rect(2, 3, 4, 4))
	d := newPixelData(sub)
	if d.width != 2 || d.height != 1 {
		t.Fatalf("size = %dx%d, want 2x1", d.width, d.height)
	}
	if d.pix[1] != 255 {
		t.Errorf("first pixel = %v, want green", d.pix[:4])
	}
}

func TestFlipRows(t *testing.T) {
	pix := []byte{
		1, 1, 1, 1,
		2, 2, 2, 2,
		3, 3, 3, 3,
	}
	flipRows(pix, 1, 3)
	want := []byte{
		3, 3, 3, 3,
		2, 2, 2, 2,
		1, 1, 1, 1,
	}
	if diff := cmp.Diff(want, pix); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestToNRGBAUnpremultiplies(t *testing.T) {
	img := toNRGBA(1, 1, []byte{128, 0, 0, 128})
	got := img.NRGBAAt(0, 0)
	if got.R != 255 || got.A != 128 {
		t.Errorf("NRGBA = %+v, want R=255 A=128", got)
	}
}

func TestSanitizeLabel(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"hello", "hello"},
		{"after-filter", "after-filter"},
		{"frame.01", "frame.01"},
		{"has spaces", "has_spaces"},
		{"path/to/thing", "path_to_thing"},
		{"special!@#$%", "special_____"},
		{"", "unlabeled"},
		{"   ", "unlabeled"},
	}
	for _, tt := range tests {
		if got := sanitizeLabel(tt.in); got != tt.want {
			t.Errorf("sanitizeLabel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSaveCapturePNG(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "captures")
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	path, err := SaveCapturePNG(dir, "sepia look", img)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(path, "_sepia_look.png") {
		t.Errorf("path = %q, want a _sepia_look.png suffix", path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("capture not written: %v", err)
	}
}
