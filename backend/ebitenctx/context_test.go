package ebitenctx

import (
	"errors"
	"image"
	"testing"

	"github.com/phanxgames/gpuimage"
)

// --- Pool ---

func TestPoolAcquireExactSize(t *testing.T) {
	var pool scratchPool
	img := pool.Acquire(image.Pt(100, 50))
	defer pool.ReleaseAll()

	b := img.Bounds()
	if b.Dx() != 100 || b.Dy() != 50 {
		t.Errorf("size = %dx%d, want 100x50", b.Dx(), b.Dy())
	}
}

func TestPoolReleaseAndReacquire(t *testing.T) {
	var pool scratchPool
	img1 := pool.Acquire(image.Pt(64, 64))
	pool.ReleaseAll()
	if pool.Len() != 1 {
		t.Fatalf("Len = %d, want 1", pool.Len())
	}

	img2 := pool.Acquire(image.Pt(64, 64))
	if img1 != img2 {
		t.Error("expected pool to return the same image after release")
	}
	if pool.Len() != 0 {
		t.Errorf("Len = %d, want 0 while in use", pool.Len())
	}
	pool.ReleaseAll()
}

func TestPoolDifferentSizes(t *testing.T) {
	var pool scratchPool
	a := pool.Acquire(image.Pt(32, 32))
	pool.ReleaseAll()
	b := pool.Acquire(image.Pt(32, 16))
	if a == b {
		t.Error("different sizes should return different images")
	}
	pool.ReleaseAll()
}

func TestPoolEmptySizeIsOnePixel(t *testing.T) {
	var pool scratchPool
	img := pool.Acquire(image.Point{})
	if b := img.Bounds(); b.Dx() != 1 || b.Dy() != 1 {
		t.Errorf("size = %dx%d, want 1x1", b.Dx(), b.Dy())
	}
	pool.Dispose()
	if pool.Len() != 0 {
		t.Errorf("Len after Dispose = %d", pool.Len())
	}
}

func TestPoolKey(t *testing.T) {
	if poolKey(1, 2) == poolKey(2, 1) {
		t.Error("poolKey collides for swapped dimensions")
	}
}

// --- Context ---

func TestCreateShaderRequiresFragmentEntry(t *testing.T) {
	c := NewContext()
	_, err := c.CreateShader(gpuimage.FragmentStage, "var Brightness float\n")
	var serr *gpuimage.ShaderError
	if !errors.As(err, &serr) {
		t.Fatalf("err = %v, want *ShaderError", err)
	}
	if _, err := c.CreateShader(gpuimage.VertexStage, gpuimage.PassthroughVertexShader); err != nil {
		t.Errorf("vertex unit rejected: %v", err)
	}
}

func TestCreateProgramRejectsSwappedUnits(t *testing.T) {
	c := NewContext()
	vs, _ := c.CreateShader(gpuimage.VertexStage, gpuimage.PassthroughVertexShader)
	fs, _ := c.CreateShader(gpuimage.FragmentStage, gpuimage.PassthroughFragmentShader)
	if _, err := c.CreateProgram(fs, vs); err == nil {
		t.Error("expected an error linking swapped units")
	}
}

func TestTextureLifecycle(t *testing.T) {
	c := NewContext()
	tex := c.CreateTexture(4, 2, gpuimage.TextureOptions{})
	if w, h := c.TextureSize(tex); w != 4 || h != 2 {
		t.Errorf("TextureSize = %dx%d, want 4x2", w, h)
	}
	fb := c.CreateFramebuffer(tex)
	c.BindFramebuffer(fb)
	if c.BoundFramebuffer() != fb {
		t.Error("framebuffer not bound")
	}
	c.ActiveTexture(0)
	c.BindTexture(tex)

	c.DeleteFramebuffer(fb)
	c.DeleteTexture(tex)
	if c.BoundFramebuffer() != gpuimage.NoFramebuffer {
		t.Error("deleted framebuffer still bound")
	}
	if c.units[0] != gpuimage.NoTexture {
		t.Error("deleted texture still bound to unit 0")
	}
	if c.LiveTextures() != 0 || c.LiveFramebuffers() != 0 {
		t.Errorf("live = %d textures, %d framebuffers", c.LiveTextures(), c.LiveFramebuffers())
	}
}

func TestTextureOptionsRecorded(t *testing.T) {
	c := NewContext()
	opts := gpuimage.TextureOptions{Filter: gpuimage.FilterNearest, Wrap: gpuimage.WrapRepeat}
	tex := c.CreateTexture(2, 2, opts)
	if got := c.TextureOptions(tex); got != opts {
		t.Errorf("TextureOptions = %+v, want %+v", got, opts)
	}
	c.DeleteTexture(tex)
	if got := c.TextureOptions(tex); got != (gpuimage.TextureOptions{}) {
		t.Errorf("TextureOptions after delete = %+v, want zero", got)
	}
}

func TestDisposeReleasesEverything(t *testing.T) {
	c := NewContext()
	for range 3 {
		c.CreateFramebuffer(c.CreateTexture(8, 8, gpuimage.TextureOptions{}))
	}
	c.Dispose()
	if c.LiveTextures() != 0 || c.LiveFramebuffers() != 0 {
		t.Errorf("live = %d textures, %d framebuffers", c.LiveTextures(), c.LiveFramebuffers())
	}
}

func TestUnit8(t *testing.T) {
	tests := []struct {
		in   float32
		want uint8
	}{
		{-1, 0},
		{0, 0},
		{0.5, 128},
		{1, 255},
		{2, 255},
	}
	for _, tt := range tests {
		if got := unit8(tt.in); got != tt.want {
			t.Errorf("unit8(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
