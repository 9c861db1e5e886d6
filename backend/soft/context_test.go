package soft

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/go-cmp/cmp"

	"github.com/phanxgames/gpuimage"
)

func checkerboard(w, h int) []byte {
	pix := make([]byte, 4*w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			o := 4 * (y*w + x)
			if (x+y)%2 == 0 {
				pix[o], pix[o+1], pix[o+2] = 255, 255, 255
			} else {
				pix[o], pix[o+1], pix[o+2] = 10, 20, 30
			}
			pix[o+3] = 255
		}
	}
	return pix
}

func linkPassthrough(t *testing.T, c *Context) gpuimage.Program {
	t.Helper()
	vs, err := c.CreateShader(gpuimage.VertexStage, gpuimage.PassthroughVertexShader)
	if err != nil {
		t.Fatalf("vertex: %v", err)
	}
	fs, err := c.CreateShader(gpuimage.FragmentStage, gpuimage.PassthroughFragmentShader)
	if err != nil {
		t.Fatalf("fragment: %v", err)
	}
	p, err := c.CreateProgram(vs, fs)
	if err != nil {
		t.Fatalf("link: %v", err)
	}
	return p
}

func TestUploadAndReadPixels(t *testing.T) {
	c := NewContext(4, 4)
	tex := c.CreateTexture(4, 4, gpuimage.TextureOptions{})
	fb := c.CreateFramebuffer(tex)
	pix := checkerboard(4, 4)
	c.UploadTexture(tex, 4, 4, pix)

	c.BindFramebuffer(fb)
	if diff := cmp.Diff(pix, c.ReadPixels(4, 4)); diff != "" {
		t.Errorf("ReadPixels mismatch (-want +got):\n%s", diff)
	}
}

func TestClearFillsBoundTarget(t *testing.T) {
	c := NewContext(2, 2)
	c.ClearColor(1, 0, 0, 1)
	c.Clear()
	got := c.ReadPixels(2, 2)
	for i := 0; i < len(got); i += 4 {
		if got[i] != 255 || got[i+1] != 0 || got[i+2] != 0 || got[i+3] != 255 {
			t.Fatalf("pixel %d = %v, want opaque red", i/4, got[i:i+4])
		}
	}
}

func TestDrawPassthroughFlipsIntoSurface(t *testing.T) {
	c := NewContext(4, 4)
	p := linkPassthrough(t, c)
	tex := c.CreateTexture(4, 4, gpuimage.TextureOptions{})
	pix := checkerboard(4, 4)
	pix[0] = 1 // mark the top-left texel
	c.UploadTexture(tex, 4, 4, pix)

	c.UseProgram(p)
	pos := c.AttribLocation(p, gpuimage.AttribPosition)
	uv := c.AttribLocation(p, gpuimage.AttribTextureCoordinate)
	c.EnableVertexAttribArray(pos)
	c.VertexAttribPointer(pos, 2, gpuimage.Cube)
	c.EnableVertexAttribArray(uv)
	c.VertexAttribPointer(uv, 2, gpuimage.TextureCoordinates(gpuimage.RotationNormal, false, false))
	c.ActiveTexture(0)
	c.BindTexture(tex)
	c.Uniform1i(c.UniformLocation(p, gpuimage.SamplerInputImage), 0)
	c.DrawArrays(gpuimage.TriangleStrip, 0, 4)

	got := c.ReadPixels(4, 4)
	// Row 0 of the surface is the bottom row: the image's last row.
	if diff := cmp.Diff(pix[4*4*3:], got[:4*4]); diff != "" {
		t.Errorf("bottom row mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(pix[:4*4], got[4*4*3:]); diff != "" {
		t.Errorf("top row mismatch (-want +got):\n%s", diff)
	}
	if c.DrawCount() != 1 {
		t.Errorf("DrawCount = %d, want 1", c.DrawCount())
	}
}

func TestUnknownFragmentFailsToCompile(t *testing.T) {
	c := NewContext(1, 1)
	_, err := c.CreateShader(gpuimage.FragmentStage, "func Fragment(dst vec4, src vec2, color vec4) vec4 { return vec4(1) }")
	var serr *gpuimage.ShaderError
	if !errors.As(err, &serr) {
		t.Fatalf("err = %v, want *ShaderError", err)
	}
	if serr.Stage != "fragment" {
		t.Errorf("Stage = %q, want fragment", serr.Stage)
	}

	_, err = c.CreateShader(gpuimage.FragmentStage, "not a shader")
	if !errors.As(err, &serr) {
		t.Fatalf("err = %v, want *ShaderError", err)
	}
}

func TestCustomRegistry(t *testing.T) {
	const red = "func Fragment(dst vec4, src vec2, color vec4) vec4 {\n\treturn vec4(1, 0, 0, 1)\n}\n"
	reg := NewRegistry()
	reg.Register(red, func(*Fragment) mgl32.Vec4 { return mgl32.Vec4{1, 0, 0, 1} })
	c := NewContextWithRegistry(1, 1, reg)
	if _, err := c.CreateShader(gpuimage.FragmentStage, red); err != nil {
		t.Fatalf("CreateShader: %v", err)
	}
	if _, err := c.CreateShader(gpuimage.FragmentStage, gpuimage.PassthroughFragmentShader); err == nil {
		t.Error("built-in program visible through a custom registry")
	}
}

func TestUniformLocationsAndValues(t *testing.T) {
	c := NewContext(1, 1)
	vs, _ := c.CreateShader(gpuimage.VertexStage, gpuimage.PassthroughVertexShader)
	fs, err := c.CreateShader(gpuimage.FragmentStage, gpuimage.BrightnessFragmentShader)
	if err != nil {
		t.Fatal(err)
	}
	p, err := c.CreateProgram(vs, fs)
	if err != nil {
		t.Fatal(err)
	}

	loc := c.UniformLocation(p, "Brightness")
	if loc == gpuimage.NoLocation {
		t.Fatal("Brightness not found")
	}
	if got := c.UniformLocation(p, "Missing"); got != gpuimage.NoLocation {
		t.Errorf("Missing = %d, want NoLocation", got)
	}

	c.UseProgram(p)
	c.Uniform1f(loc, 0.25)
	c.Uniform1f(gpuimage.NoLocation, 9) // ignored
	if diff := cmp.Diff([]float32{0.25}, c.UniformValue(p, "Brightness")); diff != "" {
		t.Errorf("Brightness (-want +got):\n%s", diff)
	}
	if got := c.AttribLocation(p, gpuimage.AttribTextureCoordinate2); got != gpuimage.NoAttrib {
		t.Errorf("single-input program exposes the second coordinate at %d", got)
	}
}

func TestResourceAccounting(t *testing.T) {
	c := NewContext(1, 1)
	tex := c.CreateTexture(2, 2, gpuimage.TextureOptions{})
	fb := c.CreateFramebuffer(tex)
	if c.LiveTextures() != 1 || c.LiveFramebuffers() != 1 {
		t.Fatalf("live = %d textures, %d framebuffers", c.LiveTextures(), c.LiveFramebuffers())
	}
	c.BindFramebuffer(fb)
	c.DeleteFramebuffer(fb)
	c.DeleteTexture(tex)
	if c.LiveTextures() != 0 || c.LiveFramebuffers() != 0 {
		t.Errorf("live after delete = %d textures, %d framebuffers", c.LiveTextures(), c.LiveFramebuffers())
	}
	if c.BoundFramebuffer() != gpuimage.NoFramebuffer {
		t.Error("deleted framebuffer still bound")
	}
}

func TestSampleBilinearAndNearest(t *testing.T) {
	c := NewContext(1, 1)
	pix := []byte{
		0, 0, 0, 255, 255, 255, 255, 255,
	}
	for _, tc := range []struct {
		filter gpuimage.TextureFilter
		want   float32
	}{
		{gpuimage.FilterLinear, 0.5},
		{gpuimage.FilterNearest, 1},
	} {
		tex := c.CreateTexture(2, 1, gpuimage.TextureOptions{Filter: tc.filter})
		c.UploadTexture(tex, 2, 1, pix)
		c.BindTexture(tex)
		f := &Fragment{ctx: c, prog: &program{}}
		got := f.Sample(0, mgl32.Vec2{0.5, 0.5})[0]
		if got != tc.want {
			t.Errorf("filter %d: red at the seam = %v, want %v", tc.filter, got, tc.want)
		}
	}
}
