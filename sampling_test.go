package gpuimage_test

import (
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/phanxgames/gpuimage"
	"github.com/phanxgames/gpuimage/backend/soft"
)

var upright = gpuimage.TextureCoordinates(gpuimage.RotationNormal, false, false)

// uniform returns the value of a uniform of f's program on ctx.
func uniform(ctx *soft.Context, f *gpuimage.ShaderFilter, name string) []float32 {
	return ctx.UniformValue(f.Program(), name)
}

func TestTexelSizeFollowsLineSizeAndOutput(t *testing.T) {
	ctx := soft.NewContext(10, 20)
	f := gpuimage.NewConvolutionFilter()
	_ = f.Init(ctx)

	f.OutputSizeChanged(ctx, 10, 20)
	f.Draw(ctx, gpuimage.NoTexture, gpuimage.Cube, upright)
	if diff := cmp.Diff([]float32{0.1}, uniform(ctx, f.ShaderFilter, "TexelWidth")); diff != "" {
		t.Errorf("default TexelWidth (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float32{0.05}, uniform(ctx, f.ShaderFilter, "TexelHeight")); diff != "" {
		t.Errorf("default TexelHeight (-want +got):\n%s", diff)
	}

	f.SetLineSize(2)
	f.Draw(ctx, gpuimage.NoTexture, gpuimage.Cube, upright)
	if diff := cmp.Diff([]float32{0.2}, uniform(ctx, f.ShaderFilter, "TexelWidth")); diff != "" {
		t.Errorf("TexelWidth after SetLineSize (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float32{0.1}, uniform(ctx, f.ShaderFilter, "TexelHeight")); diff != "" {
		t.Errorf("TexelHeight after SetLineSize (-want +got):\n%s", diff)
	}

	f.OutputSizeChanged(ctx, 4, 8)
	f.Draw(ctx, gpuimage.NoTexture, gpuimage.Cube, upright)
	if diff := cmp.Diff([]float32{0.5}, uniform(ctx, f.ShaderFilter, "TexelWidth")); diff != "" {
		t.Errorf("TexelWidth after resize (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float32{0.25}, uniform(ctx, f.ShaderFilter, "TexelHeight")); diff != "" {
		t.Errorf("TexelHeight after resize (-want +got):\n%s", diff)
	}
	if w, h := f.TexelSize(); w != 0.5 || h != 0.25 {
		t.Errorf("TexelSize = %v, %v, want 0.5, 0.25", w, h)
	}
}

func TestExplicitTexelWidthSurvivesResize(t *testing.T) {
	ctx := soft.NewContext(10, 10)
	f := gpuimage.NewConvolutionFilter()

	// The resize lands before the queued write is drained.
	f.SetTexelWidth(0.5)
	f.OutputSizeChanged(ctx, 10, 10)
	f.Draw(ctx, gpuimage.NoTexture, gpuimage.Cube, upright)
	if diff := cmp.Diff([]float32{0.5}, uniform(ctx, f.ShaderFilter, "TexelWidth")); diff != "" {
		t.Errorf("TexelWidth (-want +got):\n%s", diff)
	}

	f.SetLineSize(3)
	f.OutputSizeChanged(ctx, 20, 20)
	f.Draw(ctx, gpuimage.NoTexture, gpuimage.Cube, upright)
	if diff := cmp.Diff([]float32{0.5}, uniform(ctx, f.ShaderFilter, "TexelWidth")); diff != "" {
		t.Errorf("TexelWidth after second resize (-want +got):\n%s", diff)
	}
	if w, _ := f.TexelSize(); w != 0.5 {
		t.Errorf("TexelSize width = %v, want 0.5", w)
	}
}

func TestTwoPassOffsets(t *testing.T) {
	ctx := soft.NewContext(8, 4)
	f := gpuimage.NewDilationFilter(1)
	horizontal, vertical := f.Passes()
	_ = f.Init(ctx)

	check := func(w, h int) {
		t.Helper()
		f.OutputSizeChanged(ctx, w, h)
		f.Draw(ctx, gpuimage.NoTexture, gpuimage.Cube, upright)
		want := map[string][]float32{
			"horizontal TexelWidthOffset":  {1 / float32(w)},
			"horizontal TexelHeightOffset": {0},
			"vertical TexelWidthOffset":    {0},
			"vertical TexelHeightOffset":   {1 / float32(h)},
		}
		got := map[string][]float32{
			"horizontal TexelWidthOffset":  uniform(ctx, horizontal, "TexelWidthOffset"),
			"horizontal TexelHeightOffset": uniform(ctx, horizontal, "TexelHeightOffset"),
			"vertical TexelWidthOffset":    uniform(ctx, vertical, "TexelWidthOffset"),
			"vertical TexelHeightOffset":   uniform(ctx, vertical, "TexelHeightOffset"),
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("%dx%d offsets (-want +got):\n%s", w, h, diff)
		}
	}
	check(8, 4)
	check(16, 2)
}

func TestSettersAndGettersOnDifferentGoroutines(t *testing.T) {
	v := gpuimage.NewVignetteFilter()
	c := gpuimage.NewConvolutionFilter()
	m := gpuimage.NewAlphaBlendFilter(0)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := range 100 {
			x := float32(i) / 100
			v.SetStart(x)
			c.SetConvolutionKernel([9]float32{4: x})
			m.SetMix(x)
		}
	}()
	go func() {
		defer wg.Done()
		for range 100 {
			_, _ = v.Range()
			_ = c.ConvolutionKernel()
			_ = m.Mix()
		}
	}()
	wg.Wait()

	if start, _ := v.Range(); start != 0.99 {
		t.Errorf("start = %v, want 0.99", start)
	}
	if k := c.ConvolutionKernel(); k[4] != 0.99 {
		t.Errorf("kernel center = %v, want 0.99", k[4])
	}
	if m.Mix() != 0.99 {
		t.Errorf("Mix = %v, want 0.99", m.Mix())
	}
}
