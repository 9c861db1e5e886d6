package gpuimage_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/phanxgames/gpuimage"
	"github.com/phanxgames/gpuimage/backend/soft"
)

// recorder is a Filter that only records the geometry it is drawn with.
type recorder struct {
	initialized bool
	draws       int
	texCoords   []float32
}

func (r *recorder) Init(gpuimage.Context) error { r.initialized = true; return nil }
func (r *recorder) Initialized() bool { return r.initialized }
func (r *recorder) OutputSizeChanged(gpuimage.Context, int, int) {}
func (r *recorder) Destroy(gpuimage.Context) {}
func (r *recorder) Draw(_ gpuimage.Context, _ gpuimage.Texture, _, texCoords []float32) {
	r.draws++
	r.texCoords = append([]float32(nil), texCoords...)
}

func TestGroupFinalStageParity(t *testing.T) {
	upright := gpuimage.TextureCoordinates(gpuimage.RotationNormal, false, false)
	flipped := gpuimage.TextureCoordinates(gpuimage.RotationNormal, false, true)
	tests := []struct {
		n    int
		want []float32
	}{
		{1, upright},
		{2, flipped},
		{3, upright},
		{4, flipped},
	}
	for _, tt := range tests {
		stubs := make([]*recorder, tt.n)
		filters := make([]gpuimage.Filter, tt.n)
		for i := range stubs {
			stubs[i] = &recorder{}
			filters[i] = stubs[i]
		}
		g := gpuimage.NewGroup(filters...)
		ctx := soft.NewContext(4, 4)
		_ = g.Init(ctx)
		g.OutputSizeChanged(ctx, 4, 4)
		g.Draw(ctx, gpuimage.NoTexture, gpuimage.Cube, upright)

		last := stubs[tt.n-1]
		if last.draws != 1 {
			t.Fatalf("n=%d: last stage drawn %d times, want 1", tt.n, last.draws)
		}
		if diff := cmp.Diff(tt.want, last.texCoords); diff != "" {
			t.Errorf("n=%d: last stage coordinates (-want +got):\n%s", tt.n, diff)
		}
	}
}

func TestGroupFlattenAfterInnerChange(t *testing.T) {
	inner := gpuimage.NewGroup(&recorder{}, &recorder{})
	outer := gpuimage.NewGroup(inner)
	if n := len(outer.MergedFilters()); n != 2 {
		t.Fatalf("merged = %d, want 2", n)
	}

	inner.AddFilter(&recorder{})
	outer.UpdateMergedFilters()
	if n := len(outer.MergedFilters()); n != 3 {
		t.Errorf("merged after inner AddFilter = %d, want 3", n)
	}
}

func TestGroupDestroyDestroysChildren(t *testing.T) {
	a, b := gpuimage.NewPassthroughFilter(), gpuimage.NewGrayscaleFilter()
	ctx := soft.NewContext(2, 2)
	g := gpuimage.NewGroup(a, gpuimage.NewGroup(b))
	_ = g.Init(ctx)
	g.OutputSizeChanged(ctx, 2, 2)
	g.Destroy(ctx)
	if !a.Destroyed() || !b.Destroyed() {
		t.Errorf("children destroyed = %v, %v, want true", a.Destroyed(), b.Destroyed())
	}
	if ctx.LiveFramebuffers() != 0 || ctx.LivePrograms() != 0 {
		t.Errorf("live after Destroy: %d framebuffers, %d programs", ctx.LiveFramebuffers(), ctx.LivePrograms())
	}
}

func TestMergedFiltersSnapshotIsStable(t *testing.T) {
	inner := gpuimage.NewGroup()
	last := &recorder{}
	g := gpuimage.NewGroup(inner, last)
	before := g.MergedFilters()

	first := &recorder{}
	inner.AddFilter(first)
	g.UpdateMergedFilters()

	if len(before) != 1 || before[0] != gpuimage.Filter(last) {
		t.Errorf("earlier snapshot changed to %v", before)
	}
	got := g.MergedFilters()
	if len(got) != 2 || got[0] != gpuimage.Filter(first) || got[1] != gpuimage.Filter(last) {
		t.Errorf("merged = %v, want [first last]", got)
	}
}
