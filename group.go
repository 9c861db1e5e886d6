package gpuimage

import (
	"log/slog"
	"sync/atomic"
)

// Flattener is implemented by filters composed of other filters. A Group
// expands any child implementing it into its leaf filters.
type Flattener interface {
	Filter
	UpdateMergedFilters()
	MergedFilters() []Filter
}

// Group is a Filter that runs an ordered sequence of child filters, each one
// sampling the previous one's output through an offscreen framebuffer. Nested
// groups are flattened: only leaf filters are drawn.
//
// The group owns its children. Destroying the group destroys every child.
type Group struct {
	filters []Filter
	merged  []Filter

	framebuffers []Framebuffer
	fbTextures   []Texture

	outputWidth  int
	outputHeight int
	initialized  bool

	tasks     TaskQueue
	destroyed atomic.Bool

	onInit func(ctx Context)
}

// Fixed geometry for stages after the first.
var (
	groupTexture     = TextureCoordinates(RotationNormal, false, false)
	groupTextureFlip = TextureCoordinates(RotationNormal, false, true)
)

// NewGroup creates a group running filters in order.
func NewGroup(filters ...Filter) *Group {
	g := &Group{filters: append([]Filter(nil), filters...)}
	g.UpdateMergedFilters()
	return g
}

// AddFilter appends f and recomputes the flattened list. Call it on the
// render goroutine (or through RunOnDraw) once the group is in use.
func (g *Group) AddFilter(f Filter) {
	g.checkLive()
	g.filters = append(g.filters, f)
	g.UpdateMergedFilters()
}

// Filters returns the direct children.
func (g *Group) Filters() []Filter { return g.filters }

// MergedFilters returns the flattened leaf filters from the last
// UpdateMergedFilters.
func (g *Group) MergedFilters() []Filter { return g.merged }

// UpdateMergedFilters recomputes the depth-first flattening of the children.
// Nested groups are refreshed first; empty nested groups contribute nothing.
// Slices returned by earlier MergedFilters calls are left untouched.
func (g *Group) UpdateMergedFilters() {
	merged := make([]Filter, 0, len(g.filters))
	for _, f := range g.filters {
		if sub, ok := f.(Flattener); ok {
			sub.UpdateMergedFilters()
			merged = append(merged, sub.MergedFilters()...)
			continue
		}
		merged = append(merged, f)
	}
	g.merged = merged
}

// Initialized reports whether Init has run.
func (g *Group) Initialized() bool { return g.initialized }

// OutputSize returns the size recorded by the last OutputSizeChanged.
func (g *Group) OutputSize() (width, height int) {
	return g.outputWidth, g.outputHeight
}

// Framebuffers returns the intermediate render targets and their textures.
func (g *Group) Framebuffers() ([]Framebuffer, []Texture) {
	return g.framebuffers, g.fbTextures
}

// Init initializes every direct child. A child that fails to compile is
// logged by the child and skipped at draw time.
func (g *Group) Init(ctx Context) error {
	g.checkLive()
	if g.initialized {
		return nil
	}
	g.initialized = true
	for _, f := range g.filters {
		_ = f.Init(ctx)
	}
	if g.onInit != nil {
		g.onInit(ctx)
	}
	return nil
}

// OutputSizeChanged propagates the size to every direct child and rebuilds
// the intermediate framebuffers at exactly width x height.
func (g *Group) OutputSizeChanged(ctx Context, width, height int) {
	g.checkLive()
	g.outputWidth = width
	g.outputHeight = height
	g.destroyFramebuffers(ctx)
	if len(g.filters) == 0 {
		return
	}
	for _, f := range g.filters {
		f.OutputSizeChanged(ctx, width, height)
	}
	g.createFramebuffers(ctx)
}

func (g *Group) createFramebuffers(ctx Context) {
	n := len(g.merged) - 1
	if n <= 0 || g.outputWidth <= 0 || g.outputHeight <= 0 {
		return
	}
	prev := ctx.BoundFramebuffer()
	g.framebuffers = make([]Framebuffer, n)
	g.fbTextures = make([]Texture, n)
	for i := range n {
		tex := ctx.CreateTexture(g.outputWidth, g.outputHeight, TextureOptions{
			Filter: FilterLinear,
			Wrap:   WrapClampToEdge,
		})
		g.fbTextures[i] = tex
		g.framebuffers[i] = ctx.CreateFramebuffer(tex)
	}
	ctx.BindFramebuffer(prev)
	Logger().Debug("gpuimage: group framebuffers allocated",
		slog.Int("count", n), slog.Int("width", g.outputWidth), slog.Int("height", g.outputHeight))
}

func (g *Group) destroyFramebuffers(ctx Context) {
	for _, fb := range g.framebuffers {
		ctx.DeleteFramebuffer(fb)
	}
	for _, tex := range g.fbTextures {
		ctx.DeleteTexture(tex)
	}
	g.framebuffers = nil
	g.fbTextures = nil
}

// Draw runs the flattened chain. Stage i renders into framebuffer i, except
// the last stage, which renders into whatever target was bound when Draw was
// called. The first stage uses the caller's geometry; later stages use the
// unrotated quad, and the last one samples with flipped coordinates when the
// chain length is even, compensating for the Y inversion each offscreen pass
// introduces.
func (g *Group) Draw(ctx Context, input Texture, vertices, texCoords []float32) {
	g.checkLive()
	g.runTasks(ctx)
	n := len(g.merged)
	if !g.initialized || n == 0 {
		return
	}
	if len(g.framebuffers) != n-1 {
		// Children changed after sizing.
		g.destroyFramebuffers(ctx)
		g.createFramebuffers(ctx)
		if len(g.framebuffers) != n-1 {
			return
		}
	}

	target := ctx.BoundFramebuffer()
	previous := input
	for i, f := range g.merged {
		last := i == n-1
		if !last {
			ctx.BindFramebuffer(g.framebuffers[i])
			ctx.ClearColor(0, 0, 0, 0)
			ctx.Clear()
		} else {
			ctx.BindFramebuffer(target)
		}

		switch {
		case i == 0:
			f.Draw(ctx, previous, vertices, texCoords)
		case last:
			f.Draw(ctx, previous, Cube, g.finalTexture(n))
		default:
			f.Draw(ctx, previous, Cube, groupTexture)
		}

		if !last {
			previous = g.fbTextures[i]
		}
	}
}

// finalTexture returns the coordinates for the last stage of an n-stage
// chain.
func (g *Group) finalTexture(n int) []float32 {
	if n%2 == 0 {
		return groupTextureFlip
	}
	return groupTexture
}

// runTasks drains this group's queue and those of nested groups, which are
// never drawn themselves once flattened.
func (g *Group) runTasks(ctx Context) {
	g.tasks.Run(ctx)
	for _, f := range g.filters {
		if sub, ok := f.(interface{ runTasks(Context) }); ok {
			sub.runTasks(ctx)
		}
	}
}

// RunOnDraw queues task to run at the start of the next Draw.
func (g *Group) RunOnDraw(task Task) {
	g.checkLive()
	g.tasks.Push(task)
}

// Destroy releases the intermediate framebuffers and destroys every child.
func (g *Group) Destroy(ctx Context) {
	if g.destroyed.Swap(true) {
		return
	}
	g.destroyFramebuffers(ctx)
	for _, f := range g.filters {
		f.Destroy(ctx)
	}
	g.initialized = false
	g.tasks.Discard()
}

// Destroyed reports whether Destroy has been called.
func (g *Group) Destroyed() bool { return g.destroyed.Load() }

func (g *Group) checkLive() {
	if g.destroyed.Load() {
		panic(ErrFilterDestroyed)
	}
}
