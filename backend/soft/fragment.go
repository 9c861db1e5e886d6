package soft

import (
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/phanxgames/gpuimage"
)

// FragmentFunc computes the color of one pixel.
type FragmentFunc func(f *Fragment) mgl32.Vec4

// Fragment is the input of a FragmentFunc: the interpolated texture
// coordinates of the pixel plus access to the program's uniforms and
// samplers. It is reused between pixels.
type Fragment struct {
	// TexCoord is the normalized coordinate in image 0.
	TexCoord mgl32.Vec2
	// TexCoord2 is the normalized coordinate in image 1 of two-input
	// programs.
	TexCoord2 mgl32.Vec2

	ctx  *Context
	prog *program
}

func (f *Fragment) run() mgl32.Vec4 {
	return f.prog.fragment(f)
}

func (f *Fragment) value(name string, n int) []float32 {
	v := f.prog.lookup(name)
	if len(v) < n {
		return make([]float32, n)
	}
	return v
}

// Float returns a float uniform. Unset uniforms are zero.
func (f *Fragment) Float(name string) float32 { return f.value(name, 1)[0] }

// Vec2 returns a vec2 uniform.
func (f *Fragment) Vec2(name string) mgl32.Vec2 {
	v := f.value(name, 2)
	return mgl32.Vec2{v[0], v[1]}
}

// Vec3 returns a vec3 uniform.
func (f *Fragment) Vec3(name string) mgl32.Vec3 {
	v := f.value(name, 3)
	return mgl32.Vec3{v[0], v[1], v[2]}
}

// Vec4 returns a vec4 uniform.
func (f *Fragment) Vec4(name string) mgl32.Vec4 {
	v := f.value(name, 4)
	return mgl32.Vec4{v[0], v[1], v[2], v[3]}
}

// Mat3 returns a mat3 uniform (column-major).
func (f *Fragment) Mat3(name string) mgl32.Mat3 {
	var m mgl32.Mat3
	copy(m[:], f.value(name, 9))
	return m
}

// Mat4 returns a mat4 uniform (column-major).
func (f *Fragment) Mat4(name string) mgl32.Mat4 {
	var m mgl32.Mat4
	copy(m[:], f.value(name, 16))
	return m
}

// Floats returns a float array uniform.
func (f *Fragment) Floats(name string) []float32 { return f.prog.lookup(name) }

// texture returns the texture bound for image i (0 or 1), following the
// sampler uniforms.
func (f *Fragment) texture(i int) *texture {
	name := gpuimage.SamplerInputImage
	if i == 1 {
		name = gpuimage.SamplerInputImage2
	}
	unit := 0
	if v := f.prog.lookup(name); len(v) > 0 {
		unit = int(v[0])
	}
	if unit < 0 || unit >= maxTextureUnits {
		return nil
	}
	return f.ctx.textures[f.ctx.units[unit]]
}

// Size returns the size of image i in pixels.
func (f *Fragment) Size(i int) (width, height int) {
	if t := f.texture(i); t != nil {
		return t.width, t.height
	}
	return 0, 0
}

// Sample reads image i at the normalized coordinate uv, honoring the
// texture's filter and wrap options. Missing textures read as transparent
// black.
func (f *Fragment) Sample(i int, uv mgl32.Vec2) mgl32.Vec4 {
	t := f.texture(i)
	if t == nil || t.width == 0 || t.height == 0 {
		return mgl32.Vec4{}
	}
	x := float64(uv[0])*float64(t.width) - 0.5
	y := float64(uv[1])*float64(t.height) - 0.5
	if t.opts.Filter == gpuimage.FilterNearest {
		return t.texel(int(math.Round(x)), int(math.Round(y)))
	}
	x0, y0 := math.Floor(x), math.Floor(y)
	fx, fy := float32(x-x0), float32(y-y0)
	ix, iy := int(x0), int(y0)
	c00 := t.texel(ix, iy)
	c10 := t.texel(ix+1, iy)
	c01 := t.texel(ix, iy+1)
	c11 := t.texel(ix+1, iy+1)
	top := c00.Mul(1 - fx).Add(c10.Mul(fx))
	bottom := c01.Mul(1 - fx).Add(c11.Mul(fx))
	return top.Mul(1 - fy).Add(bottom.Mul(fy))
}

func (t *texture) texel(x, y int) mgl32.Vec4 {
	if t.opts.Wrap == gpuimage.WrapRepeat {
		x = ((x % t.width) + t.width) % t.width
		y = ((y % t.height) + t.height) % t.height
	} else {
		x = min(max(x, 0), t.width-1)
		y = min(max(y, 0), t.height-1)
	}
	o := 4 * (y*t.width + x)
	return mgl32.Vec4{
		float32(t.pix[o]) / 255,
		float32(t.pix[o+1]) / 255,
		float32(t.pix[o+2]) / 255,
		float32(t.pix[o+3]) / 255,
	}
}

// Registry maps Kage fragment sources to their Go implementations. It is
// safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	funcs map[string]FragmentFunc
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{funcs: make(map[string]FragmentFunc)}
}

// Register sets the implementation of the fragment unit src.
func (r *Registry) Register(src string, fn FragmentFunc) {
	r.mu.Lock()
	r.funcs[src] = fn
	r.mu.Unlock()
}

// Lookup returns the implementation of src, or nil.
func (r *Registry) Lookup(src string) FragmentFunc {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.funcs[src]
}

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// DefaultRegistry returns the shared registry holding the built-in programs.
// Programs registered on it are visible to every context using it.
func DefaultRegistry() *Registry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewRegistry()
		registerBuiltins(defaultRegistry)
	})
	return defaultRegistry
}
