// Package soft is a software implementation of gpuimage.Context. It
// rasterizes the 4-vertex strips on the CPU and runs fragment programs
// written in Go, registered under the Kage fragment source they stand for.
//
// It follows the GL memory convention of the engine: texture row 0 is v=0,
// framebuffers and the surface store clip y=-1 in row 0, and ReadPixels
// returns rows from row 0 up. It is meant for tests, headless batch
// processing and as a reference for GPU backends.
package soft

import (
	"fmt"
	"log/slog"
	"maps"
	"math"
	"slices"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/phanxgames/gpuimage"
	"github.com/phanxgames/gpuimage/internal/kage"
)

const maxTextureUnits = 8

// Fixed attribute slots.
const (
	attribPosition  gpuimage.AttribLocation = 0
	attribTexCoord  gpuimage.AttribLocation = 1
	attribTexCoord2 gpuimage.AttribLocation = 2
	attribCount                             = 3
)

type shader struct {
	stage gpuimage.ShaderStage
	src   string
}

type program struct {
	fragment FragmentFunc
	names    []string
	values   [][]float32
	// image1 is set when the program samples a second image.
	image1 bool
}

func (p *program) lookup(name string) []float32 {
	for i, n := range p.names {
		if n == name {
			return p.values[i]
		}
	}
	return nil
}

type texture struct {
	width, height int
	opts          gpuimage.TextureOptions
	pix           []byte
}

type attrib struct {
	enabled bool
	size    int
	data    []float32
}

// Context is a software gpuimage.Context. The zero value is not usable; call
// NewContext.
type Context struct {
	registry *Registry

	surface *texture

	shaders      map[gpuimage.Shader]*shader
	programs     map[gpuimage.Program]*program
	textures     map[gpuimage.Texture]*texture
	framebuffers map[gpuimage.Framebuffer]gpuimage.Texture
	nextID       uint32

	current    gpuimage.Program
	bound      gpuimage.Framebuffer
	activeUnit int
	units      [maxTextureUnits]gpuimage.Texture
	clearColor [4]float32
	attribs    [attribCount]attrib

	draws int
}

var _ gpuimage.Context = (*Context)(nil)

// NewContext creates a context whose visible surface is width x height. It
// runs the built-in fragment programs.
func NewContext(width, height int) *Context {
	return NewContextWithRegistry(width, height, DefaultRegistry())
}

// NewContextWithRegistry creates a context running the programs in reg.
func NewContextWithRegistry(width, height int, reg *Registry) *Context {
	return &Context{
		registry:     reg,
		surface:      newTexture(width, height, gpuimage.TextureOptions{}),
		shaders:      make(map[gpuimage.Shader]*shader),
		programs:     make(map[gpuimage.Program]*program),
		textures:     make(map[gpuimage.Texture]*texture),
		framebuffers: make(map[gpuimage.Framebuffer]gpuimage.Texture),
	}
}

func newTexture(width, height int, opts gpuimage.TextureOptions) *texture {
	width, height = max(width, 0), max(height, 0)
	return &texture{width: width, height: height, opts: opts, pix: make([]byte, 4*width*height)}
}

func (c *Context) id() uint32 {
	c.nextID++
	return c.nextID
}

// ResizeSurface changes the visible surface size. Its contents are cleared.
func (c *Context) ResizeSurface(width, height int) {
	c.surface = newTexture(width, height, gpuimage.TextureOptions{})
}

// SurfaceSize returns the visible surface size.
func (c *Context) SurfaceSize() (width, height int) {
	return c.surface.width, c.surface.height
}

// CreateShader stores a source unit. Fragment units must define Fragment
// and have a registered implementation.
func (c *Context) CreateShader(stage gpuimage.ShaderStage, src string) (gpuimage.Shader, error) {
	if stage == gpuimage.FragmentStage {
		if !kage.HasFragment(src) {
			return 0, &gpuimage.ShaderError{Stage: stage.String(), Log: "missing Fragment entry point"}
		}
		if c.registry.Lookup(src) == nil {
			return 0, &gpuimage.ShaderError{Stage: stage.String(), Log: "no software implementation registered for this source"}
		}
	}
	id := gpuimage.Shader(c.id())
	c.shaders[id] = &shader{stage: stage, src: src}
	return id, nil
}

// DeleteShader releases a shader unit.
func (c *Context) DeleteShader(s gpuimage.Shader) {
	delete(c.shaders, s)
}

// CreateProgram links a vertex and a fragment unit.
func (c *Context) CreateProgram(vertex, fragment gpuimage.Shader) (gpuimage.Program, error) {
	vs, fs := c.shaders[vertex], c.shaders[fragment]
	if vs == nil || fs == nil || vs.stage != gpuimage.VertexStage || fs.stage != gpuimage.FragmentStage {
		return gpuimage.NoProgram, &gpuimage.ShaderError{Stage: "link", Log: "invalid shader units"}
	}
	fn := c.registry.Lookup(fs.src)
	if fn == nil {
		return gpuimage.NoProgram, &gpuimage.ShaderError{Stage: "link", Log: "no software implementation registered"}
	}
	p := &program{
		fragment: fn,
		names:    kage.Uniforms(vs.src, fs.src),
		image1:   strings.Contains(vs.src+fs.src, "imageSrc1"),
	}
	p.names = append(p.names, gpuimage.SamplerInputImage)
	if p.image1 {
		p.names = append(p.names, gpuimage.SamplerInputImage2)
	}
	p.values = make([][]float32, len(p.names))
	id := gpuimage.Program(c.id())
	c.programs[id] = p
	gpuimage.Logger().Debug("soft: program linked",
		slog.Uint64("program", uint64(id)), slog.Any("uniforms", p.names))
	return id, nil
}

// DeleteProgram releases a program.
func (c *Context) DeleteProgram(p gpuimage.Program) {
	delete(c.programs, p)
	if c.current == p {
		c.current = gpuimage.NoProgram
	}
}

// UseProgram selects the program for uniform writes and draws.
func (c *Context) UseProgram(p gpuimage.Program) {
	c.current = p
}

// CurrentProgram returns the program selected by UseProgram.
func (c *Context) CurrentProgram() gpuimage.Program { return c.current }

// AttribLocation returns the fixed slot of a standard attribute.
func (c *Context) AttribLocation(p gpuimage.Program, name string) gpuimage.AttribLocation {
	prog := c.programs[p]
	if prog == nil {
		return gpuimage.NoAttrib
	}
	switch name {
	case gpuimage.AttribPosition:
		return attribPosition
	case gpuimage.AttribTextureCoordinate:
		return attribTexCoord
	case gpuimage.AttribTextureCoordinate2:
		if prog.image1 {
			return attribTexCoord2
		}
	}
	return gpuimage.NoAttrib
}

// UniformLocation returns the index of a declared uniform, or NoLocation.
func (c *Context) UniformLocation(p gpuimage.Program, name string) gpuimage.UniformLocation {
	prog := c.programs[p]
	if prog == nil {
		return gpuimage.NoLocation
	}
	if i := slices.Index(prog.names, name); i >= 0 {
		return gpuimage.UniformLocation(i)
	}
	return gpuimage.NoLocation
}

func (c *Context) write(loc gpuimage.UniformLocation, v []float32) {
	prog := c.programs[c.current]
	if prog == nil || loc < 0 || int(loc) >= len(prog.values) {
		return
	}
	prog.values[loc] = v
}

func (c *Context) Uniform1i(loc gpuimage.UniformLocation, v int32) {
	c.write(loc, []float32{float32(v)})
}

func (c *Context) Uniform1f(loc gpuimage.UniformLocation, v float32) {
	c.write(loc, []float32{v})
}

func (c *Context) Uniform2f(loc gpuimage.UniformLocation, v mgl32.Vec2) {
	c.write(loc, v[:])
}

func (c *Context) Uniform3f(loc gpuimage.UniformLocation, v mgl32.Vec3) {
	c.write(loc, v[:])
}

func (c *Context) Uniform4f(loc gpuimage.UniformLocation, v mgl32.Vec4) {
	c.write(loc, v[:])
}

func (c *Context) Uniform1fv(loc gpuimage.UniformLocation, v []float32) {
	c.write(loc, slices.Clone(v))
}

func (c *Context) UniformMatrix3f(loc gpuimage.UniformLocation, m mgl32.Mat3) {
	c.write(loc, m[:])
}

func (c *Context) UniformMatrix4f(loc gpuimage.UniformLocation, m mgl32.Mat4) {
	c.write(loc, m[:])
}

// UniformValue returns the value last written to a uniform of p, or nil.
func (c *Context) UniformValue(p gpuimage.Program, name string) []float32 {
	prog := c.programs[p]
	if prog == nil {
		return nil
	}
	return slices.Clone(prog.lookup(name))
}

// CreateTexture allocates a transparent texture.
func (c *Context) CreateTexture(width, height int, opts gpuimage.TextureOptions) gpuimage.Texture {
	id := gpuimage.Texture(c.id())
	c.textures[id] = newTexture(width, height, opts)
	return id
}

// UploadTexture replaces the texture contents, resizing it when needed.
func (c *Context) UploadTexture(t gpuimage.Texture, width, height int, pix []byte) {
	tex := c.textures[t]
	if tex == nil {
		return
	}
	if len(pix) < 4*width*height {
		panic(fmt.Sprintf("soft: upload of %dx%d needs %d bytes, got %d", width, height, 4*width*height, len(pix)))
	}
	tex.width, tex.height = width, height
	tex.pix = slices.Clone(pix[:4*width*height])
}

// TextureSize returns the texture size, or zeros for unknown textures.
func (c *Context) TextureSize(t gpuimage.Texture) (width, height int) {
	if tex := c.textures[t]; tex != nil {
		return tex.width, tex.height
	}
	return 0, 0
}

// TexturePixels returns a copy of the texture contents, row 0 first.
func (c *Context) TexturePixels(t gpuimage.Texture) []byte {
	if tex := c.textures[t]; tex != nil {
		return slices.Clone(tex.pix)
	}
	return nil
}

func (c *Context) ActiveTexture(unit int) {
	if unit >= 0 && unit < maxTextureUnits {
		c.activeUnit = unit
	}
}

func (c *Context) BindTexture(t gpuimage.Texture) {
	c.units[c.activeUnit] = t
}

// DeleteTexture releases a texture and unbinds it from every unit.
func (c *Context) DeleteTexture(t gpuimage.Texture) {
	delete(c.textures, t)
	for i, u := range c.units {
		if u == t {
			c.units[i] = gpuimage.NoTexture
		}
	}
}

// LiveTextures returns the number of textures not yet deleted.
func (c *Context) LiveTextures() int { return len(c.textures) }

// Textures returns the live texture handles in creation order.
func (c *Context) Textures() []gpuimage.Texture {
	return slices.Sorted(maps.Keys(c.textures))
}

// CreateFramebuffer creates a render target drawing into color.
func (c *Context) CreateFramebuffer(color gpuimage.Texture) gpuimage.Framebuffer {
	id := gpuimage.Framebuffer(c.id())
	c.framebuffers[id] = color
	return id
}

func (c *Context) BindFramebuffer(fb gpuimage.Framebuffer) {
	c.bound = fb
}

func (c *Context) BoundFramebuffer() gpuimage.Framebuffer { return c.bound }

// DeleteFramebuffer releases a render target. Its color texture is kept.
func (c *Context) DeleteFramebuffer(fb gpuimage.Framebuffer) {
	delete(c.framebuffers, fb)
	if c.bound == fb {
		c.bound = gpuimage.NoFramebuffer
	}
}

// LiveFramebuffers returns the number of framebuffers not yet deleted.
func (c *Context) LiveFramebuffers() int { return len(c.framebuffers) }

// LivePrograms returns the number of programs not yet deleted.
func (c *Context) LivePrograms() int { return len(c.programs) }

// DrawCount returns the number of DrawArrays calls that produced pixels.
func (c *Context) DrawCount() int { return c.draws }

// target returns the texture behind the bound framebuffer.
func (c *Context) target() *texture {
	if c.bound == gpuimage.NoFramebuffer {
		return c.surface
	}
	color, ok := c.framebuffers[c.bound]
	if !ok {
		return nil
	}
	return c.textures[color]
}

func (c *Context) ClearColor(r, g, b, a float32) {
	c.clearColor = [4]float32{r, g, b, a}
}

// Clear fills the bound target with the clear color.
func (c *Context) Clear() {
	t := c.target()
	if t == nil {
		return
	}
	px := [4]byte{quantize(c.clearColor[0]), quantize(c.clearColor[1]), quantize(c.clearColor[2]), quantize(c.clearColor[3])}
	for i := 0; i < len(t.pix); i += 4 {
		copy(t.pix[i:i+4], px[:])
	}
}

// ReadPixels returns the bottom-left width x height region of the bound
// target, row 0 first. Pixels outside the target are transparent.
func (c *Context) ReadPixels(width, height int) []byte {
	out := make([]byte, 4*width*height)
	t := c.target()
	if t == nil {
		return out
	}
	w := min(width, t.width)
	for y := 0; y < min(height, t.height); y++ {
		copy(out[4*y*width:4*(y*width+w)], t.pix[4*y*t.width:4*(y*t.width+w)])
	}
	return out
}

func (c *Context) EnableVertexAttribArray(loc gpuimage.AttribLocation) {
	if loc >= 0 && loc < attribCount {
		c.attribs[loc].enabled = true
	}
}

func (c *Context) DisableVertexAttribArray(loc gpuimage.AttribLocation) {
	if loc >= 0 && loc < attribCount {
		c.attribs[loc].enabled = false
	}
}

func (c *Context) VertexAttribPointer(loc gpuimage.AttribLocation, size int, data []float32) {
	if loc >= 0 && loc < attribCount {
		c.attribs[loc].size = size
		c.attribs[loc].data = data
	}
}

// vertex reads component i of attribute a, or 0 when disabled.
func (c *Context) vertex(a gpuimage.AttribLocation, v int) mgl32.Vec2 {
	at := c.attribs[a]
	if !at.enabled || at.size < 2 || len(at.data) < (v+1)*at.size {
		return mgl32.Vec2{}
	}
	return mgl32.Vec2{at.data[v*at.size], at.data[v*at.size+1]}
}

// DrawArrays rasterizes a triangle strip into the bound target, sampling at
// pixel centers. Pixels are replaced, not blended.
func (c *Context) DrawArrays(mode gpuimage.DrawMode, first, count int) {
	prog := c.programs[c.current]
	t := c.target()
	if prog == nil || t == nil || mode != gpuimage.TriangleStrip || count < 3 || t.width == 0 || t.height == 0 {
		return
	}
	c.draws++

	frag := &Fragment{ctx: c, prog: prog}
	for i := first; i+2 < first+count; i++ {
		var pos, uv, uv2 [3]mgl32.Vec2
		for k := range 3 {
			pos[k] = c.vertex(attribPosition, i+k)
			uv[k] = c.vertex(attribTexCoord, i+k)
			uv2[k] = c.vertex(attribTexCoord2, i+k)
		}
		c.rasterize(t, frag, pos, uv, uv2)
	}
}

func (c *Context) rasterize(t *texture, frag *Fragment, pos, uv, uv2 [3]mgl32.Vec2) {
	x0, y0 := float64(pos[0][0]), float64(pos[0][1])
	x1, y1 := float64(pos[1][0]), float64(pos[1][1])
	x2, y2 := float64(pos[2][0]), float64(pos[2][1])
	area := (x1-x0)*(y2-y0) - (x2-x0)*(y1-y0)
	if area == 0 {
		return
	}
	const eps = 1e-9

	w, h := float64(t.width), float64(t.height)
	toPx := func(v, size float64) int { return int(math.Floor((v + 1) / 2 * size)) }
	minX := max(toPx(min(x0, x1, x2), w)-1, 0)
	maxX := min(toPx(max(x0, x1, x2), w)+1, t.width-1)
	minY := max(toPx(min(y0, y1, y2), h)-1, 0)
	maxY := min(toPx(max(y0, y1, y2), h)+1, t.height-1)

	for py := minY; py <= maxY; py++ {
		cy := (float64(py)+0.5)/h*2 - 1
		for px := minX; px <= maxX; px++ {
			cx := (float64(px)+0.5)/w*2 - 1
			b1 := ((cx-x0)*(y2-y0) - (x2-x0)*(cy-y0)) / area
			b2 := ((x1-x0)*(cy-y0) - (cx-x0)*(y1-y0)) / area
			b0 := 1 - b1 - b2
			if b0 < -eps || b1 < -eps || b2 < -eps {
				continue
			}
			frag.TexCoord = interpolate(uv, b0, b1, b2)
			frag.TexCoord2 = interpolate(uv2, b0, b1, b2)
			out := frag.run()
			o := 4 * (py*t.width + px)
			t.pix[o] = quantize(out[0])
			t.pix[o+1] = quantize(out[1])
			t.pix[o+2] = quantize(out[2])
			t.pix[o+3] = quantize(out[3])
		}
	}
}

func interpolate(v [3]mgl32.Vec2, b0, b1, b2 float64) mgl32.Vec2 {
	return mgl32.Vec2{
		float32(float64(v[0][0])*b0 + float64(v[1][0])*b1 + float64(v[2][0])*b2),
		float32(float64(v[0][1])*b0 + float64(v[1][1])*b1 + float64(v[2][1])*b2),
	}
}

func quantize(v float32) byte {
	return byte(math.Round(float64(min(max(v, 0), 1)) * 255))
}
