// Package ebitenctx implements gpuimage.Context on Ebitengine. Programs are
// linked into Kage shaders, textures and framebuffers are offscreen
// ebiten.Images, and the visible surface is the screen image handed to the
// game's Draw.
//
// Quads keep the GL conventions of the engine: offscreen targets store
// clip y=-1 in row 0 and the surface shows clip y=+1 at the top, so filter
// chains come out upright on screen.
//
// Texture options are recorded but do not change sampling. Kage reads
// images at the nearest texel and returns transparent black outside their
// bounds, and DrawTrianglesShader has no filter or address mode. Filters
// that read neighbors clamp positions in their own shader helpers; only
// secondary images resized to the primary input are scaled linearly.
package ebitenctx

import (
	"image"
	"image/color"
	"log/slog"
	"slices"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"

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

type shaderUnit struct {
	stage gpuimage.ShaderStage
	src   string
}

type program struct {
	shader   *ebiten.Shader
	names    []string
	uniforms map[string]any
	samplers [2]int
	image1   bool
}

type texture struct {
	img  *ebiten.Image
	opts gpuimage.TextureOptions
}

type attrib struct {
	enabled bool
	size    int
	data    []float32
}

// Context is a gpuimage.Context drawing with Ebitengine. It must only be
// used from the goroutine running the game's Draw.
type Context struct {
	surface *ebiten.Image

	shaders      map[gpuimage.Shader]*shaderUnit
	programs     map[gpuimage.Program]*program
	textures     map[gpuimage.Texture]*texture
	framebuffers map[gpuimage.Framebuffer]gpuimage.Texture
	nextID       uint32

	current    gpuimage.Program
	bound      gpuimage.Framebuffer
	activeUnit int
	units      [maxTextureUnits]gpuimage.Texture
	clearColor color.RGBA
	attribs    [attribCount]attrib

	scratch  scratchPool
	vertices []ebiten.Vertex
	indices  []uint32
	op       ebiten.DrawTrianglesShaderOptions
}

var _ gpuimage.Context = (*Context)(nil)

// NewContext creates a context without a surface. Call SetSurface before
// drawing to the visible surface.
func NewContext() *Context {
	return &Context{
		shaders:      make(map[gpuimage.Shader]*shaderUnit),
		programs:     make(map[gpuimage.Program]*program),
		textures:     make(map[gpuimage.Texture]*texture),
		framebuffers: make(map[gpuimage.Framebuffer]gpuimage.Texture),
	}
}

// SetSurface sets the image NoFramebuffer draws into, normally the screen
// passed to Draw.
func (c *Context) SetSurface(img *ebiten.Image) {
	c.surface = img
}

func (c *Context) id() uint32 {
	c.nextID++
	return c.nextID
}

// CreateShader stores a source unit. Kage compiles whole programs, so errors
// other than a missing entry point surface in CreateProgram.
func (c *Context) CreateShader(stage gpuimage.ShaderStage, src string) (gpuimage.Shader, error) {
	if stage == gpuimage.FragmentStage && !kage.HasFragment(src) {
		return 0, &gpuimage.ShaderError{Stage: stage.String(), Log: "missing Fragment entry point"}
	}
	id := gpuimage.Shader(c.id())
	c.shaders[id] = &shaderUnit{stage: stage, src: src}
	return id, nil
}

func (c *Context) DeleteShader(s gpuimage.Shader) {
	delete(c.shaders, s)
}

// CreateProgram links the two units into one Kage shader and compiles it.
func (c *Context) CreateProgram(vertex, fragment gpuimage.Shader) (gpuimage.Program, error) {
	vs, fs := c.shaders[vertex], c.shaders[fragment]
	if vs == nil || fs == nil || vs.stage != gpuimage.VertexStage || fs.stage != gpuimage.FragmentStage {
		return gpuimage.NoProgram, &gpuimage.ShaderError{Stage: "link", Log: "invalid shader units"}
	}
	sh, err := ebiten.NewShader([]byte(kage.Link(vs.src, fs.src)))
	if err != nil {
		return gpuimage.NoProgram, &gpuimage.ShaderError{Stage: "link", Log: err.Error()}
	}
	p := &program{
		shader:   sh,
		names:    kage.Uniforms(vs.src, fs.src),
		uniforms: make(map[string]any),
		image1:   strings.Contains(vs.src+fs.src, "imageSrc1"),
	}
	p.names = append(p.names, gpuimage.SamplerInputImage, gpuimage.SamplerInputImage2)
	id := gpuimage.Program(c.id())
	c.programs[id] = p
	gpuimage.Logger().Debug("ebitenctx: program linked", slog.Uint64("program", uint64(id)))
	return id, nil
}

func (c *Context) DeleteProgram(p gpuimage.Program) {
	if prog := c.programs[p]; prog != nil {
		prog.shader.Deallocate()
		delete(c.programs, p)
	}
	if c.current == p {
		c.current = gpuimage.NoProgram
	}
}

func (c *Context) UseProgram(p gpuimage.Program) {
	c.current = p
}

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

// set stores a uniform value for the current program. Sampler pseudo
// uniforms select texture units instead of reaching the shader.
func (c *Context) set(loc gpuimage.UniformLocation, v any) {
	prog := c.programs[c.current]
	if prog == nil || loc < 0 || int(loc) >= len(prog.names) {
		return
	}
	prog.uniforms[prog.names[loc]] = v
}

func (c *Context) Uniform1i(loc gpuimage.UniformLocation, v int32) {
	prog := c.programs[c.current]
	if prog == nil || loc < 0 || int(loc) >= len(prog.names) {
		return
	}
	switch prog.names[loc] {
	case gpuimage.SamplerInputImage:
		prog.samplers[0] = int(v)
	case gpuimage.SamplerInputImage2:
		prog.samplers[1] = int(v)
	default:
		prog.uniforms[prog.names[loc]] = int(v)
	}
}

func (c *Context) Uniform1f(loc gpuimage.UniformLocation, v float32) { c.set(loc, v) }

func (c *Context) Uniform2f(loc gpuimage.UniformLocation, v mgl32.Vec2) { c.set(loc, []float32{v[0], v[1]}) }

func (c *Context) Uniform3f(loc gpuimage.UniformLocation, v mgl32.Vec3) {
	c.set(loc, []float32{v[0], v[1], v[2]})
}

func (c *Context) Uniform4f(loc gpuimage.UniformLocation, v mgl32.Vec4) {
	c.set(loc, []float32{v[0], v[1], v[2], v[3]})
}

func (c *Context) Uniform1fv(loc gpuimage.UniformLocation, v []float32) { c.set(loc, slices.Clone(v)) }

// UniformMatrix3f stores a mat3. Kage matrices are column-major like mgl32.
func (c *Context) UniformMatrix3f(loc gpuimage.UniformLocation, m mgl32.Mat3) {
	c.set(loc, slices.Clone(m[:]))
}

// UniformMatrix4f stores a mat4.
func (c *Context) UniformMatrix4f(loc gpuimage.UniformLocation, m mgl32.Mat4) {
	c.set(loc, slices.Clone(m[:]))
}

func newImage(width, height int) *ebiten.Image {
	return ebiten.NewImageWithOptions(
		image.Rect(0, 0, max(width, 1), max(height, 1)),
		&ebiten.NewImageOptions{Unmanaged: true},
	)
}

// CreateTexture allocates a transparent texture. opts is kept for
// TextureOptions only; see the package documentation.
func (c *Context) CreateTexture(width, height int, opts gpuimage.TextureOptions) gpuimage.Texture {
	id := gpuimage.Texture(c.id())
	c.textures[id] = &texture{img: newImage(width, height), opts: opts}
	return id
}

// UploadTexture writes top-down RGBA rows. A texture of another size is
// reallocated.
func (c *Context) UploadTexture(t gpuimage.Texture, width, height int, pix []byte) {
	tex := c.textures[t]
	if tex == nil || width <= 0 || height <= 0 {
		return
	}
	if b := tex.img.Bounds(); b.Dx() != width || b.Dy() != height {
		tex.img.Deallocate()
		tex.img = newImage(width, height)
	}
	tex.img.WritePixels(pix[:4*width*height])
}

// TextureOptions returns the options t was created with.
func (c *Context) TextureOptions(t gpuimage.Texture) gpuimage.TextureOptions {
	if tex := c.textures[t]; tex != nil {
		return tex.opts
	}
	return gpuimage.TextureOptions{}
}

func (c *Context) TextureSize(t gpuimage.Texture) (width, height int) {
	if tex := c.textures[t]; tex != nil {
		b := tex.img.Bounds()
		return b.Dx(), b.Dy()
	}
	return 0, 0
}

// Image returns the ebiten image backing t, or nil.
func (c *Context) Image(t gpuimage.Texture) *ebiten.Image {
	if tex := c.textures[t]; tex != nil {
		return tex.img
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

func (c *Context) DeleteTexture(t gpuimage.Texture) {
	if tex := c.textures[t]; tex != nil {
		tex.img.Deallocate()
		delete(c.textures, t)
	}
	for i, u := range c.units {
		if u == t {
			c.units[i] = gpuimage.NoTexture
		}
	}
}

func (c *Context) CreateFramebuffer(color gpuimage.Texture) gpuimage.Framebuffer {
	id := gpuimage.Framebuffer(c.id())
	c.framebuffers[id] = color
	return id
}

func (c *Context) BindFramebuffer(fb gpuimage.Framebuffer) {
	c.bound = fb
}

func (c *Context) BoundFramebuffer() gpuimage.Framebuffer { return c.bound }

func (c *Context) DeleteFramebuffer(fb gpuimage.Framebuffer) {
	delete(c.framebuffers, fb)
	if c.bound == fb {
		c.bound = gpuimage.NoFramebuffer
	}
}

// target returns the bound render target and whether it is the surface.
func (c *Context) target() (*ebiten.Image, bool) {
	if c.bound == gpuimage.NoFramebuffer {
		return c.surface, true
	}
	if tex := c.textures[c.framebuffers[c.bound]]; tex != nil {
		return tex.img, false
	}
	return nil, false
}

func (c *Context) ClearColor(r, g, b, a float32) {
	c.clearColor = color.RGBA{R: unit8(r), G: unit8(g), B: unit8(b), A: unit8(a)}
}

func unit8(v float32) uint8 {
	return uint8(min(max(v, 0), 1)*255 + 0.5)
}

func (c *Context) Clear() {
	if img, _ := c.target(); img != nil {
		img.Fill(c.clearColor)
	}
}

// ReadPixels returns the bottom-left region of the bound target, bottom row
// first.
func (c *Context) ReadPixels(width, height int) []byte {
	out := make([]byte, 4*width*height)
	img, surface := c.target()
	if img == nil {
		return out
	}
	b := img.Bounds()
	tw, th := b.Dx(), b.Dy()
	all := make([]byte, 4*tw*th)
	img.ReadPixels(all)

	w := min(width, tw)
	for y := 0; y < min(height, th); y++ {
		src := y
		if surface {
			src = th - 1 - y
		}
		copy(out[4*y*width:4*(y*width+w)], all[4*src*tw:4*(src*tw+w)])
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

func (c *Context) vertex(a gpuimage.AttribLocation, v int) (x, y float32) {
	at := c.attribs[a]
	if !at.enabled || at.size < 2 || len(at.data) < (v+1)*at.size {
		return 0, 0
	}
	return at.data[v*at.size], at.data[v*at.size+1]
}

// sampled returns the image bound for sampler i of prog.
func (c *Context) sampled(prog *program, i int) *ebiten.Image {
	unit := prog.samplers[i]
	if unit < 0 || unit >= maxTextureUnits {
		return nil
	}
	if tex := c.textures[c.units[unit]]; tex != nil {
		return tex.img
	}
	return nil
}

// DrawArrays draws a triangle strip with the current program, replacing the
// target pixels it covers.
func (c *Context) DrawArrays(mode gpuimage.DrawMode, first, count int) {
	prog := c.programs[c.current]
	dst, surface := c.target()
	if prog == nil || dst == nil || mode != gpuimage.TriangleStrip || count < 3 {
		return
	}

	src0 := c.sampled(prog, 0)
	var src1 *ebiten.Image
	if prog.image1 {
		src1 = c.sampled(prog, 1)
		// Shader sources must share one size.
		if src0 != nil && src1 != nil && src1.Bounds().Size() != src0.Bounds().Size() {
			src1 = c.scratch.Resample(src1, src0.Bounds().Size())
		}
	}

	db := dst.Bounds()
	dw, dh := float32(db.Dx()), float32(db.Dy())
	var sw, sh float32
	if src0 != nil {
		sb := src0.Bounds()
		sw, sh = float32(sb.Dx()), float32(sb.Dy())
	}

	c.vertices = c.vertices[:0]
	for i := first; i < first+count; i++ {
		x, y := c.vertex(attribPosition, i)
		u, v := c.vertex(attribTexCoord, i)
		u2, v2 := c.vertex(attribTexCoord2, i)
		dy := (y + 1) / 2 * dh
		if surface {
			dy = (1 - y) / 2 * dh
		}
		c.vertices = append(c.vertices, ebiten.Vertex{
			DstX:   (x + 1) / 2 * dw,
			DstY:   dy,
			SrcX:   u * sw,
			SrcY:   v * sh,
			ColorR: u2,
			ColorG: v2,
			ColorA: 1,
		})
	}
	c.indices = c.indices[:0]
	for i := uint32(0); i+2 < uint32(count); i++ {
		c.indices = append(c.indices, i, i+1, i+2)
	}

	c.op = ebiten.DrawTrianglesShaderOptions{}
	c.op.Uniforms = prog.uniforms
	c.op.Images[0] = src0
	c.op.Images[1] = src1
	c.op.Blend = ebiten.BlendCopy
	dst.DrawTrianglesShader32(c.vertices, c.indices, prog.shader, &c.op)
	c.scratch.ReleaseAll()
}

// LiveTextures returns the number of textures not yet deleted.
func (c *Context) LiveTextures() int { return len(c.textures) }

// LiveFramebuffers returns the number of framebuffers not yet deleted.
func (c *Context) LiveFramebuffers() int { return len(c.framebuffers) }

// Dispose deallocates every resource still owned by the context.
func (c *Context) Dispose() {
	for id := range c.programs {
		c.DeleteProgram(id)
	}
	for id := range c.framebuffers {
		c.DeleteFramebuffer(id)
	}
	for id := range c.textures {
		c.DeleteTexture(id)
	}
	clear(c.shaders)
	c.scratch.Dispose()
}
