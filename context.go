package gpuimage

import "github.com/go-gl/mathgl/mgl32"

// Shader is a compiled shader unit owned by a Context. Zero is never a valid
// shader.
type Shader uint32

// Program is a linked shader program owned by a Context. NoProgram means
// "not created".
type Program uint32

// Texture is a texture handle owned by a Context. NoTexture means "no texture".
type Texture uint32

// Framebuffer is an offscreen render target handle. NoFramebuffer selects the
// visible surface.
type Framebuffer uint32

// UniformLocation identifies a uniform inside one program. Writes to
// NoLocation are ignored.
type UniformLocation int32

// AttribLocation identifies a vertex attribute inside one program.
type AttribLocation int32

const (
	NoProgram     Program         = 0
	NoTexture     Texture         = 0
	NoFramebuffer Framebuffer     = 0
	NoLocation    UniformLocation = -1
	NoAttrib      AttribLocation  = -1
)

// ShaderStage selects which unit of a program a source belongs to.
type ShaderStage uint8

const (
	VertexStage   ShaderStage = iota // coordinate setup and uniform declarations
	FragmentStage                    // per-pixel color computation
)

// String returns the lower-case stage name.
func (s ShaderStage) String() string {
	switch s {
	case VertexStage:
		return "vertex"
	case FragmentStage:
		return "fragment"
	default:
		return "unknown"
	}
}

// DrawMode is the primitive topology for DrawArrays.
type DrawMode uint8

const (
	TriangleStrip DrawMode = iota // every filter stage draws a 4-vertex strip
)

// TextureFilter selects the sampling filter of a texture.
type TextureFilter uint8

const (
	FilterLinear  TextureFilter = iota // bilinear
	FilterNearest                      // nearest texel
)

// TextureWrap selects the addressing mode outside [0, 1].
type TextureWrap uint8

const (
	WrapClampToEdge TextureWrap = iota // repeat the border texel
	WrapRepeat                         // tile
)

// TextureOptions configures CreateTexture.
type TextureOptions struct {
	Filter TextureFilter
	Wrap   TextureWrap
}

// Standard attribute and sampler names every program may declare.
const (
	AttribPosition           = "Position"
	AttribTextureCoordinate  = "InputTextureCoordinate"
	AttribTextureCoordinate2 = "InputTextureCoordinate2"
	SamplerInputImage        = "InputImageTexture"
	SamplerInputImage2       = "InputImageTexture2"
)

// Context is the rendering context binding: the primitive GPU operations
// filters are built from. A Context belongs to exactly one goroutine, the
// render-owning one; every method must be called from it. Other goroutines
// reach the GPU only through task queues (see TaskQueue).
type Context interface {
	CreateShader(stage ShaderStage, src string) (Shader, error)
	DeleteShader(s Shader)
	CreateProgram(vertex, fragment Shader) (Program, error)
	DeleteProgram(p Program)
	UseProgram(p Program)
	AttribLocation(p Program, name string) AttribLocation
	UniformLocation(p Program, name string) UniformLocation

	Uniform1i(loc UniformLocation, v int32)
	Uniform1f(loc UniformLocation, v float32)
	Uniform2f(loc UniformLocation, v mgl32.Vec2)
	Uniform3f(loc UniformLocation, v mgl32.Vec3)
	Uniform4f(loc UniformLocation, v mgl32.Vec4)
	Uniform1fv(loc UniformLocation, v []float32)
	UniformMatrix3f(loc UniformLocation, m mgl32.Mat3)
	UniformMatrix4f(loc UniformLocation, m mgl32.Mat4)

	// CreateTexture allocates an uninitialized RGBA texture.
	CreateTexture(width, height int, opts TextureOptions) Texture
	// UploadTexture replaces the texture contents with tightly packed RGBA
	// rows, top row first. The texture is resized when the size differs.
	UploadTexture(t Texture, width, height int, pix []byte)
	TextureSize(t Texture) (width, height int)
	ActiveTexture(unit int)
	BindTexture(t Texture)
	DeleteTexture(t Texture)

	CreateFramebuffer(color Texture) Framebuffer
	BindFramebuffer(fb Framebuffer)
	BoundFramebuffer() Framebuffer
	DeleteFramebuffer(fb Framebuffer)
	ClearColor(r, g, b, a float32)
	Clear()
	// ReadPixels returns the bound target's pixels as RGBA rows, bottom row
	// first.
	ReadPixels(width, height int) []byte

	EnableVertexAttribArray(loc AttribLocation)
	DisableVertexAttribArray(loc AttribLocation)
	VertexAttribPointer(loc AttribLocation, size int, data []float32)
	DrawArrays(mode DrawMode, first, count int)
}
