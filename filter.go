package gpuimage

import (
	"slices"
	"sync"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"
)

// Filter is one stage of the image pipeline. Every method except the
// parameter setters of concrete filters must be called on the render-owning
// goroutine with that goroutine's Context.
type Filter interface {
	// Init compiles and links the filter's program. It is idempotent.
	// Failures are logged and returned; a filter that failed to initialize
	// skips its draws instead of aborting the pipeline.
	Init(ctx Context) error
	// Initialized reports whether the program is linked and usable.
	Initialized() bool
	// OutputSizeChanged records the render target size so size-dependent
	// uniforms can be recomputed.
	OutputSizeChanged(ctx Context, width, height int)
	// Draw runs pending tasks, then renders input into the bound target
	// using the given quad vertices and texture coordinates.
	Draw(ctx Context, input Texture, vertices, texCoords []float32)
	// Destroy releases every GPU resource the filter owns. It is
	// idempotent; any other call afterwards panics with ErrFilterDestroyed.
	Destroy(ctx Context)
}

// ShaderFilter is a Filter wrapping a single shader program. With the
// passthrough sources it copies its input unchanged; effect filters embed it
// and add typed setters.
//
// Uniform setters may be called from any goroutine at any time before
// Destroy, including before the program exists: each one queues a task that
// initializes the program if needed and then writes the value, so writes
// land in submission order at the next Draw.
type ShaderFilter struct {
	vertexSrc   string
	fragmentSrc string

	prog    *program
	initErr error

	outputWidth  int
	outputHeight int

	tasks     TaskQueue
	destroyed atomic.Bool

	// Hooks for filters built on top of ShaderFilter.
	onInit     func(ctx Context)
	beforeDraw func(ctx Context)
	afterDraw  func(ctx Context)
	onDestroy  func(ctx Context)
}

// NewShaderFilter creates a filter from a vertex and a fragment unit.
func NewShaderFilter(vertexSrc, fragmentSrc string) *ShaderFilter {
	return &ShaderFilter{vertexSrc: vertexSrc, fragmentSrc: fragmentSrc}
}

// NewPassthroughFilter creates a filter that copies its input unchanged.
func NewPassthroughFilter() *ShaderFilter {
	return NewShaderFilter(PassthroughVertexShader, PassthroughFragmentShader)
}

// VertexShader returns the vertex unit source.
func (f *ShaderFilter) VertexShader() string { return f.vertexSrc }

// FragmentShader returns the fragment unit source.
func (f *ShaderFilter) FragmentShader() string { return f.fragmentSrc }

// Program returns the linked program, or NoProgram before initialization.
func (f *ShaderFilter) Program() Program {
	if f.prog == nil {
		return NoProgram
	}
	return f.prog.id
}

// Initialized reports whether the program is linked.
func (f *ShaderFilter) Initialized() bool { return f.prog != nil }

// Destroyed reports whether Destroy has been called.
func (f *ShaderFilter) Destroyed() bool { return f.destroyed.Load() }

// OutputSize returns the size recorded by the last OutputSizeChanged.
func (f *ShaderFilter) OutputSize() (width, height int) {
	return f.outputWidth, f.outputHeight
}

// Init compiles and links the program once. A failed link is remembered so
// the pipeline does not recompile every frame.
func (f *ShaderFilter) Init(ctx Context) error {
	f.checkLive()
	if f.prog != nil {
		return nil
	}
	if f.initErr != nil {
		return f.initErr
	}
	p, err := loadProgram(ctx, f.vertexSrc, f.fragmentSrc)
	if err != nil {
		f.initErr = err
		return err
	}
	f.prog = p
	ctx.UseProgram(p.id)
	if f.onInit != nil {
		f.onInit(ctx)
	}
	return nil
}

// OutputSizeChanged records the new output size.
func (f *ShaderFilter) OutputSizeChanged(_ Context, width, height int) {
	f.outputWidth = width
	f.outputHeight = height
}

// Draw binds the program, drains pending tasks and draws a 4-vertex triangle
// strip sampling input on texture unit 0. Tasks are drained even when the
// program does not exist yet, so queued setters initialize the filter as a
// side effect; the draw itself is skipped when initialization failed.
func (f *ShaderFilter) Draw(ctx Context, input Texture, vertices, texCoords []float32) {
	f.checkLive()
	if f.prog != nil {
		ctx.UseProgram(f.prog.id)
	}
	f.tasks.Run(ctx)
	p := f.prog
	if p == nil {
		return
	}
	ctx.UseProgram(p.id)

	ctx.EnableVertexAttribArray(p.position)
	ctx.VertexAttribPointer(p.position, 2, vertices)
	ctx.EnableVertexAttribArray(p.texCoord)
	ctx.VertexAttribPointer(p.texCoord, 2, texCoords)
	if input != NoTexture {
		ctx.ActiveTexture(0)
		ctx.BindTexture(input)
		ctx.Uniform1i(p.sampler, 0)
	}
	if f.beforeDraw != nil {
		f.beforeDraw(ctx)
	}
	ctx.DrawArrays(TriangleStrip, 0, 4)

	if f.afterDraw != nil {
		f.afterDraw(ctx)
	}
	ctx.DisableVertexAttribArray(p.position)
	ctx.DisableVertexAttribArray(p.texCoord)
	ctx.ActiveTexture(0)
	ctx.BindTexture(NoTexture)
}

// Destroy runs the filter's own cleanup, then releases the program and drops
// pending tasks.
func (f *ShaderFilter) Destroy(ctx Context) {
	if f.destroyed.Swap(true) {
		return
	}
	if f.onDestroy != nil {
		f.onDestroy(ctx)
	}
	if f.prog != nil {
		ctx.DeleteProgram(f.prog.id)
		f.prog = nil
	}
	f.tasks.Discard()
}

// RunOnDraw queues task to run at the start of the next Draw.
func (f *ShaderFilter) RunOnDraw(task Task) {
	f.checkLive()
	f.tasks.Push(task)
}

// PendingTasks returns the number of queued tasks.
func (f *ShaderFilter) PendingTasks() int { return f.tasks.Len() }

// UniformLocation returns the cached location of name. It must only be called
// from a task or hook, after initialization.
func (f *ShaderFilter) UniformLocation(ctx Context, name string) UniformLocation {
	if f.prog == nil {
		return NoLocation
	}
	return f.prog.location(ctx, name)
}

// setUniform queues "init if needed, then write" for the named uniform.
func (f *ShaderFilter) setUniform(name string, write func(ctx Context, loc UniformLocation)) {
	f.RunOnDraw(func(ctx Context) {
		if f.Init(ctx) != nil {
			return
		}
		ctx.UseProgram(f.prog.id)
		write(ctx, f.prog.location(ctx, name))
	})
}

// SetInt queues an integer uniform write.
func (f *ShaderFilter) SetInt(name string, v int32) {
	f.setUniform(name, func(ctx Context, loc UniformLocation) { ctx.Uniform1i(loc, v) })
}

// SetFloat queues a float uniform write.
func (f *ShaderFilter) SetFloat(name string, v float32) {
	f.setUniform(name, func(ctx Context, loc UniformLocation) { ctx.Uniform1f(loc, v) })
}

// SetVec2 queues a vec2 uniform write.
func (f *ShaderFilter) SetVec2(name string, v mgl32.Vec2) {
	f.setUniform(name, func(ctx Context, loc UniformLocation) { ctx.Uniform2f(loc, v) })
}

// SetVec3 queues a vec3 uniform write. Channel order is the shader's (RGB).
func (f *ShaderFilter) SetVec3(name string, v mgl32.Vec3) {
	f.setUniform(name, func(ctx Context, loc UniformLocation) { ctx.Uniform3f(loc, v) })
}

// SetVec4 queues a vec4 uniform write.
func (f *ShaderFilter) SetVec4(name string, v mgl32.Vec4) {
	f.setUniform(name, func(ctx Context, loc UniformLocation) { ctx.Uniform4f(loc, v) })
}

// SetFloatArray queues a float array uniform write. The slice is copied.
func (f *ShaderFilter) SetFloatArray(name string, v []float32) {
	v = slices.Clone(v)
	f.setUniform(name, func(ctx Context, loc UniformLocation) { ctx.Uniform1fv(loc, v) })
}

// SetPoint queues a vec2 uniform write from two coordinates.
func (f *ShaderFilter) SetPoint(name string, x, y float32) {
	f.SetVec2(name, mgl32.Vec2{x, y})
}

// SetMatrix3 queues a mat3 uniform write (column-major).
func (f *ShaderFilter) SetMatrix3(name string, m mgl32.Mat3) {
	f.setUniform(name, func(ctx Context, loc UniformLocation) { ctx.UniformMatrix3f(loc, m) })
}

// SetMatrix4 queues a mat4 uniform write (column-major).
func (f *ShaderFilter) SetMatrix4(name string, m mgl32.Mat4) {
	f.setUniform(name, func(ctx Context, loc UniformLocation) { ctx.UniformMatrix4f(loc, m) })
}

func (f *ShaderFilter) checkLive() {
	if f.destroyed.Load() {
		panic(ErrFilterDestroyed)
	}
}

// param holds the last value passed to a setter so its getter can return it.
// Setters and getters may run on different goroutines.
type param[T any] struct {
	mu sync.Mutex
	v  T
}

func (p *param[T]) store(v T) {
	p.mu.Lock()
	p.v = v
	p.mu.Unlock()
}

func (p *param[T]) load() T {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.v
}
