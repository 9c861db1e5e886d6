package gpuimage

import (
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"
)

// TextureSampling3x3Filter is a filter whose fragment unit reads the 3x3
// neighborhood of each pixel. The texel step is derived from the line size
// and the output size, unless the caller set it explicitly.
type TextureSampling3x3Filter struct {
	*ShaderFilter

	lineSize    float32
	texelWidth  float32
	texelHeight float32

	// overridden is set on the caller's goroutine before the explicit texel
	// write is queued, so a resize in between cannot derive over it.
	overridden atomic.Bool
}

// NewTextureSampling3x3Filter creates a 3x3 sampling filter around a fragment
// unit that uses the neighbor and sample helpers.
func NewTextureSampling3x3Filter(fragmentSrc string) *TextureSampling3x3Filter {
	return &TextureSampling3x3Filter{
		ShaderFilter: NewShaderFilter(ThreeByThreeSamplingVertexShader, fragmentSrc),
		lineSize:     1,
	}
}

// SetLineSize queues a new line size: the texel step becomes size divided by
// the output dimension, now and after every resize. It has no effect once
// SetTexelWidth or SetTexelHeight was called.
func (f *TextureSampling3x3Filter) SetLineSize(size float32) {
	f.RunOnDraw(func(Context) {
		f.lineSize = size
		f.deriveTexelSize()
	})
}

// SetTexelWidth sets the horizontal step explicitly and stops automatic
// derivation for this filter.
func (f *TextureSampling3x3Filter) SetTexelWidth(v float32) {
	f.overridden.Store(true)
	f.RunOnDraw(func(Context) {
		f.texelWidth = v
	})
	f.SetFloat("TexelWidth", v)
}

// SetTexelHeight sets the vertical step explicitly and stops automatic
// derivation for this filter.
func (f *TextureSampling3x3Filter) SetTexelHeight(v float32) {
	f.overridden.Store(true)
	f.RunOnDraw(func(Context) {
		f.texelHeight = v
	})
	f.SetFloat("TexelHeight", v)
}

// TexelSize returns the current texel step. Render goroutine only.
func (f *TextureSampling3x3Filter) TexelSize() (width, height float32) {
	return f.texelWidth, f.texelHeight
}

// OutputSizeChanged records the size and re-derives the texel step.
func (f *TextureSampling3x3Filter) OutputSizeChanged(ctx Context, width, height int) {
	f.ShaderFilter.OutputSizeChanged(ctx, width, height)
	f.deriveTexelSize()
}

func (f *TextureSampling3x3Filter) deriveTexelSize() {
	if f.overridden.Load() || f.outputWidth <= 0 || f.outputHeight <= 0 {
		return
	}
	f.texelWidth = f.lineSize / float32(f.outputWidth)
	f.texelHeight = f.lineSize / float32(f.outputHeight)
	f.SetFloat("TexelWidth", f.texelWidth)
	f.SetFloat("TexelHeight", f.texelHeight)
}

// IdentityKernel leaves the image unchanged.
var IdentityKernel = [9]float32{
	0, 0, 0,
	0, 1, 0,
	0, 0, 0,
}

// ConvolutionFilter applies a 3x3 kernel. A new filter uses IdentityKernel.
type ConvolutionFilter struct {
	*TextureSampling3x3Filter
	kernel param[[9]float32]
}

// NewConvolutionFilter creates a convolution filter with the identity kernel.
func NewConvolutionFilter() *ConvolutionFilter {
	return NewConvolutionFilterWithKernel(IdentityKernel)
}

// NewConvolutionFilterWithKernel creates a convolution filter with kernel.
func NewConvolutionFilterWithKernel(kernel [9]float32) *ConvolutionFilter {
	f := &ConvolutionFilter{
		TextureSampling3x3Filter: NewTextureSampling3x3Filter(ConvolutionFragmentShader),
	}
	f.SetConvolutionKernel(kernel)
	return f
}

// SetConvolutionKernel queues a new kernel, given row by row starting with
// the row that weighs the top neighbors.
func (f *ConvolutionFilter) SetConvolutionKernel(kernel [9]float32) {
	f.kernel.store(kernel)
	f.SetMatrix3("ConvolutionMatrix", mgl32.Mat3(kernel))
}

// ConvolutionKernel returns the last kernel set.
func (f *ConvolutionFilter) ConvolutionKernel() [9]float32 { return f.kernel.load() }
