package gpuimage

import "github.com/go-gl/mathgl/mgl32"

// BrightnessFilter adds a constant to every color channel. 0 leaves the
// image unchanged; the useful range is [-1, 1].
type BrightnessFilter struct {
	*ShaderFilter
	brightness param[float32]
}

// NewBrightnessFilter creates a brightness filter.
func NewBrightnessFilter(brightness float32) *BrightnessFilter {
	f := &BrightnessFilter{ShaderFilter: NewShaderFilter(PassthroughVertexShader, BrightnessFragmentShader)}
	f.SetBrightness(brightness)
	return f
}

// SetBrightness queues a new brightness.
func (f *BrightnessFilter) SetBrightness(v float32) {
	f.brightness.store(v)
	f.SetFloat("Brightness", v)
}

// Brightness returns the last value set.
func (f *BrightnessFilter) Brightness() float32 { return f.brightness.load() }

// ContrastFilter scales colors away from mid-gray. 1 is neutral, the useful
// range is [0, 4].
type ContrastFilter struct {
	*ShaderFilter
	contrast param[float32]
}

// NewContrastFilter creates a contrast filter.
func NewContrastFilter(contrast float32) *ContrastFilter {
	f := &ContrastFilter{ShaderFilter: NewShaderFilter(PassthroughVertexShader, ContrastFragmentShader)}
	f.SetContrast(contrast)
	return f
}

// SetContrast queues a new contrast.
func (f *ContrastFilter) SetContrast(v float32) {
	f.contrast.store(v)
	f.SetFloat("Contrast", v)
}

// Contrast returns the last value set.
func (f *ContrastFilter) Contrast() float32 { return f.contrast.load() }

// SaturationFilter mixes colors with their luminance. 0 is grayscale, 1 is
// neutral, 2 doubles saturation.
type SaturationFilter struct {
	*ShaderFilter
	saturation param[float32]
}

// NewSaturationFilter creates a saturation filter.
func NewSaturationFilter(saturation float32) *SaturationFilter {
	f := &SaturationFilter{ShaderFilter: NewShaderFilter(PassthroughVertexShader, SaturationFragmentShader)}
	f.SetSaturation(saturation)
	return f
}

// SetSaturation queues a new saturation.
func (f *SaturationFilter) SetSaturation(v float32) {
	f.saturation.store(v)
	f.SetFloat("Saturation", v)
}

// Saturation returns the last value set.
func (f *SaturationFilter) Saturation() float32 { return f.saturation.load() }

// GammaFilter raises colors to a power. 1 is neutral, the useful range is
// [0, 3].
type GammaFilter struct {
	*ShaderFilter
	gamma param[float32]
}

// NewGammaFilter creates a gamma filter.
func NewGammaFilter(gamma float32) *GammaFilter {
	f := &GammaFilter{ShaderFilter: NewShaderFilter(PassthroughVertexShader, GammaFragmentShader)}
	f.SetGamma(gamma)
	return f
}

// SetGamma queues a new gamma.
func (f *GammaFilter) SetGamma(v float32) {
	f.gamma.store(v)
	f.SetFloat("Gamma", v)
}

// Gamma returns the last value set.
func (f *GammaFilter) Gamma() float32 { return f.gamma.load() }

// ExposureFilter scales colors by 2^exposure. 0 is neutral, the useful range
// is [-10, 10].
type ExposureFilter struct {
	*ShaderFilter
	exposure param[float32]
}

// NewExposureFilter creates an exposure filter.
func NewExposureFilter(exposure float32) *ExposureFilter {
	f := &ExposureFilter{ShaderFilter: NewShaderFilter(PassthroughVertexShader, ExposureFragmentShader)}
	f.SetExposure(exposure)
	return f
}

// SetExposure queues a new exposure.
func (f *ExposureFilter) SetExposure(v float32) {
	f.exposure.store(v)
	f.SetFloat("Exposure", v)
}

// Exposure returns the last value set.
func (f *ExposureFilter) Exposure() float32 { return f.exposure.load() }

// OpacityFilter scales alpha and, colors being premultiplied, RGB with it.
// 1 is neutral.
type OpacityFilter struct {
	*ShaderFilter
	opacity param[float32]
}

// NewOpacityFilter creates an opacity filter.
func NewOpacityFilter(opacity float32) *OpacityFilter {
	f := &OpacityFilter{ShaderFilter: NewShaderFilter(PassthroughVertexShader, OpacityFragmentShader)}
	f.SetOpacity(opacity)
	return f
}

// SetOpacity queues a new opacity.
func (f *OpacityFilter) SetOpacity(v float32) {
	f.opacity.store(v)
	f.SetFloat("Opacity", v)
}

// Opacity returns the last value set.
func (f *OpacityFilter) Opacity() float32 { return f.opacity.load() }

// NewGrayscaleFilter creates a filter replacing colors with their luminance.
func NewGrayscaleFilter() *ShaderFilter {
	return NewShaderFilter(PassthroughVertexShader, GrayscaleFragmentShader)
}

// NewColorInvertFilter creates a filter inverting the color channels.
func NewColorInvertFilter() *ShaderFilter {
	return NewShaderFilter(PassthroughVertexShader, ColorInvertFragmentShader)
}

// ColorMatrixFilter transforms each color by a 4x4 matrix and mixes the
// result with the original by intensity. Row j of the matrix, as written in
// Go source, computes output channel j.
type ColorMatrixFilter struct {
	*ShaderFilter
	matrix    param[mgl32.Mat4]
	intensity param[float32]
}

// NewColorMatrixFilter creates a color matrix filter.
func NewColorMatrixFilter(m mgl32.Mat4, intensity float32) *ColorMatrixFilter {
	f := &ColorMatrixFilter{ShaderFilter: NewShaderFilter(PassthroughVertexShader, ColorMatrixFragmentShader)}
	f.SetColorMatrix(m)
	f.SetIntensity(intensity)
	return f
}

// NewSepiaFilter creates a color matrix filter with the sepia tone matrix.
func NewSepiaFilter(intensity float32) *ColorMatrixFilter {
	return NewColorMatrixFilter(SepiaMatrix, intensity)
}

// SetColorMatrix queues a new matrix.
func (f *ColorMatrixFilter) SetColorMatrix(m mgl32.Mat4) {
	f.matrix.store(m)
	f.SetMatrix4("ColorMatrix", m)
}

// SetIntensity queues a new intensity: 0 keeps the original, 1 applies the
// matrix fully.
func (f *ColorMatrixFilter) SetIntensity(v float32) {
	f.intensity.store(v)
	f.SetFloat("Intensity", v)
}

// ColorMatrix returns the last matrix set.
func (f *ColorMatrixFilter) ColorMatrix() mgl32.Mat4 { return f.matrix.load() }

// Intensity returns the last intensity set.
func (f *ColorMatrixFilter) Intensity() float32 { return f.intensity.load() }

// SepiaMatrix is the classic sepia tone transform.
var SepiaMatrix = mgl32.Mat4{
	0.3588, 0.7044, 0.1368, 0,
	0.2990, 0.5870, 0.1140, 0,
	0.1690, 0.3460, 0.0820, 0,
	0, 0, 0, 1,
}

// SaturationMatrix returns a matrix that adjusts saturation. s=1 is neutral,
// 0 is grayscale.
func SaturationMatrix(s float32) mgl32.Mat4 {
	sr := (1 - s) * 0.299
	sg := (1 - s) * 0.587
	sb := (1 - s) * 0.114
	return mgl32.Mat4{
		sr + s, sg, sb, 0,
		sr, sg + s, sb, 0,
		sr, sg, sb + s, 0,
		0, 0, 0, 1,
	}
}

// ContrastMatrix returns a matrix that scales colors by c around black. Use
// ContrastFilter for contrast around mid-gray.
func ContrastMatrix(c float32) mgl32.Mat4 {
	return mgl32.Mat4{
		c, 0, 0, 0,
		0, c, 0, 0,
		0, 0, c, 0,
		0, 0, 0, 1,
	}
}

// PixelationFilter renders the image as square blocks of pixel output pixels.
type PixelationFilter struct {
	*ShaderFilter
	pixel param[float32]
}

// NewPixelationFilter creates a pixelation filter with the given block size.
func NewPixelationFilter(pixel float32) *PixelationFilter {
	f := &PixelationFilter{ShaderFilter: NewShaderFilter(PassthroughVertexShader, PixelationFragmentShader)}
	f.SetPixel(pixel)
	return f
}

// SetPixel queues a new block size in output pixels. Values below 1 are
// raised to 1.
func (f *PixelationFilter) SetPixel(v float32) {
	v = max(v, 1)
	f.pixel.store(v)
	f.SetFloat("Pixel", v)
}

// Pixel returns the last block size set.
func (f *PixelationFilter) Pixel() float32 { return f.pixel.load() }

// OutputSizeChanged records the size and updates the block scale factors.
func (f *PixelationFilter) OutputSizeChanged(ctx Context, width, height int) {
	f.ShaderFilter.OutputSizeChanged(ctx, width, height)
	if width <= 0 || height <= 0 {
		return
	}
	f.SetFloat("ImageWidthFactor", 1/float32(width))
	f.SetFloat("ImageHeightFactor", 1/float32(height))
}

// VignetteFilter darkens the image towards its edges.
type VignetteFilter struct {
	*ShaderFilter
	center     param[mgl32.Vec2]
	color      param[mgl32.Vec3]
	start, end param[float32]
}

// NewVignetteFilter creates a vignette centered on the image, fading to
// black between distance 0.3 and 0.75 from the center.
func NewVignetteFilter() *VignetteFilter {
	f := &VignetteFilter{ShaderFilter: NewShaderFilter(PassthroughVertexShader, VignetteFragmentShader)}
	f.SetCenter(mgl32.Vec2{0.5, 0.5})
	f.SetColor(mgl32.Vec3{0, 0, 0})
	f.SetStart(0.3)
	f.SetEnd(0.75)
	return f
}

// SetCenter queues a new center in normalized texture coordinates.
func (f *VignetteFilter) SetCenter(c mgl32.Vec2) {
	f.center.store(c)
	f.SetVec2("VignetteCenter", c)
}

// SetColor queues a new vignette color (RGB).
func (f *VignetteFilter) SetColor(c mgl32.Vec3) {
	f.color.store(c)
	f.SetVec3("VignetteColor", c)
}

// SetStart queues the distance where darkening begins.
func (f *VignetteFilter) SetStart(v float32) {
	f.start.store(v)
	f.SetFloat("VignetteStart", v)
}

// SetEnd queues the distance where the vignette color is reached.
func (f *VignetteFilter) SetEnd(v float32) {
	f.end.store(v)
	f.SetFloat("VignetteEnd", v)
}

// Center returns the last center set.
func (f *VignetteFilter) Center() mgl32.Vec2 { return f.center.load() }

// Color returns the last color set.
func (f *VignetteFilter) Color() mgl32.Vec3 { return f.color.load() }

// Range returns the last start and end distances set.
func (f *VignetteFilter) Range() (start, end float32) {
	return f.start.load(), f.end.load()
}
