package gpuimage

// EmbossFilter is a convolution with an emboss kernel scaled by intensity.
type EmbossFilter struct {
	*ConvolutionFilter
	intensity param[float32]
}

// NewEmbossFilter creates an emboss filter. 1 is a moderate emboss.
func NewEmbossFilter(intensity float32) *EmbossFilter {
	f := &EmbossFilter{ConvolutionFilter: NewConvolutionFilter()}
	f.SetIntensity(intensity)
	return f
}

// EmbossKernel returns the emboss kernel for intensity.
func EmbossKernel(intensity float32) [9]float32 {
	return [9]float32{
		-2 * intensity, -intensity, 0,
		-intensity, 1, intensity,
		0, intensity, 2 * intensity,
	}
}

// SetIntensity queues a new emboss strength.
func (f *EmbossFilter) SetIntensity(v float32) {
	f.intensity.store(v)
	f.SetConvolutionKernel(EmbossKernel(v))
}

// Intensity returns the last intensity set.
func (f *EmbossFilter) Intensity() float32 { return f.intensity.load() }

// SobelEdgeDetectionFilter converts to grayscale and then draws the Sobel
// gradient magnitude.
type SobelEdgeDetectionFilter struct {
	*Group
	edges *TextureSampling3x3Filter
}

// NewSobelEdgeDetectionFilter creates an edge detection filter with edge
// strength 1.
func NewSobelEdgeDetectionFilter() *SobelEdgeDetectionFilter {
	edges := NewTextureSampling3x3Filter(SobelEdgeFragmentShader)
	edges.SetFloat("EdgeStrength", 1)
	return &SobelEdgeDetectionFilter{
		Group: NewGroup(NewGrayscaleFilter(), edges),
		edges: edges,
	}
}

// SetLineSize queues a new sampling distance in output pixels.
func (f *SobelEdgeDetectionFilter) SetLineSize(size float32) {
	f.edges.SetLineSize(size)
}

// SetEdgeStrength queues a new gradient multiplier.
func (f *SobelEdgeDetectionFilter) SetEdgeStrength(v float32) {
	f.edges.SetFloat("EdgeStrength", v)
}
