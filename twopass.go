package gpuimage

// TwoPassTextureSamplingFilter runs a horizontal pass and then a vertical
// pass. Each pass reads its taps TexelWidthOffset/TexelHeightOffset apart:
// the first pass steps horizontally, the second vertically. Offsets are
// recomputed on init and on every output size change.
type TwoPassTextureSamplingFilter struct {
	*Group

	first  *ShaderFilter
	second *ShaderFilter

	horizontalRatio float32
	verticalRatio   float32
}

// NewTwoPassTextureSamplingFilter creates a two-pass filter from the shader
// units of each pass.
func NewTwoPassTextureSamplingFilter(firstVertex, firstFragment, secondVertex, secondFragment string) *TwoPassTextureSamplingFilter {
	t := &TwoPassTextureSamplingFilter{
		first:           NewShaderFilter(firstVertex, firstFragment),
		second:          NewShaderFilter(secondVertex, secondFragment),
		horizontalRatio: 1,
		verticalRatio:   1,
	}
	t.Group = NewGroup(t.first, t.second)
	t.onInit = func(Context) { t.updateTexelOffsets() }
	return t
}

// Passes returns the horizontal and the vertical pass.
func (t *TwoPassTextureSamplingFilter) Passes() (horizontal, vertical *ShaderFilter) {
	return t.first, t.second
}

// SetTexelSpacing queues new multipliers for the horizontal and vertical tap
// distance, in texels. Both default to 1.
func (t *TwoPassTextureSamplingFilter) SetTexelSpacing(horizontal, vertical float32) {
	t.RunOnDraw(func(Context) {
		t.horizontalRatio = horizontal
		t.verticalRatio = vertical
		t.updateTexelOffsets()
	})
}

// OutputSizeChanged resizes the passes and recomputes the tap offsets.
func (t *TwoPassTextureSamplingFilter) OutputSizeChanged(ctx Context, width, height int) {
	t.Group.OutputSizeChanged(ctx, width, height)
	t.updateTexelOffsets()
}

func (t *TwoPassTextureSamplingFilter) updateTexelOffsets() {
	w, h := t.OutputSize()
	if w <= 0 || h <= 0 {
		return
	}
	t.first.SetFloat("TexelWidthOffset", t.horizontalRatio/float32(w))
	t.first.SetFloat("TexelHeightOffset", 0)
	t.second.SetFloat("TexelWidthOffset", 0)
	t.second.SetFloat("TexelHeightOffset", t.verticalRatio/float32(h))
}
