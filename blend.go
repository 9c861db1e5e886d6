package gpuimage

import "image"

// AlphaBlendFilter lays the secondary image over the stream, weighted by the
// overlay's alpha and by mix.
type AlphaBlendFilter struct {
	*TwoInputFilter
	mix param[float32]
}

// NewAlphaBlendFilter creates an alpha blend filter. mix is in [0, 1].
func NewAlphaBlendFilter(mix float32) *AlphaBlendFilter {
	f := &AlphaBlendFilter{TwoInputFilter: NewTwoInputFilter(AlphaBlendFragmentShader)}
	f.SetMix(mix)
	return f
}

// SetMix queues a new mix.
func (f *AlphaBlendFilter) SetMix(v float32) {
	f.mix.store(v)
	f.SetFloat("Mix", v)
}

// Mix returns the last mix set.
func (f *AlphaBlendFilter) Mix() float32 { return f.mix.load() }

// LookupFilter maps colors through a 512x512 lookup image (an 8x8 grid of
// 64x64 tiles indexed by blue).
type LookupFilter struct {
	*TwoInputFilter
	intensity param[float32]
}

// NewLookupFilter creates a lookup filter. lookup may be nil and set later
// with SetSecondaryImage.
func NewLookupFilter(lookup image.Image, intensity float32) *LookupFilter {
	f := &LookupFilter{TwoInputFilter: NewTwoInputFilter(LookupFragmentShader)}
	if lookup != nil {
		f.SetSecondaryImage(lookup)
	}
	f.SetIntensity(intensity)
	return f
}

// SetIntensity queues a new intensity: 0 keeps the original, 1 applies the
// lookup fully.
func (f *LookupFilter) SetIntensity(v float32) {
	f.intensity.store(v)
	f.SetFloat("Intensity", v)
}

// Intensity returns the last intensity set.
func (f *LookupFilter) Intensity() float32 { return f.intensity.load() }
