package preset

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/phanxgames/gpuimage"
)

// Builder creates a filter from the parameters of one table.
type Builder func(p *Params) (gpuimage.Filter, error)

var (
	buildersMu sync.RWMutex
	builders   = map[string]Builder{}
)

// Register makes a filter type available to presets. Registering an
// existing type replaces it.
func Register(typ string, b Builder) {
	buildersMu.Lock()
	builders[typ] = b
	buildersMu.Unlock()
}

func lookup(typ string) Builder {
	buildersMu.RLock()
	defer buildersMu.RUnlock()
	return builders[typ]
}

// Types returns the registered filter types, excluding "group".
func Types() []string {
	buildersMu.RLock()
	defer buildersMu.RUnlock()
	out := make([]string, 0, len(builders))
	for k := range builders {
		out = append(out, k)
	}
	return out
}

// scalar registers a filter configured by a single number.
func scalar[F gpuimage.Filter](typ, param string, def float32, newFilter func(float32) F) {
	Register(typ, func(p *Params) (gpuimage.Filter, error) {
		v, err := p.Float(param, def)
		if err != nil {
			return nil, err
		}
		return newFilter(v), nil
	})
}

func init() {
	Register("passthrough", func(*Params) (gpuimage.Filter, error) { return gpuimage.NewPassthroughFilter(), nil })
	Register("grayscale", func(*Params) (gpuimage.Filter, error) { return gpuimage.NewGrayscaleFilter(), nil })
	Register("color_invert", func(*Params) (gpuimage.Filter, error) { return gpuimage.NewColorInvertFilter(), nil })

	scalar("brightness", "brightness", 0, gpuimage.NewBrightnessFilter)
	scalar("contrast", "contrast", 1, gpuimage.NewContrastFilter)
	scalar("saturation", "saturation", 1, gpuimage.NewSaturationFilter)
	scalar("gamma", "gamma", 1, gpuimage.NewGammaFilter)
	scalar("exposure", "exposure", 0, gpuimage.NewExposureFilter)
	scalar("opacity", "opacity", 1, gpuimage.NewOpacityFilter)
	scalar("pixelation", "pixel", 1, gpuimage.NewPixelationFilter)
	scalar("sepia", "intensity", 1, gpuimage.NewSepiaFilter)
	scalar("emboss", "intensity", 1, gpuimage.NewEmbossFilter)

	Register("color_matrix", buildColorMatrix)
	Register("vignette", buildVignette)
	Register("convolution", buildConvolution)
	Register("sobel_edge", buildSobel)
	Register("alpha_blend", buildAlphaBlend)
	Register("lookup", buildLookup)

	for typ, kind := range map[string]gpuimage.MorphologyKind{
		"dilation":     gpuimage.Dilation,
		"rgb_dilation": gpuimage.RGBDilation,
		"erosion":      gpuimage.Erosion,
		"rgb_erosion":  gpuimage.RGBErosion,
	} {
		Register(typ, func(p *Params) (gpuimage.Filter, error) {
			r, err := p.Int("radius", gpuimage.MinMorphologyRadius)
			if err != nil {
				return nil, err
			}
			return gpuimage.NewMorphologyFilter(kind, r), nil
		})
	}
}

// buildColorMatrix reads matrix as 16 numbers in row order: row j computes
// output channel j.
func buildColorMatrix(p *Params) (gpuimage.Filter, error) {
	ident := mgl32.Ident4()
	m, err := p.Floats("matrix", 16, ident[:])
	if err != nil {
		return nil, err
	}
	intensity, err := p.Float("intensity", 1)
	if err != nil {
		return nil, err
	}
	return gpuimage.NewColorMatrixFilter(mgl32.Mat4(m), intensity), nil
}

func buildVignette(p *Params) (gpuimage.Filter, error) {
	f := gpuimage.NewVignetteFilter()
	center, err := p.Vec2("center", f.Center())
	if err != nil {
		return nil, err
	}
	col, err := p.Vec3("color", f.Color())
	if err != nil {
		return nil, err
	}
	start, end := f.Range()
	if start, err = p.Float("start", start); err != nil {
		return nil, err
	}
	if end, err = p.Float("end", end); err != nil {
		return nil, err
	}
	f.SetCenter(center)
	f.SetColor(col)
	f.SetStart(start)
	f.SetEnd(end)
	return f, nil
}

func buildConvolution(p *Params) (gpuimage.Filter, error) {
	k, err := p.Floats("kernel", 9, gpuimage.IdentityKernel[:])
	if err != nil {
		return nil, err
	}
	size, err := p.Float("line_size", 1)
	if err != nil {
		return nil, err
	}
	f := gpuimage.NewConvolutionFilterWithKernel([9]float32(k))
	f.SetLineSize(size)
	return f, nil
}

func buildSobel(p *Params) (gpuimage.Filter, error) {
	size, err := p.Float("line_size", 1)
	if err != nil {
		return nil, err
	}
	strength, err := p.Float("edge_strength", 1)
	if err != nil {
		return nil, err
	}
	f := gpuimage.NewSobelEdgeDetectionFilter()
	f.SetLineSize(size)
	f.SetEdgeStrength(strength)
	return f, nil
}

func buildAlphaBlend(p *Params) (gpuimage.Filter, error) {
	img, err := p.Image("image")
	if err != nil {
		return nil, err
	}
	mix, err := p.Float("mix", 0.5)
	if err != nil {
		return nil, err
	}
	f := gpuimage.NewAlphaBlendFilter(mix)
	f.SetSecondaryImage(img)
	return f, nil
}

func buildLookup(p *Params) (gpuimage.Filter, error) {
	img, err := p.Image("image")
	if err != nil {
		return nil, err
	}
	intensity, err := p.Float("intensity", 1)
	if err != nil {
		return nil, err
	}
	return gpuimage.NewLookupFilter(img, intensity), nil
}
