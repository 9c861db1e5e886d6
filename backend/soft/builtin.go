package soft

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/phanxgames/gpuimage"
)

// registerBuiltins adds Go implementations of the gpuimage filter library.
func registerBuiltins(r *Registry) {
	r.Register(gpuimage.PassthroughFragmentShader, func(f *Fragment) mgl32.Vec4 {
		return f.Sample(0, f.TexCoord)
	})
	r.Register(gpuimage.ConvolutionFragmentShader, convolution)
	r.Register(gpuimage.SobelEdgeFragmentShader, sobel)

	r.Register(gpuimage.BrightnessFragmentShader, func(f *Fragment) mgl32.Vec4 {
		c := f.Sample(0, f.TexCoord)
		b := f.Float("Brightness")
		return mgl32.Vec4{c[0] + b, c[1] + b, c[2] + b, c[3]}
	})
	r.Register(gpuimage.ContrastFragmentShader, func(f *Fragment) mgl32.Vec4 {
		c := f.Sample(0, f.TexCoord)
		k := f.Float("Contrast")
		return mapRGB(c, func(v float32) float32 { return (v-0.5)*k + 0.5 })
	})
	r.Register(gpuimage.SaturationFragmentShader, func(f *Fragment) mgl32.Vec4 {
		c := f.Sample(0, f.TexCoord)
		l := luminance(c)
		s := f.Float("Saturation")
		return mapRGB(c, func(v float32) float32 { return mix(l, v, s) })
	})
	r.Register(gpuimage.GammaFragmentShader, func(f *Fragment) mgl32.Vec4 {
		c := f.Sample(0, f.TexCoord)
		g := float64(f.Float("Gamma"))
		return mapRGB(c, func(v float32) float32 { return float32(math.Pow(float64(v), g)) })
	})
	r.Register(gpuimage.ExposureFragmentShader, func(f *Fragment) mgl32.Vec4 {
		c := f.Sample(0, f.TexCoord)
		k := float32(math.Pow(2, float64(f.Float("Exposure"))))
		return mapRGB(c, func(v float32) float32 { return v * k })
	})
	r.Register(gpuimage.OpacityFragmentShader, func(f *Fragment) mgl32.Vec4 {
		return f.Sample(0, f.TexCoord).Mul(f.Float("Opacity"))
	})
	r.Register(gpuimage.GrayscaleFragmentShader, func(f *Fragment) mgl32.Vec4 {
		c := f.Sample(0, f.TexCoord)
		l := luminance(c)
		return mgl32.Vec4{l, l, l, c[3]}
	})
	r.Register(gpuimage.ColorInvertFragmentShader, func(f *Fragment) mgl32.Vec4 {
		c := f.Sample(0, f.TexCoord)
		return mapRGB(c, func(v float32) float32 { return 1 - v })
	})
	r.Register(gpuimage.ColorMatrixFragmentShader, colorMatrix)
	r.Register(gpuimage.PixelationFragmentShader, pixelation)
	r.Register(gpuimage.VignetteFragmentShader, vignette)
	r.Register(gpuimage.AlphaBlendFragmentShader, func(f *Fragment) mgl32.Vec4 {
		base := f.Sample(0, f.TexCoord)
		overlay := f.Sample(1, f.TexCoord2)
		t := overlay[3] * f.Float("Mix")
		return mgl32.Vec4{mix(base[0], overlay[0], t), mix(base[1], overlay[1], t), mix(base[2], overlay[2], t), base[3]}
	})
	r.Register(gpuimage.LookupFragmentShader, lookup)

	for _, kind := range []gpuimage.MorphologyKind{gpuimage.Dilation, gpuimage.RGBDilation, gpuimage.Erosion, gpuimage.RGBErosion} {
		for radius := gpuimage.MinMorphologyRadius; radius <= gpuimage.MaxMorphologyRadius; radius++ {
			_, fs := gpuimage.MorphologyShaders(kind, radius)
			r.Register(fs, morphology(kind, radius))
		}
	}
}

func luminance(c mgl32.Vec4) float32 {
	return c[0]*0.2125 + c[1]*0.7154 + c[2]*0.0721
}

func mix(a, b, t float32) float32 { return a*(1-t) + b*t }

func mapRGB(c mgl32.Vec4, fn func(float32) float32) mgl32.Vec4 {
	return mgl32.Vec4{fn(c[0]), fn(c[1]), fn(c[2]), c[3]}
}

func smoothstep(edge0, edge1, x float32) float32 {
	if edge0 == edge1 {
		if x < edge0 {
			return 0
		}
		return 1
	}
	t := min(max((x-edge0)/(edge1-edge0), 0), 1)
	return t * t * (3 - 2*t)
}

// neighbor samples image 0 dx, dy texel steps away from the pixel.
func neighbor(f *Fragment, dx, dy float32) mgl32.Vec4 {
	tw, th := f.Float("TexelWidth"), f.Float("TexelHeight")
	return f.Sample(0, f.TexCoord.Add(mgl32.Vec2{dx * tw, dy * th}))
}

// convolution weighs the neighbor at (j-1, i-1) with ConvolutionMatrix[i][j].
func convolution(f *Fragment) mgl32.Vec4 {
	m := f.Mat3("ConvolutionMatrix")
	var out mgl32.Vec4
	for i := range 3 {
		for j := range 3 {
			w := m[3*i+j]
			if w == 0 {
				continue
			}
			out = out.Add(neighbor(f, float32(j-1), float32(i-1)).Mul(w))
		}
	}
	return out
}

func sobel(f *Fragment) mgl32.Vec4 {
	at := func(dx, dy float32) float32 { return neighbor(f, dx, dy)[0] }
	topLeft, top, topRight := at(-1, -1), at(0, -1), at(1, -1)
	left, right := at(-1, 0), at(1, 0)
	bottomLeft, bottom, bottomRight := at(-1, 1), at(0, 1), at(1, 1)
	h := -topLeft - 2*top - topRight + bottomLeft + 2*bottom + bottomRight
	v := -bottomLeft - 2*left - topLeft + bottomRight + 2*right + topRight
	mag := float32(math.Hypot(float64(h), float64(v))) * f.Float("EdgeStrength")
	return mgl32.Vec4{mag, mag, mag, 1}
}

// colorMatrix multiplies the color as a row vector by the column-major
// ColorMatrix.
func colorMatrix(f *Fragment) mgl32.Vec4 {
	c := f.Sample(0, f.TexCoord)
	m := f.Mat4("ColorMatrix")
	k := f.Float("Intensity")
	var out mgl32.Vec4
	for j := range 4 {
		var v float32
		for i := range 4 {
			v += c[i] * m[4*j+i]
		}
		out[j] = k*v + (1-k)*c[j]
	}
	return out
}

func pixelation(f *Fragment) mgl32.Vec4 {
	p := f.Float("Pixel")
	d := mgl32.Vec2{p * f.Float("ImageWidthFactor"), p * f.Float("ImageHeightFactor")}
	uv := f.TexCoord
	for i := range 2 {
		if d[i] > 0 {
			uv[i] = d[i] * float32(math.Floor(float64(uv[i]/d[i])))
		}
	}
	return f.Sample(0, uv)
}

func vignette(f *Fragment) mgl32.Vec4 {
	c := f.Sample(0, f.TexCoord)
	d := f.TexCoord.Sub(f.Vec2("VignetteCenter")).Len()
	t := smoothstep(f.Float("VignetteStart"), f.Float("VignetteEnd"), d)
	col := f.Vec3("VignetteColor")
	return mgl32.Vec4{mix(c[0], col[0], t), mix(c[1], col[1], t), mix(c[2], col[2], t), c[3]}
}

func lookup(f *Fragment) mgl32.Vec4 {
	c := f.Sample(0, f.TexCoord)
	blue := float64(c[2]) * 63

	tile := func(b float64) mgl32.Vec2 {
		y := math.Floor(b / 8)
		x := b - y*8
		return mgl32.Vec2{
			float32(x*0.125 + 0.5/512 + (0.125-1.0/512)*float64(c[0])),
			float32(y*0.125 + 0.5/512 + (0.125-1.0/512)*float64(c[1])),
		}
	}
	t1 := f.Sample(1, tile(math.Floor(blue)))
	t2 := f.Sample(1, tile(math.Ceil(blue)))
	_, frac := math.Modf(blue)
	n := t1.Mul(1 - float32(frac)).Add(t2.Mul(float32(frac)))
	k := f.Float("Intensity")
	return mgl32.Vec4{mix(c[0], n[0], k), mix(c[1], n[1], k), mix(c[2], n[2], k), c[3]}
}

func morphology(kind gpuimage.MorphologyKind, radius int) FragmentFunc {
	pick := func(a, b float32) float32 { return max(a, b) }
	if kind == gpuimage.Erosion || kind == gpuimage.RGBErosion {
		pick = func(a, b float32) float32 { return min(a, b) }
	}
	gray := kind == gpuimage.Dilation || kind == gpuimage.Erosion
	radius = gpuimage.ClampMorphologyRadius(radius)

	return func(f *Fragment) mgl32.Vec4 {
		offset := mgl32.Vec2{f.Float("TexelWidthOffset"), f.Float("TexelHeightOffset")}
		v := f.Sample(0, f.TexCoord)
		for i := 1; i <= radius; i++ {
			for _, n := range []float32{float32(i), -float32(i)} {
				s := f.Sample(0, f.TexCoord.Add(offset.Mul(n)))
				for ch := range 4 {
					v[ch] = pick(v[ch], s[ch])
				}
			}
		}
		if gray {
			return mgl32.Vec4{v[0], v[0], v[0], 1}
		}
		return v
	}
}
