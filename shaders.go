package gpuimage

// Kage shader sources. Each program is two units linked into one Kage file
// under a "//kage:unit pixels" header: the vertex unit declares uniforms and
// coordinate helpers, the fragment unit declares Fragment. Source positions
// arrive in pixels of image 0; the secondary texture coordinate of two-input
// programs arrives normalized in color.xy.

// PassthroughVertexShader is the vertex unit of single-input filters.
const PassthroughVertexShader = `// textureCoordinate returns the sampling position for src.
func textureCoordinate(src vec2) vec2 {
	return src
}
`

// PassthroughFragmentShader copies image 0.
const PassthroughFragmentShader = `func Fragment(dst vec4, src vec2, color vec4) vec4 {
	return imageSrc0At(textureCoordinate(src))
}
`

// TwoInputVertexShader is the vertex unit of two-input filters. The second
// texture coordinate is carried in the vertex color.
const TwoInputVertexShader = `// textureCoordinate returns the sampling position for src.
func textureCoordinate(src vec2) vec2 {
	return src
}

// textureCoordinate2 returns the sampling position in image 1 for the
// normalized secondary coordinate.
func textureCoordinate2(color vec4) vec2 {
	return imageSrc1Origin() + color.xy*imageSrc1Size()
}
`

// ThreeByThreeSamplingVertexShader computes the eight neighbors of a pixel
// from one texel width/height pair (normalized units).
const ThreeByThreeSamplingVertexShader = `var TexelWidth float
var TexelHeight float

// neighbor returns src moved by (dx, dy) texel steps.
func neighbor(src vec2, dx, dy float) vec2 {
	return src + vec2(dx*TexelWidth, dy*TexelHeight)*imageSrc0Size()
}

// sample reads image 0 with edge clamping.
func sample(pos vec2) vec4 {
	lo := imageSrc0Origin() + 0.5
	hi := imageSrc0Origin() + imageSrc0Size() - 0.5
	return imageSrc0At(clamp(pos, lo, hi))
}
`

// ConvolutionFragmentShader applies ConvolutionMatrix to the 3x3
// neighborhood. Row 0 of the kernel weighs the top row.
const ConvolutionFragmentShader = `var ConvolutionMatrix mat3

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	topLeft := sample(neighbor(src, -1, -1))
	top := sample(neighbor(src, 0, -1))
	topRight := sample(neighbor(src, 1, -1))
	left := sample(neighbor(src, -1, 0))
	center := sample(src)
	right := sample(neighbor(src, 1, 0))
	bottomLeft := sample(neighbor(src, -1, 1))
	bottom := sample(neighbor(src, 0, 1))
	bottomRight := sample(neighbor(src, 1, 1))

	result := topLeft*ConvolutionMatrix[0][0] + top*ConvolutionMatrix[0][1] + topRight*ConvolutionMatrix[0][2]
	result += left*ConvolutionMatrix[1][0] + center*ConvolutionMatrix[1][1] + right*ConvolutionMatrix[1][2]
	result += bottomLeft*ConvolutionMatrix[2][0] + bottom*ConvolutionMatrix[2][1] + bottomRight*ConvolutionMatrix[2][2]
	return result
}
`

// SobelEdgeFragmentShader computes the Sobel gradient magnitude of the red
// channel (expects a grayscale input).
const SobelEdgeFragmentShader = `var EdgeStrength float

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	topLeft := sample(neighbor(src, -1, -1)).r
	top := sample(neighbor(src, 0, -1)).r
	topRight := sample(neighbor(src, 1, -1)).r
	left := sample(neighbor(src, -1, 0)).r
	right := sample(neighbor(src, 1, 0)).r
	bottomLeft := sample(neighbor(src, -1, 1)).r
	bottom := sample(neighbor(src, 0, 1)).r
	bottomRight := sample(neighbor(src, 1, 1)).r

	h := -topLeft - 2*top - topRight + bottomLeft + 2*bottom + bottomRight
	v := -bottomLeft - 2*left - topLeft + bottomRight + 2*right + topRight
	mag := length(vec2(h, v)) * EdgeStrength
	return vec4(vec3(mag), 1)
}
`

// TwoPassSamplingVertexShader is the vertex unit of separable passes: one
// offset pair, (w, 0) for the horizontal pass and (0, h) for the vertical.
const TwoPassSamplingVertexShader = `var TexelWidthOffset float
var TexelHeightOffset float

// tap reads image 0 n offsets away from src, clamped to the edge.
func tap(src vec2, n float) vec4 {
	pos := src + n*vec2(TexelWidthOffset, TexelHeightOffset)*imageSrc0Size()
	lo := imageSrc0Origin() + 0.5
	hi := imageSrc0Origin() + imageSrc0Size() - 0.5
	return imageSrc0At(clamp(pos, lo, hi))
}
`

const BrightnessFragmentShader = `var Brightness float

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	c := imageSrc0At(textureCoordinate(src))
	return vec4(c.rgb+vec3(Brightness), c.a)
}
`

const ContrastFragmentShader = `var Contrast float

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	c := imageSrc0At(textureCoordinate(src))
	return vec4((c.rgb-vec3(0.5))*Contrast+vec3(0.5), c.a)
}
`

const SaturationFragmentShader = `var Saturation float

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	c := imageSrc0At(textureCoordinate(src))
	lum := dot(c.rgb, vec3(0.2125, 0.7154, 0.0721))
	return vec4(mix(vec3(lum), c.rgb, Saturation), c.a)
}
`

const GammaFragmentShader = `var Gamma float

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	c := imageSrc0At(textureCoordinate(src))
	return vec4(pow(c.rgb, vec3(Gamma)), c.a)
}
`

const ExposureFragmentShader = `var Exposure float

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	c := imageSrc0At(textureCoordinate(src))
	return vec4(c.rgb*pow(2.0, Exposure), c.a)
}
`

const OpacityFragmentShader = `var Opacity float

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	// Colors are premultiplied.
	return imageSrc0At(textureCoordinate(src)) * Opacity
}
`

const GrayscaleFragmentShader = `func Fragment(dst vec4, src vec2, color vec4) vec4 {
	c := imageSrc0At(textureCoordinate(src))
	lum := dot(c.rgb, vec3(0.2125, 0.7154, 0.0721))
	return vec4(vec3(lum), c.a)
}
`

const ColorInvertFragmentShader = `func Fragment(dst vec4, src vec2, color vec4) vec4 {
	c := imageSrc0At(textureCoordinate(src))
	return vec4(vec3(1)-c.rgb, c.a)
}
`

// ColorMatrixFragmentShader multiplies the color as a row vector by
// ColorMatrix and mixes the result with the original by Intensity.
const ColorMatrixFragmentShader = `var ColorMatrix mat4
var Intensity float

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	c := imageSrc0At(textureCoordinate(src))
	out := c * ColorMatrix
	return Intensity*out + (1-Intensity)*c
}
`

// PixelationFragmentShader snaps coordinates to blocks of Pixel output pixels.
// The width and height factors are 1/outputWidth and 1/outputHeight.
const PixelationFragmentShader = `var ImageWidthFactor float
var ImageHeightFactor float
var Pixel float

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	size := imageSrc0Size()
	uv := (textureCoordinate(src) - imageSrc0Origin()) / size
	d := vec2(Pixel*ImageWidthFactor, Pixel*ImageHeightFactor)
	snapped := d * floor(uv/d)
	return imageSrc0At(imageSrc0Origin() + snapped*size)
}
`

const VignetteFragmentShader = `var VignetteCenter vec2
var VignetteColor vec3
var VignetteStart float
var VignetteEnd float

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	uv := (textureCoordinate(src) - imageSrc0Origin()) / imageSrc0Size()
	c := imageSrc0At(textureCoordinate(src))
	d := distance(uv, VignetteCenter)
	percent := smoothstep(VignetteStart, VignetteEnd, d)
	return vec4(mix(c.rgb, VignetteColor, percent), c.a)
}
`

// AlphaBlendFragmentShader lays image 1 over image 0 by image 1's alpha
// scaled with Mix.
const AlphaBlendFragmentShader = `var Mix float

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	base := imageSrc0At(textureCoordinate(src))
	overlay := imageSrc1At(textureCoordinate2(color))
	return vec4(mix(base.rgb, overlay.rgb, overlay.a*Mix), base.a)
}
`

// LookupFragmentShader maps colors through a 512x512 lookup image made of
// an 8x8 grid of 64x64 tiles (blue selects the tile).
const LookupFragmentShader = `var Intensity float

func lookupAt(uv vec2) vec4 {
	return imageSrc1At(imageSrc1Origin() + uv*imageSrc1Size())
}

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	c := imageSrc0At(textureCoordinate(src))
	blue := c.b * 63.0

	q1 := vec2(0)
	q1.y = floor(floor(blue) / 8.0)
	q1.x = floor(blue) - q1.y*8.0
	q2 := vec2(0)
	q2.y = floor(ceil(blue) / 8.0)
	q2.x = ceil(blue) - q2.y*8.0

	t1 := vec2(0)
	t1.x = q1.x*0.125 + 0.5/512.0 + (0.125-1.0/512.0)*c.r
	t1.y = q1.y*0.125 + 0.5/512.0 + (0.125-1.0/512.0)*c.g
	t2 := vec2(0)
	t2.x = q2.x*0.125 + 0.5/512.0 + (0.125-1.0/512.0)*c.r
	t2.y = q2.y*0.125 + 0.5/512.0 + (0.125-1.0/512.0)*c.g

	n := mix(lookupAt(t1), lookupAt(t2), fract(blue))
	return mix(c, vec4(n.rgb, c.a), Intensity)
}
`
