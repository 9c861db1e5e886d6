package gpuimage

import (
	"fmt"
	"strings"
)

// MorphologyKind selects the operation and the channels it works on.
type MorphologyKind uint8

const (
	Dilation    MorphologyKind = iota // maximum of the red channel, gray output
	RGBDilation                       // per-channel maximum
	Erosion                           // minimum of the red channel, gray output
	RGBErosion                        // per-channel minimum
)

// String returns the kind name.
func (k MorphologyKind) String() string {
	switch k {
	case Dilation:
		return "dilation"
	case RGBDilation:
		return "rgb-dilation"
	case Erosion:
		return "erosion"
	case RGBErosion:
		return "rgb-erosion"
	default:
		return "unknown"
	}
}

// Morphology radii are clamped to this range.
const (
	MinMorphologyRadius = 1
	MaxMorphologyRadius = 4
)

// morphologyFragments holds the fragment unit of every kind and radius. Each
// shader reads radius*2+1 taps along the pass direction.
var morphologyFragments = func() (t [4][MaxMorphologyRadius]string) {
	for k := range t {
		for r := range t[k] {
			t[k][r] = morphologyFragment(MorphologyKind(k), r+1)
		}
	}
	return t
}()

func morphologyFragment(kind MorphologyKind, radius int) string {
	op := "max"
	if kind == Erosion || kind == RGBErosion {
		op = "min"
	}
	gray := kind == Dilation || kind == Erosion

	var b strings.Builder
	b.WriteString("func Fragment(dst vec4, src vec2, color vec4) vec4 {\n")
	if gray {
		b.WriteString("\tv := tap(src, 0).r\n")
	} else {
		b.WriteString("\tv := tap(src, 0)\n")
	}
	for i := 1; i <= radius; i++ {
		for _, n := range []int{i, -i} {
			if gray {
				fmt.Fprintf(&b, "\tv = %s(v, tap(src, %d).r)\n", op, n)
			} else {
				fmt.Fprintf(&b, "\tv = %s(v, tap(src, %d))\n", op, n)
			}
		}
	}
	if gray {
		b.WriteString("\treturn vec4(vec3(v), 1)\n")
	} else {
		b.WriteString("\treturn v\n")
	}
	b.WriteString("}\n")
	return b.String()
}

// ClampMorphologyRadius clamps radius to [MinMorphologyRadius, MaxMorphologyRadius].
func ClampMorphologyRadius(radius int) int {
	return min(max(radius, MinMorphologyRadius), MaxMorphologyRadius)
}

// MorphologyShaders returns the vertex and fragment units used by both passes
// of a morphology filter. The radius is clamped.
func MorphologyShaders(kind MorphologyKind, radius int) (vertex, fragment string) {
	if int(kind) >= len(morphologyFragments) {
		kind = Dilation
	}
	return TwoPassSamplingVertexShader, morphologyFragments[kind][ClampMorphologyRadius(radius)-1]
}

// NewMorphologyFilter creates a horizontal-then-vertical morphology filter.
func NewMorphologyFilter(kind MorphologyKind, radius int) *TwoPassTextureSamplingFilter {
	vs, fs := MorphologyShaders(kind, radius)
	return NewTwoPassTextureSamplingFilter(vs, fs, vs, fs)
}

// NewDilationFilter expands bright regions of a grayscale image by radius
// pixels (1 to 4).
func NewDilationFilter(radius int) *TwoPassTextureSamplingFilter {
	return NewMorphologyFilter(Dilation, radius)
}

// NewRGBDilationFilter expands bright regions per channel.
func NewRGBDilationFilter(radius int) *TwoPassTextureSamplingFilter {
	return NewMorphologyFilter(RGBDilation, radius)
}

// NewErosionFilter shrinks bright regions of a grayscale image.
func NewErosionFilter(radius int) *TwoPassTextureSamplingFilter {
	return NewMorphologyFilter(Erosion, radius)
}

// NewRGBErosionFilter shrinks bright regions per channel.
func NewRGBErosionFilter(radius int) *TwoPassTextureSamplingFilter {
	return NewMorphologyFilter(RGBErosion, radius)
}
