package gpuimage

// Rotation is a clockwise quarter-turn applied to texture coordinates.
type Rotation uint8

const (
	RotationNormal Rotation = iota // no rotation
	Rotation90                     // 90 degrees clockwise
	Rotation180                    // upside down
	Rotation270                    // 270 degrees clockwise
)

// Cube is the full-screen quad in clip space, in triangle-strip order:
// bottom-left, bottom-right, top-left, top-right.
var Cube = []float32{
	-1, -1,
	1, -1,
	-1, 1,
	1, 1,
}

var (
	textureNoRotation = [8]float32{
		0, 1,
		1, 1,
		0, 0,
		1, 0,
	}
	textureRotated90 = [8]float32{
		1, 1,
		1, 0,
		0, 1,
		0, 0,
	}
	textureRotated180 = [8]float32{
		1, 0,
		0, 0,
		1, 1,
		0, 1,
	}
	textureRotated270 = [8]float32{
		0, 0,
		0, 1,
		1, 0,
		1, 1,
	}
)

// TextureCoordinates returns the texture coordinates matching Cube for the
// given rotation and flips. The result is a fresh slice.
func TextureCoordinates(r Rotation, flipHorizontal, flipVertical bool) []float32 {
	var c [8]float32
	switch r {
	case Rotation90:
		c = textureRotated90
	case Rotation180:
		c = textureRotated180
	case Rotation270:
		c = textureRotated270
	default:
		c = textureNoRotation
	}
	if flipHorizontal {
		for i := 0; i < 8; i += 2 {
			c[i] = flip(c[i])
		}
	}
	if flipVertical {
		for i := 1; i < 8; i += 2 {
			c[i] = flip(c[i])
		}
	}
	return c[:]
}

func flip(v float32) float32 {
	if v == 0 {
		return 1
	}
	return 0
}

// swapsAxes reports whether the rotation exchanges width and height.
func (r Rotation) swapsAxes() bool {
	return r == Rotation90 || r == Rotation270
}
