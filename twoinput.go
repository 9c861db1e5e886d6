package gpuimage

import (
	"image"
	"log/slog"
)

// secondaryTextureUnit is the texture unit the second input is bound to.
const secondaryTextureUnit = 3

// TwoInputFilter samples the stream on unit 0 and a fixed secondary image on
// unit 3. The secondary image has its own texture coordinates, non-rotated
// and non-flipped by default.
type TwoInputFilter struct {
	*ShaderFilter

	texCoord2 AttribLocation
	sampler2  UniformLocation

	texture2       Texture
	texture2Width  int
	texture2Height int
	coords2        []float32
}

// NewTwoInputFilter creates a two-input filter from a fragment unit that
// samples imageSrc1 through textureCoordinate2.
func NewTwoInputFilter(fragmentSrc string) *TwoInputFilter {
	return NewTwoInputFilterWithVertex(TwoInputVertexShader, fragmentSrc)
}

// NewTwoInputFilterWithVertex creates a two-input filter with a custom vertex
// unit.
func NewTwoInputFilterWithVertex(vertexSrc, fragmentSrc string) *TwoInputFilter {
	f := &TwoInputFilter{
		ShaderFilter: NewShaderFilter(vertexSrc, fragmentSrc),
		texCoord2:    NoAttrib,
		sampler2:     NoLocation,
		coords2:      TextureCoordinates(RotationNormal, false, false),
	}
	f.onInit = f.init
	f.beforeDraw = f.bindSecondary
	f.afterDraw = f.unbindSecondary
	f.onDestroy = f.destroySecondary
	return f
}

func (f *TwoInputFilter) init(ctx Context) {
	f.texCoord2 = ctx.AttribLocation(f.prog.id, AttribTextureCoordinate2)
	f.sampler2 = ctx.UniformLocation(f.prog.id, SamplerInputImage2)
}

// SetSecondaryImage queues an upload of img to the secondary texture. The
// pixels are copied before SetSecondaryImage returns. The first call
// allocates the texture; later calls replace its contents in place when the
// size matches and are ignored otherwise. Destroy and recreate the filter to
// switch to a differently sized image.
func (f *TwoInputFilter) SetSecondaryImage(img image.Image) {
	data := newPixelData(img)
	f.RunOnDraw(func(ctx Context) {
		if f.texture2 == NoTexture {
			ctx.ActiveTexture(secondaryTextureUnit)
			f.texture2 = ctx.CreateTexture(data.width, data.height, TextureOptions{
				Filter: FilterLinear,
				Wrap:   WrapClampToEdge,
			})
			ctx.UploadTexture(f.texture2, data.width, data.height, data.pix)
			f.texture2Width, f.texture2Height = data.width, data.height
			Logger().Debug("gpuimage: secondary texture uploaded",
				slog.Int("width", data.width), slog.Int("height", data.height))
			return
		}
		if data.width != f.texture2Width || data.height != f.texture2Height {
			Logger().Warn("gpuimage: secondary image size differs from uploaded texture; ignored",
				slog.Int("width", data.width), slog.Int("height", data.height),
				slog.Int("textureWidth", f.texture2Width), slog.Int("textureHeight", f.texture2Height))
			return
		}
		ctx.ActiveTexture(secondaryTextureUnit)
		ctx.UploadTexture(f.texture2, data.width, data.height, data.pix)
	})
}

// SetRotation queues new secondary texture coordinates.
func (f *TwoInputFilter) SetRotation(r Rotation, flipHorizontal, flipVertical bool) {
	coords := TextureCoordinates(r, flipHorizontal, flipVertical)
	f.RunOnDraw(func(Context) {
		f.coords2 = coords
	})
}

// SecondaryTexture returns the secondary texture, or NoTexture before the
// first upload ran.
func (f *TwoInputFilter) SecondaryTexture() Texture { return f.texture2 }

func (f *TwoInputFilter) bindSecondary(ctx Context) {
	ctx.EnableVertexAttribArray(f.texCoord2)
	ctx.ActiveTexture(secondaryTextureUnit)
	ctx.BindTexture(f.texture2)
	ctx.Uniform1i(f.sampler2, secondaryTextureUnit)
	ctx.VertexAttribPointer(f.texCoord2, 2, f.coords2)
}

func (f *TwoInputFilter) unbindSecondary(ctx Context) {
	ctx.DisableVertexAttribArray(f.texCoord2)
	ctx.ActiveTexture(secondaryTextureUnit)
	ctx.BindTexture(NoTexture)
}

func (f *TwoInputFilter) destroySecondary(ctx Context) {
	if f.texture2 != NoTexture {
		ctx.DeleteTexture(f.texture2)
		f.texture2 = NoTexture
	}
}
