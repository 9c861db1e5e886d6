package gpuimage

import (
	"image"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
)

// ScaleType controls how the image is fitted to the surface.
type ScaleType uint8

const (
	// ScaleCenterCrop fills the surface and crops the overflowing sides.
	ScaleCenterCrop ScaleType = iota
	// ScaleCenterInside fits the whole image and letterboxes the rest.
	ScaleCenterInside
)

// RenderMode selects when the host should draw a frame.
type RenderMode uint8

const (
	// RenderContinuously draws every frame.
	RenderContinuously RenderMode = iota
	// RenderWhenDirty draws only after RequestRender or when tasks are
	// pending.
	RenderWhenDirty
)

// Renderer drives one filter over one input image and draws it into the
// visible surface. The host calls SurfaceCreated, SurfaceChanged, DrawFrame
// and Destroy from the render goroutine; every other method may be called
// from any goroutine and takes effect at the start of the next frame.
type Renderer struct {
	filter Filter

	image        Texture
	imageWidth   int
	imageHeight  int
	addedPadding int

	cube      []float32
	texCoords []float32

	rotation       Rotation
	flipHorizontal bool
	flipVertical   bool
	scaleType      ScaleType
	background     [3]float32

	runOnDraw    TaskQueue
	runOnDrawEnd TaskQueue

	sizeMu       sync.Mutex
	outputWidth  int
	outputHeight int
	// requestedImage is the size of the last SetImage call, known before the
	// upload task runs.
	requestedImage image.Point
	sizeKnown      chan struct{}
	sizeOnce       sync.Once

	mode      atomic.Uint32
	requested atomic.Bool
}

// NewRenderer creates a renderer for filter. A nil filter draws the image
// unchanged.
func NewRenderer(filter Filter) *Renderer {
	if filter == nil {
		filter = NewPassthroughFilter()
	}
	r := &Renderer{
		filter:    filter,
		cube:      Cube,
		texCoords: TextureCoordinates(RotationNormal, false, false),
		sizeKnown: make(chan struct{}),
	}
	r.requested.Store(true)
	return r
}

// SurfaceCreated initializes the current filter.
func (r *Renderer) SurfaceCreated(ctx Context) {
	_ = r.filter.Init(ctx)
}

// SurfaceChanged records the surface size, resizes the filter and refits the
// image.
func (r *Renderer) SurfaceChanged(ctx Context, width, height int) {
	r.sizeMu.Lock()
	r.outputWidth = width
	r.outputHeight = height
	r.sizeMu.Unlock()

	r.filter.OutputSizeChanged(ctx, width, height)
	r.adjustImageScaling()
	r.sizeOnce.Do(func() { close(r.sizeKnown) })
	r.requested.Store(true)
}

// DrawFrame runs the queued tasks, clears the surface with the background
// color, draws the filter, and then runs the end-of-frame tasks.
func (r *Renderer) DrawFrame(ctx Context) {
	r.requested.Store(false)
	r.runOnDraw.Run(ctx)
	ctx.ClearColor(r.background[0], r.background[1], r.background[2], 1)
	ctx.Clear()
	r.filter.Draw(ctx, r.image, r.cube, r.texCoords)
	r.runOnDrawEnd.Run(ctx)
}

// Destroy releases the filter and the image texture and drops pending tasks.
func (r *Renderer) Destroy(ctx Context) {
	r.runOnDraw.Discard()
	r.runOnDrawEnd.Discard()
	r.filter.Destroy(ctx)
	if r.image != NoTexture {
		ctx.DeleteTexture(r.image)
		r.image = NoTexture
	}
}

// RunOnDraw queues task to run at the start of the next frame.
func (r *Renderer) RunOnDraw(task Task) {
	r.runOnDraw.Push(task)
	r.requested.Store(true)
}

// RunOnDrawEnd queues task to run after the next frame was drawn.
func (r *Renderer) RunOnDrawEnd(task Task) {
	r.runOnDrawEnd.Push(task)
	r.requested.Store(true)
}

// SetFilter replaces the filter. The old filter is destroyed on the render
// goroutine, then the new one is initialized and sized.
func (r *Renderer) SetFilter(f Filter) {
	if f == nil {
		f = NewPassthroughFilter()
	}
	r.RunOnDraw(func(ctx Context) {
		old := r.filter
		r.filter = f
		if old != nil && old != f {
			old.Destroy(ctx)
		}
		_ = f.Init(ctx)
		w, h := r.FrameSize()
		f.OutputSizeChanged(ctx, w, h)
	})
}

// Filter returns the current filter. Render goroutine only.
func (r *Renderer) Filter() Filter { return r.filter }

// SetImage queues an upload of img as the input texture. The pixels are
// copied before SetImage returns. Odd widths are padded with one transparent
// column.
func (r *Renderer) SetImage(img image.Image) {
	b := img.Bounds()
	padding := evenWidthPadding(b.Dx())
	data := newPaddedPixelData(img, padding)
	r.sizeMu.Lock()
	r.requestedImage = image.Pt(b.Dx(), b.Dy())
	r.sizeMu.Unlock()
	r.RunOnDraw(func(ctx Context) {
		if r.image == NoTexture {
			r.image = ctx.CreateTexture(data.width, data.height, TextureOptions{
				Filter: FilterLinear,
				Wrap:   WrapClampToEdge,
			})
		}
		ctx.UploadTexture(r.image, data.width, data.height, data.pix)
		r.addedPadding = padding
		r.imageWidth = b.Dx()
		r.imageHeight = b.Dy()
		r.adjustImageScaling()
		Logger().Debug("gpuimage: image uploaded",
			slog.Int("width", r.imageWidth), slog.Int("height", r.imageHeight), slog.Int("padding", padding))
	})
}

// DeleteImage queues deletion of the input texture.
func (r *Renderer) DeleteImage() {
	r.RunOnDraw(func(ctx Context) {
		if r.image != NoTexture {
			ctx.DeleteTexture(r.image)
			r.image = NoTexture
		}
		r.imageWidth, r.imageHeight = 0, 0
	})
}

// Image returns the input texture. Render goroutine only.
func (r *Renderer) Image() Texture { return r.image }

// ImageSize returns the size of the last uploaded image, without padding.
// Render goroutine only.
func (r *Renderer) ImageSize() (width, height int) { return r.imageWidth, r.imageHeight }

// SetRotation queues a new rotation and flips for the input image.
func (r *Renderer) SetRotation(rot Rotation, flipHorizontal, flipVertical bool) {
	r.RunOnDraw(func(Context) {
		r.rotation = rot
		r.flipHorizontal = flipHorizontal
		r.flipVertical = flipVertical
		r.adjustImageScaling()
	})
}

// SetScaleType queues a new scale type.
func (r *Renderer) SetScaleType(s ScaleType) {
	r.RunOnDraw(func(Context) {
		r.scaleType = s
		r.adjustImageScaling()
	})
}

// SetBackgroundColor queues a new clear color for the area the image does
// not cover.
func (r *Renderer) SetBackgroundColor(red, green, blue float32) {
	r.RunOnDraw(func(Context) {
		r.background = [3]float32{red, green, blue}
	})
}

// Geometry returns the quad and texture coordinates passed to the filter.
// Render goroutine only.
func (r *Renderer) Geometry() (vertices, texCoords []float32) {
	return r.cube, r.texCoords
}

// SetRenderMode selects continuous or on-demand drawing.
func (r *Renderer) SetRenderMode(m RenderMode) {
	r.mode.Store(uint32(m))
}

// RequestRender asks the host to draw a frame in RenderWhenDirty mode.
func (r *Renderer) RequestRender() {
	r.requested.Store(true)
}

// NeedsRender reports whether the host should draw a frame now.
func (r *Renderer) NeedsRender() bool {
	if RenderMode(r.mode.Load()) == RenderContinuously {
		return true
	}
	return r.requested.Load() || r.runOnDraw.Len() > 0 || r.runOnDrawEnd.Len() > 0
}

// FrameSize returns the last surface size, or zeros before the first
// SurfaceChanged.
func (r *Renderer) FrameSize() (width, height int) {
	r.sizeMu.Lock()
	defer r.sizeMu.Unlock()
	return r.outputWidth, r.outputHeight
}

// adjustImageScaling recomputes the quad and texture coordinates from the
// surface size, the image size, the rotation and the scale type.
func (r *Renderer) adjustImageScaling() {
	texCoords := TextureCoordinates(r.rotation, r.flipHorizontal, r.flipVertical)
	outW, outH := r.FrameSize()
	if outW <= 0 || outH <= 0 || r.imageWidth <= 0 || r.imageHeight <= 0 {
		r.cube = Cube
		r.texCoords = texCoords
		return
	}

	outputWidth, outputHeight := float32(outW), float32(outH)
	if r.rotation.swapsAxes() {
		outputWidth, outputHeight = outputHeight, outputWidth
	}

	ratio1 := outputWidth / float32(r.imageWidth)
	ratio2 := outputHeight / float32(r.imageHeight)
	ratioMax := max(ratio1, ratio2)
	imageWidthNew := float32(math.Round(float64(float32(r.imageWidth) * ratioMax)))
	imageHeightNew := float32(math.Round(float64(float32(r.imageHeight) * ratioMax)))

	ratioWidth := imageWidthNew / outputWidth
	ratioHeight := imageHeightNew / outputHeight

	cube := Cube
	if r.scaleType == ScaleCenterCrop {
		distHorizontal := (1 - 1/ratioWidth) / 2
		distVertical := (1 - 1/ratioHeight) / 2
		for i := 0; i < len(texCoords); i += 2 {
			texCoords[i] = addDistance(texCoords[i], distHorizontal)
			texCoords[i+1] = addDistance(texCoords[i+1], distVertical)
		}
	} else {
		cube = make([]float32, len(Cube))
		for i := 0; i < len(Cube); i += 2 {
			cube[i] = Cube[i] / ratioHeight
			cube[i+1] = Cube[i+1] / ratioWidth
		}
	}
	r.cube = cube
	r.texCoords = texCoords
}

func addDistance(coordinate, distance float32) float32 {
	if coordinate == 0 {
		return distance
	}
	return 1 - distance
}
