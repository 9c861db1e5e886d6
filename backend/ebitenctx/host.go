package ebitenctx

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"github.com/phanxgames/gpuimage"
)

// Host runs a Renderer as an ebiten.Game. It creates the surface on the
// first Draw, reports window resizes, and draws a frame whenever the
// renderer needs one.
type Host struct {
	Renderer *gpuimage.Renderer
	Context  *Context
	Tweens   *gpuimage.TweenSet

	// OnUpdate is called once per tick after the tweens advance. Returning
	// an error stops the game.
	OnUpdate func(dt float32) error

	// ShowFPS draws the frame rate in the top-left corner.
	ShowFPS bool

	created       bool
	width, height int
	closing       bool
	closed        bool
	fps           *fpsOverlay
}

var _ ebiten.Game = (*Host)(nil)

// NewHost wraps r with a fresh Context.
func NewHost(r *gpuimage.Renderer) *Host {
	return &Host{
		Renderer: r,
		Context:  NewContext(),
		Tweens:   &gpuimage.TweenSet{},
	}
}

func (h *Host) Update() error {
	if h.closed {
		return ebiten.Termination
	}
	if ebiten.IsWindowBeingClosed() {
		h.closing = true
		return nil
	}

	dt := 1 / float32(ebiten.TPS())
	if h.Tweens.Len() > 0 {
		h.Tweens.Update(dt)
		h.Renderer.RequestRender()
	}
	if h.ShowFPS {
		if h.fps == nil {
			h.fps = newFPSOverlay()
		}
		if h.fps.update(dt) {
			h.Renderer.RequestRender()
		}
	}
	if h.OnUpdate != nil {
		return h.OnUpdate(dt)
	}
	return nil
}

func (h *Host) Draw(screen *ebiten.Image) {
	if h.closed {
		return
	}
	h.Context.SetSurface(screen)
	if h.closing {
		h.Close()
		return
	}
	if !h.created {
		h.Renderer.SurfaceCreated(h.Context)
		h.created = true
	}
	b := screen.Bounds()
	if b.Dx() != h.width || b.Dy() != h.height {
		h.width, h.height = b.Dx(), b.Dy()
		h.Renderer.SurfaceChanged(h.Context, h.width, h.height)
	}
	if !h.Renderer.NeedsRender() {
		return
	}
	h.Renderer.DrawFrame(h.Context)
	if h.fps != nil {
		h.fps.draw(screen)
	}
}

func (h *Host) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}

// Quit closes the host on the next draw, releasing GPU resources before Run
// returns.
func (h *Host) Quit() { h.closing = true }

// Close destroys the renderer and releases every GPU resource. It must run
// on the drawing goroutine while the game is still running.
func (h *Host) Close() {
	if h.closed {
		return
	}
	h.closed = true
	h.Renderer.Destroy(h.Context)
	h.Context.Dispose()
	if h.fps != nil {
		h.fps.img.Deallocate()
	}
}

// RunConfig configures the window opened by Run.
type RunConfig struct {
	Title         string
	Width, Height int
	ShowFPS       bool
	Resizable     bool
	RenderMode    gpuimage.RenderMode
}

// Run opens a window and drives h until the window is closed or OnUpdate
// returns an error.
func Run(h *Host, cfg RunConfig) error {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		cfg.Width, cfg.Height = 640, 480
	}
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	if cfg.Resizable {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	}
	ebiten.SetWindowClosingHandled(true)
	// Frames skipped in dirty mode keep the last drawn surface.
	ebiten.SetScreenClearedEveryFrame(cfg.RenderMode == gpuimage.RenderContinuously)

	h.ShowFPS = h.ShowFPS || cfg.ShowFPS
	h.Renderer.SetRenderMode(cfg.RenderMode)

	err := ebiten.RunGame(h)
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}

// fpsOverlay shows FPS and TPS, refreshed every half second.
type fpsOverlay struct {
	img     *ebiten.Image
	elapsed float32
	op      ebiten.DrawImageOptions
}

func newFPSOverlay() *fpsOverlay {
	// 100x32 is enough for "FPS: 60.0\nTPS: 60.0"
	o := &fpsOverlay{img: ebiten.NewImage(100, 32), elapsed: 0.5}
	return o
}

// update reports whether the text changed.
func (o *fpsOverlay) update(dt float32) bool {
	o.elapsed += dt
	if o.elapsed < 0.5 {
		return false
	}
	o.elapsed = 0
	o.img.Fill(color.RGBA{0, 0, 0, 128})
	ebitenutil.DebugPrint(o.img, fmt.Sprintf("FPS: %.1f\nTPS: %.1f", ebiten.ActualFPS(), ebiten.ActualTPS()))
	return true
}

func (o *fpsOverlay) draw(screen *ebiten.Image) {
	screen.DrawImage(o.img, &o.op)
}
