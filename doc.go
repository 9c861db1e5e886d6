// Package gpuimage applies chains of shader filters to still images.
//
// A [Filter] owns a compiled program and draws one input texture into
// whatever framebuffer is bound. A [Group] chains filters through
// intermediate framebuffers, and a [Renderer] uploads the source image,
// fits it to the surface and draws the filter each frame. All GPU work goes
// through a [Context], so the same filters run on Ebitengine or on the
// software rasterizer used by tests and headless tools.
//
// # Quick start
//
// The simplest way to show a filtered image is the Ebitengine host, which
// creates a window and game loop for you:
//
//	r := gpuimage.NewRenderer(gpuimage.NewGroup(
//		gpuimage.NewSepiaFilter(1),
//		gpuimage.NewVignetteFilter(),
//	))
//	r.SetImage(img)
//	ebitenctx.Run(ebitenctx.NewHost(r), ebitenctx.RunConfig{
//		Title: "Sepia", Width: 640, Height: 480,
//	})
//
// Without a window, drive the renderer with the software context and read
// the result back:
//
//	ctx := soft.NewContext(w, h)
//	r.SurfaceCreated(ctx)
//	r.SurfaceChanged(ctx, w, h)
//	r.DrawFrame(ctx)
//
// # Threading
//
// Filter setters may be called from any goroutine. They queue a task that
// runs on the drawing goroutine before the next draw, so when a uniform is
// set several times between frames the last value wins. Everything that
// takes a [Context] must run on the drawing goroutine. [Renderer.Capture]
// blocks until a frame has been drawn and so must be called from another
// goroutine.
//
// # Presets
//
// Package preset builds filter chains from TOML files and can rebuild them
// when the file changes:
//
//	[[filter]]
//	type = "contrast"
//	contrast = 1.2
//
//	[[filter]]
//	type = "vignette"
//	start = 0.3
//
// # Animation
//
// [TweenFloat], [TweenVec2] and [TweenVec3] animate filter parameters with
// easing functions from gween. The Ebitengine host advances its
// [TweenSet] every tick.
package gpuimage
