package gpuimage

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// WaitForSurfaceSize blocks until the first SurfaceChanged, timeout elapses
// or ctx ends, and returns the best-known size. Before any surface exists the
// best-known size is the image size, which may be zero. A timeout is not an
// error.
func (r *Renderer) WaitForSurfaceSize(ctx context.Context, timeout time.Duration) (width, height int) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-r.sizeKnown:
	case <-timer.C:
		Logger().Debug("gpuimage: surface size wait timed out", slog.Duration("timeout", timeout))
	case <-ctx.Done():
	}
	if w, h := r.FrameSize(); w > 0 && h > 0 {
		return w, h
	}
	return r.fallbackSize()
}

// fallbackSize returns the size of the last image handed to SetImage.
func (r *Renderer) fallbackSize() (width, height int) {
	r.sizeMu.Lock()
	defer r.sizeMu.Unlock()
	return r.requestedImage.X, r.requestedImage.Y
}

type captureResult struct {
	img *image.NRGBA
	err error
}

// Capture returns the visible surface as it is after the next frame. It
// blocks until the render goroutine serves the request or ctx ends.
// Calling it from the render goroutine deadlocks.
func (r *Renderer) Capture(ctx context.Context) (*image.NRGBA, error) {
	done := make(chan captureResult, 1)
	r.RunOnDrawEnd(func(gctx Context) {
		w, h := r.FrameSize()
		done <- captureResult{img: readImage(gctx, w, h)}
	})
	return waitCapture(ctx, done)
}

// CaptureFiltered renders the current image through the current filter into
// an offscreen buffer the size of the image and returns it. The surface and
// the filter's output size are restored afterwards. Calling it from the
// render goroutine deadlocks.
func (r *Renderer) CaptureFiltered(ctx context.Context) (*image.NRGBA, error) {
	done := make(chan captureResult, 1)
	r.RunOnDrawEnd(func(gctx Context) {
		if r.image == NoTexture {
			done <- captureResult{err: ErrNoImage}
			return
		}
		w, h := r.imageWidth+r.addedPadding, r.imageHeight
		tex := gctx.CreateTexture(w, h, TextureOptions{Filter: FilterLinear, Wrap: WrapClampToEdge})
		fb := gctx.CreateFramebuffer(tex)
		prev := gctx.BoundFramebuffer()

		gctx.BindFramebuffer(fb)
		gctx.ClearColor(0, 0, 0, 0)
		gctx.Clear()
		r.filter.OutputSizeChanged(gctx, w, h)
		r.filter.Draw(gctx, r.image, Cube, TextureCoordinates(RotationNormal, false, false))
		img := readImage(gctx, w, h)
		if r.addedPadding > 0 {
			img = img.SubImage(image.Rect(0, 0, r.imageWidth, r.imageHeight)).(*image.NRGBA)
		}

		gctx.BindFramebuffer(prev)
		gctx.DeleteFramebuffer(fb)
		gctx.DeleteTexture(tex)
		outW, outH := r.FrameSize()
		r.filter.OutputSizeChanged(gctx, outW, outH)
		done <- captureResult{img: img}
	})
	return waitCapture(ctx, done)
}

func waitCapture(ctx context.Context, done <-chan captureResult) (*image.NRGBA, error) {
	select {
	case res := <-done:
		return res.img, res.err
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", ErrCaptureTimeout, ctx.Err())
	}
}

// readImage reads the bound target and returns it top row first.
func readImage(ctx Context, width, height int) *image.NRGBA {
	if width <= 0 || height <= 0 {
		return image.NewNRGBA(image.Rectangle{})
	}
	pix := ctx.ReadPixels(width, height)
	flipRows(pix, width, height)
	return toNRGBA(width, height, pix)
}

// SaveCapturePNG writes img to dir as <timestamp>_<label>.png and returns the
// path. The label is sanitized for use in file names.
func SaveCapturePNG(dir, label string, img image.Image) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("capture: mkdir %s: %w", dir, err)
	}
	stamp := time.Now().Format("20060102_150405")
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.png", stamp, sanitizeLabel(label)))
	if err := writePNG(path, img); err != nil {
		return "", fmt.Errorf("capture: %w", err)
	}
	return path, nil
}

// writePNG encodes an image to a PNG file at the given path.
func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// sanitizeLabel replaces characters that are unsafe in file names with
// underscores and falls back to "unlabeled" for empty strings.
func sanitizeLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "unlabeled"
	}
	var b strings.Builder
	b.Grow(len(label))
	for _, r := range label {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9', r == '-', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
