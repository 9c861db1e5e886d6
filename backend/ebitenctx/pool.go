package ebitenctx

import (
	"image"

	"github.com/hajimehoshi/ebiten/v2"
)

// scratchPool keeps offscreen images keyed by their exact size. Kage
// programs need every source image at the size of image 0, so a secondary
// texture of another size is resampled into a scratch image for the draw.
type scratchPool struct {
	buckets map[uint64][]*ebiten.Image
	inUse   []*ebiten.Image
	op      ebiten.DrawImageOptions
}

// poolKey packs width and height into a single uint64.
func poolKey(w, h int) uint64 {
	return uint64(w)<<32 | uint64(h)
}

// Acquire returns a cleared image of exactly size.
func (p *scratchPool) Acquire(size image.Point) *ebiten.Image {
	w, h := max(size.X, 1), max(size.Y, 1)
	key := poolKey(w, h)
	var img *ebiten.Image
	if stack := p.buckets[key]; len(stack) > 0 {
		img = stack[len(stack)-1]
		p.buckets[key] = stack[:len(stack)-1]
		img.Clear()
	} else {
		img = newImage(w, h)
	}
	p.inUse = append(p.inUse, img)
	return img
}

// Resample scales src to size into a scratch image.
func (p *scratchPool) Resample(src *ebiten.Image, size image.Point) *ebiten.Image {
	dst := p.Acquire(size)
	sb := src.Bounds()
	p.op = ebiten.DrawImageOptions{}
	p.op.GeoM.Scale(float64(size.X)/float64(sb.Dx()), float64(size.Y)/float64(sb.Dy()))
	p.op.Filter = ebiten.FilterLinear
	p.op.Blend = ebiten.BlendCopy
	dst.DrawImage(src, &p.op)
	return dst
}

// ReleaseAll returns every acquired image to the pool. Images are cleared
// on the next Acquire, not here.
func (p *scratchPool) ReleaseAll() {
	if len(p.inUse) == 0 {
		return
	}
	if p.buckets == nil {
		p.buckets = make(map[uint64][]*ebiten.Image)
	}
	for i, img := range p.inUse {
		b := img.Bounds()
		key := poolKey(b.Dx(), b.Dy())
		p.buckets[key] = append(p.buckets[key], img)
		p.inUse[i] = nil
	}
	p.inUse = p.inUse[:0]
}

// Len returns the number of pooled images not in use.
func (p *scratchPool) Len() int {
	n := 0
	for _, stack := range p.buckets {
		n += len(stack)
	}
	return n
}

// Dispose deallocates every pooled image.
func (p *scratchPool) Dispose() {
	p.ReleaseAll()
	for key, stack := range p.buckets {
		for _, img := range stack {
			img.Deallocate()
		}
		delete(p.buckets, key)
	}
}
