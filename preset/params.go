package preset

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"slices"

	"github.com/go-gl/mathgl/mgl32"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// Params gives a Builder typed access to the parameters of one filter
// table. Every parameter must be read at least once; leftovers are reported
// as unknown.
type Params struct {
	values map[string]any
	dir    string
	used   map[string]bool
}

func (p *Params) get(name string) (any, bool) {
	p.used[name] = true
	v, ok := p.values[name]
	return v, ok
}

func (p *Params) unused() error {
	var names []string
	for k := range p.values {
		if !p.used[k] {
			names = append(names, k)
		}
	}
	if len(names) == 0 {
		return nil
	}
	slices.Sort(names)
	return fmt.Errorf("%w: unknown %q", ErrInvalidParam, names)
}

func toFloat(v any) (float32, bool) {
	switch v := v.(type) {
	case float64:
		return float32(v), true
	case int64:
		return float32(v), true
	case float32:
		return v, true
	case int:
		return float32(v), true
	}
	return 0, false
}

// Float returns the number name, or def when it is absent.
func (p *Params) Float(name string, def float32) (float32, error) {
	v, ok := p.get(name)
	if !ok {
		return def, nil
	}
	f, ok := toFloat(v)
	if !ok {
		return 0, fmt.Errorf("%w: %s: want a number, got %T", ErrInvalidParam, name, v)
	}
	return f, nil
}

// Int returns the integer name, or def when it is absent.
func (p *Params) Int(name string, def int) (int, error) {
	v, ok := p.get(name)
	if !ok {
		return def, nil
	}
	n, ok := v.(int64)
	if !ok {
		return 0, fmt.Errorf("%w: %s: want an integer, got %T", ErrInvalidParam, name, v)
	}
	return int(n), nil
}

// Floats returns the array name, which must hold exactly n numbers. def is
// returned when it is absent.
func (p *Params) Floats(name string, n int, def []float32) ([]float32, error) {
	v, ok := p.get(name)
	if !ok {
		return def, nil
	}
	arr, ok := v.([]any)
	if !ok || len(arr) != n {
		return nil, fmt.Errorf("%w: %s: want %d numbers", ErrInvalidParam, name, n)
	}
	out := make([]float32, n)
	for i, x := range arr {
		if out[i], ok = toFloat(x); !ok {
			return nil, fmt.Errorf("%w: %s[%d]: want a number, got %T", ErrInvalidParam, name, i, x)
		}
	}
	return out, nil
}

// Vec2 returns a two element array.
func (p *Params) Vec2(name string, def mgl32.Vec2) (mgl32.Vec2, error) {
	v, err := p.Floats(name, 2, def[:])
	if err != nil {
		return mgl32.Vec2{}, err
	}
	return mgl32.Vec2{v[0], v[1]}, nil
}

// Vec3 returns a three element array.
func (p *Params) Vec3(name string, def mgl32.Vec3) (mgl32.Vec3, error) {
	v, err := p.Floats(name, 3, def[:])
	if err != nil {
		return mgl32.Vec3{}, err
	}
	return mgl32.Vec3{v[0], v[1], v[2]}, nil
}

// String returns the string name, or def when it is absent.
func (p *Params) String(name, def string) (string, error) {
	v, ok := p.get(name)
	if !ok {
		return def, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s: want a string, got %T", ErrInvalidParam, name, v)
	}
	return s, nil
}

// Image decodes the required image file named by name. Relative paths are
// resolved against the preset's directory. PNG, JPEG, BMP and WebP are
// supported.
func (p *Params) Image(name string) (image.Image, error) {
	path, err := p.String(name, "")
	if err != nil {
		return nil, err
	}
	if path == "" {
		return nil, fmt.Errorf("%w: %s: required", ErrInvalidParam, name)
	}
	if !filepath.IsAbs(path) && p.dir != "" {
		path = filepath.Join(p.dir, path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("preset: %w", err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("preset: %s: %w", path, err)
	}
	return img, nil
}
