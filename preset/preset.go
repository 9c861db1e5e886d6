// Package preset describes filter chains in TOML and builds them.
//
// A preset is a list of [[filter]] tables. Each table names its type and
// sets the filter's parameters; groups nest further [[filter.filter]]
// tables:
//
//	[[filter]]
//	type = "brightness"
//	brightness = 0.1
//
//	[[filter]]
//	type = "group"
//
//	  [[filter.filter]]
//	  type = "grayscale"
//
//	  [[filter.filter]]
//	  type = "vignette"
//	  start = 0.4
//
// Image parameters are paths relative to the preset file.
package preset

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/phanxgames/gpuimage"
)

var (
	// ErrUnknownType is returned when a filter table names no registered type.
	ErrUnknownType = errors.New("preset: unknown filter type")

	// ErrInvalidParam is returned for a missing, mistyped or unknown
	// parameter.
	ErrInvalidParam = errors.New("preset: invalid parameter")
)

// Entry is one [[filter]] table.
type Entry struct {
	Type     string
	Params   map[string]any
	Children []Entry
}

// Preset is a parsed filter chain.
type Preset struct {
	Filters []Entry

	// Dir resolves relative image paths. Load sets it to the file's
	// directory.
	Dir string
}

type document struct {
	Filter []map[string]any `toml:"filter"`
}

// Parse decodes a TOML preset.
func Parse(data []byte) (*Preset, error) {
	var doc document
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("preset: %w", err)
	}
	es, err := entries(doc.Filter, "filter")
	if err != nil {
		return nil, err
	}
	return &Preset{Filters: es}, nil
}

// Load reads and parses the preset file at path.
func Load(path string) (*Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("preset: %w", err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	p.Dir = filepath.Dir(path)
	return p, nil
}

func entries(tables []map[string]any, where string) ([]Entry, error) {
	out := make([]Entry, 0, len(tables))
	for i, t := range tables {
		e, err := entry(t, fmt.Sprintf("%s[%d]", where, i))
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func entry(t map[string]any, where string) (Entry, error) {
	typ, ok := t["type"].(string)
	if !ok || typ == "" {
		return Entry{}, fmt.Errorf("%w: %s: missing type", ErrInvalidParam, where)
	}
	e := Entry{Type: typ, Params: make(map[string]any, len(t))}
	for k, v := range t {
		switch k {
		case "type":
		case "filter":
			children, err := childTables(v)
			if err != nil {
				return Entry{}, fmt.Errorf("%w: %s.filter: %v", ErrInvalidParam, where, err)
			}
			if e.Children, err = entries(children, where+".filter"); err != nil {
				return Entry{}, err
			}
		default:
			e.Params[k] = v
		}
	}
	return e, nil
}

func childTables(v any) ([]map[string]any, error) {
	switch v := v.(type) {
	case []map[string]any:
		return v, nil
	case []any:
		out := make([]map[string]any, 0, len(v))
		for _, x := range v {
			m, ok := x.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("expected tables, got %T", x)
			}
			out = append(out, m)
		}
		return out, nil
	}
	return nil, fmt.Errorf("expected an array of tables, got %T", v)
}

// Build creates the filter chain. A single filter is returned as is, several
// are wrapped in a group, and an empty preset yields a passthrough filter.
func (p *Preset) Build() (gpuimage.Filter, error) {
	filters, err := buildAll(p.Filters, p.Dir, "filter")
	if err != nil {
		return nil, err
	}
	switch len(filters) {
	case 0:
		return gpuimage.NewPassthroughFilter(), nil
	case 1:
		return filters[0], nil
	}
	return gpuimage.NewGroup(filters...), nil
}

func buildAll(es []Entry, dir, where string) ([]gpuimage.Filter, error) {
	filters := make([]gpuimage.Filter, 0, len(es))
	for i := range es {
		f, err := build(&es[i], dir, fmt.Sprintf("%s[%d]", where, i))
		if err != nil {
			return nil, err
		}
		filters = append(filters, f)
	}
	return filters, nil
}

func build(e *Entry, dir, where string) (gpuimage.Filter, error) {
	if e.Type == "group" {
		for k := range e.Params {
			return nil, fmt.Errorf("%w: %s: group takes no parameter %q", ErrInvalidParam, where, k)
		}
		children, err := buildAll(e.Children, dir, where+".filter")
		if err != nil {
			return nil, err
		}
		return gpuimage.NewGroup(children...), nil
	}
	if len(e.Children) > 0 {
		return nil, fmt.Errorf("%w: %s: %s cannot hold filters", ErrInvalidParam, where, e.Type)
	}

	b := lookup(e.Type)
	if b == nil {
		return nil, fmt.Errorf("%w: %s: %q", ErrUnknownType, where, e.Type)
	}
	p := &Params{values: e.Params, dir: dir, used: make(map[string]bool)}
	f, err := b(p)
	if err == nil {
		err = p.unused()
	}
	if err != nil {
		return nil, fmt.Errorf("%s (%s): %w", where, e.Type, err)
	}
	return f, nil
}
