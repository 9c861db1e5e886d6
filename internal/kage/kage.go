// Package kage links the two source units of a gpuimage program into one
// Kage shader and inspects the uniforms it declares.
package kage

import (
	"regexp"
	"strings"
)

// Header starts every linked program. Coordinates are in pixels.
const Header = "//kage:unit pixels\n\npackage main\n"

var uniformDecl = regexp.MustCompile(`(?m)^var\s+([A-Z]\w*)\s`)

// Link concatenates the vertex and fragment units under the package header.
func Link(vertex, fragment string) string {
	var b strings.Builder
	b.Grow(len(Header) + len(vertex) + len(fragment) + 2)
	b.WriteString(Header)
	b.WriteByte('\n')
	b.WriteString(vertex)
	b.WriteByte('\n')
	b.WriteString(fragment)
	return b.String()
}

// Uniforms returns the names of the top-level uniform variables declared in
// the given sources, in declaration order and without duplicates.
func Uniforms(sources ...string) []string {
	var names []string
	seen := make(map[string]bool)
	for _, src := range sources {
		for _, m := range uniformDecl.FindAllStringSubmatch(src, -1) {
			if !seen[m[1]] {
				seen[m[1]] = true
				names = append(names, m[1])
			}
		}
	}
	return names
}

// HasFragment reports whether src defines the Fragment entry point.
func HasFragment(src string) bool {
	return strings.Contains(src, "func Fragment(")
}
