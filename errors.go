package gpuimage

import (
	"errors"
	"fmt"
)

var (
	// ErrFilterDestroyed is the panic value raised when a destroyed filter is
	// initialized, drawn or configured again.
	ErrFilterDestroyed = errors.New("gpuimage: filter used after Destroy")

	// ErrCaptureTimeout is returned when a capture request is not served
	// before the caller's context ends.
	ErrCaptureTimeout = errors.New("gpuimage: capture timed out")

	// ErrNoImage is returned by CaptureFiltered when no input image is set.
	ErrNoImage = errors.New("gpuimage: no input image")
)

// ShaderError reports a failed compile or link. Log holds the backend's
// diagnostic text.
type ShaderError struct {
	Stage string // "vertex", "fragment" or "link"
	Log   string
}

func (e *ShaderError) Error() string {
	return fmt.Sprintf("gpuimage: %s shader failed: %s", e.Stage, e.Log)
}
