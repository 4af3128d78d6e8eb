package pipecache

import (
	"errors"
	"fmt"
)

// Sentinel errors for cache and resolver failures. Wrapped errors carry
// the debug label of the offending resource; use [errors.Is] to classify.
var (
	// ErrNilDevice is returned when a cache or resolver is constructed
	// or used without a device.
	ErrNilDevice = errors.New("pipecache: device is nil")

	// ErrShaderTranslation indicates the WGSL source could not be
	// parsed, lowered, or converted to SPIR-V.
	ErrShaderTranslation = errors.New("pipecache: shader translation failed")

	// ErrShaderValidation indicates the shader parsed but failed
	// validation.
	ErrShaderValidation = errors.New("pipecache: shader validation failed")

	// ErrShaderModuleCreation indicates the device rejected the
	// translated shader module.
	ErrShaderModuleCreation = errors.New("pipecache: shader module creation failed")

	// ErrPipelineCreation indicates the device rejected a render
	// pipeline description.
	ErrPipelineCreation = errors.New("pipecache: pipeline creation failed")

	// ErrBindGroupLayoutCreation indicates the device rejected a bind
	// group layout.
	ErrBindGroupLayoutCreation = errors.New("pipecache: bind group layout creation failed")

	// ErrBindGroupCreation indicates the device rejected a bind group.
	ErrBindGroupCreation = errors.New("pipecache: bind group creation failed")
)

// errNilSpec is the cause attached when a pipeline is requested
// without a spec.
var errNilSpec = errors.New("pipeline spec is nil")

// wrapf attaches a label and an underlying cause to a sentinel error.
// The result satisfies errors.Is for both sentinel and cause.
func wrapf(sentinel error, label string, cause error) error {
	if cause == nil {
		return fmt.Errorf("%w: %q", sentinel, label)
	}
	return fmt.Errorf("%w: %q: %w", sentinel, label, cause)
}
