package pipecache

import (
	"math"

	"github.com/gogpu/gputypes"
)

// PipelineSpec describes a render pipeline at the caller's level of
// abstraction: WGSL sources, a vertex layout table index, pre-created
// layout handles, and render state. The cache expands it into a full
// RenderPipelineDescriptor by resolving shader modules, applying the
// vertex layout table, and synthesizing depth and blend state.
type PipelineSpec struct {
	// Label is an optional debug label.
	Label string

	// VertexSource is the WGSL source of the vertex stage.
	VertexSource string

	// FragmentSource is the WGSL source of the fragment stage.
	// May equal VertexSource when both stages live in one file.
	FragmentSource string

	// VertexEntryPoint defaults to "vs_main" when empty.
	VertexEntryPoint string

	// FragmentEntryPoint defaults to "fs_main" when empty.
	FragmentEntryPoint string

	// Layout is the pipeline layout the pipeline links against.
	Layout PipelineLayoutID

	// BindGroupLayouts are the group layouts behind Layout, recorded
	// on the pipeline record for bind-group resolution at draw time.
	BindGroupLayouts []BindGroupLayoutID

	// BindingLayout is the reflected binding requirement list recorded
	// on the pipeline record. See ReflectBindings.
	BindingLayout []BindingLayoutEntry

	// VertexLayout indexes the vertex layout table.
	// Use VertexLayoutNone for pipelines without vertex buffers.
	VertexLayout uint8

	// Topology is the primitive topology.
	Topology gputypes.PrimitiveTopology

	// FrontFace is the winding order of front faces.
	FrontFace gputypes.FrontFace

	// CullMode selects which faces are culled.
	CullMode gputypes.CullMode

	// ColorFormat is the color attachment format.
	ColorFormat gputypes.TextureFormat

	// DepthFormat is the depth attachment format.
	// TextureFormatUndefined means no depth attachment.
	DepthFormat gputypes.TextureFormat

	// DepthTestEnabled enables depth comparison.
	DepthTestEnabled bool

	// DepthWriteEnabled enables depth buffer writes.
	// Ignored when DepthTestEnabled is false.
	DepthWriteEnabled bool

	// DepthCompare is the depth comparison function.
	// Ignored when DepthTestEnabled is false.
	DepthCompare gputypes.CompareFunction

	// DepthBiasConstant is the constant depth bias.
	DepthBiasConstant int32

	// DepthBiasSlopeScale scales the bias by the fragment depth slope.
	DepthBiasSlopeScale float32

	// BlendEnabled enables standard alpha blending.
	BlendEnabled bool

	// SampleCount is the MSAA sample count. 0 defaults to 1.
	SampleCount uint32
}

// PipelineKey identifies a render pipeline in the cache. It is a plain
// comparable struct covering every field of the spec that the GPU can
// observe, so two specs that differ in any render state never share a
// pipeline. Omitting a field here (notably DepthFormat) would conflate
// binary-incompatible pipelines. Float fields are stored as bits to
// keep the key comparable.
type PipelineKey struct {
	VertexHash         uint64
	FragmentHash       uint64
	VertexEntryPoint   string
	FragmentEntryPoint string
	VertexLayout       uint8
	Topology           gputypes.PrimitiveTopology
	FrontFace          gputypes.FrontFace
	CullMode           gputypes.CullMode
	ColorFormat        gputypes.TextureFormat
	DepthFormat        gputypes.TextureFormat
	DepthTestEnabled   bool
	DepthWriteEnabled  bool
	DepthCompare       gputypes.CompareFunction
	DepthBiasConstant  int32
	DepthBiasSlopeBits uint32
	BlendEnabled       bool
	SampleCount        uint32
}

// Key derives the cache key for the spec. Entry point defaults and the
// sample count default are applied first so that equivalent specs map
// to the same key.
func (s *PipelineSpec) Key() PipelineKey {
	vertexEntry := s.VertexEntryPoint
	if vertexEntry == "" {
		vertexEntry = "vs_main"
	}
	fragmentEntry := s.FragmentEntryPoint
	if fragmentEntry == "" {
		fragmentEntry = "fs_main"
	}

	sampleCount := s.SampleCount
	if sampleCount == 0 {
		sampleCount = 1
	}

	return PipelineKey{
		VertexHash:         HashShaderSource(s.VertexSource),
		FragmentHash:       HashShaderSource(s.FragmentSource),
		VertexEntryPoint:   vertexEntry,
		FragmentEntryPoint: fragmentEntry,
		VertexLayout:       s.VertexLayout,
		Topology:           s.Topology,
		FrontFace:          s.FrontFace,
		CullMode:           s.CullMode,
		ColorFormat:        s.ColorFormat,
		DepthFormat:        s.DepthFormat,
		DepthTestEnabled:   s.DepthTestEnabled,
		DepthWriteEnabled:  s.DepthWriteEnabled,
		DepthCompare:       s.DepthCompare,
		DepthBiasConstant:  s.DepthBiasConstant,
		DepthBiasSlopeBits: math.Float32bits(s.DepthBiasSlopeScale),
		BlendEnabled:       s.BlendEnabled,
		SampleCount:        sampleCount,
	}
}
