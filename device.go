package pipecache

import "github.com/gogpu/gputypes"

// Device abstracts GPU object creation. Backend implementations
// (backend/native for gogpu/wgpu) translate these descriptors to their
// native API and track the mapping between IDs and backend resources.
//
// Implementations must be safe for concurrent use: the caches call
// creation methods from multiple goroutines without external locking.
type Device interface {
	// CreateShaderModule creates a shader module from SPIR-V words.
	CreateShaderModule(desc *ShaderModuleDescriptor) (ShaderModuleID, error)

	// CreateBindGroupLayout creates a bind group layout.
	CreateBindGroupLayout(desc *BindGroupLayoutDescriptor) (BindGroupLayoutID, error)

	// CreateBindGroup creates a bind group against a previously created layout.
	CreateBindGroup(desc *BindGroupDescriptor) (BindGroupID, error)

	// CreatePipelineLayout creates a pipeline layout from bind group layouts.
	CreatePipelineLayout(desc *PipelineLayoutDescriptor) (PipelineLayoutID, error)

	// CreateRenderPipeline creates a render pipeline.
	CreateRenderPipeline(desc *RenderPipelineDescriptor) (RenderPipelineID, error)

	// CreateTextureView creates a view over an existing texture.
	// Zero-valued descriptor fields inherit from the texture.
	CreateTextureView(desc *TextureViewDescriptor) (TextureViewID, error)
}

// ShaderModuleDescriptor describes a shader module to create.
type ShaderModuleDescriptor struct {
	// Label is an optional debug label.
	Label string

	// SPIRV is the shader bytecode as uint32 words.
	SPIRV []uint32
}

// BindingLayoutEntry describes a single binding requirement within a
// bind group layout. The same type is produced by shader reflection
// and consumed by layout creation and the resolver.
type BindingLayoutEntry struct {
	// Group is the bind group index the entry belongs to.
	Group uint32

	// Binding is the binding index within the group.
	Binding uint32

	// Type is the kind of resource bound at this index.
	Type BindingType

	// MinBindingSize is the minimum buffer size for buffer bindings.
	// 0 means no minimum.
	MinBindingSize uint64

	// Dimension is the required view dimension for texture bindings.
	Dimension gputypes.TextureViewDimension

	// Name is the shader-side variable name, kept for diagnostics.
	Name string
}

// BindGroupLayoutDescriptor describes a bind group layout.
type BindGroupLayoutDescriptor struct {
	// Label is an optional debug label.
	Label string

	// Entries defines the bindings in this layout.
	Entries []BindingLayoutEntry
}

// BindGroupEntry describes a single resource bound in a bind group.
// Exactly one of Buffer, TextureView, or Sampler is non-zero.
type BindGroupEntry struct {
	// Binding is the binding index.
	Binding uint32

	// Buffer is the buffer to bind (for buffer bindings).
	Buffer BufferID

	// Offset is the offset into the buffer.
	Offset uint64

	// Size is the size of the buffer range to bind.
	Size uint64

	// TextureView is the texture view to bind (for texture bindings).
	TextureView TextureViewID

	// Sampler is the sampler to bind (for sampler bindings).
	Sampler SamplerID
}

// BindGroupDescriptor describes a bind group.
type BindGroupDescriptor struct {
	// Label is an optional debug label.
	Label string

	// Layout is the layout the group conforms to.
	Layout BindGroupLayoutID

	// Entries are the bound resources.
	Entries []BindGroupEntry
}

// PipelineLayoutDescriptor describes a pipeline layout.
type PipelineLayoutDescriptor struct {
	// Label is an optional debug label.
	Label string

	// BindGroupLayouts are the group layouts in group-index order.
	BindGroupLayouts []BindGroupLayoutID
}

// TextureViewDescriptor describes a texture view to create.
type TextureViewDescriptor struct {
	// Label is an optional debug label.
	Label string

	// Texture is the texture to view.
	Texture TextureID

	// Format is the view format. Undefined inherits from the texture.
	Format gputypes.TextureFormat

	// Dimension is the view dimension.
	Dimension gputypes.TextureViewDimension

	// Aspect selects depth/stencil/color aspects.
	Aspect gputypes.TextureAspect

	// BaseMipLevel is the first mip level of the view.
	BaseMipLevel uint32

	// MipLevelCount is the number of mip levels. 0 means all remaining.
	MipLevelCount uint32

	// BaseArrayLayer is the first array layer of the view.
	BaseArrayLayer uint32

	// ArrayLayerCount is the number of array layers. 0 means all remaining.
	ArrayLayerCount uint32
}

// BlendComponent describes a blend equation for one channel set.
type BlendComponent struct {
	// SrcFactor is the source blend factor.
	SrcFactor gputypes.BlendFactor

	// DstFactor is the destination blend factor.
	DstFactor gputypes.BlendFactor

	// Operation combines the weighted source and destination.
	Operation gputypes.BlendOperation
}

// BlendState describes color and alpha blending.
type BlendState struct {
	// Color is the blend equation for RGB channels.
	Color BlendComponent

	// Alpha is the blend equation for the alpha channel.
	Alpha BlendComponent
}

// DepthStencilState describes depth testing for a pipeline.
type DepthStencilState struct {
	// Format is the depth/stencil attachment format.
	Format gputypes.TextureFormat

	// DepthWriteEnabled controls depth buffer writes.
	DepthWriteEnabled bool

	// DepthCompare is the depth comparison function.
	DepthCompare gputypes.CompareFunction

	// DepthBiasConstant is the constant depth bias applied to fragments.
	DepthBiasConstant int32

	// DepthBiasSlopeScale scales the bias by the fragment's depth slope.
	DepthBiasSlopeScale float32
}

// VertexAttribute describes a single vertex attribute.
type VertexAttribute struct {
	// Format is the attribute data format.
	Format gputypes.VertexFormat

	// Offset is the byte offset within the vertex.
	Offset uint64

	// ShaderLocation is the @location index in the shader.
	ShaderLocation uint32
}

// VertexBufferLayout describes the layout of one vertex buffer.
type VertexBufferLayout struct {
	// ArrayStride is the byte stride between vertices.
	ArrayStride uint64

	// StepMode is per-vertex or per-instance stepping.
	StepMode gputypes.VertexStepMode

	// Attributes are the attributes read from this buffer.
	Attributes []VertexAttribute
}

// RenderPipelineDescriptor describes a render pipeline to create.
// This is the fully resolved form passed to the Device, after vertex
// layout lookup and depth/blend policy have been applied.
type RenderPipelineDescriptor struct {
	// Label is an optional debug label.
	Label string

	// Layout is the pipeline layout. 0 requests automatic layout.
	Layout PipelineLayoutID

	// VertexModule is the vertex stage shader module.
	VertexModule ShaderModuleID

	// FragmentModule is the fragment stage shader module.
	// May equal VertexModule when both stages share one module.
	FragmentModule ShaderModuleID

	// VertexEntryPoint is the vertex shader entry function.
	VertexEntryPoint string

	// FragmentEntryPoint is the fragment shader entry function.
	FragmentEntryPoint string

	// VertexBuffers are the vertex buffer layouts.
	VertexBuffers []VertexBufferLayout

	// Topology is the primitive topology.
	Topology gputypes.PrimitiveTopology

	// FrontFace is the winding order of front faces.
	FrontFace gputypes.FrontFace

	// CullMode selects which faces are culled.
	CullMode gputypes.CullMode

	// ColorFormat is the color attachment format.
	ColorFormat gputypes.TextureFormat

	// DepthStencil is the depth state. Always non-nil: pipelines
	// without a depth attachment get a disabled placeholder state.
	DepthStencil *DepthStencilState

	// Blend is the blend state, nil when blending is disabled.
	Blend *BlendState

	// SampleCount is the MSAA sample count (1 = no MSAA).
	SampleCount uint32
}
