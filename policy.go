package pipecache

import "github.com/gogpu/gputypes"

// placeholderDepthFormat backs the disabled depth state synthesized for
// pipelines without a depth attachment. Keeping a concrete format in
// the descriptor (rather than omitting the state) keeps every
// GPU-visible field present in both the descriptor and the cache key.
const placeholderDepthFormat = gputypes.TextureFormatDepth24PlusStencil8

// buildPipelineDescriptor expands a spec and its derived key into the
// fully resolved descriptor handed to the device.
func buildPipelineDescriptor(spec *PipelineSpec, key *PipelineKey, vertex, fragment ShaderModuleID) *RenderPipelineDescriptor {
	return &RenderPipelineDescriptor{
		Label:              spec.Label,
		Layout:             spec.Layout,
		VertexModule:       vertex,
		FragmentModule:     fragment,
		VertexEntryPoint:   key.VertexEntryPoint,
		FragmentEntryPoint: key.FragmentEntryPoint,
		VertexBuffers:      VertexBuffersForLayout(spec.VertexLayout),
		Topology:           spec.Topology,
		FrontFace:          spec.FrontFace,
		CullMode:           spec.CullMode,
		ColorFormat:        spec.ColorFormat,
		DepthStencil:       depthStencilForSpec(spec),
		Blend:              blendStateForSpec(spec),
		SampleCount:        key.SampleCount,
	}
}

// depthStencilForSpec synthesizes the depth state for a spec.
//
// A spec without a depth format gets a disabled state over a
// placeholder format: depth writes off, compare Always. A spec with a
// format but depth testing disabled keeps its format with the same
// no-op write/compare pair. Depth bias passes through unchanged in
// both cases so shadow-style pipelines keep their bias even with
// testing toggled off.
func depthStencilForSpec(spec *PipelineSpec) *DepthStencilState {
	state := &DepthStencilState{
		Format:              spec.DepthFormat,
		DepthBiasConstant:   spec.DepthBiasConstant,
		DepthBiasSlopeScale: spec.DepthBiasSlopeScale,
	}

	if spec.DepthFormat == gputypes.TextureFormatUndefined {
		state.Format = placeholderDepthFormat
		state.DepthWriteEnabled = false
		state.DepthCompare = gputypes.CompareFunctionAlways
		return state
	}

	if !spec.DepthTestEnabled {
		state.DepthWriteEnabled = false
		state.DepthCompare = gputypes.CompareFunctionAlways
		return state
	}

	state.DepthWriteEnabled = spec.DepthWriteEnabled
	state.DepthCompare = spec.DepthCompare
	if state.DepthCompare == 0 {
		state.DepthCompare = gputypes.CompareFunctionAlways
	}
	return state
}

// blendStateForSpec returns the standard alpha blend state when the
// spec enables blending, nil otherwise.
//
// Color: src*SrcAlpha + dst*(1-SrcAlpha). Alpha: src + dst*(1-SrcAlpha).
func blendStateForSpec(spec *PipelineSpec) *BlendState {
	if !spec.BlendEnabled {
		return nil
	}
	return &BlendState{
		Color: BlendComponent{
			SrcFactor: gputypes.BlendFactorSrcAlpha,
			DstFactor: gputypes.BlendFactorOneMinusSrcAlpha,
			Operation: gputypes.BlendOperationAdd,
		},
		Alpha: BlendComponent{
			SrcFactor: gputypes.BlendFactorOne,
			DstFactor: gputypes.BlendFactorOneMinusSrcAlpha,
			Operation: gputypes.BlendOperationAdd,
		},
	}
}
