package native

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/pipecache"
	"github.com/gogpu/wgpu/types"
)

// convertBindingLayoutEntry converts a pipecache layout entry to the
// hal wire shape. Render bindings are visible to both stages.
func convertBindingLayoutEntry(entry pipecache.BindingLayoutEntry) types.BindGroupLayoutEntry {
	result := types.BindGroupLayoutEntry{
		Binding:    entry.Binding,
		Visibility: types.ShaderStageVertex | types.ShaderStageFragment,
	}

	switch entry.Type {
	case pipecache.BindingTypeUniformBuffer:
		result.Buffer = &types.BufferBindingLayout{
			Type:           types.BufferBindingTypeUniform,
			MinBindingSize: entry.MinBindingSize,
		}
	case pipecache.BindingTypeStorageBuffer:
		result.Buffer = &types.BufferBindingLayout{
			Type:           types.BufferBindingTypeStorage,
			MinBindingSize: entry.MinBindingSize,
		}
	case pipecache.BindingTypeReadOnlyStorageBuffer:
		result.Buffer = &types.BufferBindingLayout{
			Type:           types.BufferBindingTypeReadOnlyStorage,
			MinBindingSize: entry.MinBindingSize,
		}
	case pipecache.BindingTypeSampledTexture:
		result.Texture = &types.TextureBindingLayout{
			SampleType:    types.TextureSampleTypeFloat,
			ViewDimension: convertViewDimension(entry.Dimension),
		}
	case pipecache.BindingTypeSampler:
		result.Sampler = &types.SamplerBindingLayout{
			Type: types.SamplerBindingTypeFiltering,
		}
	}

	return result
}

// convertBindGroupEntry converts a pipecache bind group entry to the
// hal wire shape. The non-zero resource field selects the binding kind.
func convertBindGroupEntry(entry pipecache.BindGroupEntry) types.BindGroupEntry {
	result := types.BindGroupEntry{
		Binding: entry.Binding,
	}

	switch {
	case entry.Buffer != pipecache.InvalidID:
		result.Resource = types.BufferBinding{
			Buffer: types.BufferHandle(entry.Buffer),
			Offset: entry.Offset,
			Size:   entry.Size,
		}
	case entry.TextureView != pipecache.InvalidID:
		result.Resource = types.TextureViewBinding{
			TextureView: types.TextureViewHandle(entry.TextureView),
		}
	case entry.Sampler != pipecache.InvalidID:
		result.Resource = types.SamplerBinding{
			Sampler: types.SamplerHandle(entry.Sampler),
		}
	}

	return result
}

// convertTextureFormat maps the formats the cache deals in onto hal
// formats. Unknown formats collapse to Undefined, which hal treats as
// "inherit from the texture" for views.
func convertTextureFormat(format gputypes.TextureFormat) types.TextureFormat {
	switch format {
	case gputypes.TextureFormatRGBA8Unorm:
		return types.TextureFormatRGBA8Unorm
	case gputypes.TextureFormatBGRA8Unorm:
		return types.TextureFormatBGRA8Unorm
	case gputypes.TextureFormatR8Unorm:
		return types.TextureFormatR8Unorm
	case gputypes.TextureFormatDepth24PlusStencil8:
		return types.TextureFormatDepth24PlusStencil8
	default:
		return types.TextureFormatUndefined
	}
}

// convertViewDimension maps view dimensions onto hal view dimensions.
func convertViewDimension(dim gputypes.TextureViewDimension) types.TextureViewDimension {
	switch dim {
	case gputypes.TextureViewDimension1D:
		return types.TextureViewDimension1D
	case gputypes.TextureViewDimension2D:
		return types.TextureViewDimension2D
	case gputypes.TextureViewDimension2DArray:
		return types.TextureViewDimension2DArray
	case gputypes.TextureViewDimension3D:
		return types.TextureViewDimension3D
	case gputypes.TextureViewDimensionCube:
		return types.TextureViewDimensionCube
	case gputypes.TextureViewDimensionCubeArray:
		return types.TextureViewDimensionCubeArray
	default:
		return types.TextureViewDimensionUndefined
	}
}
