// Package native adapts a gogpu/wgpu HAL device to the pipecache
// Device interface.
package native

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gogpu/pipecache"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/types"
)

// HALAdapter implements pipecache.Device using gogpu/wgpu/hal directly.
// It tracks the mapping between pipecache IDs and hal resources.
//
// Thread Safety: HALAdapter is safe for concurrent use from multiple
// goroutines. All resource operations are protected by a mutex.
type HALAdapter struct {
	mu     sync.RWMutex
	device hal.Device

	// ID generation
	nextID atomic.Uint64

	// Resource tracking maps pipecache IDs to hal resources
	shaderModules    map[pipecache.ShaderModuleID]hal.ShaderModule
	bindGroupLayouts map[pipecache.BindGroupLayoutID]hal.BindGroupLayout
	pipelineLayouts  map[pipecache.PipelineLayoutID]hal.PipelineLayout
	bindGroups       map[pipecache.BindGroupID]hal.BindGroup
	textures         map[pipecache.TextureID]hal.Texture
	textureViews     map[pipecache.TextureViewID]hal.TextureView
	renderPipelines  map[pipecache.RenderPipelineID]string
}

// NewHALAdapter creates an adapter wrapping the given hal device.
func NewHALAdapter(device hal.Device) *HALAdapter {
	adapter := &HALAdapter{
		device:           device,
		shaderModules:    make(map[pipecache.ShaderModuleID]hal.ShaderModule),
		bindGroupLayouts: make(map[pipecache.BindGroupLayoutID]hal.BindGroupLayout),
		pipelineLayouts:  make(map[pipecache.PipelineLayoutID]hal.PipelineLayout),
		bindGroups:       make(map[pipecache.BindGroupID]hal.BindGroup),
		textures:         make(map[pipecache.TextureID]hal.Texture),
		textureViews:     make(map[pipecache.TextureViewID]hal.TextureView),
		renderPipelines:  make(map[pipecache.RenderPipelineID]string),
	}

	// Start ID generation at 1 (0 is invalid)
	adapter.nextID.Store(1)

	return adapter
}

// newID generates a unique resource ID.
func (a *HALAdapter) newID() uint64 {
	return a.nextID.Add(1) - 1
}

// RegisterTexture makes an existing hal texture addressable through the
// adapter, so the resolver can re-create views over it.
func (a *HALAdapter) RegisterTexture(texture hal.Texture) pipecache.TextureID {
	id := pipecache.TextureID(a.newID())
	a.mu.Lock()
	a.textures[id] = texture
	a.mu.Unlock()
	return id
}

// CreateShaderModule creates a shader module from SPIR-V words.
func (a *HALAdapter) CreateShaderModule(desc *pipecache.ShaderModuleDescriptor) (pipecache.ShaderModuleID, error) {
	if desc == nil || len(desc.SPIRV) == 0 {
		return pipecache.InvalidID, fmt.Errorf("empty SPIR-V bytecode")
	}

	module, err := a.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label: desc.Label,
		Source: hal.ShaderSource{
			SPIRV: desc.SPIRV,
		},
	})
	if err != nil {
		return pipecache.InvalidID, fmt.Errorf("failed to create shader module: %w", err)
	}

	id := pipecache.ShaderModuleID(a.newID())

	a.mu.Lock()
	a.shaderModules[id] = module
	a.mu.Unlock()

	return id, nil
}

// CreateBindGroupLayout creates a bind group layout.
func (a *HALAdapter) CreateBindGroupLayout(desc *pipecache.BindGroupLayoutDescriptor) (pipecache.BindGroupLayoutID, error) {
	if desc == nil {
		return pipecache.InvalidID, fmt.Errorf("nil bind group layout descriptor")
	}

	halEntries := make([]types.BindGroupLayoutEntry, len(desc.Entries))
	for i, entry := range desc.Entries {
		halEntries[i] = convertBindingLayoutEntry(entry)
	}

	layout, err := a.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   desc.Label,
		Entries: halEntries,
	})
	if err != nil {
		return pipecache.InvalidID, fmt.Errorf("failed to create bind group layout: %w", err)
	}

	id := pipecache.BindGroupLayoutID(a.newID())

	a.mu.Lock()
	a.bindGroupLayouts[id] = layout
	a.mu.Unlock()

	return id, nil
}

// CreateBindGroup creates a bind group against a previously created layout.
func (a *HALAdapter) CreateBindGroup(desc *pipecache.BindGroupDescriptor) (pipecache.BindGroupID, error) {
	if desc == nil {
		return pipecache.InvalidID, fmt.Errorf("nil bind group descriptor")
	}

	a.mu.RLock()
	halLayout, ok := a.bindGroupLayouts[desc.Layout]
	a.mu.RUnlock()
	if !ok {
		return pipecache.InvalidID, fmt.Errorf("bind group layout %d not found", desc.Layout)
	}

	halEntries := make([]types.BindGroupEntry, len(desc.Entries))
	for i, entry := range desc.Entries {
		halEntries[i] = convertBindGroupEntry(entry)
	}

	bindGroup, err := a.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:   desc.Label,
		Layout:  halLayout,
		Entries: halEntries,
	})
	if err != nil {
		return pipecache.InvalidID, fmt.Errorf("failed to create bind group: %w", err)
	}

	id := pipecache.BindGroupID(a.newID())

	a.mu.Lock()
	a.bindGroups[id] = bindGroup
	a.mu.Unlock()

	return id, nil
}

// CreatePipelineLayout creates a pipeline layout.
func (a *HALAdapter) CreatePipelineLayout(desc *pipecache.PipelineLayoutDescriptor) (pipecache.PipelineLayoutID, error) {
	if desc == nil {
		return pipecache.InvalidID, fmt.Errorf("nil pipeline layout descriptor")
	}

	a.mu.RLock()
	halLayouts := make([]hal.BindGroupLayout, len(desc.BindGroupLayouts))
	for i, layoutID := range desc.BindGroupLayouts {
		layout, ok := a.bindGroupLayouts[layoutID]
		if !ok {
			a.mu.RUnlock()
			return pipecache.InvalidID, fmt.Errorf("bind group layout %d not found", layoutID)
		}
		halLayouts[i] = layout
	}
	a.mu.RUnlock()

	pipelineLayout, err := a.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            desc.Label,
		BindGroupLayouts: halLayouts,
	})
	if err != nil {
		return pipecache.InvalidID, fmt.Errorf("failed to create pipeline layout: %w", err)
	}

	id := pipecache.PipelineLayoutID(a.newID())

	a.mu.Lock()
	a.pipelineLayouts[id] = pipelineLayout
	a.mu.Unlock()

	return id, nil
}

// CreateRenderPipeline creates a render pipeline.
func (a *HALAdapter) CreateRenderPipeline(desc *pipecache.RenderPipelineDescriptor) (pipecache.RenderPipelineID, error) {
	if desc == nil {
		return pipecache.InvalidID, fmt.Errorf("nil render pipeline descriptor")
	}

	a.mu.RLock()
	_, ok := a.shaderModules[desc.VertexModule]
	a.mu.RUnlock()
	if !ok {
		return pipecache.InvalidID, fmt.Errorf("shader module %d not found", desc.VertexModule)
	}

	// TODO: switch to hal.RenderPipelineDescriptor once hal exposes
	// render pipeline creation; until then the pipeline exists only as
	// an adapter-level record:
	// halDesc := &hal.RenderPipelineDescriptor{
	//     Label: desc.Label,
	//     Vertex: hal.VertexState{
	//         Module:     a.shaderModules[desc.VertexModule],
	//         EntryPoint: desc.VertexEntryPoint,
	//         Buffers:    convertVertexBufferLayouts(desc.VertexBuffers),
	//     },
	//     Fragment: &hal.FragmentState{
	//         Module:     a.shaderModules[desc.FragmentModule],
	//         EntryPoint: desc.FragmentEntryPoint,
	//         Targets: []hal.ColorTargetState{{
	//             Format:    convertTextureFormat(desc.ColorFormat),
	//             Blend:     convertBlendState(desc.Blend),
	//             WriteMask: types.ColorWriteMaskAll,
	//         }},
	//     },
	//     DepthStencil: convertDepthState(desc.DepthStencil),
	//     Multisample: hal.MultisampleState{
	//         Count: desc.SampleCount,
	//     },
	// }
	// halPipeline, err := a.device.CreateRenderPipeline(halDesc)

	id := pipecache.RenderPipelineID(a.newID())

	a.mu.Lock()
	a.renderPipelines[id] = desc.Label
	a.mu.Unlock()

	pipecache.Logger().Debug("render pipeline recorded",
		"label", desc.Label,
		"sampleCount", desc.SampleCount)

	return id, nil
}

// CreateTextureView creates a view over a registered texture.
func (a *HALAdapter) CreateTextureView(desc *pipecache.TextureViewDescriptor) (pipecache.TextureViewID, error) {
	if desc == nil {
		return pipecache.InvalidID, fmt.Errorf("nil texture view descriptor")
	}

	a.mu.RLock()
	halTexture, ok := a.textures[desc.Texture]
	a.mu.RUnlock()
	if !ok {
		return pipecache.InvalidID, fmt.Errorf("texture %d not found", desc.Texture)
	}

	halView, err := a.device.CreateTextureView(halTexture, &hal.TextureViewDescriptor{
		Label:           desc.Label,
		Format:          convertTextureFormat(desc.Format),
		Dimension:       convertViewDimension(desc.Dimension),
		Aspect:          types.TextureAspectAll,
		BaseMipLevel:    desc.BaseMipLevel,
		MipLevelCount:   desc.MipLevelCount,
		BaseArrayLayer:  desc.BaseArrayLayer,
		ArrayLayerCount: desc.ArrayLayerCount,
	})
	if err != nil {
		return pipecache.InvalidID, fmt.Errorf("failed to create texture view: %w", err)
	}

	id := pipecache.TextureViewID(a.newID())

	a.mu.Lock()
	a.textureViews[id] = halView
	a.mu.Unlock()

	return id, nil
}
