package pipecache

import (
	"errors"
	"sync"
)

// fakeDevice implements Device for tests. It hands out sequential IDs,
// counts creations per resource kind, records the last descriptor of
// each kind, and fails on demand.
type fakeDevice struct {
	mu     sync.Mutex
	nextID uint64

	shaderModuleCalls    int
	bindGroupLayoutCalls int
	bindGroupCalls       int
	pipelineLayoutCalls  int
	renderPipelineCalls  int
	textureViewCalls     int

	lastShaderModule    *ShaderModuleDescriptor
	lastBindGroupLayout *BindGroupLayoutDescriptor
	lastBindGroup       *BindGroupDescriptor
	lastRenderPipeline  *RenderPipelineDescriptor
	lastTextureView     *TextureViewDescriptor

	failShaderModule    error
	failBindGroupLayout error
	failBindGroup       error
	failRenderPipeline  error
	failTextureView     error
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{}
}

func (d *fakeDevice) newID() uint64 {
	d.nextID++
	return d.nextID
}

func (d *fakeDevice) CreateShaderModule(desc *ShaderModuleDescriptor) (ShaderModuleID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failShaderModule != nil {
		return InvalidID, d.failShaderModule
	}
	d.shaderModuleCalls++
	d.lastShaderModule = desc
	return ShaderModuleID(d.newID()), nil
}

func (d *fakeDevice) CreateBindGroupLayout(desc *BindGroupLayoutDescriptor) (BindGroupLayoutID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failBindGroupLayout != nil {
		return InvalidID, d.failBindGroupLayout
	}
	d.bindGroupLayoutCalls++
	d.lastBindGroupLayout = desc
	return BindGroupLayoutID(d.newID()), nil
}

func (d *fakeDevice) CreateBindGroup(desc *BindGroupDescriptor) (BindGroupID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failBindGroup != nil {
		return InvalidID, d.failBindGroup
	}
	d.bindGroupCalls++
	d.lastBindGroup = desc
	return BindGroupID(d.newID()), nil
}

func (d *fakeDevice) CreatePipelineLayout(desc *PipelineLayoutDescriptor) (PipelineLayoutID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pipelineLayoutCalls++
	return PipelineLayoutID(d.newID()), nil
}

func (d *fakeDevice) CreateRenderPipeline(desc *RenderPipelineDescriptor) (RenderPipelineID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failRenderPipeline != nil {
		return InvalidID, d.failRenderPipeline
	}
	d.renderPipelineCalls++
	d.lastRenderPipeline = desc
	return RenderPipelineID(d.newID()), nil
}

func (d *fakeDevice) CreateTextureView(desc *TextureViewDescriptor) (TextureViewID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failTextureView != nil {
		return InvalidID, d.failTextureView
	}
	d.textureViewCalls++
	d.lastTextureView = desc
	return TextureViewID(d.newID()), nil
}

var errDeviceLost = errors.New("device lost")

// testShaderSolid is a minimal vertex+fragment pair with no resource
// bindings, used where only the compile path matters.
const testShaderSolid = `
struct VertexOutput {
    @builtin(position) position: vec4<f32>,
    @location(0) color: vec4<f32>,
}

@vertex
fn vs_main(@location(0) pos: vec3<f32>, @location(1) color: vec4<f32>) -> VertexOutput {
    return VertexOutput(vec4<f32>(pos, 1.0), color);
}

@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4<f32> {
    return in.color;
}
`

// testShaderTextured declares a uniform block, a 2D texture, and a
// sampler, for tests that reflect bindings from compiled IR.
const testShaderTextured = `
struct Globals {
    mvp: mat4x4<f32>,
    tint: vec4<f32>,
}

@group(0) @binding(0) var<uniform> globals: Globals;
@group(0) @binding(1) var atlas: texture_2d<f32>;
@group(0) @binding(2) var atlas_sampler: sampler;

struct VertexOutput {
    @builtin(position) position: vec4<f32>,
    @location(0) uv: vec2<f32>,
}

@vertex
fn vs_main(@location(0) pos: vec3<f32>, @location(1) uv: vec2<f32>) -> VertexOutput {
    return VertexOutput(globals.mvp * vec4<f32>(pos, 1.0), uv);
}

@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4<f32> {
    return textureSample(atlas, atlas_sampler, in.uv) * globals.tint;
}
`

// testShaderCube samples a cube map, for dimension reflection tests.
const testShaderCube = `
struct VertexOutput {
    @builtin(position) position: vec4<f32>,
    @location(0) dir: vec3<f32>,
}

@group(0) @binding(0) var sky: texture_cube<f32>;
@group(0) @binding(1) var sky_sampler: sampler;

@vertex
fn vs_main(@builtin(vertex_index) vertex_index: u32) -> VertexOutput {
    var tmp1 = i32(vertex_index) / 2;
    var tmp2 = i32(vertex_index) & 1;
    let pos = vec4<f32>(
        f32(tmp1) * 4.0 - 1.0,
        f32(tmp2) * 4.0 - 1.0,
        0.0,
        1.0,
    );
    return VertexOutput(pos, pos.xyz);
}

@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4<f32> {
    return textureSample(sky, sky_sampler, in.dir);
}
`
