package pipecache

import (
	"errors"
	"sync"
	"testing"

	"github.com/gogpu/gputypes"
)

// ============================================================================
// Construction
// ============================================================================

func TestNewCache_NilDevice(t *testing.T) {
	c, err := NewCache(nil)
	if !errors.Is(err, ErrNilDevice) {
		t.Errorf("NewCache(nil) error = %v, want ErrNilDevice", err)
	}
	if c != nil {
		t.Error("NewCache(nil) returned a non-nil cache")
	}
}

// ============================================================================
// Shader modules
// ============================================================================

func TestCache_ShaderModuleReuse(t *testing.T) {
	device := newFakeDevice()
	c, err := NewCache(device)
	if err != nil {
		t.Fatalf("NewCache() = %v", err)
	}

	first, err := c.GetOrCreateShaderModule(testShaderSolid, "vs_main", "solid")
	if err != nil {
		t.Fatalf("GetOrCreateShaderModule() = %v", err)
	}
	second, err := c.GetOrCreateShaderModule(testShaderSolid, "vs_main", "solid")
	if err != nil {
		t.Fatalf("GetOrCreateShaderModule() second call = %v", err)
	}

	if first.ID != second.ID {
		t.Errorf("same source produced different modules: %d vs %d", first.ID, second.ID)
	}
	if device.shaderModuleCalls != 1 {
		t.Errorf("device CreateShaderModule called %d times, want 1", device.shaderModuleCalls)
	}
	if got := c.ShaderCount(); got != 1 {
		t.Errorf("ShaderCount() = %d, want 1", got)
	}

	stats := c.Stats()
	if stats.ShaderHits != 1 || stats.ShaderMisses != 1 {
		t.Errorf("stats = %d hits / %d misses, want 1/1", stats.ShaderHits, stats.ShaderMisses)
	}
}

func TestCache_ShaderModuleDistinctSources(t *testing.T) {
	device := newFakeDevice()
	c, _ := NewCache(device)

	a, err := c.GetOrCreateShaderModule(testShaderSolid, "vs_main", "solid")
	if err != nil {
		t.Fatalf("GetOrCreateShaderModule(solid) = %v", err)
	}
	b, err := c.GetOrCreateShaderModule(testShaderTextured, "vs_main", "textured")
	if err != nil {
		t.Fatalf("GetOrCreateShaderModule(textured) = %v", err)
	}

	if a.ID == b.ID {
		t.Error("distinct sources share a module ID")
	}
	if device.shaderModuleCalls != 2 {
		t.Errorf("device CreateShaderModule called %d times, want 2", device.shaderModuleCalls)
	}
}

func TestCache_ShaderModuleRecordFields(t *testing.T) {
	device := newFakeDevice()
	c, _ := NewCache(device)

	record, err := c.GetOrCreateShaderModule(testShaderTextured, "", "textured")
	if err != nil {
		t.Fatalf("GetOrCreateShaderModule() = %v", err)
	}

	if record.SourceHash != HashShaderSource(testShaderTextured) {
		t.Error("record SourceHash does not match the source hash")
	}
	if record.EntryPoint != "main" {
		t.Errorf("empty entry point recorded as %q, want \"main\"", record.EntryPoint)
	}
	if record.IR == nil {
		t.Error("record carries no IR module")
	}
	if len(record.SPIRV) == 0 {
		t.Error("record carries no SPIR-V words")
	}
	if device.lastShaderModule == nil || len(device.lastShaderModule.SPIRV) != len(record.SPIRV) {
		t.Error("device did not receive the generated SPIR-V")
	}
}

func TestCache_ShaderModuleParseError(t *testing.T) {
	device := newFakeDevice()
	c, _ := NewCache(device)

	_, err := c.GetOrCreateShaderModule("@vertex fn broken(", "vs_main", "broken")
	if !errors.Is(err, ErrShaderTranslation) {
		t.Errorf("parse failure error = %v, want ErrShaderTranslation", err)
	}
	if device.shaderModuleCalls != 0 {
		t.Error("device CreateShaderModule called for an untranslatable shader")
	}
	if got := c.ShaderCount(); got != 0 {
		t.Errorf("failed shader was cached: ShaderCount() = %d", got)
	}
}

func TestCache_ShaderModuleDeviceFailureNotCached(t *testing.T) {
	device := newFakeDevice()
	c, _ := NewCache(device)

	device.failShaderModule = errDeviceLost
	_, err := c.GetOrCreateShaderModule(testShaderSolid, "vs_main", "solid")
	if !errors.Is(err, ErrShaderModuleCreation) {
		t.Fatalf("device failure error = %v, want ErrShaderModuleCreation", err)
	}
	if !errors.Is(err, errDeviceLost) {
		t.Errorf("error does not wrap the device cause: %v", err)
	}
	if got := c.ShaderCount(); got != 0 {
		t.Errorf("failed creation was cached: ShaderCount() = %d", got)
	}

	// The next request retries and succeeds.
	device.failShaderModule = nil
	if _, err := c.GetOrCreateShaderModule(testShaderSolid, "vs_main", "solid"); err != nil {
		t.Fatalf("retry after device failure = %v", err)
	}
	if got := c.ShaderCount(); got != 1 {
		t.Errorf("ShaderCount() after retry = %d, want 1", got)
	}
}

func TestCache_ConcurrentShaderRequests(t *testing.T) {
	device := newFakeDevice()
	c, _ := NewCache(device)

	const goroutines = 32
	ids := make([]ShaderModuleID, goroutines)

	var wg sync.WaitGroup
	for i := range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			record, err := c.GetOrCreateShaderModule(testShaderSolid, "vs_main", "solid")
			if err != nil {
				t.Errorf("concurrent GetOrCreateShaderModule() = %v", err)
				return
			}
			ids[i] = record.ID
		}()
	}
	wg.Wait()

	if got := c.ShaderCount(); got != 1 {
		t.Errorf("ShaderCount() = %d after concurrent requests, want 1", got)
	}
	for i := 1; i < goroutines; i++ {
		if ids[i] != ids[0] {
			t.Fatalf("goroutine %d observed module %d, goroutine 0 observed %d", i, ids[i], ids[0])
		}
	}
}

// ============================================================================
// Render pipelines
// ============================================================================

func texturedSpec() *PipelineSpec {
	return &PipelineSpec{
		Label:          "ui",
		VertexSource:   testShaderTextured,
		FragmentSource: testShaderTextured,
		VertexLayout:   VertexLayoutPositionTex,
		Topology:       gputypes.PrimitiveTopologyTriangleList,
		ColorFormat:    gputypes.TextureFormatBGRA8Unorm,
		BlendEnabled:   true,
	}
}

func TestCache_PipelineMissThenHit(t *testing.T) {
	device := newFakeDevice()
	c, _ := NewCache(device)

	first, err := c.GetOrCreateRenderPipeline(texturedSpec())
	if err != nil {
		t.Fatalf("GetOrCreateRenderPipeline() = %v", err)
	}
	second, err := c.GetOrCreateRenderPipeline(texturedSpec())
	if err != nil {
		t.Fatalf("GetOrCreateRenderPipeline() second call = %v", err)
	}

	if first.Pipeline != second.Pipeline {
		t.Errorf("identical specs produced different pipelines: %d vs %d", first.Pipeline, second.Pipeline)
	}
	if device.renderPipelineCalls != 1 {
		t.Errorf("device CreateRenderPipeline called %d times, want 1", device.renderPipelineCalls)
	}
	// Vertex and fragment stage share one source, so one module.
	if device.shaderModuleCalls != 1 {
		t.Errorf("device CreateShaderModule called %d times, want 1", device.shaderModuleCalls)
	}

	stats := c.Stats()
	if stats.PipelineHits != 1 || stats.PipelineMisses != 1 {
		t.Errorf("stats = %d hits / %d misses, want 1/1", stats.PipelineHits, stats.PipelineMisses)
	}
	if stats.TotalPipelines != 1 {
		t.Errorf("TotalPipelines = %d, want 1", stats.TotalPipelines)
	}
}

func TestCache_PipelineSeparateStageSources(t *testing.T) {
	device := newFakeDevice()
	c, _ := NewCache(device)

	spec := texturedSpec()
	spec.VertexSource = testShaderSolid

	if _, err := c.GetOrCreateRenderPipeline(spec); err != nil {
		t.Fatalf("GetOrCreateRenderPipeline() = %v", err)
	}
	if device.shaderModuleCalls != 2 {
		t.Errorf("device CreateShaderModule called %d times, want 2", device.shaderModuleCalls)
	}
}

func TestCache_PipelineKeyIncludesDepthFormat(t *testing.T) {
	device := newFakeDevice()
	c, _ := NewCache(device)

	noDepth := texturedSpec()

	withDepth := texturedSpec()
	withDepth.DepthFormat = gputypes.TextureFormatDepth24PlusStencil8
	withDepth.DepthTestEnabled = true
	withDepth.DepthWriteEnabled = true
	withDepth.DepthCompare = gputypes.CompareFunctionLess

	a, err := c.GetOrCreateRenderPipeline(noDepth)
	if err != nil {
		t.Fatalf("GetOrCreateRenderPipeline(no depth) = %v", err)
	}
	b, err := c.GetOrCreateRenderPipeline(withDepth)
	if err != nil {
		t.Fatalf("GetOrCreateRenderPipeline(depth) = %v", err)
	}

	if a.Pipeline == b.Pipeline {
		t.Error("specs differing in depth format share a pipeline")
	}
	if device.renderPipelineCalls != 2 {
		t.Errorf("device CreateRenderPipeline called %d times, want 2", device.renderPipelineCalls)
	}
	if got := c.PipelineCount(); got != 2 {
		t.Errorf("PipelineCount() = %d, want 2", got)
	}
}

func TestCache_PipelineDescriptorDefaults(t *testing.T) {
	device := newFakeDevice()
	c, _ := NewCache(device)

	if _, err := c.GetOrCreateRenderPipeline(texturedSpec()); err != nil {
		t.Fatalf("GetOrCreateRenderPipeline() = %v", err)
	}

	desc := device.lastRenderPipeline
	if desc == nil {
		t.Fatal("device saw no render pipeline descriptor")
	}
	if desc.VertexEntryPoint != "vs_main" || desc.FragmentEntryPoint != "fs_main" {
		t.Errorf("entry points = %q/%q, want vs_main/fs_main", desc.VertexEntryPoint, desc.FragmentEntryPoint)
	}
	if desc.SampleCount != 1 {
		t.Errorf("SampleCount = %d, want default 1", desc.SampleCount)
	}
	if desc.VertexModule != desc.FragmentModule {
		t.Error("single-source spec resolved to two different modules")
	}
	if len(desc.VertexBuffers) != 1 || desc.VertexBuffers[0].ArrayStride != 20 {
		t.Error("vertex layout index was not expanded into buffer layouts")
	}
}

func TestCache_PipelineRecordIsolation(t *testing.T) {
	device := newFakeDevice()
	c, _ := NewCache(device)

	spec := texturedSpec()
	spec.BindGroupLayouts = []BindGroupLayoutID{7}
	spec.BindingLayout = []BindingLayoutEntry{{Binding: 0, Type: BindingTypeUniformBuffer}}

	first, err := c.GetOrCreateRenderPipeline(spec)
	if err != nil {
		t.Fatalf("GetOrCreateRenderPipeline() = %v", err)
	}

	// Mutating the returned record must not affect the cached copy.
	first.BindGroupLayouts[0] = 99
	first.BindingLayout[0].Type = BindingTypeSampler

	second, err := c.GetOrCreateRenderPipeline(spec)
	if err != nil {
		t.Fatalf("GetOrCreateRenderPipeline() second call = %v", err)
	}
	if second.BindGroupLayouts[0] != 7 {
		t.Error("mutation through a returned record leaked into the cache")
	}
	if second.BindingLayout[0].Type != BindingTypeUniformBuffer {
		t.Error("binding layout mutation leaked into the cache")
	}
}

func TestCache_PipelineNilSpec(t *testing.T) {
	device := newFakeDevice()
	c, _ := NewCache(device)

	_, err := c.GetOrCreateRenderPipeline(nil)
	if !errors.Is(err, ErrPipelineCreation) {
		t.Errorf("nil spec error = %v, want ErrPipelineCreation", err)
	}
}

func TestCache_PipelineDeviceFailureNotCached(t *testing.T) {
	device := newFakeDevice()
	c, _ := NewCache(device)

	device.failRenderPipeline = errDeviceLost
	_, err := c.GetOrCreateRenderPipeline(texturedSpec())
	if !errors.Is(err, ErrPipelineCreation) {
		t.Fatalf("device failure error = %v, want ErrPipelineCreation", err)
	}
	if got := c.PipelineCount(); got != 0 {
		t.Errorf("failed pipeline was cached: PipelineCount() = %d", got)
	}

	device.failRenderPipeline = nil
	if _, err := c.GetOrCreateRenderPipeline(texturedSpec()); err != nil {
		t.Fatalf("retry after device failure = %v", err)
	}
	if got := c.PipelineCount(); got != 1 {
		t.Errorf("PipelineCount() after retry = %d, want 1", got)
	}
}

// ============================================================================
// Statistics and clearing
// ============================================================================

func TestCache_HitRate(t *testing.T) {
	device := newFakeDevice()
	c, _ := NewCache(device)

	if rate := c.HitRate(); rate != 0.0 {
		t.Errorf("HitRate() on empty cache = %v, want 0", rate)
	}

	// One miss, one hit.
	if _, err := c.GetOrCreateShaderModule(testShaderSolid, "vs_main", "solid"); err != nil {
		t.Fatalf("GetOrCreateShaderModule() = %v", err)
	}
	if _, err := c.GetOrCreateShaderModule(testShaderSolid, "vs_main", "solid"); err != nil {
		t.Fatalf("GetOrCreateShaderModule() = %v", err)
	}

	if rate := c.HitRate(); rate != 0.5 {
		t.Errorf("HitRate() = %v, want 0.5", rate)
	}
}

func TestCache_Clear(t *testing.T) {
	device := newFakeDevice()
	c, _ := NewCache(device)

	if _, err := c.GetOrCreateRenderPipeline(texturedSpec()); err != nil {
		t.Fatalf("GetOrCreateRenderPipeline() = %v", err)
	}

	c.Clear()

	stats := c.Stats()
	if stats != (CacheStats{}) {
		t.Errorf("Stats() after Clear() = %+v, want all zero", stats)
	}

	// A previously cached key misses again.
	if _, err := c.GetOrCreateRenderPipeline(texturedSpec()); err != nil {
		t.Fatalf("GetOrCreateRenderPipeline() after Clear() = %v", err)
	}
	if device.renderPipelineCalls != 2 {
		t.Errorf("device CreateRenderPipeline called %d times, want 2", device.renderPipelineCalls)
	}
}
