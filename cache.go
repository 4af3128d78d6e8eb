package pipecache

import (
	"sync"
	"sync/atomic"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga/ir"
)

// ShaderModuleRecord is a cached, compiled shader module. One record
// exists per distinct source text; hash collisions between distinct
// sources are an accepted, documented risk of content addressing.
//
// The record keeps the validated IR so callers can reflect bindings
// ([ReflectBindings]) without recompiling the source.
type ShaderModuleRecord struct {
	// ID is the device handle of the module.
	ID ShaderModuleID

	// SourceHash is the FNV-1a hash of the WGSL source.
	SourceHash uint64

	// EntryPoint is the entry function the module was requested with.
	EntryPoint string

	// Label is the debug label the module was created with.
	Label string

	// IR is the validated naga IR module.
	IR *ir.Module

	// SPIRV is the generated bytecode, kept for diagnostics.
	SPIRV []uint32
}

// PipelineRecord is a cached render pipeline together with everything
// the resolver needs at draw time: the layout handles the pipeline was
// linked against and its reflected binding requirements.
//
// Records are immutable once cached. Cache hits return a clone, so a
// caller can never mutate the cached copy through the returned value.
type PipelineRecord struct {
	// Pipeline is the device handle of the pipeline.
	Pipeline RenderPipelineID

	// PipelineLayout is the layout the pipeline was linked against.
	PipelineLayout PipelineLayoutID

	// BindGroupLayouts are the group layouts in group-index order.
	BindGroupLayouts []BindGroupLayoutID

	// BindingLayout is the reflected binding requirement list.
	BindingLayout []BindingLayoutEntry

	// DepthFormat is the depth attachment format of the pipeline.
	// TextureFormatUndefined when the pipeline has no depth attachment.
	DepthFormat gputypes.TextureFormat

	// Key is the cache key the pipeline was created under.
	Key PipelineKey

	// Label is the debug label the pipeline was created with.
	Label string
}

// Clone returns a copy of the record with freshly allocated slices.
// Handles are copied as values; no GPU resource ownership transfers.
func (r *PipelineRecord) Clone() *PipelineRecord {
	clone := *r
	clone.BindGroupLayouts = make([]BindGroupLayoutID, len(r.BindGroupLayouts))
	copy(clone.BindGroupLayouts, r.BindGroupLayouts)
	clone.BindingLayout = make([]BindingLayoutEntry, len(r.BindingLayout))
	copy(clone.BindingLayout, r.BindingLayout)
	return &clone
}

// CacheStats is a point-in-time snapshot of cache counters.
type CacheStats struct {
	// ShaderHits counts shader requests served from the cache.
	ShaderHits uint64

	// ShaderMisses counts shader requests that compiled a module.
	ShaderMisses uint64

	// PipelineHits counts pipeline requests served from the cache.
	PipelineHits uint64

	// PipelineMisses counts pipeline requests that created a pipeline.
	PipelineMisses uint64

	// TotalShaders is the number of cached shader modules.
	TotalShaders uint64

	// TotalPipelines is the number of cached render pipelines.
	TotalPipelines uint64
}

// Cache is a content-addressed cache of shader modules and render
// pipelines. Shader modules are keyed by the FNV-1a hash of their WGSL
// source; pipelines are keyed by the full [PipelineKey] struct, so key
// collisions cannot alias distinct pipelines.
//
// Thread Safety:
// Cache is safe for concurrent use. Lookups take a read lock;
// creation runs outside the lock and insertion is double-checked, so
// concurrent misses on the same key may each create a GPU object but
// exactly one insertion wins and every later caller observes it.
// Failed creations are never cached: the next request retries.
type Cache struct {
	// device creates GPU objects on cache misses.
	device Device

	// mu protects both maps.
	mu sync.RWMutex

	// shaders stores modules indexed by source hash.
	shaders map[uint64]*ShaderModuleRecord

	// pipelines stores render pipelines indexed by full key.
	pipelines map[PipelineKey]*PipelineRecord

	// Counters are atomic for lock-free reads.
	shaderHits     atomic.Uint64
	shaderMisses   atomic.Uint64
	pipelineHits   atomic.Uint64
	pipelineMisses atomic.Uint64
}

// NewCache creates an empty cache backed by the given device.
func NewCache(device Device) (*Cache, error) {
	if device == nil {
		return nil, ErrNilDevice
	}
	return &Cache{
		device:    device,
		shaders:   make(map[uint64]*ShaderModuleRecord),
		pipelines: make(map[PipelineKey]*PipelineRecord),
	}, nil
}

// GetOrCreateShaderModule returns the cached module for the source, or
// compiles and creates it on a miss. entryPoint defaults to "main"
// when empty and is recorded on the module for diagnostics; the cache
// key is the source hash alone.
//
// Translation (parse, lower, validate, SPIR-V generation) runs outside
// the cache lock. On error the cache is left untouched.
func (c *Cache) GetOrCreateShaderModule(source, entryPoint, label string) (*ShaderModuleRecord, error) {
	sourceHash := HashShaderSource(source)

	// Fast path: read lock
	c.mu.RLock()
	if record, ok := c.shaders[sourceHash]; ok {
		c.mu.RUnlock()
		c.shaderHits.Add(1)
		return record, nil
	}
	c.mu.RUnlock()

	if entryPoint == "" {
		entryPoint = "main"
	}

	// Compile and create outside the lock.
	irModule, spirvWords, err := translateShader(source, label)
	if err != nil {
		return nil, err
	}

	id, err := c.device.CreateShaderModule(&ShaderModuleDescriptor{
		Label: label,
		SPIRV: spirvWords,
	})
	if err != nil {
		return nil, wrapf(ErrShaderModuleCreation, label, err)
	}

	record := &ShaderModuleRecord{
		ID:         id,
		SourceHash: sourceHash,
		EntryPoint: entryPoint,
		Label:      label,
		IR:         irModule,
		SPIRV:      spirvWords,
	}

	c.shaderMisses.Add(1)

	// Insert if absent. A concurrent creator may have won the race;
	// its record is the one every caller sees from now on, including
	// this one. The losing module is abandoned.
	c.mu.Lock()
	if winner, ok := c.shaders[sourceHash]; ok {
		c.mu.Unlock()
		return winner, nil
	}
	c.shaders[sourceHash] = record
	c.mu.Unlock()

	Logger().Debug("shader module created",
		"label", label,
		"sourceHash", sourceHash,
		"spirvWords", len(spirvWords))

	return record, nil
}

// GetOrCreateRenderPipeline returns a clone of the cached pipeline
// record for the spec, or creates the pipeline on a miss.
//
// On a miss the vertex and fragment modules are resolved through the
// shader module cache (reusing cached modules when the sources repeat),
// the vertex layout table resolves the vertex buffers, and the depth
// and blend policies fill in the attachment state. Creation runs
// outside the cache lock with double-checked insertion, same as shader
// modules.
func (c *Cache) GetOrCreateRenderPipeline(spec *PipelineSpec) (*PipelineRecord, error) {
	if spec == nil {
		return nil, wrapf(ErrPipelineCreation, "", errNilSpec)
	}

	key := spec.Key()

	// Fast path: read lock
	c.mu.RLock()
	if record, ok := c.pipelines[key]; ok {
		c.mu.RUnlock()
		c.pipelineHits.Add(1)
		return record.Clone(), nil
	}
	c.mu.RUnlock()

	vertexModule, err := c.GetOrCreateShaderModule(spec.VertexSource, key.VertexEntryPoint, spec.Label+" (vertex)")
	if err != nil {
		return nil, err
	}

	fragmentModule := vertexModule
	if spec.FragmentSource != spec.VertexSource {
		fragmentModule, err = c.GetOrCreateShaderModule(spec.FragmentSource, key.FragmentEntryPoint, spec.Label+" (fragment)")
		if err != nil {
			return nil, err
		}
	}

	desc := buildPipelineDescriptor(spec, &key, vertexModule.ID, fragmentModule.ID)

	id, err := c.device.CreateRenderPipeline(desc)
	if err != nil {
		return nil, wrapf(ErrPipelineCreation, spec.Label, err)
	}

	record := &PipelineRecord{
		Pipeline:         id,
		PipelineLayout:   spec.Layout,
		BindGroupLayouts: append([]BindGroupLayoutID(nil), spec.BindGroupLayouts...),
		BindingLayout:    append([]BindingLayoutEntry(nil), spec.BindingLayout...),
		DepthFormat:      spec.DepthFormat,
		Key:              key,
		Label:            spec.Label,
	}

	c.pipelineMisses.Add(1)

	c.mu.Lock()
	if winner, ok := c.pipelines[key]; ok {
		c.mu.Unlock()
		return winner.Clone(), nil
	}
	c.pipelines[key] = record
	c.mu.Unlock()

	Logger().Debug("render pipeline created",
		"label", spec.Label,
		"keyHash", HashPipelineKey(&key),
		"depthFormat", uint32(key.DepthFormat))

	return record.Clone(), nil
}

// Stats returns a snapshot of the cache counters. The snapshot is a
// copy; it never aliases cache internals.
func (c *Cache) Stats() CacheStats {
	c.mu.RLock()
	totalShaders := uint64(len(c.shaders))
	totalPipelines := uint64(len(c.pipelines))
	c.mu.RUnlock()

	return CacheStats{
		ShaderHits:     c.shaderHits.Load(),
		ShaderMisses:   c.shaderMisses.Load(),
		PipelineHits:   c.pipelineHits.Load(),
		PipelineMisses: c.pipelineMisses.Load(),
		TotalShaders:   totalShaders,
		TotalPipelines: totalPipelines,
	}
}

// HitRate returns the combined cache hit rate (0.0 to 1.0).
//
// Returns 0.0 if no requests have been made.
func (c *Cache) HitRate() float64 {
	hits := c.shaderHits.Load() + c.pipelineHits.Load()
	misses := c.shaderMisses.Load() + c.pipelineMisses.Load()
	total := hits + misses
	if total == 0 {
		return 0.0
	}
	return float64(hits) / float64(total)
}

// ShaderCount returns the number of cached shader modules.
func (c *Cache) ShaderCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.shaders)
}

// PipelineCount returns the number of cached render pipelines.
func (c *Cache) PipelineCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.pipelines)
}

// Clear removes all cached records and resets statistics.
//
// This does NOT destroy the underlying GPU resources; the device owns
// their lifetime. A previously cached key misses on its next request.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.shaders = make(map[uint64]*ShaderModuleRecord)
	c.pipelines = make(map[PipelineKey]*PipelineRecord)
	c.shaderHits.Store(0)
	c.shaderMisses.Store(0)
	c.pipelineHits.Store(0)
	c.pipelineMisses.Store(0)
}
