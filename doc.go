// Package pipecache provides content-addressed caching for GPU shader
// modules and render pipelines, plus a bind-group resolver that matches
// shader-reflected resource requirements against available resources.
//
// # Architecture
//
// All GPU object creation goes through the [Device] interface. Backends
// adapt their native API to Device; backend/native adapts a hal.Device
// from gogpu/wgpu. Resources are referenced by opaque uint64 IDs
// ([ShaderModuleID], [RenderPipelineID], etc.) so the cache never holds
// backend handles directly.
//
//	               +-----------------+
//	               |      Cache      |
//	               | shaders + pipes |
//	               +--------+--------+
//	                        |
//	               +--------v--------+
//	               |     Device      |
//	               |  (interface)    |
//	               +--------+--------+
//	                        |
//	               +--------v--------+
//	               | backend/native  |
//	               |  (hal.Device)   |
//	               +-----------------+
//
// # Caching Model
//
// Shader modules are cached by an FNV-1a hash of their WGSL source.
// Render pipelines are cached by a [PipelineKey] that covers every
// GPU-visible field of the description, so two descriptions that differ
// in any state (including depth format) always yield distinct pipelines.
//
// There is no single-flight coordination: concurrent misses on the same
// key may each create a GPU object, and exactly one insertion wins.
// Every caller after the winning insertion observes the winner.
//
// # Bind-Group Resolution
//
// [Resolver] matches a group's layout entries against the caller's
// resources. Texture and sampler requirements consume the available
// texture list positionally; buffer requirements are looked up by exact
// binding index. Unsatisfiable entries are skipped with a warning
// rather than failing the whole group.
//
// # Logging
//
// The package is silent by default. Call [SetLogger] to receive
// warnings about skipped bindings, clamped uniform sizes, and fallback
// paths.
package pipecache
