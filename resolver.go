package pipecache

import "github.com/gogpu/gputypes"

// MaxUniformBindingSize is the portable cross-backend ceiling for a
// uniform buffer binding, in bytes. Uniform bindings larger than this
// are clamped during resolution; in explicit layout mode they are
// reclassified as read-only storage instead.
const MaxUniformBindingSize = 65536

// BindingEntryKind tags a resolver input entry.
type BindingEntryKind uint8

const (
	// BindingEntryTexture is a texture view, optionally with a sampler.
	BindingEntryTexture BindingEntryKind = iota + 1

	// BindingEntryBuffer is a uniform or storage buffer range.
	BindingEntryBuffer
)

// BindingEntry is one resource the caller has available for binding.
// Entries are transient: one set per resolve call.
//
// For buffers, Binding is the declared binding index the entry serves
// (indexed policy). For textures, Binding is ignored by Resolve
// (positional policy) but used as the slot claim in BuildFromEntries.
type BindingEntry struct {
	// Kind selects which fields below are meaningful.
	Kind BindingEntryKind

	// Binding is the declared binding index.
	Binding uint32

	// View is the texture view to bind.
	View TextureViewID

	// Sampler is the sampler paired with the view. 0 means none.
	Sampler SamplerID

	// Dimension is the view's dimension, used for mismatch detection.
	Dimension gputypes.TextureViewDimension

	// Texture is the underlying texture, needed to re-create the view
	// when the required dimension differs.
	Texture TextureID

	// LayerCount is the texture's array layer count. 0 means unknown;
	// re-created array views then inherit all remaining layers.
	LayerCount uint32

	// Buffer is the buffer to bind.
	Buffer BufferID

	// Offset is the byte offset into the buffer.
	Offset uint64

	// Size is the byte size of the bound range.
	Size uint64
}

// Resolver matches binding requirements against available resources
// and creates bind groups on the device.
//
// The resolver holds no locks across its matching loop; it only reads
// the requirement and resource slices it is handed.
type Resolver struct {
	device  Device
	layouts *LayoutCache
}

// NewResolver creates a resolver backed by the given device. Layouts
// synthesized by BuildFromEntries are deduplicated through an internal
// LayoutCache.
func NewResolver(device Device) (*Resolver, error) {
	if device == nil {
		return nil, ErrNilDevice
	}
	layouts, err := NewLayoutCache(device)
	if err != nil {
		return nil, err
	}
	return &Resolver{device: device, layouts: layouts}, nil
}

// Layouts exposes the resolver's layout cache for diagnostics.
func (r *Resolver) Layouts() *LayoutCache { return r.layouts }

// Resolve matches the requirement list against the available resources
// and creates a bind group against the given layout handle.
//
// Two independent policies apply, deliberately asymmetric:
//
//   - Texture and sampler requirements consume the available texture
//     entries positionally, each through its own cursor. The sampler
//     cursor walks the sub-sequence of texture entries that carry a
//     sampler. Declared binding indices of texture entries are ignored.
//   - Buffer requirements look up the available buffer entry with the
//     exact binding index.
//
// Unsatisfiable requirements (exhausted cursor, missing binding index,
// undersized buffer, zero-size range) are logged and skipped; the bind
// group is still created from the entries that matched. Only a device
// failure aborts the call.
func (r *Resolver) Resolve(layout []BindingLayoutEntry, available []BindingEntry, layoutHandle BindGroupLayoutID, label string) (BindGroupID, error) {
	resolved := r.resolveEntries(layout, available, label)

	id, err := r.device.CreateBindGroup(&BindGroupDescriptor{
		Label:   label,
		Layout:  layoutHandle,
		Entries: resolved,
	})
	if err != nil {
		return InvalidID, wrapf(ErrBindGroupCreation, label, err)
	}
	return id, nil
}

// resolveEntries runs the matching loop and returns the bind group
// entries for the requirements that could be satisfied.
//
// For uniform buffers the portable-limit clamp is applied before the
// minimum-size check: a buffer whose shader-declared minimum exceeds
// MaxUniformBindingSize is skipped rather than bound short of its
// minimum.
func (r *Resolver) resolveEntries(layout []BindingLayoutEntry, available []BindingEntry, label string) []BindGroupEntry {
	var textures []BindingEntry
	var samplers []BindingEntry
	buffers := make(map[uint32]BindingEntry)

	for _, entry := range available {
		switch entry.Kind {
		case BindingEntryTexture:
			textures = append(textures, entry)
			if entry.Sampler != InvalidID {
				samplers = append(samplers, entry)
			}
		case BindingEntryBuffer:
			buffers[entry.Binding] = entry
		}
	}

	var (
		resolved   []BindGroupEntry
		textureIdx int
		samplerIdx int
	)

	for _, req := range layout {
		switch req.Type {
		case BindingTypeSampledTexture:
			if textureIdx >= len(textures) {
				Logger().Warn("no texture available for binding, slot left unbound",
					"label", label,
					"binding", req.Binding,
					"name", req.Name)
				continue
			}
			entry := textures[textureIdx]
			textureIdx++

			resolved = append(resolved, BindGroupEntry{
				Binding:     req.Binding,
				TextureView: r.resolveView(&req, &entry, label),
			})

		case BindingTypeSampler:
			if samplerIdx >= len(samplers) {
				Logger().Warn("no sampler available for binding, slot left unbound",
					"label", label,
					"binding", req.Binding,
					"name", req.Name)
				continue
			}
			entry := samplers[samplerIdx]
			samplerIdx++

			resolved = append(resolved, BindGroupEntry{
				Binding: req.Binding,
				Sampler: entry.Sampler,
			})

		case BindingTypeUniformBuffer, BindingTypeStorageBuffer, BindingTypeReadOnlyStorageBuffer:
			entry, ok := buffers[req.Binding]
			if !ok {
				Logger().Warn("no buffer available for binding, slot left unbound",
					"label", label,
					"binding", req.Binding,
					"name", req.Name)
				continue
			}

			size := entry.Size
			if req.Type == BindingTypeUniformBuffer && size > MaxUniformBindingSize {
				Logger().Warn("uniform binding clamped to portable limit",
					"label", label,
					"binding", req.Binding,
					"size", size,
					"clamped", uint64(MaxUniformBindingSize))
				size = MaxUniformBindingSize
			}

			if req.MinBindingSize > 0 && size < req.MinBindingSize {
				Logger().Warn("buffer smaller than shader minimum, slot skipped",
					"label", label,
					"binding", req.Binding,
					"size", size,
					"minBindingSize", req.MinBindingSize)
				continue
			}

			if size == 0 {
				Logger().Warn("zero-size buffer range, slot skipped",
					"label", label,
					"binding", req.Binding)
				continue
			}

			resolved = append(resolved, BindGroupEntry{
				Binding: req.Binding,
				Buffer:  entry.Buffer,
				Offset:  entry.Offset,
				Size:    size,
			})
		}
	}

	return resolved
}

// resolveView returns the view to bind for a texture requirement.
//
// When the requirement declares a dimension that differs from the
// supplied view's, a new view with the required dimension is created
// over the same underlying texture (no data copy). If that creation
// fails, or the entry does not carry its underlying texture, the
// original view is used and the mismatch is logged.
func (r *Resolver) resolveView(req *BindingLayoutEntry, entry *BindingEntry, label string) TextureViewID {
	if req.Dimension == 0 || entry.Dimension == 0 || req.Dimension == entry.Dimension {
		return entry.View
	}

	if entry.Texture == InvalidID {
		Logger().Warn("view dimension mismatch but no source texture, using original view",
			"label", label,
			"binding", req.Binding,
			"want", uint32(req.Dimension),
			"have", uint32(entry.Dimension))
		return entry.View
	}

	view, err := r.device.CreateTextureView(&TextureViewDescriptor{
		Label:           req.Name,
		Texture:         entry.Texture,
		Dimension:       req.Dimension,
		Aspect:          gputypes.TextureAspectAll,
		ArrayLayerCount: layerCountFor(req.Dimension, entry.LayerCount),
	})
	if err != nil {
		Logger().Warn("view re-creation failed, using original view",
			"label", label,
			"binding", req.Binding,
			"want", uint32(req.Dimension),
			"error", err)
		return entry.View
	}

	Logger().Debug("re-created view with required dimension",
		"label", label,
		"binding", req.Binding,
		"dimension", uint32(req.Dimension))
	return view
}

// layerCountFor returns the array layer count for a re-created view of
// the given dimension. 0 means inherit all remaining layers.
func layerCountFor(dim gputypes.TextureViewDimension, available uint32) uint32 {
	switch dim {
	case gputypes.TextureViewDimensionCube:
		return 6
	case gputypes.TextureViewDimension2D:
		return 1
	case gputypes.TextureViewDimension2DArray, gputypes.TextureViewDimensionCubeArray:
		return available
	default:
		return 0
	}
}

// BuildFromEntries creates a bind group layout and a bind group
// directly from the caller's declared entries, without requirement
// matching. Used when no shader reflection exists for the draw.
//
// Layout synthesis rules:
//   - A buffer entry becomes a uniform binding, unless its size exceeds
//     MaxUniformBindingSize, in which case it is reclassified as a
//     read-only storage binding (the layout is malleable here, so
//     reclassifying beats clamping). Zero-size buffer entries are
//     dropped.
//   - A texture entry claims its binding index for the view, and the
//     following index for its sampler when one is present.
//
// Synthesized layouts are deduplicated through the resolver's layout
// cache, so repeated draws with structurally identical entry sets share
// one layout object.
func (r *Resolver) BuildFromEntries(entries []BindingEntry, label string) (BindGroupLayoutID, BindGroupID, error) {
	var layoutEntries []BindingLayoutEntry
	var groupEntries []BindGroupEntry

	for _, entry := range entries {
		switch entry.Kind {
		case BindingEntryBuffer:
			if entry.Size == 0 {
				Logger().Warn("zero-size buffer entry dropped",
					"label", label,
					"binding", entry.Binding)
				continue
			}

			bindingType := BindingTypeUniformBuffer
			if entry.Size > MaxUniformBindingSize {
				Logger().Warn("oversized uniform reclassified as read-only storage",
					"label", label,
					"binding", entry.Binding,
					"size", entry.Size)
				bindingType = BindingTypeReadOnlyStorageBuffer
			}

			layoutEntries = append(layoutEntries, BindingLayoutEntry{
				Binding: entry.Binding,
				Type:    bindingType,
			})
			groupEntries = append(groupEntries, BindGroupEntry{
				Binding: entry.Binding,
				Buffer:  entry.Buffer,
				Offset:  entry.Offset,
				Size:    entry.Size,
			})

		case BindingEntryTexture:
			layoutEntries = append(layoutEntries, BindingLayoutEntry{
				Binding:   entry.Binding,
				Type:      BindingTypeSampledTexture,
				Dimension: entry.Dimension,
			})
			groupEntries = append(groupEntries, BindGroupEntry{
				Binding:     entry.Binding,
				TextureView: entry.View,
			})

			if entry.Sampler != InvalidID {
				layoutEntries = append(layoutEntries, BindingLayoutEntry{
					Binding: entry.Binding + 1,
					Type:    BindingTypeSampler,
				})
				groupEntries = append(groupEntries, BindGroupEntry{
					Binding: entry.Binding + 1,
					Sampler: entry.Sampler,
				})
			}
		}
	}

	layoutID, err := r.layouts.GetOrCreate(layoutEntries, label)
	if err != nil {
		return InvalidID, InvalidID, err
	}

	groupID, err := r.device.CreateBindGroup(&BindGroupDescriptor{
		Label:   label,
		Layout:  layoutID,
		Entries: groupEntries,
	})
	if err != nil {
		return InvalidID, InvalidID, wrapf(ErrBindGroupCreation, label, err)
	}

	return layoutID, groupID, nil
}
