package pipecache

import (
	"sort"
	"strings"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga/ir"
)

// defaultGroupForName maps well-known shader variable names to their
// conventional group indices, used when a shader declares a resource
// without explicit binding metadata: group 0 holds textures and
// samplers, group 1 dynamic per-draw uniforms, group 2 projection
// uniforms. This is a fallback heuristic, not a guarantee.
var defaultGroupForName = map[string]uint32{
	"Sampler0":       0,
	"Sampler1":       0,
	"Sampler2":       0,
	"InSampler":      0,
	"DiffuseSampler": 0,
	"Texture":        0,

	"DynamicTransforms": 1,
	"Globals":           1,
	"ModelViewMat":      1,
	"Lighting":          1,
	"Fog":               1,
	"BlurConfig":        1,
	"SamplerInfo":       1,
	"ColorModulator":    1,

	"Projection": 2,
	"ProjMat":    2,
}

// defaultGroupFor returns the conventional group index for a resource
// name. Names outside the curated table fall back by substring:
// anything texture- or sampler-like lands in group 0, everything else
// in the dynamic uniform group.
func defaultGroupFor(name string) uint32 {
	if group, ok := defaultGroupForName[name]; ok {
		return group
	}
	if strings.Contains(name, "Sampler") || strings.Contains(name, "Texture") {
		return 0
	}
	return 1
}

// ReflectBindings walks a validated shader module's global variables
// and produces its binding requirement list, ordered by ascending
// (group, binding).
//
// Classification follows the variable's address space:
//   - uniform space: uniform buffer, minimum size from the struct span
//   - storage space: read-only storage buffer
//   - handle space: sampled texture or sampler by type
//
// Resources without explicit @group/@binding fall back to the
// defaultGroupForName table, with a substring default for names the
// table does not carry; within each group the fallback assigns binding
// indices in declaration order.
func ReflectBindings(module *ir.Module) []BindingLayoutEntry {
	if module == nil {
		return nil
	}

	var entries []BindingLayoutEntry
	nextBinding := make(map[uint32]uint32)

	for i := range module.GlobalVariables {
		gv := &module.GlobalVariables[i]

		var entry BindingLayoutEntry
		switch gv.Space {
		case ir.SpaceUniform:
			entry.Type = BindingTypeUniformBuffer
			entry.MinBindingSize = structSpan(module, gv.Type)
		case ir.SpaceStorage:
			entry.Type = BindingTypeReadOnlyStorageBuffer
			entry.MinBindingSize = structSpan(module, gv.Type)
		case ir.SpaceHandle:
			inner := typeInner(module, gv.Type)
			switch t := inner.(type) {
			case ir.ImageType:
				entry.Type = BindingTypeSampledTexture
				entry.Dimension = viewDimensionFor(t)
			case ir.SamplerType:
				entry.Type = BindingTypeSampler
			default:
				continue
			}
		default:
			continue
		}

		entry.Name = gv.Name

		if gv.Binding != nil {
			entry.Group = gv.Binding.Group
			entry.Binding = gv.Binding.Binding
		} else {
			group := defaultGroupFor(gv.Name)
			Logger().Debug("resource without binding metadata assigned by name",
				"name", gv.Name,
				"group", group)
			entry.Group = group
			entry.Binding = nextBinding[group]
			nextBinding[group]++
		}

		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Group != entries[j].Group {
			return entries[i].Group < entries[j].Group
		}
		return entries[i].Binding < entries[j].Binding
	})

	return entries
}

// typeInner resolves a type handle to its inner kind.
func typeInner(module *ir.Module, handle ir.TypeHandle) ir.TypeInner {
	if int(handle) >= len(module.Types) {
		return nil
	}
	return module.Types[handle].Inner
}

// structSpan returns the byte span of a struct type, or 0 when the
// type is not a struct (no declared minimum).
func structSpan(module *ir.Module, handle ir.TypeHandle) uint64 {
	if s, ok := typeInner(module, handle).(ir.StructType); ok {
		return uint64(s.Span)
	}
	return 0
}

// viewDimensionFor maps an image type to the view dimension a binding
// of that type requires.
func viewDimensionFor(img ir.ImageType) gputypes.TextureViewDimension {
	switch img.Dim {
	case ir.Dim1D:
		return gputypes.TextureViewDimension1D
	case ir.Dim2D:
		if img.Arrayed {
			return gputypes.TextureViewDimension2DArray
		}
		return gputypes.TextureViewDimension2D
	case ir.Dim3D:
		return gputypes.TextureViewDimension3D
	case ir.DimCube:
		if img.Arrayed {
			return gputypes.TextureViewDimensionCubeArray
		}
		return gputypes.TextureViewDimensionCube
	default:
		return gputypes.TextureViewDimension2D
	}
}
