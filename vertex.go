package pipecache

import "github.com/gogpu/gputypes"

// Vertex layout table indices. Renderers address vertex formats by a
// small stable index instead of passing full layouts around.
const (
	// VertexLayoutPosition is position only (12 bytes).
	VertexLayoutPosition uint8 = 0

	// VertexLayoutPositionColor is position + color (28 bytes).
	VertexLayoutPositionColor uint8 = 1

	// VertexLayoutPositionTex is position + texcoord (20 bytes).
	VertexLayoutPositionTex uint8 = 2

	// VertexLayoutPositionTexColor is position + texcoord + color (36 bytes).
	VertexLayoutPositionTexColor uint8 = 3

	// VertexLayoutPositionTexColorNormal is position + texcoord + color + normal (48 bytes).
	VertexLayoutPositionTexColorNormal uint8 = 4

	// VertexLayoutPositionColorTex is position + color + texcoord (36 bytes).
	VertexLayoutPositionColorTex uint8 = 5

	// VertexLayoutPositionColorTexTexTexNormal is position + color + 3 texcoords + normal (64 bytes).
	VertexLayoutPositionColorTexTexTexNormal uint8 = 6

	// VertexLayoutPositionColorTexTexNormal is position + color + 2 texcoords + normal (56 bytes).
	VertexLayoutPositionColorTexTexNormal uint8 = 7

	// VertexLayoutPositionColorTexTex is position + color + 2 texcoords (44 bytes).
	VertexLayoutPositionColorTexTex uint8 = 8

	// VertexLayoutNone requests a pipeline with no vertex buffers
	// (fullscreen passes that synthesize geometry in the shader).
	VertexLayoutNone uint8 = 255
)

// vertexLayoutSpec is a compact per-index description expanded into
// VertexBufferLayout on demand. Attribute shader locations are assigned
// sequentially from 0.
type vertexLayoutSpec struct {
	stride  uint64
	formats []gputypes.VertexFormat
	offsets []uint64
}

var vertexLayoutTable = map[uint8]vertexLayoutSpec{
	VertexLayoutPosition: {
		stride:  12,
		formats: []gputypes.VertexFormat{gputypes.VertexFormatFloat32x3},
		offsets: []uint64{0},
	},
	VertexLayoutPositionColor: {
		stride:  28,
		formats: []gputypes.VertexFormat{gputypes.VertexFormatFloat32x3, gputypes.VertexFormatFloat32x4},
		offsets: []uint64{0, 12},
	},
	VertexLayoutPositionTex: {
		stride:  20,
		formats: []gputypes.VertexFormat{gputypes.VertexFormatFloat32x3, gputypes.VertexFormatFloat32x2},
		offsets: []uint64{0, 12},
	},
	VertexLayoutPositionTexColor: {
		stride: 36,
		formats: []gputypes.VertexFormat{
			gputypes.VertexFormatFloat32x3,
			gputypes.VertexFormatFloat32x2,
			gputypes.VertexFormatFloat32x4,
		},
		offsets: []uint64{0, 12, 20},
	},
	VertexLayoutPositionTexColorNormal: {
		stride: 48,
		formats: []gputypes.VertexFormat{
			gputypes.VertexFormatFloat32x3,
			gputypes.VertexFormatFloat32x2,
			gputypes.VertexFormatFloat32x4,
			gputypes.VertexFormatFloat32x3,
		},
		offsets: []uint64{0, 12, 20, 36},
	},
	VertexLayoutPositionColorTex: {
		stride: 36,
		formats: []gputypes.VertexFormat{
			gputypes.VertexFormatFloat32x3,
			gputypes.VertexFormatFloat32x4,
			gputypes.VertexFormatFloat32x2,
		},
		offsets: []uint64{0, 12, 28},
	},
	VertexLayoutPositionColorTexTexTexNormal: {
		stride: 64,
		formats: []gputypes.VertexFormat{
			gputypes.VertexFormatFloat32x3,
			gputypes.VertexFormatFloat32x4,
			gputypes.VertexFormatFloat32x2,
			gputypes.VertexFormatFloat32x2,
			gputypes.VertexFormatFloat32x2,
			gputypes.VertexFormatFloat32x3,
		},
		offsets: []uint64{0, 12, 28, 36, 44, 52},
	},
	VertexLayoutPositionColorTexTexNormal: {
		stride: 56,
		formats: []gputypes.VertexFormat{
			gputypes.VertexFormatFloat32x3,
			gputypes.VertexFormatFloat32x4,
			gputypes.VertexFormatFloat32x2,
			gputypes.VertexFormatFloat32x2,
			gputypes.VertexFormatFloat32x3,
		},
		offsets: []uint64{0, 12, 28, 36, 44},
	},
	VertexLayoutPositionColorTexTex: {
		stride: 44,
		formats: []gputypes.VertexFormat{
			gputypes.VertexFormatFloat32x3,
			gputypes.VertexFormatFloat32x4,
			gputypes.VertexFormatFloat32x2,
			gputypes.VertexFormatFloat32x2,
		},
		offsets: []uint64{0, 12, 28, 36},
	},
}

// VertexBuffersForLayout expands a vertex layout table index into the
// buffer layouts for a pipeline descriptor.
//
// VertexLayoutNone returns nil (no vertex buffers). An index outside
// the table falls back to VertexLayoutPositionTexColor and logs a
// warning, so a renderer passing a stale index still gets a drawable
// pipeline.
func VertexBuffersForLayout(index uint8) []VertexBufferLayout {
	if index == VertexLayoutNone {
		return nil
	}

	spec, ok := vertexLayoutTable[index]
	if !ok {
		Logger().Warn("unknown vertex layout index, using position+tex+color",
			"index", index)
		spec = vertexLayoutTable[VertexLayoutPositionTexColor]
	}

	attrs := make([]VertexAttribute, len(spec.formats))
	for i, format := range spec.formats {
		attrs[i] = VertexAttribute{
			Format:         format,
			Offset:         spec.offsets[i],
			ShaderLocation: uint32(i), //nolint:gosec // G115: attribute count < 8
		}
	}

	return []VertexBufferLayout{{
		ArrayStride: spec.stride,
		StepMode:    gputypes.VertexStepModeVertex,
		Attributes:  attrs,
	}}
}
