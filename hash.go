package pipecache

import (
	"encoding/binary"
	"hash"
	"hash/fnv"
)

// HashShaderSource computes the FNV-1a 64-bit hash of WGSL source code.
// This hash is the cache key for shader modules.
func HashShaderSource(source string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(source))
	return h.Sum64()
}

// HashPipelineKey computes an FNV-1a hash of a pipeline key, used for
// debug logging. The cache itself keys on the full struct, so hash
// collisions cannot alias pipelines.
func HashPipelineKey(k *PipelineKey) uint64 {
	h := fnv.New64a()

	hashWriteUint64(h, k.VertexHash)
	hashWriteUint64(h, k.FragmentHash)
	hashWriteString(h, k.VertexEntryPoint)
	hashWriteString(h, k.FragmentEntryPoint)

	hashWriteUint32(h, uint32(k.VertexLayout))
	hashWriteUint32(h, uint32(k.Topology))
	hashWriteUint32(h, uint32(k.FrontFace))
	hashWriteUint32(h, uint32(k.CullMode))

	hashWriteUint32(h, uint32(k.ColorFormat))
	hashWriteUint32(h, uint32(k.DepthFormat))

	hashWriteBool(h, k.DepthTestEnabled)
	hashWriteBool(h, k.DepthWriteEnabled)
	hashWriteUint32(h, uint32(k.DepthCompare))
	hashWriteUint32(h, uint32(k.DepthBiasConstant))
	hashWriteUint32(h, k.DepthBiasSlopeBits)

	hashWriteBool(h, k.BlendEnabled)
	hashWriteUint32(h, k.SampleCount)

	return h.Sum64()
}

// hashWriteUint32 writes a uint32 to the hash.
func hashWriteUint32(h hash.Hash64, v uint32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	_, _ = h.Write(buf[:])
}

// hashWriteUint64 writes a uint64 to the hash.
func hashWriteUint64(h hash.Hash64, v uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	_, _ = h.Write(buf[:])
}

// hashWriteString writes a string to the hash.
//
//nolint:gosec // G115: entry point names are always short
func hashWriteString(h hash.Hash64, s string) {
	hashWriteUint32(h, uint32(len(s)))
	_, _ = h.Write([]byte(s))
}

// hashWriteBool writes a bool to the hash.
func hashWriteBool(h hash.Hash64, v bool) {
	if v {
		_, _ = h.Write([]byte{1})
	} else {
		_, _ = h.Write([]byte{0})
	}
}
