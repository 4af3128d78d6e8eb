package pipecache

import (
	"github.com/gogpu/naga"
	"github.com/gogpu/naga/ir"
	"github.com/gogpu/naga/spirv"
)

// translateShader compiles WGSL source to SPIR-V words, keeping the
// validated IR module so bindings can be reflected later without
// recompiling.
//
// The stages map onto the error taxonomy: parse/lower and SPIR-V
// generation failures are translation errors, validator diagnostics
// are validation errors.
func translateShader(source, label string) (*ir.Module, []uint32, error) {
	ast, err := naga.Parse(source)
	if err != nil {
		return nil, nil, wrapf(ErrShaderTranslation, label, err)
	}

	module, err := naga.LowerWithSource(ast, source)
	if err != nil {
		return nil, nil, wrapf(ErrShaderTranslation, label, err)
	}

	validationErrors, err := naga.Validate(module)
	if err != nil {
		return nil, nil, wrapf(ErrShaderValidation, label, err)
	}
	if len(validationErrors) > 0 {
		return nil, nil, wrapf(ErrShaderValidation, label, &validationErrors[0])
	}

	spirvBytes, err := naga.GenerateSPIRV(module, spirv.Options{
		Version: spirv.Version1_3,
	})
	if err != nil {
		return nil, nil, wrapf(ErrShaderTranslation, label, err)
	}

	return module, spirvBytesToWords(spirvBytes), nil
}

// spirvBytesToWords converts SPIR-V bytes to little-endian 32-bit words.
func spirvBytesToWords(spirvBytes []byte) []uint32 {
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return words
}
