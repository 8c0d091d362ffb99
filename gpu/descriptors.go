package gpu

// BufferMapping describes how a buffer may be mapped by the CPU.
type BufferMapping uint8

const (
	// BufferMappingStatic means the buffer is never mapped after upload.
	BufferMappingStatic BufferMapping = iota
	BufferMappingRead
	BufferMappingWrite
	BufferMappingReadWrite
)

// BufferCaching describes the coherency of a mapped buffer's memory.
type BufferCaching uint8

const (
	BufferCachingStatic BufferCaching = iota
	BufferCachingCoherent
	BufferCachingNonCoherent
)

// BufferDescriptor is the immutable specification of a buffer, per spec
// §4.7.
type BufferDescriptor struct {
	Label   string
	Size    uint64
	Mapping BufferMapping
	Caching BufferCaching
	// InitialData, if non-nil, seeds the buffer's GPU memory at creation.
	InitialData []byte
}

// TextureTypeFlag is one bit of a texture's type-flag set.
type TextureTypeFlag uint8

const (
	TextureFlagNormal TextureTypeFlag = 1 << iota
	TextureFlagMipmap
	TextureFlag3D
	TextureFlagArray
	TextureFlagCube
)

// TextureTypeFlags is a set of TextureTypeFlag bits.
type TextureTypeFlags uint8

// Has reports whether flag is set.
func (f TextureTypeFlags) Has(flag TextureTypeFlag) bool { return f&TextureTypeFlags(flag) != 0 }

// legalTextureTypeFlags enumerates the ten legal type-flag subsets.
// 3D and Array are mutually exclusive; 3D and Cube are mutually exclusive;
// Cube requires Normal (cube maps are not compatible with the bare-2D
// "normal" absence, i.e. a texture must declare at least one of
// {Normal,3D} as its base shape). Mipmap composes with either base shape;
// Array composes only with Normal.
var legalTextureTypeFlags = []TextureTypeFlags{
	TextureTypeFlags(TextureFlagNormal),
	TextureTypeFlags(TextureFlagNormal | TextureFlagMipmap),
	TextureTypeFlags(TextureFlagNormal | TextureFlagArray),
	TextureTypeFlags(TextureFlagNormal | TextureFlagMipmap | TextureFlagArray),
	TextureTypeFlags(TextureFlagNormal | TextureFlagCube),
	TextureTypeFlags(TextureFlagNormal | TextureFlagMipmap | TextureFlagCube),
	TextureTypeFlags(TextureFlagNormal | TextureFlagCube | TextureFlagArray),
	TextureTypeFlags(TextureFlagNormal | TextureFlagMipmap | TextureFlagCube | TextureFlagArray),
	TextureTypeFlags(TextureFlag3D),
	TextureTypeFlags(TextureFlag3D | TextureFlagMipmap),
}

// IsLegalTextureTypeFlags reports whether flags is one of the ten legal
// subsets of {normal, mipmap, 3d, array, cube}.
func IsLegalTextureTypeFlags(flags TextureTypeFlags) bool {
	for _, legal := range legalTextureTypeFlags {
		if legal == flags {
			return true
		}
	}
	return false
}

// ColorFormat enumerates texture and framebuffer color formats.
type ColorFormat uint8

const (
	ColorFormatR8 ColorFormat = iota
	ColorFormatR5G6B5
	ColorFormatR8G8B8
	ColorFormatR8G8B8SRGB
	ColorFormatR8G8B8A8
	ColorFormatR8G8B8A8SRGB
	ColorFormatDXT1
	ColorFormatDXT3
	ColorFormatDXT5
	ColorFormatRGTC1Signed
	ColorFormatRGTC1Unsigned
	ColorFormatRGTC2Signed
	ColorFormatRGTC2Unsigned
	ColorFormatBPTCUnorm
	ColorFormatBPTCSRGB
	ColorFormatBPTCSFloat
	ColorFormatBPTCUFloat
)

// FramebufferColorFormat restricts ColorFormat to the two formats a
// framebuffer's color attachment may use.
type FramebufferColorFormat uint8

const (
	FramebufferColorR8G8B8A8 FramebufferColorFormat = iota
	FramebufferColorR8G8B8A8SRGB
)

// DepthStencilFormat enumerates a framebuffer's depth/stencil attachment
// format.
type DepthStencilFormat uint8

const (
	DepthStencilNone DepthStencilFormat = iota
	DepthStencilD16
	DepthStencilD24
	DepthStencilD32
	DepthStencilD24S8
)

// MSAASamples enumerates legal multisample counts.
type MSAASamples uint8

const (
	MSAANone MSAASamples = 0
	MSAA2    MSAASamples = 2
	MSAA4    MSAASamples = 4
	MSAA6    MSAASamples = 6
	MSAA8    MSAASamples = 8
	MSAA16   MSAASamples = 16
)

// IsLegalMSAA reports whether n is one of the enumerated sample counts.
func IsLegalMSAA(n MSAASamples) bool {
	switch n {
	case MSAANone, MSAA2, MSAA4, MSAA6, MSAA8, MSAA16:
		return true
	default:
		return false
	}
}

// FilterMode describes texture sampling filters.
type FilterMode uint8

const (
	FilterNearest FilterMode = iota
	FilterLinear
)

// WrapMode describes per-axis texture coordinate wrapping.
type WrapMode uint8

const (
	WrapRepeat WrapMode = iota
	WrapClampToEdge
	WrapMirroredRepeat
)

// TextureDescriptor is the immutable specification of a texture.
type TextureDescriptor struct {
	Label      string
	Width      uint32
	Height     uint32
	Depth      uint32 // used when TextureFlag3D or TextureFlagArray is set
	MipLevels  uint32
	TypeFlags  TextureTypeFlags
	Format     ColorFormat
	Filter     FilterMode
	MipFilter  FilterMode
	WrapU      WrapMode
	WrapV      WrapMode
	WrapW      WrapMode
	// ImageData, when non-nil, supplies one []byte per (mip level, face)
	// in upload order: mip-major, then CubeFaceUploadOrder within a mip
	// for cube textures, else a single entry per mip.
	ImageData [][]byte
}

// FramebufferKind distinguishes a display framebuffer (tracks the window)
// from an offscreen one (explicit dimensions).
type FramebufferKind uint8

const (
	FramebufferDisplay FramebufferKind = iota
	FramebufferOffscreen
)

// FramebufferDescriptor is the immutable specification of a framebuffer.
type FramebufferDescriptor struct {
	Label        string
	Kind         FramebufferKind
	Width        uint32 // offscreen only; display tracks the window
	Height       uint32
	ColorFormat  FramebufferColorFormat
	DepthStencil DepthStencilFormat
	MSAA         MSAASamples
}

// PrimitiveType enumerates the drawable topology of a primitive stream.
type PrimitiveType uint8

const (
	PrimitiveTriangles PrimitiveType = iota
	PrimitiveTriangleStrip
	PrimitiveTriangleFan
)

// AttributeDescriptor names one vertex attribute's backing buffer binding.
type AttributeDescriptor struct {
	Name         string
	BufferHash   uint64 // identifies the backing buffer for dedup purposes
	Buffer       BufferHandle
	Stride       uint32
	Offset       uint32
	SemanticTag  VertexSemanticTag
	GenericIndex int // used when SemanticTag == VertexSemanticGeneric
}

// VertexSemanticTag classifies a shader attribute as a fixed semantic slot
// or a raw generic index.
type VertexSemanticTag uint8

const (
	VertexSemanticGeneric VertexSemanticTag = iota
	VertexSemanticPosition
	VertexSemanticTexcoord
	VertexSemanticNormal
)

// PrimitiveStreamDescriptor is the immutable specification of a drawable
// mesh binding.
type PrimitiveStreamDescriptor struct {
	Label         string
	Attributes    []AttributeDescriptor
	IndexBuffer   BufferHandle
	SizeofIndex   uint8 // 2 or 4
	PrimitiveType PrimitiveType
	PrimCount     uint32
}

// ShaderStage enumerates the pipeline stages a shader program may define.
type ShaderStage uint8

const (
	ShaderStageVertex ShaderStage = iota
	ShaderStageFragment
	ShaderStageGeometry
)

// ShaderStageSource is one compiled stage's source plus its declared
// uniform buffer block names.
type ShaderStageSource struct {
	Stage        ShaderStage
	Source       string
	UniformBlocks []string
}

// ShaderProgramDescriptor is the immutable specification of a shader
// program.
type ShaderProgramDescriptor struct {
	Label      string
	Stages     []ShaderStageSource
	Attributes []AttributeDescriptor
	// VertexAttributeFieldMap resolves a semantic tag to the attribute
	// index the host application's vertex layout uses for it.
	VertexAttributeFieldMap map[VertexSemanticTag]int
}

// UniformBufferField describes one field of a declared uniform buffer
// block, filled in by CreateShaderProgram after linking.
type UniformBufferField struct {
	Name       string
	Offset     uint32
	Referenced bool
}

// UniformBlockInfo records a linked uniform buffer block's layout.
type UniformBlockInfo struct {
	Name    string
	Binding int
	Size    uint32
	Fields  []UniformBufferField
}

// ShaderProgramInfo is what CreateShaderProgram reports back after linking
// and reflection: uniform block layout recorded for downstream pipeline
// setup.
type ShaderProgramInfo struct {
	UniformBlocks []UniformBlockInfo
}
