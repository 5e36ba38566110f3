// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package native

// Enum is an OpenGL enumerant.
type Enum uint32

//nolint:revive,stylecheck // GL spelling is kept so call sites read like the API reference.
const (
	NONE  Enum = 0
	ZERO  Enum = 0
	ONE   Enum = 1
	FALSE Enum = 0
	TRUE  Enum = 1

	NO_ERROR                      Enum = 0
	INVALID_ENUM                  Enum = 0x0500
	INVALID_VALUE                 Enum = 0x0501
	INVALID_OPERATION             Enum = 0x0502
	OUT_OF_MEMORY                 Enum = 0x0505
	INVALID_FRAMEBUFFER_OPERATION Enum = 0x0506
	CONTEXT_LOST_WEBGL            Enum = 0x9242

	// Buffers.
	ARRAY_BUFFER              Enum = 0x8892
	ELEMENT_ARRAY_BUFFER      Enum = 0x8893
	UNIFORM_BUFFER            Enum = 0x8A11
	TRANSFORM_FEEDBACK_BUFFER Enum = 0x8C8E
	TRANSFORM_FEEDBACK        Enum = 0x8E22
	STREAM_DRAW               Enum = 0x88E0
	STATIC_DRAW               Enum = 0x88E4
	DYNAMIC_DRAW              Enum = 0x88E8

	// Data types.
	BYTE                           Enum = 0x1400
	UNSIGNED_BYTE                  Enum = 0x1401
	SHORT                          Enum = 0x1402
	UNSIGNED_SHORT                 Enum = 0x1403
	INT                            Enum = 0x1404
	UNSIGNED_INT                   Enum = 0x1405
	FLOAT                          Enum = 0x1406
	HALF_FLOAT                     Enum = 0x140B
	UNSIGNED_INT_24_8              Enum = 0x84FA
	FLOAT_32_UNSIGNED_INT_24_8_REV Enum = 0x8DAD

	// Primitives.
	POINTS         Enum = 0x0000
	LINES          Enum = 0x0001
	LINE_LOOP      Enum = 0x0002
	LINE_STRIP     Enum = 0x0003
	TRIANGLES      Enum = 0x0004
	TRIANGLE_STRIP Enum = 0x0005
	TRIANGLE_FAN   Enum = 0x0006

	// Texture targets and units.
	TEXTURE_2D                  Enum = 0x0DE1
	TEXTURE_3D                  Enum = 0x806F
	TEXTURE_2D_ARRAY            Enum = 0x8C1A
	TEXTURE_CUBE_MAP            Enum = 0x8513
	TEXTURE_CUBE_MAP_POSITIVE_X Enum = 0x8515
	TEXTURE0                    Enum = 0x84C0

	// Texture parameters.
	TEXTURE_MAG_FILTER             Enum = 0x2800
	TEXTURE_MIN_FILTER             Enum = 0x2801
	TEXTURE_WRAP_S                 Enum = 0x2802
	TEXTURE_WRAP_T                 Enum = 0x2803
	TEXTURE_WRAP_R                 Enum = 0x8072
	TEXTURE_BASE_LEVEL             Enum = 0x813C
	TEXTURE_MAX_LEVEL              Enum = 0x813D
	TEXTURE_COMPARE_MODE           Enum = 0x884C
	TEXTURE_COMPARE_FUNC           Enum = 0x884D
	COMPARE_REF_TO_TEXTURE         Enum = 0x884E
	TEXTURE_MAX_ANISOTROPY_EXT     Enum = 0x84FE
	MAX_TEXTURE_MAX_ANISOTROPY_EXT Enum = 0x84FF
	NEAREST                        Enum = 0x2600
	LINEAR                         Enum = 0x2601
	NEAREST_MIPMAP_NEAREST         Enum = 0x2700
	LINEAR_MIPMAP_NEAREST          Enum = 0x2701
	NEAREST_MIPMAP_LINEAR          Enum = 0x2702
	LINEAR_MIPMAP_LINEAR           Enum = 0x2703
	REPEAT                         Enum = 0x2901
	CLAMP_TO_EDGE                  Enum = 0x812F
	MIRRORED_REPEAT                Enum = 0x8370

	// Pixel store.
	UNPACK_ALIGNMENT               Enum = 0x0CF5
	PACK_ALIGNMENT                 Enum = 0x0D05
	UNPACK_FLIP_Y_WEBGL            Enum = 0x9240
	UNPACK_PREMULTIPLY_ALPHA_WEBGL Enum = 0x9241

	// Pixel formats.
	ALPHA           Enum = 0x1906
	RGB             Enum = 0x1907
	RGBA            Enum = 0x1908
	LUMINANCE       Enum = 0x1909
	LUMINANCE_ALPHA Enum = 0x190A
	RED             Enum = 0x1903
	RG              Enum = 0x8227
	DEPTH_COMPONENT Enum = 0x1902
	DEPTH_STENCIL   Enum = 0x84F9

	// Sized internal formats.
	R8                 Enum = 0x8229
	RG8                Enum = 0x822B
	RGB8               Enum = 0x8051
	RGBA8              Enum = 0x8058
	R16F               Enum = 0x822D
	R32F               Enum = 0x822E
	RG16F              Enum = 0x822F
	RG32F              Enum = 0x8230
	RGBA32F            Enum = 0x8814
	RGB32F             Enum = 0x8815
	RGBA16F            Enum = 0x881A
	RGB16F             Enum = 0x881B
	DEPTH_COMPONENT16  Enum = 0x81A5
	DEPTH_COMPONENT24  Enum = 0x81A6
	DEPTH_COMPONENT32F Enum = 0x8CAC
	DEPTH24_STENCIL8   Enum = 0x88F0
	DEPTH32F_STENCIL8  Enum = 0x8CAD
	STENCIL_INDEX8     Enum = 0x8D48

	// Framebuffers.
	FRAMEBUFFER              Enum = 0x8D40
	READ_FRAMEBUFFER         Enum = 0x8CA8
	DRAW_FRAMEBUFFER         Enum = 0x8CA9
	RENDERBUFFER             Enum = 0x8D41
	FRAMEBUFFER_BINDING      Enum = 0x8CA6
	FRAMEBUFFER_COMPLETE     Enum = 0x8CD5
	COLOR_ATTACHMENT0        Enum = 0x8CE0
	DEPTH_ATTACHMENT         Enum = 0x8D00
	STENCIL_ATTACHMENT       Enum = 0x8D20
	DEPTH_STENCIL_ATTACHMENT Enum = 0x821A
	BACK                     Enum = 0x0405
	FRONT                    Enum = 0x0404
	FRONT_AND_BACK           Enum = 0x0408
	COLOR_BUFFER_BIT         Enum = 0x4000
	DEPTH_BUFFER_BIT         Enum = 0x0100
	STENCIL_BUFFER_BIT       Enum = 0x0400

	// Shaders and programs.
	VERTEX_SHADER               Enum = 0x8B31
	FRAGMENT_SHADER             Enum = 0x8B30
	COMPILE_STATUS              Enum = 0x8B81
	LINK_STATUS                 Enum = 0x8B82
	VALIDATE_STATUS             Enum = 0x8B83
	COMPLETION_STATUS_KHR       Enum = 0x91B1
	INTERLEAVED_ATTRIBS         Enum = 0x8C8C
	SEPARATE_ATTRIBS            Enum = 0x8C8D
	SHADER_BINARY_FORMAT_SPIR_V Enum = 0x9551

	// Capabilities for Enable/Disable.
	DEPTH_TEST          Enum = 0x0B71
	CULL_FACE           Enum = 0x0B44
	BLEND               Enum = 0x0BE2
	STENCIL_TEST        Enum = 0x0B90
	SCISSOR_TEST        Enum = 0x0C11
	POLYGON_OFFSET_FILL Enum = 0x8037
	RASTERIZER_DISCARD  Enum = 0x8C89

	CW  Enum = 0x0900
	CCW Enum = 0x0901

	// Comparison functions.
	NEVER    Enum = 0x0200
	LESS     Enum = 0x0201
	EQUAL    Enum = 0x0202
	LEQUAL   Enum = 0x0203
	GREATER  Enum = 0x0204
	NOTEQUAL Enum = 0x0205
	GEQUAL   Enum = 0x0206
	ALWAYS   Enum = 0x0207

	// Stencil operations.
	KEEP      Enum = 0x1E00
	REPLACE   Enum = 0x1E01
	INCR      Enum = 0x1E02
	DECR      Enum = 0x1E03
	INVERT    Enum = 0x150A
	INCR_WRAP Enum = 0x8507
	DECR_WRAP Enum = 0x8508

	// Blending.
	SRC_COLOR                Enum = 0x0300
	ONE_MINUS_SRC_COLOR      Enum = 0x0301
	SRC_ALPHA                Enum = 0x0302
	ONE_MINUS_SRC_ALPHA      Enum = 0x0303
	DST_ALPHA                Enum = 0x0304
	ONE_MINUS_DST_ALPHA      Enum = 0x0305
	DST_COLOR                Enum = 0x0306
	ONE_MINUS_DST_COLOR      Enum = 0x0307
	SRC_ALPHA_SATURATE       Enum = 0x0308
	CONSTANT_COLOR           Enum = 0x8001
	ONE_MINUS_CONSTANT_COLOR Enum = 0x8002
	CONSTANT_ALPHA           Enum = 0x8003
	ONE_MINUS_CONSTANT_ALPHA Enum = 0x8004
	FUNC_ADD                 Enum = 0x8006
	MIN                      Enum = 0x8007
	MAX                      Enum = 0x8008
	FUNC_SUBTRACT            Enum = 0x800A
	FUNC_REVERSE_SUBTRACT    Enum = 0x800B

	// Queries.
	VENDOR                           Enum = 0x1F00
	RENDERER                         Enum = 0x1F01
	VERSION                          Enum = 0x1F02
	EXTENSIONS                       Enum = 0x1F03
	SHADING_LANGUAGE_VERSION         Enum = 0x8B8C
	MAX_TEXTURE_SIZE                 Enum = 0x0D33
	MAX_CUBE_MAP_TEXTURE_SIZE        Enum = 0x851C
	MAX_RENDERBUFFER_SIZE            Enum = 0x84E8
	MAX_3D_TEXTURE_SIZE              Enum = 0x8073
	MAX_ARRAY_TEXTURE_LAYERS         Enum = 0x88FF
	MAX_TEXTURE_IMAGE_UNITS          Enum = 0x8872
	MAX_VERTEX_TEXTURE_IMAGE_UNITS   Enum = 0x8B4C
	MAX_COMBINED_TEXTURE_IMAGE_UNITS Enum = 0x8B4D
	MAX_VERTEX_ATTRIBS               Enum = 0x8869
	MAX_VARYING_VECTORS              Enum = 0x8DFC
	MAX_VERTEX_UNIFORM_VECTORS       Enum = 0x8DFB
	MAX_FRAGMENT_UNIFORM_VECTORS     Enum = 0x8DFD
	MAX_SAMPLES                      Enum = 0x8D57
	MAX_DRAW_BUFFERS                 Enum = 0x8824
	MAX_COLOR_ATTACHMENTS            Enum = 0x8CDF
)

// Extension names probed by the capability record.
const (
	ExtAnisotropic         = "EXT_texture_filter_anisotropic"
	ExtParallelCompile     = "KHR_parallel_shader_compile"
	ExtColorBufferFloat    = "EXT_color_buffer_float"
	ExtColorBufferHalf     = "EXT_color_buffer_half_float"
	ExtTextureFloatLinear  = "OES_texture_float_linear"
	ExtTextureHalfLinear   = "OES_texture_half_float_linear"
	ExtTextureFloat        = "OES_texture_float"
	ExtTextureHalfFloat    = "OES_texture_half_float"
	ExtUintIndices         = "OES_element_index_uint"
	ExtVertexArrayObject   = "OES_vertex_array_object"
	ExtInstancedArrays     = "ANGLE_instanced_arrays"
	ExtDrawBuffers         = "WEBGL_draw_buffers"
	ExtDepthTexture        = "WEBGL_depth_texture"
	ExtStandardDerivatives = "OES_standard_derivatives"
	ExtShaderTextureLOD    = "EXT_shader_texture_lod"
	ExtBlendMinMax         = "EXT_blend_minmax"
	ExtMultiview           = "OVR_multiview2"
	ExtSPIRV               = "GL_ARB_gl_spirv"
)
