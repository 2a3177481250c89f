package models

import (
	"bytes"
	"fmt"
	"image"
	"math"
	"os"
	"path/filepath"

	"github.com/qmuntal/gltf"
	"github.com/taigrr/objview/pkg/math3d"
	"github.com/taigrr/objview/pkg/render"
)

// GLTFLoader loads GLTF/GLB files into Mesh format.
type GLTFLoader struct {
	Options Options
}

// NewGLTFLoader creates a new GLTF loader with default options.
func NewGLTFLoader() *GLTFLoader {
	return &GLTFLoader{Options: DefaultOptions()}
}

// LoadGLB loads a binary GLTF (.glb) file.
func LoadGLB(path string) (*Mesh, error) {
	return NewGLTFLoader().Load(path)
}

// Load loads a GLTF or GLB file and returns a Mesh.
func (l *GLTFLoader) Load(path string) (*Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}
	return l.FromDocument(doc, filepath.Base(path), filepath.Dir(path))
}

// FromDocument converts an already decoded document. External images are
// resolved relative to dir.
func (l *GLTFLoader) FromDocument(doc *gltf.Document, name, dir string) (*Mesh, error) {
	mesh := NewMesh(name)
	mesh.Materials = extractMaterials(doc, dir, mesh)

	for _, m := range doc.Meshes {
		if err := processMesh(doc, m, mesh); err != nil {
			return nil, fmt.Errorf("process mesh %q: %w", m.Name, err)
		}
	}

	if err := finish(mesh, l.Options); err != nil {
		return nil, err
	}
	return mesh, nil
}

// processMesh appends the triangle primitives of a GLTF mesh. Each
// primitive's attributes share one index, so V, VT and VN are equal.
func processMesh(doc *gltf.Document, m *gltf.Mesh, mesh *Mesh) error {
	for _, prim := range m.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles && prim.Mode != 0 {
			// Skip non-triangle primitives (lines, points, etc)
			continue
		}

		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}
		positions, err := readVec3Accessor(doc, posIdx)
		if err != nil {
			return fmt.Errorf("read positions: %w", err)
		}

		var normals []math3d.Vec3
		if normIdx, ok := prim.Attributes[gltf.NORMAL]; ok {
			normals, err = readVec3Accessor(doc, normIdx)
			if err != nil {
				return fmt.Errorf("read normals: %w", err)
			}
		}

		var uvs []math3d.Vec2
		if uvIdx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
			uvs, err = readVec2Accessor(doc, uvIdx)
			if err != nil {
				return fmt.Errorf("read uvs: %w", err)
			}
		}

		materialIdx := -1
		if prim.Material != nil {
			materialIdx = int(*prim.Material)
		}

		base := len(mesh.Positions)
		mesh.Positions = append(mesh.Positions, positions...)

		// Pad attribute arrays so that they line up with positions; a
		// primitive without normals or UVs marks its corners absent.
		hasNormals := len(normals) == len(positions)
		hasUVs := len(uvs) == len(positions)
		if hasNormals {
			for len(mesh.Normals) < base {
				mesh.Normals = append(mesh.Normals, DefaultNormal)
			}
			for _, n := range normals {
				mesh.Normals = append(mesh.Normals, n.Normalize())
			}
		}
		if hasUVs {
			for len(mesh.UVs) < base {
				mesh.UVs = append(mesh.UVs, DefaultUV)
			}
			for _, uv := range uvs {
				// GLTF uses top-left origin (V=0 at top), flip V for bottom-left origin
				mesh.UVs = append(mesh.UVs, math3d.V2(uv.X, 1.0-uv.Y))
			}
		}

		var indices []int
		if prim.Indices != nil {
			indices, err = readIndices(doc, int(*prim.Indices))
			if err != nil {
				return fmt.Errorf("read indices: %w", err)
			}
		} else {
			// No indices, assume sequential triangles
			indices = make([]int, len(positions))
			for i := range indices {
				indices[i] = i
			}
		}

		// GLTF front faces are counter-clockwise, which is what the
		// rasterizer keeps.
		for i := 0; i+2 < len(indices); i += 3 {
			f := NewFace(base+indices[i], base+indices[i+1], base+indices[i+2])
			if hasNormals {
				f.VN = f.V
			}
			if hasUVs {
				f.VT = f.V
			}
			f.Material = materialIdx
			mesh.Faces = append(mesh.Faces, f)
		}
	}

	return nil
}

// extractMaterials maps GLTF PBR materials onto Phong coefficients: the
// base color becomes the diffuse term and the base color texture the
// diffuse map.
func extractMaterials(doc *gltf.Document, dir string, mesh *Mesh) []render.Material {
	materials := make([]render.Material, len(doc.Materials))

	for i, mat := range doc.Materials {
		m := render.DefaultMaterial()
		m.Name = mat.Name
		m.Diffuse = math3d.V3(1, 1, 1)

		if pbr := mat.PBRMetallicRoughness; pbr != nil {
			if pbr.BaseColorFactor != nil {
				m.Diffuse = math3d.V3(
					float64(pbr.BaseColorFactor[0]),
					float64(pbr.BaseColorFactor[1]),
					float64(pbr.BaseColorFactor[2]),
				)
			}
			if pbr.RoughnessFactor != nil {
				// Smoother surfaces get a tighter highlight.
				m.Shininess = 2 + (1-float64(*pbr.RoughnessFactor))*126
			}

			if pbr.BaseColorTexture != nil {
				texIdx := int(pbr.BaseColorTexture.Index)
				if texIdx < len(doc.Textures) {
					tex := doc.Textures[texIdx]
					if tex.Source != nil && int(*tex.Source) < len(doc.Images) {
						img, err := loadGLTFImage(doc, doc.Images[*tex.Source], dir)
						if err != nil {
							mesh.Warnings = append(mesh.Warnings, fmt.Errorf("material %q: %w", mat.Name, err))
						} else if t := render.TextureFromImage(img); !t.Empty() {
							m.Texture = t
							m.HasTexture = true
						}
					}
				}
			}
		}

		materials[i] = m
	}

	return materials
}

// loadGLTFImage loads an image from GLTF (embedded or external).
func loadGLTFImage(doc *gltf.Document, img *gltf.Image, dir string) (image.Image, error) {
	var data []byte
	switch {
	case img.BufferView != nil:
		bv := doc.BufferViews[*img.BufferView]
		buf := doc.Buffers[bv.Buffer]
		start := bv.ByteOffset
		end := start + bv.ByteLength
		if buf.Data == nil || end > len(buf.Data) {
			return nil, fmt.Errorf("image buffer view out of range")
		}
		data = buf.Data[start:end]
	case img.URI != "":
		var err error
		data, err = os.ReadFile(filepath.Join(dir, img.URI))
		if err != nil {
			return nil, fmt.Errorf("read image: %w", err)
		}
	default:
		return nil, fmt.Errorf("image has no data")
	}

	decoded, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return decoded, nil
}

// readVec3Accessor reads Vec3 data from a GLTF accessor.
func readVec3Accessor(doc *gltf.Document, accessorIdx int) ([]math3d.Vec3, error) {
	accessor := doc.Accessors[accessorIdx]
	if accessor.Type != gltf.AccessorVec3 {
		return nil, fmt.Errorf("expected VEC3, got %v", accessor.Type)
	}

	data, err := readAccessorData(doc, accessor)
	if err != nil {
		return nil, err
	}

	floats, ok := data.([][3]float32)
	if !ok {
		return nil, fmt.Errorf("unexpected data type for VEC3")
	}

	result := make([]math3d.Vec3, len(floats))
	for i, f := range floats {
		result[i] = math3d.V3(float64(f[0]), float64(f[1]), float64(f[2]))
	}

	return result, nil
}

// readVec2Accessor reads Vec2 data from a GLTF accessor.
func readVec2Accessor(doc *gltf.Document, accessorIdx int) ([]math3d.Vec2, error) {
	accessor := doc.Accessors[accessorIdx]
	if accessor.Type != gltf.AccessorVec2 {
		return nil, fmt.Errorf("expected VEC2, got %v", accessor.Type)
	}

	data, err := readAccessorData(doc, accessor)
	if err != nil {
		return nil, err
	}

	floats, ok := data.([][2]float32)
	if !ok {
		return nil, fmt.Errorf("unexpected data type for VEC2")
	}

	result := make([]math3d.Vec2, len(floats))
	for i, f := range floats {
		result[i] = math3d.V2(float64(f[0]), float64(f[1]))
	}

	return result, nil
}

// readIndices reads index data from a GLTF accessor.
func readIndices(doc *gltf.Document, accessorIdx int) ([]int, error) {
	accessor := doc.Accessors[accessorIdx]

	data, err := readAccessorData(doc, accessor)
	if err != nil {
		return nil, err
	}

	switch v := data.(type) {
	case []uint8:
		return widen(v), nil
	case []uint16:
		return widen(v), nil
	case []uint32:
		return widen(v), nil
	default:
		return nil, fmt.Errorf("unexpected index type: %T", data)
	}
}

func widen[T uint8 | uint16 | uint32](v []T) []int {
	result := make([]int, len(v))
	for i, x := range v {
		result[i] = int(x)
	}
	return result
}

// readAccessorData reads raw data from a GLTF accessor.
func readAccessorData(doc *gltf.Document, accessor *gltf.Accessor) (any, error) {
	if accessor.BufferView == nil {
		return nil, fmt.Errorf("accessor has no buffer view")
	}

	bufferView := doc.BufferViews[*accessor.BufferView]
	bufData := doc.Buffers[bufferView.Buffer].Data
	if bufData == nil {
		return nil, fmt.Errorf("buffer has no data")
	}

	start := bufferView.ByteOffset + accessor.ByteOffset
	stride := bufferView.ByteStride
	count := accessor.Count

	var elemSize int
	switch accessor.Type {
	case gltf.AccessorVec3:
		elemSize = 12
	case gltf.AccessorVec2:
		elemSize = 8
	case gltf.AccessorScalar:
		switch accessor.ComponentType {
		case gltf.ComponentUbyte:
			elemSize = 1
		case gltf.ComponentUshort:
			elemSize = 2
		case gltf.ComponentUint:
			elemSize = 4
		}
	}
	if elemSize == 0 {
		return nil, fmt.Errorf("unsupported accessor type: %v / %v", accessor.Type, accessor.ComponentType)
	}
	if stride == 0 {
		stride = elemSize
	}
	if count > 0 && start+(count-1)*stride+elemSize > len(bufData) {
		return nil, fmt.Errorf("accessor exceeds buffer (%d bytes)", len(bufData))
	}

	switch accessor.Type {
	case gltf.AccessorVec3:
		result := make([][3]float32, count)
		for i := range count {
			offset := start + i*stride
			for j := range 3 {
				result[i][j] = readFloat32(bufData[offset+j*4:])
			}
		}
		return result, nil

	case gltf.AccessorVec2:
		result := make([][2]float32, count)
		for i := range count {
			offset := start + i*stride
			for j := range 2 {
				result[i][j] = readFloat32(bufData[offset+j*4:])
			}
		}
		return result, nil
	}

	switch accessor.ComponentType {
	case gltf.ComponentUbyte:
		result := make([]uint8, count)
		for i := range count {
			result[i] = bufData[start+i*stride]
		}
		return result, nil
	case gltf.ComponentUshort:
		result := make([]uint16, count)
		for i := range count {
			offset := start + i*stride
			result[i] = uint16(bufData[offset]) | uint16(bufData[offset+1])<<8
		}
		return result, nil
	default:
		result := make([]uint32, count)
		for i := range count {
			offset := start + i*stride
			result[i] = uint32(bufData[offset]) |
				uint32(bufData[offset+1])<<8 |
				uint32(bufData[offset+2])<<16 |
				uint32(bufData[offset+3])<<24
		}
		return result, nil
	}
}

// readFloat32 reads a little-endian float32.
func readFloat32(b []byte) float32 {
	return math.Float32frombits(uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24)
}
