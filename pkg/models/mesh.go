// Package models loads triangle meshes and their materials for the objview
// renderer. A Mesh keeps positions, texture coordinates and normals in
// separate arrays that each face indexes independently, as Wavefront OBJ does.
package models

import (
	"github.com/taigrr/objview/pkg/math3d"
	"github.com/taigrr/objview/pkg/render"
)

// Fallback attribute values for faces without a (valid) UV or normal index.
var (
	DefaultNormal = math3d.V3(0, 0, 1)
	DefaultUV     = math3d.V2(0, 0)
)

// Mesh is a triangle mesh with independently indexed vertex attributes.
type Mesh struct {
	Name      string
	Positions []math3d.Vec3
	UVs       []math3d.Vec2
	Normals   []math3d.Vec3
	Faces     []Face
	Materials []render.Material

	// Bounding box (calculated on load)
	BoundsMin math3d.Vec3
	BoundsMax math3d.Vec3

	// Warnings collects non-fatal load problems such as a texture that
	// could not be decoded.
	Warnings []error
}

// Face is a triangle. Each corner indexes Positions, UVs and Normals
// independently; -1 marks an absent UV or normal.
type Face struct {
	V        [3]int
	VT       [3]int
	VN       [3]int
	Material int // Index into Mesh.Materials (-1 for no material)
}

// NewFace returns a face with positions only.
func NewFace(a, b, c int) Face {
	return Face{
		V:        [3]int{a, b, c},
		VT:       [3]int{-1, -1, -1},
		VN:       [3]int{-1, -1, -1},
		Material: -1,
	}
}

// NewMesh creates an empty mesh.
func NewMesh(name string) *Mesh {
	return &Mesh{Name: name}
}

// FaceCount returns the number of triangles.
func (m *Mesh) FaceCount() int {
	return len(m.Faces)
}

// VertexCount returns the number of positions.
func (m *Mesh) VertexCount() int {
	return len(m.Positions)
}

// FaceVertex returns the position of corner nth of face. An out-of-range
// index yields the origin.
func (m *Mesh) FaceVertex(face, nth int) math3d.Vec3 {
	i := m.Faces[face].V[nth]
	if i < 0 || i >= len(m.Positions) {
		return math3d.Zero3()
	}
	return m.Positions[i]
}

// FaceNormal returns the normal of corner nth of face, or DefaultNormal.
func (m *Mesh) FaceNormal(face, nth int) math3d.Vec3 {
	i := m.Faces[face].VN[nth]
	if i < 0 || i >= len(m.Normals) {
		return DefaultNormal
	}
	return m.Normals[i]
}

// FaceUV returns the texture coordinate of corner nth of face, or DefaultUV.
func (m *Mesh) FaceUV(face, nth int) math3d.Vec2 {
	i := m.Faces[face].VT[nth]
	if i < 0 || i >= len(m.UVs) {
		return DefaultUV
	}
	return m.UVs[i]
}

// FaceMaterial returns a copy of the face's material, or the default
// material when none is assigned.
func (m *Mesh) FaceMaterial(face int) render.Material {
	i := m.Faces[face].Material
	if i < 0 || i >= len(m.Materials) {
		return render.DefaultMaterial()
	}
	return m.Materials[i]
}

// TexturedMaterials counts materials that carry a usable diffuse map.
func (m *Mesh) TexturedMaterials() int {
	n := 0
	for i := range m.Materials {
		if m.Materials[i].Textured() {
			n++
		}
	}
	return n
}

// CalculateBounds computes the axis-aligned bounding box.
func (m *Mesh) CalculateBounds() {
	if len(m.Positions) == 0 {
		m.BoundsMin = math3d.Zero3()
		m.BoundsMax = math3d.Zero3()
		return
	}

	m.BoundsMin = m.Positions[0]
	m.BoundsMax = m.Positions[0]

	for _, p := range m.Positions[1:] {
		m.BoundsMin = m.BoundsMin.Min(p)
		m.BoundsMax = m.BoundsMax.Max(p)
	}
}

// Center returns the center of the bounding box.
func (m *Mesh) Center() math3d.Vec3 {
	return m.BoundsMin.Add(m.BoundsMax).Scale(0.5)
}

// Size returns the dimensions of the bounding box.
func (m *Mesh) Size() math3d.Vec3 {
	return m.BoundsMax.Sub(m.BoundsMin)
}

// NormalizeVertices scales positions so that no coordinate exceeds 1 in
// magnitude. Meshes already inside the unit cube are left as they are.
func (m *Mesh) NormalizeVertices() {
	maxVal := 1.0
	for _, p := range m.Positions {
		maxVal = max(maxVal, p.Abs().MaxComponent())
	}
	if maxVal == 1 {
		return
	}
	inv := 1 / maxVal
	for i := range m.Positions {
		m.Positions[i] = m.Positions[i].Scale(inv)
	}
	m.CalculateBounds()
}

// faceNormal returns the unnormalized geometric normal of a face.
func (m *Mesh) faceNormal(f Face) math3d.Vec3 {
	v0 := m.Positions[f.V[0]]
	v1 := m.Positions[f.V[1]]
	v2 := m.Positions[f.V[2]]
	return v1.Sub(v0).Cross(v2.Sub(v0))
}

// CalculateNormals assigns each face its own flat normal, replacing any
// existing normals.
func (m *Mesh) CalculateNormals() {
	m.Normals = make([]math3d.Vec3, len(m.Faces))
	for i := range m.Faces {
		m.Normals[i] = m.faceNormal(m.Faces[i]).Normalize()
		m.Faces[i].VN = [3]int{i, i, i}
	}
}

// CalculateSmoothNormals computes one normal per position by averaging the
// normals of the faces that share it.
func (m *Mesh) CalculateSmoothNormals() {
	m.Normals = make([]math3d.Vec3, len(m.Positions))

	// Accumulate area-weighted face normals per position
	for _, f := range m.Faces {
		n := m.faceNormal(f)
		for _, v := range f.V {
			m.Normals[v] = m.Normals[v].Add(n)
		}
	}

	for i := range m.Normals {
		m.Normals[i] = m.Normals[i].Normalize()
	}
	for i := range m.Faces {
		m.Faces[i].VN = m.Faces[i].V
	}
}

// validate checks that every face references existing positions.
func (m *Mesh) validate() error {
	for i, f := range m.Faces {
		for _, v := range f.V {
			if v < 0 || v >= len(m.Positions) {
				return &IndexError{Face: i, Index: v, Count: len(m.Positions)}
			}
		}
	}
	return nil
}
