package render

import "github.com/taigrr/objview/pkg/math3d"

// Material holds Phong coefficients for a group of faces. Coefficients are
// per channel and nominally in [0,1].
type Material struct {
	Name       string
	Ambient    math3d.Vec3 // Ka
	Diffuse    math3d.Vec3 // Kd
	Specular   math3d.Vec3 // Ks
	Shininess  float64     // Ns
	Texture    *Texture    // diffuse map, nil when absent
	HasTexture bool
}

// DefaultMaterial is used for faces whose material is missing or unresolved.
func DefaultMaterial() Material {
	return Material{
		Name:      "default",
		Ambient:   math3d.V3(0.2, 0.2, 0.2),
		Diffuse:   math3d.V3(0.8, 0.8, 0.8),
		Specular:  math3d.V3(0.2, 0.2, 0.2),
		Shininess: 16,
	}
}

// Textured reports whether sampling the diffuse map is permitted.
func (m *Material) Textured() bool {
	return m.HasTexture && !m.Texture.Empty()
}

// DiffuseColor returns Kd scaled to 8-bit channels.
func (m *Material) DiffuseColor() Color {
	return RGB(unitToByte(m.Diffuse.X), unitToByte(m.Diffuse.Y), unitToByte(m.Diffuse.Z))
}

// MeshProvider is the read-only face interface the renderer draws from.
// nth selects the corner of a triangular face and is always 0, 1 or 2.
// Implementations substitute fallbacks for missing attributes: normal
// (0,0,1), UV (0,0) and DefaultMaterial.
type MeshProvider interface {
	FaceCount() int
	FaceVertex(face, nth int) math3d.Vec3
	FaceNormal(face, nth int) math3d.Vec3
	FaceUV(face, nth int) math3d.Vec2
	FaceMaterial(face int) Material
}
