package models

import (
	"errors"
	"math"
	"testing"

	"github.com/taigrr/objview/pkg/math3d"
	"github.com/taigrr/objview/pkg/render"
)

func quadMesh() *Mesh {
	mesh := NewMesh("quad")
	mesh.Positions = []math3d.Vec3{
		math3d.V3(-1, -1, 0),
		math3d.V3(1, -1, 0),
		math3d.V3(1, 1, 0),
		math3d.V3(-1, 1, 0),
	}
	mesh.Faces = []Face{NewFace(0, 1, 2), NewFace(0, 2, 3)}
	return mesh
}

func TestMeshFallbacks(t *testing.T) {
	mesh := quadMesh()
	mesh.UVs = []math3d.Vec2{math3d.V2(0.5, 0.25)}
	mesh.Normals = []math3d.Vec3{math3d.V3(1, 0, 0)}
	mesh.Faces[0].VT = [3]int{0, 7, -1}
	mesh.Faces[0].VN = [3]int{0, -1, 3}

	if got := mesh.FaceUV(0, 0); got != math3d.V2(0.5, 0.25) {
		t.Errorf("FaceUV(0,0) = %v", got)
	}
	if got := mesh.FaceUV(0, 1); got != DefaultUV {
		t.Errorf("out-of-range UV = %v, want default", got)
	}
	if got := mesh.FaceUV(0, 2); got != DefaultUV {
		t.Errorf("absent UV = %v, want default", got)
	}
	if got := mesh.FaceNormal(0, 0); got != math3d.V3(1, 0, 0) {
		t.Errorf("FaceNormal(0,0) = %v", got)
	}
	if got := mesh.FaceNormal(0, 1); got != math3d.V3(0, 0, 1) {
		t.Errorf("absent normal = %v, want (0,0,1)", got)
	}
	if got := mesh.FaceNormal(0, 2); got != math3d.V3(0, 0, 1) {
		t.Errorf("out-of-range normal = %v, want (0,0,1)", got)
	}
}

func TestMeshFaceMaterial(t *testing.T) {
	mesh := quadMesh()
	red := render.DefaultMaterial()
	red.Name = "red"
	red.Diffuse = math3d.V3(1, 0, 0)
	mesh.Materials = []render.Material{red}
	mesh.Faces[0].Material = 0
	mesh.Faces[1].Material = 5

	if got := mesh.FaceMaterial(0); got.Name != "red" {
		t.Errorf("face 0 material = %q, want red", got.Name)
	}
	if got := mesh.FaceMaterial(1); got.Name != render.DefaultMaterial().Name {
		t.Errorf("face 1 material = %q, want default", got.Name)
	}

	// Returned materials are copies.
	m := mesh.FaceMaterial(0)
	m.Diffuse = math3d.V3(0, 1, 0)
	if mesh.Materials[0].Diffuse != math3d.V3(1, 0, 0) {
		t.Error("mutating a returned material changed the mesh")
	}
	d := mesh.FaceMaterial(1)
	d.Shininess = 999
	if render.DefaultMaterial().Shininess == 999 {
		t.Error("mutating the fallback material changed the default")
	}
}

func TestMeshBounds(t *testing.T) {
	mesh := quadMesh()
	mesh.CalculateBounds()
	if mesh.BoundsMin != math3d.V3(-1, -1, 0) || mesh.BoundsMax != math3d.V3(1, 1, 0) {
		t.Errorf("bounds = %v..%v", mesh.BoundsMin, mesh.BoundsMax)
	}
	if c := mesh.Center(); c != math3d.Zero3() {
		t.Errorf("center = %v", c)
	}
	if s := mesh.Size(); s != math3d.V3(2, 2, 0) {
		t.Errorf("size = %v", s)
	}
}

func TestNormalizeVertices(t *testing.T) {
	tests := []struct {
		name string
		in   []math3d.Vec3
		want []math3d.Vec3
	}{
		{
			name: "shrinks by largest magnitude",
			in:   []math3d.Vec3{math3d.V3(2, 0, 0), math3d.V3(0, -4, 1)},
			want: []math3d.Vec3{math3d.V3(0.5, 0, 0), math3d.V3(0, -1, 0.25)},
		},
		{
			name: "z axis counts",
			in:   []math3d.Vec3{math3d.V3(0.5, 0.5, -8)},
			want: []math3d.Vec3{math3d.V3(0.0625, 0.0625, -1)},
		},
		{
			name: "never enlarges",
			in:   []math3d.Vec3{math3d.V3(0.1, 0.2, 0.3)},
			want: []math3d.Vec3{math3d.V3(0.1, 0.2, 0.3)},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mesh := NewMesh("n")
			mesh.Positions = append([]math3d.Vec3(nil), tc.in...)
			mesh.NormalizeVertices()
			for i, p := range mesh.Positions {
				if p != tc.want[i] {
					t.Errorf("position %d = %v, want %v", i, p, tc.want[i])
				}
			}
		})
	}
}

func TestCalculateNormals(t *testing.T) {
	mesh := quadMesh()
	mesh.CalculateNormals()
	for f := range mesh.Faces {
		for i := range 3 {
			if n := mesh.FaceNormal(f, i); n != math3d.V3(0, 0, 1) {
				t.Errorf("flat normal face %d corner %d = %v", f, i, n)
			}
		}
	}

	mesh = quadMesh()
	mesh.CalculateSmoothNormals()
	if len(mesh.Normals) != len(mesh.Positions) {
		t.Fatalf("smooth normals = %d, want %d", len(mesh.Normals), len(mesh.Positions))
	}
	for i, n := range mesh.Normals {
		if math.Abs(n.Z-1) > 1e-12 {
			t.Errorf("smooth normal %d = %v", i, n)
		}
	}
}

func TestMeshValidate(t *testing.T) {
	mesh := quadMesh()
	if err := mesh.validate(); err != nil {
		t.Fatalf("valid mesh rejected: %v", err)
	}
	mesh.Faces = append(mesh.Faces, NewFace(0, 1, 4))
	err := mesh.validate()
	var ie *IndexError
	if !errors.As(err, &ie) {
		t.Fatalf("validate = %v, want *IndexError", err)
	}
	if ie.Face != 2 || ie.Index != 4 {
		t.Errorf("IndexError = %+v", ie)
	}
	if got := mesh.FaceVertex(2, 2); got != math3d.Zero3() {
		t.Errorf("out-of-range FaceVertex = %v, want origin", got)
	}
}

func TestMeshImplementsProvider(t *testing.T) {
	var _ render.MeshProvider = (*Mesh)(nil)

	r := render.NewRenderer(render.Options{})
	stats, err := r.Draw(quadMesh(), render.DefaultPose(), 40, 40)
	if err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if stats.Drawn != 2 {
		t.Errorf("drawn faces = %d, want 2", stats.Drawn)
	}
}
