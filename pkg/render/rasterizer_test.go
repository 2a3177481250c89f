package render

import (
	"testing"

	"github.com/taigrr/objview/pkg/math3d"
)

// createTestRasterizer returns a rasterizer whose context has identity
// transforms, so Triangle.Clip can be given directly in NDC with w=1.
func createTestRasterizer(width, height int) (*Rasterizer, *Framebuffer, *DepthBuffer) {
	ctx := NewContext()
	ctx.LightDir = math3d.V3(0, 0, 1)
	fb := NewFramebuffer(width, height)
	depth := NewDepthBuffer(width, height)
	return NewRasterizer(ctx, fb, depth), fb, depth
}

// ndcTriangle builds a flat triangle facing +Z from NDC corners.
func ndcTriangle(z float64, pts ...math3d.Vec2) *Triangle {
	tri := &Triangle{}
	for i := range 3 {
		tri.Clip[i] = math3d.V4(pts[i].X, pts[i].Y, z, 1)
		tri.Position[i] = math3d.V3(pts[i].X, pts[i].Y, z)
		tri.Normal[i] = math3d.V3(0, 0, 1)
	}
	return tri
}

// unlit returns a material whose shading term is exactly 1, so pixels equal
// their base color.
func unlit() *Material {
	return &Material{Ambient: math3d.V3(1, 1, 1)}
}

var (
	ccw = []math3d.Vec2{math3d.V2(-0.5, -0.5), math3d.V2(0.5, -0.5), math3d.V2(0, 0.5)}
	cw  = []math3d.Vec2{math3d.V2(-0.5, -0.5), math3d.V2(0, 0.5), math3d.V2(0.5, -0.5)}
)

func TestSignedArea(t *testing.T) {
	a, b, c := math3d.V2(0, 0), math3d.V2(4, 0), math3d.V2(0, 4)
	if got := signedArea(a, b, c); got != 16 {
		t.Errorf("signedArea(ccw) = %v, want 16", got)
	}
	if got := signedArea(a, c, b); got != -16 {
		t.Errorf("signedArea(cw) = %v, want -16", got)
	}
	if got := signedArea(a, b, math3d.V2(8, 0)); got != 0 {
		t.Errorf("signedArea(collinear) = %v, want 0", got)
	}
}

func TestDrawTriangleCulling(t *testing.T) {
	tests := []struct {
		name string
		tri  *Triangle
		want bool
	}{
		{"counter-clockwise", ndcTriangle(0, ccw...), true},
		{"clockwise", ndcTriangle(0, cw...), false},
		{"collinear", ndcTriangle(0, math3d.V2(-1, 0), math3d.V2(0, 0), math3d.V2(1, 0)), false},
		{"coincident", ndcTriangle(0, math3d.V2(0.2, 0.2), math3d.V2(0.2, 0.2), math3d.V2(0.2, 0.2)), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r, fb, depth := createTestRasterizer(16, 16)
			n := r.DrawTriangle(tc.tri, unlit(), &ColorWhite)
			if (n > 0) != tc.want {
				t.Fatalf("DrawTriangle wrote %d pixels, want drawn=%v", n, tc.want)
			}
			if tc.want {
				return
			}
			for i, p := range fb.Pixels {
				if p != (Color{}) {
					t.Fatalf("pixel %d written by culled triangle: %v", i, p)
				}
			}
			for i, d := range depth.Values {
				if d != FarDepth {
					t.Fatalf("depth %d written by culled triangle: %v", i, d)
				}
			}
		})
	}
}

func TestDrawTriangleQuadHasNoSeam(t *testing.T) {
	r, fb, _ := createTestRasterizer(8, 8)
	fb.Clear(ColorBlack)
	mat := &Material{Diffuse: math3d.V3(1, 1, 1), Shininess: 1}

	a, b, c, d := math3d.V2(-1, -1), math3d.V2(1, -1), math3d.V2(1, 1), math3d.V2(-1, 1)
	r.DrawTriangle(ndcTriangle(0, a, b, c), mat, nil)
	r.DrawTriangle(ndcTriangle(0, a, c, d), mat, nil)

	for y := range fb.Height {
		for x := range fb.Width {
			if got := fb.GetPixel(x, y); got != ColorWhite {
				t.Errorf("pixel (%d,%d) = %v, want white", x, y, got)
			}
		}
	}
}

func TestDrawTriangleDepthOrdering(t *testing.T) {
	near := ndcTriangle(-0.5, ccw...)
	far := ndcTriangle(0.5, ccw...)
	red, blue := ColorRed, ColorBlue

	t.Run("near first", func(t *testing.T) {
		r, fb, _ := createTestRasterizer(16, 16)
		r.DrawTriangle(near, unlit(), &red)
		r.DrawTriangle(far, unlit(), &blue)
		if got := fb.GetPixel(8, 6); got != red {
			t.Errorf("center = %v, want red", got)
		}
	})
	t.Run("far first", func(t *testing.T) {
		r, fb, _ := createTestRasterizer(16, 16)
		r.DrawTriangle(far, unlit(), &blue)
		r.DrawTriangle(near, unlit(), &red)
		if got := fb.GetPixel(8, 6); got != red {
			t.Errorf("center = %v, want red", got)
		}
	})
	t.Run("equal depth later wins", func(t *testing.T) {
		r, fb, _ := createTestRasterizer(16, 16)
		r.DrawTriangle(near, unlit(), &red)
		r.DrawTriangle(ndcTriangle(-0.5, ccw...), unlit(), &blue)
		if got := fb.GetPixel(8, 6); got != blue {
			t.Errorf("center = %v, want blue", got)
		}
	})
	t.Run("behind near plane", func(t *testing.T) {
		r, _, _ := createTestRasterizer(16, 16)
		if n := r.DrawTriangle(ndcTriangle(-1, ccw...), unlit(), &red); n != 0 {
			t.Errorf("triangle at z=-1 wrote %d pixels", n)
		}
	})
}

func TestDrawTriangleWritesDepth(t *testing.T) {
	r, _, depth := createTestRasterizer(16, 16)
	r.DrawTriangle(ndcTriangle(0.25, ccw...), unlit(), &ColorWhite)
	if got := depth.Values[6*16+8]; got != 0.25 {
		t.Errorf("depth at center = %v, want 0.25", got)
	}
	if got := depth.Values[15*16+0]; got != FarDepth {
		t.Errorf("depth outside triangle = %v, want %v", got, FarDepth)
	}
}

func TestDrawTriangleSinglePixelTexture(t *testing.T) {
	tex := NewTexture(1, 1)
	texel := RGB(10, 20, 30)
	tex.SetPixel(0, 0, texel)
	mat := unlit()
	mat.Texture = tex
	mat.HasTexture = true

	tri := ndcTriangle(0, ccw...)
	tri.UV = [3]math3d.Vec2{math3d.V2(0, 0), math3d.V2(1, 1), math3d.V2(-3, 7)}

	r, fb, _ := createTestRasterizer(16, 16)
	r.DrawTriangle(tri, mat, nil)
	for y := range fb.Height {
		for x := range fb.Width {
			if p := fb.GetPixel(x, y); p != (Color{}) && p != texel {
				t.Fatalf("pixel (%d,%d) = %v, want texel %v", x, y, p, texel)
			}
		}
	}
	if got := fb.GetPixel(8, 6); got != texel {
		t.Errorf("center = %v, want %v", got, texel)
	}
}

func TestDrawTriangleTextureFlag(t *testing.T) {
	tex := NewTexture(1, 1)
	tex.SetPixel(0, 0, ColorGreen)

	tests := []struct {
		name string
		mat  *Material
	}{
		{"flag off", &Material{Ambient: math3d.V3(1, 1, 1), Diffuse: math3d.V3(1, 0, 0), Texture: tex}},
		{"nil texture", &Material{Ambient: math3d.V3(1, 1, 1), Diffuse: math3d.V3(1, 0, 0), HasTexture: true}},
		{"empty texture", &Material{Ambient: math3d.V3(1, 1, 1), Diffuse: math3d.V3(1, 0, 0), HasTexture: true, Texture: NewTexture(0, 4)}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r, fb, _ := createTestRasterizer(16, 16)
			r.DrawTriangle(ndcTriangle(0, ccw...), tc.mat, nil)
			if got := fb.GetPixel(8, 6); got != ColorRed {
				t.Errorf("center = %v, want diffuse red", got)
			}
		})
	}
}

// deepCornerTriangle covers the top-left half of a 16x16 target with corner b
// four times deeper than a and c. At pixel (7,0) the screen-space weights are
// (0.5, 0.46875, 0.03125); perspective-correct weights are (0.771, 0.181, 0.048).
func deepCornerTriangle() *Triangle {
	return &Triangle{
		Clip: [3]math3d.Vec4{
			math3d.V4(-1, -1, 0, 1),
			math3d.V4(4, -4, 0, 4),
			math3d.V4(-1, 1, 0, 1),
		},
		Normal: [3]math3d.Vec3{math3d.V3(0, 0, 1), math3d.V3(0, 0, 1), math3d.V3(0, 0, 1)},
	}
}

func TestDrawTrianglePerspectiveCorrectUV(t *testing.T) {
	tex := NewTexture(256, 1)
	for x := range 256 {
		tex.SetPixel(x, 0, RGB(uint8(x), 0, 0))
	}
	mat := unlit()
	mat.Texture = tex
	mat.HasTexture = true

	tri := deepCornerTriangle()
	tri.UV = [3]math3d.Vec2{math3d.V2(0, 0), math3d.V2(1, 0), math3d.V2(0, 0)}

	r, fb, _ := createTestRasterizer(16, 16)
	r.DrawTriangle(tri, mat, nil)

	// At pixel (7,0) screen-space weights give u = 0.46875 (texel 120);
	// dividing by w first gives u ~= 0.1807 (texel 46).
	got := fb.GetPixel(7, 0).R
	if got == 120 {
		t.Fatalf("texel %d matches affine interpolation", got)
	}
	if got != 46 {
		t.Errorf("texel = %d, want 46", got)
	}
}

func TestDrawTrianglePerspectiveCorrectNormal(t *testing.T) {
	tri := deepCornerTriangle()
	tri.Normal[1] = math3d.V3(1, 0, 0)
	mat := &Material{Diffuse: math3d.V3(1, 1, 1)}

	r, fb, _ := createTestRasterizer(16, 16)
	r.ctx.LightDir = math3d.V3(1, 0, 0)
	r.DrawTriangle(tri, mat, &ColorWhite)

	// N.L is the x component of the blended normal: 0.2154 perspective
	// correct, 0.6616 with screen-space weights.
	got := fb.GetPixel(7, 0).R
	if got == 168 {
		t.Fatalf("shade %d matches affine normal interpolation", got)
	}
	if got != 54 {
		t.Errorf("shade = %d, want 54", got)
	}
}

func TestDrawTrianglePerspectiveCorrectWorldPosition(t *testing.T) {
	tri := deepCornerTriangle()
	tri.Position = [3]math3d.Vec3{math3d.V3(0, 0, -1), math3d.V3(3, 0, -1), math3d.V3(0, 0, -1)}
	mat := &Material{Specular: math3d.V3(1, 1, 1), Shininess: 1}

	r, fb, _ := createTestRasterizer(16, 16)
	r.DrawTriangle(tri, mat, &ColorWhite)

	// The reflection is +Z, so specular is the z component of the view
	// vector from the fragment to the camera at the origin. The fragment
	// sits at x = 0.542 perspective correct, x = 1.406 affine.
	got := fb.GetPixel(7, 0).R
	if got == 147 {
		t.Fatalf("specular %d matches affine position interpolation", got)
	}
	if got != 224 {
		t.Errorf("specular = %d, want 224", got)
	}
}

func TestDrawTriangleConstantAttributes(t *testing.T) {
	tex := NewTexture(256, 1)
	for x := range 256 {
		tex.SetPixel(x, 0, RGB(uint8(x), 0, 0))
	}
	mat := unlit()
	mat.Texture = tex
	mat.HasTexture = true

	tri := deepCornerTriangle()
	for i := range 3 {
		tri.UV[i] = math3d.V2(0.51, 0)
	}

	r, fb, depth := createTestRasterizer(16, 16)
	if n := r.DrawTriangle(tri, mat, nil); n == 0 {
		t.Fatal("no pixels written")
	}
	for i, d := range depth.Values {
		if d == FarDepth {
			continue
		}
		if got := fb.Pixels[i].R; got != 130 {
			t.Fatalf("pixel %d texel = %d, want 130", i, got)
		}
	}
}

func TestDrawTriangleShading(t *testing.T) {
	mat := &Material{
		Ambient:   math3d.V3(0.25, 0.25, 0.25),
		Diffuse:   math3d.V3(0.5, 0.5, 0.5),
		Shininess: 8,
	}
	white := ColorWhite

	t.Run("lit from front", func(t *testing.T) {
		r, fb, _ := createTestRasterizer(16, 16)
		r.DrawTriangle(ndcTriangle(0, ccw...), mat, &white)
		// 255 * (0.25 + 0.5) = 191.25
		if got := fb.GetPixel(8, 6); got != RGB(191, 191, 191) {
			t.Errorf("center = %v, want 191 gray", got)
		}
	})
	t.Run("lit from behind", func(t *testing.T) {
		r, fb, _ := createTestRasterizer(16, 16)
		r.ctx.LightDir = math3d.V3(0, 0, -1)
		r.DrawTriangle(ndcTriangle(0, ccw...), mat, &white)
		// ambient only: 255 * 0.25 = 63.75
		if got := fb.GetPixel(8, 6); got != RGB(63, 63, 63) {
			t.Errorf("center = %v, want 63 gray", got)
		}
	})
	t.Run("brightness", func(t *testing.T) {
		r, fb, _ := createTestRasterizer(16, 16)
		r.ctx.Brightness = 4
		r.DrawTriangle(ndcTriangle(0, ccw...), mat, &white)
		if got := fb.GetPixel(8, 6); got != ColorWhite {
			t.Errorf("center = %v, want saturated white", got)
		}
	})
}

func TestDrawTriangleStaleDepth(t *testing.T) {
	ctx := NewContext()
	fb := NewFramebuffer(16, 16)
	r := NewRasterizer(ctx, fb, NewDepthBuffer(8, 8))
	if n := r.DrawTriangle(ndcTriangle(0, ccw...), unlit(), &ColorWhite); n != 0 {
		t.Errorf("DrawTriangle with mismatched depth buffer wrote %d pixels", n)
	}
	r.ClearDepth()
	if n := r.DrawTriangle(ndcTriangle(0, ccw...), unlit(), &ColorWhite); n == 0 {
		t.Error("DrawTriangle after ClearDepth wrote nothing")
	}
}

func TestDrawTriangleOffscreen(t *testing.T) {
	r, _, _ := createTestRasterizer(16, 16)
	tri := ndcTriangle(0, math3d.V2(5, 5), math3d.V2(9, 5), math3d.V2(7, 9))
	if n := r.DrawTriangle(tri, unlit(), &ColorWhite); n != 0 {
		t.Errorf("off-screen triangle wrote %d pixels", n)
	}
}

func TestMin3Max3(t *testing.T) {
	if min3(3, 1, 2) != 1 {
		t.Error("min3 failed")
	}
	if max3(1, 3, 2) != 3 {
		t.Error("max3 failed")
	}
}

func BenchmarkDrawTriangle(b *testing.B) {
	r, _, _ := createTestRasterizer(200, 100)
	tri := ndcTriangle(0, math3d.V2(-0.9, -0.9), math3d.V2(0.9, -0.9), math3d.V2(0, 0.9))
	mat := DefaultMaterial()
	for b.Loop() {
		r.ClearDepth()
		r.DrawTriangle(tri, &mat, nil)
	}
}
