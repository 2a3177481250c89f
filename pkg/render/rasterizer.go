package render

import (
	"math"

	"github.com/taigrr/objview/pkg/math3d"
)

// Triangle is one face ready for rasterization: clip-space positions from
// Context.Project plus the object-space attributes at each corner.
type Triangle struct {
	Clip     [3]math3d.Vec4
	Position [3]math3d.Vec3
	Normal   [3]math3d.Vec3
	UV       [3]math3d.Vec2
}

// Rasterizer fills triangles into a framebuffer with depth testing and
// per-pixel Phong shading.
type Rasterizer struct {
	ctx   *Context
	fb    *Framebuffer
	depth *DepthBuffer
}

// NewRasterizer creates a rasterizer drawing into fb and depth using ctx.
func NewRasterizer(ctx *Context, fb *Framebuffer, depth *DepthBuffer) *Rasterizer {
	return &Rasterizer{ctx: ctx, fb: fb, depth: depth}
}

// ClearDepth resets the depth buffer to match the framebuffer.
func (r *Rasterizer) ClearDepth() {
	r.depth.Reset(r.fb.Width, r.fb.Height)
}

// signedArea is twice the signed area of triangle abc; positive when abc
// winds counter-clockwise with Y pointing up.
func signedArea(a, b, c math3d.Vec2) float64 {
	return b.Sub(a).Cross(c.Sub(b))
}

// DrawTriangle rasterizes tri and returns the number of pixels written.
// Clockwise and degenerate triangles are discarded. When override is non-nil
// it replaces the texture or diffuse base color.
func (r *Rasterizer) DrawTriangle(tri *Triangle, mat *Material, override *Color) int {
	width, height := r.fb.Width, r.fb.Height
	if width <= 0 || height <= 0 || !r.depth.Matches(width, height) {
		return 0
	}
	hw, hh := float64(width)/2, float64(height)/2
	model := r.ctx.Model

	var (
		invW   [3]float64
		ndcZ   [3]float64
		screen [3]math3d.Vec2
		normal [3]math3d.Vec3
		world  [3]math3d.Vec3
	)
	for i := range 3 {
		invW[i] = 1 / tri.Clip[i].W
		ndc := tri.Clip[i].Vec3().Scale(invW[i])
		ndcZ[i] = ndc.Z
		screen[i] = math3d.V2(hw+ndc.X*hw, hh+ndc.Y*hh)

		normal[i] = model.MulVec3Dir(tri.Normal[i]).Normalize()
		world[i] = model.MulVec3(tri.Position[i])
	}

	area := signedArea(screen[0], screen[1], screen[2])
	if !(area > 0) {
		return 0
	}

	// Bounding box, clamped before conversion so off-screen or non-finite
	// corners cannot overflow the int range.
	minX := clampF(math.Floor(min3(screen[0].X, screen[1].X, screen[2].X)), 0, float64(width-1))
	maxX := clampF(math.Floor(max3(screen[0].X, screen[1].X, screen[2].X)), 0, float64(width-1))
	minY := clampF(math.Floor(min3(screen[0].Y, screen[1].Y, screen[2].Y)), 0, float64(height-1))
	maxY := clampF(math.Floor(max3(screen[0].Y, screen[1].Y, screen[2].Y)), 0, float64(height-1))

	written := 0
	for y := int(minY); y <= int(maxY); y++ {
		for x := int(minX); x <= int(maxX); x++ {
			p := math3d.V2(float64(x)+0.5, float64(y)+0.5)
			alpha := signedArea(p, screen[1], screen[2]) / area
			beta := signedArea(screen[0], p, screen[2]) / area
			gamma := signedArea(screen[0], screen[1], p) / area
			if alpha < 0 || beta < 0 || gamma < 0 {
				continue
			}

			// Perspective-correct weights: each barycentric divided by its
			// corner's w, normalized by their sum. Every attribute is
			// weighted by these exactly once.
			wa, wb, wc := alpha*invW[0], beta*invW[1], gamma*invW[2]
			sumW := wa + wb + wc
			z := (wa*ndcZ[0] + wb*ndcZ[1] + wc*ndcZ[2]) / sumW

			idx := y*width + x
			// Equal depth lets the later triangle through.
			if !(z > -1) || z > r.depth.Values[idx] {
				continue
			}
			r.depth.Values[idx] = z

			inv := 1 / sumW
			n := normal[0].Scale(wa).Add(normal[1].Scale(wb)).Add(normal[2].Scale(wc)).Normalize()
			pos := world[0].Scale(wa).Add(world[1].Scale(wb)).Add(world[2].Scale(wc)).Scale(inv)
			uv := tri.UV[0].Scale(wa).Add(tri.UV[1].Scale(wb)).Add(tri.UV[2].Scale(wc)).Scale(inv)

			light := r.shade(mat, n, pos)
			base := r.baseColor(mat, uv, override)
			r.fb.Pixels[idx] = shadeColor(base, light, r.ctx.Brightness)
			written++
		}
	}
	return written
}

// shade evaluates ambient + diffuse + specular for one fragment, clamped to
// at most 1 per channel.
func (r *Rasterizer) shade(mat *Material, n, world math3d.Vec3) math3d.Vec3 {
	l := r.ctx.LightDir
	ndl := n.Dot(l)

	diffuse := mat.Diffuse.Scale(math.Max(0, ndl))

	reflect := n.Scale(2 * ndl).Sub(l).Normalize()
	view := r.ctx.CameraPos.Sub(world).Normalize()
	specular := mat.Specular.Scale(math.Pow(math.Max(0, view.Dot(reflect)), mat.Shininess))

	return mat.Ambient.Add(diffuse).Add(specular).ClampMax(1)
}

func (r *Rasterizer) baseColor(mat *Material, uv math3d.Vec2, override *Color) Color {
	switch {
	case override != nil:
		return *override
	case mat.Textured():
		return mat.Texture.Sample(uv.X, uv.Y)
	default:
		return mat.DiffuseColor()
	}
}

func clampF(v, lo, hi float64) float64 {
	if !(v > lo) {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// min3 returns the minimum of three floats.
func min3(a, b, c float64) float64 {
	return math.Min(a, math.Min(b, c))
}

// max3 returns the maximum of three floats.
func max3(a, b, c float64) float64 {
	return math.Max(a, math.Max(b, c))
}
