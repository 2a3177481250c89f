package render

import (
	"io"
	"math/rand/v2"
)

// Options configures a Renderer.
type Options struct {
	// Projection supplies FOV, Near and Far. Aspect is recomputed from the
	// render target every frame.
	Projection Projection

	// Override, when set, replaces every face's base color.
	Override *Color

	// RandomColors gives each face a stable random base color. Ignored when
	// Override is set.
	RandomColors bool
	Seed         uint64
}

// FrameStats summarizes one rendered frame.
type FrameStats struct {
	Faces     int
	Drawn     int // faces that wrote at least one pixel
	Fragments int
}

// Renderer owns the per-frame buffers and draws a mesh into them.
type Renderer struct {
	opts   Options
	ctx    *Context
	fb     *Framebuffer
	depth  *DepthBuffer
	raster *Rasterizer
	enc    *Encoder

	faceColors []Color
}

// NewRenderer creates a renderer with empty buffers. Buffers are sized on
// the first Draw.
func NewRenderer(opts Options) *Renderer {
	if opts.Projection == (Projection{}) {
		opts.Projection = DefaultProjection()
	}
	ctx := NewContext()
	fb := NewFramebuffer(0, 0)
	depth := NewDepthBuffer(0, 0)
	return &Renderer{
		opts:   opts,
		ctx:    ctx,
		fb:     fb,
		depth:  depth,
		raster: NewRasterizer(ctx, fb, depth),
		enc:    NewEncoder(),
	}
}

// Context returns the render context for lighting and camera adjustments.
func (r *Renderer) Context() *Context { return r.ctx }

// Framebuffer returns the most recently drawn frame.
func (r *Renderer) Framebuffer() *Framebuffer { return r.fb }

// Encoder returns the renderer's terminal encoder.
func (r *Renderer) Encoder() *Encoder { return r.enc }

// Draw renders mesh at pose into a width x height framebuffer. A zero
// dimension draws nothing and leaves all buffers untouched.
func (r *Renderer) Draw(mesh MeshProvider, pose Pose, width, height int) (FrameStats, error) {
	var stats FrameStats
	if width <= 0 || height <= 0 {
		return stats, nil
	}
	if err := r.ctx.Update(pose, r.opts.Projection.WithAspect(width, height)); err != nil {
		return stats, err
	}
	if width != r.fb.Width || height != r.fb.Height {
		r.enc.Reset()
	}
	r.fb.Resize(width, height)
	r.raster.ClearDepth()

	stats.Faces = mesh.FaceCount()
	r.prepareFaceColors(stats.Faces)

	var tri Triangle
	for f := range stats.Faces {
		for i := range 3 {
			p := mesh.FaceVertex(f, i)
			tri.Position[i] = p
			tri.Clip[i] = r.ctx.Project(p)
			tri.Normal[i] = mesh.FaceNormal(f, i)
			tri.UV[i] = mesh.FaceUV(f, i)
		}
		mat := mesh.FaceMaterial(f)
		n := r.raster.DrawTriangle(&tri, &mat, r.faceOverride(f))
		if n > 0 {
			stats.Drawn++
			stats.Fragments += n
		}
	}
	return stats, nil
}

// Render draws mesh for a cols x rows terminal and writes the encoded frame
// to w. Each cell holds two pixel rows.
func (r *Renderer) Render(w io.Writer, mesh MeshProvider, pose Pose, cols, rows int) (FrameStats, error) {
	if cols <= 0 || rows <= 0 {
		return FrameStats{}, nil
	}
	stats, err := r.Draw(mesh, pose, cols, rows*2)
	if err != nil {
		return stats, err
	}
	return stats, r.enc.WriteFrame(w, r.fb)
}

func (r *Renderer) prepareFaceColors(n int) {
	if !r.opts.RandomColors || r.opts.Override != nil || len(r.faceColors) == n {
		return
	}
	rng := rand.New(rand.NewPCG(r.opts.Seed, r.opts.Seed^0x9e3779b97f4a7c15))
	r.faceColors = make([]Color, n)
	for i := range r.faceColors {
		r.faceColors[i] = RGB(uint8(rng.UintN(256)), uint8(rng.UintN(256)), uint8(rng.UintN(256)))
	}
}

func (r *Renderer) faceOverride(face int) *Color {
	if r.opts.Override != nil {
		return r.opts.Override
	}
	if r.opts.RandomColors && face < len(r.faceColors) {
		return &r.faceColors[face]
	}
	return nil
}
