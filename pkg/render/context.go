package render

import (
	"math"

	"github.com/taigrr/objview/pkg/math3d"
)

// minClipW is the smallest clip-space w magnitude the projector will emit.
const minClipW = 1e-8

// DefaultLightDir is the normalized world-space direction toward the light.
var DefaultLightDir = math3d.V3(0, 1, 0.75).Normalize()

// Context carries the transform state, lighting and global brightness that
// a frame is rendered with. The matrices are only replaced together, by
// Update or LookAt, so a frame never observes a mix of old and new state.
type Context struct {
	Model      math3d.Mat4
	View       math3d.Mat4
	Projection math3d.Mat4
	MVP        math3d.Mat4

	LightDir   math3d.Vec3 // normalized, points from the surface to the light
	CameraPos  math3d.Vec3 // world space
	Brightness float64
}

// NewContext returns a context with identity transforms, the default light,
// a camera at the origin and brightness 1.
func NewContext() *Context {
	return &Context{
		Model:      math3d.Identity(),
		View:       math3d.Identity(),
		Projection: math3d.Identity(),
		MVP:        math3d.Identity(),
		LightDir:   DefaultLightDir,
		Brightness: 1,
	}
}

// Update recomputes Model, Projection and MVP from pose and proj. On error
// the previous state is left untouched.
func (c *Context) Update(pose Pose, proj Projection) error {
	p, err := proj.Matrix()
	if err != nil {
		return err
	}
	c.Model = pose.Matrix()
	c.Projection = p
	c.MVP = p.Mul(c.View).Mul(c.Model)
	return nil
}

// LookAt places the camera at eye looking toward target and refreshes MVP.
func (c *Context) LookAt(eye, target, up math3d.Vec3) {
	c.View = math3d.LookAt(eye, target, up)
	c.CameraPos = eye
	c.MVP = c.Projection.Mul(c.View).Mul(c.Model)
}

// SetLight sets the light direction; a zero vector restores the default.
func (c *Context) SetLight(dir math3d.Vec3) {
	if dir.LenSq() == 0 {
		c.LightDir = DefaultLightDir
		return
	}
	c.LightDir = dir.Normalize()
}

// Project maps an object-space point to clip space. A w closer to zero than
// minClipW is pushed out to minClipW, keeping its sign, so the later divide
// stays finite.
func (c *Context) Project(v math3d.Vec3) math3d.Vec4 {
	clip := c.MVP.MulVec4(math3d.V4FromV3(v, 1))
	if math.Abs(clip.W) < minClipW {
		clip.W = math.Copysign(minClipW, clip.W)
	}
	return clip
}
