package render

import (
	"errors"
	"fmt"
	"math"

	"github.com/taigrr/objview/pkg/math3d"
)

// ErrInvalidProjection is returned for projection parameters that cannot
// produce a finite perspective matrix.
var ErrInvalidProjection = errors.New("invalid projection")

// Pose is the object-space to world-space placement of the model.
// Rotation holds pitch (X), yaw (Y) and roll (Z) in radians.
type Pose struct {
	Position math3d.Vec3
	Rotation math3d.Vec3
	Scale    math3d.Vec3
}

// DefaultPose places the model two units in front of the camera.
func DefaultPose() Pose {
	return Pose{
		Position: math3d.V3(0, 0, -2),
		Scale:    math3d.V3(1, 1, 1),
	}
}

// Matrix builds T * Rx(pitch) * Rz(roll) * Ry(yaw) * S, so a vertex is
// scaled, yawed, rolled, pitched and then translated.
func (p Pose) Matrix() math3d.Mat4 {
	t := math3d.Translate(p.Position)
	rx := math3d.RotateX(p.Rotation.X)
	rz := math3d.RotateZ(p.Rotation.Z)
	ry := math3d.RotateY(p.Rotation.Y)
	s := math3d.Scale(p.Scale)
	return t.Mul(rx).Mul(rz).Mul(ry).Mul(s)
}

// Projection holds perspective parameters. FOV is vertical, in radians.
type Projection struct {
	FOV    float64
	Aspect float64
	Near   float64
	Far    float64
}

// DefaultProjection returns a 60 degree projection; Aspect must still be set
// from the render target before use.
func DefaultProjection() Projection {
	return Projection{
		FOV:    math.Pi / 3,
		Aspect: 1,
		Near:   0.1,
		Far:    100,
	}
}

// WithAspect returns a copy of p using the aspect ratio of a width x height
// target.
func (p Projection) WithAspect(width, height int) Projection {
	if height > 0 {
		p.Aspect = float64(width) / float64(height)
	}
	return p
}

// Validate rejects parameters that would produce a degenerate matrix.
func (p Projection) Validate() error {
	switch {
	case !(p.Near > 0):
		return fmt.Errorf("%w: near plane %g must be positive", ErrInvalidProjection, p.Near)
	case !(p.Far > p.Near) || math.IsInf(p.Far, 0):
		return fmt.Errorf("%w: far plane %g must be finite and exceed near plane %g", ErrInvalidProjection, p.Far, p.Near)
	case !(p.FOV > 0 && p.FOV < math.Pi):
		return fmt.Errorf("%w: field of view %g must lie in (0, pi)", ErrInvalidProjection, p.FOV)
	case !(p.Aspect > 0) || math.IsInf(p.Aspect, 0):
		return fmt.Errorf("%w: aspect %g must be positive and finite", ErrInvalidProjection, p.Aspect)
	}
	return nil
}

// Matrix validates p and returns its perspective matrix.
func (p Projection) Matrix() (math3d.Mat4, error) {
	if err := p.Validate(); err != nil {
		return math3d.Mat4{}, err
	}
	return math3d.Perspective(p.FOV, p.Aspect, p.Near, p.Far), nil
}
