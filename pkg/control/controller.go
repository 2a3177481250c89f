// Package control owns the viewer's interactive state: the model pose,
// keyboard handling, auto-rotation and the per-tick decision of whether a
// frame has to be drawn.
package control

import (
	"math"

	"github.com/charmbracelet/harmonica"
	"github.com/taigrr/objview/pkg/math3d"
	"github.com/taigrr/objview/pkg/render"
)

// Defaults for auto-rotation.
const (
	DefaultSpeed = math.Pi // one turn every two seconds
	DefaultFPS   = 60

	// Angular velocities below this are treated as stopped.
	restVelocity = 1e-4
)

// Config configures a Controller.
type Config struct {
	AutoRotate bool
	Speed      float64 // yaw rate in rad/s while auto-rotating
	FPS        int     // tick rate the spring is tuned for
	StepScale  float64 // initial multiplier for key steps
	Pose       render.Pose
}

// DefaultConfig matches the viewer's command-line defaults.
func DefaultConfig() Config {
	return Config{
		Speed:     DefaultSpeed,
		FPS:       DefaultFPS,
		StepScale: 1,
		Pose:      render.DefaultPose(),
	}
}

// Frame is the outcome of one Tick.
type Frame struct {
	Render bool // a new frame must be drawn
	Clear  bool // the terminal must be cleared first (after a resize)
	Cols   int
	Rows   int
}

// Controller tracks pose, rotation and pending terminal resizes. It is not
// safe for concurrent use; feed it events from the render loop.
type Controller struct {
	cfg Config

	pose      render.Pose
	stepScale float64

	rotating bool
	// omega eases toward Speed (or 0) through the spring; omegaVel is the
	// spring's own velocity.
	omega    float64
	omegaVel float64
	spring   harmonica.Spring

	cols, rows    int
	pendingCols   int
	pendingRows   int
	pendingResize bool

	dirty bool
	quit  bool
}

// New creates a controller. Zero fields in cfg take their defaults.
func New(cfg Config) *Controller {
	def := DefaultConfig()
	if cfg.FPS < 1 {
		cfg.FPS = def.FPS
	}
	if cfg.Speed == 0 {
		cfg.Speed = def.Speed
	}
	if cfg.StepScale == 0 {
		cfg.StepScale = def.StepScale
	}
	if cfg.Pose.Scale == (math3d.Vec3{}) {
		cfg.Pose = def.Pose
	}
	c := &Controller{
		cfg: cfg,
		// Frequency 4.0 = moderate speed, damping 1.0 = critically damped (no overshoot)
		spring: harmonica.NewSpring(harmonica.FPS(cfg.FPS), 4.0, 1.0),
	}
	c.reset()
	c.rotating = cfg.AutoRotate
	if c.rotating {
		c.omega = cfg.Speed
	}
	return c
}

func (c *Controller) reset() {
	c.pose = c.cfg.Pose
	c.stepScale = c.cfg.StepScale
	c.dirty = true
}

// Pose returns the current model pose.
func (c *Controller) Pose() render.Pose { return c.pose }

// StepScale returns the current key step multiplier.
func (c *Controller) StepScale() float64 { return c.stepScale }

// Rotating reports whether auto-rotation is enabled.
func (c *Controller) Rotating() bool { return c.rotating }

// AngularVelocity returns the current yaw rate in rad/s.
func (c *Controller) AngularVelocity() float64 { return c.omega }

// Done reports whether a quit key was pressed.
func (c *Controller) Done() bool { return c.quit }

// Size returns the terminal size the last frame was drawn for.
func (c *Controller) Size() (cols, rows int) { return c.cols, c.rows }

// HandleKey applies a key press and reports what it did. Unknown keys are
// ignored.
func (c *Controller) HandleKey(key string) Action {
	b, ok := lookup(key)
	if !ok {
		return ActionNone
	}
	switch b.Action {
	case ActionQuit:
		c.quit = true
		return b.Action
	case ActionToggleRotation:
		c.rotating = !c.rotating
	case ActionReset:
		c.reset()
	case ActionMove:
		d := MoveStep * c.stepScale
		c.pose.Position = c.pose.Position.Add(math3d.V3(b.move[0], b.move[1], b.move[2]).Scale(d))
	case ActionRotate:
		d := RotateStep * c.stepScale
		c.pose.Rotation = c.pose.Rotation.Add(math3d.V3(b.rotate[0], b.rotate[1], b.rotate[2]).Scale(d))
	case ActionStepScale:
		c.stepScale *= b.scale
	}
	c.dirty = true
	return b.Action
}

// Resize records a new terminal size. Only the latest size is kept; it is
// applied by the next Tick.
func (c *Controller) Resize(cols, rows int) {
	c.pendingCols, c.pendingRows = cols, rows
	c.pendingResize = true
}

// Tick advances auto-rotation by dt seconds and decides whether to draw.
// A pending resize is consumed here, exactly once. A resize to the current
// size neither clears nor redraws.
func (c *Controller) Tick(dt float64) Frame {
	var f Frame

	if c.pendingResize {
		c.pendingResize = false
		if c.pendingCols != c.cols || c.pendingRows != c.rows {
			c.cols, c.rows = c.pendingCols, c.pendingRows
			f.Clear = true
			c.dirty = true
		}
	}

	target := 0.0
	if c.rotating {
		target = c.cfg.Speed
	}
	if c.omega != target || c.omegaVel != 0 {
		c.omega, c.omegaVel = c.spring.Update(c.omega, c.omegaVel, target)
		if math.Abs(c.omega-target) < restVelocity && math.Abs(c.omegaVel) < restVelocity {
			c.omega, c.omegaVel = target, 0
		}
	}
	if c.omega != 0 && dt > 0 {
		c.pose.Rotation.Y += c.omega * dt
		c.dirty = true
	}

	f.Cols, f.Rows = c.cols, c.rows
	f.Render = c.dirty && c.cols > 0 && c.rows > 0
	if f.Render {
		c.dirty = false
	}
	return f
}
