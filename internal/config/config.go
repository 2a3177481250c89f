// Package config handles viewer configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/taigrr/objview/internal/logger"
	"github.com/taigrr/objview/pkg/math3d"
	"github.com/taigrr/objview/pkg/render"
)

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds all viewer settings.
type Config struct {
	Render  RenderConfig  `yaml:"render"`
	Control ControlConfig `yaml:"control"`
	Logging LoggingConfig `yaml:"logging"`
}

// RenderConfig holds projection and shading settings.
type RenderConfig struct {
	FPS             int       `yaml:"fps"`
	FOVDegrees      float64   `yaml:"fov_degrees"`
	Near            float64   `yaml:"near"`
	Far             float64   `yaml:"far"`
	Brightness      float64   `yaml:"brightness"`
	Color           string    `yaml:"color"` // "R,G,B" or "#rrggbb"; empty disables the override
	RandomColors    bool      `yaml:"random_colors"`
	TextureFilter   string    `yaml:"texture_filter"`
	TextureWrap     string    `yaml:"texture_wrap"`
	LightDir        []float64 `yaml:"light_dir,flow"`
	GenerateNormals bool      `yaml:"generate_normals"`
}

// ControlConfig holds interaction settings.
type ControlConfig struct {
	AutoRotate bool    `yaml:"auto_rotate"`
	Speed      float64 `yaml:"speed"` // rad/s
	Step       float64 `yaml:"step"`  // initial step scale
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Default returns a Config with the viewer's default values.
func Default() *Config {
	return &Config{
		Render: RenderConfig{
			FPS:           60,
			FOVDegrees:    60,
			Near:          0.1,
			Far:           100,
			Brightness:    1,
			TextureFilter: "nearest",
			TextureWrap:   "clamp",
			LightDir:      []float64{0, 1, 0.75},
		},
		Control: ControlConfig{
			Speed: math.Pi,
			Step:  1,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate rejects values the viewer cannot run with. The projection is
// checked again by the render context.
func (c *Config) Validate() error {
	var errs []error
	if c.Render.FPS < 1 {
		errs = append(errs, fmt.Errorf("render.fps must be at least 1, got %d", c.Render.FPS))
	}
	if err := c.Projection().Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Render.Brightness < 0 || math.IsNaN(c.Render.Brightness) {
		errs = append(errs, fmt.Errorf("render.brightness must be non-negative, got %v", c.Render.Brightness))
	}
	if _, err := c.OverrideColor(); err != nil {
		errs = append(errs, err)
	}
	if _, err := render.ParseFilterMode(c.Render.TextureFilter); err != nil {
		errs = append(errs, err)
	}
	if _, err := render.ParseWrapMode(c.Render.TextureWrap); err != nil {
		errs = append(errs, err)
	}
	if n := len(c.Render.LightDir); n != 0 && n != 3 {
		errs = append(errs, fmt.Errorf("render.light_dir needs 3 components, got %d", n))
	}
	if c.Control.Step <= 0 {
		errs = append(errs, fmt.Errorf("control.step must be positive, got %v", c.Control.Step))
	}
	if c.Logging.Level != "" && !logger.ValidLevel(c.Logging.Level) {
		errs = append(errs, fmt.Errorf("unknown logging.level %q", c.Logging.Level))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// Projection returns the render projection for a square viewport; the
// renderer fixes the aspect per frame.
func (c *Config) Projection() render.Projection {
	return render.Projection{
		FOV:    c.Render.FOVDegrees * math.Pi / 180,
		Aspect: 1,
		Near:   c.Render.Near,
		Far:    c.Render.Far,
	}
}

// Light returns the configured light direction, or zero when unset.
func (c *Config) Light() math3d.Vec3 {
	if len(c.Render.LightDir) != 3 {
		return math3d.Vec3{}
	}
	return math3d.V3(c.Render.LightDir[0], c.Render.LightDir[1], c.Render.LightDir[2])
}

// OverrideColor parses render.color. It returns nil when no override is set.
func (c *Config) OverrideColor() (*color.RGBA, error) {
	if strings.TrimSpace(c.Render.Color) == "" {
		return nil, nil
	}
	col, err := ParseColor(c.Render.Color)
	if err != nil {
		return nil, err
	}
	return &col, nil
}

// ParseColor accepts "R,G,B" with components in 0-255, or a hex color such
// as "#ff8800" or "f80".
func ParseColor(s string) (color.RGBA, error) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, ",") {
		parts := strings.Split(s, ",")
		if len(parts) != 3 {
			return color.RGBA{}, fmt.Errorf("color %q: want R,G,B", s)
		}
		var rgb [3]uint8
		for i, p := range parts {
			v, err := strconv.ParseUint(strings.TrimSpace(p), 10, 8)
			if err != nil {
				return color.RGBA{}, fmt.Errorf("color %q: component %d: %w", s, i+1, err)
			}
			rgb[i] = uint8(v)
		}
		return render.RGB(rgb[0], rgb[1], rgb[2]), nil
	}

	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	hex, err := colorful.Hex(s)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("color %q: %w", s, err)
	}
	r, g, b := hex.RGB255()
	return render.RGB(r, g, b), nil
}
