package render

import (
	"image/color"
	"math"

	"github.com/taigrr/objview/pkg/math3d"
)

// Color is an alias for color.RGBA for convenience.
// Only R, G and B take part in rendering and encoding; A is kept opaque.
type Color = color.RGBA

// Colors for convenience
var (
	ColorBlack = color.RGBA{0, 0, 0, 255}
	ColorWhite = color.RGBA{255, 255, 255, 255}
	ColorRed   = color.RGBA{255, 0, 0, 255}
	ColorGreen = color.RGBA{0, 255, 0, 255}
	ColorBlue  = color.RGBA{0, 0, 255, 255}
)

// RGB creates a color from RGB values.
func RGB(r, g, b uint8) color.RGBA {
	return color.RGBA{r, g, b, 255}
}

// sameRGB reports whether two colors match on their RGB channels.
func sameRGB(a, b Color) bool {
	return a.R == b.R && a.G == b.G && a.B == b.B
}

// toByte clamps v to [0, 255] and truncates it.
func toByte(v float64) uint8 {
	if !(v > 0) {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}

// shadeColor multiplies base channel-wise by light and a global scalar.
func shadeColor(base Color, light math3d.Vec3, brightness float64) Color {
	return Color{
		R: toByte(float64(base.R) * light.X * brightness),
		G: toByte(float64(base.G) * light.Y * brightness),
		B: toByte(float64(base.B) * light.Z * brightness),
		A: 255,
	}
}

// unitToByte maps a [0,1] channel to [0,255], clamping out-of-range input.
func unitToByte(v float64) uint8 {
	return toByte(math.Min(v, 1) * 255)
}
