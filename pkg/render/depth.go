package render

// FarDepth is the value every depth sample holds after a reset: the far clip
// plane in normalized device coordinates.
const FarDepth = 1.0

// DepthBuffer stores one NDC depth value per framebuffer pixel.
type DepthBuffer struct {
	Width  int
	Height int
	Values []float64 // Row-major, same addressing as Framebuffer.Pixels
}

// NewDepthBuffer creates a depth buffer already reset to FarDepth.
func NewDepthBuffer(width, height int) *DepthBuffer {
	d := &DepthBuffer{}
	d.Reset(width, height)
	return d
}

// Reset prepares the buffer for a new frame of the given size. The storage is
// reallocated when the size differs; it is never grown in place.
func (d *DepthBuffer) Reset(width, height int) {
	n := width * height
	if width != d.Width || height != d.Height || len(d.Values) != n {
		d.Width = width
		d.Height = height
		d.Values = make([]float64, n)
	}
	if n == 0 {
		return
	}
	// Use copy-doubling for faster clearing
	d.Values[0] = FarDepth
	for i := 1; i < n; i *= 2 {
		copy(d.Values[i:], d.Values[:i])
	}
}

// Matches reports whether the buffer is sized for a width x height target.
func (d *DepthBuffer) Matches(width, height int) bool {
	return d.Width == width && d.Height == height && len(d.Values) == width*height
}
