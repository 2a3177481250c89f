package render

import (
	"io"
	"strconv"
)

const (
	cursorHome = "\x1b[H"
	upperHalf  = "▀"
)

// Encoder turns a framebuffer into a half-block ANSI frame. Each terminal
// cell shows two vertically stacked pixels: the foreground paints the upper
// one and the background the lower one.
//
// The last emitted colors carry over between frames, so a steady image costs
// only glyphs after the first frame. Call Reset whenever the terminal may have
// lost that state (resize, clear, alternate screen switch).
type Encoder struct {
	buf    []byte
	fg, bg Color
	primed bool
}

// NewEncoder creates an encoder with no remembered colors.
func NewEncoder() *Encoder {
	return &Encoder{}
}

// Reset forgets the remembered colors so the next cell emits both escapes.
func (e *Encoder) Reset() {
	e.primed = false
}

// Encode renders fb as Width x Height/2 cells preceded by a cursor-home
// sequence. Framebuffer row 0 is the bottom of the picture, so cell row 0
// reads pixel rows Height-1 and Height-2. The returned slice is reused by the
// next call.
func (e *Encoder) Encode(fb *Framebuffer) []byte {
	e.buf = append(e.buf[:0], cursorHome...)
	w, h := fb.Width, fb.Height
	rows := h / 2
	for y := range rows {
		topRow := (h - 1 - 2*y) * w
		bottomRow := (h - 1 - (2*y + 1)) * w
		for x := range w {
			top := fb.Pixels[topRow+x]
			bottom := fb.Pixels[bottomRow+x]
			if !e.primed || !sameRGB(top, e.fg) {
				e.buf = appendSGR(e.buf, 38, top)
				e.fg = top
			}
			if !e.primed || !sameRGB(bottom, e.bg) {
				e.buf = appendSGR(e.buf, 48, bottom)
				e.bg = bottom
			}
			e.primed = true
			e.buf = append(e.buf, upperHalf...)
		}
	}
	return e.buf
}

// WriteFrame encodes fb and writes it to w in a single call.
func (e *Encoder) WriteFrame(w io.Writer, fb *Framebuffer) error {
	_, err := w.Write(e.Encode(fb))
	return err
}

// appendSGR appends ESC[<sel>;2;r;g;bm.
func appendSGR(buf []byte, sel uint64, c Color) []byte {
	buf = append(buf, "\x1b["...)
	buf = strconv.AppendUint(buf, sel, 10)
	buf = append(buf, ";2;"...)
	buf = strconv.AppendUint(buf, uint64(c.R), 10)
	buf = append(buf, ';')
	buf = strconv.AppendUint(buf, uint64(c.G), 10)
	buf = append(buf, ';')
	buf = strconv.AppendUint(buf, uint64(c.B), 10)
	return append(buf, 'm')
}
