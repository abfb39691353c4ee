package project

import (
	"bytes"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// PixelBuffer is a width x height x 4 byte RGBA buffer (non-premultiplied).
type PixelBuffer struct {
	Width  int
	Height int
	Data   []byte
}

// NewPixelBuffer allocates a fully transparent buffer.
func NewPixelBuffer(width, height int) *PixelBuffer {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &PixelBuffer{
		Width:  width,
		Height: height,
		Data:   make([]byte, width*height*4),
	}
}

// FromImage copies any image into a new buffer.
func FromImage(img image.Image) *PixelBuffer {
	nrgba := imaging.Clone(img)
	b := nrgba.Bounds()
	return &PixelBuffer{Width: b.Dx(), Height: b.Dy(), Data: nrgba.Pix}
}

// Clone returns a deep copy. A nil receiver yields nil.
func (b *PixelBuffer) Clone() *PixelBuffer {
	if b == nil {
		return nil
	}
	data := make([]byte, len(b.Data))
	copy(data, b.Data)
	return &PixelBuffer{Width: b.Width, Height: b.Height, Data: data}
}

// Image wraps the buffer as an *image.NRGBA sharing the same memory.
func (b *PixelBuffer) Image() *image.NRGBA {
	return &image.NRGBA{
		Pix:    b.Data,
		Stride: b.Width * 4,
		Rect:   image.Rect(0, 0, b.Width, b.Height),
	}
}

// InBounds reports whether (x, y) is a valid pixel.
func (b *PixelBuffer) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < b.Width && y < b.Height
}

// At returns the pixel at (x, y). Out-of-bounds reads return transparent black.
func (b *PixelBuffer) At(x, y int) color.NRGBA {
	if !b.InBounds(x, y) {
		return color.NRGBA{}
	}
	i := (y*b.Width + x) * 4
	return color.NRGBA{R: b.Data[i], G: b.Data[i+1], B: b.Data[i+2], A: b.Data[i+3]}
}

// Set writes the pixel at (x, y). Out-of-bounds writes are ignored.
func (b *PixelBuffer) Set(x, y int, c color.NRGBA) {
	if !b.InBounds(x, y) {
		return
	}
	i := (y*b.Width + x) * 4
	b.Data[i] = c.R
	b.Data[i+1] = c.G
	b.Data[i+2] = c.B
	b.Data[i+3] = c.A
}

// Fill sets every pixel inside r (clipped to the buffer) to c.
func (b *PixelBuffer) Fill(r Rect, c color.NRGBA) {
	r = r.Intersect(Rect{X2: b.Width, Y2: b.Height})
	for y := r.Y1; y < r.Y2; y++ {
		for x := r.X1; x < r.X2; x++ {
			b.Set(x, y, c)
		}
	}
}

// Equal reports whether both buffers have the same size and bytes.
func (b *PixelBuffer) Equal(o *PixelBuffer) bool {
	if b == nil || o == nil {
		return b == o
	}
	return b.Width == o.Width && b.Height == o.Height && bytes.Equal(b.Data, o.Data)
}
