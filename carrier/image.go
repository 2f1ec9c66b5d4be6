package carrier

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}

// imageCodec embeds into the least-significant bit of the R, G, and B
// channels of each pixel in row-major order. The alpha channel is left
// untouched. Only PNG carriers are accepted: a lossy output format would
// destroy the LSB plane on save.
type imageCodec struct {
	img  *image.NRGBA
	w, h int
}

func openImage(data []byte) (*imageCodec, error) {
	if !bytes.HasPrefix(data, pngMagic) {
		return nil, fmt.Errorf("%w: image carriers must be lossless PNG", ErrUnsupportedFormat)
	}
	src, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}

	b := src.Bounds()
	img := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(img, img.Bounds(), src, b.Min, draw.Src)

	return &imageCodec{img: img, w: b.Dx(), h: b.Dy()}, nil
}

func (c *imageCodec) Kind() Kind { return Image }

func (c *imageCodec) Slots() int { return c.w * c.h * 3 }

func (c *imageCodec) ReadBits() []byte {
	bits := make([]byte, 0, c.Slots())
	for p := 0; p < c.w*c.h; p++ {
		o := p * 4
		bits = append(bits, c.img.Pix[o]&1, c.img.Pix[o+1]&1, c.img.Pix[o+2]&1)
	}
	return bits
}

func (c *imageCodec) WriteBits(bits []byte) ([]byte, error) {
	if len(bits) > c.Slots() {
		return nil, ErrTooSmall
	}

	out := image.NewNRGBA(c.img.Rect)
	copy(out.Pix, c.img.Pix)
	for j, bit := range bits {
		o := (j/3)*4 + j%3
		out.Pix[o] = out.Pix[o]&^1 | bit&1
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}
