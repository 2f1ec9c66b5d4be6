package carrier_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/veilforge/veil/carrier"
)

func makeAVI(t *testing.T, frames, width, height int) []byte {
	t.Helper()
	frameSize := carrier.DIBFrameSize(width, height)
	fs := make([][]byte, frames)
	for i := range fs {
		fs[i] = make([]byte, frameSize)
		for j := range fs[i] {
			fs[i][j] = byte(i + j*13)
		}
	}
	data, err := carrier.EncodeAVI(fs, width, height, 25)
	assert.NoError(t, err)
	return data
}

func TestVideoOpenAndSlots(t *testing.T) {
	assert := assert.New(t)

	data := makeAVI(t, 4, 16, 8)
	c, err := carrier.Open(carrier.Video, data)
	assert.NoError(err)
	assert.Equal(carrier.Video, c.Kind())
	assert.Equal(4*carrier.DIBFrameSize(16, 8), c.Slots())
}

func TestVideoWriteReadRoundTrip(t *testing.T) {
	assert := assert.New(t)

	data := makeAVI(t, 3, 8, 8)
	c, err := carrier.Open(carrier.Video, data)
	assert.NoError(err)

	// Span more than one frame so the cross-frame slot mapping is covered.
	bits := make([]byte, carrier.DIBFrameSize(8, 8)+100)
	for i := range bits {
		bits[i] = byte(i % 2)
	}
	out, err := c.WriteBits(bits)
	assert.NoError(err)
	assert.Equal(len(data), len(out))

	c2, err := carrier.Open(carrier.Video, out)
	assert.NoError(err)
	assert.Equal(bits, c2.ReadBits()[:len(bits)])
}

func TestVideoPreservesContainerStructure(t *testing.T) {
	assert := assert.New(t)

	data := makeAVI(t, 2, 8, 8)
	c, _ := carrier.Open(carrier.Video, data)
	out, err := c.WriteBits([]byte{1, 0, 1})
	assert.NoError(err)

	// Everything before the movi payload is untouched.
	moviAt := bytes.Index(data, []byte("movi"))
	assert.Positive(moviAt)
	assert.Equal(data[:moviAt], out[:moviAt])
}

func TestVideoRejectsCompressedFrames(t *testing.T) {
	assert := assert.New(t)

	data := makeAVI(t, 1, 8, 8)
	// Patch biCompression inside the strf chunk to a non-RGB fourcc.
	strfAt := bytes.Index(data, []byte("strf"))
	assert.Positive(strfAt)
	data[strfAt+8+16] = 1

	_, err := carrier.Open(carrier.Video, data)
	assert.ErrorIs(err, carrier.ErrUnsupportedFormat)
}

func TestVideoRejectsGarbage(t *testing.T) {
	_, err := carrier.Open(carrier.Video, []byte("RIFFxxxxWAVEfmt and other junk"))
	assert.ErrorIs(t, err, carrier.ErrUnsupportedFormat)
}

func TestEncodeAVIValidatesFrameSize(t *testing.T) {
	_, err := carrier.EncodeAVI([][]byte{make([]byte, 10)}, 8, 8, 25)
	assert.Error(t, err)
}
