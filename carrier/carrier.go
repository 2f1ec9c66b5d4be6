// Package carrier implements the per-type bit substrates that hidden data is
// written into: PNG pixel channels, WAV samples, AVI frame bytes, and
// document trailer regions. Every codec addresses a deterministic,
// re-discoverable sequence of slot positions; embedding order equals
// extraction order and depends on nothing but the carrier itself.
package carrier

import (
	"bytes"
	"errors"

	"github.com/go-audio/riff"
)

// Kind tags the carrier type a codec operates on.
type Kind string

const (
	Image    Kind = "image"
	Audio    Kind = "audio"
	Video    Kind = "video"
	Document Kind = "document"
)

var (
	// ErrUnsupportedFormat is returned when the carrier bytes do not match
	// the declared kind, or match a lossy subformat that cannot hold LSB
	// data.
	ErrUnsupportedFormat = errors.New("carrier: unsupported carrier format")
	// ErrTooSmall is a write-time re-check; the capacity planner should
	// reject oversized bitstreams before a codec ever sees them.
	ErrTooSmall = errors.New("carrier: carrier too small for bitstream")
	// ErrUnknownKind is returned for an unrecognized carrier type tag.
	ErrUnknownKind = errors.New("carrier: unknown carrier kind")
)

// Codec reads and writes one carrier's addressable bit positions. A codec
// borrows the carrier bytes for the duration of one call and never mutates
// them; WriteBits always produces a fresh output buffer.
type Codec interface {
	Kind() Kind
	// Slots returns the number of addressable bit positions.
	Slots() int
	// ReadBits returns the carrier's readable bit plane, one byte per bit.
	// Most codecs return exactly Slots() bits; the document codec returns
	// the whole file's bits instead, since its slot budget counts
	// appendable trailer bytes rather than existing ones.
	ReadBits() []byte
	// WriteBits re-encodes the carrier with the leading len(bits) positions
	// set to the given bits. Positions past len(bits) keep their values.
	WriteBits(bits []byte) ([]byte, error)
}

// Open sniffs data and returns the codec for the given kind.
func Open(kind Kind, data []byte) (Codec, error) {
	switch kind {
	case Image:
		return openImage(data)
	case Audio:
		return openAudio(data)
	case Video:
		return openVideo(data)
	case Document:
		return openDocument(data)
	}
	return nil, ErrUnknownKind
}

// riffFormat returns the RIFF form type ("WAVE", "AVI ") of data, if any.
func riffFormat(data []byte) ([4]byte, bool) {
	p := riff.New(bytes.NewReader(data))
	if err := p.ParseHeaders(); err != nil {
		return [4]byte{}, false
	}
	return p.Format, true
}
