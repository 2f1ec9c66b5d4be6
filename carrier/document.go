package carrier

import (
	"fmt"

	"github.com/veilforge/veil/util"
)

// TrailerBudget caps how many bytes may be appended to a document carrier so
// the reported capacity stays finite.
const TrailerBudget = 4 << 20

// documentCodec hides data in a trailing byte region appended after the
// document's own content. PDF readers stop at %%EOF, ZIP readers locate the
// central directory by scanning backwards, and text tools ignore trailing
// binary, so the document stays parseable by its native reader. The substrate
// is lossless: appended bytes come back exactly as written.
type documentCodec struct {
	data []byte
}

func openDocument(data []byte) (*documentCodec, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty document carrier", ErrUnsupportedFormat)
	}
	return &documentCodec{data: data}, nil
}

func (c *documentCodec) Kind() Kind { return Document }

func (c *documentCodec) Slots() int { return TrailerBudget * 8 }

// ReadBits exposes the whole document as a bitstream. The container parser
// locates the magic marker inside it, so extraction does not need to know
// where the original document ended.
func (c *documentCodec) ReadBits() []byte {
	return util.UnpackBits(c.data)
}

func (c *documentCodec) WriteBits(bits []byte) ([]byte, error) {
	if len(bits) > c.Slots() {
		return nil, ErrTooSmall
	}
	trailer := util.PackBits(bits)
	out := make([]byte, 0, len(c.data)+len(trailer))
	out = append(out, c.data...)
	return append(out, trailer...), nil
}
