package carrier

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sync"
)

var aviForm = [4]byte{'A', 'V', 'I', ' '}

// videoCodec embeds into the least-significant bit of every byte of every
// uncompressed DIB frame in an AVI container. The parser records the byte
// range of each frame's pixel data inside the original file, so embedding is
// a copy of the whole file with LSBs rewritten in place: headers, indexes,
// and any non-frame chunk survive byte-identically.
//
// Frames are independent, so reads and writes fan out across them; the
// frame-to-slot mapping is fixed, which keeps the output order-independent.
type videoCodec struct {
	data   []byte
	frames []frameSpan
	slots  int
}

type frameSpan struct {
	off, n int
}

func openVideo(data []byte) (*videoCodec, error) {
	if form, ok := riffFormat(data); !ok || form != aviForm {
		return nil, fmt.Errorf("%w: video carriers must be AVI", ErrUnsupportedFormat)
	}

	c := &videoCodec{data: data}
	compressionChecked := false
	lastStreamType := ""

	var walk func(start, end int) error
	walk = func(start, end int) error {
		o := start
		for o+8 <= end {
			id := string(data[o : o+4])
			size := int(binary.LittleEndian.Uint32(data[o+4 : o+8]))
			body := o + 8
			if size < 0 || body+size > end {
				return fmt.Errorf("%w: truncated AVI chunk %q", ErrUnsupportedFormat, id)
			}
			switch {
			case id == "LIST" && size >= 4:
				if err := walk(body+4, body+size); err != nil {
					return err
				}
			case id == "strh" && size >= 4:
				lastStreamType = string(data[body : body+4])
			case id == "strf" && lastStreamType == "vids":
				if size < 20 {
					return fmt.Errorf("%w: short BITMAPINFOHEADER", ErrUnsupportedFormat)
				}
				if compression := binary.LittleEndian.Uint32(data[body+16 : body+20]); compression != 0 {
					return fmt.Errorf("%w: AVI frames are compressed (fourcc %08x), only raw DIB is supported", ErrUnsupportedFormat, compression)
				}
				compressionChecked = true
			case id == "00db" || id == "00dc":
				c.frames = append(c.frames, frameSpan{off: body, n: size})
				c.slots += size
			}
			o = body + size + size&1
		}
		return nil
	}

	if err := walk(12, len(data)); err != nil {
		return nil, err
	}
	if !compressionChecked {
		return nil, fmt.Errorf("%w: AVI has no uncompressed video stream header", ErrUnsupportedFormat)
	}
	if len(c.frames) == 0 {
		return nil, fmt.Errorf("%w: AVI has no video frames", ErrUnsupportedFormat)
	}
	return c, nil
}

func (c *videoCodec) Kind() Kind { return Video }

func (c *videoCodec) Slots() int { return c.slots }

func (c *videoCodec) ReadBits() []byte {
	bits := make([]byte, c.slots)
	var wg sync.WaitGroup
	base := 0
	for _, f := range c.frames {
		wg.Add(1)
		go func(dst, src []byte) {
			defer wg.Done()
			for i, b := range src {
				dst[i] = b & 1
			}
		}(bits[base:base+f.n], c.data[f.off:f.off+f.n])
		base += f.n
	}
	wg.Wait()
	return bits
}

func (c *videoCodec) WriteBits(bits []byte) ([]byte, error) {
	if len(bits) > c.slots {
		return nil, ErrTooSmall
	}

	out := make([]byte, len(c.data))
	copy(out, c.data)

	var wg sync.WaitGroup
	base := 0
	for _, f := range c.frames {
		if base >= len(bits) {
			break
		}
		n := f.n
		if base+n > len(bits) {
			n = len(bits) - base
		}
		wg.Add(1)
		go func(dst, src []byte) {
			defer wg.Done()
			for i, bit := range src {
				dst[i] = dst[i]&^1 | bit&1
			}
		}(out[f.off:f.off+n], bits[base:base+n])
		base += f.n
	}
	wg.Wait()
	return out, nil
}

// dibRowSize returns the byte length of one DIB pixel row, padded to a
// 4-byte boundary.
func dibRowSize(width int) int {
	return (width*3 + 3) &^ 3
}

// DIBFrameSize returns the byte length of one uncompressed 24-bit frame for
// EncodeAVI.
func DIBFrameSize(width, height int) int {
	return dibRowSize(width) * height
}

// EncodeAVI builds a minimal AVI container holding uncompressed 24-bit DIB
// video frames. Each frame must be exactly DIBFrameSize(width, height) bytes
// of raw pixel data. Tests use it to synthesize carriers.
func EncodeAVI(frames [][]byte, width, height, fps int) ([]byte, error) {
	if len(frames) == 0 {
		return nil, fmt.Errorf("no frames to encode")
	}
	if fps <= 0 {
		fps = 25
	}
	frameSize := DIBFrameSize(width, height)
	for i, f := range frames {
		if len(f) != frameSize {
			return nil, fmt.Errorf("frame %d is %d bytes, want %d", i, len(f), frameSize)
		}
	}

	u16 := func(b *bytes.Buffer, v int) { binary.Write(b, binary.LittleEndian, uint16(v)) }
	u32 := func(b *bytes.Buffer, v int) { binary.Write(b, binary.LittleEndian, uint32(v)) }
	chunk := func(id string, payload []byte) []byte {
		var b bytes.Buffer
		b.WriteString(id)
		u32(&b, len(payload))
		b.Write(payload)
		if len(payload)&1 == 1 {
			b.WriteByte(0)
		}
		return b.Bytes()
	}
	list := func(listType string, payload []byte) []byte {
		var b bytes.Buffer
		b.WriteString(listType)
		b.Write(payload)
		return chunk("LIST", b.Bytes())
	}

	// Main AVI header.
	var avih bytes.Buffer
	u32(&avih, 1_000_000/fps) // microseconds per frame
	u32(&avih, frameSize*fps) // max bytes per second
	u32(&avih, 0)             // padding granularity
	u32(&avih, 0)             // flags
	u32(&avih, len(frames))   // total frames
	u32(&avih, 0)             // initial frames
	u32(&avih, 1)             // streams
	u32(&avih, frameSize)     // suggested buffer size
	u32(&avih, width)
	u32(&avih, height)
	for i := 0; i < 4; i++ {
		u32(&avih, 0) // reserved
	}

	// Video stream header.
	var strh bytes.Buffer
	strh.WriteString("vids")
	strh.WriteString("DIB ")
	u32(&strh, 0)           // flags
	u16(&strh, 0)           // priority
	u16(&strh, 0)           // language
	u32(&strh, 0)           // initial frames
	u32(&strh, 1)           // scale
	u32(&strh, fps)         // rate
	u32(&strh, 0)           // start
	u32(&strh, len(frames)) // length
	u32(&strh, frameSize)   // suggested buffer size
	u32(&strh, 0)           // quality
	u32(&strh, 0)           // sample size
	u16(&strh, 0)           // rcFrame
	u16(&strh, 0)
	u16(&strh, width)
	u16(&strh, height)

	// BITMAPINFOHEADER.
	var strf bytes.Buffer
	u32(&strf, 40)
	u32(&strf, width)
	u32(&strf, height)
	u16(&strf, 1)  // planes
	u16(&strf, 24) // bits per pixel
	u32(&strf, 0)  // BI_RGB, uncompressed
	u32(&strf, frameSize)
	u32(&strf, 0) // x pixels per meter
	u32(&strf, 0) // y pixels per meter
	u32(&strf, 0) // colors used
	u32(&strf, 0) // colors important

	strl := list("strl", append(chunk("strh", strh.Bytes()), chunk("strf", strf.Bytes())...))
	hdrl := list("hdrl", append(chunk("avih", avih.Bytes()), strl...))

	var moviBody bytes.Buffer
	for _, f := range frames {
		moviBody.Write(chunk("00db", f))
	}
	movi := list("movi", moviBody.Bytes())

	var riffBody bytes.Buffer
	riffBody.WriteString("AVI ")
	riffBody.Write(hdrl)
	riffBody.Write(movi)

	var out bytes.Buffer
	out.WriteString("RIFF")
	u32(&out, riffBody.Len())
	out.Write(riffBody.Bytes())
	return out.Bytes(), nil
}
