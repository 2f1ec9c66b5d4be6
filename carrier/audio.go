package carrier

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/orcaman/writerseeker"
	"github.com/tosone/minimp3"
)

var waveForm = [4]byte{'W', 'A', 'V', 'E'}

// audioCodec embeds into the least-significant bit of each 16-bit PCM sample
// in buffer order. WAV carriers stay WAV; MP3 carriers are transcoded to PCM
// first and the stego output is emitted as WAV, the lossless intermediate;
// re-encoding to MP3 would scramble the sample LSBs.
type audioCodec struct {
	buf *audio.IntBuffer
}

func openAudio(data []byte) (*audioCodec, error) {
	if form, ok := riffFormat(data); ok {
		if form != waveForm {
			return nil, fmt.Errorf("%w: RIFF carrier is not a WAV file", ErrUnsupportedFormat)
		}
		return openWAV(data)
	}
	if isMP3(data) {
		return openMP3(data)
	}
	return nil, fmt.Errorf("%w: audio carriers must be WAV or MP3", ErrUnsupportedFormat)
}

func openWAV(data []byte) (*audioCodec, error) {
	d := wav.NewDecoder(bytes.NewReader(data))
	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	if d.BitDepth != 16 {
		return nil, fmt.Errorf("%w: only 16-bit PCM WAV is supported, got %d-bit", ErrUnsupportedFormat, d.BitDepth)
	}
	buf.SourceBitDepth = 16
	return &audioCodec{buf: buf}, nil
}

func openMP3(data []byte) (*audioCodec, error) {
	dec, pcm, err := minimp3.DecodeFull(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	defer dec.Close()

	samples := make([]int, len(pcm)/2)
	for i := range samples {
		samples[i] = int(int16(binary.LittleEndian.Uint16(pcm[i*2:])))
	}
	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: dec.Channels,
			SampleRate:  dec.SampleRate,
		},
		Data:           samples,
		SourceBitDepth: 16,
	}
	return &audioCodec{buf: buf}, nil
}

// isMP3 reports whether data starts with an ID3 tag or an MPEG frame sync.
func isMP3(data []byte) bool {
	if len(data) < 3 {
		return false
	}
	if bytes.HasPrefix(data, []byte("ID3")) {
		return true
	}
	return data[0] == 0xFF && data[1]&0xE0 == 0xE0
}

func (c *audioCodec) Kind() Kind { return Audio }

func (c *audioCodec) Slots() int { return len(c.buf.Data) }

func (c *audioCodec) ReadBits() []byte {
	bits := make([]byte, len(c.buf.Data))
	for i, s := range c.buf.Data {
		bits[i] = byte(s & 1)
	}
	return bits
}

func (c *audioCodec) WriteBits(bits []byte) ([]byte, error) {
	if len(bits) > c.Slots() {
		return nil, ErrTooSmall
	}

	samples := make([]int, len(c.buf.Data))
	copy(samples, c.buf.Data)
	for i, bit := range bits {
		samples[i] = samples[i]&^1 | int(bit&1)
	}

	out := &audio.IntBuffer{
		Format:         c.buf.Format,
		Data:           samples,
		SourceBitDepth: 16,
	}

	ws := &writerseeker.WriterSeeker{}
	enc := wav.NewEncoder(ws, out.Format.SampleRate, 16, out.Format.NumChannels, 1)
	if err := enc.Write(out); err != nil {
		return nil, fmt.Errorf("failed to encode WAV: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize WAV: %w", err)
	}

	b, err := io.ReadAll(ws.BytesReader())
	if err != nil {
		return nil, fmt.Errorf("failed to read encoded WAV: %w", err)
	}
	return b, nil
}
