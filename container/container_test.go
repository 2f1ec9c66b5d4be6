package container_test

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/veilforge/veil/container"
)

func TestFrameParseRoundTrip(t *testing.T) {
	assert := assert.New(t)

	meta := container.Metadata{
		container.KeyEncrypted:   true,
		container.KeyContentType: "file",
		container.KeyFilename:    "report.pdf",
		container.KeyChecksum:    "deadbeef",
		container.KeyRedundancy:  3,
	}
	payload := []byte{0xDE, 0xAD, 0xBE, 0xEF}

	framed, err := container.Frame(meta, payload)
	assert.NoError(err)

	gotMeta, gotPayload, err := container.Parse(framed)
	assert.NoError(err)
	assert.Equal(payload, gotPayload)

	enc, ok := gotMeta.Bool(container.KeyEncrypted)
	assert.True(ok)
	assert.True(enc)
	name, ok := gotMeta.String(container.KeyFilename)
	assert.True(ok)
	assert.Equal("report.pdf", name)
	red, ok := gotMeta.Int(container.KeyRedundancy)
	assert.True(ok)
	assert.Equal(3, red)
}

func TestParseSkipsLeadingBytes(t *testing.T) {
	assert := assert.New(t)

	framed, err := container.Frame(container.Metadata{"k": "v"}, []byte("data"))
	assert.NoError(err)

	padded := append([]byte("some unrelated carrier bytes"), framed...)
	meta, payload, err := container.Parse(padded)
	assert.NoError(err)
	assert.Equal([]byte("data"), payload)
	v, _ := meta.String("k")
	assert.Equal("v", v)
}

func TestParseUnknownKeysIgnored(t *testing.T) {
	assert := assert.New(t)

	framed, err := container.Frame(container.Metadata{
		container.KeyChecksum: "00",
		"future_key":          "future_value",
	}, nil)
	assert.NoError(err)

	meta, _, err := container.Parse(framed)
	assert.NoError(err)
	v, ok := meta.String("future_key")
	assert.True(ok)
	assert.Equal("future_value", v)
}

func TestParseNoMagic(t *testing.T) {
	_, _, err := container.Parse([]byte("just a plain carrier with nothing inside"))
	assert.ErrorIs(t, err, container.ErrNoContainer)
}

func TestParseLegacyMagic(t *testing.T) {
	data := append([]byte("prefix "), []byte("VEILFORGE_UNIVERSAL_SAFE_V2 trailing")...)
	_, _, err := container.Parse(data)
	assert.ErrorIs(t, err, container.ErrLegacy)
}

func TestParseTruncated(t *testing.T) {
	assert := assert.New(t)

	framed, err := container.Frame(container.Metadata{"k": "v"}, []byte("payload"))
	assert.NoError(err)

	// Cut the payload short of its declared length.
	_, _, err = container.Parse(framed[:len(framed)-3])
	assert.ErrorIs(err, container.ErrTruncated)

	// Magic followed by nothing at all.
	_, _, err = container.Parse(container.Magic)
	assert.ErrorIs(err, container.ErrTruncated)

	// Metadata length pointing past the end.
	bogus := append([]byte(nil), container.Magic...)
	bogus = binary.LittleEndian.AppendUint32(bogus, 9999)
	_, _, err = container.Parse(bogus)
	assert.ErrorIs(err, container.ErrTruncated)
}

func TestParseBadMetadata(t *testing.T) {
	assert := assert.New(t)

	notJSON := []byte("{invalid json")
	data := append([]byte(nil), container.Magic...)
	data = binary.LittleEndian.AppendUint32(data, uint32(len(notJSON)))
	data = append(data, notJSON...)
	data = binary.LittleEndian.AppendUint32(data, 0)

	_, _, err := container.Parse(data)
	assert.ErrorIs(err, container.ErrBadMetadata)
}
