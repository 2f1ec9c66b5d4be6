// Package container serializes and parses the framing written into a
// carrier's bitstream: a fixed magic marker, a length-prefixed JSON metadata
// block, and a length-prefixed payload block. Both lengths are 4-byte
// little-endian so a reader can skip either block without parsing it.
package container

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
)

// Magic identifies a carrier that holds a container.
var Magic = []byte("VEILFRG3")

// legacyMagics are framings used by earlier iterations of the system. They
// mixed incompatible ciphers and are rejected explicitly rather than guessed
// at.
var legacyMagics = [][]byte{
	[]byte("VEILFORGE_UNIVERSAL_SAFE_V2"),
	[]byte("VEILFORGE_VIDEO"),
	[]byte("UNISTEGOFILE"),
}

// maxMetadataSize bounds the declared metadata length. A container never
// needs more; anything larger is treated as corruption.
const maxMetadataSize = 1 << 20

var (
	ErrNoContainer = errors.New("container: no container magic found")
	ErrTruncated   = errors.New("container: declared length exceeds available bytes")
	ErrBadMetadata = errors.New("container: metadata block is not valid JSON")
	ErrLegacy      = errors.New("container: legacy container format is not supported")
)

// Metadata key names. Unknown keys are preserved by Frame and ignored by
// readers for forward compatibility.
const (
	KeyEncrypted   = "encrypted"
	KeyContentType = "content_type"
	KeyFilename    = "original_filename"
	KeyChecksum    = "checksum"
	KeyRedundancy  = "redundancy"
	KeySize        = "size"
	KeyRSData      = "rs_data"
	KeyRSParity    = "rs_parity"
	KeyPayloadSize = "payload_size"
)

// Metadata is the flat string-keyed map carried in the container's metadata
// block.
type Metadata map[string]interface{}

// String returns the value for key if it is a string.
func (m Metadata) String(key string) (string, bool) {
	v, ok := m[key].(string)
	return v, ok
}

// Bool returns the value for key if it is a boolean.
func (m Metadata) Bool(key string) (bool, bool) {
	v, ok := m[key].(bool)
	return v, ok
}

// Int returns the value for key if it is an integer. JSON numbers are decoded
// as json.Number, while values set directly by a writer stay native ints.
func (m Metadata) Int(key string) (int, bool) {
	switch v := m[key].(type) {
	case int:
		return v, true
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, false
		}
		return int(n), true
	case float64:
		return int(v), true
	}
	return 0, false
}

// Frame writes magic || len(metadata) || metadata || len(payload) || payload.
func Frame(meta Metadata, payload []byte) ([]byte, error) {
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("failed to encode metadata: %w", err)
	}

	buf := make([]byte, 0, len(Magic)+8+len(metaJSON)+len(payload))
	buf = append(buf, Magic...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(metaJSON)))
	buf = append(buf, metaJSON...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(payload)))
	buf = append(buf, payload...)
	return buf, nil
}

// Parse scans data for the container magic and reads the two length-prefixed
// blocks that follow it. It returns ErrNoContainer when no magic is present,
// ErrLegacy when only a legacy framing is found, and ErrTruncated when a
// declared length runs past the available bytes.
func Parse(data []byte) (Metadata, []byte, error) {
	idx := bytes.Index(data, Magic)
	if idx < 0 {
		for _, legacy := range legacyMagics {
			if bytes.Contains(data, legacy) {
				return nil, nil, ErrLegacy
			}
		}
		return nil, nil, ErrNoContainer
	}

	o := idx + len(Magic)
	if len(data)-o < 4 {
		return nil, nil, ErrTruncated
	}
	metaLen := int(binary.LittleEndian.Uint32(data[o:]))
	o += 4
	if metaLen > maxMetadataSize || metaLen > len(data)-o {
		return nil, nil, ErrTruncated
	}

	meta := Metadata{}
	dec := json.NewDecoder(bytes.NewReader(data[o : o+metaLen]))
	dec.UseNumber()
	if err := dec.Decode(&meta); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrBadMetadata, err)
	}
	o += metaLen

	if len(data)-o < 4 {
		return nil, nil, ErrTruncated
	}
	payloadLen := int(binary.LittleEndian.Uint32(data[o:]))
	o += 4
	if payloadLen > len(data)-o {
		return nil, nil, ErrTruncated
	}

	payload := make([]byte, payloadLen)
	copy(payload, data[o:o+payloadLen])
	return meta, payload, nil
}
