// Veil is a steganographic codec that hides arbitrary payloads (text or
// files) inside carrier media (images, audio, video, and documents) and
// recovers them later given a password.
//
// The codec is synchronous and stateless across calls: each Hide/Extract
// invocation owns its own working buffers, so any number of calls may run in
// parallel with no coordination. File handling, job queues, and transports
// are the caller's concern; the codec consumes and produces plain byte
// buffers.
package veil

import (
	"errors"
	"fmt"

	"github.com/veilforge/veil/carrier"
)

// CarrierType selects the embedding substrate for a carrier.
type CarrierType string

const (
	Image    CarrierType = "image"
	Audio    CarrierType = "audio"
	Video    CarrierType = "video"
	Document CarrierType = "document"
)

// Content types recorded in container metadata.
const (
	ContentTypeText = "text"
	ContentTypeFile = "file"

	// TextFilename is the filename sentinel for a plain text message.
	TextFilename = "message.txt"
)

// DefaultDataShards is the Reed-Solomon data shard count used when armor is
// enabled without an explicit value.
const DefaultDataShards = 4

var (
	// ErrPayloadTooLarge means the framed payload does not fit the carrier
	// at the chosen redundancy factor. Nothing was written.
	ErrPayloadTooLarge = errors.New("veil: payload too large for carrier")
	// ErrUnsupportedCarrierFormat means the carrier bytes do not match the
	// declared carrier type, or match a lossy subformat.
	ErrUnsupportedCarrierFormat = errors.New("veil: unsupported carrier format")
	// ErrNoHiddenData means no container magic was found. A plain,
	// unmodified carrier produces this, not a bug.
	ErrNoHiddenData = errors.New("veil: no hidden data found")
	// ErrMalformedMetadata means a container was located but its metadata
	// block is unparseable or missing required keys.
	ErrMalformedMetadata = errors.New("veil: container metadata is malformed")
	// ErrWrongPasswordOrCorruption unifies authentication failure and
	// checksum mismatch. The two are deliberately indistinguishable so an
	// attacker probing passwords learns nothing extra.
	ErrWrongPasswordOrCorruption = errors.New("veil: wrong password or corrupted carrier")
	// ErrCarrierTooSmall is the write-time re-check. Reaching it indicates
	// a capacity planner bug, not a user error.
	ErrCarrierTooSmall = errors.New("veil: carrier too small at write time")
	// ErrLegacyContainer means the carrier holds a container written by an
	// earlier, incompatible framing. It is rejected, never guessed at.
	ErrLegacyContainer = errors.New("veil: legacy container format is not supported")
	// ErrUnknownCarrierType is a dispatch failure on the carrier type tag;
	// it fails before any carrier byte is touched.
	ErrUnknownCarrierType = errors.New("veil: unknown carrier type")
	// ErrInvalidOptions means an option value is out of range.
	ErrInvalidOptions = errors.New("veil: invalid options")
)

// Options configures a Hide operation.
type Options struct {
	// Redundancy is the bit replication factor, 1 through
	// redundancy.MaxFactor. Zero selects automatically: video carriers get
	// the largest odd factor the spare capacity allows, everything else 1.
	Redundancy int
	// ParityShards enables Reed-Solomon armor over the payload block when
	// positive. Zero disables armor.
	ParityShards int
	// DataShards is the Reed-Solomon data shard count; zero means
	// DefaultDataShards. Ignored unless ParityShards is positive.
	DataShards int
}

// Result is the outcome of a successful extraction.
type Result struct {
	Payload     []byte
	Filename    string
	ContentType string
}

// openCarrier dispatches on the carrier type tag and maps carrier errors
// into the public taxonomy.
func openCarrier(kind CarrierType, data []byte) (carrier.Codec, error) {
	var k carrier.Kind
	switch kind {
	case Image:
		k = carrier.Image
	case Audio:
		k = carrier.Audio
	case Video:
		k = carrier.Video
	case Document:
		k = carrier.Document
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCarrierType, kind)
	}

	cod, err := carrier.Open(k, data)
	if err != nil {
		if errors.Is(err, carrier.ErrUnsupportedFormat) {
			return nil, fmt.Errorf("%w: %v", ErrUnsupportedCarrierFormat, err)
		}
		return nil, err
	}
	return cod, nil
}
