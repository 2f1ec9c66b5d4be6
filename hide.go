package veil

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/veilforge/veil/carrier"
	"github.com/veilforge/veil/container"
	"github.com/veilforge/veil/crypt"
	"github.com/veilforge/veil/redundancy"
	"github.com/veilforge/veil/util"
)

// Hide embeds payload inside carrierBytes and returns the modified carrier.
//
// An empty filename marks the payload as a text message; otherwise it is
// recorded as a file under that name. An empty password stores the payload
// unencrypted (its metadata says so), a non-empty one seals it with
// AES-256-GCM under a PBKDF2-derived key.
//
// Hide is all-or-nothing: capacity is validated before any carrier byte is
// rewritten, and on error the input buffer is untouched.
func Hide(carrierBytes []byte, kind CarrierType, payload []byte, filename, password string, opts Options) ([]byte, error) {
	cod, err := openCarrier(kind, carrierBytes)
	if err != nil {
		return nil, err
	}

	if opts.Redundancy < 0 || opts.Redundancy > redundancy.MaxFactor {
		return nil, fmt.Errorf("%w: redundancy %d outside [0,%d]", ErrInvalidOptions, opts.Redundancy, redundancy.MaxFactor)
	}
	if opts.ParityShards < 0 || opts.DataShards < 0 {
		return nil, fmt.Errorf("%w: negative shard count", ErrInvalidOptions)
	}
	if kind == Document && opts.Redundancy > 1 {
		// The document substrate appends packed bytes rather than
		// rewriting a bit plane, so scattered copies cannot line up
		// with the whole-file bit view used at extraction.
		return nil, fmt.Errorf("%w: document carriers embed at redundancy 1", ErrInvalidOptions)
	}

	meta, block, err := buildContainerParts(payload, filename, password, opts)
	if err != nil {
		return nil, err
	}

	// The factor is itself recorded in metadata, and for automatic
	// selection it depends on the framed size. Frame once with a
	// placeholder to measure; every legal factor is a single JSON digit,
	// so swapping in the real value never changes the framed length.
	meta[container.KeyRedundancy] = 1
	framed, err := container.Frame(meta, block)
	if err != nil {
		return nil, err
	}
	bits := util.UnpackBits(framed)

	factor := opts.Redundancy
	if factor == 0 {
		factor = 1
		if kind == Video {
			factor = redundancy.AutoFactor(cod.Slots(), len(bits))
		}
	}
	if factor != 1 {
		meta[container.KeyRedundancy] = factor
		if framed, err = container.Frame(meta, block); err != nil {
			return nil, err
		}
		bits = util.UnpackBits(framed)
	}

	plan, err := redundancy.NewPlan(cod.Slots(), factor)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPayloadTooLarge, err)
	}
	if len(bits) > plan.Capacity() {
		return nil, fmt.Errorf("%w: need %d bit slots, carrier offers %d at redundancy %d",
			ErrPayloadTooLarge, len(bits), plan.Capacity(), factor)
	}

	physLen := plan.PhysicalLen(len(bits))
	var plane []byte
	if factor == 1 {
		plane = make([]byte, len(bits))
	} else {
		full := cod.ReadBits()
		if physLen > len(full) {
			return nil, fmt.Errorf("%w: plan wants %d slots of %d", ErrCarrierTooSmall, physLen, len(full))
		}
		// Copies land past the logical region; preserve whatever the
		// carrier holds there now for the slots Scatter skips.
		plane = append([]byte(nil), full[:physLen]...)
	}
	if err := plan.Scatter(bits, plane); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCarrierTooSmall, err)
	}

	out, err := cod.WriteBits(plane)
	if err != nil {
		if errors.Is(err, carrier.ErrTooSmall) {
			return nil, fmt.Errorf("%w: %v", ErrCarrierTooSmall, err)
		}
		return nil, err
	}
	return out, nil
}

// buildContainerParts assembles the metadata map and the payload block as it
// goes to the wire: sealed when a password is given, then optionally armored.
func buildContainerParts(payload []byte, filename, password string, opts Options) (container.Metadata, []byte, error) {
	contentType := ContentTypeFile
	if filename == "" {
		filename = TextFilename
		contentType = ContentTypeText
	}

	sum := sha256.Sum256(payload)
	meta := container.Metadata{
		container.KeyEncrypted:   password != "",
		container.KeyContentType: contentType,
		container.KeyFilename:    filename,
		container.KeyChecksum:    hex.EncodeToString(sum[:]),
		container.KeySize:        len(payload),
	}

	block := payload
	if password != "" {
		sealed, err := crypt.Seal(payload, password)
		if err != nil {
			return nil, nil, err
		}
		block = sealed
	}

	if opts.ParityShards > 0 {
		dataShards := opts.DataShards
		if dataShards == 0 {
			dataShards = DefaultDataShards
		}
		meta[container.KeyRSData] = dataShards
		meta[container.KeyRSParity] = opts.ParityShards
		meta[container.KeyPayloadSize] = len(block)

		armored, err := redundancy.Protect(block, dataShards, opts.ParityShards)
		if err != nil {
			return nil, nil, err
		}
		block = armored
	}

	return meta, block, nil
}
