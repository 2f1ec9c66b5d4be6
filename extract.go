package veil

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/veilforge/veil/container"
	"github.com/veilforge/veil/crypt"
	"github.com/veilforge/veil/redundancy"
	"github.com/veilforge/veil/util"
)

// Extract recovers a payload hidden in carrierBytes.
//
// The replication factor is not known up front, so the bit plane is probed
// at every legal factor until a container parses; the factor recorded in the
// container's own metadata is then authoritative. Extraction is read-only
// and idempotent: the same carrier yields byte-identical results every time.
func Extract(carrierBytes []byte, kind CarrierType, password string) (*Result, error) {
	cod, err := openCarrier(kind, carrierBytes)
	if err != nil {
		return nil, err
	}

	meta, block, err := locateContainer(cod.ReadBits())
	if err != nil {
		return nil, err
	}
	return decodePayload(meta, block, password)
}

// locateContainer probes replication factors in ascending order. Factor 1
// comes first so the common case never pays for a vote, and the order is
// fixed so extraction is deterministic.
func locateContainer(plane []byte) (container.Metadata, []byte, error) {
	sawContainer := false
	sawLegacy := false

	for f := 1; f <= redundancy.MaxFactor; f++ {
		if len(plane)/f == 0 {
			break
		}
		logical := plane
		if f > 1 {
			logical = redundancy.Collapse(plane, f)
		}

		meta, block, err := container.Parse(util.PackBits(logical))
		switch {
		case err == nil:
		case errors.Is(err, container.ErrNoContainer):
			continue
		case errors.Is(err, container.ErrLegacy):
			sawLegacy = true
			continue
		default:
			// Magic matched at this factor but the frame is broken.
			// A larger factor may still vote it back into shape.
			sawContainer = true
			continue
		}

		// The probe can land on a smaller factor than was written (copy
		// zero of every bit sits at its logical slot). Re-collapse at
		// the recorded factor so later copies participate in the vote.
		if rec, ok := meta.Int(container.KeyRedundancy); ok && rec != f &&
			rec > 1 && rec <= redundancy.MaxFactor && len(plane)/rec > 0 {
			voted := util.PackBits(redundancy.Collapse(plane, rec))
			if m, b, verr := container.Parse(voted); verr == nil {
				return m, b, nil
			}
		}
		return meta, block, nil
	}

	if sawContainer {
		return nil, nil, ErrMalformedMetadata
	}
	if sawLegacy {
		return nil, nil, ErrLegacyContainer
	}
	return nil, nil, ErrNoHiddenData
}

// decodePayload unwinds the container block: armor first (it wraps the
// sealed bytes), then the seal, then the plaintext checksum.
func decodePayload(meta container.Metadata, block []byte, password string) (*Result, error) {
	encrypted, ok := meta.Bool(container.KeyEncrypted)
	if !ok {
		return nil, fmt.Errorf("%w: missing %q", ErrMalformedMetadata, container.KeyEncrypted)
	}
	contentType, ok := meta.String(container.KeyContentType)
	if !ok {
		return nil, fmt.Errorf("%w: missing %q", ErrMalformedMetadata, container.KeyContentType)
	}
	filename, ok := meta.String(container.KeyFilename)
	if !ok {
		return nil, fmt.Errorf("%w: missing %q", ErrMalformedMetadata, container.KeyFilename)
	}
	checksum, ok := meta.String(container.KeyChecksum)
	if !ok {
		return nil, fmt.Errorf("%w: missing %q", ErrMalformedMetadata, container.KeyChecksum)
	}
	if _, ok := meta.Int(container.KeyRedundancy); !ok {
		return nil, fmt.Errorf("%w: missing %q", ErrMalformedMetadata, container.KeyRedundancy)
	}

	if dataShards, armored := meta.Int(container.KeyRSData); armored {
		parityShards, ok := meta.Int(container.KeyRSParity)
		if !ok {
			return nil, fmt.Errorf("%w: missing %q", ErrMalformedMetadata, container.KeyRSParity)
		}
		origLen, ok := meta.Int(container.KeyPayloadSize)
		if !ok {
			return nil, fmt.Errorf("%w: missing %q", ErrMalformedMetadata, container.KeyPayloadSize)
		}
		recovered, err := redundancy.Recover(block, dataShards, parityShards, origLen)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrWrongPasswordOrCorruption, err)
		}
		block = recovered
	}

	plaintext := block
	if encrypted {
		opened, err := crypt.Open(block, password)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrWrongPasswordOrCorruption, err)
		}
		plaintext = opened
	}

	sum := sha256.Sum256(plaintext)
	if hex.EncodeToString(sum[:]) != checksum {
		return nil, fmt.Errorf("%w: payload checksum mismatch", ErrWrongPasswordOrCorruption)
	}

	return &Result{
		Payload:     plaintext,
		Filename:    filename,
		ContentType: contentType,
	}, nil
}
