package redundancy

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"

	rs "github.com/klauspost/reedsolomon"
)

// ErrArmorCorrupt is returned when too many armored shards fail verification
// for Reed-Solomon reconstruction to succeed.
var ErrArmorCorrupt = errors.New("redundancy: armored payload unrecoverable")

// Protect applies Reed-Solomon erasure coding to a payload block. The result
// is the concatenation of every shard followed by its SHA-256 digest; the
// digest lets Recover tell intact shards from damaged ones. The caller must
// record the shard counts and the original length in container metadata.
func Protect(data []byte, dataShards, parityShards int) ([]byte, error) {
	enc, err := rs.New(dataShards, parityShards)
	if err != nil {
		return nil, fmt.Errorf("failed to create Reed-Solomon encoder: %w", err)
	}

	shards, err := enc.Split(data)
	if err != nil {
		return nil, fmt.Errorf("failed to split payload into shards: %w", err)
	}
	if err := enc.Encode(shards); err != nil {
		return nil, fmt.Errorf("failed to encode parity shards: %w", err)
	}

	out := make([]byte, 0, (dataShards+parityShards)*(len(shards[0])+sha256.Size))
	for _, shard := range shards {
		sum := sha256.Sum256(shard)
		out = append(out, shard...)
		out = append(out, sum[:]...)
	}
	return out, nil
}

// Recover reverses Protect. Shards whose digest does not verify are treated
// as erasures and reconstructed from the survivors. origLen is the payload
// length before Split padding, as recorded in metadata.
func Recover(armored []byte, dataShards, parityShards, origLen int) ([]byte, error) {
	total := dataShards + parityShards
	if total <= 0 || len(armored) == 0 || len(armored)%total != 0 {
		return nil, ErrArmorCorrupt
	}
	unit := len(armored) / total
	shardSize := unit - sha256.Size
	if shardSize <= 0 {
		return nil, ErrArmorCorrupt
	}

	enc, err := rs.New(dataShards, parityShards)
	if err != nil {
		return nil, fmt.Errorf("failed to create Reed-Solomon encoder: %w", err)
	}

	shards := make([][]byte, total)
	for i := 0; i < total; i++ {
		blk := armored[i*unit : (i+1)*unit]
		shard := blk[:shardSize]
		sum := sha256.Sum256(shard)
		if bytes.Equal(sum[:], blk[shardSize:]) {
			shards[i] = append([]byte(nil), shard...)
		}
	}

	if err := enc.Reconstruct(shards); err != nil {
		return nil, ErrArmorCorrupt
	}
	if ok, _ := enc.Verify(shards); !ok {
		return nil, ErrArmorCorrupt
	}

	var buf bytes.Buffer
	if err := enc.Join(&buf, shards, origLen); err != nil {
		return nil, ErrArmorCorrupt
	}
	return buf.Bytes(), nil
}
