// Package util holds small helpers shared by the codec and the CLI.
package util

// UnpackBits expands each byte into eight bit values, most significant bit
// first. The result uses one byte per bit, holding 0 or 1.
func UnpackBits(data []byte) []byte {
	bits := make([]byte, 0, len(data)*8)
	for _, b := range data {
		for i := 7; i >= 0; i-- {
			bits = append(bits, (b>>i)&1)
		}
	}
	return bits
}

// PackBits reassembles bit values (one per byte, most significant bit first)
// into bytes. A trailing partial byte is dropped.
func PackBits(bits []byte) []byte {
	out := make([]byte, 0, len(bits)/8)
	for i := 0; i+8 <= len(bits); i += 8 {
		var b byte
		for j := 0; j < 8; j++ {
			b = b<<1 | bits[i+j]&1
		}
		out = append(out, b)
	}
	return out
}
