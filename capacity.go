package veil

// Capacity reports how many payload bits the carrier can hold at redundancy
// factor 1. The container's own framing (magic, metadata, length prefixes)
// comes out of this budget too, so the usable payload is somewhat smaller.
func Capacity(carrierBytes []byte, kind CarrierType) (int, error) {
	cod, err := openCarrier(kind, carrierBytes)
	if err != nil {
		return 0, err
	}
	return cod.Slots(), nil
}
