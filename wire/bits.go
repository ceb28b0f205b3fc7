// Package wire provides the little-endian integer codecs shared by the
// L2CAP, ATT and Link Layer wire formats. Every multi-byte field on the
// air in Bluetooth LE is little-endian.
package wire

// PutUint16 writes v little-endian into b[0:2].
func PutUint16(b []byte, v uint16) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
}

// Uint16 reads a little-endian uint16 from b[0:2].
func Uint16(b []byte) uint16 {
	return uint16(b[0]) | uint16(b[1])<<8
}

// PutUint32 writes v little-endian into b[0:4].
func PutUint32(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}

// Uint32 reads a little-endian uint32 from b[0:4].
func Uint32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

// PutUint64 writes v little-endian into b[0:8].
func PutUint64(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * uint(i)))
	}
}

// Uint64 reads a little-endian uint64 from b[0:8].
func Uint64(b []byte) uint64 {
	var v uint64
	for i := 0; i < 8; i++ {
		v |= uint64(b[i]) << (8 * uint(i))
	}
	return v
}
