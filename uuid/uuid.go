// Package uuid implements Bluetooth UUIDs: 16-bit assigned numbers and
// full 128-bit values, with little-endian wire encoding as used by ATT
// and advertising data structures.
package uuid

import "fmt"

// base is the Bluetooth Base UUID: 00000000-0000-1000-8000-00805F9B34FB,
// stored little-endian (as it appears on the wire) with the 4
// assigned-number bytes zeroed.
var base = [16]byte{
	0xFB, 0x34, 0x9B, 0x5F,
	0x80, 0x00, 0x00, 0x80,
	0x00, 0x10, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00,
}

// UUID is either a 16-bit assigned value or a full 128-bit value. b holds
// the little-endian wire representation: 2 bytes for a 16-bit UUID, 16
// bytes for a 128-bit one. The zero UUID is not valid; use New16 or New128.
type UUID struct {
	b []byte
}

// New16 returns the UUID for the 16-bit assigned number u.
func New16(u uint16) UUID {
	return UUID{b: []byte{byte(u), byte(u >> 8)}}
}

// New128 returns the UUID with wire bytes b (little-endian, len(b) must be
// 16). b is an array passed by value, so the UUID holds its own copy.
func New128(b [16]byte) UUID {
	cp := b
	return UUID{b: cp[:]}
}

// Parse decodes a UUID from its little-endian wire bytes. Len(b) must be
// 2 or 16.
func Parse(b []byte) (UUID, error) {
	switch len(b) {
	case 2, 16:
		cp := make([]byte, len(b))
		copy(cp, b)
		return UUID{b: cp}, nil
	default:
		return UUID{}, fmt.Errorf("uuid: invalid length %d", len(b))
	}
}

// Len returns 2 for a 16-bit UUID, 16 for a 128-bit UUID, 0 for the zero
// value.
func (u UUID) Len() int { return len(u.b) }

// IsZero reports whether u is the zero value (no UUID set).
func (u UUID) IsZero() bool { return len(u.b) == 0 }

// Bytes returns the little-endian wire representation. Callers must not
// mutate the returned slice.
func (u UUID) Bytes() []byte { return u.b }

// As16 reports whether u fits in 16 bits, either because it already is a
// 16-bit UUID, or because it is a 128-bit UUID equal to the Bluetooth
// Base UUID except for bits 0-31 (the 4 assigned-number bytes). It
// returns the assigned number when ok is true.
func (u UUID) As16() (v uint16, ok bool) {
	switch len(u.b) {
	case 2:
		return uint16(u.b[0]) | uint16(u.b[1])<<8, true
	case 16:
		for i := 0; i < 12; i++ {
			if u.b[i] != base[i] {
				return 0, false
			}
		}
		return uint16(u.b[12]) | uint16(u.b[13])<<8, true
	default:
		return 0, false
	}
}

// To128 returns the full 128-bit form of u, expanding a 16-bit value
// against the Bluetooth Base UUID if necessary.
func (u UUID) To128() UUID {
	if len(u.b) == 16 {
		return u
	}
	full := base
	full[12], full[13] = u.b[0], u.b[1]
	return New128(full)
}

// Equal reports whether u and v denote the same UUID, comparing in
// whichever form lets them line up (a 16-bit UUID equals its 128-bit
// expansion).
func (u UUID) Equal(v UUID) bool {
	if len(u.b) == len(v.b) {
		return bytesEqual(u.b, v.b)
	}
	return bytesEqual(u.To128().b, v.To128().b)
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// String renders the UUID in conventional hex form, most significant
// byte first (the reverse of the little-endian wire order).
func (u UUID) String() string {
	be := reversed(u.b)
	switch len(be) {
	case 2:
		return fmt.Sprintf("%04x", be)
	case 16:
		return fmt.Sprintf("%02x%02x%02x%02x-%02x%02x-%02x%02x-%02x%02x-%02x%02x%02x%02x%02x%02x",
			be[0], be[1], be[2], be[3], be[4], be[5], be[6], be[7],
			be[8], be[9], be[10], be[11], be[12], be[13], be[14], be[15])
	default:
		return "<invalid uuid>"
	}
}

func reversed(b []byte) []byte {
	out := make([]byte, len(b))
	for i, v := range b {
		out[len(b)-1-i] = v
	}
	return out
}
