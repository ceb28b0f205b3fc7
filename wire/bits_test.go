package wire

import "testing"

func TestUint16RoundTrip(t *testing.T) {
	for _, v := range []uint16{0, 1, 23, 0x1234, 0xFFFF} {
		b := make([]byte, 2)
		PutUint16(b, v)
		if got := Uint16(b); got != v {
			t.Errorf("Uint16(PutUint16(%d)) = %d", v, got)
		}
	}
}

func TestUint32RoundTrip(t *testing.T) {
	for _, v := range []uint32{0, 1, 0xDEADBEEF, 0xFFFFFFFF} {
		b := make([]byte, 4)
		PutUint32(b, v)
		if got := Uint32(b); got != v {
			t.Errorf("Uint32(PutUint32(%d)) = %d", v, got)
		}
	}
}

func TestUint64RoundTrip(t *testing.T) {
	for _, v := range []uint64{0, 1, 0x0123456789ABCDEF, ^uint64(0)} {
		b := make([]byte, 8)
		PutUint64(b, v)
		if got := Uint64(b); got != v {
			t.Errorf("Uint64(PutUint64(%d)) = %d", v, got)
		}
	}
}

func TestLittleEndianByteOrder(t *testing.T) {
	b := make([]byte, 2)
	PutUint16(b, 0x0102)
	if b[0] != 0x02 || b[1] != 0x01 {
		t.Errorf("PutUint16 not little-endian: got % x", b)
	}
}
