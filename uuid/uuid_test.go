package uuid

import "testing"

func TestNew16RoundTrip(t *testing.T) {
	for _, v := range []uint16{0x0000, 0x1800, 0x2902, 0xFFFF} {
		u := New16(v)
		got, ok := u.As16()
		if !ok {
			t.Fatalf("New16(%#04x).As16() not ok", v)
		}
		if got != v {
			t.Errorf("New16(%#04x).As16() = %#04x, want %#04x", v, got, v)
		}
	}
}

func Test128CollapsesToBase16(t *testing.T) {
	u := New16(0x1234).To128()
	v, ok := u.As16()
	if !ok {
		t.Fatalf("base-extended 128-bit UUID should collapse to 16 bits")
	}
	if v != 0x1234 {
		t.Errorf("got %#04x want %#04x", v, 0x1234)
	}
}

func TestNon128BaseDoesNotCollapse(t *testing.T) {
	var raw [16]byte
	copy(raw[:], []byte{0xb1, 0xc5, 0xd5, 0xa5, 0x02, 0x00, 0x04, 0x99, 0xe3, 0x11, 0xc1, 0x11, 0xc0, 0x95, 0xfc, 0x09})
	u := New128(raw)
	if _, ok := u.As16(); ok {
		t.Errorf("custom 128-bit UUID incorrectly collapsed to 16 bits")
	}
}

func TestEqualAcrossForms(t *testing.T) {
	a := New16(0x1800)
	b := a.To128()
	if !a.Equal(b) {
		t.Errorf("16-bit UUID should equal its own 128-bit expansion")
	}
	if !b.Equal(a) {
		t.Errorf("Equal should be symmetric")
	}
}

func TestParseInvalidLength(t *testing.T) {
	if _, err := Parse([]byte{1, 2, 3}); err == nil {
		t.Errorf("Parse with invalid length should error")
	}
}

func TestString(t *testing.T) {
	u := New16(0x1800)
	if got, want := u.String(), "1800"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
