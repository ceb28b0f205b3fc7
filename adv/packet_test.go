package adv

import (
	"bytes"
	"testing"

	"github.com/bleperiph/gatt/uuid"
)

func TestAppendFlags(t *testing.T) {
	b := NewBuilder()
	if !b.AppendFlags(FlagGeneralDiscoverable | FlagLEOnly) {
		t.Fatalf("flags should fit in an empty packet")
	}
	want := []byte{0x02, 0x01, FlagGeneralDiscoverable | FlagLEOnly}
	if !bytes.Equal(b.Bytes(), want) {
		t.Fatalf("got % x, want % x", b.Bytes(), want)
	}
}

func TestAppendNameFallsBackToShortened(t *testing.T) {
	b := NewBuilder()
	// Fill the packet so only 10 bytes remain, forcing a shortened name.
	b.AppendField(0x00, make([]byte, 19))
	if !b.AppendName("a-much-longer-name-than-fits") {
		t.Fatalf("expected a shortened name to fit")
	}
	if b.Len() > MaxPacketLength {
		t.Fatalf("packet exceeded max length: %d", b.Len())
	}
	last := b.Bytes()[21:]
	if last[1] != TypeShortName {
		t.Fatalf("expected shortened name type, got %#x", last[1])
	}
}

func TestAppendFieldRejectsOverflow(t *testing.T) {
	b := NewBuilder()
	if !b.AppendField(TypeCompleteName, make([]byte, 29)) {
		t.Fatalf("29 bytes of data should exactly fill the packet")
	}
	if b.Len() != MaxPacketLength {
		t.Fatalf("expected exactly %d bytes, got %d", MaxPacketLength, b.Len())
	}
	if b.AppendField(TypeTxPower, []byte{0}) {
		t.Fatalf("packet is full, append should fail")
	}
}

func TestAppendServiceUUIDsReportsWhatFit(t *testing.T) {
	b := NewBuilder()
	b.AppendField(0x00, make([]byte, 20))
	uu := []uuid.UUID{uuid.New16(0x180D), uuid.New16(0x180F), uuid.New16(0x1234)}
	fit := b.AppendServiceUUIDs(uu)
	if len(fit) != 2 {
		t.Fatalf("expected 2 of 3 UUIDs to fit given remaining space, got %d", len(fit))
	}
	if b.Len() > MaxPacketLength {
		t.Fatalf("packet exceeded max length: %d", b.Len())
	}
}

func TestAppendManufacturerData(t *testing.T) {
	b := NewBuilder()
	if !b.AppendManufacturerData(0x004C, []byte{0x02, 0x15}) {
		t.Fatalf("manufacturer data should fit")
	}
	want := []byte{0x05, TypeManufacturerData, 0x4C, 0x00, 0x02, 0x15}
	if !bytes.Equal(b.Bytes(), want) {
		t.Fatalf("got % x, want % x", b.Bytes(), want)
	}
}
