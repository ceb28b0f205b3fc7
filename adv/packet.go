// Package adv builds advertising and scan response PDUs and computes
// the advertising-channel rotation described in spec.md §4.7/§6: AD
// structures packed as [length:1][type:1][data:length-1], and a
// deterministic per-cycle perturbation of the advertising interval.
package adv

import "github.com/bleperiph/gatt/uuid"

// MaxPacketLength is the maximum payload of an advertising or scan
// response PDU.
const MaxPacketLength = 31

// AD structure types, per spec.md §6 and grounded in the teacher's
// advertisement.go.
const (
	TypeFlags            = 0x01
	TypeSomeUUID16       = 0x02
	TypeAllUUID16        = 0x03
	TypeSomeUUID128      = 0x06
	TypeAllUUID128       = 0x07
	TypeShortName        = 0x08
	TypeCompleteName     = 0x09
	TypeTxPower          = 0x0A
	TypeSlaveConnInt     = 0x12
	TypeAppearance       = 0x19
	TypeManufacturerData = 0xFF
)

// Flag bits for the Flags AD structure.
const (
	FlagLimitedDiscoverable = 0x01
	FlagGeneralDiscoverable = 0x02
	FlagLEOnly              = 0x04
)

// Builder accumulates AD structures into a single advertising or scan
// response payload, refusing to exceed MaxPacketLength.
type Builder struct {
	data []byte
}

// NewBuilder returns an empty packet builder.
func NewBuilder() *Builder { return &Builder{} }

// Len reports the packet's current length.
func (b *Builder) Len() int { return len(b.data) }

// Bytes returns the assembled packet.
func (b *Builder) Bytes() []byte { return b.data }

// AppendField appends an AD structure, reporting whether it fit within
// MaxPacketLength. On failure the builder is left unchanged.
func (b *Builder) AppendField(typ byte, data []byte) bool {
	if len(b.data)+2+len(data) > MaxPacketLength {
		return false
	}
	b.data = append(b.data, byte(len(data)+1), typ)
	b.data = append(b.data, data...)
	return true
}

// AppendFlags appends the Flags AD structure.
func (b *Builder) AppendFlags(f byte) bool { return b.AppendField(TypeFlags, []byte{f}) }

// AppendName appends the local name, using the Complete Local Name type
// if it fits whole, otherwise truncating and using Shortened Local Name
// — matching the teacher's nameScanResponsePacket/appendName fallback.
func (b *Builder) AppendName(name string) bool {
	if b.AppendField(TypeCompleteName, []byte(name)) {
		return true
	}
	avail := MaxPacketLength - len(b.data) - 2
	if avail <= 0 {
		return false
	}
	return b.AppendField(TypeShortName, []byte(name[:avail]))
}

// AppendAppearance appends the 16-bit Appearance AD structure.
func (b *Builder) AppendAppearance(v uint16) bool {
	return b.AppendField(TypeAppearance, []byte{byte(v), byte(v >> 8)})
}

// AppendSlaveConnIntervalRange appends the Slave Connection Interval
// Range AD structure (min, max, both in 1.25 ms units; 0xFFFF means "no
// specific value").
func (b *Builder) AppendSlaveConnIntervalRange(min, max uint16) bool {
	return b.AppendField(TypeSlaveConnInt, []byte{byte(min), byte(min >> 8), byte(max), byte(max >> 8)})
}

// AppendManufacturerData appends Manufacturer Specific Data prefixed
// with a 16-bit company identifier.
func (b *Builder) AppendManufacturerData(companyID uint16, data []byte) bool {
	d := append([]byte{byte(companyID), byte(companyID >> 8)}, data...)
	return b.AppendField(TypeManufacturerData, d)
}

// AppendServiceUUIDs appends as many of uu as fit, using the
// "incomplete list" type since the caller typically does not know
// whether every service UUID was included. It returns the subset that
// fit, mirroring the teacher's serviceAdvertisingPacket fit-tracking.
func (b *Builder) AppendServiceUUIDs(uu []uuid.UUID) []uuid.UUID {
	fit := make([]uuid.UUID, 0, len(uu))
	for _, u := range uu {
		typ := byte(TypeSomeUUID16)
		if u.Len() == 16 {
			typ = TypeSomeUUID128
		}
		if !b.AppendField(typ, u.Bytes()) {
			continue
		}
		fit = append(fit, u)
	}
	return fit
}
