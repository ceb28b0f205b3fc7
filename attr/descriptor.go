package attr

import "github.com/bleperiph/gatt/uuid"

// Descriptor is a GATT characteristic descriptor other than the CCCD
// (which the table manages itself): a user description string or a
// caller-defined descriptor with a static value or handlers.
type Descriptor struct {
	uuid     uuid.UUID
	value    []byte
	rhandler ReadFunc
	whandler WriteFunc
	secure   Properties // PropRead/PropWrite bits that require security

	handle uint16 // filled in by BuildTable
}

// NewDescriptor creates a descriptor with a static, read-only value.
func NewDescriptor(u uuid.UUID, value []byte) *Descriptor {
	return &Descriptor{uuid: u, value: value}
}

// UUID returns the descriptor's UUID.
func (d *Descriptor) UUID() uuid.UUID { return d.uuid }

// Handle returns the descriptor's assigned attribute handle. Valid only
// after the owning Table has been built.
func (d *Descriptor) Handle() uint16 { return d.handle }

// HandleRead routes reads of this descriptor to f instead of serving the
// static value set by NewDescriptor.
func (d *Descriptor) HandleRead(f ReadFunc) *Descriptor {
	d.rhandler = f
	return d
}

// HandleWrite makes the descriptor writable, routing writes to f.
func (d *Descriptor) HandleWrite(f WriteFunc) *Descriptor {
	d.whandler = f
	return d
}
